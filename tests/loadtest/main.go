package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"os"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"text/tabwriter"
	"time"

	json "github.com/goccy/go-json"
)
const (
	baseURL      = "http://127.0.0.1:18090"
	numWorkers   = 50
	testDuration = 10 * time.Second
	numMenus     = 200
	maxPlayers   = 5000
)

var (
	realms    = []string{"black", "green", "red", "purple", "yellow", "cyan", "blue"}
	ranges    = []int{6, 12, 24, 48, 168}
	nextTs    atomic.Int64
	seedStart = time.Now().Add(-7 * 24 * time.Hour).Unix()
)

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type action struct {
	weight float64
	run    func(rng *rand.Rand) result
}

type phase struct {
	title   string
	actions []action
}

// recorder collects latencies per endpoint from all workers.
type recorder struct {
	mu        sync.Mutex
	latencies map[string][]time.Duration
	errors    map[string]int
}

func newRecorder() *recorder {
	return &recorder{
		latencies: make(map[string][]time.Duration),
		errors:    make(map[string]int),
	}
}

func (r *recorder) add(res result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latencies[res.endpoint] = append(r.latencies[res.endpoint], res.latency)
	if res.err {
		r.errors[res.endpoint]++
	}
}

func main() {
	fmt.Println("=== PCSD Load Test ===")
	fmt.Printf("%d workers, %s per phase, %d realms, %d menus\n\n", numWorkers, testDuration, len(realms), numMenus)

	if !waitForServer(30, 200*time.Millisecond) {
		fmt.Println("server did not answer /health")
		os.Exit(1)
	}
	nextTs.Store(seedStart)

	phases := []phase{
		{
			// a week of history, one snapshot every 5 minutes
			title:   "seed history",
			actions: []action{{1, doPostSnapshot}},
		},
		{
			title: "mixed",
			actions: []action{
				{0.30, doPostSnapshot},
				{0.10, doPostMenu},
				{0.25, doGetReport},
				{0.15, doGetSeries},
				{0.10, doGetGraph},
				{0.10, doGetMenuReport},
			},
		},
		{
			// charts mostly served from cache
			title: "read heavy",
			actions: []action{
				{0.05, doPostSnapshot},
				{0.35, doGetReport},
				{0.20, doGetGraph},
				{0.20, doGetSeries},
				{0.20, func(*rand.Rand) result { return doGetLatest() }},
			},
		},
	}

	for i, ph := range phases {
		fmt.Printf("\n--- phase %d: %s ---\n", i+1, ph.title)
		rec := runPhase(ph, testDuration)
		report(rec, testDuration)
	}
}

func waitForServer(attempts int, pause time.Duration) bool {
	for i := 0; i < attempts; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			return true
		}
		time.Sleep(pause)
	}
	return false
}

func pick(rng *rand.Rand, actions []action) action {
	var total float64
	for _, a := range actions {
		total += a.weight
	}
	x := rng.Float64() * total
	for _, a := range actions {
		if x < a.weight {
			return a
		}
		x -= a.weight
	}
	return actions[len(actions)-1]
}

func runPhase(ph phase, duration time.Duration) *recorder {
	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	rec := newRecorder()
	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(rng *rand.Rand) {
			defer wg.Done()
			for ctx.Err() == nil {
				rec.add(pick(rng, ph.actions).run(rng))
			}
		}(rand.New(rand.NewSource(time.Now().UnixNano() + int64(w))))
	}
	wg.Wait()
	return rec
}

func report(rec *recorder, duration time.Duration) {
	endpoints := make([]string, 0, len(rec.latencies))
	for ep := range rec.latencies {
		endpoints = append(endpoints, ep)
	}
	slices.Sort(endpoints)

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "endpoint\treqs\terrs\tmean\tp50\tp95\tp99\t")
	var reqs, errs int
	for _, ep := range endpoints {
		lat := rec.latencies[ep]
		slices.Sort(lat)
		reqs += len(lat)
		errs += rec.errors[ep]
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\t%s\t\n", ep, len(lat), rec.errors[ep],
			ms(mean(lat)), ms(quantile(lat, 0.50)), ms(quantile(lat, 0.95)), ms(quantile(lat, 0.99)))
	}
	_ = tw.Flush()

	fmt.Println(strings.Repeat("=", 72))
	errPct := 0.0
	if reqs > 0 {
		errPct = float64(errs) * 100 / float64(reqs)
	}
	fmt.Printf("%d requests, %d errors (%.2f%%), %.0f req/s\n", reqs, errs, errPct, float64(reqs)/duration.Seconds())
}

func send(label, method, url string, body []byte, want int) result {
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return result{label, 0, 0, true}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	start := time.Now()
	resp, err := httpClient.Do(req)
	lat := time.Since(start)
	if err != nil {
		return result{label, 0, lat, true}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return result{label, resp.StatusCode, lat, resp.StatusCode != want}
}

func doPostSnapshot(rng *rand.Rand) result {
	counts := make(map[string]int, len(realms))
	for _, realm := range realms {
		counts[realm] = rng.Intn(maxPlayers)
	}
	data, _ := json.Marshal(map[string]interface{}{
		"ts":     nextTs.Add(300),
		"counts": counts,
	})
	return send("POST /snapshots", http.MethodPost, baseURL+"/snapshots", data, http.StatusCreated)
}

func doPostMenu(rng *rand.Rand) result {
	data, _ := json.Marshal(map[string]interface{}{
		"message_id":    fmt.Sprintf("msg_%d", rng.Intn(numMenus)),
		"channel_id":    "load",
		"guild_id":      "load",
		"include_graph": rng.Float64() < 0.5,
		"range_hours":   ranges[rng.Intn(len(ranges))],
	})
	return send("POST /menus", http.MethodPost, baseURL+"/menus", data, http.StatusOK)
}

func doGetReport(rng *rand.Rand) result {
	url := fmt.Sprintf("%s/report?graph=%t&range=%d", baseURL, rng.Float64() < 0.3, ranges[rng.Intn(len(ranges))])
	return send("GET /report", http.MethodGet, url, nil, http.StatusOK)
}

func doGetGraph(rng *rand.Rand) result {
	url := fmt.Sprintf("%s/graph?range=%d", baseURL, ranges[rng.Intn(len(ranges))])
	return send("GET /graph", http.MethodGet, url, nil, http.StatusOK)
}

func doGetSeries(rng *rand.Rand) result {
	end := nextTs.Load()
	start := end - int64(ranges[rng.Intn(len(ranges))])*3600
	url := fmt.Sprintf("%s/series?start=%d&end=%d", baseURL, start, end)
	return send("GET /series", http.MethodGet, url, nil, http.StatusOK)
}

func doGetMenuReport(rng *rand.Rand) result {
	url := fmt.Sprintf("%s/menus/report?id=msg_%d", baseURL, rng.Intn(numMenus))
	r := send("GET /menus/report", http.MethodGet, url, nil, http.StatusOK)
	// menus not saved yet are expected misses
	if r.status == http.StatusNotFound {
		r.err = false
	}
	return r
}

func doGetLatest() result {
	return send("GET /snapshots/latest", http.MethodGet, baseURL+"/snapshots/latest", nil, http.StatusOK)
}

func mean(sorted []time.Duration) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range sorted {
		total += d
	}
	return total / time.Duration(len(sorted))
}

// quantile expects sorted input.
func quantile(sorted []time.Duration, q float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[min(int(q*float64(len(sorted))), len(sorted)-1)]
}

func ms(d time.Duration) string {
	return fmt.Sprintf("%.2fms", float64(d)/float64(time.Millisecond))
}
