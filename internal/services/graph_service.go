package services

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"pcsd/internal/models"
	"pcsd/internal/providers"
	"pcsd/internal/storage"
	"pcsd/internal/structures"
	"strconv"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	GraphUnavailable      = "Graphing is not available in this environment."
	GraphNonPositiveRange = "Graphing requires a positive time range."
	GraphNoHistory        = "No player count history available for that range."
	GraphRenderFailed     = "Unable to render player count graph."
	GraphRangeTooLarge    = "Graphing range is too large."
)

const (
	backgroundColor = "40444B"
	axisColor       = "E9E9E9"
	spineColor      = "1B1C1F"
	gridColor       = "2C2E33"
	maxTimeTicks    = 24
	desiredYTicks   = 6
)

// maxGraphSpan bounds explicit ranges to roughly a century.
const maxGraphSpan = uint64(100 * 366 * 24 * 3600)

type GraphServiceInterface interface {
	// Render returns PNG bytes, or nil and a human readable reason.
	Render(ctx context.Context, start, end int64) ([]byte, string)
}

type GraphService struct {
	store   storage.SnapshotStoreInterface
	cache   providers.CacheProviderInterface
	metrics providers.MetricsProviderInterface
	logger  providers.Logger
	enabled bool
	width   int
	height  int
}

func NewGraphService(conf *structures.Config, store storage.SnapshotStoreInterface, cache providers.CacheProviderInterface, metrics providers.MetricsProviderInterface, logger providers.Logger) GraphServiceInterface {
	width, height := conf.Graph.Width, conf.Graph.Height
	if width <= 0 {
		width = 900
	}
	if height <= 0 {
		height = 400
	}
	return &GraphService{
		store:   store,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		enabled: conf.Graph.Enabled,
		width:   width,
		height:  height,
	}
}

func (gs *GraphService) Render(ctx context.Context, start, end int64) ([]byte, string) {
	if !gs.enabled {
		return nil, GraphUnavailable
	}
	if end <= start {
		return nil, GraphNonPositiveRange
	}
	if span(start, end) > maxGraphSpan {
		return nil, GraphRangeTooLarge
	}

	cacheKey := fmt.Sprintf("graph:%d:%d", start, end)
	if data, ok := gs.cache.Get(cacheKey); ok {
		return data, ""
	}
	gen := gs.cache.Generation()

	series, err := gs.store.Series(ctx, start, end)
	if err != nil {
		gs.logger.Errorf(providers.TypeApp, "Graph series query failed: %s", err)
		return nil, GraphRenderFailed
	}
	if series.Empty() {
		return nil, GraphNoHistory
	}

	began := time.Now()
	data, err := renderPNG(series, start, end, gs.width, gs.height)
	gs.metrics.ObserveRenderDuration(time.Since(began))
	if err != nil {
		gs.logger.Errorf(providers.TypeApp, "Graph rendering failed: %s", err)
		return nil, GraphRenderFailed
	}

	gs.cache.SetIfGeneration(cacheKey, data, gen)
	return data, ""
}

// span is end-start for start <= end, without int64 overflow.
func span(start, end int64) uint64 {
	return uint64(end) - uint64(start)
}

func renderPNG(series *models.Series, start, end int64, width, height int) ([]byte, error) {
	graph := buildChart(series, start, end, width, height)
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func hexColor(c string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(c, "#"))
}

func buildChart(series *models.Series, start, end int64, width, height int) chart.Chart {
	times := make([]time.Time, series.Len())
	for i, ts := range series.Timestamps {
		times[i] = time.Unix(ts, 0).UTC()
	}

	lines := make([]chart.Series, 0, len(models.Categories()))
	maxValue := 0
	for _, info := range models.CategoryInfos() {
		values := series.Values[info.Key]
		ys := make([]float64, len(values))
		for i, v := range values {
			ys[i] = float64(v)
			maxValue = max(maxValue, v)
		}
		xs := times
		// go-chart needs two points to draw a line
		if len(xs) == 1 {
			xs = []time.Time{times[0], times[0].Add(time.Second)}
			ys = []float64{ys[0], ys[0]}
		}
		color := hexColor(info.Color)
		lines = append(lines, chart.TimeSeries{
			Name: fmt.Sprintf("%s (%d)", info.Label, series.Last(info.Key)),
			Style: chart.Style{
				StrokeColor: color,
				StrokeWidth: 2,
				DotColor:    color,
				DotWidth:    3,
			},
			XValues: xs,
			YValues: ys,
		})
	}

	startT := time.Unix(start, 0).UTC()
	endT := time.Unix(end, 0).UTC()
	step, layout := timeStep(span(start, end))
	yTop, yTicks := integerTicks(maxValue, desiredYTicks)

	axisStyle := chart.Style{
		FontColor:   hexColor(axisColor),
		StrokeColor: hexColor(spineColor),
		StrokeWidth: 2,
	}
	gridStyle := chart.Style{
		StrokeColor: hexColor(gridColor),
		StrokeWidth: 1,
	}

	graph := chart.Chart{
		Title:  "Player count history",
		Width:  width,
		Height: height,
		TitleStyle: chart.Style{
			FontColor: hexColor(axisColor),
			FontSize:  14,
		},
		Background: chart.Style{
			FillColor: hexColor(backgroundColor),
			Padding:   chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		Canvas: chart.Style{
			FillColor: hexColor(backgroundColor),
		},
		XAxis: chart.XAxis{
			Name:           "Time (UTC)",
			NameStyle:      chart.Style{FontColor: hexColor(axisColor)},
			Style:          axisStyle,
			GridMajorStyle: gridStyle,
			Range:          &chart.ContinuousRange{Min: chart.TimeToFloat64(startT), Max: chart.TimeToFloat64(endT)},
			Ticks:          timeTicks(startT, endT, step, layout),
		},
		YAxis: chart.YAxis{
			Name:           "Players",
			NameStyle:      chart.Style{FontColor: hexColor(axisColor)},
			Style:          axisStyle,
			GridMajorStyle: gridStyle,
			Range:          &chart.ContinuousRange{Min: 0, Max: float64(yTop)},
			Ticks:          yTicks,
		},
		Series: lines,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph, chart.Style{
		FillColor:   hexColor(backgroundColor),
		FontColor:   hexColor(axisColor),
		StrokeColor: hexColor(spineColor),
	})}
	return graph
}

// timeStep picks the tick spacing for a range: hourly up to 6h, every 6h up
// to 48h, daily beyond.
func timeStep(rangeSeconds uint64) (time.Duration, string) {
	switch {
	case rangeSeconds <= 6*3600:
		return time.Hour, "15:04"
	case rangeSeconds <= 48*3600:
		return 6 * time.Hour, "Jan 02 15:04"
	default:
		return 24 * time.Hour, "Jan 02"
	}
}

// timeTicks returns UTC ticks on step boundaries inside [startT, endT]. When
// more than maxTimeTicks steps fit, the step is doubled until they don't.
func timeTicks(startT, endT time.Time, step time.Duration, layout string) []chart.Tick {
	st := int64(step.Seconds())
	first, last := startT.Unix(), endT.Unix()
	if st <= 0 || last < first {
		return nil
	}
	total := span(first, last)
	for total/uint64(st) > maxTimeTicks && st <= math.MaxInt64/2 {
		st *= 2
	}

	// round first up to a multiple of st
	if rem := first % st; rem > 0 {
		if first > math.MaxInt64-(st-rem) {
			return nil
		}
		first += st - rem
	} else if rem < 0 {
		first -= rem
	}
	if first > last {
		return []chart.Tick{}
	}

	ticks := make([]chart.Tick, 0, min(span(first, last)/uint64(st)+1, maxTimeTicks+1))
	for s := first; ; s += st {
		t := time.Unix(s, 0).UTC()
		ticks = append(ticks, chart.Tick{Value: chart.TimeToFloat64(t), Label: t.Format(layout)})
		if span(s, last) < uint64(st) {
			break
		}
	}
	return ticks
}

// integerTicks returns the axis top and whole-number ticks from 0 to it.
func integerTicks(maxValue, desired int) (int, []chart.Tick) {
	if maxValue <= 0 {
		maxValue = 1
	}
	step := niceIntStep(maxValue, desired)
	top := int(math.Ceil(float64(maxValue)/float64(step))) * step
	if top == maxValue {
		top += step
	}

	ticks := make([]chart.Tick, 0, top/step+1)
	for v := 0; v <= top; v += step {
		ticks = append(ticks, chart.Tick{Value: float64(v), Label: strconv.Itoa(v)})
	}
	return top, ticks
}

// niceIntStep picks a 1/2/5 x 10^k step of at least 1.
func niceIntStep(maxValue, desired int) int {
	if desired < 2 {
		desired = 2
	}
	raw := float64(maxValue) / float64(desired-1)
	if raw <= 1 {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, c := range []float64{1, 2, 5, 10} {
		if c*mag >= raw {
			return int(c * mag)
		}
	}
	return int(10 * mag)
}
