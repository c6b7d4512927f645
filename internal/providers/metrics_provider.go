package providers

import (
	"pcsd/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObserveArchiveDuration(duration time.Duration)
	ObserveRenderDuration(duration time.Duration)
	IncSnapshotsRecorded()
	SetPlayerCount(category string, count int)
}

type MetricsProvider struct {
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	cacheHits         prometheus.Counter
	cacheMisses       prometheus.Counter
	archiveDuration   prometheus.Histogram
	renderDuration    prometheus.Histogram
	snapshotsRecorded prometheus.Counter
	players           *prometheus.GaugeVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObserveArchiveDuration(duration time.Duration) {
	m.archiveDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) ObserveRenderDuration(duration time.Duration) {
	m.renderDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncSnapshotsRecorded() {
	m.snapshotsRecorded.Inc()
}

func (m *MetricsProvider) SetPlayerCount(category string, count int) {
	m.players.WithLabelValues(category).Set(float64(count))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pcsd_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pcsd_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pcsd_cache_hits_total",
			Help: "Total number of graph cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pcsd_cache_misses_total",
			Help: "Total number of graph cache misses",
		}),

		archiveDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "pcsd_archive_duration_seconds",
			Help:    "Duration of archive export operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		renderDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "pcsd_graph_render_duration_seconds",
			Help:    "Duration of player count graph rendering in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		snapshotsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pcsd_snapshots_recorded_total",
			Help: "Total number of recorded player count snapshots",
		}),

		players: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pcsd_players",
			Help: "Player count per realm in the latest recorded snapshot",
		}, []string{"realm"}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObserveArchiveDuration(_ time.Duration)           {}
func (n *noopMetrics) ObserveRenderDuration(_ time.Duration)            {}
func (n *noopMetrics) IncSnapshotsRecorded()                            {}
func (n *noopMetrics) SetPlayerCount(_ string, _ int)                   {}
