package providers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type cacheMetricsTestMetrics struct {
	hits   int
	misses int
}

func (m *cacheMetricsTestMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *cacheMetricsTestMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *cacheMetricsTestMetrics) IncCacheHits()                                    { m.hits++ }
func (m *cacheMetricsTestMetrics) IncCacheMisses()                                  { m.misses++ }
func (m *cacheMetricsTestMetrics) ObserveArchiveDuration(_ time.Duration)           {}
func (m *cacheMetricsTestMetrics) ObserveRenderDuration(_ time.Duration)            {}
func (m *cacheMetricsTestMetrics) IncSnapshotsRecorded()                            {}
func (m *cacheMetricsTestMetrics) SetPlayerCount(_ string, _ int)                   {}

type cacheMetricsTestInner struct {
	data map[string][]byte
	gen  uint64
}

func (c *cacheMetricsTestInner) Get(key string) ([]byte, bool) {
	v, ok := c.data[key]
	return v, ok
}
func (c *cacheMetricsTestInner) Set(key string, value []byte) {
	c.data[key] = value
}
func (c *cacheMetricsTestInner) Clear() {
	c.data = map[string][]byte{}
	c.gen++
}
func (c *cacheMetricsTestInner) Generation() uint64 { return c.gen }
func (c *cacheMetricsTestInner) SetIfGeneration(key string, value []byte, gen uint64) bool {
	if gen != c.gen {
		return false
	}
	c.data[key] = value
	return true
}

func newCountingCache(entries map[string][]byte) (*MetricsCacheProvider, *cacheMetricsTestInner, *cacheMetricsTestMetrics) {
	inner := &cacheMetricsTestInner{data: entries}
	metrics := &cacheMetricsTestMetrics{}
	return &MetricsCacheProvider{inner: inner, metrics: metrics}, inner, metrics
}

func TestMetricsCacheProvider_CountsLookups(t *testing.T) {
	tests := []struct {
		name       string
		keys       []string
		wantHits   int
		wantMisses int
	}{
		{"single hit", []string{"graph:0:3600"}, 1, 0},
		{"single miss", []string{"graph:0:7200"}, 0, 1},
		{"mixed", []string{"graph:0:3600", "series:0:3600", "graph:0:3600", "graph:1:2"}, 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache, _, metrics := newCountingCache(map[string][]byte{"graph:0:3600": []byte("png")})
			for _, k := range tt.keys {
				cache.Get(k)
			}
			assert.Equal(t, tt.wantHits, metrics.hits)
			assert.Equal(t, tt.wantMisses, metrics.misses)
		})
	}
}

func TestMetricsCacheProvider_GetReturnsInnerValue(t *testing.T) {
	cache, _, _ := newCountingCache(map[string][]byte{"series:10:20": []byte("[]")})

	val, ok := cache.Get("series:10:20")
	assert.True(t, ok)
	assert.Equal(t, []byte("[]"), val)

	val, ok = cache.Get("series:10:30")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestMetricsCacheProvider_SetAndClearDelegate(t *testing.T) {
	cache, inner, metrics := newCountingCache(map[string][]byte{})

	cache.Set("graph:5:10", []byte("png"))
	assert.Equal(t, []byte("png"), inner.data["graph:5:10"])

	cache.Clear()
	assert.Empty(t, inner.data)
	assert.Zero(t, metrics.hits+metrics.misses)
}

func TestMetricsCacheProvider_GenerationDelegates(t *testing.T) {
	cache, inner, _ := newCountingCache(map[string][]byte{})

	gen := cache.Generation()
	cache.Clear()
	assert.Equal(t, gen+1, cache.Generation())

	assert.False(t, cache.SetIfGeneration("graph:0:60", []byte("stale"), gen))
	assert.NotContains(t, inner.data, "graph:0:60")
	assert.True(t, cache.SetIfGeneration("graph:0:60", []byte("fresh"), cache.Generation()))
	assert.Equal(t, []byte("fresh"), inner.data["graph:0:60"])
}
