package testutil

import (
	"context"
	"pcsd/internal/models"
	"pcsd/internal/providers"
	"sort"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// MockMetrics implements providers.MetricsProviderInterface.
type MockMetrics struct {
	mu                sync.Mutex
	Requests          map[string]int
	CacheHits         int
	CacheMisses       int
	ArchiveObserved   int
	RenderObserved    int
	SnapshotsRecorded int
	Players           map[string]int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{Requests: make(map[string]int), Players: make(map[string]int)}
}

func (m *MockMetrics) IncRequestsTotal(endpoint string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests[endpoint]++
}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}
func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}
func (m *MockMetrics) ObserveArchiveDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArchiveObserved++
}
func (m *MockMetrics) ObserveRenderDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RenderObserved++
}
func (m *MockMetrics) IncSnapshotsRecorded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SnapshotsRecorded++
}
func (m *MockMetrics) SetPlayerCount(category string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Players[category] = count
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu     sync.Mutex
	Data   map[string][]byte
	Clears int
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data = make(map[string][]byte)
	m.Clears++
}

// Generation is the number of Clear calls so far.
func (m *MockCache) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return uint64(m.Clears)
}

func (m *MockCache) SetIfGeneration(key string, value []byte, gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if uint64(m.Clears) != gen {
		return false
	}
	m.Data[key] = value
	return true
}

// MockCompressor implements archive.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
	Closed       int
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {
	m.Closed++
}

// FakeSnapshotStore is an in-memory storage.SnapshotStoreInterface.
// Setting Err makes every call fail with it.
type FakeSnapshotStore struct {
	mu    sync.Mutex
	Data  map[int64]models.Counts
	Now   int64
	Err   error
	Calls int
}

func NewFakeSnapshotStore() *FakeSnapshotStore {
	return &FakeSnapshotStore{Data: make(map[int64]models.Counts), Now: 1_700_000_000}
}

// Put stores counts at ts directly, bypassing Err.
func (f *FakeSnapshotStore) Put(ts int64, counts map[string]int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Data[ts] = models.NormalizeCounts(counts)
}

func (f *FakeSnapshotStore) Record(_ context.Context, ts *int64, counts map[string]int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	if f.Err != nil {
		return 0, f.Err
	}
	at := f.Now
	if ts != nil {
		at = *ts
	}
	f.Data[at] = models.NormalizeCounts(counts)
	return at, nil
}

func (f *FakeSnapshotStore) sortedKeys() []int64 {
	keys := make([]int64, 0, len(f.Data))
	for ts := range f.Data {
		keys = append(keys, ts)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// find returns the greatest stored ts accepted by ok.
func (f *FakeSnapshotStore) find(ok func(int64) bool) (*models.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}
	keys := f.sortedKeys()
	for i := len(keys) - 1; i >= 0; i-- {
		if ok(keys[i]) {
			return &models.Snapshot{Ts: keys[i], Counts: f.Data[keys[i]].Clone()}, nil
		}
	}
	return nil, nil
}

func (f *FakeSnapshotStore) Latest(_ context.Context) (*models.Snapshot, error) {
	return f.find(func(int64) bool { return true })
}

func (f *FakeSnapshotStore) AtOrBefore(_ context.Context, ts int64) (*models.Snapshot, error) {
	return f.find(func(k int64) bool { return k <= ts })
}

func (f *FakeSnapshotStore) Before(_ context.Context, ts int64) (*models.Snapshot, error) {
	return f.find(func(k int64) bool { return k < ts })
}

func (f *FakeSnapshotStore) Series(_ context.Context, start, end int64) (*models.Series, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}
	series := models.NewSeries(0)
	for _, ts := range f.sortedKeys() {
		if ts >= start && ts <= end {
			series.Append(ts, f.Data[ts])
		}
	}
	return series, nil
}

// FakeMenuStore is an in-memory storage.MenuStoreInterface.
type FakeMenuStore struct {
	mu   sync.Mutex
	Data map[string]models.MenuRecord
	Err  error
}

func NewFakeMenuStore() *FakeMenuStore {
	return &FakeMenuStore{Data: make(map[string]models.MenuRecord)}
}

func (f *FakeMenuStore) Upsert(_ context.Context, rec models.MenuRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Data[rec.MessageID] = rec
	return nil
}

func (f *FakeMenuStore) Get(_ context.Context, messageID string) (*models.MenuRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	rec, ok := f.Data[messageID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (f *FakeMenuStore) ListAll(_ context.Context) ([]models.MenuRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	out := make([]models.MenuRecord, 0, len(f.Data))
	for _, rec := range f.Data {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MessageID < out[j].MessageID })
	return out, nil
}

func (f *FakeMenuStore) Delete(_ context.Context, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	delete(f.Data, messageID)
	return nil
}
