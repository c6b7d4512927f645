package services

import (
	"context"
	"errors"
	"pcsd/internal/testutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAcquirer struct {
	counts map[string]int
	err    error
	calls  int
}

func (a *stubAcquirer) Acquire(_ context.Context) (map[string]int, error) {
	a.calls++
	return a.counts, a.err
}

func newSnapshotService(store *testutil.FakeSnapshotStore, acq AcquirerInterface) (SnapshotServiceInterface, *testutil.MockCache, *testutil.MockMetrics) {
	cache := testutil.NewMockCache()
	metrics := testutil.NewMockMetrics()
	return NewSnapshotService(store, acq, cache, metrics, &testutil.MockLogger{}), cache, metrics
}

func TestSnapshotRecord_ClearsCacheAndUpdatesGauges(t *testing.T) {
	store := testutil.NewFakeSnapshotStore()
	ss, cache, metrics := newSnapshotService(store, &stubAcquirer{})
	cache.Set("graph:0:1", []byte("old"))

	ts := int64(1234)
	at, err := ss.Record(context.Background(), &ts, map[string]int{"green": 7, "unknown": 3})
	require.NoError(t, err)
	assert.Equal(t, ts, at)
	assert.Empty(t, cache.Data)
	assert.Equal(t, 1, metrics.SnapshotsRecorded)
	assert.Equal(t, 7, metrics.Players["green"])
	assert.Equal(t, 0, metrics.Players["black"])
	assert.NotContains(t, metrics.Players, "unknown")
}

func TestSnapshotRecord_DefaultsToNow(t *testing.T) {
	store := testutil.NewFakeSnapshotStore()
	ss, _, _ := newSnapshotService(store, &stubAcquirer{})

	at, err := ss.Record(context.Background(), nil, map[string]int{"red": 1})
	require.NoError(t, err)
	assert.Equal(t, store.Now, at)
}

func TestSnapshotRecord_StoreError(t *testing.T) {
	store := testutil.NewFakeSnapshotStore()
	store.Err = errors.New("locked")
	ss, cache, metrics := newSnapshotService(store, &stubAcquirer{})

	_, err := ss.Record(context.Background(), nil, map[string]int{"red": 1})
	assert.Error(t, err)
	assert.Equal(t, 0, cache.Clears)
	assert.Equal(t, 0, metrics.SnapshotsRecorded)
}

func TestEnsureLatest_SkipsAcquisitionWhenHistoryExists(t *testing.T) {
	store := testutil.NewFakeSnapshotStore()
	store.Put(10, map[string]int{"blue": 1})
	acq := &stubAcquirer{counts: map[string]int{"blue": 2}}
	ss, _, _ := newSnapshotService(store, acq)

	require.NoError(t, ss.EnsureLatest(context.Background()))
	assert.Equal(t, 0, acq.calls)
}

func TestEnsureLatest_AcquiresWhenEmpty(t *testing.T) {
	store := testutil.NewFakeSnapshotStore()
	acq := &stubAcquirer{counts: map[string]int{"blue": 2}}
	ss, _, _ := newSnapshotService(store, acq)

	require.NoError(t, ss.EnsureLatest(context.Background()))
	assert.Equal(t, 1, acq.calls)
	latest, err := store.Latest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 2, latest.Counts["blue"])
}

func TestEnsureLatest_AcquisitionFailure(t *testing.T) {
	store := testutil.NewFakeSnapshotStore()
	acq := &stubAcquirer{err: errors.New("timeout")}
	ss, _, _ := newSnapshotService(store, acq)

	err := ss.EnsureLatest(context.Background())
	assert.ErrorIs(t, err, ErrUnableToGather)
	assert.Empty(t, store.Data)
}

func TestPoll_RecordsAcquiredCounts(t *testing.T) {
	store := testutil.NewFakeSnapshotStore()
	store.Put(10, map[string]int{"blue": 1})
	acq := &stubAcquirer{counts: map[string]int{"yellow": 9}}
	ss, _, metrics := newSnapshotService(store, acq)

	at, err := ss.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, store.Now, at)
	assert.Equal(t, 9, metrics.Players["yellow"])
}
