package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"pcsd/internal/models"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pcsd_test.db")
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Migrate(context.Background(), db))
	return db
}

func ts(v int64) *int64 {
	return &v
}

func newTestSnapshotStore(t *testing.T) *SnapshotStore {
	return NewSnapshotStore(openTestDB(t))
}

func TestRecord_ReturnsGivenTs(t *testing.T) {
	s := newTestSnapshotStore(t)
	got, err := s.Record(context.Background(), ts(1000), map[string]int{"black": 5})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), got)
}

func TestRecord_NilTsUsesNow(t *testing.T) {
	s := newTestSnapshotStore(t)
	s.now = func() time.Time { return time.Unix(1700000000, 999) }

	got, err := s.Record(context.Background(), nil, map[string]int{"red": 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), got)

	snap, err := s.Latest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, int64(1700000000), snap.Ts)
}

func TestRecord_ReplaceSemantics(t *testing.T) {
	s := newTestSnapshotStore(t)
	ctx := context.Background()

	_, err := s.Record(ctx, ts(500), map[string]int{"black": 10, "green": 20, "red": 30})
	require.NoError(t, err)
	_, err = s.Record(ctx, ts(500), map[string]int{"blue": 7})
	require.NoError(t, err)

	snap, err := s.AtOrBefore(ctx, 500)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 0, snap.Counts[models.CategoryBlack])
	assert.Equal(t, 0, snap.Counts[models.CategoryGreen])
	assert.Equal(t, 0, snap.Counts[models.CategoryRed])
	assert.Equal(t, 7, snap.Counts[models.CategoryBlue])

	var rows int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM player_counts WHERE ts = 500`).Scan(&rows))
	assert.Equal(t, len(models.Categories()), rows)
}

func TestRecord_DefaultFill(t *testing.T) {
	s := newTestSnapshotStore(t)
	ctx := context.Background()

	_, err := s.Record(ctx, ts(42), map[string]int{"cyan": 3, "yellow": 4})
	require.NoError(t, err)

	snap, err := s.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Len(t, snap.Counts, 7)
	assert.Equal(t, 3, snap.Counts[models.CategoryCyan])
	assert.Equal(t, 4, snap.Counts[models.CategoryYellow])
	for _, cat := range []models.Category{models.CategoryBlack, models.CategoryGreen, models.CategoryRed, models.CategoryPurple, models.CategoryBlue} {
		assert.Equal(t, 0, snap.Counts[cat], cat)
	}
}

func TestRecord_UnknownCategoriesIgnored(t *testing.T) {
	s := newTestSnapshotStore(t)
	ctx := context.Background()

	_, err := s.Record(ctx, ts(1), map[string]int{"black": 1, "orange": 99})
	require.NoError(t, err)

	var rows int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM player_counts WHERE category = 'orange'`).Scan(&rows))
	assert.Zero(t, rows)

	snap, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Counts.Total())
}

func TestLatest_Empty(t *testing.T) {
	s := newTestSnapshotStore(t)
	snap, err := s.Latest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestLatest_ReturnsMaxTs(t *testing.T) {
	s := newTestSnapshotStore(t)
	ctx := context.Background()
	for _, v := range []int64{300, 100, 200} {
		_, err := s.Record(ctx, ts(v), map[string]int{"green": int(v)})
		require.NoError(t, err)
	}

	snap, err := s.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, int64(300), snap.Ts)
	assert.Equal(t, 300, snap.Counts[models.CategoryGreen])
}

func seedNearest(t *testing.T, s *SnapshotStore) {
	t.Helper()
	for _, v := range []int64{100, 200, 300} {
		_, err := s.Record(context.Background(), ts(v), map[string]int{"black": int(v)})
		require.NoError(t, err)
	}
}

func TestAtOrBefore(t *testing.T) {
	s := newTestSnapshotStore(t)
	seedNearest(t, s)
	ctx := context.Background()

	snap, err := s.AtOrBefore(ctx, 250)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, int64(200), snap.Ts)
	assert.Equal(t, 200, snap.Counts[models.CategoryBlack])

	snap, err = s.AtOrBefore(ctx, 100)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, int64(100), snap.Ts)

	snap, err = s.AtOrBefore(ctx, 50)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestBefore(t *testing.T) {
	s := newTestSnapshotStore(t)
	seedNearest(t, s)
	ctx := context.Background()

	snap, err := s.Before(ctx, 200)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, int64(100), snap.Ts)

	snap, err = s.Before(ctx, 100)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestSeries_AlignedAndInclusive(t *testing.T) {
	s := newTestSnapshotStore(t)
	ctx := context.Background()
	_, err := s.Record(ctx, ts(100), map[string]int{"black": 1, "red": 2})
	require.NoError(t, err)
	_, err = s.Record(ctx, ts(200), map[string]int{"black": 3})
	require.NoError(t, err)
	_, err = s.Record(ctx, ts(300), map[string]int{"black": 5})
	require.NoError(t, err)

	series, err := s.Series(ctx, 100, 200)
	require.NoError(t, err)
	assert.Equal(t, []int64{100, 200}, series.Timestamps)
	assert.Len(t, series.Values, 7)
	for _, cat := range models.Categories() {
		assert.Len(t, series.Values[cat], 2, cat)
	}
	assert.Equal(t, []int{1, 3}, series.Values[models.CategoryBlack])
	assert.Equal(t, []int{2, 0}, series.Values[models.CategoryRed])
	assert.Equal(t, []int{0, 0}, series.Values[models.CategoryBlue])
}

func TestSeries_MissingRowsReadAsZero(t *testing.T) {
	s := newTestSnapshotStore(t)
	ctx := context.Background()
	_, err := s.db.Exec(`INSERT INTO player_counts (ts, category, count) VALUES (10, 'black', 4)`)
	require.NoError(t, err)

	series, err := s.Series(ctx, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, []int64{10}, series.Timestamps)
	assert.Equal(t, []int{4}, series.Values[models.CategoryBlack])
	assert.Equal(t, []int{0}, series.Values[models.CategoryGreen])

	snap, err := s.AtOrBefore(ctx, 10)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 0, snap.Counts[models.CategoryGreen])
}

func TestSeries_EmptyRange(t *testing.T) {
	s := newTestSnapshotStore(t)
	seedNearest(t, s)

	series, err := s.Series(context.Background(), 400, 500)
	require.NoError(t, err)
	assert.Empty(t, series.Timestamps)
	assert.True(t, series.Empty())
	for _, cat := range models.Categories() {
		assert.NotNil(t, series.Values[cat])
		assert.Empty(t, series.Values[cat])
	}
}

func TestRecord_ReadersNeverSeeTornSnapshot(t *testing.T) {
	s := newTestSnapshotStore(t)
	ctx := context.Background()

	all := func(v int) map[string]int {
		m := make(map[string]int)
		for _, cat := range models.Categories() {
			m[string(cat)] = v
		}
		return m
	}
	_, err := s.Record(ctx, ts(100), all(1))
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			_, err := s.Record(ctx, ts(100), all(1+i%2))
			assert.NoError(t, err)
		}
	}()

	for i := 0; i < 50; i++ {
		snap, err := s.AtOrBefore(ctx, 100)
		require.NoError(t, err)
		require.NotNil(t, snap)
		first := snap.Counts[models.CategoryBlack]
		for _, cat := range models.Categories() {
			assert.Equal(t, first, snap.Counts[cat], "torn snapshot")
		}
	}
	wg.Wait()
}

func TestStore_ClosedDatabaseIsUnavailable(t *testing.T) {
	db := openTestDB(t)
	s := NewSnapshotStore(db)
	require.NoError(t, db.Close())

	_, err := s.Latest(context.Background())
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = s.Record(context.Background(), ts(1), nil)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
