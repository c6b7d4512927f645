package storage

import (
	"context"
	"database/sql"
	"pcsd/internal/models"
	"time"
)

type SnapshotStoreInterface interface {
	Record(ctx context.Context, ts *int64, counts map[string]int) (int64, error)
	Latest(ctx context.Context) (*models.Snapshot, error)
	AtOrBefore(ctx context.Context, ts int64) (*models.Snapshot, error)
	Before(ctx context.Context, ts int64) (*models.Snapshot, error)
	Series(ctx context.Context, start, end int64) (*models.Series, error)
}

// SnapshotStore keeps one row per (ts, category) in SQLite.
type SnapshotStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db, now: time.Now}
}

// Record replaces every row stored at ts with one row per category and
// returns the timestamp used. A nil ts means the current second.
func (s *SnapshotStore) Record(ctx context.Context, ts *int64, counts map[string]int) (int64, error) {
	var at int64
	if ts != nil {
		at = *ts
	} else {
		at = s.now().Unix()
	}
	normalized := models.NormalizeCounts(counts)

	err := runTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM player_counts WHERE ts = ?`, at); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO player_counts (ts, category, count) VALUES (?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, cat := range models.Categories() {
			if _, err := stmt.ExecContext(ctx, at, string(cat), normalized[cat]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, unavailable("record", err)
	}
	return at, nil
}

func (s *SnapshotStore) Latest(ctx context.Context) (*models.Snapshot, error) {
	return s.snapshotWhere(ctx, "latest",
		`SELECT ts, category, count FROM player_counts
		 WHERE ts = (SELECT MAX(ts) FROM player_counts)`)
}

// AtOrBefore returns the snapshot with the greatest stored ts <= ts.
func (s *SnapshotStore) AtOrBefore(ctx context.Context, ts int64) (*models.Snapshot, error) {
	return s.snapshotWhere(ctx, "at or before",
		`SELECT ts, category, count FROM player_counts
		 WHERE ts = (SELECT MAX(ts) FROM player_counts WHERE ts <= ?)`, ts)
}

// Before returns the snapshot with the greatest stored ts < ts.
func (s *SnapshotStore) Before(ctx context.Context, ts int64) (*models.Snapshot, error) {
	return s.snapshotWhere(ctx, "before",
		`SELECT ts, category, count FROM player_counts
		 WHERE ts = (SELECT MAX(ts) FROM player_counts WHERE ts < ?)`, ts)
}

// snapshotWhere resolves the target ts and reads its rows in one statement,
// so a concurrent Record at the same ts is seen either entirely or not at all.
func (s *SnapshotStore) snapshotWhere(ctx context.Context, op, query string, args ...any) (*models.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable(op, err)
	}
	defer rows.Close()

	var snap *models.Snapshot
	for rows.Next() {
		var (
			ts       int64
			category string
			count    int
		)
		if err := rows.Scan(&ts, &category, &count); err != nil {
			return nil, unavailable(op, err)
		}
		if snap == nil {
			snap = &models.Snapshot{Ts: ts, Counts: models.NewCounts()}
		}
		if cat, ok := models.ParseCategory(category); ok {
			snap.Counts[cat] = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(op, err)
	}
	return snap, nil
}

// Series returns every stored snapshot with start <= ts <= end in ascending order.
func (s *SnapshotStore) Series(ctx context.Context, start, end int64) (*models.Series, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ts, category, count FROM player_counts
		 WHERE ts BETWEEN ? AND ?
		 ORDER BY ts`, start, end)
	if err != nil {
		return nil, unavailable("series", err)
	}
	defer rows.Close()

	series := models.NewSeries(0)
	var (
		current models.Counts
		curTs   int64
	)
	for rows.Next() {
		var (
			ts       int64
			category string
			count    int
		)
		if err := rows.Scan(&ts, &category, &count); err != nil {
			return nil, unavailable("series", err)
		}
		if current == nil || ts != curTs {
			if current != nil {
				series.Append(curTs, current)
			}
			current = models.NewCounts()
			curTs = ts
		}
		if cat, ok := models.ParseCategory(category); ok {
			current[cat] = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("series", err)
	}
	if current != nil {
		series.Append(curTs, current)
	}
	return series, nil
}
