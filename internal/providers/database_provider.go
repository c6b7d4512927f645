package providers

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"pcsd/internal/storage"
	"pcsd/internal/structures"
	"time"

	_ "modernc.org/sqlite"
)

// sqliteDSN builds a modernc DSN whose pragmas are applied on every pooled
// connection, not only the first one.
func sqliteDSN(path string, busyTimeout int) string {
	if busyTimeout <= 0 {
		busyTimeout = 10000
	}
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeout))
	q.Add("_pragma", "synchronous(NORMAL)")
	q.Set("_txlock", "immediate")
	return path + "?" + q.Encode()
}

func NewDatabaseProvider(conf *structures.Config, logger Logger) (*sql.DB, error) {
	path := conf.Database.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("database: mkdir: %w", err)
	}

	db, err := sql.Open("sqlite", sqliteDSN(path, conf.Database.BusyTimeout))
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := storage.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("database: migrate: %w", err)
	}

	logger.Infof(TypeApp, "Database opened at %s", path)
	return db, nil
}
