package storage

import (
	"context"
	"database/sql"
	"strings"
)

const schema = `
CREATE TABLE IF NOT EXISTS player_counts (
	ts       INTEGER NOT NULL,
	category TEXT    NOT NULL,
	count    INTEGER NOT NULL,
	PRIMARY KEY (ts, category)
);

CREATE INDEX IF NOT EXISTS idx_player_counts_ts ON player_counts(ts);

CREATE TABLE IF NOT EXISTS player_count_menus (
	message_id    TEXT PRIMARY KEY,
	channel_id    TEXT    NOT NULL,
	guild_id      TEXT    NOT NULL,
	include_graph INTEGER NOT NULL DEFAULT 0,
	range_hours   INTEGER NOT NULL DEFAULT 24
);
`

// Migrate creates the tables and indexes if they are missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return unavailable("migrate", err)
		}
	}
	return nil
}
