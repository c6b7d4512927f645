package storage

import (
	"context"
	"database/sql"
	"errors"
	"pcsd/internal/models"
)

type MenuStoreInterface interface {
	Upsert(ctx context.Context, rec models.MenuRecord) error
	Get(ctx context.Context, messageID string) (*models.MenuRecord, error)
	ListAll(ctx context.Context) ([]models.MenuRecord, error)
	Delete(ctx context.Context, messageID string) error
}

// MenuStore keeps the current display preferences per message. Range values
// are stored as given; callers validate them.
type MenuStore struct {
	db *sql.DB
}

func NewMenuStore(db *sql.DB) *MenuStore {
	return &MenuStore{db: db}
}

func (m *MenuStore) Upsert(ctx context.Context, rec models.MenuRecord) error {
	err := runTx(ctx, m.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO player_count_menus (message_id, channel_id, guild_id, include_graph, range_hours)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(message_id) DO UPDATE SET
				channel_id = excluded.channel_id,
				guild_id = excluded.guild_id,
				include_graph = excluded.include_graph,
				range_hours = excluded.range_hours`,
			rec.MessageID, rec.ChannelID, rec.GuildID, boolToInt(rec.IncludeGraph), rec.RangeHours)
		return err
	})
	if err != nil {
		return unavailable("menu upsert", err)
	}
	return nil
}

func (m *MenuStore) Get(ctx context.Context, messageID string) (*models.MenuRecord, error) {
	row := m.db.QueryRowContext(ctx,
		`SELECT message_id, channel_id, guild_id, include_graph, range_hours
		 FROM player_count_menus WHERE message_id = ?`, messageID)

	rec, err := scanMenu(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("menu get", err)
	}
	return rec, nil
}

func (m *MenuStore) ListAll(ctx context.Context) ([]models.MenuRecord, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT message_id, channel_id, guild_id, include_graph, range_hours
		 FROM player_count_menus ORDER BY message_id`)
	if err != nil {
		return nil, unavailable("menu list", err)
	}
	defer rows.Close()

	menus := make([]models.MenuRecord, 0)
	for rows.Next() {
		rec, err := scanMenu(rows)
		if err != nil {
			return nil, unavailable("menu list", err)
		}
		menus = append(menus, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("menu list", err)
	}
	return menus, nil
}

func (m *MenuStore) Delete(ctx context.Context, messageID string) error {
	_, err := m.db.ExecContext(ctx, `DELETE FROM player_count_menus WHERE message_id = ?`, messageID)
	if err != nil {
		return unavailable("menu delete", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMenu(r rowScanner) (*models.MenuRecord, error) {
	var (
		rec          models.MenuRecord
		includeGraph int
	)
	if err := r.Scan(&rec.MessageID, &rec.ChannelID, &rec.GuildID, &includeGraph, &rec.RangeHours); err != nil {
		return nil, err
	}
	rec.IncludeGraph = includeGraph != 0
	return &rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
