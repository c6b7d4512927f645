package storage

import (
	"context"
	"pcsd/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMenuStore_UpsertAndGet(t *testing.T) {
	m := NewMenuStore(openTestDB(t))
	ctx := context.Background()

	rec := models.MenuRecord{MessageID: "m1", ChannelID: "c1", GuildID: "g1", IncludeGraph: true, RangeHours: 48}
	require.NoError(t, m.Upsert(ctx, rec))

	got, err := m.Get(ctx, "m1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec, *got)
}

func TestMenuStore_UpsertOverwrites(t *testing.T) {
	m := NewMenuStore(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, m.Upsert(ctx, models.MenuRecord{MessageID: "m1", ChannelID: "c1", GuildID: "g1", IncludeGraph: true, RangeHours: 48}))
	require.NoError(t, m.Upsert(ctx, models.MenuRecord{MessageID: "m1", ChannelID: "c2", GuildID: "g2", IncludeGraph: false, RangeHours: 6}))

	got, err := m.Get(ctx, "m1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.MenuRecord{MessageID: "m1", ChannelID: "c2", GuildID: "g2", IncludeGraph: false, RangeHours: 6}, *got)

	all, err := m.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMenuStore_DoesNotValidateRange(t *testing.T) {
	m := NewMenuStore(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, m.Upsert(ctx, models.MenuRecord{MessageID: "odd", RangeHours: 5}))
	got, err := m.Get(ctx, "odd")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 5, got.RangeHours)
}

func TestMenuStore_GetMissing(t *testing.T) {
	m := NewMenuStore(openTestDB(t))
	got, err := m.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMenuStore_ListAllAndDelete(t *testing.T) {
	m := NewMenuStore(openTestDB(t))
	ctx := context.Background()

	all, err := m.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, m.Upsert(ctx, models.MenuRecord{MessageID: "b", RangeHours: 24}))
	require.NoError(t, m.Upsert(ctx, models.MenuRecord{MessageID: "a", RangeHours: 12}))

	all, err = m.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].MessageID)
	assert.Equal(t, "b", all[1].MessageID)

	require.NoError(t, m.Delete(ctx, "a"))
	require.NoError(t, m.Delete(ctx, "missing"))

	got, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, got)

	all, err = m.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
