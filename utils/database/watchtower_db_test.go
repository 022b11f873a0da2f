package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *WatchtowerStore {
	t.Helper()
	store, err := InitWatchtowerStore(filepath.Join(t.TempDir(), "watchtower.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLookupByDiscordID(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.InsertLinkedUser("76561198000000001", "123", "Slayer", 0))

	steamID, ign, found, err := store.LookupByDiscordID("123")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "76561198000000001", steamID)
	assert.Equal(t, "Slayer", ign)

	_, _, found, err = store.LookupByDiscordID("999")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLookupBySteamID(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.InsertLinkedUser("76561198000000002", "456", "Ghost", 0))

	discordID, ign, found, err := store.LookupBySteamID("76561198000000002")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "456", discordID)
	assert.Equal(t, "Ghost", ign)

	_, _, found, err = store.LookupBySteamID("76561198999999999")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCountInfractions(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().Unix()
	require.NoError(t, store.InsertInfraction("76561198000000003", "789", "Griefing", now))
	require.NoError(t, store.InsertInfraction("76561198000000003", "789", "Spam", now))

	count, err := store.CountInfractionsBySteamID("76561198000000003", "Griefing")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = store.CountInfractionsBySteamID("76561198000000003", "")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = store.CountInfractionsByDiscordID("789", "Spam")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = store.CountInfractionsBySteamID("76561198000000003", "Cheating")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestTotalPoints(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.InsertLinkedUser("76561198000000004", "321", "Nomad", 5))

	points, err := store.TotalPointsBySteamID("76561198000000004")
	require.NoError(t, err)
	assert.Equal(t, 5, points)

	points, err = store.TotalPointsByDiscordID("321")
	require.NoError(t, err)
	assert.Equal(t, 5, points)

	points, err = store.TotalPointsBySteamID("76561198999999999")
	require.NoError(t, err)
	assert.Equal(t, 0, points)
}
