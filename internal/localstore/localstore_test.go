package localstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPutGetRoundTrip(t *testing.T) {
	store := openTestStore(t)

	type preset struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, store.Put("test_key", preset{Name: "high priority", Count: 3}))

	var got preset
	require.NoError(t, store.Get("test_key", &got))
	assert.Equal(t, preset{Name: "high priority", Count: 3}, got)
}

func TestGetMissingKey(t *testing.T) {
	store := openTestStore(t)

	var out string
	err := store.Get("never_written", &out)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPutOverwrites(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Put(KeySessionToken, "first"))
	require.NoError(t, store.Put(KeySessionToken, "second"))

	var token string
	require.NoError(t, store.Get(KeySessionToken, &token))
	assert.Equal(t, "second", token)
}

func TestDelete(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Put(KeyRecentSearches, []string{"login bug"}))
	require.NoError(t, store.Delete(KeyRecentSearches))

	var out []string
	assert.ErrorIs(t, store.Get(KeyRecentSearches, &out), ErrNotFound)

	// Deleting again is a no-op, not an error.
	assert.NoError(t, store.Delete(KeyRecentSearches))
}

func TestReopenPersists(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, store.Put(KeySessionToken, "persisted"))
	require.NoError(t, store.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	var token string
	require.NoError(t, reopened.Get(KeySessionToken, &token))
	assert.Equal(t, "persisted", token)
}
