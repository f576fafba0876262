package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenSlot(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "horizon"))
	require.NoError(t, err)

	assert.Empty(t, store.LoadToken(), "no token means unauthenticated, not an error")

	require.NoError(t, store.SaveToken("abc.def.ghi"))
	assert.Equal(t, "abc.def.ghi", store.LoadToken())
}

func TestCacheSlot(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "horizon"))
	require.NoError(t, err)

	_, err = store.LoadCache()
	assert.Error(t, err)

	require.NoError(t, store.SaveCache([]byte(`{"countries":{}}`)))
	data, err := store.LoadCache()
	require.NoError(t, err)
	assert.JSONEq(t, `{"countries":{}}`, string(data))
}

func TestClearRemovesBothSlots(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "horizon"))
	require.NoError(t, err)

	require.NoError(t, store.SaveToken("tok"))
	require.NoError(t, store.SaveCache([]byte("{}")))

	require.NoError(t, store.Clear())
	assert.Empty(t, store.LoadToken())
	_, err = store.LoadCache()
	assert.Error(t, err)

	// Clearing an already-empty store is fine.
	assert.NoError(t, store.Clear())
}
