package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoltKVRoundTrip(t *testing.T) {
	kv, err := NewBoltKV(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer kv.Close()

	_, err = kv.Get("missing")
	assert.Equal(t, ErrNotFound, err)

	require.NoError(t, kv.Set("key", `{"some": "json"}`))

	value, err := kv.Get("key")
	require.NoError(t, err)
	assert.Equal(t, `{"some": "json"}`, value)

	require.NoError(t, kv.Set("key", "overwritten"))
	value, err = kv.Get("key")
	require.NoError(t, err)
	assert.Equal(t, "overwritten", value)

	require.NoError(t, kv.Remove("key"))
	_, err = kv.Get("key")
	assert.Equal(t, ErrNotFound, err)

	// Removing an absent key is not an error.
	require.NoError(t, kv.Remove("key"))
}

func TestBoltKVPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	kv, err := NewBoltKV(path)
	require.NoError(t, err)
	require.NoError(t, kv.Set(KeyCollection, "[]"))
	require.NoError(t, kv.Close())

	reopened, err := NewBoltKV(path)
	require.NoError(t, err)
	defer reopened.Close()

	value, err := reopened.Get(KeyCollection)
	require.NoError(t, err)
	assert.Equal(t, "[]", value)
}
