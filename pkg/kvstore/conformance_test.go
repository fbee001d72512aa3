package kvstore

import (
	"testing"

	"github.com/fystack/kvstream/pkg/infra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStoreContract exercises the behaviour every backend must share.
// Keys are namespaced so shared servers can be reused between runs.
func testStoreContract(t *testing.T, store infra.KVStore) {
	t.Helper()

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, store.Set("contract/a/b.txt", []byte("Hello")))
		got, err := store.Get("contract/a/b.txt")
		require.NoError(t, err)
		assert.Equal(t, []byte("Hello"), got)
	})

	t.Run("set replaces whole value", func(t *testing.T) {
		require.NoError(t, store.Set("contract/replace", []byte("a long value")))
		require.NoError(t, store.Set("contract/replace", []byte("short")))
		got, err := store.Get("contract/replace")
		require.NoError(t, err)
		assert.Equal(t, []byte("short"), got)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := store.Get("contract/never-written")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("empty key", func(t *testing.T) {
		_, err := store.Get("")
		assert.ErrorIs(t, err, ErrKeyEmpty)
		assert.ErrorIs(t, store.Set("", []byte("x")), ErrKeyEmpty)
		assert.ErrorIs(t, store.Delete(""), ErrKeyEmpty)
	})

	t.Run("value is copied", func(t *testing.T) {
		buf := []byte("abc")
		require.NoError(t, store.Set("contract/copy", buf))
		buf[0] = 'z'
		got, err := store.Get("contract/copy")
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), got)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Set("contract/delete", []byte("x")))
		require.NoError(t, store.Delete("contract/delete"))
		_, err := store.Get("contract/delete")
		assert.ErrorIs(t, err, ErrKeyNotFound)
		assert.NoError(t, store.Delete("contract/delete"), "deleting twice is not an error")
	})

	t.Run("list by prefix", func(t *testing.T) {
		require.NoError(t, store.Set("contract/list/1", []byte("one")))
		require.NoError(t, store.Set("contract/list/2", []byte("two")))
		require.NoError(t, store.Set("contract/other", []byte("x")))

		pairs, err := store.List("contract/list/")
		require.NoError(t, err)
		got := map[string]string{}
		for _, p := range pairs {
			got[p.Key] = string(p.Value)
		}
		assert.Equal(t, map[string]string{
			"contract/list/1": "one",
			"contract/list/2": "two",
		}, got)
	})
}
