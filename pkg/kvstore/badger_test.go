package kvstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgerStore_Contract(t *testing.T) {
	store, err := NewBadgerStore(BadgerOptions{Directory: t.TempDir()})
	if err != nil {
		t.Fatalf("Failed to create BadgerStore: %v", err)
	}
	defer store.Close()

	testStoreContract(t, store)
}

func TestBadgerStore_InMemory(t *testing.T) {
	store, err := NewBadgerStore(BadgerOptions{InMemory: true})
	if err != nil {
		t.Fatalf("Failed to create in-memory BadgerStore: %v", err)
	}
	defer store.Close()

	testStoreContract(t, store)
}

func TestBadgerStore_PrefixIsolation(t *testing.T) {
	dir := t.TempDir()
	store, err := NewBadgerStore(BadgerOptions{Directory: dir, Prefix: "streams"})
	require.NoError(t, err)

	require.NoError(t, store.Set("a/b.txt", []byte("Hello")))

	pairs, err := store.List("")
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "a/b.txt", pairs[0].Key, "prefix must be stripped from listed keys")

	info, err := store.Info()
	require.NoError(t, err)
	e, ok := info.Entry("a/b.txt")
	require.True(t, ok)
	assert.Equal(t, int64(5), e.Size)
	require.NoError(t, store.Close())

	// Reopen without prefix: the raw key carries it.
	raw, err := NewBadgerStore(BadgerOptions{Directory: dir})
	require.NoError(t, err)
	defer raw.Close()

	got, err := raw.Get("streams/a/b.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("Hello"), got)

	_, err = raw.Get("a/b.txt")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestBadgerStore_Persistence(t *testing.T) {
	dir := t.TempDir()

	store, err := NewBadgerStore(BadgerOptions{Directory: dir})
	require.NoError(t, err)
	require.NoError(t, store.Set("persist", []byte("still here")))
	require.NoError(t, store.Close())

	reopened, err := NewBadgerStore(BadgerOptions{Directory: dir})
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get("persist")
	require.NoError(t, err)
	assert.Equal(t, []byte("still here"), got)
}
