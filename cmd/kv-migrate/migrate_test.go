package main

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fystack/kvstream/pkg/common/config"
	"github.com/fystack/kvstream/pkg/kvstore"
	"github.com/fystack/kvstream/pkg/ratelimiter"
	"github.com/fystack/kvstream/pkg/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMigrator(t *testing.T) (*migrator, *kvstore.MemoryStore, *kvstore.MemoryStore) {
	t.Helper()
	src := kvstore.NewMemoryStore()
	dst := kvstore.NewMemoryStore()
	w := stream.NewWrapper()
	require.NoError(t, w.Register("src", stream.Binding{Store: src}))
	require.NoError(t, w.Register("dst", stream.Binding{Store: dst}))
	t.Cleanup(func() { _ = w.Close() })
	return &migrator{wrapper: w, from: "src", to: "dst", quiet: true}, src, dst
}

func TestMigrate_CopiesPrefixes(t *testing.T) {
	m, src, dst := newMigrator(t)
	m.verify = true
	require.NoError(t, src.Set("a/1", []byte("one")))
	require.NoError(t, src.Set("a/2", []byte("")))
	require.NoError(t, src.Set("b/1", []byte("bee")))
	require.NoError(t, src.Set("c/1", []byte("skip")))
	require.NoError(t, dst.Set("a/1", []byte("a much longer old value")))

	res, err := m.run(context.Background(), []string{"a/", "b/", "a/1"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.total)
	assert.Equal(t, 3, res.copied)
	assert.Equal(t, int64(6), res.bytes)

	for key, want := range map[string]string{"a/1": "one", "a/2": "", "b/1": "bee"} {
		got, err := dst.Get(key)
		require.NoError(t, err, key)
		assert.Equal(t, want, string(got), key)
	}
	_, err = dst.Get("c/1")
	assert.ErrorIs(t, err, kvstore.ErrKeyNotFound)
}

func TestMigrate_DryRunWritesNothing(t *testing.T) {
	m, src, dst := newMigrator(t)
	m.dryRun = true
	require.NoError(t, src.Set("a/1", []byte("one")))

	res, err := m.run(context.Background(), []string{""})
	require.NoError(t, err)
	assert.Equal(t, 1, res.total)
	assert.Equal(t, 0, res.copied)

	_, err = dst.Get("a/1")
	assert.ErrorIs(t, err, kvstore.ErrKeyNotFound)
}

func TestMigrate_UnknownScheme(t *testing.T) {
	m, _, _ := newMigrator(t)
	m.from = "nope"
	_, err := m.run(context.Background(), []string{""})
	assert.ErrorIs(t, err, stream.ErrUnknownScheme)
}

func TestOnlySchemes(t *testing.T) {
	cfg, err := config.Parse([]byte(`
environment: development
default_scheme: temp
schemes:
  temp:
    type: memory
  apc:
    type: cache
  shared:
    type: redis
    redis:
      url: localhost:6379
`))
	require.NoError(t, err)

	trimmed, err := onlySchemes(cfg, "temp", "apc")
	require.NoError(t, err)
	assert.Equal(t, []string{"apc", "temp"}, trimmed.Schemes.Names())
	assert.Equal(t, "temp", trimmed.DefaultScheme)
	assert.Len(t, cfg.Schemes.Items, 3, "original config untouched")

	_, err = onlySchemes(cfg, "temp", "missing")
	assert.Error(t, err)
}

func TestMigrate_RateLimited(t *testing.T) {
	m, src, _ := newMigrator(t)
	m.limiter = ratelimiter.New(20, 1)
	for _, k := range []string{"k1", "k2", "k3"} {
		require.NoError(t, src.Set(k, []byte(k)))
	}

	start := time.Now()
	res, err := m.run(context.Background(), []string{""})
	require.NoError(t, err)
	assert.Equal(t, 3, res.copied)
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestMigrate_CancelledContext(t *testing.T) {
	m, src, dst := newMigrator(t)
	m.limiter = ratelimiter.New(1, 1)
	require.NoError(t, src.Set("k1", []byte("1")))
	require.NoError(t, src.Set("k2", []byte("2")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.run(ctx, []string{""})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = dst.Get("k2")
	assert.ErrorIs(t, err, kvstore.ErrKeyNotFound)
}

func TestMigrate_ParallelWorkers(t *testing.T) {
	m, src, dst := newMigrator(t)
	m.workers = 8
	m.verify = true
	for i := 0; i < 250; i++ {
		require.NoError(t, src.Set(fmt.Sprintf("bulk/%03d", i), []byte(fmt.Sprintf("value-%d", i))))
	}

	res, err := m.run(context.Background(), []string{"bulk/"})
	require.NoError(t, err)
	assert.Equal(t, 250, res.copied)

	pairs, err := dst.List("bulk/")
	require.NoError(t, err)
	assert.Len(t, pairs, 250)
}
