package stream

import (
	"errors"
	"sync"
	"testing"

	"github.com/fystack/kvstream/pkg/common/enum"
	"github.com/fystack/kvstream/pkg/events"
	"github.com/fystack/kvstream/pkg/kvstore"
	"github.com/stretchr/testify/require"
)

// newTestWrapper binds "temp" to a fresh memory store with the given policy.
func newTestWrapper(t *testing.T, policy enum.MissingKeyPolicy, opts ...Option) (*Wrapper, *kvstore.MemoryStore) {
	t.Helper()
	store := kvstore.NewMemoryStore()
	w := NewWrapper(opts...)
	require.NoError(t, w.Register("temp", Binding{Store: store, MissingKey: policy}))
	t.Cleanup(func() { _ = w.Close() })
	return w, store
}

func mustOpen(t *testing.T, w *Wrapper, id, mode string) *Stream {
	t.Helper()
	s, err := w.Open(id, mode)
	require.NoError(t, err)
	return s
}

var errStoreDown = errors.New("store down")

// failingStore fails every Set once armed.
type failingStore struct {
	*kvstore.MemoryStore
	failSet bool
}

func (f *failingStore) Set(key string, value []byte) error {
	if f.failSet {
		return errStoreDown
	}
	return f.MemoryStore.Set(key, value)
}

// gatedStore holds every Get until n Gets are in flight, so concurrent
// writers all read the same old value before any of them stores.
type gatedStore struct {
	*kvstore.MemoryStore
	gate sync.WaitGroup
}

func newGatedStore(n int) *gatedStore {
	g := &gatedStore{MemoryStore: kvstore.NewMemoryStore()}
	g.gate.Add(n)
	return g
}

func (g *gatedStore) Get(key string) ([]byte, error) {
	v, err := g.MemoryStore.Get(key)
	g.gate.Done()
	g.gate.Wait()
	return v, err
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []events.WriteEvent
	err    error
	closed bool
}

func (r *recordingEmitter) EmitWrite(e events.WriteEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingEmitter) Close() {
	r.closed = true
}
