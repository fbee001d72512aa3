package kvstore

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fystack/kvstream/pkg/common/enum"
	"github.com/fystack/kvstream/pkg/infra"
)

// MemoryStore keeps values in a process-local map. One instance is meant to
// be built at startup and shared by every stream bound to it.
// Values are copied on the way in and out; nothing is serialized and nothing expires.
type MemoryStore struct {
	mu      sync.RWMutex
	data    map[string][]byte
	meta    map[string]*infra.EntryInfo
	start   time.Time
	hits    uint64
	misses  uint64
	closed  bool
	nowFunc func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:    make(map[string][]byte),
		meta:    make(map[string]*infra.EntryInfo),
		start:   time.Now(),
		nowFunc: time.Now,
	}
}

func (m *MemoryStore) GetName() string {
	return string(enum.KVStoreTypeMemory)
}

func (m *MemoryStore) Get(key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	// write lock: access metadata is updated on every read
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}

	value, ok := m.data[key]
	if !ok {
		m.misses++
		return nil, ErrKeyNotFound
	}
	m.hits++
	if e := m.meta[key]; e != nil {
		e.Hits++
		e.AccessedAt = m.nowFunc()
	}
	return cloneBytes(value), nil
}

func (m *MemoryStore) Set(key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	now := m.nowFunc()
	m.data[key] = cloneBytes(value)
	e, ok := m.meta[key]
	if !ok {
		e = &infra.EntryInfo{Key: key, CreatedAt: now}
		m.meta[key] = e
	}
	e.Size = int64(len(value))
	e.ModifiedAt = now
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	delete(m.meta, key)
	return nil
}

func (m *MemoryStore) List(prefix string) ([]*infra.KVPair, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}

	result := make([]*infra.KVPair, 0)
	for k, v := range m.data {
		if strings.HasPrefix(k, prefix) {
			result = append(result, &infra.KVPair{Key: k, Value: cloneBytes(v)})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result, nil
}

func (m *MemoryStore) Info() (*infra.StoreInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info := &infra.StoreInfo{
		Name:      m.GetName(),
		StartTime: m.start,
		Hits:      m.hits,
		Misses:    m.misses,
		Entries:   make([]infra.EntryInfo, 0, len(m.meta)),
	}
	for _, e := range m.meta {
		info.Entries = append(info.Entries, *e)
	}
	sort.Slice(info.Entries, func(i, j int) bool { return info.Entries[i].Key < info.Entries[j].Key })
	return info, nil
}

// Close drops every value. The store cannot be used afterwards.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.data = map[string][]byte{}
	m.meta = map[string]*infra.EntryInfo{}
	return nil
}
