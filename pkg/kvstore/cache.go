package kvstore

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/ristretto/v2"
	"github.com/fystack/kvstream/pkg/common/enum"
	"github.com/fystack/kvstream/pkg/common/logger"
	"github.com/fystack/kvstream/pkg/infra"
)

const (
	DefaultCacheMaxCost     = 64 << 20
	DefaultCacheNumCounters = 1e5
	cacheBufferItems        = 64
)

type CacheOptions struct {
	// MaxCost bounds the total serialized size held by the cache.
	MaxCost int64
	// NumCounters sizes the admission sketch; ~10x the expected entry count.
	NumCounters int64
	Codec       infra.Codec
}

// CacheStore is a process-wide shared cache. Values are serialized through
// the codec before they are handed to ristretto, and metadata for every live
// entry is tracked alongside so Info can report it.
type CacheStore struct {
	cache *ristretto.Cache[string, []byte]
	codec infra.Codec
	start time.Time

	mu     sync.Mutex
	meta   map[string]*infra.EntryInfo
	byHash map[uint64]string

	hits   atomic.Uint64
	misses atomic.Uint64
}

func cacheKeyToHash(key string) (uint64, uint64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return xxhash.Sum64String(key), h.Sum64()
}

func NewCacheStore(opts CacheOptions) (*CacheStore, error) {
	if opts.MaxCost <= 0 {
		opts.MaxCost = DefaultCacheMaxCost
	}
	if opts.NumCounters <= 0 {
		opts.NumCounters = DefaultCacheNumCounters
	}
	if opts.Codec == nil {
		opts.Codec = infra.Gob
	}

	s := &CacheStore{
		codec:  opts.Codec,
		start:  time.Now(),
		meta:   make(map[string]*infra.EntryInfo),
		byHash: make(map[uint64]string),
	}

	cache, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters:        opts.NumCounters,
		MaxCost:            opts.MaxCost,
		BufferItems:        cacheBufferItems,
		IgnoreInternalCost: true,
		KeyToHash:          cacheKeyToHash,
		OnEvict:            s.forget,
		OnReject:           s.forget,
	})
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	s.cache = cache
	return s, nil
}

func (s *CacheStore) forget(item *ristretto.Item[[]byte]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if key, ok := s.byHash[item.Key]; ok {
		logger.Debug("Cache entry dropped", "key", key, "cost", item.Cost)
		delete(s.meta, key)
		delete(s.byHash, item.Key)
	}
}

func (s *CacheStore) GetName() string {
	return string(enum.KVStoreTypeCache)
}

func (s *CacheStore) Get(key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	data, ok := s.cache.Get(key)
	if !ok {
		s.misses.Add(1)
		return nil, ErrKeyNotFound
	}

	var value []byte
	if err := s.codec.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}

	s.hits.Add(1)
	s.mu.Lock()
	if e := s.meta[key]; e != nil {
		e.Hits++
		e.AccessedAt = time.Now()
	}
	s.mu.Unlock()
	return value, nil
}

// Set serializes value and replaces whatever the cache holds for key. The
// call waits for the cache to apply the write so a following Get sees it.
func (s *CacheStore) Set(key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}

	data, err := s.codec.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	h, _ := cacheKeyToHash(key)
	now := time.Now()
	s.mu.Lock()
	e, ok := s.meta[key]
	if !ok {
		e = &infra.EntryInfo{Key: key, CreatedAt: now}
		s.meta[key] = e
		s.byHash[h] = key
	}
	e.Size = int64(len(data))
	e.ModifiedAt = now
	s.mu.Unlock()

	if !s.cache.Set(key, data, int64(len(data))) {
		s.drop(key, h)
		return ErrCacheRejected
	}
	s.cache.Wait()

	if _, found := s.cache.Get(key); !found {
		s.drop(key, h)
		return ErrCacheRejected
	}
	return nil
}

func (s *CacheStore) drop(key string, h uint64) {
	s.mu.Lock()
	delete(s.meta, key)
	delete(s.byHash, h)
	s.mu.Unlock()
}

func (s *CacheStore) Delete(key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	s.cache.Del(key)
	s.cache.Wait()
	h, _ := cacheKeyToHash(key)
	s.drop(key, h)
	return nil
}

func (s *CacheStore) List(prefix string) ([]*infra.KVPair, error) {
	s.mu.Lock()
	keys := make([]string, 0, len(s.meta))
	for k := range s.meta {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	s.mu.Unlock()
	sort.Strings(keys)

	result := make([]*infra.KVPair, 0, len(keys))
	for _, k := range keys {
		data, ok := s.cache.Get(k)
		if !ok {
			continue
		}
		var value []byte
		if err := s.codec.Unmarshal(data, &value); err != nil {
			return nil, fmt.Errorf("decode %s: %w", k, err)
		}
		result = append(result, &infra.KVPair{Key: k, Value: value})
	}
	return result, nil
}

func (s *CacheStore) Info() (*infra.StoreInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := &infra.StoreInfo{
		Name:      s.GetName(),
		StartTime: s.start,
		Hits:      s.hits.Load(),
		Misses:    s.misses.Load(),
		Entries:   make([]infra.EntryInfo, 0, len(s.meta)),
	}
	for _, e := range s.meta {
		info.Entries = append(info.Entries, *e)
	}
	sort.Slice(info.Entries, func(i, j int) bool { return info.Entries[i].Key < info.Entries[j].Key })
	return info, nil
}

func (s *CacheStore) Close() error {
	s.cache.Close()
	s.mu.Lock()
	s.meta = map[string]*infra.EntryInfo{}
	s.byHash = map[uint64]string{}
	s.mu.Unlock()
	return nil
}
