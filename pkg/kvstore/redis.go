package kvstore

import (
	"errors"
	"sort"

	"github.com/fystack/kvstream/pkg/common/enum"
	"github.com/fystack/kvstream/pkg/common/stringutils"
	"github.com/fystack/kvstream/pkg/infra"
)

// RedisStore shares values between processes through a redis server.
type RedisStore struct {
	client infra.RedisClient
	prefix string
}

func NewRedisStore(client infra.RedisClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) GetName() string {
	return string(enum.KVStoreTypeRedis)
}

func (r *RedisStore) Get(key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	return r.client.Get(stringutils.JoinKey(r.prefix, key))
}

func (r *RedisStore) Set(key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	return r.client.Set(stringutils.JoinKey(r.prefix, key), value)
}

func (r *RedisStore) Delete(key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	return r.client.Del(stringutils.JoinKey(r.prefix, key))
}

func (r *RedisStore) List(prefix string) ([]*infra.KVPair, error) {
	pattern := escapeGlob(stringutils.JoinKey(r.prefix, prefix)) + "*"
	keys, err := r.client.Keys(pattern)
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)

	result := make([]*infra.KVPair, 0, len(keys))
	for _, k := range keys {
		v, err := r.client.Get(k)
		if errors.Is(err, ErrKeyNotFound) {
			// deleted between SCAN and GET
			continue
		}
		if err != nil {
			return nil, err
		}
		result = append(result, &infra.KVPair{Key: stringutils.TrimKey(r.prefix, k), Value: v})
	}
	return result, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

// escapeGlob quotes the characters redis treats as glob syntax in MATCH patterns.
func escapeGlob(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', ']', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
