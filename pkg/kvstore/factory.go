package kvstore

import (
	"fmt"

	"github.com/fystack/kvstream/pkg/common/config"
	"github.com/fystack/kvstream/pkg/common/enum"
	"github.com/fystack/kvstream/pkg/common/logger"
	"github.com/fystack/kvstream/pkg/infra"
	"github.com/fystack/kvstream/pkg/retry"
	"github.com/hashicorp/consul/api"
)

// NewFromConfig constructs an infra.KVStore based on a scheme configuration.
// Networked stores are dialed through retry.Dial using connect.
func NewFromConfig(cfg config.SchemeConfig, connect config.ConnectConfig) (infra.KVStore, error) {
	store, err := newFromConfig(cfg, connect)
	if err != nil {
		return nil, err
	}
	logger.Info("KV store ready", "type", store.GetName())
	return store, nil
}

func newFromConfig(cfg config.SchemeConfig, connect config.ConnectConfig) (infra.KVStore, error) {
	switch cfg.Type {
	case enum.KVStoreTypeMemory:
		return NewMemoryStore(), nil
	case enum.KVStoreTypeCache:
		return NewCacheStore(CacheOptions{
			MaxCost:     cfg.Cache.MaxCost,
			NumCounters: cfg.Cache.NumCounters,
			Codec:       infra.CodecFor(cfg.Cache.Codec),
		})
	case enum.KVStoreTypeBadger:
		return NewBadgerStore(BadgerOptions{
			Directory: cfg.Badger.Directory,
			Prefix:    cfg.Badger.Prefix,
			InMemory:  cfg.Badger.InMemory,
		})
	case enum.KVStoreTypeRedis:
		client, err := retry.Dial("redis", connect, func() (infra.RedisClient, error) {
			return infra.NewRedisClient(cfg.Redis)
		})
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, cfg.Redis.Prefix), nil
	case enum.KVStoreTypeConsul:
		return retry.Dial("consul", connect, func() (*ConsulStore, error) {
			return NewConsulStore(ConsulOptions{
				Scheme:  cfg.Consul.Scheme,
				Address: cfg.Consul.Address,
				Folder:  cfg.Consul.Folder,
				Token:   cfg.Consul.Token,
				HttpAuth: &api.HttpBasicAuth{
					Username: cfg.Consul.HttpAuth.Username,
					Password: cfg.Consul.HttpAuth.Password,
				},
			})
		})
	case enum.KVStoreTypePostgres:
		return retry.Dial("postgres", connect, func() (*PostgresStore, error) {
			return NewPostgresStore(cfg.Postgres.DSN, cfg.Postgres.Table)
		})
	default:
		return nil, fmt.Errorf("unsupported kvstore type: %s", cfg.Type)
	}
}
