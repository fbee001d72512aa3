package infra

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/fystack/kvstream/pkg/common/config"
	"github.com/fystack/kvstream/pkg/common/logger"
	"github.com/redis/go-redis/v9"
)

const redisScanCount = 256

// RedisClient is a custom interface that abstracts the Redis client methods.
type RedisClient interface {
	GetClient() *redis.Client
	Set(key string, value []byte) error
	Get(key string) ([]byte, error)
	Del(keys ...string) error
	Keys(pattern string) ([]string, error)
	Close() error
}

// RedisWrapper is a struct that implements the RedisClient interface using a Redis client pointer.
type RedisWrapper struct {
	client *redis.Client
}

// NewRedisClient dials redis and verifies connectivity with a PING.
func NewRedisClient(cfg config.RedisConfig) (RedisClient, error) {
	// Compute pool size based on CPU
	cpus := runtime.GOMAXPROCS(0)
	poolSize := cpus * 10 // ~10 connections per CPU
	minIdle := cpus * 2   // keep a few always idle

	opts := &redis.Options{
		Addr:            cfg.URL,
		Password:        cfg.Password,
		DB:              cfg.DB,
		PoolSize:        poolSize,
		MinIdleConns:    minIdle,
		ConnMaxLifetime: 30 * time.Minute, // recycle sockets older than this
		ConnMaxIdleTime: 5 * time.Minute,  // close sockets idle for longer than this
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
	}

	client := redis.NewClient(opts)

	// verify connectivity right away
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pong, err := client.Ping(ctx).Result()
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info("Connected to Redis", "addr", cfg.URL, "pong", pong)

	return &RedisWrapper{client: client}, nil
}

func (rw *RedisWrapper) GetClient() *redis.Client {
	return rw.client
}

// Set stores value without expiration.
func (rw *RedisWrapper) Set(key string, value []byte) error {
	return rw.client.Set(context.Background(), key, value, 0).Err()
}

// Get maps redis.Nil to ErrKeyNotFound.
func (rw *RedisWrapper) Get(key string) ([]byte, error) {
	val, err := rw.client.Get(context.Background(), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	return val, err
}

func (rw *RedisWrapper) Del(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return rw.client.Del(context.Background(), keys...).Err()
}

// Keys walks the keyspace with SCAN so large databases are not blocked.
func (rw *RedisWrapper) Keys(pattern string) ([]string, error) {
	ctx := context.Background()
	var keys []string
	iter := rw.client.Scan(ctx, 0, pattern, redisScanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

func (rw *RedisWrapper) Close() error {
	return rw.client.Close()
}
