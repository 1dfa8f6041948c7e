// Package cache provides a Redis-backed cache for public catalog reads.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const versionKey = "catalog:version"

// ErrMiss is returned by Get when the key is not cached.
var ErrMiss = errors.New("cache miss")

// CatalogCache stores serialized catalog listings. Keys are scoped by a
// version counter so Invalidate drops every listing at once. A reader resolves
// the version once and passes it to both Get and Set, so a listing read before
// an invalidation can never be stored under the newer version.
type CatalogCache interface {
	Version(ctx context.Context) (string, error)
	Get(ctx context.Context, version, key string, dest interface{}) error
	Set(ctx context.Context, version, key string, value interface{}) error
	Invalidate(ctx context.Context) error
}

// RedisCache implements CatalogCache on go-redis.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(addr, password string, db int, ttl time.Duration, log *zap.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Info("connected to redis", zap.String("addr", addr))

	return newRedisCache(client, ttl), nil
}

func newRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Version(ctx context.Context) (string, error) {
	v, err := c.client.Get(ctx, versionKey).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	return v, err
}

func scopedKey(version, key string) string {
	return fmt.Sprintf("catalog:v%s:%s", version, key)
}

func (c *RedisCache) Get(ctx context.Context, version, key string, dest interface{}) error {
	raw, err := c.client.Get(ctx, scopedKey(version, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func (c *RedisCache) Set(ctx context.Context, version, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return c.client.Set(ctx, scopedKey(version, key), raw, c.ttl).Err()
}

// Invalidate bumps the version counter; stale keys expire on their own.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, versionKey).Err()
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	if closer, ok := c.client.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// NoopCache never stores anything.
type NoopCache struct{}

func (NoopCache) Version(context.Context) (string, error)                { return "0", nil }
func (NoopCache) Get(context.Context, string, string, interface{}) error { return ErrMiss }
func (NoopCache) Set(context.Context, string, string, interface{}) error { return nil }
func (NoopCache) Invalidate(context.Context) error                       { return nil }

// Key builds a stable cache key from a listing name and its parameters.
func Key(name string, params ...interface{}) string {
	h := sha1.New()
	for _, p := range params {
		fmt.Fprintf(h, "%v|", p)
	}
	return name + ":" + hex.EncodeToString(h.Sum(nil))
}
