package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// RedisOption customises a Redis cache.
type RedisOption func(*Redis)

// WithTTL sets the expiration of cached pages. Zero disables expiry.
func WithTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) {
		r.ttl = ttl
	}
}

// WithPrefix sets the key prefix shared by all pages.
func WithPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		r.prefix = prefix
	}
}

// Redis stores pages in Redis so several server instances share renders.
type Redis struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

var _ Cache = (*Redis)(nil)

// NewRedis connects to the Redis server at address.
func NewRedis(address, password string, db int, opts ...RedisOption) *Redis {
	return NewRedisFromClient(backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	}), opts...)
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *backend.Client, opts ...RedisOption) *Redis {
	r := &Redis{
		client: client,
		prefix: "reqdoc:page:",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Redis) key(key string) string {
	return r.prefix + key
}

// indexKey names the set of stored keys used by Purge.
func (r *Redis) indexKey() string {
	return r.prefix + "index"
}

// Ping checks the connection.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache: redis ping: %w", err)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, key string) (Page, error) {
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return Page{}, ErrMiss
		}
		return Page{}, fmt.Errorf("cache: redis get: %w", err)
	}
	var page Page
	if err := json.Unmarshal(val, &page); err != nil {
		return Page{}, fmt.Errorf("cache: decode page: %w", err)
	}
	return page, nil
}

func (r *Redis) Set(ctx context.Context, key string, page Page) error {
	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("cache: encode page: %w", err)
	}
	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.key(key), data, r.ttl)
	pipe.SAdd(ctx, r.indexKey(), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache: redis set: %w", err)
	}
	return nil
}

func (r *Redis) Purge(ctx context.Context) error {
	keys, err := r.client.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return fmt.Errorf("cache: list keys: %w", err)
	}
	pipe := r.client.Pipeline()
	for _, key := range keys {
		pipe.Del(ctx, r.key(key))
	}
	pipe.Del(ctx, r.indexKey())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache: purge: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
