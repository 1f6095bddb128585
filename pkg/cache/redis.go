package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures [NewRedisCache].
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Prefix is prepended to every key, e.g. "itemshuffle:".
	Prefix string
	// RetryDelay is the first backoff delay for transient failures.
	// Zero means 100ms.
	RetryDelay time.Duration
}

// RedisCache is a Cache backed by Redis, shared by every API instance.
type RedisCache struct {
	client *redis.Client
	prefix string
	delay  time.Duration
}

// NewRedisCache connects to Redis and verifies the connection with PING.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: ping %s: %v", ErrBackend, cfg.Addr, err)
	}
	return newRedisCache(client, cfg), nil
}

func newRedisCache(client *redis.Client, cfg RedisConfig) *RedisCache {
	delay := cfg.RetryDelay
	if delay == 0 {
		delay = 100 * time.Millisecond
	}
	return &RedisCache{client: client, prefix: cfg.Prefix, delay: delay}
}

// Get retrieves a value, retrying transient failures.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		data []byte
		hit  bool
	)
	err := RetryWithBackoff(ctx, c.delay, func() error {
		b, err := c.client.Get(ctx, c.prefix+key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			data, hit = nil, false
			return nil
		case err != nil:
			return transient(err)
		}
		data, hit = b, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return data, hit, nil
}

// Set stores a value. A ttl of zero keeps the key until deleted.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return RetryWithBackoff(ctx, c.delay, func() error {
		return transient(c.client.Set(ctx, c.prefix+key, data, ttl).Err())
	})
}

// Delete removes a value.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return RetryWithBackoff(ctx, c.delay, func() error {
		return transient(c.client.Del(ctx, c.prefix+key).Err())
	})
}

// Close closes the Redis client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// transient marks every Redis failure except context errors as retryable.
func transient(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return Retryable(fmt.Errorf("%w: %v", ErrBackend, err))
}

var _ Cache = (*RedisCache)(nil)
