package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTLs
const (
	TTLCustomization = 2 * time.Hour // in-flight customization sessions
	TTLDefault       = 5 * time.Minute
)

// TTLNone no expiry (cart, favorites, address)
const TTLNone time.Duration = 0

// Key prefixes
const (
	PrefixCart          = "cart:"
	PrefixFavorites     = "favorites:"
	PrefixAddress       = "user-delivery-address:"
	PrefixCustomization = "customization:"
)

// ErrMiss key not present
var ErrMiss = errors.New("cache miss")

// ErrUnavailable no redis client configured
var ErrUnavailable = errors.New("redis not available")

// Service Redis-backed cache
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	GetBytes(ctx context.Context, key string) ([]byte, error)
	SetBytes(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Extend(ctx context.Context, key string, ttl time.Duration) error

	IsAvailable() bool
	Ping(ctx context.Context) error
}

// redisCache Service over go-redis
type redisCache struct {
	client *redis.Client
}

// NewService wraps client
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

// IsAvailable reports whether a client is configured
func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

// Ping checks the connection
func (c *redisCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return ErrUnavailable
	}
	return c.client.Ping(ctx).Err()
}

// Get decodes the JSON value stored at key
func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.GetBytes(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Set stores value as JSON
func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.SetBytes(ctx, key, data, ttl)
}

// GetBytes raw value; ErrMiss when the key is absent
func (c *redisCache) GetBytes(ctx context.Context, key string) ([]byte, error) {
	if c.client == nil {
		return nil, ErrUnavailable
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return data, err
}

// SetBytes stores a raw value
func (c *redisCache) SetBytes(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if c.client == nil {
		return ErrUnavailable
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

// Delete removes keys
func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Exists reports whether key is cached
func (c *redisCache) Exists(ctx context.Context, key string) (bool, error) {
	if c.client == nil {
		return false, nil
	}
	n, err := c.client.Exists(ctx, key).Result()
	return n > 0, err
}

// Extend resets the expiry of a key
func (c *redisCache) Extend(ctx context.Context, key string, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}
	return c.client.Expire(ctx, key, ttl).Err()
}

// TTLFor expiry policy per key prefix
func TTLFor(key string) time.Duration {
	if len(key) >= len(PrefixCustomization) && key[:len(PrefixCustomization)] == PrefixCustomization {
		return TTLCustomization
	}
	return TTLNone
}
