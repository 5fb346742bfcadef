package storage

import (
	"context"
	"errors"

	"github.com/maosdefada/cakeshop-backend/pkg/cache"
)

// RedisStore store backed by the redis cache service
type RedisStore struct {
	cache cache.Service
}

// NewRedisStore wraps a cache service
func NewRedisStore(svc cache.Service) *RedisStore {
	return &RedisStore{cache: svc}
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.cache.GetBytes(ctx, key)
	if errors.Is(err, cache.ErrMiss) {
		return nil, ErrNotFound
	}
	return data, err
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return r.cache.SetBytes(ctx, key, value, cache.TTLFor(key))
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.cache.Delete(ctx, key)
}
