// Package storage provides the key-value persistence used for carts, favorites,
// addresses and in-flight customization sessions.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	pkglogger "github.com/maosdefada/cakeshop-backend/pkg/logger"
)

// ErrNotFound key not present
var ErrNotFound = errors.New("key not found")

// Store key-value capability
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// StorageReadError persisted value could not be decoded
type StorageReadError struct {
	Key string
	Err error
}

func (e *StorageReadError) Error() string {
	return fmt.Sprintf("malformed value at %s: %v", e.Key, e.Err)
}

func (e *StorageReadError) Unwrap() error { return e.Err }

// Key helpers
func CartKey(shopperID string) string          { return "cart:" + shopperID }
func FavoritesKey(shopperID string) string     { return "favorites:" + shopperID }
func AddressKey(shopperID string) string       { return "user-delivery-address:" + shopperID }
func CustomizationKey(sessionID string) string { return "customization:" + sessionID }

// LoadJSON decodes the value at key. Missing keys and malformed JSON yield def;
// the latter is logged and never returned. Only backend failures are errors.
func LoadJSON[T any](ctx context.Context, s Store, key string, def T) (T, bool, error) {
	data, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return def, false, nil
	}
	if err != nil {
		return def, false, fmt.Errorf("load %s: %w", key, err)
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		readErr := &StorageReadError{Key: key, Err: err}
		pkglogger.GetLogger().Warn().Err(readErr).Str("key", key).Msg("discarding malformed stored value")
		return def, false, nil
	}
	return v, true, nil
}

// SaveJSON encodes v and stores it at key
func SaveJSON(ctx context.Context, s Store, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Set(ctx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
