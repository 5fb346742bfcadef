package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/maosdefada/cakeshop-backend/pkg/cache"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type favorites struct {
	ProductIDs []string `json:"product_ids"`
}

func newSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&KVEntry{}))
	return db
}

func backends(t *testing.T) map[string]Store {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  NewRedisStore(cache.NewService(client)),
		"sql":    NewSQLStore(newSQLite(t)),
	}
}

func TestStores_Contract(t *testing.T) {
	ctx := context.Background()

	for name, store := range backends(t) {
		store := store
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.Set(ctx, FavoritesKey("s1"), []byte(`{"product_ids":["1"]}`)))
			require.NoError(t, store.Set(ctx, FavoritesKey("s1"), []byte(`{"product_ids":["1","9"]}`)))

			data, err := store.Get(ctx, FavoritesKey("s1"))
			require.NoError(t, err)
			assert.JSONEq(t, `{"product_ids":["1","9"]}`, string(data))

			require.NoError(t, store.Delete(ctx, FavoritesKey("s1")))
			_, err = store.Get(ctx, FavoritesKey("s1"))
			assert.ErrorIs(t, err, ErrNotFound)

			assert.NoError(t, store.Delete(ctx, "never-set"))
		})
	}
}

func TestLoadJSON(t *testing.T) {
	ctx := context.Background()

	for name, store := range backends(t) {
		store := store
		t.Run(name, func(t *testing.T) {
			def := favorites{ProductIDs: []string{}}

			got, found, err := LoadJSON(ctx, store, FavoritesKey("nobody"), def)
			require.NoError(t, err)
			assert.False(t, found)
			assert.Equal(t, def, got)

			require.NoError(t, SaveJSON(ctx, store, FavoritesKey("s2"), favorites{ProductIDs: []string{"4"}}))
			got, found, err = LoadJSON(ctx, store, FavoritesKey("s2"), def)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, []string{"4"}, got.ProductIDs)

			require.NoError(t, store.Set(ctx, FavoritesKey("s3"), []byte(`{"product_ids":[1,`)))
			got, found, err = LoadJSON(ctx, store, FavoritesKey("s3"), def)
			require.NoError(t, err)
			assert.False(t, found)
			assert.Equal(t, def, got)
		})
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemoryStore()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, CustomizationKey("a"), []byte(`{}`)))
	require.NoError(t, m.Set(ctx, CartKey("a"), []byte(`{}`)))

	now = now.Add(cache.TTLCustomization)
	_, err := m.Get(ctx, CustomizationKey("a"))
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Get(ctx, CartKey("a"))
	assert.NoError(t, err)
}

func TestSQLStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewSQLStore(newSQLite(t))
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, CustomizationKey("a"), []byte(`{}`)))
	require.NoError(t, s.Set(ctx, CartKey("a"), []byte(`{}`)))

	now = now.Add(cache.TTLCustomization + time.Minute)
	_, err := s.Get(ctx, CustomizationKey("a"))
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := s.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = s.Get(ctx, CartKey("a"))
	assert.NoError(t, err)
}
