package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.Store.Backend)
	assert.Equal(t, "20", cfg.Order.DeliveryFee)
	assert.Equal(t, 5, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.NeedsDatabase())
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  env: production
store:
  backend: sql
database:
  driver: mysql
  host: db
  port: 3306
  user: shop
  dbname: cakes
order:
  delivery_fee: "25.50"
  pickup_hours: ["10:00"]
rate_limit:
  requests: 2
  window: 30s
audit:
  workbook:
    enabled: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.False(t, cfg.IsDevelopment())
	assert.True(t, cfg.NeedsDatabase())
	assert.Equal(t, "shop:@tcp(db:3306)/cakes?charset=utf8mb4&parseTime=True&loc=Local", cfg.Database.GetDSN())
	assert.Equal(t, "25.50", cfg.Order.DeliveryFee)
	assert.Equal(t, []string{"10:00"}, cfg.Order.PickupHours)
	// untouched keys keep their defaults
	assert.Len(t, cfg.Order.DeliveryHours, 4)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.True(t, cfg.Audit.Workbook.Enabled)
	assert.Equal(t, "Pedidos", cfg.Audit.Workbook.SheetName)
}

func TestLoad_EnvWins(t *testing.T) {
	path := writeConfig(t, "store:\n  backend: memory\n")
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("PORT", "7000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StoreRedis, cfg.Store.Backend)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 7000, cfg.Server.Port)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(writeConfig(t, "store:\n  backend: etcd\n"))
	assert.ErrorIs(t, err, ErrUnknownStoreBackend)

	_, err = Load(writeConfig(t, "database:\n  driver: postgres\n"))
	assert.ErrorIs(t, err, ErrUnknownDBDriver)

	_, err = Load(writeConfig(t, "order:\n  timezone: Nowhere/Land\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "server: [\n"))
	assert.Error(t, err)
}

func TestLoadDotEnv_LocalWins(t *testing.T) {
	t.Setenv("APP_ENV", "")
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	require.NoError(t, os.WriteFile(".env", []byte("CAKESHOP_DOTENV_TEST=base\n"), 0o600))
	require.NoError(t, os.WriteFile(".env.local", []byte("CAKESHOP_DOTENV_TEST=local\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("CAKESHOP_DOTENV_TEST") })

	loaded := LoadDotEnv()
	assert.Equal(t, []string{".env.local", ".env"}, loaded)
	assert.Equal(t, "local", os.Getenv("CAKESHOP_DOTENV_TEST"))
}

func TestLoadDotEnv_EnvSpecific(t *testing.T) {
	t.Setenv("APP_ENV", "staging")
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	require.NoError(t, os.WriteFile(".env", []byte("CAKESHOP_DOTENV_TEST=base\n"), 0o600))
	require.NoError(t, os.WriteFile(".env.staging", []byte("CAKESHOP_DOTENV_TEST=staging\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("CAKESHOP_DOTENV_TEST") })

	loaded := LoadDotEnv()
	assert.Equal(t, []string{".env.staging", ".env"}, loaded)
	assert.Equal(t, "staging", os.Getenv("CAKESHOP_DOTENV_TEST"))
}

func TestDotenvCandidates(t *testing.T) {
	assert.Equal(t, []string{".env.local", ".env"}, dotenvCandidates(""))
	assert.Equal(t,
		[]string{".env.production.local", ".env.local", ".env.production", ".env"},
		dotenvCandidates("production"))
}
