package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	pkglogger "github.com/maosdefada/cakeshop-backend/pkg/logger"
	pkgstorage "github.com/maosdefada/cakeshop-backend/pkg/storage"
	"gopkg.in/yaml.v3"
)

// Store backends
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQL    = "sql"
)

var (
	ErrUnknownStoreBackend = errors.New("unknown store backend")
	ErrUnknownDBDriver     = errors.New("unknown database driver")
)

// Config application configuration
type Config struct {
	Server    ServerConfig        `yaml:"server"`
	Store     StoreConfig         `yaml:"store"`
	Database  DatabaseConfig      `yaml:"database"`
	Redis     RedisConfig         `yaml:"redis"`
	CORS      CORSConfig          `yaml:"cors"`
	Catalog   CatalogConfig       `yaml:"catalog"`
	Order     OrderConfig         `yaml:"order"`
	Relay     RelayConfig         `yaml:"relay"`
	Audit     AuditConfig         `yaml:"audit"`
	Storage   pkgstorage.S3Config `yaml:"storage"`
	RateLimit RateLimitConfig     `yaml:"rate_limit"`
}

// ServerConfig HTTP server
type ServerConfig struct {
	Port         int    `yaml:"port"`
	Mode         string `yaml:"mode"` // gin mode: debug, release, test
	Env          string `yaml:"env"`
	SecureCookie bool   `yaml:"secure_cookie"`
}

// StoreConfig key-value backend for carts, favorites, addresses and sessions
type StoreConfig struct {
	Backend string `yaml:"backend"`
}

// DatabaseConfig gorm connection. Driver is sqlite or mysql.
type DatabaseConfig struct {
	Driver          string `yaml:"driver"`
	Path            string `yaml:"path"` // sqlite file
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	DBName          string `yaml:"dbname"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"` // seconds
}

// GetDSN MySQL DSN, or the sqlite path
func (d DatabaseConfig) GetDSN() string {
	if d.Driver == "sqlite" {
		return d.Path
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User, d.Password, d.Host, d.Port, d.DBName)
}

// RedisConfig redis connection
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// Enabled reports whether a host is configured
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

// CORSConfig comma separated origins
type CORSConfig struct {
	AllowOrigins string `yaml:"allow_origins"`
}

// CatalogConfig an empty path serves the built-in catalog
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// OrderConfig checkout settings
type OrderConfig struct {
	DeliveryFee    string   `yaml:"delivery_fee"`
	WhatsAppNumber string   `yaml:"whatsapp_number"`
	DeliveryHours  []string `yaml:"delivery_hours"`
	PickupHours    []string `yaml:"pickup_hours"`
	Timezone       string   `yaml:"timezone"`
}

// Location resolves Timezone, falling back to the process zone
func (o OrderConfig) Location() (*time.Location, error) {
	if o.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(o.Timezone)
}

// RelayConfig transports listed here always fail, as a blocked popup would
type RelayConfig struct {
	BlockedTransports []string `yaml:"blocked_transports"`
}

// AuditConfig order log destinations
type AuditConfig struct {
	Sheets   SheetsAuditConfig   `yaml:"sheets"`
	Workbook WorkbookAuditConfig `yaml:"workbook"`
	Database DatabaseAuditConfig `yaml:"database"`
}

// SheetsAuditConfig credentials come from GOOGLE_* env vars
type SheetsAuditConfig struct {
	Enabled bool          `yaml:"enabled"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// WorkbookAuditConfig local xlsx log, optionally mirrored to S3
type WorkbookAuditConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Path         string `yaml:"path"`
	SheetName    string `yaml:"sheet_name"`
	UploadPrefix string `yaml:"upload_prefix"`
}

// DatabaseAuditConfig order_log_rows table
type DatabaseAuditConfig struct {
	Enabled bool `yaml:"enabled"`
}

// RateLimitConfig order submission limiter
type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

// Default local development settings
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080, Mode: "debug", Env: "local"},
		Store:  StoreConfig{Backend: StoreMemory},
		Database: DatabaseConfig{
			Driver:          "sqlite",
			Path:            "data/cakeshop.db",
			MaxIdleConns:    5,
			MaxOpenConns:    10,
			ConnMaxLifetime: 300,
		},
		Redis: RedisConfig{Port: 6379, PoolSize: 10},
		CORS:  CORSConfig{AllowOrigins: "http://localhost:3000"},
		Order: OrderConfig{
			DeliveryFee:    "20",
			WhatsAppNumber: "5567996184308",
			DeliveryHours:  []string{"13:30", "17:30", "18:00", "19:00"},
			PickupHours:    []string{"11:00", "12:00", "15:00", "18:00", "19:00"},
			Timezone:       "America/Campo_Grande",
		},
		Audit: AuditConfig{
			Sheets:   SheetsAuditConfig{Timeout: 10 * time.Second},
			Workbook: WorkbookAuditConfig{Path: "data/pedidos.xlsx", SheetName: "Pedidos", UploadPrefix: "pedidos"},
		},
		RateLimit: RateLimitConfig{Requests: 5, Window: time.Minute},
	}
}

// Load reads the YAML file over the defaults and applies env overrides.
// A missing file is not an error; env and defaults still apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enum-like settings
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case StoreMemory, StoreRedis, StoreSQL:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStoreBackend, c.Store.Backend)
	}
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDBDriver, c.Database.Driver)
	}
	if _, err := c.Order.Location(); err != nil {
		return fmt.Errorf("order timezone: %w", err)
	}
	return nil
}

// IsDevelopment local/dev environments
func (c *Config) IsDevelopment() bool {
	switch c.Server.Env {
	case "", "local", "dev", "development":
		return true
	}
	return false
}

// NeedsDatabase reports whether any component opens the SQL database
func (c *Config) NeedsDatabase() bool {
	return c.Store.Backend == StoreSQL || c.Audit.Database.Enabled
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Server.Env = v
	}
	setInt(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.Mode, "GIN_MODE")
	setString(&cfg.Store.Backend, "STORE_BACKEND")

	setString(&cfg.Database.Driver, "DB_DRIVER")
	setString(&cfg.Database.Path, "DB_PATH")
	setString(&cfg.Database.Host, "DB_HOST")
	setInt(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.DBName, "DB_NAME")

	setString(&cfg.Redis.Host, "REDIS_HOST")
	setInt(&cfg.Redis.Port, "REDIS_PORT")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")

	setString(&cfg.CORS.AllowOrigins, "CORS_ALLOW_ORIGINS")
	setString(&cfg.Catalog.Path, "CATALOG_PATH")
	setString(&cfg.Order.WhatsAppNumber, "WHATSAPP_NUMBER")
	setString(&cfg.Order.Timezone, "ORDER_TIMEZONE")

	setString(&cfg.Storage.Endpoint, "S3_ENDPOINT")
	setString(&cfg.Storage.Region, "S3_REGION")
	setString(&cfg.Storage.AccessKeyID, "S3_ACCESS_KEY_ID")
	setString(&cfg.Storage.SecretAccessKey, "S3_SECRET_ACCESS_KEY")
	setString(&cfg.Storage.Bucket, "S3_BUCKET")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// LogResolved prints the effective non-secret settings
func LogResolved(cfg *Config) {
	log := pkglogger.GetLogger()
	log.Info().
		Str("env", cfg.Server.Env).
		Int("port", cfg.Server.Port).
		Str("gin_mode", cfg.Server.Mode).
		Str("store", cfg.Store.Backend).
		Str("db_driver", cfg.Database.Driver).
		Str("db_target", redactDSN(cfg.Database)).
		Bool("redis", cfg.Redis.Enabled()).
		Str("catalog", orDefault(cfg.Catalog.Path, "built-in")).
		Str("timezone", cfg.Order.Timezone).
		Str("delivery_fee", cfg.Order.DeliveryFee).
		Bool("audit_sheets", cfg.Audit.Sheets.Enabled).
		Bool("audit_workbook", cfg.Audit.Workbook.Enabled).
		Bool("audit_db", cfg.Audit.Database.Enabled).
		Bool("s3", cfg.Storage.Enabled()).
		Strs("relay_blocked", cfg.Relay.BlockedTransports).
		Msg("config resolved")
}

func redactDSN(d DatabaseConfig) string {
	if d.Driver == "sqlite" {
		return d.Path
	}
	return fmt.Sprintf("%s@%s:%d/%s", d.User, d.Host, d.Port, d.DBName)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
