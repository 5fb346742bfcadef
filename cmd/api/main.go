package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/maosdefada/cakeshop-backend/internal/auditlog"
	"github.com/maosdefada/cakeshop-backend/internal/catalog"
	"github.com/maosdefada/cakeshop-backend/internal/config"
	"github.com/maosdefada/cakeshop-backend/internal/events"
	"github.com/maosdefada/cakeshop-backend/internal/handler"
	"github.com/maosdefada/cakeshop-backend/internal/middleware"
	"github.com/maosdefada/cakeshop-backend/internal/migration"
	"github.com/maosdefada/cakeshop-backend/internal/pricing"
	"github.com/maosdefada/cakeshop-backend/internal/relay"
	"github.com/maosdefada/cakeshop-backend/internal/routes"
	"github.com/maosdefada/cakeshop-backend/internal/service"
	"github.com/maosdefada/cakeshop-backend/internal/storage"
	pkgcache "github.com/maosdefada/cakeshop-backend/pkg/cache"
	"github.com/maosdefada/cakeshop-backend/pkg/i18n"
	pkglogger "github.com/maosdefada/cakeshop-backend/pkg/logger"
	pkgredis "github.com/maosdefada/cakeshop-backend/pkg/redis"
	pkgstorage "github.com/maosdefada/cakeshop-backend/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// @title           Cakeshop Backend API
// @version         1.0
// @description     Bakery storefront: cake customization, bag and order relay
//
// @host            localhost:8080
// @BasePath        /api/v1

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	logger := pkglogger.GetLogger()
	logger.Info().Str("env", env).Strs("env_files", dotenvFiles).Msg("starting")

	// config
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	config.LogResolved(cfg)
	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// catalog
	cat, err := loadCatalog(cfg.Catalog.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("catalog load failed")
	}

	// database
	var db *gorm.DB
	if cfg.NeedsDatabase() {
		db, err = initDB(cfg)
		if err != nil {
			logger.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("database connection failed")
		}
		if err := migration.Run(db); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
		logger.Info().Str("driver", cfg.Database.Driver).Msg("database ready")
	}

	// redis
	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = pkgredis.NewClient(ctx, pkgredis.Options{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, continuing without it")
			redisClient = nil
		} else {
			logger.Info().Msg("connected to redis")
		}
	}

	store, err := newStore(cfg, db, redisClient)
	if err != nil {
		logger.Fatal().Err(err).Msg("store init failed")
	}

	// event bus + domain metrics
	bus := events.NewBus(logger)
	events.NewMetrics(prometheus.DefaultRegisterer).Attach(bus)

	audit := newAuditSink(ctx, cfg, db)

	bundle := i18n.NewDefaultBundle()
	if _, err := os.Stat("i18n"); err == nil {
		if err := bundle.LoadDir("i18n"); err != nil {
			logger.Warn().Err(err).Msg("i18n LoadDir failed")
		}
	}

	orderCfg, err := newOrderConfig(cfg.Order)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid order config")
	}

	// services
	carts := service.NewCartService(store, bus)
	addresses := service.NewAddressService(store)
	favorites := service.NewFavoriteService(store, cat, bus)
	sessions := service.NewCustomizationService(store, cat, pricing.NewEngine(pricing.DefaultRules()), carts)
	orders, err := service.NewOrderService(orderCfg, carts, addresses,
		relay.New(relay.NewClientLauncher(cfg.Relay.BlockedTransports...), logger), audit, bus)
	if err != nil {
		logger.Fatal().Err(err).Msg("order service init failed")
	}

	// router
	var limiter redis.Scripter
	if redisClient != nil {
		limiter = redisClient
	}
	rateCfg := middleware.DefaultRateLimitConfig()
	rateCfg.Requests = cfg.RateLimit.Requests
	rateCfg.Window = cfg.RateLimit.Window

	router := routes.NewEngine(routes.Handlers{
		Health:        handler.NewHealthHandler(pkglogger.ServiceName, healthChecks(db, redisClient)),
		Catalog:       handler.NewCatalogHandler(cat, bundle),
		Customization: handler.NewCustomizationHandler(sessions, bundle),
		Cart:          handler.NewCartHandler(carts, bundle),
		Favorite:      handler.NewFavoriteHandler(favorites, bundle),
		Address:       handler.NewAddressHandler(addresses, bundle),
		Order:         handler.NewOrderHandler(orders, bundle),
	}, routes.Options{
		Bundle:       bundle,
		AllowOrigins: splitAndTrim(cfg.CORS.AllowOrigins, ","),
		SecureCookie: !cfg.IsDevelopment(),
		RateLimiter:  limiter,
		RateLimit:    rateCfg,
	})

	if sqlStore, ok := store.(*storage.SQLStore); ok {
		go runPurgeLoop(ctx, sqlStore, db, time.Minute)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown")
	}
	bus.Wait()
	if redisClient != nil {
		_ = redisClient.Close()
	}
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}

func newStore(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (storage.Store, error) {
	switch cfg.Store.Backend {
	case config.StoreRedis:
		if redisClient == nil {
			return nil, errors.New("store backend redis requires a reachable redis")
		}
		return storage.NewRedisStore(pkgcache.NewService(redisClient)), nil
	case config.StoreSQL:
		return storage.NewSQLStore(db), nil
	default:
		return storage.NewMemoryStore(), nil
	}
}

// newAuditSink fans out to every configured destination. Sheets credentials
// that fail to load disable that sink only.
func newAuditSink(ctx context.Context, cfg *config.Config, db *gorm.DB) auditlog.Sink {
	logger := pkglogger.GetLogger()
	var sinks []auditlog.Sink

	if cfg.Audit.Sheets.Enabled {
		sheetsCfg := auditlog.SheetsConfigFromEnv()
		sheetsCfg.BaseURL = cfg.Audit.Sheets.BaseURL
		sheetsCfg.Timeout = cfg.Audit.Sheets.Timeout
		sheets, err := auditlog.NewSheetsSink(ctx, sheetsCfg)
		if err != nil {
			logger.Warn().Err(err).Msg("sheets audit sink disabled")
		} else {
			sinks = append(sinks, sheets)
		}
	}

	if cfg.Audit.Workbook.Enabled {
		opts := []auditlog.WorkbookOption{auditlog.WithSheetName(cfg.Audit.Workbook.SheetName)}
		if cfg.Storage.Enabled() {
			s3Client, err := pkgstorage.NewS3Client(cfg.Storage)
			if err != nil {
				logger.Warn().Err(err).Msg("workbook upload disabled")
			} else {
				opts = append(opts, auditlog.WithUploader(s3Client, cfg.Audit.Workbook.UploadPrefix))
			}
		}
		sinks = append(sinks, auditlog.NewWorkbookSink(cfg.Audit.Workbook.Path, opts...))
	}

	if cfg.Audit.Database.Enabled && db != nil {
		sinks = append(sinks, auditlog.NewDBSink(db))
	}

	if len(sinks) == 0 {
		logger.Warn().Msg("no audit sink configured, orders are not logged")
		return auditlog.NopSink{}
	}
	return auditlog.NewMultiSink(logger, sinks...)
}

func newOrderConfig(oc config.OrderConfig) (service.OrderConfig, error) {
	out := service.DefaultOrderConfig()
	if oc.DeliveryFee != "" {
		fee, err := decimal.NewFromString(oc.DeliveryFee)
		if err != nil {
			return out, fmt.Errorf("delivery_fee: %w", err)
		}
		out.DeliveryFee = fee
	}
	if oc.WhatsAppNumber != "" {
		out.WhatsAppNumber = oc.WhatsAppNumber
	}
	if len(oc.DeliveryHours) > 0 {
		out.DeliveryHours = oc.DeliveryHours
	}
	if len(oc.PickupHours) > 0 {
		out.PickupHours = oc.PickupHours
	}
	loc, err := oc.Location()
	if err != nil {
		return out, err
	}
	out.Location = loc
	return out, nil
}

func healthChecks(db *gorm.DB, redisClient *redis.Client) map[string]handler.HealthCheck {
	checks := map[string]handler.HealthCheck{}
	if db != nil {
		checks["database"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	return checks
}

// runPurgeLoop drops expired sessions from kv_entries and tracks pool usage
func runPurgeLoop(ctx context.Context, store *storage.SQLStore, db *gorm.DB, every time.Duration) {
	logger := pkglogger.GetLogger()
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.PurgeExpired(ctx)
			if err != nil {
				logger.Warn().Err(err).Msg("purge expired entries")
			} else if n > 0 {
				logger.Debug().Int64("purged", n).Msg("expired entries removed")
			}
			if sqlDB, err := db.DB(); err == nil {
				middleware.SetStoreConnectionsOpen(sqlDB.Stats().OpenConnections)
			}
		}
	}
}

func splitAndTrim(s, sep string) []string {
	var parts []string
	for _, p := range strings.Split(s, sep) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func initDB(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}

	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
			return nil, err
		}
		dialector = sqlite.Open(cfg.Database.GetDSN())
	default:
		mysqlCfg, err := mysqldriver.ParseDSN(cfg.Database.GetDSN())
		if err != nil {
			return nil, fmt.Errorf("parse DSN: %w", err)
		}
		dialector = mysql.Open(mysqlCfg.FormatDSN())
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Database.Driver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)
	}
	return db, nil
}
