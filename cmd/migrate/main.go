package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/maosdefada/cakeshop-backend/internal/config"
	"github.com/maosdefada/cakeshop-backend/internal/migration"
	"github.com/maosdefada/cakeshop-backend/internal/storage"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "configs/config.local.yaml", "config file path")
	dryRun := flag.Bool("dry-run", false, "show the tables that would be migrated without executing")
	verify := flag.Bool("verify", false, "print each table and its row count")
	purge := flag.Bool("purge", false, "delete expired kv_entries rows")
	verbose := flag.Bool("verbose", false, "verbose SQL logging")
	flag.Parse()

	loaded := config.LoadDotEnv()
	if len(loaded) == 0 {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logLevel := gormlogger.Warn
	if *verbose {
		logLevel = gormlogger.Info
	}

	db, err := open(cfg.Database, logLevel)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get underlying DB: %v", err)
	}
	defer sqlDB.Close()

	switch {
	case *dryRun:
		status, err := migration.Status(db)
		if err != nil {
			log.Fatalf("status: %v", err)
		}
		for _, s := range status {
			if s.Rows < 0 {
				log.Printf("[dry-run] would create %s", s.Table)
			} else {
				log.Printf("[dry-run] would update %s", s.Table)
			}
		}
	case *verify:
		runVerify(db)
	case *purge:
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n, err := storage.NewSQLStore(db).PurgeExpired(ctx)
		if err != nil {
			log.Fatalf("purge: %v", err)
		}
		log.Printf("[purge] removed %d expired entries", n)
	default:
		start := time.Now()
		if err := migration.Run(db); err != nil {
			log.Printf("[migrate] FAILED: %v", err)
			os.Exit(1)
		}
		log.Printf("[migrate] Completed in %v", time.Since(start))
		runVerify(db)
	}
}

func runVerify(db *gorm.DB) {
	status, err := migration.Status(db)
	if err != nil {
		log.Fatalf("verify: %v", err)
	}
	for _, s := range status {
		if s.Rows < 0 {
			log.Printf("[verify] %-16s MISSING", s.Table)
			continue
		}
		log.Printf("[verify] %-16s %d rows", s.Table, s.Rows)
	}
}

func open(dbCfg config.DatabaseConfig, level gormlogger.LogLevel) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(level)}
	if dbCfg.Driver == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(dbCfg.Path), 0o755); err != nil {
			return nil, err
		}
		return gorm.Open(sqlite.Open(dbCfg.GetDSN()), gormCfg)
	}
	return gorm.Open(mysql.Open(dbCfg.GetDSN()), gormCfg)
}
