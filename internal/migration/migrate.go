package migration

import (
	"fmt"

	"github.com/maosdefada/cakeshop-backend/internal/auditlog"
	"github.com/maosdefada/cakeshop-backend/internal/storage"
	"gorm.io/gorm"
)

// Models every table owned by the service
func Models() []interface{} {
	return []interface{}{
		&storage.KVEntry{},
		&auditlog.OrderLogRow{},
	}
}

// Run executes AutoMigrate for all tables. Safe to run multiple times.
func Run(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// TableStatus row count per table, -1 when the table is missing
type TableStatus struct {
	Table string
	Rows  int64
}

// Status reports each table and its row count
func Status(db *gorm.DB) ([]TableStatus, error) {
	out := make([]TableStatus, 0, len(Models()))
	for _, m := range Models() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return nil, err
		}
		table := stmt.Schema.Table

		if !db.Migrator().HasTable(m) {
			out = append(out, TableStatus{Table: table, Rows: -1})
			continue
		}
		var n int64
		if err := db.Model(m).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		out = append(out, TableStatus{Table: table, Rows: n})
	}
	return out, nil
}
