package storage

import (
	"context"
	"errors"
	"time"

	"github.com/maosdefada/cakeshop-backend/pkg/cache"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVEntry persisted key-value row
type KVEntry struct {
	Key       string     `gorm:"column:key;primaryKey;size:191"`
	Value     string     `gorm:"column:value;type:text;not null"`
	ExpiresAt *time.Time `gorm:"column:expires_at;index"`
	UpdatedAt time.Time  `gorm:"column:updated_at"`
}

// TableName GORM table name
func (KVEntry) TableName() string {
	return "kv_entries"
}

// SQLStore store backed by the kv_entries table
type SQLStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSQLStore creates a gorm-backed store
func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var entry KVEntry
	err := s.db.WithContext(ctx).
		Where("`key` = ?", key).
		Where("(expires_at IS NULL OR expires_at > ?)", s.now()).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(entry.Value), nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	now := s.now()
	entry := KVEntry{Key: key, Value: string(value), UpdatedAt: now}
	if ttl := cache.TTLFor(key); ttl > 0 {
		exp := now.Add(ttl)
		entry.ExpiresAt = &exp
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(&entry).Error
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("`key` = ?", key).Delete(&KVEntry{}).Error
}

// PurgeExpired deletes expired rows and returns how many were removed
func (s *SQLStore) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at IS NOT NULL AND expires_at <= ?", s.now()).Delete(&KVEntry{})
	return res.RowsAffected, res.Error
}
