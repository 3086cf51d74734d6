package securestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"
)

type secureItem struct {
	ItemKey   string    `gorm:"primaryKey;column:item_key"`
	Value     []byte    `gorm:"not null;column:value"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at"`
}

func (secureItem) TableName() string { return "secure_items" }

// SQLiteStore keeps sealed values in a local SQLite database.
type SQLiteStore struct {
	db     *gorm.DB
	sealer *Sealer
}

func NewSQLiteStore(path string, sealer *Sealer) (*SQLiteStore, error) {
	if sealer == nil {
		return nil, errors.New("securestore: sealer required")
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("securestore: open sqlite: %w", err)
	}
	if err := db.AutoMigrate(&secureItem{}); err != nil {
		return nil, fmt.Errorf("securestore: migrate: %w", err)
	}
	return &SQLiteStore{db: db, sealer: sealer}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	var item secureItem
	err := s.db.WithContext(ctx).Where("item_key = ?", key).Take(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	plain, err := s.sealer.Open(item.Value)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	sealed, err := s.sealer.Seal([]byte(value))
	if err != nil {
		return err
	}
	item := secureItem{ItemKey: key, Value: sealed, UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&item).Error
}

func (s *SQLiteStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Where("item_key IN ?", keys).Delete(&secureItem{}).Error
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
