package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Slot keys for the durable client-side state. The backend never sees
// this table; it only exists so tokens and the cached profile survive
// between runs.
const (
	slotAccessToken  = "access_token"
	slotRefreshToken = "refresh_token"
	slotProfile      = "profile"
)

type slotRecord struct {
	Key       string `gorm:"column:key;primaryKey"`
	Value     string `gorm:"column:value;not null"`
	UpdatedAt time.Time
}

func (slotRecord) TableName() string {
	return "session_slots"
}

// Store owns the three durable slots read and written by the session
// guard and the HTTP client: bearer credential, refresh credential,
// and the cached user profile blob.
type Store struct {
	db *gorm.DB
}

// Open creates or opens the sqlite-backed slot store at path.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}
	return NewStore(db)
}

// NewStore wraps an existing gorm handle, migrating the slot table.
func NewStore(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("db handle is required")
	}
	if err := db.AutoMigrate(&slotRecord{}); err != nil {
		return nil, fmt.Errorf("migrating slot table: %w", err)
	}
	return &Store{db: db}, nil
}

// AccessToken returns the stored bearer credential, or "" when absent.
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	return s.get(ctx, slotAccessToken)
}

// RefreshToken returns the stored refresh credential, or "" when absent.
func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	return s.get(ctx, slotRefreshToken)
}

// Profile returns the cached profile blob, or "" when absent.
func (s *Store) Profile(ctx context.Context) (string, error) {
	return s.get(ctx, slotProfile)
}

// SetTokens stores both credentials in one transaction, as issued by a
// login or a rotating refresh.
func (s *Store) SetTokens(ctx context.Context, access, refresh string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsert(tx, slotAccessToken, access); err != nil {
			return err
		}
		return upsert(tx, slotRefreshToken, refresh)
	})
}

// SetAccessToken replaces only the bearer credential, keeping the
// refresh credential as-is. Used when the refresh exchange returns a
// new bearer without rotating the refresh token.
func (s *Store) SetAccessToken(ctx context.Context, access string) error {
	return upsert(s.db.WithContext(ctx), slotAccessToken, access)
}

// SetProfile caches the profile blob returned by the backend.
func (s *Store) SetProfile(ctx context.Context, blob string) error {
	return upsert(s.db.WithContext(ctx), slotProfile, blob)
}

// Clear wipes all three slots atomically. Called on hard
// authentication failure and on explicit sign-out.
func (s *Store) Clear(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("key IN ?", []string{slotAccessToken, slotRefreshToken, slotProfile}).
			Delete(&slotRecord{})
		return result.Error
	})
}

// Close releases the underlying sqlite handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("resolving sql handle: %w", err)
	}
	return sqlDB.Close()
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	var record slotRecord
	err := s.db.WithContext(ctx).First(&record, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading slot %s: %w", key, err)
	}
	return record.Value, nil
}

func upsert(db *gorm.DB, key, value string) error {
	if value == "" {
		result := db.Where("key = ?", key).Delete(&slotRecord{})
		return result.Error
	}
	record := slotRecord{Key: key, Value: value, UpdatedAt: time.Now()}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&record).Error
}
