package theme

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClientPreference is one stored key of one client.
type ClientPreference struct {
	ID        uint   `gorm:"primaryKey"`
	ClientID  string `gorm:"size:64;not null;uniqueIndex:idx_client_key"`
	Key       string `gorm:"size:64;not null;uniqueIndex:idx_client_key"`
	Value     string `gorm:"size:255;not null"`
	UpdatedAt time.Time
}

// TableName keeps the table name stable across GORM naming strategies.
func (ClientPreference) TableName() string { return "client_preferences" }

// GORMStorage stores client preferences in a relational table.
type GORMStorage struct {
	db *gorm.DB
}

// NewGORMStorage migrates the preferences table.
func NewGORMStorage(db *gorm.DB) (*GORMStorage, error) {
	if err := db.AutoMigrate(&ClientPreference{}); err != nil {
		return nil, err
	}
	return &GORMStorage{db: db}, nil
}

// For returns the Storage view of one client.
func (g *GORMStorage) For(clientID string) Storage {
	return &clientStorage{db: g.db, clientID: clientID}
}

type clientStorage struct {
	db       *gorm.DB
	clientID string
}

func (s *clientStorage) Get(ctx context.Context, key string) (string, bool, error) {
	var pref ClientPreference
	err := s.db.WithContext(ctx).
		Where("client_id = ? AND key = ?", s.clientID, key).
		First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return pref.Value, true, nil
}

func (s *clientStorage) Set(ctx context.Context, key, value string) error {
	pref := ClientPreference{ClientID: s.clientID, Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "client_id"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&pref).Error
}

func (s *clientStorage) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).
		Where("client_id = ? AND key = ?", s.clientID, key).
		Delete(&ClientPreference{}).Error
}
