package persistence

import (
	"context"
	"errors"

	"github.com/retailpos/backend/internal/domain/settings"
	"gorm.io/gorm"
)

// GormSettingsRepository implements settings.Repository using GORM
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new GormSettingsRepository
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// Get loads the settings row, creating it with defaults on first access
func (r *GormSettingsRepository) Get(ctx context.Context) (*settings.SiteSetting, error) {
	var s settings.SiteSetting
	err := r.db.WithContext(ctx).First(&s, "id = ?", 1).Error
	if err == nil {
		return &s, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	defaults := settings.DefaultSiteSetting()
	if err := r.db.WithContext(ctx).Create(defaults).Error; err != nil {
		return nil, err
	}
	return defaults, nil
}

// Save persists the settings row
func (r *GormSettingsRepository) Save(ctx context.Context, s *settings.SiteSetting) error {
	return r.db.WithContext(ctx).Save(s).Error
}
