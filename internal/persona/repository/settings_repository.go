package repository

import (
	"time"

	personadomain "persona-backend/internal/persona/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsRepository defines the interface for the key/value settings store
type SettingsRepository interface {
	// Get returns the value for a key, "" when the key is absent.
	Get(key string) (string, error)
	// Set upserts a key. The single-row upsert is what makes profile
	// replacement atomic.
	Set(key, value string) error
	GetAll() (map[string]string, error)
	Delete(key string) error
}

// settingsRepository implements SettingsRepository interface
type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new instance of settingsRepository
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(key string) (string, error) {
	var setting personadomain.Setting
	err := r.db.Where("key = ?", key).First(&setting).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil
		}
		return "", err
	}
	return setting.Value, nil
}

func (r *settingsRepository) Set(key, value string) error {
	setting := personadomain.Setting{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
}

func (r *settingsRepository) GetAll() (map[string]string, error) {
	var settings []personadomain.Setting
	if err := r.db.Find(&settings).Error; err != nil {
		return nil, err
	}

	result := make(map[string]string, len(settings))
	for _, s := range settings {
		result[s.Key] = s.Value
	}
	return result, nil
}

func (r *settingsRepository) Delete(key string) error {
	return r.db.Where("key = ?", key).Delete(&personadomain.Setting{}).Error
}
