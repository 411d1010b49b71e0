package repository

import (
	"strings"
	"time"

	personadomain "persona-backend/internal/persona/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ExclusionRepository defines the interface for exclusion rule persistence
type ExclusionRepository interface {
	// Create lowercases the pattern and ignores duplicates.
	Create(pattern, reason string) (*personadomain.ExclusionRule, error)
	List() ([]personadomain.ExclusionRule, error)
	Delete(id string) error
}

// exclusionRepository implements ExclusionRepository interface
type exclusionRepository struct {
	db *gorm.DB
}

// NewExclusionRepository creates a new instance of exclusionRepository
func NewExclusionRepository(db *gorm.DB) ExclusionRepository {
	return &exclusionRepository{db: db}
}

func (r *exclusionRepository) Create(pattern, reason string) (*personadomain.ExclusionRule, error) {
	rule := personadomain.ExclusionRule{
		ID:        uuid.New().String(),
		Pattern:   strings.ToLower(strings.TrimSpace(pattern)),
		Reason:    reason,
		CreatedAt: time.Now(),
	}
	err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *exclusionRepository) List() ([]personadomain.ExclusionRule, error) {
	var rules []personadomain.ExclusionRule
	if err := r.db.Order("created_at ASC").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *exclusionRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&personadomain.ExclusionRule{}).Error
}
