package repository

import (
	personadomain "persona-backend/internal/persona/domain"

	"gorm.io/gorm"
)

// DraftRepository defines the interface for draft persistence
type DraftRepository interface {
	Create(draft *personadomain.Draft) error
	GetByID(id string) (*personadomain.Draft, error)
	ListByStatus(status string, limit, offset int) ([]personadomain.Draft, error)
	Update(draft *personadomain.Draft) error
	// ExistsForMessage reports whether any draft references the message.
	ExistsForMessage(messageID string) (bool, error)
}

// draftRepository implements DraftRepository interface
type draftRepository struct {
	db *gorm.DB
}

// NewDraftRepository creates a new instance of draftRepository
func NewDraftRepository(db *gorm.DB) DraftRepository {
	return &draftRepository{db: db}
}

func (r *draftRepository) Create(draft *personadomain.Draft) error {
	// The unique index on incoming_message_id backs the at-most-one
	// draft per message guarantee.
	return r.db.Create(draft).Error
}

func (r *draftRepository) GetByID(id string) (*personadomain.Draft, error) {
	var draft personadomain.Draft
	err := r.db.Where("id = ?", id).First(&draft).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &draft, nil
}

func (r *draftRepository) ListByStatus(status string, limit, offset int) ([]personadomain.Draft, error) {
	var drafts []personadomain.Draft
	query := r.db.Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&drafts).Error; err != nil {
		return nil, err
	}
	return drafts, nil
}

func (r *draftRepository) Update(draft *personadomain.Draft) error {
	return r.db.Save(draft).Error
}

func (r *draftRepository) ExistsForMessage(messageID string) (bool, error) {
	var count int64
	err := r.db.Model(&personadomain.Draft{}).
		Where("incoming_message_id = ?", messageID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
