package repository

import (
	personadomain "persona-backend/internal/persona/domain"

	"gorm.io/gorm"
)

// MessageRepository defines the interface for incoming message persistence
type MessageRepository interface {
	Create(msg *personadomain.IncomingMessage) error
	GetByID(id string) (*personadomain.IncomingMessage, error)
	// ListUndrafted returns messages with no draft yet, oldest first.
	ListUndrafted(limit int) ([]personadomain.IncomingMessage, error)
	// KnownSenders returns distinct sender addresses seen before the
	// given message was created.
	KnownSenders(excludeMessageID string) ([]string, error)
}

// messageRepository implements MessageRepository interface
type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new instance of messageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(msg *personadomain.IncomingMessage) error {
	return r.db.Create(msg).Error
}

func (r *messageRepository) GetByID(id string) (*personadomain.IncomingMessage, error) {
	var msg personadomain.IncomingMessage
	err := r.db.Where("id = ?", id).First(&msg).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) ListUndrafted(limit int) ([]personadomain.IncomingMessage, error) {
	var msgs []personadomain.IncomingMessage
	query := r.db.
		Where("NOT EXISTS (SELECT 1 FROM drafts WHERE drafts.incoming_message_id = incoming_messages.id)").
		Order("received_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *messageRepository) KnownSenders(excludeMessageID string) ([]string, error) {
	var senders []string
	query := r.db.Model(&personadomain.IncomingMessage{}).Distinct("sender")
	if excludeMessageID != "" {
		// Only messages that arrived strictly earlier count; two
		// first-contact messages in one batch must not vouch for
		// each other.
		query = query.Where(
			"created_at < (SELECT created_at FROM incoming_messages WHERE id = ?)",
			excludeMessageID,
		)
	}
	if err := query.Pluck("sender", &senders).Error; err != nil {
		return nil, err
	}
	return senders, nil
}
