package domain

import "time"

// Urgency levels for incoming messages
const (
	UrgencyCritical  = "critical"
	UrgencyImportant = "important"
	UrgencyRoutine   = "routine"
	UrgencyFYI       = "fyi"
)

// IncomingMessage is an inbound email handed to the engine by the mail
// collaborator. Immutable after creation.
type IncomingMessage struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	Sender     string    `json:"sender" gorm:"index;not null"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body" gorm:"type:text"`
	Urgency    string    `json:"urgency" gorm:"default:routine"`
	ReceivedAt time.Time `json:"received_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (IncomingMessage) TableName() string {
	return "incoming_messages"
}
