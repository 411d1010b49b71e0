package domain

import "time"

// Draft statuses
const (
	StatusPendingReview = "pending_review"
	StatusAutoApproved  = "auto_approved"
	StatusApproved      = "approved"
	StatusSent          = "sent"
	StatusRejected      = "rejected"
)

// Draft categories produced by the reply prompt. The prompt is
// constrained to this set; anything else degrades to "general".
const (
	CategoryAcknowledgment    = "acknowledgment"
	CategoryMeetingScheduling = "meeting_scheduling"
	CategoryRoutine           = "routine"
	CategoryComplex           = "complex"
	CategoryNegotiation       = "negotiation"
	CategoryCommitment        = "commitment"
	CategoryGeneral           = "general"
)

// Draft is a candidate reply awaiting review, approval or auto-send.
type Draft struct {
	ID                string     `json:"id" gorm:"primaryKey"`
	IncomingMessageID *string    `json:"incoming_message_id" gorm:"uniqueIndex"`
	Recipient         string     `json:"recipient" gorm:"not null"`
	Subject           string     `json:"subject"`
	Body              string     `json:"body" gorm:"type:text"`
	Status            string     `json:"status" gorm:"index;default:pending_review"`
	Confidence        float64    `json:"confidence"`
	Category          string     `json:"category"`
	Reasoning         string     `json:"reasoning" gorm:"type:text"`
	OriginalBody      string     `json:"original_body" gorm:"type:text"`
	SentAt            *time.Time `json:"sent_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Draft) TableName() string {
	return "drafts"
}

// Terminal reports whether the draft can no longer change state.
func (d *Draft) Terminal() bool {
	return d.Status == StatusSent || d.Status == StatusRejected
}

// CanTransition checks a status change against the draft state machine.
func CanTransition(from, to string) bool {
	switch from {
	case StatusPendingReview, StatusAutoApproved:
		return to == StatusApproved || to == StatusRejected || to == StatusSent
	case StatusApproved:
		return to == StatusSent || to == StatusRejected
	default:
		// sent and rejected are terminal
		return false
	}
}
