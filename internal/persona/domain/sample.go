package domain

import "time"

// Source types for writing samples. Dedup scope is per source type.
const (
	SourceEmailSent           = "email_sent"
	SourceEmailInboundContext = "email_inbound_context"
	SourceDocument            = "document"
	SourceChat                = "chat"
	SourceWhatsApp            = "whatsapp"
	SourceTelegram            = "telegram"
	SourceSlack               = "slack"
	SourceCalendar            = "calendar"
)

// MinSampleChars is the shortest chunk worth keeping.
const MinSampleChars = 20

// Sample is one deduplicated chunk of the user's writing.
type Sample struct {
	ID          string            `json:"id" gorm:"primaryKey"`
	Content     string            `json:"content" gorm:"type:text;not null"`
	SourceType  string            `json:"source_type" gorm:"uniqueIndex:idx_source_hash;index;not null"`
	Metadata    map[string]string `json:"metadata" gorm:"serializer:json"`
	ContentHash string            `json:"content_hash" gorm:"uniqueIndex:idx_source_hash;not null"`
	EmbeddedAt  *time.Time        `json:"embedded_at"`
	CreatedAt   time.Time         `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Sample) TableName() string {
	return "samples"
}

// VectorID returns the id of the companion vector in the index.
func (s *Sample) VectorID() string {
	return "sample_" + s.ID
}
