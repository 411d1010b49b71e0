package domain

import (
	"strings"
	"time"
)

// ExclusionRule blocks draft generation for a sender. Pattern is either a
// bare address ("a@b.c") or a domain suffix ("@b.c"), stored lowercased.
type ExclusionRule struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Pattern   string    `json:"pattern" gorm:"uniqueIndex;not null"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (ExclusionRule) TableName() string {
	return "exclusion_rules"
}

// Matches reports whether the rule applies to the given sender address.
func (r *ExclusionRule) Matches(address string) bool {
	address = strings.ToLower(strings.TrimSpace(address))
	if strings.HasPrefix(r.Pattern, "@") {
		at := strings.LastIndex(address, "@")
		if at < 0 {
			return false
		}
		return address[at:] == r.Pattern
	}
	return address == r.Pattern
}
