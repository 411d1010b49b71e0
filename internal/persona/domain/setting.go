package domain

import "time"

// Settings keys read by the engine.
const (
	SettingReadOnlyMode        = "read_only_mode"
	SettingAutomationLevel     = "automation_level"
	SettingConfidenceThreshold = "persona_confidence_threshold"
	SettingInstructions        = "persona_instructions"
	SettingGoals               = "persona_goals"
	SettingProfile             = "persona_profile"
	SettingUserEmail           = "user_email"
)

// Automation levels
const (
	LevelManual     = "manual"
	LevelSupervised = "supervised"
	LevelSemiAuto   = "semi_auto"
	LevelFullAuto   = "full_auto"
)

// Setting is one key/value row of runtime configuration.
type Setting struct {
	Key       string    `json:"key" gorm:"primaryKey"`
	Value     string    `json:"value" gorm:"type:text"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Setting) TableName() string {
	return "settings"
}
