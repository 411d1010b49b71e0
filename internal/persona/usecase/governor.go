package usecase

import (
	"errors"
	"strconv"

	personadomain "persona-backend/internal/persona/domain"
)

// Confidence threshold bounds.
const (
	DefaultThreshold = 0.85
	MinThreshold     = 0.50
	MaxThreshold     = 1.00
)

// ErrReadOnly is the structured refusal for sends in read-only mode.
var ErrReadOnly = errors.New("Read-only mode is active.")

// Categories eligible for auto-approval under semi_auto.
var semiAutoCategories = map[string]bool{
	personadomain.CategoryAcknowledgment:    true,
	personadomain.CategoryMeetingScheduling: true,
	personadomain.CategoryRoutine:           true,
}

// initialStatus maps automation level, confidence and category onto the
// draft's starting status.
func initialStatus(level string, confidence, threshold float64, category string) string {
	switch level {
	case personadomain.LevelSemiAuto:
		if confidence >= threshold && semiAutoCategories[category] {
			return personadomain.StatusAutoApproved
		}
	case personadomain.LevelFullAuto:
		if confidence >= threshold {
			return personadomain.StatusAutoApproved
		}
	}
	// manual and supervised always queue for review
	return personadomain.StatusPendingReview
}

// ClampThreshold forces a threshold into the valid range.
func ClampThreshold(v float64) float64 {
	if v < MinThreshold {
		return MinThreshold
	}
	if v > MaxThreshold {
		return MaxThreshold
	}
	return v
}

func parseThreshold(s string) float64 {
	if s == "" {
		return DefaultThreshold
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return DefaultThreshold
	}
	return ClampThreshold(v)
}

// MapQuestionnaire buckets the onboarding questionnaire sum (0-6, three
// trinary answers) into an automation level.
func MapQuestionnaire(sum int) string {
	switch {
	case sum <= 1:
		return personadomain.LevelManual
	case sum <= 3:
		return personadomain.LevelSupervised
	case sum <= 5:
		return personadomain.LevelSemiAuto
	default:
		return personadomain.LevelFullAuto
	}
}

// automationSettings reads the governor's three control settings.
func (u *personaUsecase) automationSettings() (level string, threshold float64, readOnly bool, err error) {
	level, err = u.settingsRepo.Get(personadomain.SettingAutomationLevel)
	if err != nil {
		return "", 0, false, err
	}
	if level == "" {
		level = personadomain.LevelManual
	}

	raw, err := u.settingsRepo.Get(personadomain.SettingConfidenceThreshold)
	if err != nil {
		return "", 0, false, err
	}
	threshold = parseThreshold(raw)

	ro, err := u.settingsRepo.Get(personadomain.SettingReadOnlyMode)
	if err != nil {
		return "", 0, false, err
	}
	readOnly = ro == "true"

	return level, threshold, readOnly, nil
}
