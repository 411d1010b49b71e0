package delivery

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"persona-backend/internal/persona/domain"
	"persona-backend/internal/persona/repository"
	"persona-backend/internal/persona/usecase"
	"persona-backend/pkg/crypto"

	"github.com/gin-gonic/gin"
)

// Settings keys whose values are encrypted at rest. Channel credentials
// land here when configured through the API rather than the environment.
var secretSettings = map[string]bool{
	SecretImapPassword: true,
	SecretSmtpPassword: true,
	SecretSlackToken:   true,
}

// Credential keys stored encrypted and read back at wiring time.
const (
	SecretImapPassword = "imap_password"
	SecretSmtpPassword = "smtp_password"
	SecretSlackToken   = "slack_token"
)

// Settings keys writable through the API.
var writableSettings = map[string]bool{
	domain.SettingReadOnlyMode:        true,
	domain.SettingAutomationLevel:     true,
	domain.SettingConfidenceThreshold: true,
	domain.SettingInstructions:        true,
	domain.SettingGoals:               true,
	domain.SettingUserEmail:           true,
	SecretImapPassword:                true,
	SecretSmtpPassword:                true,
	SecretSlackToken:                  true,
}

type SettingsHandler struct {
	settingsRepo  repository.SettingsRepository
	encryptionKey string
}

func NewSettingsHandler(settingsRepo repository.SettingsRepository, encryptionKey string) *SettingsHandler {
	return &SettingsHandler{
		settingsRepo:  settingsRepo,
		encryptionKey: encryptionKey,
	}
}

// GetSettings returns all settings; secrets are masked, the stored
// profile is omitted (it has its own endpoint).
// GET /api/persona/settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	all, err := h.settingsRepo.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	delete(all, domain.SettingProfile)
	for key := range all {
		if secretSettings[key] {
			all[key] = "********"
		}
	}
	c.JSON(http.StatusOK, all)
}

// UpdateSettings upserts a batch of settings values.
// PUT /api/persona/settings
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req map[string]string
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for key, value := range req {
		if !writableSettings[key] {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown setting %q", key)})
			return
		}
		normalized, err := h.normalizeSetting(key, value)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		req[key] = normalized
	}

	for key, value := range req {
		if err := h.settingsRepo.Set(key, value); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "settings updated", "updated": len(req)})
}

func (h *SettingsHandler) normalizeSetting(key, value string) (string, error) {
	switch {
	case key == domain.SettingReadOnlyMode:
		if value != "true" && value != "false" {
			return "", fmt.Errorf("read_only_mode must be true or false")
		}
	case key == domain.SettingAutomationLevel:
		switch value {
		case domain.LevelManual, domain.LevelSupervised, domain.LevelSemiAuto, domain.LevelFullAuto:
		default:
			return "", fmt.Errorf("invalid automation level %q", value)
		}
	case key == domain.SettingConfidenceThreshold:
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return "", fmt.Errorf("invalid threshold %q", value)
		}
		return strconv.FormatFloat(usecase.ClampThreshold(parsed), 'f', 2, 64), nil
	case secretSettings[key]:
		if h.encryptionKey == "" {
			return "", fmt.Errorf("encryption key not configured, cannot store %s", key)
		}
		return crypto.Encrypt(value, h.encryptionKey)
	}
	return value, nil
}

// ResolveSecret returns the decrypted settings-stored credential for
// key, falling back to the environment-provided value when the setting
// is absent or cannot be decrypted.
func ResolveSecret(repo repository.SettingsRepository, encryptionKey, key, fallback string) string {
	stored, err := repo.Get(key)
	if err != nil {
		log.Printf("[Settings] Failed to read stored %s: %v", key, err)
		return fallback
	}
	if stored == "" || encryptionKey == "" {
		return fallback
	}

	plain, err := crypto.Decrypt(stored, encryptionKey)
	if err != nil {
		log.Printf("[Settings] Failed to decrypt stored %s, using environment value: %v", key, err)
		return fallback
	}
	return plain
}

// QuestionnaireRequest carries the three trinary onboarding answers,
// each 0 (cautious) to 2 (trusting).
type QuestionnaireRequest struct {
	TrustLevel    *int `json:"trust_level" binding:"required"`
	MessageVolume *int `json:"message_volume" binding:"required"`
	RiskTolerance *int `json:"risk_tolerance" binding:"required"`
}

// SubmitQuestionnaire maps the onboarding answers onto an automation
// level and stores it.
// POST /api/persona/settings/questionnaire
func (h *SettingsHandler) SubmitQuestionnaire(c *gin.Context) {
	var req QuestionnaireRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for _, answer := range []int{*req.TrustLevel, *req.MessageVolume, *req.RiskTolerance} {
		if answer < 0 || answer > 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "answers must be between 0 and 2"})
			return
		}
	}

	sum := *req.TrustLevel + *req.MessageVolume + *req.RiskTolerance
	level := usecase.MapQuestionnaire(sum)
	if err := h.settingsRepo.Set(domain.SettingAutomationLevel, level); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"automation_level": level, "score": sum})
}
