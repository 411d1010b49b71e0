package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	personadomain "persona-backend/internal/persona/domain"
	"persona-backend/pkg/prompts"
)

const (
	profilePoolSize    = 200
	profileSampleCount = 50
	profileMaxTokens   = 1024
)

// BuildProfile distills the style profile from a diverse corpus sample
// and replaces the current profile atomically.
func (u *personaUsecase) BuildProfile(ctx context.Context) (*personadomain.StyleProfile, error) {
	u.rebuildMu.RLock()
	defer u.rebuildMu.RUnlock()
	return u.buildProfile(ctx)
}

func (u *personaUsecase) buildProfile(ctx context.Context) (*personadomain.StyleProfile, error) {
	samples, err := u.sampleRepo.SamplePool(profileSampleCount, profilePoolSize)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples ingested yet")
	}

	texts := make([]string, 0, len(samples))
	for _, s := range samples {
		texts = append(texts, s.Content)
	}
	corpus := strings.Join(texts, "\n---\n")

	template, err := u.prompts.Load(prompts.ProfileAnalysis)
	if err != nil {
		return nil, err
	}
	prompt := prompts.Render(template, map[string]string{"corpus": corpus})

	raw, err := u.llm.Complete(ctx, prompt, profileMaxTokens)
	if err != nil {
		// Profile stays unchanged on LLM failure.
		return nil, fmt.Errorf("profile analysis failed: %w", err)
	}

	profile := parseProfile(raw)
	if profile.Degraded() {
		log.Printf("[Profile] Analysis returned unparseable JSON, persisting degraded profile")
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return nil, err
	}
	if err := u.settingsRepo.Set(personadomain.SettingProfile, string(data)); err != nil {
		return nil, err
	}

	log.Printf("[Profile] Rebuilt from %d samples", len(samples))
	return profile, nil
}

// parseProfile extracts the structured profile, falling back to a
// degraded raw-analysis record.
func parseProfile(raw string) *personadomain.StyleProfile {
	if jsonStr, ok := extractJSONObject(raw); ok {
		var profile personadomain.StyleProfile
		if err := json.Unmarshal([]byte(jsonStr), &profile); err == nil && profile.Tone != "" {
			return &profile
		}
	}
	return &personadomain.StyleProfile{RawAnalysis: strings.TrimSpace(raw)}
}

// GetProfile returns the current profile, nil when none exists.
func (u *personaUsecase) GetProfile() (*personadomain.StyleProfile, error) {
	value, err := u.settingsRepo.Get(personadomain.SettingProfile)
	if err != nil {
		return nil, err
	}
	if value == "" {
		return nil, nil
	}

	var profile personadomain.StyleProfile
	if err := json.Unmarshal([]byte(value), &profile); err != nil {
		return nil, fmt.Errorf("stored profile is corrupt: %w", err)
	}
	return &profile, nil
}
