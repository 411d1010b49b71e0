package domain

// StyleProfile is the distilled fingerprint of the user's writing voice.
// It is stored as JSON under the persona_profile setting; at most one
// profile exists and replacement is atomic (single settings row upsert).
type StyleProfile struct {
	Tone                   string   `json:"tone"`
	FormalityLevel         string   `json:"formality_level"`
	ResponseLengthTendency string   `json:"response_length_tendency"`
	SentenceStructure      string   `json:"sentence_structure"`
	GreetingPatterns       []string `json:"greeting_patterns"`
	SignOffPatterns        []string `json:"sign_off_patterns"`
	CommonPhrases          []string `json:"common_phrases"`
	VocabularyPatterns     []string `json:"vocabulary_patterns"`
	EmailCategories        []string `json:"email_categories"`
	Avoids                 []string `json:"avoids"`

	// RawAnalysis holds the unparsed LLM output when JSON extraction
	// failed. A profile with RawAnalysis set is degraded but usable.
	RawAnalysis string `json:"raw_analysis,omitempty"`
}

// Degraded reports whether the profile was persisted without structure.
func (p *StyleProfile) Degraded() bool {
	return p.RawAnalysis != ""
}
