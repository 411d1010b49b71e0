package ai

import "fmt"

// Config holds AI provider configuration
type Config struct {
	Provider ProviderType

	// Gemini config
	GeminiAPIKey string

	// OpenAI config
	OpenAIAPIKey string

	// Ollama config
	OllamaBaseURL string // e.g., "http://localhost:11434"
	OllamaModel   string // e.g., "llama3", "mistral"
}

// NewCompletionService creates a CompletionService based on the config
// This is the factory function - switch AI provider by changing config.Provider
func NewCompletionService(cfg Config) (CompletionService, error) {
	switch cfg.Provider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		return NewGeminiService(cfg.GeminiAPIKey), nil

	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for OpenAI provider")
		}
		return NewOpenAIService(cfg.OpenAIAPIKey), nil

	case ProviderOllama:
		return NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel), nil

	default:
		// Prefer a remote provider when a key is available, pair it with
		// Ollama as the fallback when both sides exist.
		var remote CompletionService
		if cfg.GeminiAPIKey != "" {
			remote = NewGeminiService(cfg.GeminiAPIKey)
		} else if cfg.OpenAIAPIKey != "" {
			remote = NewOpenAIService(cfg.OpenAIAPIKey)
		}
		ollama := NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel)
		if remote != nil {
			return NewFallbackService(remote, ollama), nil
		}
		return ollama, nil
	}
}
