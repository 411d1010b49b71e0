package ai

import "context"

// CompletionService is the interface for text completion providers.
// Implement this interface to add new AI providers (Gemini, Ollama,
// OpenAI, etc.). maxTokens is a soft output budget; providers map it to
// their own knob.
type CompletionService interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderOllama ProviderType = "ollama"
	ProviderOpenAI ProviderType = "openai"
	ProviderAuto   ProviderType = "auto"
)
