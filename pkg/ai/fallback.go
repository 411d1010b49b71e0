package ai

import (
	"context"
	"fmt"
	"log"
	"net"
	"strings"
)

// FallbackService routes completions to a remote provider first and falls
// back to the local Ollama instance on quota or connection errors.
type FallbackService struct {
	remote CompletionService
	ollama *OllamaService
}

// NewFallbackService creates a new fallback service with both providers
func NewFallbackService(remote CompletionService, ollama *OllamaService) *FallbackService {
	return &FallbackService{
		remote: remote,
		ollama: ollama,
	}
}

// isConnectionError checks if the error is a network/connection error
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}

	if _, ok := err.(net.Error); ok {
		return true
	}

	errStr := err.Error()
	connectionIndicators := []string{
		"connection refused",
		"no such host",
		"network is unreachable",
		"connection reset",
		"timeout",
		"dial tcp",
		"EOF",
	}

	for _, indicator := range connectionIndicators {
		if strings.Contains(strings.ToLower(errStr), strings.ToLower(indicator)) {
			return true
		}
	}

	return false
}

// isQuotaError checks if the error indicates API quota exhaustion (429)
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	quotaIndicators := []string{
		"429",
		"quota",
		"rate limit",
		"too many requests",
		"resource exhausted",
		"RESOURCE_EXHAUSTED",
	}

	for _, indicator := range quotaIndicators {
		if strings.Contains(strings.ToLower(errStr), strings.ToLower(indicator)) {
			return true
		}
	}

	return false
}

// Complete tries the remote provider first, falls back to Ollama on
// quota or connection errors.
func (f *FallbackService) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if f.remote != nil {
		result, err := f.remote.Complete(ctx, prompt, maxTokens)
		if err == nil {
			return result, nil
		}

		if isQuotaError(err) {
			log.Printf("[AI] Remote provider quota exhausted: %v, falling back to Ollama", err)
		} else {
			log.Printf("[AI] Remote provider error: %v, falling back to Ollama", err)
		}
	}

	if f.ollama != nil {
		result, err := f.ollama.Complete(ctx, prompt, maxTokens)
		if err == nil {
			return result, nil
		}

		// If Ollama is unreachable too, give the remote one more shot.
		if isConnectionError(err) && f.remote != nil {
			log.Printf("[AI] Ollama connection failed: %v, retrying remote provider", err)
			return f.remote.Complete(ctx, prompt, maxTokens)
		}

		return "", fmt.Errorf("ollama completion failed: %w", err)
	}

	return "", fmt.Errorf("no AI provider available")
}
