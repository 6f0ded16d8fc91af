package llm

import (
	"context"
	"fmt"
	"strings"
)

// ProviderFactory creates providers based on model name, with per-account
// credential overrides taking precedence over the process-level keys.
type ProviderFactory struct {
	openaiAPIKey string
	geminiAPIKey string
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(openaiAPIKey, geminiAPIKey string) *ProviderFactory {
	return &ProviderFactory{
		openaiAPIKey: openaiAPIKey,
		geminiAPIKey: geminiAPIKey,
	}
}

// Resolve returns the appropriate provider for the given model
func (f *ProviderFactory) Resolve(ctx context.Context, model string, creds Credentials) (Provider, error) {
	modelLower := strings.ToLower(model)

	// Gemini models use the Gemini API
	if strings.HasPrefix(modelLower, "gemini") {
		apiKey := creds.GeminiKey
		if apiKey == "" {
			apiKey = f.geminiAPIKey
		}
		if apiKey == "" {
			return nil, fmt.Errorf("gemini API key not configured")
		}
		return NewGeminiProvider(ctx, apiKey)
	}

	// Default to OpenAI for GPT and unknown models
	apiKey := creds.OpenAIKey
	if apiKey == "" {
		apiKey = f.openaiAPIKey
	}
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key not configured")
	}
	return NewOpenAIProvider(apiKey), nil
}
