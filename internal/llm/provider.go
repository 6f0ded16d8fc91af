package llm

import "context"

// Provider defines the interface for text-generation providers.
type Provider interface {
	// Generate produces a single long-form completion for the given
	// system/user instruction pair.
	Generate(ctx context.Context, request *Request) (*Response, error)

	// Name returns the provider name (e.g., "openai", "gemini")
	Name() string
}

// Request contains all parameters needed for one completion
type Request struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
}

// Usage contains the token accounting reported by the provider
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Response contains the result from the provider
type Response struct {
	Text  string `json:"text"`
	Usage Usage  `json:"usage"`
}

// Credentials carries per-account API keys. A non-empty field overrides the
// process-level key for that provider.
type Credentials struct {
	OpenAIKey string
	GeminiKey string
}
