package config

import "os"

// Content filter modes. "off" disables both the rewrite and the reject pass
// and must be an explicit operator choice, never a default.
const (
	FilterModeSoft = "soft"
	FilterModeHard = "hard"
	FilterModeOff  = "off"
)

// Config holds the application configuration
type Config struct {
	// Environment
	Environment string
	Port        string

	// Database
	DatabaseURL string // Postgres DSN; empty runs with in-memory stores

	// LLM API Keys (process-level defaults, overridable per account)
	OpenAIAPIKey string // OpenAI API key for GPT models
	GeminiAPIKey string // Google Gemini API key
	DefaultModel string // Model used when a request does not name one

	// Graph API
	GraphBaseURL       string // Social platform Graph API base URL
	WebhookVerifyToken string // Token echoed during webhook subscription

	// Content pipeline
	ContentFilterMode string // "soft", "hard" or "off"

	// Observability
	SentryDSN         string // Sentry DSN for error tracking
	LangfusePublicKey string // Langfuse public key
	LangfuseSecretKey string // Langfuse secret key
	LangfuseHost      string // Langfuse host URL (cloud or self-hosted)
	LangfuseEnabled   bool   // Feature flag for Langfuse
}

func Load() *Config {
	return &Config{
		Environment:        getEnv("ENVIRONMENT", "development"),
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		DefaultModel:       getEnv("DEFAULT_MODEL", "gemini-2.5-flash"),
		GraphBaseURL:       getEnv("GRAPH_BASE_URL", "https://graph.facebook.com/v19.0"),
		WebhookVerifyToken: getEnv("WEBHOOK_VERIFY_TOKEN", ""),
		ContentFilterMode:  getEnv("CONTENT_FILTER_MODE", FilterModeSoft),
		SentryDSN:          getEnv("SENTRY_DSN", ""),
		LangfusePublicKey:  getEnv("LANGFUSE_PUBLIC_KEY", ""),
		LangfuseSecretKey:  getEnv("LANGFUSE_SECRET_KEY", ""),
		LangfuseHost:       getEnv("LANGFUSE_HOST", "https://cloud.langfuse.com"),
		LangfuseEnabled:    getEnv("LANGFUSE_ENABLED", "false") == "true",
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}
