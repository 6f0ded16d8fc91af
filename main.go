package main

import (
	"context"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/pagedesk/pagedesk-api/internal/api"
	"github.com/pagedesk/pagedesk-api/internal/config"
	"github.com/pagedesk/pagedesk-api/internal/database"
	"github.com/pagedesk/pagedesk-api/internal/llm"
	"github.com/pagedesk/pagedesk-api/internal/metrics"
	"github.com/pagedesk/pagedesk-api/internal/observability"
	"github.com/pagedesk/pagedesk-api/internal/pipeline"
	"github.com/pagedesk/pagedesk-api/internal/social"
	"github.com/pagedesk/pagedesk-api/internal/store"
)

const (
	sentryFlushTimeout    = 2 * time.Second
	environmentProduction = "production"
)

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

// GetVersion returns the current release version
func GetVersion() string {
	return releaseVersion
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Initialize Sentry
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "pagedesk-api@" + releaseVersion,
			EnableTracing:    true,
			TracesSampleRate: 1.0, // 100% sampling for now, adjust based on volume
			EnableLogs:       true,
			Debug:            cfg.Environment != environmentProduction,
			BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
				// Filter out sensitive data
				if event.Request != nil {
					event.Request.Headers = filterSensitiveHeaders(event.Request.Headers)
				}
				return event
			},
		}); err != nil {
			log.Printf("Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s, release: %s)", cfg.Environment, releaseVersion)
			// Flush on shutdown
			defer sentry.Flush(sentryFlushTimeout)
		}
	} else {
		log.Println("⚠️  Sentry not configured (SENTRY_DSN not set)")
	}

	ctx := context.Background()

	// Initialize Langfuse for LLM observability
	observability.InitializeLangfuse(ctx, cfg)

	// Initialize stores; without DATABASE_URL everything runs in memory
	var deps api.Dependencies
	if cfg.DatabaseURL != "" {
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			sentry.CaptureException(err)
			log.Fatal("Failed to connect to database:", err)
		}
		if err := database.Migrate(db); err != nil {
			sentry.CaptureException(err)
			log.Fatal("Failed to run migrations:", err)
		}
		deps.DB = db
		deps.Settings = store.NewGormSettingsStore(db)
		deps.Corpus = store.NewGormCorpusStore(db)
		log.Println("💾 Storage: Postgres")
	} else {
		deps.Settings = store.NewMemorySettingsStore()
		deps.Corpus = store.NewMemoryCorpusStore()
		log.Println("💾 Storage: in-memory (DATABASE_URL not set)")
	}

	// CloudWatch custom metrics (production only)
	cw, err := metrics.NewClient(ctx, cfg.Environment)
	if err != nil {
		log.Printf("⚠️  CloudWatch metrics unavailable: %v", err)
	}
	deps.CloudWatch = cw

	// Generation pipeline
	providers := llm.NewProviderFactory(cfg.OpenAIAPIKey, cfg.GeminiAPIKey)
	deps.Generator = pipeline.NewService(
		store.NewPipelineSettings(deps.Settings),
		deps.Corpus,
		providers,
		pipeline.ServiceOptions{
			FilterMode:   cfg.ContentFilterMode,
			DefaultModel: cfg.DefaultModel,
		},
	)

	// Graph API client
	deps.Social = social.NewClient(cfg.GraphBaseURL, nil)

	// Set Gin mode
	if cfg.Environment == environmentProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	router := api.SetupRouter(deps, cfg, GetVersion())

	// Start server
	log.Printf("🚀 Starting server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to start server:", err)
	}
}

func filterSensitiveHeaders(headers map[string]string) map[string]string {
	filtered := make(map[string]string)
	sensitiveKeys := map[string]bool{
		"authorization": true,
		"cookie":        true,
		"x-api-key":     true,
	}

	for k, v := range headers {
		if sensitiveKeys[k] {
			filtered[k] = "[REDACTED]"
		} else {
			filtered[k] = v
		}
	}
	return filtered
}
