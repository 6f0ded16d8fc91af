package api

import (
	"github.com/gin-gonic/gin"
	"github.com/pagedesk/pagedesk-api/internal/api/handlers"
	apimiddleware "github.com/pagedesk/pagedesk-api/internal/api/middleware"
	"github.com/pagedesk/pagedesk-api/internal/config"
	"github.com/pagedesk/pagedesk-api/internal/metrics"
	"github.com/pagedesk/pagedesk-api/internal/pipeline"
	"github.com/pagedesk/pagedesk-api/internal/social"
	"github.com/pagedesk/pagedesk-api/internal/store"
	"gorm.io/gorm"
)

// Dependencies bundles the shared services the routes are built from
type Dependencies struct {
	DB         *gorm.DB // nil when running on in-memory stores
	Settings   store.SettingsStore
	Corpus     store.CorpusStore
	Generator  *pipeline.Service
	Social     *social.Client
	CloudWatch *metrics.Client
}

func SetupRouter(deps Dependencies, cfg *config.Config, version string) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking(deps.CloudWatch))

	// CORS middleware
	router.Use(apimiddleware.CORS())

	// Health check
	healthHandler := handlers.NewHealthHandler(deps.DB)
	router.GET("/health", healthHandler.HealthCheck)

	// Metrics endpoint
	metricsHandler := handlers.NewMetricsHandler(version)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	// Webhook endpoints (called by the social platform, not the dashboard)
	webhookHandler := handlers.NewWebhookHandler(cfg.WebhookVerifyToken)
	router.GET("/webhook", webhookHandler.Verify)
	router.POST("/webhook", webhookHandler.Receive)

	v1 := router.Group("/api/v1")
	{
		// Content generation and publishing
		postsHandler := handlers.NewPostsHandler(deps.Generator, deps.Social, deps.Settings, deps.CloudWatch, deps.DB)
		v1.POST("/posts/generate", postsHandler.Generate)
		v1.POST("/posts/publish", postsHandler.PublishPost)
		v1.POST("/reels/publish", postsHandler.PublishReel)

		// Inbox
		inboxHandler := handlers.NewInboxHandler(deps.Social, deps.Settings)
		v1.GET("/inbox/:account/conversations", inboxHandler.ListConversations)
		v1.GET("/inbox/:account/conversations/:id/messages", inboxHandler.ListMessages)
		v1.POST("/inbox/:account/conversations/:id/reply", inboxHandler.Reply)

		// Account settings
		settingsHandler := handlers.NewSettingsHandler(deps.Settings)
		v1.GET("/accounts/:id/settings", settingsHandler.GetSettings)
		v1.PUT("/accounts/:id/settings", settingsHandler.UpdateSettings)
		v1.GET("/accounts/export", settingsHandler.ExportCSV)
		v1.POST("/accounts/import", settingsHandler.ImportCSV)
	}

	return router
}
