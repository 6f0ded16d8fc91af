package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pagedesk/pagedesk-api/internal/logger"
	"github.com/pagedesk/pagedesk-api/internal/metrics"
	"github.com/pagedesk/pagedesk-api/internal/models"
	"github.com/pagedesk/pagedesk-api/internal/pipeline"
	"github.com/pagedesk/pagedesk-api/internal/store"
	"gorm.io/gorm"
)

// PostGenerator runs the content generation pipeline
type PostGenerator interface {
	GeneratePostText(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error)
}

// PagePublisher publishes content to the social platform on behalf of a page
type PagePublisher interface {
	PublishPost(ctx context.Context, pageID, message, link, token string) (string, error)
	PublishReel(ctx context.Context, pageID, videoURL, description, token string) (string, error)
}

// Global Sentry metrics instance, same lifecycle as the middleware's
var sentryMetrics = metrics.NewSentryMetrics()

type PostsHandler struct {
	generator PostGenerator
	publisher PagePublisher
	settings  store.SettingsStore
	cw        *metrics.Client
	db        *gorm.DB
}

func NewPostsHandler(generator PostGenerator, publisher PagePublisher, settings store.SettingsStore, cw *metrics.Client, db *gorm.DB) *PostsHandler {
	return &PostsHandler{
		generator: generator,
		publisher: publisher,
		settings:  settings,
		cw:        cw,
		db:        db,
	}
}

// Generate runs the generation pipeline and returns the composed post text
// without publishing it.
func (h *PostsHandler) Generate(c *gin.Context) {
	var req pipeline.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.AccountID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account_id is required"})
		return
	}

	start := time.Now()
	result, err := h.generator.GeneratePostText(c.Request.Context(), &req)
	duration := time.Since(start)

	attempts := 0
	if result != nil {
		attempts = result.Attempts
	}
	sentryMetrics.RecordGenerationDuration(c.Request.Context(), duration, attempts, err == nil)
	if h.cw != nil {
		h.cw.RecordGenerationDuration(duration, attempts, err == nil)
	}

	if err != nil {
		h.respondGenerationError(c, err)
		return
	}

	sentryMetrics.RecordTokenUsage(c.Request.Context(), result.Model, result.Usage.TotalTokens, result.Usage.InputTokens, result.Usage.OutputTokens)
	if h.cw != nil {
		h.cw.RecordTokenUsage(result.Model, result.Usage.TotalTokens, result.Usage.InputTokens, result.Usage.OutputTokens)
	}

	fields := logger.WithContext(c)
	fields["filter_mode"] = result.FilterMode
	fields["total_tokens"] = result.Usage.TotalTokens
	logger.LogGeneration(req.AccountID, result.Model, result.Attempts, duration, fields)

	c.JSON(http.StatusOK, result)
}

type PublishPostRequest struct {
	AccountID string `json:"account_id" binding:"required"`
	Message   string `json:"message" binding:"required"`
	Link      string `json:"link"`
}

// PublishPost publishes a text post to the account's page feed
func (h *PostsHandler) PublishPost(c *gin.Context) {
	var req PublishPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, ok := h.pageToken(c, req.AccountID)
	if !ok {
		return
	}

	remoteID, err := h.publisher.PublishPost(c.Request.Context(), req.AccountID, req.Message, req.Link, token)
	sentryMetrics.RecordPublish(c.Request.Context(), "post", err == nil)
	if h.cw != nil {
		h.cw.RecordPublish("post", err == nil)
	}
	if err != nil {
		logger.Error("Post publish failed", err, logger.Fields{
			"request_id": c.GetString("request_id"),
			"account_id": req.AccountID,
		})
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to publish post: " + err.Error()})
		return
	}

	h.recordPublish(c, req.AccountID, "post", remoteID, len(req.Message))

	c.JSON(http.StatusOK, gin.H{
		"post_id":    remoteID,
		"account_id": req.AccountID,
	})
}

type PublishReelRequest struct {
	AccountID   string `json:"account_id" binding:"required"`
	VideoURL    string `json:"video_url" binding:"required"`
	Description string `json:"description"`
}

// PublishReel publishes a reel from a hosted video URL
func (h *PostsHandler) PublishReel(c *gin.Context) {
	var req PublishReelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, ok := h.pageToken(c, req.AccountID)
	if !ok {
		return
	}

	remoteID, err := h.publisher.PublishReel(c.Request.Context(), req.AccountID, req.VideoURL, req.Description, token)
	sentryMetrics.RecordPublish(c.Request.Context(), "reel", err == nil)
	if h.cw != nil {
		h.cw.RecordPublish("reel", err == nil)
	}
	if err != nil {
		logger.Error("Reel publish failed", err, logger.Fields{
			"request_id": c.GetString("request_id"),
			"account_id": req.AccountID,
		})
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to publish reel: " + err.Error()})
		return
	}

	h.recordPublish(c, req.AccountID, "reel", remoteID, len(req.Description))

	c.JSON(http.StatusOK, gin.H{
		"video_id":   remoteID,
		"account_id": req.AccountID,
	})
}

func (h *PostsHandler) respondGenerationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pipeline.ErrMissingKeywordOrLink):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Keyword or link is required; set it in the request or the account settings"})
	case errors.Is(err, pipeline.ErrMissingCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No API key configured for the requested model"})
	case errors.Is(err, pipeline.ErrPolicyViolation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Generated content violated the content policy"})
	default:
		var genErr *pipeline.GenerationError
		if errors.As(err, &genErr) {
			logger.Error("Generation failed", genErr, logger.Fields{
				"request_id": c.GetString("request_id"),
				"provider":   genErr.Provider,
				"model":      genErr.Model,
			})
			c.JSON(http.StatusBadGateway, gin.H{"error": "Text generation failed: " + genErr.Error()})
			return
		}
		logger.Error("Generation failed", err, logger.Fields{
			"request_id": c.GetString("request_id"),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// pageToken resolves the page access token for an account, writing the error
// response itself when it cannot.
func (h *PostsHandler) pageToken(c *gin.Context, accountID string) (string, bool) {
	setting, err := h.settings.Get(c.Request.Context(), accountID)
	if err != nil {
		logger.Error("Failed to load account settings", err, logger.Fields{
			"account_id": accountID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load account settings"})
		return "", false
	}
	if setting == nil || setting.PageToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No page token configured for this account"})
		return "", false
	}
	return setting.PageToken, true
}

func (h *PostsHandler) recordPublish(c *gin.Context, accountID, kind, remoteID string, textLength int) {
	if h.db == nil {
		return
	}

	entry := models.PublishLog{
		RequestID:  c.GetString("request_id"),
		AccountID:  accountID,
		Kind:       kind,
		RemoteID:   remoteID,
		TextLength: textLength,
	}
	if err := h.db.Create(&entry).Error; err != nil {
		logger.Warn("Failed to record publish log", logger.Fields{
			"account_id": accountID,
			"kind":       kind,
			"error":      err.Error(),
		})
	}
}
