package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pagedesk/pagedesk-api/internal/logger"
)

type WebhookHandler struct {
	verifyToken string
}

func NewWebhookHandler(verifyToken string) *WebhookHandler {
	return &WebhookHandler{verifyToken: verifyToken}
}

// Verify answers the platform's webhook subscription handshake. The platform
// sends hub.mode, hub.verify_token and hub.challenge; the challenge must be
// echoed back verbatim as plain text.
func (h *WebhookHandler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && h.verifyToken != "" && token == h.verifyToken {
		c.String(http.StatusOK, challenge)
		return
	}

	logger.Warn("Webhook verification rejected", logger.Fields{
		"mode": mode,
	})
	c.String(http.StatusForbidden, "Forbidden")
}

type webhookEvent struct {
	Object string `json:"object"`
	Entry  []struct {
		ID        string                   `json:"id"`
		Time      int64                    `json:"time"`
		Messaging []map[string]interface{} `json:"messaging"`
	} `json:"entry"`
}

// Receive accepts webhook event deliveries. Events are acknowledged
// immediately; the platform retries on anything but a 200.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var event webhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.String(http.StatusBadRequest, "Bad request")
		return
	}

	for _, entry := range event.Entry {
		logger.Info("Webhook event received", logger.Fields{
			"request_id": c.GetString("request_id"),
			"object":     event.Object,
			"page_id":    entry.ID,
			"messages":   len(entry.Messaging),
		})
	}

	c.String(http.StatusOK, "EVENT_RECEIVED")
}
