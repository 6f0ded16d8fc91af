package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pagedesk/pagedesk-api/internal/logger"
	"github.com/pagedesk/pagedesk-api/internal/social"
	"github.com/pagedesk/pagedesk-api/internal/store"
)

// InboxClient reads and answers page conversations
type InboxClient interface {
	ListConversations(ctx context.Context, pageID, token string) ([]social.Conversation, error)
	ListMessages(ctx context.Context, conversationID, token string) ([]social.Message, error)
	SendMessage(ctx context.Context, pageID, recipientID, text, token string) (string, error)
}

type InboxHandler struct {
	client   InboxClient
	settings store.SettingsStore
}

func NewInboxHandler(client InboxClient, settings store.SettingsStore) *InboxHandler {
	return &InboxHandler{client: client, settings: settings}
}

// ListConversations returns the inbox threads of an account's page
func (h *InboxHandler) ListConversations(c *gin.Context) {
	accountID := c.Param("account")

	token, ok := h.pageToken(c, accountID)
	if !ok {
		return
	}

	conversations, err := h.client.ListConversations(c.Request.Context(), accountID, token)
	if err != nil {
		logger.Error("Failed to list conversations", err, logger.Fields{
			"request_id": c.GetString("request_id"),
			"account_id": accountID,
		})
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to list conversations: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"account_id":    accountID,
		"conversations": conversations,
	})
}

// ListMessages returns the messages in one conversation
func (h *InboxHandler) ListMessages(c *gin.Context) {
	accountID := c.Param("account")
	conversationID := c.Param("id")

	token, ok := h.pageToken(c, accountID)
	if !ok {
		return
	}

	messages, err := h.client.ListMessages(c.Request.Context(), conversationID, token)
	if err != nil {
		logger.Error("Failed to list messages", err, logger.Fields{
			"request_id":      c.GetString("request_id"),
			"account_id":      accountID,
			"conversation_id": conversationID,
		})
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to list messages: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation_id": conversationID,
		"messages":        messages,
	})
}

type ReplyRequest struct {
	RecipientID string `json:"recipient_id" binding:"required"`
	Text        string `json:"text" binding:"required"`
}

// Reply sends a message to a user in a conversation on behalf of the page
func (h *InboxHandler) Reply(c *gin.Context) {
	accountID := c.Param("account")

	var req ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, ok := h.pageToken(c, accountID)
	if !ok {
		return
	}

	messageID, err := h.client.SendMessage(c.Request.Context(), accountID, req.RecipientID, req.Text, token)
	if err != nil {
		logger.Error("Failed to send reply", err, logger.Fields{
			"request_id": c.GetString("request_id"),
			"account_id": accountID,
		})
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send reply: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message_id": messageID,
	})
}

func (h *InboxHandler) pageToken(c *gin.Context, accountID string) (string, bool) {
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
