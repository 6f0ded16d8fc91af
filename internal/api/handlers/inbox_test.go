package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pagedesk/pagedesk-api/internal/social"
	"github.com/pagedesk/pagedesk-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubInbox struct {
	conversations []social.Conversation
	messages      []social.Message
	messageID     string
	err           error

	gotRecipient string
	gotText      string
	gotToken     string
}

func (s *stubInbox) ListConversations(_ context.Context, _, token string) ([]social.Conversation, error) {
	s.gotToken = token
	return s.conversations, s.err
}

func (s *stubInbox) ListMessages(_ context.Context, _, token string) ([]social.Message, error) {
	s.gotToken = token
	return s.messages, s.err
}

func (s *stubInbox) SendMessage(_ context.Context, _, recipientID, text, token string) (string, error) {
	s.gotRecipient = recipientID
	s.gotText = text
	s.gotToken = token
	return s.messageID, s.err
}

func newInboxRouter(client InboxClient, settings store.SettingsStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewInboxHandler(client, settings)
	router := gin.New()
	router.GET("/api/v1/inbox/:account/conversations", h.ListConversations)
	router.GET("/api/v1/inbox/:account/conversations/:id/messages", h.ListMessages)
	router.POST("/api/v1/inbox/:account/conversations/:id/reply", h.Reply)
	return router
}

func TestListConversations(t *testing.T) {
	client := &stubInbox{conversations: []social.Conversation{
		{ID: "t_100", Snippet: "xin chào"},
	}}
	router := newInboxRouter(client, settingsWithToken(t, "page-1", "token-abc"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inbox/page-1/conversations", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "token-abc", client.gotToken)

	var resp struct {
		Conversations []social.Conversation `json:"conversations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Conversations, 1)
	assert.Equal(t, "t_100", resp.Conversations[0].ID)
}

func TestListConversationsWithoutToken(t *testing.T) {
	router := newInboxRouter(&stubInbox{}, store.NewMemorySettingsStore())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inbox/page-1/conversations", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListMessages(t *testing.T) {
	client := &stubInbox{messages: []social.Message{
		{ID: "m1", Text: "cần hỗ trợ"},
	}}
	router := newInboxRouter(client, settingsWithToken(t, "page-1", "token-abc"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inbox/page-1/conversations/t_100/messages", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		ConversationID string           `json:"conversation_id"`
		Messages       []social.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "t_100", resp.ConversationID)
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "cần hỗ trợ", resp.Messages[0].Text)
}

func TestReply(t *testing.T) {
	client := &stubInbox{messageID: "m_900"}
	router := newInboxRouter(client, settingsWithToken(t, "page-1", "token-abc"))

	w := performJSON(router, http.MethodPost, "/api/v1/inbox/page-1/conversations/t_100/reply", gin.H{
		"recipient_id": "u1",
		"text":         "chào bạn",
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", client.gotRecipient)
	assert.Equal(t, "chào bạn", client.gotText)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "m_900", resp["message_id"])
}

func TestReplyGraphFailure(t *testing.T) {
	client := &stubInbox{err: errors.New("graph API error (code 10): outside messaging window")}
	router := newInboxRouter(client, settingsWithToken(t, "page-1", "token-abc"))

	w := performJSON(router, http.MethodPost, "/api/v1/inbox/page-1/conversations/t_100/reply", gin.H{
		"recipient_id": "u1",
		"text":         "chào bạn",
	})

	assert.Equal(t, http.StatusBadGateway, w.Code)
}
