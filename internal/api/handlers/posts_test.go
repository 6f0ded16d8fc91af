package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pagedesk/pagedesk-api/internal/llm"
	"github.com/pagedesk/pagedesk-api/internal/models"
	"github.com/pagedesk/pagedesk-api/internal/pipeline"
	"github.com/pagedesk/pagedesk-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	result *pipeline.Result
	err    error
}

func (s *stubGenerator) GeneratePostText(_ context.Context, _ *pipeline.Request) (*pipeline.Result, error) {
	return s.result, s.err
}

type stubPublisher struct {
	postID string
	reelID string
	err    error

	gotMessage string
	gotLink    string
	gotToken   string
}

func (s *stubPublisher) PublishPost(_ context.Context, _, message, link, token string) (string, error) {
	s.gotMessage = message
	s.gotLink = link
	s.gotToken = token
	return s.postID, s.err
}

func (s *stubPublisher) PublishReel(_ context.Context, _, videoURL, description, token string) (string, error) {
	s.gotMessage = description
	s.gotLink = videoURL
	s.gotToken = token
	return s.reelID, s.err
}

func settingsWithToken(t *testing.T, accountID, token string) store.SettingsStore {
	t.Helper()
	settings := store.NewMemorySettingsStore()
	require.NoError(t, settings.Put(context.Background(), &models.AccountSetting{
		AccountID: accountID,
		PageToken: token,
	}))
	return settings
}

func performJSON(router *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func newPostsRouter(h *PostsHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/v1/posts/generate", h.Generate)
	router.POST("/api/v1/posts/publish", h.PublishPost)
	router.POST("/api/v1/reels/publish", h.PublishReel)
	return router
}

func TestGenerateReturnsPipelineResult(t *testing.T) {
	generator := &stubGenerator{result: &pipeline.Result{
		Text:       "bài viết hoàn chỉnh",
		FilterMode: "soft",
		Attempts:   1,
		Model:      "gemini-2.5-flash",
		Usage:      llm.Usage{InputTokens: 120, OutputTokens: 80, TotalTokens: 200},
	}}
	h := NewPostsHandler(generator, &stubPublisher{}, store.NewMemorySettingsStore(), nil, nil)
	router := newPostsRouter(h)

	w := performJSON(router, http.MethodPost, "/api/v1/posts/generate", gin.H{
		"account_id": "page-1",
		"topic":      "khuyến mãi",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var result pipeline.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "bài viết hoàn chỉnh", result.Text)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, 200, result.Usage.TotalTokens)
}

func TestGenerateRequiresAccountID(t *testing.T) {
	h := NewPostsHandler(&stubGenerator{}, &stubPublisher{}, store.NewMemorySettingsStore(), nil, nil)
	router := newPostsRouter(h)

	w := performJSON(router, http.MethodPost, "/api/v1/posts/generate", gin.H{"topic": "khuyến mãi"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"missing keyword and link", pipeline.ErrMissingKeywordOrLink, http.StatusBadRequest},
		{"missing credentials", pipeline.ErrMissingCredentials, http.StatusBadRequest},
		{"policy violation", pipeline.ErrPolicyViolation, http.StatusUnprocessableEntity},
		{"provider failure", &pipeline.GenerationError{Provider: "openai", Model: "gpt-4o-mini", Err: errors.New("rate limited")}, http.StatusBadGateway},
		{"unexpected failure", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewPostsHandler(&stubGenerator{err: tt.err}, &stubPublisher{}, store.NewMemorySettingsStore(), nil, nil)
			router := newPostsRouter(h)

			w := performJSON(router, http.MethodPost, "/api/v1/posts/generate", gin.H{"account_id": "page-1"})

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestPublishPostUsesPageToken(t *testing.T) {
	publisher := &stubPublisher{postID: "page-1_42"}
	h := NewPostsHandler(&stubGenerator{}, publisher, settingsWithToken(t, "page-1", "token-abc"), nil, nil)
	router := newPostsRouter(h)

	w := performJSON(router, http.MethodPost, "/api/v1/posts/publish", gin.H{
		"account_id": "page-1",
		"message":    "nội dung bài viết",
		"link":       "https://example.com",
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "token-abc", publisher.gotToken)
	assert.Equal(t, "nội dung bài viết", publisher.gotMessage)
	assert.Equal(t, "https://example.com", publisher.gotLink)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "page-1_42", resp["post_id"])
}

func TestPublishPostWithoutPageToken(t *testing.T) {
	h := NewPostsHandler(&stubGenerator{}, &stubPublisher{}, store.NewMemorySettingsStore(), nil, nil)
	router := newPostsRouter(h)

	w := performJSON(router, http.MethodPost, "/api/v1/posts/publish", gin.H{
		"account_id": "page-1",
		"message":    "nội dung",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "page token")
}

func TestPublishPostGraphFailure(t *testing.T) {
	publisher := &stubPublisher{err: errors.New("graph API error (code 190): Invalid OAuth access token")}
	h := NewPostsHandler(&stubGenerator{}, publisher, settingsWithToken(t, "page-1", "expired"), nil, nil)
	router := newPostsRouter(h)

	w := performJSON(router, http.MethodPost, "/api/v1/posts/publish", gin.H{
		"account_id": "page-1",
		"message":    "nội dung",
	})

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestPublishReel(t *testing.T) {
	publisher := &stubPublisher{reelID: "v_7"}
	h := NewPostsHandler(&stubGenerator{}, publisher, settingsWithToken(t, "page-1", "token-abc"), nil, nil)
	router := newPostsRouter(h)

	w := performJSON(router, http.MethodPost, "/api/v1/reels/publish", gin.H{
		"account_id":  "page-1",
		"video_url":   "https://cdn.example.com/v.mp4",
		"description": "mô tả",
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://cdn.example.com/v.mp4", publisher.gotLink)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "v_7", resp["video_id"])
}
