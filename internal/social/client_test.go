package social

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListConversations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/page-1/conversations", r.URL.Path)
		assert.Equal(t, "secret-token", r.URL.Query().Get("access_token"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"data": [
				{
					"id": "t_100",
					"snippet": "xin chào",
					"updated_time": "2026-08-20T10:00:00+0000",
					"participants": {"data": [{"id": "u1", "name": "Khách"}, {"id": "page-1", "name": "Page"}]}
				}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	conversations, err := client.ListConversations(context.Background(), "page-1", "secret-token")

	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, "t_100", conversations[0].ID)
	assert.Equal(t, "xin chào", conversations[0].Snippet)
	require.Len(t, conversations[0].Participants, 2)
	assert.Equal(t, "Khách", conversations[0].Participants[0].Name)
}

func TestListMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/t_100/messages", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"data": [
				{"id": "m2", "message": "cần hỗ trợ rút tiền", "from": {"id": "u1", "name": "Khách"}, "created_time": "2026-08-20T10:05:00+0000"},
				{"id": "m1", "message": "xin chào", "from": {"id": "u1", "name": "Khách"}, "created_time": "2026-08-20T10:00:00+0000"}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	messages, err := client.ListMessages(context.Background(), "t_100", "secret-token")

	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "m2", messages[0].ID)
	assert.Equal(t, "cần hỗ trợ rút tiền", messages[0].Text)
	assert.Equal(t, "u1", messages[0].From.ID)
}

func TestSendMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/page-1/messages", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		recipient := payload["recipient"].(map[string]interface{})
		message := payload["message"].(map[string]interface{})
		assert.Equal(t, "u1", recipient["id"])
		assert.Equal(t, "chào bạn", message["text"])
		assert.Equal(t, "RESPONSE", payload["messaging_type"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"recipient_id": "u1", "message_id": "m_900"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	id, err := client.SendMessage(context.Background(), "page-1", "u1", "chào bạn", "secret-token")

	require.NoError(t, err)
	assert.Equal(t, "m_900", id)
}

func TestPublishPost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/page-1/feed", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "nội dung bài viết", r.PostForm.Get("message"))
		assert.Equal(t, "https://example.com", r.PostForm.Get("link"))
		assert.Equal(t, "secret-token", r.PostForm.Get("access_token"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "page-1_123"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	id, err := client.PublishPost(context.Background(), "page-1", "nội dung bài viết", "https://example.com", "secret-token")

	require.NoError(t, err)
	assert.Equal(t, "page-1_123", id)
}

func TestPublishPostWithoutLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		_, hasLink := r.PostForm["link"]
		assert.False(t, hasLink)

		w.Write([]byte(`{"id": "page-1_124"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	id, err := client.PublishPost(context.Background(), "page-1", "nội dung", "", "secret-token")

	require.NoError(t, err)
	assert.Equal(t, "page-1_124", id)
}

func TestPublishReel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/page-1/videos", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "https://cdn.example.com/v.mp4", r.PostForm.Get("file_url"))
		assert.Equal(t, "mô tả video", r.PostForm.Get("description"))

		w.Write([]byte(`{"id": "v_55"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	id, err := client.PublishReel(context.Background(), "page-1", "https://cdn.example.com/v.mp4", "mô tả video", "secret-token")

	require.NoError(t, err)
	assert.Equal(t, "v_55", id)
}

func TestGraphErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "Invalid OAuth access token", "type": "OAuthException", "code": 190}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	_, err := client.ListConversations(context.Background(), "page-1", "bad-token")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid OAuth access token")
	assert.Contains(t, err.Error(), "190")
}

func TestGraphErrorWithoutEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	_, err := client.PublishPost(context.Background(), "page-1", "nội dung", "", "token")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
