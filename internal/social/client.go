// Package social wraps the social platform's Graph API: inbox browsing,
// replies and post/reel publishing. It is a thin I/O layer; all content
// decisions happen upstream in the pipeline.
package social

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client talks to the Graph API for one deployment. Page access tokens are
// passed per call because each account carries its own token.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a Graph API client. A nil httpClient gets a default with
// a 30s timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
	}
}

// Participant is one side of a conversation
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Conversation is one inbox thread of a page
type Conversation struct {
	ID           string        `json:"id"`
	Snippet      string        `json:"snippet"`
	UpdatedTime  string        `json:"updated_time"`
	Participants []Participant `json:"participants"`
}

// Message is one message inside a conversation
type Message struct {
	ID          string      `json:"id"`
	Text        string      `json:"message"`
	From        Participant `json:"from"`
	CreatedTime string      `json:"created_time"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

type conversationsResponse struct {
	Data []struct {
		ID           string `json:"id"`
		Snippet      string `json:"snippet"`
		UpdatedTime  string `json:"updated_time"`
		Participants struct {
			Data []Participant `json:"data"`
		} `json:"participants"`
	} `json:"data"`
}

type messagesResponse struct {
	Data []Message `json:"data"`
}

type idResponse struct {
	ID        string `json:"id"`
	MessageID string `json:"message_id"`
}

// ListConversations returns the inbox threads of a page
func (c *Client) ListConversations(ctx context.Context, pageID, token string) ([]Conversation, error) {
	query := url.Values{
		"fields":       {"id,snippet,updated_time,participants"},
		"access_token": {token},
	}

	var resp conversationsResponse
	if err := c.get(ctx, "/"+pageID+"/conversations", query, &resp); err != nil {
		return nil, err
	}

	conversations := make([]Conversation, len(resp.Data))
	for i, raw := range resp.Data {
		conversations[i] = Conversation{
			ID:           raw.ID,
			Snippet:      raw.Snippet,
			UpdatedTime:  raw.UpdatedTime,
			Participants: raw.Participants.Data,
		}
	}
	return conversations, nil
}

// ListMessages returns the messages of a conversation, newest first as the
// API delivers them.
func (c *Client) ListMessages(ctx context.Context, conversationID, token string) ([]Message, error) {
	query := url.Values{
		"fields":       {"id,message,from,created_time"},
		"access_token": {token},
	}

	var resp messagesResponse
	if err := c.get(ctx, "/"+conversationID+"/messages", query, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// SendMessage replies to a user on behalf of the page and returns the
// message id.
func (c *Client) SendMessage(ctx context.Context, pageID, recipientID, text, token string) (string, error) {
	payload := map[string]interface{}{
		"recipient":      map[string]string{"id": recipientID},
		"message":        map[string]string{"text": text},
		"messaging_type": "RESPONSE",
	}

	var resp idResponse
	if err := c.postJSON(ctx, "/"+pageID+"/messages", token, payload, &resp); err != nil {
		return "", err
	}
	if resp.MessageID != "" {
		return resp.MessageID, nil
	}
	return resp.ID, nil
}

// PublishPost publishes a text post (optionally with a link) to the page
// feed and returns the post id.
func (c *Client) PublishPost(ctx context.Context, pageID, message, link, token string) (string, error) {
	form := url.Values{"message": {message}}
	if link != "" {
		form.Set("link", link)
	}

	var resp idResponse
	if err := c.postForm(ctx, "/"+pageID+"/feed", token, form, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// PublishReel publishes a reel from a hosted video URL and returns the
// video id.
func (c *Client) PublishReel(ctx context.Context, pageID, videoURL, description, token string) (string, error) {
	form := url.Values{
		"file_url":    {videoURL},
		"description": {description},
	}

	var resp idResponse
	if err := c.postForm(ctx, "/"+pageID+"/videos", token, form, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path, token string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	query := url.Values{"access_token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path+"?"+query.Encode(), strings.NewReader(string(body)))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) postForm(ctx context.Context, path, token string, form url.Values, out interface{}) error {
	form.Set("access_token", token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("graph request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read graph response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr apiError
		if jsonErr := json.Unmarshal(body, &apiErr); jsonErr == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("graph API error (code %d): %s", apiErr.Error.Code, apiErr.Error.Message)
		}
		return fmt.Errorf("graph API returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode graph response: %w", err)
	}
	return nil
}
