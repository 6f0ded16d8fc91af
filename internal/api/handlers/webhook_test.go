package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newWebhookRouter(verifyToken string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewWebhookHandler(verifyToken)
	router := gin.New()
	router.GET("/webhook", h.Verify)
	router.POST("/webhook", h.Receive)
	return router
}

func TestWebhookVerifyEchoesChallenge(t *testing.T) {
	router := newWebhookRouter("verify-secret")

	query := url.Values{
		"hub.mode":         {"subscribe"},
		"hub.verify_token": {"verify-secret"},
		"hub.challenge":    {"1158201444"},
	}
	req := httptest.NewRequest(http.MethodGet, "/webhook?"+query.Encode(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1158201444", w.Body.String())
}

func TestWebhookVerifyRejectsWrongToken(t *testing.T) {
	router := newWebhookRouter("verify-secret")

	query := url.Values{
		"hub.mode":         {"subscribe"},
		"hub.verify_token": {"wrong"},
		"hub.challenge":    {"1158201444"},
	}
	req := httptest.NewRequest(http.MethodGet, "/webhook?"+query.Encode(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotContains(t, w.Body.String(), "1158201444")
}

func TestWebhookVerifyRejectsWhenUnconfigured(t *testing.T) {
	router := newWebhookRouter("")

	query := url.Values{
		"hub.mode":         {"subscribe"},
		"hub.verify_token": {""},
		"hub.challenge":    {"1158201444"},
	}
	req := httptest.NewRequest(http.MethodGet, "/webhook?"+query.Encode(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestWebhookReceiveAcknowledgesEvents(t *testing.T) {
	router := newWebhookRouter("verify-secret")

	w := performJSON(router, http.MethodPost, "/webhook", gin.H{
		"object": "page",
		"entry": []gin.H{
			{
				"id":        "page-1",
				"time":      1724900000,
				"messaging": []gin.H{{"sender": gin.H{"id": "u1"}}},
			},
		},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "EVENT_RECEIVED", w.Body.String())
}
