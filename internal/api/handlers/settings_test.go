package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pagedesk/pagedesk-api/internal/models"
	"github.com/pagedesk/pagedesk-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSettingsRouter(settings store.SettingsStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewSettingsHandler(settings)
	router := gin.New()
	router.GET("/api/v1/accounts/:id/settings", h.GetSettings)
	router.PUT("/api/v1/accounts/:id/settings", h.UpdateSettings)
	router.GET("/api/v1/accounts/export", h.ExportCSV)
	router.POST("/api/v1/accounts/import", h.ImportCSV)
	return router
}

func TestGetSettingsNotFound(t *testing.T) {
	router := newSettingsRouter(store.NewMemorySettingsStore())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/page-1/settings", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateAndGetSettings(t *testing.T) {
	settings := store.NewMemorySettingsStore()
	router := newSettingsRouter(settings)

	w := performJSON(router, http.MethodPut, "/api/v1/accounts/page-1/settings", gin.H{
		"keyword":         "ku191",
		"source_link":     "https://example.com",
		"contact_phone":   "0901234567",
		"contact_channel": "@hotro",
		"page_token":      "token-abc",
	})
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/page-1/settings", nil)
	get := httptest.NewRecorder()
	router.ServeHTTP(get, req)

	require.Equal(t, http.StatusOK, get.Code)

	var setting models.AccountSetting
	require.NoError(t, json.Unmarshal(get.Body.Bytes(), &setting))
	assert.Equal(t, "ku191", setting.Keyword)
	assert.Equal(t, "0901234567", setting.ContactPhone)

	// Secrets never serialize
	assert.NotContains(t, get.Body.String(), "token-abc")
}

func TestUpdateSettingsKeepsSecretsWhenOmitted(t *testing.T) {
	settings := store.NewMemorySettingsStore()
	require.NoError(t, settings.Put(context.Background(), &models.AccountSetting{
		AccountID: "page-1",
		Keyword:   "ku191",
		PageToken: "token-abc",
		GeminiKey: "gem-key",
	}))
	router := newSettingsRouter(settings)

	w := performJSON(router, http.MethodPut, "/api/v1/accounts/page-1/settings", gin.H{
		"keyword": "new88",
	})
	require.Equal(t, http.StatusOK, w.Code)

	stored, err := settings.Get(context.Background(), "page-1")
	require.NoError(t, err)
	assert.Equal(t, "new88", stored.Keyword)
	assert.Equal(t, "token-abc", stored.PageToken)
	assert.Equal(t, "gem-key", stored.GeminiKey)
}

func TestExportCSVOmitsSecrets(t *testing.T) {
	settings := store.NewMemorySettingsStore()
	require.NoError(t, settings.Put(context.Background(), &models.AccountSetting{
		AccountID:  "page-1",
		Keyword:    "ku191",
		SourceLink: "https://example.com",
		PageToken:  "token-abc",
	}))
	router := newSettingsRouter(settings)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/export", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")

	body := w.Body.String()
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "account_id,keyword,source_link,contact_phone,contact_channel,method_link", lines[0])
	assert.Contains(t, lines[1], "page-1")
	assert.NotContains(t, body, "token-abc")
}

func importCSVRequest(t *testing.T, csvBody string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "accounts.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csvBody))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/import", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestImportCSVUpsertsAccounts(t *testing.T) {
	settings := store.NewMemorySettingsStore()
	router := newSettingsRouter(settings)

	csvBody := "account_id,keyword,source_link,page_token\n" +
		"page-1,ku191,https://example.com,token-1\n" +
		"page-2,new88,https://example.org,token-2\n"

	w := httptest.NewRecorder()
	router.ServeHTTP(w, importCSVRequest(t, csvBody))

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp["imported"])

	stored, err := settings.Get(context.Background(), "page-2")
	require.NoError(t, err)
	assert.Equal(t, "new88", stored.Keyword)
	assert.Equal(t, "token-2", stored.PageToken)
}

func TestImportCSVKeepsStoredSecrets(t *testing.T) {
	settings := store.NewMemorySettingsStore()
	require.NoError(t, settings.Put(context.Background(), &models.AccountSetting{
		AccountID: "page-1",
		PageToken: "token-old",
	}))
	router := newSettingsRouter(settings)

	csvBody := "account_id,keyword\npage-1,ku191\n"

	w := httptest.NewRecorder()
	router.ServeHTTP(w, importCSVRequest(t, csvBody))

	require.Equal(t, http.StatusOK, w.Code)

	stored, err := settings.Get(context.Background(), "page-1")
	require.NoError(t, err)
	assert.Equal(t, "ku191", stored.Keyword)
	assert.Equal(t, "token-old", stored.PageToken)
}

func TestImportCSVRejectsMissingAccountColumn(t *testing.T) {
	router := newSettingsRouter(store.NewMemorySettingsStore())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, importCSVRequest(t, "keyword,source_link\nku191,https://example.com\n"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "account_id")
}

func TestImportCSVRejectsEmptyAccountID(t *testing.T) {
	router := newSettingsRouter(store.NewMemorySettingsStore())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, importCSVRequest(t, "account_id,keyword\n,ku191\n"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
