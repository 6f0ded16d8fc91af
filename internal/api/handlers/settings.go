package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pagedesk/pagedesk-api/internal/logger"
	"github.com/pagedesk/pagedesk-api/internal/models"
	"github.com/pagedesk/pagedesk-api/internal/store"
)

type SettingsHandler struct {
	settings store.SettingsStore
}

func NewSettingsHandler(settings store.SettingsStore) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// GetSettings returns the settings of one account. Secrets are never
// serialized.
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	accountID := c.Param("id")

	setting, err := h.settings.Get(c.Request.Context(), accountID)
	if err != nil {
		logger.Error("Failed to load account settings", err, logger.Fields{
			"account_id": accountID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load account settings"})
		return
	}
	if setting == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		return
	}

	c.JSON(http.StatusOK, setting)
}

type UpdateSettingsRequest struct {
	Keyword        string `json:"keyword"`
	SourceLink     string `json:"source_link"`
	ContactPhone   string `json:"contact_phone"`
	ContactChannel string `json:"contact_channel"`
	MethodLink     string `json:"method_link"`
	PageToken      string `json:"page_token"`
	OpenAIKey      string `json:"openai_key"`
	GeminiKey      string `json:"gemini_key"`
}

// UpdateSettings creates or replaces the settings of one account. Empty
// secret fields keep the stored value so the dashboard can round-trip the
// settings form without re-entering tokens.
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	accountID := c.Param("id")

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := h.settings.Get(c.Request.Context(), accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load account settings"})
		return
	}

	setting := models.AccountSetting{
		AccountID:      accountID,
		Keyword:        req.Keyword,
		SourceLink:     req.SourceLink,
		ContactPhone:   req.ContactPhone,
		ContactChannel: req.ContactChannel,
		MethodLink:     req.MethodLink,
		PageToken:      req.PageToken,
		OpenAIKey:      req.OpenAIKey,
		GeminiKey:      req.GeminiKey,
	}
	if existing != nil {
		if setting.PageToken == "" {
			setting.PageToken = existing.PageToken
		}
		if setting.OpenAIKey == "" {
			setting.OpenAIKey = existing.OpenAIKey
		}
		if setting.GeminiKey == "" {
			setting.GeminiKey = existing.GeminiKey
		}
	}

	if err := h.settings.Put(c.Request.Context(), &setting); err != nil {
		logger.Error("Failed to save account settings", err, logger.Fields{
			"account_id": accountID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save account settings"})
		return
	}

	c.JSON(http.StatusOK, setting)
}

// csvHeader is the column layout for settings export and import. Secrets are
// importable but never exported.
var csvHeader = []string{"account_id", "keyword", "source_link", "contact_phone", "contact_channel", "method_link"}

// ExportCSV streams all account settings as a CSV download
func (h *SettingsHandler) ExportCSV(c *gin.Context) {
	settings, err := h.settings.List(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list account settings", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list account settings"})
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="accounts.csv"`)

	writer := csv.NewWriter(c.Writer)
	_ = writer.Write(csvHeader)
	for _, s := range settings {
		_ = writer.Write([]string{
			s.AccountID,
			s.Keyword,
			s.SourceLink,
			s.ContactPhone,
			s.ContactChannel,
			s.MethodLink,
		})
	}
	writer.Flush()
}

// ImportCSV bulk-upserts account settings from an uploaded CSV. The first
// row must be a header; column order is free and secret columns are
// optional. Rows without an account_id are rejected.
func (h *SettingsHandler) ImportCSV(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file upload field 'file'"})
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read CSV header"})
		return
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}
	if _, ok := columns["account_id"]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "CSV header must contain an account_id column"})
		return
	}

	field := func(record []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return record[idx]
	}

	imported := 0
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Malformed CSV at line %d", line)})
			return
		}

		accountID := field(record, "account_id")
		if accountID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Missing account_id at line %d", line)})
			return
		}

		setting := models.AccountSetting{
			AccountID:      accountID,
			Keyword:        field(record, "keyword"),
			SourceLink:     field(record, "source_link"),
			ContactPhone:   field(record, "contact_phone"),
			ContactChannel: field(record, "contact_channel"),
			MethodLink:     field(record, "method_link"),
			PageToken:      field(record, "page_token"),
			OpenAIKey:      field(record, "openai_key"),
			GeminiKey:      field(record, "gemini_key"),
		}

		// Keep stored secrets when the CSV omits them
		if existing, err := h.settings.Get(c.Request.Context(), accountID); err == nil && existing != nil {
			if setting.PageToken == "" {
				setting.PageToken = existing.PageToken
			}
			if setting.OpenAIKey == "" {
				setting.OpenAIKey = existing.OpenAIKey
			}
			if setting.GeminiKey == "" {
				setting.GeminiKey = existing.GeminiKey
			}
		}

		if err := h.settings.Put(c.Request.Context(), &setting); err != nil {
			logger.Error("Failed to import account settings", err, logger.Fields{
				"account_id": accountID,
			})
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to save account %s", accountID)})
			return
		}
		logger.Debug("Imported account settings", logger.Fields{
			"account_id": accountID,
		})
		imported++
	}

	c.JSON(http.StatusOK, gin.H{
		"imported": imported,
	})
}
