package models

import (
	"time"

	"gorm.io/gorm"
)

// AccountSetting holds the persisted per-account configuration used to fill
// gaps in generation requests and to talk to the Graph API for that page.
type AccountSetting struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	AccountID      string `gorm:"uniqueIndex;not null" json:"account_id"`
	Keyword        string `json:"keyword"`
	SourceLink     string `json:"source_link"`
	ContactPhone   string `json:"contact_phone"`
	ContactChannel string `json:"contact_channel"`
	MethodLink     string `json:"method_link"`
	PageToken      string `json:"-"` // Graph API page access token
	OpenAIKey      string `json:"-"` // per-account OpenAI key override
	GeminiKey      string `json:"-"` // per-account Gemini key override
}

// CorpusEntry is one previously generated text for an account. The store
// keeps at most CorpusLimit entries per account, evicting oldest first.
type CorpusEntry struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	AccountID string `gorm:"index;not null" json:"account_id"`
	Content   string `gorm:"not null" json:"content"`
}

// PublishLog records every post/reel published through the dashboard
type PublishLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	RequestID  string `gorm:"index" json:"request_id"`
	AccountID  string `gorm:"index;not null" json:"account_id"`
	Kind       string `gorm:"not null" json:"kind"` // "post" or "reel"
	RemoteID   string `json:"remote_id"`            // id returned by the Graph API
	TextLength int    `json:"text_length"`
}
