// Package pipeline implements the promotional post generation pipeline:
// prompt construction, response parsing, post composition, content-safety
// filtering and duplicate-content guarding.
package pipeline

import (
	"context"

	"github.com/pagedesk/pagedesk-api/internal/llm"
)

// Request describes one post-generation request. AccountID selects the
// settings and corpus used; empty fields fall back to the account's
// persisted settings where one exists.
type Request struct {
	AccountID      string `json:"account_id"`
	Topic          string `json:"topic"`
	Tone           string `json:"tone"`
	Length         string `json:"length"`
	Keyword        string `json:"keyword"`
	Link           string `json:"link"`
	MethodLink     string `json:"method_link"`
	ContactPhone   string `json:"contact_phone"`
	ContactChannel string `json:"contact_channel"`
	IncludeNotes   bool   `json:"include_notes"`
	Model          string `json:"model"`
}

// Result is the outcome of a successful generation. Usage sums the token
// counts of every provider call the attempt loop made.
type Result struct {
	Text       string    `json:"text"`
	FilterMode string    `json:"filter_mode"`
	Attempts   int       `json:"attempts"`
	Model      string    `json:"model"`
	Usage      llm.Usage `json:"usage"`
}

// RawPayload is the parsed form of a raw model completion, consumed by the
// composer and discarded afterwards.
type RawPayload struct {
	Body    string
	Bullets []string
}

// AccountSettings is the read-only per-account snapshot used to fill gaps in
// a Request. The pipeline never writes it.
type AccountSettings struct {
	Keyword        string
	SourceLink     string
	ContactPhone   string
	ContactChannel string
	MethodLink     string
	OpenAIKey      string
	GeminiKey      string
}

// SettingsStore provides per-account settings snapshots
type SettingsStore interface {
	Get(ctx context.Context, accountID string) (*AccountSettings, error)
}

// CorpusStore keeps the rolling history of generated texts per account,
// bounded to the most recent entries with oldest-first eviction.
type CorpusStore interface {
	Append(ctx context.Context, accountID, text string) error
	List(ctx context.Context, accountID string) ([]string, error)
}
