// Package store provides the persistence backends for account settings and
// the generated-text corpus. Both a Postgres-backed and an in-memory
// implementation exist; the pipeline depends only on the capability
// interfaces, never on a storage mechanism.
package store

import (
	"context"

	"github.com/pagedesk/pagedesk-api/internal/models"
	"github.com/pagedesk/pagedesk-api/internal/pipeline"
)

// CorpusLimit bounds the per-account corpus; oldest entries are evicted first
const CorpusLimit = 80

// SettingsStore persists per-account settings. Get returns (nil, nil) when
// no settings exist for the account.
type SettingsStore interface {
	Get(ctx context.Context, accountID string) (*models.AccountSetting, error)
	Put(ctx context.Context, setting *models.AccountSetting) error
	List(ctx context.Context) ([]models.AccountSetting, error)
}

// CorpusStore keeps the bounded rolling history of generated texts
type CorpusStore interface {
	Append(ctx context.Context, accountID, text string) error
	List(ctx context.Context, accountID string) ([]string, error)
}

// PipelineSettings adapts a SettingsStore to the read-only snapshot view the
// generation pipeline consumes.
type PipelineSettings struct {
	inner SettingsStore
}

func NewPipelineSettings(inner SettingsStore) *PipelineSettings {
	return &PipelineSettings{inner: inner}
}

func (p *PipelineSettings) Get(ctx context.Context, accountID string) (*pipeline.AccountSettings, error) {
	setting, err := p.inner.Get(ctx, accountID)
	if err != nil || setting == nil {
		return nil, err
	}
	return &pipeline.AccountSettings{
		Keyword:        setting.Keyword,
		SourceLink:     setting.SourceLink,
		ContactPhone:   setting.ContactPhone,
		ContactChannel: setting.ContactChannel,
		MethodLink:     setting.MethodLink,
		OpenAIKey:      setting.OpenAIKey,
		GeminiKey:      setting.GeminiKey,
	}, nil
}
