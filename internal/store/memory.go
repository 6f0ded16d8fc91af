package store

import (
	"context"
	"sync"

	"github.com/pagedesk/pagedesk-api/internal/models"
)

// MemorySettingsStore keeps account settings in memory. Used when no
// DATABASE_URL is configured and in tests.
type MemorySettingsStore struct {
	mu       sync.RWMutex
	settings map[string]models.AccountSetting
}

func NewMemorySettingsStore() *MemorySettingsStore {
	return &MemorySettingsStore{settings: make(map[string]models.AccountSetting)}
}

func (s *MemorySettingsStore) Get(_ context.Context, accountID string) (*models.AccountSetting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	setting, ok := s.settings[accountID]
	if !ok {
		return nil, nil
	}
	return &setting, nil
}

func (s *MemorySettingsStore) Put(_ context.Context, setting *models.AccountSetting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings[setting.AccountID] = *setting
	return nil
}

func (s *MemorySettingsStore) List(_ context.Context) ([]models.AccountSetting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.AccountSetting, 0, len(s.settings))
	for _, setting := range s.settings {
		out = append(out, setting)
	}
	return out, nil
}

// MemoryCorpusStore keeps the bounded corpus in memory with the same
// oldest-first eviction semantics as the Postgres store. Per-account updates
// are atomic under the store mutex.
type MemoryCorpusStore struct {
	mu      sync.Mutex
	limit   int
	entries map[string][]string
}

func NewMemoryCorpusStore() *MemoryCorpusStore {
	return &MemoryCorpusStore{
		limit:   CorpusLimit,
		entries: make(map[string][]string),
	}
}

func (s *MemoryCorpusStore) Append(_ context.Context, accountID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := append(s.entries[accountID], text)
	if len(entries) > s.limit {
		entries = entries[len(entries)-s.limit:]
	}
	s.entries[accountID] = entries
	return nil
}

func (s *MemoryCorpusStore) List(_ context.Context, accountID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.entries[accountID]
	out := make([]string, len(entries))
	copy(out, entries)
	return out, nil
}
