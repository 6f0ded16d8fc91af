package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/pagedesk/pagedesk-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSettingsStore persists account settings in Postgres
type GormSettingsStore struct {
	db *gorm.DB
}

func NewGormSettingsStore(db *gorm.DB) *GormSettingsStore {
	return &GormSettingsStore{db: db}
}

func (s *GormSettingsStore) Get(ctx context.Context, accountID string) (*models.AccountSetting, error) {
	var setting models.AccountSetting
	err := s.db.WithContext(ctx).Where("account_id = ?", accountID).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings for %s: %w", accountID, err)
	}
	return &setting, nil
}

func (s *GormSettingsStore) Put(ctx context.Context, setting *models.AccountSetting) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account_id"}},
			UpdateAll: true,
		}).
		Create(setting).Error
	if err != nil {
		return fmt.Errorf("failed to save settings for %s: %w", setting.AccountID, err)
	}
	return nil
}

func (s *GormSettingsStore) List(ctx context.Context) ([]models.AccountSetting, error) {
	var settings []models.AccountSetting
	if err := s.db.WithContext(ctx).Order("account_id").Find(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	return settings, nil
}

// GormCorpusStore persists the generated-text corpus in Postgres. Append
// runs insert and eviction in one transaction so concurrent requests can
// never truncate the history below the bound.
type GormCorpusStore struct {
	db *gorm.DB
}

func NewGormCorpusStore(db *gorm.DB) *GormCorpusStore {
	return &GormCorpusStore{db: db}
}

func (s *GormCorpusStore) Append(ctx context.Context, accountID, text string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.CorpusEntry{AccountID: accountID, Content: text}).Error; err != nil {
			return err
		}

		keep := tx.Model(&models.CorpusEntry{}).
			Select("id").
			Where("account_id = ?", accountID).
			Order("id DESC").
			Limit(CorpusLimit)
		return tx.
			Where("account_id = ? AND id NOT IN (?)", accountID, keep).
			Delete(&models.CorpusEntry{}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to append corpus entry for %s: %w", accountID, err)
	}
	return nil
}

func (s *GormCorpusStore) List(ctx context.Context, accountID string) ([]string, error) {
	var entries []models.CorpusEntry
	err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list corpus for %s: %w", accountID, err)
	}

	texts := make([]string, len(entries))
	for i, entry := range entries {
		texts[i] = entry.Content
	}
	return texts, nil
}
