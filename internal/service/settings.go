package service

import (
	"context"

	"github.com/webeat/weve/internal/model"
)

// SettingsRepository defines the interface for settings storage
type SettingsRepository interface {
	Get(ctx context.Context, userID string) (*model.UserSettings, error)
	Upsert(ctx context.Context, s *model.UserSettings) (*model.UserSettings, error)
}

// SettingsService reads and writes per-user preferences
type SettingsService struct {
	repo SettingsRepository
}

// NewSettingsService creates a new settings service
func NewSettingsService(repo SettingsRepository) *SettingsService {
	return &SettingsService{repo: repo}
}

// Get returns the stored settings or the defaults
func (s *SettingsService) Get(ctx context.Context, userID string) (*model.UserSettings, error) {
	settings, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return model.DefaultSettings(userID), nil
	}
	return settings, nil
}

// Update merges req into the current settings and stores the result
func (s *SettingsService) Update(ctx context.Context, userID string, req *model.UpdateSettingsRequest) (*model.UserSettings, error) {
	settings, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	req.Apply(settings)
	settings.UserID = userID
	return s.repo.Upsert(ctx, settings)
}
