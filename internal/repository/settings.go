package repository

import (
	"context"
	"errors"

	"github.com/webeat/weve/internal/database"
	"github.com/webeat/weve/internal/model"
)

// SettingsRepository handles per-user settings
type SettingsRepository struct {
	db database.Database
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db database.Database) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the stored settings, or (nil, nil) when none are saved
func (r *SettingsRepository) Get(ctx context.Context, userID string) (*model.UserSettings, error) {
	result, err := r.db.QueryOne(ctx, `SELECT * FROM user_settings WHERE user_id = $user LIMIT 1`, map[string]interface{}{"user": userID})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return decodeRecord[model.UserSettings](result)
}

// Upsert writes settings keyed by user. The record id is derived from the
// user id so concurrent first saves converge on one row.
func (r *SettingsRepository) Upsert(ctx context.Context, s *model.UserSettings) (*model.UserSettings, error) {
	content, err := contentOf(s)
	if err != nil {
		return nil, err
	}
	result, err := r.db.QueryOne(ctx, `UPSERT type::thing('user_settings', $key) CONTENT $content RETURN AFTER`, map[string]interface{}{
		"key":     recordKey(s.UserID),
		"content": content,
	})
	if err != nil {
		return nil, err
	}
	return decodeRecord[model.UserSettings](result)
}

// recordKey returns the id part of a "table:id" record id
func recordKey(id string) string {
	for i := 0; i < len(id); i++ {
		if id[i] == ':' {
			return id[i+1:]
		}
	}
	return id
}
