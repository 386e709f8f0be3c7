package model

import "time"

// UserSettings are per-user preferences. They are not shared with the partner.
type UserSettings struct {
	ID                   string    `json:"id,omitempty"`
	UserID               string    `json:"user_id"`
	NotificationsEnabled bool      `json:"notifications_enabled"`
	Theme                string    `json:"theme"`
	Language             string    `json:"language"`
	WeekStartsOn         string    `json:"week_starts_on"`
	ShowDDay             bool      `json:"show_dday"`
	UpdatedOn            time.Time `json:"updated_on,omitempty"`
}

// DefaultSettings returns the settings a user has before saving any
func DefaultSettings(userID string) *UserSettings {
	return &UserSettings{
		UserID:               userID,
		NotificationsEnabled: true,
		Theme:                "system",
		Language:             "ko",
		WeekStartsOn:         "sunday",
		ShowDDay:             true,
	}
}

// UpdateSettingsRequest patches the caller's app preferences
type UpdateSettingsRequest struct {
	NotificationsEnabled *bool   `json:"notifications_enabled,omitempty"`
	Theme                *string `json:"theme,omitempty"`
	Language             *string `json:"language,omitempty"`
	WeekStartsOn         *string `json:"week_starts_on,omitempty"`
	ShowDDay             *bool   `json:"show_dday,omitempty"`
}

// Validate restricts theme, language and week start to known values.
func (r *UpdateSettingsRequest) Validate() []FieldError {
	var f fieldErrors
	f.oneOf("theme", r.Theme, "system", "light", "dark")
	f.oneOf("language", r.Language, "ko", "en")
	f.oneOf("week_starts_on", r.WeekStartsOn, "sunday", "monday")
	return f.result()
}

// Apply copies the set fields onto s.
func (r *UpdateSettingsRequest) Apply(s *UserSettings) {
	if r.NotificationsEnabled != nil {
		s.NotificationsEnabled = *r.NotificationsEnabled
	}
	if r.Theme != nil {
		s.Theme = *r.Theme
	}
	if r.Language != nil {
		s.Language = *r.Language
	}
	if r.WeekStartsOn != nil {
		s.WeekStartsOn = *r.WeekStartsOn
	}
	if r.ShowDDay != nil {
		s.ShowDDay = *r.ShowDDay
	}
}
