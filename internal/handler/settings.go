package handler

import (
	"context"
	"net/http"

	"github.com/webeat/weve/internal/middleware"
	"github.com/webeat/weve/internal/model"
)

// SettingsStore reads and patches per-user settings
type SettingsStore interface {
	Get(ctx context.Context, userID string) (*model.UserSettings, error)
	Update(ctx context.Context, userID string, req *model.UpdateSettingsRequest) (*model.UserSettings, error)
}

// SettingsHandler handles the caller's app settings
type SettingsHandler struct {
	settings SettingsStore
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settings SettingsStore) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// RegisterRoutes registers settings routes
func (h *SettingsHandler) RegisterRoutes(mux *http.ServeMux, wrap func(http.Handler) http.Handler) {
	mux.Handle("GET /api/settings", wrap(http.HandlerFunc(h.Get)))
	mux.Handle("PATCH /api/settings", wrap(http.HandlerFunc(h.Update)))
}

// Get handles GET /api/settings. Defaults are returned until the first PATCH.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	settings, err := h.settings.Get(r.Context(), userID)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "get settings"))
		return
	}

	WriteData(w, http.StatusOK, settings, nil)
}

// Update handles PATCH /api/settings
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req model.UpdateSettingsRequest
	if !ReadJSON(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	settings, err := h.settings.Update(r.Context(), userID, &req)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "update settings"))
		return
	}

	WriteData(w, http.StatusOK, settings, nil)
}
