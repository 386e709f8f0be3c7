package handler

import (
	"context"
	"net/http"

	"github.com/webeat/weve/internal/middleware"
	"github.com/webeat/weve/internal/model"
)

// DashboardBuilder assembles the home screen
type DashboardBuilder interface {
	Build(ctx context.Context, user *model.User, scope model.Scope) (*model.Dashboard, error)
}

// DashboardHandler serves the home screen
type DashboardHandler struct {
	dashboard DashboardBuilder
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboard DashboardBuilder) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// RegisterRoutes registers dashboard routes
func (h *DashboardHandler) RegisterRoutes(mux *http.ServeMux, wrap func(http.Handler) http.Handler) {
	mux.Handle("GET /api/dashboard", wrap(http.HandlerFunc(h.Get)))
}

// Get handles GET /api/dashboard?mode=
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	scope, ok := middleware.GetScope(r.Context())
	if user == nil || !ok {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	d, err := h.dashboard.Build(r.Context(), user, scope)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "build dashboard"))
		return
	}

	WriteData(w, http.StatusOK, d, map[string]string{
		"events": "/api/events",
		"todos":  "/api/todos",
		"photos": "/api/photos",
	})
}
