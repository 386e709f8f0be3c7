package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/webeat/weve/internal/middleware"
	"github.com/webeat/weve/internal/model"
)

// UserAdmin is the admin contract for user accounts
type UserAdmin interface {
	GetUser(ctx context.Context, userID string) (*model.User, error)
	SetRole(ctx context.Context, email string, role model.UserRole) (*model.User, error)
}

// AdminUsersHandler handles admin user management endpoints
type AdminUsersHandler struct {
	users UserAdmin
}

// NewAdminUsersHandler creates a new admin users handler
func NewAdminUsersHandler(users UserAdmin) *AdminUsersHandler {
	return &AdminUsersHandler{users: users}
}

// RegisterRoutes registers admin routes. wrap must authenticate; admin
// checks are applied here.
func (h *AdminUsersHandler) RegisterRoutes(mux *http.ServeMux, wrap func(http.Handler) http.Handler) {
	admin := func(fn http.HandlerFunc) http.Handler {
		return wrap(middleware.RequireAdmin(fn))
	}
	mux.Handle("GET /api/admin/users/{userId}", admin(h.GetUser))
	mux.Handle("PUT /api/admin/users/role", admin(h.SetRole))
}

// GetUser handles GET /api/admin/users/{userId}
func (h *AdminUsersHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if userID == "" {
		WriteError(w, model.NewBadRequestError("userId is required"))
		return
	}

	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "get user"))
		return
	}

	WriteData(w, http.StatusOK, user, nil)
}

// SetRole handles PUT /api/admin/users/role
func (h *AdminUsersHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	var req model.SetRoleRequest
	if !ReadJSON(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	user, err := h.users.SetRole(r.Context(), req.Email, model.UserRole(req.Role))
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "set role"))
		return
	}

	slog.Info("user role changed",
		"admin_id", middleware.GetUserID(r.Context()),
		"user_id", user.ID,
		"role", user.Role,
	)
	WriteData(w, http.StatusOK, user, nil)
}
