package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/webeat/weve/internal/middleware"
	"github.com/webeat/weve/internal/model"
	"github.com/webeat/weve/internal/service"
)

// AccountService handles password accounts and profiles
type AccountService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)
	Login(ctx context.Context, req *model.PasswordLoginRequest) (*model.AuthResponse, error)
	GetUser(ctx context.Context, userID string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, req *model.UpdateUserRequest) (*model.User, error)
	DeleteAccount(ctx context.Context, userID string) error
}

// SessionEnder ends sessions on logout
type SessionEnder interface {
	End(ctx context.Context, token string) error
	EndAll(ctx context.Context, userID string) error
}

// LoginFlow runs the single sign-on redirect flow
type LoginFlow interface {
	Begin(returnTo string) (*service.LoginStart, error)
	Complete(ctx context.Context, flowToken, state, code string) (*service.LoginResult, error)
}

// CookieConfig names the cookies the auth endpoints set
type CookieConfig struct {
	Session string
	Flow    string
	// Secure marks cookies HTTPS-only (production)
	Secure bool
}

const flowCookieTTL = 10 * time.Minute

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	accounts AccountService
	sessions SessionEnder
	flow     LoginFlow
	cookies  CookieConfig
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(accounts AccountService, sessions SessionEnder, flow LoginFlow, cookies CookieConfig) *AuthHandler {
	if cookies.Session == "" {
		cookies.Session = "weve_session"
	}
	if cookies.Flow == "" {
		cookies.Flow = "weve_login_flow"
	}
	return &AuthHandler{
		accounts: accounts,
		sessions: sessions,
		flow:     flow,
		cookies:  cookies,
	}
}

// RegisterRoutes registers auth routes. public wraps unauthenticated
// endpoints (rate limiting); authed wraps the rest.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux, public, authed func(http.Handler) http.Handler) {
	mux.Handle("POST /api/auth/register", public(http.HandlerFunc(h.Register)))
	mux.Handle("POST /api/auth/password", public(http.HandlerFunc(h.PasswordLogin)))
	mux.Handle("GET /api/auth/login", public(http.HandlerFunc(h.Login)))
	mux.Handle("GET /api/auth/callback", public(http.HandlerFunc(h.Callback)))
	mux.Handle("POST /api/auth/logout", public(http.HandlerFunc(h.Logout)))

	mux.Handle("GET /api/auth/user", authed(http.HandlerFunc(h.CurrentUser)))
	mux.Handle("PATCH /api/users/me", authed(http.HandlerFunc(h.UpdateMe)))
	mux.Handle("DELETE /api/users/me", authed(http.HandlerFunc(h.DeleteMe)))
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !ReadJSON(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	result, err := h.accounts.Register(r.Context(), &req)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "register"))
		return
	}

	h.setSessionCookie(w, result.Token, result.ExpiresOn)
	WriteData(w, http.StatusCreated, result, map[string]string{
		"user": "/api/auth/user",
	})
}

// PasswordLogin handles POST /api/auth/password
func (h *AuthHandler) PasswordLogin(w http.ResponseWriter, r *http.Request) {
	var req model.PasswordLoginRequest
	if !ReadJSON(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	result, err := h.accounts.Login(r.Context(), &req)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "login"))
		return
	}

	h.setSessionCookie(w, result.Token, result.ExpiresOn)
	WriteData(w, http.StatusOK, result, map[string]string{
		"user": "/api/auth/user",
	})
}

// Login handles GET /api/auth/login?returnTo=
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start, err := h.flow.Begin(r.URL.Query().Get("returnTo"))
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "begin login"))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookies.Flow,
		Value:    start.FlowToken,
		Path:     "/api/auth",
		MaxAge:   int(flowCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, start.RedirectURL, http.StatusFound)
}

// Callback handles GET /api/auth/callback?code&state
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if providerErr := q.Get("error"); providerErr != "" {
		slog.Warn("identity provider returned an error", "error", providerErr, "description", q.Get("error_description"))
		WriteError(w, model.NewBadRequestError("sign-in was cancelled or denied"))
		return
	}

	var flowToken string
	if c, err := r.Cookie(h.cookies.Flow); err == nil {
		flowToken = c.Value
	}
	// The flow cookie is single use
	h.clearCookie(w, h.cookies.Flow, "/api/auth")

	result, err := h.flow.Complete(r.Context(), flowToken, q.Get("state"), q.Get("code"))
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "complete login"))
		return
	}

	h.setSessionCookie(w, result.Auth.Token, result.Auth.ExpiresOn)
	http.Redirect(w, r, result.ReturnTo, http.StatusFound)
}

// Logout handles POST /api/auth/logout. It succeeds without a session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, err := middleware.SessionToken(r, h.cookies.Session)
	if err == nil && token != "" {
		if err := h.sessions.End(r.Context(), token); err != nil {
			slog.Error("failed to end session", "error", err)
			WriteError(w, model.NewInternalError("failed to end session"))
			return
		}
	}

	h.clearCookie(w, h.cookies.Session, "/")
	WriteNoContent(w)
}

// CurrentUser handles GET /api/auth/user
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	WriteData(w, http.StatusOK, user, map[string]string{
		"self":   "/api/auth/user",
		"couple": "/api/couple",
	})
}

// UpdateMe handles PATCH /api/users/me
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req model.UpdateUserRequest
	if !ReadJSON(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	user, err := h.accounts.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "update profile"))
		return
	}

	WriteData(w, http.StatusOK, user, map[string]string{
		"self": "/api/auth/user",
	})
}

// DeleteMe handles DELETE /api/users/me
func (h *AuthHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	if err := h.accounts.DeleteAccount(r.Context(), userID); err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "delete account"))
		return
	}
	if err := h.sessions.EndAll(r.Context(), userID); err != nil {
		slog.Warn("failed to end sessions of deleted user", "user_id", userID, "error", err)
	}

	h.clearCookie(w, h.cookies.Session, "/")
	WriteNoContent(w)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookies.Session,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter, name, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
