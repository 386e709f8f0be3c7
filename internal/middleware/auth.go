package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/webeat/weve/internal/model"
	"github.com/webeat/weve/internal/service"
)

// SessionValidator resolves a raw session token to its user
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*model.User, *model.Session, error)
}

// Auth returns a middleware that requires a valid session. The token is
// read from the session cookie, or from an Authorization: Bearer header
// for clients that cannot hold cookies.
func Auth(sessions SessionValidator, cookieName string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := SessionToken(r, cookieName)
			if err != nil {
				model.NewUnauthorizedError(err.Error()).WriteJSON(w)
				return
			}
			if token == "" {
				model.NewUnauthorizedError("authentication required").WriteJSON(w)
				return
			}

			user, session, err := sessions.Validate(r.Context(), token)
			if err != nil {
				if !errors.Is(err, service.ErrSessionInvalid) {
					slog.Error("session validation failed",
						slog.String("error", err.Error()),
						slog.String("request_id", GetRequestID(r.Context())),
					)
					model.NewInternalError("").WriteJSON(w)
					return
				}
				model.NewUnauthorizedError("session missing or expired").WriteJSON(w)
				return
			}

			recordUser(w, user.ID)
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user, session)))
		})
	}
}

// RequireAdmin rejects users without the admin role. It must run after Auth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUser(r.Context())
		if user == nil {
			model.NewUnauthorizedError("authentication required").WriteJSON(w)
			return
		}
		if !user.IsAdmin() {
			model.NewForbiddenError("admin role required").WriteJSON(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionToken extracts the raw session token. A malformed Authorization
// header is an error; no credentials at all is not.
func SessionToken(r *http.Request, cookieName string) (string, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", errors.New("invalid authorization header format")
		}
		return strings.TrimSpace(parts[1]), nil
	}

	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value, nil
	}
	return "", nil
}

// WithUser stores the authenticated user and session in ctx
func WithUser(ctx context.Context, user *model.User, session *model.Session) context.Context {
	ctx = context.WithValue(ctx, UserKey, user)
	return context.WithValue(ctx, SessionKey, session)
}

// GetUser extracts the authenticated user from context
func GetUser(ctx context.Context) *model.User {
	if u, ok := ctx.Value(UserKey).(*model.User); ok {
		return u
	}
	return nil
}

// GetUserID extracts the authenticated user's ID from context
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.ID
	}
	return ""
}

// GetSession extracts the current session from context
func GetSession(ctx context.Context) *model.Session {
	if s, ok := ctx.Value(SessionKey).(*model.Session); ok {
		return s
	}
	return nil
}
