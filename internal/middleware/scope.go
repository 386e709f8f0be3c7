package middleware

import (
	"context"
	"net/http"

	"github.com/webeat/weve/internal/model"
)

// ModeHeader lets clients pin the relationship mode without a query param
const ModeHeader = "X-Weve-Mode"

// Scope resolves the tenant scope of a couple-scoped request: the caller,
// the caller plus partner, and the mode. The mode comes from the ?mode=
// query parameter, then the X-Weve-Mode header, then the user's current
// mode. It must run after Auth.
func Scope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUser(r.Context())
		if user == nil {
			model.NewUnauthorizedError("authentication required").WriteJSON(w)
			return
		}

		mode, err := ResolveMode(r, user)
		if err != nil {
			model.NewValidationError([]model.FieldError{{Field: "mode", Message: err.Error()}}).WriteJSON(w)
			return
		}

		scope := model.Scope{
			UserID:  user.ID,
			UserIDs: user.CoupleUserIDs(),
			Mode:    mode,
		}
		next.ServeHTTP(w, r.WithContext(WithScope(r.Context(), scope)))
	})
}

// ResolveMode picks the request's mode. An explicit but invalid value is
// an error rather than a silent fallback.
func ResolveMode(r *http.Request, user *model.User) (model.Mode, error) {
	if v := r.URL.Query().Get("mode"); v != "" {
		return model.ParseMode(v)
	}
	if v := r.Header.Get(ModeHeader); v != "" {
		return model.ParseMode(v)
	}
	if user != nil && user.CurrentMode.Valid() {
		return user.CurrentMode, nil
	}
	return model.ModeDating, nil
}

// GetScope extracts the request scope from context
func GetScope(ctx context.Context) (model.Scope, bool) {
	s, ok := ctx.Value(ScopeKey).(model.Scope)
	return s, ok
}

// WithScope stores a scope in ctx
func WithScope(ctx context.Context, scope model.Scope) context.Context {
	return context.WithValue(ctx, ScopeKey, scope)
}
