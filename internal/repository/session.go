package repository

import (
	"context"
	"errors"
	"time"

	"github.com/webeat/weve/internal/database"
	"github.com/webeat/weve/internal/model"
)

// SessionRepository handles login session data access
type SessionRepository struct {
	db database.Database
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db database.Database) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create stores a new session
func (r *SessionRepository) Create(ctx context.Context, s *model.Session) error {
	query := `
		CREATE session CONTENT {
			user_id: $user_id,
			token_hash: $token_hash,
			claims: $claims,
			expires_on: <datetime>$expires_on,
			last_seen_on: time::now()
		}
	`
	claims := s.Claims
	if claims == nil {
		claims = map[string]interface{}{}
	}
	vars := map[string]interface{}{
		"user_id":    s.UserID,
		"token_hash": s.TokenHash,
		"claims":     claims,
		"expires_on": formatTime(s.ExpiresOn),
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		return err
	}
	created, err := parseSessionResult(result)
	if err != nil {
		return err
	}
	s.ID = created.ID
	s.CreatedOn = created.CreatedOn
	s.LastSeenOn = created.LastSeenOn
	return nil
}

// GetByTokenHash retrieves a session by token hash
func (r *SessionRepository) GetByTokenHash(ctx context.Context, hash string) (*model.Session, error) {
	result, err := r.db.QueryOne(ctx, `SELECT * FROM session WHERE token_hash = $hash LIMIT 1`, map[string]interface{}{"hash": hash})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return parseSessionResult(result)
}

// Touch slides a session: it records activity and pushes expiry out
func (r *SessionRepository) Touch(ctx context.Context, id string, expiresOn time.Time) error {
	return r.db.Execute(ctx, `UPDATE type::record($id) SET last_seen_on = time::now(), expires_on = <datetime>$expires_on`, map[string]interface{}{
		"id":         id,
		"expires_on": formatTime(expiresOn),
	})
}

// DeleteByTokenHash removes a session; missing sessions are ignored
func (r *SessionRepository) DeleteByTokenHash(ctx context.Context, hash string) error {
	return r.db.Execute(ctx, `DELETE session WHERE token_hash = $hash`, map[string]interface{}{"hash": hash})
}

// DeleteForUser removes every session of a user
func (r *SessionRepository) DeleteForUser(ctx context.Context, userID string) error {
	return r.db.Execute(ctx, `DELETE session WHERE user_id = $user`, map[string]interface{}{"user": userID})
}

// DeleteExpired removes expired sessions and returns how many were removed
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int, error) {
	results, err := r.db.Query(ctx, `DELETE session WHERE expires_on < time::now() RETURN BEFORE`, nil)
	if err != nil {
		return 0, err
	}
	return len(extractQueryResults(results)), nil
}

func parseSessionResult(result interface{}) (*model.Session, error) {
	data, ok := normalize(result).(map[string]interface{})
	if !ok {
		return nil, database.ErrNotFound
	}
	s := &model.Session{
		ID:         convertSurrealID(data["id"]),
		UserID:     getString(data, "user_id"),
		TokenHash:  getString(data, "token_hash"),
		ExpiresOn:  parseTime(data["expires_on"]),
		CreatedOn:  parseTime(data["created_on"]),
		LastSeenOn: parseTime(data["last_seen_on"]),
	}
	if claims, ok := data["claims"].(map[string]interface{}); ok {
		s.Claims = claims
	}
	return s, nil
}
