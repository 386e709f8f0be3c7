package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/webeat/weve/internal/model"
)

// SessionRepository defines the interface for session storage
type SessionRepository interface {
	Create(ctx context.Context, s *model.Session) error
	GetByTokenHash(ctx context.Context, hash string) (*model.Session, error)
	Touch(ctx context.Context, id string, expiresOn time.Time) error
	DeleteByTokenHash(ctx context.Context, hash string) error
	DeleteForUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context) (int, error)
}

// touchInterval limits how often a busy session rewrites its expiry
const touchInterval = 5 * time.Minute

// SessionService issues and validates opaque login sessions
type SessionService struct {
	sessions SessionRepository
	users    UserRepository
	ttl      time.Duration
	now      func() time.Time
}

// SessionServiceConfig holds configuration for the session service
type SessionServiceConfig struct {
	SessionRepo SessionRepository
	UserRepo    UserRepository
	TTL         time.Duration
}

// NewSessionService creates a new session service
func NewSessionService(cfg SessionServiceConfig) *SessionService {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &SessionService{
		sessions: cfg.SessionRepo,
		users:    cfg.UserRepo,
		ttl:      ttl,
		now:      time.Now,
	}
}

// TTL returns the sliding session lifetime
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Start creates a session for user and returns the raw token. Claims are
// stored alongside the session for auditing.
func (s *SessionService) Start(ctx context.Context, user *model.User, claims map[string]interface{}) (*model.AuthResponse, error) {
	token, err := generateSessionToken()
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := &model.Session{
		UserID:     user.ID,
		TokenHash:  hashToken(token),
		Claims:     claims,
		ExpiresOn:  now.Add(s.ttl),
		CreatedOn:  now,
		LastSeenOn: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	return &model.AuthResponse{
		User:      user,
		Token:     token,
		ExpiresOn: session.ExpiresOn,
	}, nil
}

// Validate resolves a raw token to its user. Missing, unknown and expired
// sessions all return ErrSessionInvalid. Valid sessions slide forward.
func (s *SessionService) Validate(ctx context.Context, token string) (*model.User, *model.Session, error) {
	if token == "" {
		return nil, nil, ErrSessionInvalid
	}

	hash := hashToken(token)
	session, err := s.sessions.GetByTokenHash(ctx, hash)
	if err != nil {
		return nil, nil, err
	}
	if session == nil {
		return nil, nil, ErrSessionInvalid
	}

	now := s.now()
	if session.Expired(now) {
		if err := s.sessions.DeleteByTokenHash(ctx, hash); err != nil {
			slog.Warn("failed to delete expired session", slog.String("session_id", session.ID), slog.String("error", err.Error()))
		}
		return nil, nil, ErrSessionInvalid
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrSessionInvalid
	}

	if now.Sub(session.LastSeenOn) >= touchInterval {
		session.LastSeenOn = now
		session.ExpiresOn = now.Add(s.ttl)
		if err := s.sessions.Touch(ctx, session.ID, session.ExpiresOn); err != nil {
			slog.Warn("failed to extend session", slog.String("session_id", session.ID), slog.String("error", err.Error()))
		}
	}

	return user, session, nil
}

// End deletes the session behind token. Unknown tokens are ignored.
func (s *SessionService) End(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.DeleteByTokenHash(ctx, hashToken(token))
}

// EndAll deletes every session of a user
func (s *SessionService) EndAll(ctx context.Context, userID string) error {
	return s.sessions.DeleteForUser(ctx, userID)
}

// Prune deletes expired sessions and returns how many were removed
func (s *SessionService) Prune(ctx context.Context) (int, error) {
	return s.sessions.DeleteExpired(ctx)
}

// generateSessionToken creates a cryptographically secure random token
func generateSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// hashToken creates a SHA-256 hash of the token for storage
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
