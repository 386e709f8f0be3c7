package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/webeat/weve/internal/database"
	"github.com/webeat/weve/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt cost factor (10-14 recommended for production)
const bcryptCost = 12

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByOIDCSubject(ctx context.Context, subject string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	UpdateLogin(ctx context.Context, userID string) error
	SetPassword(ctx context.Context, userID, hash string) error
	SetRole(ctx context.Context, userID string, role model.UserRole) error
	Link(ctx context.Context, inviteID, inviterID, accepterID string) error
	Unlink(ctx context.Context, userID, partnerID string) error
	Delete(ctx context.Context, userID string) error
}

// AuthService handles password accounts and the caller's own profile
type AuthService struct {
	users         UserRepository
	sessions      *SessionService
	events        Publisher
	passwordLogin bool
	cost          int
}

// AuthServiceConfig holds configuration for the auth service
type AuthServiceConfig struct {
	UserRepo       UserRepository
	SessionService *SessionService
	Events         Publisher
	PasswordLogin  bool
	// BcryptCost overrides the default hashing cost (tests use bcrypt.MinCost)
	BcryptCost int
}

// NewAuthService creates a new auth service
func NewAuthService(cfg AuthServiceConfig) *AuthService {
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcryptCost
	}
	return &AuthService{
		users:         cfg.UserRepo,
		sessions:      cfg.SessionService,
		events:        cfg.Events,
		passwordLogin: cfg.PasswordLogin,
		cost:          cost,
	}
}

// Register creates a new user account with email/password and signs it in
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	if !s.passwordLogin {
		return nil, ErrPasswordLoginOff
	}

	email := normalizeEmail(req.Email)
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	hashStr := string(hash)

	user := &model.User{
		Email:    email,
		Hash:     &hashStr,
		Name:     trimmed(req.Name),
		Nickname: trimmed(req.Nickname),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	return s.sessions.Start(ctx, user, map[string]interface{}{
		"provider": "password",
		"email":    user.Email,
	})
}

// Login verifies an email/password pair and starts a session
func (s *AuthService) Login(ctx context.Context, req *model.PasswordLoginRequest) (*model.AuthResponse, error) {
	if !s.passwordLogin {
		return nil, ErrPasswordLoginOff
	}

	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if user == nil || user.Hash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.Hash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.users.UpdateLogin(ctx, user.ID); err != nil {
		return nil, err
	}

	return s.sessions.Start(ctx, user, map[string]interface{}{
		"provider": "password",
		"email":    user.Email,
	})
}

// GetUser returns a user by id or ErrUserNotFound
func (s *AuthService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile patches the caller's profile
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, req *model.UpdateUserRequest) (*model.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	req.Apply(user)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteAccount removes the caller with all of their rows. A linked
// partner is unlinked and notified but keeps their own data.
func (s *AuthService) DeleteAccount(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	if err := s.users.Delete(ctx, user.ID); err != nil {
		return err
	}

	if user.HasPartner() && s.events != nil {
		s.events.SendToUsers([]string{*user.PartnerID}, Event{
			Type: EventCoupleUnlinked,
			Data: map[string]string{"partner_id": user.ID},
		})
	}
	return nil
}

// SetRole changes the role of the user with the given email
func (s *AuthService) SetRole(ctx context.Context, email string, role model.UserRole) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if err := s.users.SetRole(ctx, user.ID, role); err != nil {
		return nil, err
	}
	user.Role = role
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
