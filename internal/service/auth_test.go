package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/webeat/weve/internal/model"
	"golang.org/x/crypto/bcrypt"
)

func setupAuthService(t *testing.T) (*AuthService, *mockUserRepo, *mockSessionRepo, *recordingPublisher) {
	t.Helper()

	users := newMockUserRepo()
	sessions := newMockSessionRepo()
	pub := &recordingPublisher{}
	svc := NewAuthService(AuthServiceConfig{
		UserRepo:       users,
		SessionService: NewSessionService(SessionServiceConfig{SessionRepo: sessions, UserRepo: users}),
		Events:         pub,
		PasswordLogin:  true,
		BcryptCost:     bcrypt.MinCost,
	})
	return svc, users, sessions, pub
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, users, sessions, _ := setupAuthService(t)
	ctx := context.Background()

	name := "  Minji  "
	resp, err := svc.Register(ctx, &model.RegisterRequest{
		Email:    "Minji@Example.com ",
		Password: "correct-horse",
		Name:     &name,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.User.Email != "minji@example.com" {
		t.Errorf("expected normalized email, got %s", resp.User.Email)
	}
	if resp.User.Name == nil || *resp.User.Name != "Minji" {
		t.Errorf("expected trimmed name, got %v", resp.User.Name)
	}
	if resp.Token == "" {
		t.Error("expected session token")
	}
	if sessions.count() != 1 {
		t.Errorf("expected 1 session, got %d", sessions.count())
	}

	stored := users.get(resp.User.ID)
	if stored.Hash == nil || *stored.Hash == "correct-horse" {
		t.Fatal("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*stored.Hash), []byte("correct-horse")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, _, _, _ := setupAuthService(t)
	ctx := context.Background()

	req := &model.RegisterRequest{Email: "dup@example.com", Password: "password123"}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := svc.Register(ctx, &model.RegisterRequest{Email: "DUP@example.com", Password: "password123"})
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Errorf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestAuthService_PasswordLoginDisabled(t *testing.T) {
	users := newMockUserRepo()
	svc := NewAuthService(AuthServiceConfig{
		UserRepo:       users,
		SessionService: NewSessionService(SessionServiceConfig{SessionRepo: newMockSessionRepo(), UserRepo: users}),
	})

	if _, err := svc.Register(context.Background(), &model.RegisterRequest{Email: "a@b.co", Password: "password123"}); !errors.Is(err, ErrPasswordLoginOff) {
		t.Errorf("Register: expected ErrPasswordLoginOff, got %v", err)
	}
	if _, err := svc.Login(context.Background(), &model.PasswordLoginRequest{Email: "a@b.co", Password: "password123"}); !errors.Is(err, ErrPasswordLoginOff) {
		t.Errorf("Login: expected ErrPasswordLoginOff, got %v", err)
	}
}

func TestAuthService_Login(t *testing.T) {
	svc, users, _, _ := setupAuthService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, &model.RegisterRequest{Email: "login@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"success", "login@example.com", "password123", nil},
		{"case insensitive email", " LOGIN@example.com", "password123", nil},
		{"wrong password", "login@example.com", "password124", ErrInvalidCredentials},
		{"unknown email", "nobody@example.com", "password123", ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Login(ctx, &model.PasswordLoginRequest{Email: tt.email, Password: tt.password})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.User.ID != reg.User.ID {
				t.Errorf("expected user %s, got %s", reg.User.ID, resp.User.ID)
			}
		})
	}

	if len(users.logins) != 2 {
		t.Errorf("expected 2 login stamps, got %d", len(users.logins))
	}
}

func TestAuthService_Login_SSOOnlyAccount(t *testing.T) {
	svc, users, _, _ := setupAuthService(t)
	users.add(&model.User{ID: "user:sso", Email: "sso@example.com", OIDCSubject: strPtr("sub-1")})

	_, err := svc.Login(context.Background(), &model.PasswordLoginRequest{Email: "sso@example.com", Password: "anything1"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_UpdateProfile(t *testing.T) {
	svc, users, _, _ := setupAuthService(t)
	users.add(&model.User{ID: "user:a", Email: "a@example.com", Name: strPtr("Old"), CurrentMode: model.ModeDating})

	mode := model.ModeWedding
	updated, err := svc.UpdateProfile(context.Background(), "user:a", &model.UpdateUserRequest{
		Name:        strPtr(""),
		Nickname:    strPtr("Bean"),
		CurrentMode: &mode,
		WeddingDate: strPtr("2027-05-01"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.Name != nil {
		t.Errorf("expected empty name to clear, got %v", *updated.Name)
	}
	stored := users.get("user:a")
	if stored.Nickname == nil || *stored.Nickname != "Bean" {
		t.Errorf("expected nickname to persist")
	}
	if stored.CurrentMode != model.ModeWedding {
		t.Errorf("expected wedding mode, got %s", stored.CurrentMode)
	}
	if stored.WeddingDate == nil || *stored.WeddingDate != "2027-05-01" {
		t.Errorf("expected wedding date to persist")
	}
}

func TestAuthService_GetUser_NotFound(t *testing.T) {
	svc, _, _, _ := setupAuthService(t)

	if _, err := svc.GetUser(context.Background(), "user:missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_DeleteAccount_NotifiesPartner(t *testing.T) {
	svc, users, _, pub := setupAuthService(t)
	users.add(&model.User{ID: "user:a", Email: "a@example.com", PartnerID: strPtr("user:b")})
	users.add(&model.User{ID: "user:b", Email: "b@example.com", PartnerID: strPtr("user:a")})

	if err := svc.DeleteAccount(context.Background(), "user:a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if users.get("user:a") != nil {
		t.Error("expected user to be deleted")
	}
	if partner := users.get("user:b"); partner.HasPartner() {
		t.Error("expected partner to be unlinked")
	}
	if len(pub.sent) != 1 || pub.sent[0].Event.Type != EventCoupleUnlinked {
		t.Fatalf("expected one couple.unlinked event, got %v", pub.types())
	}
	if got := pub.sent[0].UserIDs; len(got) != 1 || got[0] != "user:b" {
		t.Errorf("expected event for partner only, got %v", got)
	}
}

func TestAuthService_DeleteAccount_Missing(t *testing.T) {
	svc, users, _, pub := setupAuthService(t)

	if err := svc.DeleteAccount(context.Background(), "user:ghost"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users.deleted) != 0 || len(pub.sent) != 0 {
		t.Error("expected no side effects for missing user")
	}
}

func TestAuthService_SetRole(t *testing.T) {
	svc, users, _, _ := setupAuthService(t)
	users.add(&model.User{ID: "user:a", Email: "admin@example.com"})

	user, err := svc.SetRole(context.Background(), "Admin@Example.com", model.UserRoleAdmin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !user.IsAdmin() || !users.get("user:a").IsAdmin() {
		t.Error("expected admin role to be stored")
	}

	if _, err := svc.SetRole(context.Background(), "nobody@example.com", model.UserRoleAdmin); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

// ============================================================================
// Sessions
// ============================================================================

func setupSessionService(t *testing.T) (*SessionService, *mockUserRepo, *mockSessionRepo, *time.Time) {
	t.Helper()

	users := newMockUserRepo()
	users.add(&model.User{ID: "user:a", Email: "a@example.com"})
	sessions := newMockSessionRepo()
	svc := NewSessionService(SessionServiceConfig{SessionRepo: sessions, UserRepo: users, TTL: time.Hour})

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, users, sessions, &now
}

func TestSessionService_StartAndValidate(t *testing.T) {
	svc, _, sessions, now := setupSessionService(t)
	ctx := context.Background()

	auth, err := svc.Start(ctx, &model.User{ID: "user:a"}, map[string]interface{}{"provider": "password"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !auth.ExpiresOn.Equal(now.Add(time.Hour)) {
		t.Errorf("expected expiry one TTL ahead, got %v", auth.ExpiresOn)
	}
	if _, ok := sessions.byHash[auth.Token]; ok {
		t.Error("raw token must not be stored")
	}

	user, session, err := svc.Validate(ctx, auth.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if user.ID != "user:a" || session.UserID != "user:a" {
		t.Errorf("unexpected session owner %s", user.ID)
	}
	if session.Claims["provider"] != "password" {
		t.Errorf("expected claims to round trip, got %v", session.Claims)
	}
}

func TestSessionService_Validate_Invalid(t *testing.T) {
	svc, _, _, _ := setupSessionService(t)

	for _, token := range []string{"", "not-a-session"} {
		if _, _, err := svc.Validate(context.Background(), token); !errors.Is(err, ErrSessionInvalid) {
			t.Errorf("token %q: expected ErrSessionInvalid, got %v", token, err)
		}
	}
}

func TestSessionService_Validate_ExpiredIsDeleted(t *testing.T) {
	svc, _, sessions, now := setupSessionService(t)
	ctx := context.Background()

	auth, err := svc.Start(ctx, &model.User{ID: "user:a"}, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	*now = now.Add(2 * time.Hour)
	if _, _, err := svc.Validate(ctx, auth.Token); !errors.Is(err, ErrSessionInvalid) {
		t.Errorf("expected ErrSessionInvalid, got %v", err)
	}
	if sessions.count() != 0 {
		t.Error("expected expired session to be deleted")
	}
}

func TestSessionService_Validate_Slides(t *testing.T) {
	svc, _, sessions, now := setupSessionService(t)
	ctx := context.Background()

	auth, err := svc.Start(ctx, &model.User{ID: "user:a"}, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	*now = now.Add(time.Minute)
	if _, _, err := svc.Validate(ctx, auth.Token); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(sessions.touched) != 0 {
		t.Error("expected no touch within the touch interval")
	}

	*now = now.Add(45 * time.Minute)
	_, session, err := svc.Validate(ctx, auth.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(sessions.touched) != 1 {
		t.Fatalf("expected one touch, got %d", len(sessions.touched))
	}
	if !session.ExpiresOn.Equal(now.Add(time.Hour)) {
		t.Errorf("expected sliding expiry, got %v", session.ExpiresOn)
	}
}

func TestSessionService_Validate_DeletedUser(t *testing.T) {
	svc, users, _, _ := setupSessionService(t)
	ctx := context.Background()

	auth, err := svc.Start(ctx, &model.User{ID: "user:a"}, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	_ = users.Delete(ctx, "user:a")

	if _, _, err := svc.Validate(ctx, auth.Token); !errors.Is(err, ErrSessionInvalid) {
		t.Errorf("expected ErrSessionInvalid, got %v", err)
	}
}

func TestSessionService_EndAndEndAll(t *testing.T) {
	svc, _, sessions, _ := setupSessionService(t)
	ctx := context.Background()

	first, _ := svc.Start(ctx, &model.User{ID: "user:a"}, nil)
	if _, err := svc.Start(ctx, &model.User{ID: "user:a"}, nil); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := svc.End(ctx, first.Token); err != nil {
		t.Fatalf("end: %v", err)
	}
	if sessions.count() != 1 {
		t.Errorf("expected 1 session after End, got %d", sessions.count())
	}
	if err := svc.End(ctx, ""); err != nil {
		t.Errorf("End with empty token should be a no-op, got %v", err)
	}

	if err := svc.EndAll(ctx, "user:a"); err != nil {
		t.Fatalf("end all: %v", err)
	}
	if sessions.count() != 0 {
		t.Errorf("expected no sessions after EndAll, got %d", sessions.count())
	}
}

func TestHashToken_Deterministic(t *testing.T) {
	if hashToken("abc") != hashToken("abc") {
		t.Error("hash should be deterministic")
	}
	if hashToken("abc") == hashToken("abd") {
		t.Error("different tokens should hash differently")
	}
	if len(hashToken("abc")) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(hashToken("abc")))
	}
}
