// Package fixtures provides test data factories for database tests.
//
// Each factory method creates a row with sensible defaults, lets the caller
// override fields through option functions, and returns the stored model.
// Factories write through the repositories so fixtures always match what
// the API would have stored.
//
//	f := fixtures.New(tdb.DB)
//	alice, bob := f.CreateCouple(t)
//	event := f.CreateEvent(t, alice, model.ModeDating)
package fixtures

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/webeat/weve/internal/database"
	"github.com/webeat/weve/internal/model"
	"github.com/webeat/weve/internal/repository"
)

// Factory creates test entities in the database
type Factory struct {
	db       database.Database
	users    *repository.UserRepository
	sessions *repository.SessionRepository
	invites  *repository.InviteRepository
}

// New creates a new fixture factory
func New(db database.Database) *Factory {
	return &Factory{
		db:       db,
		users:    repository.NewUserRepository(db),
		sessions: repository.NewSessionRepository(db),
		invites:  repository.NewInviteRepository(db),
	}
}

func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// ============================================================================
// User Fixtures
// ============================================================================

// UserOpts customizes user creation
type UserOpts struct {
	Email    string
	Name     string
	Password string
	Role     model.UserRole
	Mode     model.Mode
}

// CreateUser creates a user with a bcrypt password hash
func (f *Factory) CreateUser(t *testing.T, opts ...func(*UserOpts)) *model.User {
	t.Helper()

	o := &UserOpts{
		Email:    fmt.Sprintf("user_%s@test.local", randomID()),
		Name:     "Test User",
		Password: "testpass123",
		Role:     model.UserRoleUser,
		Mode:     model.ModeDating,
	}
	for _, fn := range opts {
		fn(o)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(o.Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("fixtures: failed to hash password: %v", err)
	}
	hashStr := string(hash)
	name := o.Name

	user := &model.User{
		Email:       o.Email,
		Name:        &name,
		Hash:        &hashStr,
		Role:        o.Role,
		CurrentMode: o.Mode,
	}
	if err := f.users.Create(testCtx(t), user); err != nil {
		t.Fatalf("fixtures: failed to create user: %v", err)
	}
	user.Hash = nil
	return user
}

// CreateAdmin creates an admin user
func (f *Factory) CreateAdmin(t *testing.T) *model.User {
	return f.CreateUser(t, func(o *UserOpts) {
		o.Role = model.UserRoleAdmin
	})
}

// WithMode sets the user's current mode
func WithMode(mode model.Mode) func(*UserOpts) {
	return func(o *UserOpts) { o.Mode = mode }
}

// ============================================================================
// Couple Fixtures
// ============================================================================

// CreateInvite stores a pending invite from inviter that expires after ttl.
// A negative ttl creates an invite that is already stale.
func (f *Factory) CreateInvite(t *testing.T, inviter *model.User, ttl time.Duration) *model.CoupleInvite {
	t.Helper()

	inv := &model.CoupleInvite{
		Code:      randomID()[:8],
		InviterID: inviter.ID,
		ExpiresOn: time.Now().Add(ttl),
	}
	if err := f.invites.Create(testCtx(t), inv); err != nil {
		t.Fatalf("fixtures: failed to create invite: %v", err)
	}
	return inv
}

// LinkCouple links two existing users and returns both reloaded
func (f *Factory) LinkCouple(t *testing.T, a, b *model.User) (*model.User, *model.User) {
	t.Helper()

	inv := f.CreateInvite(t, a, time.Hour)
	ctx := testCtx(t)
	if err := f.users.Link(ctx, inv.ID, a.ID, b.ID); err != nil {
		t.Fatalf("fixtures: failed to link couple: %v", err)
	}
	return f.reload(t, a.ID), f.reload(t, b.ID)
}

// CreateCouple creates two users and links them
func (f *Factory) CreateCouple(t *testing.T) (*model.User, *model.User) {
	t.Helper()
	return f.LinkCouple(t, f.CreateUser(t), f.CreateUser(t))
}

func (f *Factory) reload(t *testing.T, id string) *model.User {
	t.Helper()
	user, err := f.users.GetByID(testCtx(t), id)
	if err != nil || user == nil {
		t.Fatalf("fixtures: failed to reload user %s: %v", id, err)
	}
	return user
}

// ============================================================================
// Session Fixtures
// ============================================================================

// CreateSession stores a session for user expiring at expiresOn and
// returns it with a random token hash.
func (f *Factory) CreateSession(t *testing.T, user *model.User, expiresOn time.Time) *model.Session {
	t.Helper()

	s := &model.Session{
		UserID:    user.ID,
		TokenHash: randomID() + randomID(),
		ExpiresOn: expiresOn,
	}
	if err := f.sessions.Create(testCtx(t), s); err != nil {
		t.Fatalf("fixtures: failed to create session: %v", err)
	}
	return s
}

// ============================================================================
// Scoped Resource Fixtures
// ============================================================================

// CreateEvent stores an all-day event owned by user in mode
func (f *Factory) CreateEvent(t *testing.T, owner *model.User, mode model.Mode, opts ...func(*model.Event)) *model.Event {
	t.Helper()

	e := &model.Event{
		Base:   model.Base{UserID: owner.ID, Mode: mode},
		Title:  "Dinner " + randomID()[:4],
		Date:   time.Now().Format(model.DateLayout),
		AllDay: true,
		Repeat: model.RepeatNone,
	}
	for _, fn := range opts {
		fn(e)
	}

	created, err := repository.NewEventRepository(f.db).Create(testCtx(t), e)
	if err != nil {
		t.Fatalf("fixtures: failed to create event: %v", err)
	}
	return created
}

// CreateTodo stores an open todo owned by user in mode
func (f *Factory) CreateTodo(t *testing.T, owner *model.User, mode model.Mode, opts ...func(*model.Todo)) *model.Todo {
	t.Helper()

	todo := &model.Todo{
		Base:     model.Base{UserID: owner.ID, Mode: mode},
		Title:    "Book tickets " + randomID()[:4],
		Priority: model.PriorityNormal,
	}
	for _, fn := range opts {
		fn(todo)
	}

	created, err := repository.NewTodoRepository(f.db).Create(testCtx(t), todo)
	if err != nil {
		t.Fatalf("fixtures: failed to create todo: %v", err)
	}
	return created
}
