package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/webeat/weve/internal/database"
	"github.com/webeat/weve/internal/model"
)

// ============================================================================
// Users
// ============================================================================

type mockUserRepo struct {
	mu        sync.Mutex
	users     map[string]*model.User
	seq       int
	createErr error
	getErr    error
	linkErr   error
	deleted   []string
	logins    []string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) add(u *model.User) *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.Role == "" {
		u.Role = model.UserRoleUser
	}
	m.users[u.ID] = u
	return u
}

func (m *mockUserRepo) get(id string) *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp
	}
	return nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return fmt.Errorf("%w: email already exists", database.ErrDuplicate)
		}
	}
	m.seq++
	user.ID = fmt.Sprintf("user:u%d", m.seq)
	if user.Role == "" {
		user.Role = model.UserRoleUser
	}
	if user.CurrentMode == "" {
		user.CurrentMode = model.ModeDating
	}
	user.CreatedOn = time.Now()
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.get(id), nil
}

func (m *mockUserRepo) find(match func(*model.User) bool) *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.find(func(u *model.User) bool { return u.Email == email }), nil
}

func (m *mockUserRepo) GetByOIDCSubject(ctx context.Context, subject string) (*model.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.find(func(u *model.User) bool { return u.OIDCSubject != nil && *u.OIDCSubject == subject }), nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserRepo) UpdateLogin(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logins = append(m.logins, userID)
	return nil
}

func (m *mockUserRepo) SetPassword(ctx context.Context, userID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		u.Hash = &hash
	}
	return nil
}

func (m *mockUserRepo) SetRole(ctx context.Context, userID string, role model.UserRole) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		u.Role = role
	}
	return nil
}

func (m *mockUserRepo) Link(ctx context.Context, inviteID, inviterID, accepterID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.linkErr != nil {
		return m.linkErr
	}
	a, b := m.users[inviterID], m.users[accepterID]
	if a.PartnerID != nil || b.PartnerID != nil {
		return fmt.Errorf("%w: partner already exists", database.ErrDuplicate)
	}
	a.PartnerID = &accepterID
	b.PartnerID = &inviterID
	return nil
}

func (m *mockUserRepo) Unlink(ctx context.Context, userID, partnerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range []string{userID, partnerID} {
		if u, ok := m.users[id]; ok {
			u.PartnerID = nil
		}
	}
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.PartnerID != nil && *u.PartnerID == userID {
			u.PartnerID = nil
		}
	}
	delete(m.users, userID)
	m.deleted = append(m.deleted, userID)
	return nil
}

// ============================================================================
// Sessions
// ============================================================================

type mockSessionRepo struct {
	mu       sync.Mutex
	byHash   map[string]*model.Session
	seq      int
	touched  []string
	touchErr error
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{byHash: make(map[string]*model.Session)}
}

func (m *mockSessionRepo) Create(ctx context.Context, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	s.ID = fmt.Sprintf("session:s%d", m.seq)
	cp := *s
	m.byHash[s.TokenHash] = &cp
	return nil
}

func (m *mockSessionRepo) GetByTokenHash(ctx context.Context, hash string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.byHash[hash]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (m *mockSessionRepo) Touch(ctx context.Context, id string, expiresOn time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched = append(m.touched, id)
	for _, s := range m.byHash {
		if s.ID == id {
			s.ExpiresOn = expiresOn
		}
	}
	return m.touchErr
}

func (m *mockSessionRepo) DeleteByTokenHash(ctx context.Context, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byHash, hash)
	return nil
}

func (m *mockSessionRepo) DeleteForUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for h, s := range m.byHash {
		if s.UserID == userID {
			delete(m.byHash, h)
		}
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for h, s := range m.byHash {
		if s.Expired(time.Now()) {
			delete(m.byHash, h)
			n++
		}
	}
	return n, nil
}

func (m *mockSessionRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byHash)
}

// ============================================================================
// Invites
// ============================================================================

type mockInviteRepo struct {
	mu        sync.Mutex
	invites   []*model.CoupleInvite
	createErr []error
}

func (m *mockInviteRepo) Create(ctx context.Context, inv *model.CoupleInvite) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.createErr) > 0 {
		err := m.createErr[0]
		m.createErr = m.createErr[1:]
		if err != nil {
			return err
		}
	}
	inv.ID = fmt.Sprintf("couple_invite:i%d", len(m.invites)+1)
	m.invites = append(m.invites, inv)
	return nil
}

func (m *mockInviteRepo) GetByCode(ctx context.Context, code string) (*model.CoupleInvite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inv := range m.invites {
		if inv.Code == code {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockInviteRepo) GetPendingForInviter(ctx context.Context, inviterID string) (*model.CoupleInvite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.invites) - 1; i >= 0; i-- {
		inv := m.invites[i]
		if inv.InviterID == inviterID && inv.Status == model.InviteStatusPending {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockInviteRepo) CancelPending(ctx context.Context, inviterID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inv := range m.invites {
		if inv.InviterID == inviterID && inv.Status == model.InviteStatusPending {
			inv.Status = model.InviteStatusCancelled
		}
	}
	return nil
}

func (m *mockInviteRepo) ExpireStale(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, inv := range m.invites {
		if inv.Status == model.InviteStatusPending && !inv.ExpiresOn.After(time.Now()) {
			inv.Status = model.InviteStatusExpired
			n++
		}
	}
	return n, nil
}

// ============================================================================
// Scoped stores
// ============================================================================

// memStore is an in-memory ScopedStore. ListWhere cannot evaluate
// SurrealQL, so it records the condition and applies filter if set.
type memStore[T any, P owned[T]] struct {
	mu       sync.Mutex
	table    string
	rows     []*T
	seq      int
	filter   func(item *T, vars map[string]interface{}) bool
	lastCond string
	lastVars map[string]interface{}
	deleted  []string
}

func newMemStore[T any, P owned[T]](table string) *memStore[T, P] {
	return &memStore[T, P]{table: table}
}

func (m *memStore[T, P]) seed(item *T) *T {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	meta := P(item).Meta()
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("%s:r%d", m.table, m.seq)
	}
	m.rows = append(m.rows, item)
	return item
}

func (m *memStore[T, P]) ListByOwners(ctx context.Context, owners []string, mode model.Mode) ([]*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*T
	for _, row := range m.rows {
		meta := P(row).Meta()
		if meta.Mode != mode {
			continue
		}
		for _, o := range owners {
			if meta.UserID == o {
				cp := *row
				out = append(out, &cp)
				break
			}
		}
	}
	return out, nil
}

func (m *memStore[T, P]) ListWhere(ctx context.Context, owners []string, mode model.Mode, cond string, vars map[string]interface{}) ([]*T, error) {
	rows, _ := m.ListByOwners(ctx, owners, mode)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastCond, m.lastVars = cond, vars
	if m.filter == nil {
		return rows, nil
	}
	var out []*T
	for _, row := range rows {
		if m.filter(row, vars) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memStore[T, P]) GetByID(ctx context.Context, id string) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if P(row).Meta().ID == id {
			cp := *row
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore[T, P]) Create(ctx context.Context, item *T) (*T, error) {
	m.mu.Lock()
	m.seq++
	meta := P(item).Meta()
	meta.ID = fmt.Sprintf("%s:r%d", m.table, m.seq)
	meta.CreatedOn = time.Now()
	meta.UpdatedOn = meta.CreatedOn
	cp := *item
	m.rows = append(m.rows, &cp)
	m.mu.Unlock()
	return item, nil
}

func (m *memStore[T, P]) Update(ctx context.Context, item *T) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := P(item).Meta().ID
	for i, row := range m.rows {
		if P(row).Meta().ID == id {
			cp := *item
			m.rows[i] = &cp
			return item, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *memStore[T, P]) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, id)
	for i, row := range m.rows {
		if P(row).Meta().ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memStore[T, P]) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// ============================================================================
// Events
// ============================================================================

type sentEvent struct {
	UserIDs []string
	Event   Event
}

type recordingPublisher struct {
	mu   sync.Mutex
	sent []sentEvent
}

func (p *recordingPublisher) SendToUsers(userIDs []string, event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := append([]string(nil), userIDs...)
	sort.Strings(ids)
	p.sent = append(p.sent, sentEvent{UserIDs: ids, Event: event})
}

func (p *recordingPublisher) types() []EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]EventType, len(p.sent))
	for i, s := range p.sent {
		out[i] = s.Event.Type
	}
	return out
}

// ============================================================================
// Fixtures
// ============================================================================

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func boolPtr(v bool) *bool { return &v }

func coupleScope(mode model.Mode) model.Scope {
	return model.Scope{UserID: "user:a", UserIDs: []string{"user:a", "user:b"}, Mode: mode}
}

func soloScope(userID string, mode model.Mode) model.Scope {
	return model.Scope{UserID: userID, UserIDs: []string{userID}, Mode: mode}
}
