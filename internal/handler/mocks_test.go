package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/webeat/weve/internal/middleware"
	"github.com/webeat/weve/internal/model"
	"github.com/webeat/weve/internal/service"
)

// ============================================================================
// Mock ScopedService
// ============================================================================

type mockScoped[T any] struct {
	listFunc   func(ctx context.Context, scope model.Scope) ([]*T, error)
	getFunc    func(ctx context.Context, scope model.Scope, id string) (*T, error)
	createFunc func(ctx context.Context, scope model.Scope, req service.Creator[T]) (*T, error)
	updateFunc func(ctx context.Context, scope model.Scope, id string, req service.Patcher[T]) (*T, error)
	deleteFunc func(ctx context.Context, scope model.Scope, id string) error
}

func (m *mockScoped[T]) List(ctx context.Context, scope model.Scope) ([]*T, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, scope)
	}
	return nil, nil
}

func (m *mockScoped[T]) Get(ctx context.Context, scope model.Scope, id string) (*T, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, scope, id)
	}
	return nil, service.ErrNotFound
}

func (m *mockScoped[T]) Create(ctx context.Context, scope model.Scope, req service.Creator[T]) (*T, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, scope, req)
	}
	return req.Build(), nil
}

func (m *mockScoped[T]) Update(ctx context.Context, scope model.Scope, id string, req service.Patcher[T]) (*T, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, scope, id, req)
	}
	return nil, service.ErrNotFound
}

func (m *mockScoped[T]) Delete(ctx context.Context, scope model.Scope, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, scope, id)
	}
	return nil
}

type mockTodoService struct {
	mockScoped[model.Todo]
	listByStatusFunc func(ctx context.Context, scope model.Scope, completed bool) ([]*model.Todo, error)
}

func (m *mockTodoService) ListByStatus(ctx context.Context, scope model.Scope, completed bool) ([]*model.Todo, error) {
	if m.listByStatusFunc != nil {
		return m.listByStatusFunc(ctx, scope, completed)
	}
	return nil, nil
}

type mockEventService struct {
	mockScoped[model.Event]
	listRangeFunc func(ctx context.Context, scope model.Scope, f model.EventFilter) ([]*model.Event, error)
}

func (m *mockEventService) ListRange(ctx context.Context, scope model.Scope, f model.EventFilter) ([]*model.Event, error) {
	if m.listRangeFunc != nil {
		return m.listRangeFunc(ctx, scope, f)
	}
	return nil, nil
}

type mockPhotoService struct {
	mockScoped[model.Photo]
	listByAlbumFunc func(ctx context.Context, scope model.Scope, albumID string) ([]*model.Photo, error)
	uploadFunc      func(ctx context.Context, scope model.Scope, r io.Reader, meta model.CreatePhotoRequest) (*model.Photo, error)
}

func (m *mockPhotoService) ListByAlbum(ctx context.Context, scope model.Scope, albumID string) ([]*model.Photo, error) {
	if m.listByAlbumFunc != nil {
		return m.listByAlbumFunc(ctx, scope, albumID)
	}
	return nil, nil
}

func (m *mockPhotoService) Upload(ctx context.Context, scope model.Scope, r io.Reader, meta model.CreatePhotoRequest) (*model.Photo, error) {
	if m.uploadFunc != nil {
		return m.uploadFunc(ctx, scope, r, meta)
	}
	return nil, nil
}

// ============================================================================
// Mock AccountService / SessionEnder / LoginFlow
// ============================================================================

type mockAccountService struct {
	registerFunc      func(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)
	loginFunc         func(ctx context.Context, req *model.PasswordLoginRequest) (*model.AuthResponse, error)
	getUserFunc       func(ctx context.Context, userID string) (*model.User, error)
	updateProfileFunc func(ctx context.Context, userID string, req *model.UpdateUserRequest) (*model.User, error)
	deleteAccountFunc func(ctx context.Context, userID string) error
	setRoleFunc       func(ctx context.Context, email string, role model.UserRole) (*model.User, error)
}

func (m *mockAccountService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, req)
	}
	return nil, nil
}

func (m *mockAccountService) Login(ctx context.Context, req *model.PasswordLoginRequest) (*model.AuthResponse, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, req)
	}
	return nil, nil
}

func (m *mockAccountService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	if m.getUserFunc != nil {
		return m.getUserFunc(ctx, userID)
	}
	return nil, service.ErrUserNotFound
}

func (m *mockAccountService) UpdateProfile(ctx context.Context, userID string, req *model.UpdateUserRequest) (*model.User, error) {
	if m.updateProfileFunc != nil {
		return m.updateProfileFunc(ctx, userID, req)
	}
	return nil, nil
}

func (m *mockAccountService) DeleteAccount(ctx context.Context, userID string) error {
	if m.deleteAccountFunc != nil {
		return m.deleteAccountFunc(ctx, userID)
	}
	return nil
}

func (m *mockAccountService) SetRole(ctx context.Context, email string, role model.UserRole) (*model.User, error) {
	if m.setRoleFunc != nil {
		return m.setRoleFunc(ctx, email, role)
	}
	return nil, service.ErrUserNotFound
}

type mockSessionEnder struct {
	ended    []string
	endedAll []string
	endErr   error
}

func (m *mockSessionEnder) End(ctx context.Context, token string) error {
	m.ended = append(m.ended, token)
	return m.endErr
}

func (m *mockSessionEnder) EndAll(ctx context.Context, userID string) error {
	m.endedAll = append(m.endedAll, userID)
	return nil
}

type mockLoginFlow struct {
	beginFunc    func(returnTo string) (*service.LoginStart, error)
	completeFunc func(ctx context.Context, flowToken, state, code string) (*service.LoginResult, error)
}

func (m *mockLoginFlow) Begin(returnTo string) (*service.LoginStart, error) {
	if m.beginFunc != nil {
		return m.beginFunc(returnTo)
	}
	return nil, service.ErrOIDCDisabled
}

func (m *mockLoginFlow) Complete(ctx context.Context, flowToken, state, code string) (*service.LoginResult, error) {
	if m.completeFunc != nil {
		return m.completeFunc(ctx, flowToken, state, code)
	}
	return nil, service.ErrOIDCDisabled
}

// ============================================================================
// Mock CoupleLinker
// ============================================================================

type mockCoupleService struct {
	inviteFunc       func(ctx context.Context, userID string) (*model.CoupleInvite, error)
	acceptFunc       func(ctx context.Context, userID, code string) (*model.CoupleStatus, error)
	statusFunc       func(ctx context.Context, userID string) (*model.CoupleStatus, error)
	unlinkFunc       func(ctx context.Context, userID string) error
	cancelInviteFunc func(ctx context.Context, userID string) error
}

func (m *mockCoupleService) Invite(ctx context.Context, userID string) (*model.CoupleInvite, error) {
	if m.inviteFunc != nil {
		return m.inviteFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockCoupleService) Accept(ctx context.Context, userID, code string) (*model.CoupleStatus, error) {
	if m.acceptFunc != nil {
		return m.acceptFunc(ctx, userID, code)
	}
	return nil, nil
}

func (m *mockCoupleService) Status(ctx context.Context, userID string) (*model.CoupleStatus, error) {
	if m.statusFunc != nil {
		return m.statusFunc(ctx, userID)
	}
	return &model.CoupleStatus{}, nil
}

func (m *mockCoupleService) Unlink(ctx context.Context, userID string) error {
	if m.unlinkFunc != nil {
		return m.unlinkFunc(ctx, userID)
	}
	return nil
}

func (m *mockCoupleService) CancelInvite(ctx context.Context, userID string) error {
	if m.cancelInviteFunc != nil {
		return m.cancelInviteFunc(ctx, userID)
	}
	return nil
}

// ============================================================================
// Mock CommunityFeed
// ============================================================================

type mockCommunityFeed struct {
	listFunc       func(ctx context.Context, viewer *model.User, f model.PostFilter) (*service.PostPage, error)
	getFunc        func(ctx context.Context, viewer *model.User, id string) (*model.CommunityPost, error)
	createFunc     func(ctx context.Context, author *model.User, mode model.Mode, req *model.CreatePostRequest) (*model.CommunityPost, error)
	updateFunc     func(ctx context.Context, caller *model.User, id string, req *model.UpdatePostRequest) (*model.CommunityPost, error)
	deleteFunc     func(ctx context.Context, caller *model.User, id string) error
	toggleLikeFunc func(ctx context.Context, caller *model.User, id string) (*model.LikeResult, error)
}

func (m *mockCommunityFeed) List(ctx context.Context, viewer *model.User, f model.PostFilter) (*service.PostPage, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, viewer, f)
	}
	return &service.PostPage{}, nil
}

func (m *mockCommunityFeed) Get(ctx context.Context, viewer *model.User, id string) (*model.CommunityPost, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, viewer, id)
	}
	return nil, service.ErrNotFound
}

func (m *mockCommunityFeed) Create(ctx context.Context, author *model.User, mode model.Mode, req *model.CreatePostRequest) (*model.CommunityPost, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, author, mode, req)
	}
	return nil, nil
}

func (m *mockCommunityFeed) Update(ctx context.Context, caller *model.User, id string, req *model.UpdatePostRequest) (*model.CommunityPost, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, caller, id, req)
	}
	return nil, service.ErrNotFound
}

func (m *mockCommunityFeed) Delete(ctx context.Context, caller *model.User, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, caller, id)
	}
	return nil
}

func (m *mockCommunityFeed) ToggleLike(ctx context.Context, caller *model.User, id string) (*model.LikeResult, error) {
	if m.toggleLikeFunc != nil {
		return m.toggleLikeFunc(ctx, caller, id)
	}
	return nil, service.ErrNotFound
}

// ============================================================================
// Mock Billing
// ============================================================================

type mockBilling struct {
	plansFunc      func(ctx context.Context) ([]model.Plan, error)
	membershipFunc func(ctx context.Context, userID string) (*model.MembershipStatus, error)
	checkoutFunc   func(ctx context.Context, user *model.User, planID string) (*model.RedirectResponse, error)
	portalFunc     func(ctx context.Context, userID string) (*model.RedirectResponse, error)
	webhookFunc    func(ctx context.Context, payload []byte, signature string) error
}

func (m *mockBilling) Plans(ctx context.Context) ([]model.Plan, error) {
	if m.plansFunc != nil {
		return m.plansFunc(ctx)
	}
	return nil, service.ErrBillingDisabled
}

func (m *mockBilling) Membership(ctx context.Context, userID string) (*model.MembershipStatus, error) {
	if m.membershipFunc != nil {
		return m.membershipFunc(ctx, userID)
	}
	return &model.MembershipStatus{}, nil
}

func (m *mockBilling) Checkout(ctx context.Context, user *model.User, planID string) (*model.RedirectResponse, error) {
	if m.checkoutFunc != nil {
		return m.checkoutFunc(ctx, user, planID)
	}
	return nil, service.ErrBillingDisabled
}

func (m *mockBilling) Portal(ctx context.Context, userID string) (*model.RedirectResponse, error) {
	if m.portalFunc != nil {
		return m.portalFunc(ctx, userID)
	}
	return nil, service.ErrBillingDisabled
}

func (m *mockBilling) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if m.webhookFunc != nil {
		return m.webhookFunc(ctx, payload, signature)
	}
	return nil
}

// ============================================================================
// Test Helpers
// ============================================================================

func strPtr(s string) *string {
	return &s
}

func newTestUser(id string) *model.User {
	return &model.User{ID: id, Email: id + "@example.com", Role: model.UserRoleUser, CurrentMode: model.ModeDating}
}

func newLinkedUser(id, partnerID string) *model.User {
	u := newTestUser(id)
	u.PartnerID = &partnerID
	return u
}

// asUser puts the user and a scope in the given mode on every request,
// standing in for the Auth and Scope middleware
func asUser(user *model.User, mode model.Mode) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.WithUser(r.Context(), user, nil)
			ctx = middleware.WithScope(ctx, model.Scope{UserID: user.ID, UserIDs: user.CoupleUserIDs(), Mode: mode})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func passThrough(next http.Handler) http.Handler {
	return next
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	if s, ok := v.(string); ok {
		return bytes.NewBufferString(s)
	}
	body, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(body)
}

func serve(mux *http.ServeMux, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func serveWithHeader(mux *http.ServeMux, method, target string, body io.Reader, key, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(key, value)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func decodeProblem(t *testing.T, rr *httptest.ResponseRecorder) model.ProblemDetails {
	t.Helper()
	if ct := rr.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("expected application/problem+json, got %q", ct)
	}
	var pd model.ProblemDetails
	if err := json.NewDecoder(rr.Body).Decode(&pd); err != nil {
		t.Fatalf("decode problem: %v", err)
	}
	return pd
}

func decodeData(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) map[string]string {
	t.Helper()
	var envelope struct {
		Data  json.RawMessage   `json:"data"`
		Links map[string]string `json:"_links"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if v != nil {
		if err := json.Unmarshal(envelope.Data, v); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return envelope.Links
}
