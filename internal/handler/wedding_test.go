package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/webeat/weve/internal/model"
	"github.com/webeat/weve/internal/service"
)

type stubWeddingInfo struct {
	info *model.WeddingInfo
	put  *model.PutWeddingInfoRequest
}

func (s *stubWeddingInfo) Get(ctx context.Context, scope model.Scope) (*model.WeddingInfo, error) {
	return s.info, nil
}

func (s *stubWeddingInfo) Put(ctx context.Context, scope model.Scope, req *model.PutWeddingInfoRequest) (*model.WeddingInfo, error) {
	s.put = req
	info := &model.WeddingInfo{}
	req.Apply(info)
	return info, nil
}

type stubExpenseSummary struct{}

func (stubExpenseSummary) Summary(ctx context.Context, scope model.Scope) (*model.ExpenseSummary, error) {
	return &model.ExpenseSummary{Total: 1500000, ByCategory: []model.CategoryTotal{}, ExpenseCount: 2}, nil
}

type stubGuestSummary struct{}

func (stubGuestSummary) Summary(ctx context.Context, scope model.Scope) (*model.GuestSummary, error) {
	return model.SummarizeGuests(nil), nil
}

type stubSeeder struct {
	seeded bool
}

func (s *stubSeeder) SeedDefaults(ctx context.Context, scope model.Scope) ([]*model.ChecklistItem, error) {
	if s.seeded {
		return nil, service.ErrChecklistSeeded
	}
	s.seeded = true
	return []*model.ChecklistItem{{Base: model.Base{ID: "checklist_item:1"}, Title: "상견례"}}, nil
}

func newWeddingMux(info *stubWeddingInfo, seeder *stubSeeder) *http.ServeMux {
	mux := http.NewServeMux()
	NewWeddingHandler(WeddingServices{
		Info:      info,
		Expenses:  stubExpenseSummary{},
		Guests:    stubGuestSummary{},
		Checklist: seeder,
	}).RegisterRoutes(mux, asUser(newLinkedUser("user:a", "user:b"), model.ModeWedding))
	return mux
}

func TestWeddingInfo_NullUntilSaved(t *testing.T) {
	t.Parallel()
	mux := newWeddingMux(&stubWeddingInfo{}, &stubSeeder{})

	rr := serve(mux, http.MethodGet, "/api/wedding-info", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"data":null`) {
		t.Errorf("expected null data, got %s", rr.Body.String())
	}
}

func TestWeddingInfo_Put(t *testing.T) {
	t.Parallel()
	info := &stubWeddingInfo{}
	mux := newWeddingMux(info, &stubSeeder{})

	rr := serve(mux, http.MethodPut, "/api/wedding-info", jsonBody(t, model.PutWeddingInfoRequest{
		WeddingDate: strPtr("2026-11-21"),
		Venue:       strPtr("Seoul"),
	}))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	if info.put == nil || *info.put.Venue != "Seoul" {
		t.Error("expected request to reach the store")
	}

	rr = serve(mux, http.MethodPut, "/api/wedding-info", jsonBody(t, model.PutWeddingInfoRequest{WeddingDate: strPtr("next spring")}))
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, rr.Code)
	}
}

func TestWeddingSummaries(t *testing.T) {
	t.Parallel()
	mux := newWeddingMux(&stubWeddingInfo{}, &stubSeeder{})

	rr := serve(mux, http.MethodGet, "/api/expenses/summary", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var expenses model.ExpenseSummary
	decodeData(t, rr, &expenses)
	if expenses.Total != 1500000 {
		t.Errorf("unexpected total %d", expenses.Total)
	}

	rr = serve(mux, http.MethodGet, "/api/guests/summary", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestSeedChecklist_OnlyOnce(t *testing.T) {
	t.Parallel()
	mux := newWeddingMux(&stubWeddingInfo{}, &stubSeeder{})

	rr := serve(mux, http.MethodPost, "/api/checklist/defaults", nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, rr.Code)
	}

	rr = serve(mux, http.MethodPost, "/api/checklist/defaults", nil)
	if rr.Code != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, rr.Code)
	}
}

// ============================================================================
// Settings / Dashboard / AI
// ============================================================================

type stubSettings struct{}

func (stubSettings) Get(ctx context.Context, userID string) (*model.UserSettings, error) {
	return &model.UserSettings{UserID: userID, Theme: "system", Language: "ko"}, nil
}

func (stubSettings) Update(ctx context.Context, userID string, req *model.UpdateSettingsRequest) (*model.UserSettings, error) {
	s := &model.UserSettings{UserID: userID, Theme: "system", Language: "ko"}
	if req.Theme != nil {
		s.Theme = *req.Theme
	}
	return s, nil
}

func TestSettings(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	NewSettingsHandler(stubSettings{}).RegisterRoutes(mux, asUser(newTestUser("user:a"), model.ModeDating))

	rr := serve(mux, http.MethodPatch, "/api/settings", jsonBody(t, model.UpdateSettingsRequest{Theme: strPtr("dark")}))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	var s model.UserSettings
	decodeData(t, rr, &s)
	if s.Theme != "dark" || s.UserID != "user:a" {
		t.Errorf("unexpected settings %+v", s)
	}

	rr = serve(mux, http.MethodPatch, "/api/settings", jsonBody(t, model.UpdateSettingsRequest{Theme: strPtr("neon")}))
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, rr.Code)
	}
}

type dashboardFunc func(ctx context.Context, user *model.User, scope model.Scope) (*model.Dashboard, error)

func (f dashboardFunc) Build(ctx context.Context, user *model.User, scope model.Scope) (*model.Dashboard, error) {
	return f(ctx, user, scope)
}

func TestDashboard_UsesScopeMode(t *testing.T) {
	t.Parallel()
	builder := dashboardFunc(func(ctx context.Context, user *model.User, scope model.Scope) (*model.Dashboard, error) {
		return &model.Dashboard{Mode: scope.Mode, UpcomingEvents: []*model.Event{}, RecentPhotos: []*model.Photo{}}, nil
	})
	mux := http.NewServeMux()
	NewDashboardHandler(builder).RegisterRoutes(mux, asUser(newTestUser("user:a"), model.ModeFamily))

	rr := serve(mux, http.MethodGet, "/api/dashboard", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var d model.Dashboard
	decodeData(t, rr, &d)
	if d.Mode != model.ModeFamily {
		t.Errorf("expected family dashboard, got %q", d.Mode)
	}
}

type stubAssistant struct {
	err error
}

func (s stubAssistant) Copy(ctx context.Context, userID string, mode model.Mode, req *model.CopyRequest) (*model.GeneratedText, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.GeneratedText{Text: "Happy 100 days"}, nil
}

func (s stubAssistant) Chat(ctx context.Context, userID string, mode model.Mode, req *model.ChatRequest) (*model.GeneratedText, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.GeneratedText{Text: "Try a picnic"}, nil
}

func TestAI_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"ok", nil, http.StatusOK},
		{"no membership", service.ErrMembershipRequired, http.StatusPaymentRequired},
		{"provider failure", service.ErrAIProvider, http.StatusBadGateway},
		{"not configured", service.ErrAIUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			NewAIHandler(stubAssistant{err: tt.err}).RegisterRoutes(mux, asUser(newTestUser("user:a"), model.ModeDating))

			rr := serve(mux, http.MethodPost, "/api/ai/copy", jsonBody(t, model.CopyRequest{Kind: string(model.CopyAnniversaryLetter)}))
			if rr.Code != tt.status {
				t.Errorf("copy: expected status %d, got %d", tt.status, rr.Code)
			}

			rr = serve(mux, http.MethodPost, "/api/ai/chat", jsonBody(t, model.ChatRequest{
				Messages: []model.ChatMessage{{Role: "user", Content: "date ideas?"}},
			}))
			if rr.Code != tt.status {
				t.Errorf("chat: expected status %d, got %d", tt.status, rr.Code)
			}
		})
	}
}

func TestAIChat_LastMessageMustBeUser(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	NewAIHandler(stubAssistant{}).RegisterRoutes(mux, asUser(newTestUser("user:a"), model.ModeDating))

	rr := serve(mux, http.MethodPost, "/api/ai/chat", jsonBody(t, model.ChatRequest{
		Messages: []model.ChatMessage{{Role: "assistant", Content: "hi"}},
	}))

	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, rr.Code)
	}
}
