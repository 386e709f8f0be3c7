package handler

import (
	"context"
	"net/http"

	"github.com/webeat/weve/internal/middleware"
	"github.com/webeat/weve/internal/model"
)

// WeddingInfoStore reads and upserts the couple's wedding info
type WeddingInfoStore interface {
	Get(ctx context.Context, scope model.Scope) (*model.WeddingInfo, error)
	Put(ctx context.Context, scope model.Scope, req *model.PutWeddingInfoRequest) (*model.WeddingInfo, error)
}

// ExpenseSummarizer totals the wedding budget ledger
type ExpenseSummarizer interface {
	Summary(ctx context.Context, scope model.Scope) (*model.ExpenseSummary, error)
}

// GuestSummarizer counts the guest list
type GuestSummarizer interface {
	Summary(ctx context.Context, scope model.Scope) (*model.GuestSummary, error)
}

// ChecklistSeeder fills an empty checklist with the default items
type ChecklistSeeder interface {
	SeedDefaults(ctx context.Context, scope model.Scope) ([]*model.ChecklistItem, error)
}

// WeddingServices groups the wedding-planning aggregates
type WeddingServices struct {
	Info      WeddingInfoStore
	Expenses  ExpenseSummarizer
	Guests    GuestSummarizer
	Checklist ChecklistSeeder
}

// WeddingHandler serves wedding info and the planning summaries
type WeddingHandler struct {
	svc WeddingServices
}

// NewWeddingHandler creates a new wedding handler
func NewWeddingHandler(svc WeddingServices) *WeddingHandler {
	return &WeddingHandler{svc: svc}
}

// RegisterRoutes registers wedding routes
func (h *WeddingHandler) RegisterRoutes(mux *http.ServeMux, wrap func(http.Handler) http.Handler) {
	mux.Handle("GET /api/wedding-info", wrap(http.HandlerFunc(h.GetInfo)))
	mux.Handle("PUT /api/wedding-info", wrap(http.HandlerFunc(h.PutInfo)))
	mux.Handle("GET /api/expenses/summary", wrap(http.HandlerFunc(h.ExpenseSummary)))
	mux.Handle("GET /api/guests/summary", wrap(http.HandlerFunc(h.GuestSummary)))
	mux.Handle("POST /api/checklist/defaults", wrap(http.HandlerFunc(h.SeedChecklist)))
}

// GetInfo handles GET /api/wedding-info. Data is null until saved.
func (h *WeddingHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	scope, ok := middleware.GetScope(r.Context())
	if !ok {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	info, err := h.svc.Info.Get(r.Context(), scope)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "get wedding info"))
		return
	}

	WriteData(w, http.StatusOK, info, nil)
}

// PutInfo handles PUT /api/wedding-info
func (h *WeddingHandler) PutInfo(w http.ResponseWriter, r *http.Request) {
	scope, ok := middleware.GetScope(r.Context())
	if !ok {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req model.PutWeddingInfoRequest
	if !ReadJSON(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	info, err := h.svc.Info.Put(r.Context(), scope, &req)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "save wedding info"))
		return
	}

	WriteData(w, http.StatusOK, info, nil)
}

// ExpenseSummary handles GET /api/expenses/summary
func (h *WeddingHandler) ExpenseSummary(w http.ResponseWriter, r *http.Request) {
	scope, ok := middleware.GetScope(r.Context())
	if !ok {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	summary, err := h.svc.Expenses.Summary(r.Context(), scope)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "summarize expenses"))
		return
	}

	WriteData(w, http.StatusOK, summary, map[string]string{
		"expenses": "/api/expenses",
	})
}

// GuestSummary handles GET /api/guests/summary
func (h *WeddingHandler) GuestSummary(w http.ResponseWriter, r *http.Request) {
	scope, ok := middleware.GetScope(r.Context())
	if !ok {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	summary, err := h.svc.Guests.Summary(r.Context(), scope)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "summarize guests"))
		return
	}

	WriteData(w, http.StatusOK, summary, map[string]string{
		"guests": "/api/guests",
	})
}

// SeedChecklist handles POST /api/checklist/defaults
func (h *WeddingHandler) SeedChecklist(w http.ResponseWriter, r *http.Request) {
	scope, ok := middleware.GetScope(r.Context())
	if !ok {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	items, err := h.svc.Checklist.SeedDefaults(r.Context(), scope)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "seed checklist"))
		return
	}

	WriteCollection(w, http.StatusCreated, items, nil, map[string]string{
		"checklist": "/api/checklist",
	})
}
