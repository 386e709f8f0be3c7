package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/webeat/weve/internal/middleware"
	"github.com/webeat/weve/internal/model"
)

const maxWebhookBytes = 65536

// Billing is the membership billing contract
type Billing interface {
	Plans(ctx context.Context) ([]model.Plan, error)
	Membership(ctx context.Context, userID string) (*model.MembershipStatus, error)
	Checkout(ctx context.Context, user *model.User, planID string) (*model.RedirectResponse, error)
	Portal(ctx context.Context, userID string) (*model.RedirectResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

// BillingHandler handles membership checkout and provider webhooks
type BillingHandler struct {
	billing Billing
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billing Billing) *BillingHandler {
	return &BillingHandler{billing: billing}
}

// RegisterRoutes registers billing routes. The webhook authenticates by
// signature, not by session.
func (h *BillingHandler) RegisterRoutes(mux *http.ServeMux, public, authed func(http.Handler) http.Handler) {
	mux.Handle("GET /api/billing/plans", public(http.HandlerFunc(h.Plans)))
	mux.HandleFunc("POST /api/billing/webhook", h.Webhook)

	mux.Handle("GET /api/billing/subscription", authed(http.HandlerFunc(h.Subscription)))
	mux.Handle("POST /api/billing/checkout", authed(http.HandlerFunc(h.Checkout)))
	mux.Handle("POST /api/billing/portal", authed(http.HandlerFunc(h.Portal)))
}

// Plans handles GET /api/billing/plans
func (h *BillingHandler) Plans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.billing.Plans(r.Context())
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "list plans"))
		return
	}
	if plans == nil {
		plans = []model.Plan{}
	}

	WriteCollection(w, http.StatusOK, plans, nil, map[string]string{
		"checkout": "/api/billing/checkout",
	})
}

// Subscription handles GET /api/billing/subscription
func (h *BillingHandler) Subscription(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	status, err := h.billing.Membership(r.Context(), userID)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "get subscription"))
		return
	}

	WriteData(w, http.StatusOK, status, map[string]string{
		"portal": "/api/billing/portal",
	})
}

// Checkout handles POST /api/billing/checkout
func (h *BillingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req model.CheckoutRequest
	if !ReadJSON(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	redirect, err := h.billing.Checkout(r.Context(), user, req.Plan)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "start checkout"))
		return
	}

	WriteData(w, http.StatusOK, redirect, nil)
}

// Portal handles POST /api/billing/portal
func (h *BillingHandler) Portal(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	redirect, err := h.billing.Portal(r.Context(), userID)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "open billing portal"))
		return
	}

	WriteData(w, http.StatusOK, redirect, nil)
}

// Webhook handles POST /api/billing/webhook
func (h *BillingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		WriteError(w, model.NewBadRequestError("invalid webhook body"))
		return
	}

	if err := h.billing.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		pd := MapServiceErrorWithContext(err, "handle webhook")
		if pd.Status >= http.StatusInternalServerError {
			slog.Error("billing webhook failed", "error", err)
		}
		WriteError(w, pd)
		return
	}

	w.WriteHeader(http.StatusOK)
}
