package handler

import (
	"context"
	"net/http"

	"github.com/webeat/weve/internal/middleware"
	"github.com/webeat/weve/internal/model"
)

// CoupleLinker manages invite codes and partner links
type CoupleLinker interface {
	Invite(ctx context.Context, userID string) (*model.CoupleInvite, error)
	Accept(ctx context.Context, userID, code string) (*model.CoupleStatus, error)
	Status(ctx context.Context, userID string) (*model.CoupleStatus, error)
	Unlink(ctx context.Context, userID string) error
	CancelInvite(ctx context.Context, userID string) error
}

// CoupleHandler handles couple linking endpoints
type CoupleHandler struct {
	couples CoupleLinker
}

// NewCoupleHandler creates a new couple handler
func NewCoupleHandler(couples CoupleLinker) *CoupleHandler {
	return &CoupleHandler{couples: couples}
}

// RegisterRoutes registers couple routes
func (h *CoupleHandler) RegisterRoutes(mux *http.ServeMux, wrap func(http.Handler) http.Handler) {
	mux.Handle("GET /api/couple", wrap(http.HandlerFunc(h.Status)))
	mux.Handle("DELETE /api/couple", wrap(http.HandlerFunc(h.Unlink)))
	mux.Handle("POST /api/couple/invite", wrap(http.HandlerFunc(h.Invite)))
	mux.Handle("DELETE /api/couple/invite", wrap(http.HandlerFunc(h.CancelInvite)))
	mux.Handle("POST /api/couple/accept", wrap(http.HandlerFunc(h.Accept)))
}

// Invite handles POST /api/couple/invite
func (h *CoupleHandler) Invite(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	invite, err := h.couples.Invite(r.Context(), userID)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "create invite"))
		return
	}

	WriteData(w, http.StatusOK, invite, map[string]string{
		"accept": "/api/couple/accept",
		"couple": "/api/couple",
	})
}

// Accept handles POST /api/couple/accept
func (h *CoupleHandler) Accept(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req model.AcceptInviteRequest
	if !ReadJSON(w, r, &req) {
		return
	}
	req.Normalize()
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	status, err := h.couples.Accept(r.Context(), userID, req.Code)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "accept invite"))
		return
	}

	WriteData(w, http.StatusOK, status, map[string]string{
		"couple": "/api/couple",
	})
}

// Status handles GET /api/couple
func (h *CoupleHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	status, err := h.couples.Status(r.Context(), userID)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "get couple status"))
		return
	}

	WriteData(w, http.StatusOK, status, nil)
}

// Unlink handles DELETE /api/couple
func (h *CoupleHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	if err := h.couples.Unlink(r.Context(), userID); err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "unlink couple"))
		return
	}

	WriteNoContent(w)
}

// CancelInvite handles DELETE /api/couple/invite
func (h *CoupleHandler) CancelInvite(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	if err := h.couples.CancelInvite(r.Context(), userID); err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "cancel invite"))
		return
	}

	WriteNoContent(w)
}
