package handler

import (
	"context"
	"net/http"

	"github.com/webeat/weve/internal/middleware"
	"github.com/webeat/weve/internal/model"
)

// Assistant generates text for members
type Assistant interface {
	Copy(ctx context.Context, userID string, mode model.Mode, req *model.CopyRequest) (*model.GeneratedText, error)
	Chat(ctx context.Context, userID string, mode model.Mode, req *model.ChatRequest) (*model.GeneratedText, error)
}

// AIHandler handles the writing assistant endpoints
type AIHandler struct {
	assistant Assistant
}

// NewAIHandler creates a new AI handler
func NewAIHandler(assistant Assistant) *AIHandler {
	return &AIHandler{assistant: assistant}
}

// RegisterRoutes registers AI routes
func (h *AIHandler) RegisterRoutes(mux *http.ServeMux, wrap func(http.Handler) http.Handler) {
	mux.Handle("POST /api/ai/copy", wrap(http.HandlerFunc(h.Copy)))
	mux.Handle("POST /api/ai/chat", wrap(http.HandlerFunc(h.Chat)))
}

// Copy handles POST /api/ai/copy
func (h *AIHandler) Copy(w http.ResponseWriter, r *http.Request) {
	scope, ok := middleware.GetScope(r.Context())
	if !ok {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req model.CopyRequest
	if !ReadJSON(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	text, err := h.assistant.Copy(r.Context(), scope.UserID, scope.Mode, &req)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "generate copy"))
		return
	}

	WriteData(w, http.StatusOK, text, nil)
}

// Chat handles POST /api/ai/chat
func (h *AIHandler) Chat(w http.ResponseWriter, r *http.Request) {
	scope, ok := middleware.GetScope(r.Context())
	if !ok {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req model.ChatRequest
	if !ReadJSON(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	text, err := h.assistant.Chat(r.Context(), scope.UserID, scope.Mode, &req)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "chat"))
		return
	}

	WriteData(w, http.StatusOK, text, nil)
}
