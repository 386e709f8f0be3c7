package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/webeat/weve/internal/middleware"
	"github.com/webeat/weve/internal/model"
	"github.com/webeat/weve/internal/service"
)

// StreamHandler handles SSE event streaming
type StreamHandler struct {
	eventHub *service.EventHub
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(eventHub *service.EventHub) *StreamHandler {
	return &StreamHandler{
		eventHub: eventHub,
	}
}

// RegisterRoutes registers the stream route
func (h *StreamHandler) RegisterRoutes(mux *http.ServeMux, wrap func(http.Handler) http.Handler) {
	mux.Handle("GET /api/stream", wrap(http.HandlerFunc(h.Stream)))
}

// Stream handles GET /api/stream
// This endpoint streams the caller's couple events as SSE
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	// Middleware wrappers expose Unwrap, so the controller finds the flusher
	rc := http.NewResponseController(w)
	// Streams outlive the server write timeout
	_ = rc.SetWriteDeadline(time.Time{})

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	// Generate subscriber ID
	subscriberID := uuid.New().String()

	// Subscribe to events
	sub := h.eventHub.Subscribe(userID, subscriberID)
	defer h.eventHub.Unsubscribe(userID, subscriberID)

	// Send initial connection event
	fmt.Fprintf(w, "event: connected\ndata: {\"subscriber_id\":\"%s\"}\n\n", subscriberID)
	if err := rc.Flush(); err != nil {
		return
	}

	// Stream events
	for {
		select {
		case event, ok := <-sub.Events:
			if !ok {
				return
			}
			fmt.Fprint(w, event.Format())
			if err := rc.Flush(); err != nil {
				return
			}

		case <-sub.Done:
			return

		case <-r.Context().Done():
			// Client disconnected
			return
		}
	}
}
