package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/webeat/weve/internal/media"
	"github.com/webeat/weve/internal/middleware"
	"github.com/webeat/weve/internal/model"
)

// PhotoUploader stores an uploaded image and creates its photo row
type PhotoUploader interface {
	Upload(ctx context.Context, scope model.Scope, r io.Reader, meta model.CreatePhotoRequest) (*model.Photo, error)
}

// BlobOpener opens stored media by key
type BlobOpener interface {
	Open(ctx context.Context, key string) (io.ReadSeekCloser, error)
}

// MediaHandler handles photo uploads and serves stored blobs
type MediaHandler struct {
	photos   PhotoUploader
	blobs    BlobOpener
	maxBytes int64
}

// NewMediaHandler creates a new media handler. maxBytes bounds the
// multipart body, not just the file part.
func NewMediaHandler(photos PhotoUploader, blobs BlobOpener, maxBytes int64) *MediaHandler {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &MediaHandler{photos: photos, blobs: blobs, maxBytes: maxBytes}
}

// RegisterRoutes registers media routes. Blobs are public: keys are
// random UUIDs.
func (h *MediaHandler) RegisterRoutes(mux *http.ServeMux, wrap func(http.Handler) http.Handler) {
	mux.Handle("POST /api/photos/upload", wrap(http.HandlerFunc(h.Upload)))
	mux.HandleFunc("GET /media/{key}", h.Serve)
}

// Upload handles POST /api/photos/upload (multipart: file, caption,
// album_id, taken_on)
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	scope, ok := middleware.GetScope(r.Context())
	if !ok {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	// Leave room for the other form fields and multipart framing
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+(1<<20))
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, model.NewValidationError([]model.FieldError{{
				Field:   "file",
				Message: "file must be " + strconv.FormatInt(h.maxBytes>>20, 10) + " MB or less",
			}}))
			return
		}
		WriteError(w, model.NewBadRequestError("invalid multipart body"))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, _, err := r.FormFile("file")
	if err != nil {
		WriteError(w, model.NewValidationError([]model.FieldError{{Field: "file", Message: "file is required"}}))
		return
	}
	defer file.Close()

	meta := model.CreatePhotoRequest{
		Caption: formValue(r, "caption"),
		AlbumID: formValue(r, "album_id"),
		TakenOn: formValue(r, "taken_on"),
	}
	// URL is filled by the service after the blob is stored
	probe := meta
	probe.URL = "pending"
	if errs := probe.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	photo, err := h.photos.Upload(r.Context(), scope, file, meta)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "upload photo"))
		return
	}

	WriteData(w, http.StatusCreated, photo, map[string]string{
		"self": "/api/photos/" + photo.ID,
	})
}

// Serve handles GET /media/{key}
func (h *MediaHandler) Serve(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if !media.ValidKey(key) {
		WriteError(w, model.NewNotFoundError("media"))
		return
	}

	blob, err := h.blobs.Open(r.Context(), key)
	if err != nil {
		if errors.Is(err, media.ErrNotFound) {
			WriteError(w, model.NewNotFoundError("media"))
			return
		}
		slog.Error("failed to open media", "key", key, "error", err)
		WriteError(w, model.NewInternalError(""))
		return
	}
	defer blob.Close()

	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	http.ServeContent(w, r, key, time.Time{}, blob)
}

func formValue(r *http.Request, name string) *string {
	v := r.FormValue(name)
	if v == "" {
		return nil
	}
	return &v
}
