package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/webeat/weve/internal/media"
	"github.com/webeat/weve/internal/model"
	"github.com/webeat/weve/internal/service"
)

type memBlobs map[string][]byte

type readSeekNopCloser struct {
	*bytes.Reader
}

func (readSeekNopCloser) Close() error { return nil }

func (m memBlobs) Open(ctx context.Context, key string) (io.ReadSeekCloser, error) {
	data, ok := m[key]
	if !ok {
		return nil, media.ErrNotFound
	}
	return readSeekNopCloser{bytes.NewReader(data)}, nil
}

func multipartUpload(t *testing.T, fields map[string]string, file []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if file != nil {
		fw, err := mw.CreateFormFile("file", "photo.jpg")
		if err != nil {
			t.Fatal(err)
		}
		_, _ = fw.Write(file)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestUpload_PassesFileAndMetadata(t *testing.T) {
	t.Parallel()

	var gotMeta model.CreatePhotoRequest
	var gotBytes []byte
	photos := &mockPhotoService{
		uploadFunc: func(ctx context.Context, scope model.Scope, r io.Reader, meta model.CreatePhotoRequest) (*model.Photo, error) {
			gotMeta = meta
			gotBytes, _ = io.ReadAll(r)
			return &model.Photo{Base: model.Base{ID: "photo:1", UserID: scope.UserID}, URL: "/media/x.jpg"}, nil
		},
	}
	mux := http.NewServeMux()
	NewMediaHandler(photos, memBlobs{}, 1<<20).RegisterRoutes(mux, asUser(newTestUser("user:a"), model.ModeDating))

	body, ct := multipartUpload(t, map[string]string{"caption": "beach", "album_id": "album:1"}, []byte("jpeg-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/photos/upload", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}
	if string(gotBytes) != "jpeg-bytes" {
		t.Errorf("unexpected file bytes %q", gotBytes)
	}
	if gotMeta.Caption == nil || *gotMeta.Caption != "beach" || gotMeta.AlbumID == nil || *gotMeta.AlbumID != "album:1" {
		t.Errorf("unexpected metadata %+v", gotMeta)
	}
	if gotMeta.TakenOn != nil {
		t.Error("absent fields should stay nil")
	}
}

func TestUpload_MissingFile_Returns422(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	NewMediaHandler(&mockPhotoService{}, memBlobs{}, 1<<20).RegisterRoutes(mux, asUser(newTestUser("user:a"), model.ModeDating))

	body, ct := multipartUpload(t, map[string]string{"caption": "no file"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/photos/upload", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, rr.Code)
	}
}

func TestUpload_UnsupportedImage_Returns422(t *testing.T) {
	t.Parallel()
	photos := &mockPhotoService{
		uploadFunc: func(ctx context.Context, scope model.Scope, r io.Reader, meta model.CreatePhotoRequest) (*model.Photo, error) {
			return nil, service.ErrUnsupportedImage
		},
	}
	mux := http.NewServeMux()
	NewMediaHandler(photos, memBlobs{}, 1<<20).RegisterRoutes(mux, asUser(newTestUser("user:a"), model.ModeDating))

	body, ct := multipartUpload(t, nil, []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/api/photos/upload", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, rr.Code)
	}
	if pd := decodeProblem(t, rr); len(pd.Errors) != 1 || pd.Errors[0].Field != "file" {
		t.Errorf("expected file error, got %+v", pd.Errors)
	}
}

func TestServeMedia(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	blobs := memBlobs{"abc_thumb.jpg": []byte("thumb")}
	NewMediaHandler(&mockPhotoService{}, blobs, 0).RegisterRoutes(mux, passThrough)

	rr := serve(mux, http.MethodGet, "/media/abc_thumb.jpg", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if rr.Body.String() != "thumb" {
		t.Errorf("unexpected body %q", rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %q", ct)
	}
	if !strings.Contains(rr.Header().Get("Cache-Control"), "immutable") {
		t.Error("expected immutable caching")
	}

	if rr := serve(mux, http.MethodGet, "/media/missing.jpg", nil); rr.Code != http.StatusNotFound {
		t.Errorf("expected status %d for missing blob, got %d", http.StatusNotFound, rr.Code)
	}
	if rr := serve(mux, http.MethodGet, "/media/.hidden", nil); rr.Code != http.StatusNotFound {
		t.Errorf("expected status %d for invalid key, got %d", http.StatusNotFound, rr.Code)
	}
}
