package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/webeat/weve/internal/media"
	"github.com/webeat/weve/internal/model"
)

type memPhotoStore struct {
	*memStore[model.Photo, *model.Photo]
	clearedCovers []string
	detached      []string
}

func (m *memPhotoStore) ListRecent(ctx context.Context, owners []string, mode model.Mode, limit int) ([]*model.Photo, error) {
	photos, err := m.ListByOwners(ctx, owners, mode)
	if len(photos) > limit {
		photos = photos[:limit]
	}
	return photos, err
}

func (m *memPhotoStore) ClearCover(ctx context.Context, photoID string) error {
	m.clearedCovers = append(m.clearedCovers, photoID)
	return nil
}

func (m *memPhotoStore) DetachAlbum(ctx context.Context, albumID string) error {
	m.detached = append(m.detached, albumID)
	return nil
}

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func setupGallery(t *testing.T) (*PhotoService, *AlbumService, *memPhotoStore, *memStore[model.Album, *model.Album], string) {
	t.Helper()

	dir := t.TempDir()
	blobs, err := media.NewLocalStore(dir)
	if err != nil {
		t.Fatalf("local store: %v", err)
	}
	photos := &memPhotoStore{memStore: newMemStore[model.Photo, *model.Photo]("photo")}
	albums := newMemStore[model.Album, *model.Album]("album")

	photoSvc := NewPhotoService(photos, albums, blobs, PhotoServiceConfig{MediaBaseURL: "/media/", MaxBytes: 1 << 20}, nil)
	albumSvc := NewAlbumService(albums, photos, nil)
	return photoSvc, albumSvc, photos, albums, dir
}

func TestPhotoService_Upload(t *testing.T) {
	svc, _, photos, _, dir := setupGallery(t)

	photo, err := svc.Upload(context.Background(), coupleScope(model.ModeDating), bytes.NewReader(pngImage(t, 640, 320)), model.CreatePhotoRequest{
		Caption: strPtr("Han river"),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if !strings.HasPrefix(photo.URL, "/media/") || !strings.HasSuffix(photo.URL, ".png") {
		t.Errorf("unexpected url %q", photo.URL)
	}
	if photo.ThumbnailURL == nil || !strings.HasSuffix(*photo.ThumbnailURL, "_thumb.jpg") {
		t.Errorf("unexpected thumbnail url %v", photo.ThumbnailURL)
	}
	if photo.Width == nil || *photo.Width != 640 || photo.Height == nil || *photo.Height != 320 {
		t.Errorf("expected dimensions 640x320")
	}
	if photo.UserID != "user:a" || photos.len() != 1 {
		t.Errorf("expected stored photo owned by caller")
	}

	for _, u := range []string{photo.URL, *photo.ThumbnailURL} {
		key := strings.TrimPrefix(u, "/media/")
		if _, err := os.Stat(filepath.Join(dir, key)); err != nil {
			t.Errorf("expected blob %s on disk: %v", key, err)
		}
	}
}

func TestPhotoService_Upload_Rejects(t *testing.T) {
	svc, _, photos, _, dir := setupGallery(t)
	ctx := context.Background()
	scope := coupleScope(model.ModeDating)

	_, err := svc.Upload(ctx, scope, strings.NewReader("definitely not an image"), model.CreatePhotoRequest{})
	if !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("expected ErrUnsupportedImage, got %v", err)
	}

	_, err = svc.Upload(ctx, scope, bytes.NewReader(make([]byte, 2<<20)), model.CreatePhotoRequest{})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("expected size validation error, got %v", err)
	}

	_, err = svc.Upload(ctx, scope, bytes.NewReader(pngImage(t, 10, 10)), model.CreatePhotoRequest{AlbumID: strPtr("album:missing")})
	if !errors.Is(err, ErrAlbumNotFound) {
		t.Errorf("expected ErrAlbumNotFound, got %v", err)
	}

	if photos.len() != 0 {
		t.Errorf("expected no photo rows, got %d", photos.len())
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected failed uploads to leave no blobs, found %d", len(entries))
	}
}

func TestPhotoService_Delete_RemovesBlobs(t *testing.T) {
	svc, _, photos, _, dir := setupGallery(t)
	ctx := context.Background()
	scope := coupleScope(model.ModeDating)

	photo, err := svc.Upload(ctx, scope, bytes.NewReader(pngImage(t, 50, 50)), model.CreatePhotoRequest{})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := svc.Delete(ctx, scope, photo.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected blobs to be removed, found %d", len(entries))
	}
	if len(photos.clearedCovers) != 1 || photos.clearedCovers[0] != photo.ID {
		t.Errorf("expected album covers to be cleared, got %v", photos.clearedCovers)
	}
}

func TestPhotoService_Create_AlbumMustBelongToCouple(t *testing.T) {
	svc, _, _, albums, _ := setupGallery(t)
	ours := albums.seed(&model.Album{Base: model.Base{UserID: "user:b", Mode: model.ModeDating}, Title: "ours"})
	theirs := albums.seed(&model.Album{Base: model.Base{UserID: "user:x", Mode: model.ModeDating}, Title: "theirs"})
	ctx := context.Background()
	scope := coupleScope(model.ModeDating)

	photo, err := svc.Create(ctx, scope, &model.CreatePhotoRequest{URL: "https://img.example.com/1.jpg", AlbumID: &ours.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if photo.AlbumID == nil || *photo.AlbumID != ours.ID {
		t.Errorf("expected album %s, got %v", ours.ID, photo.AlbumID)
	}

	_, err = svc.Create(ctx, scope, &model.CreatePhotoRequest{URL: "https://img.example.com/2.jpg", AlbumID: &theirs.ID})
	if !errors.Is(err, ErrAlbumNotFound) {
		t.Errorf("expected ErrAlbumNotFound for a foreign album, got %v", err)
	}
}

func TestPhotoService_ListByAlbum_AcceptsBareKey(t *testing.T) {
	svc, _, photos, _, _ := setupGallery(t)

	if _, err := svc.ListByAlbum(context.Background(), coupleScope(model.ModeDating), "abc123"); err != nil {
		t.Fatalf("list: %v", err)
	}
	if photos.lastVars["album"] != "album:abc123" {
		t.Errorf("expected table-qualified album id, got %v", photos.lastVars["album"])
	}
}

func TestAlbumService_Delete_DetachesPhotos(t *testing.T) {
	_, svc, photos, albums, _ := setupGallery(t)
	album := albums.seed(&model.Album{Base: model.Base{UserID: "user:a", Mode: model.ModeDating}, Title: "trip"})

	if err := svc.Delete(context.Background(), coupleScope(model.ModeDating), album.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(photos.detached) != 1 || photos.detached[0] != album.ID {
		t.Errorf("expected photos to be detached from %s, got %v", album.ID, photos.detached)
	}
	if albums.len() != 0 {
		t.Error("expected album row to be deleted")
	}
}
