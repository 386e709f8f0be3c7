package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/webeat/weve/internal/media"
	"github.com/webeat/weve/internal/model"
)

// AlbumService manages photo albums
type AlbumService struct {
	*Resource[model.Album, *model.Album]
}

// PhotoAlbumDetacher clears album references when an album goes away
type PhotoAlbumDetacher interface {
	DetachAlbum(ctx context.Context, albumID string) error
}

// NewAlbumService creates a new album service. Deleting an album keeps
// its photos and only detaches them.
func NewAlbumService(store ScopedStore[model.Album], photos PhotoAlbumDetacher, events Publisher) *AlbumService {
	r := NewResource[model.Album]("album", store, events)
	r.beforeDelete = func(ctx context.Context, a *model.Album) error {
		return photos.DetachAlbum(ctx, a.ID)
	}
	return &AlbumService{Resource: r}
}

// PhotoStore is the photo repository contract
type PhotoStore interface {
	ScopedStore[model.Photo]
	ListRecent(ctx context.Context, owners []string, mode model.Mode, limit int) ([]*model.Photo, error)
	ClearCover(ctx context.Context, photoID string) error
}

// PhotoService manages the gallery, including uploads
type PhotoService struct {
	*Resource[model.Photo, *model.Photo]
	store     PhotoStore
	blobs     media.Store
	mediaBase string
	maxBytes  int64
}

// PhotoServiceConfig configures uploads
type PhotoServiceConfig struct {
	// MediaBaseURL prefixes blob keys in photo URLs, e.g. "/media"
	MediaBaseURL string
	MaxBytes     int64
}

// NewPhotoService creates a new photo service
func NewPhotoService(store PhotoStore, albums ScopedStore[model.Album], blobs media.Store, cfg PhotoServiceConfig, events Publisher) *PhotoService {
	r := NewResource[model.Photo]("photo", store, events)
	r.check = func(ctx context.Context, scope model.Scope, p *model.Photo) error {
		if p.AlbumID == nil {
			return nil
		}
		album, err := albums.GetByID(ctx, *p.AlbumID)
		if err != nil {
			return err
		}
		if album == nil || !scope.Includes(album.UserID) {
			return ErrAlbumNotFound
		}
		// Store the canonical id even if the client sent a bare key
		p.AlbumID = &album.ID
		return nil
	}

	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 10 << 20
	}
	s := &PhotoService{
		Resource:  r,
		store:     store,
		blobs:     blobs,
		mediaBase: strings.TrimRight(cfg.MediaBaseURL, "/"),
		maxBytes:  cfg.MaxBytes,
	}
	r.beforeDelete = s.cleanup
	return s
}

// ListByAlbum lists the photos of one album
func (s *PhotoService) ListByAlbum(ctx context.Context, scope model.Scope, albumID string) ([]*model.Photo, error) {
	if !strings.Contains(albumID, ":") {
		albumID = "album:" + albumID
	}
	return s.store.ListWhere(ctx, scope.UserIDs, scope.Mode, "album_id = $album", map[string]interface{}{"album": albumID})
}

// Recent returns the newest photos of the couple
func (s *PhotoService) Recent(ctx context.Context, scope model.Scope, limit int) ([]*model.Photo, error) {
	return s.store.ListRecent(ctx, scope.UserIDs, scope.Mode, limit)
}

// Upload stores an image and its thumbnail, then creates the photo row
func (s *PhotoService) Upload(ctx context.Context, scope model.Scope, r io.Reader, meta model.CreatePhotoRequest) (*model.Photo, error) {
	if s.blobs == nil {
		return nil, fmt.Errorf("media storage is not configured")
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > s.maxBytes {
		return nil, invalid("file", fmt.Sprintf("file must be %d bytes or less", s.maxBytes))
	}

	img, err := media.Process(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, media.ErrUnsupportedImage) {
			return nil, ErrUnsupportedImage
		}
		return nil, err
	}

	id := uuid.New().String()
	key := id + "." + extFor(img.Format)
	thumbKey := id + "_thumb.jpg"

	if err := s.blobs.Put(ctx, key, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("storing photo: %w", err)
	}
	if err := s.blobs.Put(ctx, thumbKey, bytes.NewReader(img.Thumbnail)); err != nil {
		_ = s.blobs.Delete(ctx, key)
		return nil, fmt.Errorf("storing thumbnail: %w", err)
	}

	thumbURL := s.mediaBase + "/" + thumbKey
	meta.URL = s.mediaBase + "/" + key
	meta.ThumbnailURL = &thumbURL
	meta.Width = &img.Width
	meta.Height = &img.Height

	photo, err := s.Create(ctx, scope, &meta)
	if err != nil {
		_ = s.blobs.Delete(ctx, key)
		_ = s.blobs.Delete(ctx, thumbKey)
		return nil, err
	}
	return photo, nil
}

// cleanup clears album covers and removes uploaded blobs for a deleted photo
func (s *PhotoService) cleanup(ctx context.Context, p *model.Photo) error {
	if err := s.store.ClearCover(ctx, p.ID); err != nil {
		return err
	}
	if s.blobs == nil {
		return nil
	}
	for _, u := range []*string{&p.URL, p.ThumbnailURL} {
		if key, ok := s.blobKey(u); ok {
			if err := s.blobs.Delete(ctx, key); err != nil {
				slog.Warn("failed to delete photo blob", "key", key, "error", err)
			}
		}
	}
	return nil
}

func (s *PhotoService) blobKey(u *string) (string, bool) {
	if u == nil || s.mediaBase == "" {
		return "", false
	}
	key, ok := strings.CutPrefix(*u, s.mediaBase+"/")
	return key, ok && media.ValidKey(key)
}

func extFor(format string) string {
	if format == "jpeg" {
		return "jpg"
	}
	return format
}
