package repository

import (
	"context"

	"github.com/webeat/weve/internal/database"
	"github.com/webeat/weve/internal/model"
)

// PhotoRepository adds album bookkeeping to the scoped photo table
type PhotoRepository struct {
	*ScopedRepository[model.Photo, *model.Photo]
	db database.Database
}

// NewPhotoRepository creates a new photo repository
func NewPhotoRepository(db database.Database) *PhotoRepository {
	return &PhotoRepository{
		ScopedRepository: NewScopedRepository[model.Photo](db, TablePhoto, "created_on DESC"),
		db:               db,
	}
}

// ListRecent returns the newest photos of the couple
func (r *PhotoRepository) ListRecent(ctx context.Context, owners []string, mode model.Mode, limit int) ([]*model.Photo, error) {
	results, err := r.db.Query(ctx, `SELECT * FROM photo WHERE user_id IN $owners AND mode = $mode ORDER BY created_on DESC LIMIT $limit`, map[string]interface{}{
		"owners": owners,
		"mode":   string(mode),
		"limit":  limit,
	})
	if err != nil {
		return nil, err
	}
	return decodeRows[model.Photo](results)
}

// DetachAlbum removes album membership from every photo of the album
func (r *PhotoRepository) DetachAlbum(ctx context.Context, albumID string) error {
	return r.db.Execute(ctx, `UPDATE photo SET album_id = NONE WHERE album_id = $album`, map[string]interface{}{"album": albumID})
}

// ClearCover unsets cover_photo_id on albums pointing at photoID
func (r *PhotoRepository) ClearCover(ctx context.Context, photoID string) error {
	return r.db.Execute(ctx, `UPDATE album SET cover_photo_id = NONE WHERE cover_photo_id = $photo`, map[string]interface{}{"photo": photoID})
}
