package model

// Album groups photos
type Album struct {
	Base
	Title        string  `json:"title"`
	Description  *string `json:"description,omitempty"`
	CoverPhotoID *string `json:"cover_photo_id,omitempty"`
}

// CreateAlbumRequest is the body of POST /api/albums
type CreateAlbumRequest struct {
	Title        string  `json:"title"`
	Description  *string `json:"description,omitempty"`
	CoverPhotoID *string `json:"cover_photo_id,omitempty"`
}

// Validate requires a title.
func (r *CreateAlbumRequest) Validate() []FieldError {
	var f fieldErrors
	f.required("title", r.Title)
	f.maxLen("title", &r.Title, MaxTitleLength)
	f.maxLen("description", r.Description, MaxMemoLength)
	return f.result()
}

// Build returns an unsaved Album.
func (r *CreateAlbumRequest) Build() *Album {
	return &Album{Title: r.Title, Description: r.Description, CoverPhotoID: emptyToNil(r.CoverPhotoID)}
}

// UpdateAlbumRequest renames an album or changes its cover
type UpdateAlbumRequest struct {
	Title        *string `json:"title,omitempty"`
	Description  *string `json:"description,omitempty"`
	CoverPhotoID *string `json:"cover_photo_id,omitempty"`
}

// Validate keeps a renamed album titled.
func (r *UpdateAlbumRequest) Validate() []FieldError {
	var f fieldErrors
	if r.Title != nil {
		f.required("title", *r.Title)
		f.maxLen("title", r.Title, MaxTitleLength)
	}
	f.maxLen("description", r.Description, MaxMemoLength)
	return f.result()
}

// Apply copies the set fields onto a. An empty cover id removes the cover.
func (r *UpdateAlbumRequest) Apply(a *Album) {
	if r.Title != nil {
		a.Title = *r.Title
	}
	if r.Description != nil {
		a.Description = emptyToNil(r.Description)
	}
	if r.CoverPhotoID != nil {
		a.CoverPhotoID = emptyToNil(r.CoverPhotoID)
	}
}

// Photo is an image in the couple's gallery. URL points either at an
// external host or at /media/{key} for uploads.
type Photo struct {
	Base
	URL          string  `json:"url"`
	ThumbnailURL *string `json:"thumbnail_url,omitempty"`
	Caption      *string `json:"caption,omitempty"`
	AlbumID      *string `json:"album_id,omitempty"`
	TakenOn      *string `json:"taken_on,omitempty"`
	Width        *int    `json:"width,omitempty"`
	Height       *int    `json:"height,omitempty"`
}

// CreatePhotoRequest registers a photo by URL. Uploads go through the
// multipart endpoint and end up here with a /media URL.
type CreatePhotoRequest struct {
	URL          string  `json:"url"`
	ThumbnailURL *string `json:"thumbnail_url,omitempty"`
	Caption      *string `json:"caption,omitempty"`
	AlbumID      *string `json:"album_id,omitempty"`
	TakenOn      *string `json:"taken_on,omitempty"`
	Width        *int    `json:"width,omitempty"`
	Height       *int    `json:"height,omitempty"`
}

// Validate requires a URL and checks taken_on is a date.
func (r *CreatePhotoRequest) Validate() []FieldError {
	var f fieldErrors
	f.required("url", r.URL)
	f.maxLen("url", &r.URL, MaxURLLength)
	f.maxLen("thumbnail_url", r.ThumbnailURL, MaxURLLength)
	f.maxLen("caption", r.Caption, MaxMemoLength)
	f.date("taken_on", r.TakenOn)
	return f.result()
}

// Build returns an unsaved Photo.
func (r *CreatePhotoRequest) Build() *Photo {
	return &Photo{
		URL:          r.URL,
		ThumbnailURL: emptyToNil(r.ThumbnailURL),
		Caption:      r.Caption,
		AlbumID:      emptyToNil(r.AlbumID),
		TakenOn:      emptyToNil(r.TakenOn),
		Width:        r.Width,
		Height:       r.Height,
	}
}

// UpdatePhotoRequest edits caption, album or date. The image itself is immutable.
type UpdatePhotoRequest struct {
	Caption *string `json:"caption,omitempty"`
	AlbumID *string `json:"album_id,omitempty"`
	TakenOn *string `json:"taken_on,omitempty"`
}

// Validate bounds the caption and checks taken_on.
func (r *UpdatePhotoRequest) Validate() []FieldError {
	var f fieldErrors
	f.maxLen("caption", r.Caption, MaxMemoLength)
	f.date("taken_on", r.TakenOn)
	return f.result()
}

// Apply copies the set fields onto p. Empty strings clear them.
func (r *UpdatePhotoRequest) Apply(p *Photo) {
	if r.Caption != nil {
		p.Caption = emptyToNil(r.Caption)
	}
	if r.AlbumID != nil {
		p.AlbumID = emptyToNil(r.AlbumID)
	}
	if r.TakenOn != nil {
		p.TakenOn = emptyToNil(r.TakenOn)
	}
}
