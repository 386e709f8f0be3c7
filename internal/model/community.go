package model

import "time"

// CommunityCategory groups community posts
type CommunityCategory string

var communityCategories = []string{"free", "question", "review", "tip", "worry"}

const MaxPostContentLength = 5000

// CommunityPost is a public post visible to every user of the same mode
type CommunityPost struct {
	ID             string            `json:"id"`
	UserID         string            `json:"user_id"`
	Mode           Mode              `json:"mode"`
	Category       CommunityCategory `json:"category"`
	Title          string            `json:"title"`
	Content        string            `json:"content"`
	ImageURL       *string           `json:"image_url,omitempty"`
	LikeCount      int               `json:"like_count"`
	AuthorNickname string            `json:"author_nickname"`
	Liked          bool              `json:"liked"`
	CreatedOn      time.Time         `json:"created_on"`
	UpdatedOn      time.Time         `json:"updated_on"`
}

// CreatePostRequest publishes a post to the shared community board
type CreatePostRequest struct {
	Category string  `json:"category"`
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	ImageURL *string `json:"image_url,omitempty"`
}

// Validate requires a known category plus title and content.
func (r *CreatePostRequest) Validate() []FieldError {
	var f fieldErrors
	if f.required("category", r.Category) {
		f.oneOf("category", &r.Category, communityCategories...)
	}
	f.required("title", r.Title)
	f.maxLen("title", &r.Title, MaxTitleLength)
	f.required("content", r.Content)
	f.maxLen("content", &r.Content, MaxPostContentLength)
	f.maxLen("image_url", r.ImageURL, MaxURLLength)
	return f.result()
}

// UpdatePostRequest edits the caller's own post
type UpdatePostRequest struct {
	Category *string `json:"category,omitempty"`
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
}

// Validate checks only the fields present in the patch.
func (r *UpdatePostRequest) Validate() []FieldError {
	var f fieldErrors
	f.oneOf("category", r.Category, communityCategories...)
	if r.Title != nil {
		f.required("title", *r.Title)
		f.maxLen("title", r.Title, MaxTitleLength)
	}
	if r.Content != nil {
		f.required("content", *r.Content)
		f.maxLen("content", r.Content, MaxPostContentLength)
	}
	f.maxLen("image_url", r.ImageURL, MaxURLLength)
	return f.result()
}

// Apply copies the set fields onto p.
func (r *UpdatePostRequest) Apply(p *CommunityPost) {
	if r.Category != nil {
		p.Category = CommunityCategory(*r.Category)
	}
	if r.Title != nil {
		p.Title = *r.Title
	}
	if r.Content != nil {
		p.Content = *r.Content
	}
	if r.ImageURL != nil {
		p.ImageURL = emptyToNil(r.ImageURL)
	}
}

// PostFilter selects a page of the community feed
type PostFilter struct {
	Mode     Mode
	Category string
	// Cursor is the created_on of the last post of the previous page
	Cursor *time.Time
	Limit  int
}

const (
	DefaultPostPageSize = 20
	MaxPostPageSize     = 50
)

// CursorLayout formats feed cursors. Nanoseconds keep posts created in
// the same second from being skipped.
const CursorLayout = time.RFC3339Nano

// ParseCursor reads a cursor produced by CursorLayout
func ParseCursor(s string) (*time.Time, error) {
	t, err := time.Parse(CursorLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// LikeResult is returned by the like toggle
type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}
