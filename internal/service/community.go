package service

import (
	"context"

	"github.com/webeat/weve/internal/model"
)

// CommunityRepository defines the interface for community storage
type CommunityRepository interface {
	List(ctx context.Context, f model.PostFilter, viewerID string) ([]*model.CommunityPost, error)
	GetByID(ctx context.Context, id, viewerID string) (*model.CommunityPost, error)
	Create(ctx context.Context, p *model.CommunityPost) (*model.CommunityPost, error)
	Update(ctx context.Context, p *model.CommunityPost) (*model.CommunityPost, error)
	Delete(ctx context.Context, id string) error
	ToggleLike(ctx context.Context, postID, userID string) (*model.LikeResult, error)
}

// CommunityService handles the public per-mode feed
type CommunityService struct {
	repo CommunityRepository
}

// NewCommunityService creates a new community service
func NewCommunityService(repo CommunityRepository) *CommunityService {
	return &CommunityService{repo: repo}
}

// PostPage is one page of the feed. NextCursor is empty on the last page.
type PostPage struct {
	Posts      []*model.CommunityPost `json:"posts"`
	NextCursor string                 `json:"next_cursor,omitempty"`
}

// List returns a page of posts, newest first
func (s *CommunityService) List(ctx context.Context, viewer *model.User, f model.PostFilter) (*PostPage, error) {
	if f.Limit <= 0 {
		f.Limit = model.DefaultPostPageSize
	}
	if f.Limit > model.MaxPostPageSize {
		f.Limit = model.MaxPostPageSize
	}

	posts, err := s.repo.List(ctx, f, viewer.ID)
	if err != nil {
		return nil, err
	}

	page := &PostPage{Posts: posts}
	if len(posts) == f.Limit {
		page.NextCursor = posts[len(posts)-1].CreatedOn.UTC().Format(model.CursorLayout)
	}
	return page, nil
}

// Get returns a post or ErrNotFound
func (s *CommunityService) Get(ctx context.Context, viewer *model.User, id string) (*model.CommunityPost, error) {
	post, err := s.repo.GetByID(ctx, id, viewer.ID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}
	return post, nil
}

// Create publishes a post in mode under the author's display name
func (s *CommunityService) Create(ctx context.Context, author *model.User, mode model.Mode, req *model.CreatePostRequest) (*model.CommunityPost, error) {
	return s.repo.Create(ctx, &model.CommunityPost{
		UserID:         author.ID,
		Mode:           mode,
		Category:       model.CommunityCategory(req.Category),
		Title:          req.Title,
		Content:        req.Content,
		ImageURL:       emptyStringToNil(req.ImageURL),
		AuthorNickname: author.DisplayName(),
	})
}

// Update edits a post. Only the author or an admin may do so.
func (s *CommunityService) Update(ctx context.Context, caller *model.User, id string, req *model.UpdatePostRequest) (*model.CommunityPost, error) {
	post, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if post.UserID != caller.ID && !caller.IsAdmin() {
		return nil, ErrNotAuthor
	}

	req.Apply(post)
	return s.repo.Update(ctx, post)
}

// Delete removes a post and its likes. Missing posts are ignored.
func (s *CommunityService) Delete(ctx context.Context, caller *model.User, id string) error {
	post, err := s.repo.GetByID(ctx, id, caller.ID)
	if err != nil {
		return err
	}
	if post == nil {
		return nil
	}
	if post.UserID != caller.ID && !caller.IsAdmin() {
		return ErrNotAuthor
	}
	return s.repo.Delete(ctx, post.ID)
}

// ToggleLike flips the caller's like on a post
func (s *CommunityService) ToggleLike(ctx context.Context, caller *model.User, id string) (*model.LikeResult, error) {
	post, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return s.repo.ToggleLike(ctx, post.ID, caller.ID)
}

func emptyStringToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
