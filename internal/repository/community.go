package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/webeat/weve/internal/database"
	"github.com/webeat/weve/internal/model"
)

// CommunityRepository handles community posts and likes
type CommunityRepository struct {
	db database.Database
}

// NewCommunityRepository creates a new community repository
func NewCommunityRepository(db database.Database) *CommunityRepository {
	return &CommunityRepository{db: db}
}

// List returns one page of the feed, newest first. Liked is filled for viewerID.
func (r *CommunityRepository) List(ctx context.Context, f model.PostFilter, viewerID string) ([]*model.CommunityPost, error) {
	query := `SELECT *, (SELECT VALUE id FROM community_like WHERE post_id = <string> $parent.id AND user_id = $viewer LIMIT 1) AS liked_by FROM community_post WHERE mode = $mode`
	vars := map[string]interface{}{
		"mode":   string(f.Mode),
		"viewer": viewerID,
		"limit":  f.Limit,
	}
	if f.Category != "" {
		query += ` AND category = $category`
		vars["category"] = f.Category
	}
	if f.Cursor != nil {
		query += ` AND created_on < <datetime>$cursor`
		vars["cursor"] = formatTime(*f.Cursor)
	}
	query += ` ORDER BY created_on DESC LIMIT $limit`

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}

	rows := extractQueryResults(results)
	posts := make([]*model.CommunityPost, 0, len(rows))
	for _, row := range rows {
		p, err := parsePost(row)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// GetByID retrieves a post, filling Liked for viewerID
func (r *CommunityRepository) GetByID(ctx context.Context, id, viewerID string) (*model.CommunityPost, error) {
	rid, ok := recordID("community_post", id)
	if !ok {
		return nil, nil
	}
	query := `SELECT *, (SELECT VALUE id FROM community_like WHERE post_id = <string> $parent.id AND user_id = $viewer LIMIT 1) AS liked_by FROM type::record($id)`
	result, err := r.db.QueryOne(ctx, query, map[string]interface{}{"id": rid, "viewer": viewerID})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return parsePost(result)
}

// Create stores a new post
func (r *CommunityRepository) Create(ctx context.Context, p *model.CommunityPost) (*model.CommunityPost, error) {
	query := `
		CREATE community_post CONTENT {
			user_id: $user_id,
			mode: $mode,
			category: $category,
			title: $title,
			content: $content,
			image_url: IF $image_url IS NOT NULL THEN $image_url ELSE NONE END,
			like_count: 0,
			author_nickname: $author
		}
	`
	result, err := r.db.QueryOne(ctx, query, map[string]interface{}{
		"user_id":   p.UserID,
		"mode":      string(p.Mode),
		"category":  string(p.Category),
		"title":     p.Title,
		"content":   p.Content,
		"image_url": nilIfEmpty(p.ImageURL),
		"author":    p.AuthorNickname,
	})
	if err != nil {
		return nil, err
	}
	return parsePost(result)
}

// Update writes the editable columns of a post
func (r *CommunityRepository) Update(ctx context.Context, p *model.CommunityPost) (*model.CommunityPost, error) {
	query := `
		UPDATE type::record($id) SET
			category = $category,
			title = $title,
			content = $content,
			image_url = IF $image_url IS NOT NULL THEN $image_url ELSE NONE END
		RETURN AFTER
	`
	result, err := r.db.QueryOne(ctx, query, map[string]interface{}{
		"id":        p.ID,
		"category":  string(p.Category),
		"title":     p.Title,
		"content":   p.Content,
		"image_url": nilIfEmpty(p.ImageURL),
	})
	if err != nil {
		return nil, err
	}
	updated, err := parsePost(result)
	if err != nil {
		return nil, err
	}
	updated.Liked = p.Liked
	return updated, nil
}

// Delete removes a post and its likes
func (r *CommunityRepository) Delete(ctx context.Context, id string) error {
	rid, ok := recordID("community_post", id)
	if !ok {
		return nil
	}
	return database.NewAtomicBatch().
		Add(`DELETE community_like WHERE post_id = $id`, map[string]interface{}{"id": rid}).
		Add(`DELETE type::record($id)`, map[string]interface{}{"id": rid}).
		Execute(ctx, r.db)
}

// ToggleLike adds the user's like or removes it, adjusting like_count in
// the same transaction. like_count never drops below zero.
func (r *CommunityRepository) ToggleLike(ctx context.Context, postID, userID string) (*model.LikeResult, error) {
	query := `
		BEGIN TRANSACTION;
		LET $existing = (SELECT VALUE id FROM community_like WHERE post_id = $post AND user_id = $user LIMIT 1);
		IF array::len($existing) > 0 {
			DELETE community_like WHERE post_id = $post AND user_id = $user;
			UPDATE type::record($post) SET like_count = math::max([like_count - 1, 0]);
		} ELSE {
			CREATE community_like CONTENT { post_id: $post, user_id: $user };
			UPDATE type::record($post) SET like_count += 1;
		};
		SELECT like_count, array::len($existing) = 0 AS liked FROM ONLY type::record($post);
		COMMIT TRANSACTION;
	`
	results, err := r.db.Query(ctx, query, map[string]interface{}{"post": postID, "user": userID})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, database.ErrNotFound
	}

	last, ok := results[len(results)-1].(map[string]interface{})
	if !ok {
		return nil, database.ErrQuery
	}
	row, ok := normalize(last["result"]).(map[string]interface{})
	if !ok {
		return nil, database.ErrNotFound
	}
	return &model.LikeResult{
		Liked:     getBool(row, "liked"),
		LikeCount: getInt(row, "like_count"),
	}, nil
}

func parsePost(row interface{}) (*model.CommunityPost, error) {
	data, ok := normalize(row).(map[string]interface{})
	if !ok {
		return nil, database.ErrNotFound
	}
	p := &model.CommunityPost{
		ID:             convertSurrealID(data["id"]),
		UserID:         getString(data, "user_id"),
		Mode:           model.Mode(getString(data, "mode")),
		Category:       model.CommunityCategory(getString(data, "category")),
		Title:          getString(data, "title"),
		Content:        getString(data, "content"),
		ImageURL:       getStringPtr(data, "image_url"),
		LikeCount:      getInt(data, "like_count"),
		AuthorNickname: getString(data, "author_nickname"),
		CreatedOn:      parseTime(data["created_on"]),
		UpdatedOn:      parseTime(data["updated_on"]),
	}
	if liked, ok := data["liked_by"].([]interface{}); ok && len(liked) > 0 {
		p.Liked = true
	}
	return p, nil
}
