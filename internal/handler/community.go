package handler

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/webeat/weve/internal/middleware"
	"github.com/webeat/weve/internal/model"
	"github.com/webeat/weve/internal/service"
)

// CommunityFeed is the community service contract
type CommunityFeed interface {
	List(ctx context.Context, viewer *model.User, f model.PostFilter) (*service.PostPage, error)
	Get(ctx context.Context, viewer *model.User, id string) (*model.CommunityPost, error)
	Create(ctx context.Context, author *model.User, mode model.Mode, req *model.CreatePostRequest) (*model.CommunityPost, error)
	Update(ctx context.Context, caller *model.User, id string, req *model.UpdatePostRequest) (*model.CommunityPost, error)
	Delete(ctx context.Context, caller *model.User, id string) error
	ToggleLike(ctx context.Context, caller *model.User, id string) (*model.LikeResult, error)
}

// CommunityHandler handles the community feed
type CommunityHandler struct {
	feed CommunityFeed
}

// NewCommunityHandler creates a new community handler
func NewCommunityHandler(feed CommunityFeed) *CommunityHandler {
	return &CommunityHandler{feed: feed}
}

// RegisterRoutes registers community routes. wrap must resolve the scope.
func (h *CommunityHandler) RegisterRoutes(mux *http.ServeMux, wrap func(http.Handler) http.Handler) {
	mux.Handle("GET /api/community/posts", wrap(http.HandlerFunc(h.List)))
	mux.Handle("POST /api/community/posts", wrap(http.HandlerFunc(h.Create)))
	mux.Handle("GET /api/community/posts/{id}", wrap(http.HandlerFunc(h.Get)))
	mux.Handle("PATCH /api/community/posts/{id}", wrap(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /api/community/posts/{id}", wrap(http.HandlerFunc(h.Delete)))
	mux.Handle("POST /api/community/posts/{id}/like", wrap(http.HandlerFunc(h.Like)))
}

// List handles GET /api/community/posts?mode&category&cursor&limit
func (h *CommunityHandler) List(w http.ResponseWriter, r *http.Request) {
	user, scope, ok := h.caller(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := model.PostFilter{Mode: scope.Mode, Category: q.Get("category")}
	var errs []model.FieldError
	if raw := q.Get("cursor"); raw != "" {
		cursor, err := model.ParseCursor(raw)
		if err != nil {
			errs = append(errs, model.FieldError{Field: "cursor", Message: "invalid cursor"})
		}
		filter.Cursor = cursor
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			errs = append(errs, model.FieldError{Field: "limit", Message: "limit must be a positive integer"})
		}
		filter.Limit = limit
	}
	if len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	page, err := h.feed.List(r.Context(), user, filter)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "list posts"))
		return
	}

	posts := page.Posts
	if posts == nil {
		posts = []*model.CommunityPost{}
	}
	links := map[string]string{"self": "/api/community/posts"}
	if page.NextCursor != "" {
		next := url.Values{"mode": {string(scope.Mode)}, "cursor": {page.NextCursor}}
		if filter.Category != "" {
			next.Set("category", filter.Category)
		}
		links["next"] = "/api/community/posts?" + next.Encode()
	}
	WriteCollection(w, http.StatusOK, posts, &PaginationInfo{
		Cursor:  page.NextCursor,
		HasMore: page.NextCursor != "",
	}, links)
}

// Get handles GET /api/community/posts/{id}
func (h *CommunityHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, _, ok := h.caller(w, r)
	if !ok {
		return
	}

	post, err := h.feed.Get(r.Context(), user, r.PathValue("id"))
	if err != nil {
		WriteError(w, h.mapError(err, "get post"))
		return
	}

	WriteData(w, http.StatusOK, post, postLinks(post.ID))
}

// Create handles POST /api/community/posts
func (h *CommunityHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, scope, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req model.CreatePostRequest
	if !ReadJSON(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	post, err := h.feed.Create(r.Context(), user, scope.Mode, &req)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "create post"))
		return
	}

	WriteData(w, http.StatusCreated, post, postLinks(post.ID))
}

// Update handles PATCH /api/community/posts/{id}
func (h *CommunityHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, _, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req model.UpdatePostRequest
	if !ReadJSON(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	post, err := h.feed.Update(r.Context(), user, r.PathValue("id"), &req)
	if err != nil {
		WriteError(w, h.mapError(err, "update post"))
		return
	}

	WriteData(w, http.StatusOK, post, postLinks(post.ID))
}

// Delete handles DELETE /api/community/posts/{id}
func (h *CommunityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, _, ok := h.caller(w, r)
	if !ok {
		return
	}

	if err := h.feed.Delete(r.Context(), user, r.PathValue("id")); err != nil {
		WriteError(w, h.mapError(err, "delete post"))
		return
	}

	WriteNoContent(w)
}

// Like handles POST /api/community/posts/{id}/like
func (h *CommunityHandler) Like(w http.ResponseWriter, r *http.Request) {
	user, _, ok := h.caller(w, r)
	if !ok {
		return
	}

	result, err := h.feed.ToggleLike(r.Context(), user, r.PathValue("id"))
	if err != nil {
		WriteError(w, h.mapError(err, "like post"))
		return
	}

	WriteData(w, http.StatusOK, result, nil)
}

func (h *CommunityHandler) caller(w http.ResponseWriter, r *http.Request) (*model.User, model.Scope, bool) {
	user := middleware.GetUser(r.Context())
	scope, ok := middleware.GetScope(r.Context())
	if user == nil || !ok {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return nil, model.Scope{}, false
	}
	return user, scope, true
}

func (h *CommunityHandler) mapError(err error, operation string) *model.ProblemDetails {
	pd := MapServiceErrorWithContext(err, operation)
	if pd.Status == http.StatusNotFound {
		return model.NewNotFoundError("post")
	}
	return pd
}

func postLinks(id string) map[string]string {
	return map[string]string{
		"self": "/api/community/posts/" + id,
		"like": "/api/community/posts/" + id + "/like",
	}
}
