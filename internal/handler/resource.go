package handler

import (
	"context"
	"net/http"

	"github.com/webeat/weve/internal/middleware"
	"github.com/webeat/weve/internal/model"
	"github.com/webeat/weve/internal/service"
)

// ScopedService is the service contract behind every couple-scoped
// collection (events, todos, albums, photos, expenses, checklist,
// travels, guests, vendors)
type ScopedService[T any] interface {
	List(ctx context.Context, scope model.Scope) ([]*T, error)
	Get(ctx context.Context, scope model.Scope, id string) (*T, error)
	Create(ctx context.Context, scope model.Scope, req service.Creator[T]) (*T, error)
	Update(ctx context.Context, scope model.Scope, id string, req service.Patcher[T]) (*T, error)
	Delete(ctx context.Context, scope model.Scope, id string) error
}

type createRequest[T, C any] interface {
	*C
	Validate() []model.FieldError
	Build() *T
}

type updateRequest[T, U any] interface {
	*U
	Validate() []model.FieldError
	Apply(*T)
}

// ListFunc replaces the default listing, typically to honor query filters.
// A returned ProblemDetails is written as-is.
type ListFunc[T any] func(r *http.Request, scope model.Scope) ([]*T, *model.ProblemDetails, error)

// ResourceHandler serves list/get/create/update/delete for one
// couple-scoped collection under /api/{path}
type ResourceHandler[T, C, U any, PC createRequest[T, C], PU updateRequest[T, U]] struct {
	path string
	name string
	svc  ScopedService[T]
	list ListFunc[T]
}

// NewResourceHandler creates a handler for the collection at /api/{path}.
// name is used in 404 details.
func NewResourceHandler[T, C, U any, PC createRequest[T, C], PU updateRequest[T, U]](path, name string, svc ScopedService[T]) *ResourceHandler[T, C, U, PC, PU] {
	return &ResourceHandler[T, C, U, PC, PU]{path: path, name: name, svc: svc}
}

// WithList overrides the default listing
func (h *ResourceHandler[T, C, U, PC, PU]) WithList(fn ListFunc[T]) *ResourceHandler[T, C, U, PC, PU] {
	h.list = fn
	return h
}

// RegisterRoutes registers the collection routes. wrap applies the
// authentication and scope middleware.
func (h *ResourceHandler[T, C, U, PC, PU]) RegisterRoutes(mux *http.ServeMux, wrap func(http.Handler) http.Handler) {
	base := "/api/" + h.path
	mux.Handle("GET "+base, wrap(http.HandlerFunc(h.List)))
	mux.Handle("POST "+base, wrap(http.HandlerFunc(h.Create)))
	mux.Handle("GET "+base+"/{id}", wrap(http.HandlerFunc(h.Get)))
	mux.Handle("PATCH "+base+"/{id}", wrap(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE "+base+"/{id}", wrap(http.HandlerFunc(h.Delete)))
}

// List handles GET /api/{path}
func (h *ResourceHandler[T, C, U, PC, PU]) List(w http.ResponseWriter, r *http.Request) {
	scope, ok := middleware.GetScope(r.Context())
	if !ok {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var (
		items []*T
		err   error
	)
	if h.list != nil {
		var problem *model.ProblemDetails
		items, problem, err = h.list(r, scope)
		if problem != nil {
			WriteError(w, problem)
			return
		}
	} else {
		items, err = h.svc.List(r.Context(), scope)
	}
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "list "+h.path))
		return
	}
	if items == nil {
		items = []*T{}
	}

	WriteCollection(w, http.StatusOK, items, nil, map[string]string{
		"self": "/api/" + h.path,
	})
}

// Get handles GET /api/{path}/{id}
func (h *ResourceHandler[T, C, U, PC, PU]) Get(w http.ResponseWriter, r *http.Request) {
	scope, ok := middleware.GetScope(r.Context())
	if !ok {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	id := r.PathValue("id")
	item, err := h.svc.Get(r.Context(), scope, id)
	if err != nil {
		WriteError(w, h.mapError(err, "get "+h.name))
		return
	}

	WriteData(w, http.StatusOK, item, h.links(id))
}

// Create handles POST /api/{path}
func (h *ResourceHandler[T, C, U, PC, PU]) Create(w http.ResponseWriter, r *http.Request) {
	scope, ok := middleware.GetScope(r.Context())
	if !ok {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req C
	if !ReadJSON(w, r, &req) {
		return
	}
	if errs := PC(&req).Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	item, err := h.svc.Create(r.Context(), scope, PC(&req))
	if err != nil {
		WriteError(w, h.mapError(err, "create "+h.name))
		return
	}

	WriteData(w, http.StatusCreated, item, h.links(metaID(item)))
}

// Update handles PATCH /api/{path}/{id}
func (h *ResourceHandler[T, C, U, PC, PU]) Update(w http.ResponseWriter, r *http.Request) {
	scope, ok := middleware.GetScope(r.Context())
	if !ok {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req U
	if !ReadJSON(w, r, &req) {
		return
	}
	if errs := PU(&req).Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	id := r.PathValue("id")
	item, err := h.svc.Update(r.Context(), scope, id, PU(&req))
	if err != nil {
		WriteError(w, h.mapError(err, "update "+h.name))
		return
	}

	WriteData(w, http.StatusOK, item, h.links(id))
}

// Delete handles DELETE /api/{path}/{id}. It answers 204 whether or not
// the row existed.
func (h *ResourceHandler[T, C, U, PC, PU]) Delete(w http.ResponseWriter, r *http.Request) {
	scope, ok := middleware.GetScope(r.Context())
	if !ok {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	if err := h.svc.Delete(r.Context(), scope, r.PathValue("id")); err != nil {
		WriteError(w, h.mapError(err, "delete "+h.name))
		return
	}

	WriteNoContent(w)
}

func (h *ResourceHandler[T, C, U, PC, PU]) mapError(err error, operation string) *model.ProblemDetails {
	pd := MapServiceErrorWithContext(err, operation)
	if pd.Status == http.StatusNotFound && pd.Detail == "resource not found" {
		return model.NewNotFoundError(h.name)
	}
	return pd
}

func (h *ResourceHandler[T, C, U, PC, PU]) links(id string) map[string]string {
	if id == "" {
		return nil
	}
	return map[string]string{
		"self":       "/api/" + h.path + "/" + id,
		"collection": "/api/" + h.path,
	}
}

func metaID(item any) string {
	if o, ok := item.(model.Owned); ok {
		return o.Meta().ID
	}
	return ""
}
