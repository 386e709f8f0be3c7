package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/webeat/weve/internal/model"
	"github.com/webeat/weve/internal/service"
)

// Registrar is anything that can mount routes behind a middleware wrap
type Registrar interface {
	RegisterRoutes(mux *http.ServeMux, wrap func(http.Handler) http.Handler)
}

// EventLister lists events in a date window
type EventLister interface {
	ScopedService[model.Event]
	ListRange(ctx context.Context, scope model.Scope, f model.EventFilter) ([]*model.Event, error)
}

// TodoLister lists todos by completion
type TodoLister interface {
	ScopedService[model.Todo]
	ListByStatus(ctx context.Context, scope model.Scope, completed bool) ([]*model.Todo, error)
}

// PhotoLister lists the photos of an album
type PhotoLister interface {
	ScopedService[model.Photo]
	ListByAlbum(ctx context.Context, scope model.Scope, albumID string) ([]*model.Photo, error)
}

// CollectionServices groups the services behind the couple-scoped collections
type CollectionServices struct {
	Events    EventLister
	Todos     TodoLister
	Albums    ScopedService[model.Album]
	Photos    PhotoLister
	Expenses  ScopedService[model.Expense]
	Checklist ScopedService[model.ChecklistItem]
	Travels   ScopedService[model.Travel]
	Guests    ScopedService[model.Guest]
	Vendors   ScopedService[model.WeddingVendor]
}

// NewCollectionHandlers builds one ResourceHandler per collection
func NewCollectionHandlers(s CollectionServices) []Registrar {
	events := NewResourceHandler[model.Event, model.CreateEventRequest, model.UpdateEventRequest]("events", "event", s.Events).
		WithList(func(r *http.Request, scope model.Scope) ([]*model.Event, *model.ProblemDetails, error) {
			f := model.EventFilter{From: r.URL.Query().Get("from"), To: r.URL.Query().Get("to")}
			var errs []model.FieldError
			if f.From != "" && !model.ValidDate(f.From) {
				errs = append(errs, model.FieldError{Field: "from", Message: "from must be YYYY-MM-DD"})
			}
			if f.To != "" && !model.ValidDate(f.To) {
				errs = append(errs, model.FieldError{Field: "to", Message: "to must be YYYY-MM-DD"})
			}
			if len(errs) > 0 {
				return nil, model.NewValidationError(errs), nil
			}
			items, err := s.Events.ListRange(r.Context(), scope, f)
			return items, nil, err
		})

	todos := NewResourceHandler[model.Todo, model.CreateTodoRequest, model.UpdateTodoRequest]("todos", "todo", s.Todos).
		WithList(func(r *http.Request, scope model.Scope) ([]*model.Todo, *model.ProblemDetails, error) {
			raw := r.URL.Query().Get("completed")
			if raw == "" {
				items, err := s.Todos.List(r.Context(), scope)
				return items, nil, err
			}
			completed, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, model.NewValidationError([]model.FieldError{{Field: "completed", Message: "completed must be true or false"}}), nil
			}
			items, err := s.Todos.ListByStatus(r.Context(), scope, completed)
			return items, nil, err
		})

	photos := NewResourceHandler[model.Photo, model.CreatePhotoRequest, model.UpdatePhotoRequest]("photos", "photo", s.Photos).
		WithList(func(r *http.Request, scope model.Scope) ([]*model.Photo, *model.ProblemDetails, error) {
			albumID := r.URL.Query().Get("album_id")
			if albumID == "" {
				items, err := s.Photos.List(r.Context(), scope)
				return items, nil, err
			}
			items, err := s.Photos.ListByAlbum(r.Context(), scope, albumID)
			return items, nil, err
		})

	return []Registrar{
		events,
		todos,
		NewResourceHandler[model.Album, model.CreateAlbumRequest, model.UpdateAlbumRequest]("albums", "album", s.Albums),
		photos,
		NewResourceHandler[model.Expense, model.CreateExpenseRequest, model.UpdateExpenseRequest]("expenses", "expense", s.Expenses),
		NewResourceHandler[model.ChecklistItem, model.CreateChecklistItemRequest, model.UpdateChecklistItemRequest]("checklist", "checklist item", s.Checklist),
		NewResourceHandler[model.Travel, model.CreateTravelRequest, model.UpdateTravelRequest]("travels", "travel", s.Travels),
		NewResourceHandler[model.Guest, model.CreateGuestRequest, model.UpdateGuestRequest]("guests", "guest", s.Guests),
		NewResourceHandler[model.WeddingVendor, model.CreateVendorRequest, model.UpdateVendorRequest]("vendors", "vendor", s.Vendors),
	}
}

var (
	_ EventLister                        = (*service.EventService)(nil)
	_ TodoLister                         = (*service.TodoService)(nil)
	_ PhotoLister                        = (*service.PhotoService)(nil)
	_ ScopedService[model.Album]         = (*service.AlbumService)(nil)
	_ ScopedService[model.Expense]       = (*service.ExpenseService)(nil)
	_ ScopedService[model.ChecklistItem] = (*service.ChecklistService)(nil)
	_ ScopedService[model.Travel]        = (*service.TravelService)(nil)
	_ ScopedService[model.Guest]         = (*service.GuestService)(nil)
	_ ScopedService[model.WeddingVendor] = (*service.VendorService)(nil)
)
