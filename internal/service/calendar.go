package service

import (
	"context"

	"github.com/webeat/weve/internal/model"
)

// EventService manages the shared calendar
type EventService struct {
	*Resource[model.Event, *model.Event]
	store ScopedStore[model.Event]
}

// NewEventService creates a new event service
func NewEventService(store ScopedStore[model.Event], events Publisher) *EventService {
	r := NewResource[model.Event]("event", store, events)
	r.check = func(_ context.Context, _ model.Scope, e *model.Event) error {
		if e.EndsBeforeStart() {
			return invalid("end_date", "end_date must not be before date")
		}
		return nil
	}
	return &EventService{Resource: r, store: store}
}

// ListRange lists events whose date falls in the filter window. Either
// bound may be empty.
func (s *EventService) ListRange(ctx context.Context, scope model.Scope, f model.EventFilter) ([]*model.Event, error) {
	if f.From == "" && f.To == "" {
		return s.List(ctx, scope)
	}
	cond := "true"
	vars := map[string]interface{}{}
	if f.From != "" {
		// Multi-day events that started earlier but are still running count too
		cond += " AND (date >= $from OR (end_date != NONE AND end_date >= $from))"
		vars["from"] = f.From
	}
	if f.To != "" {
		cond += " AND date <= $to"
		vars["to"] = f.To
	}
	return s.store.ListWhere(ctx, scope.UserIDs, scope.Mode, cond, vars)
}

// Upcoming returns the next limit events on or after today
func (s *EventService) Upcoming(ctx context.Context, scope model.Scope, today string, limit int) ([]*model.Event, error) {
	events, err := s.ListRange(ctx, scope, model.EventFilter{From: today})
	if err != nil {
		return nil, err
	}
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// TodoService manages shared to-dos
type TodoService struct {
	*Resource[model.Todo, *model.Todo]
	store ScopedStore[model.Todo]
}

// NewTodoService creates a new todo service
func NewTodoService(store ScopedStore[model.Todo], events Publisher) *TodoService {
	return &TodoService{Resource: NewResource[model.Todo]("todo", store, events), store: store}
}

// ListByStatus lists todos filtered on completion
func (s *TodoService) ListByStatus(ctx context.Context, scope model.Scope, completed bool) ([]*model.Todo, error) {
	return s.store.ListWhere(ctx, scope.UserIDs, scope.Mode, "completed = $completed", map[string]interface{}{"completed": completed})
}

// CountOpen counts incomplete todos
func (s *TodoService) CountOpen(ctx context.Context, scope model.Scope) (int, error) {
	open, err := s.ListByStatus(ctx, scope, false)
	if err != nil {
		return 0, err
	}
	return len(open), nil
}

// TravelService manages trips
type TravelService struct {
	*Resource[model.Travel, *model.Travel]
}

// NewTravelService creates a new travel service
func NewTravelService(store ScopedStore[model.Travel], events Publisher) *TravelService {
	r := NewResource[model.Travel]("travel", store, events)
	r.check = func(_ context.Context, _ model.Scope, t *model.Travel) error {
		if t.EndsBeforeStart() {
			return invalid("end_date", "end_date must not be before start_date")
		}
		return nil
	}
	return &TravelService{Resource: r}
}
