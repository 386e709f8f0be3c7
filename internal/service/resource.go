package service

import (
	"context"
	"errors"

	"github.com/webeat/weve/internal/model"
)

// ScopedStore is the data access contract of a couple-scoped table
type ScopedStore[T any] interface {
	ListByOwners(ctx context.Context, owners []string, mode model.Mode) ([]*T, error)
	ListWhere(ctx context.Context, owners []string, mode model.Mode, cond string, vars map[string]interface{}) ([]*T, error)
	GetByID(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, item *T) (*T, error)
	Update(ctx context.Context, item *T) (*T, error)
	Delete(ctx context.Context, id string) error
}

// Creator builds a new entity from a validated request
type Creator[T any] interface {
	Build() *T
}

// Patcher applies a validated partial update to an entity
type Patcher[T any] interface {
	Apply(*T)
}

type owned[T any] interface {
	*T
	model.Owned
}

// Resource implements list/create/update/delete for a couple-scoped
// entity. Both partners may read and change every row of the couple;
// rows of other users behave as if they did not exist.
type Resource[T any, P owned[T]] struct {
	name   string
	store  ScopedStore[T]
	events Publisher

	// check validates the merged entity before it is written
	check func(ctx context.Context, scope model.Scope, item *T) error
	// beforeDelete cleans up rows referencing item
	beforeDelete func(ctx context.Context, item *T) error
}

// NewResource creates a Resource publishing "<name>.<action>" events
func NewResource[T any, P owned[T]](name string, store ScopedStore[T], events Publisher) *Resource[T, P] {
	return &Resource[T, P]{name: name, store: store, events: events}
}

// List returns the couple's rows in the scope's mode
func (s *Resource[T, P]) List(ctx context.Context, scope model.Scope) ([]*T, error) {
	return s.store.ListByOwners(ctx, scope.UserIDs, scope.Mode)
}

// Get returns a row of the couple or ErrNotFound
func (s *Resource[T, P]) Get(ctx context.Context, scope model.Scope, id string) (*T, error) {
	item, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil || !scope.Includes(P(item).Meta().UserID) {
		return nil, ErrNotFound
	}
	return item, nil
}

// Create stores a new row owned by the caller in the scope's mode
func (s *Resource[T, P]) Create(ctx context.Context, scope model.Scope, req Creator[T]) (*T, error) {
	item := req.Build()
	meta := P(item).Meta()
	meta.ID = ""
	meta.UserID = scope.UserID
	meta.Mode = scope.Mode

	if s.check != nil {
		if err := s.check(ctx, scope, item); err != nil {
			return nil, err
		}
	}

	created, err := s.store.Create(ctx, item)
	if err != nil {
		return nil, err
	}
	s.publish(scope, "created", created)
	return created, nil
}

// Update patches a row of the couple. Missing rows and rows of other
// couples return ErrNotFound.
func (s *Resource[T, P]) Update(ctx context.Context, scope model.Scope, id string, req Patcher[T]) (*T, error) {
	item, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	meta := *P(item).Meta()
	req.Apply(item)
	// Ownership columns are never client-controlled
	*P(item).Meta() = meta

	if s.check != nil {
		if err := s.check(ctx, scope, item); err != nil {
			return nil, err
		}
	}

	updated, err := s.store.Update(ctx, item)
	if err != nil {
		return nil, err
	}
	s.publish(scope, "updated", updated)
	return updated, nil
}

// Delete removes a row of the couple. It succeeds without doing anything
// when the row is missing or belongs to someone else.
func (s *Resource[T, P]) Delete(ctx context.Context, scope model.Scope, id string) error {
	item, err := s.Get(ctx, scope, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if s.beforeDelete != nil {
		if err := s.beforeDelete(ctx, item); err != nil {
			return err
		}
	}

	meta := P(item).Meta()
	if err := s.store.Delete(ctx, meta.ID); err != nil {
		return err
	}
	s.publish(scope, "deleted", map[string]string{"id": meta.ID})
	return nil
}

func (s *Resource[T, P]) publish(scope model.Scope, action string, data interface{}) {
	if s.events == nil {
		return
	}
	s.events.SendToUsers(scope.UserIDs, Event{Type: ResourceEvent(s.name, action), Data: data})
}
