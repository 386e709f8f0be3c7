package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/webeat/weve/internal/database"
	"github.com/webeat/weve/internal/model"
)

// owned is satisfied by pointers to entities embedding model.Base
type owned[T any] interface {
	*T
	model.Owned
}

// ScopedRepository handles data access for a couple-scoped table. Rows
// are filtered by owner (user_id IN $owners) and mode.
type ScopedRepository[T any, P owned[T]] struct {
	db    database.Database
	table string
	order string
}

// NewScopedRepository creates a repository over table, listing rows in
// the given ORDER BY clause.
func NewScopedRepository[T any, P owned[T]](db database.Database, table, order string) *ScopedRepository[T, P] {
	return &ScopedRepository[T, P]{db: db, table: table, order: order}
}

// Table returns the SurrealDB table name
func (r *ScopedRepository[T, P]) Table() string {
	return r.table
}

// ListByOwners returns the rows owned by any of owners in mode
func (r *ScopedRepository[T, P]) ListByOwners(ctx context.Context, owners []string, mode model.Mode) ([]*T, error) {
	return r.ListWhere(ctx, owners, mode, "", nil)
}

// ListWhere is ListByOwners with an extra SurrealQL condition
func (r *ScopedRepository[T, P]) ListWhere(ctx context.Context, owners []string, mode model.Mode, cond string, vars map[string]interface{}) ([]*T, error) {
	query := `SELECT * FROM type::table($tb) WHERE user_id IN $owners AND mode = $mode`
	if cond != "" {
		query += " AND (" + cond + ")"
	}
	if r.order != "" {
		query += " ORDER BY " + r.order
	}

	all := map[string]interface{}{
		"tb":     r.table,
		"owners": owners,
		"mode":   string(mode),
	}
	for k, v := range vars {
		all[k] = v
	}

	results, err := r.db.Query(ctx, query, all)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", r.table, err)
	}
	return decodeRows[T](results)
}

// GetByID retrieves a row by id. Returns (nil, nil) when the row does not
// exist or the id names another table.
func (r *ScopedRepository[T, P]) GetByID(ctx context.Context, id string) (*T, error) {
	rid, ok := recordID(r.table, id)
	if !ok {
		return nil, nil
	}

	result, err := r.db.QueryOne(ctx, `SELECT * FROM type::record($id)`, map[string]interface{}{"id": rid})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return decodeRecord[T](result)
}

// Create inserts item and returns the stored row
func (r *ScopedRepository[T, P]) Create(ctx context.Context, item *T) (*T, error) {
	content, err := contentOf(item)
	if err != nil {
		return nil, err
	}

	result, err := r.db.QueryOne(ctx, `CREATE type::table($tb) CONTENT $content`, map[string]interface{}{
		"tb":      r.table,
		"content": content,
	})
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", r.table, err)
	}
	return decodeRecord[T](result)
}

// Update replaces the stored content of item. Ownership columns travel
// with the item; created_on is preserved by the schema.
func (r *ScopedRepository[T, P]) Update(ctx context.Context, item *T) (*T, error) {
	rid, ok := recordID(r.table, P(item).Meta().ID)
	if !ok {
		return nil, database.ErrNotFound
	}
	content, err := contentOf(item)
	if err != nil {
		return nil, err
	}

	result, err := r.db.QueryOne(ctx, `UPDATE type::record($id) CONTENT $content RETURN AFTER`, map[string]interface{}{
		"id":      rid,
		"content": content,
	})
	if err != nil {
		return nil, fmt.Errorf("updating %s: %w", r.table, err)
	}
	return decodeRecord[T](result)
}

// Delete removes a row. Deleting a missing row is not an error.
func (r *ScopedRepository[T, P]) Delete(ctx context.Context, id string) error {
	rid, ok := recordID(r.table, id)
	if !ok {
		return nil
	}
	return r.db.Execute(ctx, `DELETE type::record($id)`, map[string]interface{}{"id": rid})
}

// CountByOwners counts rows matching cond for owners in mode
func (r *ScopedRepository[T, P]) CountByOwners(ctx context.Context, owners []string, mode model.Mode, cond string) (int, error) {
	query := `SELECT count() AS count FROM type::table($tb) WHERE user_id IN $owners AND mode = $mode`
	if cond != "" {
		query += " AND (" + cond + ")"
	}
	query += " GROUP ALL"

	result, err := r.db.QueryOne(ctx, query, map[string]interface{}{
		"tb":     r.table,
		"owners": owners,
		"mode":   string(mode),
	})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if m, ok := result.(map[string]interface{}); ok {
		return getInt(m, "count"), nil
	}
	return 0, nil
}

// Table names of the couple-scoped resources
const (
	TableEvent         = "event"
	TableTodo          = "todo"
	TableAlbum         = "album"
	TablePhoto         = "photo"
	TableExpense       = "expense"
	TableChecklistItem = "checklist_item"
	TableTravel        = "travel"
	TableGuest         = "guest"
	TableWeddingVendor = "wedding_vendor"
	TableWeddingInfo   = "wedding_info"
)

// ScopedTables lists every couple-scoped table, used when purging an account
var ScopedTables = []string{
	TableEvent, TableTodo, TableAlbum, TablePhoto, TableExpense,
	TableChecklistItem, TableTravel, TableGuest, TableWeddingVendor, TableWeddingInfo,
}

func NewEventRepository(db database.Database) *ScopedRepository[model.Event, *model.Event] {
	return NewScopedRepository[model.Event](db, TableEvent, "date ASC, start_time ASC, created_on ASC")
}

func NewTodoRepository(db database.Database) *ScopedRepository[model.Todo, *model.Todo] {
	return NewScopedRepository[model.Todo](db, TableTodo, "completed ASC, due_date ASC, created_on DESC")
}

func NewAlbumRepository(db database.Database) *ScopedRepository[model.Album, *model.Album] {
	return NewScopedRepository[model.Album](db, TableAlbum, "created_on DESC")
}

func NewExpenseRepository(db database.Database) *ScopedRepository[model.Expense, *model.Expense] {
	return NewScopedRepository[model.Expense](db, TableExpense, "date DESC, created_on DESC")
}

func NewChecklistRepository(db database.Database) *ScopedRepository[model.ChecklistItem, *model.ChecklistItem] {
	return NewScopedRepository[model.ChecklistItem](db, TableChecklistItem, "sort_order ASC, created_on ASC")
}

func NewTravelRepository(db database.Database) *ScopedRepository[model.Travel, *model.Travel] {
	return NewScopedRepository[model.Travel](db, TableTravel, "start_date DESC")
}

func NewGuestRepository(db database.Database) *ScopedRepository[model.Guest, *model.Guest] {
	return NewScopedRepository[model.Guest](db, TableGuest, "side ASC, name ASC")
}

func NewVendorRepository(db database.Database) *ScopedRepository[model.WeddingVendor, *model.WeddingVendor] {
	return NewScopedRepository[model.WeddingVendor](db, TableWeddingVendor, "category ASC, created_on ASC")
}

func NewWeddingInfoRepository(db database.Database) *ScopedRepository[model.WeddingInfo, *model.WeddingInfo] {
	return NewScopedRepository[model.WeddingInfo](db, TableWeddingInfo, "updated_on DESC")
}
