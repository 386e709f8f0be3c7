// Package repository implements the data access layer for the WE:VE API.
//
// Every query is SurrealQL sent through database.Database. Each repository
// handles one table, or a family of tables with the same shape.
//
// # Couple-Scoped Tables
//
// Events, todos, albums, photos, expenses, checklist items, travels, guests,
// vendors and wedding info share ScopedRepository. Every row carries the
// owner's user_id and a mode; reads filter by the couple's user ids and the
// active mode so partners see each other's rows and nothing else.
//
//	events := NewEventRepository(db)
//	rows, err := events.ListByOwners(ctx, user.CoupleUserIDs(), model.ModeDating)
//
// # Query Patterns
//
//   - Parameterized queries with $variable syntax
//   - type::record() for client-supplied ids, checked against the table first
//   - AtomicBatch for multi-row writes such as couple linking and account deletion
//
// # Missing Rows
//
// Single-row getters return (nil, nil) when nothing matches so services can
// map absence to their own not-found errors:
//
//	user, err := users.GetByEmail(ctx, email)
//	if err != nil {
//	    return err
//	}
//	if user == nil {
//	    return ErrUserNotFound
//	}
package repository
