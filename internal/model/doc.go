// Package model defines domain entities and request types for the WE:VE API.
//
// # Couple-scoped entities
//
// Events, todos, albums, photos, expenses, checklist items, travels,
// guests, vendors and wedding info embed Base, which carries the owner
// (user_id) and the relationship Mode the row belongs to. Reads are made
// through a Scope: the caller plus the linked partner, in one mode.
//
// # Requests
//
// Create requests implement Validate and Build; update requests implement
// Validate and Apply, where nil fields are left untouched and empty
// strings clear optional values.
//
// # Error Types
//
// RFC 9457 Problem Details errors are defined in errors.go.
package model
