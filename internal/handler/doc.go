// Package handler provides HTTP request handlers for the WE:VE API.
//
// Handlers are organized by domain. Each handler struct holds the narrow
// service interfaces it needs, which keeps the handlers testable with
// hand-written mocks.
//
// # Handler Pattern
//
//   - Constructor function (NewXxxHandler) accepts its service dependencies
//   - RegisterRoutes mounts ServeMux method patterns behind a middleware wrap
//   - Response helpers from response.go standardize output format
//   - Service errors go through MapServiceError to RFC 9457 Problem Details
//
// # Couple-Scoped Collections
//
// Events, todos, albums, photos, expenses, checklist items, travels,
// guests and vendors share ResourceHandler, a generic list/get/create/
// update/delete handler. Request bodies are validated before they reach
// the service; validation failures answer 422 with per-field errors.
//
// # Response Format
//
//   - WriteData: Single resource with optional HATEOAS links
//   - WriteCollection: List of resources with optional cursor pagination
//   - WriteJSON: Raw JSON response
//   - WriteError: RFC 9457 Problem Details error response
//
// # Authentication
//
// Sessions arrive as the weve_session cookie or a Bearer token. The auth
// middleware puts the user in the request context and the scope middleware
// adds the couple's user ids and the active mode.
//
// # Example Usage
//
//	todos := NewResourceHandler[model.Todo, model.CreateTodoRequest, model.UpdateTodoRequest]("todos", "todo", todoService)
//	todos.RegisterRoutes(mux, scoped)
package handler
