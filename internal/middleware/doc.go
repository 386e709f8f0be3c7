// Package middleware provides HTTP middleware for the WE:VE API.
//
// # Available Middleware
//
// Global components, applied to every request in this order:
//
//   - RequestID: assigns or propagates X-Request-ID
//   - Logger: structured request log with status, duration, and user id
//   - Recovery: turns panics into a 500 Problem Details response
//   - CORS: credentialed CORS for configured origins
//   - Compress: gzip for clients that accept it (never for event streams)
//   - Metrics.Middleware: Prometheus counters labelled by route pattern
//
// Per-route components:
//
//   - Auth: session cookie or Bearer token validation
//   - RateLimit: token bucket per user, falling back to client IP
//   - Scope: resolves the couple scope (caller, partner, mode)
//   - RequireAdmin: admin role check
//   - Idempotency: replays the stored response for a retried POST that
//     repeats its Idempotency-Key
//
// # Context Values
//
//   - GetUser(ctx) / GetUserID(ctx): the authenticated user
//   - GetSession(ctx): the current session
//   - GetScope(ctx): the couple scope of the request
//   - GetRequestID(ctx): unique request identifier
package middleware
