// Package jobs implements background maintenance for the WE:VE API.
//
// Jobs run on their own goroutine, independent of HTTP request handling,
// and are started and stopped by cmd/server.
//
// # Job Types
//
//   - Session sweeper: deletes expired login sessions (hourly)
//   - Invite expirer: marks pending couple invites past their 7-day TTL
//     as expired (every 15 minutes)
//
// # Lifecycle
//
//	sweeper := jobs.NewSessionSweeper(sessionService, time.Hour)
//	sweeper.Start()
//	defer sweeper.Stop()
//
// Start and Stop are idempotent. Stop waits for an in-flight sweep and
// cancels its context. RunOnce performs a single sweep synchronously and
// backs the wevectl maintenance commands.
//
// # Error Handling
//
// A failed sweep is logged and retried on the next tick.
package jobs
