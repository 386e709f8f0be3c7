// Package testdb provides test database utilities for the WE:VE API.
//
// # Server Selection
//
// Point TEST_DB_HOST at a running SurrealDB, or set WEVE_TESTCONTAINERS=1
// to start one in Docker. Without either, database tests are skipped so
// `go test ./...` stays fast on a laptop.
//
// # Migrations
//
// New applies the embedded migrations with database.Migrate, the same path
// the server takes on startup.
//
// # Isolation
//
// Each TestDB gets its own namespace, removed by Close:
//
//	func TestA(t *testing.T) {
//	    tdb := testdb.New(t) // namespace: test_<nanos>_1
//	    defer tdb.Close()
//	}
//
// # Shared Database
//
// For subtests that can share schema but need empty tables:
//
//	shared := testdb.NewShared(t)
//	defer shared.Close()
//	t.Run("create", func(t *testing.T) {
//	    tdb := shared.SetupSubtest(t)
//	    ...
//	})
package testdb
