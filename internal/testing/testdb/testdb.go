// Package testdb provides isolated SurrealDB databases for integration tests.
//
// Tests run against a real SurrealDB so repository queries, unique indexes
// and schema assertions are exercised as deployed. The server is found in
// this order:
//
//  1. TEST_DB_HOST / TEST_DB_PORT / TEST_DB_USER / TEST_DB_PASSWORD
//  2. a throwaway container when WEVE_TESTCONTAINERS=1
//
// With neither, New skips the test.
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t)
//	    defer tdb.Close()
//
//	    rows := tdb.MustQuery("SELECT * FROM user", nil)
//	}
package testdb

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/webeat/weve/internal/database"
	"github.com/webeat/weve/migrations"
)

const surrealImage = "surrealdb/surrealdb:v2.1.4"

// TestDB is one migrated namespace on the test server
type TestDB struct {
	DB        database.Database
	Namespace string
	Database  string
	t         *testing.T
}

var (
	// containerOnce starts at most one container per test binary. Ryuk
	// removes it when the process exits.
	containerOnce sync.Once
	containerCfg  database.Config
	containerErr  error

	counterMu sync.Mutex
	counter   int64
)

// serverConfig resolves the server to test against, or reports false
// when none is available.
func serverConfig(t *testing.T) (database.Config, bool) {
	t.Helper()

	if host := os.Getenv("TEST_DB_HOST"); host != "" {
		return database.Config{
			Host:     host,
			Port:     envOr("TEST_DB_PORT", "8000"),
			User:     envOr("TEST_DB_USER", "root"),
			Password: envOr("TEST_DB_PASSWORD", "root"),
		}, true
	}

	if os.Getenv("WEVE_TESTCONTAINERS") != "1" {
		return database.Config{}, false
	}

	containerOnce.Do(func() {
		containerCfg, containerErr = startContainer()
	})
	if containerErr != nil {
		t.Fatalf("testdb: failed to start SurrealDB container: %v", containerErr)
	}
	return containerCfg, true
}

func startContainer() (database.Config, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        surrealImage,
		ExposedPorts: []string{"8000/tcp"},
		Cmd:          []string{"start", "--user", "root", "--pass", "root", "memory"},
		WaitingFor:   wait.ForListeningPort("8000/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return database.Config{}, err
	}

	host, err := container.Host(ctx)
	if err != nil {
		return database.Config{}, fmt.Errorf("container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "8000/tcp")
	if err != nil {
		return database.Config{}, fmt.Errorf("container port: %w", err)
	}

	return database.Config{
		Host:     host,
		Port:     port.Port(),
		User:     "root",
		Password: "root",
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func uniqueNamespace() string {
	counterMu.Lock()
	defer counterMu.Unlock()
	counter++
	return fmt.Sprintf("test_%d_%d", time.Now().UnixNano(), counter)
}

// New connects to a fresh namespace and applies the embedded migrations.
// Call Close when done to drop the namespace.
func New(t *testing.T) *TestDB {
	t.Helper()

	cfg, ok := serverConfig(t)
	if !ok {
		t.Skip("testdb: set TEST_DB_HOST or WEVE_TESTCONTAINERS=1 to run database tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg.Namespace = uniqueNamespace()
	cfg.Database = "test"

	db := database.NewSurrealDB(cfg)
	if err := db.Connect(ctx); err != nil {
		t.Fatalf("testdb: failed to connect: %v", err)
	}

	if _, err := database.Migrate(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		t.Fatalf("testdb: %v", err)
	}

	return &TestDB{
		DB:        db,
		Namespace: cfg.Namespace,
		Database:  cfg.Database,
		t:         t,
	}
}

// Close drops the test namespace and closes the connection
func (tdb *TestDB) Close() {
	if tdb.DB == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = tdb.DB.Execute(ctx, fmt.Sprintf("REMOVE NAMESPACE %s", tdb.Namespace), nil)
	_ = tdb.DB.Close()
}

// Reset deletes every row while keeping the schema and migration history
func (tdb *TestDB) Reset(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	results, err := tdb.DB.Query(ctx, "INFO FOR DB", nil)
	if err != nil {
		t.Fatalf("testdb: failed to get db info: %v", err)
	}
	if len(results) == 0 {
		return
	}

	resp, _ := results[0].(map[string]interface{})
	result, _ := resp["result"].(map[string]interface{})
	tables, _ := result["tables"].(map[string]interface{})
	for name := range tables {
		if name == "migration" {
			continue
		}
		if err := tdb.DB.Execute(ctx, fmt.Sprintf("DELETE FROM %s", name), nil); err != nil {
			t.Logf("testdb: failed to clear table %s: %v", name, err)
		}
	}
}

// Ctx returns a context bounded by the test's lifetime and a 10s timeout
func (tdb *TestDB) Ctx() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	tdb.t.Cleanup(cancel)
	return ctx
}

// MustExec executes a query and fails the test on error
func (tdb *TestDB) MustExec(query string, vars map[string]interface{}) {
	tdb.t.Helper()
	if err := tdb.DB.Execute(tdb.Ctx(), query, vars); err != nil {
		tdb.t.Fatalf("testdb: exec failed: %v\nQuery: %s", err, query)
	}
}

// MustQuery executes a query and fails the test on error
func (tdb *TestDB) MustQuery(query string, vars map[string]interface{}) []interface{} {
	tdb.t.Helper()
	results, err := tdb.DB.Query(tdb.Ctx(), query, vars)
	if err != nil {
		tdb.t.Fatalf("testdb: query failed: %v\nQuery: %s", err, query)
	}
	return results
}

// Shared is one TestDB reused across subtests
type Shared struct {
	*TestDB
}

// NewShared creates a database for a group of subtests that each call
// SetupSubtest to start from empty tables.
func NewShared(t *testing.T) *Shared {
	return &Shared{TestDB: New(t)}
}

// SetupSubtest clears all rows and binds the database to t
func (s *Shared) SetupSubtest(t *testing.T) *TestDB {
	t.Helper()
	s.TestDB.t = t
	s.TestDB.Reset(t)
	return s.TestDB
}
