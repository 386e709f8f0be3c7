package database

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
)

// Migrate applies every .surql file in fsys that is not yet recorded in the
// migration table. Files are applied in lexical order and each one is
// recorded in the same transaction that applies it.
func Migrate(ctx context.Context, db Database, fsys fs.FS) ([]string, error) {
	names, err := migrationFiles(fsys)
	if err != nil {
		return nil, err
	}

	if err := db.Execute(ctx, `DEFINE TABLE IF NOT EXISTS migration SCHEMALESS`, nil); err != nil {
		return nil, fmt.Errorf("preparing migration table: %w", err)
	}

	applied, err := appliedMigrations(ctx, db)
	if err != nil {
		return nil, err
	}

	var ran []string
	for _, name := range names {
		if applied[name] {
			continue
		}
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return ran, fmt.Errorf("reading %s: %w", name, err)
		}

		tb := NewTxBuilder()
		tb.Add(string(content), nil)
		tb.Add(`CREATE migration CONTENT { name: $name, applied_on: time::now() }`, map[string]interface{}{"name": name})
		query, vars := tb.Build()
		if err := db.Execute(ctx, query, vars); err != nil {
			return ran, fmt.Errorf("migration %s failed: %w", name, err)
		}

		slog.Info("applied migration", "name", name)
		ran = append(ran, name)
	}

	return ran, nil
}

func migrationFiles(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading migrations: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".surql" || strings.HasPrefix(e.Name(), "seed") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func appliedMigrations(ctx context.Context, db Database) (map[string]bool, error) {
	results, err := db.Query(ctx, `SELECT name FROM migration`, nil)
	if err != nil {
		return nil, fmt.Errorf("listing applied migrations: %w", err)
	}

	applied := make(map[string]bool)
	for _, r := range results {
		resp, ok := r.(map[string]interface{})
		if !ok {
			continue
		}
		rows, _ := resp["result"].([]interface{})
		for _, row := range rows {
			if m, ok := row.(map[string]interface{}); ok {
				if name, ok := m["name"].(string); ok {
					applied[name] = true
				}
			}
		}
	}
	return applied, nil
}
