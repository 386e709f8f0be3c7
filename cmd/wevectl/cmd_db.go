package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/webeat/weve/internal/database"
	"github.com/webeat/weve/migrations"
)

// migrateCmd applies the embedded schema migrations
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long: `Apply every embedded migration that has not run yet, in file order.

The server does the same on startup; run this ahead of a deploy to keep
schema changes out of the boot path.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	_, db, err := connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	applied, err := database.Migrate(ctx, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(applied) == 0 {
		fmt.Fprintln(out, "schema is up to date")
		return nil
	}
	for _, name := range applied {
		fmt.Fprintf(out, "applied %s\n", name)
	}
	return nil
}
