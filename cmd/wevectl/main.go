// Command wevectl runs one-off operational tasks against a WE:VE deployment:
// schema migrations, signing key generation, session and invite sweeps and
// admin role changes. It reads the same configuration as the server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/webeat/weve/internal/config"
	"github.com/webeat/weve/internal/database"
	"github.com/webeat/weve/pkg/logging"
)

var (
	verbose bool
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "wevectl",
	Short: "Operational tasks for the WE:VE API",
	Long: `wevectl runs maintenance tasks with the server configuration.

Available commands:
  migrate         - Apply pending database migrations
  keys generate   - Write a new RSA key pair for the login flow signer
  sessions prune  - Delete expired sessions
  invites expire  - Expire stale couple invites
  users promote   - Change a user's role`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logging.LevelFromEnv()
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(logging.New(os.Stderr, "development", level))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(invitesCmd)
	rootCmd.AddCommand(usersCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// connect loads the configuration and opens the database with the
// command timeout applied to ctx.
func connect(ctx context.Context) (*config.Config, *database.SurrealDB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})
	if err := db.Connect(ctx); err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	slog.Debug("connected to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Database),
	)
	return cfg, db, nil
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}
