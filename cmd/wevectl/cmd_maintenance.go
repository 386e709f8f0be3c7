package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/webeat/weve/internal/jobs"
	"github.com/webeat/weve/internal/repository"
	"github.com/webeat/weve/internal/service"
)

// sessionsCmd groups session maintenance
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Session maintenance",
}

// sessionsPruneCmd runs the session sweeper once
var sessionsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete expired sessions",
	Args:  cobra.NoArgs,
	RunE:  runSessionsPrune,
}

// invitesCmd groups couple invite maintenance
var invitesCmd = &cobra.Command{
	Use:   "invites",
	Short: "Couple invite maintenance",
}

// invitesExpireCmd runs the invite expirer once
var invitesExpireCmd = &cobra.Command{
	Use:   "expire",
	Short: "Expire pending invites past their deadline",
	Args:  cobra.NoArgs,
	RunE:  runInvitesExpire,
}

func init() {
	sessionsCmd.AddCommand(sessionsPruneCmd)
	invitesCmd.AddCommand(invitesExpireCmd)
}

func runSessionsPrune(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	cfg, db, err := connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	sessions := service.NewSessionService(service.SessionServiceConfig{
		SessionRepo: repository.NewSessionRepository(db),
		UserRepo:    repository.NewUserRepository(db),
		TTL:         cfg.Session.TTL,
	})

	n, err := jobs.NewSessionSweeper(sessions, 0).RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("prune sessions: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "pruned %d expired sessions\n", n)
	return nil
}

func runInvitesExpire(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	_, db, err := connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	couples := service.NewCoupleService(service.CoupleServiceConfig{
		UserRepo:   repository.NewUserRepository(db),
		InviteRepo: repository.NewInviteRepository(db),
	})

	n, err := jobs.NewInviteSweeper(couples, 0).RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("expire invites: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "expired %d invites\n", n)
	return nil
}
