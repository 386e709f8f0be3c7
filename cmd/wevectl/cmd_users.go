package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/webeat/weve/internal/model"
	"github.com/webeat/weve/internal/repository"
	"github.com/webeat/weve/internal/service"
)

var demote bool

// usersCmd groups account administration
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Account administration",
}

// usersPromoteCmd grants or revokes the admin role
var usersPromoteCmd = &cobra.Command{
	Use:   "promote <email>",
	Short: "Grant the admin role to a user",
	Long: `Grant the admin role to the account registered with <email>.
Admins can moderate community posts and manage roles over the API.

Use --demote to return the account to the regular user role.`,
	Args: cobra.ExactArgs(1),
	RunE: runUsersPromote,
}

func init() {
	usersPromoteCmd.Flags().BoolVar(&demote, "demote", false, "Revoke the admin role instead")
	usersCmd.AddCommand(usersPromoteCmd)
}

func runUsersPromote(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	cfg, db, err := connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	userRepo := repository.NewUserRepository(db)
	accounts := service.NewAuthService(service.AuthServiceConfig{
		UserRepo: userRepo,
		SessionService: service.NewSessionService(service.SessionServiceConfig{
			SessionRepo: repository.NewSessionRepository(db),
			UserRepo:    userRepo,
			TTL:         cfg.Session.TTL,
		}),
	})

	role := model.UserRoleAdmin
	if demote {
		role = model.UserRoleUser
	}

	user, err := accounts.SetRole(ctx, args[0], role)
	if errors.Is(err, service.ErrUserNotFound) {
		return fmt.Errorf("no account registered with %s", args[0])
	}
	if err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", user.Email, user.Role)
	return nil
}
