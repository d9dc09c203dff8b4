package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sakif/phrasebook/internal/auth"
	sqliteRepo "github.com/sakif/phrasebook/internal/repository/sqlite"
	"github.com/sakif/phrasebook/internal/server"
)

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve()
		},
	}
}

func (a *app) serve() error {
	srv, err := server.New(a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	// Start blocks until SIGINT/SIGTERM.
	return srv.Start()
}

func newSeedCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the admin user and starter entries on an empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withServices(cmd.Context(), func(ctx context.Context, svcs *server.Services) error {
				res, err := svcs.Seeder.Run(ctx, a.cfg.Auth.AdminUsername, a.cfg.Auth.AdminPassword)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "admin created: %t, entries created: %d\n",
					res.AdminCreated, res.EntriesCreated)
				return nil
			})
		},
	}
}

func newPasswdCommand(a *app) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Reset a user's password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				username = a.cfg.Auth.AdminUsername
			}
			if password == "" {
				return errors.New("--password is required")
			}
			return a.withServices(cmd.Context(), func(ctx context.Context, svcs *server.Services) error {
				if err := svcs.Auth.ResetPassword(ctx, username, password); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "password updated for %s\n", username)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&username, "username", "", "user to update (defaults to the configured admin username)")
	flags.StringVar(&password, "password", "", "new password, at least 6 characters")

	return cmd
}

// withServices opens the database, builds the services and closes the
// database once fn returns.
func (a *app) withServices(ctx context.Context, fn func(context.Context, *server.Services) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := a.cfg.EnsureJWTSecret(); err != nil {
		return err
	}

	db, err := sqliteRepo.New(a.cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	svcs, err := server.NewServices(db, a.cfg, auth.NewPasswordService(), a.logger)
	if err != nil {
		return err
	}
	return fn(ctx, svcs)
}
