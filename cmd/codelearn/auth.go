package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Niavlys042/codelearn-journey-forge.github.io/api"
	"github.com/Niavlys042/codelearn-journey-forge.github.io/internal/session"
)

func newLoginCommand(get func() *app) *cobra.Command {
	var creds api.Credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			if creds.Password == "" {
				creds.Password = strings.TrimSpace(os.Getenv("CODELEARN_PASSWORD"))
			}

			auth, err := a.service.Login().Mutate(cmd.Context(), creds)
			if err != nil {
				return err
			}

			if err := session.Write(a.sessionPath, session.Session{Token: auth.Token, User: &auth.User}); err != nil {
				return err
			}
			a.logger.Info().Str("user", auth.User.Username).Str("session", a.sessionPath).Msg("signed in")
			return nil
		},
	}

	cmd.Flags().StringVar(&creds.Email, "email", "", "account email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "account password (defaults to CODELEARN_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newLogoutCommand(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session token and forget it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()

			token, err := a.store.Token(cmd.Context())
			if err != nil {
				return err
			}
			if token != "" {
				if _, err := a.service.Logout().Mutate(cmd.Context(), struct{}{}); err != nil {
					a.logger.Warn().Err(err).Msg("server logout failed, removing local session anyway")
				}
			}
			return session.Remove(a.sessionPath)
		},
	}
}

func newProfileCommand(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()

			user, err := a.service.Profile().Fetch(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(user)
		},
	}
}

// requireAdmin checks the stored profile before admin commands run, the
// way the admin panel refuses non-admin visitors.
func requireAdmin(a *app) error {
	err := a.store.RequireAdmin()
	if errors.Is(err, session.ErrNotAdmin) {
		return fmt.Errorf("access denied: %w", err)
	}
	return err
}
