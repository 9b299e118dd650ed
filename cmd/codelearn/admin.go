package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	codelearn "github.com/Niavlys042/codelearn-journey-forge.github.io"
	"github.com/Niavlys042/codelearn-journey-forge.github.io/api"
)

func newAdminCommand(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administration panel",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// cobra runs only the nearest persistent pre-run
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			return requireAdmin(get())
		},
	}

	var search string
	users := &cobra.Command{
		Use:   "users",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()

			page, err := a.service.AdminUsers().Fetch(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(api.FilterUsers(page.Results, search))
		},
	}
	users.Flags().StringVar(&search, "search", "", "match email, username or name")

	courses := &cobra.Command{
		Use:   "courses",
		Short: "List courses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()

			page, err := a.service.AdminCourses().Fetch(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(api.FilterCourses(page.Results, search))
		},
	}
	courses.Flags().StringVar(&search, "search", "", "match title or description")

	certificates := &cobra.Command{
		Use:   "certificates",
		Short: "List certificates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()

			page, err := a.service.AdminCertificates().Fetch(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(api.FilterCertificates(page.Results, search))
		},
	}
	certificates.Flags().StringVar(&search, "search", "", "match title or reference")

	dashboard := &cobra.Command{
		Use:   "dashboard",
		Short: "Show platform totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()

			totals, err := a.service.AdminDashboard().Fetch(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(totals)
		},
	}

	cmd.AddCommand(
		users, courses, certificates, dashboard,
		adminActionCommand(get, "toggle-premium ID", "Flip the premium status of a user", (*api.Service).TogglePremium),
		adminActionCommand(get, "toggle-admin ID", "Flip the administrator status of a user", (*api.Service).ToggleAdmin),
		adminActionCommand(get, "validate-certificate ID", "Mark a certificate valid", (*api.Service).ValidateCertificate),
		adminActionCommand(get, "invalidate-certificate ID", "Mark a certificate invalid", (*api.Service).InvalidateCertificate),
		newWatchCommand(get),
	)
	return cmd
}

func adminActionCommand[Out any](get func() *app, use, short string, build func(*api.Service) *codelearn.Mutation[int, Out]) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			out, err := build(a.service).Mutate(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.print(out)
		},
	}
}

// newWatchCommand keeps the admin queries mounted and prints them whenever
// they change, refreshing every interval.
func newWatchCommand(get func() *app) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the dashboard and users on every change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if interval <= 0 {
				return fmt.Errorf("invalid interval %s: must be positive", interval)
			}

			a := get()
			ctx := cmd.Context()

			dashboard := a.service.AdminDashboard()
			users := a.service.AdminUsers()

			unsubscribeDashboard := dashboard.Subscribe(func(s codelearn.QueryState[api.Dashboard]) {
				printState(a, "dashboard", s)
			})
			defer unsubscribeDashboard()
			unsubscribeUsers := users.Subscribe(func(s codelearn.QueryState[api.Page[api.AdminUser]]) {
				printState(a, "users", s)
			})
			defer unsubscribeUsers()

			dashboard.Mount(ctx)
			defer dashboard.Unmount()
			users.Mount(ctx)
			defer users.Unmount()

			return refreshEvery(ctx, interval, func() {
				a.queries.Invalidate(api.KeyAdmin)
			})
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 30*time.Second, "refresh interval")

	return cmd
}

func printState[T any](a *app, name string, s codelearn.QueryState[T]) {
	switch {
	case s.Err != nil && s.Status == codelearn.StatusError:
		a.logger.Warn().Err(s.Err).Str("query", name).Msg("refresh failed")
	case s.Status == codelearn.StatusSuccess && !s.IsFetching:
		a.logger.Info().Str("query", name).Time("updated", s.UpdatedAt).Msg("refreshed")
		if err := a.print(map[string]any{name: s.Data}); err != nil {
			a.logger.Warn().Err(err).Msg("print failed")
		}
	}
}

func refreshEvery(ctx context.Context, interval time.Duration, fn func()) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			fn()
		}
	}
}
