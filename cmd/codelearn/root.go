package main

import (
	"strconv"

	"github.com/spf13/cobra"

	codelearn "github.com/Niavlys042/codelearn-journey-forge.github.io"
)

func newRootCommand() *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:           "codelearn",
		Short:         "Command line client for the CodeLearn platform",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.apiURL, "api-url", "", "API root (overrides CODELEARN_API_URL)")
	root.PersistentFlags().StringVar(&flags.sessionFile, "session", "", "session file (overrides CODELEARN_SESSION_FILE)")
	root.PersistentFlags().DurationVar(&flags.timeout, "timeout", 0, "request timeout (overrides CODELEARN_TIMEOUT)")

	var current *app
	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context(), flags, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		current = a
		return nil
	}
	root.PersistentPostRun = func(*cobra.Command, []string) {
		if current != nil {
			current.close()
		}
	}

	get := func() *app { return current }

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Args:  cobra.NoArgs,
		// no configuration needed
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(codelearn.GetVersion())
		},
	}

	root.AddCommand(
		newLoginCommand(get),
		newLogoutCommand(get),
		newProfileCommand(get),
		newCoursesCommand(get),
		newPathsCommand(get),
		newPlansCommand(get),
		newCertificatesCommand(get),
		newAdminCommand(get),
		version,
	)

	return root
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, &invalidIDError{arg: arg}
	}
	return id, nil
}

type invalidIDError struct {
	arg string
}

func (e *invalidIDError) Error() string {
	return "invalid id " + strconv.Quote(e.arg)
}
