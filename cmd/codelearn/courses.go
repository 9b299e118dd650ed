package main

import (
	"github.com/spf13/cobra"

	"github.com/Niavlys042/codelearn-journey-forge.github.io/api"
)

func newCoursesCommand(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "courses",
		Short: "Browse courses and track progress",
	}

	var filter api.CourseFilter
	var level string
	list := &cobra.Command{
		Use:   "list",
		Short: "List published courses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			filter.Level = api.Level(level)

			page, err := a.service.Courses(filter).Fetch(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(page.Results)
		},
	}
	list.Flags().StringVar(&filter.Language, "language", "", "programming language")
	list.Flags().StringVar(&level, "level", "", "beginner, intermediate or advanced")
	list.Flags().StringVar(&filter.Search, "search", "", "text in title or description")

	show := &cobra.Command{
		Use:   "show ID",
		Short: "Show a course with its modules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			course, err := a.service.Course(id).Fetch(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(course)
		},
	}

	var percent int
	var completed bool
	progress := &cobra.Command{
		Use:   "progress ID",
		Short: "Show or update progress on a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("percent") && !cmd.Flags().Changed("completed") {
				current, err := a.service.CourseProgress(id).Fetch(cmd.Context())
				if err != nil {
					return err
				}
				return a.print(current)
			}

			update := api.ProgressUpdate{CourseID: id}
			if cmd.Flags().Changed("percent") {
				update.ProgressPercentage = &percent
			}
			if cmd.Flags().Changed("completed") {
				update.Completed = &completed
			}
			updated, err := a.service.UpdateProgress().Mutate(cmd.Context(), update)
			if err != nil {
				return err
			}
			return a.print(updated)
		},
	}
	progress.Flags().IntVar(&percent, "percent", 0, "progress percentage, 0 to 100")
	progress.Flags().BoolVar(&completed, "completed", false, "mark the course completed")

	cmd.AddCommand(list, show, progress)
	return cmd
}

func newPathsCommand(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paths [ID]",
		Short: "List learning paths or show the courses of one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()

			if len(args) == 0 {
				page, err := a.service.LearningPaths().Fetch(cmd.Context())
				if err != nil {
					return err
				}
				return a.print(page.Results)
			}

			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			courses, err := a.service.LearningPathCourses(id).Fetch(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(courses.Results)
		},
	}
	return cmd
}

func newPlansCommand(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List subscription plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()

			page, err := a.service.Plans().Fetch(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(page.Results)
		},
	}
}

func newCertificatesCommand(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "certificates",
		Short: "List, generate and verify certificates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()

			page, err := a.service.Certificates().Fetch(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(page.Results)
		},
	}

	generate := &cobra.Command{
		Use:   "generate COURSE_ID",
		Short: "Issue the certificate of a completed course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			cert, err := a.service.GenerateCertificate().Mutate(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.print(cert)
		},
	}

	verify := &cobra.Command{
		Use:   "verify REFERENCE",
		Short: "Check a certificate by its public reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()

			result, err := a.service.PublicVerify(args[0]).Fetch(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(result)
		},
	}

	cmd.AddCommand(generate, verify)
	return cmd
}
