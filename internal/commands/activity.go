package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tdq/tdq/internal/activity"
	"github.com/tdq/tdq/internal/appctx"
	"github.com/tdq/tdq/internal/dateparse"
	"github.com/tdq/tdq/internal/output"
	"github.com/tdq/tdq/internal/report"
)

// NewActivityCmd creates the activity command.
func NewActivityCmd() *cobra.Command {
	var (
		objectType string
		objectID   string
		eventType  string
		since      string
		until      string
		limit      int
		deleted    bool

		project  string
		section  string
		task     string
		children bool

		health bool
		tree   bool
	)

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Aggregate the activity log into a project tree",
		Long: `Fetch activity events and aggregate them into the project hierarchy.

Events are grouped under their projects, sections, and tasks as they are
currently arranged. Subtasks nest under their parent task, comments attach
to the task or project they were posted on, and events whose owner no
longer exists are listed separately rather than dropped.

Use --for-project, --for-section, or --for-task to narrow the output to one
subtree, and --health to annotate each task with postponement analytics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())

			focusFlags := 0
			cmd.Flags().Visit(func(f *pflag.Flag) {
				switch f.Name {
				case "for-project", "for-section", "for-task":
					focusFlags++
				}
			})
			if focusFlags > 1 {
				return output.ErrUsage("--for-project, --for-section, and --for-task are mutually exclusive")
			}
			if children && focusFlags == 0 {
				return output.ErrUsage("--children requires a focus flag")
			}
			if limit < 0 {
				return output.ErrUsage("--limit must be positive")
			}

			focus := activity.Focus{IncludeChildren: children}
			if project != "" {
				id, _, err := app.Names.ResolveProject(cmd.Context(), project)
				if err != nil {
					return err
				}
				focus.ProjectID = id
			}
			focus.SectionID = section
			focus.TaskID = task

			filters := activity.Filters{
				ObjectType:     objectType,
				ObjectID:       objectID,
				EventType:      eventType,
				IncludeDeleted: deleted,
				Limit:          limit,
			}
			if since != "" {
				filters.Since = dateparse.Parse(since)
			}
			if until != "" {
				filters.Until = dateparse.Parse(until)
			}

			runner := newRunner(app)
			result, err := runner.Aggregate(cmd.Context(), activity.Request{
				Filters:    filters,
				Focus:      focus,
				WithHealth: health || tree,
			})
			if err != nil {
				return err
			}

			if tree {
				r := report.New(app.Names, app.StyledOutput())
				if app.Flags.MD {
					return app.Output.Plain(r.Markdown(cmd.Context(), result))
				}
				return app.Output.Plain(r.Render(cmd.Context(), result))
			}

			opts := append(statsMeta(runner.Stats),
				output.WithSummary(fmt.Sprintf("%d events across %d projects",
					result.EventCount(), len(result.Projects))))
			return app.OK(result, opts...)
		},
	}

	cmd.Flags().StringVar(&objectType, "object-type", "", "Filter by object type (project, section, item, note)")
	cmd.Flags().StringVar(&objectID, "object-id", "", "Filter by object ID")
	cmd.Flags().StringVar(&eventType, "event-type", "", "Filter by event type (added, updated, completed, ...)")
	cmd.Flags().StringVar(&since, "since", "", "Only events on or after this date (natural language ok)")
	cmd.Flags().StringVar(&until, "until", "", "Only events before this date (natural language ok)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of events to fetch (0 = all)")
	cmd.Flags().BoolVar(&deleted, "include-deleted", false, "Include events for deleted objects")

	cmd.Flags().StringVar(&project, "for-project", "", "Narrow to one project's subtree (ID or name)")
	cmd.Flags().StringVar(&section, "for-section", "", "Narrow to one section's subtree")
	cmd.Flags().StringVar(&task, "for-task", "", "Narrow to one task's subtree")
	cmd.Flags().BoolVar(&children, "children", false, "Keep the focused object's children in the subtree")

	cmd.Flags().BoolVar(&health, "health", false, "Annotate tasks with health indicators")
	cmd.Flags().BoolVar(&tree, "tree", false, "Render as an indented text report")

	return cmd
}
