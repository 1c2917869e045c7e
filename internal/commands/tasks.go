package commands

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/tdq/tdq/internal/appctx"
	"github.com/tdq/tdq/internal/dateparse"
	"github.com/tdq/tdq/internal/models"
	"github.com/tdq/tdq/internal/output"
)

// NewTasksCmd creates the tasks command group.
func NewTasksCmd() *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List and manage tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())

			projectID, err := resolveProjectArg(cmd, app, project)
			if err != nil {
				return err
			}

			q := url.Values{}
			if projectID != "" {
				q.Set("project_id", projectID)
			}
			resp, err := app.Client.GetQuery(cmd.Context(), "/api/v1/tasks", q)
			if err != nil {
				return err
			}
			var tasks []models.Task
			if err := resp.UnmarshalData(&tasks); err != nil {
				return output.ErrAPI(resp.StatusCode, "Bad tasks response")
			}

			return app.OK(tasks,
				output.WithSummary(fmt.Sprintf("%d tasks", len(tasks))),
				output.WithBreadcrumbs(output.Breadcrumb{
					Action:      "health",
					Cmd:         "tdq health <task_id>",
					Description: "Analyze a task's activity health",
				}))
		},
	}

	cmd.Flags().StringVar(&project, "in", "", "Project ID or name")

	cmd.AddCommand(newTaskAddCmd())
	cmd.AddCommand(newTaskUpdateCmd())
	cmd.AddCommand(newTaskCloseCmd())
	cmd.AddCommand(newTaskReopenCmd())

	return cmd
}

func newTaskAddCmd() *cobra.Command {
	var (
		project  string
		section  string
		parent   string
		due      string
		priority int
	)

	cmd := &cobra.Command{
		Use:   "add <content>",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())

			body := map[string]any{"content": args[0]}
			if project != "" {
				id, _, err := app.Names.ResolveProject(cmd.Context(), project)
				if err != nil {
					return err
				}
				body["project_id"] = id
			}
			if section != "" {
				body["section_id"] = section
			}
			if parent != "" {
				body["parent_id"] = parent
			}
			if due != "" {
				body["due_date"] = dateparse.Parse(due)
			}
			if priority != 0 {
				if priority < 1 || priority > 4 {
					return output.ErrUsage("--priority must be 1-4")
				}
				body["priority"] = priority
			}

			resp, err := app.Client.Post(cmd.Context(), "/api/v1/tasks", body)
			if err != nil {
				return err
			}
			var task models.Task
			if err := resp.UnmarshalData(&task); err != nil {
				return output.ErrAPI(resp.StatusCode, "Bad task response")
			}
			return app.OK(task, output.WithSummary("Created task "+task.ID.String()))
		},
	}

	cmd.Flags().StringVar(&project, "in", "", "Project ID or name")
	cmd.Flags().StringVar(&section, "section", "", "Section ID")
	cmd.Flags().StringVar(&parent, "parent", "", "Parent task ID (creates a subtask)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (natural language ok)")
	cmd.Flags().IntVar(&priority, "priority", 0, "Priority 1-4")

	return cmd
}

func newTaskUpdateCmd() *cobra.Command {
	var (
		content  string
		due      string
		priority int
	)

	cmd := &cobra.Command{
		Use:   "update <task_id>",
		Short: "Update a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())

			body := map[string]any{}
			if content != "" {
				body["content"] = content
			}
			if due != "" {
				body["due_date"] = dateparse.Parse(due)
			}
			if priority != 0 {
				if priority < 1 || priority > 4 {
					return output.ErrUsage("--priority must be 1-4")
				}
				body["priority"] = priority
			}
			if len(body) == 0 {
				return output.ErrUsage("Nothing to update; pass --content, --due, or --priority")
			}

			resp, err := app.Client.Put(cmd.Context(), "/api/v1/tasks/"+args[0], body)
			if err != nil {
				return err
			}
			var task models.Task
			if err := resp.UnmarshalData(&task); err != nil {
				return output.ErrAPI(resp.StatusCode, "Bad task response")
			}
			return app.OK(task, output.WithSummary("Updated task "+args[0]))
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "New task content")
	cmd.Flags().StringVar(&due, "due", "", "New due date (natural language ok)")
	cmd.Flags().IntVar(&priority, "priority", 0, "New priority 1-4")

	return cmd
}

func newTaskCloseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close <task_id>",
		Short: "Complete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if _, err := app.Client.Post(cmd.Context(), "/api/v1/tasks/"+args[0]+"/close", nil); err != nil {
				return err
			}
			return app.OK(map[string]string{"id": args[0]},
				output.WithSummary(fmt.Sprintf("Completed task %s", args[0])))
		},
	}
}

func newTaskReopenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reopen <task_id>",
		Short: "Reopen a completed task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if _, err := app.Client.Post(cmd.Context(), "/api/v1/tasks/"+args[0]+"/reopen", nil); err != nil {
				return err
			}
			return app.OK(map[string]string{"id": args[0]},
				output.WithSummary(fmt.Sprintf("Reopened task %s", args[0])))
		},
	}
}
