package commands

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/tdq/tdq/internal/appctx"
	"github.com/tdq/tdq/internal/models"
	"github.com/tdq/tdq/internal/output"
)

// NewCommentsCmd creates the comments command group.
func NewCommentsCmd() *cobra.Command {
	var task string
	var project string

	cmd := &cobra.Command{
		Use:   "comments",
		Short: "List and add comments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())

			if task == "" && project == "" {
				return output.ErrUsage("Pass --task or --project")
			}
			if task != "" && project != "" {
				return output.ErrUsage("--task and --project are mutually exclusive")
			}

			q := url.Values{}
			if task != "" {
				q.Set("task_id", task)
			} else {
				id, _, err := app.Names.ResolveProject(cmd.Context(), project)
				if err != nil {
					return err
				}
				q.Set("project_id", id)
			}

			resp, err := app.Client.GetQuery(cmd.Context(), "/api/v1/comments", q)
			if err != nil {
				return err
			}
			var comments []models.Comment
			if err := resp.UnmarshalData(&comments); err != nil {
				return output.ErrAPI(resp.StatusCode, "Bad comments response")
			}

			return app.OK(comments,
				output.WithSummary(fmt.Sprintf("%d comments", len(comments))))
		},
	}

	cmd.Flags().StringVar(&task, "task", "", "Task ID")
	cmd.Flags().StringVar(&project, "project", "", "Project ID or name")

	cmd.AddCommand(newCommentAddCmd())

	return cmd
}

func newCommentAddCmd() *cobra.Command {
	var task string
	var project string

	cmd := &cobra.Command{
		Use:   "add <content>",
		Short: "Add a comment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())

			if task == "" && project == "" {
				return output.ErrUsage("Pass --task or --project")
			}

			body := map[string]any{"content": args[0]}
			if task != "" {
				body["task_id"] = task
			} else {
				id, _, err := app.Names.ResolveProject(cmd.Context(), project)
				if err != nil {
					return err
				}
				body["project_id"] = id
			}

			resp, err := app.Client.Post(cmd.Context(), "/api/v1/comments", body)
			if err != nil {
				return err
			}
			var comment models.Comment
			if err := resp.UnmarshalData(&comment); err != nil {
				return output.ErrAPI(resp.StatusCode, "Bad comment response")
			}
			return app.OK(comment, output.WithSummary("Added comment "+comment.ID.String()))
		},
	}

	cmd.Flags().StringVar(&task, "task", "", "Task ID")
	cmd.Flags().StringVar(&project, "project", "", "Project ID or name")

	return cmd
}
