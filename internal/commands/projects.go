package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tdq/tdq/internal/appctx"
	"github.com/tdq/tdq/internal/models"
	"github.com/tdq/tdq/internal/output"
)

// NewProjectsCmd creates the projects command.
func NewProjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())

			resp, err := app.Client.Get(cmd.Context(), "/api/v1/projects")
			if err != nil {
				return err
			}
			var projects []models.Project
			if err := resp.UnmarshalData(&projects); err != nil {
				return output.ErrAPI(resp.StatusCode, "Bad projects response")
			}

			return app.OK(projects,
				output.WithSummary(fmt.Sprintf("%d projects", len(projects))),
				output.WithBreadcrumbs(output.Breadcrumb{
					Action:      "activity",
					Cmd:         "tdq activity --for-project <id>",
					Description: "View a project's activity tree",
				}))
		},
	}
	return cmd
}
