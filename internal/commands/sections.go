package commands

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/tdq/tdq/internal/appctx"
	"github.com/tdq/tdq/internal/models"
	"github.com/tdq/tdq/internal/output"
)

// NewSectionsCmd creates the sections command.
func NewSectionsCmd() *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "sections",
		Short: "List sections",
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
			resp, err := app.Client.GetQuery(cmd.Context(), "/api/v1/sections", q)
			if err != nil {
				return err
			}
			var sections []models.Section
			if err := resp.UnmarshalData(&sections); err != nil {
				return output.ErrAPI(resp.StatusCode, "Bad sections response")
			}

			return app.OK(sections,
				output.WithSummary(fmt.Sprintf("%d sections", len(sections))))
		},
	}

	cmd.Flags().StringVar(&project, "in", "", "Project ID or name")

	return cmd
}
