// Package commands implements the CLI subcommands.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/tdq/tdq/internal/activity"
	"github.com/tdq/tdq/internal/appctx"
	"github.com/tdq/tdq/internal/output"
)

// resolveProjectArg resolves a project flag or argument to an id, falling
// back to the global --project flag and then the configured default.
// Returns "" when no project is set anywhere.
func resolveProjectArg(cmd *cobra.Command, app *appctx.App, project string) (string, error) {
	if project == "" {
		project = app.Flags.Project
	}
	if project == "" {
		project = app.Config.ProjectID
	}
	if project == "" {
		return "", nil
	}
	id, _, err := app.Names.ResolveProject(cmd.Context(), project)
	return id, err
}

// newRunner builds an aggregation runner with thresholds from config.
func newRunner(app *appctx.App) *activity.Runner {
	return activity.NewRunner(app.Client, activity.ThresholdsFromConfig(app.Config.Health))
}

// statsMeta converts run stats into response metadata options.
func statsMeta(stats activity.RunStats) []output.ResponseOption {
	opts := []output.ResponseOption{
		output.WithMeta("events", stats.Events),
		output.WithMeta("pages", stats.Pages),
	}
	if stats.Duplicates > 0 {
		opts = append(opts, output.WithMeta("duplicates", stats.Duplicates))
	}
	if stats.HierarchyMisses > 0 {
		opts = append(opts, output.WithMeta("hierarchy_misses", stats.HierarchyMisses))
	}
	if stats.Unroutable > 0 {
		opts = append(opts, output.WithMeta("unroutable", stats.Unroutable))
	}
	return opts
}
