package commands

import (
	"github.com/spf13/cobra"

	"github.com/tdq/tdq/internal/appctx"
	"github.com/tdq/tdq/internal/config"
	"github.com/tdq/tdq/internal/output"
)

// NewConfigCmd creates the config command group.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit configuration",
	}

	cmd.AddCommand(newConfigListCmd())
	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigUnsetCmd())

	return cmd
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the resolved configuration and value sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())

			data := map[string]any{
				"base_url":      app.Config.BaseURL,
				"project_id":    app.Config.ProjectID,
				"cache_dir":     app.Config.CacheDir,
				"cache_enabled": app.Config.CacheEnabled,
				"format":        app.Config.Format,
				"health": map[string]any{
					"idle_days":       app.Config.Health.IdleDays,
					"postpone_days":   app.Config.Health.PostponeDays,
					"postpone_streak": app.Config.Health.PostponeStreak,
				},
				"sources": app.Config.Sources,
			}
			return app.OK(data, output.WithSummary("Resolved configuration"))
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Show one configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())

			var value any
			switch args[0] {
			case "base_url":
				value = app.Config.BaseURL
			case "project_id", "project":
				value = app.Config.ProjectID
			case "cache_dir":
				value = app.Config.CacheDir
			case "cache_enabled":
				value = app.Config.CacheEnabled
			case "format":
				value = app.Config.Format
			case "health.idle_days":
				value = app.Config.Health.IdleDays
			case "health.postpone_days":
				value = app.Config.Health.PostponeDays
			case "health.postpone_streak":
				value = app.Config.Health.PostponeStreak
			default:
				return output.ErrNotFound("config key", args[0])
			}
			return app.OK(map[string]any{"key": args[0], "value": value})
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Persist a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if err := config.SetValue(args[0], args[1]); err != nil {
				return output.ErrUsage(err.Error())
			}
			return app.OK(map[string]string{"key": args[0], "value": args[1]},
				output.WithSummary("Set "+args[0]))
		},
	}
}

func newConfigUnsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a persisted configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if err := config.UnsetValue(args[0]); err != nil {
				return output.ErrUsage(err.Error())
			}
			return app.OK(map[string]string{"key": args[0]},
				output.WithSummary("Unset "+args[0]))
		},
	}
}
