package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tdq/tdq/internal/appctx"
	"github.com/tdq/tdq/internal/output"
)

// NewHealthCmd creates the health command for per-task analytics.
func NewHealthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health <task_id>",
		Short: "Analyze one task's activity health",
		Long: `Fetch a task's complete event history and compute health indicators:
days since last activity, forward due-date moves with total and average
postponed days, and the longest run of postpones landing within 24 hours
of each other. Threshold breaches surface as status tags.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			taskID := args[0]

			runner := newRunner(app)
			history, indicator, err := runner.TaskHealth(cmd.Context(), taskID)
			if err != nil {
				return err
			}
			if indicator == nil {
				return output.ErrNotFoundHint("task activity", taskID,
					"The task has no recorded events. Check the id with: tdq tasks")
			}

			summary := fmt.Sprintf("Task %s: %d due-date changes, last activity %dd ago",
				taskID, indicator.DueDateChanges, indicator.LastActivityDays)
			if len(indicator.Statuses) > 0 {
				summary += " [" + strings.Join(indicator.Statuses, ", ") + "]"
			}

			data := struct {
				TaskID   string `json:"task_id"`
				Health   any    `json:"health"`
				Events   int    `json:"events"`
				Complete bool   `json:"complete"`
			}{taskID, indicator, len(history.Events), history.Complete}

			opts := append(statsMeta(runner.Stats), output.WithSummary(summary))
			if !history.Complete {
				opts = append(opts, output.WithMeta("partial", true))
			}
			return app.OK(data, opts...)
		},
	}
	return cmd
}
