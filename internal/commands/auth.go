package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tdq/tdq/internal/appctx"
	"github.com/tdq/tdq/internal/output"
)

// NewAuthCmd creates the auth command group.
func NewAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage API authentication",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthStatusCmd())

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API token",
		Long: `Store an API token in the system keyring (or a restricted file when no
keyring is available). Pass the token with --token, or pipe it on stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())

			if token == "" {
				stat, _ := os.Stdin.Stat()
				if (stat.Mode() & os.ModeCharDevice) != 0 {
					return output.ErrUsageHint("No token provided",
						"Pass --token <token> or pipe the token on stdin")
				}
				reader := bufio.NewReader(os.Stdin)
				line, _ := reader.ReadString('\n')
				token = strings.TrimSpace(line)
			}
			if token == "" {
				return output.ErrUsage("Empty token")
			}

			if err := app.Auth.Login(token); err != nil {
				return err
			}
			return app.OK(map[string]string{"status": "authenticated"},
				output.WithSummary("Token stored"))
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "API token")

	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			if err := app.Auth.Logout(); err != nil {
				return err
			}
			return app.OK(map[string]string{"status": "logged_out"},
				output.WithSummary("Token removed"))
		},
	}
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())

			source, ok := app.Auth.Status()
			data := map[string]any{
				"authenticated": ok,
				"source":        source,
			}
			summary := "Not authenticated"
			if ok {
				summary = fmt.Sprintf("Authenticated (token from %s)", source)
			}
			return app.OK(data, output.WithSummary(summary))
		},
	}
}
