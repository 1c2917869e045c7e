package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"

	"github.com/tdq/tdq/internal/appctx"
	"github.com/tdq/tdq/internal/output"
)

// NewAPICmd creates the api command for raw API access.
func NewAPICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "api <verb> <path>",
		Short: "Raw API access",
		Long:  "Make raw API requests to any endpoint. Useful for operations not covered by dedicated commands.",
	}

	cmd.AddCommand(
		newAPIGetCmd(),
		newAPIPostCmd(),
		newAPIPutCmd(),
		newAPIDeleteCmd(),
	)

	return cmd
}

func newAPIGetCmd() *cobra.Command {
	var jqExpr string

	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "GET request to API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())

			resp, err := app.Client.Get(cmd.Context(), parsePath(args[0]))
			if err != nil {
				return err
			}

			if jqExpr != "" {
				result, err := applyJQ(cmd.Context(), jqExpr, resp.Data)
				if err != nil {
					return err
				}
				return app.OK(result)
			}

			return app.OK(json.RawMessage(resp.Data))
		},
	}

	cmd.Flags().StringVar(&jqExpr, "jq", "", "Filter the response through a jq expression")

	return cmd
}

func newAPIPostCmd() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "post <path>",
		Short: "POST request to API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())

			body, err := parseBody(data)
			if err != nil {
				return err
			}
			resp, err := app.Client.Post(cmd.Context(), parsePath(args[0]), body)
			if err != nil {
				return err
			}
			return app.OK(json.RawMessage(resp.Data),
				output.WithSummary(fmt.Sprintf("POST %s: %d", args[0], resp.StatusCode)))
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body (required)")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func newAPIPutCmd() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "put <path>",
		Short: "PUT request to API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())

			body, err := parseBody(data)
			if err != nil {
				return err
			}
			resp, err := app.Client.Put(cmd.Context(), parsePath(args[0]), body)
			if err != nil {
				return err
			}
			return app.OK(json.RawMessage(resp.Data),
				output.WithSummary(fmt.Sprintf("PUT %s: %d", args[0], resp.StatusCode)))
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body (required)")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func newAPIDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <path>",
		Short: "DELETE request to API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())

			resp, err := app.Client.Delete(cmd.Context(), parsePath(args[0]))
			if err != nil {
				return err
			}
			return app.OK(map[string]any{"status": resp.StatusCode},
				output.WithSummary(fmt.Sprintf("DELETE %s: %d", args[0], resp.StatusCode)))
		},
	}
}

// parsePath normalizes a user-supplied API path to start with a slash.
func parsePath(p string) string {
	if !strings.HasPrefix(p, "/") {
		return "/" + p
	}
	return p
}

func parseBody(data string) (any, error) {
	if data == "" {
		return nil, output.ErrUsage("--data is required")
	}
	var body any
	if err := json.Unmarshal([]byte(data), &body); err != nil {
		return nil, output.ErrUsageHint("Invalid JSON data", fmt.Sprintf("JSON parse error: %v", err))
	}
	return body, nil
}

// applyJQ runs a jq expression over the raw response body. A single result
// is returned bare; multiple results come back as an array.
func applyJQ(ctx context.Context, expr string, raw []byte) (any, error) {
	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, output.ErrUsageHint("Invalid jq expression", err.Error())
	}

	var input any
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, output.ErrAPI(0, "Response is not JSON")
	}

	var results []any
	iter := query.RunWithContext(ctx, input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return nil, output.ErrUsageHint("jq evaluation failed", err.Error())
		}
		results = append(results, v)
	}
	if len(results) == 1 {
		return results[0], nil
	}
	return results, nil
}
