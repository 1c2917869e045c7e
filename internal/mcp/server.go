// Package mcp provides an MCP (Model Context Protocol) server exposing
// activity aggregation to AI agents as tools instead of CLI commands.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tdq/tdq/internal/activity"
	"github.com/tdq/tdq/internal/api"
	"github.com/tdq/tdq/internal/config"
	"github.com/tdq/tdq/internal/names"
	"github.com/tdq/tdq/internal/version"
)

// Server wraps the MCP server with the aggregation toolset.
type Server struct {
	mcpServer *server.MCPServer
	client    *api.Client
	cfg       *config.Config
}

// New creates an MCP server over the given API client.
func New(client *api.Client, cfg *config.Config) *Server {
	mcpServer := server.NewMCPServer(
		"tdq",
		version.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcpServer: mcpServer,
		client:    client,
		cfg:       cfg,
	}
	s.registerActivityTreeTool()
	s.registerTaskHealthTool()
	s.registerFindObjectTool()
	return s
}

// ServeStdio starts the server on stdio transport and blocks until the
// client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// runner builds a fresh aggregation runner. Each tool call gets its own so
// no dedup or snapshot state leaks between calls.
func (s *Server) runner() *activity.Runner {
	return activity.NewRunner(s.client, activity.ThresholdsFromConfig(s.cfg.Health))
}

// resolver builds a fresh name resolver per tool call, keeping the name
// cache per-run like the rest of the aggregation state.
func (s *Server) resolver() *names.Resolver {
	return names.NewResolver(s.client)
}

func (s *Server) registerActivityTreeTool() {
	tool := mcp.NewTool("activity_tree",
		mcp.WithDescription("Aggregate the task tracker's activity log into a project/section/task tree. Optionally narrow to one object's subtree and annotate tasks with health indicators."),
		mcp.WithString("object_type",
			mcp.Description("Filter events by object type: project, section, item, or note"),
		),
		mcp.WithString("event_type",
			mcp.Description("Filter events by type: added, updated, completed, uncompleted, deleted, archived, unarchived"),
		),
		mcp.WithString("since",
			mcp.Description("Only events on or after this date (YYYY-MM-DD)"),
		),
		mcp.WithString("until",
			mcp.Description("Only events before this date (YYYY-MM-DD)"),
		),
		mcp.WithString("project_id",
			mcp.Description("Narrow the result to one project's subtree"),
		),
		mcp.WithString("section_id",
			mcp.Description("Narrow the result to one section's subtree"),
		),
		mcp.WithString("task_id",
			mcp.Description("Narrow the result to one task's subtree"),
		),
		mcp.WithBoolean("children",
			mcp.Description("Keep the focused object's children in the subtree"),
		),
		mcp.WithBoolean("health",
			mcp.Description("Annotate each task with health indicators"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of events to fetch (default: all)"),
		),
	)
	s.mcpServer.AddTool(tool, s.handleActivityTree)
}

func (s *Server) handleActivityTree(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	filters := activity.Filters{}
	filters.ObjectType, _ = args["object_type"].(string)
	filters.EventType, _ = args["event_type"].(string)
	filters.Since, _ = args["since"].(string)
	filters.Until, _ = args["until"].(string)
	if l, ok := args["limit"].(float64); ok {
		filters.Limit = int(l)
	}

	focus := activity.Focus{}
	focus.ProjectID, _ = args["project_id"].(string)
	focus.SectionID, _ = args["section_id"].(string)
	focus.TaskID, _ = args["task_id"].(string)
	focus.IncludeChildren, _ = args["children"].(bool)
	health, _ := args["health"].(bool)

	runner := s.runner()
	tree, err := runner.Aggregate(ctx, activity.Request{
		Filters:    filters,
		Focus:      focus,
		WithHealth: health,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"tree":  tree,
		"stats": runner.Stats,
	})
}

func (s *Server) registerTaskHealthTool() {
	tool := mcp.NewTool("task_health",
		mcp.WithDescription("Fetch one task's complete event history and compute health indicators: idle time, due-date postpones, and postpone streaks."),
		mcp.WithString("task_id",
			mcp.Description("Task ID to analyze"),
			mcp.Required(),
		),
	)
	s.mcpServer.AddTool(tool, s.handleTaskHealth)
}

func (s *Server) handleTaskHealth(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID, ok := req.GetArguments()["task_id"].(string)
	if !ok || taskID == "" {
		return mcp.NewToolResultError("task_id parameter is required"), nil
	}

	runner := s.runner()
	history, indicator, err := runner.TaskHealth(ctx, taskID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if indicator == nil {
		return mcp.NewToolResultError(fmt.Sprintf("task %s has no recorded events", taskID)), nil
	}
	return jsonResult(map[string]any{
		"task_id":  taskID,
		"health":   indicator,
		"events":   len(history.Events),
		"complete": history.Complete,
	})
}

func (s *Server) registerFindObjectTool() {
	tool := mcp.NewTool("find_object",
		mcp.WithDescription("Resolve a project or section by name to its ID. Matches exact names first, then case-insensitive, then substring."),
		mcp.WithString("name",
			mcp.Description("Project or section name (or ID, returned as-is)"),
			mcp.Required(),
		),
		mcp.WithString("type",
			mcp.Description("Object type: project (default) or section"),
		),
		mcp.WithString("project_id",
			mcp.Description("Project scope for section lookup"),
		),
	)
	s.mcpServer.AddTool(tool, s.handleFindObject)
}

func (s *Server) handleFindObject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name, ok := args["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("name parameter is required"), nil
	}
	objType, _ := args["type"].(string)
	resolver := s.resolver()

	switch objType {
	case "", "project":
		id, resolved, err := resolver.ResolveProject(ctx, name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(map[string]any{"type": "project", "id": id, "name": resolved})
	case "section":
		projectID, _ := args["project_id"].(string)
		id, resolved, err := resolver.ResolveSection(ctx, name, projectID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(map[string]any{"type": "section", "id": id, "name": resolved})
	default:
		return mcp.NewToolResultError("type must be project or section"), nil
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
