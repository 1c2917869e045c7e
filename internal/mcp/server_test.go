package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdq/tdq/internal/api"
	"github.com/tdq/tdq/internal/auth"
	"github.com/tdq/tdq/internal/config"
)

func newTestServer(t *testing.T) (*Server, *int) {
	t.Helper()
	t.Setenv("TDQ_API_TOKEN", "test-token")
	t.Setenv("TDQ_NO_KEYRING", "1")

	var projectCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/projects":
			projectCalls++
			_ = json.NewEncoder(w).Encode([]map[string]any{
				{"id": 1, "name": "Work"},
				{"id": 2, "name": "Personal"},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.BaseURL = srv.URL
	cfg.CacheDir = t.TempDir()
	cfg.CacheEnabled = false

	client := api.NewClient(cfg, auth.NewManager(auth.NewStore(t.TempDir())))
	return New(client, cfg), &projectCalls
}

func findObjectRequest(args map[string]any) mcplib.CallToolRequest {
	req := mcplib.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcplib.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcplib.TextContent)
	require.True(t, ok, "expected text content")
	return tc.Text
}

func TestFindObjectResolvesProject(t *testing.T) {
	s, _ := newTestServer(t)

	res, err := s.handleFindObject(context.Background(), findObjectRequest(map[string]any{
		"name": "Work",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &got))
	assert.Equal(t, "project", got["type"])
	assert.Equal(t, "1", got["id"])
	assert.Equal(t, "Work", got["name"])
}

func TestFindObjectResolverIsPerCall(t *testing.T) {
	s, projectCalls := newTestServer(t)

	// Two tool calls must each hit the listing endpoint: the name cache is
	// scoped to a single call, never shared across calls.
	for i := 0; i < 2; i++ {
		res, err := s.handleFindObject(context.Background(), findObjectRequest(map[string]any{
			"name": "Personal",
		}))
		require.NoError(t, err)
		require.False(t, res.IsError)
	}
	assert.Equal(t, 2, *projectCalls)
}

func TestFindObjectRejectsUnknownType(t *testing.T) {
	s, _ := newTestServer(t)

	res, err := s.handleFindObject(context.Background(), findObjectRequest(map[string]any{
		"name": "Work",
		"type": "item",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
