package names

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdq/tdq/internal/api"
	"github.com/tdq/tdq/internal/auth"
	"github.com/tdq/tdq/internal/config"
	"github.com/tdq/tdq/internal/output"
)

func newTestResolver(t *testing.T) (*Resolver, *int) {
	t.Helper()
	t.Setenv("TDQ_API_TOKEN", "test-token")
	t.Setenv("TDQ_NO_KEYRING", "1")

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		switch r.URL.Path {
		case "/api/v1/projects":
			_ = json.NewEncoder(w).Encode([]map[string]any{
				{"id": 1, "name": "Work"},
				{"id": 2, "name": "Personal"},
				{"id": 3, "name": "Work Backlog", "parent_id": 1},
				{"id": 4, "name": "side projects"},
				{"id": 5, "name": "Side Projects"},
			})
		case "/api/v1/sections":
			_ = json.NewEncoder(w).Encode([]map[string]any{
				{"id": 10, "name": "Inbox", "project_id": 1},
				{"id": 11, "name": "Done", "project_id": 1},
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

	return NewResolver(api.NewClient(cfg, auth.NewManager(auth.NewStore(t.TempDir())))), &calls
}

func TestResolveProjectExact(t *testing.T) {
	r, _ := newTestResolver(t)

	id, name, err := r.ResolveProject(context.Background(), "Work")
	require.NoError(t, err)
	assert.Equal(t, "1", id)
	assert.Equal(t, "Work", name)
}

func TestResolveProjectIDPassthrough(t *testing.T) {
	r, _ := newTestResolver(t)

	id, name, err := r.ResolveProject(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, "2", id)
	assert.Equal(t, "Personal", name)

	// Unknown numeric id passes through for the API to validate.
	id, name, err = r.ResolveProject(context.Background(), "9999")
	require.NoError(t, err)
	assert.Equal(t, "9999", id)
	assert.Empty(t, name)
}

func TestResolveProjectCaseInsensitive(t *testing.T) {
	r, _ := newTestResolver(t)

	id, _, err := r.ResolveProject(context.Background(), "personal")
	require.NoError(t, err)
	assert.Equal(t, "2", id)
}

func TestResolveProjectPartial(t *testing.T) {
	r, _ := newTestResolver(t)

	id, _, err := r.ResolveProject(context.Background(), "backlog")
	require.NoError(t, err)
	assert.Equal(t, "3", id)
}

func TestResolveProjectExactBeatsCaseMatches(t *testing.T) {
	r, _ := newTestResolver(t)

	// Two projects differ only by case; the exact spelling wins.
	id, _, err := r.ResolveProject(context.Background(), "Side Projects")
	require.NoError(t, err)
	assert.Equal(t, "5", id)
}

func TestResolveProjectAmbiguous(t *testing.T) {
	r, _ := newTestResolver(t)

	_, _, err := r.ResolveProject(context.Background(), "side projectS")
	require.Error(t, err)
	assert.Equal(t, output.CodeAmbiguous, output.AsError(err).Code)
}

func TestResolveProjectNotFoundWithSuggestion(t *testing.T) {
	r, _ := newTestResolver(t)

	_, _, err := r.ResolveProject(context.Background(), "persnal")
	require.Error(t, err)
	apiErr := output.AsError(err)
	assert.Equal(t, output.CodeNotFound, apiErr.Code)
	assert.Contains(t, apiErr.Hint, "Personal")
}

func TestResolveSection(t *testing.T) {
	r, _ := newTestResolver(t)

	id, name, err := r.ResolveSection(context.Background(), "inbox", "1")
	require.NoError(t, err)
	assert.Equal(t, "10", id)
	assert.Equal(t, "Inbox", name)
}

func TestProjectPath(t *testing.T) {
	r, _ := newTestResolver(t)

	assert.Equal(t, "Work / Work Backlog", r.ProjectPath(context.Background(), "3"))
	assert.Equal(t, "Work", r.ProjectPath(context.Background(), "1"))
	assert.Equal(t, "#404", r.ProjectPath(context.Background(), "404"))
}

func TestResolverCachesListings(t *testing.T) {
	r, calls := newTestResolver(t)

	_, _, err := r.ResolveProject(context.Background(), "Work")
	require.NoError(t, err)
	_, _, err = r.ResolveProject(context.Background(), "Personal")
	require.NoError(t, err)
	assert.Equal(t, 1, *calls)

	r.ClearCache()
	_, _, err = r.ResolveProject(context.Background(), "Work")
	require.NoError(t, err)
	assert.Equal(t, 2, *calls)
}
