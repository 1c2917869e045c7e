package activity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/tasks", r.URL.Path)
		assert.Empty(t, r.URL.Query().Get("project_id"))

		// Numeric and string ids mixed, as the service emits them.
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": 1, "content": "top", "project_id": 100},
			{"id": "2", "content": "sub", "project_id": "100", "parent_id": 1},
			{"id": 3, "content": "sectioned", "project_id": 100, "section_id": 7},
		})
	}))
	defer srv.Close()

	snap, err := BuildSnapshot(context.Background(), newTestClient(t, srv.URL), "")
	require.NoError(t, err)

	assert.Equal(t, 3, snap.Len())
	assert.True(t, snap.Known("1"))
	assert.False(t, snap.Known("99"))

	parent, ok := snap.ParentOf("2")
	require.True(t, ok)
	assert.Equal(t, "1", parent)
	_, ok = snap.ParentOf("1")
	assert.False(t, ok)

	section, ok := snap.SectionOf("3")
	require.True(t, ok)
	assert.Equal(t, "7", section)
	_, ok = snap.SectionOf("1")
	assert.False(t, ok)

	project, ok := snap.ProjectOf("1")
	require.True(t, ok)
	assert.Equal(t, "100", project)
	_, ok = snap.ProjectOf("99")
	assert.False(t, ok)
}

func TestBuildSnapshotScoped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("project_id"))
		_ = json.NewEncoder(w).Encode([]map[string]any{})
	}))
	defer srv.Close()

	snap, err := BuildSnapshot(context.Background(), newTestClient(t, srv.URL), "100")
	require.NoError(t, err)
	assert.Zero(t, snap.Len())
}
