package output

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorStringIncludesHint(t *testing.T) {
	e := ErrUsageHint("Missing project", "Use --project")
	assert.Equal(t, "Missing project: Use --project", e.Error())

	e = ErrUsage("Missing project")
	assert.Equal(t, "Missing project", e.Error())
}

func TestExitCodeMapping(t *testing.T) {
	tests := []struct {
		code string
		exit int
	}{
		{CodeUsage, ExitUsage},
		{CodeNotFound, ExitNotFound},
		{CodeAuth, ExitAuth},
		{CodeForbidden, ExitForbidden},
		{CodeRateLimit, ExitRateLimit},
		{CodeNetwork, ExitNetwork},
		{CodeAPI, ExitAPI},
		{CodeAmbiguous, ExitAmbiguous},
		{"something_else", ExitAPI},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.exit, ExitCodeFor(tt.code), tt.code)
	}
}

func TestConstructors(t *testing.T) {
	e := ErrNotFound("Project", "roadmap")
	assert.Equal(t, CodeNotFound, e.Code)
	assert.Equal(t, "Project not found: roadmap", e.Message)
	assert.Equal(t, ExitNotFound, e.ExitCode())

	e = ErrAuth("No API token found")
	assert.Equal(t, CodeAuth, e.Code)
	assert.Contains(t, e.Hint, "tdq auth login")

	e = ErrRateLimit(30)
	assert.True(t, e.Retryable)
	assert.Equal(t, "Try again in 30 seconds", e.Hint)

	e = ErrRateLimit(0)
	assert.Equal(t, "Try again later", e.Hint)

	e = ErrAPI(500, "Internal error")
	assert.Equal(t, 500, e.HTTPStatus)
	assert.False(t, e.Retryable)
}

func TestErrAmbiguousHint(t *testing.T) {
	e := ErrAmbiguous("project name", []string{"Work", "Workout"})
	assert.Equal(t, CodeAmbiguous, e.Code)
	assert.Contains(t, e.Hint, "Work")
	assert.Contains(t, e.Hint, "Workout")

	// Too many matches falls back to a generic hint.
	many := make([]string, 6)
	for i := range many {
		many[i] = fmt.Sprintf("p%d", i)
	}
	e = ErrAmbiguous("project name", many)
	assert.Equal(t, "Be more specific", e.Hint)
}

func TestErrNetworkWraps(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	e := ErrNetwork(cause)
	assert.True(t, e.Retryable)
	assert.ErrorIs(t, e, cause)
}

func TestAsErrorPassthrough(t *testing.T) {
	orig := ErrForbidden("Access denied")
	got := AsError(fmt.Errorf("request failed: %w", orig))
	require.Same(t, orig, got)
}

func TestAsErrorWrapsPlainErrors(t *testing.T) {
	got := AsError(errors.New("boom"))
	assert.Equal(t, CodeAPI, got.Code)
	assert.Equal(t, "boom", got.Message)
	assert.Equal(t, ExitAPI, got.ExitCode())
}
