package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdq/tdq/internal/output"
)

func TestTransformCobraError(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantMsg  string
		wantHint string
	}{
		{
			name:    "missing flag value",
			in:      "flag needs an argument: --since",
			wantMsg: "--since requires a value",
		},
		{
			name:    "unknown flag",
			in:      "unknown flag: --bogus",
			wantMsg: "Unknown option: --bogus",
		},
		{
			name:     "unknown command",
			in:       `unknown command "frobnicate" for "tdq"`,
			wantMsg:  `unknown command "frobnicate" for "tdq"`,
			wantHint: "Run: tdq --help",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := transformCobraError(errors.New(tt.in))
			apiErr := output.AsError(got)
			assert.Equal(t, output.CodeUsage, apiErr.Code)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
			assert.Equal(t, tt.wantHint, apiErr.Hint)
			assert.Equal(t, output.ExitUsage, apiErr.ExitCode())
		})
	}
}

func TestTransformCobraErrorPassthrough(t *testing.T) {
	orig := output.ErrNotFound("Project", "x")
	assert.Same(t, orig, transformCobraError(orig))

	plain := errors.New("something else entirely")
	assert.Same(t, plain, transformCobraError(plain))
}

func TestRootCmdFlags(t *testing.T) {
	cmd := NewRootCmd()
	pf := cmd.PersistentFlags()

	for _, name := range []string{
		"json", "quiet", "md", "markdown", "styled", "ids-only", "count",
		"agent", "project", "base-url", "verbose", "cache-dir",
	} {
		assert.NotNil(t, pf.Lookup(name), name)
	}

	// Short forms.
	require.NotNil(t, pf.ShorthandLookup("j"))
	require.NotNil(t, pf.ShorthandLookup("q"))
	require.NotNil(t, pf.ShorthandLookup("m"))
	require.NotNil(t, pf.ShorthandLookup("p"))
	require.NotNil(t, pf.ShorthandLookup("v"))
}
