package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRendererColorProfile(t *testing.T) {
	t.Setenv("NO_COLOR", "")

	var buf bytes.Buffer

	// Forced styling selects a color-capable profile: styles emit ANSI.
	styled := NewRenderer(&buf, true)
	assert.Contains(t, styled.Error.Render("boom"), "\x1b[")

	// A non-TTY writer without forcing gets the Ascii profile: the same
	// styles render as plain text.
	plain := NewRenderer(&buf, false)
	assert.Equal(t, "boom", plain.Error.Render("boom"))
}

func TestNewRendererHonorsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	r := NewRenderer(&buf, true)
	assert.Equal(t, "boom", r.Error.Render("boom"))
}
