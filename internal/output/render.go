package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	"github.com/muesli/termenv"
)

// Renderer handles styled terminal output.
type Renderer struct {
	width  int
	styled bool // whether to emit ANSI styling

	Summary lipgloss.Style
	Muted   lipgloss.Style
	Key     lipgloss.Style
	Error   lipgloss.Style
	Hint    lipgloss.Style
	Success lipgloss.Style
}

// NewRenderer creates a renderer. Styling is enabled when writing to a TTY,
// or when forceStyled is true. NO_COLOR disables styling regardless.
func NewRenderer(w io.Writer, forceStyled bool) *Renderer {
	width, tty := terminalInfo(w)
	styled := (tty || forceStyled) && os.Getenv("NO_COLOR") == ""

	if styled {
		lipgloss.SetColorProfile(termenv.TrueColor)
	} else {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	return &Renderer{
		width:   width,
		styled:  styled,
		Summary: lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Key:     lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		Hint:    lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("40")),
	}
}

func terminalInfo(w io.Writer) (int, bool) {
	f, ok := w.(*os.File)
	if !ok {
		return 80, false
	}
	if !term.IsTerminal(f.Fd()) {
		return 80, false
	}
	width, _, err := term.GetSize(f.Fd())
	if err != nil || width <= 0 {
		return 80, true
	}
	return width, true
}

// RenderResponse renders a success envelope for humans.
func (r *Renderer) RenderResponse(w io.Writer, resp *Response) error {
	if resp.Summary != "" {
		fmt.Fprintln(w, r.Summary.Render(resp.Summary))
	}

	if resp.Data != nil {
		if err := r.renderData(w, resp.Data); err != nil {
			return err
		}
	}

	if len(resp.Meta) > 0 {
		fmt.Fprintln(w, r.Muted.Render(metaLine(resp.Meta)))
	}

	for _, bc := range resp.Breadcrumbs {
		fmt.Fprintln(w, r.Muted.Render(fmt.Sprintf("→ %s  %s", bc.Cmd, bc.Description)))
	}
	return nil
}

// RenderError renders an error envelope for humans.
func (r *Renderer) RenderError(w io.Writer, resp *ErrorResponse) error {
	fmt.Fprintln(w, r.Error.Render("Error: ")+resp.Error)
	if resp.Hint != "" {
		fmt.Fprintln(w, r.Hint.Render("Hint: ")+resp.Hint)
	}
	return nil
}

// RenderResponseMarkdown renders the envelope as literal Markdown.
func (r *Renderer) RenderResponseMarkdown(w io.Writer, resp *Response) error {
	if resp.Summary != "" {
		fmt.Fprintf(w, "**%s**\n\n", resp.Summary)
	}
	if resp.Data != nil {
		data, err := json.MarshalIndent(resp.Data, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "```json\n%s\n```\n", data)
	}
	for _, bc := range resp.Breadcrumbs {
		fmt.Fprintf(w, "- `%s` — %s\n", bc.Cmd, bc.Description)
	}
	return nil
}

// RenderErrorMarkdown renders an error envelope as literal Markdown.
func (r *Renderer) RenderErrorMarkdown(w io.Writer, resp *ErrorResponse) error {
	fmt.Fprintf(w, "**Error:** %s\n", resp.Error)
	if resp.Hint != "" {
		fmt.Fprintf(w, "**Hint:** %s\n", resp.Hint)
	}
	return nil
}

// renderData renders the data payload. A string passes through as-is (the
// report renderer produces preformatted trees); everything else prints as
// indented JSON.
func (r *Renderer) renderData(w io.Writer, data any) error {
	if s, ok := data.(string); ok {
		fmt.Fprintln(w, s)
		return nil
	}
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(b))
	return nil
}

func metaLine(meta map[string]any) string {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, meta[k]))
	}
	return strings.Join(parts, "  ")
}
