// Package appctx provides application context helpers.
package appctx

import (
	"context"
	"os"
	"strconv"

	"github.com/tdq/tdq/internal/api"
	"github.com/tdq/tdq/internal/auth"
	"github.com/tdq/tdq/internal/config"
	"github.com/tdq/tdq/internal/names"
	"github.com/tdq/tdq/internal/output"
)

// contextKey is a private type for context keys.
type contextKey string

const appKey contextKey = "app"

// App holds the shared application context for all commands.
type App struct {
	Config *config.Config
	Auth   *auth.Manager
	Client *api.Client
	Names  *names.Resolver
	Output *output.Writer

	// Flags holds the global flag values
	Flags GlobalFlags
}

// GlobalFlags holds values for global CLI flags.
type GlobalFlags struct {
	// Output format flags
	JSON    bool
	Quiet   bool
	MD      bool // Literal Markdown syntax output
	Styled  bool // Force ANSI styled output (even when piped)
	IDsOnly bool
	Count   bool
	Agent   bool

	// Context flags
	Project string
	BaseURL string

	// Behavior flags
	Verbose  int // 0=off, 1=operations, 2=operations+requests (stacks with -v -v or -vv)
	CacheDir string
}

// NewApp creates a new App with the given configuration.
func NewApp(cfg *config.Config) *App {
	store := auth.NewStore(config.GlobalConfigDir())
	authMgr := auth.NewManager(store)
	client := api.NewClient(cfg, authMgr)
	resolver := names.NewResolver(client)

	format := output.FormatAuto
	switch cfg.Format {
	case "json":
		format = output.FormatJSON
	case "markdown", "md":
		format = output.FormatMarkdown
	case "quiet":
		format = output.FormatQuiet
	}

	return &App{
		Config: cfg,
		Auth:   authMgr,
		Client: client,
		Names:  resolver,
		Output: output.New(output.Options{
			Format: format,
			Writer: os.Stdout,
		}),
	}
}

// ApplyFlags applies global flag values to the app configuration.
func (a *App) ApplyFlags() {
	// Order matters: specific machine modes win over format modes.
	switch {
	case a.Flags.Agent:
		// Agent mode = quiet JSON (data only, no envelope)
		a.Output = output.New(output.Options{Format: output.FormatQuiet, Writer: os.Stdout})
	case a.Flags.IDsOnly:
		a.Output = output.New(output.Options{Format: output.FormatIDs, Writer: os.Stdout})
	case a.Flags.Count:
		a.Output = output.New(output.Options{Format: output.FormatCount, Writer: os.Stdout})
	case a.Flags.Quiet:
		a.Output = output.New(output.Options{Format: output.FormatQuiet, Writer: os.Stdout})
	case a.Flags.JSON:
		a.Output = output.New(output.Options{Format: output.FormatJSON, Writer: os.Stdout})
	case a.Flags.Styled:
		a.Output = output.New(output.Options{Format: output.FormatStyled, Writer: os.Stdout})
	case a.Flags.MD:
		a.Output = output.New(output.Options{Format: output.FormatMarkdown, Writer: os.Stdout})
	}

	// TDQ_DEBUG can be "1", "2", or "true" (treated as 2 for full debug)
	verboseLevel := a.Flags.Verbose
	if debugEnv := os.Getenv("TDQ_DEBUG"); debugEnv != "" {
		if level, err := strconv.Atoi(debugEnv); err == nil {
			if level > verboseLevel {
				verboseLevel = level
			}
		} else if debugEnv == "true" {
			verboseLevel = 2
		}
	}
	if verboseLevel >= 2 {
		a.Client.SetVerbose(true)
	}
}

// OK outputs a success response.
func (a *App) OK(data any, opts ...output.ResponseOption) error {
	return a.Output.OK(data, opts...)
}

// Err outputs an error response.
func (a *App) Err(err error) error {
	return a.Output.Err(err)
}

// StyledOutput reports whether rendered text output should carry ANSI styling.
func (a *App) StyledOutput() bool {
	return a.Flags.Styled || a.Output.TTY()
}

// WithApp returns a new context carrying the app.
func WithApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, appKey, app)
}

// FromContext retrieves the app from the context. Returns nil if absent.
func FromContext(ctx context.Context) *App {
	if app, ok := ctx.Value(appKey).(*App); ok {
		return app
	}
	return nil
}
