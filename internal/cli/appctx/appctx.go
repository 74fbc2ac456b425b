// Package appctx provides a shared bootstrap helper for CLI commands.
// It centralizes config loading, logger setup, filesystem access and the
// optional run journal to reduce boilerplate across commands.
package appctx

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/viant/afs"
	"go.uber.org/zap"

	"github.com/lherron/circmerge/internal/circuit"
	"github.com/lherron/circmerge/internal/config"
	"github.com/lherron/circmerge/internal/journal"
	"github.com/lherron/circmerge/internal/logging"
)

// App holds the shared application context for commands.
type App struct {
	// Config is the loaded configuration
	Config *config.Config

	// Log receives diagnostics; user-facing output goes to the command
	Log *zap.Logger

	// FS is where circuit documents are read and written
	FS afero.Fs

	// Remote fetches default inputs that have no local copy
	Remote afs.Service

	// Journal records runs (nil unless a journal path is configured)
	Journal *journal.Journal
}

// Close releases resources held by the App.
// Safe to call multiple times.
func (a *App) Close() {
	if a.Journal != nil {
		a.Journal.Close()
		a.Journal = nil
	}
	if a.Log != nil {
		_ = a.Log.Sync()
	}
}

// UnitOptions returns the document options implied by the config.
func (a *App) UnitOptions() []circuit.Option {
	if a.Config == nil || a.Config.UnitTag == "" {
		return nil
	}
	return []circuit.Option{circuit.WithUnitTag(a.Config.UnitTag)}
}

// Options configures the bootstrap behavior.
type Options struct {
	// NeedsJournal fails the bootstrap when no journal path is configured.
	// Without it the journal is opened only when a path is set.
	NeedsJournal bool
}

// DefaultOptions returns default options (journal optional).
func DefaultOptions() Options {
	return Options{}
}

// WithJournal returns options that require the run journal.
func WithJournal() Options {
	return Options{NeedsJournal: true}
}

// RunFunc is the signature for command run functions.
type RunFunc func(app *App, cmd *cobra.Command, args []string) error

// WithApp wraps a command's run function with shared bootstrap logic.
// The journal is closed automatically when the wrapped function returns.
func WithApp(opts Options, fn RunFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := Bootstrap(cmd, opts)
		if err != nil {
			return err
		}
		defer app.Close()

		return fn(app, cmd, args)
	}
}

// Bootstrap initializes the App according to the given options.
// Callers are responsible for calling App.Close() when done.
func Bootstrap(cmd *cobra.Command, opts Options) (*App, error) {
	app := &App{
		FS: afero.NewOsFs(),
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	if journalFlag := cmd.Flag("journal"); journalFlag != nil {
		if path := journalFlag.Value.String(); path != "" {
			app.Config.JournalPath = path
		}
	}
	if levelFlag := cmd.Flag("log-level"); levelFlag != nil {
		if level := levelFlag.Value.String(); level != "" {
			app.Config.LogLevel = level
		}
	}

	logger, err := logging.GetLogger(app.Config.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	app.Log = logger
	app.Remote = afs.New()

	if app.Config.JournalPath == "" {
		if opts.NeedsJournal {
			return nil, fmt.Errorf("no journal configured (set CIRCMERGE_JOURNAL or use --journal flag)")
		}
		return app, nil
	}

	j, err := journal.Open(app.Config.JournalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	app.Journal = j
	logger.Debug("journal opened", zap.String("path", j.Path()))

	return app, nil
}
