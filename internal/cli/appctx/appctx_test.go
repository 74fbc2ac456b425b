package appctx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func newTestCommand() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Flags().String("journal", "", "Journal path")
	cmd.Flags().String("log-level", "", "Log level")
	return cmd
}

func isolateConfig(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	chdir(t, home)
	t.Setenv("CIRCMERGE_JOURNAL", "")
	t.Setenv("CIRCMERGE_JOURNAL_FILE", "")
	t.Setenv("CIRCMERGE_LOG_LEVEL", "")
	t.Setenv("CIRCMERGE_UNIT_TAG", "")
}

func TestBootstrap_ConfigOnly(t *testing.T) {
	isolateConfig(t)

	app, err := Bootstrap(newTestCommand(), DefaultOptions())
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	defer app.Close()

	if app.Config == nil {
		t.Fatal("Config should not be nil")
	}
	if app.Log == nil {
		t.Error("Log should not be nil")
	}
	if app.FS == nil || app.Remote == nil {
		t.Error("FS and Remote should be set")
	}
	if app.Journal != nil {
		t.Error("Journal should be nil when no path is configured")
	}
}

func TestBootstrap_JournalFromFlag(t *testing.T) {
	isolateConfig(t)
	path := filepath.Join(t.TempDir(), "runs.db")

	cmd := newTestCommand()
	if err := cmd.Flags().Set("journal", path); err != nil {
		t.Fatal(err)
	}

	app, err := Bootstrap(cmd, WithJournal())
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	defer app.Close()

	if app.Journal == nil {
		t.Fatal("Journal should be opened")
	}
	if app.Journal.Path() != path {
		t.Errorf("Journal path = %q, want %q", app.Journal.Path(), path)
	}
}

func TestBootstrap_JournalFromEnv(t *testing.T) {
	isolateConfig(t)
	path := filepath.Join(t.TempDir(), "env.db")
	t.Setenv("CIRCMERGE_JOURNAL", path)

	app, err := Bootstrap(newTestCommand(), DefaultOptions())
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	defer app.Close()

	if app.Journal == nil || app.Journal.Path() != path {
		t.Fatalf("expected journal at %s", path)
	}
}

func TestBootstrap_RequiresJournal(t *testing.T) {
	isolateConfig(t)

	_, err := Bootstrap(newTestCommand(), WithJournal())
	if err == nil {
		t.Fatal("Expected error when journal is not configured")
	}
	if !strings.Contains(err.Error(), "no journal configured") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestBootstrap_BadLogLevel(t *testing.T) {
	isolateConfig(t)

	cmd := newTestCommand()
	if err := cmd.Flags().Set("log-level", "loud"); err != nil {
		t.Fatal(err)
	}

	if _, err := Bootstrap(cmd, DefaultOptions()); err == nil {
		t.Fatal("Expected error for unknown log level")
	}
}

func TestUnitOptions(t *testing.T) {
	app := &App{}
	if opts := app.UnitOptions(); opts != nil {
		t.Errorf("expected no options without config, got %d", len(opts))
	}
}

func TestApp_Close_Multiple(t *testing.T) {
	app := &App{}
	app.Close()
	app.Close()
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it changes
// the working directory and restores it when the test ends.
func chdir(t *testing.T, dir string) {
	t.Helper()
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PWD", dir)
	t.Cleanup(func() {
		if err := os.Chdir(oldwd); err != nil {
			panic("testing: failed to restore working directory: " + err.Error())
		}
	})
}
