package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lherron/circmerge/internal/circuit"
	"github.com/lherron/circmerge/internal/cli/appctx"
	"github.com/lherron/circmerge/internal/menu"
	"github.com/lherron/circmerge/internal/paths"
	"github.com/lherron/circmerge/internal/source"
)

const destinationPrompt = "Please enter the .circ file path that you want to insert to (destination): "

var importCmd = &cobra.Command{
	Use:   "import [destination]",
	Short: "Import circuits from the library into a project",
	Long: `Copies circuits from the circuit library into a destination project.

Without --unit the selection menu is shown. Picking a menu entry copies its
circuits from the library; the manual-copy entry asks for a source file and
a circuit name instead. The destination is asked for when not given.

The library is the --from file, else the configured local copy, else the
configured URL. Units given with --unit may be glob patterns.

Examples:
  circmerge import project.circ
  circmerge import project.circ -u "ALU*" -u Register
  circmerge import project.circ -u Adder --rename Adder=Adder2 --dry-run
`,
	Args: cobra.MaximumNArgs(1),
	RunE: appctx.WithApp(appctx.DefaultOptions(), runImport),
}

var (
	importUnits   []string
	importFrom    string
	importMenu    string
	importRenames []string
	importDryRun  bool
	importJSON    bool
)

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringArrayVarP(&importUnits, "unit", "u", nil, "Unit to import, may be a glob (repeatable; skips the menu)")
	importCmd.Flags().StringVar(&importFrom, "from", "", "Source document (default: configured library)")
	importCmd.Flags().StringVar(&importMenu, "menu", "", "Menu definition file (default: configured menu)")
	importCmd.Flags().StringArrayVar(&importRenames, "rename", nil, "Rename a unit on import as old=new (repeatable)")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Show what would change without saving")
	importCmd.Flags().BoolVar(&importJSON, "json", false, "Output JSON")
}

func runImport(app *appctx.App, cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	renames, err := parseRenames(importRenames)
	if err != nil {
		return err
	}

	var destination string
	if len(args) > 0 {
		destination = args[0]
	} else {
		destination, err = prompt(in, out, destinationPrompt)
		if err != nil {
			return err
		}
	}

	m, err := openMerge(app, "import", destination)
	if err != nil {
		return err
	}

	var (
		src   *circuit.Document
		names []string
	)
	if len(importUnits) > 0 {
		src, m.origin, err = loadLibrary(ctx, app, importFrom)
		if err != nil {
			return err
		}
		var unmatched []string
		names, unmatched = paths.ExpandGlobs(importUnits, src.Names())
		if len(unmatched) > 0 {
			return fmt.Errorf("no units match %s", strings.Join(unmatched, ", "))
		}
	} else {
		mn, err := loadMenu(ctx, app, importMenu)
		if err != nil {
			return err
		}
		sel, err := mn.Run(in, out)
		if err != nil {
			return err
		}
		app.Log.Debug("menu selection", zap.Strings("path", sel.Path), zap.Strings("names", sel.Names))

		if sel.Manual {
			src, m.origin, names, err = promptManualCopy(app, in, cmd)
			if err != nil {
				return err
			}
			m.command = "import:" + menu.ManualDirective
		} else {
			src, m.origin, err = loadLibrary(ctx, app, importFrom)
			if err != nil {
				return err
			}
			names = sel.Names
		}
	}

	reqs, err := buildRequests(names, renames)
	if err != nil {
		return err
	}

	if importDryRun {
		w := out
		if importJSON {
			w = nil
		}
		report, err := m.preview(ctx, src, reqs, w)
		if err != nil {
			return err
		}
		if importJSON {
			return writeReport(cmd, report, nil, true)
		}
		return nil
	}

	report, result, err := m.apply(ctx, src, reqs)
	if err != nil {
		writeFailure(cmd, result, importJSON)
		return err
	}
	return writeReport(cmd, report, result, importJSON)
}

// promptManualCopy asks for a source document and one unit name.
func promptManualCopy(app *appctx.App, in *bufio.Reader, cmd *cobra.Command) (*circuit.Document, string, []string, error) {
	out := cmd.OutOrStdout()

	rawSource, err := prompt(in, out, "Source .circ: ")
	if err != nil {
		return nil, "", nil, err
	}
	name, err := prompt(in, out, "Circuit Name: ")
	if err != nil {
		return nil, "", nil, err
	}

	src, path, err := loadDocument(app, rawSource)
	if err != nil {
		return nil, "", nil, err
	}
	return src, path, []string{name}, nil
}

// loadMenu reads the menu from file when set, else the configured menu
// (local copy, then download).
func loadMenu(ctx context.Context, app *appctx.App, file string) (*menu.Menu, error) {
	var data []byte
	if file != "" {
		path, err := paths.Sanitize(app.FS, file)
		if err != nil {
			return nil, err
		}
		content, err := source.New(app.FS, app.Remote, path, "").Fetch(ctx)
		if err != nil {
			return nil, err
		}
		data = content.Data
	} else {
		content, err := source.New(app.FS, app.Remote, app.Config.Menu, app.Config.MenuURL).Fetch(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load menu: %w", err)
		}
		app.Log.Debug("menu loaded", zap.String("origin", content.Origin))
		data = content.Data
	}
	return menu.Parse(data)
}
