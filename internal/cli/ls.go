package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lherron/circmerge/internal/circuit"
	"github.com/lherron/circmerge/internal/cli/appctx"
	"github.com/lherron/circmerge/internal/paths"
	"github.com/lherron/circmerge/internal/render"
)

var lsCmd = &cobra.Command{
	Use:   "ls <document> [pattern...]",
	Short: "List the circuits in a document",
	Long: `Lists the named circuits of a document in document order.
Optional glob patterns narrow the listing. Duplicate names are reported
as warnings.

With --menu the listing follows the menu's entries instead and marks the
ones the document lacks; the command then fails if any are missing.

Examples:
  circmerge ls project.circ
  circmerge ls lib.circ "ALU*" --porcelain
  circmerge ls master.circ --menu select_options.json
`,
	Args: cobra.MinimumNArgs(1),
	RunE: appctx.WithApp(appctx.DefaultOptions(), runLs),
}

var (
	lsJSON      bool
	lsYAML      bool
	lsTSV       bool
	lsPorcelain bool
	lsMenu      string
)

func init() {
	rootCmd.AddCommand(lsCmd)
	lsCmd.Flags().BoolVar(&lsJSON, "json", false, "Output JSON")
	lsCmd.Flags().BoolVar(&lsYAML, "yaml", false, "Output YAML")
	lsCmd.Flags().BoolVar(&lsTSV, "tsv", false, "Output TSV")
	lsCmd.Flags().BoolVar(&lsPorcelain, "porcelain", false, "Machine-readable output")
	lsCmd.Flags().StringVar(&lsMenu, "menu", "", "Check a menu definition's units against the document")
}

type unitEntry struct {
	Name     string `json:"name" yaml:"name"`
	Elements int    `json:"elements" yaml:"elements"`
	Missing  bool   `json:"missing,omitempty" yaml:"missing,omitempty"`
}

func runLs(app *appctx.App, cmd *cobra.Command, args []string) error {
	doc, _, err := loadDocument(app, args[0])
	if err != nil {
		return err
	}

	opts, err := outputOptions(app, lsJSON, lsYAML, lsTSV, lsPorcelain)
	if err != nil {
		return err
	}

	if lsMenu != "" {
		return runLsMenu(app, cmd, doc, opts)
	}

	patterns := args[1:]
	entries := []unitEntry{}
	for _, unit := range doc.Units() {
		if len(patterns) > 0 && !matchesAny(patterns, unit.Name()) {
			continue
		}
		entries = append(entries, unitEntry{Name: unit.Name(), Elements: unit.Len()})
	}

	headers := []string{"NAME", "ELEMENTS"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Name, strconv.Itoa(e.Elements)})
	}

	return render.NewRenderer(cmd.OutOrStdout(), opts).Render(entries, headers, rows)
}

// runLsMenu lists every unit the menu can select, marking those the
// document does not hold.
func runLsMenu(app *appctx.App, cmd *cobra.Command, doc *circuit.Document, opts render.Options) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	mn, err := loadMenu(ctx, app, lsMenu)
	if err != nil {
		return err
	}

	entries := []unitEntry{}
	rows := [][]string{}
	missing := 0
	for _, name := range mn.Leaves() {
		entry := unitEntry{Name: name}
		status := "ok"
		if unit, ok := doc.Find(name); ok {
			entry.Elements = unit.Len()
		} else {
			entry.Missing = true
			status = "missing"
			missing++
			app.Log.Warn("menu entry not in document", zap.String("name", name))
		}
		entries = append(entries, entry)
		rows = append(rows, []string{name, strconv.Itoa(entry.Elements), status})
	}

	r := render.NewRenderer(cmd.OutOrStdout(), opts)
	if err := r.Render(entries, []string{"NAME", "ELEMENTS", "STATUS"}, rows); err != nil {
		return err
	}
	if missing > 0 {
		return fmt.Errorf("%d of %d menu entries missing from the document", missing, len(entries))
	}
	return nil
}

func matchesAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if p == name || paths.MatchGlob(p, name) {
			return true
		}
	}
	return false
}
