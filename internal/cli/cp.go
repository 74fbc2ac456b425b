package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lherron/circmerge/internal/circuit"
	"github.com/lherron/circmerge/internal/cli/appctx"
)

var cpCmd = &cobra.Command{
	Use:   "cp <source> <unit> <destination>",
	Short: "Copy one circuit from a source document into a destination",
	Long: `Copies the circuit named <unit> from <source> into <destination>,
replacing any circuit of the same final name. The destination is saved only
when the copy succeeds.

Examples:
  circmerge cp lib.circ Adder project.circ
  circmerge cp lib.circ Adder project.circ --as FullAdder
`,
	Args: cobra.ExactArgs(3),
	RunE: appctx.WithApp(appctx.DefaultOptions(), runCp),
}

var (
	cpAs     string
	cpDryRun bool
	cpJSON   bool
)

func init() {
	rootCmd.AddCommand(cpCmd)
	cpCmd.Flags().StringVar(&cpAs, "as", "", "Name the copy takes in the destination")
	cpCmd.Flags().BoolVar(&cpDryRun, "dry-run", false, "Show what would change without saving")
	cpCmd.Flags().BoolVar(&cpJSON, "json", false, "Output JSON")
}

func runCp(app *appctx.App, cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	src, srcPath, err := loadDocument(app, args[0])
	if err != nil {
		return err
	}

	m, err := openMerge(app, "cp", args[2])
	if err != nil {
		return err
	}
	m.origin = srcPath

	reqs := []circuit.Request{{Name: args[1], Rename: cpAs}}

	if cpDryRun {
		w := cmd.OutOrStdout()
		if cpJSON {
			w = nil
		}
		report, err := m.preview(ctx, src, reqs, w)
		if err != nil {
			return notFoundHint(err, srcPath)
		}
		if cpJSON {
			return writeReport(cmd, report, nil, true)
		}
		return nil
	}

	report, result, err := m.apply(ctx, src, reqs)
	if err != nil {
		return notFoundHint(err, srcPath)
	}
	return writeReport(cmd, report, result, cpJSON)
}

// notFoundHint points at ls when a unit is missing from the source.
func notFoundHint(err error, srcPath string) error {
	if isNotFound(err) {
		return fmt.Errorf("%w (run 'circmerge ls %s' to list units)", err, srcPath)
	}
	return err
}
