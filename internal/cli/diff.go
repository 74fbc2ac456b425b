package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lherron/circmerge/internal/circuit"
	"github.com/lherron/circmerge/internal/cli/appctx"
)

var diffCmd = &cobra.Command{
	Use:   "diff <source> <unit> <destination>",
	Short: "Show what copying a circuit would change",
	Long: `Prints a unified diff between the destination's circuit of the same
final name (or nothing) and the circuit that cp would write. Neither file is
modified.

Examples:
  circmerge diff lib.circ Adder project.circ
  circmerge diff lib.circ Adder project.circ --as FullAdder
`,
	Args: cobra.ExactArgs(3),
	RunE: appctx.WithApp(appctx.DefaultOptions(), runDiff),
}

var diffAs string

func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().StringVar(&diffAs, "as", "", "Name the copy would take in the destination")
}

func runDiff(app *appctx.App, cmd *cobra.Command, args []string) error {
	src, srcPath, err := loadDocument(app, args[0])
	if err != nil {
		return err
	}
	dst, _, err := loadDocument(app, args[2])
	if err != nil {
		return err
	}

	req := circuit.Request{Name: args[1], Rename: diffAs}
	diff, err := circuit.Preview(src, dst, req)
	if err != nil {
		return notFoundHint(err, srcPath)
	}

	if diff == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: no changes\n", req)
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), diff)
	return nil
}
