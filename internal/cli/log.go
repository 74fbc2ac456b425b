package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lherron/circmerge/internal/cli/appctx"
	"github.com/lherron/circmerge/internal/journal"
	"github.com/lherron/circmerge/internal/render"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show recorded runs from the journal",
	Long: `Lists runs recorded in the run journal, newest first.
Requires a journal (--journal or CIRCMERGE_JOURNAL).

Examples:
  circmerge log --journal runs.db
  circmerge log --limit 5 --json
`,
	Args: cobra.NoArgs,
	RunE: appctx.WithApp(appctx.WithJournal(), runLog),
}

var (
	logLimit     int
	logJSON      bool
	logYAML      bool
	logTSV       bool
	logPorcelain bool
)

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 20, "Maximum runs to show (0 for all)")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "Output JSON")
	logCmd.Flags().BoolVar(&logYAML, "yaml", false, "Output YAML")
	logCmd.Flags().BoolVar(&logTSV, "tsv", false, "Output TSV")
	logCmd.Flags().BoolVar(&logPorcelain, "porcelain", false, "Machine-readable output")
}

func runLog(app *appctx.App, cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	opts, err := outputOptions(app, logJSON, logYAML, logTSV, logPorcelain)
	if err != nil {
		return err
	}

	runs, err := app.Journal.List(ctx, logLimit)
	if err != nil {
		return err
	}
	if runs == nil {
		runs = []journal.Run{}
	}

	headers := []string{"ID", "STARTED", "COMMAND", "STATUS", "UNITS", "DESTINATION"}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		names := make([]string, 0, len(run.Entries))
		for _, e := range run.Entries {
			if e.Rename != "" && e.Rename != e.Name {
				names = append(names, e.Name+"->"+e.Rename)
			} else {
				names = append(names, e.Name)
			}
		}
		id := run.ID
		if len(id) > 8 && !opts.Porcelain {
			id = id[:8]
		}
		rows = append(rows, []string{
			id,
			run.StartedAt.Local().Format(time.DateTime),
			run.Command,
			string(run.Status),
			strings.Join(names, ","),
			run.Destination,
		})
	}

	return render.NewRenderer(cmd.OutOrStdout(), opts).Render(runs, headers, rows)
}
