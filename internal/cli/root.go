package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "circmerge",
	Short: "Copy named circuits between circuit XML documents",
	Long: `circmerge copies, renames and replaces named <circuit> units from a
source library into a destination project file. It can run the interactive
import menu or act as a pipe-friendly set of commands (cp, ls, diff, log).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("journal", "", "Path to run journal database (overrides CIRCMERGE_JOURNAL)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error, none (overrides CIRCMERGE_LOG_LEVEL)")
}
