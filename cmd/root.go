package cmd

import (
	"context"

	"github.com/spf13/cobra"

	dsignal "github.com/desmoke/desmoke/internal/signal"
)

var (
	// rootCtx holds the signal-cancellable context for the application
	rootCtx    context.Context
	rootCancel context.CancelFunc

	flagSummary  bool
	flagOnly     bool
	flagFiletype string
	flagFollow   bool
	flagNoColor  bool
)

var rootCmd = &cobra.Command{
	Use:   "desmoke [file]",
	Short: "Prettify resmoke and C++ unit test output",
	Long: `desmoke reads MongoDB test logs, reassembles the multi-line failure
reports scattered through them, and prints one compiler-style diagnostic per
failure:

    jstests/foo.js:10:5: error: assert equals failed: <no message>: 1 != 2

Input comes from a file argument or from stdin, so it can sit at the end of a
pipe:

    ./buildscripts/resmoke.py run jstests/foo.js | desmoke`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		rootCtx, rootCancel = dsignal.WithSignalCancel(context.Background())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if rootCancel != nil {
			rootCancel()
		}
	},
	RunE: runProcess,
}

func Execute() error {
	return rootCmd.Execute()
}

// GetContext returns the root context that is cancelled on SIGINT/SIGTERM.
func GetContext() context.Context {
	if rootCtx == nil {
		return context.Background()
	}
	return rootCtx
}

func init() {
	rootCmd.Flags().BoolVar(&flagSummary, "summary", false, "report a summary at the end of the output")
	rootCmd.Flags().BoolVar(&flagOnly, "only", false, "only print diagnostics, without forwarding the input")
	rootCmd.Flags().StringVar(&flagFiletype, "filetype", "", "force a log format (resmoke or cppunit) instead of sniffing the first line")
	rootCmd.Flags().BoolVar(&flagFollow, "follow", false, "keep reading as the input file grows")
	rootCmd.Flags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")
	rootCmd.MarkFlagsMutuallyExclusive("summary", "only")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(browseCmd)
}
