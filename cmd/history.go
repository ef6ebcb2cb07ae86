package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/desmoke/desmoke/internal/history"
	"github.com/desmoke/desmoke/internal/project"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded extraction runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := GetContext()

		proj, err := project.Find("")
		if err != nil {
			return fmt.Errorf("history needs a project directory: %w", err)
		}

		db, err := history.Open(ctx, proj.HistoryPath())
		if err != nil {
			return err
		}
		defer db.Close()

		runs, err := db.ListRuns(ctx, flagHistoryLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTARTED\tFORMAT\tSOURCE\tDIAGNOSTICS")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
				r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Format, r.Source, r.Count)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "maximum number of runs to list")
}
