package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/desmoke/desmoke/internal/history"
	"github.com/desmoke/desmoke/internal/project"
	"github.com/desmoke/desmoke/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse [run-id]",
	Short: "Browse a recorded run's diagnostics interactively",
	Long: `Opens an interactive browser over one recorded extraction run. Without an
argument the most recent run is shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := GetContext()

		proj, err := project.Find("")
		if err != nil {
			return fmt.Errorf("browse needs a project directory: %w", err)
		}

		db, err := history.Open(ctx, proj.HistoryPath())
		if err != nil {
			return err
		}
		defer db.Close()

		var run *history.Run
		if len(args) == 1 {
			run, err = db.GetRun(ctx, args[0])
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("no run with id %s", args[0])
			}
		} else {
			run, err = db.LatestRun(ctx)
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("no runs recorded yet")
			}
		}

		diags, err := db.Diagnostics(ctx, run.ID)
		if err != nil {
			return err
		}

		program := tea.NewProgram(tui.New(run, diags), tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("error running browser: %w", err)
		}
		return nil
	},
}
