package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/desmoke/desmoke/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a .desmoke project directory here",
	Long: `Creates .desmoke/config.toml in the current directory. A project is
optional: it enables persistent configuration, the debug log, and run history
for every desmoke invocation underneath it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}

		dir := filepath.Join(cwd, project.ConfigDir)
		path := filepath.Join(dir, project.ConfigFile)
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}

		cfg := &project.Config{}
		if err := cfg.SaveConfig(path); err != nil {
			return err
		}
		fmt.Printf("Initialized desmoke project at %s\n", dir)
		return nil
	},
}
