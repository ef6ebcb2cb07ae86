package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/desmoke/desmoke/internal/vscode"
)

var installCmd = &cobra.Command{
	Use:   "install [file]",
	Short: "Add desmoke test tasks to VS Code's tasks.json",
	Long: `Adds two tasks to .vscode/tasks.json (or the given file): one running the
current file as a resmoke jstest and one building and running it as a C++ unit
test. Both pipe their output through desmoke with a problem matcher, so
failures land in the editor's Problems panel.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := ""
		if len(args) == 1 {
			filename = args[0]
		}
		err := vscode.Install(filename, confirmOnStdin)
		if errors.Is(err, vscode.ErrDeclined) {
			fmt.Println("Goodbye!")
			return nil
		}
		return err
	},
}

func confirmOnStdin(prompt string) bool {
	fmt.Print(prompt)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(answer), "y")
}
