package main

import (
	"os"

	"github.com/desmoke/desmoke/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
