package main

import (
	"os"

	"github.com/fatih/color"
)

func main() {
	// Enable color output; --no-color and NO_COLOR still disable it later.
	color.NoColor = false

	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
