package main

import (
	"os"

	"github.com/butterflysky/elgato-keylight/cmd/elgato/commands"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	rootCmd := commands.NewRootCommand(version, commit, buildDate)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
