// Package main is the entry point for the urlwasher CLI.
package main

import (
	"os"

	"github.com/getlantern/urlwasher/cmd/urlwasher/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
