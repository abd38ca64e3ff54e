// Package main is the entry point for the finwise CLI.
package main

import (
	"os"

	"github.com/dvloznov/finwise/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
