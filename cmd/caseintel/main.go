// Package main provides the entry point for the caseintel CLI.
package main

import (
	"fmt"
	"os"

	"github.com/legalcase/caseintel/cmd/caseintel/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		if err.Error() != "" {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(cmd.ExitCode(err))
	}
}
