// Command lyng is the CLI entry point: lex, parse, and run subcommands
// over cmd/lyng/cmd's cobra tree.
package main

import (
	"os"

	"github.com/sergeych/lyng-sub006/cmd/lyng/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
