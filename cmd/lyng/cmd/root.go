package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information, set by build flags the same way the teacher's CLI
// stamps its own.
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "lyng",
	Short: "lyng script interpreter",
	Long: `lyng is a tree-walking interpreter for the lyng scripting
language: dynamically typed, class-based with multiple inheritance via
C3 linearization, pull-based iterators, and cooperative coroutines
(launch/flow/Mutex).

There is no separate compile step or bytecode VM: source is lexed,
parsed into a node tree, and the tree evaluates itself directly.`,
	Version: Version,
}

// Execute runs the root command; cmd/lyng/main.go's func main is the
// only caller.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
