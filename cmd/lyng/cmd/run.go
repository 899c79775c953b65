package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sergeych/lyng-sub006/internal/module"
	"github.com/sergeych/lyng-sub006/internal/parser"
	"github.com/sergeych/lyng-sub006/internal/scope"
	"github.com/sergeych/lyng-sub006/internal/source"
)

var (
	runEvalExpr string
	dumpAST     bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a script file or expression",
	Long: `Execute a program from a file or inline expression.

Examples:
  # Run a script file
  lyng run script.lyng

  # Evaluate an inline expression
  lyng run -e "val answer = 6 * 7"

The program runs in a scope holding the concurrency globals (launch,
flow, Mutex); print and println are not defined here, and the
program's final value is not printed.

  # Run with an AST dump (for debugging)
  lyng run --dump-ast script.lyng`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runEvalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
	runCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "dump the parsed AST (for debugging)")
}

func runScript(_ *cobra.Command, args []string) error {
	var input, name string

	switch {
	case runEvalExpr != "":
		input, name = runEvalExpr, "<eval>"
	case len(args) == 1:
		name = args[0]
		content, err := os.ReadFile(name)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", name, err)
		}
		input = string(content)
	default:
		return fmt.Errorf("either provide a file path or use -e for inline code")
	}

	prog, diags := parser.ParseProgram(source.New(name, input))
	if len(diags) > 0 {
		for _, d := range diags {
			fmt.Fprintln(os.Stderr, d.Format(true))
		}
		return fmt.Errorf("parsing failed with %d error(s)", len(diags))
	}

	if dumpAST {
		fmt.Println("AST:")
		dumpNode(prog, 0)
		fmt.Println()
	}

	registry := module.NewRegistry()
	root := registry.Root

	result, sig := prog.Execute(scope.New(root))
	if sig != nil {
		fmt.Fprintf(os.Stderr, "runtime error: %s\n", sig.Error())
		return fmt.Errorf("execution failed")
	}
	_ = result

	return nil
}
