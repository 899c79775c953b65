package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sergeych/lyng-sub006/internal/ast"
	"github.com/sergeych/lyng-sub006/internal/parser"
	"github.com/sergeych/lyng-sub006/internal/source"
	"github.com/sergeych/lyng-sub006/internal/value"
)

var parseDumpAST bool

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a script and display its node tree",
	Long: `Parse source code and display the node tree it reduces to.

If no file is provided, reads from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().BoolVar(&parseDumpAST, "dump-ast", true, "dump the full node tree")
}

func runParse(_ *cobra.Command, args []string) error {
	var input, name string

	switch {
	case len(args) > 0:
		name = args[0]
		data, err := os.ReadFile(name)
		if err != nil {
			return fmt.Errorf("error reading file: %w", err)
		}
		input = string(data)
	default:
		name = "<stdin>"
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("error reading stdin: %w", err)
		}
		input = string(data)
	}

	prog, diags := parser.ParseProgram(source.New(name, input))
	if len(diags) > 0 {
		fmt.Fprintf(os.Stderr, "parse errors:\n")
		for _, d := range diags {
			fmt.Fprintf(os.Stderr, "  %s\n", d.Format(false))
		}
		return fmt.Errorf("parsing failed with %d error(s)", len(diags))
	}

	fmt.Println("Node tree:")
	fmt.Println("==========")
	dumpNode(prog, 0)
	return nil
}

var binOpNames = map[ast.BinOp]string{
	ast.OpAdd: "+", ast.OpSub: "-", ast.OpMul: "*", ast.OpDiv: "/", ast.OpMod: "%",
	ast.OpAnd: "&&", ast.OpOr: "||",
	ast.OpEq: "==", ast.OpNe: "!=", ast.OpIdentical: "===", ast.OpNotIdentical: "!==",
	ast.OpLt: "<", ast.OpLe: "<=", ast.OpGt: ">", ast.OpGe: ">=",
	ast.OpIn: "in", ast.OpNotIn: "!in", ast.OpIs: "is", ast.OpIsNot: "!is",
	ast.OpShuttle: "<=>", ast.OpRangeInclusive: "..", ast.OpRangeExclusive: "..<",
	ast.OpBitAnd: "&", ast.OpBitOr: "|", ast.OpBitXor: "^",
	ast.OpShl: "<<", ast.OpShr: ">>", ast.OpUshr: ">>>",
}

func binOpName(op ast.BinOp) string {
	if n, ok := binOpNames[op]; ok {
		return n
	}
	return "?"
}

// dumpNode prints node as one line per recursion level, following the
// teacher's dumpASTNode shape: a type switch over the concrete node
// kinds that matter most for debugging, falling back to %T/%v for
// anything not covered.
func dumpNode(node ast.Node, indent int) {
	pad := ""
	for i := 0; i < indent; i++ {
		pad += "  "
	}

	switch n := node.(type) {
	case *ast.Block:
		fmt.Printf("%sBlock (%d statements)\n", pad, len(n.Stmts))
		for _, stmt := range n.Stmts {
			dumpNode(stmt, indent+1)
		}
	case *ast.Literal:
		fmt.Printf("%sLiteral: %s\n", pad, value.ToDisplayString(n.Value))
	case *ast.Identifier:
		fmt.Printf("%sIdentifier: %s\n", pad, n.Name)
	case *ast.VarDecl:
		kind := "val"
		if n.Mutable {
			kind = "var"
		}
		fmt.Printf("%sVarDecl (%s %s)\n", pad, kind, n.Name)
		if n.Init != nil {
			dumpNode(n.Init, indent+1)
		}
	case *ast.FunctionDecl:
		fmt.Printf("%sFunctionDecl: %s (%d params)\n", pad, n.Name, len(n.Fn.Params))
		dumpNode(n.Fn.Body, indent+1)
	case *ast.Binary:
		fmt.Printf("%sBinary (%s)\n", pad, binOpName(n.Op))
		dumpNode(n.Left, indent+1)
		dumpNode(n.Right, indent+1)
	case *ast.Unary:
		fmt.Printf("%sUnary\n", pad)
		dumpNode(n.Operand, indent+1)
	case *ast.Assign:
		fmt.Printf("%sAssign\n", pad)
		dumpNode(n.Value, indent+1)
	case *ast.If:
		fmt.Printf("%sIf\n", pad)
		dumpNode(n.Cond, indent+1)
		dumpNode(n.Then, indent+1)
		if n.Else != nil {
			dumpNode(n.Else, indent+1)
		}
	case *ast.While:
		fmt.Printf("%sWhile\n", pad)
		dumpNode(n.Body, indent+1)
	case *ast.For:
		fmt.Printf("%sFor (%s)\n", pad, n.VarName)
		dumpNode(n.Iterable, indent+1)
		dumpNode(n.Body, indent+1)
	case *ast.Return:
		fmt.Printf("%sReturn\n", pad)
		if n.Value != nil {
			dumpNode(n.Value, indent+1)
		}
	case *ast.Call:
		fmt.Printf("%sCall (%d args)\n", pad, len(n.Args))
		dumpNode(n.Callee, indent+1)
		for _, a := range n.Args {
			dumpNode(a.Value, indent+2)
		}
	case *ast.MemberAccess:
		fmt.Printf("%sMemberAccess: .%s\n", pad, n.Name)
		dumpNode(n.Target, indent+1)
	case *ast.Index:
		fmt.Printf("%sIndex\n", pad)
		dumpNode(n.Target, indent+1)
		dumpNode(n.Key, indent+1)
	case *ast.Import:
		fmt.Printf("%sImport: %s\n", pad, n.Path)
	default:
		fmt.Printf("%s%T\n", pad, node)
	}
}
