package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sergeych/lyng-sub006/internal/lexer"
	"github.com/sergeych/lyng-sub006/internal/source"
)

var (
	lexShowPos    bool
	lexShowType   bool
	lexOnlyErrors bool
	lexEvalExpr   string
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a script and print the resulting tokens",
	Long: `Tokenize a script and print the token stream produced by the lexer.

Examples:
  # Tokenize a script file
  lyng lex script.lyng

  # Tokenize inline code
  lyng lex -e "val x = 42"

  # Show token types and positions
  lyng lex --show-type --show-pos script.lyng

  # Show only illegal tokens
  lyng lex --only-errors script.lyng`,
	Args: cobra.MaximumNArgs(1),
	RunE: lexScript,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&lexEvalExpr, "eval", "e", "", "tokenize inline code instead of reading from file")
	lexCmd.Flags().BoolVar(&lexShowPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&lexShowType, "show-type", false, "show token type names")
	lexCmd.Flags().BoolVar(&lexOnlyErrors, "only-errors", false, "show only illegal tokens")
}

func lexScript(cmd *cobra.Command, args []string) error {
	var input, name string

	switch {
	case lexEvalExpr != "":
		input, name = lexEvalExpr, "<eval>"
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

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		fmt.Printf("Tokenizing: %s\n", name)
		fmt.Printf("Input length: %d bytes\n", len(input))
		fmt.Println("---")
	}

	l := lexer.New(source.New(name, input))

	tokenCount, illegalCount := 0, 0
	for {
		tok := l.Next()

		if lexOnlyErrors && tok.Type != lexer.ILLEGAL {
			if tok.Type == lexer.EOF {
				break
			}
			continue
		}

		tokenCount++
		if tok.Type == lexer.ILLEGAL {
			illegalCount++
		}
		printToken(tok)

		if tok.Type == lexer.EOF {
			break
		}
	}

	for _, e := range l.Errors() {
		illegalCount++
		fmt.Fprintf(os.Stderr, "lex error: %s at %s\n", e.Message, e.Pos)
	}

	if verbose {
		fmt.Println("---")
		fmt.Printf("Total tokens: %d\n", tokenCount)
		if illegalCount > 0 {
			fmt.Printf("Errors: %d\n", illegalCount)
		}
	}

	if lexOnlyErrors && illegalCount > 0 {
		return fmt.Errorf("found %d illegal token(s)", illegalCount)
	}
	return nil
}

func printToken(tok lexer.Token) {
	var output string

	if lexShowType {
		output = fmt.Sprintf("[%-14s]", tok.Type.String())
	}

	switch {
	case tok.Type == lexer.EOF:
		output += " EOF"
	case tok.Type == lexer.ILLEGAL:
		output += fmt.Sprintf(" ILLEGAL: %q", tok.Text)
	case tok.Text == "":
		output += fmt.Sprintf(" %s", tok.Type)
	default:
		output += fmt.Sprintf(" %q", tok.Text)
	}

	if lexShowPos {
		output += fmt.Sprintf(" @%s", tok.Pos)
	}

	fmt.Println(output)
}
