package cmd

import (
	"fmt"
	"os"

	"github.com/danialebr/minic/internal/ast"
	"github.com/danialebr/minic/internal/lexer"
	"github.com/danialebr/minic/internal/parser"
	"github.com/spf13/cobra"
)

var parseOutput string

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a source file and print its indented AST",
	Long: `Lex and parse a minic source file, printing its AST in the indented
text form that the semantic analyzer and TAC generator re-parse.

Examples:
  minic parse program.c
  minic parse program.c -o ast.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseOutput, "output", "o", "", "write the AST to this file instead of stdout")
}

func runParse(_ *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", args[0], err)
	}

	toks, err := lexer.Tokenize(string(content))
	if err != nil {
		return err
	}
	nodes, err := parser.Parse(toks)
	if err != nil {
		return err
	}

	out := os.Stdout
	if parseOutput != "" {
		f, err := os.Create(parseOutput)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", parseOutput, err)
		}
		defer f.Close()
		out = f
	}

	return ast.Write(out, nodes)
}
