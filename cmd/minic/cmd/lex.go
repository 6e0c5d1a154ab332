package cmd

import (
	"fmt"
	"os"

	"github.com/danialebr/minic/internal/lexer"
	"github.com/danialebr/minic/internal/token"
	"github.com/spf13/cobra"
)

var lexOutput string

var lexCmd = &cobra.Command{
	Use:   "lex <file>",
	Short: "Tokenize a source file and print its token stream",
	Long: `Tokenize a minic source file and print the resulting tokens, one
per line, in the external token-stream artifact format.

Examples:
  minic lex program.c
  minic lex program.c -o tokens.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)
	lexCmd.Flags().StringVarP(&lexOutput, "output", "o", "", "write tokens to this file instead of stdout")
}

func runLex(_ *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", args[0], err)
	}

	toks, err := lexer.Tokenize(string(content))
	if err != nil {
		return err
	}

	out := os.Stdout
	if lexOutput != "" {
		f, err := os.Create(lexOutput)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", lexOutput, err)
		}
		defer f.Close()
		out = f
	}

	return token.WriteAll(out, toks)
}
