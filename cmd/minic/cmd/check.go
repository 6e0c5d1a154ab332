package cmd

import (
	"fmt"
	"os"

	"github.com/danialebr/minic/internal/semantic"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <ast-file>",
	Short: "Type-check an AST artifact",
	Long: `Re-parse an indented AST artifact (as produced by "minic parse") and
report the first semantic error found, if any.

Examples:
  minic check program.ast
  minic parse program.c | minic check -`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(_ *cobra.Command, args []string) error {
	in := os.Stdin
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		defer f.Close()
		in = f
	}

	if err := semantic.Analyze(in); err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}
