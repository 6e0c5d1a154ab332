package cmd

import (
	"fmt"
	"os"

	"github.com/danialebr/minic/internal/tac"
	"github.com/spf13/cobra"
)

var tacOutput string

var tacCmd = &cobra.Command{
	Use:   "tac <ast-file>",
	Short: "Lower an AST artifact to three-address code",
	Long: `Re-parse an indented AST artifact (as produced by "minic parse") and
print its three-address code listing.

Examples:
  minic tac program.ast
  minic parse program.c | minic tac -
  minic tac program.ast -o program.tac`,
	Args: cobra.ExactArgs(1),
	RunE: runTac,
}

func init() {
	rootCmd.AddCommand(tacCmd)
	tacCmd.Flags().StringVarP(&tacOutput, "output", "o", "", "write TAC to this file instead of stdout")
}

func runTac(_ *cobra.Command, args []string) error {
	in := os.Stdin
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		defer f.Close()
		in = f
	}

	out := os.Stdout
	if tacOutput != "" {
		f, err := os.Create(tacOutput)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", tacOutput, err)
		}
		defer f.Close()
		out = f
	}

	return tac.Generate(in, out)
}
