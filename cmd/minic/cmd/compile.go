package cmd

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/danialebr/minic/internal/ast"
	"github.com/danialebr/minic/internal/lexer"
	"github.com/danialebr/minic/internal/parser"
	"github.com/danialebr/minic/internal/semantic"
	"github.com/danialebr/minic/internal/tac"
	"github.com/danialebr/minic/internal/token"
	"github.com/spf13/cobra"
)

var (
	compileKeepArtifacts bool
	compileSkipCheck     bool
	compileVerbose       bool
)

var compileCmd = &cobra.Command{
	Use:   "compile <file>",
	Short: "Run the full pipeline: lex, parse, check, and lower to TAC",
	Long: `Run all four stages over a source file in sequence and print the
resulting three-address code.

By default the intermediate token-stream and AST artifacts are discarded
after use; pass --keep-artifacts to also write them alongside the input
file as <file>.tokens and <file>.ast.

Examples:
  minic compile program.c
  minic compile program.c --keep-artifacts
  minic compile program.c --skip-check`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().BoolVar(&compileKeepArtifacts, "keep-artifacts", false, "write the intermediate token and AST artifacts next to the input file")
	compileCmd.Flags().BoolVar(&compileSkipCheck, "skip-check", false, "skip semantic analysis (faster but less safe)")
	compileCmd.Flags().BoolVarP(&compileVerbose, "verbose", "v", false, "verbose output")
}

func runCompile(_ *cobra.Command, args []string) error {
	filename := args[0]

	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	input := string(content)

	if compileVerbose {
		fmt.Fprintf(os.Stderr, "Compiling %s...\n", filename)
	}

	toks, err := lexer.Tokenize(input)
	if err != nil {
		return fmt.Errorf("lexing failed: %w", err)
	}
	if compileKeepArtifacts {
		if err := writeTokenArtifact(filename, toks); err != nil {
			return err
		}
	}

	nodes, err := parser.Parse(toks)
	if err != nil {
		return fmt.Errorf("parsing failed: %w", err)
	}

	var astBuf bytes.Buffer
	if err := ast.Write(&astBuf, nodes); err != nil {
		return err
	}
	if compileKeepArtifacts {
		if err := os.WriteFile(astArtifactPath(filename), astBuf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("failed to write AST artifact: %w", err)
		}
	}

	if !compileSkipCheck {
		if err := semantic.Analyze(strings.NewReader(astBuf.String())); err != nil {
			return fmt.Errorf("semantic analysis failed: %w", err)
		}
	} else if compileVerbose {
		fmt.Fprintln(os.Stderr, "Semantic analysis disabled")
	}

	if err := tac.Generate(strings.NewReader(astBuf.String()), os.Stdout); err != nil {
		return fmt.Errorf("TAC generation failed: %w", err)
	}

	if compileVerbose {
		fmt.Fprintln(os.Stderr, "Compilation successful")
	}
	return nil
}

func writeTokenArtifact(filename string, toks []token.Token) error {
	var buf bytes.Buffer
	if err := token.WriteAll(&buf, toks); err != nil {
		return err
	}
	if err := os.WriteFile(tokenArtifactPath(filename), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write token artifact: %w", err)
	}
	return nil
}

func tokenArtifactPath(filename string) string {
	return filename + ".tokens"
}

func astArtifactPath(filename string) string {
	return filename + ".ast"
}
