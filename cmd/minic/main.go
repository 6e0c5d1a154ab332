// Command minic is the CLI front end for the four-stage compiler
// pipeline: lexer, parser, semantic analyzer, and TAC generator.
package main

import (
	"fmt"
	"os"

	"github.com/danialebr/minic/cmd/minic/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
