// Package token defines the token kinds produced by the lexer and shared
// by the parser and the token-stream artifact writer.
package token

import (
	"fmt"
	"io"
)

// Kind identifies the lexical category of a Token.
type Kind int

const (
	Keyword Kind = iota
	Identifier
	IntLiteral
	FloatLiteral
	StringLiteral
	Operator
	Punctuation
	Preprocessor
	EOF
)

var kindNames = [...]string{
	Keyword:       "KEYWORD",
	Identifier:    "IDENTIFIER",
	IntLiteral:    "INT_LITERAL",
	FloatLiteral:  "FLOAT_LITERAL",
	StringLiteral: "STRING_LITERAL",
	Operator:      "OPERATOR",
	Punctuation:   "PUNCTUATION",
	Preprocessor:  "PREPROCESSOR",
	EOF:           "EOF",
}

// String returns the wire name used in the token-stream artifact, e.g. "KEYWORD".
func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return "UNKNOWN"
	}
	return kindNames[k]
}

// Keywords is the closed set of reserved words recognized by the lexer.
// Any other alphabetic lexeme is an Identifier.
var Keywords = map[string]bool{
	"int":    true,
	"float":  true,
	"void":   true,
	"return": true,
	"if":     true,
	"else":   true,
	"while":  true,
	"for":    true,
}

// Token is one lexical unit: its kind, its literal source text, and the
// 1-based source line it started on.
type Token struct {
	Kind   Kind
	Lexeme string
	Line   int
}

// String renders a token in the token-stream artifact's line grammar:
// "[line:<N>] <KIND>           \"<lexeme>\"". The lexeme is written
// literally, with no escape processing, bounded by literal double quotes.
func (t Token) String() string {
	return fmt.Sprintf("[line:%d] %-16s \"%s\"", t.Line, t.Kind, t.Lexeme)
}

// WriteAll writes one Token per line via String, suitable for the
// token-stream artifact described by the external interface.
func WriteAll(w io.Writer, toks []Token) error {
	for _, t := range toks {
		if _, err := fmt.Fprintln(w, t.String()); err != nil {
			return err
		}
	}
	return nil
}
