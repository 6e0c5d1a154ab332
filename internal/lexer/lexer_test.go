package lexer

import (
	"testing"

	"github.com/danialebr/minic/internal/compileerr"
	"github.com/danialebr/minic/internal/token"
)

func TestTokenizeScenario1(t *testing.T) {
	toks, err := Tokenize("int main() { return 0; }")
	if err != nil {
		t.Fatalf("Tokenize returned error: %v", err)
	}

	want := []struct {
		kind   token.Kind
		lexeme string
	}{
		{token.Keyword, "int"},
		{token.Identifier, "main"},
		{token.Punctuation, "("},
		{token.Punctuation, ")"},
		{token.Punctuation, "{"},
		{token.Keyword, "return"},
		{token.IntLiteral, "0"},
		{token.Punctuation, ";"},
		{token.Punctuation, "}"},
		{token.EOF, "EOF"},
	}

	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Kind != w.kind || toks[i].Lexeme != w.lexeme {
			t.Errorf("token %d = {%s %q}, want {%s %q}", i, toks[i].Kind, toks[i].Lexeme, w.kind, w.lexeme)
		}
	}
}

func TestTokenizeFloatLiteral(t *testing.T) {
	toks, err := Tokenize("1.5")
	if err != nil {
		t.Fatalf("Tokenize returned error: %v", err)
	}
	if len(toks) != 2 {
		t.Fatalf("got %d tokens, want 2: %v", len(toks), toks)
	}
	if toks[0].Kind != token.FloatLiteral || toks[0].Lexeme != "1.5" {
		t.Errorf("got %+v, want FloatLiteral 1.5", toks[0])
	}
}

func TestTokenizeComments(t *testing.T) {
	toks, err := Tokenize("int x; // trailing\n/* block */ int y;")
	if err != nil {
		t.Fatalf("Tokenize returned error: %v", err)
	}
	// int x ; int y ; EOF
	if len(toks) != 7 {
		t.Fatalf("got %d tokens, want 7: %v", len(toks), toks)
	}
}

func TestTokenizeUnterminatedBlockComment(t *testing.T) {
	_, err := Tokenize("int x; /* oops")
	if err == nil {
		t.Fatal("expected an error for an unterminated block comment")
	}
	cerr, ok := err.(*compileerr.Error)
	if !ok {
		t.Fatalf("expected *compileerr.Error, got %T", err)
	}
	if cerr.Stage != compileerr.Lexical {
		t.Errorf("got stage %v, want Lexical", cerr.Stage)
	}
}

func TestTokenizeUnterminatedString(t *testing.T) {
	_, err := Tokenize(`"hello`)
	if err == nil {
		t.Fatal("expected an error for an unterminated string literal")
	}
}

func TestTokenizeStringEscapedQuote(t *testing.T) {
	toks, err := Tokenize(`"a\"b"`)
	if err != nil {
		t.Fatalf("Tokenize returned error: %v", err)
	}
	if toks[0].Kind != token.StringLiteral {
		t.Fatalf("got kind %v, want StringLiteral", toks[0].Kind)
	}
}

func TestTokenizeInvalidCharacter(t *testing.T) {
	_, err := Tokenize("int x = @;")
	if err == nil {
		t.Fatal("expected an error for an invalid character")
	}
}

func TestTokenizeTwoCharOperators(t *testing.T) {
	toks, err := Tokenize("a == b && c <= d")
	if err != nil {
		t.Fatalf("Tokenize returned error: %v", err)
	}
	var ops []string
	for _, tok := range toks {
		if tok.Kind == token.Operator {
			ops = append(ops, tok.Lexeme)
		}
	}
	want := []string{"==", "&&", "<="}
	if len(ops) != len(want) {
		t.Fatalf("got operators %v, want %v", ops, want)
	}
	for i, w := range want {
		if ops[i] != w {
			t.Errorf("operator %d = %q, want %q", i, ops[i], w)
		}
	}
}

func TestTokenizeLineNumbers(t *testing.T) {
	toks, err := Tokenize("int x;\nint y;\n")
	if err != nil {
		t.Fatalf("Tokenize returned error: %v", err)
	}
	if toks[0].Line != 1 {
		t.Errorf("first token line = %d, want 1", toks[0].Line)
	}
	if toks[3].Line != 2 {
		t.Errorf("fourth token line = %d, want 2", toks[3].Line)
	}
}
