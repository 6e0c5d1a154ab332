package parser

import (
	"bytes"
	"testing"

	"github.com/danialebr/minic/internal/ast"
	"github.com/danialebr/minic/internal/compileerr"
	"github.com/danialebr/minic/internal/lexer"
	"github.com/gkampitakis/go-snaps/snaps"
)

func parseSource(t *testing.T, src string) string {
	t.Helper()
	toks, err := lexer.Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize returned error: %v", err)
	}
	nodes, err := Parse(toks)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	var buf bytes.Buffer
	if err := ast.Write(&buf, nodes); err != nil {
		t.Fatalf("ast.Write returned error: %v", err)
	}
	return buf.String()
}

func TestParseScenario1(t *testing.T) {
	snaps.MatchSnapshot(t, "scenario1_ast", parseSource(t, "int main() { return 0; }"))
}

func TestParseScenario2(t *testing.T) {
	snaps.MatchSnapshot(t, "scenario2_ast", parseSource(t, "int x = 1 + 2 * 3;"))
}

func TestParseIfElse(t *testing.T) {
	src := `int f() {
		int a; int b;
		if (a == 1) b = 2; else b = 3;
		return b;
	}`
	snaps.MatchSnapshot(t, "if_else_ast", parseSource(t, src))
}

func TestParseElseIfChain(t *testing.T) {
	src := `int f() {
		int a; int b;
		if (a == 1) b = 1; else if (a == 2) b = 2; else b = 3;
		return b;
	}`
	snaps.MatchSnapshot(t, "else_if_chain_ast", parseSource(t, src))
}

func TestParseForLoop(t *testing.T) {
	src := `int f() {
		int i; int n; int s;
		for (i = 0; i < n; i = i + 1) { s = s + i; }
		return s;
	}`
	snaps.MatchSnapshot(t, "for_loop_ast", parseSource(t, src))
}

func TestParseFunctionCall(t *testing.T) {
	src := `int f(int a, int b) {
		return a + b;
	}
	int main() {
		return f(1, 2);
	}`
	snaps.MatchSnapshot(t, "function_call_ast", parseSource(t, src))
}

func TestParseCastAndUnary(t *testing.T) {
	src := `int f() {
		float x;
		int y;
		y = (int) x;
		return !y;
	}`
	snaps.MatchSnapshot(t, "cast_unary_ast", parseSource(t, src))
}

func TestParseSyntaxError(t *testing.T) {
	toks, err := lexer.Tokenize("int main( { return 0; }")
	if err != nil {
		t.Fatalf("Tokenize returned error: %v", err)
	}
	_, err = Parse(toks)
	if err == nil {
		t.Fatal("expected a syntax error for a malformed parameter list")
	}
	cerr, ok := err.(*compileerr.Error)
	if !ok {
		t.Fatalf("expected *compileerr.Error, got %T", err)
	}
	if cerr.Stage != compileerr.Syntax {
		t.Errorf("got stage %v, want Syntax", cerr.Stage)
	}
}

func TestParseArrayParam(t *testing.T) {
	src := `int f(int arr[]) {
		return arr;
	}`
	snaps.MatchSnapshot(t, "array_param_ast", parseSource(t, src))
}
