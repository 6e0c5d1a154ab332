package semantic

import (
	"bytes"
	"strings"
	"testing"

	"github.com/danialebr/minic/internal/ast"
	"github.com/danialebr/minic/internal/compileerr"
	"github.com/danialebr/minic/internal/lexer"
	"github.com/danialebr/minic/internal/parser"
)

func astTextOf(t *testing.T, src string) string {
	t.Helper()
	toks, err := lexer.Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize returned error: %v", err)
	}
	nodes, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	var buf bytes.Buffer
	if err := ast.Write(&buf, nodes); err != nil {
		t.Fatalf("ast.Write returned error: %v", err)
	}
	return buf.String()
}

func analyze(t *testing.T, src string) error {
	t.Helper()
	return Analyze(strings.NewReader(astTextOf(t, src)))
}

func TestAnalyzeScenario1Succeeds(t *testing.T) {
	if err := analyze(t, "int main() { return 0; }"); err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
}

func TestAnalyzeScenario3IfElseSucceeds(t *testing.T) {
	src := `int f() {
		int a; int b;
		if (a == 1) b = 2; else b = 3;
		return b;
	}`
	if err := analyze(t, src); err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
}

func TestAnalyzeScenario4TypeMismatch(t *testing.T) {
	src := `int f() { int x; x = 1.5; return x; }`
	err := analyze(t, src)
	if err == nil {
		t.Fatal("expected a type mismatch error")
	}
	cerr, ok := err.(*compileerr.Error)
	if !ok {
		t.Fatalf("expected *compileerr.Error, got %T", err)
	}
	if cerr.Stage != compileerr.Semantic {
		t.Errorf("got stage %v, want Semantic", cerr.Stage)
	}
	if !strings.Contains(cerr.Message, "Type mismatch") {
		t.Errorf("got message %q, want it to mention a type mismatch", cerr.Message)
	}
}

func TestAnalyzeScenario5ParamsSucceed(t *testing.T) {
	if err := analyze(t, "int f(int a, int b) { return a + b; }"); err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
}

func TestAnalyzeUndeclaredVariable(t *testing.T) {
	err := analyze(t, "int f() { return x; }")
	if err == nil {
		t.Fatal("expected an error for an undeclared variable")
	}
}

func TestAnalyzeRedeclaration(t *testing.T) {
	src := `int f() {
		int x;
		{ int x; }
		return x;
	}`
	err := analyze(t, src)
	if err == nil {
		t.Fatal("expected a redeclaration error — block scopes flatten into the function scope")
	}
}

func TestAnalyzeMissingReturn(t *testing.T) {
	err := analyze(t, "int f() { int x; x = 1; }")
	if err == nil {
		t.Fatal("expected a missing-return error")
	}
}

func TestAnalyzeVoidFunctionNoReturnRequired(t *testing.T) {
	src := `void f() { int x; x = 1; }`
	if err := analyze(t, src); err != nil {
		t.Fatalf("expected success, a void function has no missing-return obligation, got: %v", err)
	}
}

func TestAnalyzeConditionMustBeBool(t *testing.T) {
	src := `int f() { int a; if (a) { a = 1; } return a; }`
	err := analyze(t, src)
	if err == nil {
		t.Fatal("expected an error: an int condition is not boolean")
	}
}

func TestAnalyzeCallArityMismatch(t *testing.T) {
	src := `int f(int a) { return a; }
	int main() { return f(); }`
	err := analyze(t, src)
	if err == nil {
		t.Fatal("expected a call arity mismatch error")
	}
}

func TestAnalyzeCallUndeclaredFunction(t *testing.T) {
	src := `int main() { return g(); }`
	err := analyze(t, src)
	if err == nil {
		t.Fatal("expected an error calling an undeclared function")
	}
}

func TestAnalyzeDeclaredReturnTypeOverridesDefault(t *testing.T) {
	// A function declared float that returns a float literal must not be
	// forced through the int-default/refine-from-main-exempt path.
	if err := analyze(t, "float f() { return 1.5; }"); err != nil {
		t.Fatalf("expected success for a float function returning a float literal, got: %v", err)
	}
	err := analyze(t, "float f() { return 1; }")
	if err == nil {
		t.Fatal("expected a return type mismatch: declared float, returned int")
	}
}

func TestAnalyzeFloatLiteralTypesAsFloat(t *testing.T) {
	// A literal carrying a decimal point types as float, so assigning it
	// to a float variable succeeds...
	if err := analyze(t, `int f() { float x; x = 1.5; return 0; }`); err != nil {
		t.Fatalf("expected success assigning a float literal to a float variable, got: %v", err)
	}
	// ...while assigning it to an int variable is the mismatch spec.md's
	// own worked scenario requires.
	err := analyze(t, `int f() { int x; x = 1.5; return x; }`)
	if err == nil {
		t.Fatal("expected a type mismatch assigning a float literal to an int variable")
	}
}
