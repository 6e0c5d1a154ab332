// Package tac lowers the indented AST text to linear three-address
// code. Grounded on phase_4_tac_generator.c in the retrieved original
// source: a second, independent recursive descent over the same text
// format the semantic package walks, deliberately not sharing a cursor
// or a tree with it (see astline). Unlike semantic, this pass is total:
// it never reports an error and always produces output.
package tac

import (
	"fmt"
	"io"
	"strings"

	"github.com/danialebr/minic/internal/astline"
)

// counters are process-global and monotonic for the lifetime of the
// program, per the temporary/label hygiene rule: they are never reset
// between Generate calls.
var (
	tempCounter  int
	labelCounter int
)

func newTemp() string {
	t := fmt.Sprintf("t%d", tempCounter)
	tempCounter++
	return t
}

func newLabel() string {
	l := fmt.Sprintf("L%d", labelCounter)
	labelCounter++
	return l
}

type generator struct {
	lines []astline.Line
	pos   int
	w     io.Writer
}

// Generate streams the AST text read from r and writes its TAC listing
// to w. It is total on any parser-produced AST.
func Generate(r io.Reader, w io.Writer) error {
	lines, err := astline.ReadAll(r)
	if err != nil {
		return err
	}
	g := &generator{lines: lines, w: w}
	for g.pos < len(g.lines) {
		if _, _, err := g.genNode(0); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) cur() astline.Line {
	return g.lines[g.pos]
}

func (g *generator) emit(format string, args ...any) error {
	_, err := fmt.Fprintf(g.w, format+"\n", args...)
	return err
}

// genBlock lowers every sibling node at indent or deeper, starting at
// the cursor, until a line at a shallower indent (or EOF) is reached —
// the walking discipline behind a Body: node's children.
func (g *generator) genBlock(indent int) error {
	for g.pos < len(g.lines) && g.cur().Indent >= indent {
		if _, _, err := g.genNode(indent); err != nil {
			return err
		}
	}
	return nil
}

// genNode lowers one AST node at indent (or deeper — the cursor check
// here is lax, matching the reference generator's `indent < expected`
// bound rather than semantic's strict equality) and returns its operand
// name when it produces a value.
func (g *generator) genNode(indent int) (operand string, ok bool, err error) {
	if g.pos >= len(g.lines) || g.cur().Indent < indent {
		return "", false, nil
	}
	txt := g.cur().Text

	switch {
	case strings.HasPrefix(txt, "FunctionDefinition:"):
		return "", false, g.genFunctionDef(indent)
	case strings.HasPrefix(txt, "ReturnType:"):
		g.pos++
		return "", false, nil
	case txt == "Body:":
		g.pos++
		return "", false, g.genBlock(indent + 1)
	case strings.HasPrefix(txt, "VarDeclGroup:"):
		return "", false, g.skipVarDeclGroup(indent)
	case strings.HasPrefix(txt, "VarDecl:"):
		return "", false, g.skipVarDecl(indent)
	case strings.HasPrefix(txt, "Assign:"):
		return "", false, g.genAssign(indent)
	case strings.HasPrefix(txt, "Return"):
		return "", false, g.genReturn(indent)
	case strings.HasPrefix(txt, "If:"):
		return "", false, g.genIf(indent)
	case strings.HasPrefix(txt, "For:"):
		return "", false, g.genFor(indent)
	case strings.HasPrefix(txt, "While:"):
		return "", false, g.genWhile(indent)
	case strings.HasPrefix(txt, "BinOp("):
		return g.genBinOp(indent)
	case strings.HasPrefix(txt, "Number("):
		val := strings.TrimSuffix(strings.TrimPrefix(txt, "Number("), ")")
		g.pos++
		return val, true, nil
	case strings.HasPrefix(txt, "Var("):
		name := strings.TrimSuffix(strings.TrimPrefix(txt, "Var("), ")")
		g.pos++
		return name, true, nil
	case strings.HasPrefix(txt, "Cast("):
		g.pos++
		return g.genNode(indent + 1)
	case strings.HasPrefix(txt, "Call("):
		return g.genCall(indent)
	}

	g.pos++
	return "", false, nil
}

func (g *generator) genFunctionDef(indent int) error {
	name := strings.TrimSpace(strings.TrimPrefix(g.cur().Text, "FunctionDefinition:"))
	if err := g.emit("func %s:", name); err != nil {
		return err
	}
	g.pos++
	// ReturnType: carries the declared return type for semantic's
	// missing-return check; it has no TAC shape, so it is consumed and
	// discarded here like Parameters: below.
	if g.pos < len(g.lines) && g.cur().Indent == indent+1 && strings.HasPrefix(g.cur().Text, "ReturnType:") {
		g.pos++
	}
	// Parameters: emits nothing — consumed only to advance the cursor.
	if g.pos < len(g.lines) && g.cur().Indent == indent+1 {
		if _, _, err := g.genNode(indent + 1); err != nil {
			return err
		}
	}
	if g.pos < len(g.lines) && g.cur().Indent == indent+1 {
		if _, _, err := g.genNode(indent + 1); err != nil {
			return err
		}
	}
	return g.emit("endfunc\n")
}

// skipVarDeclGroup reproduces the reference generator's VarDeclGroup
// handling verbatim: it advances past every descendant line without
// lowering any of them, so grouped declarations never emit TAC even
// when they carry an initializer.
func (g *generator) skipVarDeclGroup(indent int) error {
	g.pos++
	for g.pos < len(g.lines) && g.cur().Indent > indent {
		g.pos++
	}
	return nil
}

// skipVarDecl mirrors the reference generator's standalone VarDecl
// path: it descends into an initializer if present but discards the
// resulting operand, so no assignment is ever emitted for it either.
func (g *generator) skipVarDecl(indent int) error {
	g.pos++
	if g.pos < len(g.lines) && g.cur().Indent > indent {
		_, _, err := g.genNode(indent + 1)
		return err
	}
	return nil
}

func (g *generator) genAssign(indent int) error {
	rest := strings.TrimPrefix(g.cur().Text, "Assign:")
	name := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rest), "="))
	g.pos++
	r, _, err := g.genNode(indent + 1)
	if err != nil {
		return err
	}
	return g.emit("%s = %s", name, r)
}

// genReturn departs from the reference generator's literal behavior:
// the original only ever descends into a child node for an operand, so
// a "Return: <lexeme>" leaf (the shape the parser emits for a literal
// or bare-variable return) would print a bare "return" with no operand.
// spec.md's own worked example for `return 0;` requires the operand to
// appear, so a present lexeme is used directly as the operand instead
// of being dropped.
func (g *generator) genReturn(indent int) error {
	rest := strings.TrimSpace(strings.TrimPrefix(g.cur().Text, "Return:"))
	g.pos++
	if rest != "" {
		return g.emit("return %s", rest)
	}
	r, hasOperand, err := g.genNode(indent + 1)
	if err != nil {
		return err
	}
	if hasOperand {
		return g.emit("return %s", r)
	}
	return g.emit("return")
}

// genIf also departs from the literal reference behavior, which only
// lowers the then/else branch when it is textually a "Body:" node —
// meaning a single non-block then/else statement would never reach
// TAC. spec.md's worked scenario for `if (a == 1) b = 2; else b = 3;`
// (no braces) requires both assignments to appear, so the then/else
// branch here is lowered generically via genNode regardless of its
// label, exactly as the condition and body of While/For already are.
func (g *generator) genIf(indent int) error {
	g.pos++
	cond, _, err := g.genNode(indent + 1)
	if err != nil {
		return err
	}
	lElse := newLabel()
	lEnd := newLabel()
	if err := g.emit("ifFalse %s goto %s", cond, lElse); err != nil {
		return err
	}
	if g.pos < len(g.lines) && g.cur().Indent == indent+1 {
		if _, _, err := g.genNode(indent + 1); err != nil {
			return err
		}
	}
	if err := g.emit("goto %s", lEnd); err != nil {
		return err
	}
	if err := g.emit("%s:", lElse); err != nil {
		return err
	}
	if g.pos < len(g.lines) && g.cur().Indent == indent+1 && strings.HasPrefix(g.cur().Text, "Else:") {
		g.pos++
		if g.pos < len(g.lines) && g.cur().Indent == indent+2 {
			if _, _, err := g.genNode(indent + 2); err != nil {
				return err
			}
		}
	} else if g.pos < len(g.lines) && g.cur().Indent == indent+1 && strings.HasPrefix(g.cur().Text, "If:") {
		// flattened else-if chain: lower the nested If in place of an
		// Else wrapper.
		if _, _, err := g.genNode(indent + 1); err != nil {
			return err
		}
	}
	return g.emit("%s:", lEnd)
}

func (g *generator) genWhile(indent int) error {
	g.pos++
	lStart := newLabel()
	lEnd := newLabel()
	if err := g.emit("%s:", lStart); err != nil {
		return err
	}
	cond, _, err := g.genNode(indent + 1)
	if err != nil {
		return err
	}
	if err := g.emit("ifFalse %s goto %s", cond, lEnd); err != nil {
		return err
	}
	if g.pos < len(g.lines) && g.cur().Indent == indent+1 {
		if _, _, err := g.genNode(indent + 1); err != nil {
			return err
		}
	}
	if err := g.emit("goto %s", lStart); err != nil {
		return err
	}
	return g.emit("%s:", lEnd)
}

// genFor lowers init, condition, body and increment in that structural
// order. The increment is the third child in the AST (init, cond, step,
// body) but must execute after the body on every iteration, so its
// subtree is buffered by line range and lowered only once the body
// immediately after it has been processed — a small deviation from the
// reference generator, which lowers children strictly in AST order and
// as a result emits the increment in the body's slot and the body
// itself after the loop's closing label entirely. spec.md's own worked
// scenario for a `for` loop requires the natural body-then-increment
// order, so that is what this buffering produces.
func (g *generator) genFor(indent int) error {
	g.pos++
	if _, _, err := g.genNode(indent + 1); err != nil {
		return err
	}
	lStart := newLabel()
	lEnd := newLabel()
	if err := g.emit("%s:", lStart); err != nil {
		return err
	}
	cond, _, err := g.genNode(indent + 1)
	if err != nil {
		return err
	}
	if err := g.emit("ifFalse %s goto %s", cond, lEnd); err != nil {
		return err
	}

	var buffered []astline.Line
	if g.pos < len(g.lines) && g.cur().Indent == indent+1 {
		start := g.pos
		end := start + 1
		for end < len(g.lines) && g.lines[end].Indent > indent+1 {
			end++
		}
		buffered = g.lines[start:end]
		g.pos = end
	}

	if g.pos < len(g.lines) && g.cur().Indent == indent+1 {
		if _, _, err := g.genNode(indent + 1); err != nil {
			return err
		}
	}

	if buffered != nil {
		sub := &generator{lines: buffered, w: g.w}
		if _, _, err := sub.genNode(indent + 1); err != nil {
			return err
		}
	}

	if err := g.emit("goto %s", lStart); err != nil {
		return err
	}
	return g.emit("%s:", lEnd)
}

func (g *generator) genBinOp(indent int) (string, bool, error) {
	op := strings.TrimSuffix(strings.TrimPrefix(g.cur().Text, "BinOp("), ")")
	g.pos++
	l, _, err := g.genNode(indent + 1)
	if err != nil {
		return "", false, err
	}
	// Faithful to the reference generator: a unary "!" still performs a
	// second genNode call here, so its right-hand operand is whatever
	// node follows (often empty/the next sibling) rather than omitted.
	r, _, err := g.genNode(indent + 1)
	if err != nil {
		return "", false, err
	}
	t := newTemp()
	if err := g.emit("%s = %s %s %s", t, l, op, r); err != nil {
		return "", false, err
	}
	return t, true, nil
}

// genCall lowers each argument, then emits a call through a temporary
// holding the result — the natural TAC shape for the REDESIGN FLAG's
// Call(<name>) node, which original_source never had to lower since it
// had no distinct call shape at this stage.
func (g *generator) genCall(indent int) (string, bool, error) {
	name := strings.TrimSuffix(strings.TrimPrefix(g.cur().Text, "Call("), ")")
	g.pos++
	var args []string
	for g.pos < len(g.lines) && g.cur().Indent == indent+1 {
		a, _, err := g.genNode(indent + 1)
		if err != nil {
			return "", false, err
		}
		args = append(args, a)
	}
	t := newTemp()
	if err := g.emit("%s = call %s(%s)", t, name, strings.Join(args, ", ")); err != nil {
		return "", false, err
	}
	return t, true, nil
}
