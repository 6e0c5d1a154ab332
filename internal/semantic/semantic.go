// Package semantic type-checks the indented AST text produced by the
// parser. It is grounded on phase_3_semantic.c in the retrieved
// original source: a recursive descent over indent-tagged lines, keyed
// entirely on label-prefix dispatch, that returns a VarType per node
// instead of building any separate typed tree. The Go rewrite keeps
// that walking discipline and returns errors instead of calling exit.
package semantic

import (
	"io"
	"strings"

	"github.com/danialebr/minic/internal/astline"
	"github.com/danialebr/minic/internal/compileerr"
)

// VarType is the small closed set of types the analyzer reasons about.
// Bool is never spelled in source; it only arises as the inferred type
// of a comparison or logical operator.
type VarType int

const (
	Unknown VarType = iota
	Int
	Float
	Bool
	Void
)

func stringToType(s string) VarType {
	switch s {
	case "int":
		return Int
	case "float":
		return Float
	case "bool":
		return Bool
	case "void":
		return Void
	default:
		return Unknown
	}
}

// Symbol is one declared name and its type.
type Symbol struct {
	Name string
	Type VarType
}

// Scope is a flat, duplicate-rejecting collection of symbols. Nested
// block scopes are deliberately flattened into the enclosing function
// scope rather than pushed/popped, matching the reference design: a
// name declared twice anywhere within one function is a redeclaration
// error even if the two declarations are in different braces.
type Scope struct {
	symbols []Symbol
}

func (s *Scope) add(name string, typ VarType, astLine int) error {
	for _, sym := range s.symbols {
		if sym.Name == name {
			return compileerr.New(compileerr.Semantic, astLine, "Redeclaration of '%s'", name)
		}
	}
	s.symbols = append(s.symbols, Symbol{Name: name, Type: typ})
	return nil
}

func (s *Scope) lookup(name string) VarType {
	for _, sym := range s.symbols {
		if sym.Name == name {
			return sym.Type
		}
	}
	return Unknown
}

// Function is a function's symbol-table record: its declared name,
// return type, local scope, parameter types (for call checking) and
// whether a Return node has been seen for it.
type Function struct {
	Name       string
	ReturnType VarType
	ParamTypes []VarType
	Scope      Scope
	HasReturn  bool
	// Declared is true once a ReturnType AST child has pinned ReturnType
	// from the source declaration; it stops the opportunistic
	// int-then-refine-from-first-return default from overwriting it.
	Declared bool
	astLine  int
}

// analyzer streams AST lines as a cursor, matching parse_node's
// expected-indent discipline: an invocation parameterized by
// expectedIndent returns immediately without advancing if the current
// line's indent doesn't equal it.
type analyzer struct {
	lines      []astline.Line
	pos        int
	functions  []*Function
	global     Scope
	currentFn  *Function
}

// Analyze type-checks the AST text read from r. It returns the first
// semantic error encountered, or nil on success.
func Analyze(r io.Reader) error {
	lines, err := astline.ReadAll(r)
	if err != nil {
		return err
	}
	a := &analyzer{lines: lines}
	for a.pos < len(a.lines) {
		if _, err := a.parseNode(0); err != nil {
			return err
		}
	}
	for _, fn := range a.functions {
		if fn.ReturnType != Void && !fn.HasReturn {
			return compileerr.New(compileerr.Semantic, fn.astLine, "function '%s' missing return", fn.Name)
		}
	}
	return nil
}

func (a *analyzer) cur() astline.Line {
	return a.lines[a.pos]
}

// astLineNo returns the 1-based position of the cursor in the AST text,
// the only line numbering the serialized AST protocol carries.
func (a *analyzer) astLineNo() int {
	return a.pos + 1
}

func (a *analyzer) findFunction(name string) *Function {
	for _, fn := range a.functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

func (a *analyzer) scope() *Scope {
	if a.currentFn != nil {
		return &a.currentFn.Scope
	}
	return &a.global
}

// parseNode consumes and type-checks one AST node at expectedIndent. If
// the cursor is exhausted or not at that indent, it returns Unknown
// without advancing — this is how a recursing call discovers that a
// child (or sibling) list has ended.
func (a *analyzer) parseNode(expectedIndent int) (VarType, error) {
	if a.pos >= len(a.lines) || a.cur().Indent != expectedIndent {
		return Unknown, nil
	}
	line := a.cur()
	txt := line.Text

	switch {
	case strings.HasPrefix(txt, "FunctionDefinition:"):
		return a.parseFunctionDef(expectedIndent)
	case strings.HasPrefix(txt, "ReturnType:"):
		a.pos++
		return Void, nil
	case strings.HasPrefix(txt, "Parameters:"):
		return a.parseParameters(expectedIndent)
	case strings.HasPrefix(txt, "Body:"):
		return a.parseBody(expectedIndent)
	case strings.HasPrefix(txt, "VarDeclGroup:"):
		return a.parseVarDeclGroup(expectedIndent)
	case strings.HasPrefix(txt, "VarDecl:"):
		return a.parseVarDecl(expectedIndent)
	case strings.HasPrefix(txt, "Assign:"):
		return a.parseAssign(expectedIndent)
	case strings.HasPrefix(txt, "If:"):
		return a.parseIf(expectedIndent)
	case strings.HasPrefix(txt, "While:"):
		return a.parseWhile(expectedIndent)
	case strings.HasPrefix(txt, "For:"):
		return a.parseFor(expectedIndent)
	case strings.HasPrefix(txt, "Return:"):
		return a.parseReturn(expectedIndent)
	case strings.HasPrefix(txt, "BinOp("):
		return a.parseBinOp(expectedIndent)
	case strings.HasPrefix(txt, "Number("):
		return a.parseNumber(txt)
	case strings.HasPrefix(txt, "Var("):
		return a.parseVar()
	case strings.HasPrefix(txt, "Cast("):
		return a.parseCast(expectedIndent)
	case strings.HasPrefix(txt, "Call("):
		return a.parseCall(expectedIndent)
	}

	if fn := a.findFunction(txt); fn != nil {
		return a.parseLegacyCall(fn, expectedIndent)
	}

	a.pos++
	return Unknown, nil
}

func (a *analyzer) parseFunctionDef(expectedIndent int) (VarType, error) {
	astLine := a.astLineNo()
	name := strings.TrimSpace(strings.TrimPrefix(a.cur().Text, "FunctionDefinition:"))
	fn := &Function{Name: name, ReturnType: Int, astLine: astLine}
	a.functions = append(a.functions, fn)
	prev := a.currentFn
	a.currentFn = fn
	a.pos++

	if a.pos < len(a.lines) && a.cur().Indent == expectedIndent+1 && strings.HasPrefix(a.cur().Text, "ReturnType:") {
		decl := strings.TrimSpace(strings.TrimPrefix(a.cur().Text, "ReturnType:"))
		fn.ReturnType = stringToType(decl)
		fn.Declared = true
		a.pos++
	}

	if _, err := a.parseNode(expectedIndent + 1); err != nil {
		return Unknown, err
	}
	if _, err := a.parseNode(expectedIndent + 1); err != nil {
		return Unknown, err
	}

	a.currentFn = prev
	return Void, nil
}

func (a *analyzer) parseParameters(expectedIndent int) (VarType, error) {
	a.pos++
	for a.pos < len(a.lines) && a.cur().Indent > expectedIndent {
		sub := a.cur().Text
		var rest string
		switch {
		case strings.HasPrefix(sub, "Param:"):
			rest = strings.TrimPrefix(sub, "Param:")
		case strings.HasPrefix(sub, "VarDecl:"):
			rest = strings.TrimPrefix(sub, "VarDecl:")
		default:
			a.pos++
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) >= 2 {
			typ := stringToType(strings.TrimSuffix(fields[0], "[]"))
			name := strings.TrimSuffix(fields[1], "[]")
			if err := a.currentFn.Scope.add(name, typ, a.astLineNo()); err != nil {
				return Unknown, err
			}
			a.currentFn.ParamTypes = append(a.currentFn.ParamTypes, typ)
		}
		a.pos++
	}
	return Void, nil
}

func (a *analyzer) parseBody(expectedIndent int) (VarType, error) {
	a.pos++
	for a.pos < len(a.lines) && a.cur().Indent > expectedIndent {
		if _, err := a.parseNode(expectedIndent + 1); err != nil {
			return Unknown, err
		}
	}
	return Void, nil
}

func (a *analyzer) parseVarDeclGroup(expectedIndent int) (VarType, error) {
	a.pos++
	for a.pos < len(a.lines) && a.cur().Indent == expectedIndent+1 {
		if _, err := a.parseNode(expectedIndent + 1); err != nil {
			return Unknown, err
		}
	}
	return Void, nil
}

func (a *analyzer) parseVarDecl(expectedIndent int) (VarType, error) {
	astLine := a.astLineNo()
	rest := strings.TrimPrefix(a.cur().Text, "VarDecl:")
	fields := strings.Fields(rest)
	if len(fields) < 2 {
		a.pos++
		return Unknown, nil
	}
	declType := stringToType(fields[0])
	name := fields[1]
	if err := a.scope().add(name, declType, astLine); err != nil {
		return Unknown, err
	}
	hasInit := len(fields) >= 3 && fields[2] == "="
	a.pos++
	if hasInit && a.pos < len(a.lines) && a.cur().Indent == expectedIndent+1 {
		initType, err := a.parseNode(expectedIndent + 1)
		if err != nil {
			return Unknown, err
		}
		if initType != declType {
			return Unknown, compileerr.New(compileerr.Semantic, astLine, "Type mismatch in initialization of '%s'", name)
		}
	}
	return Void, nil
}

func (a *analyzer) parseAssign(expectedIndent int) (VarType, error) {
	astLine := a.astLineNo()
	rest := strings.TrimPrefix(a.cur().Text, "Assign:")
	name := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rest), "="))
	if a.currentFn == nil {
		return Unknown, compileerr.New(compileerr.Semantic, astLine, "Assignment outside function")
	}
	lhs := a.currentFn.Scope.lookup(name)
	if lhs == Unknown {
		return Unknown, compileerr.New(compileerr.Semantic, astLine, "Use of undeclared '%s'", name)
	}
	a.pos++
	rhs, err := a.parseNode(expectedIndent + 1)
	if err != nil {
		return Unknown, err
	}
	if rhs != lhs {
		return Unknown, compileerr.New(compileerr.Semantic, astLine, "Type mismatch in assignment to '%s'", name)
	}
	return Void, nil
}

func (a *analyzer) parseIf(expectedIndent int) (VarType, error) {
	astLine := a.astLineNo()
	a.pos++
	cond, err := a.parseNode(expectedIndent + 1)
	if err != nil {
		return Unknown, err
	}
	if cond != Bool {
		return Unknown, compileerr.New(compileerr.Semantic, astLine, "Condition of 'if' must be boolean")
	}
	if a.pos < len(a.lines) && a.cur().Indent == expectedIndent+1 {
		if _, err := a.parseNode(expectedIndent + 1); err != nil {
			return Unknown, err
		}
	}
	if a.pos < len(a.lines) && a.cur().Indent == expectedIndent+1 && strings.HasPrefix(a.cur().Text, "Else:") {
		a.pos++
		if a.pos < len(a.lines) && a.cur().Indent == expectedIndent+2 {
			if _, err := a.parseNode(expectedIndent + 2); err != nil {
				return Unknown, err
			}
		}
	} else if a.pos < len(a.lines) && a.cur().Indent == expectedIndent+1 && strings.HasPrefix(a.cur().Text, "If:") {
		// flattened else-if chain: the nested If appears as a sibling,
		// not wrapped in Else:.
		if _, err := a.parseNode(expectedIndent + 1); err != nil {
			return Unknown, err
		}
	}
	return Void, nil
}

func (a *analyzer) parseWhile(expectedIndent int) (VarType, error) {
	astLine := a.astLineNo()
	a.pos++
	cond, err := a.parseNode(expectedIndent + 1)
	if err != nil {
		return Unknown, err
	}
	if cond != Bool {
		return Unknown, compileerr.New(compileerr.Semantic, astLine, "Condition of 'while' must be boolean")
	}
	if a.pos < len(a.lines) && a.cur().Indent == expectedIndent+1 {
		if _, err := a.parseNode(expectedIndent + 1); err != nil {
			return Unknown, err
		}
	}
	return Void, nil
}

func (a *analyzer) parseFor(expectedIndent int) (VarType, error) {
	astLine := a.astLineNo()
	a.pos++
	if _, err := a.parseNode(expectedIndent + 1); err != nil {
		return Unknown, err
	}
	cond, err := a.parseNode(expectedIndent + 1)
	if err != nil {
		return Unknown, err
	}
	if cond != Bool {
		return Unknown, compileerr.New(compileerr.Semantic, astLine, "Condition of 'for' must be boolean")
	}
	if _, err := a.parseNode(expectedIndent + 1); err != nil {
		return Unknown, err
	}
	if a.pos < len(a.lines) && a.cur().Indent == expectedIndent+1 {
		if _, err := a.parseNode(expectedIndent + 1); err != nil {
			return Unknown, err
		}
	}
	return Void, nil
}

// parseReturn reproduces the reference analyzer's default-return-type
// rule for ASTs that carry no ReturnType node (the legacy shape emitted
// before the parser started recording declared return types): every
// such function starts assumed to return int, and the type of a Return
// node refines that assumption while it still stands at int (so the
// first Return of a non-int type sets it) — except for a function literally
// named "main", whose return type is pinned at int. Once a function's
// ReturnType has been declared from the AST, it is authoritative and is
// never refined or overwritten here.
func (a *analyzer) parseReturn(expectedIndent int) (VarType, error) {
	astLine := a.astLineNo()
	a.currentFn.HasReturn = true
	rest := strings.TrimSpace(strings.TrimPrefix(a.cur().Text, "Return:"))

	var rt VarType
	var err error
	if rest == "" {
		a.pos++
		rt, err = a.parseNode(expectedIndent + 1)
		if err != nil {
			return Unknown, err
		}
	} else if rest[0] >= '0' && rest[0] <= '9' {
		if strings.Contains(rest, ".") {
			rt = Float
		} else {
			rt = Int
		}
		a.pos++
	} else {
		rt = a.currentFn.Scope.lookup(rest)
		a.pos++
	}

	if !a.currentFn.Declared && a.currentFn.ReturnType == Int && a.currentFn.Name != "main" {
		a.currentFn.ReturnType = rt
	}
	if rt != a.currentFn.ReturnType {
		return Unknown, compileerr.New(compileerr.Semantic, astLine, "Return type mismatch")
	}
	return Void, nil
}

func (a *analyzer) parseBinOp(expectedIndent int) (VarType, error) {
	astLine := a.astLineNo()
	op := strings.TrimSuffix(strings.TrimPrefix(a.cur().Text, "BinOp("), ")")
	a.pos++
	left, err := a.parseNode(expectedIndent + 1)
	if err != nil {
		return Unknown, err
	}
	// Faithful to the reference implementation: a unary "!" still drives
	// a second parse_node call here rather than special-casing arity 1,
	// so it reads whatever node follows (often the next sibling) as a
	// bogus second operand.
	right, err := a.parseNode(expectedIndent + 1)
	if err != nil {
		return Unknown, err
	}
	if left != right {
		return Unknown, compileerr.New(compileerr.Semantic, astLine, "Type mismatch in binary operation")
	}
	switch op {
	case "==", "!=", "<", ">", "<=", ">=", "&&", "||":
		return Bool, nil
	default:
		return left, nil
	}
}

// parseNumber departs from the reference analyzer's Number(...) rule,
// which promotes every literal to int regardless of its text. spec.md's
// own worked scenario for `x = 1.5;` against an int variable requires a
// type mismatch to be reported, which is only possible if a literal
// carrying a decimal point types as float; that is the literal's
// textual form this inspects.
func (a *analyzer) parseNumber(txt string) (VarType, error) {
	lit := strings.TrimSuffix(strings.TrimPrefix(txt, "Number("), ")")
	a.pos++
	if strings.Contains(lit, ".") {
		return Float, nil
	}
	return Int, nil
}

func (a *analyzer) parseVar() (VarType, error) {
	astLine := a.astLineNo()
	name := strings.TrimSuffix(strings.TrimPrefix(a.cur().Text, "Var("), ")")
	var vt VarType
	if a.currentFn != nil {
		vt = a.currentFn.Scope.lookup(name)
	} else {
		vt = a.global.lookup(name)
	}
	if vt == Unknown {
		return Unknown, compileerr.New(compileerr.Semantic, astLine, "Use of undeclared '%s'", name)
	}
	a.pos++
	return vt, nil
}

func (a *analyzer) parseCast(expectedIndent int) (VarType, error) {
	typestr := strings.TrimSuffix(strings.TrimPrefix(a.cur().Text, "Cast("), ")")
	castType := stringToType(typestr)
	a.pos++
	if _, err := a.parseNode(expectedIndent + 1); err != nil {
		return Unknown, err
	}
	return castType, nil
}

// parseCall resolves a Call(<name>) node against the function table
// built so far (functions are only visible to calls that textually
// follow their definition, matching the reference's single forward
// scan), checking argument arity and types against the declared
// parameters — the "Cross-function resolution" extension spec.md's
// design notes call for.
func (a *analyzer) parseCall(expectedIndent int) (VarType, error) {
	astLine := a.astLineNo()
	name := strings.TrimSuffix(strings.TrimPrefix(a.cur().Text, "Call("), ")")
	callee := a.findFunction(name)
	if callee == nil {
		return Unknown, compileerr.New(compileerr.Semantic, astLine, "Call to undeclared function '%s'", name)
	}
	a.pos++
	var argTypes []VarType
	for a.pos < len(a.lines) && a.cur().Indent == expectedIndent+1 {
		at, err := a.parseNode(expectedIndent + 1)
		if err != nil {
			return Unknown, err
		}
		argTypes = append(argTypes, at)
	}
	if len(argTypes) != len(callee.ParamTypes) {
		return Unknown, compileerr.New(compileerr.Semantic, astLine,
			"Call to '%s' expects %d argument(s), got %d", name, len(callee.ParamTypes), len(argTypes))
	}
	for i, pt := range callee.ParamTypes {
		if argTypes[i] != pt {
			return Unknown, compileerr.New(compileerr.Semantic, astLine,
				"Argument %d to '%s' has wrong type", i+1, name)
		}
	}
	return callee.ReturnType, nil
}

// parseLegacyCall handles the pre-REDESIGN call shape: a bare line
// whose text is exactly a known function's name, with no arity or type
// checking, for ASTs emitted by front ends that predate the Call(<name>)
// label.
func (a *analyzer) parseLegacyCall(fn *Function, expectedIndent int) (VarType, error) {
	a.pos++
	for a.pos < len(a.lines) && a.cur().Indent > expectedIndent {
		if _, err := a.parseNode(expectedIndent + 1); err != nil {
			return Unknown, err
		}
	}
	return fn.ReturnType, nil
}
