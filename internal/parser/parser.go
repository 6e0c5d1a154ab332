// Package parser implements the recursive-descent parser: token stream
// in, AST nodes out (ast.Write turns them into the indented text form).
// Grounded on the reference compiler's
// hand-written descent (phase2_syntax.c in the retrieved original
// source) — the same production names and lookahead tricks, rebuilt as
// Go methods returning (*ast.Node, error) instead of exiting the process.
package parser

import (
	"github.com/danialebr/minic/internal/ast"
	"github.com/danialebr/minic/internal/compileerr"
	"github.com/danialebr/minic/internal/token"
)

// Parser walks a fixed token slice with a single cursor; there is no
// backtracking anywhere in the grammar.
type Parser struct {
	toks []token.Token
	pos  int
}

// New creates a Parser over a complete token stream, including its
// trailing EOF token.
func New(toks []token.Token) *Parser {
	return &Parser{toks: toks}
}

// Parse runs the program production and returns the Program's children
// in source order — the Program node itself is never serialized.
func Parse(toks []token.Token) ([]*ast.Node, error) {
	p := New(toks)
	return p.parseProgram()
}

func (p *Parser) peek() token.Token {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return token.Token{Kind: token.EOF, Lexeme: "EOF"}
}

func (p *Parser) peekAt(offset int) (token.Token, bool) {
	idx := p.pos + offset
	if idx < len(p.toks) {
		return p.toks[idx], true
	}
	return token.Token{}, false
}

func (p *Parser) advance() token.Token {
	t := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) isPunct(t token.Token, lex string) bool {
	return t.Kind == token.Punctuation && t.Lexeme == lex
}

func (p *Parser) isOp(t token.Token, lex string) bool {
	return t.Kind == token.Operator && t.Lexeme == lex
}

func (p *Parser) isKeyword(t token.Token, lex string) bool {
	return t.Kind == token.Keyword && t.Lexeme == lex
}

func (p *Parser) isType(t token.Token) bool {
	return t.Kind == token.Keyword && (t.Lexeme == "int" || t.Lexeme == "float")
}

func (p *Parser) syntaxErrorf(format string, args ...any) error {
	return compileerr.New(compileerr.Syntax, p.peek().Line, format, args...)
}

func (p *Parser) expectPunct(lex string) error {
	t := p.peek()
	if !p.isPunct(t, lex) {
		return compileerr.New(compileerr.Syntax, t.Line, "expected '%s', got '%s'", lex, t.Lexeme)
	}
	p.advance()
	return nil
}

func (p *Parser) expectOp(lex string) error {
	t := p.peek()
	if !p.isOp(t, lex) {
		return compileerr.New(compileerr.Syntax, t.Line, "expected '%s', got '%s'", lex, t.Lexeme)
	}
	p.advance()
	return nil
}

func (p *Parser) expectKeyword(lex string) error {
	t := p.peek()
	if !p.isKeyword(t, lex) {
		return compileerr.New(compileerr.Syntax, t.Line, "expected keyword '%s', got '%s'", lex, t.Lexeme)
	}
	p.advance()
	return nil
}

func (p *Parser) expectIdentifier() (token.Token, error) {
	t := p.peek()
	if t.Kind != token.Identifier {
		return t, compileerr.New(compileerr.Syntax, t.Line, "expected identifier, got '%s'", t.Lexeme)
	}
	p.advance()
	return t, nil
}

// program := { function_def | var_decl }
func (p *Parser) parseProgram() ([]*ast.Node, error) {
	var nodes []*ast.Node
	for p.peek().Kind != token.EOF {
		t := p.peek()
		if t.Kind == token.Keyword && (t.Lexeme == "int" || t.Lexeme == "float" || t.Lexeme == "void") {
			t1, ok1 := p.peekAt(1)
			t2, ok2 := p.peekAt(2)
			if ok1 && t1.Kind == token.Identifier && ok2 && p.isPunct(t2, "(") {
				fn, err := p.parseFunctionDef()
				if err != nil {
					return nil, err
				}
				nodes = append(nodes, fn)
				continue
			}
		}
		if t.Kind == token.Keyword && (t.Lexeme == "int" || t.Lexeme == "float") {
			decl, err := p.parseVarDecl()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, decl)
			continue
		}
		return nil, compileerr.New(compileerr.Syntax, t.Line, "unexpected token '%s' at global scope", t.Lexeme)
	}
	return nodes, nil
}

// function_def := type IDENT '(' param_list ')' '{' body '}'
//
// The declared return type is carried into the AST as a ReturnType
// child, ahead of Parameters and Body — the fix the reference compiler's
// design notes call for ("store it in the AST node at parse time")
// instead of leaving every function's declared type unrecoverable from
// the serialized form. Without it, a void function is indistinguishable
// from one whose return type was never stated, and the missing-return
// check cannot honor spec's void exemption.
func (p *Parser) parseFunctionDef() (*ast.Node, error) {
	t := p.peek()
	if !p.isType(t) && !p.isKeyword(t, "void") {
		return nil, compileerr.New(compileerr.Syntax, t.Line, "expected function return type, got '%s'", t.Lexeme)
	}
	returnTypeTok := t
	p.advance()

	name, err := p.expectIdentifier()
	if err != nil {
		return nil, compileerr.New(compileerr.Syntax, name.Line, "expected function name, got '%s'", name.Lexeme)
	}
	fn := &ast.Node{Kind: ast.FunctionDef, Label: name.Lexeme, Line: name.Line}
	fn.Children = append(fn.Children, &ast.Node{Kind: ast.ReturnType, Label: returnTypeTok.Lexeme, Line: returnTypeTok.Line})

	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	fn.Children = append(fn.Children, params)
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	fn.Children = append(fn.Children, body)
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return fn, nil
}

// param_list := (type IDENT ['[' ']'] {',' type IDENT ['[' ']']})?
//
// Each parameter is represented as a Param node ("<type> <name>", with
// a trailing "[]" for an array parameter) under the Parameters list.
func (p *Parser) parseParamList() (*ast.Node, error) {
	params := &ast.Node{Kind: ast.ParamList}
	for {
		t := p.peek()
		if p.isPunct(t, ")") {
			break
		}
		if !p.isType(t) {
			return nil, compileerr.New(compileerr.Syntax, t.Line, "expected type in parameter, got '%s'", t.Lexeme)
		}
		typeTok := p.advance()

		name, err := p.expectIdentifier()
		if err != nil {
			return nil, compileerr.New(compileerr.Syntax, name.Line, "expected identifier in parameter, got '%s'", name.Lexeme)
		}

		isArray := false
		if p.isPunct(p.peek(), "[") {
			p.advance()
			if err := p.expectPunct("]"); err != nil {
				return nil, err
			}
			isArray = true
		}

		label := typeTok.Lexeme + " " + name.Lexeme
		if isArray {
			label += "[]"
		}
		params.Children = append(params.Children, &ast.Node{Kind: ast.Param, Label: label, Line: name.Line})

		if p.isPunct(p.peek(), ",") {
			p.advance()
			continue
		}
		break
	}
	return params, nil
}

// body := { var_decl | statement }
func (p *Parser) parseBody() (*ast.Node, error) {
	body := &ast.Node{Kind: ast.Body}
	for {
		t := p.peek()
		if t.Kind == token.EOF || p.isPunct(t, "}") {
			break
		}
		if p.isType(t) {
			decl, err := p.parseVarDecl()
			if err != nil {
				return nil, err
			}
			body.Children = append(body.Children, decl)
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body.Children = append(body.Children, stmt)
	}
	return body, nil
}

// parseElseBody reproduces the reference parser's bare-`else` quirk: it
// calls the same body loop a block uses, with no enclosing '{' expected
// and no bound other than '}' or end of input — so an unbraced else
// clause can swallow statements that follow it in the enclosing block.
func (p *Parser) parseElseBody() (*ast.Node, error) {
	return p.parseBody()
}

// var_decl := ('int'|'float') IDENT ['=' expr] {',' IDENT ['=' expr]} ';'
func (p *Parser) parseVarDecl() (*ast.Node, error) {
	t := p.peek()
	if !p.isType(t) {
		return nil, compileerr.New(compileerr.Syntax, t.Line, "expected type in declaration, got '%s'", t.Lexeme)
	}
	typeText := t.Lexeme
	p.advance()

	group := &ast.Node{Kind: ast.VarDeclGroup, Line: t.Line}

	for {
		name, err := p.expectIdentifier()
		if err != nil {
			return nil, compileerr.New(compileerr.Syntax, name.Line, "expected identifier in declaration, got '%s'", name.Lexeme)
		}

		var decl *ast.Node
		if p.isOp(p.peek(), "=") {
			p.advance()
			rhs, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			decl = &ast.Node{Kind: ast.VarDecl, Label: typeText + " " + name.Lexeme + " =", Line: name.Line}
			decl.Children = append(decl.Children, rhs)
		} else {
			decl = &ast.Node{Kind: ast.VarDecl, Label: typeText + " " + name.Lexeme, Line: name.Line}
		}
		group.Children = append(group.Children, decl)

		next := p.peek()
		if next.Kind != token.Punctuation {
			return nil, compileerr.New(compileerr.Syntax, next.Line, "expected ',' or ';'")
		}
		if next.Lexeme == "," {
			p.advance()
			continue
		}
		if next.Lexeme == ";" {
			p.advance()
			break
		}
		return nil, compileerr.New(compileerr.Syntax, next.Line, "expected ',' or ';', got '%s'", next.Lexeme)
	}

	return group, nil
}

// statement := block | assignment ';' | return_stmt | if_stmt | while_stmt | for_stmt
func (p *Parser) parseStatement() (*ast.Node, error) {
	t := p.peek()

	if p.isPunct(t, "{") {
		return p.parseBlockStatement()
	}

	if t.Kind == token.Identifier {
		if next, ok := p.peekAt(1); ok && p.isOp(next, "=") {
			return p.parseAssignment()
		}
	}

	if p.isKeyword(t, "return") {
		return p.parseReturnStatement()
	}
	if p.isKeyword(t, "if") {
		return p.parseIfStatement()
	}
	if p.isKeyword(t, "while") {
		return p.parseWhileStatement()
	}
	if p.isKeyword(t, "for") {
		return p.parseForStatement()
	}

	return nil, compileerr.New(compileerr.Syntax, t.Line, "unexpected token '%s' in statement", t.Lexeme)
}

// block := '{' { var_decl | statement } '}'
func (p *Parser) parseBlockStatement() (*ast.Node, error) {
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return body, nil
}

// assignment := IDENT '=' expr ';'
func (p *Parser) parseAssignment() (*ast.Node, error) {
	assign, err := p.parseAssignmentInline()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return assign, nil
}

// parseAssignmentInline parses an assignment without its trailing ';',
// used by both plain assignment statements and the for-loop's init/step
// clauses.
func (p *Parser) parseAssignmentInline() (*ast.Node, error) {
	name, err := p.expectIdentifier()
	if err != nil {
		return nil, compileerr.New(compileerr.Syntax, name.Line, "expected identifier in assignment, got '%s'", name.Lexeme)
	}
	if err := p.expectOp("="); err != nil {
		return nil, err
	}
	assign := &ast.Node{Kind: ast.Assign, Label: name.Lexeme + " =", Line: name.Line}
	rhs, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	assign.Children = append(assign.Children, rhs)
	return assign, nil
}

// return_stmt := 'return' expr ';'
//
// If the expression is a bare Number or Var, its lexeme is folded into
// the Return label and it is not kept as a child node — this is the
// reference parser's shape for "Return: <lexeme>".
func (p *Parser) parseReturnStatement() (*ast.Node, error) {
	line := p.peek().Line
	if err := p.expectKeyword("return"); err != nil {
		return nil, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	if expr.Kind == ast.Number || expr.Kind == ast.Var {
		return &ast.Node{Kind: ast.Return, Label: expr.Label, Line: line}, nil
	}
	ret := &ast.Node{Kind: ast.Return, Line: line}
	ret.Children = append(ret.Children, expr)
	return ret, nil
}

// if_stmt := 'if' '(' expr ')' statement ['else' statement]
//
// A bare else clause is parsed with parseElseBody (the reference
// parser's parse_body, not parse_statement) and wrapped in an Else
// node; an "else if" is recursed into directly with no Else wrapper, so
// the nested If becomes a direct child of the outer If (a sibling of its
// condition and then-branch) rather than nesting through Else/If pairs.
func (p *Parser) parseIfStatement() (*ast.Node, error) {
	if err := p.expectKeyword("if"); err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}

	ifNode := &ast.Node{Kind: ast.If}
	ifNode.Children = append(ifNode.Children, cond)

	thenStmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	ifNode.Children = append(ifNode.Children, thenStmt)

	if p.isKeyword(p.peek(), "else") {
		p.advance()
		if next, ok := p.peekAt(0); ok && p.isKeyword(next, "if") {
			elseIf, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			ifNode.Children = append(ifNode.Children, elseIf)
		} else {
			elseBody, err := p.parseElseBody()
			if err != nil {
				return nil, err
			}
			elseNode := &ast.Node{Kind: ast.Else}
			elseNode.Children = append(elseNode.Children, elseBody)
			ifNode.Children = append(ifNode.Children, elseNode)
		}
	}

	return ifNode, nil
}

// while_stmt := 'while' '(' expr ')' statement
func (p *Parser) parseWhileStatement() (*ast.Node, error) {
	if err := p.expectKeyword("while"); err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	whileNode := &ast.Node{Kind: ast.While}
	whileNode.Children = append(whileNode.Children, cond)
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	whileNode.Children = append(whileNode.Children, body)
	return whileNode, nil
}

// for_stmt := 'for' '(' [assignment] ';' [expr] ';' [assignment] ')' statement
func (p *Parser) parseForStatement() (*ast.Node, error) {
	if err := p.expectKeyword("for"); err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	forNode := &ast.Node{Kind: ast.For}

	if !p.isPunct(p.peek(), ";") {
		init, err := p.parseAssignmentInline()
		if err != nil {
			return nil, err
		}
		forNode.Children = append(forNode.Children, init)
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}

	if !p.isPunct(p.peek(), ";") {
		cond, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		forNode.Children = append(forNode.Children, cond)
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}

	if !p.isPunct(p.peek(), ")") {
		step, err := p.parseAssignmentInline()
		if err != nil {
			return nil, err
		}
		forNode.Children = append(forNode.Children, step)
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	forNode.Children = append(forNode.Children, body)
	return forNode, nil
}

func (p *Parser) parseExpression() (*ast.Node, error) {
	return p.parseLogicalOr()
}

// logical_or := logical_and {'||' logical_and}
func (p *Parser) parseLogicalOr() (*ast.Node, error) {
	node, err := p.parseLogicalAnd()
	if err != nil {
		return nil, err
	}
	for p.isOp(p.peek(), "||") {
		p.advance()
		rhs, err := p.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		node = &ast.Node{Kind: ast.BinOp, Label: "||", Children: []*ast.Node{node, rhs}}
	}
	return node, nil
}

// logical_and := comparison {'&&' comparison}
func (p *Parser) parseLogicalAnd() (*ast.Node, error) {
	node, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.isOp(p.peek(), "&&") {
		p.advance()
		rhs, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		node = &ast.Node{Kind: ast.BinOp, Label: "&&", Children: []*ast.Node{node, rhs}}
	}
	return node, nil
}

var comparisonOps = map[string]bool{"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true}

// comparison := add_sub {('==' | '!=' | '<' | '>' | '<=' | '>=') add_sub}
func (p *Parser) parseComparison() (*ast.Node, error) {
	node, err := p.parseAddSub()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.Kind != token.Operator || !comparisonOps[t.Lexeme] {
			break
		}
		p.advance()
		rhs, err := p.parseAddSub()
		if err != nil {
			return nil, err
		}
		node = &ast.Node{Kind: ast.BinOp, Label: t.Lexeme, Children: []*ast.Node{node, rhs}}
	}
	return node, nil
}

// add_sub := term {('+' | '-') term}
func (p *Parser) parseAddSub() (*ast.Node, error) {
	node, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.Kind != token.Operator || (t.Lexeme != "+" && t.Lexeme != "-") {
			break
		}
		p.advance()
		rhs, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		node = &ast.Node{Kind: ast.BinOp, Label: t.Lexeme, Children: []*ast.Node{node, rhs}}
	}
	return node, nil
}

// term := factor {('*' | '/' | '%') factor}
func (p *Parser) parseTerm() (*ast.Node, error) {
	node, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.Kind != token.Operator || (t.Lexeme != "*" && t.Lexeme != "/" && t.Lexeme != "%") {
			break
		}
		p.advance()
		rhs, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		node = &ast.Node{Kind: ast.BinOp, Label: t.Lexeme, Children: []*ast.Node{node, rhs}}
	}
	return node, nil
}

// factor handles casts, parens, unary !, literals, variables, and calls.
// A cast is recognized only when '(' is followed by a type keyword and
// ')' in three consecutive tokens, matching the three-token lookahead
// the reference parser performs.
func (p *Parser) parseFactor() (*ast.Node, error) {
	t := p.peek()

	if p.isPunct(t, "(") {
		if t1, ok1 := p.peekAt(1); ok1 && p.isType(t1) {
			if t2, ok2 := p.peekAt(2); ok2 && p.isPunct(t2, ")") {
				p.advance()
				typeTok := p.advance()
				p.advance() // ')'
				inner, err := p.parseFactor()
				if err != nil {
					return nil, err
				}
				return &ast.Node{Kind: ast.Cast, Label: typeTok.Lexeme, Children: []*ast.Node{inner}}, nil
			}
		}
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return expr, nil
	}

	if p.isOp(t, "!") {
		p.advance()
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.BinOp, Label: "!", Children: []*ast.Node{operand}}, nil
	}

	if t.Kind == token.IntLiteral || t.Kind == token.FloatLiteral {
		p.advance()
		return &ast.Node{Kind: ast.Number, Label: t.Lexeme, Line: t.Line}, nil
	}

	if t.Kind == token.Identifier {
		if next, ok := p.peekAt(1); ok && p.isPunct(next, "(") {
			return p.parseFunctionCall()
		}
		p.advance()
		return &ast.Node{Kind: ast.Var, Label: t.Lexeme, Line: t.Line}, nil
	}

	return nil, compileerr.New(compileerr.Syntax, t.Line, "unexpected token '%s' in factor", t.Lexeme)
}

// parseFunctionCall emits a distinct Call(<name>) node rather than the
// reference parser's ambiguous bare-name shape.
func (p *Parser) parseFunctionCall() (*ast.Node, error) {
	name, err := p.expectIdentifier()
	if err != nil {
		return nil, compileerr.New(compileerr.Syntax, name.Line, "expected function name, got '%s'", name.Lexeme)
	}
	call := &ast.Node{Kind: ast.Call, Label: name.Lexeme, Line: name.Line}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	for !p.isPunct(p.peek(), ")") {
		if p.peek().Kind == token.EOF {
			return nil, p.syntaxErrorf("unexpected end of input, expected ')'")
		}
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		call.Children = append(call.Children, arg)
		if p.isPunct(p.peek(), ",") {
			p.advance()
			continue
		}
		break
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return call, nil
}
