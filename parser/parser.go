// Package parser implements a recursive-descent parser that turns a token
// stream into a list of statement nodes. Variable binding resolution is a
// separate pass (package resolver); this package only knows grammar.
package parser

import (
	"fmt"
	"os"

	"treelox/ast"
	"treelox/scanner"
	"treelox/token"
)

// MaxParams caps both declared parameters and call arguments, per the
// language's 8-parameter limit.
const MaxParams = 8

type Parser struct {
	scn      scanner.Scanner
	previous token.Token
	current  token.Token

	// HadError reports whether any syntax error (or scan error) was seen;
	// the host is expected to skip resolution/interpretation when true.
	HadError bool
}

// syntaxError is panicked to unwind out of a malformed production; Parse
// recovers it and resynchronizes at statement boundaries.
type syntaxError struct{}

func MakeParser(source string) Parser {
	scn := scanner.MakeScanner(source)
	return Parser{scn: scn}
}

// Parse consumes the whole token stream and returns the resulting
// statement list, or nil if any syntax/scan error was reported.
func (p *Parser) Parse() []ast.Stmt {
	p.advance() // prime the parser with the first token

	stmts := make([]ast.Stmt, 0)
	for !p.check(token.END_OF_FILE) {
		stmt := p.declarationRecoverably()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}

	if p.scn.HadError {
		p.HadError = true
	}

	if p.HadError {
		return nil
	}
	return stmts
}

func (p *Parser) declarationRecoverably() (stmt ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(syntaxError); !ok {
				panic(r)
			}
			p.synchronize()
			stmt = nil
		}
	}()

	return p.declaration()
}

// Statement parsing methods
// --------------------------------------------------------
func (p *Parser) declaration() ast.Stmt {
	switch {
	case p.match(token.CLASS):
		return p.classDeclaration()
	case p.match(token.FUN):
		return p.function("function")
	case p.match(token.VAR):
		return p.varDeclaration()
	default:
		return p.statement()
	}
}

func (p *Parser) classDeclaration() ast.Stmt {
	name := p.consume(token.IDENTIFIER, "Expect class name.")

	var superclass *ast.Variable
	if p.match(token.LESS) {
		sname := p.consume(token.IDENTIFIER, "Expect superclass name.")
		superclass = &ast.Variable{Name: sname, Distance: -1, Slot: -1}
	}

	p.consume(token.LEFT_BRACE, "Expect '{' before class body.")

	class := ast.Class{
		Name:         name,
		Superclass:   superclass,
		Properties:   map[string]*ast.Function{},
		Methods:      map[string]*ast.Function{},
		ClassMethods: map[string]*ast.Function{},
	}

	for !p.check(token.RIGHT_BRACE) && !p.check(token.END_OF_FILE) {
		if p.match(token.CLASS) {
			// Static class method; must be declared with parens.
			fn := p.function("class method")
			class.ClassMethods[fn.Name.Lexeme] = fn
			continue
		}

		fn := p.function("method")
		if fn.IsProperty {
			class.Properties[fn.Name.Lexeme] = fn
		} else {
			class.Methods[fn.Name.Lexeme] = fn
		}
	}

	p.consume(token.RIGHT_BRACE, "Expect '}' after class body.")
	return &class
}

// function parses `IDENT ("(" params? ")")? block`. A member with no
// parens is a property (getter); only allowed for `kind == "method"`.
func (p *Parser) function(kind string) *ast.Function {
	name := p.consume(token.IDENTIFIER, "Expect "+kind+" name.")

	isProperty := !p.check(token.LEFT_PAREN)
	if isProperty && kind != "method" {
		p.error("A " + kind + " must be declared with parentheses.")
		// Continue after the error; parse it as if it had parens.
		isProperty = false
	}

	params := make([]token.Token, 0)
	if !isProperty {
		p.consume(token.LEFT_PAREN, "Expect '(' after "+kind+" name.")
		if !p.check(token.RIGHT_PAREN) {
			for {
				if len(params) >= MaxParams {
					p.errorAt(p.current, fmt.Sprintf("Can't have more than %v parameters.", MaxParams))
				}
				params = append(params, p.consume(token.IDENTIFIER, "Expect parameter name."))

				if !p.match(token.COMMA) {
					break
				}
			}
		}
		p.consume(token.RIGHT_PAREN, "Expect ')' after parameters.")
	}

	p.consume(token.LEFT_BRACE, "Expect '{' before "+kind+" body.")
	body := p.bareBlock()

	return &ast.Function{Name: name, Params: params, Body: body, IsProperty: isProperty}
}

func (p *Parser) varDeclaration() ast.Stmt {
	name := p.consume(token.IDENTIFIER, "Expect a variable name.")

	// Initializer stays nil for a bare 'var x;' so the resolver/interpreter
	// can tell that apart from an explicit 'var x = nil;'.
	var initializer ast.Expr
	if p.match(token.EQUAL) {
		initializer = p.expression()
	}

	p.consume(token.SEMICOLON, "Expect ';' after variable declaration.")
	return &ast.Var{Name: name, Initializer: initializer}
}

func (p *Parser) statement() ast.Stmt {
	switch {
	case p.match(token.ASSERT):
		return p.assertStatement()
	case p.match(token.PRINT):
		return p.printStatement()
	case p.match(token.BREAK):
		return p.breakStatement()
	case p.match(token.CONTINUE):
		return p.continueStatement()
	case p.match(token.RETURN):
		return p.returnStatement()
	case p.match(token.IF):
		return p.ifStatement()
	case p.match(token.WHILE):
		return p.whileStatement()
	case p.match(token.FOR):
		return p.forStatement()
	case p.match(token.LEFT_BRACE):
		return ast.NewBlock(p.bareBlock()...)
	default:
		return p.expressionStatement()
	}
}

func (p *Parser) assertStatement() ast.Stmt {
	keyword := p.previous
	expr := p.expression()
	p.consume(token.SEMICOLON, "Expect ';' after expression.")
	return &ast.Assert{Keyword: keyword, Expression: expr}
}

func (p *Parser) printStatement() ast.Stmt {
	expr := p.expression()
	p.consume(token.SEMICOLON, "Expect ';' after expression.")
	return &ast.Print{Expression: expr}
}

func (p *Parser) breakStatement() ast.Stmt {
	kw := p.previous
	p.consume(token.SEMICOLON, "Expect ';' after 'break'.")
	return &ast.Break{Keyword: kw}
}

func (p *Parser) continueStatement() ast.Stmt {
	kw := p.previous
	p.consume(token.SEMICOLON, "Expect ';' after 'continue'.")
	return &ast.Continue{Keyword: kw}
}

func (p *Parser) returnStatement() ast.Stmt {
	kw := p.previous
	var value ast.Expr // nil means a bare 'return;'

	if !p.check(token.SEMICOLON) {
		value = p.expression()
	}
	p.consume(token.SEMICOLON, "Expect ';' after return value.")

	return &ast.Return{Keyword: kw, Value: value}
}

func (p *Parser) ifStatement() ast.Stmt {
	p.consume(token.LEFT_PAREN, "Expect '(' after 'if'.")
	condition := p.expression()
	p.consume(token.RIGHT_PAREN, "Expect ')' after condition.")

	thenBranch := p.statement()
	var elseBranch ast.Stmt
	if p.match(token.ELSE) {
		elseBranch = p.statement()
	}

	return &ast.If{Condition: condition, ThenBranch: thenBranch, ElseBranch: elseBranch}
}

func (p *Parser) whileStatement() ast.Stmt {
	p.consume(token.LEFT_PAREN, "Expect '(' after 'while'.")
	condition := p.expression()
	p.consume(token.RIGHT_PAREN, "Expect ')' after condition.")

	body := p.statement()
	return &ast.While{Condition: condition, Body: body}
}

// forStatement desugars:
//
//	for (init; cond; update) body
//
// into: { init; for(cond, update) body }, where the internal ast.For node
// behaves like a while loop that also runs `update` at the end of every
// iteration (including one skipped early by `continue`). A missing
// condition becomes literal `true`.
func (p *Parser) forStatement() ast.Stmt {
	p.consume(token.LEFT_PAREN, "Expect '(' after 'for'.")

	var init ast.Stmt
	switch {
	case p.match(token.SEMICOLON):
		init = nil
	case p.match(token.VAR):
		init = p.varDeclaration()
	default:
		init = p.expressionStatement()
	}

	var cond ast.Expr = &ast.Literal{Value: true}
	if !p.check(token.SEMICOLON) {
		cond = p.expression()
	}
	p.consume(token.SEMICOLON, "Expect ';' after loop condition.")

	var update ast.Expr
	if !p.check(token.RIGHT_PAREN) {
		update = p.expression()
	}
	p.consume(token.RIGHT_PAREN, "Expect ')' after for-clauses.")

	body := p.statement()
	forLoop := &ast.For{Condition: cond, Body: body, Update: update}

	if init == nil {
		return forLoop
	}
	return ast.NewBlock(init, forLoop)
}

func (p *Parser) expressionStatement() ast.Stmt {
	expr := p.expression()
	p.consume(token.SEMICOLON, "Expect ';' after expression.")
	return &ast.Expression{Expression: expr}
}

// Expression parsing methods
// --------------------------------------------------------
func (p *Parser) expression() ast.Expr {
	return p.assignment()
}

func (p *Parser) assignment() ast.Expr {
	if p.match(token.FUN) {
		return p.lambda()
	}

	expr := p.ternary()

	if p.match(token.EQUAL) {
		equals := p.previous
		value := p.assignment()

		switch target := expr.(type) {
		case *ast.Variable:
			return &ast.Assign{Name: target.Name, Value: value, Distance: -1, Slot: -1}
		case *ast.Get:
			return &ast.Set{Object: target.Object, Name: target.Name, Value: value}
		default:
			p.errorAt(equals, "Invalid assignment target.")
			// Continue after the error; the syntax is still well formed.
		}
	}

	return expr
}

func (p *Parser) lambda() ast.Expr {
	keyword := p.previous
	p.consume(token.LEFT_PAREN, "Expect '(' after 'fun'.")

	params := make([]token.Token, 0)
	if !p.check(token.RIGHT_PAREN) {
		for {
			if len(params) >= MaxParams {
				p.errorAt(p.current, fmt.Sprintf("Can't have more than %v parameters.", MaxParams))
			}
			params = append(params, p.consume(token.IDENTIFIER, "Expect parameter name."))

			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RIGHT_PAREN, "Expect ')' after parameters.")
	p.consume(token.LEFT_BRACE, "Expect '{' before lambda body.")
	body := p.bareBlock()

	return &ast.Lambda{Keyword: keyword, Params: params, Body: body}
}

func (p *Parser) ternary() ast.Expr {
	expr := p.logicOr()

	if p.match(token.QUESTION) {
		trueExpr := p.expression()
		p.consume(token.COLON, "Expect ':' in ternary expression.")
		falseExpr := p.ternary()

		return &ast.Ternary{Condition: expr, TrueExpr: trueExpr, FalseExpr: falseExpr}
	}

	return expr
}

func (p *Parser) logicOr() ast.Expr {
	expr := p.logicAnd()
	for p.match(token.OR) {
		op := p.previous
		right := p.logicAnd()
		expr = &ast.Logical{Operator: op, Left: expr, Right: right}
	}
	return expr
}

func (p *Parser) logicAnd() ast.Expr {
	expr := p.equality()
	for p.match(token.AND) {
		op := p.previous
		right := p.equality()
		expr = &ast.Logical{Operator: op, Left: expr, Right: right}
	}
	return expr
}

func (p *Parser) equality() ast.Expr {
	expr := p.comparison()
	for p.matchAny(token.EQUAL_EQUAL, token.BANG_EQUAL) {
		op := p.previous
		right := p.comparison()
		expr = &ast.Binary{Operator: op, Left: expr, Right: right}
	}
	return expr
}

func (p *Parser) comparison() ast.Expr {
	expr := p.term()
	for p.matchAny(token.LESS, token.LESS_EQUAL, token.GREATER, token.GREATER_EQUAL) {
		op := p.previous
		right := p.term()
		expr = &ast.Binary{Operator: op, Left: expr, Right: right}
	}
	return expr
}

func (p *Parser) term() ast.Expr {
	expr := p.factor()
	for p.matchAny(token.PLUS, token.MINUS) {
		op := p.previous
		right := p.factor()
		expr = &ast.Binary{Operator: op, Left: expr, Right: right}
	}
	return expr
}

func (p *Parser) factor() ast.Expr {
	expr := p.unary()
	for p.matchAny(token.STAR, token.SLASH) {
		op := p.previous
		right := p.unary()
		expr = &ast.Binary{Operator: op, Left: expr, Right: right}
	}
	return expr
}

func (p *Parser) unary() ast.Expr {
	if p.matchAny(token.BANG, token.MINUS) {
		op := p.previous
		right := p.unary()
		return &ast.Unary{Operator: op, Right: right}
	}
	return p.call()
}

func (p *Parser) call() ast.Expr {
	expr := p.primary()

	for {
		switch {
		case p.match(token.DOT):
			name := p.consume(token.IDENTIFIER, "Expect property name after '.'.")
			expr = &ast.Get{Object: expr, Name: name}
		case p.match(token.LEFT_PAREN):
			expr = p.finishCall(expr)
		default:
			return expr
		}
	}
}

func (p *Parser) finishCall(callee ast.Expr) ast.Expr {
	args := make([]ast.Expr, 0)

	if !p.check(token.RIGHT_PAREN) {
		for {
			if len(args) >= MaxParams {
				p.errorAt(p.current, fmt.Sprintf("Can't have more than %v arguments.", MaxParams))
			}
			args = append(args, p.expression())

			if !p.match(token.COMMA) {
				break
			}
		}
	}

	paren := p.consume(token.RIGHT_PAREN, "Expect ')' after arguments.")
	return &ast.Call{Callee: callee, Paren: paren, Arguments: args}
}

func (p *Parser) primary() ast.Expr {
	switch {
	case p.match(token.FALSE):
		return &ast.Literal{Value: false}
	case p.match(token.TRUE):
		return &ast.Literal{Value: true}
	case p.match(token.NIL):
		return &ast.Literal{Value: nil}

	case p.match(token.THIS):
		return &ast.This{Keyword: p.previous, Distance: -1, Slot: -1}

	case p.match(token.SUPER):
		return p.super()

	case p.matchAny(token.NUMBER, token.STRING):
		return &ast.Literal{Value: p.previous.Literal}

	case p.match(token.IDENTIFIER):
		return &ast.Variable{Name: p.previous, Distance: -1, Slot: -1}

	case p.match(token.LEFT_PAREN):
		expr := p.expression()
		p.consume(token.RIGHT_PAREN, "Expect ')' after expression.")
		return &ast.Grouping{Expr: expr}
	}

	p.errorAt(p.current, "Expect expression.")
	panic(syntaxError{})
}

func (p *Parser) super() ast.Expr {
	keyword := p.previous
	p.consume(token.DOT, "Expect '.' after 'super'.")
	method := p.consume(token.IDENTIFIER, "Expect superclass method name.")

	return &ast.Super{Keyword: keyword, Method: method, Distance: -1, Slot: -1}
}

// Parsing helpers
// --------------------------------------------------------
// bareBlock parses `declaration* '}'` without any scope management, used
// for anything that manages its own scope (function/lambda/method bodies).
func (p *Parser) bareBlock() []ast.Stmt {
	stmts := make([]ast.Stmt, 0)

	for !p.check(token.RIGHT_BRACE) && !p.check(token.END_OF_FILE) {
		stmt := p.declarationRecoverably()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}

	p.consume(token.RIGHT_BRACE, "Expect '}' after block.")
	return stmts
}

// Error reporting and recovery methods
// --------------------------------------------------------
func (p *Parser) error(format string, args ...any) {
	p.errorAt(p.previous, format, args...)
}

func (p *Parser) errorAt(tok token.Token, message string, args ...any) {
	p.HadError = true

	at := "'" + tok.Lexeme + "'"
	if tok.Kind == token.END_OF_FILE {
		at = "end"
	}

	fmt.Fprintf(os.Stderr, "[line %v] Error at %v: ", tok.Line, at)
	fmt.Fprintf(os.Stderr, message+"\n", args...)
}

// synchronize discards tokens until one that looks like the start of a new
// statement/declaration, to avoid a cascade of spurious errors.
func (p *Parser) synchronize() {
	p.advance()

	for p.current.Kind != token.END_OF_FILE {
		if p.previous.Kind == token.SEMICOLON || p.previous.Kind == token.RIGHT_BRACE {
			return
		}

		switch p.current.Kind {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF,
			token.WHILE, token.RETURN, token.PRINT, token.ASSERT:
			return
		default:
			p.advance()
		}
	}
}

// Token matching and processing methods
// --------------------------------------------------------
func (p *Parser) consume(kind token.TokenKind, message string) token.Token {
	if p.check(kind) {
		return p.advance()
	}

	p.error(message)
	panic(syntaxError{})
}

func (p *Parser) matchAny(kinds ...token.TokenKind) bool {
	for _, kind := range kinds {
		if p.check(kind) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) match(kind token.TokenKind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) check(kind token.TokenKind) bool {
	return p.current.Kind == kind
}

func (p *Parser) advance() token.Token {
	p.previous = p.current
	p.current = p.scn.NextToken()
	return p.previous
}
