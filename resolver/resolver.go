// Package resolver performs the static pass between parsing and
// interpretation: it walks the AST once, assigns a (distance, slot)
// binding to every local Variable/Assign/This/Super reference, and reports
// the language's compile-time diagnostics (unused locals, invalid
// return/break/continue/this/super, self-reference in an initializer,
// redeclaration).
package resolver

import (
	"fmt"
	"os"

	"treelox/ast"
	"treelox/token"
)

type funcKind uint8

const (
	kindNone funcKind = iota
	kindFunction
	kindLambda
	kindMethod
	kindInitializer
	kindClassMethod
)

type classKind uint8

const (
	classKindNone classKind = iota
	classKindClass
	classKindSubclass
)

// Resolver implements both ast.StmtVisitor and ast.ExprVisitor; its Visit
// methods are driven purely for their side effects (AST annotation and
// diagnostics), so ExprVisitor's `any` return is always nil and
// StmtVisitor's ControlKind return is always ast.ControlLinear.
type Resolver struct {
	scopes scopeStack

	currentFunction funcKind
	currentClass    classKind
	loopDepth       int

	// HadError reports whether any static diagnostic was emitted; the host
	// should skip interpretation when true, same as a parser error.
	HadError bool
}

func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve walks the whole program. Top-level declarations are never pushed
// onto the scope stack (globals are resolved by name at runtime, not by
// slot), so only nested scopes participate in the state machine below.
func (r *Resolver) Resolve(stmts []ast.Stmt) bool {
	r.resolveStmts(stmts)
	return !r.HadError
}

func (r *Resolver) resolveStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		r.resolveStmt(s)
	}
}

func (r *Resolver) resolveStmt(s ast.Stmt) {
	if s != nil {
		s.Accept(r)
	}
}

func (r *Resolver) resolveExpr(e ast.Expr) {
	if e != nil {
		e.Accept(r)
	}
}

// Statement visitors
// --------------------------------------------------------
func (r *Resolver) VisitBlockStmt(s *ast.Block) ast.ControlKind {
	r.beginScope()
	r.resolveStmts(s.Statements)
	r.endScope()
	return ast.ControlLinear
}

func (r *Resolver) VisitExpressionStmt(s *ast.Expression) ast.ControlKind {
	r.resolveExpr(s.Expression)
	return ast.ControlLinear
}

func (r *Resolver) VisitPrintStmt(s *ast.Print) ast.ControlKind {
	r.resolveExpr(s.Expression)
	return ast.ControlLinear
}

func (r *Resolver) VisitAssertStmt(s *ast.Assert) ast.ControlKind {
	r.resolveExpr(s.Expression)
	return ast.ControlLinear
}

func (r *Resolver) VisitBreakStmt(s *ast.Break) ast.ControlKind {
	if r.loopDepth == 0 {
		r.errorAt(s.Keyword, "Can't use 'break' outside of a loop.")
	}
	return ast.ControlLinear
}

func (r *Resolver) VisitContinueStmt(s *ast.Continue) ast.ControlKind {
	if r.loopDepth == 0 {
		r.errorAt(s.Keyword, "Can't use 'continue' outside of a loop.")
	}
	return ast.ControlLinear
}

func (r *Resolver) VisitReturnStmt(s *ast.Return) ast.ControlKind {
	if r.currentFunction == kindNone {
		r.errorAt(s.Keyword, "Can't return from top-level code.")
	}
	if s.Value != nil {
		if r.currentFunction == kindInitializer {
			r.errorAt(s.Keyword, "Can't return a value from an initializer.")
		}
		r.resolveExpr(s.Value)
	}
	return ast.ControlLinear
}

func (r *Resolver) VisitIfStmt(s *ast.If) ast.ControlKind {
	r.resolveExpr(s.Condition)
	r.resolveStmt(s.ThenBranch)
	if s.ElseBranch != nil {
		r.resolveStmt(s.ElseBranch)
	}
	return ast.ControlLinear
}

func (r *Resolver) VisitWhileStmt(s *ast.While) ast.ControlKind {
	r.resolveExpr(s.Condition)
	r.loopDepth++
	r.resolveStmt(s.Body)
	r.loopDepth--
	return ast.ControlLinear
}

func (r *Resolver) VisitForStmt(s *ast.For) ast.ControlKind {
	r.resolveExpr(s.Condition)
	r.loopDepth++
	r.resolveStmt(s.Body)
	r.resolveExpr(s.Update)
	r.loopDepth--
	return ast.ControlLinear
}

func (r *Resolver) VisitVarStmt(s *ast.Var) ast.ControlKind {
	if r.scopes.empty() {
		// Global: no slot tracking, no redeclaration/unused diagnostics.
		r.resolveExpr(s.Initializer)
		return ast.ControlLinear
	}

	if s.Initializer == nil {
		r.declareAndSetState(s.Name, defined)
		return ast.ControlLinear
	}

	info := r.declareAndSetState(s.Name, declared)
	r.resolveExpr(s.Initializer)
	if info != nil {
		info.state = assigned
	}
	return ast.ControlLinear
}

func (r *Resolver) VisitFunctionStmt(s *ast.Function) ast.ControlKind {
	if !r.scopes.empty() {
		r.declareAndSetState(s.Name, assigned)
	}
	r.resolveFunctionBody(s.Params, s.Body, kindFunction)
	return ast.ControlLinear
}

func (r *Resolver) VisitClassStmt(s *ast.Class) ast.ControlKind {
	enclosingClass := r.currentClass
	defer func() { r.currentClass = enclosingClass }()

	if !r.scopes.empty() {
		r.declareAndSetState(s.Name, assigned)
	}

	r.currentClass = classKindClass

	if s.Superclass != nil {
		if s.Superclass.Name.Lexeme == s.Name.Lexeme {
			r.errorAt(s.Superclass.Name, "A class can't inherit from itself.")
		}
		r.currentClass = classKindSubclass
		r.resolveExpr(s.Superclass)

		r.beginScope()
		r.scopes.top().declareSynthetic("super")
	}

	r.beginScope()
	r.scopes.top().declareSynthetic("this")

	for _, fn := range s.Properties {
		r.resolveFunctionBody(fn.Params, fn.Body, kindMethod)
	}
	for name, fn := range s.Methods {
		kind := kindMethod
		if name == "init" {
			kind = kindInitializer
		}
		r.resolveFunctionBody(fn.Params, fn.Body, kind)
	}
	for _, fn := range s.ClassMethods {
		r.resolveFunctionBody(fn.Params, fn.Body, kindClassMethod)
	}

	r.endScope() // this

	if s.Superclass != nil {
		r.endScope() // super
	}

	return ast.ControlLinear
}

// Expression visitors
// --------------------------------------------------------
func (r *Resolver) VisitAssignExpr(e *ast.Assign) any {
	r.resolveExpr(e.Value)

	distance, slot, isLocal := r.resolveAssignTarget(e.Name.Lexeme)
	e.Distance, e.Slot = -1, -1
	if isLocal {
		e.Distance, e.Slot = distance, slot
	}
	return nil
}

func (r *Resolver) VisitTernaryExpr(e *ast.Ternary) any {
	r.resolveExpr(e.Condition)
	r.resolveExpr(e.TrueExpr)
	r.resolveExpr(e.FalseExpr)
	return nil
}

func (r *Resolver) VisitLogicalExpr(e *ast.Logical) any {
	r.resolveExpr(e.Left)
	r.resolveExpr(e.Right)
	return nil
}

func (r *Resolver) VisitBinaryExpr(e *ast.Binary) any {
	r.resolveExpr(e.Left)
	r.resolveExpr(e.Right)
	return nil
}

func (r *Resolver) VisitUnaryExpr(e *ast.Unary) any {
	r.resolveExpr(e.Right)
	return nil
}

func (r *Resolver) VisitCallExpr(e *ast.Call) any {
	r.resolveExpr(e.Callee)
	for _, arg := range e.Arguments {
		r.resolveExpr(arg)
	}
	return nil
}

func (r *Resolver) VisitGetExpr(e *ast.Get) any {
	r.resolveExpr(e.Object)
	return nil
}

func (r *Resolver) VisitSetExpr(e *ast.Set) any {
	r.resolveExpr(e.Value)
	r.resolveExpr(e.Object)
	return nil
}

func (r *Resolver) VisitSuperExpr(e *ast.Super) any {
	switch r.currentClass {
	case classKindNone:
		r.errorAt(e.Keyword, "Can't use 'super' outside of a class.")
	case classKindClass:
		r.errorAt(e.Keyword, "Can't use 'super' in a class with no superclass.")
	}

	distance, slot, isLocal := r.resolveVariableRead("super", e.Keyword)
	e.Distance, e.Slot = -1, -1
	if isLocal {
		e.Distance, e.Slot = distance, slot
	}
	return nil
}

func (r *Resolver) VisitThisExpr(e *ast.This) any {
	if r.currentClass == classKindNone {
		r.errorAt(e.Keyword, "Can't use 'this' outside of a class.")
	} else if r.currentFunction == kindClassMethod {
		r.errorAt(e.Keyword, "Can't use 'this' inside a static class method.")
	}

	distance, slot, isLocal := r.resolveVariableRead("this", e.Keyword)
	e.Distance, e.Slot = -1, -1
	if isLocal {
		e.Distance, e.Slot = distance, slot
	}
	return nil
}

func (r *Resolver) VisitGroupingExpr(e *ast.Grouping) any {
	r.resolveExpr(e.Expr)
	return nil
}

func (r *Resolver) VisitLiteralExpr(e *ast.Literal) any {
	return nil
}

func (r *Resolver) VisitVariableExpr(e *ast.Variable) any {
	distance, slot, isLocal := r.resolveVariableRead(e.Name.Lexeme, e.Name)
	e.Distance, e.Slot = -1, -1
	if isLocal {
		e.Distance, e.Slot = distance, slot
	}
	return nil
}

func (r *Resolver) VisitLambdaExpr(e *ast.Lambda) any {
	r.resolveFunctionBody(e.Params, e.Body, kindLambda)
	return nil
}

// Binding and scope helpers
// --------------------------------------------------------
func (r *Resolver) resolveFunctionBody(params []token.Token, body []ast.Stmt, kind funcKind) {
	enclosingFunction := r.currentFunction
	r.currentFunction = kind

	r.beginScope()
	for _, p := range params {
		r.declareAndSetState(p, assigned)
	}
	r.resolveStmts(body)
	r.endScope()

	r.currentFunction = enclosingFunction
}

// declareAndSetState declares name in the innermost scope and sets its
// initial state, reporting redeclaration instead if the name is already
// present. Must only be called when the scope stack is non-empty.
func (r *Resolver) declareAndSetState(tok token.Token, state variableState) *variableInfo {
	top := r.scopes.top()
	info, isNew := top.declare(tok.Lexeme, tok)
	if !isNew {
		r.errorAt(tok, "Variable with this name already declared in this scope.")
		return info
	}
	info.state = state
	return info
}

// resolveVariableRead looks up name as a read: reports self-reference and
// read-before-assignment, then (unless the binding is a synthesized
// ignored one) marks it accessed. Returns isLocal=false for an unbound
// name, meaning it resolves as a global at runtime.
func (r *Resolver) resolveVariableRead(name string, tok token.Token) (distance, slot int, isLocal bool) {
	info, distance, found := r.scopes.find(name)
	if !found {
		return -1, -1, false
	}

	switch info.state {
	case declared:
		r.errorAt(tok, "Can't read local variable '%s' in its own initializer.", name)
	case defined:
		r.errorAt(tok, "Can't read local variable '%s' before it is assigned.", name)
	}

	if info.state != ignored {
		info.state = accessed
	}
	return distance, info.slot, true
}

// resolveAssignTarget looks up name as a write target: a write only ever
// upgrades {declared, defined} to assigned, never downgrades an already
// assigned/accessed binding.
func (r *Resolver) resolveAssignTarget(name string) (distance, slot int, isLocal bool) {
	info, distance, found := r.scopes.find(name)
	if !found {
		return -1, -1, false
	}

	if info.state == declared || info.state == defined {
		info.state = assigned
	}
	return distance, info.slot, true
}

func (r *Resolver) beginScope() {
	r.scopes.push(newScope())
}

// endScope pops the innermost scope and reports every binding in it that
// never reached a terminal, "used" state.
func (r *Resolver) endScope() {
	s := r.scopes.pop()
	for name, info := range s.vars {
		switch info.state {
		case defined:
			r.errorAt(info.token, "Variable '%s' is defined but never assigned.", name)
		case assigned:
			r.errorAt(info.token, "Variable '%s' is assigned to but never accessed.", name)
		}
	}
}

func (r *Resolver) errorAt(tok token.Token, format string, args ...any) {
	r.HadError = true
	fmt.Fprintf(os.Stderr, "[line %v] Error at '%v': ", tok.Line, tok.Lexeme)
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
