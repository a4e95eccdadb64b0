// Package interpreter walks the resolved AST and evaluates it. It is a
// tree-walking evaluator: no bytecode, no separate compile step beyond the
// scanner/parser/resolver pipeline that built the AST it receives.
package interpreter

import (
	"fmt"
	"os"

	"treelox/ast"
	"treelox/object"
	"treelox/token"
	"treelox/util"
	"treelox/value"
)

// Interpreter holds all the state a single Interpret call needs: the
// global namespace, the current local scope chain, and the call stack
// used purely for error reporting (it carries no semantic weight).
type Interpreter struct {
	globals  map[string]value.Value
	localEnv *object.LocalEnv

	calledFunctions []string
	errorDistance   int

	// returnValue carries a `return` statement's value out to the nearest
	// enclosing call, since ast.ControlKind alone has no payload.
	returnValue value.Value

	// ReplMode, when set, makes a bare expression statement print its
	// value, same as the interactive prompt in a REPL.
	ReplMode bool
}

// runtimeError is panicked by any runtime fault (type error, undefined
// variable, bad arity, non-callable call, ...); the message and location
// are already printed by the time it is panicked, so recover sites only
// need to know that this one unwind should stop, not propagate as a Go
// panic to the host.
type runtimeError struct{}

func NewInterpreter() *Interpreter {
	i := &Interpreter{
		globals:         map[string]value.Value{},
		calledFunctions: []string{"<script>"},
	}
	for _, nf := range object.NativeFunctionsList {
		i.globals[nf.Name] = nf
	}
	return i
}

// DefineGlobal registers a host-provided value (typically a
// *object.NativeFunction) before any source runs.
func (i *Interpreter) DefineGlobal(name string, v value.Value) {
	i.globals[name] = v
}

// Interpret runs a whole program and reports whether a runtime error
// aborted it. Static (parse/resolve) errors are the caller's concern; this
// assumes stmts is already known to be free of those.
func (i *Interpreter) Interpret(stmts []ast.Stmt) (hadRuntimeError bool) {
	i.localEnv = nil
	i.calledFunctions = []string{"<script>"}
	i.errorDistance = 0

	func() {
		defer func() {
			r := recover()
			switch r.(type) {
			case nil:
			case runtimeError:
				hadRuntimeError = true
			default:
				panic(r)
			}
		}()

		for _, stmt := range stmts {
			i.execute(stmt)
		}
	}()

	return hadRuntimeError
}

// Statement evaluators
// --------------------------------------------------------
func (i *Interpreter) VisitBlockStmt(s *ast.Block) ast.ControlKind {
	return i.executeBlock(s.Statements, object.NewLocalEnv(i.localEnv))
}

func (i *Interpreter) VisitExpressionStmt(s *ast.Expression) ast.ControlKind {
	val := i.evaluate(s.Expression)
	if i.ReplMode {
		fmt.Println(val.String())
	}
	return ast.ControlLinear
}

func (i *Interpreter) VisitPrintStmt(s *ast.Print) ast.ControlKind {
	fmt.Println(i.evaluate(s.Expression).String())
	return ast.ControlLinear
}

func (i *Interpreter) VisitAssertStmt(s *ast.Assert) ast.ControlKind {
	if !value.Truthiness(i.evaluate(s.Expression)) {
		panic(i.runtimeErrorAt(s.Keyword, "Assertion failure."))
	}
	return ast.ControlLinear
}

func (i *Interpreter) VisitBreakStmt(s *ast.Break) ast.ControlKind {
	return ast.ControlBreak
}

func (i *Interpreter) VisitContinueStmt(s *ast.Continue) ast.ControlKind {
	return ast.ControlContinue
}

func (i *Interpreter) VisitReturnStmt(s *ast.Return) ast.ControlKind {
	i.returnValue = value.Nil{}
	if s.Value != nil {
		i.returnValue = i.evaluate(s.Value)
	}
	return ast.ControlReturn
}

func (i *Interpreter) VisitIfStmt(s *ast.If) ast.ControlKind {
	if value.Truthiness(i.evaluate(s.Condition)) {
		return i.execute(s.ThenBranch)
	} else if s.ElseBranch != nil {
		return i.execute(s.ElseBranch)
	}
	return ast.ControlLinear
}

func (i *Interpreter) VisitWhileStmt(s *ast.While) ast.ControlKind {
	for value.Truthiness(i.evaluate(s.Condition)) {
		switch ctrl := i.execute(s.Body); ctrl {
		case ast.ControlBreak:
			return ast.ControlLinear
		case ast.ControlReturn:
			return ast.ControlReturn
		}
	}
	return ast.ControlLinear
}

// VisitForStmt runs the parser's desugared for-loop: same as While, except
// Update still runs (before the condition is retested) after a 'continue'
// unwinds the body early.
func (i *Interpreter) VisitForStmt(s *ast.For) ast.ControlKind {
	for value.Truthiness(i.evaluate(s.Condition)) {
		ctrl := i.execute(s.Body)
		if ctrl == ast.ControlBreak {
			return ast.ControlLinear
		}
		if ctrl == ast.ControlReturn {
			return ast.ControlReturn
		}

		if s.Update != nil {
			i.evaluate(s.Update)
		}
	}
	return ast.ControlLinear
}

func (i *Interpreter) VisitVarStmt(s *ast.Var) ast.ControlKind {
	val := value.Value(value.Nil{})
	if s.Initializer != nil {
		val = i.evaluate(s.Initializer)
	}
	i.defineVariable(s.Name.Lexeme, val)
	return ast.ControlLinear
}

func (i *Interpreter) VisitFunctionStmt(s *ast.Function) ast.ControlKind {
	fn := object.NewFunction(s.Name.Lexeme, s.Params, s.Body, i.localEnv, false)
	i.defineVariable(s.Name.Lexeme, fn)
	return ast.ControlLinear
}

// VisitClassStmt builds the class object in three steps: evaluate the
// superclass, reserve the name (placeholder) in the slot the resolver
// assigned it, build member closures, then overwrite the placeholder with
// the finished class. Methods captured the environment, not a value
// snapshot, so the overwrite is visible to every one of them.
func (i *Interpreter) VisitClassStmt(s *ast.Class) ast.ControlKind {
	var superclass *object.Class
	if s.Superclass != nil {
		superVal := i.evaluate(s.Superclass)
		sc, ok := superVal.(*object.Class)
		if !ok {
			panic(i.runtimeErrorAt(s.Superclass.Name, "Superclass must be a class."))
		}
		superclass = sc
	}

	i.defineVariable(s.Name.Lexeme, value.Nil{})

	closureEnv := i.localEnv
	if superclass != nil {
		closureEnv = object.NewLocalEnv(closureEnv)
		closureEnv.Define(superclass)
	}

	properties := make(map[string]*object.Function, len(s.Properties))
	for name, fn := range s.Properties {
		properties[name] = object.NewFunction(fn.Name.Lexeme, fn.Params, fn.Body, closureEnv, false)
	}
	methods := make(map[string]*object.Function, len(s.Methods))
	for name, fn := range s.Methods {
		methods[name] = object.NewFunction(fn.Name.Lexeme, fn.Params, fn.Body, closureEnv, name == "init")
	}
	classMethods := make(map[string]*object.Function, len(s.ClassMethods))
	for name, fn := range s.ClassMethods {
		classMethods[name] = object.NewFunction(fn.Name.Lexeme, fn.Params, fn.Body, closureEnv, false)
	}

	class := object.NewClass(s.Name.Lexeme, superclass, properties, methods, classMethods)

	if i.localEnv == nil {
		i.globals[s.Name.Lexeme] = class
	} else {
		i.localEnv.SetLast(class)
	}

	return ast.ControlLinear
}

// Expression evaluators
// --------------------------------------------------------
func (i *Interpreter) VisitAssignExpr(e *ast.Assign) any {
	val := i.evaluate(e.Value)

	if e.Distance < 0 {
		name := e.Name.Lexeme
		if _, exists := i.globals[name]; !exists {
			panic(i.runtimeErrorAt(e.Name, "Undefined variable '%v'.", name))
		}
		i.globals[name] = val
	} else {
		i.localEnv.AssignAt(e.Slot, val, e.Distance)
	}

	return val
}

func (i *Interpreter) VisitTernaryExpr(e *ast.Ternary) any {
	if value.Truthiness(i.evaluate(e.Condition)) {
		return i.evaluate(e.TrueExpr)
	}
	return i.evaluate(e.FalseExpr)
}

func (i *Interpreter) VisitLogicalExpr(e *ast.Logical) any {
	left := i.evaluate(e.Left)

	// Return the value that decided the result, not a coerced boolean.
	switch e.Operator.Kind {
	case token.OR:
		if value.Truthiness(left) {
			return left
		}
	case token.AND:
		if !value.Truthiness(left) {
			return left
		}
	default:
		panic("invalid operator in logical expression")
	}

	return i.evaluate(e.Right)
}

func (i *Interpreter) VisitBinaryExpr(e *ast.Binary) any {
	left := i.evaluate(e.Left)
	right := i.evaluate(e.Right)

	result := i.protectedBinaryOp(e.Operator, left, right)
	return result
}

// protectedBinaryOp turns value.TypeError panics from the value package's
// arithmetic helpers into a located runtime error naming the operator. A
// division by zero is checked explicitly first, since value.Div itself
// just returns +/-Inf or NaN like plain float64 division would.
func (i *Interpreter) protectedBinaryOp(op token.Token, left, right value.Value) (result value.Value) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(value.TypeError); ok {
				panic(i.runtimeErrorAt(op, "%v", binaryOpErrorMessage(op.Kind)))
			}
			panic(r)
		}
	}()

	switch op.Kind {
	case token.PLUS:
		return value.Add(left, right)
	case token.MINUS:
		return value.Sub(left, right)
	case token.STAR:
		return value.Mul(left, right)
	case token.SLASH:
		if n, ok := right.(value.Number); ok && n == 0 {
			panic(i.runtimeErrorAt(op, "Division by zero."))
		}
		return value.Div(left, right)

	case token.GREATER:
		return value.GreaterThan(left, right)
	case token.GREATER_EQUAL:
		return value.GreaterThan(left, right) || value.EqualTo(left, right)
	case token.LESS:
		return value.LessThan(left, right)
	case token.LESS_EQUAL:
		return value.LessThan(left, right) || value.EqualTo(left, right)

	case token.EQUAL_EQUAL:
		return value.EqualTo(left, right)
	case token.BANG_EQUAL:
		return !value.EqualTo(left, right)

	default:
		panic("invalid operator token in binary expression")
	}
}

func binaryOpErrorMessage(kind token.TokenKind) string {
	switch kind {
	case token.PLUS:
		return "Operands must be two numbers or the left operand a string."
	default:
		return "Operands must be numbers."
	}
}

func (i *Interpreter) VisitUnaryExpr(e *ast.Unary) any {
	right := i.evaluate(e.Right)

	switch e.Operator.Kind {
	case token.BANG:
		return !value.Truthiness(right)
	case token.MINUS:
		return i.protectedUnaryNeg(e.Operator, right)
	default:
		panic("invalid operator token in unary expression")
	}
}

func (i *Interpreter) protectedUnaryNeg(op token.Token, right value.Value) (result value.Value) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(value.TypeError); ok {
				panic(i.runtimeErrorAt(op, "Operand must be a number."))
			}
			panic(r)
		}
	}()
	return value.Neg(right)
}

func (i *Interpreter) VisitCallExpr(e *ast.Call) any {
	callee := i.evaluate(e.Callee)

	args := make([]value.Value, len(e.Arguments))
	for idx, a := range e.Arguments {
		args[idx] = i.evaluate(a)
	}

	return i.call(callee, args, e.Paren)
}

func (i *Interpreter) call(callee value.Value, args []value.Value, paren token.Token) value.Value {
	switch fn := callee.(type) {
	case *object.Function:
		return i.callFunction(fn, args, paren)
	case *object.NativeFunction:
		return i.callNative(fn, args, paren)
	case *object.Class:
		return i.instantiate(fn, args, paren)
	default:
		panic(i.runtimeErrorAt(paren, "Can only call functions and classes."))
	}
}

func (i *Interpreter) callFunction(fn *object.Function, args []value.Value, paren token.Token) value.Value {
	if fn.Arity() != len(args) {
		panic(i.runtimeErrorAt(paren, "Expected %v arguments but got %v.", fn.Arity(), len(args)))
	}

	callEnv := object.NewLocalEnv(fn.Closure)
	for _, a := range args {
		callEnv.Define(a)
	}

	name := fn.Name
	if name == "" {
		name = "lambda"
	}
	i.calledFunctions = append(i.calledFunctions, name)

	var ctrl ast.ControlKind
	func() {
		defer func() {
			util.Pop(&i.calledFunctions)

			if r := recover(); r != nil {
				if _, ok := r.(runtimeError); ok {
					i.errorDistance++
					printLocation(i.errorDistance, paren.Line, *util.Last(i.calledFunctions))
				}
				panic(r)
			}
		}()

		ctrl = i.executeBlock(fn.Body, callEnv)
	}()

	if fn.IsInitializer {
		return fn.Closure.GetAt(0, 0)
	}
	if ctrl == ast.ControlReturn {
		return i.returnValue
	}
	return value.Nil{}
}

func (i *Interpreter) callNative(fn *object.NativeFunction, args []value.Value, paren token.Token) (result value.Value) {
	if fn.Arity() != len(args) {
		panic(i.runtimeErrorAt(paren, "Expected %v arguments but got %v.", fn.Arity(), len(args)))
	}

	defer func() {
		if r := recover(); r != nil {
			if ne, ok := r.(object.NativeError); ok {
				panic(i.runtimeErrorAt(paren, "%v", ne.Error()))
			}
			panic(r)
		}
	}()

	return fn.Fn(args)
}

func (i *Interpreter) instantiate(class *object.Class, args []value.Value, paren token.Token) value.Value {
	instance := object.NewInstance(class)

	if initFn, ok := class.Method("init"); ok {
		i.callFunction(initFn.Bind(instance), args, paren)
	} else if len(args) != 0 {
		panic(i.runtimeErrorAt(paren, "Expected 0 arguments but got %v.", len(args)))
	}

	return instance
}

func (i *Interpreter) VisitGetExpr(e *ast.Get) any {
	obj := i.evaluate(e.Object)

	switch receiver := obj.(type) {
	case *object.Instance:
		if v, ok := receiver.GetField(e.Name.Lexeme); ok {
			return v
		}
		if method, ok := receiver.Class.Method(e.Name.Lexeme); ok {
			return method.Bind(receiver)
		}
		if prop, ok := receiver.Class.Property(e.Name.Lexeme); ok {
			return i.callFunction(prop.Bind(receiver), nil, e.Name)
		}
		panic(i.runtimeErrorAt(e.Name, "Undefined property '%v'.", e.Name.Lexeme))

	case *object.Class:
		if cm, ok := receiver.ClassMethod(e.Name.Lexeme); ok {
			return bindThisValue(cm, receiver)
		}
		panic(i.runtimeErrorAt(e.Name, "Undefined static method '%v'.", e.Name.Lexeme))

	default:
		panic(i.runtimeErrorAt(e.Name, "Only instances and classes have properties."))
	}
}

func (i *Interpreter) VisitSetExpr(e *ast.Set) any {
	obj := i.evaluate(e.Object)

	inst, ok := obj.(*object.Instance)
	if !ok {
		panic(i.runtimeErrorAt(e.Name, "Only instances have fields."))
	}

	val := i.evaluate(e.Value)
	inst.SetField(e.Name.Lexeme, val)
	return val
}

// bindThisValue generalizes object.Function.Bind to any receiver value,
// used for static class methods whose 'this' is the class object itself
// rather than an *object.Instance.
func bindThisValue(fn *object.Function, this value.Value) *object.Function {
	env := object.NewLocalEnv(fn.Closure)
	env.Define(this)
	return object.NewFunction(fn.Name, fn.Params, fn.Body, env, fn.IsInitializer)
}

func (i *Interpreter) VisitSuperExpr(e *ast.Super) any {
	superVal := i.localEnv.GetAt(e.Slot, e.Distance)
	superclass, ok := superVal.(*object.Class)
	if !ok {
		panic(i.runtimeErrorAt(e.Keyword, "'super' did not resolve to a class."))
	}

	// 'this' is always bound exactly one scope closer than 'super'.
	thisVal := i.localEnv.GetAt(0, e.Distance-1)
	inst, ok := thisVal.(*object.Instance)
	if !ok {
		panic(i.runtimeErrorAt(e.Keyword, "'this' did not resolve to an instance."))
	}

	method, ok := superclass.Method(e.Method.Lexeme)
	if !ok {
		panic(i.runtimeErrorAt(e.Method, "Undefined property '%v'.", e.Method.Lexeme))
	}

	return method.Bind(inst)
}

func (i *Interpreter) VisitThisExpr(e *ast.This) any {
	return i.localEnv.GetAt(e.Slot, e.Distance)
}

func (i *Interpreter) VisitGroupingExpr(e *ast.Grouping) any {
	return i.evaluate(e.Expr)
}

func (i *Interpreter) VisitLiteralExpr(e *ast.Literal) any {
	switch v := e.Value.(type) {
	case nil:
		return value.Nil{}
	case bool:
		return value.Boolean(v)
	case float64:
		return value.Number(v)
	case string:
		return value.String(v)
	default:
		panic("invalid literal value kind")
	}
}

func (i *Interpreter) VisitVariableExpr(e *ast.Variable) any {
	if e.Distance < 0 {
		if v, ok := i.globals[e.Name.Lexeme]; ok {
			return v
		}
		panic(i.runtimeErrorAt(e.Name, "Undefined variable '%v'.", e.Name.Lexeme))
	}
	return i.localEnv.GetAt(e.Slot, e.Distance)
}

func (i *Interpreter) VisitLambdaExpr(e *ast.Lambda) any {
	return object.NewFunction("", e.Params, e.Body, i.localEnv, false)
}

// Error reporting methods
// --------------------------------------------------------
func (i *Interpreter) runtimeErrorAt(tok token.Token, format string, args ...any) runtimeError {
	i.errorDistance = 0
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	printLocation(0, tok.Line, *util.Last(i.calledFunctions))
	return runtimeError{}
}

// Utility methods
// --------------------------------------------------------
func (i *Interpreter) execute(s ast.Stmt) ast.ControlKind {
	return s.Accept(i)
}

func (i *Interpreter) evaluate(e ast.Expr) value.Value {
	return e.Accept(i).(value.Value)
}

func (i *Interpreter) executeBlock(stmts []ast.Stmt, env *object.LocalEnv) ast.ControlKind {
	old := i.localEnv
	i.localEnv = env
	defer func() { i.localEnv = old }()

	for _, stmt := range stmts {
		if ctrl := i.execute(stmt); ctrl != ast.ControlLinear {
			return ctrl
		}
	}
	return ast.ControlLinear
}

// defineVariable defines a variable in the current scope, local or global.
func (i *Interpreter) defineVariable(name string, v value.Value) {
	if i.localEnv == nil {
		i.globals[name] = v
	} else {
		i.localEnv.Define(v)
	}
}
