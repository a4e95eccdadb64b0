package object

import (
	"fmt"
	"treelox/ast"
	"treelox/token"
	"treelox/value"
)

// Function is the runtime representation of both named functions/methods
// and anonymous lambdas; Name is "" for a lambda. Arity is the number of
// declared parameters.
type Function struct {
	Name          string
	Params        []token.Token
	Body          []ast.Stmt
	Closure       *LocalEnv
	IsInitializer bool
}

func (*Function) LoxValueMarkerFunc() {}

func (f *Function) String() string {
	if f.Name == "" {
		return "<fn lambda>"
	}
	return fmt.Sprintf("<fn %v>", f.Name)
}

func NewFunction(name string, params []token.Token, body []ast.Stmt, closure *LocalEnv, isInitializer bool) *Function {
	return &Function{
		Name:          name,
		Params:        params,
		Body:          body,
		Closure:       closure,
		IsInitializer: isInitializer,
	}
}

func (f *Function) Arity() int {
	return len(f.Params)
}

// Bind returns a copy of f whose closure is a fresh scope, enclosed by f's
// own closure, with `this` defined in it. Used both for ordinary method
// access (the interpreter's VisitGetExpr) and for super-method dispatch, where `this` must
// still resolve to the original instance even though the method body being
// bound came from a superclass.
func (f *Function) Bind(instance *Instance) *Function {
	env := NewLocalEnv(f.Closure)
	env.Define(instance)

	return &Function{
		Name:          f.Name,
		Params:        f.Params,
		Body:          f.Body,
		Closure:       env,
		IsInitializer: f.IsInitializer,
	}
}

// NativeFunction wraps a host-provided callable (see package lox's
// DefineGlobal), e.g. clock().
type NativeFunction struct {
	Name   string
	Arity_ int
	Fn     func(args []value.Value) value.Value
}

func (n *NativeFunction) Arity() int {
	return n.Arity_
}

func (*NativeFunction) LoxValueMarkerFunc() {}

func (n *NativeFunction) String() string {
	return fmt.Sprintf("<native fn %v>", n.Name)
}
