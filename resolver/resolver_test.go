package resolver

import (
	"testing"

	"treelox/ast"
	"treelox/parser"
)

func resolve(t *testing.T, src string) (*Resolver, []ast.Stmt) {
	t.Helper()
	p := parser.MakeParser(src)
	stmts := p.Parse()
	if stmts == nil {
		t.Fatalf("parse(%q) failed unexpectedly", src)
	}
	r := NewResolver()
	r.Resolve(stmts)
	return r, stmts
}

func TestResolveLocalVariableGetsSlotAndDistance(t *testing.T) {
	_, stmts := resolve(t, "{ var a = 1; print a; }")
	block := stmts[0].(*ast.Block)
	printStmt := block.Statements[1].(*ast.Print)
	v := printStmt.Expression.(*ast.Variable)

	if v.Distance != 0 || v.Slot != 0 {
		t.Errorf("got (Distance, Slot) = (%d, %d), want (0, 0)", v.Distance, v.Slot)
	}
}

func TestResolveGlobalVariableIsUnresolved(t *testing.T) {
	_, stmts := resolve(t, "var a = 1; print a;")
	printStmt := stmts[1].(*ast.Print)
	v := printStmt.Expression.(*ast.Variable)

	if v.Distance != -1 {
		t.Errorf("global variable Distance = %d, want -1", v.Distance)
	}
}

func TestResolveSelfReferenceInInitializerIsAnError(t *testing.T) {
	r, _ := resolve(t, "{ var a = a; }")
	if !r.HadError {
		t.Error("expected HadError for 'var a = a;' in a local scope")
	}
}

func TestResolveReadBeforeAssignmentIsAnError(t *testing.T) {
	r, _ := resolve(t, "{ var a; print a; }")
	if !r.HadError {
		t.Error("expected HadError reading a defined-but-unassigned local")
	}
}

func TestResolveRedeclarationIsAnError(t *testing.T) {
	r, _ := resolve(t, "{ var a = 1; var a = 2; }")
	if !r.HadError {
		t.Error("expected HadError for redeclaring 'a' in the same scope")
	}
}

func TestResolveUnusedLocalIsAnError(t *testing.T) {
	r, _ := resolve(t, "{ var a = 1; }")
	if !r.HadError {
		t.Error("expected HadError for an assigned-but-never-accessed local")
	}
}

func TestResolveBreakOutsideLoopIsAnError(t *testing.T) {
	r, _ := resolve(t, "break;")
	if !r.HadError {
		t.Error("expected HadError for 'break' outside a loop")
	}
}

func TestResolveContinueInsideForIsNotAnError(t *testing.T) {
	r, _ := resolve(t, "for (var i = 0; i < 3; i = i + 1) { continue; }")
	if r.HadError {
		t.Error("'continue' inside a for-loop body should not error")
	}
}

func TestResolveReturnOutsideFunctionIsAnError(t *testing.T) {
	r, _ := resolve(t, "return 1;")
	if !r.HadError {
		t.Error("expected HadError for a top-level 'return'")
	}
}

func TestResolveThisOutsideClassIsAnError(t *testing.T) {
	r, _ := resolve(t, "print this;")
	if !r.HadError {
		t.Error("expected HadError for 'this' outside a class")
	}
}

func TestResolveThisInsideClassMethodIsAnError(t *testing.T) {
	src := `
		class C {
			class make() { return this; }
		}
	`
	r, _ := resolve(t, src)
	if !r.HadError {
		t.Error("expected HadError for 'this' inside a static class method")
	}
}

func TestResolveSuperWithoutSuperclassIsAnError(t *testing.T) {
	src := `
		class C {
			m() { return super.m(); }
		}
	`
	r, _ := resolve(t, src)
	if !r.HadError {
		t.Error("expected HadError for 'super' in a class with no superclass")
	}
}

func TestResolveClassInheritingFromItselfIsAnError(t *testing.T) {
	r, _ := resolve(t, "class C < C {}")
	if !r.HadError {
		t.Error("expected HadError for a class inheriting from itself")
	}
}

func TestResolveValidSubclassMethodResolvesSuperAndThis(t *testing.T) {
	src := `
		class Base {
			greet() { return "base"; }
		}
		class Derived < Base {
			greet() { return super.greet(); }
			self() { return this; }
		}
	`
	r, _ := resolve(t, src)
	if r.HadError {
		t.Error("valid subclass method using super/this should not error")
	}
}

func TestResolveFunctionParamsShareBodyScope(t *testing.T) {
	r, _ := resolve(t, "fun f(x) { var y = x; print y; }")
	if r.HadError {
		t.Error("params and body locals in one scope should resolve cleanly")
	}
}
