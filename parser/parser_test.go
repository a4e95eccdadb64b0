package parser

import (
	"testing"

	"treelox/ast"
)

func parse(t *testing.T, src string) []ast.Stmt {
	t.Helper()
	p := MakeParser(src)
	stmts := p.Parse()
	if stmts == nil {
		t.Fatalf("Parse(%q) failed unexpectedly (HadError=%v)", src, p.HadError)
	}
	return stmts
}

func TestParseVarWithAndWithoutInitializer(t *testing.T) {
	stmts := parse(t, "var a; var b = 1;")
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(stmts))
	}

	a, ok := stmts[0].(*ast.Var)
	if !ok {
		t.Fatalf("stmts[0] is %T, want *ast.Var", stmts[0])
	}
	if a.Initializer != nil {
		t.Errorf("bare 'var a;' should leave Initializer nil, got %#v", a.Initializer)
	}

	b, ok := stmts[1].(*ast.Var)
	if !ok {
		t.Fatalf("stmts[1] is %T, want *ast.Var", stmts[1])
	}
	if b.Initializer == nil {
		t.Error("'var b = 1;' should have a non-nil Initializer")
	}
}

func TestParseForDesugarsToBlockWrappingFor(t *testing.T) {
	stmts := parse(t, "for (var i = 0; i < 10; i = i + 1) print i;")
	if len(stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(stmts))
	}

	block, ok := stmts[0].(*ast.Block)
	if !ok {
		t.Fatalf("top-level statement is %T, want *ast.Block", stmts[0])
	}
	if len(block.Statements) != 2 {
		t.Fatalf("got %d statements inside the block, want 2 (init, for)", len(block.Statements))
	}
	if _, ok := block.Statements[0].(*ast.Var); !ok {
		t.Errorf("block.Statements[0] is %T, want *ast.Var", block.Statements[0])
	}
	forStmt, ok := block.Statements[1].(*ast.For)
	if !ok {
		t.Fatalf("block.Statements[1] is %T, want *ast.For", block.Statements[1])
	}
	if forStmt.Update == nil {
		t.Error("for loop's Update should be set")
	}
}

func TestParseForWithoutConditionDefaultsToTrue(t *testing.T) {
	stmts := parse(t, "for (;;) print 1;")
	forStmt, ok := stmts[0].(*ast.For)
	if !ok {
		t.Fatalf("got %T, want *ast.For", stmts[0])
	}
	lit, ok := forStmt.Condition.(*ast.Literal)
	if !ok {
		t.Fatalf("condition is %T, want *ast.Literal", forStmt.Condition)
	}
	if lit.Value != true {
		t.Errorf("default condition = %#v, want true", lit.Value)
	}
}

func TestParseClassSplitsPropertiesMethodsAndClassMethods(t *testing.T) {
	src := `
		class Greeter {
			name { return "world"; }
			greet() { return "hi"; }
			class make() { return Greeter(); }
		}
	`
	stmts := parse(t, src)
	class, ok := stmts[0].(*ast.Class)
	if !ok {
		t.Fatalf("got %T, want *ast.Class", stmts[0])
	}
	if _, ok := class.Properties["name"]; !ok {
		t.Error("expected 'name' to be a property")
	}
	if _, ok := class.Methods["greet"]; !ok {
		t.Error("expected 'greet' to be a method")
	}
	if _, ok := class.ClassMethods["make"]; !ok {
		t.Error("expected 'make' to be a class method")
	}
}

func TestParseTooManyParamsIsAnError(t *testing.T) {
	src := "fun f(a,b,c,d,e,f,g,h,i) {}"
	p := MakeParser(src)
	p.Parse()
	if !p.HadError {
		t.Error("expected HadError for a function with 9 parameters")
	}
}

func TestParseInvalidAssignmentTargetIsAnError(t *testing.T) {
	p := MakeParser("1 + 2 = 3;")
	p.Parse()
	if !p.HadError {
		t.Error("expected HadError for an invalid assignment target")
	}
}

func TestParseTernaryAndLambdaExpressions(t *testing.T) {
	stmts := parse(t, "var f = fun (x) { return x ? 1 : 2; };")
	v, ok := stmts[0].(*ast.Var)
	if !ok {
		t.Fatalf("got %T, want *ast.Var", stmts[0])
	}
	lambda, ok := v.Initializer.(*ast.Lambda)
	if !ok {
		t.Fatalf("initializer is %T, want *ast.Lambda", v.Initializer)
	}
	ret, ok := lambda.Body[0].(*ast.Return)
	if !ok {
		t.Fatalf("lambda body[0] is %T, want *ast.Return", lambda.Body[0])
	}
	if _, ok := ret.Value.(*ast.Ternary); !ok {
		t.Errorf("return value is %T, want *ast.Ternary", ret.Value)
	}
}
