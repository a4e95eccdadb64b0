package object

import (
	"testing"

	"treelox/token"
	"treelox/value"
)

func TestLocalEnvGetAtAndAssignAt(t *testing.T) {
	outer := NewLocalEnv(nil)
	outer.Define(value.Number(1))

	inner := NewLocalEnv(outer)
	inner.Define(value.Number(2))

	if got := inner.GetAt(0, 0); got != value.Number(2) {
		t.Errorf("GetAt(0,0) = %v, want 2", got)
	}
	if got := inner.GetAt(0, 1); got != value.Number(1) {
		t.Errorf("GetAt(0,1) = %v, want 1", got)
	}

	inner.AssignAt(0, value.Number(9), 1)
	if got := outer.GetAt(0, 0); got != value.Number(9) {
		t.Errorf("after AssignAt, outer slot 0 = %v, want 9", got)
	}
}

func TestLocalEnvSetLastOverwritesMostRecentDefine(t *testing.T) {
	env := NewLocalEnv(nil)
	env.Define(value.Nil{})
	env.SetLast(value.String("replaced"))

	if got := env.GetAt(0, 0); got != value.String("replaced") {
		t.Errorf("GetAt(0,0) after SetLast = %v, want %q", got, "replaced")
	}
}

func TestFunctionBindDefinesThisInFreshScope(t *testing.T) {
	closure := NewLocalEnv(nil)
	fn := NewFunction("greet", nil, nil, closure, false)

	instance := &Instance{Class: &Class{Name: "C"}, Fields: map[string]value.Value{}}
	bound := fn.Bind(instance)

	if bound.Closure == closure {
		t.Fatal("Bind should create a fresh closure scope, not mutate the original")
	}
	if got := bound.Closure.GetAt(0, 0); got != value.Value(instance) {
		t.Errorf("bound closure slot 0 = %v, want the bound instance", got)
	}
	if bound.Name != fn.Name || bound.IsInitializer != fn.IsInitializer {
		t.Error("Bind should preserve Name and IsInitializer")
	}
}

func TestClassMethodLookupWalksSuperclassChain(t *testing.T) {
	baseMethod := NewFunction("speak", nil, nil, nil, false)
	base := NewClass("Base", nil, nil, map[string]*Function{"speak": baseMethod}, nil)
	derived := NewClass("Derived", base, nil, map[string]*Function{}, nil)

	fn, ok := derived.Method("speak")
	if !ok || fn != baseMethod {
		t.Error("Derived.Method(\"speak\") should find Base's method")
	}

	if _, ok := derived.Method("missing"); ok {
		t.Error("Method lookup for a name that doesn't exist should fail")
	}
}

func TestClassArityMatchesInitOrZero(t *testing.T) {
	noInit := NewClass("Plain", nil, nil, map[string]*Function{}, nil)
	if noInit.Arity() != 0 {
		t.Errorf("Arity() with no init = %d, want 0", noInit.Arity())
	}

	oneParam := []token.Token{{Kind: token.IDENTIFIER, Lexeme: "x"}}
	withInit := NewClass("WithInit", nil, nil, map[string]*Function{
		"init": NewFunction("init", oneParam, nil, nil, true),
	}, nil)
	if withInit.Arity() != 1 {
		t.Errorf("Arity() with a 1-param init = %d, want 1", withInit.Arity())
	}
}

func TestInstanceFieldsShadowNothingUntilSet(t *testing.T) {
	inst := NewInstance(&Class{Name: "C"})
	if _, ok := inst.GetField("x"); ok {
		t.Error("fresh instance should have no fields")
	}
	inst.SetField("x", value.Number(42))
	v, ok := inst.GetField("x")
	if !ok || v != value.Number(42) {
		t.Errorf("GetField(\"x\") = (%v, %v), want (42, true)", v, ok)
	}
}
