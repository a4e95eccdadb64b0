package object

import (
	"fmt"
	"time"
	"treelox/value"
)

// NativeFunctionsList are the natives pre-registered by interpreter.NewInterpreter
// before any user source runs, in addition to whatever a host registers
// itself via DefineGlobal.
var NativeFunctionsList = []*NativeFunction{
	{"clock", 0, clock},
	{"string", 1, tostring},
	{"getattr", 2, getattr},
	{"setattr", 3, setattr},
	{"delattr", 2, delattr},
	{"isinstance", 2, isinstance},
}

// NativeError is panicked by a native function on a domain/type error; the
// interpreter catches it and reports it the same way as any other runtime
// error. Arity itself is always checked by the interpreter before Fn runs.
type NativeError struct {
	message string
}

func (n NativeError) Error() string { return n.message }

func nativeErrorf(format string, args ...any) NativeError {
	return NativeError{message: fmt.Sprintf(format, args...)}
}

func clock(args []value.Value) value.Value {
	return value.Number(time.Now().UnixMilli()) / 1000.0
}

func tostring(args []value.Value) value.Value {
	return value.String(args[0].String())
}

func getattr(args []value.Value) value.Value {
	instance := extractArg[*Instance](args[0], "First argument to 'getattr' should be an instance.")
	field := extractArg[value.String](args[1], "Second argument to 'getattr' should be a field name.")

	if v, ok := instance.GetField(string(field)); ok {
		return v
	}
	panic(nativeErrorf("Instance has no attribute named '%v'.", field))
}

func setattr(args []value.Value) value.Value {
	instance := extractArg[*Instance](args[0], "First argument to 'setattr' should be an instance.")
	field := extractArg[value.String](args[1], "Second argument to 'setattr' should be a field name.")

	instance.SetField(string(field), args[2])
	return value.Nil{}
}

func delattr(args []value.Value) value.Value {
	instance := extractArg[*Instance](args[0], "First argument to 'delattr' should be an instance.")
	field := extractArg[value.String](args[1], "Second argument to 'delattr' should be a field name.")

	if _, ok := instance.Fields[string(field)]; ok {
		delete(instance.Fields, string(field))
	} else {
		panic(nativeErrorf("Instance has no attribute named '%v'.", field))
	}
	return value.Nil{}
}

func isinstance(args []value.Value) value.Value {
	instance := extractArg[*Instance](args[0], "First argument to 'isinstance' should be an instance.")
	class := extractArg[*Class](args[1], "Second argument to 'isinstance' should be a class.")

	for c := instance.Class; c != nil; c = c.Superclass {
		if c == class {
			return value.Boolean(true)
		}
	}
	return value.Boolean(false)
}

func extractArg[T value.Value](arg value.Value, errMessage string) T {
	if v, ok := arg.(T); ok {
		return v
	}
	panic(nativeErrorf(errMessage))
}
