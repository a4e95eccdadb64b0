// Package value defines the tagged union of primitive Lox runtime values:
// Nil, Boolean, Number and String. Heap objects (function, class, instance,
// native) live in package object and implement the same Value interface.
package value

import "strconv"

// Value is implemented by every value stored in a variable, whether a
// primitive (this package) or a heap object (package object).
type Value interface {
	String() string
	LoxValueMarkerFunc()
}

// TypeError is panicked on an invalid logical or mathematical operation; the
// interpreter converts it into a located runtime error before it reaches
// the host.
type TypeError struct{}

// Primitive value types are defined in terms of Go's own primitive types
// and stored by value. Heap objects (see package object) are stored as
// pointers so identity comparison falls out of plain `==`.
type Nil struct{}
type Boolean bool
type Number float64
type String string

func (Nil) LoxValueMarkerFunc()     {}
func (Boolean) LoxValueMarkerFunc() {}
func (Number) LoxValueMarkerFunc()  {}
func (String) LoxValueMarkerFunc()  {}

func (n Nil) String() string {
	return "nil"
}

func (b Boolean) String() string {
	if b {
		return "true"
	}
	return "false"
}

func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

func (s String) String() string {
	return string(s)
}

// Truthiness: nil and false are false, everything else (including 0 and
// the empty string) is true.
func Truthiness(s Value) Boolean {
	switch v := s.(type) {
	case Nil:
		return false
	case Boolean:
		return Boolean(v)
	default:
		return true
	}
}

// LessThan and GreaterThan are defined only for two numbers.
func LessThan(s, t Value) Boolean {
	if u, ok := s.(Number); ok {
		if v, ok := t.(Number); ok {
			return u < v
		}
	}
	panic(TypeError{})
}

func GreaterThan(s, t Value) Boolean {
	if u, ok := s.(Number); ok {
		if v, ok := t.(Number); ok {
			return u > v
		}
	}
	panic(TypeError{})
}

// EqualTo is structural for primitives and identity-based for heap objects
// (pointer comparison falls out of the `==` on the two interface values).
// No implicit conversion between types is ever performed.
func EqualTo(s, t Value) Boolean {
	return s == t
}

func Neg(s Value) Value {
	if u, ok := s.(Number); ok {
		return -u
	}
	panic(TypeError{})
}

// Add implements '+': numeric addition when both sides are numbers, string
// concatenation when the left side is a string (the right side is coerced
// via its own String() representation, mirroring "a" + 1 == "a1").
func Add(s, t Value) Value {
	switch u := s.(type) {
	case Number:
		if v, ok := t.(Number); ok {
			return u + v
		}
	case String:
		return u + String(t.String())
	}
	panic(TypeError{})
}

func Sub(s, t Value) Value {
	if u, ok := s.(Number); ok {
		if v, ok := t.(Number); ok {
			return u - v
		}
	}
	panic(TypeError{})
}

func Mul(s, t Value) Value {
	if u, ok := s.(Number); ok {
		if v, ok := t.(Number); ok {
			return u * v
		}
	}
	panic(TypeError{})
}

func Div(s, t Value) Value {
	if u, ok := s.(Number); ok {
		if v, ok := t.(Number); ok {
			return u / v
		}
	}
	panic(TypeError{})
}
