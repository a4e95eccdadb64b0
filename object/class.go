package object

import "fmt"

// Class is the runtime object backing a class declaration. It is callable
// (as a constructor): arity is init's arity if present, else 0.
type Class struct {
	Name         string
	Superclass   *Class // nil if no superclass
	Properties   map[string]*Function
	Methods      map[string]*Function
	ClassMethods map[string]*Function
}

func (*Class) LoxValueMarkerFunc() {}

func (c *Class) String() string {
	return fmt.Sprintf("<class %v>", c.Name)
}

func NewClass(name string, superclass *Class, properties, methods, classMethods map[string]*Function) *Class {
	return &Class{
		Name:         name,
		Superclass:   superclass,
		Properties:   properties,
		Methods:      methods,
		ClassMethods: classMethods,
	}
}

func (c *Class) Arity() int {
	if method, ok := c.Method("init"); ok {
		return method.Arity()
	}
	return 0
}

// Method looks up an instance method by name, walking the superclass
// chain.
func (c *Class) Method(name string) (*Function, bool) {
	if fn, ok := c.Methods[name]; ok {
		return fn, true
	}
	if c.Superclass != nil {
		return c.Superclass.Method(name)
	}
	return nil, false
}

// Property looks up a getter by name, walking the superclass chain.
func (c *Class) Property(name string) (*Function, bool) {
	if fn, ok := c.Properties[name]; ok {
		return fn, true
	}
	if c.Superclass != nil {
		return c.Superclass.Property(name)
	}
	return nil, false
}

// ClassMethod looks up a static class method by name, walking the
// superclass chain. The interpreter binds the class itself as 'this' in a
// scope of its own when the method is accessed, which keeps the scope
// layout the resolver assumed, even though the resolver rejects any use of
// 'this' in a static-method body.
func (c *Class) ClassMethod(name string) (*Function, bool) {
	if fn, ok := c.ClassMethods[name]; ok {
		return fn, true
	}
	if c.Superclass != nil {
		return c.Superclass.ClassMethod(name)
	}
	return nil, false
}
