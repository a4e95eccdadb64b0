package object

import (
	"fmt"
	"treelox/value"
)

// Instance is a class instance with a mutable field map. Fields always
// shadow methods and properties of the same name.
type Instance struct {
	Fields map[string]value.Value
	Class  *Class
}

func (*Instance) LoxValueMarkerFunc() {}

func (i *Instance) String() string {
	return fmt.Sprintf("<instance of %v>", i.Class.Name)
}

func NewInstance(class *Class) *Instance {
	return &Instance{Class: class, Fields: map[string]value.Value{}}
}

// GetField looks up a field only; method/property dispatch happens one
// level up, in the interpreter, since invoking a property getter requires
// the call machinery that package object intentionally doesn't depend on.
func (i *Instance) GetField(name string) (value.Value, bool) {
	v, ok := i.Fields[name]
	return v, ok
}

func (i *Instance) SetField(name string, v value.Value) {
	i.Fields[name] = v
}
