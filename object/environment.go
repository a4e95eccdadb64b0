package object

import "treelox/value"

// LocalEnv is a lexical scope frame: a slot-indexed array of values plus a
// parent pointer. One is created per block, per function/lambda invocation,
// and per synthetic frame binding 'super'/'this' for a bound method. A
// closure keeps its defining LocalEnv (and transitively its ancestors)
// alive for as long as the closure itself is reachable.
//
// Locals are addressed by (distance, slot) rather than by name: the
// resolver computes both ahead of time, so interpretation never has to
// search a name in a scope chain. This is the indexed-lookup optimization
// a name-keyed environment chain also supports; it changes nothing about
// the lookup invariants, only the performance of the hot path.
type LocalEnv struct {
	enclosing *LocalEnv
	values    []value.Value
}

const initialEnvSize int = 4

// NewLocalEnv creates a scope frame enclosed by the given parent (nil for
// the outermost local scope, whose logical parent is the interpreter's
// global map).
func NewLocalEnv(enclosing *LocalEnv) *LocalEnv {
	return &LocalEnv{
		values:    make([]value.Value, 0, initialEnvSize),
		enclosing: enclosing,
	}
}

// Define inserts a new slot at the end of this scope, unconditionally.
// The resolver guarantees the slot index it assigned matches this append
// order.
func (e *LocalEnv) Define(v value.Value) {
	e.values = append(e.values, v)
}

// GetAt returns the value stored at slot in the scope `distance` hops up
// the parent chain from e.
func (e *LocalEnv) GetAt(slot, distance int) value.Value {
	return ancestor(e, distance).values[slot]
}

// AssignAt overwrites the value stored at slot in the scope `distance`
// hops up the parent chain from e.
func (e *LocalEnv) AssignAt(slot int, v value.Value, distance int) {
	ancestor(e, distance).values[slot] = v
}

// SetLast overwrites the most recently Define'd slot in this scope. Used to
// turn a class declaration's placeholder binding into the finished class
// object once its body has been built, without disturbing the slot index
// any closure captured over it already expects.
func (e *LocalEnv) SetLast(v value.Value) {
	e.values[len(e.values)-1] = v
}

// Enclosing returns the parent scope, or nil if e is the outermost local
// scope.
func (e *LocalEnv) Enclosing() *LocalEnv {
	return e.enclosing
}

func ancestor(env *LocalEnv, distance int) *LocalEnv {
	ret := env
	for i := 0; i < distance; i++ {
		ret = ret.enclosing
	}
	return ret
}
