// Package lox is the host-facing façade over the scanner/parser/resolver/
// interpreter pipeline: RunSource and RunFile are the two entry points a
// driver (cmd/treelox, or a test) needs, and DefineGlobal/Reset let a host
// customize or restart a session without reaching into the pipeline
// packages directly.
package lox

import (
	"fmt"
	"os"

	"treelox/interpreter"
	"treelox/parser"
	"treelox/resolver"
	"treelox/value"
)

// Lox holds one interpreter session: its global namespace and the two
// error-sink flags. Both flags are reset by Reset or the start of the next
// RunSource call (RunFile calls RunSource once the file has been read).
type Lox struct {
	interp *interpreter.Interpreter

	// ReplMode, when set, makes a bare expression statement print its
	// value, same as typing an expression at the interactive prompt.
	ReplMode bool

	// HadError is the compile-time channel: set if scanning, parsing or
	// resolving reported any diagnostic.
	HadError bool
	// HadRuntimeError is the runtime channel: set if interpretation
	// aborted on a runtime fault.
	HadRuntimeError bool

	pendingGlobals map[string]value.Value
}

// New starts a fresh session with clock() and the rest of the built-in
// natives registered, nothing else.
func New() *Lox {
	return &Lox{interp: interpreter.NewInterpreter()}
}

// DefineGlobal registers a host-provided value before any source runs. It
// is remembered across Reset, so a host only needs to call it once even if
// it later starts a fresh session.
func (l *Lox) DefineGlobal(name string, v value.Value) {
	if l.pendingGlobals == nil {
		l.pendingGlobals = map[string]value.Value{}
	}
	l.pendingGlobals[name] = v
	l.interp.DefineGlobal(name, v)
}

// Reset discards all parser/resolver/interpreter state and starts a fresh
// session, re-registering any globals a host defined with DefineGlobal.
// Used between independent test cases; the REPL in cmd/treelox does not
// call it.
func (l *Lox) Reset() {
	l.interp = interpreter.NewInterpreter()
	for name, v := range l.pendingGlobals {
		l.interp.DefineGlobal(name, v)
	}
	l.HadError = false
	l.HadRuntimeError = false
}

// RunSource scans, parses and (if parsing succeeded) resolves src, then (if
// resolving also succeeded) interprets it. Diagnostics from every stage go
// to the process's standard error; HadError/HadRuntimeError report which
// channel, if any, fired.
func (l *Lox) RunSource(src string) {
	l.HadError = false
	l.HadRuntimeError = false

	p := parser.MakeParser(src)
	stmts := p.Parse()
	if stmts == nil {
		l.HadError = true
		return
	}

	res := resolver.NewResolver()
	if !res.Resolve(stmts) {
		l.HadError = true
		return
	}

	l.interp.ReplMode = l.ReplMode
	l.HadRuntimeError = l.interp.Interpret(stmts)
}

// RunFile reads path and runs it, returning the process exit code for the
// outcome: 1 if path cannot be read, 65 for a parse/resolve error, 70 for a
// runtime error, 0 otherwise.
func (l *Lox) RunFile(path string) int {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot open file '%v' (%v).\n", path, err)
		return 1
	}

	l.RunSource(string(src))
	switch {
	case l.HadError:
		return 65
	case l.HadRuntimeError:
		return 70
	default:
		return 0
	}
}
