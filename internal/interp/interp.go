// Package interp hosts a Petra interpreter instance: one cell runtime, a
// global symbol table, and the call stack that arguments flow across. All
// operations on an instance must run on the goroutine the instance is
// driven from; nothing here takes locks.
package interp

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"petra/internal/cell"
	"petra/internal/errors"
	"petra/internal/parser"
)

// Native is a host function callable from the runtime. It receives a
// borrowed view of the caller's argument window and returns owned cells;
// a non-nil error becomes a runtime exception in the caller.
type Native func(in *Interp, args Args) ([]*cell.Cell, error)

// userFn is the payload of a code cell defined from Petra source.
type userFn struct {
	name   string
	params []string
	body   []parser.Stmt
}

type Interp struct {
	id      string
	rt      *cell.Runtime
	globals map[string]*cell.Cell // $name scalars, one owned ref each
	funcs   map[string]*cell.Cell // code cells, one owned ref each

	stack []*cell.Cell // live call arguments, borrowed from callers
	depth int

	maxDepth int
	log      zerolog.Logger
}

type Option func(*Interp)

// WithLogger attaches a structured logger to the instance.
func WithLogger(l zerolog.Logger) Option {
	return func(in *Interp) { in.log = l }
}

// WithMaxDepth overrides the call recursion limit.
func WithMaxDepth(n int) Option {
	return func(in *Interp) { in.maxDepth = n }
}

func New(opts ...Option) *Interp {
	in := &Interp{
		id:       uuid.NewString(),
		rt:       cell.NewRuntime(),
		globals:  make(map[string]*cell.Cell),
		funcs:    make(map[string]*cell.Cell),
		maxDepth: 256,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(in)
	}
	in.log = in.log.With().Str("interp", in.id).Logger()
	in.RegisterNative("die", nativeDie)
	return in
}

// ID returns the instance's unique identifier.
func (in *Interp) ID() string { return in.id }

// Runtime exposes the instance's cell runtime.
func (in *Interp) Runtime() *cell.Runtime { return in.rt }

// Logger exposes the instance logger for embedding layers.
func (in *Interp) Logger() zerolog.Logger { return in.log }

// die raises a runtime exception carrying its argument's text.
func nativeDie(in *Interp, args Args) ([]*cell.Cell, error) {
	msg := "died"
	if c, err := args.At(0); err == nil && c != nil {
		msg = in.Stringify(c)
	}
	return nil, errors.New(errors.InterpreterError, msg)
}

// Eval compiles and runs a source fragment, returning the value of its
// last expression statement as an owned cell. The caller must release the
// result with one Decref.
func (in *Interp) Eval(src string) (*cell.Cell, error) {
	return in.EvalFile(src, "eval")
}

// EvalFile is Eval with an explicit file label for diagnostics.
func (in *Interp) EvalFile(src, file string) (*cell.Cell, error) {
	stmts, err := parser.ParseSource(src, file)
	if err != nil {
		in.log.Debug().Err(err).Str("file", file).Msg("parse failed")
		return nil, err
	}
	var last *cell.Cell
	for _, s := range stmts {
		v, ret, err := in.execStmt(s, nil)
		if err != nil {
			if last != nil {
				in.rt.Decref(last)
			}
			return nil, err
		}
		if ret != nil {
			// A top-level return yields its first value.
			if last != nil {
				in.rt.Decref(last)
			}
			last = firstOrNil(in.rt, ret)
			break
		}
		if v != nil {
			if last != nil {
				in.rt.Decref(last)
			}
			last = v
		}
	}
	if last == nil {
		last = in.rt.Undef()
	}
	return last, nil
}

// Lookup resolves a global name to its cell, borrowed. Scalar globals are
// addressed as "$name"; anything else names a function.
func (in *Interp) Lookup(name string) (*cell.Cell, bool) {
	if len(name) > 0 && name[0] == '$' {
		c, ok := in.globals[name[1:]]
		return c, ok
	}
	c, ok := in.funcs[name]
	return c, ok
}

// DefineGlobal binds a scalar global, adopting one reference to v.
func (in *Interp) DefineGlobal(name string, v *cell.Cell) {
	if old, ok := in.globals[name]; ok {
		in.rt.Decref(old)
	}
	in.globals[name] = v
}

// DefineFn binds a code cell under name, adopting one reference.
func (in *Interp) DefineFn(name string, code *cell.Cell) {
	if code.Tag() != cell.TagCode {
		panic("interp: DefineFn of a non-code cell")
	}
	if old, ok := in.funcs[name]; ok {
		in.rt.Decref(old)
	}
	in.funcs[name] = code
}

// NativeCode wraps a host function in a fresh code cell. The cell is
// owned by the caller; pass it to DefineFn to bind it by name.
func (in *Interp) NativeCode(name string, fn Native) *cell.Cell {
	return in.rt.Code(fn, name)
}

// RegisterNative wraps fn in a code cell and binds it under name,
// returning the bound cell borrowed.
func (in *Interp) RegisterNative(name string, fn Native) *cell.Cell {
	c := in.NativeCode(name, fn)
	in.DefineFn(name, c)
	return c
}

// Close releases every global binding. Live counts hitting zero after
// Close is how the tests prove the refcount discipline holds.
func (in *Interp) Close() {
	for k, v := range in.globals {
		in.rt.Decref(v)
		delete(in.globals, k)
	}
	for k, v := range in.funcs {
		in.rt.Decref(v)
		delete(in.funcs, k)
	}
}

func firstOrNil(rt *cell.Runtime, rets []*cell.Cell) *cell.Cell {
	var first *cell.Cell
	for i, c := range rets {
		if i == 0 {
			first = c
		} else {
			rt.Decref(c)
		}
	}
	return first
}
