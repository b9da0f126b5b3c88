package interp

import (
	"petra/internal/cell"
	"petra/internal/errors"
)

// CallCode invokes a code cell with the given arguments. The argument
// cells are borrowed for the duration of the call: they are pushed onto
// the live stack without taking references, and the caller keeps
// ownership. Return values come back owned by the caller, one reference
// each. A runtime-level die surfaces as an InterpreterError.
func (in *Interp) CallCode(code *cell.Cell, args []*cell.Cell) ([]*cell.Cell, error) {
	if code.Tag() != cell.TagCode {
		return nil, errors.Newf(errors.UnexpectedValueType, "call of %s cell", code.Tag())
	}
	if in.depth >= in.maxDepth {
		return nil, errors.Newf(errors.InterpreterError, "deep recursion in %s", code.CodeName())
	}
	in.depth++
	base := len(in.stack)
	in.stack = append(in.stack, args...)
	alive := true
	view := Args{in: in, base: base, n: len(args), alive: &alive}
	defer func() {
		alive = false
		in.stack = in.stack[:base]
		in.depth--
	}()

	switch impl := code.CodeImpl().(type) {
	case Native:
		rets, err := impl(in, view)
		if err != nil {
			in.log.Debug().Err(err).Str("fn", code.CodeName()).Msg("native call failed")
		}
		return rets, err
	case *userFn:
		return in.callUser(impl, view)
	}
	return nil, errors.Newf(errors.InterpreterError, "code cell %q has no callable payload", code.CodeName())
}

// CallNamed looks up a function by name and calls it.
func (in *Interp) CallNamed(name string, args []*cell.Cell) ([]*cell.Cell, error) {
	code, ok := in.funcs[name]
	if !ok {
		return nil, errors.Newf(errors.InterpreterError, "undefined function %s", name)
	}
	return in.CallCode(code, args)
}

func (in *Interp) callUser(fn *userFn, view Args) ([]*cell.Cell, error) {
	fr := &frame{
		locals: make(map[string]*cell.Cell, len(fn.params)),
		args:   view,
	}
	for i, p := range fn.params {
		if c, err := view.At(i); err == nil {
			fr.locals[p] = c
		}
	}
	for _, s := range fn.body {
		v, ret, err := in.execStmt(s, fr)
		if err != nil {
			return nil, err
		}
		if v != nil {
			in.rt.Decref(v)
		}
		if ret != nil {
			return ret, nil
		}
	}
	return nil, nil
}

// frame is one user-function activation: parameter names aliased to the
// live argument stack. Petra has no nested scopes beyond this.
type frame struct {
	locals map[string]*cell.Cell
	args   Args
}
