package bridge

import (
	"petra/internal/cell"
	"petra/internal/errors"
	"petra/internal/interp"
)

// Calling into the runtime. Host arguments pack the way unchecked
// construction does (always succeeds for representable types), the call
// runs on the runtime's stack, and the return values come back as owned
// copies — the runtime may reuse its stack storage the moment the call
// ends, so Rets never borrows.

// Call invokes the wrapped code cell with packed host arguments. A
// runtime-level die surfaces as an InterpreterError carrying the
// runtime's message.
func (s *Sub) Call(args ...any) (*Rets, error) {
	in := s.Interp()
	packed, err := packAll(in, args)
	if err != nil {
		return nil, err
	}
	rets, callErr := in.CallCode(s.Cell(), packed)
	for _, p := range packed {
		in.Runtime().Decref(p)
	}
	if callErr != nil {
		if errors.KindOf(callErr) == "" {
			callErr = errors.New(errors.InterpreterError, callErr.Error())
		}
		return nil, callErr
	}
	return &Rets{in: in, cells: rets}, nil
}

// Rets is an owned snapshot of a call's return values. Slots unpack with
// the checked-nilable conversion: asking for a slot past the last return
// value yields "no value", not an error.
type Rets struct {
	in       *interp.Interp
	cells    []*cell.Cell
	released bool
}

// Len reports how many values the call returned.
func (r *Rets) Len() int {
	if r.released {
		panic("bridge: return snapshot used after release")
	}
	return len(r.cells)
}

// Release drops the snapshot's references. Safe to call more than once.
func (r *Rets) Release() {
	if r.released {
		return
	}
	r.released = true
	for _, c := range r.cells {
		r.in.Runtime().Decref(c)
	}
	r.cells = nil
}

func (r *Rets) at(i int) *cell.Cell {
	if r.released {
		panic("bridge: return snapshot used after release")
	}
	if i < 0 || i >= len(r.cells) {
		return nil
	}
	return r.cells[i]
}

// IntAt unpacks slot i as an integer, checked-nilable.
func (r *Rets) IntAt(i int) (int64, bool, error) {
	c := r.at(i)
	if c == nil || c.Tag() == cell.TagUndef {
		return 0, false, nil
	}
	v, err := checkedInt(c)
	return v, err == nil, err
}

// FloatAt unpacks slot i as a float, checked-nilable.
func (r *Rets) FloatAt(i int) (float64, bool, error) {
	c := r.at(i)
	if c == nil || c.Tag() == cell.TagUndef {
		return 0, false, nil
	}
	v, err := checkedFloat(c)
	return v, err == nil, err
}

// StrAt unpacks slot i as a string, checked-nilable.
func (r *Rets) StrAt(i int) (string, bool, error) {
	c := r.at(i)
	if c == nil || c.Tag() == cell.TagUndef {
		return "", false, nil
	}
	v, err := checkedStr(c)
	return v, err == nil, err
}

// BoolAt unpacks slot i as a boolean, checked-nilable.
func (r *Rets) BoolAt(i int) (bool, bool, error) {
	c := r.at(i)
	if c == nil || c.Tag() == cell.TagUndef {
		return false, false, nil
	}
	v, err := checkedBool(c)
	return v, err == nil, err
}

// WrapAt wraps slot i as its most specific variant with a fresh
// reference, or no value when the slot is missing.
func (r *Rets) WrapAt(i int) (Wrapper, bool) {
	c := r.at(i)
	if c == nil {
		return nil, false
	}
	return FromCell(r.in, c, false), true
}

// LookupSub resolves a fully qualified function name to a Sub wrapper.
func LookupSub(in *interp.Interp, name string) (*Sub, error) {
	c, ok := in.Lookup(name)
	if !ok {
		return nil, errors.Newf(errors.InterpreterError, "undefined function %s", name)
	}
	return NewSub(in, c, false)
}
