// Package bridge is the marshaling layer between Go host code and the
// Petra runtime's reference-counted cells. Wrappers own exactly one
// runtime reference each: construction takes it (or transfers it in),
// Release gives it back, exactly once. Everything else — scalar
// conversion, container proxies, call marshaling — is built on that
// discipline.
package bridge

import (
	"petra/internal/cell"
	"petra/internal/errors"
	"petra/internal/interp"
)

// Variant names the wrapper shape a cell maps to.
type Variant uint8

const (
	VariantScalar Variant = iota
	VariantArray
	VariantHash
	VariantSub
	VariantObject
)

func (v Variant) String() string {
	switch v {
	case VariantScalar:
		return "scalar"
	case VariantArray:
		return "array"
	case VariantHash:
		return "hash"
	case VariantSub:
		return "sub"
	}
	return "object"
}

// Wrapper is the common surface of all value wrappers.
type Wrapper interface {
	// Cell exposes the wrapped cell, borrowed for the wrapper's lifetime.
	Cell() *cell.Cell
	// Interp exposes the owning interpreter instance.
	Interp() *interp.Interp
	// Variant reports the wrapper's shape.
	Variant() Variant
	// Release drops the wrapper's reference. Exactly one decrement per
	// wrapper, no matter how often Release is called.
	Release()
}

// Value is the base wrapper embedded by every variant.
type Value struct {
	in       *interp.Interp
	c        *cell.Cell
	released bool
}

func makeValue(in *interp.Interp, c *cell.Cell, transfer bool) Value {
	if !transfer {
		in.Runtime().Incref(c)
	}
	return Value{in: in, c: c}
}

func (v *Value) Cell() *cell.Cell {
	if v.released {
		panic("bridge: wrapper used after release")
	}
	return v.c
}

func (v *Value) Interp() *interp.Interp { return v.in }

func (v *Value) Release() {
	if v.released {
		return
	}
	v.released = true
	v.in.Runtime().Decref(v.c)
}

func (v *Value) Variant() Variant { return VariantObject }

// Scalar wraps an undef, int, float, string or reference cell.
type Scalar struct{ Value }

func (s *Scalar) Variant() Variant { return VariantScalar }

// Array wraps an array cell.
type Array struct{ Value }

func (a *Array) Variant() Variant { return VariantArray }

// Hash wraps a hash cell.
type Hash struct{ Value }

func (h *Hash) Variant() Variant { return VariantHash }

// Sub wraps a code cell. The file label is diagnostic only.
type Sub struct {
	Value
	file string
}

func (s *Sub) Variant() Variant { return VariantSub }

// SetFile attaches a source-file label used in diagnostics.
func (s *Sub) SetFile(f string) { s.file = f }

// File reports the diagnostic source-file label.
func (s *Sub) File() string { return s.file }

// Object is the generic wrapper for cells no specific variant claims.
type Object struct{ Value }

// variantForTag maps a cell tag to its default wrapper variant.
func variantForTag(t cell.Tag) Variant {
	switch t {
	case cell.TagUndef, cell.TagInt, cell.TagFloat, cell.TagStr, cell.TagRef:
		return VariantScalar
	case cell.TagArray:
		return VariantArray
	case cell.TagHash:
		return VariantHash
	case cell.TagCode:
		return VariantSub
	}
	return VariantObject
}

// Adopt wraps c without a type check and never fails. transfer=true takes
// over an already-counted reference; transfer=false adds a fresh one.
func Adopt(in *interp.Interp, c *cell.Cell, transfer bool) *Object {
	return &Object{makeValue(in, c, transfer)}
}

// AdoptChecked wraps c as the requested variant, failing with
// UnexpectedValueType when the cell's tag does not match. On failure the
// cell's refcount is exactly as it was before the call: with transfer the
// caller still owns the reference it meant to hand over.
func AdoptChecked(in *interp.Interp, c *cell.Cell, transfer bool, want Variant) (Wrapper, error) {
	have := variantForTag(c.Tag())
	if want != VariantObject && have != want {
		return nil, errors.Newf(errors.UnexpectedValueType, "have %s cell, want %s", c.Tag(), want)
	}
	return construct(want, makeValue(in, c, transfer)), nil
}

func construct(v Variant, val Value) Wrapper {
	switch v {
	case VariantScalar:
		return &Scalar{val}
	case VariantArray:
		return &Array{val}
	case VariantHash:
		return &Hash{val}
	case VariantSub:
		return &Sub{Value: val}
	}
	return &Object{val}
}

// NewScalar is AdoptChecked fixed to the scalar variant.
func NewScalar(in *interp.Interp, c *cell.Cell, transfer bool) (*Scalar, error) {
	w, err := AdoptChecked(in, c, transfer, VariantScalar)
	if err != nil {
		return nil, err
	}
	return w.(*Scalar), nil
}

// NewArray is AdoptChecked fixed to the array variant.
func NewArray(in *interp.Interp, c *cell.Cell, transfer bool) (*Array, error) {
	w, err := AdoptChecked(in, c, transfer, VariantArray)
	if err != nil {
		return nil, err
	}
	return w.(*Array), nil
}

// NewHash is AdoptChecked fixed to the hash variant.
func NewHash(in *interp.Interp, c *cell.Cell, transfer bool) (*Hash, error) {
	w, err := AdoptChecked(in, c, transfer, VariantHash)
	if err != nil {
		return nil, err
	}
	return w.(*Hash), nil
}

// NewSub is AdoptChecked fixed to the sub variant.
func NewSub(in *interp.Interp, c *cell.Cell, transfer bool) (*Sub, error) {
	w, err := AdoptChecked(in, c, transfer, VariantSub)
	if err != nil {
		return nil, err
	}
	return w.(*Sub), nil
}

// FromCell wraps c as its most specific variant: blessed references go
// through the class registry, everything else takes the tag's default
// variant. Use it whenever a cell of unknown concrete type arrives from
// evaluation, a container fetch or a call return.
func FromCell(in *interp.Interp, c *cell.Cell, transfer bool) Wrapper {
	if c.Tag() == cell.TagRef {
		if class := c.Class(); class != "" {
			if ctor := classCtor(class); ctor != nil {
				return ctor(makeValue(in, c, transfer))
			}
		}
	}
	return construct(variantForTag(c.Tag()), makeValue(in, c, transfer))
}
