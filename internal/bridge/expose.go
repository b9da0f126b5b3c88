package bridge

import (
	"petra/internal/cell"
	"petra/internal/errors"
	"petra/internal/interp"
)

// Exposing host functions to the runtime. A BindSpec declares the call
// shape once; the generated native binds every incoming argument eagerly
// against it before the body runs, so the body only ever sees converted
// host values. One spec covers what would otherwise be a wrapper per
// arity and type combination.

// ParamType selects the checked conversion applied to a bound argument.
type ParamType uint8

const (
	TAny ParamType = iota // no conversion, the raw cell
	TBool
	TInt
	TFloat
	TStr
)

func (t ParamType) String() string {
	switch t {
	case TBool:
		return "bool"
	case TInt:
		return "int"
	case TFloat:
		return "float"
	case TStr:
		return "str"
	}
	return "any"
}

// Param declares one named positional parameter.
type Param struct {
	Name     string
	Type     ParamType
	Optional bool
}

// Trailing selects how arguments past the named parameters bind.
type Trailing uint8

const (
	// TrailNone: extra arguments are ignored, as the runtime's own
	// functions do.
	TrailNone Trailing = iota
	// TrailList: extra arguments bind as a uniform list.
	TrailList
	// TrailPairs: extra arguments bind as alternating key/value pairs.
	// Keys stringify unconditionally; values convert per TrailType.
	TrailPairs
)

// BindSpec is the declared call shape of an exposed host function.
type BindSpec struct {
	Params    []Param
	Trailing  Trailing
	TrailType ParamType
}

// Validate rejects shapes the binder cannot satisfy deterministically.
func (s BindSpec) Validate() error {
	seenOpt := false
	for _, p := range s.Params {
		if p.Name == "" {
			return errors.New(errors.InterpreterError, "unnamed parameter in bind spec")
		}
		if p.Optional {
			seenOpt = true
		} else if seenOpt {
			return errors.Newf(errors.InterpreterError, "required parameter %q after optional", p.Name)
		}
	}
	return nil
}

// Body is the host implementation behind an exposed function. Returned
// values pack as the call's results; nil slots pack as undef.
type Body func(*Ctx) ([]any, error)

// Ctx carries the bound arguments of one call. It is only valid for the
// duration of the body: raw cells are borrowed from the live argument
// stack and die with the call.
type Ctx struct {
	in    *interp.Interp
	named map[string]binding
	list  []any
	pairs map[string]any
}

type binding struct {
	c *cell.Cell
	v any
}

// Interp exposes the calling interpreter instance.
func (c *Ctx) Interp() *interp.Interp { return c.in }

// Has reports whether the named optional parameter was supplied.
func (c *Ctx) Has(name string) bool {
	_, ok := c.named[name]
	return ok
}

// Raw returns the named argument's cell, borrowed. The cell must not
// escape the body.
func (c *Ctx) Raw(name string) *cell.Cell {
	return c.named[name].c
}

// Bool returns the named argument's bound boolean, or false when absent.
func (c *Ctx) Bool(name string) bool {
	b, ok := c.named[name]
	if !ok {
		return false
	}
	if v, ok := b.v.(bool); ok {
		return v
	}
	return forceBool(b.c)
}

// Int returns the named argument's bound integer, or 0 when absent.
func (c *Ctx) Int(name string) int64 {
	b, ok := c.named[name]
	if !ok {
		return 0
	}
	if v, ok := b.v.(int64); ok {
		return v
	}
	return forceInt(b.c)
}

// Float returns the named argument's bound float, or 0 when absent.
func (c *Ctx) Float(name string) float64 {
	b, ok := c.named[name]
	if !ok {
		return 0
	}
	if v, ok := b.v.(float64); ok {
		return v
	}
	return forceFloat(b.c)
}

// Str returns the named argument's bound string, or "" when absent.
func (c *Ctx) Str(name string) string {
	b, ok := c.named[name]
	if !ok {
		return ""
	}
	if v, ok := b.v.(string); ok {
		return v
	}
	return forceStr(b.c)
}

// List returns the bound trailing list.
func (c *Ctx) List() []any { return c.list }

// Ints returns the trailing list when it bound as integers.
func (c *Ctx) Ints() []int64 {
	out := make([]int64, 0, len(c.list))
	for _, v := range c.list {
		if n, ok := v.(int64); ok {
			out = append(out, n)
		}
	}
	return out
}

// Strs returns the trailing list when it bound as strings.
func (c *Ctx) Strs() []string {
	out := make([]string, 0, len(c.list))
	for _, v := range c.list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// RawList returns the trailing list when it bound as raw cells
// (TrailType TAny). The cells are borrowed and die with the call.
func (c *Ctx) RawList() []*cell.Cell {
	out := make([]*cell.Cell, 0, len(c.list))
	for _, v := range c.list {
		if rc, ok := v.(*cell.Cell); ok {
			out = append(out, rc)
		}
	}
	return out
}

// Pairs returns the bound trailing key/value pairs.
func (c *Ctx) Pairs() map[string]any { return c.pairs }

// StrPairs returns the trailing pairs when values bound as strings.
func (c *Ctx) StrPairs() map[string]string {
	out := make(map[string]string, len(c.pairs))
	for k, v := range c.pairs {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

// Expose binds a host function under name with the declared call shape
// and returns its Sub wrapper. The interpreter holds the binding; the
// returned wrapper owns its own reference on top of that.
func Expose(in *interp.Interp, name string, spec BindSpec, body Body) (*Sub, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	code := in.RegisterNative(name, bindNative(spec, body))
	return NewSub(in, code, false)
}

// ExposeAnon wraps a host function in an unbound code cell: the returned
// wrapper is its only owner.
func ExposeAnon(in *interp.Interp, name string, spec BindSpec, body Body) (*Sub, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	code := in.NativeCode(name, bindNative(spec, body))
	s, err := NewSub(in, code, true)
	if err != nil {
		in.Runtime().Decref(code)
		return nil, err
	}
	return s, nil
}

func bindNative(spec BindSpec, body Body) interp.Native {
	return func(in *interp.Interp, args Args) ([]*cell.Cell, error) {
		ctx, err := bind(in, spec, args)
		if err != nil {
			return nil, err
		}
		outs, err := body(ctx)
		if err != nil {
			if errors.KindOf(err) == "" {
				err = errors.New(errors.InterpreterError, err.Error())
			}
			return nil, err
		}
		rets := make([]*cell.Cell, 0, len(outs))
		for _, o := range outs {
			c, err := Pack(in, o)
			if err != nil {
				for _, r := range rets {
					in.Runtime().Decref(r)
				}
				return nil, err
			}
			rets = append(rets, c)
		}
		return rets, nil
	}
}

// Args aliases the interpreter's borrowed argument view so spec-driven
// natives and hand-written ones share one signature.
type Args = interp.Args

func bind(in *interp.Interp, spec BindSpec, args Args) (*Ctx, error) {
	ctx := &Ctx{in: in, named: make(map[string]binding, len(spec.Params))}
	n := args.Len()
	for i, p := range spec.Params {
		if i >= n {
			if !p.Optional {
				return nil, errors.Newf(errors.NoArgumentOnStack, "missing required argument %q", p.Name)
			}
			continue
		}
		c, err := args.At(i)
		if err != nil {
			return nil, err
		}
		// Optional parameters treat an explicit undef as absent.
		if p.Optional && c.Tag() == cell.TagUndef {
			continue
		}
		v, err := convertParam(p.Type, c)
		if err != nil {
			return nil, named(p.Name, err)
		}
		ctx.named[p.Name] = binding{c: c, v: v}
	}

	rest := args.Slice(min(len(spec.Params), n))
	switch spec.Trailing {
	case TrailList:
		ctx.list = make([]any, 0, len(rest))
		for i, c := range rest {
			v, err := convertParam(spec.TrailType, c)
			if err != nil {
				return nil, indexed(len(spec.Params)+i, err)
			}
			ctx.list = append(ctx.list, v)
		}
	case TrailPairs:
		if len(rest)%2 != 0 {
			return nil, errors.Newf(errors.NoArgumentOnStack, "odd number of trailing pair arguments (%d)", len(rest))
		}
		ctx.pairs = make(map[string]any, len(rest)/2)
		for i := 0; i < len(rest); i += 2 {
			key := forceStr(rest[i])
			v, err := convertParam(spec.TrailType, rest[i+1])
			if err != nil {
				return nil, named(key, err)
			}
			ctx.pairs[key] = v
		}
	}
	return ctx, nil
}

func convertParam(t ParamType, c *cell.Cell) (any, error) {
	switch t {
	case TBool:
		v, err := checkedBool(c)
		return v, err
	case TInt:
		v, err := checkedInt(c)
		return v, err
	case TFloat:
		v, err := checkedFloat(c)
		return v, err
	case TStr:
		v, err := checkedStr(c)
		return v, err
	}
	// TAny binds the raw borrowed cell.
	return c, nil
}

func named(name string, err error) error {
	if e, ok := err.(*errors.Error); ok {
		return errors.Newf(e.Kind, "argument %q: %s", name, e.Message)
	}
	return err
}
