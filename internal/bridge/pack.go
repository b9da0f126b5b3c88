package bridge

import (
	"petra/internal/cell"
	"petra/internal/errors"
	"petra/internal/interp"
)

// Pack converts a host value into a fresh owned runtime cell. This is
// the inverse of the unchecked conversions: every representable host
// type succeeds. Strings carry the utf8 flag, byte slices do not; nil
// packs as undef. Wrappers and raw cells pack as a new reference to the
// same cell.
// Owned marks an already-counted cell whose reference transfers into the
// packed value: Pack takes it over instead of adding another.
type Owned struct{ C *cell.Cell }

func Pack(in *interp.Interp, v any) (*cell.Cell, error) {
	rt := in.Runtime()
	switch x := v.(type) {
	case nil:
		return rt.Undef(), nil
	case bool:
		if x {
			return rt.Int(1), nil
		}
		return rt.Int(0), nil
	case int:
		return rt.Int(int64(x)), nil
	case int8:
		return rt.Int(int64(x)), nil
	case int16:
		return rt.Int(int64(x)), nil
	case int32:
		return rt.Int(int64(x)), nil
	case int64:
		return rt.Int(x), nil
	case uint:
		return rt.Int(int64(x)), nil
	case uint8:
		return rt.Int(int64(x)), nil
	case uint16:
		return rt.Int(int64(x)), nil
	case uint32:
		return rt.Int(int64(x)), nil
	case uint64:
		return rt.Int(int64(x)), nil
	case float32:
		return rt.Float(float64(x)), nil
	case float64:
		return rt.Float(x), nil
	case string:
		return rt.Str(x), nil
	case []byte:
		return rt.Bytes(x), nil
	case *cell.Cell:
		rt.Incref(x)
		return x, nil
	case Owned:
		return x.C, nil
	case Wrapper:
		c := x.Cell()
		rt.Incref(c)
		return c, nil
	}
	return nil, errors.Newf(errors.ConversionError, "cannot marshal host value of type %T", v)
}

// packAll converts a host argument list, releasing everything already
// packed when one value fails.
func packAll(in *interp.Interp, vs []any) ([]*cell.Cell, error) {
	out := make([]*cell.Cell, 0, len(vs))
	for _, v := range vs {
		c, err := Pack(in, v)
		if err != nil {
			for _, p := range out {
				in.Runtime().Decref(p)
			}
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
