package bridge

import (
	"petra/internal/cell"
	"petra/internal/errors"
)

// Hash proxy: string-keyed view over a runtime hash cell. Keys pass
// through verbatim in both directions, whatever their script or
// encoding; duplicate-key resolution (last write wins) is the runtime
// hash's own behavior, not this layer's.
//
// The stable access surface is fetch/store/delete of wrapped scalars
// plus the whole-container bulk conversions. There is deliberately no
// element count and no per-key direct numeric conversion helper.

// Fetch returns the value under key as an owned Scalar, or no value for
// an absent key.
func (h *Hash) Fetch(key string) (*Scalar, bool) {
	c := h.Interp().Runtime().HashFetch(h.Cell(), key)
	if c == nil {
		return nil, false
	}
	return &Scalar{makeValue(h.Interp(), c, false)}, true
}

// Store packs a host value under key.
func (h *Hash) Store(key string, v any) error {
	c, err := Pack(h.Interp(), v)
	if err != nil {
		return err
	}
	h.Interp().Runtime().HashStore(h.Cell(), key, c)
	return nil
}

// Delete removes key, returning the prior value as an owned Scalar, or
// no value when the key was absent.
func (h *Hash) Delete(key string) (*Scalar, bool) {
	c := h.Interp().Runtime().HashDelete(h.Cell(), key)
	if c == nil {
		return nil, false
	}
	return &Scalar{makeValue(h.Interp(), c, true)}, true
}

// StrMap converts the whole hash to a host map[string]string with the
// checked conversion per value, failing as a whole on the first value
// that does not convert.
func (h *Hash) StrMap() (map[string]string, error) {
	out := make(map[string]string)
	err := h.each(func(k string, c *cell.Cell) error {
		v, err := checkedStr(c)
		if err != nil {
			return keyed(k, err)
		}
		out[k] = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// IntMap converts the whole hash to a host map[string]int64.
func (h *Hash) IntMap() (map[string]int64, error) {
	out := make(map[string]int64)
	err := h.each(func(k string, c *cell.Cell) error {
		v, err := checkedInt(c)
		if err != nil {
			return keyed(k, err)
		}
		out[k] = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FloatMap converts the whole hash to a host map[string]float64.
func (h *Hash) FloatMap() (map[string]float64, error) {
	out := make(map[string]float64)
	err := h.each(func(k string, c *cell.Cell) error {
		v, err := checkedFloat(c)
		if err != nil {
			return keyed(k, err)
		}
		out[k] = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (h *Hash) each(fn func(k string, c *cell.Cell) error) error {
	var failed error
	h.Interp().Runtime().HashEach(h.Cell(), func(k string, c *cell.Cell) {
		if failed != nil {
			return
		}
		failed = fn(k, c)
	})
	return failed
}

func keyed(k string, err error) error {
	if e, ok := err.(*errors.Error); ok {
		return errors.Newf(e.Kind, "key %q: %s", k, e.Message)
	}
	return err
}
