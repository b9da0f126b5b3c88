package bridge

import (
	"petra/internal/cell"
	"petra/internal/errors"
)

// Array proxy: a view over a runtime array cell. No state lives here;
// every operation reaches through to the runtime.

// Len reports the array's logical length, including absent slots.
func (a *Array) Len() int {
	return a.Interp().Runtime().ArrayLen(a.Cell())
}

// Fetch returns the element at index i as an owned Scalar, or no value
// when the index is out of range or the slot is absent or undefined.
func (a *Array) Fetch(i int) (*Scalar, bool) {
	rt := a.Interp().Runtime()
	c := rt.ArrayFetch(a.Cell(), i)
	if c == nil || c.Tag() == cell.TagUndef {
		return nil, false
	}
	return &Scalar{makeValue(a.Interp(), c, false)}, true
}

// Index is the total subscript read: out-of-range and undefined slots
// yield an owned undef scalar instead of failing.
func (a *Array) Index(i int) *Scalar {
	rt := a.Interp().Runtime()
	c := rt.ArrayFetch(a.Cell(), i)
	if c == nil {
		return &Scalar{makeValue(a.Interp(), rt.Undef(), true)}
	}
	return &Scalar{makeValue(a.Interp(), c, false)}
}

// Store packs a host value into the slot at index i, extending the array
// as needed; intermediate slots stay undefined. Negative indexes panic,
// matching the runtime's own contract.
func (a *Array) Store(i int, v any) error {
	c, err := Pack(a.Interp(), v)
	if err != nil {
		return err
	}
	a.Interp().Runtime().ArrayStore(a.Cell(), i, c)
	return nil
}

// Delete removes the element at index i, returning the prior value as an
// owned Scalar, or no value when the slot was absent or undefined. The
// array's length does not shrink.
func (a *Array) Delete(i int) (*Scalar, bool) {
	rt := a.Interp().Runtime()
	c := rt.ArrayDelete(a.Cell(), i)
	if c == nil {
		return nil, false
	}
	if c.Tag() == cell.TagUndef {
		rt.Decref(c)
		return nil, false
	}
	return &Scalar{makeValue(a.Interp(), c, true)}, true
}

// Push appends a packed host value.
func (a *Array) Push(v any) error {
	c, err := Pack(a.Interp(), v)
	if err != nil {
		return err
	}
	a.Interp().Runtime().ArrayPush(a.Cell(), c)
	return nil
}

// Bulk conversions apply the checked scalar conversion per element and
// fail as a whole on the first element that does not convert. Absent
// slots count as undefined and therefore fail.

// Ints converts the whole array to a host []int64.
func (a *Array) Ints() ([]int64, error) {
	out := make([]int64, a.Len())
	err := a.each(func(i int, c *cell.Cell) error {
		v, err := checkedInt(c)
		if err != nil {
			return indexed(i, err)
		}
		out[i] = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Floats converts the whole array to a host []float64.
func (a *Array) Floats() ([]float64, error) {
	out := make([]float64, a.Len())
	err := a.each(func(i int, c *cell.Cell) error {
		v, err := checkedFloat(c)
		if err != nil {
			return indexed(i, err)
		}
		out[i] = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Strings converts the whole array to a host []string.
func (a *Array) Strings() ([]string, error) {
	out := make([]string, a.Len())
	err := a.each(func(i int, c *cell.Cell) error {
		v, err := checkedStr(c)
		if err != nil {
			return indexed(i, err)
		}
		out[i] = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Bools converts the whole array to a host []bool.
func (a *Array) Bools() ([]bool, error) {
	out := make([]bool, a.Len())
	err := a.each(func(i int, c *cell.Cell) error {
		v, err := checkedBool(c)
		if err != nil {
			return indexed(i, err)
		}
		out[i] = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Array) each(fn func(i int, c *cell.Cell) error) error {
	rt := a.Interp().Runtime()
	arr := a.Cell()
	n := rt.ArrayLen(arr)
	for i := 0; i < n; i++ {
		c := rt.ArrayFetch(arr, i)
		if c == nil {
			return indexed(i, errors.New(errors.ConversionError, "undefined value"))
		}
		if err := fn(i, c); err != nil {
			return err
		}
	}
	return nil
}

func indexed(i int, err error) error {
	if e, ok := err.(*errors.Error); ok {
		return errors.Newf(e.Kind, "element %d: %s", i, e.Message)
	}
	return err
}
