package interp

import (
	"petra/internal/cell"
	"petra/internal/errors"
)

// Args is a borrowed window over the runtime's live argument stack for
// one in-flight call. It holds no references of its own: the cells belong
// to the caller and mutations through them are visible there. The view
// dies when the call returns; any access after that panics, because code
// holding onto a dead view has already broken the ownership contract.
type Args struct {
	in    *Interp
	base  int
	n     int
	alive *bool
}

// Len reports how many arguments the current call received.
func (a Args) Len() int {
	a.ensure()
	return a.n
}

// At returns the i-th argument, borrowed. Indexes outside the call's
// window fail with NoArgumentOnStack.
func (a Args) At(i int) (*cell.Cell, error) {
	a.ensure()
	if i < 0 || i >= a.n {
		return nil, errors.Newf(errors.NoArgumentOnStack, "argument %d of %d", i, a.n)
	}
	return a.in.stack[a.base+i], nil
}

// Slice returns the borrowed cells from index from to the end of the
// window. The slice must not outlive the call.
func (a Args) Slice(from int) []*cell.Cell {
	a.ensure()
	if from < 0 || from > a.n {
		return nil
	}
	return a.in.stack[a.base+from : a.base+a.n]
}

func (a Args) ensure() {
	if a.alive == nil || !*a.alive {
		panic("interp: argument view used outside its call")
	}
}
