package cell

// Container primitives. Arrays auto-extend on store; slots never written
// stay nil, which reads back as "absent". Ownership convention: Store
// adopts one reference to the value, Fetch lends a borrowed pointer, and
// Delete transfers the removed value's reference to the caller.

// ArrayLen reports the logical length of an array cell.
func (rt *Runtime) ArrayLen(a *Cell) int {
	mustTag(a, TagArray)
	return len(a.elems)
}

// ArrayFetch returns the element at index i, borrowed, or nil when the
// index is out of range or the slot was never stored.
func (rt *Runtime) ArrayFetch(a *Cell, i int) *Cell {
	mustTag(a, TagArray)
	if i < 0 || i >= len(a.elems) {
		return nil
	}
	return a.elems[i]
}

// ArrayStore places v at index i, adopting one reference to it. Storing
// past the current length extends the array; intermediate slots stay
// absent.
func (rt *Runtime) ArrayStore(a *Cell, i int, v *Cell) {
	mustTag(a, TagArray)
	if i < 0 {
		panic("cell: negative array index")
	}
	for len(a.elems) <= i {
		a.elems = append(a.elems, nil)
	}
	if old := a.elems[i]; old != nil {
		rt.Decref(old)
	}
	a.elems[i] = v
}

// ArrayDelete removes the element at index i and transfers its reference
// to the caller, or returns nil when absent. The slot becomes absent; the
// array's length does not shrink.
func (rt *Runtime) ArrayDelete(a *Cell, i int) *Cell {
	mustTag(a, TagArray)
	if i < 0 || i >= len(a.elems) {
		return nil
	}
	old := a.elems[i]
	a.elems[i] = nil
	return old
}

// ArrayPush appends v, adopting one reference.
func (rt *Runtime) ArrayPush(a *Cell, v *Cell) {
	mustTag(a, TagArray)
	a.elems = append(a.elems, v)
}

// HashLen reports the number of keys present.
func (rt *Runtime) HashLen(h *Cell) int {
	mustTag(h, TagHash)
	return len(h.items)
}

// HashFetch returns the value stored under key, borrowed, or nil when the
// key is absent.
func (rt *Runtime) HashFetch(h *Cell, key string) *Cell {
	mustTag(h, TagHash)
	return h.items[key]
}

// HashStore places v under key, adopting one reference. Last write wins.
func (rt *Runtime) HashStore(h *Cell, key string, v *Cell) {
	mustTag(h, TagHash)
	if old, ok := h.items[key]; ok {
		rt.Decref(old)
	}
	h.items[key] = v
}

// HashDelete removes key and transfers the value's reference to the
// caller, or returns nil when absent.
func (rt *Runtime) HashDelete(h *Cell, key string) *Cell {
	mustTag(h, TagHash)
	old, ok := h.items[key]
	if !ok {
		return nil
	}
	delete(h.items, key)
	return old
}

// HashEach calls fn for every key/value pair. Values are borrowed.
// Iteration order is unspecified.
func (rt *Runtime) HashEach(h *Cell, fn func(key string, v *Cell)) {
	mustTag(h, TagHash)
	for k, v := range h.items {
		fn(k, v)
	}
}

func mustTag(c *Cell, want Tag) {
	if c.Tag() != want {
		panic("cell: " + want.String() + " operation on " + c.tag.String() + " cell")
	}
}
