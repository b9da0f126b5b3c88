// Package cell implements the reference-counted tagged value cells that the
// Petra runtime operates on. Every value the interpreter touches lives in a
// Cell owned by a Runtime; the refcount stored in the cell is the only thing
// that governs its lifetime. Freed cells go back on the runtime's free list
// and are recycled, so a mismatched decref is an observable bug, not a
// silent leak.
package cell

import "fmt"

// Tag discriminates a cell's current representation.
type Tag uint8

const (
	// TagFree marks a cell sitting on the free list. Touching one is a
	// refcounting bug in the caller and panics.
	TagFree Tag = iota
	TagUndef
	TagInt
	TagFloat
	TagStr
	TagRef
	TagArray
	TagHash
	TagCode
)

func (t Tag) String() string {
	switch t {
	case TagFree:
		return "free"
	case TagUndef:
		return "undef"
	case TagInt:
		return "int"
	case TagFloat:
		return "float"
	case TagStr:
		return "str"
	case TagRef:
		return "ref"
	case TagArray:
		return "array"
	case TagHash:
		return "hash"
	case TagCode:
		return "code"
	}
	return "unknown"
}

// Cell is a single runtime value. All fields are runtime-owned; hosts reach
// them through the accessors below and mutate them only through Runtime
// operations.
type Cell struct {
	tag  Tag
	refs int32

	i     int64
	f     float64
	s     []byte
	utf8  bool
	ref   *Cell
	class string
	elems []*Cell
	items map[string]*Cell
	code  any
	name  string

	next *Cell // free list link
}

// Runtime owns a population of cells. It is not safe for concurrent use;
// one interpreter instance drives one Runtime from one goroutine.
type Runtime struct {
	free *Cell
	live int
}

func NewRuntime() *Runtime {
	return &Runtime{}
}

// Live reports the number of cells currently allocated and not yet freed.
func (rt *Runtime) Live() int { return rt.live }

func (rt *Runtime) alloc(tag Tag) *Cell {
	c := rt.free
	if c != nil {
		rt.free = c.next
		*c = Cell{}
	} else {
		c = &Cell{}
	}
	c.tag = tag
	c.refs = 1
	rt.live++
	return c
}

// Undef allocates a fresh undefined cell with one reference.
func (rt *Runtime) Undef() *Cell { return rt.alloc(TagUndef) }

// Int allocates an integer cell with one reference.
func (rt *Runtime) Int(v int64) *Cell {
	c := rt.alloc(TagInt)
	c.i = v
	return c
}

// Float allocates a float cell with one reference.
func (rt *Runtime) Float(v float64) *Cell {
	c := rt.alloc(TagFloat)
	c.f = v
	return c
}

// Bytes allocates a string cell holding an owned copy of b, with the
// utf8 flag clear. Embedded NUL bytes are preserved.
func (rt *Runtime) Bytes(b []byte) *Cell {
	c := rt.alloc(TagStr)
	c.s = append([]byte(nil), b...)
	return c
}

// Str allocates a string cell from Go text with the utf8 flag set.
func (rt *Runtime) Str(s string) *Cell {
	c := rt.alloc(TagStr)
	c.s = []byte(s)
	c.utf8 = true
	return c
}

// Array allocates an empty array cell.
func (rt *Runtime) Array() *Cell { return rt.alloc(TagArray) }

// Hash allocates an empty hash cell.
func (rt *Runtime) Hash() *Cell {
	c := rt.alloc(TagHash)
	c.items = make(map[string]*Cell)
	return c
}

// Code allocates a code cell wrapping an interpreter-defined callable.
func (rt *Runtime) Code(impl any, name string) *Cell {
	c := rt.alloc(TagCode)
	c.code = impl
	c.name = name
	return c
}

// Ref allocates a reference cell pointing at target, taking a new
// reference on the target.
func (rt *Runtime) Ref(target *Cell) *Cell {
	rt.Incref(target)
	c := rt.alloc(TagRef)
	c.ref = target
	return c
}

// Incref takes an additional reference on c.
func (rt *Runtime) Incref(c *Cell) {
	c.check()
	c.refs++
}

// Decref drops one reference. When the count reaches zero the cell's
// payload is released (dropping references it holds in turn) and the cell
// is recycled onto the free list. Calling Decref without a matching
// reference is undefined behavior; the TagFree poisoning makes most such
// bugs panic instead of corrupting memory.
func (rt *Runtime) Decref(c *Cell) {
	c.check()
	c.refs--
	if c.refs > 0 {
		return
	}
	if c.refs < 0 {
		panic(fmt.Sprintf("cell: refcount underflow on %s cell", c.tag))
	}
	switch c.tag {
	case TagRef:
		rt.Decref(c.ref)
	case TagArray:
		for _, e := range c.elems {
			if e != nil {
				rt.Decref(e)
			}
		}
	case TagHash:
		for _, v := range c.items {
			rt.Decref(v)
		}
	}
	*c = Cell{tag: TagFree, next: rt.free}
	rt.free = c
	rt.live--
}

func (c *Cell) check() {
	if c.tag == TagFree {
		panic("cell: use after free")
	}
}

// Tag reads the cell's current representation tag.
func (c *Cell) Tag() Tag { c.check(); return c.tag }

// Refs reads the current reference count. Diagnostic only.
func (c *Cell) Refs() int32 { return c.refs }

// IntVal reads the raw integer payload of an int cell.
func (c *Cell) IntVal() int64 { c.check(); return c.i }

// FloatVal reads the raw float payload of a float cell.
func (c *Cell) FloatVal() float64 { c.check(); return c.f }

// StrVal reads the raw byte payload of a string cell. The slice is
// runtime-owned; callers copy before holding onto it.
func (c *Cell) StrVal() []byte { c.check(); return c.s }

// UTF8 reports whether a string cell carries decoded text rather than
// raw bytes.
func (c *Cell) UTF8() bool { c.check(); return c.utf8 }

// Target dereferences a reference cell. Borrowed; the target stays owned
// by the reference.
func (c *Cell) Target() *Cell { c.check(); return c.ref }

// Class reads the blessing of a reference cell, or "" when unblessed.
func (c *Cell) Class() string { c.check(); return c.class }

// CodeImpl reads the callable payload of a code cell.
func (c *Cell) CodeImpl() any { c.check(); return c.code }

// CodeName reads the diagnostic name of a code cell, possibly "".
func (c *Cell) CodeName() string { c.check(); return c.name }

// Bless associates a class name with a reference cell.
func (rt *Runtime) Bless(ref *Cell, class string) {
	if ref.Tag() != TagRef {
		panic("cell: bless of a non-reference cell")
	}
	ref.class = class
}

// ClassOf reports the class a reference cell is blessed into, or "".
func (rt *Runtime) ClassOf(ref *Cell) string {
	if ref.Tag() != TagRef {
		return ""
	}
	return ref.class
}

// SetInt rewrites a cell in place as an integer. Container slots are
// mutated through this so aliased views observe the change.
func (rt *Runtime) SetInt(c *Cell, v int64) {
	rt.clearPayload(c)
	c.tag = TagInt
	c.i = v
}

// SetStr rewrites a cell in place as a text string.
func (rt *Runtime) SetStr(c *Cell, s string) {
	rt.clearPayload(c)
	c.tag = TagStr
	c.s = []byte(s)
	c.utf8 = true
}

func (rt *Runtime) clearPayload(c *Cell) {
	c.check()
	switch c.tag {
	case TagRef:
		rt.Decref(c.ref)
	case TagArray:
		for _, e := range c.elems {
			if e != nil {
				rt.Decref(e)
			}
		}
	case TagHash:
		for _, v := range c.items {
			rt.Decref(v)
		}
	}
	refs := c.refs
	*c = Cell{refs: refs}
	c.tag = TagUndef
}
