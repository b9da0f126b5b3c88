package bridge

import (
	"testing"

	"petra/internal/errors"
	"petra/internal/interp"
)

func newArray(t *testing.T, in *interp.Interp) *Array {
	t.Helper()
	a, err := NewArray(in, in.Runtime().Array(), true)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func newHash(t *testing.T, in *interp.Interp) *Hash {
	t.Helper()
	h, err := NewHash(in, in.Runtime().Hash(), true)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func TestArrayStoreExtends(t *testing.T) {
	in := interp.New()
	a := newArray(t, in)
	defer a.Release()

	if err := a.Store(9, "way out"); err != nil {
		t.Fatal(err)
	}
	if a.Len() != 10 {
		t.Fatalf("len = %d, want 10", a.Len())
	}
	// Intermediate slots exist but hold nothing.
	if _, ok := a.Fetch(7); ok {
		t.Fatal("intermediate slot 7 yielded a value")
	}
	s, ok := a.Fetch(9)
	if !ok {
		t.Fatal("slot 9 missing")
	}
	if got, err := s.Str(); err != nil || got != "way out" {
		t.Fatalf("slot 9 = (%q, %v)", got, err)
	}
	s.Release()
}

func TestArrayIndexIsTotal(t *testing.T) {
	in := interp.New()
	a := newArray(t, in)
	defer a.Release()

	if err := a.Push(int64(5)); err != nil {
		t.Fatal(err)
	}
	s := a.Index(3)
	if s.Defined() {
		t.Fatal("out-of-range Index returned a defined scalar")
	}
	s.Release()
	s = a.Index(0)
	if got, err := s.Int(); err != nil || got != 5 {
		t.Fatalf("Index(0) = (%d, %v), want 5", got, err)
	}
	s.Release()
}

func TestArrayDelete(t *testing.T) {
	in := interp.New()
	a := newArray(t, in)
	defer a.Release()

	for _, v := range []any{int64(1), int64(2), int64(3)} {
		if err := a.Push(v); err != nil {
			t.Fatal(err)
		}
	}
	s, ok := a.Delete(1)
	if !ok {
		t.Fatal("Delete(1) returned no value")
	}
	if got, _ := s.Int(); got != 2 {
		t.Fatalf("deleted value = %d, want 2", got)
	}
	s.Release()
	// Deletion leaves a hole, it does not shrink the array.
	if a.Len() != 3 {
		t.Fatalf("len after delete = %d, want 3", a.Len())
	}
	if _, ok := a.Fetch(1); ok {
		t.Fatal("deleted slot still yields a value")
	}
	if _, ok := a.Delete(1); ok {
		t.Fatal("second delete of the same slot yielded a value")
	}
}

func TestArrayBulkConversions(t *testing.T) {
	in := interp.New()
	a := newArray(t, in)
	defer a.Release()

	for _, v := range []any{int64(1), "2", 3.9} {
		if err := a.Push(v); err != nil {
			t.Fatal(err)
		}
	}
	ints, err := a.Ints()
	if err != nil {
		t.Fatal(err)
	}
	if len(ints) != 3 || ints[0] != 1 || ints[1] != 2 || ints[2] != 3 {
		t.Fatalf("Ints = %v, want [1 2 3]", ints)
	}
	strs, err := a.Strings()
	if err != nil {
		t.Fatal(err)
	}
	if strs[2] != "3.9" {
		t.Fatalf("Strings[2] = %q, want 3.9", strs[2])
	}

	// One bad element fails the whole conversion, naming the element.
	if err := a.Push("not a number"); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Ints(); !errors.IsKind(err, errors.ConversionError) {
		t.Fatalf("Ints with bad element: err = %v, want ConversionError", err)
	}
}

func TestArrayBulkFailsOnHoles(t *testing.T) {
	in := interp.New()
	a := newArray(t, in)
	defer a.Release()

	if err := a.Store(2, int64(7)); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Ints(); !errors.IsKind(err, errors.ConversionError) {
		t.Fatalf("err = %v, want ConversionError on hole", err)
	}
}

func TestHashFetchStoreDelete(t *testing.T) {
	in := interp.New()
	h := newHash(t, in)
	defer h.Release()

	if err := h.Store("key", int64(10)); err != nil {
		t.Fatal(err)
	}
	s, ok := h.Fetch("key")
	if !ok {
		t.Fatal("stored key missing")
	}
	if got, _ := s.Int(); got != 10 {
		t.Fatalf("value = %d, want 10", got)
	}
	s.Release()

	if _, ok := h.Fetch("other"); ok {
		t.Fatal("absent key yielded a value")
	}

	s, ok = h.Delete("key")
	if !ok {
		t.Fatal("Delete returned no value")
	}
	s.Release()
	if _, ok := h.Fetch("key"); ok {
		t.Fatal("deleted key still present")
	}
	if _, ok := h.Delete("key"); ok {
		t.Fatal("second delete yielded a value")
	}
}

func TestHashNonASCIIKeys(t *testing.T) {
	in := interp.New()
	h := newHash(t, in)
	defer h.Release()

	if err := h.Store("ключ", "значення"); err != nil {
		t.Fatal(err)
	}
	if err := h.Store("数", int64(7)); err != nil {
		t.Fatal(err)
	}
	m, err := h.StrMap()
	if err != nil {
		t.Fatal(err)
	}
	if m["ключ"] != "значення" || m["数"] != "7" {
		t.Fatalf("StrMap = %v", m)
	}
}

func TestHashBulkConversionFailure(t *testing.T) {
	in := interp.New()
	h := newHash(t, in)
	defer h.Release()

	if err := h.Store("good", "12"); err != nil {
		t.Fatal(err)
	}
	if err := h.Store("bad", "12 monkeys"); err != nil {
		t.Fatal(err)
	}
	if _, err := h.IntMap(); !errors.IsKind(err, errors.ConversionError) {
		t.Fatalf("IntMap: err = %v, want ConversionError", err)
	}
}

func TestContainerMutationVisibleThroughAlias(t *testing.T) {
	in := interp.New()
	rt := in.Runtime()

	arr := rt.Array()
	a1, err := NewArray(in, arr, true)
	if err != nil {
		t.Fatal(err)
	}
	a2, err := NewArray(in, a1.Cell(), false)
	if err != nil {
		t.Fatal(err)
	}
	if err := a1.Push("shared"); err != nil {
		t.Fatal(err)
	}
	if a2.Len() != 1 {
		t.Fatalf("aliased view len = %d, want 1", a2.Len())
	}
	a1.Release()
	// The second wrapper keeps the container alive on its own.
	if a2.Len() != 1 {
		t.Fatal("container died while a wrapper still held it")
	}
	a2.Release()
	in.Close()
	if rt.Live() != 0 {
		t.Fatalf("live cells = %d, want 0", rt.Live())
	}
}
