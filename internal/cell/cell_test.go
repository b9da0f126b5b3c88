package cell

import (
	"math"
	"testing"
)

func TestRefcountLifecycle(t *testing.T) {
	rt := NewRuntime()
	c := rt.Int(7)
	if c.Refs() != 1 {
		t.Fatalf("fresh cell refs = %d, want 1", c.Refs())
	}
	rt.Incref(c)
	if c.Refs() != 2 {
		t.Fatalf("after incref refs = %d, want 2", c.Refs())
	}
	rt.Decref(c)
	if c.Refs() != 1 {
		t.Fatalf("after decref refs = %d, want 1", c.Refs())
	}
	if rt.Live() != 1 {
		t.Fatalf("live = %d, want 1", rt.Live())
	}
	rt.Decref(c)
	if rt.Live() != 0 {
		t.Fatalf("live after free = %d, want 0", rt.Live())
	}
}

func TestUseAfterFreePanics(t *testing.T) {
	rt := NewRuntime()
	c := rt.Int(1)
	rt.Decref(c)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on use after free")
		}
	}()
	_ = c.Tag()
}

func TestFreeListReuse(t *testing.T) {
	rt := NewRuntime()
	a := rt.Int(1)
	rt.Decref(a)
	b := rt.Str("x")
	if a != b {
		t.Fatal("freed cell was not recycled")
	}
	if b.Tag() != TagStr || string(b.StrVal()) != "x" {
		t.Fatal("recycled cell carries stale payload")
	}
}

func TestRefReleasesTarget(t *testing.T) {
	rt := NewRuntime()
	target := rt.Int(5)
	ref := rt.Ref(target)
	if target.Refs() != 2 {
		t.Fatalf("target refs = %d, want 2", target.Refs())
	}
	rt.Decref(ref)
	if target.Refs() != 1 {
		t.Fatalf("target refs after ref free = %d, want 1", target.Refs())
	}
	rt.Decref(target)
	if rt.Live() != 0 {
		t.Fatalf("live = %d, want 0", rt.Live())
	}
}

func TestContainerOwnership(t *testing.T) {
	rt := NewRuntime()
	arr := rt.Array()
	v := rt.Int(3)
	rt.ArrayStore(arr, 0, v) // adopts
	if v.Refs() != 1 {
		t.Fatalf("stored value refs = %d, want 1", v.Refs())
	}
	got := rt.ArrayDelete(arr, 0) // transfers back
	if got != v {
		t.Fatal("delete did not return the stored cell")
	}
	rt.Decref(got)
	rt.Decref(arr)
	if rt.Live() != 0 {
		t.Fatalf("live = %d, want 0", rt.Live())
	}
}

func TestArrayAutoExtend(t *testing.T) {
	rt := NewRuntime()
	arr := rt.Array()
	rt.ArrayStore(arr, 9, rt.Int(42))
	if rt.ArrayLen(arr) != 10 {
		t.Fatalf("len = %d, want 10", rt.ArrayLen(arr))
	}
	if rt.ArrayFetch(arr, 7) != nil {
		t.Fatal("intermediate slot should be absent")
	}
	if got := rt.ArrayFetch(arr, 9); got == nil || got.IntVal() != 42 {
		t.Fatal("stored slot lost")
	}
	rt.Decref(arr)
}

func TestBytesPreserved(t *testing.T) {
	rt := NewRuntime()
	raw := []byte("null\x00sepparated")
	c := rt.Bytes(raw)
	got := c.StrVal()
	if string(got) != string(raw) {
		t.Fatalf("bytes round-trip: got %q", got)
	}
	if c.UTF8() {
		t.Fatal("byte string should not carry utf8 flag")
	}
	rt.Decref(c)
}

func TestNumericPrefix(t *testing.T) {
	tests := []struct {
		in     string
		prefix string
		ok     bool
	}{
		{"50sec", "50", true},
		{"50.3sec", "50.3", true},
		{"ololo", "", false},
		{"", "", false},
		{"  42", "42", true},
		{"-.5x", "-.5", true},
		{"1e3x", "1e3", true},
		{"1e", "1", true},
		{"1e+", "1", true},
		{".", "", false},
		{"+", "", false},
		{"42.5", "42.5", true},
	}
	for _, tt := range tests {
		p, ok := NumericPrefix([]byte(tt.in))
		if p != tt.prefix || ok != tt.ok {
			t.Errorf("NumericPrefix(%q) = %q, %v; want %q, %v", tt.in, p, ok, tt.prefix, tt.ok)
		}
	}
}

func TestNumify(t *testing.T) {
	if got := NumifyInt([]byte("50sec")); got != 50 {
		t.Errorf("NumifyInt(50sec) = %d", got)
	}
	if got := NumifyInt([]byte("ololo")); got != 0 {
		t.Errorf("NumifyInt(ololo) = %d", got)
	}
	if got := NumifyInt([]byte("42.5")); got != 42 {
		t.Errorf("NumifyInt(42.5) = %d", got)
	}
	if got := NumifyFloat([]byte("50.3sec")); got != 50.3 {
		t.Errorf("NumifyFloat(50.3sec) = %g", got)
	}
	if !LooksLikeNumber([]byte("42.5")) {
		t.Error("42.5 should look like a number")
	}
	for _, s := range []string{"50sec", "", "ololo", " 42"} {
		if LooksLikeNumber([]byte(s)) {
			t.Errorf("%q should not be a complete literal", s)
		}
	}
}

func TestNumifyOverflowLiteral(t *testing.T) {
	// Over-range literals parse to the closest representable value, not 0.
	if got := NumifyFloat([]byte("1e999")); !math.IsInf(got, 1) {
		t.Errorf("NumifyFloat(1e999) = %g, want +Inf", got)
	}
	if got := NumifyFloat([]byte("-1e999")); !math.IsInf(got, -1) {
		t.Errorf("NumifyFloat(-1e999) = %g, want -Inf", got)
	}
	if got := NumifyInt([]byte("1e999")); got != math.MaxInt64 {
		t.Errorf("NumifyInt(1e999) = %d, want MaxInt64", got)
	}
	if got := NumifyInt([]byte("-1e999")); got != math.MinInt64 {
		t.Errorf("NumifyInt(-1e999) = %d, want MinInt64", got)
	}
	if got := NumifyFloat([]byte("1e-999")); got != 0 {
		t.Errorf("NumifyFloat(1e-999) = %g, want 0", got)
	}
}
