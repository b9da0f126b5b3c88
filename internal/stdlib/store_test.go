package stdlib

import (
	"path/filepath"
	"testing"

	"petra/internal/cell"
	"petra/internal/interp"
)

func storeInterp(t *testing.T) *interp.Interp {
	t.Helper()
	in := interp.New()
	s, err := OpenStore(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	if err := RegisterStore(in, s); err != nil {
		t.Fatal(err)
	}
	return in
}

func TestStoreRoundTrip(t *testing.T) {
	in := storeInterp(t)

	if got := evalInt(t, in, `store_set("answer", 42)`); got != 1 {
		t.Fatalf("store_set = %d, want 1", got)
	}
	// Numbers pass the checked string conversion and come back as text.
	if got := evalStr(t, in, `store_get("answer")`); got != "42" {
		t.Fatalf("store_get = %q, want 42", got)
	}
	if got := evalInt(t, in, `store_get("answer") + 1`); got != 43 {
		t.Fatalf("stored number did not numify: %d", got)
	}
}

func TestStoreMissingKeyIsUndef(t *testing.T) {
	in := storeInterp(t)
	v, err := in.Eval(`store_get("ghost")`)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Runtime().Decref(v)
	if v.Tag() != cell.TagUndef {
		t.Fatalf("missing key tag = %s, want undef", v.Tag())
	}
}

func TestStoreOverwriteAndDelete(t *testing.T) {
	in := storeInterp(t)

	evalInt(t, in, `store_set("k", "first")`)
	evalInt(t, in, `store_set("k", "second")`)
	if got := evalStr(t, in, `store_get("k")`); got != "second" {
		t.Fatalf("overwrite = %q, want second", got)
	}
	if got := evalInt(t, in, `store_del("k")`); got != 1 {
		t.Fatalf("store_del = %d, want 1", got)
	}
	if got := evalInt(t, in, `store_del("k")`); got != 0 {
		t.Fatalf("second store_del = %d, want 0", got)
	}
}

func TestStoreKeys(t *testing.T) {
	in := storeInterp(t)
	if err := RegisterCore(in, testWriter{}); err != nil {
		t.Fatal(err)
	}

	evalInt(t, in, `store_set("b", 2)`)
	evalInt(t, in, `store_set("a", 1)`)
	if got := evalInt(t, in, `len(store_keys())`); got != 2 {
		t.Fatalf("key count = %d, want 2", got)
	}
	if got := evalStr(t, in, `store_keys()[0]`); got != "a" {
		t.Fatalf("first key = %q, want a", got)
	}
}

func TestStoreRejectsUnconvertibleValue(t *testing.T) {
	in := storeInterp(t)
	if _, err := in.Eval(`store_set("k", [1, 2])`); err == nil {
		t.Fatal("storing a reference accepted")
	}
}

func TestStorePersistsOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "petra.db")

	s, err := OpenStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set("durable", "yes"); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = OpenStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	v, ok, err := s.Get("durable")
	if err != nil || !ok || v != "yes" {
		t.Fatalf("reopened Get = (%q, %v, %v)", v, ok, err)
	}
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }
