package bridge

import (
	"testing"

	"petra/internal/errors"
	"petra/internal/interp"
)

func mustEval(t *testing.T, in *interp.Interp, src string) {
	t.Helper()
	v, err := in.Eval(src)
	if err != nil {
		t.Fatal(err)
	}
	in.Runtime().Decref(v)
}

func TestCallDefinedFunction(t *testing.T) {
	in := interp.New()
	mustEval(t, in, `fn add(a, b) { return a + b }`)

	sub, err := LookupSub(in, "add")
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Release()

	rets, err := sub.Call(int64(10), int64(15))
	if err != nil {
		t.Fatal(err)
	}
	defer rets.Release()

	got, ok, err := rets.IntAt(0)
	if err != nil || !ok {
		t.Fatalf("IntAt(0) = (ok=%v, err=%v)", ok, err)
	}
	if got != 25 {
		t.Fatalf("add(10, 15) = %d, want 25", got)
	}
}

func TestCallMultipleReturns(t *testing.T) {
	in := interp.New()
	mustEval(t, in, `fn pair() { return 1, "two" }`)

	sub, err := LookupSub(in, "pair")
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Release()

	rets, err := sub.Call()
	if err != nil {
		t.Fatal(err)
	}
	defer rets.Release()

	if rets.Len() != 2 {
		t.Fatalf("Len = %d, want 2", rets.Len())
	}
	if v, ok, _ := rets.IntAt(0); !ok || v != 1 {
		t.Fatalf("slot 0 = (%d, %v), want 1", v, ok)
	}
	if v, ok, _ := rets.StrAt(1); !ok || v != "two" {
		t.Fatalf("slot 1 = (%q, %v), want two", v, ok)
	}
	// Slots past the last return value are absent, not errors.
	if _, ok, err := rets.IntAt(2); ok || err != nil {
		t.Fatalf("slot 2 = (ok=%v, err=%v), want no value", ok, err)
	}
}

func TestCallDiePropagates(t *testing.T) {
	in := interp.New()
	mustEval(t, in, `fn boom() { die("kaput") }`)

	sub, err := LookupSub(in, "boom")
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Release()

	_, err = sub.Call()
	if !errors.IsKind(err, errors.InterpreterError) {
		t.Fatalf("err = %v, want InterpreterError", err)
	}
	if ke := errors.KindOf(err); ke != errors.InterpreterError {
		t.Fatalf("kind = %v", ke)
	}
}

func TestCallNonCodeCell(t *testing.T) {
	in := interp.New()
	rt := in.Runtime()
	c := rt.Int(1)
	if _, err := in.CallCode(c, nil); !errors.IsKind(err, errors.UnexpectedValueType) {
		t.Fatalf("err = %v, want UnexpectedValueType", err)
	}
	rt.Decref(c)
}

func TestExposeRequiredAndOptional(t *testing.T) {
	in := interp.New()
	spec := BindSpec{
		Params: []Param{
			{Name: "host", Type: TStr},
			{Name: "port", Type: TInt, Optional: true},
		},
	}
	var gotHost string
	var gotPort int64
	var hadPort bool
	sub, err := Expose(in, "connect", spec, func(c *Ctx) ([]any, error) {
		gotHost = c.Str("host")
		hadPort = c.Has("port")
		gotPort = c.Int("port")
		return []any{true}, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Release()

	rets, err := sub.Call("example.org", int64(8080))
	if err != nil {
		t.Fatal(err)
	}
	rets.Release()
	if gotHost != "example.org" || !hadPort || gotPort != 8080 {
		t.Fatalf("bound (%q, %v, %d)", gotHost, hadPort, gotPort)
	}

	rets, err = sub.Call("example.org")
	if err != nil {
		t.Fatal(err)
	}
	rets.Release()
	if hadPort {
		t.Fatal("missing optional reported as present")
	}
	if gotPort != 0 {
		t.Fatalf("absent optional Int = %d, want 0", gotPort)
	}

	// Missing required argument fails before the body runs.
	_, err = sub.Call()
	if !errors.IsKind(err, errors.NoArgumentOnStack) {
		t.Fatalf("err = %v, want NoArgumentOnStack", err)
	}
}

func TestExposeUndefOptionalAbsent(t *testing.T) {
	in := interp.New()
	spec := BindSpec{Params: []Param{{Name: "n", Type: TInt, Optional: true}}}
	var had bool
	sub, err := Expose(in, "maybe", spec, func(c *Ctx) ([]any, error) {
		had = c.Has("n")
		return nil, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Release()

	rets, err := sub.Call(nil)
	if err != nil {
		t.Fatal(err)
	}
	rets.Release()
	if had {
		t.Fatal("explicit undef bound as present")
	}
}

func TestExposeTrailingList(t *testing.T) {
	in := interp.New()
	spec := BindSpec{
		Params:    []Param{{Name: "sep", Type: TStr}},
		Trailing:  TrailList,
		TrailType: TInt,
	}
	var sum int64
	sub, err := Expose(in, "sumall", spec, func(c *Ctx) ([]any, error) {
		sum = 0
		for _, v := range c.Ints() {
			sum += v
		}
		return []any{sum}, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Release()

	rets, err := sub.Call(",", int64(1), int64(2), int64(3), int64(4), int64(5))
	if err != nil {
		t.Fatal(err)
	}
	defer rets.Release()
	if got, _, _ := rets.IntAt(0); got != 15 {
		t.Fatalf("sum = %d, want 15", got)
	}

	// A trailing element that fails its conversion fails the call.
	_, err = sub.Call(",", int64(1), "nope")
	if !errors.IsKind(err, errors.ConversionError) {
		t.Fatalf("err = %v, want ConversionError", err)
	}
}

func TestExposeTrailingPairs(t *testing.T) {
	in := interp.New()
	spec := BindSpec{Trailing: TrailPairs, TrailType: TStr}
	var got map[string]string
	sub, err := Expose(in, "tagit", spec, func(c *Ctx) ([]any, error) {
		got = c.StrPairs()
		return nil, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Release()

	rets, err := sub.Call("env", "prod", int64(7), "seven")
	if err != nil {
		t.Fatal(err)
	}
	rets.Release()
	if got["env"] != "prod" {
		t.Fatalf("pairs = %v", got)
	}
	// Non-string keys stringify unconditionally.
	if got["7"] != "seven" {
		t.Fatalf("numeric key missing: %v", got)
	}

	// An odd trailing count cannot form pairs.
	_, err = sub.Call("dangling")
	if !errors.IsKind(err, errors.NoArgumentOnStack) {
		t.Fatalf("err = %v, want NoArgumentOnStack", err)
	}
}

func TestExposeBodyErrorKinds(t *testing.T) {
	in := interp.New()
	sub, err := Expose(in, "fail", BindSpec{}, func(c *Ctx) ([]any, error) {
		return nil, errors.New(errors.ConversionError, "inner")
	})
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Release()
	// A structured error keeps its kind across the call boundary.
	if _, err := sub.Call(); !errors.IsKind(err, errors.ConversionError) {
		t.Fatalf("err = %v, want ConversionError preserved", err)
	}
}

func TestExposeCallableFromScript(t *testing.T) {
	in := interp.New()
	spec := BindSpec{Params: []Param{{Name: "n", Type: TInt}}}
	_, err := Expose(in, "double", spec, func(c *Ctx) ([]any, error) {
		return []any{c.Int("n") * 2}, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	v, err := in.Eval(`double(21)`)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Runtime().Decref(v)
	if v.IntVal() != 42 {
		t.Fatalf("double(21) = %d, want 42", v.IntVal())
	}
}

func TestBindSpecValidation(t *testing.T) {
	bad := BindSpec{Params: []Param{
		{Name: "opt", Type: TInt, Optional: true},
		{Name: "req", Type: TInt},
	}}
	if err := bad.Validate(); err == nil {
		t.Fatal("required-after-optional accepted")
	}
	in := interp.New()
	if _, err := Expose(in, "bad", bad, func(*Ctx) ([]any, error) { return nil, nil }); err == nil {
		t.Fatal("Expose accepted an invalid spec")
	}

	unnamed := BindSpec{Params: []Param{{Type: TInt}}}
	if err := unnamed.Validate(); err == nil {
		t.Fatal("unnamed parameter accepted")
	}
}

func TestExposeAnonOwnership(t *testing.T) {
	in := interp.New()
	sub, err := ExposeAnon(in, "anon", BindSpec{}, func(*Ctx) ([]any, error) {
		return []any{"ran"}, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	rets, err := sub.Call()
	if err != nil {
		t.Fatal(err)
	}
	if v, ok, _ := rets.StrAt(0); !ok || v != "ran" {
		t.Fatalf("slot 0 = (%q, %v)", v, ok)
	}
	rets.Release()
	sub.Release()
	in.Close()
	if in.Runtime().Live() != 0 {
		t.Fatalf("live cells = %d, want 0", in.Runtime().Live())
	}
}

func TestRetsAfterReleasePanics(t *testing.T) {
	in := interp.New()
	mustEval(t, in, `fn one() { return 1 }`)
	sub, err := LookupSub(in, "one")
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Release()
	rets, err := sub.Call()
	if err != nil {
		t.Fatal(err)
	}
	rets.Release()
	rets.Release() // second release is a no-op

	panics := func(f func()) (p bool) {
		defer func() { p = recover() != nil }()
		f()
		return
	}
	if !panics(func() { rets.IntAt(0) }) {
		t.Error("IntAt on released Rets did not panic")
	}
	if !panics(func() { rets.Len() }) {
		t.Error("Len on released Rets did not panic")
	}
}
