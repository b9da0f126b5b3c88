package stdlib

import (
	"bytes"
	"strings"
	"testing"

	"petra/internal/cell"
	"petra/internal/interp"
)

func coreInterp(t *testing.T) (*interp.Interp, *bytes.Buffer) {
	t.Helper()
	in := interp.New()
	var out bytes.Buffer
	if err := RegisterCore(in, &out); err != nil {
		t.Fatal(err)
	}
	return in, &out
}

func evalInt(t *testing.T, in *interp.Interp, src string) int64 {
	t.Helper()
	v, err := in.Eval(src)
	if err != nil {
		t.Fatalf("eval %q: %v", src, err)
	}
	defer in.Runtime().Decref(v)
	return v.IntVal()
}

func evalStr(t *testing.T, in *interp.Interp, src string) string {
	t.Helper()
	v, err := in.Eval(src)
	if err != nil {
		t.Fatalf("eval %q: %v", src, err)
	}
	defer in.Runtime().Decref(v)
	return string(v.StrVal())
}

func TestSay(t *testing.T) {
	in, out := coreInterp(t)
	if got := evalInt(t, in, `say("hello", 42, 1.5)`); got != 1 {
		t.Fatalf("say returned %d, want 1", got)
	}
	if out.String() != "hello 42 1.5\n" {
		t.Fatalf("output = %q", out.String())
	}
}

func TestLen(t *testing.T) {
	in, _ := coreInterp(t)
	cases := []struct {
		src  string
		want int64
	}{
		{`len("hello")`, 5},
		{`len("")`, 0},
		{`len([1, 2, 3])`, 3},
		{`len({"a": 1, "b": 2})`, 2},
		{`len(undef)`, 0},
	}
	for _, tc := range cases {
		if got := evalInt(t, in, tc.src); got != tc.want {
			t.Errorf("%s = %d, want %d", tc.src, got, tc.want)
		}
	}
}

func TestTypeAndDefined(t *testing.T) {
	in, _ := coreInterp(t)
	if got := evalStr(t, in, `type(42)`); got != "int" {
		t.Errorf("type(42) = %q, want int", got)
	}
	if got := evalStr(t, in, `type("x")`); got != "str" {
		t.Errorf("type(x) = %q, want str", got)
	}
	if got := evalStr(t, in, `type([1])`); got != "ref" {
		t.Errorf("type([1]) = %q, want ref", got)
	}
	if got := evalInt(t, in, `defined(undef)`); got != 0 {
		t.Errorf("defined(undef) = %d, want 0", got)
	}
	if got := evalInt(t, in, `defined(0)`); got != 1 {
		t.Errorf("defined(0) = %d, want 1", got)
	}
}

func TestJoin(t *testing.T) {
	in, _ := coreInterp(t)
	if got := evalStr(t, in, `join(", ", 1, 2, "three")`); got != "1, 2, three" {
		t.Fatalf("join = %q", got)
	}
	if got := evalStr(t, in, `join("-")`); got != "" {
		t.Fatalf("empty join = %q", got)
	}
}

func TestPushMutatesSharedArray(t *testing.T) {
	in, _ := coreInterp(t)
	src := `
$a = [1]
push($a, 2, 3)
len($a)
`
	if got := evalInt(t, in, src); got != 3 {
		t.Fatalf("len after push = %d, want 3", got)
	}
	if got := evalInt(t, in, `$a[2]`); got != 3 {
		t.Fatalf("$a[2] = %d, want 3", got)
	}
}

func TestPushRejectsNonArray(t *testing.T) {
	in, _ := coreInterp(t)
	if _, err := in.Eval(`push("nope", 1)`); err == nil {
		t.Fatal("push onto a string accepted")
	}
}

func TestKeysSorted(t *testing.T) {
	in, _ := coreInterp(t)
	src := `
$h = {"zeta": 1, "alpha": 2, "mid": 3}
join(",", keys($h)[0], keys($h)[1], keys($h)[2])
`
	if got := evalStr(t, in, src); got != "alpha,mid,zeta" {
		t.Fatalf("keys = %q", got)
	}
}

func TestCoreLeavesNoGarbage(t *testing.T) {
	in, out := coreInterp(t)
	v, err := in.Eval(`say(join("-", 1, 2), len([1, 2]))`)
	if err != nil {
		t.Fatal(err)
	}
	in.Runtime().Decref(v)
	if !strings.Contains(out.String(), "1-2 2") {
		t.Fatalf("output = %q", out.String())
	}
	in.Close()
	if live := in.Runtime().Live(); live != 0 {
		t.Fatalf("live cells after Close = %d, want 0", live)
	}
}

func TestKeysResultIsArrayRef(t *testing.T) {
	in, _ := coreInterp(t)
	v, err := in.Eval(`$h = {"only": 1}` + "\n" + `keys($h)`)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Runtime().Decref(v)
	if v.Tag() != cell.TagRef || v.Target().Tag() != cell.TagArray {
		t.Fatalf("keys returned %s, want ref to array", v.Tag())
	}
}
