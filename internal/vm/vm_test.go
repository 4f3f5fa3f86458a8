package vm

import (
	"testing"

	"github.com/chonkie-inc/littrs/internal/compiler"
	"github.com/chonkie-inc/littrs/internal/values"
	"github.com/chonkie-inc/littrs/parser"
)

// runSrc compiles and executes src against a fresh VM, the minimal
// pipeline (parser -> compiler -> vm) a CodeObject needs to drive real
// frame-level dispatch.
func runSrc(t *testing.T, src string) (Value, error) {
	t.Helper()
	mod, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parser.Parse(%q) error: %v", src, err)
	}
	code, err := compiler.New("<test>").CompileModule(mod)
	if err != nil {
		t.Fatalf("CompileModule(%q) error: %v", src, err)
	}
	return New().Run(code)
}

func requireExc(t *testing.T, err error, kind string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected a %s, got no error", kind)
	}
	exc, ok := err.(*values.Exception)
	if !ok {
		t.Fatalf("error = %T (%v), want *values.Exception", err, err)
	}
	if exc.Kind != kind {
		t.Fatalf("exception kind = %q, want %q", exc.Kind, kind)
	}
}

// TestStringSliceReversalDoesNotPanic directly covers the named boundary
// test behind the sliceBounds negative-step default: "abc"[::-1] == "cba".
func TestStringSliceReversalDoesNotPanic(t *testing.T) {
	result, err := runSrc(t, `"abc"[::-1]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, ok := result.(*values.Str)
	if !ok {
		t.Fatalf("result = %T, want *values.Str", result)
	}
	if s.Value != "cba" {
		t.Errorf("\"abc\"[::-1] = %q, want %q", s.Value, "cba")
	}
}

func TestListSliceReversalDoesNotPanic(t *testing.T) {
	result, err := runSrc(t, `[1, 2, 3][::-1]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l, ok := result.(*values.List)
	if !ok {
		t.Fatalf("result = %T, want *values.List", result)
	}
	if len(l.Items) != 3 {
		t.Fatalf("result has %d items, want 3", len(l.Items))
	}
	want := []int64{3, 2, 1}
	for i, item := range l.Items {
		n, ok := item.(*values.Int)
		if !ok || n.Value != want[i] {
			t.Errorf("result[%d] = %v, want %d", i, item, want[i])
		}
	}
}

func TestSliceWithExplicitBoundsAndStep(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{`"abcdef"[1:4]`, "bcd"},
		{`"abcdef"[1:5:2]`, "bd"},
		{`"abcdef"[:3]`, "abc"},
		{`"abcdef"[3:]`, "def"},
		{`"abcdef"[100:200]`, ""},
		{`"abcdef"[-2:]`, "ef"},
	}
	for _, c := range cases {
		result, err := runSrc(t, c.src)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", c.src, err)
		}
		s, ok := result.(*values.Str)
		if !ok {
			t.Fatalf("%s: result = %T, want *values.Str", c.src, result)
		}
		if s.Value != c.want {
			t.Errorf("%s = %q, want %q", c.src, s.Value, c.want)
		}
	}
}

func TestForwardSliceWithNoBoundsCopiesWhole(t *testing.T) {
	result, err := runSrc(t, `[1, 2, 3][:]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l := result.(*values.List)
	if len(l.Items) != 3 {
		t.Errorf("result has %d items, want 3", len(l.Items))
	}
}

// TestBareRaiseAfterHandledExceptionRaisesRuntimeError directly covers the
// OpClearExc fix: once a handler has run to completion and control has
// returned to straight-line code, a bare `raise` has nothing to re-raise.
func TestBareRaiseAfterHandledExceptionRaisesRuntimeError(t *testing.T) {
	_, err := runSrc(t, `
try:
    1 / 0
except ZeroDivisionError:
    pass
raise
`)
	requireExc(t, err, "RuntimeError")
	exc := err.(*values.Exception)
	if exc.Message != "No active exception to re-raise" {
		t.Errorf("message = %q, want %q", exc.Message, "No active exception to re-raise")
	}
}

// TestBareRaiseInsideHandlerReraisesTheCaughtException is the companion
// case: a bare `raise` issued from *within* the handler body (before
// OpClearExc runs) still re-raises the exception being handled.
func TestBareRaiseInsideHandlerReraisesTheCaughtException(t *testing.T) {
	_, err := runSrc(t, `
try:
    1 / 0
except ZeroDivisionError:
    raise
`)
	requireExc(t, err, "ZeroDivisionError")
}

func TestTryExceptElseRunsOnlyWhenNoExceptionRaised(t *testing.T) {
	result, err := runSrc(t, `
x = 0
try:
    y = 1
except ValueError:
    x = 1
else:
    x = 2
x
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, ok := result.(*values.Int)
	if !ok || n.Value != 2 {
		t.Errorf("result = %v, want 2", result)
	}
}

func TestTryExceptMatchesTheRaisedExceptionType(t *testing.T) {
	result, err := runSrc(t, `
x = 0
try:
    1 / 0
except ValueError:
    x = 1
except ZeroDivisionError:
    x = 2
x
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, ok := result.(*values.Int)
	if !ok || n.Value != 2 {
		t.Errorf("result = %v, want 2 (ZeroDivisionError handler ran)", result)
	}
}

func TestUnhandledExceptionPropagatesToTheCaller(t *testing.T) {
	_, err := runSrc(t, `
try:
    1 / 0
except ValueError:
    pass
`)
	requireExc(t, err, "ZeroDivisionError")
}

func TestForLoopIteratesAList(t *testing.T) {
	result, err := runSrc(t, `
total = 0
for x in [1, 2, 3]:
    total = total + x
total
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, ok := result.(*values.Int)
	if !ok || n.Value != 6 {
		t.Errorf("result = %v, want 6", result)
	}
}

func TestListComprehensionFiltersAndMaps(t *testing.T) {
	result, err := runSrc(t, `[x * 2 for x in [1, 2, 3, 4] if x % 2 == 0]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l, ok := result.(*values.List)
	if !ok {
		t.Fatalf("result = %T, want *values.List", result)
	}
	want := []int64{4, 8}
	if len(l.Items) != len(want) {
		t.Fatalf("result has %d items, want %d", len(l.Items), len(want))
	}
	for i, item := range l.Items {
		n := item.(*values.Int)
		if n.Value != want[i] {
			t.Errorf("result[%d] = %d, want %d", i, n.Value, want[i])
		}
	}
}

func TestDictComprehensionBuildsKeyValuePairs(t *testing.T) {
	result, err := runSrc(t, `{x: x * x for x in [1, 2, 3]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d, ok := result.(*values.Dict)
	if !ok {
		t.Fatalf("result = %T, want *values.Dict", result)
	}
	v, ok := d.Get(values.MakeInt(3))
	if !ok {
		t.Fatal("dict missing key 3")
	}
	n := v.(*values.Int)
	if n.Value != 9 {
		t.Errorf("dict[3] = %d, want 9", n.Value)
	}
}

func TestSetComprehensionDedupsValues(t *testing.T) {
	result, err := runSrc(t, `{x % 2 for x in [1, 2, 3, 4]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, ok := result.(*values.Set)
	if !ok {
		t.Fatalf("result = %T, want *values.Set", result)
	}
	if s.Len() != 2 {
		t.Errorf("set has %d elements, want 2", s.Len())
	}
}

func TestStringUpperLowerAndSplit(t *testing.T) {
	result, err := runSrc(t, `"Hello World".upper()`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s := result.(*values.Str); s.Value != "HELLO WORLD" {
		t.Errorf("upper() = %q, want %q", s.Value, "HELLO WORLD")
	}

	result, err = runSrc(t, `"a,b,c".split(",")`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l := result.(*values.List)
	if len(l.Items) != 3 {
		t.Fatalf("split() returned %d items, want 3", len(l.Items))
	}
}

func TestListAppendAndSortMutateInPlace(t *testing.T) {
	result, err := runSrc(t, `
xs = [3, 1, 2]
xs.append(0)
xs.sort()
xs
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l := result.(*values.List)
	want := []int64{0, 1, 2, 3}
	if len(l.Items) != len(want) {
		t.Fatalf("result has %d items, want %d", len(l.Items), len(want))
	}
	for i, item := range l.Items {
		n := item.(*values.Int)
		if n.Value != want[i] {
			t.Errorf("result[%d] = %d, want %d", i, n.Value, want[i])
		}
	}
}

func TestDictGetAndKeys(t *testing.T) {
	result, err := runSrc(t, `
d = {"a": 1, "b": 2}
d.get("c", -1)
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n := result.(*values.Int)
	if n.Value != -1 {
		t.Errorf("d.get(missing, -1) = %d, want -1", n.Value)
	}
}

func TestLenMinMaxSumBuiltins(t *testing.T) {
	cases := []struct {
		src  string
		want int64
	}{
		{`len([1, 2, 3])`, 3},
		{`min([3, 1, 2])`, 1},
		{`max([3, 1, 2])`, 3},
		{`sum([1, 2, 3])`, 6},
	}
	for _, c := range cases {
		result, err := runSrc(t, c.src)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", c.src, err)
		}
		n, ok := result.(*values.Int)
		if !ok || n.Value != c.want {
			t.Errorf("%s = %v, want %d", c.src, result, c.want)
		}
	}
}

func TestIndexOutOfRangeRaisesIndexError(t *testing.T) {
	_, err := runSrc(t, `[1, 2, 3][10]`)
	requireExc(t, err, "IndexError")
}

func TestMissingKeyRaisesKeyError(t *testing.T) {
	_, err := runSrc(t, `{"a": 1}["z"]`)
	requireExc(t, err, "KeyError")
}
