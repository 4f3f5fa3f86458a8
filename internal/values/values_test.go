package values

import "testing"

func TestTruthyFalsySet(t *testing.T) {
	falsy := []Value{
		None, False, MakeInt(0), &Float{Value: 0}, &Str{Value: ""},
		&List{}, &Tuple{}, NewDict(), NewSet(),
	}
	for _, v := range falsy {
		if Truthy(v) {
			t.Errorf("Truthy(%s) = true, want false", Repr(v))
		}
	}
	truthy := []Value{
		True, MakeInt(1), &Float{Value: 0.5}, &Str{Value: "x"},
		&List{Items: []Value{None}},
	}
	for _, v := range truthy {
		if !Truthy(v) {
			t.Errorf("Truthy(%s) = false, want true", Repr(v))
		}
	}
}

func TestEqualCrossesTheNumericTower(t *testing.T) {
	cases := []struct {
		a, b Value
	}{
		{True, MakeInt(1)},
		{MakeInt(1), &Float{Value: 1.0}},
		{False, MakeInt(0)},
	}
	for _, c := range cases {
		if !Equal(c.a, c.b) {
			t.Errorf("Equal(%s, %s) = false, want true", Repr(c.a), Repr(c.b))
		}
	}
}

func TestEqualComparesContainersElementwise(t *testing.T) {
	a := &List{Items: []Value{MakeInt(1), MakeInt(2)}}
	b := &List{Items: []Value{MakeInt(1), MakeInt(2)}}
	if !Equal(a, b) {
		t.Error("equal-contents lists compared unequal")
	}
	c := &List{Items: []Value{MakeInt(1), MakeInt(3)}}
	if Equal(a, c) {
		t.Error("different-contents lists compared equal")
	}
}

func TestEqualHandlesSelfReferentialLists(t *testing.T) {
	a := &List{}
	a.Items = []Value{MakeInt(1), a}
	b := &List{}
	b.Items = []Value{MakeInt(1), b}
	if !Equal(a, b) {
		t.Error("structurally-identical cyclic lists compared unequal")
	}
}

func TestIsHashable(t *testing.T) {
	hashable := []Value{None, True, MakeInt(1), &Float{Value: 1}, &Str{Value: "x"}, &Tuple{Items: []Value{MakeInt(1)}}}
	for _, v := range hashable {
		if !IsHashable(v) {
			t.Errorf("IsHashable(%s) = false, want true", Repr(v))
		}
	}
	unhashable := []Value{&List{}, NewDict(), NewSet(), &Tuple{Items: []Value{&List{}}}}
	for _, v := range unhashable {
		if IsHashable(v) {
			t.Errorf("IsHashable(%s) = true, want false", Repr(v))
		}
	}
}

func TestHashAgreesWithEqualAcrossTheNumericTower(t *testing.T) {
	if Hash(MakeInt(1)) != Hash(True) {
		t.Error("Hash(1) != Hash(True)")
	}
	if Hash(MakeInt(0)) != Hash(False) {
		t.Error("Hash(0) != Hash(False)")
	}
	if Hash(&Float{Value: 2}) != Hash(MakeInt(2)) {
		t.Error("Hash(2.0) != Hash(2)")
	}
}

func TestLessOrdersStringsAndSequencesLexicographically(t *testing.T) {
	lt, ok := Less(&Str{Value: "abc"}, &Str{Value: "abd"})
	if !ok || !lt {
		t.Errorf("Less(\"abc\", \"abd\") = (%v, %v), want (true, true)", lt, ok)
	}
	lt, ok = Less(&List{Items: []Value{MakeInt(1)}}, &List{Items: []Value{MakeInt(1), MakeInt(2)}})
	if !ok || !lt {
		t.Errorf("Less([1], [1, 2]) = (%v, %v), want (true, true)", lt, ok)
	}
}

func TestLessCrossTypeIsNotOrderable(t *testing.T) {
	_, ok := Less(&Str{Value: "x"}, MakeInt(1))
	if ok {
		t.Error("Less(str, int) reported orderable, want not-orderable")
	}
}

func TestReprQuotesStringsAndPicksQuoteChar(t *testing.T) {
	if got := Repr(&Str{Value: "hi"}); got != "'hi'" {
		t.Errorf("Repr(\"hi\") = %q, want %q", got, "'hi'")
	}
	if got := Repr(&Str{Value: "it's"}); got != `"it's"` {
		t.Errorf("Repr(\"it's\") = %q, want %q", got, `"it's"`)
	}
}

func TestReprRendersContainers(t *testing.T) {
	l := &List{Items: []Value{MakeInt(1), &Str{Value: "a"}}}
	if got := Repr(l); got != `[1, 'a']` {
		t.Errorf("Repr(list) = %q, want %q", got, `[1, 'a']`)
	}
	tup := &Tuple{Items: []Value{MakeInt(1)}}
	if got := Repr(tup); got != "(1,)" {
		t.Errorf("Repr(1-tuple) = %q, want %q", got, "(1,)")
	}
}

func TestReprHandlesSelfReferentialListWithoutLooping(t *testing.T) {
	l := &List{}
	l.Items = []Value{MakeInt(1), l}
	got := Repr(l)
	want := "[1, [...]]"
	if got != want {
		t.Errorf("Repr(cyclic list) = %q, want %q", got, want)
	}
}

func TestStrOfUnquotesTopLevelStrings(t *testing.T) {
	if got := StrOf(&Str{Value: "hi"}); got != "hi" {
		t.Errorf("StrOf(str) = %q, want %q", got, "hi")
	}
	if got := StrOf(MakeInt(5)); got != "5" {
		t.Errorf("StrOf(int) = %q, want %q", got, "5")
	}
}

func TestTypeNameMatchesPythonVisibleNames(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{None, "NoneType"},
		{True, "bool"},
		{MakeInt(1), "int"},
		{&Float{Value: 1}, "float"},
		{&Str{Value: "x"}, "str"},
		{&List{}, "list"},
		{&Tuple{}, "tuple"},
		{NewDict(), "dict"},
		{NewSet(), "set"},
	}
	for _, c := range cases {
		if got := TypeName(c.v); got != c.want {
			t.Errorf("TypeName(%#v) = %q, want %q", c.v, got, c.want)
		}
	}
}

func TestMakeIntCachesSmallIntegers(t *testing.T) {
	a := MakeInt(5)
	b := MakeInt(5)
	if a != b {
		t.Error("MakeInt(5) should return the same cached *Int instance twice")
	}
}

func TestExceptionMatchesWalksTheParentChain(t *testing.T) {
	if !ExceptionMatches("KeyError", "LookupError") {
		t.Error("KeyError should match except LookupError")
	}
	if !ExceptionMatches("KeyError", "Exception") {
		t.Error("KeyError should match except Exception")
	}
	if ExceptionMatches("KeyError", "IndexError") {
		t.Error("KeyError should not match except IndexError")
	}
}
