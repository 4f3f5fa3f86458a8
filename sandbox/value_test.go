package sandbox

import "testing"

func TestIntRoundTripsThroughInternal(t *testing.T) {
	v := Int(42)
	got := fromInternal(toInternal(v))
	i, ok := got.AsInt()
	if !ok || i != 42 {
		t.Fatalf("got %#v, want int 42", got)
	}
}

func TestFloatRoundTripsThroughInternal(t *testing.T) {
	v := Float(3.5)
	got := fromInternal(toInternal(v))
	f, ok := got.AsFloat()
	if !ok || f != 3.5 {
		t.Fatalf("got %#v, want float 3.5", got)
	}
}

func TestAsFloatWidensAnInt(t *testing.T) {
	v := Int(7)
	f, ok := v.AsFloat()
	if !ok || f != 7.0 {
		t.Fatalf("got (%v, %v), want (7.0, true)", f, ok)
	}
}

func TestStrRoundTripsThroughInternal(t *testing.T) {
	v := Str("hello")
	got := fromInternal(toInternal(v))
	s, ok := got.AsStr()
	if !ok || s != "hello" {
		t.Fatalf("got %#v, want str %q", got, "hello")
	}
}

func TestListRoundTripsThroughInternal(t *testing.T) {
	v := List(Int(1), Int(2), Int(3))
	got := fromInternal(toInternal(v))
	items, ok := got.AsList()
	if !ok || len(items) != 3 {
		t.Fatalf("got %#v, want a 3-element list", got)
	}
	for i, want := range []int64{1, 2, 3} {
		n, ok := items[i].AsInt()
		if !ok || n != want {
			t.Fatalf("item %d: got %#v, want %d", i, items[i], want)
		}
	}
}

func TestTupleRoundTripsAsAList(t *testing.T) {
	v := Tuple(Str("a"), Str("b"))
	got := fromInternal(toInternal(v))
	items, ok := got.AsList()
	if !ok || len(items) != 2 {
		t.Fatalf("got %#v, want a 2-element sequence", got)
	}
}

func TestDictRoundTripsThroughInternal(t *testing.T) {
	v := Dict(map[string]Value{"key": Int(9)})
	got := fromInternal(toInternal(v))
	d, ok := got.AsDict()
	if !ok {
		t.Fatalf("got %#v, want a dict", got)
	}
	n, ok := d["key"].AsInt()
	if !ok || n != 9 {
		t.Fatalf("got %#v, want key -> 9", d)
	}
}

func TestNoneIsNone(t *testing.T) {
	if !None.IsNone() {
		t.Fatal("None.IsNone() = false")
	}
	if !fromInternal(toInternal(None)).IsNone() {
		t.Fatal("None did not round-trip as None")
	}
}

func TestBoolRoundTripsThroughInternal(t *testing.T) {
	got := fromInternal(toInternal(Bool(true)))
	b, ok := got.AsBool()
	if !ok || !b {
		t.Fatalf("got %#v, want bool true", got)
	}
}

func TestGoValueUnwrapsNestedStructures(t *testing.T) {
	v := List(Int(1), Str("x"))
	gv, ok := v.GoValue().([]interface{})
	if !ok || len(gv) != 2 {
		t.Fatalf("GoValue() = %#v, want a 2-element []interface{}", v.GoValue())
	}
	if gv[0].(int64) != 1 {
		t.Fatalf("gv[0] = %#v, want int64(1)", gv[0])
	}
	if gv[1].(string) != "x" {
		t.Fatalf("gv[1] = %#v, want \"x\"", gv[1])
	}
}

func TestStringRendersPythonLiterals(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{None, "None"},
		{Bool(true), "True"},
		{Bool(false), "False"},
		{Int(5), "5"},
		{Str("hi"), "hi"},
	}
	for _, c := range cases {
		if got := c.v.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}
