package stdlib

import (
	"testing"

	"github.com/chonkie-inc/littrs/internal/values"
)

func jsonFn(t *testing.T, name string) func(args []Value, kwargs map[string]Value) (Value, error) {
	t.Helper()
	mod := JSONModule()
	fn, ok := mod.Members[name].(*values.BuiltinFn)
	if !ok {
		t.Fatalf("json module has no function %q", name)
	}
	return fn.Fn
}

func TestJSONDumpsScalarTypes(t *testing.T) {
	dumps := jsonFn(t, "dumps")
	cases := []struct {
		in   Value
		want string
	}{
		{values.None, "null"},
		{values.True, "true"},
		{values.False, "false"},
		{values.MakeInt(42), "42"},
		{&values.Float{Value: 1.5}, "1.5"},
		{&values.Str{Value: "hi"}, `"hi"`},
	}
	for _, c := range cases {
		result, err := dumps([]Value{c.in}, nil)
		if err != nil {
			t.Fatalf("dumps(%#v) error: %v", c.in, err)
		}
		got := result.(*values.Str).Value
		if got != c.want {
			t.Errorf("dumps(%#v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestJSONDumpsEscapesSpecialCharacters(t *testing.T) {
	dumps := jsonFn(t, "dumps")
	result, err := dumps([]Value{&values.Str{Value: "a\"b\nc"}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	got := result.(*values.Str).Value
	want := `"a\"b\nc"`
	if got != want {
		t.Errorf("dumps = %q, want %q", got, want)
	}
}

func TestJSONDumpsArrayAndObject(t *testing.T) {
	dumps := jsonFn(t, "dumps")
	list := &values.List{Items: []Value{values.MakeInt(1), values.MakeInt(2)}}
	result, err := dumps([]Value{list}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := result.(*values.Str).Value; got != "[1, 2]" {
		t.Errorf("dumps(list) = %q, want %q", got, "[1, 2]")
	}

	d := values.NewDict()
	d.Set(&values.Str{Value: "a"}, values.MakeInt(1))
	result, err = dumps([]Value{d}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := result.(*values.Str).Value; got != `{"a": 1}` {
		t.Errorf("dumps(dict) = %q, want %q", got, `{"a": 1}`)
	}
}

func TestJSONDumpsSortKeys(t *testing.T) {
	dumps := jsonFn(t, "dumps")
	d := values.NewDict()
	d.Set(&values.Str{Value: "b"}, values.MakeInt(2))
	d.Set(&values.Str{Value: "a"}, values.MakeInt(1))
	result, err := dumps([]Value{d}, map[string]Value{"sort_keys": values.True})
	if err != nil {
		t.Fatal(err)
	}
	if got := result.(*values.Str).Value; got != `{"a": 1, "b": 2}` {
		t.Errorf("dumps(sort_keys=True) = %q, want %q", got, `{"a": 1, "b": 2}`)
	}
}

func TestJSONDumpsRejectsUnsupportedType(t *testing.T) {
	dumps := jsonFn(t, "dumps")
	_, err := dumps([]Value{&values.Function{Name: "f"}}, nil)
	exc, ok := err.(*values.Exception)
	if !ok || exc.Kind != "TypeError" {
		t.Errorf("dumps(function) error = %#v, want TypeError", err)
	}
}

func TestJSONLoadsScalarTypes(t *testing.T) {
	loads := jsonFn(t, "loads")
	cases := []struct {
		src  string
		kind string
	}{
		{"null", "NoneType"},
		{"true", "bool"},
		{"42", "int"},
		{"1.5", "float"},
		{`"hi"`, "str"},
	}
	for _, c := range cases {
		result, err := loads([]Value{&values.Str{Value: c.src}}, nil)
		if err != nil {
			t.Fatalf("loads(%q) error: %v", c.src, err)
		}
		if got := values.TypeName(result); got != c.kind {
			t.Errorf("loads(%q) type = %q, want %q", c.src, got, c.kind)
		}
	}
}

func TestJSONLoadsArrayAndObject(t *testing.T) {
	loads := jsonFn(t, "loads")
	result, err := loads([]Value{&values.Str{Value: `[1, 2, 3]`}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	list, ok := result.(*values.List)
	if !ok || len(list.Items) != 3 {
		t.Fatalf("loads(array) = %#v, want a 3-item list", result)
	}

	result, err = loads([]Value{&values.Str{Value: `{"a": 1, "b": [true, null]}`}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	d, ok := result.(*values.Dict)
	if !ok {
		t.Fatalf("loads(object) = %#v, want a dict", result)
	}
	v, found := d.Get(&values.Str{Value: "a"})
	if !found || v.(*values.Int).Value != 1 {
		t.Errorf("loads(object)[\"a\"] = %#v, want 1", v)
	}
}

func TestJSONLoadsRoundTripsDumps(t *testing.T) {
	dumps := jsonFn(t, "dumps")
	loads := jsonFn(t, "loads")
	d := values.NewDict()
	d.Set(&values.Str{Value: "x"}, values.MakeInt(7))
	dumped, err := dumps([]Value{d}, nil)
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := loads([]Value{dumped}, nil)
	if err != nil {
		t.Fatal(err)
	}
	back, ok := loaded.(*values.Dict)
	if !ok {
		t.Fatalf("round trip = %#v, want a dict", loaded)
	}
	v, found := back.Get(&values.Str{Value: "x"})
	if !found || v.(*values.Int).Value != 7 {
		t.Errorf("round trip [\"x\"] = %#v, want 7", v)
	}
}

func TestJSONLoadsMalformedRaisesJSONDecodeError(t *testing.T) {
	loads := jsonFn(t, "loads")
	_, err := loads([]Value{&values.Str{Value: `{"a": }`}}, nil)
	exc, ok := err.(*values.Exception)
	if !ok || exc.Kind != "JSONDecodeError" {
		t.Errorf("loads(malformed) error = %#v, want JSONDecodeError", err)
	}
}

func TestJSONLoadsTrailingDataRaisesJSONDecodeError(t *testing.T) {
	loads := jsonFn(t, "loads")
	_, err := loads([]Value{&values.Str{Value: `1 2`}}, nil)
	exc, ok := err.(*values.Exception)
	if !ok || exc.Kind != "JSONDecodeError" {
		t.Errorf("loads(trailing data) error = %#v, want JSONDecodeError", err)
	}
}

func TestJSONDecodeErrorIsCatchableAsValueError(t *testing.T) {
	if !values.ExceptionMatches("JSONDecodeError", "ValueError") {
		t.Error("JSONDecodeError should match except ValueError")
	}
}
