package sandbox

import (
	"fmt"

	"github.com/chonkie-inc/littrs/internal/values"
)

// Value is a host-facing Python value: a thin immutable wrapper so callers
// of Sandbox never need to import internal/values directly. Grounded on
// the teacher's pkg/rage.Value interface, collapsed to a single struct
// since this subset has a closed, flat set of variants (no class/userdata
// distinction to preserve as separate concrete types).
type Value struct {
	kind string // "None", "bool", "int", "float", "str", "list", "tuple", "dict"
	b    bool
	i    int64
	f    float64
	s    string
	list []Value
	dict map[string]Value
}

func (v Value) Type() string { return v.kind }

func (v Value) String() string {
	switch v.kind {
	case "None":
		return "None"
	case "bool":
		if v.b {
			return "True"
		}
		return "False"
	case "int":
		return fmt.Sprintf("%d", v.i)
	case "float":
		return fmt.Sprintf("%g", v.f)
	case "str":
		return v.s
	default:
		return fmt.Sprintf("%v", v.GoValue())
	}
}

// GoValue unwraps v into the nearest native Go representation: nil, bool,
// int64, float64, string, []interface{}, or map[string]interface{}.
func (v Value) GoValue() interface{} {
	switch v.kind {
	case "None":
		return nil
	case "bool":
		return v.b
	case "int":
		return v.i
	case "float":
		return v.f
	case "str":
		return v.s
	case "list", "tuple":
		out := make([]interface{}, len(v.list))
		for i, item := range v.list {
			out[i] = item.GoValue()
		}
		return out
	case "dict":
		out := make(map[string]interface{}, len(v.dict))
		for k, item := range v.dict {
			out[k] = item.GoValue()
		}
		return out
	}
	return nil
}

// None is the Python None value.
var None = Value{kind: "None"}

// Bool wraps a Go bool as a Python bool.
func Bool(b bool) Value { return Value{kind: "bool", b: b} }

// Int wraps a Go int64 as a Python int.
func Int(i int64) Value { return Value{kind: "int", i: i} }

// Float wraps a Go float64 as a Python float.
func Float(f float64) Value { return Value{kind: "float", f: f} }

// Str wraps a Go string as a Python str.
func Str(s string) Value { return Value{kind: "str", s: s} }

// List builds a Python list from items.
func List(items ...Value) Value { return Value{kind: "list", list: items} }

// Tuple builds a Python tuple from items.
func Tuple(items ...Value) Value { return Value{kind: "tuple", list: items} }

// Dict builds a Python dict with string keys from pairs.
func Dict(pairs map[string]Value) Value { return Value{kind: "dict", dict: pairs} }

// IsNone reports whether v is None.
func (v Value) IsNone() bool { return v.kind == "None" }

// AsBool returns v's bool value and whether v was actually a bool.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == "bool" }

// AsInt returns v's int value and whether v was actually an int.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == "int" }

// AsFloat returns v's float value and whether v was a float or int (ints
// widen to float64, matching Python's numeric tower).
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case "float":
		return v.f, true
	case "int":
		return float64(v.i), true
	}
	return 0, false
}

// AsStr returns v's string value and whether v was actually a str.
func (v Value) AsStr() (string, bool) { return v.s, v.kind == "str" }

// AsList returns v's items and whether v was actually a list or tuple.
func (v Value) AsList() ([]Value, bool) {
	if v.kind == "list" || v.kind == "tuple" {
		return v.list, true
	}
	return nil, false
}

// AsDict returns v's entries and whether v was actually a dict.
func (v Value) AsDict() (map[string]Value, bool) {
	if v.kind == "dict" {
		return v.dict, true
	}
	return nil, false
}

// toInternal converts a host Value into the VM's internal tagged union.
func toInternal(v Value) values.Value {
	switch v.kind {
	case "", "None":
		return values.None
	case "bool":
		return values.MakeBool(v.b)
	case "int":
		return values.MakeInt(v.i)
	case "float":
		return &values.Float{Value: v.f}
	case "str":
		return &values.Str{Value: v.s}
	case "list":
		items := make([]values.Value, len(v.list))
		for i, item := range v.list {
			items[i] = toInternal(item)
		}
		return &values.List{Items: items}
	case "tuple":
		items := make([]values.Value, len(v.list))
		for i, item := range v.list {
			items[i] = toInternal(item)
		}
		return &values.Tuple{Items: items}
	case "dict":
		d := values.NewDict()
		for k, item := range v.dict {
			d.Set(&values.Str{Value: k}, toInternal(item))
		}
		return d
	}
	return values.None
}

// fromInternal converts a VM value into the host-facing Value, falling
// back to Str(Repr(v)) for the internal types this wrapper doesn't mirror
// (functions, modules, files, exceptions) since those have no meaningful
// host-side representation.
func fromInternal(v values.Value) Value {
	if v == nil {
		return None
	}
	switch x := v.(type) {
	case values.NoneType:
		return None
	case *values.Bool:
		return Bool(x.Value)
	case *values.Int:
		return Int(x.Value)
	case *values.Float:
		return Float(x.Value)
	case *values.Str:
		return Str(x.Value)
	case *values.List:
		items := make([]Value, len(x.Items))
		for i, item := range x.Items {
			items[i] = fromInternal(item)
		}
		return List(items...)
	case *values.Tuple:
		items := make([]Value, len(x.Items))
		for i, item := range x.Items {
			items[i] = fromInternal(item)
		}
		return Tuple(items...)
	case *values.Dict:
		out := make(map[string]Value, x.Len())
		for _, kv := range x.Items() {
			out[values.StrOf(kv[0])] = fromInternal(kv[1])
		}
		return Dict(out)
	default:
		return Str(values.Repr(v))
	}
}
