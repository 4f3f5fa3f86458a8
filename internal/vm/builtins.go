package vm

import (
	"math"
	"strconv"
	"strings"

	"github.com/chonkie-inc/littrs/internal/values"
)

// installBuiltins seeds every built-in function spec.md §4.3 lists into
// the VM's global namespace, grounded on the teacher's initBuiltins table
// of bound closures (internal/runtime/vm.go), trimmed to this subset's
// value model (no bytes, no classes).
func (v *VM) installBuiltins() {
	reg := func(name string, fn func(args []Value, kwargs map[string]Value) (Value, error)) {
		v.Globals[name] = &values.BuiltinFn{Name: name, Fn: fn}
	}

	reg("print", func(args []Value, kwargs map[string]Value) (Value, error) {
		sep := " "
		if s, ok := kwargs["sep"]; ok {
			sep = values.StrOf(s)
		}
		end := "\n"
		if e, ok := kwargs["end"]; ok {
			end = values.StrOf(e)
		}
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = values.StrOf(a)
		}
		v.Output.WriteString(strings.Join(parts, sep))
		v.Output.WriteString(end)
		return values.None, nil
	})

	reg("len", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) != 1 {
			return nil, values.NewTypeError("len() takes exactly one argument")
		}
		n, err := builtinLen(args[0])
		if err != nil {
			return nil, err
		}
		return values.MakeInt(n), nil
	})

	reg("str", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) == 0 {
			return &values.Str{Value: ""}, nil
		}
		return &values.Str{Value: values.StrOf(args[0])}, nil
	})

	reg("repr", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) != 1 {
			return nil, values.NewTypeError("repr() takes exactly one argument")
		}
		return &values.Str{Value: values.Repr(args[0])}, nil
	})

	reg("int", func(args []Value, kwargs map[string]Value) (Value, error) { return builtinInt(args) })
	reg("float", func(args []Value, kwargs map[string]Value) (Value, error) { return builtinFloat(args) })
	reg("bool", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) == 0 {
			return values.False, nil
		}
		return values.MakeBool(values.Truthy(args[0])), nil
	})

	reg("list", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) == 0 {
			return &values.List{}, nil
		}
		items, err := v.toSlice(args[0])
		if err != nil {
			return nil, err
		}
		return &values.List{Items: items}, nil
	})

	reg("tuple", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) == 0 {
			return &values.Tuple{}, nil
		}
		items, err := v.toSlice(args[0])
		if err != nil {
			return nil, err
		}
		return &values.Tuple{Items: items}, nil
	})

	reg("dict", func(args []Value, kwargs map[string]Value) (Value, error) {
		d := values.NewDict()
		if len(args) == 1 {
			items, err := v.toSlice(args[0])
			if err != nil {
				return nil, err
			}
			for _, it := range items {
				pair, ok := it.(*values.Tuple)
				if !ok || len(pair.Items) != 2 {
					return nil, values.NewValueError("dictionary update sequence element is not a 2-item sequence")
				}
				d.Set(pair.Items[0], pair.Items[1])
			}
		}
		for k, val := range kwargs {
			d.Set(&values.Str{Value: k}, val)
		}
		return d, nil
	})

	reg("set", func(args []Value, kwargs map[string]Value) (Value, error) {
		s := values.NewSet()
		if len(args) == 1 {
			items, err := v.toSlice(args[0])
			if err != nil {
				return nil, err
			}
			for _, it := range items {
				if !values.IsHashable(it) {
					return nil, values.NewTypeError("unhashable type: '%s'", values.TypeName(it))
				}
				s.Add(it)
			}
		}
		return s, nil
	})

	reg("range", func(args []Value, kwargs map[string]Value) (Value, error) { return builtinRange(args) })

	reg("type", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) != 1 {
			return nil, values.NewTypeError("type() takes exactly one argument")
		}
		return &values.ExceptionType{Name: values.TypeName(args[0])}, nil
	})

	reg("isinstance", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) != 2 {
			return nil, values.NewTypeError("isinstance() takes exactly two arguments")
		}
		wants, ok := isinstanceCandidates(args[1])
		if !ok {
			return nil, values.NewTypeError("isinstance() arg 2 must be a type, a string, or a tuple of types")
		}
		for _, w := range wants {
			if exc, ok := args[0].(*values.Exception); ok {
				if values.ExceptionMatches(exc.Kind, w) {
					return values.True, nil
				}
				continue
			}
			if values.TypeName(args[0]) == w {
				return values.True, nil
			}
		}
		return values.False, nil
	})

	reg("hash", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) != 1 {
			return nil, values.NewTypeError("hash() takes exactly one argument")
		}
		if !values.IsHashable(args[0]) {
			return nil, values.NewTypeError("unhashable type: '%s'", values.TypeName(args[0]))
		}
		return values.MakeInt(int64(values.Hash(args[0]))), nil
	})

	reg("id", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) != 1 {
			return nil, values.NewTypeError("id() takes exactly one argument")
		}
		return values.MakeInt(values.Id(args[0])), nil
	})

	reg("abs", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) != 1 {
			return nil, values.NewTypeError("abs() takes exactly one argument")
		}
		switch x := args[0].(type) {
		case *values.Int:
			if x.Value < 0 {
				return values.MakeInt(-x.Value), nil
			}
			return x, nil
		case *values.Float:
			return &values.Float{Value: math.Abs(x.Value)}, nil
		case *values.Bool:
			return values.MakeInt(boolToInt(x)), nil
		}
		return nil, values.NewTypeError("bad operand type for abs(): '%s'", values.TypeName(args[0]))
	})

	reg("round", func(args []Value, kwargs map[string]Value) (Value, error) { return builtinRound(args) })

	reg("divmod", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) != 2 {
			return nil, values.NewTypeError("divmod() takes exactly two arguments")
		}
		q, err := v.floorDiv(args[0], args[1])
		if err != nil {
			return nil, err
		}
		r, err := v.modulo(args[0], args[1])
		if err != nil {
			return nil, err
		}
		return &values.Tuple{Items: []Value{q, r}}, nil
	})

	reg("pow", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) != 2 {
			return nil, values.NewTypeError("pow() takes exactly two arguments")
		}
		return v.pow(args[0], args[1])
	})

	reg("min", func(args []Value, kwargs map[string]Value) (Value, error) { return v.minMax(args, kwargs, true) })
	reg("max", func(args []Value, kwargs map[string]Value) (Value, error) { return v.minMax(args, kwargs, false) })

	reg("sum", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) == 0 {
			return nil, values.NewTypeError("sum() takes at least one argument")
		}
		items, err := v.toSlice(args[0])
		if err != nil {
			return nil, err
		}
		var acc Value = values.MakeInt(0)
		if len(args) > 1 {
			acc = args[1]
		}
		for _, it := range items {
			acc, err = v.add(acc, it)
			if err != nil {
				return nil, err
			}
		}
		return acc, nil
	})

	reg("bin", func(args []Value, kwargs map[string]Value) (Value, error) {
		i, err := requireInt(args, "bin")
		if err != nil {
			return nil, err
		}
		if i < 0 {
			return &values.Str{Value: "-0b" + strconv.FormatInt(-i, 2)}, nil
		}
		return &values.Str{Value: "0b" + strconv.FormatInt(i, 2)}, nil
	})

	reg("hex", func(args []Value, kwargs map[string]Value) (Value, error) {
		i, err := requireInt(args, "hex")
		if err != nil {
			return nil, err
		}
		if i < 0 {
			return &values.Str{Value: "-0x" + strconv.FormatInt(-i, 16)}, nil
		}
		return &values.Str{Value: "0x" + strconv.FormatInt(i, 16)}, nil
	})

	reg("oct", func(args []Value, kwargs map[string]Value) (Value, error) {
		i, err := requireInt(args, "oct")
		if err != nil {
			return nil, err
		}
		if i < 0 {
			return &values.Str{Value: "-0o" + strconv.FormatInt(-i, 8)}, nil
		}
		return &values.Str{Value: "0o" + strconv.FormatInt(i, 8)}, nil
	})

	reg("chr", func(args []Value, kwargs map[string]Value) (Value, error) {
		i, err := requireInt(args, "chr")
		if err != nil {
			return nil, err
		}
		return &values.Str{Value: string(rune(i))}, nil
	})

	reg("ord", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) != 1 {
			return nil, values.NewTypeError("ord() takes exactly one argument")
		}
		s, ok := args[0].(*values.Str)
		if !ok {
			return nil, values.NewTypeError("ord() expected string")
		}
		runes := []rune(s.Value)
		if len(runes) != 1 {
			return nil, values.NewTypeError("ord() expected a character, got string of length %d", len(runes))
		}
		return values.MakeInt(int64(runes[0])), nil
	})

	reg("enumerate", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) == 0 {
			return nil, values.NewTypeError("enumerate() takes at least one argument")
		}
		start := int64(0)
		if len(args) > 1 {
			i, ok := asPlainInt(args[1])
			if !ok {
				return nil, values.NewTypeError("enumerate() second argument must be int")
			}
			start = i
		}
		items, err := v.toSlice(args[0])
		if err != nil {
			return nil, err
		}
		out := make([]Value, len(items))
		for i, it := range items {
			out[i] = &values.Tuple{Items: []Value{values.MakeInt(start + int64(i)), it}}
		}
		return &values.List{Items: out}, nil
	})

	reg("zip", func(args []Value, kwargs map[string]Value) (Value, error) {
		seqs := make([][]Value, len(args))
		minLen := -1
		for i, a := range args {
			items, err := v.toSlice(a)
			if err != nil {
				return nil, err
			}
			seqs[i] = items
			if minLen < 0 || len(items) < minLen {
				minLen = len(items)
			}
		}
		if minLen < 0 {
			minLen = 0
		}
		out := make([]Value, minLen)
		for i := 0; i < minLen; i++ {
			row := make([]Value, len(seqs))
			for j := range seqs {
				row[j] = seqs[j][i]
			}
			out[i] = &values.Tuple{Items: row}
		}
		return &values.List{Items: out}, nil
	})

	reg("map", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) < 2 {
			return nil, values.NewTypeError("map() takes at least two arguments")
		}
		fn := args[0]
		seqs := make([][]Value, len(args)-1)
		minLen := -1
		for i, a := range args[1:] {
			items, err := v.toSlice(a)
			if err != nil {
				return nil, err
			}
			seqs[i] = items
			if minLen < 0 || len(items) < minLen {
				minLen = len(items)
			}
		}
		if minLen < 0 {
			minLen = 0
		}
		out := make([]Value, minLen)
		for i := 0; i < minLen; i++ {
			callArgs := make([]Value, len(seqs))
			for j := range seqs {
				callArgs[j] = seqs[j][i]
			}
			val, err := v.call(fn, callArgs, nil)
			if err != nil {
				return nil, err
			}
			out[i] = val
		}
		return &values.List{Items: out}, nil
	})

	reg("filter", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) != 2 {
			return nil, values.NewTypeError("filter() takes exactly two arguments")
		}
		items, err := v.toSlice(args[1])
		if err != nil {
			return nil, err
		}
		var out []Value
		for _, it := range items {
			keep := values.Truthy(it)
			if _, isNone := args[0].(values.NoneType); !isNone {
				val, err := v.call(args[0], []Value{it}, nil)
				if err != nil {
					return nil, err
				}
				keep = values.Truthy(val)
			}
			if keep {
				out = append(out, it)
			}
		}
		return &values.List{Items: out}, nil
	})

	reg("sorted", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) != 1 {
			return nil, values.NewTypeError("sorted() takes exactly one argument")
		}
		items, err := v.toSlice(args[0])
		if err != nil {
			return nil, err
		}
		out := make([]Value, len(items))
		copy(out, items)
		if err := v.sortSlice(out, kwargs); err != nil {
			return nil, err
		}
		return &values.List{Items: out}, nil
	})

	reg("reversed", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) != 1 {
			return nil, values.NewTypeError("reversed() takes exactly one argument")
		}
		items, err := v.toSlice(args[0])
		if err != nil {
			return nil, err
		}
		out := make([]Value, len(items))
		for i, it := range items {
			out[len(items)-1-i] = it
		}
		return &values.List{Items: out}, nil
	})

	reg("any", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) != 1 {
			return nil, values.NewTypeError("any() takes exactly one argument")
		}
		items, err := v.toSlice(args[0])
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			if values.Truthy(it) {
				return values.True, nil
			}
		}
		return values.False, nil
	})

	reg("all", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) != 1 {
			return nil, values.NewTypeError("all() takes exactly one argument")
		}
		items, err := v.toSlice(args[0])
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			if !values.Truthy(it) {
				return values.False, nil
			}
		}
		return values.True, nil
	})

	reg("open", func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) == 0 {
			return nil, values.NewTypeError("open() missing path argument")
		}
		path, ok := args[0].(*values.Str)
		if !ok {
			return nil, values.NewTypeError("open() path must be str")
		}
		mode := "r"
		if len(args) > 1 {
			if m, ok := args[1].(*values.Str); ok {
				mode = m.Value
			}
		}
		return v.open(path.Value, mode)
	})
}

// builtinTypeNames maps the constructor builtins spec.md calls "bare
// built-in type identifiers" to the type name isinstance() compares
// against, since this subset has no real type objects behind `int`,
// `str`, etc. — they are ordinary BuiltinFn constructors.
var builtinTypeNames = map[string]string{
	"int": "int", "float": "float", "bool": "bool", "str": "str",
	"list": "list", "tuple": "tuple", "dict": "dict", "set": "set", "range": "range",
}

// isinstanceCandidates normalizes isinstance()'s second argument — a
// string type name, a bare built-in identifier, an ExceptionType, or a
// tuple mixing any of those — into the set of type names to match against.
func isinstanceCandidates(v Value) ([]string, bool) {
	switch x := v.(type) {
	case *values.Str:
		return []string{x.Value}, true
	case *values.ExceptionType:
		return []string{x.Name}, true
	case *values.BuiltinFn:
		if name, ok := builtinTypeNames[x.Name]; ok {
			return []string{name}, true
		}
		return nil, false
	case *values.Tuple:
		var out []string
		for _, el := range x.Items {
			names, ok := isinstanceCandidates(el)
			if !ok {
				return nil, false
			}
			out = append(out, names...)
		}
		return out, true
	}
	return nil, false
}

func boolToInt(b *values.Bool) int64 {
	if b.Value {
		return 1
	}
	return 0
}

func builtinLen(v Value) (int64, error) {
	switch x := v.(type) {
	case *values.Str:
		return int64(len([]rune(x.Value))), nil
	case *values.List:
		return int64(len(x.Items)), nil
	case *values.Tuple:
		return int64(len(x.Items)), nil
	case *values.Dict:
		return int64(x.Len()), nil
	case *values.Set:
		return int64(x.Len()), nil
	case *values.Range:
		return x.Len(), nil
	}
	return 0, values.NewTypeError("object of type '%s' has no len()", values.TypeName(v))
}

func requireInt(args []Value, fn string) (int64, error) {
	if len(args) != 1 {
		return 0, values.NewTypeError("%s() takes exactly one argument", fn)
	}
	i, ok := asPlainNumInt(args[0])
	if !ok {
		return 0, values.NewTypeError("%s() requires an integer", fn)
	}
	return i, nil
}

func builtinInt(args []Value) (Value, error) {
	if len(args) == 0 {
		return values.MakeInt(0), nil
	}
	base := int64(10)
	if len(args) > 1 {
		b, ok := asPlainNumInt(args[1])
		if !ok {
			return nil, values.NewTypeError("int() base must be int")
		}
		base = b
	}
	switch x := args[0].(type) {
	case *values.Int:
		return x, nil
	case *values.Bool:
		return values.MakeInt(boolToInt(x)), nil
	case *values.Float:
		return values.MakeInt(int64(x.Value)), nil
	case *values.Str:
		n, err := strconv.ParseInt(strings.TrimSpace(x.Value), int(base), 64)
		if err != nil {
			return nil, values.NewValueError("invalid literal for int() with base %d: %s", base, values.Repr(x))
		}
		return values.MakeInt(n), nil
	}
	return nil, values.NewTypeError("int() argument must be a string or a number, not '%s'", values.TypeName(args[0]))
}

func builtinFloat(args []Value) (Value, error) {
	if len(args) == 0 {
		return &values.Float{Value: 0}, nil
	}
	switch x := args[0].(type) {
	case *values.Float:
		return x, nil
	case *values.Int:
		return &values.Float{Value: float64(x.Value)}, nil
	case *values.Bool:
		return &values.Float{Value: float64(boolToInt(x))}, nil
	case *values.Str:
		f, err := strconv.ParseFloat(strings.TrimSpace(x.Value), 64)
		if err != nil {
			return nil, values.NewValueError("could not convert string to float: %s", values.Repr(x))
		}
		return &values.Float{Value: f}, nil
	}
	return nil, values.NewTypeError("float() argument must be a string or a number, not '%s'", values.TypeName(args[0]))
}

func builtinRange(args []Value) (Value, error) {
	ints := make([]int64, len(args))
	for i, a := range args {
		n, ok := asPlainInt(a)
		if !ok {
			return nil, values.NewTypeError("range() integer argument expected")
		}
		ints[i] = n
	}
	switch len(ints) {
	case 1:
		return &values.Range{Start: 0, Stop: ints[0], Step: 1}, nil
	case 2:
		return &values.Range{Start: ints[0], Stop: ints[1], Step: 1}, nil
	case 3:
		if ints[2] == 0 {
			return nil, values.NewValueError("range() arg 3 must not be zero")
		}
		return &values.Range{Start: ints[0], Stop: ints[1], Step: ints[2]}, nil
	}
	return nil, values.NewTypeError("range expected 1 to 3 arguments, got %d", len(args))
}

// builtinRound implements banker's rounding (round-half-to-even), per
// SPEC_FULL.md §9.
func builtinRound(args []Value) (Value, error) {
	if len(args) == 0 {
		return nil, values.NewTypeError("round() takes at least one argument")
	}
	ndigits := 0
	hasNdigits := len(args) > 1
	if hasNdigits {
		n, ok := asPlainInt(args[1])
		if !ok {
			return nil, values.NewTypeError("round() second argument must be int")
		}
		ndigits = int(n)
	}
	var f float64
	switch x := args[0].(type) {
	case *values.Int:
		if !hasNdigits {
			return x, nil
		}
		f = float64(x.Value)
	case *values.Bool:
		f = float64(boolToInt(x))
	case *values.Float:
		f = x.Value
	default:
		return nil, values.NewTypeError("type '%s' doesn't define __round__ method", values.TypeName(args[0]))
	}
	scale := math.Pow(10, float64(ndigits))
	scaled := f * scale
	rounded := math.RoundToEven(scaled)
	result := rounded / scale
	if !hasNdigits {
		return values.MakeInt(int64(result)), nil
	}
	return &values.Float{Value: result}, nil
}

func (v *VM) minMax(args []Value, kwargs map[string]Value, wantMin bool) (Value, error) {
	var items []Value
	if len(args) == 1 {
		seq, err := v.toSlice(args[0])
		if err != nil {
			return nil, err
		}
		items = seq
	} else if len(args) > 1 {
		items = args
	} else {
		return nil, values.NewTypeError("%s() takes at least one argument", minMaxName(wantMin))
	}
	if len(items) == 0 {
		if d, ok := kwargs["default"]; ok {
			return d, nil
		}
		return nil, values.NewValueError("%s() arg is an empty sequence", minMaxName(wantMin))
	}
	keyFn, hasKey := kwargs["key"]
	keyOf := func(x Value) (Value, error) {
		if !hasKey {
			return x, nil
		}
		return v.call(keyFn, []Value{x}, nil)
	}
	best := items[0]
	bestKey, err := keyOf(best)
	if err != nil {
		return nil, err
	}
	for _, it := range items[1:] {
		k, err := keyOf(it)
		if err != nil {
			return nil, err
		}
		lt, ok := values.Less(k, bestKey)
		if !ok {
			return nil, values.NewTypeError("'<' not supported between instances of '%s' and '%s'", values.TypeName(k), values.TypeName(bestKey))
		}
		if (wantMin && lt) || (!wantMin && !lt && !values.Equal(k, bestKey)) {
			best, bestKey = it, k
		}
	}
	return best, nil
}

func minMaxName(wantMin bool) string {
	if wantMin {
		return "min"
	}
	return "max"
}
