package vm

import "github.com/chonkie-inc/littrs/internal/values"

func dictMethod(v *VM, recv *values.Dict, name string) (Value, bool) {
	bf := func(fn func(args []Value) (Value, error)) Value {
		return &values.BuiltinFn{Name: "dict." + name, Fn: func(args []Value, kwargs map[string]Value) (Value, error) {
			return fn(args)
		}}
	}
	switch name {
	case "keys":
		return bf(func(args []Value) (Value, error) { return &values.List{Items: recv.Keys()}, nil }), true
	case "values":
		return bf(func(args []Value) (Value, error) {
			items := recv.Items()
			out := make([]Value, len(items))
			for i, kv := range items {
				out[i] = kv[1]
			}
			return &values.List{Items: out}, nil
		}), true
	case "items":
		return bf(func(args []Value) (Value, error) {
			items := recv.Items()
			out := make([]Value, len(items))
			for i, kv := range items {
				out[i] = &values.Tuple{Items: []Value{kv[0], kv[1]}}
			}
			return &values.List{Items: out}, nil
		}), true
	case "get":
		return bf(func(args []Value) (Value, error) {
			if len(args) == 0 {
				return nil, values.NewTypeError("get() missing key argument")
			}
			if val, ok := recv.Get(args[0]); ok {
				return val, nil
			}
			if len(args) > 1 {
				return args[1], nil
			}
			return values.None, nil
		}), true
	case "update":
		return bf(func(args []Value) (Value, error) {
			if len(args) != 1 {
				return nil, values.NewTypeError("update() takes exactly one argument")
			}
			other, ok := args[0].(*values.Dict)
			if !ok {
				return nil, values.NewTypeError("update() argument must be dict, not %s", values.TypeName(args[0]))
			}
			for _, kv := range other.Items() {
				recv.Set(kv[0], kv[1])
			}
			return values.None, nil
		}), true
	case "clear":
		return bf(func(args []Value) (Value, error) {
			for _, k := range recv.Keys() {
				recv.Delete(k)
			}
			return values.None, nil
		}), true
	case "pop":
		return bf(func(args []Value) (Value, error) {
			if len(args) == 0 {
				return nil, values.NewTypeError("pop() missing key argument")
			}
			if val, ok := recv.Get(args[0]); ok {
				recv.Delete(args[0])
				return val, nil
			}
			if len(args) > 1 {
				return args[1], nil
			}
			return nil, values.NewKeyError("%s", values.Repr(args[0]))
		}), true
	}
	return nil, false
}

func setMethod(v *VM, recv *values.Set, name string) (Value, bool) {
	bf := func(fn func(args []Value) (Value, error)) Value {
		return &values.BuiltinFn{Name: "set." + name, Fn: func(args []Value, kwargs map[string]Value) (Value, error) {
			return fn(args)
		}}
	}
	otherSet := func(val Value) (*values.Set, error) {
		items, err := v.toSlice(val)
		if err != nil {
			return nil, values.NewTypeError("argument must be iterable")
		}
		s := values.NewSet()
		for _, it := range items {
			s.Add(it)
		}
		return s, nil
	}
	switch name {
	case "add":
		return bf(func(args []Value) (Value, error) {
			if len(args) != 1 {
				return nil, values.NewTypeError("add() takes exactly one argument")
			}
			recv.Add(args[0])
			return values.None, nil
		}), true
	case "remove":
		return bf(func(args []Value) (Value, error) {
			if !recv.Remove(args[0]) {
				return nil, values.NewKeyError("%s", values.Repr(args[0]))
			}
			return values.None, nil
		}), true
	case "discard":
		return bf(func(args []Value) (Value, error) { recv.Remove(args[0]); return values.None, nil }), true
	case "pop":
		return bf(func(args []Value) (Value, error) {
			items := recv.Items()
			if len(items) == 0 {
				return nil, values.NewKeyError("pop from an empty set")
			}
			recv.Remove(items[0])
			return items[0], nil
		}), true
	case "union":
		return bf(func(args []Value) (Value, error) {
			out := values.NewSet()
			for _, it := range recv.Items() {
				out.Add(it)
			}
			for _, a := range args {
				other, err := otherSet(a)
				if err != nil {
					return nil, err
				}
				for _, it := range other.Items() {
					out.Add(it)
				}
			}
			return out, nil
		}), true
	case "intersection":
		return bf(func(args []Value) (Value, error) {
			out := values.NewSet()
			for _, it := range recv.Items() {
				inAll := true
				for _, a := range args {
					other, err := otherSet(a)
					if err != nil {
						return nil, err
					}
					if !other.Has(it) {
						inAll = false
						break
					}
				}
				if inAll {
					out.Add(it)
				}
			}
			return out, nil
		}), true
	case "difference":
		return bf(func(args []Value) (Value, error) {
			out := values.NewSet()
			for _, it := range recv.Items() {
				out.Add(it)
			}
			for _, a := range args {
				other, err := otherSet(a)
				if err != nil {
					return nil, err
				}
				for _, it := range other.Items() {
					out.Remove(it)
				}
			}
			return out, nil
		}), true
	case "symmetric_difference":
		return bf(func(args []Value) (Value, error) {
			if len(args) != 1 {
				return nil, values.NewTypeError("symmetric_difference() takes exactly one argument")
			}
			other, err := otherSet(args[0])
			if err != nil {
				return nil, err
			}
			out := values.NewSet()
			for _, it := range recv.Items() {
				if !other.Has(it) {
					out.Add(it)
				}
			}
			for _, it := range other.Items() {
				if !recv.Has(it) {
					out.Add(it)
				}
			}
			return out, nil
		}), true
	case "issubset":
		return bf(func(args []Value) (Value, error) {
			other, err := otherSet(args[0])
			if err != nil {
				return nil, err
			}
			for _, it := range recv.Items() {
				if !other.Has(it) {
					return values.False, nil
				}
			}
			return values.True, nil
		}), true
	case "issuperset":
		return bf(func(args []Value) (Value, error) {
			other, err := otherSet(args[0])
			if err != nil {
				return nil, err
			}
			for _, it := range other.Items() {
				if !recv.Has(it) {
					return values.False, nil
				}
			}
			return values.True, nil
		}), true
	case "isdisjoint":
		return bf(func(args []Value) (Value, error) {
			other, err := otherSet(args[0])
			if err != nil {
				return nil, err
			}
			for _, it := range recv.Items() {
				if other.Has(it) {
					return values.False, nil
				}
			}
			return values.True, nil
		}), true
	case "copy":
		return bf(func(args []Value) (Value, error) {
			out := values.NewSet()
			for _, it := range recv.Items() {
				out.Add(it)
			}
			return out, nil
		}), true
	case "update":
		return bf(func(args []Value) (Value, error) {
			for _, a := range args {
				other, err := otherSet(a)
				if err != nil {
					return nil, err
				}
				for _, it := range other.Items() {
					recv.Add(it)
				}
			}
			return values.None, nil
		}), true
	case "clear":
		return bf(func(args []Value) (Value, error) {
			for _, it := range recv.Items() {
				recv.Remove(it)
			}
			return values.None, nil
		}), true
	}
	return nil, false
}
