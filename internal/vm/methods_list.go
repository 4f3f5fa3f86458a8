package vm

import "github.com/chonkie-inc/littrs/internal/values"

func listMethod(v *VM, recv *values.List, name string) (Value, bool) {
	bf := func(fn func(args []Value) (Value, error)) Value {
		return &values.BuiltinFn{Name: "list." + name, Fn: func(args []Value, kwargs map[string]Value) (Value, error) {
			return fn(args)
		}}
	}
	bfKw := func(fn func(args []Value, kwargs map[string]Value) (Value, error)) Value {
		return &values.BuiltinFn{Name: "list." + name, Fn: fn}
	}

	switch name {
	case "append":
		return bf(func(args []Value) (Value, error) {
			if len(args) != 1 {
				return nil, values.NewTypeError("append() takes exactly one argument")
			}
			recv.Items = append(recv.Items, args[0])
			return values.None, nil
		}), true
	case "pop":
		return bf(func(args []Value) (Value, error) {
			if len(recv.Items) == 0 {
				return nil, values.NewIndexError("pop from empty list")
			}
			idx := int64(len(recv.Items) - 1)
			if len(args) > 0 {
				i, err := indexValue(args[0])
				if err != nil {
					return nil, err
				}
				idx = i
			}
			idx, err := normIndex(idx, int64(len(recv.Items)))
			if err != nil {
				return nil, err
			}
			val := recv.Items[idx]
			recv.Items = append(recv.Items[:idx], recv.Items[idx+1:]...)
			return val, nil
		}), true
	case "extend":
		return bf(func(args []Value) (Value, error) {
			if len(args) != 1 {
				return nil, values.NewTypeError("extend() takes exactly one argument")
			}
			items, err := v.toSlice(args[0])
			if err != nil {
				return nil, err
			}
			recv.Items = append(recv.Items, items...)
			return values.None, nil
		}), true
	case "insert":
		return bf(func(args []Value) (Value, error) {
			if len(args) != 2 {
				return nil, values.NewTypeError("insert() takes exactly two arguments")
			}
			idx, err := indexValue(args[0])
			if err != nil {
				return nil, err
			}
			n := int64(len(recv.Items))
			if idx < 0 {
				idx += n
			}
			if idx < 0 {
				idx = 0
			}
			if idx > n {
				idx = n
			}
			recv.Items = append(recv.Items, nil)
			copy(recv.Items[idx+1:], recv.Items[idx:])
			recv.Items[idx] = args[1]
			return values.None, nil
		}), true
	case "remove":
		return bf(func(args []Value) (Value, error) {
			if len(args) != 1 {
				return nil, values.NewTypeError("remove() takes exactly one argument")
			}
			for i, it := range recv.Items {
				if values.Equal(it, args[0]) {
					recv.Items = append(recv.Items[:i], recv.Items[i+1:]...)
					return values.None, nil
				}
			}
			return nil, values.NewValueError("list.remove(x): x not in list")
		}), true
	case "index":
		return bf(func(args []Value) (Value, error) {
			if len(args) != 1 {
				return nil, values.NewTypeError("index() takes exactly one argument")
			}
			for i, it := range recv.Items {
				if values.Equal(it, args[0]) {
					return values.MakeInt(int64(i)), nil
				}
			}
			return nil, values.NewValueError("%s is not in list", values.Repr(args[0]))
		}), true
	case "count":
		return bf(func(args []Value) (Value, error) {
			if len(args) != 1 {
				return nil, values.NewTypeError("count() takes exactly one argument")
			}
			n := 0
			for _, it := range recv.Items {
				if values.Equal(it, args[0]) {
					n++
				}
			}
			return values.MakeInt(int64(n)), nil
		}), true
	case "sort":
		return bfKw(func(args []Value, kwargs map[string]Value) (Value, error) {
			return values.None, v.sortSlice(recv.Items, kwargs)
		}), true
	}
	return nil, false
}
