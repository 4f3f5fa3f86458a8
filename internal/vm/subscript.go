package vm

import (
	"strings"

	"github.com/chonkie-inc/littrs/internal/values"
)

// normIndex resolves a possibly-negative Python index against length n,
// raising IndexError if still out of range after normalization.
func normIndex(idx, n int64) (int64, error) {
	orig := idx
	if idx < 0 {
		idx += n
	}
	if idx < 0 || idx >= n {
		return 0, values.NewIndexError("index out of range: %d", orig)
	}
	return idx, nil
}

func indexValue(v Value) (int64, error) {
	i, ok := v.(*values.Int)
	if !ok {
		if b, ok := v.(*values.Bool); ok {
			if b.Value {
				return 1, nil
			}
			return 0, nil
		}
		return 0, values.NewTypeError("indices must be integers, not %s", values.TypeName(v))
	}
	return i.Value, nil
}

// getSubscr implements `container[index]`, including slice indices.
func (v *VM) getSubscr(container, index Value) (Value, error) {
	if sl, ok := index.(*values.Slice); ok {
		return v.getSlice(container, sl)
	}
	switch c := container.(type) {
	case *values.List:
		i, err := indexValue(index)
		if err != nil {
			return nil, err
		}
		i, err = normIndex(i, int64(len(c.Items)))
		if err != nil {
			return nil, err
		}
		return c.Items[i], nil
	case *values.Tuple:
		i, err := indexValue(index)
		if err != nil {
			return nil, err
		}
		i, err = normIndex(i, int64(len(c.Items)))
		if err != nil {
			return nil, err
		}
		return c.Items[i], nil
	case *values.Str:
		runes := []rune(c.Value)
		i, err := indexValue(index)
		if err != nil {
			return nil, err
		}
		i, err = normIndex(i, int64(len(runes)))
		if err != nil {
			return nil, err
		}
		return &values.Str{Value: string(runes[i])}, nil
	case *values.Dict:
		if !values.IsHashable(index) {
			return nil, values.NewTypeError("unhashable type: '%s'", values.TypeName(index))
		}
		val, ok := c.Get(index)
		if !ok {
			return nil, values.NewKeyError("%s", values.Repr(index))
		}
		return val, nil
	}
	return nil, values.NewTypeError("'%s' object is not subscriptable", values.TypeName(container))
}

func sliceBounds(sl *values.Slice, n int64) (start, stop, step int64) {
	step = 1
	if sl.Step != nil {
		step, _ = asPlainInt(sl.Step)
		if step == 0 {
			step = 1
		}
	}
	if step > 0 {
		start, stop = 0, n
	} else {
		start, stop = n-1, -1
	}
	if sl.Start != nil {
		s, _ := asPlainInt(sl.Start)
		start = clampSliceIndex(s, n, step > 0)
	}
	if sl.Stop != nil {
		s, _ := asPlainInt(sl.Stop)
		stop = clampSliceIndex(s, n, step > 0)
	}
	return
}

func clampSliceIndex(i, n int64, forward bool) int64 {
	if i < 0 {
		i += n
		if i < 0 {
			if forward {
				return 0
			}
			return -1
		}
	}
	if i > n {
		if forward {
			return n
		}
		return n - 1
	}
	return i
}

func (v *VM) getSlice(container Value, sl *values.Slice) (Value, error) {
	switch c := container.(type) {
	case *values.List:
		items := sliceItems(c.Items, sl)
		return &values.List{Items: items}, nil
	case *values.Tuple:
		items := sliceItems(c.Items, sl)
		return &values.Tuple{Items: items}, nil
	case *values.Str:
		runes := []rune(c.Value)
		n := int64(len(runes))
		start, stop, step := sliceBounds(sl, n)
		var b strings.Builder
		if step > 0 {
			for i := start; i < stop; i += step {
				b.WriteRune(runes[i])
			}
		} else {
			for i := start; i > stop; i += step {
				b.WriteRune(runes[i])
			}
		}
		return &values.Str{Value: b.String()}, nil
	}
	return nil, values.NewTypeError("'%s' object is not subscriptable", values.TypeName(container))
}

func sliceItems(items []Value, sl *values.Slice) []Value {
	n := int64(len(items))
	start, stop, step := sliceBounds(sl, n)
	var out []Value
	if step > 0 {
		for i := start; i < stop; i += step {
			out = append(out, items[i])
		}
	} else {
		for i := start; i > stop; i += step {
			out = append(out, items[i])
		}
	}
	return out
}

// setSubscr implements `container[index] = value`.
func (v *VM) setSubscr(container, index, val Value) error {
	switch c := container.(type) {
	case *values.List:
		if sl, ok := index.(*values.Slice); ok {
			repl, ok := asItemSlice(val)
			if !ok {
				return values.NewTypeError("can only assign an iterable")
			}
			n := int64(len(c.Items))
			start, stop, step := sliceBounds(sl, n)
			if step != 1 {
				return values.NewUnsupportedOperation("extended slice assignment with step != 1")
			}
			if start > stop {
				stop = start
			}
			merged := append([]Value{}, c.Items[:start]...)
			merged = append(merged, repl...)
			merged = append(merged, c.Items[stop:]...)
			c.Items = merged
			return nil
		}
		i, err := indexValue(index)
		if err != nil {
			return err
		}
		i, err = normIndex(i, int64(len(c.Items)))
		if err != nil {
			return err
		}
		c.Items[i] = val
		return nil
	case *values.Dict:
		if !values.IsHashable(index) {
			return values.NewTypeError("unhashable type: '%s'", values.TypeName(index))
		}
		c.Set(index, val)
		return nil
	}
	return values.NewTypeError("'%s' object does not support item assignment", values.TypeName(container))
}

func asItemSlice(v Value) ([]Value, bool) {
	switch x := v.(type) {
	case *values.List:
		return x.Items, true
	case *values.Tuple:
		return x.Items, true
	}
	return nil, false
}

// buildSlice implements OpBuildSlice: stack holds [start, stop] or
// [start, stop, step], start/stop may be None.
func buildSlice(parts []Value) *values.Slice {
	sl := &values.Slice{Start: normNone(parts[0]), Stop: normNone(parts[1])}
	if len(parts) == 3 {
		sl.Step = normNone(parts[2])
	}
	return sl
}

func normNone(v Value) Value {
	if _, ok := v.(values.NoneType); ok {
		return nil
	}
	return v
}
