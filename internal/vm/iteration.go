package vm

import "github.com/chonkie-inc/littrs/internal/values"

// iterator is the VM-internal cursor OpForIter advances. There is no
// user-visible iterator value or `__iter__`/`__next__` protocol in this
// subset — every iterable is one of the fixed container kinds, so a
// closed Go type switch at OpGetIter time is enough, unlike the teacher's
// PyIterator/generator/coroutine unification.
type iterator struct {
	items []Value
	pos   int
}

func (it *iterator) next() (Value, bool) {
	if it.pos >= len(it.items) {
		return nil, false
	}
	v := it.items[it.pos]
	it.pos++
	return v, true
}

// getIter materializes an iterable into the flat item list OpForIter
// walks. Lists are snapshotted at iteration start: the subset's `for`
// loops don't need to observe concurrent mutation, and snapshotting keeps
// OpForIter a simple index bump instead of needing to track a live
// reference back into a mutable container.
func (v *VM) getIter(obj Value) (*iterator, error) {
	switch c := obj.(type) {
	case *values.List:
		items := make([]Value, len(c.Items))
		copy(items, c.Items)
		return &iterator{items: items}, nil
	case *values.Tuple:
		return &iterator{items: c.Items}, nil
	case *values.Set:
		return &iterator{items: c.Items()}, nil
	case *values.Dict:
		return &iterator{items: c.Keys()}, nil
	case *values.Str:
		runes := []rune(c.Value)
		items := make([]Value, len(runes))
		for i, r := range runes {
			items[i] = &values.Str{Value: string(r)}
		}
		return &iterator{items: items}, nil
	case *values.Range:
		n := c.Len()
		items := make([]Value, n)
		for i := int64(0); i < n; i++ {
			items[i] = values.MakeInt(c.At(i))
		}
		return &iterator{items: items}, nil
	case *iterator:
		return c, nil
	}
	return nil, values.NewTypeError("'%s' object is not iterable", values.TypeName(obj))
}

// toSlice fully materializes any iterable into a Go slice, used by
// built-ins (list(), sorted(), sum(), ...) that need every element at once.
func (v *VM) toSlice(obj Value) ([]Value, error) {
	it, err := v.getIter(obj)
	if err != nil {
		return nil, err
	}
	var out []Value
	for {
		val, ok := it.next()
		if !ok {
			break
		}
		out = append(out, val)
	}
	return out, nil
}
