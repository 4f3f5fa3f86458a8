package vm

import (
	"sort"

	"github.com/chonkie-inc/littrs/internal/values"
)

// sortSlice implements the shared core of list.sort() and the sorted()
// builtin: a stable sort (spec.md §9 calls for sort stability) with
// optional `key` and `reverse` keyword arguments. `key` may call back
// into user-defined Python functions, which is why this lives in the vm
// package rather than internal/values.
func (v *VM) sortSlice(items []Value, kwargs map[string]Value) error {
	var keyErr error
	keys := items
	if keyFn, ok := kwargs["key"]; ok && keyFn != nil {
		keys = make([]Value, len(items))
		for i, it := range items {
			k, err := v.call(keyFn, []Value{it}, nil)
			if err != nil {
				keyErr = err
				break
			}
			keys[i] = k
		}
	}
	if keyErr != nil {
		return keyErr
	}

	reverse := false
	if r, ok := kwargs["reverse"]; ok {
		reverse = values.Truthy(r)
	}

	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	var sortErr error
	sort.SliceStable(idx, func(i, j int) bool {
		lt, ok := values.Less(keys[idx[i]], keys[idx[j]])
		if !ok && sortErr == nil {
			sortErr = values.NewTypeError("'<' not supported between instances of '%s' and '%s'", values.TypeName(keys[idx[i]]), values.TypeName(keys[idx[j]]))
		}
		if reverse {
			return !lt && !values.Equal(keys[idx[i]], keys[idx[j]])
		}
		return lt
	})
	if sortErr != nil {
		return sortErr
	}

	out := make([]Value, len(items))
	for i, j := range idx {
		out[i] = items[j]
	}
	copy(items, out)
	return nil
}
