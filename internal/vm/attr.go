package vm

import "github.com/chonkie-inc/littrs/internal/values"

// getAttr implements OpLoadAttr: attribute access on a Module consults
// its constant-and-callable mapping; on every built-in type it dispatches
// to a fixed method table, per spec.md §4.3.
func (v *VM) getAttr(recv Value, name string) (Value, error) {
	switch r := recv.(type) {
	case *values.Module:
		if val, ok := r.Members[name]; ok {
			return val, nil
		}
		return nil, values.NewAttributeError("module '%s' has no attribute '%s'", r.Name, name)
	case *values.Str:
		if m, ok := stringMethod(r, name); ok {
			return m, nil
		}
	case *values.List:
		if m, ok := listMethod(v, r, name); ok {
			return m, nil
		}
	case *values.Dict:
		if m, ok := dictMethod(v, r, name); ok {
			return m, nil
		}
	case *values.Set:
		if m, ok := setMethod(v, r, name); ok {
			return m, nil
		}
	case *values.File:
		if m, ok := fileMethod(v, r, name); ok {
			return m, nil
		}
	case *values.Exception:
		switch name {
		case "args":
			return &values.Tuple{Items: []Value{&values.Str{Value: r.Message}}}, nil
		}
	}
	return nil, values.NewAttributeError("'%s' object has no attribute '%s'", values.TypeName(recv), name)
}

// setAttr implements OpStoreAttr. There is no user-defined class system
// in this subset, so no built-in value exposes a settable attribute.
func (v *VM) setAttr(recv Value, name string, val Value) error {
	return values.NewAttributeError("'%s' object has no attribute '%s'", values.TypeName(recv), name)
}
