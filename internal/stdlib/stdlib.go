// Package stdlib provides the virtual modules (math, json, typing) a
// sandbox can opt into, each built as a values.Module and installed into a
// VM's module registry via RegisterAll.
package stdlib

import "github.com/chonkie-inc/littrs/internal/values"

// registrar is anything that can accept a finished module, satisfied by
// *vm.VM without importing internal/vm (which would cycle back here).
type registrar interface {
	RegisterModule(m *values.Module)
}

// moduleBuilder is a small fluent constructor for a values.Module, grounded
// on the teacher's ModuleBuilder but trimmed to this subset's flat
// Members map (no docstring/package/loader bookkeeping, no global loader
// registry — a sandbox's module set is fixed at construction).
type moduleBuilder struct {
	mod *values.Module
}

func newModule(name string) *moduleBuilder {
	return &moduleBuilder{mod: &values.Module{Name: name, Members: map[string]Value{}}}
}

func (b *moduleBuilder) constVal(name string, v Value) *moduleBuilder {
	b.mod.Members[name] = v
	return b
}

func (b *moduleBuilder) fn(name string, fn func(args []Value, kwargs map[string]Value) (Value, error)) *moduleBuilder {
	b.mod.Members[name] = &values.BuiltinFn{Name: name, Fn: fn}
	return b
}

func (b *moduleBuilder) build() *values.Module { return b.mod }

// Value aliases the shared tagged-union type so this package doesn't force
// every call site to import internal/values directly.
type Value = values.Value

// Names lists every stdlib module this package can provide, for a
// sandbox's WithStdlib("math", "json", "typing") option to validate against.
var Names = []string{"math", "json", "typing"}

// RegisterAll installs every stdlib module named in names (or all of them,
// if names is empty) into v.
func RegisterAll(v registrar, names ...string) {
	if len(names) == 0 {
		names = Names
	}
	for _, n := range names {
		switch n {
		case "math":
			v.RegisterModule(MathModule())
		case "json":
			v.RegisterModule(JSONModule())
		case "typing":
			v.RegisterModule(TypingModule())
		}
	}
}
