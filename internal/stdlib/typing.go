package stdlib

import (
	"fmt"

	"github.com/chonkie-inc/littrs/internal/values"
)

// TypingModule builds the `typing` module. This subset has no class or
// generic-type system to back `List[int]`-style subscripting, so every
// name here is an opaque, singleton marker carrying nothing but a display
// name — grounded on the teacher's own "markers are singletons" approach
// in internal/stdlib/typing.go, trimmed to drop the _GenericAlias/
// _SpecialForm subscripting machinery that subset has no type checker to
// consume.
func TypingModule() *values.Module {
	b := newModule("typing")
	for _, name := range []string{
		"Any", "Union", "Optional", "Callable", "Literal", "Final", "ClassVar",
		"List", "Dict", "Set", "FrozenSet", "Tuple", "Type", "Sequence",
		"Mapping", "Iterable", "Iterator", "NoReturn", "Hashable", "Sized",
	} {
		b.constVal(name, &typeMarker{Name: name})
	}
	b.constVal("TYPE_CHECKING", values.False)
	b.fn("TypeVar", typingTypeVar)
	b.fn("NewType", typingNewType)
	b.fn("cast", typingCast)
	b.fn("get_type_hints", typingGetTypeHints)
	return b.build()
}

// typeMarker is an inert placeholder returned for every typing-module name
// that exists only to satisfy a type annotation a real interpreter would
// otherwise ignore at runtime.
type typeMarker struct{ Name string }

func (m *typeMarker) Type() string   { return "_SpecialForm" }
func (m *typeMarker) String() string { return fmt.Sprintf("typing.%s", m.Name) }

func typingTypeVar(args []Value, kwargs map[string]Value) (Value, error) {
	if len(args) < 1 {
		return nil, values.NewTypeError("TypeVar() missing required argument: 'name'")
	}
	name, ok := args[0].(*values.Str)
	if !ok {
		return nil, values.NewTypeError("TypeVar() argument 'name' must be str")
	}
	return &typeMarker{Name: name.Value}, nil
}

// typingNewType returns an identity function, matching the real module's
// runtime behavior: NewType exists for static checkers only.
func typingNewType(args []Value, kwargs map[string]Value) (Value, error) {
	if len(args) < 2 {
		return nil, values.NewTypeError("NewType() requires 2 arguments")
	}
	name, ok := args[0].(*values.Str)
	if !ok {
		return nil, values.NewTypeError("NewType() argument 'name' must be str")
	}
	return &values.BuiltinFn{Name: name.Value, Fn: func(args []Value, kwargs map[string]Value) (Value, error) {
		if len(args) < 1 {
			return nil, values.NewTypeError("%s() requires 1 argument", name.Value)
		}
		return args[0], nil
	}}, nil
}

func typingCast(args []Value, kwargs map[string]Value) (Value, error) {
	if len(args) < 2 {
		return nil, values.NewTypeError("cast() requires 2 arguments")
	}
	return args[1], nil
}

func typingGetTypeHints(args []Value, kwargs map[string]Value) (Value, error) {
	return values.NewDict(), nil
}
