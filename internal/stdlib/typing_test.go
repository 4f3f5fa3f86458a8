package stdlib

import (
	"testing"

	"github.com/chonkie-inc/littrs/internal/values"
)

func TestTypingMarkersAreSingletonsByName(t *testing.T) {
	mod := TypingModule()
	for _, name := range []string{"Any", "Union", "Optional", "List", "Dict"} {
		member, ok := mod.Members[name]
		if !ok {
			t.Fatalf("typing module has no member %q", name)
		}
		marker, ok := member.(*typeMarker)
		if !ok || marker.Name != name {
			t.Errorf("typing.%s = %#v, want a typeMarker named %q", name, member, name)
		}
	}
}

func TestTypingCheckingIsFalseAtRuntime(t *testing.T) {
	mod := TypingModule()
	v, ok := mod.Members["TYPE_CHECKING"].(*values.Bool)
	if !ok || v.Value {
		t.Errorf("TYPE_CHECKING = %#v, want False", mod.Members["TYPE_CHECKING"])
	}
}

func TestTypingTypeVarReturnsANamedMarker(t *testing.T) {
	mod := TypingModule()
	fn := mod.Members["TypeVar"].(*values.BuiltinFn)
	result, err := fn.Fn([]Value{&values.Str{Value: "T"}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	marker, ok := result.(*typeMarker)
	if !ok || marker.Name != "T" {
		t.Errorf("TypeVar(\"T\") = %#v, want typeMarker{Name: \"T\"}", result)
	}
}

func TestTypingTypeVarRequiresAName(t *testing.T) {
	mod := TypingModule()
	fn := mod.Members["TypeVar"].(*values.BuiltinFn)
	_, err := fn.Fn(nil, nil)
	exc, ok := err.(*values.Exception)
	if !ok || exc.Kind != "TypeError" {
		t.Errorf("TypeVar() error = %#v, want TypeError", err)
	}
}

func TestTypingNewTypeActsAsIdentity(t *testing.T) {
	mod := TypingModule()
	newType := mod.Members["NewType"].(*values.BuiltinFn)
	userID, err := newType.Fn([]Value{&values.Str{Value: "UserID"}, &typeMarker{Name: "int"}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	ctor, ok := userID.(*values.BuiltinFn)
	if !ok {
		t.Fatalf("NewType(...) = %#v, want a callable", userID)
	}
	result, err := ctor.Fn([]Value{values.MakeInt(5)}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if i, ok := result.(*values.Int); !ok || i.Value != 5 {
		t.Errorf("UserID(5) = %#v, want 5", result)
	}
}

func TestTypingCastReturnsItsSecondArgumentUnchanged(t *testing.T) {
	mod := TypingModule()
	cast := mod.Members["cast"].(*values.BuiltinFn)
	result, err := cast.Fn([]Value{&typeMarker{Name: "int"}, values.MakeInt(9)}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if i, ok := result.(*values.Int); !ok || i.Value != 9 {
		t.Errorf("cast(int, 9) = %#v, want 9", result)
	}
}

func TestTypingGetTypeHintsReturnsEmptyDict(t *testing.T) {
	mod := TypingModule()
	fn := mod.Members["get_type_hints"].(*values.BuiltinFn)
	result, err := fn.Fn(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	d, ok := result.(*values.Dict)
	if !ok || d.Len() != 0 {
		t.Errorf("get_type_hints() = %#v, want an empty dict", result)
	}
}

func TestTypeMarkerStringFormat(t *testing.T) {
	m := &typeMarker{Name: "Any"}
	if got := m.String(); got != "typing.Any" {
		t.Errorf("String() = %q, want %q", got, "typing.Any")
	}
	if got := m.Type(); got != "_SpecialForm" {
		t.Errorf("Type() = %q, want %q", got, "_SpecialForm")
	}
}
