// Package values defines the tagged value variants the compiler and VM
// operate on: None, Bool, Int, Float, Str, List, Tuple, Dict, Set,
// Function, BuiltinFn, Module, File, and Exception. There is no class
// hierarchy or instance type here — the accepted language subset has no
// `class` statement, so every value is one of these fixed shapes.
package values

import (
	"fmt"

	"github.com/chonkie-inc/littrs/internal/compiler"
)

// Value is anything the VM can push on its operand stack or store in a
// slot. It is deliberately `any`: the concrete variants below are the
// closed set the language subset supports.
type Value = any

// None is the singleton None value.
type NoneType struct{}

func (NoneType) Type() string   { return "NoneType" }
func (NoneType) String() string { return "None" }

var None = NoneType{}

// Bool wraps a Go bool. True and False are the singleton instances; every
// boolean in the system is one of these two pointers.
type Bool struct{ Value bool }

func (b *Bool) Type() string { return "bool" }
func (b *Bool) String() string {
	if b.Value {
		return "True"
	}
	return "False"
}

var (
	True  = &Bool{Value: true}
	False = &Bool{Value: false}
)

// MakeBool returns the shared True/False singleton for v.
func MakeBool(v bool) *Bool {
	if v {
		return True
	}
	return False
}

// Int is a 64-bit signed integer. The subset has no arbitrary-precision
// integers: arithmetic overflow raises OverflowError rather than wrapping
// or promoting, per spec's Open Question decision (see DESIGN.md).
type Int struct{ Value int64 }

func (i *Int) Type() string   { return "int" }
func (i *Int) String() string { return fmt.Sprintf("%d", i.Value) }

// Small-integer cache, mirrored from the teacher's allocation-avoidance
// idiom (internal/runtime/types.go): frequently constructed ints are
// common enough in loop counters to be worth caching.
const (
	smallIntMin   = -5
	smallIntMax   = 256
	smallIntCount = smallIntMax - smallIntMin + 1
)

var smallIntCache [smallIntCount]*Int

func init() {
	for i := 0; i < smallIntCount; i++ {
		smallIntCache[i] = &Int{Value: int64(i + smallIntMin)}
	}
}

// MakeInt returns an Int, using the small-integer cache where possible.
func MakeInt(v int64) *Int {
	if v >= smallIntMin && v <= smallIntMax {
		return smallIntCache[v-smallIntMin]
	}
	return &Int{Value: v}
}

// Float is an IEEE-754 double.
type Float struct{ Value float64 }

func (f *Float) Type() string   { return "float" }
func (f *Float) String() string { return formatFloat(f.Value) }

// Str is a UTF-8 string.
type Str struct{ Value string }

func (s *Str) Type() string   { return "str" }
func (s *Str) String() string { return s.Value }

// Short-string interning, mirrored from the teacher: equal short strings
// collapse to the same pointer, which speeds up the common case of
// comparing identifier-shaped strings (dict keys, attribute names).
var internPool = map[string]*Str{}

const internMaxLen = 64

// InternStr returns an interned Str for short values of s.
func InternStr(s string) *Str {
	if len(s) > internMaxLen {
		return &Str{Value: s}
	}
	if v, ok := internPool[s]; ok {
		return v
	}
	v := &Str{Value: s}
	internPool[s] = v
	return v
}

// List is an ordered, mutable sequence.
type List struct{ Items []Value }

func (l *List) Type() string   { return "list" }
func (l *List) String() string { return Repr(l) }

// Tuple is an ordered, immutable sequence, hashable when every element is.
type Tuple struct{ Items []Value }

func (t *Tuple) Type() string   { return "tuple" }
func (t *Tuple) String() string { return Repr(t) }

// Function is a reference to a compiled CodeObject plus the default
// argument values computed at `def`/`lambda` time. There is no captured
// environment: free names resolve through globals at call time.
type Function struct {
	Name     string
	Code     *compiler.CodeObject
	Defaults []Value
}

func (f *Function) Type() string   { return "function" }
func (f *Function) String() string { return fmt.Sprintf("<function %s>", f.Name) }

// BuiltinFn is an opaque native callable. Fn takes positional args and a
// keyword map and returns a value or an error (ordinarily a *Exception).
// It never receives a VM reference directly — callables that need to call
// back into user code (map, filter, sorted's key=) close over the VM at
// registration time, mirroring the teacher's builtins setup.
type BuiltinFn struct {
	Name string
	Fn   func(args []Value, kwargs map[string]Value) (Value, error)
}

func (b *BuiltinFn) Type() string   { return "builtin_function_or_method" }
func (b *BuiltinFn) String() string { return fmt.Sprintf("<built-in function %s>", b.Name) }

// Module is a named namespace of constants and callables, reachable via
// `import`/`from ... import` against the host's module registry.
type Module struct {
	Name    string
	Members map[string]Value
}

func (m *Module) Type() string   { return "module" }
func (m *Module) String() string { return fmt.Sprintf("<module '%s'>", m.Name) }

// Range is the lazily-evaluated result of the `range()` builtin.
type Range struct{ Start, Stop, Step int64 }

func (r *Range) Type() string { return "range" }
func (r *Range) String() string {
	if r.Step == 1 {
		return fmt.Sprintf("range(%d, %d)", r.Start, r.Stop)
	}
	return fmt.Sprintf("range(%d, %d, %d)", r.Start, r.Stop, r.Step)
}

// Len returns the number of integers this range produces.
func (r *Range) Len() int64 {
	if r.Step > 0 {
		if r.Stop <= r.Start {
			return 0
		}
		return (r.Stop - r.Start + r.Step - 1) / r.Step
	}
	if r.Stop >= r.Start {
		return 0
	}
	return (r.Start - r.Stop - r.Step - 1) / (-r.Step)
}

// At returns the i'th element of the range.
func (r *Range) At(i int64) int64 { return r.Start + i*r.Step }

// Slice is the result of a `start:stop:step` expression, consumed by
// subscript read/write on sequences.
type Slice struct{ Start, Stop, Step Value } // each is nil or *Int

func (s *Slice) Type() string   { return "slice" }
func (s *Slice) String() string { return Repr(s) }
