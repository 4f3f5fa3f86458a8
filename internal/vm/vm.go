// Package vm executes a compiler.CodeObject: a stack-based dispatch loop,
// call frames, exception-table-driven error handling, the built-in
// function/method tables, the tool and module registries, and the file
// mount layer. There is no closure or class machinery, matching the
// language subset the compiler accepts.
package vm

import (
	"github.com/chonkie-inc/littrs/internal/compiler"
	"github.com/chonkie-inc/littrs/internal/values"
)

// Value and Exception are re-exported so callers of this package (the
// sandbox facade) don't need to import internal/values directly.
type (
	Value     = values.Value
	Exception = values.Exception
)

// Tool is a host-registered callable participating in name lookup after
// globals but before the module registry.
type Tool struct {
	Name string
	Fn   func(args []Value) (Value, error)
}

// Mount is one entry of the file mount table: a virtual path resolves to
// a host path, optionally writable.
type Mount struct {
	VirtualPath string
	HostPath    string
	Writable    bool
}

// Limits caps the resources a single Run call may consume.
type Limits struct {
	MaxInstructions int64 // 0 disables the check
	MaxRecursion    int   // 0 disables the check
}

// VM holds everything that persists across one or more Run calls: the
// global environment, the tool and module registries, mounts, resource
// limits, and the captured-output buffer.
type VM struct {
	Globals map[string]Value

	tools   map[string]*Tool
	modules map[string]*values.Module
	mounts  map[string]*Mount

	limits Limits

	instrCount int64
	frames     []*Frame

	Output *outputBuffer
}

// New returns a VM with the fixed built-in functions and exception types
// pre-seeded into its global namespace, resolving the Open Question left
// by spec.md §4.3: built-ins live directly in globals rather than a
// separate lookup tier, so user code can shadow them like any other name.
func New() *VM {
	v := &VM{
		Globals: map[string]Value{},
		tools:   map[string]*Tool{},
		modules: map[string]*values.Module{},
		mounts:  map[string]*Mount{},
		Output:  newOutputBuffer(),
	}
	for _, name := range values.BuiltinExceptionTypes {
		v.Globals[name] = &values.ExceptionType{Name: name}
	}
	v.installBuiltins()
	return v
}

// SetLimits configures instruction-count and call-depth ceilings.
func (v *VM) SetLimits(l Limits) { v.limits = l }

// RegisterTool adds a host callable reachable by name after globals.
func (v *VM) RegisterTool(name string, fn func(args []Value) (Value, error)) {
	v.tools[name] = &Tool{Name: name, Fn: fn}
}

// RegisterModule installs a virtual module reachable via import.
func (v *VM) RegisterModule(m *values.Module) { v.modules[m.Name] = m }

// Mount registers a virtual path against a host path.
func (v *VM) Mount(virtualPath, hostPath string, writable bool) {
	v.mounts[virtualPath] = &Mount{VirtualPath: virtualPath, HostPath: hostPath, Writable: writable}
}

// Run executes a top-level CodeObject and returns its last top-level
// expression's value (set by OpSetResult), or None if none executed.
func (v *VM) Run(code *compiler.CodeObject) (Value, error) {
	v.instrCount = 0
	frame := newFrame(code)
	v.frames = append(v.frames, frame)
	result, err := v.dispatch(frame)
	v.frames = v.frames[:0]
	return result, err
}

// resolveGlobal implements spec.md §4.3's load-global chain: the
// facade's globals first, then the tool registry, then the module
// registry, else NameError.
func (v *VM) resolveGlobal(name string) (Value, error) {
	if val, ok := v.Globals[name]; ok {
		return val, nil
	}
	if t, ok := v.tools[name]; ok {
		return &values.BuiltinFn{Name: t.Name, Fn: func(args []Value, kwargs map[string]Value) (Value, error) {
			return t.Fn(args)
		}}, nil
	}
	if m, ok := v.modules[name]; ok {
		return m, nil
	}
	return nil, values.NewNameError("name '%s' is not defined", name)
}
