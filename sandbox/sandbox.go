// Package sandbox is the public facade for embedding the sandboxed Python
// subset in a Go application: compile source, run it against a VM whose
// globals, tools, modules, mounts and resource limits are all controlled by
// the host. Grounded on the teacher's pkg/rage package (pkg/rage/rage.go),
// trimmed to this subset's flat module set and simpler options surface.
package sandbox

import (
	"fmt"

	"github.com/chonkie-inc/littrs/ast"
	"github.com/chonkie-inc/littrs/internal/compiler"
	"github.com/chonkie-inc/littrs/internal/stdlib"
	"github.com/chonkie-inc/littrs/internal/values"
	"github.com/chonkie-inc/littrs/internal/vm"
	"github.com/chonkie-inc/littrs/parser"
)

// CompileErrors wraps one or more parse/compile failures from Run.
type CompileErrors struct {
	Errors []error
}

func (e *CompileErrors) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d compile errors (first: %s)", len(e.Errors), e.Errors[0].Error())
}

func (e *CompileErrors) Unwrap() error {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return nil
}

// Code is source compiled once for repeated execution via Sandbox.Execute.
type Code struct {
	code     *compiler.CodeObject
	Filename string
}

// Option configures a Sandbox at construction time.
type Option func(*config)

type config struct {
	stdlib []string
	limits vm.Limits
}

// WithStdlib enables the named virtual modules (from stdlib.Names) for
// `import` to resolve against. Passing no names enables all of them.
func WithStdlib(names ...string) Option {
	return func(c *config) { c.stdlib = append([]string{}, names...) }
}

// WithLimits caps the instruction count and call depth a single Run may
// spend, per spec.md §4.7's resource-limit contract.
func WithLimits(maxInstructions int64, maxRecursion int) Option {
	return func(c *config) {
		c.limits = vm.Limits{MaxInstructions: maxInstructions, MaxRecursion: maxRecursion}
	}
}

// Sandbox wraps a VM with the public Value boundary, matching the
// teacher's State: a single mutable environment that compiles and executes
// source against persistent globals, tools, modules, and mounts.
type Sandbox struct {
	vm *vm.VM
}

// New returns a Sandbox configured by opts. With no WithStdlib option, no
// virtual modules are registered — `import json` etc. fail with
// ImportError until explicitly enabled.
func New(opts ...Option) *Sandbox {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	v := vm.New()
	v.SetLimits(cfg.limits)
	if cfg.stdlib != nil {
		stdlib.RegisterAll(v, cfg.stdlib...)
	}
	return &Sandbox{vm: v}
}

func compileSource(source, filename string) (*compiler.CodeObject, error) {
	mod, err := parser.Parse(source)
	if err != nil {
		return nil, &CompileErrors{Errors: []error{err}}
	}
	code, err := compiler.New(filename).CompileModule(mod)
	if err != nil {
		return nil, &CompileErrors{Errors: []error{err}}
	}
	return code, nil
}

// Compile parses and compiles source without executing it, for reuse with
// Execute across multiple Run calls on the same or different Sandboxes.
func (s *Sandbox) Compile(source, filename string) (*Code, error) {
	code, err := compileSource(source, filename)
	if err != nil {
		return nil, err
	}
	return &Code{code: code, Filename: filename}, nil
}

// Run compiles and executes source, returning the value of its last
// top-level expression statement, or None if none executed.
func (s *Sandbox) Run(source string) (Value, error) {
	return s.RunWithFilename(source, "<string>")
}

// RunWithFilename is Run with an explicit filename for error messages.
func (s *Sandbox) RunWithFilename(source, filename string) (Value, error) {
	code, err := compileSource(source, filename)
	if err != nil {
		return Value{}, err
	}
	return s.Execute(&Code{code: code, Filename: filename})
}

// Execute runs previously compiled code against this Sandbox's state.
func (s *Sandbox) Execute(c *Code) (Value, error) {
	result, err := s.vm.Run(c.code)
	if err != nil {
		return Value{}, err
	}
	return fromInternal(result), nil
}

// Capture returns everything the sandbox's print() calls have written so
// far, per spec.md §4.4's captured-output contract — never the process's
// real stdout.
func (s *Sandbox) Capture() string { return s.vm.Output.String() }

// SetGlobal binds name in the sandbox's global namespace, visible to
// subsequent Run calls and overridable by user code.
func (s *Sandbox) SetGlobal(name string, v Value) { s.vm.Globals[name] = toInternal(v) }

// GetGlobal reads a global set by SetGlobal or by executed source, or the
// zero Value (Type() == "") if name is unbound.
func (s *Sandbox) GetGlobal(name string) Value {
	v, ok := s.vm.Globals[name]
	if !ok {
		return Value{}
	}
	return fromInternal(v)
}

// Limit reconfigures the instruction-count and recursion-depth ceilings
// for subsequent Run/Execute calls.
func (s *Sandbox) Limit(maxInstructions int64, maxRecursion int) {
	s.vm.SetLimits(vm.Limits{MaxInstructions: maxInstructions, MaxRecursion: maxRecursion})
}

// HostFunc is the signature of a Go function reachable from sandboxed code
// by name, after globals but before the module registry.
type HostFunc func(args []Value) (Value, error)

// Register installs a Go function callable from sandboxed code as `name(...)`.
func (s *Sandbox) Register(name string, fn HostFunc) {
	s.vm.RegisterTool(name, func(args []values.Value) (values.Value, error) {
		out := make([]Value, len(args))
		for i, a := range args {
			out[i] = fromInternal(a)
		}
		result, err := fn(out)
		if err != nil {
			return nil, err
		}
		return toInternal(result), nil
	})
}

// Module installs a virtual module under name, whose members are host-
// supplied constants and HostFuncs, reachable via `import name`.
func (s *Sandbox) Module(name string, consts map[string]Value, funcs map[string]HostFunc) {
	members := make(map[string]values.Value, len(consts)+len(funcs))
	for k, v := range consts {
		members[k] = toInternal(v)
	}
	for k, fn := range funcs {
		fn := fn
		members[k] = &values.BuiltinFn{Name: k, Fn: func(args []values.Value, kwargs map[string]values.Value) (values.Value, error) {
			out := make([]Value, len(args))
			for i, a := range args {
				out[i] = fromInternal(a)
			}
			result, err := fn(out)
			if err != nil {
				return nil, err
			}
			return toInternal(result), nil
		}}
	}
	s.vm.RegisterModule(&values.Module{Name: name, Members: members})
}

// Mount exposes a host path to sandboxed code at virtualPath via open(),
// per spec.md §4.6. writable controls whether "w" mode is permitted.
func (s *Sandbox) Mount(virtualPath, hostPath string, writable bool) {
	s.vm.Mount(virtualPath, hostPath, writable)
}

// Files returns the current committed contents of every writable mount.
func (s *Sandbox) Files() map[string]string { return s.vm.Files() }

// Describe renders a CodeObject's disassembly, for tooling and tests that
// need to inspect compiled output without executing it.
func (c *Code) Describe() string {
	return c.code.Disassemble()
}

// Module re-exports ast.Module so callers that want to parse without compiling (e.g.
// a linter built on this package) don't need to import the ast package
// under a different path.
type Module = ast.Module
