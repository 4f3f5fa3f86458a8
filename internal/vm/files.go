package vm

import (
	"os"

	"github.com/chonkie-inc/littrs/internal/values"
)

// open implements the `open(path, mode)` builtin against the mount
// table, per spec.md §4.6: unmounted path -> FileNotFoundError, "w" on a
// non-writable mount -> PermissionError, any mode besides "r"/"w" ->
// UnsupportedOperation.
func (v *VM) open(path, mode string) (Value, error) {
	if mode == "" {
		mode = "r"
	}
	if mode != "r" && mode != "w" {
		return nil, values.NewUnsupportedOperation("unsupported file mode '%s'", mode)
	}
	m, ok := v.mounts[path]
	if !ok {
		return nil, values.NewFileNotFoundError("no such mounted file: '%s'", path)
	}
	if mode == "w" && !m.Writable {
		return nil, values.NewPermissionError("mount '%s' is not writable", path)
	}
	f := &values.File{VirtualPath: path, Mode: mode, Writable: m.Writable}
	if mode == "r" {
		content, err := os.ReadFile(m.HostPath)
		if err != nil {
			return nil, values.NewFileNotFoundError("could not read '%s': %s", path, err.Error())
		}
		f.ReadBuf = string(content)
	}
	return f, nil
}

// commitFile flushes a File's write buffer to its host path on close, per
// spec.md §4.6's "writes are buffered and committed no later than
// close()" rule.
func (v *VM) commitFile(f *values.File) error {
	if f.Mode != "w" {
		return nil
	}
	m, ok := v.mounts[f.VirtualPath]
	if !ok {
		return values.NewFileNotFoundError("no such mounted file: '%s'", f.VirtualPath)
	}
	return os.WriteFile(m.HostPath, []byte(f.WriteBuf.String()), 0o644)
}

// Files returns the current committed contents of every writable mount,
// the host-side inspection spec.md §4.6 calls for.
func (v *VM) Files() map[string]string {
	out := map[string]string{}
	for path, m := range v.mounts {
		if !m.Writable {
			continue
		}
		content, err := os.ReadFile(m.HostPath)
		if err != nil {
			continue
		}
		out[path] = string(content)
	}
	return out
}

func fileMethod(v *VM, recv *values.File, name string) (Value, bool) {
	requireOpen := func() error {
		if recv.Closed {
			return values.NewValueError("I/O operation on closed file")
		}
		return nil
	}
	bf := func(fn func(args []Value) (Value, error)) Value {
		return &values.BuiltinFn{Name: "file." + name, Fn: func(args []Value, kwargs map[string]Value) (Value, error) {
			if err := requireOpen(); err != nil {
				return nil, err
			}
			return fn(args)
		}}
	}
	switch name {
	case "read":
		return bf(func(args []Value) (Value, error) { return &values.Str{Value: recv.ReadAll()}, nil }), true
	case "readline":
		return bf(func(args []Value) (Value, error) { return &values.Str{Value: recv.ReadLine()}, nil }), true
	case "readlines":
		return bf(func(args []Value) (Value, error) {
			lines := recv.ReadLines()
			items := make([]Value, len(lines))
			for i, l := range lines {
				items[i] = &values.Str{Value: l}
			}
			return &values.List{Items: items}, nil
		}), true
	case "write":
		return bf(func(args []Value) (Value, error) {
			if !recv.Writable || recv.Mode != "w" {
				return nil, values.NewUnsupportedOperation("file not opened for writing")
			}
			if len(args) != 1 {
				return nil, values.NewTypeError("write() takes exactly one argument")
			}
			s, ok := args[0].(*values.Str)
			if !ok {
				return nil, values.NewTypeError("write() argument must be str")
			}
			recv.WriteBuf.WriteString(s.Value)
			return values.MakeInt(int64(len(s.Value))), nil
		}), true
	case "close":
		return &values.BuiltinFn{Name: "file.close", Fn: func(args []Value, kwargs map[string]Value) (Value, error) {
			if recv.Closed {
				return values.None, nil
			}
			if err := v.commitFile(recv); err != nil {
				return nil, err
			}
			recv.Closed = true
			return values.None, nil
		}}, true
	}
	return nil, false
}
