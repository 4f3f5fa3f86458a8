package vm

import "github.com/chonkie-inc/littrs/internal/values"

// call dispatches any callable value: a compiled Function, a native
// BuiltinFn, or an ExceptionType constructor. Grounded on the teacher's
// vm.call type switch (calls.go), trimmed to the shapes this subset has
// (no classes, bound methods, or generators).
func (v *VM) call(callee Value, args []Value, kwargs map[string]Value) (Value, error) {
	switch fn := callee.(type) {
	case *values.BuiltinFn:
		return fn.Fn(args, kwargs)
	case *values.Function:
		return v.callFunction(fn, args, kwargs)
	case *values.ExceptionType:
		msg := ""
		if len(args) > 0 {
			if s, ok := args[0].(*values.Str); ok {
				msg = s.Value
			} else {
				msg = values.StrOf(args[0])
			}
		}
		exc := values.NewException(fn.Name, "%s", msg)
		return exc, nil
	}
	return nil, values.NewTypeError("'%s' object is not callable", values.TypeName(callee))
}

// callFunction binds args/kwargs to a new frame's locals per spec.md
// §4.4: positional, *args (remainder as tuple), keyword, **kwargs
// (remainder as dict), defaults fill unbound trailing positionals.
// Mismatches raise TypeError. The recursion counter is the live call
// depth (len(v.frames)); Go's own call stack mirrors it since each call
// recurses into dispatch rather than pushing onto a flat frame array.
func (v *VM) callFunction(fn *values.Function, args []Value, kwargs map[string]Value) (Value, error) {
	code := fn.Code
	if v.limits.MaxRecursion > 0 && len(v.frames) >= v.limits.MaxRecursion {
		return nil, recursionLimitFault()
	}

	frame := newFrame(code)
	hasVarArg := code.VarArgIndex >= 0
	hasVarKw := code.KwArgIndex >= 0

	named := code.ArgCount
	if len(args) > named && !hasVarArg {
		return nil, values.NewTypeError("%s() takes %d positional argument(s) but %d were given", fn.Name, named, len(args))
	}
	n := named
	if len(args) < n {
		n = len(args)
	}
	for i := 0; i < n; i++ {
		frame.Locals[i] = args[i]
	}
	if hasVarArg {
		var extra []Value
		if len(args) > named {
			extra = append(extra, args[named:]...)
		}
		frame.Locals[code.VarArgIndex] = &values.Tuple{Items: extra}
	}

	filled := make([]bool, named)
	for i := 0; i < n; i++ {
		filled[i] = true
	}

	extraKw := map[string]Value{}
	for k, val := range kwargs {
		idx := -1
		for i, vn := range code.VarNames[:named] {
			if vn == k {
				idx = i
				break
			}
		}
		if idx < 0 {
			if hasVarKw {
				extraKw[k] = val
				continue
			}
			return nil, values.NewTypeError("%s() got an unexpected keyword argument '%s'", fn.Name, k)
		}
		if filled[idx] {
			return nil, values.NewTypeError("%s() got multiple values for argument '%s'", fn.Name, code.VarNames[idx])
		}
		frame.Locals[idx] = val
		filled[idx] = true
	}
	if hasVarKw {
		d := values.NewDict()
		for k, val := range extraKw {
			d.Set(&values.Str{Value: k}, val)
		}
		frame.Locals[code.KwArgIndex] = d
	}

	for i := 0; i < named; i++ {
		if filled[i] {
			continue
		}
		defIdx := i - (named - code.DefaultCount)
		if defIdx < 0 || defIdx >= len(fn.Defaults) {
			return nil, values.NewTypeError("%s() missing required positional argument: '%s'", fn.Name, code.VarNames[i])
		}
		frame.Locals[i] = fn.Defaults[defIdx]
	}

	v.frames = append(v.frames, frame)
	result, err := v.dispatch(frame)
	v.frames = v.frames[:len(v.frames)-1]
	return result, err
}
