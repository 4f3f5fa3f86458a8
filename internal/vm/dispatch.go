package vm

import (
	"github.com/chonkie-inc/littrs/internal/compiler"
	"github.com/chonkie-inc/littrs/internal/values"
)

// constToValue converts a CodeObject constant pool entry into a runtime
// Value. Constants are stored as plain Go scalars (plus *CodeObject for
// nested function bodies and []interface{} for keyword-name lists) rather
// than pre-built Values, so the conversion happens lazily at OpLoadConst
// time. A keyword-name list is pushed unchanged for OpCallKw to read.
func constToValue(c interface{}) Value {
	switch x := c.(type) {
	case []interface{}:
		return x
	case nil:
		return values.None
	case bool:
		return values.MakeBool(x)
	case int64:
		return values.MakeInt(x)
	case float64:
		return &values.Float{Value: x}
	case string:
		return values.InternStr(x)
	}
	return nil
}

// dispatch runs one frame to completion, returning its RETURN_VALUE
// operand, or the last value set by OpSetResult for a module-level frame
// that runs off the end without returning. Exception propagation is driven
// by the frame's static exception table: on error, the innermost
// containing entry is searched before falling back to propagating the Go
// error to the caller, which repeats the search one frame up. This mirrors
// spec.md's exception-table dispatch model without a runtime block stack.
func (v *VM) dispatch(frame *Frame) (Value, error) {
	code := frame.Code
	var result Value
	resultSet := false

	for frame.IP < len(code.Code) {
		if v.limits.MaxInstructions > 0 {
			v.instrCount++
			if v.instrCount > v.limits.MaxInstructions {
				return nil, instructionLimitFault(v.limits.MaxInstructions)
			}
		}

		pc := frame.IP
		instr := code.Decode(pc)
		frame.IP = pc + code.Len(pc)

		if instr.Op == compiler.OpReturn {
			retVal := frame.pop()
			// A module body always ends with an implicit `return None`
			// trailer; if OpSetResult captured the last top-level
			// expression's value, that takes precedence, mirroring an
			// interactive evaluator's result rather than the module's
			// own (always-None) return value.
			if resultSet {
				return result, nil
			}
			return retVal, nil
		}
		if instr.Op == compiler.OpSetResult {
			result = frame.pop()
			resultSet = true
			continue
		}

		if err := v.step(frame, instr); err != nil {
			if _, isFault := err.(*Fault); isFault {
				return nil, err
			}
			exc := asException(err)
			handlerIP, depth, ok := findHandler(code, pc)
			if !ok {
				return nil, exc
			}
			frame.truncate(depth)
			frame.currentExc = exc
			frame.push(exc)
			frame.IP = handlerIP
		}
	}
	return result, nil
}

func asException(err error) *values.Exception {
	if exc, ok := err.(*values.Exception); ok {
		return exc
	}
	return values.NewRuntimeError("%s", err.Error())
}

// findHandler searches the innermost exception-table entry protecting pc.
func findHandler(code *compiler.CodeObject, pc int) (handlerIP, depth int, ok bool) {
	best := -1
	for i, e := range code.ExceptTable {
		if e.Contains(pc) {
			if best < 0 || (e.EndPC-e.StartPC) < (code.ExceptTable[best].EndPC-code.ExceptTable[best].StartPC) {
				best = i
			}
		}
	}
	if best < 0 {
		return 0, 0, false
	}
	return code.ExceptTable[best].HandlerPC, code.ExceptTable[best].StackDepth, true
}

// step executes a single instruction other than RETURN_VALUE/SET_RESULT,
// which dispatch handles inline since they end or checkpoint a frame.
func (v *VM) step(frame *Frame, instr compiler.Instruction) error {
	code := frame.Code
	switch instr.Op {
	case compiler.OpNop:
		return nil
	case compiler.OpPop:
		frame.pop()
	case compiler.OpDupTop:
		frame.push(frame.top())
	case compiler.OpDupTwo:
		b := frame.peek(0)
		a := frame.peek(1)
		frame.push(a)
		frame.push(b)

	case compiler.OpLoadConst:
		frame.push(constToValue(code.Constants[instr.Arg]))
	case compiler.OpLoadFast:
		frame.push(frame.Locals[instr.Arg])
	case compiler.OpStoreFast:
		frame.Locals[instr.Arg] = frame.pop()
	case compiler.OpLoadGlobal:
		val, err := v.resolveGlobal(code.Names[instr.Arg])
		if err != nil {
			return err
		}
		frame.push(val)
	case compiler.OpStoreGlobal:
		v.Globals[code.Names[instr.Arg]] = frame.pop()
	case compiler.OpLoadAttr:
		obj := frame.pop()
		val, err := v.getAttr(obj, code.Names[instr.Arg])
		if err != nil {
			return err
		}
		frame.push(val)
	case compiler.OpStoreAttr:
		val := frame.pop()
		obj := frame.pop()
		if err := v.setAttr(obj, code.Names[instr.Arg], val); err != nil {
			return err
		}

	case compiler.OpBinarySubscr:
		idx := frame.pop()
		obj := frame.pop()
		val, err := v.getSubscr(obj, idx)
		if err != nil {
			return err
		}
		frame.push(val)
	case compiler.OpStoreSubscr:
		val := frame.pop()
		idx := frame.pop()
		obj := frame.pop()
		if err := v.setSubscr(obj, idx, val); err != nil {
			return err
		}

	case compiler.OpUnaryPositive, compiler.OpUnaryNegative, compiler.OpUnaryNot, compiler.OpUnaryInvert:
		x := frame.pop()
		val, err := v.unaryOp(instr.Op, x)
		if err != nil {
			return err
		}
		frame.push(val)

	case compiler.OpBinaryAdd, compiler.OpBinarySubtract, compiler.OpBinaryMultiply, compiler.OpBinaryDivide,
		compiler.OpBinaryFloorDiv, compiler.OpBinaryModulo, compiler.OpBinaryPower,
		compiler.OpBinaryLShift, compiler.OpBinaryRShift, compiler.OpBinaryAnd, compiler.OpBinaryOr, compiler.OpBinaryXor:
		b := frame.pop()
		a := frame.pop()
		val, err := v.binaryOp(instr.Op, a, b)
		if err != nil {
			return err
		}
		frame.push(val)

	case compiler.OpCompareOp:
		b := frame.pop()
		a := frame.pop()
		val, err := v.compareOp(compiler.CompareOp(instr.Arg), a, b)
		if err != nil {
			return err
		}
		frame.push(val)

	case compiler.OpJumpIfTrueOrPop:
		if values.Truthy(frame.top()) {
			frame.IP = instr.Arg
		} else {
			frame.pop()
		}
	case compiler.OpJumpIfFalseOrPop:
		if !values.Truthy(frame.top()) {
			frame.IP = instr.Arg
		} else {
			frame.pop()
		}
	case compiler.OpJump:
		frame.IP = instr.Arg
	case compiler.OpPopJumpIfTrue:
		if values.Truthy(frame.pop()) {
			frame.IP = instr.Arg
		}
	case compiler.OpPopJumpIfFalse:
		if !values.Truthy(frame.pop()) {
			frame.IP = instr.Arg
		}

	case compiler.OpGetIter:
		it, err := v.getIter(frame.pop())
		if err != nil {
			return err
		}
		frame.push(it)
	case compiler.OpForIter:
		it := frame.top().(*iterator)
		val, ok := it.next()
		if !ok {
			frame.pop()
			frame.IP = instr.Arg
		} else {
			frame.push(val)
		}

	case compiler.OpMakeFunction:
		co := code.Constants[instr.Arg].(*compiler.CodeObject)
		defaults := make([]Value, co.DefaultCount)
		for i := co.DefaultCount - 1; i >= 0; i-- {
			defaults[i] = frame.pop()
		}
		frame.push(&values.Function{Name: co.Name, Code: co, Defaults: defaults})
	case compiler.OpCall:
		n := instr.Arg
		args := popN(frame, n)
		callee := frame.pop()
		val, err := v.call(callee, args, nil)
		if err != nil {
			return err
		}
		frame.push(val)
	case compiler.OpCallKw:
		namesRaw := frame.pop()
		kwNames := namesRaw.([]interface{})
		total := instr.Arg
		nKw := len(kwNames)
		nPos := total - nKw
		kwVals := popN(frame, nKw)
		args := popN(frame, nPos)
		callee := frame.pop()
		kwargs := make(map[string]Value, nKw)
		for i, n := range kwNames {
			kwargs[n.(string)] = kwVals[i]
		}
		val, err := v.call(callee, args, kwargs)
		if err != nil {
			return err
		}
		frame.push(val)

	case compiler.OpBuildTuple:
		items := popN(frame, instr.Arg)
		frame.push(&values.Tuple{Items: items})
	case compiler.OpBuildList:
		items := popN(frame, instr.Arg)
		frame.push(&values.List{Items: items})
	case compiler.OpBuildSet:
		items := popN(frame, instr.Arg)
		s := values.NewSet()
		for _, it := range items {
			if !values.IsHashable(it) {
				return values.NewTypeError("unhashable type: '%s'", values.TypeName(it))
			}
			s.Add(it)
		}
		frame.push(s)
	case compiler.OpBuildMap:
		n := instr.Arg
		d := values.NewDict()
		pairs := popN(frame, n*2)
		for i := 0; i < n; i++ {
			k, val := pairs[i*2], pairs[i*2+1]
			if !values.IsHashable(k) {
				return values.NewTypeError("unhashable type: '%s'", values.TypeName(k))
			}
			d.Set(k, val)
		}
		frame.push(d)
	case compiler.OpBuildString:
		parts := popN(frame, instr.Arg)
		s := ""
		for _, p := range parts {
			s += values.StrOf(p)
		}
		frame.push(&values.Str{Value: s})
	case compiler.OpBuildSlice:
		parts := popN(frame, instr.Arg)
		frame.push(buildSlice(parts))

	case compiler.OpListAppend:
		val := frame.pop()
		lst := frame.peek(instr.Arg - 1).(*values.List)
		lst.Items = append(lst.Items, val)
	case compiler.OpSetAdd:
		val := frame.pop()
		s := frame.peek(instr.Arg - 1).(*values.Set)
		if !values.IsHashable(val) {
			return values.NewTypeError("unhashable type: '%s'", values.TypeName(val))
		}
		s.Add(val)
	case compiler.OpMapAdd:
		val := frame.pop()
		key := frame.pop()
		d := frame.peek(instr.Arg - 2).(*values.Dict)
		if !values.IsHashable(key) {
			return values.NewTypeError("unhashable type: '%s'", values.TypeName(key))
		}
		d.Set(key, val)

	case compiler.OpImportName:
		mod, err := v.importModule(code.Names[instr.Arg])
		if err != nil {
			return err
		}
		frame.push(mod)
	case compiler.OpImportFrom:
		mod := frame.top().(*values.Module)
		name := code.Names[instr.Arg]
		val, ok := mod.Members[name]
		if !ok {
			return values.NewImportError("cannot import name '%s' from '%s'", name, mod.Name)
		}
		frame.push(val)
	case compiler.OpImportStar:
		mod := frame.pop().(*values.Module)
		for name, val := range mod.Members {
			if len(name) > 0 && name[0] != '_' {
				v.Globals[name] = val
			}
		}

	case compiler.OpRaise:
		if instr.Arg == 0 {
			if frame.currentExc == nil {
				return values.NewRuntimeError("No active exception to re-raise")
			}
			return frame.currentExc
		}
		val := frame.pop()
		if et, isType := val.(*values.ExceptionType); isType {
			return values.NewException(et.Name, "")
		}
		exc, ok := val.(*values.Exception)
		if !ok {
			exc = values.NewException(values.TypeName(val), "exceptions must derive from Exception")
		}
		return exc
	case compiler.OpMatchException:
		typ := frame.pop()
		exc := frame.top().(*values.Exception)
		et, ok := typ.(*values.ExceptionType)
		if !ok {
			return values.NewTypeError("catching non-exception type '%s'", values.TypeName(typ))
		}
		frame.push(values.MakeBool(et.Matches(exc)))
	case compiler.OpClearExc:
		frame.currentExc = nil
	}
	return nil
}

func popN(frame *Frame, n int) []Value {
	items := make([]Value, n)
	for i := n - 1; i >= 0; i-- {
		items[i] = frame.pop()
	}
	return items
}
