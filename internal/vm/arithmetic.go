package vm

import (
	"math"

	"github.com/chonkie-inc/littrs/internal/compiler"
	"github.com/chonkie-inc/littrs/internal/values"
)

func asIntFloat(v Value) (int64, float64, bool, bool) {
	switch x := v.(type) {
	case *values.Int:
		return x.Value, 0, true, false
	case *values.Float:
		return 0, x.Value, false, true
	case *values.Bool:
		n := int64(0)
		if x.Value {
			n = 1
		}
		return n, 0, true, false
	}
	return 0, 0, false, false
}

func isNumeric(v Value) bool {
	_, _, i, f := asIntFloat(v)
	return i || f
}

// binaryOp implements the twelve arithmetic/bitwise opcodes. Numeric
// promotion follows spec.md §3: mixed Int/Float yields Float, `/` between
// integers always yields Float, `//`/`%` preserve the divisor's sign,
// `**` with a negative integer exponent yields Float, and the bitwise
// family requires Int/Bool on both sides.
func (v *VM) binaryOp(op compiler.Opcode, a, b Value) (Value, error) {
	switch op {
	case compiler.OpBinaryAdd:
		return v.add(a, b)
	case compiler.OpBinarySubtract:
		return numericOp(a, b, checkedSub, func(x, y float64) float64 { return x - y })
	case compiler.OpBinaryMultiply:
		return v.mul(a, b)
	case compiler.OpBinaryDivide:
		return v.trueDiv(a, b)
	case compiler.OpBinaryFloorDiv:
		return v.floorDiv(a, b)
	case compiler.OpBinaryModulo:
		return v.modulo(a, b)
	case compiler.OpBinaryPower:
		return v.pow(a, b)
	case compiler.OpBinaryLShift, compiler.OpBinaryRShift, compiler.OpBinaryAnd, compiler.OpBinaryOr, compiler.OpBinaryXor:
		return v.bitwise(op, a, b)
	}
	return nil, values.NewRuntimeError("unknown binary operator")
}

// checkedAdd/checkedSub/checkedMul raise OverflowError on 64-bit integer
// wraparound, per spec.md §3: this subset has no arbitrary-precision
// fallback, so overflow is an error rather than a silent wrap or an
// implicit promotion to Float.
func checkedAdd(x, y int64) (int64, error) {
	sum := x + y
	if (y > 0 && sum < x) || (y < 0 && sum > x) {
		return 0, values.NewOverflowError("integer addition overflow")
	}
	return sum, nil
}

func checkedSub(x, y int64) (int64, error) {
	diff := x - y
	if (y < 0 && diff < x) || (y > 0 && diff > x) {
		return 0, values.NewOverflowError("integer subtraction overflow")
	}
	return diff, nil
}

func checkedMul(x, y int64) (int64, error) {
	if x == 0 || y == 0 {
		return 0, nil
	}
	p := x * y
	if p/y != x {
		return 0, values.NewOverflowError("integer multiplication overflow")
	}
	return p, nil
}

func (v *VM) add(a, b Value) (Value, error) {
	if as, ok := a.(*values.Str); ok {
		bs, ok := b.(*values.Str)
		if !ok {
			return nil, values.NewTypeError("can only concatenate str (not \"%s\") to str", values.TypeName(b))
		}
		return &values.Str{Value: as.Value + bs.Value}, nil
	}
	if al, ok := a.(*values.List); ok {
		bl, ok := b.(*values.List)
		if !ok {
			return nil, values.NewTypeError("can only concatenate list (not \"%s\") to list", values.TypeName(b))
		}
		items := make([]Value, 0, len(al.Items)+len(bl.Items))
		items = append(items, al.Items...)
		items = append(items, bl.Items...)
		return &values.List{Items: items}, nil
	}
	if at, ok := a.(*values.Tuple); ok {
		bt, ok := b.(*values.Tuple)
		if !ok {
			return nil, values.NewTypeError("can only concatenate tuple (not \"%s\") to tuple", values.TypeName(b))
		}
		items := make([]Value, 0, len(at.Items)+len(bt.Items))
		items = append(items, at.Items...)
		items = append(items, bt.Items...)
		return &values.Tuple{Items: items}, nil
	}
	return numericOp(a, b, checkedAdd, func(x, y float64) float64 { return x + y })
}

func (v *VM) mul(a, b Value) (Value, error) {
	if s, n, ok := repeatOperands(a, b); ok {
		if n < 0 {
			n = 0
		}
		switch x := s.(type) {
		case *values.Str:
			out := ""
			for i := int64(0); i < n; i++ {
				out += x.Value
			}
			return &values.Str{Value: out}, nil
		case *values.List:
			items := make([]Value, 0, int64(len(x.Items))*n)
			for i := int64(0); i < n; i++ {
				items = append(items, x.Items...)
			}
			return &values.List{Items: items}, nil
		}
	}
	return numericOp(a, b, checkedMul, func(x, y float64) float64 { return x * y })
}

func repeatOperands(a, b Value) (Value, int64, bool) {
	if n, ok := asPlainInt(b); ok {
		switch a.(type) {
		case *values.Str, *values.List:
			return a, n, true
		}
	}
	if n, ok := asPlainInt(a); ok {
		switch b.(type) {
		case *values.Str, *values.List:
			return b, n, true
		}
	}
	return nil, 0, false
}

func asPlainInt(v Value) (int64, bool) {
	if i, ok := v.(*values.Int); ok {
		return i.Value, true
	}
	return 0, false
}

func (v *VM) trueDiv(a, b Value) (Value, error) {
	x, y, ok := numericPair(a, b)
	if !ok {
		return nil, typeErrorForOp("/", a, b)
	}
	if y == 0 {
		return nil, values.NewZeroDivisionError("division by zero")
	}
	return &values.Float{Value: x / y}, nil
}

func (v *VM) floorDiv(a, b Value) (Value, error) {
	if ai, aok := asPlainInt(a); aok {
		if bi, bok := asPlainInt(b); bok {
			if bi == 0 {
				return nil, values.NewZeroDivisionError("integer division or modulo by zero")
			}
			q := ai / bi
			if (ai%bi != 0) && ((ai < 0) != (bi < 0)) {
				q--
			}
			return values.MakeInt(q), nil
		}
	}
	x, y, ok := numericPair(a, b)
	if !ok {
		return nil, typeErrorForOp("//", a, b)
	}
	if y == 0 {
		return nil, values.NewZeroDivisionError("float floor division by zero")
	}
	return &values.Float{Value: math.Floor(x / y)}, nil
}

func (v *VM) modulo(a, b Value) (Value, error) {
	if ai, aok := asPlainInt(a); aok {
		if bi, bok := asPlainInt(b); bok {
			if bi == 0 {
				return nil, values.NewZeroDivisionError("integer division or modulo by zero")
			}
			m := ai % bi
			if m != 0 && ((m < 0) != (bi < 0)) {
				m += bi
			}
			return values.MakeInt(m), nil
		}
	}
	x, y, ok := numericPair(a, b)
	if !ok {
		return nil, typeErrorForOp("%", a, b)
	}
	if y == 0 {
		return nil, values.NewZeroDivisionError("float modulo")
	}
	m := math.Mod(x, y)
	if m != 0 && ((m < 0) != (y < 0)) {
		m += y
	}
	return &values.Float{Value: m}, nil
}

func (v *VM) pow(a, b Value) (Value, error) {
	if ai, aok := asPlainInt(a); aok {
		if bi, bok := asPlainInt(b); bok {
			if bi < 0 {
				return &values.Float{Value: math.Pow(float64(ai), float64(bi))}, nil
			}
			result := int64(1)
			for i := int64(0); i < bi; i++ {
				var err error
				result, err = checkedMul(result, ai)
				if err != nil {
					return nil, err
				}
			}
			return values.MakeInt(result), nil
		}
	}
	x, y, ok := numericPair(a, b)
	if !ok {
		return nil, typeErrorForOp("**", a, b)
	}
	return &values.Float{Value: math.Pow(x, y)}, nil
}

func (v *VM) bitwise(op compiler.Opcode, a, b Value) (Value, error) {
	ai, aok := asPlainBitInt(a)
	bi, bok := asPlainBitInt(b)
	if !aok || !bok {
		return nil, values.NewTypeError("unsupported operand type(s) for bitwise operator: '%s' and '%s'", values.TypeName(a), values.TypeName(b))
	}
	switch op {
	case compiler.OpBinaryLShift:
		return values.MakeInt(ai << uint(bi)), nil
	case compiler.OpBinaryRShift:
		return values.MakeInt(ai >> uint(bi)), nil
	case compiler.OpBinaryAnd:
		return values.MakeInt(ai & bi), nil
	case compiler.OpBinaryOr:
		return values.MakeInt(ai | bi), nil
	case compiler.OpBinaryXor:
		return values.MakeInt(ai ^ bi), nil
	}
	return nil, values.NewRuntimeError("unknown bitwise operator")
}

func asPlainBitInt(v Value) (int64, bool) {
	switch x := v.(type) {
	case *values.Int:
		return x.Value, true
	case *values.Bool:
		if x.Value {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func numericPair(a, b Value) (float64, float64, bool) {
	_, af, aIsI, aIsF := asIntFloat(a)
	_, bf, bIsI, bIsF := asIntFloat(b)
	if !aIsI && !aIsF {
		return 0, 0, false
	}
	if !bIsI && !bIsF {
		return 0, 0, false
	}
	if ai, ok := asPlainNumInt(a); ok {
		af = float64(ai)
	}
	if bi, ok := asPlainNumInt(b); ok {
		bf = float64(bi)
	}
	return af, bf, true
}

func asPlainNumInt(v Value) (int64, bool) {
	switch x := v.(type) {
	case *values.Int:
		return x.Value, true
	case *values.Bool:
		if x.Value {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func numericOp(a, b Value, intOp func(x, y int64) (int64, error), floatOp func(x, y float64) float64) (Value, error) {
	if ai, aok := asPlainNumInt(a); aok {
		if bi, bok := asPlainNumInt(b); bok {
			r, err := intOp(ai, bi)
			if err != nil {
				return nil, err
			}
			return values.MakeInt(r), nil
		}
	}
	x, y, ok := numericPair(a, b)
	if !ok {
		return nil, values.NewTypeError("unsupported operand type(s): '%s' and '%s'", values.TypeName(a), values.TypeName(b))
	}
	return &values.Float{Value: floatOp(x, y)}, nil
}

func typeErrorForOp(op string, a, b Value) error {
	return values.NewTypeError("unsupported operand type(s) for %s: '%s' and '%s'", op, values.TypeName(a), values.TypeName(b))
}

// unaryOp implements +x, -x, not x, ~x.
func (v *VM) unaryOp(op compiler.Opcode, x Value) (Value, error) {
	switch op {
	case compiler.OpUnaryNot:
		return values.MakeBool(!values.Truthy(x)), nil
	case compiler.OpUnaryPositive:
		if isNumeric(x) {
			return x, nil
		}
		return nil, values.NewTypeError("bad operand type for unary +: '%s'", values.TypeName(x))
	case compiler.OpUnaryNegative:
		if i, ok := asPlainNumInt(x); ok {
			return values.MakeInt(-i), nil
		}
		if f, ok := x.(*values.Float); ok {
			return &values.Float{Value: -f.Value}, nil
		}
		return nil, values.NewTypeError("bad operand type for unary -: '%s'", values.TypeName(x))
	case compiler.OpUnaryInvert:
		if i, ok := asPlainBitInt(x); ok {
			return values.MakeInt(^i), nil
		}
		return nil, values.NewTypeError("bad operand type for unary ~: '%s'", values.TypeName(x))
	}
	return nil, values.NewRuntimeError("unknown unary operator")
}

// compareOp implements OpCompareOp's ten comparators.
func (v *VM) compareOp(cmp compiler.CompareOp, a, b Value) (Value, error) {
	switch cmp {
	case compiler.CmpEq:
		return values.MakeBool(values.Equal(a, b)), nil
	case compiler.CmpNe:
		return values.MakeBool(!values.Equal(a, b)), nil
	case compiler.CmpIs:
		return values.MakeBool(identical(a, b)), nil
	case compiler.CmpIsNot:
		return values.MakeBool(!identical(a, b)), nil
	case compiler.CmpIn, compiler.CmpNotIn:
		found, err := v.contains(b, a)
		if err != nil {
			return nil, err
		}
		if cmp == compiler.CmpNotIn {
			found = !found
		}
		return values.MakeBool(found), nil
	}
	lt, ok := values.Less(a, b)
	if !ok {
		return nil, values.NewTypeError("'<' not supported between instances of '%s' and '%s'", values.TypeName(a), values.TypeName(b))
	}
	eq := values.Equal(a, b)
	switch cmp {
	case compiler.CmpLt:
		return values.MakeBool(lt), nil
	case compiler.CmpLe:
		return values.MakeBool(lt || eq), nil
	case compiler.CmpGt:
		return values.MakeBool(!lt && !eq), nil
	case compiler.CmpGe:
		return values.MakeBool(!lt || eq), nil
	}
	return nil, values.NewRuntimeError("unknown comparator")
}

func identical(a, b Value) bool {
	switch a.(type) {
	case values.NoneType:
		_, ok := b.(values.NoneType)
		return ok
	}
	return a == b
}

func (v *VM) contains(container, item Value) (bool, error) {
	switch c := container.(type) {
	case *values.Str:
		s, ok := item.(*values.Str)
		if !ok {
			return false, values.NewTypeError("'in <string>' requires string as left operand, not %s", values.TypeName(item))
		}
		return stringsContains(c.Value, s.Value), nil
	case *values.List:
		for _, el := range c.Items {
			if values.Equal(el, item) {
				return true, nil
			}
		}
		return false, nil
	case *values.Tuple:
		for _, el := range c.Items {
			if values.Equal(el, item) {
				return true, nil
			}
		}
		return false, nil
	case *values.Dict:
		if !values.IsHashable(item) {
			return false, values.NewTypeError("unhashable type: '%s'", values.TypeName(item))
		}
		_, ok := c.Get(item)
		return ok, nil
	case *values.Set:
		if !values.IsHashable(item) {
			return false, values.NewTypeError("unhashable type: '%s'", values.TypeName(item))
		}
		return c.Has(item), nil
	}
	return false, values.NewTypeError("argument of type '%s' is not iterable", values.TypeName(container))
}

func stringsContains(s, sub string) bool {
	if sub == "" {
		return true
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
