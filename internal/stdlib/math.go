package stdlib

import (
	"math"

	"github.com/chonkie-inc/littrs/internal/values"
)

// MathModule builds the `math` module: one Go math.X call per function,
// grounded on the teacher's internal/stdlib/math.go function table.
func MathModule() *values.Module {
	return newModule("math").
		constVal("pi", &values.Float{Value: math.Pi}).
		constVal("e", &values.Float{Value: math.E}).
		constVal("tau", &values.Float{Value: math.Pi * 2}).
		constVal("inf", &values.Float{Value: math.Inf(1)}).
		constVal("nan", &values.Float{Value: math.NaN()}).
		fn("sqrt", mathUnary(math.Sqrt, "sqrt")).
		fn("exp", mathUnary(math.Exp, "exp")).
		fn("log", mathLog).
		fn("log10", mathUnary(math.Log10, "log10")).
		fn("log2", mathUnary(math.Log2, "log2")).
		fn("sin", mathUnary(math.Sin, "sin")).
		fn("cos", mathUnary(math.Cos, "cos")).
		fn("tan", mathUnary(math.Tan, "tan")).
		fn("asin", mathUnary(math.Asin, "asin")).
		fn("acos", mathUnary(math.Acos, "acos")).
		fn("atan", mathUnary(math.Atan, "atan")).
		fn("atan2", mathBinary(math.Atan2, "atan2")).
		fn("sinh", mathUnary(math.Sinh, "sinh")).
		fn("cosh", mathUnary(math.Cosh, "cosh")).
		fn("tanh", mathUnary(math.Tanh, "tanh")).
		fn("ceil", mathUnary(math.Ceil, "ceil")).
		fn("floor", mathUnary(math.Floor, "floor")).
		fn("trunc", mathUnary(math.Trunc, "trunc")).
		fn("fabs", mathUnary(math.Abs, "fabs")).
		fn("copysign", mathBinary(math.Copysign, "copysign")).
		fn("pow", mathBinary(math.Pow, "pow")).
		fn("degrees", mathUnary(func(x float64) float64 { return x * 180.0 / math.Pi }, "degrees")).
		fn("radians", mathUnary(func(x float64) float64 { return x * math.Pi / 180.0 }, "radians")).
		fn("factorial", mathFactorial).
		fn("gcd", mathGcd).
		fn("isnan", mathIsnan).
		fn("isinf", mathIsinf).
		fn("isfinite", mathIsfinite).
		build()
}

func argFloat(args []Value, i int, who string) (float64, error) {
	if i >= len(args) {
		return 0, values.NewTypeError("%s() missing required argument", who)
	}
	switch v := args[i].(type) {
	case *values.Float:
		return v.Value, nil
	case *values.Int:
		return float64(v.Value), nil
	}
	return 0, values.NewTypeError("%s() argument must be a number, not '%s'", who, values.TypeName(args[i]))
}

func argInt(args []Value, i int, who string) (int64, error) {
	if i >= len(args) {
		return 0, values.NewTypeError("%s() missing required argument", who)
	}
	v, ok := args[i].(*values.Int)
	if !ok {
		return 0, values.NewTypeError("%s() argument must be an int, not '%s'", who, values.TypeName(args[i]))
	}
	return v.Value, nil
}

func mathUnary(fn func(float64) float64, name string) func([]Value, map[string]Value) (Value, error) {
	return func(args []Value, kwargs map[string]Value) (Value, error) {
		x, err := argFloat(args, 0, name)
		if err != nil {
			return nil, err
		}
		return &values.Float{Value: fn(x)}, nil
	}
}

func mathBinary(fn func(a, b float64) float64, name string) func([]Value, map[string]Value) (Value, error) {
	return func(args []Value, kwargs map[string]Value) (Value, error) {
		a, err := argFloat(args, 0, name)
		if err != nil {
			return nil, err
		}
		b, err := argFloat(args, 1, name)
		if err != nil {
			return nil, err
		}
		return &values.Float{Value: fn(a, b)}, nil
	}
}

func mathLog(args []Value, kwargs map[string]Value) (Value, error) {
	x, err := argFloat(args, 0, "log")
	if err != nil {
		return nil, err
	}
	if len(args) >= 2 {
		base, err := argFloat(args, 1, "log")
		if err != nil {
			return nil, err
		}
		return &values.Float{Value: math.Log(x) / math.Log(base)}, nil
	}
	return &values.Float{Value: math.Log(x)}, nil
}

func mathFactorial(args []Value, kwargs map[string]Value) (Value, error) {
	n, err := argInt(args, 0, "factorial")
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, values.NewValueError("factorial() not defined for negative values")
	}
	result := int64(1)
	for i := int64(2); i <= n; i++ {
		result *= i
	}
	return values.MakeInt(result), nil
}

func mathGcd(args []Value, kwargs map[string]Value) (Value, error) {
	a, err := argInt(args, 0, "gcd")
	if err != nil {
		return nil, err
	}
	b, err := argInt(args, 1, "gcd")
	if err != nil {
		return nil, err
	}
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return values.MakeInt(a), nil
}

func mathIsnan(args []Value, kwargs map[string]Value) (Value, error) {
	x, err := argFloat(args, 0, "isnan")
	if err != nil {
		return nil, err
	}
	return values.MakeBool(math.IsNaN(x)), nil
}

func mathIsinf(args []Value, kwargs map[string]Value) (Value, error) {
	x, err := argFloat(args, 0, "isinf")
	if err != nil {
		return nil, err
	}
	return values.MakeBool(math.IsInf(x, 0)), nil
}

func mathIsfinite(args []Value, kwargs map[string]Value) (Value, error) {
	x, err := argFloat(args, 0, "isfinite")
	if err != nil {
		return nil, err
	}
	return values.MakeBool(!math.IsNaN(x) && !math.IsInf(x, 0)), nil
}
