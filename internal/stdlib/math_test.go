package stdlib

import (
	"math"
	"testing"

	"github.com/chonkie-inc/littrs/internal/values"
)

func callMath(t *testing.T, name string, args ...Value) Value {
	t.Helper()
	mod := MathModule()
	member, ok := mod.Members[name]
	if !ok {
		t.Fatalf("math module has no member %q", name)
	}
	fn, ok := member.(*values.BuiltinFn)
	if !ok {
		t.Fatalf("math.%s is not a function: %#v", name, member)
	}
	result, err := fn.Fn(args, nil)
	if err != nil {
		t.Fatalf("math.%s(%v) returned error: %v", name, args, err)
	}
	return result
}

func floatOf(t *testing.T, v Value) float64 {
	t.Helper()
	f, ok := v.(*values.Float)
	if !ok {
		t.Fatalf("expected *values.Float, got %#v", v)
	}
	return f.Value
}

func TestMathSqrt(t *testing.T) {
	got := floatOf(t, callMath(t, "sqrt", &values.Float{Value: 16}))
	if got != 4 {
		t.Errorf("sqrt(16) = %v, want 4", got)
	}
}

func TestMathPow(t *testing.T) {
	got := floatOf(t, callMath(t, "pow", &values.Float{Value: 2}, &values.Float{Value: 10}))
	if got != 1024 {
		t.Errorf("pow(2, 10) = %v, want 1024", got)
	}
}

func TestMathLogDefaultBaseIsNatural(t *testing.T) {
	got := floatOf(t, callMath(t, "log", &values.Float{Value: math.E}))
	if math.Abs(got-1) > 1e-9 {
		t.Errorf("log(e) = %v, want 1", got)
	}
}

func TestMathLogWithExplicitBase(t *testing.T) {
	got := floatOf(t, callMath(t, "log", &values.Float{Value: 8}, &values.Float{Value: 2}))
	if math.Abs(got-3) > 1e-9 {
		t.Errorf("log(8, 2) = %v, want 3", got)
	}
}

func TestMathFactorial(t *testing.T) {
	mod := MathModule()
	fn := mod.Members["factorial"].(*values.BuiltinFn)
	result, err := fn.Fn([]Value{values.MakeInt(5)}, nil)
	if err != nil {
		t.Fatal(err)
	}
	i, ok := result.(*values.Int)
	if !ok || i.Value != 120 {
		t.Errorf("factorial(5) = %#v, want 120", result)
	}
}

func TestMathFactorialNegativeIsValueError(t *testing.T) {
	mod := MathModule()
	fn := mod.Members["factorial"].(*values.BuiltinFn)
	_, err := fn.Fn([]Value{values.MakeInt(-1)}, nil)
	exc, ok := err.(*values.Exception)
	if !ok || exc.Kind != "ValueError" {
		t.Errorf("factorial(-1) error = %#v, want ValueError", err)
	}
}

func TestMathGcd(t *testing.T) {
	mod := MathModule()
	fn := mod.Members["gcd"].(*values.BuiltinFn)
	result, err := fn.Fn([]Value{values.MakeInt(48), values.MakeInt(18)}, nil)
	if err != nil {
		t.Fatal(err)
	}
	i, ok := result.(*values.Int)
	if !ok || i.Value != 6 {
		t.Errorf("gcd(48, 18) = %#v, want 6", result)
	}
}

func TestMathIsnan(t *testing.T) {
	got := callMath(t, "isnan", &values.Float{Value: math.NaN()})
	b, ok := got.(*values.Bool)
	if !ok || !b.Value {
		t.Errorf("isnan(nan) = %#v, want True", got)
	}
}

func TestMathIsinf(t *testing.T) {
	got := callMath(t, "isinf", &values.Float{Value: math.Inf(1)})
	b, ok := got.(*values.Bool)
	if !ok || !b.Value {
		t.Errorf("isinf(inf) = %#v, want True", got)
	}
}

func TestMathIsfinite(t *testing.T) {
	got := callMath(t, "isfinite", &values.Float{Value: 1.5})
	b, ok := got.(*values.Bool)
	if !ok || !b.Value {
		t.Errorf("isfinite(1.5) = %#v, want True", got)
	}
}

func TestMathUnaryRejectsNonNumber(t *testing.T) {
	mod := MathModule()
	fn := mod.Members["sqrt"].(*values.BuiltinFn)
	_, err := fn.Fn([]Value{&values.Str{Value: "x"}}, nil)
	exc, ok := err.(*values.Exception)
	if !ok || exc.Kind != "TypeError" {
		t.Errorf("sqrt(\"x\") error = %#v, want TypeError", err)
	}
}

func TestMathConstants(t *testing.T) {
	mod := MathModule()
	pi := floatOf(t, mod.Members["pi"])
	if math.Abs(pi-math.Pi) > 1e-12 {
		t.Errorf("pi = %v, want %v", pi, math.Pi)
	}
	tau := floatOf(t, mod.Members["tau"])
	if math.Abs(tau-2*math.Pi) > 1e-12 {
		t.Errorf("tau = %v, want %v", tau, 2*math.Pi)
	}
}

func TestMathDegreesAndRadiansRoundTrip(t *testing.T) {
	deg := floatOf(t, callMath(t, "degrees", &values.Float{Value: math.Pi}))
	if math.Abs(deg-180) > 1e-9 {
		t.Errorf("degrees(pi) = %v, want 180", deg)
	}
	rad := floatOf(t, callMath(t, "radians", &values.Float{Value: 180}))
	if math.Abs(rad-math.Pi) > 1e-9 {
		t.Errorf("radians(180) = %v, want pi", rad)
	}
}
