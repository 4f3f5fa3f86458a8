package parser

import (
	"testing"

	"github.com/chonkie-inc/littrs/ast"
)

func TestParseSimpleAssignment(t *testing.T) {
	mod, err := Parse("x = 1 + 2\n")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(mod.Body) != 1 {
		t.Fatalf("Body has %d statements, want 1", len(mod.Body))
	}
	assign, ok := mod.Body[0].(*ast.Assign)
	if !ok {
		t.Fatalf("Body[0] = %T, want *ast.Assign", mod.Body[0])
	}
	if _, ok := assign.Value.(*ast.BinOp); !ok {
		t.Errorf("assign.Value = %T, want *ast.BinOp", assign.Value)
	}
}

func TestParseFunctionDef(t *testing.T) {
	mod, err := Parse("def add(a, b):\n    return a + b\n")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(mod.Body) != 1 {
		t.Fatalf("Body has %d statements, want 1", len(mod.Body))
	}
	fn, ok := mod.Body[0].(*ast.FuncDef)
	if !ok {
		t.Fatalf("Body[0] = %T, want *ast.FuncDef", mod.Body[0])
	}
	if fn.Name != "add" {
		t.Errorf("fn.Name = %q, want %q", fn.Name, "add")
	}
	if len(fn.Params.Names) != 2 {
		t.Errorf("fn.Params.Names has %d entries, want 2", len(fn.Params.Names))
	}
}

func TestParseTryExceptElse(t *testing.T) {
	src := `
try:
    x = 1
except ValueError as e:
    x = 2
else:
    x = 3
`
	mod, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	tr, ok := mod.Body[0].(*ast.Try)
	if !ok {
		t.Fatalf("Body[0] = %T, want *ast.Try", mod.Body[0])
	}
	if len(tr.Handlers) != 1 {
		t.Fatalf("Handlers has %d entries, want 1", len(tr.Handlers))
	}
	if tr.Handlers[0].Name != "e" {
		t.Errorf("Handlers[0].Name = %q, want %q", tr.Handlers[0].Name, "e")
	}
	if len(tr.Orelse) != 1 {
		t.Errorf("Orelse has %d statements, want 1", len(tr.Orelse))
	}
}

func TestParseListComprehension(t *testing.T) {
	mod, err := Parse("y = [x * 2 for x in items if x > 0]\n")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	assign := mod.Body[0].(*ast.Assign)
	comp, ok := assign.Value.(*ast.Comp)
	if !ok {
		t.Fatalf("assign.Value = %T, want *ast.Comp", assign.Value)
	}
	if comp.Kind != "list" {
		t.Errorf("comp.Kind = %q, want %q", comp.Kind, "list")
	}
	if len(comp.Ifs) == 0 {
		t.Error("comp.Ifs is empty, want the `if x > 0` filter")
	}
}

func TestParseSliceExpression(t *testing.T) {
	mod, err := Parse("y = x[::-1]\n")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	assign := mod.Body[0].(*ast.Assign)
	sub, ok := assign.Value.(*ast.Subscript)
	if !ok {
		t.Fatalf("assign.Value = %T, want *ast.Subscript", assign.Value)
	}
	if _, ok := sub.Index.(*ast.Slice); !ok {
		t.Errorf("sub.Index = %T, want *ast.Slice", sub.Index)
	}
}

func TestParseReportsSyntaxErrorWithPosition(t *testing.T) {
	_, err := Parse("def f(:\n    pass\n")
	if err == nil {
		t.Fatal("expected a syntax error")
	}
	if _, ok := err.(*SyntaxError); !ok {
		t.Errorf("error type = %T, want *SyntaxError", err)
	}
}
