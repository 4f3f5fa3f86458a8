package ast

import "testing"

func TestBaseEmbedsPosition(t *testing.T) {
	n := Name{Base: Base{Pos: Pos{Line: 3, Col: 7}}, Id: "x"}
	pos := n.At()
	if pos.Line != 3 || pos.Col != 7 {
		t.Errorf("At() = %+v, want {Line:3 Col:7}", pos)
	}
}

func TestExprAndStmtMarkerInterfaces(t *testing.T) {
	var _ Expr = &Name{}
	var _ Expr = &IntLit{}
	var _ Node = &Module{}
}
