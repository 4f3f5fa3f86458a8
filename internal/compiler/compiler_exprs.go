package compiler

import "github.com/chonkie-inc/littrs/ast"

var binOpcodes = map[string]Opcode{
	"+": OpBinaryAdd, "-": OpBinarySubtract, "*": OpBinaryMultiply,
	"/": OpBinaryDivide, "//": OpBinaryFloorDiv, "%": OpBinaryModulo,
	"**": OpBinaryPower, "<<": OpBinaryLShift, ">>": OpBinaryRShift,
	"&": OpBinaryAnd, "|": OpBinaryOr, "^": OpBinaryXor,
}

func (c *Compiler) emitBinOp(sc *scope, line int, op string) {
	c.emit(sc, line, binOpcodes[op])
}

func (c *Compiler) compileExpr(sc *scope, e ast.Expr) error {
	line := e.At().Line
	switch x := e.(type) {
	case *ast.NoneLit:
		c.emit(sc, line, OpLoadConst, c.addConst(sc, nil))
	case *ast.TrueLit:
		c.emit(sc, line, OpLoadConst, c.addConst(sc, true))
	case *ast.FalseLit:
		c.emit(sc, line, OpLoadConst, c.addConst(sc, false))
	case *ast.IntLit:
		c.emit(sc, line, OpLoadConst, c.addConst(sc, x.Value))
	case *ast.FloatLit:
		c.emit(sc, line, OpLoadConst, c.addConst(sc, x.Value))
	case *ast.StrLit:
		c.emit(sc, line, OpLoadConst, c.addConst(sc, x.Value))
	case *ast.Name:
		c.compileLoadName(sc, line, x.Id)
	case *ast.FString:
		for _, part := range x.Parts {
			if part.Value != nil {
				if err := c.compileExpr(sc, part.Value); err != nil {
					return err
				}
			} else {
				c.emit(sc, line, OpLoadConst, c.addConst(sc, part.Literal))
			}
		}
		c.emit(sc, line, OpBuildString, len(x.Parts))
	case *ast.ListLit:
		for _, el := range x.Elts {
			if err := c.compileExpr(sc, el); err != nil {
				return err
			}
		}
		c.emit(sc, line, OpBuildList, len(x.Elts))
	case *ast.TupleLit:
		for _, el := range x.Elts {
			if err := c.compileExpr(sc, el); err != nil {
				return err
			}
		}
		c.emit(sc, line, OpBuildTuple, len(x.Elts))
	case *ast.SetLit:
		for _, el := range x.Elts {
			if err := c.compileExpr(sc, el); err != nil {
				return err
			}
		}
		c.emit(sc, line, OpBuildSet, len(x.Elts))
	case *ast.DictLit:
		for i := range x.Keys {
			if err := c.compileExpr(sc, x.Keys[i]); err != nil {
				return err
			}
			if err := c.compileExpr(sc, x.Values[i]); err != nil {
				return err
			}
		}
		c.emit(sc, line, OpBuildMap, len(x.Keys))
	case *ast.Comp:
		return c.compileComp(sc, x)
	case *ast.UnaryOp:
		if err := c.compileExpr(sc, x.X); err != nil {
			return err
		}
		switch x.Op {
		case "+":
			c.emit(sc, line, OpUnaryPositive)
		case "-":
			c.emit(sc, line, OpUnaryNegative)
		case "not":
			c.emit(sc, line, OpUnaryNot)
		case "~":
			c.emit(sc, line, OpUnaryInvert)
		}
	case *ast.BinOp:
		if err := c.compileExpr(sc, x.X); err != nil {
			return err
		}
		if err := c.compileExpr(sc, x.Y); err != nil {
			return err
		}
		c.emitBinOp(sc, line, x.Op)
	case *ast.BoolOp:
		return c.compileBoolOp(sc, x)
	case *ast.Compare:
		return c.compileCompare(sc, x)
	case *ast.Call:
		return c.compileCall(sc, x)
	case *ast.Attribute:
		if err := c.compileExpr(sc, x.X); err != nil {
			return err
		}
		c.emit(sc, line, OpLoadAttr, c.addName(sc, x.Attr))
	case *ast.Subscript:
		if err := c.compileExpr(sc, x.X); err != nil {
			return err
		}
		if err := c.compileExpr(sc, x.Index); err != nil {
			return err
		}
		c.emit(sc, line, OpBinarySubscr)
	case *ast.Slice:
		n := 2
		if x.Lower != nil {
			if err := c.compileExpr(sc, x.Lower); err != nil {
				return err
			}
		} else {
			c.emit(sc, line, OpLoadConst, c.addConst(sc, nil))
		}
		if x.Upper != nil {
			if err := c.compileExpr(sc, x.Upper); err != nil {
				return err
			}
		} else {
			c.emit(sc, line, OpLoadConst, c.addConst(sc, nil))
		}
		if x.Step != nil {
			if err := c.compileExpr(sc, x.Step); err != nil {
				return err
			}
			n = 3
		}
		c.emit(sc, line, OpBuildSlice, n)
	case *ast.IfExp:
		if err := c.compileExpr(sc, x.Test); err != nil {
			return err
		}
		elseJump := c.emit(sc, line, OpPopJumpIfFalse, 0)
		if err := c.compileExpr(sc, x.Body); err != nil {
			return err
		}
		endJump := c.emit(sc, line, OpJump, 0)
		c.patchJump(sc, elseJump)
		if err := c.compileExpr(sc, x.Orelse); err != nil {
			return err
		}
		c.patchJump(sc, endJump)
	case *ast.Lambda:
		return c.compileLambda(sc, x)
	default:
		return &CompileError{Line: line, Message: "unsupported expression"}
	}
	return nil
}

// compileBoolOp lowers `a and b and c` / `a or b or c` with short-circuit
// jumps: JUMP_IF_FALSE_OR_POP leaves the first falsy operand on the stack
// and skips the rest, mirroring CPython's `and` lowering (`or` is symmetric).
func (c *Compiler) compileBoolOp(sc *scope, x *ast.BoolOp) error {
	line := x.At().Line
	var jumps []int
	op := OpJumpIfFalseOrPop
	if x.Op == "or" {
		op = OpJumpIfTrueOrPop
	}
	for i, v := range x.Values {
		if err := c.compileExpr(sc, v); err != nil {
			return err
		}
		if i < len(x.Values)-1 {
			jumps = append(jumps, c.emit(sc, line, op, 0))
		}
	}
	for _, j := range jumps {
		c.patchJump(sc, j)
	}
	return nil
}

// compileCompare lowers a (possibly chained) comparison `a < b < c` into
// `a < b and b < c`, materializing each shared operand into a synthetic
// local slot once so it is evaluated exactly once despite being used by
// two adjacent comparisons.
func (c *Compiler) compileCompare(sc *scope, x *ast.Compare) error {
	line := x.At().Line
	if err := c.compileExpr(sc, x.X); err != nil {
		return err
	}
	if len(x.Ops) == 1 {
		if err := c.compileExpr(sc, x.Comparators[0]); err != nil {
			return err
		}
		c.emit(sc, line, OpCompareOp, int(compareOpNames[x.Ops[0]]))
		return nil
	}

	prev := c.newTemp(sc)
	c.emit(sc, line, OpStoreFast, prev)

	falseJumps := []int{}
	for i, op := range x.Ops {
		if err := c.compileExpr(sc, x.Comparators[i]); err != nil {
			return err
		}
		cur := c.newTemp(sc)
		c.emit(sc, line, OpStoreFast, cur)
		c.emit(sc, line, OpLoadFast, prev)
		c.emit(sc, line, OpLoadFast, cur)
		c.emit(sc, line, OpCompareOp, int(compareOpNames[op]))
		if i < len(x.Ops)-1 {
			falseJumps = append(falseJumps, c.emit(sc, line, OpPopJumpIfFalse, 0))
			prev = cur
			continue
		}
		doneJump := c.emit(sc, line, OpJump, 0)
		falseTarget := len(sc.code)
		c.emit(sc, line, OpLoadConst, c.addConst(sc, false))
		done := len(sc.code)
		c.patchJumpTo(sc, doneJump, done)
		for _, j := range falseJumps {
			c.patchJumpTo(sc, j, falseTarget)
		}
	}
	return nil
}

func (c *Compiler) compileCall(sc *scope, x *ast.Call) error {
	line := x.At().Line
	if err := c.compileExpr(sc, x.Func); err != nil {
		return err
	}
	for _, a := range x.Args {
		if err := c.compileExpr(sc, a); err != nil {
			return err
		}
	}
	if len(x.KwNames) == 0 {
		c.emit(sc, line, OpCall, len(x.Args))
		return nil
	}
	for _, v := range x.KwValues {
		if err := c.compileExpr(sc, v); err != nil {
			return err
		}
	}
	names := make([]interface{}, len(x.KwNames))
	for i, n := range x.KwNames {
		names[i] = n
	}
	c.emit(sc, line, OpLoadConst, c.addConst(sc, names))
	c.emit(sc, line, OpCallKw, len(x.Args)+len(x.KwNames))
	return nil
}
