package compiler

import "github.com/chonkie-inc/littrs/ast"

// compileStmts compiles a statement list. lastIsResult is only ever true
// for the outermost call over a module's top-level body: it lets the final
// bare expression statement (if any) become the module's result value
// instead of being discarded, mirroring an interactive evaluator without
// needing a separate PRINT_EXPR-style opcode.
func (c *Compiler) compileStmts(sc *scope, stmts []ast.Stmt, lastIsResult bool) error {
	for i, s := range stmts {
		asResult := lastIsResult && i == len(stmts)-1
		if err := c.compileStmt(sc, s, asResult); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compileStmt(sc *scope, s ast.Stmt, asResult bool) error {
	line := s.At().Line
	switch st := s.(type) {
	case *ast.ExprStmt:
		if err := c.compileExpr(sc, st.Value); err != nil {
			return err
		}
		if asResult {
			c.emit(sc, line, OpSetResult)
		} else {
			c.emit(sc, line, OpPop)
		}
		return nil

	case *ast.Assign:
		if err := c.compileExpr(sc, st.Value); err != nil {
			return err
		}
		for i, tgt := range st.Targets {
			if i < len(st.Targets)-1 {
				c.emit(sc, line, OpDupTop)
			}
			if err := c.compileAssignTarget(sc, tgt); err != nil {
				return err
			}
		}
		return nil

	case *ast.AugAssign:
		return c.compileAugAssign(sc, st)

	case *ast.If:
		return c.compileIf(sc, st)

	case *ast.While:
		return c.compileWhile(sc, st)

	case *ast.For:
		return c.compileFor(sc, st)

	case *ast.Break:
		if len(sc.breakPatches) == 0 {
			return &CompileError{Line: line, Message: "'break' outside loop"}
		}
		off := c.emit(sc, line, OpJump, 0)
		top := len(sc.breakPatches) - 1
		sc.breakPatches[top] = append(sc.breakPatches[top], off)
		return nil

	case *ast.Continue:
		if len(sc.continuePatches) == 0 {
			return &CompileError{Line: line, Message: "'continue' not properly in loop"}
		}
		off := c.emit(sc, line, OpJump, 0)
		top := len(sc.continuePatches) - 1
		sc.continuePatches[top] = append(sc.continuePatches[top], off)
		return nil

	case *ast.Pass:
		return nil

	case *ast.Return:
		if st.Value != nil {
			if err := c.compileExpr(sc, st.Value); err != nil {
				return err
			}
		} else {
			c.emit(sc, line, OpLoadConst, c.addConst(sc, nil))
		}
		c.emit(sc, line, OpReturn)
		return nil

	case *ast.Raise:
		if st.Exc != nil {
			if err := c.compileExpr(sc, st.Exc); err != nil {
				return err
			}
			c.emit(sc, line, OpRaise, 1)
		} else {
			c.emit(sc, line, OpRaise, 0)
		}
		return nil

	case *ast.Assert:
		if err := c.compileExpr(sc, st.Test); err != nil {
			return err
		}
		skip := c.emit(sc, line, OpPopJumpIfTrue, 0)
		c.emit(sc, line, OpLoadGlobal, c.addName(sc, "AssertionError"))
		nargs := 0
		if st.Msg != nil {
			if err := c.compileExpr(sc, st.Msg); err != nil {
				return err
			}
			nargs = 1
		}
		c.emit(sc, line, OpCall, nargs)
		c.emit(sc, line, OpRaise, 1)
		c.patchJump(sc, skip)
		return nil

	case *ast.FuncDef:
		return c.compileFuncDef(sc, st)

	case *ast.Try:
		return c.compileTry(sc, st)

	case *ast.Import:
		for i, name := range st.Names {
			c.emit(sc, line, OpImportName, c.addName(sc, name))
			target := st.Asnames[i]
			if target == "" {
				target = topLevelSegment(name)
			}
			c.compileStoreName(sc, line, target)
		}
		return nil

	case *ast.ImportFrom:
		c.emit(sc, line, OpImportName, c.addName(sc, st.Module))
		if len(st.Names) == 1 && st.Names[0] == "*" {
			c.emit(sc, line, OpImportStar)
			return nil
		}
		for i, name := range st.Names {
			c.emit(sc, line, OpImportFrom, c.addName(sc, name))
			target := st.Asnames[i]
			if target == "" {
				target = name
			}
			c.compileStoreName(sc, line, target)
		}
		c.emit(sc, line, OpPop)
		return nil
	}
	return &CompileError{Line: line, Message: "unsupported statement"}
}

// compileAssignTarget compiles the store side of an assignment; it expects
// the value already on top of the stack.
func (c *Compiler) compileAssignTarget(sc *scope, tgt ast.Expr) error {
	line := tgt.At().Line
	switch t := tgt.(type) {
	case *ast.Name:
		c.compileStoreName(sc, line, t.Id)
		return nil
	case *ast.Attribute:
		// STORE_ATTR and STORE_SUBSCR take the value on top, so the value is
		// parked in a temp while the target's operands are pushed under it.
		tmp := c.newTemp(sc)
		c.emit(sc, line, OpStoreFast, tmp)
		if err := c.compileExpr(sc, t.X); err != nil {
			return err
		}
		c.emit(sc, line, OpLoadFast, tmp)
		c.emit(sc, line, OpStoreAttr, c.addName(sc, t.Attr))
		return nil
	case *ast.Subscript:
		tmp := c.newTemp(sc)
		c.emit(sc, line, OpStoreFast, tmp)
		if err := c.compileExpr(sc, t.X); err != nil {
			return err
		}
		if err := c.compileExpr(sc, t.Index); err != nil {
			return err
		}
		c.emit(sc, line, OpLoadFast, tmp)
		c.emit(sc, line, OpStoreSubscr)
		return nil
	case *ast.TupleLit:
		return c.compileUnpackAssign(sc, t.Elts, line)
	case *ast.ListLit:
		return c.compileUnpackAssign(sc, t.Elts, line)
	}
	return &CompileError{Line: line, Message: "invalid assignment target"}
}

// compileUnpackAssign unpacks the sequence on top of the stack into each
// target in order. There is no dedicated UNPACK_SEQUENCE opcode: the
// subset has no starred targets, so a plain subscript per element compiles
// to the same bytecode as manual indexing and needs no new primitive.
func (c *Compiler) compileUnpackAssign(sc *scope, targets []ast.Expr, line int) error {
	for i, tgt := range targets {
		if i < len(targets)-1 {
			c.emit(sc, line, OpDupTop)
		}
		c.emit(sc, line, OpLoadConst, c.addConst(sc, int64(i)))
		c.emit(sc, line, OpBinarySubscr)
		if err := c.compileAssignTarget(sc, tgt); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compileAugAssign(sc *scope, st *ast.AugAssign) error {
	line := st.At().Line
	switch t := st.Target.(type) {
	case *ast.Name:
		c.compileLoadName(sc, line, t.Id)
		if err := c.compileExpr(sc, st.Value); err != nil {
			return err
		}
		c.emitBinOp(sc, line, st.Op)
		c.compileStoreName(sc, line, t.Id)
		return nil
	case *ast.Attribute:
		if err := c.compileExpr(sc, t.X); err != nil {
			return err
		}
		c.emit(sc, line, OpDupTop)
		c.emit(sc, line, OpLoadAttr, c.addName(sc, t.Attr))
		if err := c.compileExpr(sc, st.Value); err != nil {
			return err
		}
		c.emitBinOp(sc, line, st.Op)
		c.emit(sc, line, OpStoreAttr, c.addName(sc, t.Attr))
		return nil
	case *ast.Subscript:
		if err := c.compileExpr(sc, t.X); err != nil {
			return err
		}
		if err := c.compileExpr(sc, t.Index); err != nil {
			return err
		}
		c.emit(sc, line, OpDupTwo)
		c.emit(sc, line, OpBinarySubscr)
		if err := c.compileExpr(sc, st.Value); err != nil {
			return err
		}
		c.emitBinOp(sc, line, st.Op)
		c.emit(sc, line, OpStoreSubscr)
		return nil
	}
	return &CompileError{Line: line, Message: "invalid augmented assignment target"}
}

func (c *Compiler) compileIf(sc *scope, st *ast.If) error {
	line := st.At().Line
	if err := c.compileExpr(sc, st.Test); err != nil {
		return err
	}
	elseJump := c.emit(sc, line, OpPopJumpIfFalse, 0)
	if err := c.compileStmts(sc, st.Body, false); err != nil {
		return err
	}
	if len(st.Orelse) == 0 {
		c.patchJump(sc, elseJump)
		return nil
	}
	endJump := c.emit(sc, line, OpJump, 0)
	c.patchJump(sc, elseJump)
	if err := c.compileStmts(sc, st.Orelse, false); err != nil {
		return err
	}
	c.patchJump(sc, endJump)
	return nil
}

func (c *Compiler) compileWhile(sc *scope, st *ast.While) error {
	line := st.At().Line
	sc.breakPatches = append(sc.breakPatches, nil)
	sc.continuePatches = append(sc.continuePatches, nil)

	loopStart := len(sc.code)
	if err := c.compileExpr(sc, st.Test); err != nil {
		return err
	}
	exitJump := c.emit(sc, line, OpPopJumpIfFalse, 0)
	if err := c.compileStmts(sc, st.Body, false); err != nil {
		return err
	}
	continueTarget := len(sc.code)
	c.emit(sc, line, OpJump, 0)
	c.patchJumpTo(sc, len(sc.code)-3, loopStart)
	c.patchJump(sc, exitJump)

	if len(st.Orelse) > 0 {
		if err := c.compileStmts(sc, st.Orelse, false); err != nil {
			return err
		}
	}

	n := len(sc.breakPatches) - 1
	for _, off := range sc.breakPatches[n] {
		c.patchJump(sc, off)
	}
	for _, off := range sc.continuePatches[n] {
		c.patchJumpTo(sc, off, continueTarget)
	}
	sc.breakPatches = sc.breakPatches[:n]
	sc.continuePatches = sc.continuePatches[:n]
	return nil
}

func (c *Compiler) compileFor(sc *scope, st *ast.For) error {
	line := st.At().Line
	if err := c.compileExpr(sc, st.Iter); err != nil {
		return err
	}
	c.emit(sc, line, OpGetIter)
	sc.curDepth++

	sc.breakPatches = append(sc.breakPatches, nil)
	sc.continuePatches = append(sc.continuePatches, nil)

	loopStart := len(sc.code)
	exitJump := c.emit(sc, line, OpForIter, 0)
	if err := c.compileAssignTarget(sc, st.Target); err != nil {
		return err
	}
	if err := c.compileStmts(sc, st.Body, false); err != nil {
		return err
	}
	continueTarget := len(sc.code)
	c.emit(sc, line, OpJump, 0)
	c.patchJumpTo(sc, len(sc.code)-3, loopStart)
	c.patchJump(sc, exitJump) // FOR_ITER pops the iterator itself on exhaustion
	sc.curDepth--

	if len(st.Orelse) > 0 {
		if err := c.compileStmts(sc, st.Orelse, false); err != nil {
			return err
		}
	}

	n := len(sc.breakPatches) - 1
	for _, off := range sc.breakPatches[n] {
		c.patchJump(sc, off)
	}
	for _, off := range sc.continuePatches[n] {
		c.patchJumpTo(sc, off, continueTarget)
	}
	sc.breakPatches = sc.breakPatches[:n]
	sc.continuePatches = sc.continuePatches[:n]
	return nil
}

// compileTry lowers a try/except/else into one exception-table entry
// spanning the try body, plus a linear chain of type-checks at the handler
// entry point — there is no SETUP_EXCEPT opcode bracketing the body.
func (c *Compiler) compileTry(sc *scope, st *ast.Try) error {
	line := st.At().Line
	start := len(sc.code)
	if err := c.compileStmts(sc, st.Body, false); err != nil {
		return err
	}
	end := len(sc.code)

	afterTry := c.emit(sc, line, OpJump, 0)
	handlerPC := len(sc.code)

	var doneJumps []int
	for _, h := range st.Handlers {
		var nextCheck int
		hasNext := h.Type != nil
		if hasNext {
			if err := c.compileExpr(sc, h.Type); err != nil {
				return err
			}
			c.emit(sc, h.Pos.Line, OpMatchException)
			nextCheck = c.emit(sc, h.Pos.Line, OpPopJumpIfFalse, 0)
		}
		if h.Name != "" {
			c.compileStoreName(sc, h.Pos.Line, h.Name)
		} else {
			c.emit(sc, h.Pos.Line, OpPop)
		}
		if err := c.compileStmts(sc, h.Body, false); err != nil {
			return err
		}
		c.emit(sc, h.Pos.Line, OpClearExc)
		doneJumps = append(doneJumps, c.emit(sc, h.Pos.Line, OpJump, 0))
		if hasNext {
			c.patchJump(sc, nextCheck)
		}
	}
	// No handler matched: re-raise the still-live exception. Control never
	// falls through this instruction; it transfers via the exception
	// mechanism, so the dead code after it is harmless.
	c.emit(sc, line, OpRaise, 0)

	// The no-exception path (afterTry) and a handled-exception path both
	// need to converge, but only the no-exception path runs `else` — a
	// handler that ran must skip straight past it.
	c.patchJump(sc, afterTry)
	if len(st.Orelse) > 0 {
		if err := c.compileStmts(sc, st.Orelse, false); err != nil {
			return err
		}
	}
	finalEnd := len(sc.code)
	for _, off := range doneJumps {
		c.patchJumpTo(sc, off, finalEnd)
	}

	sc.exceptTable = append(sc.exceptTable, ExceptTableEntry{
		StartPC: start, EndPC: end, HandlerPC: handlerPC, StackDepth: sc.curDepth,
	})
	return nil
}
