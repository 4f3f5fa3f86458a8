package compiler

import "github.com/chonkie-inc/littrs/ast"

// compileFunctionBody lowers a function/lambda's parameter list and body
// into a standalone CodeObject. Defaults are NOT compiled here: they are
// evaluated in the enclosing scope at def time and left on the stack for
// OpMakeFunction, matching CPython's late-binding-free default semantics.
func (c *Compiler) compileFunctionBody(name string, params ast.Params, body []ast.Stmt) (*CodeObject, error) {
	fsc := newScope(name, false)

	var allParams []string
	allParams = append(allParams, params.Names...)
	if params.VarArg != "" {
		allParams = append(allParams, params.VarArg)
	}
	if params.KwArg != "" {
		allParams = append(allParams, params.KwArg)
	}
	declareLocals(fsc, allParams, collectLocals(body))

	if err := c.compileStmts(fsc, body, false); err != nil {
		return nil, err
	}
	c.emit(fsc, 0, OpLoadConst, c.addConst(fsc, nil))
	c.emit(fsc, 0, OpReturn)

	co := c.finish(fsc)
	co.ArgCount = len(params.Names)
	co.DefaultCount = len(params.Defaults)
	if params.VarArg != "" {
		co.VarArgIndex = fsc.locals[params.VarArg]
		co.Flags |= FlagVarArg
	}
	if params.KwArg != "" {
		co.KwArgIndex = fsc.locals[params.KwArg]
		co.Flags |= FlagVarKw
	}
	return co, nil
}

// compileFuncDef lowers `def name(params): body` into a MAKE_FUNCTION that
// builds the function value from a nested CodeObject plus the compiled
// default-argument values, then binds it to name in the enclosing scope.
func (c *Compiler) compileFuncDef(sc *scope, st *ast.FuncDef) error {
	line := st.At().Line
	for _, d := range st.Params.Defaults {
		if err := c.compileExpr(sc, d); err != nil {
			return err
		}
	}
	co, err := c.compileFunctionBody(st.Name, st.Params, st.Body)
	if err != nil {
		return err
	}
	c.emit(sc, line, OpMakeFunction, c.addConst(sc, co))
	c.compileStoreName(sc, line, st.Name)
	return nil
}

// compileLambda lowers `lambda params: body` to the same MAKE_FUNCTION
// shape as a def, with a single-statement body that returns the expression.
func (c *Compiler) compileLambda(sc *scope, x *ast.Lambda) error {
	line := x.At().Line
	for _, d := range x.Params.Defaults {
		if err := c.compileExpr(sc, d); err != nil {
			return err
		}
	}
	body := []ast.Stmt{&ast.Return{Base: ast.Base{Pos: x.At()}, Value: x.Body}}
	co, err := c.compileFunctionBody("<lambda>", x.Params, body)
	if err != nil {
		return err
	}
	c.emit(sc, line, OpMakeFunction, c.addConst(sc, co))
	return nil
}

// compileComp lowers a list/set/dict comprehension into an immediately
// invoked synthetic one-parameter function. There are no closures in this
// subset, so the comprehension body resolves any name besides its own loop
// variable through the same global/tool/module chain as a normal function;
// the only values actually threaded through are the source iterable (the
// function's sole parameter) and the accumulator the VM builds internally.
func (c *Compiler) compileComp(sc *scope, x *ast.Comp) error {
	line := x.At().Line
	const srcParam = "$src"

	fsc := newScope("<"+x.Kind+"comp>", false)
	declareLocals(fsc, []string{srcParam}, collectCompTargetLocals(x.Target))

	switch x.Kind {
	case "list":
		c.emit(fsc, line, OpBuildList, 0)
	case "set":
		c.emit(fsc, line, OpBuildSet, 0)
	case "dict":
		c.emit(fsc, line, OpBuildMap, 0)
	}

	c.compileLoadName(fsc, line, srcParam)
	c.emit(fsc, line, OpGetIter)
	loopStart := len(fsc.code)
	exitJump := c.emit(fsc, line, OpForIter, 0)
	if err := c.compileAssignTarget(fsc, x.Target); err != nil {
		return err
	}

	var skipJumps []int
	for _, cond := range x.Ifs {
		if err := c.compileExpr(fsc, cond); err != nil {
			return err
		}
		skipJumps = append(skipJumps, c.emit(fsc, line, OpPopJumpIfFalse, loopStart))
	}

	// The accumulator sits below the live iterator on the stack, so the
	// distance from the appended value(s) back to it is one deeper than a
	// bare "just below TOS": list/set have [accum, iter, value] (depth 2),
	// dict has [accum, iter, key, value] (depth 3).
	switch x.Kind {
	case "list":
		if err := c.compileExpr(fsc, x.Elt); err != nil {
			return err
		}
		c.emit(fsc, line, OpListAppend, 2)
	case "set":
		if err := c.compileExpr(fsc, x.Elt); err != nil {
			return err
		}
		c.emit(fsc, line, OpSetAdd, 2)
	case "dict":
		if err := c.compileExpr(fsc, x.Key); err != nil {
			return err
		}
		if err := c.compileExpr(fsc, x.Value); err != nil {
			return err
		}
		c.emit(fsc, line, OpMapAdd, 3)
	}

	c.emit(fsc, line, OpJump, loopStart)
	for _, j := range skipJumps {
		c.patchJumpTo(fsc, j, loopStart)
	}
	c.patchJump(fsc, exitJump)
	c.emit(fsc, line, OpReturn)

	co := c.finish(fsc)
	co.ArgCount = 1

	c.emit(sc, line, OpMakeFunction, c.addConst(sc, co))
	if err := c.compileExpr(sc, x.Iter); err != nil {
		return err
	}
	c.emit(sc, line, OpCall, 1)
	return nil
}

func collectCompTargetLocals(tgt ast.Expr) []string {
	switch t := tgt.(type) {
	case *ast.Name:
		return []string{t.Id}
	case *ast.TupleLit:
		var names []string
		for _, el := range t.Elts {
			names = append(names, collectCompTargetLocals(el)...)
		}
		return names
	case *ast.ListLit:
		var names []string
		for _, el := range t.Elts {
			names = append(names, collectCompTargetLocals(el)...)
		}
		return names
	}
	return nil
}
