package compiler

import (
	"fmt"

	"github.com/chonkie-inc/littrs/ast"
)

// CompileError reports a failure during lowering (e.g. a break/continue
// outside a loop, or a target that cannot be assigned to).
type CompileError struct {
	Line    int
	Message string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// scope holds the in-progress state for one CodeObject (module, function,
// lambda, or comprehension body) being compiled.
type scope struct {
	parent   *scope
	isModule bool
	name     string

	code     []byte
	consts   []interface{}
	names    []string
	nameIdx  map[string]int
	varNames []string
	locals   map[string]int

	lines     []LineEntry
	curLine   int
	lineStart int

	exceptTable []ExceptTableEntry

	curDepth int // live values on the operand stack from enclosing for-loops

	breakPatches    [][]int // stack of pending JUMP offsets per enclosing loop, for break
	continuePatches [][]int // same, for continue
	loopStarts      []int
}

func newScope(name string, isModule bool) *scope {
	return &scope{
		name:     name,
		isModule: isModule,
		nameIdx:  map[string]int{},
		locals:   map[string]int{},
	}
}

// Compiler drives compilation of a whole module, including nested defs.
type Compiler struct {
	filename string
}

// New returns a compiler for source attributed to filename (used only in
// error messages and disassembly headers).
func New(filename string) *Compiler {
	return &Compiler{filename: filename}
}

// CompileModule lowers a parsed module into its top-level CodeObject.
func (c *Compiler) CompileModule(mod *ast.Module) (*CodeObject, error) {
	sc := newScope("<module>", true)
	if err := c.compileStmts(sc, mod.Body, true); err != nil {
		return nil, err
	}
	c.emit(sc, 0, OpLoadConst, c.addConst(sc, nil))
	c.emit(sc, 0, OpReturn)
	return c.finish(sc), nil
}

func (c *Compiler) finish(sc *scope) *CodeObject {
	c.closeLine(sc)
	co := &CodeObject{
		Name:        sc.name,
		Filename:    c.filename,
		Code:        sc.code,
		Constants:   sc.consts,
		Names:       sc.names,
		VarNames:    sc.varNames,
		ExceptTable: sc.exceptTable,
		LineTable:   sc.lines,
		VarArgIndex: -1,
		KwArgIndex:  -1,
	}
	return co
}

// ---------------------------------------------------------------------
// Emission helpers
// ---------------------------------------------------------------------

func (c *Compiler) setLine(sc *scope, line int) {
	if line == sc.curLine {
		return
	}
	c.closeLine(sc)
	sc.curLine = line
	sc.lineStart = len(sc.code)
}

func (c *Compiler) closeLine(sc *scope) {
	if sc.curLine == 0 {
		return
	}
	sc.lines = append(sc.lines, LineEntry{StartOffset: sc.lineStart, EndOffset: len(sc.code), Line: sc.curLine})
}

// emit appends an instruction and returns its byte offset.
func (c *Compiler) emit(sc *scope, line int, op Opcode, arg ...int) int {
	if line > 0 {
		c.setLine(sc, line)
	}
	off := len(sc.code)
	sc.code = append(sc.code, byte(op))
	if op.HasArg() {
		a := 0
		if len(arg) > 0 {
			a = arg[0]
		}
		sc.code = append(sc.code, byte(a&0xff), byte((a>>8)&0xff))
	}
	return off
}

// patchJump back-fills the 2-byte argument of a jump instruction emitted
// earlier at off with the current code length (the jump target).
func (c *Compiler) patchJump(sc *scope, off int) {
	c.patchJumpTo(sc, off, len(sc.code))
}

func (c *Compiler) patchJumpTo(sc *scope, off, target int) {
	sc.code[off+1] = byte(target & 0xff)
	sc.code[off+2] = byte((target >> 8) & 0xff)
}

func (c *Compiler) addConst(sc *scope, v interface{}) int {
	if isHashableConst(v) {
		for i, existing := range sc.consts {
			if existing == v {
				return i
			}
		}
	}
	sc.consts = append(sc.consts, v)
	return len(sc.consts) - 1
}

func isHashableConst(v interface{}) bool {
	switch v.(type) {
	case *CodeObject, []interface{}:
		return false
	default:
		return true
	}
}

func (c *Compiler) addName(sc *scope, name string) int {
	if idx, ok := sc.nameIdx[name]; ok {
		return idx
	}
	idx := len(sc.names)
	sc.names = append(sc.names, name)
	sc.nameIdx[name] = idx
	return idx
}

// declareLocals assigns stack slots to a function-like scope's parameter
// and assigned-variable names. Parameters come first, in order, so the VM
// can bind call arguments directly by index.
func declareLocals(sc *scope, params []string, extra []string) {
	for _, p := range params {
		if _, ok := sc.locals[p]; ok {
			continue
		}
		sc.locals[p] = len(sc.varNames)
		sc.varNames = append(sc.varNames, p)
	}
	for _, n := range extra {
		if _, ok := sc.locals[n]; ok {
			continue
		}
		sc.locals[n] = len(sc.varNames)
		sc.varNames = append(sc.varNames, n)
	}
}

// newTemp allocates a synthetic local slot invisible to user code, used to
// hold a chained comparison's shared operand across two adjacent
// comparisons, or an assigned value while an attribute/subscript target's
// operands are pushed. Every CodeObject carries a locals array sized to VarNames
// regardless of module/function kind, so this is safe even at module scope.
func (c *Compiler) newTemp(sc *scope) int {
	idx := len(sc.varNames)
	sc.varNames = append(sc.varNames, fmt.Sprintf("$t%d", idx))
	return idx
}

// ---------------------------------------------------------------------
// Name load/store
// ---------------------------------------------------------------------

func (c *Compiler) compileLoadName(sc *scope, line int, name string) {
	if !sc.isModule {
		if slot, ok := sc.locals[name]; ok {
			c.emit(sc, line, OpLoadFast, slot)
			return
		}
	}
	c.emit(sc, line, OpLoadGlobal, c.addName(sc, name))
}

func (c *Compiler) compileStoreName(sc *scope, line int, name string) {
	if !sc.isModule {
		if slot, ok := sc.locals[name]; ok {
			c.emit(sc, line, OpStoreFast, slot)
			return
		}
	}
	c.emit(sc, line, OpStoreGlobal, c.addName(sc, name))
}
