package compiler

import (
	"fmt"
	"strings"
)

// ExceptTableEntry is one row of the static exception table attached to a
// CodeObject. The VM dispatch loop, on catching a *values.Exception at
// program counter pc, scans for the innermost entry whose [StartPC, EndPC)
// contains pc, truncates the operand stack to StackDepth, pushes the
// exception value, and jumps to HandlerPC. There is no SETUP_EXCEPT /
// POP_EXCEPT opcode pair: the table is the only place try/except state
// lives, computed once at compile time.
type ExceptTableEntry struct {
	StartPC    int
	EndPC      int
	HandlerPC  int
	StackDepth int
}

// Contains reports whether pc falls inside this entry's protected range.
func (e ExceptTableEntry) Contains(pc int) bool {
	return pc >= e.StartPC && pc < e.EndPC
}

// CodeFlags marks properties of a compiled function.
type CodeFlags int

const (
	FlagVarArg CodeFlags = 1 << iota
	FlagVarKw
)

// CodeObject is one unit of compiled code: a module body, a function body,
// a lambda body, or a comprehension's synthesized body.
type CodeObject struct {
	Name      string
	Filename  string
	Code      []byte
	Constants []interface{} // may itself hold *CodeObject for nested defs
	Names     []string      // global/attribute/import name table
	VarNames  []string      // local slot names, params first

	ArgCount     int // positional parameter count (includes defaulted ones)
	DefaultCount int // how many trailing ArgCount params have a default
	VarArgIndex  int // slot index of *args, or -1
	KwArgIndex   int // slot index of **kwargs, or -1
	Flags        CodeFlags

	ExceptTable []ExceptTableEntry
	LineTable   []LineEntry
	StackSize   int
}

// LineEntry maps a byte offset range to a source line, for error reporting.
type LineEntry struct {
	StartOffset, EndOffset int
	Line                   int
}

// LineForOffset returns the source line responsible for a bytecode offset.
func (co *CodeObject) LineForOffset(offset int) int {
	for _, e := range co.LineTable {
		if offset >= e.StartOffset && offset < e.EndOffset {
			return e.Line
		}
	}
	return 0
}

// Decode reads the instruction at offset.
func (co *CodeObject) Decode(offset int) Instruction {
	op := Opcode(co.Code[offset])
	instr := Instruction{Op: op, Offset: offset, Line: co.LineForOffset(offset)}
	if op.HasArg() {
		instr.Arg = int(co.Code[offset+1]) | int(co.Code[offset+2])<<8
	}
	return instr
}

// Len returns the encoded length in bytes of the instruction at offset.
func (co *CodeObject) Len(offset int) int {
	if Opcode(co.Code[offset]).HasArg() {
		return 3
	}
	return 1
}

// Disassemble renders a human-readable listing, used for debug traces.
func (co *CodeObject) Disassemble() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Disassembly of %s:\n", co.Name)
	offset := 0
	for offset < len(co.Code) {
		instr := co.Decode(offset)
		if instr.Op.HasArg() {
			fmt.Fprintf(&b, "%4d %4d %-20s %s\n", instr.Line, offset, instr.Op.String(), fmtArg(instr.Arg))
		} else {
			fmt.Fprintf(&b, "%4d %4d %-20s\n", instr.Line, offset, instr.Op.String())
		}
		offset += co.Len(offset)
	}
	if len(co.ExceptTable) > 0 {
		b.WriteString("Exception table:\n")
		for _, e := range co.ExceptTable {
			fmt.Fprintf(&b, "  [%d, %d) -> %d (depth %d)\n", e.StartPC, e.EndPC, e.HandlerPC, e.StackDepth)
		}
	}
	return b.String()
}
