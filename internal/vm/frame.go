package vm

import "github.com/chonkie-inc/littrs/internal/compiler"

// Frame is one call's execution state: its code, instruction pointer,
// operand stack, and local slots. Unlike the teacher's Frame there are no
// closure cells or block stack — the subset has no closures, and
// try/except state lives entirely in the static exception table rather
// than a runtime block stack.
type Frame struct {
	Code   *compiler.CodeObject
	IP     int
	Stack  []Value
	Locals []Value

	// currentExc is the exception this frame is actively dispatching (set
	// when a catch jumps control to a handler), consulted by a bare
	// `raise` with no operand.
	currentExc *Exception
}

func newFrame(code *compiler.CodeObject) *Frame {
	return &Frame{
		Code:   code,
		Stack:  make([]Value, 0, code.StackSize+16),
		Locals: make([]Value, len(code.VarNames)),
	}
}

func (f *Frame) push(v Value) { f.Stack = append(f.Stack, v) }

func (f *Frame) pop() Value {
	n := len(f.Stack) - 1
	v := f.Stack[n]
	f.Stack = f.Stack[:n]
	return v
}

func (f *Frame) top() Value { return f.Stack[len(f.Stack)-1] }

func (f *Frame) peek(depth int) Value { return f.Stack[len(f.Stack)-1-depth] }

func (f *Frame) truncate(depth int) { f.Stack = f.Stack[:depth] }
