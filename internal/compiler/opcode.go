// Package compiler lowers an ast.Module into a CodeObject: bytecode, a
// constant pool, a name table, and an exception table. There is no block
// push/pop opcode pair for try/except — exception handling is driven
// entirely by a static table searched by the VM at dispatch time, matching
// the CPython 3.11+ model rather than the classic SETUP_EXCEPT/POP_EXCEPT
// block stack.
package compiler

import "fmt"

// Opcode is a single bytecode instruction.
type Opcode byte

const (
	OpPop     Opcode = iota // Pop TOS
	OpDupTop                // Duplicate TOS
	OpDupTwo                // a, b -> a, b, a, b

	OpLoadConst  // push Constants[arg]
	OpLoadFast   // push locals[arg]
	OpStoreFast  // locals[arg] = pop()
	OpLoadGlobal // push Names[arg] resolved global -> tool -> module
	OpStoreGlobal
	OpLoadAttr  // push getattr(pop(), Names[arg])
	OpStoreAttr // v = pop(); obj = pop(); setattr(obj, Names[arg], v)

	OpBinarySubscr // push pop()[pop()] (index popped first, then container)
	OpStoreSubscr  // v=pop(); idx=pop(); obj=pop(); obj[idx]=v

	OpUnaryPositive
	OpUnaryNegative
	OpUnaryNot
	OpUnaryInvert

	OpBinaryAdd
	OpBinarySubtract
	OpBinaryMultiply
	OpBinaryDivide
	OpBinaryFloorDiv
	OpBinaryModulo
	OpBinaryPower
	OpBinaryLShift
	OpBinaryRShift
	OpBinaryAnd
	OpBinaryOr
	OpBinaryXor

	OpCompareOp // arg selects the comparator, see CompareOp

	OpJumpIfTrueOrPop  // and/or short-circuit: peek, jump if true else pop
	OpJumpIfFalseOrPop

	OpJump
	OpPopJumpIfTrue
	OpPopJumpIfFalse

	OpGetIter // push iter(pop())
	OpForIter // push iterator.Next(); jump to arg on exhaustion

	OpMakeFunction // build a function value from Constants[arg] (*CodeObject) + defaults on stack
	OpCall         // call with arg positional args, no keywords
	OpCallKw       // call with arg total args; TOS is the constant list of keyword names
	OpReturn

	OpBuildTuple
	OpBuildList
	OpBuildSet
	OpBuildMap    // arg key/value pairs
	OpBuildString // join arg string parts (f-strings)
	OpBuildSlice  // arg is 2 or 3; pop that many (step, stop, start) and push a slice

	// OpListAppend/OpSetAdd pop one value and append/add it to the
	// accumulator found arg slots below the popped value (arg=2 skips the
	// live comprehension iterator sitting between them). OpMapAdd pops a
	// value then a key and inserts into the map arg slots below the key
	// (arg=3 for the same reason, plus the extra key slot).
	OpListAppend
	OpSetAdd
	OpMapAdd

	OpImportName // import Names[arg], push module value
	OpImportFrom // push attribute Names[arg] from TOS (module)
	OpImportStar // bind every public name from TOS (module) into globals

	OpRaise          // arg 0: re-raise TOS (already-active exception); arg 1: raise TOS
	OpMatchException // pop type, peek exception; push bool match result
	OpClearExc       // clear the frame's currently-handled exception

	OpSetResult // pop() becomes the module's last top-level expression value

	OpNop
)

var opcodeNames = map[Opcode]string{
	OpPop: "POP", OpDupTop: "DUP_TOP", OpDupTwo: "DUP_TOP_TWO",
	OpLoadConst: "LOAD_CONST", OpLoadFast: "LOAD_FAST", OpStoreFast: "STORE_FAST",
	OpLoadGlobal: "LOAD_GLOBAL", OpStoreGlobal: "STORE_GLOBAL",
	OpLoadAttr: "LOAD_ATTR", OpStoreAttr: "STORE_ATTR",
	OpBinarySubscr: "BINARY_SUBSCR", OpStoreSubscr: "STORE_SUBSCR",
	OpUnaryPositive: "UNARY_POSITIVE", OpUnaryNegative: "UNARY_NEGATIVE",
	OpUnaryNot: "UNARY_NOT", OpUnaryInvert: "UNARY_INVERT",
	OpBinaryAdd: "BINARY_ADD", OpBinarySubtract: "BINARY_SUBTRACT",
	OpBinaryMultiply: "BINARY_MULTIPLY", OpBinaryDivide: "BINARY_TRUE_DIVIDE",
	OpBinaryFloorDiv: "BINARY_FLOOR_DIVIDE", OpBinaryModulo: "BINARY_MODULO",
	OpBinaryPower: "BINARY_POWER", OpBinaryLShift: "BINARY_LSHIFT",
	OpBinaryRShift: "BINARY_RSHIFT", OpBinaryAnd: "BINARY_AND",
	OpBinaryOr: "BINARY_OR", OpBinaryXor: "BINARY_XOR",
	OpCompareOp: "COMPARE_OP",
	OpJumpIfTrueOrPop: "JUMP_IF_TRUE_OR_POP", OpJumpIfFalseOrPop: "JUMP_IF_FALSE_OR_POP",
	OpJump: "JUMP", OpPopJumpIfTrue: "POP_JUMP_IF_TRUE", OpPopJumpIfFalse: "POP_JUMP_IF_FALSE",
	OpGetIter: "GET_ITER", OpForIter: "FOR_ITER",
	OpMakeFunction: "MAKE_FUNCTION", OpCall: "CALL", OpCallKw: "CALL_KW", OpReturn: "RETURN_VALUE",
	OpBuildTuple: "BUILD_TUPLE", OpBuildList: "BUILD_LIST", OpBuildSet: "BUILD_SET",
	OpBuildMap: "BUILD_MAP", OpBuildString: "BUILD_STRING", OpBuildSlice: "BUILD_SLICE",
	OpListAppend: "LIST_APPEND", OpSetAdd: "SET_ADD", OpMapAdd: "MAP_ADD",
	OpImportName: "IMPORT_NAME", OpImportFrom: "IMPORT_FROM", OpImportStar: "IMPORT_STAR",
	OpRaise: "RAISE_VARARGS", OpMatchException: "MATCH_EXCEPTION", OpClearExc: "CLEAR_EXC",
	OpSetResult: "SET_RESULT", OpNop: "NOP",
}

func (op Opcode) String() string {
	if s, ok := opcodeNames[op]; ok {
		return s
	}
	return "UNKNOWN"
}

// noArgOps is the set of opcodes that carry no argument operand.
var noArgOps = map[Opcode]bool{
	OpPop: true, OpDupTop: true, OpDupTwo: true,
	OpBinarySubscr: true, OpStoreSubscr: true,
	OpUnaryPositive: true, OpUnaryNegative: true, OpUnaryNot: true, OpUnaryInvert: true,
	OpBinaryAdd: true, OpBinarySubtract: true, OpBinaryMultiply: true, OpBinaryDivide: true,
	OpBinaryFloorDiv: true, OpBinaryModulo: true, OpBinaryPower: true,
	OpBinaryLShift: true, OpBinaryRShift: true, OpBinaryAnd: true, OpBinaryOr: true, OpBinaryXor: true,
	OpGetIter: true, OpReturn: true, OpImportStar: true,
	OpMatchException: true, OpSetResult: true, OpNop: true, OpClearExc: true,
}

// HasArg reports whether op carries a 2-byte little-endian argument.
func (op Opcode) HasArg() bool { return !noArgOps[op] }

// CompareOp enumerates the comparator an OpCompareOp instruction applies.
type CompareOp int

const (
	CmpEq CompareOp = iota
	CmpNe
	CmpLt
	CmpLe
	CmpGt
	CmpGe
	CmpIs
	CmpIsNot
	CmpIn
	CmpNotIn
)

var compareOpNames = map[string]CompareOp{
	"==": CmpEq, "!=": CmpNe, "<": CmpLt, "<=": CmpLe, ">": CmpGt, ">=": CmpGe,
	"is": CmpIs, "is not": CmpIsNot, "in": CmpIn, "not in": CmpNotIn,
}

// Instruction is a decoded bytecode instruction, used for disassembly.
type Instruction struct {
	Op     Opcode
	Arg    int
	Offset int
	Line   int
}

func fmtArg(arg int) string { return fmt.Sprintf("%d", arg) }
