package vm

import "fmt"

// Fault is an uncatchable interpreter signal: resource-limit exceedance or
// an internal invariant violation. It is disjoint from any value sandboxed
// code can construct, and the dispatch loop's exception-table search must
// never match it — it always propagates straight out of Run, mirroring
// the teacher's TimeoutError/CancelledError sentinel errors but triggered
// by instruction/recursion accounting instead of a wall-clock deadline.
type Fault struct {
	Message string
}

func (f *Fault) Error() string { return f.Message }

func instructionLimitFault(limit int64) *Fault {
	return &Fault{Message: fmt.Sprintf("Instruction limit exceeded (limit: %d)", limit)}
}

func recursionLimitFault() *Fault {
	return &Fault{Message: "Recursion limit exceeded"}
}
