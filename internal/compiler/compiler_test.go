package compiler

import (
	"strings"
	"testing"

	"github.com/chonkie-inc/littrs/parser"
)

func compileSrc(t *testing.T, src string) *CodeObject {
	t.Helper()
	mod, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parser.Parse(%q) error: %v", src, err)
	}
	code, err := New("<test>").CompileModule(mod)
	if err != nil {
		t.Fatalf("CompileModule(%q) error: %v", src, err)
	}
	return code
}

func TestCompileModuleAppendsImplicitReturnNone(t *testing.T) {
	code := compileSrc(t, `x = 1`)
	if len(code.Code) == 0 {
		t.Fatal("expected non-empty bytecode")
	}
	last := code.Code[len(code.Code)-1]
	if Opcode(last) != OpReturn {
		t.Errorf("last opcode = %v, want OpReturn", Opcode(last))
	}
}

func TestCompileTryBuildsOneExceptTableEntry(t *testing.T) {
	code := compileSrc(t, `
try:
    x = 1 / 0
except ZeroDivisionError:
    x = 0
`)
	if len(code.ExceptTable) != 1 {
		t.Fatalf("ExceptTable has %d entries, want 1", len(code.ExceptTable))
	}
	entry := code.ExceptTable[0]
	if entry.StartPC >= entry.EndPC {
		t.Errorf("entry StartPC (%d) should be < EndPC (%d)", entry.StartPC, entry.EndPC)
	}
	if entry.HandlerPC < entry.EndPC {
		t.Errorf("HandlerPC (%d) should be at or after EndPC (%d)", entry.HandlerPC, entry.EndPC)
	}
}

func TestCompileTryEmitsClearExcAtEachHandlerExit(t *testing.T) {
	code := compileSrc(t, `
try:
    x = 1 / 0
except ZeroDivisionError:
    x = 0
except ValueError:
    x = 1
`)
	count := 0
	for i := 0; i < len(code.Code); {
		op := Opcode(code.Code[i])
		if op == OpClearExc {
			count++
		}
		i += code.Len(i)
	}
	if count != 2 {
		t.Errorf("OpClearExc emitted %d times, want 2 (one per handler)", count)
	}
}

func TestCompileDedupsEqualConstants(t *testing.T) {
	code := compileSrc(t, `
a = 1
b = 1
c = "x"
d = "x"
`)
	intCount, strCount := 0, 0
	for _, c := range code.Constants {
		if c == int64(1) {
			intCount++
		}
		if c == "x" {
			strCount++
		}
	}
	if intCount != 1 {
		t.Errorf("constant 1 appears %d times in the pool, want 1 (deduped)", intCount)
	}
	if strCount != 1 {
		t.Errorf("constant \"x\" appears %d times in the pool, want 1 (deduped)", strCount)
	}
}

func TestCompileFunctionDoesNotDedupCodeObjects(t *testing.T) {
	code := compileSrc(t, `
def f():
    return 1

def g():
    return 1
`)
	nested := 0
	for _, c := range code.Constants {
		if _, ok := c.(*CodeObject); ok {
			nested++
		}
	}
	if nested != 2 {
		t.Errorf("found %d nested CodeObjects, want 2 (one per def)", nested)
	}
}

func TestDisassembleIncludesExceptTableEntries(t *testing.T) {
	code := compileSrc(t, `
try:
    x = 1
except Exception:
    x = 2
`)
	out := code.Disassemble()
	if !strings.Contains(out, "->") {
		t.Errorf("Disassemble() output missing exception-table rows:\n%s", out)
	}
}

func TestCompileRejectsBreakOutsideLoop(t *testing.T) {
	mod, err := parser.Parse("break\n")
	if err != nil {
		t.Fatalf("parser.Parse error: %v", err)
	}
	_, err = New("<test>").CompileModule(mod)
	if err == nil {
		t.Fatal("expected a compile error for break outside a loop")
	}
}
