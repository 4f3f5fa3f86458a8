package sandbox

import (
	"errors"
	"os"
	"testing"

	"github.com/chonkie-inc/littrs/internal/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReturnsLastExpression(t *testing.T) {
	s := New()
	result, err := s.Run(`1 + 2`)
	require.NoError(t, err)
	i, ok := result.AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(3), i)
}

func TestRunPersistsGlobalsAcrossCalls(t *testing.T) {
	s := New()
	_, err := s.Run(`x = 10`)
	require.NoError(t, err)
	_, err = s.Run(`x = x + 5`)
	require.NoError(t, err)
	v := s.GetGlobal("x")
	i, ok := v.AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(15), i)
}

func TestSetGlobalInjectsAHostValue(t *testing.T) {
	s := New()
	s.SetGlobal("name", Str("world"))
	result, err := s.Run(`"hello " + name`)
	require.NoError(t, err)
	str, ok := result.AsStr()
	require.True(t, ok)
	assert.Equal(t, "hello world", str)
}

func TestCaptureCollectsPrintOutputNotStdout(t *testing.T) {
	s := New()
	_, err := s.Run(`print("a"); print("b")`)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", s.Capture())
}

func TestCompileErrorsFromBadSyntax(t *testing.T) {
	_, err := New().Run(`def`)
	require.Error(t, err)
	var compErr *CompileErrors
	require.ErrorAs(t, err, &compErr)
	assert.Greater(t, len(compErr.Errors), 0)
}

func TestRuntimeErrorIsNotAFault(t *testing.T) {
	_, err := New().Run(`1 / 0`)
	require.Error(t, err)
	var fault *vm.Fault
	assert.False(t, errors.As(err, &fault))
}

func TestTwoSandboxesAreIsolated(t *testing.T) {
	a := New()
	b := New()
	_, err := a.Run(`x = 1`)
	require.NoError(t, err)
	assert.Nil(t, b.GetGlobal("x"))
}

func TestLimitsStopARunawayLoop(t *testing.T) {
	s := New()
	s.Limit(1000, 0)
	_, err := s.Run(`
i = 0
while True:
    i = i + 1
`)
	require.Error(t, err)
}

func TestRegisterCallsAHostFunction(t *testing.T) {
	s := New()
	s.Register("double", func(args []Value) (Value, error) {
		n, _ := args[0].AsInt()
		return Int(n * 2), nil
	})
	result, err := s.Run(`double(21)`)
	require.NoError(t, err)
	i, ok := result.AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(42), i)
}

func TestModuleIsImportable(t *testing.T) {
	s := New()
	s.Module("greet", map[string]Value{"DEFAULT": Str("hi")}, map[string]HostFunc{
		"shout": func(args []Value) (Value, error) {
			str, _ := args[0].AsStr()
			return Str(str + "!"), nil
		},
	})
	result, err := s.Run(`
import greet
greet.shout(greet.DEFAULT)
`)
	require.NoError(t, err)
	str, ok := result.AsStr()
	require.True(t, ok)
	assert.Equal(t, "hi!", str)
}

func TestStdlibMathIsOptIn(t *testing.T) {
	_, err := New().Run(`import math`)
	require.Error(t, err)

	s := New(WithStdlib("math"))
	result, err := s.Run(`math.sqrt(16.0)`)
	require.NoError(t, err)
	f, ok := result.AsFloat()
	require.True(t, ok)
	assert.Equal(t, 4.0, f)
}

func TestMountReadsAHostFile(t *testing.T) {
	dir := t.TempDir()
	hostPath := dir + "/in.txt"
	require.NoError(t, writeFile(hostPath, "hello"))

	s := New()
	s.Mount("/data/in.txt", hostPath, false)
	result, err := s.Run(`
f = open("/data/in.txt", "r")
contents = f.read()
f.close()
contents
`)
	require.NoError(t, err)
	str, ok := result.AsStr()
	require.True(t, ok)
	assert.Equal(t, "hello", str)
}

func TestMountCommitsWritesOnClose(t *testing.T) {
	dir := t.TempDir()
	hostPath := dir + "/out.txt"
	require.NoError(t, writeFile(hostPath, ""))

	s := New()
	s.Mount("/data/out.txt", hostPath, true)
	_, err := s.Run(`
f = open("/data/out.txt", "w")
f.write("written")
f.close()
`)
	require.NoError(t, err)
	files := s.Files()
	assert.Equal(t, "written", files["/data/out.txt"])
}

func TestCompileThenExecuteReuse(t *testing.T) {
	s := New()
	code, err := s.Compile(`2 * 21`, "<test>")
	require.NoError(t, err)
	result, err := s.Execute(code)
	require.NoError(t, err)
	i, ok := result.AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(42), i)
}

func writeFile(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o644)
}
