package values

import "fmt"

// Exception is a catchable sandbox error: a type name, a message, and an
// optional attached value bound by `except ... as name`. It satisfies Go's
// error interface so it can travel through ordinary Go error returns up
// to the VM's dispatch loop, which is responsible for routing it through
// the exception table instead of treating it as an engine failure.
type Exception struct {
	Kind    string
	Message string
	Value   Value // usually the Exception itself; set so `as e` binds something
}

func (e *Exception) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Message) }

func (e *Exception) Type() string   { return e.Kind }
func (e *Exception) String() string { return e.Message }

func NewException(kind, format string, args ...interface{}) *Exception {
	e := &Exception{Kind: kind, Message: fmt.Sprintf(format, args...)}
	e.Value = e
	return e
}

func NewValueError(format string, args ...interface{}) *Exception    { return NewException("ValueError", format, args...) }
func NewTypeError(format string, args ...interface{}) *Exception     { return NewException("TypeError", format, args...) }
func NewKeyError(format string, args ...interface{}) *Exception      { return NewException("KeyError", format, args...) }
func NewIndexError(format string, args ...interface{}) *Exception    { return NewException("IndexError", format, args...) }
func NewZeroDivisionError(format string, args ...interface{}) *Exception {
	return NewException("ZeroDivisionError", format, args...)
}
func NewAttributeError(format string, args ...interface{}) *Exception { return NewException("AttributeError", format, args...) }
func NewNameError(format string, args ...interface{}) *Exception      { return NewException("NameError", format, args...) }
func NewRuntimeError(format string, args ...interface{}) *Exception   { return NewException("RuntimeError", format, args...) }
func NewStopIteration() *Exception                                    { return NewException("StopIteration", "") }
func NewImportError(format string, args ...interface{}) *Exception    { return NewException("ImportError", format, args...) }
func NewFileNotFoundError(format string, args ...interface{}) *Exception {
	return NewException("FileNotFoundError", format, args...)
}
func NewPermissionError(format string, args ...interface{}) *Exception {
	return NewException("PermissionError", format, args...)
}
func NewUnsupportedOperation(format string, args ...interface{}) *Exception {
	return NewException("UnsupportedOperation", format, args...)
}
func NewOverflowError(format string, args ...interface{}) *Exception  { return NewException("OverflowError", format, args...) }
func NewAssertionError(format string, args ...interface{}) *Exception { return NewException("AssertionError", format, args...) }

// ExceptionType is the value bound to names like "ValueError" in globals.
// It serves two roles with one value: called as `ValueError(msg)` it
// constructs a new *Exception of that kind (the VM special-cases Call on
// this type), and used bare in `except ValueError:` it is the operand
// OpMatchException compares the in-flight exception's Kind against.
type ExceptionType struct{ Name string }

func (t *ExceptionType) Type() string   { return "type" }
func (t *ExceptionType) String() string { return "<class '" + t.Name + "'>" }

// Matches reports whether exc (an *Exception) is caught by `except t:`.
func (t *ExceptionType) Matches(exc *Exception) bool {
	return ExceptionMatches(exc.Kind, t.Name)
}

// BuiltinExceptionTypes lists every concrete exception kind the sandbox
// can raise or match against, for seeding into globals at construction.
var BuiltinExceptionTypes = []string{
	"Exception", "ValueError", "TypeError", "KeyError", "IndexError",
	"LookupError", "ZeroDivisionError", "OverflowError", "ArithmeticError",
	"AttributeError", "NameError", "RuntimeError", "StopIteration",
	"ImportError", "FileNotFoundError", "PermissionError", "OSError",
	"UnsupportedOperation", "AssertionError", "JSONDecodeError",
}

// exceptionParents gives the small fixed single-inheritance hierarchy this
// subset needs for `except` matching. There is no user-defined class
// system, so unlike the teacher's PyClass.Mro walk this is a static table:
// every concrete kind chains up to "Exception", and a bare `except
// Exception` (or no type at all) catches anything.
var exceptionParents = map[string]string{
	"ValueError":           "Exception",
	"TypeError":            "Exception",
	"KeyError":             "LookupError",
	"IndexError":           "LookupError",
	"LookupError":          "Exception",
	"ZeroDivisionError":     "ArithmeticError",
	"OverflowError":         "ArithmeticError",
	"ArithmeticError":       "Exception",
	"AttributeError":        "Exception",
	"NameError":             "Exception",
	"RuntimeError":          "Exception",
	"StopIteration":         "Exception",
	"ImportError":           "Exception",
	"FileNotFoundError":     "OSError",
	"PermissionError":       "OSError",
	"OSError":               "Exception",
	"UnsupportedOperation":  "OSError",
	"AssertionError":        "Exception",
	"JSONDecodeError":       "ValueError",
}

// ExceptionMatches reports whether an exception of kind `raised` is caught
// by an `except wanted` clause, walking the static parent chain.
func ExceptionMatches(raised, wanted string) bool {
	if wanted == "Exception" || wanted == "BaseException" {
		return true
	}
	for k := raised; k != ""; k = exceptionParents[k] {
		if k == wanted {
			return true
		}
		if k == "Exception" {
			break
		}
	}
	return false
}
