package values

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// formatFloat renders a float the way Python's repr does: integral values
// keep a trailing ".0", everything else uses the shortest round-tripping
// decimal form.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	// Go's exponent form already matches Python's (lowercase "e", explicit
	// sign, at least two digits), but Go switches to it from 1e+06 upwards
	// while Python keeps positional notation below 1e+16.
	if idx := strings.IndexAny(s, "eE"); idx >= 0 {
		if exp, err := strconv.Atoi(s[idx+1:]); err == nil && exp >= 0 && exp < 16 {
			s = strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// Repr renders v the way Python's repr() would: strings get quoted,
// containers render their elements recursively, cycles print as
// "[...]"/"{...}" rather than recursing forever.
func Repr(v Value) string {
	return reprSeen(v, map[uintptr]bool{})
}

func reprSeen(v Value, seen map[uintptr]bool) string {
	switch x := v.(type) {
	case NoneType:
		return "None"
	case *Bool:
		return x.String()
	case *Int:
		return x.String()
	case *Float:
		return x.String()
	case *Str:
		return reprStr(x.Value)
	case *List:
		id := uintptrOf(x)
		if seen[id] {
			return "[...]"
		}
		seen[id] = true
		defer delete(seen, id)
		parts := make([]string, len(x.Items))
		for i, el := range x.Items {
			parts[i] = reprSeen(el, seen)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *Tuple:
		parts := make([]string, len(x.Items))
		for i, el := range x.Items {
			parts[i] = reprSeen(el, seen)
		}
		if len(parts) == 1 {
			return "(" + parts[0] + ",)"
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *Dict:
		id := uintptrOf(x)
		if seen[id] {
			return "{...}"
		}
		seen[id] = true
		defer delete(seen, id)
		parts := make([]string, 0, x.Len())
		for _, kv := range x.Items() {
			parts = append(parts, reprSeen(kv[0], seen)+": "+reprSeen(kv[1], seen))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *Set:
		if x.Len() == 0 {
			return "set()"
		}
		parts := make([]string, 0, x.Len())
		for _, item := range x.Items() {
			parts = append(parts, reprSeen(item, seen))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *Slice:
		return fmt.Sprintf("slice(%v, %v, %v)", x.Start, x.Stop, x.Step)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}

func reprStr(s string) string {
	quote := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}
	var b strings.Builder
	b.WriteByte(quote)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case rune(quote):
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(quote)
	return b.String()
}

// StrOf renders v the way Python's str() would for print(): top-level
// strings are unquoted, everything else matches Repr.
func StrOf(v Value) string {
	if s, ok := v.(*Str); ok {
		return s.Value
	}
	return Repr(v)
}

// TypeName returns the Python-visible type name for v, used by type(),
// isinstance(), and TypeError messages.
func TypeName(v Value) string {
	type typed interface{ Type() string }
	if t, ok := v.(typed); ok {
		return t.Type()
	}
	return fmt.Sprintf("%T", v)
}
