package vm

import (
	"strconv"
	"strings"

	"github.com/chonkie-inc/littrs/internal/values"
)

// stringMethod returns the bound method value for `recv.name`, grounded
// on the teacher's attr_string.go per-method switch, narrowed to the
// string methods spec.md §4.4 lists.
func stringMethod(recv *values.Str, name string) (Value, bool) {
	s := recv.Value
	bf := func(fn func(args []Value) (Value, error)) Value {
		return &values.BuiltinFn{Name: "str." + name, Fn: func(args []Value, kwargs map[string]Value) (Value, error) {
			return fn(args)
		}}
	}
	argStr := func(args []Value, i int) (string, error) {
		if i >= len(args) {
			return "", values.NewTypeError("%s() missing argument", name)
		}
		as, ok := args[i].(*values.Str)
		if !ok {
			return "", values.NewTypeError("%s() argument must be str, not %s", name, values.TypeName(args[i]))
		}
		return as.Value, nil
	}

	switch name {
	case "upper":
		return bf(func(args []Value) (Value, error) { return &values.Str{Value: strings.ToUpper(s)}, nil }), true
	case "lower":
		return bf(func(args []Value) (Value, error) { return &values.Str{Value: strings.ToLower(s)}, nil }), true
	case "casefold":
		return bf(func(args []Value) (Value, error) { return &values.Str{Value: strings.ToLower(s)}, nil }), true
	case "strip":
		return bf(func(args []Value) (Value, error) { return &values.Str{Value: stripArg(s, args, strings.TrimSpace, strings.Trim)}, nil }), true
	case "lstrip":
		return bf(func(args []Value) (Value, error) {
			def := func(v string) string { return strings.TrimLeft(v, whitespaceCutset) }
			return &values.Str{Value: stripArg(s, args, def, strings.TrimLeft)}, nil
		}), true
	case "rstrip":
		return bf(func(args []Value) (Value, error) {
			def := func(v string) string { return strings.TrimRight(v, whitespaceCutset) }
			return &values.Str{Value: stripArg(s, args, def, strings.TrimRight)}, nil
		}), true
	case "split":
		return bf(func(args []Value) (Value, error) { return splitStr(s, args, false) }), true
	case "rsplit":
		return bf(func(args []Value) (Value, error) { return splitStr(s, args, true) }), true
	case "join":
		return bf(func(args []Value) (Value, error) {
			if len(args) != 1 {
				return nil, values.NewTypeError("join() takes exactly one argument")
			}
			items, ok := asItemSlice(args[0])
			if !ok {
				return nil, values.NewTypeError("can only join an iterable")
			}
			parts := make([]string, len(items))
			for i, it := range items {
				sv, ok := it.(*values.Str)
				if !ok {
					return nil, values.NewTypeError("sequence item %d: expected str instance, %s found", i, values.TypeName(it))
				}
				parts[i] = sv.Value
			}
			return &values.Str{Value: strings.Join(parts, s)}, nil
		}), true
	case "replace":
		return bf(func(args []Value) (Value, error) {
			old, err := argStr(args, 0)
			if err != nil {
				return nil, err
			}
			repl, err := argStr(args, 1)
			if err != nil {
				return nil, err
			}
			n := -1
			if len(args) > 2 {
				if iv, ok := args[2].(*values.Int); ok {
					n = int(iv.Value)
				}
			}
			return &values.Str{Value: strings.Replace(s, old, repl, n)}, nil
		}), true
	case "startswith":
		return bf(func(args []Value) (Value, error) {
			p, err := argStr(args, 0)
			if err != nil {
				return nil, err
			}
			return values.MakeBool(strings.HasPrefix(s, p)), nil
		}), true
	case "endswith":
		return bf(func(args []Value) (Value, error) {
			p, err := argStr(args, 0)
			if err != nil {
				return nil, err
			}
			return values.MakeBool(strings.HasSuffix(s, p)), nil
		}), true
	case "find":
		return bf(func(args []Value) (Value, error) {
			p, err := argStr(args, 0)
			if err != nil {
				return nil, err
			}
			return values.MakeInt(int64(strings.Index(s, p))), nil
		}), true
	case "count":
		return bf(func(args []Value) (Value, error) {
			p, err := argStr(args, 0)
			if err != nil {
				return nil, err
			}
			return values.MakeInt(int64(strings.Count(s, p))), nil
		}), true
	case "title":
		return bf(func(args []Value) (Value, error) { return &values.Str{Value: strings.Title(strings.ToLower(s))}, nil }), true
	case "capitalize":
		return bf(func(args []Value) (Value, error) {
			if s == "" {
				return &values.Str{Value: s}, nil
			}
			r := []rune(strings.ToLower(s))
			r[0] = []rune(strings.ToUpper(string(r[0])))[0]
			return &values.Str{Value: string(r)}, nil
		}), true
	case "swapcase":
		return bf(func(args []Value) (Value, error) {
			var b strings.Builder
			for _, r := range s {
				if 'a' <= r && r <= 'z' {
					b.WriteRune(r - 32)
				} else if 'A' <= r && r <= 'Z' {
					b.WriteRune(r + 32)
				} else {
					b.WriteRune(r)
				}
			}
			return &values.Str{Value: b.String()}, nil
		}), true
	case "isdigit":
		return bf(func(args []Value) (Value, error) { return values.MakeBool(isAllFunc(s, isDigitRune)), nil }), true
	case "isalpha":
		return bf(func(args []Value) (Value, error) { return values.MakeBool(isAllFunc(s, isAlphaRune)), nil }), true
	case "isalnum":
		return bf(func(args []Value) (Value, error) {
			return values.MakeBool(isAllFunc(s, func(r rune) bool { return isDigitRune(r) || isAlphaRune(r) })), nil
		}), true
	case "removeprefix":
		return bf(func(args []Value) (Value, error) {
			p, err := argStr(args, 0)
			if err != nil {
				return nil, err
			}
			return &values.Str{Value: strings.TrimPrefix(s, p)}, nil
		}), true
	case "removesuffix":
		return bf(func(args []Value) (Value, error) {
			p, err := argStr(args, 0)
			if err != nil {
				return nil, err
			}
			return &values.Str{Value: strings.TrimSuffix(s, p)}, nil
		}), true
	case "partition":
		return bf(func(args []Value) (Value, error) {
			sep, err := argStr(args, 0)
			if err != nil {
				return nil, err
			}
			if idx := strings.Index(s, sep); idx >= 0 {
				return &values.Tuple{Items: []Value{&values.Str{Value: s[:idx]}, &values.Str{Value: sep}, &values.Str{Value: s[idx+len(sep):]}}}, nil
			}
			return &values.Tuple{Items: []Value{&values.Str{Value: s}, &values.Str{Value: ""}, &values.Str{Value: ""}}}, nil
		}), true
	case "rpartition":
		return bf(func(args []Value) (Value, error) {
			sep, err := argStr(args, 0)
			if err != nil {
				return nil, err
			}
			if idx := strings.LastIndex(s, sep); idx >= 0 {
				return &values.Tuple{Items: []Value{&values.Str{Value: s[:idx]}, &values.Str{Value: sep}, &values.Str{Value: s[idx+len(sep):]}}}, nil
			}
			return &values.Tuple{Items: []Value{&values.Str{Value: ""}, &values.Str{Value: ""}, &values.Str{Value: s}}}, nil
		}), true
	case "splitlines":
		return bf(func(args []Value) (Value, error) {
			lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
			if s == "" {
				lines = nil
			}
			items := make([]Value, len(lines))
			for i, l := range lines {
				items[i] = &values.Str{Value: l}
			}
			return &values.List{Items: items}, nil
		}), true
	case "center":
		return bf(func(args []Value) (Value, error) { return padStr(s, args, 0) }), true
	case "ljust":
		return bf(func(args []Value) (Value, error) { return padStr(s, args, -1) }), true
	case "rjust":
		return bf(func(args []Value) (Value, error) { return padStr(s, args, 1) }), true
	case "zfill":
		return bf(func(args []Value) (Value, error) {
			if len(args) != 1 {
				return nil, values.NewTypeError("zfill() takes exactly 1 argument")
			}
			width, _ := asPlainInt(args[0])
			if int64(len(s)) >= width {
				return &values.Str{Value: s}, nil
			}
			sign := ""
			digits := s
			if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
				sign, digits = s[:1], s[1:]
			}
			pad := strings.Repeat("0", int(width)-len(s))
			return &values.Str{Value: sign + pad + digits}, nil
		}), true
	case "format":
		return bf(func(args []Value) (Value, error) { return formatString(s, args) }), true
	}
	return nil, false
}

const whitespaceCutset = " \t\n\r\v\f"

func stripArg(s string, args []Value, def func(string) string, cutset func(string, string) string) string {
	if len(args) == 0 {
		return def(s)
	}
	if ss, ok := args[0].(*values.Str); ok {
		return cutset(s, ss.Value)
	}
	return def(s)
}

func splitStr(s string, args []Value, fromRight bool) (Value, error) {
	var sep string
	hasSep := false
	if len(args) > 0 {
		if ss, ok := args[0].(*values.Str); ok {
			sep, hasSep = ss.Value, true
		}
	}
	n := -1
	if len(args) > 1 {
		if iv, ok := args[1].(*values.Int); ok {
			n = int(iv.Value)
		}
	}
	var parts []string
	if !hasSep {
		parts = strings.Fields(s)
	} else if n < 0 {
		parts = strings.Split(s, sep)
	} else if fromRight {
		parts = rsplitN(s, sep, n)
	} else {
		parts = strings.SplitN(s, sep, n+1)
	}
	items := make([]Value, len(parts))
	for i, p := range parts {
		items[i] = &values.Str{Value: p}
	}
	return &values.List{Items: items}, nil
}

func rsplitN(s, sep string, n int) []string {
	all := strings.Split(s, sep)
	if len(all) <= n+1 {
		return all
	}
	head := strings.Join(all[:len(all)-n], sep)
	return append([]string{head}, all[len(all)-n:]...)
}

func padStr(s string, args []Value, justify int) (Value, error) {
	if len(args) == 0 {
		return nil, values.NewTypeError("missing width argument")
	}
	width, _ := asPlainInt(args[0])
	fill := " "
	if len(args) > 1 {
		if fs, ok := args[1].(*values.Str); ok {
			fill = fs.Value
		}
	}
	n := int64(len(s))
	if n >= width {
		return &values.Str{Value: s}, nil
	}
	total := width - n
	switch {
	case justify < 0:
		return &values.Str{Value: s + strings.Repeat(fill, int(total))}, nil
	case justify > 0:
		return &values.Str{Value: strings.Repeat(fill, int(total)) + s}, nil
	default:
		left := total / 2
		right := total - left
		return &values.Str{Value: strings.Repeat(fill, int(left)) + s + strings.Repeat(fill, int(right))}, nil
	}
}

func isDigitRune(r rune) bool { return r >= '0' && r <= '9' }
func isAlphaRune(r rune) bool { return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') }

func isAllFunc(s string, pred func(rune) bool) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !pred(r) {
			return false
		}
	}
	return true
}

// formatString implements `str.format`'s positional and indexed
// substitution plus `{{`/`}}` escapes.
func formatString(tmpl string, args []Value) (Value, error) {
	var b strings.Builder
	auto := 0
	i := 0
	for i < len(tmpl) {
		c := tmpl[i]
		switch c {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				b.WriteByte('{')
				i += 2
				continue
			}
			end := strings.IndexByte(tmpl[i:], '}')
			if end < 0 {
				return nil, values.NewValueError("Single '{' encountered in format string")
			}
			field := tmpl[i+1 : i+end]
			idx := auto
			if field != "" {
				n, err := strconv.Atoi(field)
				if err != nil {
					return nil, values.NewValueError("unsupported format field '%s'", field)
				}
				idx = n
			} else {
				auto++
			}
			if idx < 0 || idx >= len(args) {
				return nil, values.NewIndexError("Replacement index %d out of range for positional args tuple", idx)
			}
			b.WriteString(values.StrOf(args[idx]))
			i += end + 1
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				b.WriteByte('}')
				i += 2
				continue
			}
			return nil, values.NewValueError("Single '}' encountered in format string")
		default:
			b.WriteByte(c)
			i++
		}
	}
	return &values.Str{Value: b.String()}, nil
}
