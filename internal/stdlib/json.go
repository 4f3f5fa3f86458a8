package stdlib

import (
	"sort"
	"strconv"
	"strings"

	"github.com/chonkie-inc/littrs/internal/values"
)

// JSONModule builds the `json` module. Both directions walk values.Value
// directly rather than going through encoding/json, which has no way to
// marshal a custom tagged union like values.Value without an intermediate
// copy — dumps is grounded on the teacher's internal/stdlib/json.go
// encodeJSON; loads is a hand-written recursive-descent scanner in the
// style of the teacher's own hand-written lexer (internal/compiler/lexer.go)
// rather than reusing encoding/json's decoder, for the same reason.
func JSONModule() *values.Module {
	return newModule("json").
		fn("dumps", jsonDumps).
		fn("loads", jsonLoads).
		build()
}

func jsonDumps(args []Value, kwargs map[string]Value) (Value, error) {
	if len(args) < 1 {
		return nil, values.NewTypeError("dumps() missing required argument: 'obj'")
	}
	indent := ""
	if iv, ok := kwargs["indent"]; ok {
		if n, ok := iv.(*values.Int); ok && n.Value > 0 {
			indent = strings.Repeat(" ", int(n.Value))
		}
	}
	sortKeys := false
	if sv, ok := kwargs["sort_keys"]; ok {
		sortKeys = values.Truthy(sv)
	}
	var buf strings.Builder
	if err := encodeJSON(&buf, args[0], indent, sortKeys, 0); err != nil {
		return nil, err
	}
	return &values.Str{Value: buf.String()}, nil
}

func jsonLoads(args []Value, kwargs map[string]Value) (Value, error) {
	if len(args) < 1 {
		return nil, values.NewTypeError("loads() missing required argument: 's'")
	}
	s, ok := args[0].(*values.Str)
	if !ok {
		return nil, values.NewTypeError("the JSON object must be str")
	}
	p := &jsonParser{src: s.Value}
	p.skipSpace()
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, values.NewException("JSONDecodeError", "Extra data: char %d", p.pos)
	}
	return v, nil
}

// encodeJSON renders v as JSON into buf, recursing through containers.
func encodeJSON(buf *strings.Builder, v Value, indent string, sortKeys bool, depth int) error {
	switch x := v.(type) {
	case values.NoneType:
		buf.WriteString("null")
	case *values.Bool:
		if x.Value {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case *values.Int:
		buf.WriteString(strconv.FormatInt(x.Value, 10))
	case *values.Float:
		if x.Value != x.Value {
			return values.NewValueError("Out of range float values are not JSON compliant")
		}
		buf.WriteString(strconv.FormatFloat(x.Value, 'g', -1, 64))
	case *values.Str:
		encodeJSONString(buf, x.Value)
	case *values.List:
		return encodeJSONArray(buf, x.Items, indent, sortKeys, depth)
	case *values.Tuple:
		return encodeJSONArray(buf, x.Items, indent, sortKeys, depth)
	case *values.Dict:
		return encodeJSONObject(buf, x, indent, sortKeys, depth)
	default:
		return values.NewTypeError("Object of type %s is not JSON serializable", values.TypeName(v))
	}
	return nil
}

func encodeJSONString(buf *strings.Builder, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				buf.WriteString("\\u")
				hex := strconv.FormatInt(int64(r), 16)
				buf.WriteString(strings.Repeat("0", 4-len(hex)))
				buf.WriteString(hex)
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
}

func encodeJSONArray(buf *strings.Builder, items []Value, indent string, sortKeys bool, depth int) error {
	if len(items) == 0 {
		buf.WriteString("[]")
		return nil
	}
	buf.WriteByte('[')
	if indent != "" {
		buf.WriteByte('\n')
	}
	for i, item := range items {
		if i > 0 {
			buf.WriteByte(',')
			if indent != "" {
				buf.WriteByte('\n')
			} else {
				buf.WriteByte(' ')
			}
		}
		if indent != "" {
			buf.WriteString(strings.Repeat(indent, depth+1))
		}
		if err := encodeJSON(buf, item, indent, sortKeys, depth+1); err != nil {
			return err
		}
	}
	if indent != "" {
		buf.WriteByte('\n')
		buf.WriteString(strings.Repeat(indent, depth))
	}
	buf.WriteByte(']')
	return nil
}

func encodeJSONObject(buf *strings.Builder, d *values.Dict, indent string, sortKeys bool, depth int) error {
	pairs := d.Items()
	if len(pairs) == 0 {
		buf.WriteString("{}")
		return nil
	}
	type kv struct {
		key string
		val Value
	}
	out := make([]kv, 0, len(pairs))
	for _, p := range pairs {
		key, err := jsonKeyToString(p[0])
		if err != nil {
			return err
		}
		out = append(out, kv{key, p[1]})
	}
	if sortKeys {
		sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	}
	buf.WriteByte('{')
	if indent != "" {
		buf.WriteByte('\n')
	}
	for i, p := range out {
		if i > 0 {
			buf.WriteByte(',')
			if indent != "" {
				buf.WriteByte('\n')
			} else {
				buf.WriteByte(' ')
			}
		}
		if indent != "" {
			buf.WriteString(strings.Repeat(indent, depth+1))
		}
		encodeJSONString(buf, p.key)
		buf.WriteByte(':')
		buf.WriteByte(' ')
		if err := encodeJSON(buf, p.val, indent, sortKeys, depth+1); err != nil {
			return err
		}
	}
	if indent != "" {
		buf.WriteByte('\n')
		buf.WriteString(strings.Repeat(indent, depth))
	}
	buf.WriteByte('}')
	return nil
}

func jsonKeyToString(k Value) (string, error) {
	switch v := k.(type) {
	case *values.Str:
		return v.Value, nil
	case *values.Int:
		return strconv.FormatInt(v.Value, 10), nil
	case *values.Float:
		return strconv.FormatFloat(v.Value, 'g', -1, 64), nil
	case *values.Bool:
		if v.Value {
			return "true", nil
		}
		return "false", nil
	case values.NoneType:
		return "null", nil
	}
	return "", values.NewTypeError("keys must be str, int, float, bool or None, not %s", values.TypeName(k))
}

// jsonParser is a hand-written recursive-descent JSON scanner over a byte
// position, mirroring the position-tracking idiom of the teacher's own
// lexer rather than delegating to encoding/json.
type jsonParser struct {
	src string
	pos int
}

func (p *jsonParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *jsonParser) errAt(msg string) error {
	return values.NewException("JSONDecodeError", "%s: char %d", msg, p.pos)
}

func (p *jsonParser) parseValue() (Value, error) {
	if p.pos >= len(p.src) {
		return nil, p.errAt("Expecting value")
	}
	switch c := p.src[p.pos]; {
	case c == '{':
		return p.parseObject()
	case c == '[':
		return p.parseArray()
	case c == '"':
		s, err := p.parseString()
		if err != nil {
			return nil, err
		}
		return &values.Str{Value: s}, nil
	case c == 't':
		return p.parseLiteral("true", values.True)
	case c == 'f':
		return p.parseLiteral("false", values.False)
	case c == 'n':
		return p.parseLiteral("null", values.None)
	case c == '-' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	}
	return nil, p.errAt("Expecting value")
}

func (p *jsonParser) parseLiteral(lit string, v Value) (Value, error) {
	if p.pos+len(lit) > len(p.src) || p.src[p.pos:p.pos+len(lit)] != lit {
		return nil, p.errAt("Expecting value")
	}
	p.pos += len(lit)
	return v, nil
}

func (p *jsonParser) parseNumber() (Value, error) {
	start := p.pos
	if p.pos < len(p.src) && p.src[p.pos] == '-' {
		p.pos++
	}
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	isFloat := false
	if p.pos < len(p.src) && p.src[p.pos] == '.' {
		isFloat = true
		p.pos++
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
		}
	}
	if p.pos < len(p.src) && (p.src[p.pos] == 'e' || p.src[p.pos] == 'E') {
		isFloat = true
		p.pos++
		if p.pos < len(p.src) && (p.src[p.pos] == '+' || p.src[p.pos] == '-') {
			p.pos++
		}
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
		}
	}
	lit := p.src[start:p.pos]
	if lit == "" || lit == "-" {
		return nil, p.errAt("Expecting value")
	}
	if isFloat {
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return nil, p.errAt("Expecting value")
		}
		return &values.Float{Value: f}, nil
	}
	n, err := strconv.ParseInt(lit, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(lit, 64)
		if ferr != nil {
			return nil, p.errAt("Expecting value")
		}
		return &values.Float{Value: f}, nil
	}
	return values.MakeInt(n), nil
}

func (p *jsonParser) parseString() (string, error) {
	if p.src[p.pos] != '"' {
		return "", p.errAt("Expecting string")
	}
	p.pos++
	var b strings.Builder
	for {
		if p.pos >= len(p.src) {
			return "", p.errAt("Unterminated string")
		}
		c := p.src[p.pos]
		if c == '"' {
			p.pos++
			return b.String(), nil
		}
		if c == '\\' {
			p.pos++
			if p.pos >= len(p.src) {
				return "", p.errAt("Unterminated string")
			}
			switch p.src[p.pos] {
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case '/':
				b.WriteByte('/')
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'u':
				if p.pos+4 >= len(p.src) {
					return "", p.errAt("Invalid \\uXXXX escape")
				}
				hex := p.src[p.pos+1 : p.pos+5]
				n, err := strconv.ParseInt(hex, 16, 32)
				if err != nil {
					return "", p.errAt("Invalid \\uXXXX escape")
				}
				b.WriteRune(rune(n))
				p.pos += 4
			default:
				return "", p.errAt("Invalid \\escape")
			}
			p.pos++
			continue
		}
		b.WriteByte(c)
		p.pos++
	}
}

func (p *jsonParser) parseArray() (Value, error) {
	p.pos++ // '['
	items := []Value{}
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == ']' {
		p.pos++
		return &values.List{Items: items}, nil
	}
	for {
		p.skipSpace()
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, p.errAt("Expecting ',' delimiter")
		}
		if p.src[p.pos] == ',' {
			p.pos++
			continue
		}
		if p.src[p.pos] == ']' {
			p.pos++
			return &values.List{Items: items}, nil
		}
		return nil, p.errAt("Expecting ',' delimiter")
	}
}

func (p *jsonParser) parseObject() (Value, error) {
	p.pos++ // '{'
	d := values.NewDict()
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == '}' {
		p.pos++
		return d, nil
	}
	for {
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != '"' {
			return nil, p.errAt("Expecting property name enclosed in double quotes")
		}
		key, err := p.parseString()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != ':' {
			return nil, p.errAt("Expecting ':' delimiter")
		}
		p.pos++
		p.skipSpace()
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		d.Set(&values.Str{Value: key}, val)
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, p.errAt("Expecting ',' delimiter")
		}
		if p.src[p.pos] == ',' {
			p.pos++
			continue
		}
		if p.src[p.pos] == '}' {
			p.pos++
			return d, nil
		}
		return nil, p.errAt("Expecting ',' delimiter")
	}
}
