// Package parser implements the lexer and recursive-descent parser for the
// documented Python subset. It is the external-collaborator component of
// the design: it knows nothing about bytecode or the VM, and only produces
// a generic ast.Node tree for the compiler to lower.
package parser

import (
	"fmt"
	"strings"

	"github.com/chonkie-inc/littrs/ast"
)

// SyntaxError reports a parse failure with source position.
type SyntaxError struct {
	Line, Col int
	Message   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d:%d: %s", e.Line, e.Col, e.Message)
}

// Parse tokenizes and parses source into a module AST.
func Parse(source string) (*ast.Module, error) {
	lx := newLexer(source)
	toks, err := lx.tokenize()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	mod, err := p.parseModule()
	if err != nil {
		return nil, err
	}
	return mod, nil
}

type parser struct {
	toks []Token
	i    int
}

func (p *parser) cur() Token  { return p.toks[p.i] }
func (p *parser) at(k Kind) bool { return p.cur().Kind == k }

func (p *parser) pos() ast.Pos { return ast.Pos{Line: p.cur().Line, Col: p.cur().Col} }

func (p *parser) advance() Token {
	t := p.toks[p.i]
	if p.i < len(p.toks)-1 {
		p.i++
	}
	return t
}

func (p *parser) expect(k Kind, what string) (Token, error) {
	if !p.at(k) {
		return Token{}, p.errorf("expected %s", what)
	}
	return p.advance(), nil
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return &SyntaxError{Line: p.cur().Line, Col: p.cur().Col, Message: fmt.Sprintf(format, args...)}
}

// skipNewlines consumes stray blank NEWLINE tokens (blank lines between
// statements at the same indentation level).
func (p *parser) skipNewlines() {
	for p.at(TNewline) {
		p.advance()
	}
}

func (p *parser) parseModule() (*ast.Module, error) {
	body, err := p.parseStmtsUntil(TEOF)
	if err != nil {
		return nil, err
	}
	return &ast.Module{Body: body}, nil
}

// parseStmtsUntil parses statements until the current token is `end` (not
// consumed) — used for the top level, where `end` is TEOF.
func (p *parser) parseStmtsUntil(end Kind) ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	p.skipNewlines()
	for !p.at(end) {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s...)
		p.skipNewlines()
	}
	return stmts, nil
}

// parseBlock parses an indented suite: `:` NEWLINE INDENT stmts DEDENT, or a
// single simple-statement-list on the same line after `:`.
func (p *parser) parseBlock() ([]ast.Stmt, error) {
	if _, err := p.expect(TColon, "':'"); err != nil {
		return nil, err
	}
	if !p.at(TNewline) {
		return p.parseSimpleStmtLine()
	}
	p.advance() // NEWLINE
	p.skipNewlines()
	if _, err := p.expect(TIndent, "indented block"); err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	p.skipNewlines()
	for !p.at(TDedent) && !p.at(TEOF) {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s...)
		p.skipNewlines()
	}
	if _, err := p.expect(TDedent, "dedent"); err != nil {
		return nil, err
	}
	return stmts, nil
}

// parseStmt parses one logical statement, which may expand to several
// (semicolon-separated simple statements) or a single compound statement.
func (p *parser) parseStmt() ([]ast.Stmt, error) {
	switch p.cur().Kind {
	case TIf:
		s, err := p.parseIf()
		return []ast.Stmt{s}, err
	case TWhile:
		s, err := p.parseWhile()
		return []ast.Stmt{s}, err
	case TFor:
		s, err := p.parseFor()
		return []ast.Stmt{s}, err
	case TDef:
		s, err := p.parseFuncDef()
		return []ast.Stmt{s}, err
	case TTry:
		s, err := p.parseTry()
		return []ast.Stmt{s}, err
	default:
		return p.parseSimpleStmtLine()
	}
}

// parseSimpleStmtLine parses one or more semicolon-separated simple
// statements terminated by a NEWLINE (or EOF).
func (p *parser) parseSimpleStmtLine() ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for {
		s, err := p.parseSimpleStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
		if p.at(TSemicolon) {
			p.advance()
			if p.at(TNewline) || p.at(TEOF) {
				break
			}
			continue
		}
		break
	}
	if p.at(TNewline) {
		p.advance()
	} else if !p.at(TEOF) && !p.at(TDedent) {
		return nil, p.errorf("expected newline")
	}
	return stmts, nil
}

func (p *parser) parseSimpleStmt() (ast.Stmt, error) {
	switch p.cur().Kind {
	case TPass:
		p.advance()
		return &ast.Pass{}, nil
	case TBreak:
		p.advance()
		return &ast.Break{}, nil
	case TContinue:
		p.advance()
		return &ast.Continue{}, nil
	case TReturn:
		p.advance()
		if p.at(TNewline) || p.at(TSemicolon) || p.at(TEOF) || p.at(TDedent) {
			return &ast.Return{}, nil
		}
		v, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		return &ast.Return{Value: v}, nil
	case TRaise:
		p.advance()
		if p.at(TNewline) || p.at(TSemicolon) || p.at(TEOF) || p.at(TDedent) {
			return &ast.Raise{}, nil
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.at(TFrom) {
			return nil, p.errorf("unsupported syntax: 'raise ... from ...' is not part of the accepted language subset")
		}
		return &ast.Raise{Exc: e}, nil
	case TAssert:
		p.advance()
		test, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		a := &ast.Assert{Test: test}
		if p.at(TComma) {
			p.advance()
			msg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			a.Msg = msg
		}
		return a, nil
	case TImport:
		return p.parseImport()
	case TFrom:
		return p.parseImportFrom()
	default:
		return p.parseExprOrAssignStmt()
	}
}

func (p *parser) parseImport() (ast.Stmt, error) {
	p.advance() // import
	imp := &ast.Import{}
	for {
		name, err := p.parseDottedName()
		if err != nil {
			return nil, err
		}
		asname := ""
		if p.at(TAs) {
			p.advance()
			t, err := p.expect(TName, "name")
			if err != nil {
				return nil, err
			}
			asname = t.Text
		}
		imp.Names = append(imp.Names, name)
		imp.Asnames = append(imp.Asnames, asname)
		if p.at(TComma) {
			p.advance()
			continue
		}
		break
	}
	return imp, nil
}

func (p *parser) parseImportFrom() (ast.Stmt, error) {
	p.advance() // from
	mod, err := p.parseDottedName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TImport, "'import'"); err != nil {
		return nil, err
	}
	imf := &ast.ImportFrom{Module: mod}
	star := false
	if p.at(TStar) {
		p.advance()
		star = true
	} else {
		paren := false
		if p.at(TLParen) {
			p.advance()
			paren = true
		}
		for {
			t, err := p.expect(TName, "name")
			if err != nil {
				return nil, err
			}
			asname := ""
			if p.at(TAs) {
				p.advance()
				at, err := p.expect(TName, "name")
				if err != nil {
					return nil, err
				}
				asname = at.Text
			}
			imf.Names = append(imf.Names, t.Text)
			imf.Asnames = append(imf.Asnames, asname)
			if p.at(TComma) {
				p.advance()
				if paren && p.at(TRParen) {
					break
				}
				continue
			}
			break
		}
		if paren {
			if _, err := p.expect(TRParen, "')'"); err != nil {
				return nil, err
			}
		}
	}
	if star {
		imf.Names = []string{"*"}
	}
	return imf, nil
}

func (p *parser) parseDottedName() (string, error) {
	t, err := p.expect(TName, "module name")
	if err != nil {
		return "", err
	}
	name := t.Text
	for p.at(TDot) {
		p.advance()
		t, err := p.expect(TName, "name")
		if err != nil {
			return "", err
		}
		name += "." + t.Text
	}
	return name, nil
}

// parseExprOrAssignStmt parses an expression statement, an assignment
// (possibly chained: a = b = value), or an augmented assignment.
func (p *parser) parseExprOrAssignStmt() (ast.Stmt, error) {
	first, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	if op, ok := augAssignOp(p.cur().Kind); ok {
		p.advance()
		val, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		return &ast.AugAssign{Target: first, Op: op, Value: val}, nil
	}
	if p.at(TEq) {
		targets := []ast.Expr{first}
		var val ast.Expr
		for p.at(TEq) {
			p.advance()
			v, err := p.parseExprList()
			if err != nil {
				return nil, err
			}
			val = v
			targets = append(targets, val)
		}
		// last parsed value is the RHS; everything before it is a target
		rhs := targets[len(targets)-1]
		targets = targets[:len(targets)-1]
		return &ast.Assign{Targets: targets, Value: rhs}, nil
	}
	return &ast.ExprStmt{Value: first}, nil
}

func augAssignOp(k Kind) (string, bool) {
	switch k {
	case TPlusEq:
		return "+", true
	case TMinusEq:
		return "-", true
	case TStarEq:
		return "*", true
	case TSlashEq:
		return "/", true
	case TDoubleSlashEq:
		return "//", true
	case TPercentEq:
		return "%", true
	case TDoubleStarEq:
		return "**", true
	case TAmpEq:
		return "&", true
	case TPipeEq:
		return "|", true
	case TCaretEq:
		return "^", true
	case TLShiftEq:
		return "<<", true
	case TRShiftEq:
		return ">>", true
	}
	return "", false
}

// parseExprList parses a single expression, or a bare tuple display
// `a, b, c` (used for `x, y = ...` and `return a, b`).
func (p *parser) parseExprList() (ast.Expr, error) {
	pos := p.pos()
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.at(TComma) {
		return first, nil
	}
	elts := []ast.Expr{first}
	for p.at(TComma) {
		p.advance()
		if p.isExprListEnd() {
			break
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elts = append(elts, e)
	}
	return &ast.TupleLit{Base: ast.Base{Pos: pos}, Elts: elts}, nil
}

func (p *parser) isExprListEnd() bool {
	switch p.cur().Kind {
	case TNewline, TSemicolon, TEOF, TEq, TColon, TRParen, TRBracket, TRBrace, TDedent:
		return true
	}
	return false
}

func (p *parser) parseIf() (ast.Stmt, error) {
	p.advance() // if
	test, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	node := &ast.If{Test: test, Body: body}
	p.skipNewlines()
	if p.at(TElif) {
		elif, err := p.parseIf()
		if err != nil {
			return nil, err
		}
		node.Orelse = []ast.Stmt{elif}
	} else if p.at(TElse) {
		p.advance()
		orelse, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		node.Orelse = orelse
	}
	return node, nil
}

func (p *parser) parseWhile() (ast.Stmt, error) {
	p.advance()
	test, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	node := &ast.While{Test: test, Body: body}
	p.skipNewlines()
	if p.at(TElse) {
		p.advance()
		orelse, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		node.Orelse = orelse
	}
	return node, nil
}

func (p *parser) parseFor() (ast.Stmt, error) {
	p.advance()
	target, err := p.parseTargetList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TIn, "'in'"); err != nil {
		return nil, err
	}
	iter, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	node := &ast.For{Target: target, Iter: iter, Body: body}
	p.skipNewlines()
	if p.at(TElse) {
		p.advance()
		orelse, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		node.Orelse = orelse
	}
	return node, nil
}

// parseTargetList parses a for-loop target: a name, attribute/subscript, or
// a comma-separated/tuple target list.
func (p *parser) parseTargetList() (ast.Expr, error) {
	pos := p.pos()
	first, err := p.parseBitOr()
	if err != nil {
		return nil, err
	}
	if !p.at(TComma) {
		return first, nil
	}
	elts := []ast.Expr{first}
	for p.at(TComma) {
		p.advance()
		if p.at(TIn) {
			break
		}
		e, err := p.parseBitOr()
		if err != nil {
			return nil, err
		}
		elts = append(elts, e)
	}
	return &ast.TupleLit{Base: ast.Base{Pos: pos}, Elts: elts}, nil
}

func (p *parser) parseTry() (ast.Stmt, error) {
	p.advance() // try
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	node := &ast.Try{Body: body}
	p.skipNewlines()
	for p.at(TExcept) {
		hpos := p.pos()
		p.advance()
		h := ast.ExceptHandler{Pos: hpos}
		if !p.at(TColon) {
			typ, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			h.Type = typ
			if p.at(TAs) {
				p.advance()
				t, err := p.expect(TName, "name")
				if err != nil {
					return nil, err
				}
				h.Name = t.Text
			}
		}
		hbody, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		h.Body = hbody
		node.Handlers = append(node.Handlers, h)
		p.skipNewlines()
	}
	if p.at(TElse) {
		p.advance()
		orelse, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		node.Orelse = orelse
	}
	if len(node.Handlers) == 0 {
		return nil, p.errorf("'try' must have at least one 'except' clause ('finally' is not supported)")
	}
	return node, nil
}

func (p *parser) parseFuncDef() (ast.Stmt, error) {
	p.advance() // def
	name, err := p.expect(TName, "function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TLParen, "'('"); err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TRParen, "')'"); err != nil {
		return nil, err
	}
	if p.at(TArrow) {
		p.advance()
		if _, err := p.parseExpr(); err != nil { // return annotation, discarded
			return nil, err
		}
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FuncDef{Name: name.Text, Params: params, Body: body}, nil
}

func (p *parser) parseParams() (ast.Params, error) {
	var params ast.Params
	for !p.at(TRParen) {
		if p.at(TDoubleStar) {
			p.advance()
			t, err := p.expect(TName, "parameter name")
			if err != nil {
				return params, err
			}
			params.KwArg = t.Text
		} else if p.at(TStar) {
			p.advance()
			t, err := p.expect(TName, "parameter name")
			if err != nil {
				return params, err
			}
			params.VarArg = t.Text
		} else {
			t, err := p.expect(TName, "parameter name")
			if err != nil {
				return params, err
			}
			if p.at(TColon) { // type annotation, discarded
				p.advance()
				if _, err := p.parseOrExpr(); err != nil {
					return params, err
				}
			}
			params.Names = append(params.Names, t.Text)
			if p.at(TEq) {
				p.advance()
				def, err := p.parseExpr()
				if err != nil {
					return params, err
				}
				params.Defaults = append(params.Defaults, def)
			} else if len(params.Defaults) > 0 {
				return params, p.errorf("non-default parameter follows default parameter")
			}
		}
		if p.at(TComma) {
			p.advance()
			continue
		}
		break
	}
	return params, nil
}

// ---------------------------------------------------------------------
// Expressions (precedence climbing)
// ---------------------------------------------------------------------

func (p *parser) parseExpr() (ast.Expr, error) {
	return p.parseTernary()
}

func (p *parser) parseTernary() (ast.Expr, error) {
	pos := p.pos()
	if p.at(TLambda) {
		return p.parseLambda()
	}
	body, err := p.parseOrExpr()
	if err != nil {
		return nil, err
	}
	if p.at(TIf) {
		p.advance()
		test, err := p.parseOrExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TElse, "'else'"); err != nil {
			return nil, err
		}
		orelse, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.IfExp{Base: ast.Base{Pos: pos}, Test: test, Body: body, Orelse: orelse}, nil
	}
	return body, nil
}

func (p *parser) parseLambda() (ast.Expr, error) {
	pos := p.pos()
	p.advance() // lambda
	var params ast.Params
	for !p.at(TColon) {
		if p.at(TStar) {
			p.advance()
			t, err := p.expect(TName, "parameter name")
			if err != nil {
				return nil, err
			}
			params.VarArg = t.Text
		} else if p.at(TDoubleStar) {
			p.advance()
			t, err := p.expect(TName, "parameter name")
			if err != nil {
				return nil, err
			}
			params.KwArg = t.Text
		} else {
			t, err := p.expect(TName, "parameter name")
			if err != nil {
				return nil, err
			}
			params.Names = append(params.Names, t.Text)
			if p.at(TEq) {
				p.advance()
				def, err := p.parseOrExpr()
				if err != nil {
					return nil, err
				}
				params.Defaults = append(params.Defaults, def)
			}
		}
		if p.at(TComma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(TColon, "':'"); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Lambda{Base: ast.Base{Pos: pos}, Params: params, Body: body}, nil
}

func (p *parser) parseOrExpr() (ast.Expr, error) {
	pos := p.pos()
	first, err := p.parseAndExpr()
	if err != nil {
		return nil, err
	}
	if !p.at(TOr) {
		return first, nil
	}
	vals := []ast.Expr{first}
	for p.at(TOr) {
		p.advance()
		v, err := p.parseAndExpr()
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return &ast.BoolOp{Base: ast.Base{Pos: pos}, Op: "or", Values: vals}, nil
}

func (p *parser) parseAndExpr() (ast.Expr, error) {
	pos := p.pos()
	first, err := p.parseNotExpr()
	if err != nil {
		return nil, err
	}
	if !p.at(TAnd) {
		return first, nil
	}
	vals := []ast.Expr{first}
	for p.at(TAnd) {
		p.advance()
		v, err := p.parseNotExpr()
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return &ast.BoolOp{Base: ast.Base{Pos: pos}, Op: "and", Values: vals}, nil
}

func (p *parser) parseNotExpr() (ast.Expr, error) {
	if p.at(TNot) {
		pos := p.pos()
		p.advance()
		x, err := p.parseNotExpr()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Base: ast.Base{Pos: pos}, Op: "not", X: x}, nil
	}
	return p.parseComparison()
}

var compareOps = map[Kind]string{
	TEqEq: "==", TNotEq: "!=", TLt: "<", TLe: "<=", TGt: ">", TGe: ">=",
}

func (p *parser) parseComparison() (ast.Expr, error) {
	pos := p.pos()
	first, err := p.parseBitOr()
	if err != nil {
		return nil, err
	}
	var ops []string
	var rest []ast.Expr
	for {
		if op, ok := compareOps[p.cur().Kind]; ok {
			p.advance()
			r, err := p.parseBitOr()
			if err != nil {
				return nil, err
			}
			ops = append(ops, op)
			rest = append(rest, r)
			continue
		}
		if p.at(TIn) {
			p.advance()
			r, err := p.parseBitOr()
			if err != nil {
				return nil, err
			}
			ops = append(ops, "in")
			rest = append(rest, r)
			continue
		}
		if p.at(TNot) && p.peekIsIn() {
			p.advance()
			p.advance()
			r, err := p.parseBitOr()
			if err != nil {
				return nil, err
			}
			ops = append(ops, "not in")
			rest = append(rest, r)
			continue
		}
		if p.at(TIs) {
			p.advance()
			neg := false
			if p.at(TNot) {
				p.advance()
				neg = true
			}
			r, err := p.parseBitOr()
			if err != nil {
				return nil, err
			}
			if neg {
				ops = append(ops, "is not")
			} else {
				ops = append(ops, "is")
			}
			rest = append(rest, r)
			continue
		}
		break
	}
	if len(ops) == 0 {
		return first, nil
	}
	return &ast.Compare{Base: ast.Base{Pos: pos}, X: first, Ops: ops, Comparators: rest}, nil
}

func (p *parser) peekIsIn() bool {
	if p.i+1 >= len(p.toks) {
		return false
	}
	return p.toks[p.i+1].Kind == TIn
}

func (p *parser) parseBinaryLevel(next func() (ast.Expr, error), ops map[Kind]string) (ast.Expr, error) {
	pos := p.pos()
	x, err := next()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := ops[p.cur().Kind]
		if !ok {
			break
		}
		p.advance()
		y, err := next()
		if err != nil {
			return nil, err
		}
		x = &ast.BinOp{Base: ast.Base{Pos: pos}, Op: op, X: x, Y: y}
	}
	return x, nil
}

func (p *parser) parseBitOr() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseBitXor, map[Kind]string{TPipe: "|"})
}
func (p *parser) parseBitXor() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseBitAnd, map[Kind]string{TCaret: "^"})
}
func (p *parser) parseBitAnd() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseShift, map[Kind]string{TAmp: "&"})
}
func (p *parser) parseShift() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseAddSub, map[Kind]string{TLShift: "<<", TRShift: ">>"})
}
func (p *parser) parseAddSub() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseMulDiv, map[Kind]string{TPlus: "+", TMinus: "-"})
}
func (p *parser) parseMulDiv() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseUnary, map[Kind]string{
		TStar: "*", TSlash: "/", TDoubleSlash: "//", TPercent: "%",
	})
}

func (p *parser) parseUnary() (ast.Expr, error) {
	pos := p.pos()
	switch p.cur().Kind {
	case TPlus:
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Base: ast.Base{Pos: pos}, Op: "+", X: x}, nil
	case TMinus:
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Base: ast.Base{Pos: pos}, Op: "-", X: x}, nil
	case TTilde:
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Base: ast.Base{Pos: pos}, Op: "~", X: x}, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (ast.Expr, error) {
	pos := p.pos()
	x, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if p.at(TDoubleStar) {
		p.advance()
		y, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.BinOp{Base: ast.Base{Pos: pos}, Op: "**", X: x, Y: y}, nil
	}
	return x, nil
}

func (p *parser) parsePostfix() (ast.Expr, error) {
	x, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		pos := p.pos()
		switch p.cur().Kind {
		case TDot:
			p.advance()
			t, err := p.expect(TName, "attribute name")
			if err != nil {
				return nil, err
			}
			x = &ast.Attribute{Base: ast.Base{Pos: pos}, X: x, Attr: t.Text}
		case TLParen:
			p.advance()
			args, kwNames, kwValues, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TRParen, "')'"); err != nil {
				return nil, err
			}
			x = &ast.Call{Base: ast.Base{Pos: pos}, Func: x, Args: args, KwNames: kwNames, KwValues: kwValues}
		case TLBracket:
			p.advance()
			idx, err := p.parseSubscript()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TRBracket, "']'"); err != nil {
				return nil, err
			}
			x = &ast.Subscript{Base: ast.Base{Pos: pos}, X: x, Index: idx}
		default:
			return x, nil
		}
	}
}

func (p *parser) parseCallArgs() ([]ast.Expr, []string, []ast.Expr, error) {
	var args []ast.Expr
	var kwNames []string
	var kwValues []ast.Expr
	for !p.at(TRParen) {
		if p.at(TName) && p.toks[p.i+1].Kind == TEq {
			name := p.advance().Text
			p.advance() // =
			v, err := p.parseExpr()
			if err != nil {
				return nil, nil, nil, err
			}
			kwNames = append(kwNames, name)
			kwValues = append(kwValues, v)
		} else {
			v, err := p.parseExpr()
			if err != nil {
				return nil, nil, nil, err
			}
			if len(kwNames) > 0 {
				return nil, nil, nil, p.errorf("positional argument follows keyword argument")
			}
			args = append(args, v)
		}
		if p.at(TComma) {
			p.advance()
			continue
		}
		break
	}
	return args, kwNames, kwValues, nil
}

// parseSubscript parses a subscript index, which may be a slice.
func (p *parser) parseSubscript() (ast.Expr, error) {
	pos := p.pos()
	var lower, upper, step ast.Expr
	isSlice := false

	if !p.at(TColon) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		lower = e
	}
	if p.at(TColon) {
		isSlice = true
		p.advance()
		if !p.at(TColon) && !p.at(TRBracket) {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			upper = e
		}
		if p.at(TColon) {
			p.advance()
			if !p.at(TRBracket) {
				e, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				step = e
			}
		}
	}
	if isSlice {
		return &ast.Slice{Base: ast.Base{Pos: pos}, Lower: lower, Upper: upper, Step: step}, nil
	}
	return lower, nil
}

func (p *parser) parseAtom() (ast.Expr, error) {
	pos := p.pos()
	t := p.cur()
	switch t.Kind {
	case TName:
		p.advance()
		return &ast.Name{Base: ast.Base{Pos: pos}, Id: t.Text}, nil
	case TInt:
		p.advance()
		return &ast.IntLit{Base: ast.Base{Pos: pos}, Value: t.IVal}, nil
	case TFloat:
		p.advance()
		return &ast.FloatLit{Base: ast.Base{Pos: pos}, Value: t.FVal}, nil
	case TString:
		p.advance()
		val := t.Text
		for p.at(TString) { // adjacent string literal concatenation
			val += p.advance().Text
		}
		return &ast.StrLit{Base: ast.Base{Pos: pos}, Value: val}, nil
	case TFString:
		p.advance()
		return p.parseFString(pos, t.Text)
	case TTrue:
		p.advance()
		return &ast.TrueLit{Base: ast.Base{Pos: pos}}, nil
	case TFalse:
		p.advance()
		return &ast.FalseLit{Base: ast.Base{Pos: pos}}, nil
	case TNone:
		p.advance()
		return &ast.NoneLit{Base: ast.Base{Pos: pos}}, nil
	case TLParen:
		return p.parseParenOrTupleOrGenexp()
	case TLBracket:
		return p.parseListOrListComp()
	case TLBrace:
		return p.parseSetOrDictOrComp()
	}
	return nil, p.errorf("unexpected token")
}

func (p *parser) parseParenOrTupleOrGenexp() (ast.Expr, error) {
	pos := p.pos()
	p.advance() // (
	if p.at(TRParen) {
		p.advance()
		return &ast.TupleLit{Base: ast.Base{Pos: pos}, Elts: nil}, nil
	}
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.at(TFor) {
		return nil, p.errorf("unsupported syntax: generator expressions are not part of the accepted language subset")
	}
	if !p.at(TComma) {
		if _, err := p.expect(TRParen, "')'"); err != nil {
			return nil, err
		}
		return first, nil
	}
	elts := []ast.Expr{first}
	for p.at(TComma) {
		p.advance()
		if p.at(TRParen) {
			break
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elts = append(elts, e)
	}
	if _, err := p.expect(TRParen, "')'"); err != nil {
		return nil, err
	}
	return &ast.TupleLit{Base: ast.Base{Pos: pos}, Elts: elts}, nil
}

func (p *parser) parseListOrListComp() (ast.Expr, error) {
	pos := p.pos()
	p.advance() // [
	if p.at(TRBracket) {
		p.advance()
		return &ast.ListLit{Base: ast.Base{Pos: pos}}, nil
	}
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.at(TFor) {
		comp, err := p.parseCompTail(pos, "list", first, nil, nil)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TRBracket, "']'"); err != nil {
			return nil, err
		}
		return comp, nil
	}
	elts := []ast.Expr{first}
	for p.at(TComma) {
		p.advance()
		if p.at(TRBracket) {
			break
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elts = append(elts, e)
	}
	if _, err := p.expect(TRBracket, "']'"); err != nil {
		return nil, err
	}
	return &ast.ListLit{Base: ast.Base{Pos: pos}, Elts: elts}, nil
}

func (p *parser) parseSetOrDictOrComp() (ast.Expr, error) {
	pos := p.pos()
	p.advance() // {
	if p.at(TRBrace) {
		p.advance()
		return &ast.DictLit{Base: ast.Base{Pos: pos}}, nil
	}
	firstKey, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.at(TColon) {
		p.advance()
		firstVal, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.at(TFor) {
			comp, err := p.parseCompTail(pos, "dict", nil, firstKey, firstVal)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TRBrace, "'}'"); err != nil {
				return nil, err
			}
			return comp, nil
		}
		keys := []ast.Expr{firstKey}
		vals := []ast.Expr{firstVal}
		for p.at(TComma) {
			p.advance()
			if p.at(TRBrace) {
				break
			}
			k, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TColon, "':'"); err != nil {
				return nil, err
			}
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			keys = append(keys, k)
			vals = append(vals, v)
		}
		if _, err := p.expect(TRBrace, "'}'"); err != nil {
			return nil, err
		}
		return &ast.DictLit{Base: ast.Base{Pos: pos}, Keys: keys, Values: vals}, nil
	}
	if p.at(TFor) {
		comp, err := p.parseCompTail(pos, "set", firstKey, nil, nil)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TRBrace, "'}'"); err != nil {
			return nil, err
		}
		return comp, nil
	}
	elts := []ast.Expr{firstKey}
	for p.at(TComma) {
		p.advance()
		if p.at(TRBrace) {
			break
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elts = append(elts, e)
	}
	if _, err := p.expect(TRBrace, "'}'"); err != nil {
		return nil, err
	}
	return &ast.SetLit{Base: ast.Base{Pos: pos}, Elts: elts}, nil
}

// parseCompTail parses the `for target in iter [if cond]*` clause of a
// comprehension. Only a single `for` clause is supported.
func (p *parser) parseCompTail(pos ast.Pos, kind string, elt, key, val ast.Expr) (ast.Expr, error) {
	p.advance() // for
	target, err := p.parseTargetList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TIn, "'in'"); err != nil {
		return nil, err
	}
	iter, err := p.parseOrExpr()
	if err != nil {
		return nil, err
	}
	var ifs []ast.Expr
	for p.at(TIf) {
		p.advance()
		cond, err := p.parseOrExpr()
		if err != nil {
			return nil, err
		}
		ifs = append(ifs, cond)
	}
	if p.at(TFor) {
		return nil, p.errorf("unsupported syntax: multiple 'for' clauses in a comprehension are not part of the accepted language subset")
	}
	return &ast.Comp{Base: ast.Base{Pos: pos}, Kind: kind, Elt: elt, Key: key, Value: val, Target: target, Iter: iter, Ifs: ifs}, nil
}

// parseFString splits raw f-string text into literal/expression parts. `{{`
// and `}}` are escapes for literal braces; `{expr}` is parsed by recursively
// invoking the expression parser on the enclosed text.
func (p *parser) parseFString(pos ast.Pos, raw string) (ast.Expr, error) {
	var parts []ast.FStringPart
	var lit strings.Builder
	i := 0
	for i < len(raw) {
		c := raw[i]
		if c == '{' {
			if i+1 < len(raw) && raw[i+1] == '{' {
				lit.WriteByte('{')
				i += 2
				continue
			}
			if lit.Len() > 0 {
				parts = append(parts, ast.FStringPart{Literal: lit.String()})
				lit.Reset()
			}
			depth := 1
			j := i + 1
			for j < len(raw) && depth > 0 {
				if raw[j] == '{' {
					depth++
				} else if raw[j] == '}' {
					depth--
					if depth == 0 {
						break
					}
				}
				j++
			}
			if depth != 0 {
				return nil, &SyntaxError{Line: pos.Line, Col: pos.Col, Message: "unterminated f-string expression"}
			}
			exprSrc := raw[i+1 : j]
			if idx := strings.LastIndexAny(exprSrc, "!"); idx >= 0 && idx == len(exprSrc)-2 {
				exprSrc = exprSrc[:idx] // strip !r/!s conversion, formatting only
			}
			sub, err := parseExprString(exprSrc)
			if err != nil {
				return nil, err
			}
			parts = append(parts, ast.FStringPart{Value: sub})
			i = j + 1
			continue
		}
		if c == '}' && i+1 < len(raw) && raw[i+1] == '}' {
			lit.WriteByte('}')
			i += 2
			continue
		}
		lit.WriteByte(c)
		i++
	}
	if lit.Len() > 0 {
		parts = append(parts, ast.FStringPart{Literal: lit.String()})
	}
	return &ast.FString{Base: ast.Base{Pos: pos}, Parts: parts}, nil
}

// parseExprString parses a standalone expression from source text, used for
// f-string interpolations.
func parseExprString(src string) (ast.Expr, error) {
	lx := newLexer(src)
	toks, err := lx.tokenize()
	if err != nil {
		return nil, err
	}
	sp := &parser{toks: toks}
	e, err := sp.parseExprList()
	if err != nil {
		return nil, err
	}
	return e, nil
}
