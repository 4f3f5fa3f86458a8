package compiler

import "github.com/chonkie-inc/littrs/ast"

// collectLocals walks a function or lambda body (never descending into a
// nested FuncDef, Lambda, or Comp — those own their own scope) and returns
// every name assigned somewhere in it. Per Python's scoping rule, a name
// assigned anywhere in a function is local to that function for its whole
// body, even on lines that run before the assignment (that case surfaces
// as a runtime NameError from the VM, same as CPython's UnboundLocalError
// collapses into under this subset's simplified name-resolution model).
func collectLocals(body []ast.Stmt) []string {
	seen := map[string]bool{}
	var order []string
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		order = append(order, name)
	}
	var walkTarget func(e ast.Expr)
	walkTarget = func(e ast.Expr) {
		switch t := e.(type) {
		case *ast.Name:
			add(t.Id)
		case *ast.TupleLit:
			for _, el := range t.Elts {
				walkTarget(el)
			}
		case *ast.ListLit:
			for _, el := range t.Elts {
				walkTarget(el)
			}
		}
	}
	var walkStmts func(stmts []ast.Stmt)
	walkStmts = func(stmts []ast.Stmt) {
		for _, s := range stmts {
			switch st := s.(type) {
			case *ast.Assign:
				for _, tgt := range st.Targets {
					walkTarget(tgt)
				}
			case *ast.AugAssign:
				walkTarget(st.Target)
			case *ast.For:
				walkTarget(st.Target)
				walkStmts(st.Body)
				walkStmts(st.Orelse)
			case *ast.While:
				walkStmts(st.Body)
				walkStmts(st.Orelse)
			case *ast.If:
				walkStmts(st.Body)
				walkStmts(st.Orelse)
			case *ast.Try:
				walkStmts(st.Body)
				for _, h := range st.Handlers {
					add(h.Name)
					walkStmts(h.Body)
				}
				walkStmts(st.Orelse)
			case *ast.FuncDef:
				add(st.Name)
			case *ast.Import:
				for i, name := range st.Names {
					if st.Asnames[i] != "" {
						add(st.Asnames[i])
					} else {
						add(topLevelSegment(name))
					}
				}
			case *ast.ImportFrom:
				for i, name := range st.Names {
					if name == "*" {
						continue
					}
					if st.Asnames[i] != "" {
						add(st.Asnames[i])
					} else {
						add(name)
					}
				}
			}
		}
	}
	walkStmts(body)
	return order
}

func topLevelSegment(dotted string) string {
	for i := 0; i < len(dotted); i++ {
		if dotted[i] == '.' {
			return dotted[:i]
		}
	}
	return dotted
}
