package codegen

import (
	"fmt"
	"strings"

	"github.com/lumen-lang/lumen/internal/compiler/ast"
	"github.com/lumen-lang/lumen/internal/compiler/types"
)

// ---------------------------------------------------------------- statements

func (g *generator) stmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.LetStmt:
		g.letStmt(st)
	case *ast.AssignStmt:
		g.emitf("%s %s %s;", g.expr(st.Target), st.Op, g.exprTop(st.Value))
	case *ast.IfStmt:
		g.ifStmt(st)
	case *ast.WhileStmt:
		g.emitf("while (%s) {", g.exprTop(st.Cond))
		g.stmtsIndented(st.Body.Stmts)
		g.emit("}")
	case *ast.LoopStmt:
		g.emit("for (;;) {")
		g.stmtsIndented(st.Body.Stmts)
		g.emit("}")
	case *ast.ForInStmt:
		g.forInStmt(st)
	case *ast.ReturnStmt:
		if st.Value == nil {
			g.emit("return;")
		} else {
			g.emitf("return %s;", g.exprTop(st.Value))
		}
	case *ast.DeferStmt:
		g.emitf("auto defer_%d = make_defer([&]() { %s; });", g.deferSeq, g.exprTop(st.Call))
		g.deferSeq++
	case *ast.MatchStmt:
		g.matchStmt(st)
	case *ast.BreakStmt:
		g.emit("break;")
	case *ast.ContinueStmt:
		g.emit("continue;")
	case *ast.BlockStmt:
		g.emit("{")
		g.stmtsIndented(st.Stmts)
		g.emit("}")
	case *ast.ExprStmt:
		g.emitf("%s;", g.exprTop(st.X))
	default:
		g.internalf("unknown statement %T", s)
	}
}

func (g *generator) stmtsIndented(stmts []ast.Stmt) {
	g.in()
	for _, s := range stmts {
		g.stmt(s)
	}
	g.out()
}

func (g *generator) letStmt(st *ast.LetStmt) {
	val := g.exprTop(st.Value)
	if st.Type != nil {
		g.emitf("%s %s = %s;", cppType(g.resolveType(st.Type)), st.Name, val)
		return
	}
	g.emitf("auto %s = %s;", st.Name, val)
}

func (g *generator) ifStmt(st *ast.IfStmt) {
	g.emitf("if (%s) {", g.exprTop(st.Cond))
	g.stmtsIndented(st.Then.Stmts)
	for {
		switch e := st.Else.(type) {
		case *ast.BlockStmt:
			g.emit("} else {")
			g.stmtsIndented(e.Stmts)
			g.emit("}")
			return
		case *ast.IfStmt:
			g.emitf("} else if (%s) {", g.exprTop(e.Cond))
			g.stmtsIndented(e.Then.Stmts)
			st = e
		default:
			g.emit("}")
			return
		}
	}
}

func (g *generator) forInStmt(st *ast.ForInStmt) {
	if st.Query != nil {
		iter := g.expr(st.Iter)
		idx := st.Name + "_index"
		g.emitf("for (size_t %s = 0; %s < %s.size(); ++%s) {", idx, idx, iter, idx)
		prev, shadowed := g.entityQueries[st.Name]
		g.entityQueries[st.Name] = iter
		g.stmtsIndented(st.Body.Stmts)
		if shadowed {
			g.entityQueries[st.Name] = prev
		} else {
			delete(g.entityQueries, st.Name)
		}
		g.emit("}")
		return
	}
	g.emitf("for (auto& %s : %s) {", st.Name, g.expr(st.Iter))
	g.stmtsIndented(st.Body.Stmts)
	g.emit("}")
}

// matchStmt lowers to a branch chain over a synthesized temporary so the
// scrutinee is evaluated exactly once. A bind or wildcard arm ends the
// chain; arms after it are unreachable and not emitted.
func (g *generator) matchStmt(st *ast.MatchStmt) {
	tmp := fmt.Sprintf("__match_%d", g.matchSeq)
	g.matchSeq++

	g.emit("{")
	g.in()
	g.emitf("auto %s = %s;", tmp, g.exprTop(st.Scrutinee))

	chain := false
	for _, arm := range st.Arms {
		switch p := arm.Pattern.(type) {
		case *ast.LiteralPattern:
			if chain {
				g.emitf("} else if (%s == %s) {", tmp, g.expr(p.Lit))
			} else {
				g.emitf("if (%s == %s) {", tmp, g.expr(p.Lit))
				chain = true
			}
			g.stmtsIndented(arm.Body.Stmts)
		case *ast.BindPattern:
			if chain {
				g.emit("} else {")
			} else {
				g.emit("{")
			}
			g.in()
			g.emitf("auto %s = %s;", p.Name, tmp)
			for _, s := range arm.Body.Stmts {
				g.stmt(s)
			}
			g.out()
			g.emit("}")
			g.out()
			g.emit("}")
			return
		case *ast.WildcardPattern:
			if chain {
				g.emit("} else {")
			} else {
				g.emit("{")
			}
			g.stmtsIndented(arm.Body.Stmts)
			g.emit("}")
			g.out()
			g.emit("}")
			return
		}
	}
	if chain {
		g.emit("}")
	}
	g.out()
	g.emit("}")
}

// --------------------------------------------------------------- expressions

// exprTop renders a statement-position expression, dropping the outermost
// parentheses a binary expression would otherwise carry.
func (g *generator) exprTop(e ast.Expr) string {
	if be, ok := e.(*ast.BinaryExpr); ok {
		return fmt.Sprintf("%s %s %s", g.expr(be.L), be.Op, g.expr(be.R))
	}
	return g.expr(e)
}

func (g *generator) expr(e ast.Expr) string {
	switch x := e.(type) {
	case *ast.Ident:
		// The main rename applies to function references only; callExpr
		// and the signature emitters handle those.
		return x.Name
	case *ast.IntLit:
		return x.Raw
	case *ast.FloatLit:
		return g.floatLit(x)
	case *ast.BoolLit:
		return cppBool(x.Value)
	case *ast.NullLit:
		return "std::nullopt"
	case *ast.StringLit:
		return g.stringLit(x)
	case *ast.BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", g.expr(x.L), x.Op, g.expr(x.R))
	case *ast.UnaryExpr:
		return fmt.Sprintf("(%s%s)", x.Op, g.expr(x.X))
	case *ast.CallExpr:
		return g.callExpr(x)
	case *ast.MemberExpr:
		return g.memberExpr(x)
	case *ast.IndexExpr:
		return fmt.Sprintf("%s[%s]", g.expr(x.X), g.exprTop(x.Index))
	case *ast.ArrayLit:
		return g.arrayLit(x)
	case *ast.StructLit:
		return g.structLit(x)
	case *ast.AllocArrayExpr:
		return fmt.Sprintf("%s.alloc_array<%s>(%s)",
			g.expr(x.Arena), cppType(x.ElemType), g.exprTop(x.Count))
	case *ast.UnwrapExpr:
		return g.expr(x.X) + ".value()"
	}
	g.internalf("unknown expression %T", e)
	return ""
}

func (g *generator) floatLit(x *ast.FloatLit) string {
	if b, ok := x.Type.(*types.Basic); ok && b.Kind == types.F64 {
		return x.Raw
	}
	return x.Raw + "f"
}

// stringLit lowers a (possibly interpolated) string literal to a
// std::string-typed concatenation. Every part yields std::string so the
// chain is well formed regardless of which part comes first.
func (g *generator) stringLit(x *ast.StringLit) string {
	if len(x.Parts) == 0 {
		return `std::string("")`
	}
	parts := make([]string, len(x.Parts))
	for i, p := range x.Parts {
		if p.Var == "" {
			parts[i] = "std::string(" + cppQuote(p.Text) + ")"
			continue
		}
		switch {
		case types.IsString(p.VarType):
			parts[i] = p.Var
		case types.IsBool(p.VarType):
			parts[i] = fmt.Sprintf(`std::string(%s ? "true" : "false")`, p.Var)
		default:
			parts[i] = fmt.Sprintf("std::to_string(%s)", p.Var)
		}
	}
	return strings.Join(parts, " + ")
}

func (g *generator) callExpr(x *ast.CallExpr) string {
	ident, ok := x.Fun.(*ast.Ident)
	if !ok {
		g.internalf("call through non-identifier callee %s", x.Fun)
	}
	args := make([]string, len(x.Args))
	for i, a := range x.Args {
		args[i] = g.exprTop(a)
	}
	if ident.Name == "print" {
		chain := append([]string{"std::cout"}, args...)
		chain = append(chain, "std::endl")
		return strings.Join(chain, " << ")
	}
	if g.launchKernel != "" && ident.Name == g.launchKernel {
		return fmt.Sprintf("LUMEN_LAUNCH(%s, %s)", ident.Name, strings.Join(args, ", "))
	}
	return fmt.Sprintf("%s(%s)", funcName(ident.Name), strings.Join(args, ", "))
}

// memberExpr handles the storage dispatch for entity accesses: row storage
// indexes the record vector, column storage indexes the per-field array.
func (g *generator) memberExpr(x *ast.MemberExpr) string {
	if x.EntityComp != nil {
		query, ok := g.entityQueries[x.EntityVar]
		if !ok {
			g.internalf("entity access through '%s' outside its loop", x.EntityVar)
		}
		idx := x.EntityVar + "_index"
		member := query + "." + pluralize(x.EntityComp.Name)
		if x.EntityComp.Storage == types.StorageColumns {
			return fmt.Sprintf("%s.%s[%s]", member, x.Name, idx)
		}
		return fmt.Sprintf("%s[%s].%s", member, idx, x.Name)
	}
	return g.expr(x.X) + "." + x.Name
}

func (g *generator) arrayLit(x *ast.ArrayLit) string {
	elem := "int32_t"
	if x.Elem != nil {
		elem = cppType(x.Elem)
	}
	elems := make([]string, len(x.Elems))
	for i, e := range x.Elems {
		elems[i] = g.exprTop(e)
	}
	return fmt.Sprintf("std::vector<%s>{%s}", elem, strings.Join(elems, ", "))
}

// structLit emits constructor syntax for the built-in math aggregates
// (the runtime gives them constructors) and brace initialization for user
// aggregates. The checker guarantees every field appears in declaration
// order, so positional emission is safe.
func (g *generator) structLit(x *ast.StructLit) string {
	vals := make([]string, len(x.Fields))
	for i, f := range x.Fields {
		vals[i] = g.exprTop(f.Value)
	}
	if x.Struct != nil && x.Struct.Builtin {
		return fmt.Sprintf("%s(%s)", x.Name, strings.Join(vals, ", "))
	}
	return fmt.Sprintf("%s{%s}", x.Name, strings.Join(vals, ", "))
}
