package check

import (
	"github.com/lumen-lang/lumen/internal/compiler/ast"
	"github.com/lumen-lang/lumen/internal/compiler/token"
	"github.com/lumen-lang/lumen/internal/compiler/types"
)

func (c *Checker) checkBodies() {
	for _, d := range c.funcDecls {
		c.checkFuncBody(d)
	}
}

func (c *Checker) checkFuncBody(d *ast.FuncDecl) {
	sig := c.funcSigs[d.Name]
	if sig == nil {
		return
	}
	c.sig = sig
	c.scope = types.NewScope(c.global)
	c.frames = newFrameSet()
	c.loops = 0

	for _, p := range sig.Params {
		c.scope.Insert(&types.Object{Name: p.Name, Kind: types.VarObj, Type: p.Type, Pos: p.Pos})
		c.frames.declare(p.Name, false)
	}
	c.checkStmts(d.Body.Stmts)

	c.sig = nil
	c.scope = nil
	c.frames = nil
}

// pushScope enters a nested block scope; the returned func restores the
// previous state.
func (c *Checker) pushScope() func() {
	prev := c.scope
	c.scope = types.NewScope(prev)
	c.frames.push()
	return func() {
		c.scope = prev
		c.frames.pop()
	}
}

func (c *Checker) checkStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		c.checkStmt(s)
	}
}

func (c *Checker) checkBlock(b *ast.BlockStmt) {
	pop := c.pushScope()
	defer pop()
	c.checkStmts(b.Stmts)
}

func (c *Checker) checkStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.LetStmt:
		c.checkLet(st)
	case *ast.AssignStmt:
		c.checkAssign(st)
	case *ast.IfStmt:
		c.checkIf(st)
	case *ast.WhileStmt:
		c.checkCond(st.Cond)
		c.loops++
		c.checkBlock(st.Body)
		c.loops--
	case *ast.LoopStmt:
		c.loops++
		c.checkBlock(st.Body)
		c.loops--
	case *ast.ForInStmt:
		c.checkForIn(st)
	case *ast.ReturnStmt:
		c.checkReturn(st)
	case *ast.DeferStmt:
		c.checkExpr(st.Call, nil)
	case *ast.MatchStmt:
		c.checkMatch(st)
	case *ast.BreakStmt:
		if c.loops == 0 {
			c.errorf(st.BreakPos, "break outside of a loop")
		}
	case *ast.ContinueStmt:
		if c.loops == 0 {
			c.errorf(st.ContPos, "continue outside of a loop")
		}
	case *ast.BlockStmt:
		c.checkBlock(st)
	case *ast.ExprStmt:
		c.checkExpr(st.X, nil)
	}
}

func (c *Checker) checkLet(st *ast.LetStmt) {
	var want types.Type
	if st.Type != nil {
		want = c.resolveType(st.Type)
	}
	got := c.checkExpr(st.Value, want)

	t := got
	if want != nil {
		if !c.assignCompatible(want, got) {
			c.errorf(st.Value.Pos(), "cannot initialize '%s' of type %s with value of type %s", st.Name, want, got)
		}
		t = want
	}
	if t == nil {
		t = types.Invalid
	}

	if prev := c.scope.LookupLocal(st.Name); prev != nil {
		c.errorf(st.NamePos, "'%s' redeclared in this block (previous declaration at %s)", st.Name, prev.Pos)
		return
	}
	c.scope.Insert(&types.Object{Name: st.Name, Kind: types.VarObj, Type: t, Pos: st.NamePos})
	c.frames.declare(st.Name, c.isFrameSource(st.Value))
}

// assignCompatible applies the assignment rule: exact identity, plus
// implicit wrapping of T into ?T.
func (c *Checker) assignCompatible(want, got types.Type) bool {
	if types.Identical(want, got) {
		return true
	}
	if opt, ok := want.(*types.Optional); ok {
		return types.Identical(opt.Elem, got)
	}
	return false
}

func (c *Checker) checkAssign(st *ast.AssignStmt) {
	tt := c.checkExpr(st.Target, nil)
	vt := c.checkExpr(st.Value, tt)

	if st.Op != token.ASSIGN {
		if !types.IsNumeric(tt) && tt != types.Invalid {
			c.errorf(st.OpPos, "operator %s requires a numeric target, got %s", st.Op, tt)
			return
		}
		if !types.Identical(tt, vt) {
			c.errorf(st.Value.Pos(), "type mismatch in %s: %s and %s", st.Op, tt, vt)
		}
	} else if !c.assignCompatible(tt, vt) {
		c.errorf(st.Value.Pos(), "cannot assign value of type %s to target of type %s", vt, tt)
	}

	// Assignment propagation for the escape analysis.
	if ident, ok := st.Target.(*ast.Ident); ok && c.isFrameSource(st.Value) {
		c.frames.mark(ident.Name)
	}
}

// isFrameSource reports whether an expression yields frame-scoped memory:
// a frame allocation call, or a variable already known to hold one.
func (c *Checker) isFrameSource(e ast.Expr) bool {
	switch x := e.(type) {
	case *ast.AllocArrayExpr:
		return true
	case *ast.Ident:
		return c.frames.tainted(x.Name)
	}
	return false
}

// checkCond validates an if/while condition: bool, or an optional tested
// for presence.
func (c *Checker) checkCond(cond ast.Expr) {
	t := c.checkExpr(cond, nil)
	if types.IsBool(t) {
		return
	}
	if _, ok := t.(*types.Optional); ok {
		return
	}
	if t != types.Invalid {
		c.errorf(cond.Pos(), "condition must be bool or an optional, got %s", t)
	}
}

func (c *Checker) checkIf(st *ast.IfStmt) {
	c.checkCond(st.Cond)
	c.checkBlock(st.Then)
	switch e := st.Else.(type) {
	case *ast.BlockStmt:
		c.checkBlock(e)
	case *ast.IfStmt:
		c.checkIf(e)
	}
}

func (c *Checker) checkForIn(st *ast.ForInStmt) {
	it := c.checkExpr(st.Iter, nil)

	pop := c.pushScope()
	defer pop()
	c.loops++
	defer func() { c.loops-- }()

	switch t := it.(type) {
	case *types.Query:
		st.Query = t
		c.scope.Insert(&types.Object{Name: st.Name, Kind: types.VarObj, Type: &types.Entity{Query: t}, Pos: st.NamePos})
	case *types.Array:
		st.Elem = t.Elem
		c.scope.Insert(&types.Object{Name: st.Name, Kind: types.VarObj, Type: t.Elem, Pos: st.NamePos})
	default:
		if it != types.Invalid {
			c.errorf(st.Iter.Pos(), "cannot iterate over %s (expected a query or an array)", it)
		}
		c.scope.Insert(&types.Object{Name: st.Name, Kind: types.VarObj, Type: types.Invalid, Pos: st.NamePos})
	}
	c.frames.declare(st.Name, false)
	c.checkStmts(st.Body.Stmts)
}

func (c *Checker) checkReturn(st *ast.ReturnStmt) {
	void := c.sig.Result == types.Typ[types.Void]
	if st.Value == nil {
		if !void {
			c.errorf(st.RetPos, "missing return value ('%s' returns %s)", c.sig.Name, c.sig.Result)
		}
		return
	}
	if void {
		c.errorf(st.RetPos, "function '%s' does not return a value", c.sig.Name)
		c.checkExpr(st.Value, nil)
		return
	}

	got := c.checkExpr(st.Value, c.sig.Result)
	if !c.assignCompatible(c.sig.Result, got) {
		c.errorf(st.Value.Pos(), "return type mismatch: expected %s, got %s", c.sig.Result, got)
	}

	if c.isFrameSource(st.Value) {
		name := "<temporary>"
		if ident, ok := st.Value.(*ast.Ident); ok {
			name = ident.Name
		}
		c.errorfHint(st.RetPos, "allocate on the heap, or pass the FrameArena in from the caller",
			"cannot return frame-scoped allocation '%s': frame-scoped memory is only valid within the current frame", name)
	}
}

func (c *Checker) checkMatch(st *ast.MatchStmt) {
	scrut := c.checkExpr(st.Scrutinee, nil)
	for _, arm := range st.Arms {
		pop := c.pushScope()
		switch pat := arm.Pattern.(type) {
		case *ast.LiteralPattern:
			pt := c.checkExpr(pat.Lit, scrut)
			if !types.Identical(pt, scrut) {
				c.errorf(pat.Pos(), "pattern type %s does not match scrutinee type %s", pt, scrut)
			}
		case *ast.BindPattern:
			c.scope.Insert(&types.Object{Name: pat.Name, Kind: types.VarObj, Type: scrut, Pos: pat.NamePos})
			c.frames.declare(pat.Name, false)
		case *ast.WildcardPattern:
		}
		c.checkStmts(arm.Body.Stmts)
		pop()
	}
}
