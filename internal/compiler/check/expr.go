package check

import (
	"github.com/lumen-lang/lumen/internal/compiler/ast"
	"github.com/lumen-lang/lumen/internal/compiler/token"
	"github.com/lumen-lang/lumen/internal/compiler/types"
)

// checkExpr computes an expression's type. want, when non-nil, is the
// type the context expects; numeric and null literals adopt it, array
// literals use it for element inference. It never relaxes checking for
// non-literal expressions.
func (c *Checker) checkExpr(e ast.Expr, want types.Type) types.Type {
	switch x := e.(type) {
	case *ast.IntLit:
		x.Type = types.Typ[types.I32]
		if want != nil && types.IsInteger(unwrapOptional(want)) {
			x.Type = unwrapOptional(want)
		}
		return x.Type
	case *ast.FloatLit:
		x.Type = types.Typ[types.F32]
		if want != nil && types.IsFloat(unwrapOptional(want)) {
			x.Type = unwrapOptional(want)
		}
		return x.Type
	case *ast.BoolLit:
		return types.Typ[types.Bool]
	case *ast.NullLit:
		if opt, ok := want.(*types.Optional); ok {
			return opt
		}
		c.errorf(x.LitPos, "null requires an optional type context")
		return types.Invalid
	case *ast.StringLit:
		return c.checkStringLit(x)
	case *ast.Ident:
		return c.checkIdent(x)
	case *ast.BinaryExpr:
		return c.checkBinary(x)
	case *ast.UnaryExpr:
		return c.checkUnary(x)
	case *ast.CallExpr:
		return c.checkCall(x)
	case *ast.MemberExpr:
		return c.checkMember(x)
	case *ast.IndexExpr:
		return c.checkIndex(x)
	case *ast.ArrayLit:
		return c.checkArrayLit(x, want)
	case *ast.StructLit:
		return c.checkStructLit(x)
	case *ast.AllocArrayExpr:
		return c.checkAllocArray(x)
	case *ast.UnwrapExpr:
		t := c.checkExpr(x.X, nil)
		if opt, ok := t.(*types.Optional); ok {
			return opt.Elem
		}
		if t != types.Invalid {
			c.errorf(x.Pos(), "cannot unwrap non-optional type %s", t)
		}
		return types.Invalid
	}
	return types.Invalid
}

// unwrapOptional lets a literal adopt the element type of an expected
// optional (`let x: ?i64 = 1;`).
func unwrapOptional(t types.Type) types.Type {
	if opt, ok := t.(*types.Optional); ok {
		return opt.Elem
	}
	return t
}

func (c *Checker) checkStringLit(x *ast.StringLit) types.Type {
	for i := range x.Parts {
		part := &x.Parts[i]
		if part.Var == "" {
			continue
		}
		obj := c.scope.Lookup(part.Var)
		if obj == nil || obj.Kind != types.VarObj {
			c.errorfHint(part.PartPos, suggest(part.Var, c.scope.VisibleNames()),
				"undefined variable '%s' in string interpolation", part.Var)
			part.VarType = types.Invalid
			continue
		}
		if !types.IsPrintable(obj.Type) && obj.Type != types.Invalid {
			c.errorf(part.PartPos, "cannot interpolate variable '%s' of type %s (only numbers, bools and strings)",
				part.Var, obj.Type)
		}
		part.VarType = obj.Type
	}
	return types.Typ[types.String]
}

func (c *Checker) checkIdent(x *ast.Ident) types.Type {
	obj := c.scope.Lookup(x.Name)
	if obj == nil {
		c.errorfHint(x.NamePos, suggest(x.Name, c.scope.VisibleNames()), "undefined variable '%s'", x.Name)
		return types.Invalid
	}
	switch obj.Kind {
	case types.VarObj:
		return obj.Type
	case types.FuncObj:
		c.errorf(x.NamePos, "function '%s' must be called", x.Name)
	case types.TypeObj:
		c.errorf(x.NamePos, "type '%s' is not a value", x.Name)
	case types.ResourceObj:
		c.errorf(x.NamePos, "resource '%s' cannot be used as a value", x.Name)
	case types.MeshObj:
		c.errorf(x.NamePos, "mesh '%s' cannot be used as a value", x.Name)
	}
	return types.Invalid
}

func (c *Checker) checkBinary(x *ast.BinaryExpr) types.Type {
	lt := c.checkExpr(x.L, nil)
	rt := c.checkExpr(x.R, lt)
	if !types.Identical(lt, rt) {
		// Give a left-hand literal a second chance to adopt the right
		// side's type (`1 + x` with x: i64).
		if adopted := c.adoptLiteral(x.L, rt); adopted != nil {
			lt = adopted
		} else {
			c.errorf(x.OpPos, "type mismatch: %s and %s for operator %s", lt, rt, x.Op)
			return types.Invalid
		}
	}

	switch x.Op {
	case token.PLUS:
		if types.IsNumeric(lt) || types.IsString(lt) {
			return lt
		}
	case token.MINUS, token.STAR, token.SLASH:
		if types.IsNumeric(lt) {
			return lt
		}
	case token.PERCENT:
		if types.IsInteger(lt) {
			return lt
		}
	case token.EQ, token.NEQ:
		if types.IsNumeric(lt) || types.IsBool(lt) || types.IsString(lt) {
			return types.Typ[types.Bool]
		}
	case token.LT, token.LE, token.GT, token.GE:
		if types.IsNumeric(lt) {
			return types.Typ[types.Bool]
		}
	case token.ANDAND, token.OROR:
		if types.IsBool(lt) {
			return types.Typ[types.Bool]
		}
	}
	if lt != types.Invalid {
		c.errorf(x.OpPos, "operator %s is not defined on %s", x.Op, lt)
	}
	return types.Invalid
}

// adoptLiteral retypes a bare numeric literal to the given type if it is
// of the same numeric class; it returns nil when no adoption happened.
func (c *Checker) adoptLiteral(e ast.Expr, to types.Type) types.Type {
	switch lit := e.(type) {
	case *ast.IntLit:
		if types.IsInteger(to) {
			lit.Type = to
			return to
		}
	case *ast.FloatLit:
		if types.IsFloat(to) {
			lit.Type = to
			return to
		}
	}
	return nil
}

func (c *Checker) checkUnary(x *ast.UnaryExpr) types.Type {
	t := c.checkExpr(x.X, nil)
	switch x.Op {
	case token.MINUS:
		if types.IsNumeric(t) {
			return t
		}
		if t != types.Invalid {
			c.errorf(x.OpPos, "operator - requires a numeric operand, got %s", t)
		}
	case token.NOT:
		if types.IsBool(t) {
			return t
		}
		if t != types.Invalid {
			c.errorf(x.OpPos, "operator ! requires a bool operand, got %s", t)
		}
	}
	return types.Invalid
}

func (c *Checker) checkCall(x *ast.CallExpr) types.Type {
	ident, ok := x.Fun.(*ast.Ident)
	if !ok {
		c.errorf(x.Fun.Pos(), "expression is not callable")
		for _, arg := range x.Args {
			c.checkExpr(arg, nil)
		}
		return types.Invalid
	}

	// print accepts any number of printable arguments.
	if ident.Name == "print" {
		for _, arg := range x.Args {
			at := c.checkExpr(arg, nil)
			if !types.IsPrintable(at) && at != types.Invalid {
				c.errorf(arg.Pos(), "cannot print value of type %s", at)
			}
		}
		return types.Typ[types.Void]
	}

	obj := c.scope.Lookup(ident.Name)
	if obj == nil {
		c.errorfHint(ident.NamePos, suggest(ident.Name, c.scope.VisibleNames()), "undefined function '%s'", ident.Name)
		return types.Invalid
	}
	if obj.Kind != types.FuncObj {
		c.errorf(ident.NamePos, "'%s' is a %s, not a function", ident.Name, obj.Kind)
		return types.Invalid
	}
	sig, _ := obj.Type.(*types.Func)
	if sig == nil {
		return types.Invalid
	}

	if len(x.Args) != len(sig.Params) {
		c.errorf(ident.NamePos, "'%s' takes %d argument(s), got %d", ident.Name, len(sig.Params), len(x.Args))
	}
	for i, arg := range x.Args {
		if i >= len(sig.Params) {
			c.checkExpr(arg, nil)
			continue
		}
		at := c.checkExpr(arg, sig.Params[i].Type)
		if !c.assignCompatible(sig.Params[i].Type, at) {
			c.errorf(arg.Pos(), "argument %d to '%s': expected %s, got %s", i+1, ident.Name, sig.Params[i].Type, at)
		}
	}
	return sig.Result
}

func (c *Checker) checkMember(x *ast.MemberExpr) types.Type {
	// entity.Component.field: resolve the whole chain here so the inner
	// access never has to stand alone.
	if inner, ok := x.X.(*ast.MemberExpr); ok {
		if entIdent, ok := inner.X.(*ast.Ident); ok {
			if obj := c.scope.Lookup(entIdent.Name); obj != nil {
				if ent, isEnt := obj.Type.(*types.Entity); isEnt {
					return c.checkEntityAccess(x, inner, entIdent.Name, ent)
				}
			}
		}
	}

	xt := c.checkExpr(x.X, nil)
	switch t := xt.(type) {
	case *types.Struct:
		if f := t.Field(x.Name); f != nil {
			return f.Type
		}
		c.errorfHint(x.NamePos, suggest(x.Name, fieldNames(t.Fields)), "%s has no field '%s'", t.Name, x.Name)
	case *types.Component:
		if f := t.Field(x.Name); f != nil {
			return f.Type
		}
		c.errorfHint(x.NamePos, suggest(x.Name, fieldNames(t.Fields)), "component %s has no field '%s'", t.Name, x.Name)
	case *types.Entity:
		c.errorf(x.NamePos, "entity component access needs a field (entity.%s.<field>)", x.Name)
	case *types.Optional:
		c.errorfHint(x.NamePos, "use .unwrap() first", "cannot access field '%s' on optional type %s", x.Name, t)
	case *types.Frame:
		c.errorf(x.NamePos, "FrameArena has no method '%s'", x.Name)
	default:
		if xt != types.Invalid {
			c.errorf(x.NamePos, "type %s has no field '%s'", xt, x.Name)
		}
	}
	return types.Invalid
}

func (c *Checker) checkEntityAccess(outer, inner *ast.MemberExpr, entityVar string, ent *types.Entity) types.Type {
	comp := ent.Query.Has(inner.Name)
	if comp == nil {
		c.errorfHint(inner.NamePos, suggest(inner.Name, queryNames(ent.Query)),
			"component '%s' is not part of %s", inner.Name, ent.Query)
		return types.Invalid
	}
	elem := comp.FieldElem(outer.Name)
	if elem == nil {
		c.errorfHint(outer.NamePos, suggest(outer.Name, fieldNames(comp.Fields)),
			"component %s has no field '%s'", comp.Name, outer.Name)
		return types.Invalid
	}
	outer.EntityComp = comp
	outer.EntityVar = entityVar
	return elem
}

func (c *Checker) checkIndex(x *ast.IndexExpr) types.Type {
	xt := c.checkExpr(x.X, nil)
	it := c.checkExpr(x.Index, nil)
	if !types.IsInteger(it) && it != types.Invalid {
		c.errorf(x.Index.Pos(), "array index must be an integer, got %s", it)
	}
	if arr, ok := xt.(*types.Array); ok {
		return arr.Elem
	}
	if xt != types.Invalid {
		c.errorf(x.X.Pos(), "cannot index into %s", xt)
	}
	return types.Invalid
}

func (c *Checker) checkArrayLit(x *ast.ArrayLit, want types.Type) types.Type {
	var elemWant types.Type
	if arr, ok := unwrapOptional(want).(*types.Array); ok {
		elemWant = arr.Elem
	}

	if len(x.Elems) == 0 {
		if elemWant == nil {
			c.errorfHint(x.Lbrack, "provide an explicit type: let arr: [T] = [];",
				"cannot infer the element type of an empty array literal")
			return types.Invalid
		}
		x.Elem = elemWant
		return &types.Array{Elem: elemWant}
	}

	first := c.checkExpr(x.Elems[0], elemWant)
	for i := 1; i < len(x.Elems); i++ {
		et := c.checkExpr(x.Elems[i], first)
		if !types.Identical(et, first) {
			c.errorf(x.Elems[i].Pos(), "array element %d has type %s, expected %s", i, et, first)
			return types.Invalid
		}
	}
	x.Elem = first
	return &types.Array{Elem: first}
}

func (c *Checker) checkStructLit(x *ast.StructLit) types.Type {
	obj := c.global.Lookup(x.Name)
	if obj == nil || obj.Kind != types.TypeObj {
		c.errorfHint(x.NamePos, suggest(x.Name, c.typeNames()), "unknown type '%s'", x.Name)
		return types.Invalid
	}

	var fields []types.Field
	var result types.Type
	switch t := obj.Type.(type) {
	case *types.Struct:
		fields, result = t.Fields, t
		x.Struct = t
	case *types.Component:
		fields, result = t.Fields, t
	default:
		c.errorf(x.NamePos, "type %s cannot be constructed with a struct literal", obj.Type)
		return types.Invalid
	}

	// Aggregate initialization in the target needs every field, in
	// declaration order.
	if len(x.Fields) != len(fields) {
		c.errorf(x.NamePos, "struct literal for %s must initialize all %d field(s), got %d", x.Name, len(fields), len(x.Fields))
		for _, f := range x.Fields {
			c.checkExpr(f.Value, nil)
		}
		return result
	}
	for i, f := range x.Fields {
		if f.Name != fields[i].Name {
			c.errorfHint(f.NamePos, "fields must appear in declaration order",
				"expected field '%s' at position %d of %s literal, got '%s'", fields[i].Name, i+1, x.Name, f.Name)
			c.checkExpr(f.Value, nil)
			continue
		}
		vt := c.checkExpr(f.Value, fields[i].Type)
		if !c.assignCompatible(fields[i].Type, vt) {
			c.errorf(f.Value.Pos(), "field '%s' of %s has type %s, got %s", f.Name, x.Name, fields[i].Type, vt)
		}
	}
	return result
}

func (c *Checker) checkAllocArray(x *ast.AllocArrayExpr) types.Type {
	at := c.checkExpr(x.Arena, nil)
	if _, ok := at.(*types.Frame); !ok && at != types.Invalid {
		c.errorf(x.Arena.Pos(), "alloc_array requires a FrameArena, got %s", at)
	}
	ct := c.checkExpr(x.Count, nil)
	if !types.IsInteger(ct) && ct != types.Invalid {
		c.errorf(x.Count.Pos(), "alloc_array count must be an integer, got %s", ct)
	}
	x.ElemType = c.resolveType(x.Elem)
	return &types.Array{Elem: x.ElemType}
}

func fieldNames(fields []types.Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

func queryNames(q *types.Query) []string {
	names := make([]string, len(q.Components))
	for i, comp := range q.Components {
		names[i] = comp.Name
	}
	return names
}
