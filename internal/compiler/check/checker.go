// Package check implements semantic analysis: name resolution, type
// inference, component shape validation, frame-scope escape analysis and
// system dependency ordering. It runs in two passes so declarations may
// reference each other regardless of lexical order.
package check

import (
	"github.com/lumen-lang/lumen/internal/compiler/ast"
	"github.com/lumen-lang/lumen/internal/compiler/diag"
	"github.com/lumen-lang/lumen/internal/compiler/token"
	"github.com/lumen-lang/lumen/internal/compiler/types"
)

// Checker holds all state for one compilation's semantic analysis.
type Checker struct {
	ctx    *types.Context
	diags  *diag.List
	global *types.Scope

	// declared struct/component placeholders, filled during resolution
	structs    map[string]*types.Struct
	components map[string]*types.Component
	funcSigs   map[string]*types.Func
	funcDecls  []*ast.FuncDecl

	// current function state
	scope  *types.Scope
	sig    *types.Func
	frames *frameSet
	loops  int
}

// Check runs semantic analysis over file, recording problems on diags.
// The returned context carries the registries codegen consumes; it is
// only meaningful when diags stayed empty.
func Check(file *ast.File, diags *diag.List) *types.Context {
	c := &Checker{
		ctx:        types.NewContext(),
		diags:      diags,
		global:     types.NewScope(types.NewUniverse()),
		structs:    make(map[string]*types.Struct),
		components: make(map[string]*types.Component),
		funcSigs:   make(map[string]*types.Func),
	}
	c.global.Insert(&types.Object{Name: "print", Kind: types.FuncObj})

	c.collectDecls(file)
	c.resolveDecls(file)
	c.validateSystems()
	c.checkBodies()
	return c.ctx
}

func (c *Checker) errorf(pos token.Pos, format string, args ...any) {
	c.diags.Errorf(pos, format, args...)
}

func (c *Checker) errorfHint(pos token.Pos, hint, format string, args ...any) {
	c.diags.ErrorfHint(pos, hint, format, args...)
}

// resolveType turns a syntactic type reference into a type, reporting
// unknown names with a nearest-match suggestion.
func (c *Checker) resolveType(te ast.TypeExpr) types.Type {
	switch t := te.(type) {
	case *ast.NamedType:
		obj := c.global.Lookup(t.Name)
		if obj == nil || obj.Kind != types.TypeObj {
			c.errorfHint(t.NamePos, suggest(t.Name, c.typeNames()), "unknown type '%s'", t.Name)
			return types.Invalid
		}
		return obj.Type
	case *ast.ArrayType:
		return &types.Array{Elem: c.resolveType(t.Elem)}
	case *ast.OptionalType:
		return &types.Optional{Elem: c.resolveType(t.Elem)}
	case *ast.QueryType:
		q := &types.Query{}
		for _, arg := range t.Args {
			comp, ok := c.components[arg.Name]
			if !ok {
				c.errorfHint(arg.NamePos, suggest(arg.Name, c.componentNames()),
					"query argument '%s' is not a declared component", arg.Name)
				continue
			}
			if q.Has(comp.Name) == nil {
				q.Components = append(q.Components, comp)
			}
		}
		if len(q.Components) == 0 {
			c.errorf(t.QueryPos, "query must name at least one component")
			return types.Invalid
		}
		return q
	}
	return types.Invalid
}

func (c *Checker) typeNames() []string {
	var names []string
	for _, obj := range c.globalObjects() {
		if obj.Kind == types.TypeObj {
			names = append(names, obj.Name)
		}
	}
	return names
}

func (c *Checker) componentNames() []string {
	names := make([]string, len(c.ctx.Components))
	for i, comp := range c.ctx.Components {
		names[i] = comp.Name
	}
	return names
}

func (c *Checker) globalObjects() []*types.Object {
	var objs []*types.Object
	for _, name := range c.global.VisibleNames() {
		objs = append(objs, c.global.Lookup(name))
	}
	return objs
}
