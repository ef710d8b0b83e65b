package check

import (
	"fmt"
	"strings"

	"github.com/lumen-lang/lumen/internal/compiler/ast"
	"github.com/lumen-lang/lumen/internal/compiler/token"
	"github.com/lumen-lang/lumen/internal/compiler/types"
)

// shaderStageExts maps each shader stage to its canonical source
// extension. Precompiled .spv and generic .glsl are accepted for any
// stage.
var shaderStageExts = map[string]string{
	"vertex":   ".vert",
	"fragment": ".frag",
	"compute":  ".comp",
	"geometry": ".geom",
}

var bindingKinds = map[string]bool{
	"uniform": true,
	"sampler": true,
	"storage": true,
}

// collectDecls is the forward-declaration pass: every top-level name is
// registered (with placeholder types for aggregates) so later references
// resolve regardless of declaration order.
func (c *Checker) collectDecls(file *ast.File) {
	systemIndex := 0
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.StructDecl:
			c.checkAttrPlacement(d.Attrs, "struct", nil)
			st := &types.Struct{Name: d.Name}
			if !c.declareGlobal(d.Name, d.NamePos, &types.Object{Name: d.Name, Kind: types.TypeObj, Type: st, Pos: d.NamePos}) {
				continue
			}
			c.structs[d.Name] = st
			c.ctx.Structs = append(c.ctx.Structs, st)

		case *ast.ComponentDecl:
			c.checkAttrPlacement(d.Attrs, "component", map[string]bool{"hot": true})
			storage := types.StorageRows
			if d.Soa {
				storage = types.StorageColumns
			}
			comp := &types.Component{Name: d.Name, Storage: storage, Hot: hasAttr(d.Attrs, "hot"), Pos: d.NamePos}
			if !c.declareGlobal(d.Name, d.NamePos, &types.Object{Name: d.Name, Kind: types.TypeObj, Type: comp, Pos: d.NamePos}) {
				continue
			}
			c.components[d.Name] = comp
			c.ctx.Components = append(c.ctx.Components, comp)

		case *ast.TypeAliasDecl:
			c.checkAttrPlacement(d.Attrs, "type alias", nil)
			// Target resolved in the second pass; reserve the name.
			c.declareGlobal(d.Name, d.NamePos, &types.Object{Name: d.Name, Kind: types.TypeObj, Type: types.Invalid, Pos: d.NamePos})

		case *ast.FuncDecl:
			c.checkFuncAttrs(d)
			if !c.declareGlobal(d.Name, d.NamePos, &types.Object{Name: d.Name, Kind: types.FuncObj, Pos: d.NamePos}) {
				continue
			}
			c.funcDecls = append(c.funcDecls, d)
			if sys := d.Attr("system"); sys != nil {
				c.collectSystem(d, sys, systemIndex)
				systemIndex++
			}

		case *ast.PipelineDecl:
			c.checkAttrPlacement(d.Attrs, "pipeline", nil)
			c.collectPipeline(d)

		case *ast.ShaderDecl:
			c.checkAttrPlacement(d.Attrs, "shader", map[string]bool{"hot": true})
			c.checkShaderStage(d.Stage, d.Path, d.StagePos)
			c.ctx.Shaders = append(c.ctx.Shaders, &types.ShaderInfo{
				Stage: d.Stage, Path: d.Path, Hot: hasAttr(d.Attrs, "hot"), Pos: d.ShaderPos,
			})

		case *ast.ResourceDecl:
			c.checkAttrPlacement(d.Attrs, "resource", nil)
			if !c.declareGlobal(d.Name, d.NamePos, &types.Object{Name: d.Name, Kind: types.ResourceObj, Pos: d.NamePos}) {
				continue
			}
			c.ctx.Resources = append(c.ctx.Resources, &types.ResourceInfo{
				Name: d.Name, Kind: d.Kind, Path: d.Path, Pos: d.NamePos,
			})

		case *ast.MeshDecl:
			c.checkAttrPlacement(d.Attrs, "mesh", nil)
			if !c.declareGlobal(d.Name, d.NamePos, &types.Object{Name: d.Name, Kind: types.MeshObj, Pos: d.NamePos}) {
				continue
			}
			c.ctx.Meshes = append(c.ctx.Meshes, &types.MeshInfo{Name: d.Name, Path: d.Path, Pos: d.NamePos})
		}
	}
}

func (c *Checker) declareGlobal(name string, pos token.Pos, obj *types.Object) bool {
	if prev := c.global.Insert(obj); prev != nil {
		if prev.Pos == (token.Pos{}) {
			c.errorf(pos, "'%s' is a built-in name and cannot be redeclared", name)
		} else {
			c.errorf(pos, "'%s' redeclared (previous declaration at %s)", name, prev.Pos)
		}
		return false
	}
	return true
}

func hasAttr(attrs []*ast.Attribute, name string) bool {
	for _, a := range attrs {
		if a.Name == name {
			return true
		}
	}
	return false
}

// checkAttrPlacement rejects attributes a declaration kind does not
// support. allowed is the set of plain attribute names legal here;
// bracketed attributes are only legal on functions.
func (c *Checker) checkAttrPlacement(attrs []*ast.Attribute, declKind string, allowed map[string]bool) {
	for _, a := range attrs {
		if a.Bracketed || !allowed[a.Name] {
			c.errorf(a.AtPos, "attribute '%s' cannot be applied to a %s declaration", a, declKind)
		}
	}
}

func (c *Checker) checkFuncAttrs(d *ast.FuncDecl) {
	for _, a := range d.Attrs {
		switch {
		case a.Bracketed && a.Name == "cuda":
			if len(a.Args) > 0 {
				c.errorf(a.AtPos, "attribute '@[cuda]' takes no arguments")
			}
		case a.Bracketed && a.Name == "launch":
			if a.Arg("kernel") == "" {
				c.errorfHint(a.AtPos, "write '@[launch(kernel = name)]'", "attribute '@[launch]' requires a 'kernel' argument")
			}
		case a.Bracketed:
			c.errorf(a.AtPos, "unknown attribute '%s'", a)
		case a.Name == "system":
			// validated with the system metadata below
		case a.Name == "hot":
			if d.Attr("system") == nil {
				c.errorf(a.AtPos, "attribute '@hot' is only valid on components, shaders and system functions")
			}
		default:
			c.errorf(a.AtPos, "unknown attribute '%s'", a)
		}
	}
}

func (c *Checker) collectSystem(d *ast.FuncDecl, attr *ast.Attribute, declIndex int) {
	info := &types.SystemInfo{
		FuncName:  d.Name,
		Name:      d.Name,
		DeclIndex: declIndex,
		Hot:       hasAttr(d.Attrs, "hot"),
		Pos:       attr.AtPos,
	}
	for i, arg := range attr.Args {
		switch arg.Key {
		case "":
			if i != 0 {
				c.errorf(arg.ArgPos, "system attribute takes a single positional name argument")
				continue
			}
			info.Name = arg.Value
		case "after":
			info.After = append(info.After, arg.Value)
		case "before":
			info.Before = append(info.Before, arg.Value)
		default:
			c.errorf(arg.ArgPos, "unknown system attribute argument '%s'", arg.Key)
		}
	}
	if prev := c.ctx.SystemNamed(info.Name); prev != nil {
		c.errorf(attr.AtPos, "system '%s' redeclared (previous declaration at %s)", info.Name, prev.Pos)
		return
	}
	c.ctx.Systems = append(c.ctx.Systems, info)
}

func (c *Checker) collectPipeline(d *ast.PipelineDecl) {
	for _, p := range c.ctx.Pipelines {
		if p.Name == d.Name {
			c.errorf(d.NamePos, "pipeline '%s' redeclared (previous declaration at %s)", d.Name, p.Pos)
			return
		}
	}
	info := &types.PipelineInfo{Name: d.Name, Pos: d.PipePos}
	for _, sh := range d.Shaders {
		c.checkShaderStage(sh.Stage, sh.Path, sh.StagePos)
		info.Shaders = append(info.Shaders, types.ShaderRef{Stage: sh.Stage, Path: sh.Path, Pos: sh.StagePos})
	}
	if len(info.Shaders) == 0 {
		c.errorf(d.PipePos, "pipeline '%s' declares no shader stages", d.Name)
	}
	seen := make(map[int]token.Pos)
	for _, b := range d.Bindings {
		if !bindingKinds[b.Kind] {
			c.errorf(b.BindPos, "unknown binding kind '%s' (expected uniform, sampler or storage)", b.Kind)
		}
		if prev, dup := seen[b.Index]; dup {
			c.errorf(b.BindPos, "binding %d redeclared (previous declaration at %s)", b.Index, prev)
		}
		seen[b.Index] = b.BindPos
		info.Bindings = append(info.Bindings, types.BindingInfo{
			Index: b.Index, Kind: b.Kind, Type: b.TypeName, Pos: b.BindPos,
		})
	}
	c.ctx.Pipelines = append(c.ctx.Pipelines, info)
}

func (c *Checker) checkShaderStage(stage, path string, pos token.Pos) {
	want, ok := shaderStageExts[stage]
	if !ok {
		c.errorfHint(pos, "stages are vertex, fragment, compute and geometry", "unknown shader stage '%s'", stage)
		return
	}
	if strings.HasSuffix(path, ".spv") || strings.HasSuffix(path, ".glsl") || strings.HasSuffix(path, want) {
		return
	}
	c.errorfHint(pos, fmt.Sprintf("rename the file to use '%s' (or '.spv'/'.glsl')", want),
		"shader path '%s' does not match stage '%s'", path, stage)
}

// resolveDecls is the second declaration pass: with every name known,
// resolve field types, alias targets and function signatures.
func (c *Checker) resolveDecls(file *ast.File) {
	// Aliases first so signatures and fields declared earlier in the
	// file can already name them.
	for _, decl := range file.Decls {
		d, ok := decl.(*ast.TypeAliasDecl)
		if !ok {
			continue
		}
		target := c.resolveType(d.Target)
		if obj := c.global.LookupLocal(d.Name); obj != nil && obj.Kind == types.TypeObj {
			obj.Type = target
		}
		c.ctx.Aliases = append(c.ctx.Aliases, types.AliasInfo{Name: d.Name, Target: target})
	}

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.StructDecl:
			st := c.structs[d.Name]
			if st == nil {
				continue
			}
			st.Fields = c.resolveFields(d.Name, d.Fields, nil)
		case *ast.ComponentDecl:
			comp := c.components[d.Name]
			if comp == nil {
				continue
			}
			comp.Fields = c.resolveFields(d.Name, d.Fields, comp)
		case *ast.FuncDecl:
			c.resolveFuncSig(d)
		}
	}
}

func (c *Checker) resolveFields(owner string, fields []ast.FieldDecl, comp *types.Component) []types.Field {
	out := make([]types.Field, 0, len(fields))
	seen := make(map[string]token.Pos)
	for _, f := range fields {
		if prev, dup := seen[f.Name]; dup {
			c.errorf(f.NamePos, "field '%s' redeclared in '%s' (previous declaration at %s)", f.Name, owner, prev)
			continue
		}
		seen[f.Name] = f.NamePos

		ft := c.resolveType(f.Type)
		if comp != nil && comp.Storage == types.StorageColumns {
			if _, isArr := ft.(*types.Array); !isArr && ft != types.Invalid {
				c.errorfHint(f.NamePos, fmt.Sprintf("use [%s] instead of %s", ft, ft),
					"field '%s' of SOA component '%s' must be an array type", f.Name, owner)
			}
		}

		field := types.Field{Name: f.Name, Type: ft, Pos: f.NamePos}
		if f.Default != nil {
			if comp == nil {
				c.errorf(f.Default.Pos(), "only component fields can have default values")
			} else {
				field.DefaultLit = c.resolveDefault(owner, f, ft)
			}
		}
		out = append(out, field)
	}
	return out
}

// resolveDefault type-checks a component field default and renders it as
// a target-language literal for the registry metadata.
func (c *Checker) resolveDefault(owner string, f ast.FieldDecl, want types.Type) string {
	if want == types.Invalid {
		return ""
	}
	switch lit := f.Default.(type) {
	case *ast.IntLit:
		if types.IsInteger(want) {
			return lit.Raw
		}
	case *ast.FloatLit:
		if types.IsFloat(want) {
			if b, ok := want.(*types.Basic); ok && b.Kind == types.F32 {
				return lit.Raw + "f"
			}
			return lit.Raw
		}
	case *ast.BoolLit:
		if types.IsBool(want) {
			return lit.String()
		}
	case *ast.StringLit:
		if types.IsString(want) {
			for _, part := range lit.Parts {
				if part.Var != "" {
					c.errorf(lit.LitPos, "default value for field '%s' cannot use interpolation", f.Name)
					return ""
				}
			}
			return fmt.Sprintf("%q", lit.String()[1:len(lit.String())-1])
		}
	default:
		c.errorf(f.Default.Pos(), "default value for field '%s' of '%s' must be a literal", f.Name, owner)
		return ""
	}
	c.errorf(f.Default.Pos(), "default value for field '%s' does not match its type %s", f.Name, want)
	return ""
}

func (c *Checker) resolveFuncSig(d *ast.FuncDecl) {
	sig := &types.Func{Name: d.Name, Result: types.Typ[types.Void]}
	seen := make(map[string]token.Pos)
	for _, p := range d.Params {
		if prev, dup := seen[p.Name]; dup {
			c.errorf(p.NamePos, "parameter '%s' redeclared (previous declaration at %s)", p.Name, prev)
		}
		seen[p.Name] = p.NamePos
		sig.Params = append(sig.Params, types.Param{Name: p.Name, Type: c.resolveType(p.Type), Pos: p.NamePos})
	}
	if d.Result != nil {
		sig.Result = c.resolveType(d.Result)
	}
	c.funcSigs[d.Name] = sig
	if obj := c.global.LookupLocal(d.Name); obj != nil && obj.Kind == types.FuncObj {
		obj.Type = sig
	}

	// Systems are invoked by the generated scheduler, which can only
	// supply query arguments built from component storage.
	if d.Attr("system") != nil {
		for _, p := range sig.Params {
			if _, ok := p.Type.(*types.Query); !ok && p.Type != types.Invalid {
				c.errorf(p.Pos, "system function parameter '%s' must be a query type, got %s", p.Name, p.Type)
			}
		}
		if sig.Result != types.Typ[types.Void] {
			c.errorf(d.NamePos, "system function '%s' cannot return a value", d.Name)
		}
	}
}
