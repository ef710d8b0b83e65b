package codegen

import (
	"strings"

	"github.com/lumen-lang/lumen/internal/compiler/ast"
	"github.com/lumen-lang/lumen/internal/compiler/types"
)

func (g *generator) emitStructs() {
	for _, st := range g.ctx.Structs {
		if st.Builtin {
			continue
		}
		g.emitf("struct %s {", st.Name)
		g.in()
		for _, f := range st.Fields {
			g.emitf("%s %s;", cppType(f.Type), f.Name)
		}
		g.out()
		g.emit("};")
		g.blank()
	}
}

func (g *generator) emitComponents() {
	for _, c := range g.ctx.Components {
		g.emitf("struct %s {", c.Name)
		g.in()
		for _, f := range c.Fields {
			if c.Storage == types.StorageRows && f.DefaultLit != "" {
				g.emitf("%s %s = %s;", cppType(f.Type), f.Name, f.DefaultLit)
			} else {
				g.emitf("%s %s;", cppType(f.Type), f.Name)
			}
		}
		g.out()
		g.emit("};")
		g.blank()
	}
}

func (g *generator) emitAliases() {
	if len(g.ctx.Aliases) == 0 {
		return
	}
	for _, a := range g.ctx.Aliases {
		g.emitf("using %s = %s;", a.Name, cppType(a.Target))
	}
	g.blank()
}

// emitComponentTables writes the metadata specialization and, for
// row-storage components, the offsetof field table consumed by the
// registry. SOA aggregates hold containers, so per-field offsets are not
// meaningful there.
func (g *generator) emitComponentTables() {
	for id, c := range g.ctx.Components {
		g.emit("template <>")
		g.emitf("struct ComponentMetadata<%s> {", c.Name)
		g.in()
		g.emitf("static constexpr const char* name = %s;", cppQuote(c.Name))
		g.emitf("static constexpr uint32_t id = %d;", id)
		g.emitf("static constexpr bool is_soa = %s;", cppBool(c.Storage == types.StorageColumns))
		g.emitf("static constexpr bool is_hot = %s;", cppBool(c.Hot))
		g.out()
		g.emit("};")
		g.blank()
		if c.Storage != types.StorageRows {
			continue
		}
		g.emitf("static const ComponentFieldInfo %s_fields[] = {", c.Name)
		g.in()
		for _, f := range c.Fields {
			g.emitf("{%s, offsetof(%s, %s)},", cppQuote(f.Name), c.Name, f.Name)
		}
		g.out()
		g.emit("};")
		g.blank()
	}
}

func cppBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// emitQueryStructs writes one aggregate per distinct query type. Members
// reference the global storage so the scheduler can construct a view with
// no copies; size() comes from the first component's row count.
func (g *generator) emitQueryStructs() {
	for _, q := range g.queries {
		g.emitf("struct %s {", queryStructName(q))
		g.in()
		for _, c := range q.Components {
			if c.Storage == types.StorageColumns {
				g.emitf("%s& %s;", c.Name, pluralize(c.Name))
			} else {
				g.emitf("std::vector<%s>& %s;", c.Name, pluralize(c.Name))
			}
		}
		g.blank()
		g.emitf("size_t size() const { return %s; }", g.queryCount(q))
		g.out()
		g.emit("};")
		g.blank()
	}
}

func (g *generator) queryCount(q *types.Query) string {
	if len(q.Components) == 0 {
		g.internalf("empty query reached codegen")
	}
	c := q.Components[0]
	if c.Storage == types.StorageColumns {
		if len(c.Fields) == 0 {
			return "0"
		}
		return pluralize(c.Name) + "." + c.Fields[0].Name + ".size()"
	}
	return pluralize(c.Name) + ".size()"
}

func (g *generator) emitGlobals() {
	if len(g.ctx.Components) == 0 {
		return
	}
	for _, c := range g.ctx.Components {
		if c.Storage == types.StorageColumns {
			g.emitf("%s %s;", c.Name, storageName(c))
		} else {
			g.emitf("std::vector<%s> %s;", c.Name, storageName(c))
		}
	}
	g.blank()
}

// ---------------------------------------------------------------- functions

// funcName maps a source-level function name to its emitted name. The
// user's entry point is renamed so the runtime owns the real main.
func funcName(name string) string {
	if name == "main" {
		return "lumen_main"
	}
	return name
}

func (g *generator) signature(d *ast.FuncDecl) string {
	var b strings.Builder
	if d.Attr("cuda") != nil {
		b.WriteString("LUMEN_KERNEL ")
	}
	ret := "void"
	if d.Result != nil {
		ret = cppType(g.resolveType(d.Result))
	}
	b.WriteString(ret)
	b.WriteString(" ")
	b.WriteString(funcName(d.Name))
	b.WriteString("(")
	for i, p := range d.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(cppParamType(g.resolveType(p.Type)))
		b.WriteString(" ")
		b.WriteString(p.Name)
	}
	b.WriteString(")")
	return b.String()
}

func (g *generator) emitPrototypes() {
	wrote := false
	for _, d := range g.file.Decls {
		fn, ok := d.(*ast.FuncDecl)
		if !ok {
			continue
		}
		g.emitf("%s;", g.signature(fn))
		wrote = true
	}
	if wrote {
		g.blank()
	}
}

func (g *generator) emitFunctions() {
	for _, d := range g.file.Decls {
		fn, ok := d.(*ast.FuncDecl)
		if !ok {
			continue
		}
		g.emitFunction(fn)
	}
}

func (g *generator) emitFunction(d *ast.FuncDecl) {
	g.deferSeq = 0
	g.launchKernel = ""
	if a := d.Attr("launch"); a != nil {
		g.launchKernel = a.Arg("kernel")
	}

	g.emitf("%s {", g.signature(d))
	g.in()
	for _, s := range d.Body.Stmts {
		g.stmt(s)
	}
	g.out()
	g.emit("}")
	g.blank()
}
