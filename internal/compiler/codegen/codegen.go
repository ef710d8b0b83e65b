// Package codegen lowers a checked syntax tree into C++17 source text.
// Emission is deterministic: the same tree and registries always produce
// byte-identical output, so slices are walked in declaration order and no
// map iteration ever reaches the output.
package codegen

import (
	"fmt"
	"strings"

	"github.com/lumen-lang/lumen/internal/compiler/ast"
	"github.com/lumen-lang/lumen/internal/compiler/types"
)

// internalError marks an inconsistency that a correct checker makes
// impossible, e.g. a query naming an unregistered component. It aborts
// generation and surfaces as an error to the driver, not the user.
type internalError struct {
	msg string
}

func (e *internalError) Error() string { return "internal error: " + e.msg }

// Generate emits the complete C++ translation unit for a checked file.
// blobs maps shader paths to compiled SPIR-V bytes; entries may be absent,
// in which case the pipeline descriptor carries only the source path.
func Generate(file *ast.File, ctx *types.Context, blobs map[string][]byte) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			ie, ok := r.(*internalError)
			if !ok {
				panic(r)
			}
			err = ie
		}
	}()

	g := newGenerator(file, ctx, blobs)
	g.generate()
	return g.b.String(), nil
}

type generator struct {
	file  *ast.File
	ctx   *types.Context
	blobs map[string][]byte

	b      strings.Builder
	indent int

	universe *types.Scope
	aliases  map[string]types.Type
	funcs    map[string]*ast.FuncDecl
	queries  []*types.Query
	userMain bool

	// entityQueries maps a live entity loop variable to the rendered
	// expression of the query it iterates.
	entityQueries map[string]string
	matchSeq      int
	deferSeq      int
	launchKernel  string
}

func newGenerator(file *ast.File, ctx *types.Context, blobs map[string][]byte) *generator {
	g := &generator{
		file:          file,
		ctx:           ctx,
		blobs:         blobs,
		universe:      types.NewUniverse(),
		aliases:       make(map[string]types.Type),
		funcs:         make(map[string]*ast.FuncDecl),
		entityQueries: make(map[string]string),
	}
	for _, a := range ctx.Aliases {
		g.aliases[a.Name] = a.Target
	}
	for _, d := range file.Decls {
		fn, ok := d.(*ast.FuncDecl)
		if !ok {
			continue
		}
		g.funcs[fn.Name] = fn
		if fn.Name == "main" {
			g.userMain = true
		}
		for _, p := range fn.Params {
			if qt, ok := p.Type.(*ast.QueryType); ok {
				g.addQuery(g.resolveQuery(qt))
			}
		}
	}
	return g
}

func (g *generator) internalf(format string, args ...any) {
	panic(&internalError{msg: fmt.Sprintf(format, args...)})
}

// --------------------------------------------------------------------- emit

func (g *generator) emit(line string) {
	if line == "" {
		g.b.WriteString("\n")
		return
	}
	for i := 0; i < g.indent; i++ {
		g.b.WriteString("    ")
	}
	g.b.WriteString(line)
	g.b.WriteString("\n")
}

func (g *generator) emitf(format string, args ...any) {
	g.emit(fmt.Sprintf(format, args...))
}

func (g *generator) blank() { g.b.WriteString("\n") }

func (g *generator) in()  { g.indent++ }
func (g *generator) out() { g.indent-- }

// ---------------------------------------------------------------- top level

func (g *generator) generate() {
	g.emit("// Generated by lumenc. Do not edit.")
	g.blank()
	g.prelude()
	g.emitStructs()
	g.emitComponents()
	g.emitAliases()
	g.emitComponentTables()
	g.emitQueryStructs()
	g.emitGlobals()
	g.emitResources()
	g.emitMeshes()
	g.emitShaderTable()
	g.emitPipelines()
	g.emitPrototypes()
	g.emitFunctions()
	g.emitRegisterComponents()
	g.emitRunSystems()
	g.emitMain()
}

func (g *generator) prelude() {
	g.emit("#include <cstddef>")
	g.emit("#include <cstdint>")
	g.emit("#include <iostream>")
	g.emit("#include <optional>")
	g.emit("#include <string>")
	g.emit("#include <utility>")
	g.emit("#include <vector>")
	g.blank()
	g.emit("#if defined(__CUDACC__)")
	g.emit("#define LUMEN_KERNEL __global__")
	g.emit("#define LUMEN_LAUNCH(kernel, ...) kernel<<<1, 256>>>(__VA_ARGS__)")
	g.emit("#else")
	g.emit("#define LUMEN_KERNEL")
	g.emit("#define LUMEN_LAUNCH(kernel, ...) kernel(__VA_ARGS__)")
	g.emit("#endif")
	g.blank()
	g.emit("struct Vec2 {")
	g.emit("    float x, y;")
	g.emit("    Vec2() : x(0), y(0) {}")
	g.emit("    Vec2(float x, float y) : x(x), y(y) {}")
	g.emit("};")
	g.blank()
	g.emit("struct Vec3 {")
	g.emit("    float x, y, z;")
	g.emit("    Vec3() : x(0), y(0), z(0) {}")
	g.emit("    Vec3(float x, float y, float z) : x(x), y(y), z(z) {}")
	g.emit("};")
	g.blank()
	g.emit("struct Vec4 {")
	g.emit("    float x, y, z, w;")
	g.emit("    Vec4() : x(0), y(0), z(0), w(0) {}")
	g.emit("    Vec4(float x, float y, float z, float w) : x(x), y(y), z(z), w(w) {}")
	g.emit("};")
	g.blank()
	g.emit("struct Mat4 {")
	g.emit("    float m[16];")
	g.emit("};")
	g.blank()
	g.emit("class FrameArena {")
	g.emit("public:")
	g.emit("    template <typename T>")
	g.emit("    std::vector<T> alloc_array(size_t count) {")
	g.emit("        return std::vector<T>(count);")
	g.emit("    }")
	g.emit("};")
	g.blank()
	g.emit("template <typename F>")
	g.emit("class DeferHelper {")
	g.emit("public:")
	g.emit("    explicit DeferHelper(F fn) : fn_(std::move(fn)) {}")
	g.emit("    ~DeferHelper() noexcept { fn_(); }")
	g.emit("    DeferHelper(const DeferHelper&) = delete;")
	g.emit("    DeferHelper& operator=(const DeferHelper&) = delete;")
	g.emit("private:")
	g.emit("    F fn_;")
	g.emit("};")
	g.blank()
	g.emit("template <typename F>")
	g.emit("DeferHelper<F> make_defer(F fn) {")
	g.emit("    return DeferHelper<F>(std::move(fn));")
	g.emit("}")
	g.blank()
	g.emit("template <typename T>")
	g.emit("struct ComponentMetadata;")
	g.blank()
	g.emit("struct ComponentFieldInfo {")
	g.emit("    const char* name;")
	g.emit("    size_t offset;")
	g.emit("};")
	g.blank()
	g.emit("struct ComponentRecord {")
	g.emit("    const char* name;")
	g.emit("    uint32_t id;")
	g.emit("    size_t size;")
	g.emit("    size_t alignment;")
	g.emit("    bool is_soa;")
	g.emit("    bool is_hot;")
	g.emit("    const ComponentFieldInfo* fields;")
	g.emit("    size_t field_count;")
	g.emit("};")
	g.blank()
	g.emit("std::vector<ComponentRecord>& lumen_component_registry() {")
	g.emit("    static std::vector<ComponentRecord> registry;")
	g.emit("    return registry;")
	g.emit("}")
	g.blank()
	if len(g.ctx.Resources) > 0 {
		g.emit("struct TextureResource {")
		g.emit("    const char* path;")
		g.emit("};")
		g.blank()
		g.emit("struct AudioResource {")
		g.emit("    const char* path;")
		g.emit("    bool playing = false;")
		g.emit("};")
		g.blank()
		g.emit("template <typename T>")
		g.emit("struct Resource {")
		g.emit("    explicit Resource(const char* path) : handle{path} {}")
		g.emit("    T handle;")
		g.emit("};")
		g.blank()
	}
	if len(g.ctx.Meshes) > 0 {
		g.emit("struct MeshData {")
		g.emit("    const char* path;")
		g.emit("};")
		g.blank()
	}
	if len(g.ctx.Shaders) > 0 {
		g.emit("struct ShaderDesc {")
		g.emit("    const char* stage;")
		g.emit("    const char* path;")
		g.emit("    bool hot;")
		g.emit("};")
		g.blank()
	}
	if len(g.ctx.Pipelines) > 0 {
		g.emit("struct PipelineStageDesc {")
		g.emit("    const char* stage;")
		g.emit("    const char* path;")
		g.emit("    const unsigned char* code;")
		g.emit("    size_t code_size;")
		g.emit("};")
		g.blank()
		g.emit("struct PipelineBindingDesc {")
		g.emit("    uint32_t index;")
		g.emit("    const char* kind;")
		g.emit("    const char* type_name;")
		g.emit("};")
		g.blank()
		g.emit("struct PipelineDesc {")
		g.emit("    const char* name;")
		g.emit("    std::vector<PipelineStageDesc> stages;")
		g.emit("    std::vector<PipelineBindingDesc> bindings;")
		g.emit("};")
		g.blank()
	}
}

// ------------------------------------------------------------- type mapping

func cppType(t types.Type) string {
	switch tt := t.(type) {
	case *types.Basic:
		switch tt.Kind {
		case types.I8:
			return "int8_t"
		case types.I16:
			return "int16_t"
		case types.I32:
			return "int32_t"
		case types.I64:
			return "int64_t"
		case types.U8:
			return "uint8_t"
		case types.U16:
			return "uint16_t"
		case types.U32:
			return "uint32_t"
		case types.U64:
			return "uint64_t"
		case types.F32:
			return "float"
		case types.F64:
			return "double"
		case types.Bool:
			return "bool"
		case types.String:
			return "std::string"
		case types.Void:
			return "void"
		}
	case *types.Array:
		return "std::vector<" + cppType(tt.Elem) + ">"
	case *types.Optional:
		return "std::optional<" + cppType(tt.Elem) + ">"
	case *types.Struct:
		return tt.Name
	case *types.Component:
		return tt.Name
	case *types.Query:
		return queryStructName(tt)
	case *types.Frame:
		return "FrameArena"
	}
	return "void"
}

// cppParamType is cppType adjusted for parameter position: the frame arena
// is passed by reference so allocations share the caller's frame.
func cppParamType(t types.Type) string {
	if _, ok := t.(*types.Frame); ok {
		return "FrameArena&"
	}
	return cppType(t)
}

func queryStructName(q *types.Query) string {
	parts := make([]string, 0, len(q.Components)+1)
	parts = append(parts, "Query")
	for _, c := range q.Components {
		parts = append(parts, c.Name)
	}
	return strings.Join(parts, "_")
}

// pluralize derives the storage member name from a lowercased component
// name: position -> positions, velocity -> velocities, mass -> masses.
func pluralize(name string) string {
	s := strings.ToLower(name)
	switch {
	case strings.HasSuffix(s, "y"):
		return s[:len(s)-1] + "ies"
	case strings.HasSuffix(s, "s"), strings.HasSuffix(s, "x"),
		strings.HasSuffix(s, "z"), strings.HasSuffix(s, "h"):
		return s + "es"
	default:
		return s + "s"
	}
}

func storageName(c *types.Component) string {
	return "g_" + pluralize(c.Name)
}

func cppQuote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// ----------------------------------------------------------- type resolution

func (g *generator) resolveType(t ast.TypeExpr) types.Type {
	switch tt := t.(type) {
	case *ast.NamedType:
		if a, ok := g.aliases[tt.Name]; ok {
			return a
		}
		if c := g.ctx.ComponentNamed(tt.Name); c != nil {
			return c
		}
		for _, s := range g.ctx.Structs {
			if s.Name == tt.Name {
				return s
			}
		}
		if obj := g.universe.Lookup(tt.Name); obj != nil && obj.Kind == types.TypeObj {
			return obj.Type
		}
		g.internalf("unresolved type name '%s' reached codegen", tt.Name)
	case *ast.ArrayType:
		return &types.Array{Elem: g.resolveType(tt.Elem)}
	case *ast.OptionalType:
		return &types.Optional{Elem: g.resolveType(tt.Elem)}
	case *ast.QueryType:
		return g.resolveQuery(tt)
	}
	g.internalf("unknown type expression %T", t)
	return nil
}

// resolveQuery mirrors the checker's rule: component order preserved,
// duplicates dropped, so the struct name here always matches the one the
// scheduler constructs.
func (g *generator) resolveQuery(t *ast.QueryType) *types.Query {
	q := &types.Query{}
	for _, arg := range t.Args {
		c := g.ctx.ComponentNamed(arg.Name)
		if c == nil {
			g.internalf("query over unregistered component '%s'", arg.Name)
		}
		if q.Has(c.Name) == nil {
			q.Components = append(q.Components, c)
		}
	}
	return q
}

func (g *generator) addQuery(q *types.Query) {
	name := queryStructName(q)
	for _, have := range g.queries {
		if queryStructName(have) == name {
			return
		}
	}
	g.queries = append(g.queries, q)
}
