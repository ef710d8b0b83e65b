package codegen

import (
	"strings"

	"github.com/lumen-lang/lumen/internal/compiler/types"
)

// resourceCppType maps a source-level resource kind to the runtime handle
// type. Unknown kinds pass through so engine-defined handles keep working
// without compiler changes.
func resourceCppType(kind string) string {
	switch kind {
	case "Texture":
		return "TextureResource"
	case "Sound", "Music":
		return "AudioResource"
	}
	return kind
}

func isAudioKind(kind string) bool {
	return kind == "Sound" || kind == "Music"
}

func (g *generator) emitResources() {
	for _, r := range g.ctx.Resources {
		lower := strings.ToLower(r.Name)
		handle := resourceCppType(r.Kind)
		g.emitf("Resource<%s> g_resource_%s(%s);", handle, lower, cppQuote(r.Path))
		g.blank()
		g.emitf("%s& load_resource_%s() {", handle, lower)
		g.emitf("    return g_resource_%s.handle;", lower)
		g.emit("}")
		g.blank()
		if !isAudioKind(r.Kind) {
			continue
		}
		g.emitf("void play_resource_%s() {", lower)
		g.emitf("    g_resource_%s.handle.playing = true;", lower)
		g.emit("}")
		g.blank()
		g.emitf("void stop_resource_%s() {", lower)
		g.emitf("    g_resource_%s.handle.playing = false;", lower)
		g.emit("}")
		g.blank()
	}
}

func (g *generator) emitMeshes() {
	for _, m := range g.ctx.Meshes {
		g.emitf("MeshData load_mesh_%s() {", strings.ToLower(m.Name))
		g.emitf("    return MeshData{%s};", cppQuote(m.Path))
		g.emit("}")
		g.blank()
	}
}

func (g *generator) emitShaderTable() {
	if len(g.ctx.Shaders) == 0 {
		return
	}
	g.emit("static const ShaderDesc g_shaders[] = {")
	g.in()
	for _, s := range g.ctx.Shaders {
		g.emitf("{%s, %s, %s},", cppQuote(s.Stage), cppQuote(s.Path), cppBool(s.Hot))
	}
	g.out()
	g.emit("};")
	g.emitf("static const size_t g_shader_count = %d;", len(g.ctx.Shaders))
	g.blank()
}

func (g *generator) emitPipelines() {
	for _, p := range g.ctx.Pipelines {
		lower := strings.ToLower(p.Name)
		for i, s := range p.Shaders {
			blob, ok := g.blobs[s.Path]
			if !ok || len(blob) == 0 {
				continue
			}
			g.emitf("static const unsigned char k_%s_stage%d_code[] = {", lower, i)
			g.in()
			g.emitBytes(blob)
			g.out()
			g.emit("};")
			g.blank()
		}
		g.emitf("PipelineDesc create_pipeline_%s() {", lower)
		g.in()
		g.emit("PipelineDesc desc;")
		g.emitf("desc.name = %s;", cppQuote(p.Name))
		for i, s := range p.Shaders {
			blob, ok := g.blobs[s.Path]
			if ok && len(blob) > 0 {
				g.emitf("desc.stages.push_back({%s, %s, k_%s_stage%d_code, sizeof(k_%s_stage%d_code)});",
					cppQuote(s.Stage), cppQuote(s.Path), lower, i, lower, i)
			} else {
				g.emitf("desc.stages.push_back({%s, %s, nullptr, 0});",
					cppQuote(s.Stage), cppQuote(s.Path))
			}
		}
		for _, b := range p.Bindings {
			g.emitf("desc.bindings.push_back({%d, %s, %s});",
				b.Index, cppQuote(b.Kind), cppQuote(b.Type))
		}
		g.emit("return desc;")
		g.out()
		g.emit("}")
		g.blank()
	}
}

func (g *generator) emitBytes(blob []byte) {
	const perLine = 12
	for off := 0; off < len(blob); off += perLine {
		end := off + perLine
		if end > len(blob) {
			end = len(blob)
		}
		var b strings.Builder
		for _, by := range blob[off:end] {
			b.WriteString(byteHex(by))
			b.WriteString(", ")
		}
		g.emit(strings.TrimSuffix(b.String(), " "))
	}
}

func byteHex(b byte) string {
	const digits = "0123456789abcdef"
	return "0x" + string(digits[b>>4]) + string(digits[b&0x0f])
}

func (g *generator) emitRegisterComponents() {
	g.emit("void lumen_register_components() {")
	g.in()
	if len(g.ctx.Components) > 0 {
		g.emit("auto& registry = lumen_component_registry();")
		g.emit("registry.clear();")
		for id, c := range g.ctx.Components {
			fields := "nullptr"
			count := 0
			if c.Storage == types.StorageRows {
				fields = c.Name + "_fields"
				count = len(c.Fields)
			}
			g.emitf("registry.push_back({%s, %d, sizeof(%s), alignof(%s), %s, %s, %s, %d});",
				cppQuote(c.Name), id, c.Name, c.Name,
				cppBool(c.Storage == types.StorageColumns), cppBool(c.Hot), fields, count)
		}
	}
	g.out()
	g.emit("}")
	g.blank()
}

// emitRunSystems writes the scheduler: every system called exactly once in
// the order the checker validated, each query argument constructed as a
// view over the global storage.
func (g *generator) emitRunSystems() {
	g.emit("void lumen_run_systems() {")
	g.in()
	for _, idx := range g.ctx.SystemOrder {
		sys := g.ctx.Systems[idx]
		fn := g.funcs[sys.FuncName]
		if fn == nil {
			g.internalf("system '%s' has no function declaration", sys.Name)
		}
		args := make([]string, len(fn.Params))
		for i, p := range fn.Params {
			q, ok := g.resolveType(p.Type).(*types.Query)
			if !ok {
				g.internalf("system '%s' parameter '%s' is not a query", sys.Name, p.Name)
			}
			args[i] = g.queryView(q)
		}
		g.emitf("%s(%s);", funcName(sys.FuncName), strings.Join(args, ", "))
	}
	g.out()
	g.emit("}")
	g.blank()
}

func (g *generator) queryView(q *types.Query) string {
	members := make([]string, len(q.Components))
	for i, c := range q.Components {
		members[i] = storageName(c)
	}
	return queryStructName(q) + "{" + strings.Join(members, ", ") + "}"
}

func (g *generator) emitMain() {
	if !g.userMain {
		return
	}
	g.emit("int main() {")
	g.in()
	g.emit("lumen_register_components();")
	g.emit("lumen_main();")
	g.emit("return 0;")
	g.out()
	g.emit("}")
}
