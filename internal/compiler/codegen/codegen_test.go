package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-lang/lumen/internal/compiler/check"
	"github.com/lumen-lang/lumen/internal/compiler/diag"
	"github.com/lumen-lang/lumen/internal/compiler/lexer"
	"github.com/lumen-lang/lumen/internal/compiler/parser"
)

func gen(t *testing.T, src string) string {
	t.Helper()
	return genWithBlobs(t, src, nil)
}

func genWithBlobs(t *testing.T, src string, blobs map[string][]byte) string {
	t.Helper()
	toks, err := lexer.Lex(src)
	require.NoError(t, err)
	var diags diag.List
	file := parser.Parse(toks, &diags)
	require.False(t, diags.HasErrors(), "parse diagnostics:\n%s", diags.Render("test"))
	ctx := check.Check(file, &diags)
	require.False(t, diags.HasErrors(), "check diagnostics:\n%s", diags.Render("test"))
	out, err := Generate(file, ctx, blobs)
	require.NoError(t, err)
	return out
}

func TestArrayLiteral(t *testing.T) {
	out := gen(t, `
		fn main() {
			let numbers = [1, 2, 3];
		}
	`)
	assert.Contains(t, out, "auto numbers = std::vector<int32_t>{1, 2, 3};")
}

func TestTypedArrayLiteral(t *testing.T) {
	out := gen(t, `
		fn main() {
			let xs: [f32] = [1.0, 2.5];
		}
	`)
	assert.Contains(t, out, "std::vector<float> xs = std::vector<float>{1.0f, 2.5f};")
}

func TestStorageDispatch(t *testing.T) {
	out := gen(t, `
		component Position { x: f32, y: f32, z: f32 }
		component_soa Velocity { x: [f32], y: [f32], z: [f32] }

		fn integrate(q: query<Position, Velocity>) {
			for entity in q {
				entity.Position.x += entity.Velocity.x * 0.016;
			}
		}
	`)
	assert.Contains(t, out, "for (size_t entity_index = 0; entity_index < q.size(); ++entity_index) {")
	assert.Contains(t, out, "q.positions[entity_index].x += q.velocities.x[entity_index] * 0.016f;")
}

func TestNestedLoopsReuseBindingName(t *testing.T) {
	out := gen(t, `
		component Position { x: f32 }
		component Damage { amount: f32 }

		fn sweep(a: query<Position>, b: query<Damage>) {
			for e in a {
				for e in b {
					e.Damage.amount = 1.0;
				}
				e.Position.x = 2.0;
			}
		}
	`)
	assert.Contains(t, out, "b.damages[e_index].amount = 1.0f;")
	assert.Contains(t, out, "a.positions[e_index].x = 2.0f;")
}

func TestQueryStruct(t *testing.T) {
	out := gen(t, `
		component Position { x: f32 }
		component_soa Velocity { x: [f32] }

		fn integrate(q: query<Position, Velocity>) {}
	`)
	assert.Contains(t, out, "struct Query_Position_Velocity {")
	assert.Contains(t, out, "std::vector<Position>& positions;")
	assert.Contains(t, out, "Velocity& velocities;")
	assert.Contains(t, out, "size_t size() const { return positions.size(); }")
	assert.Contains(t, out, "std::vector<Position> g_positions;")
	assert.Contains(t, out, "Velocity g_velocities;")
}

func TestSoaFirstQueryCountsRows(t *testing.T) {
	out := gen(t, `
		component_soa Velocity { x: [f32] }

		fn f(q: query<Velocity>) {}
	`)
	assert.Contains(t, out, "size_t size() const { return velocities.x.size(); }")
}

func TestInterpolation(t *testing.T) {
	out := gen(t, `
		fn main() {
			let health = 10;
			let alive = true;
			let name = "player";
			let a = "Health: {health}";
			let b = "alive={alive}";
			let c = "hello {name}";
		}
	`)
	assert.Contains(t, out, `std::string("Health: ") + std::to_string(health)`)
	assert.Contains(t, out, `std::string("alive=") + std::string(alive ? "true" : "false")`)
	assert.Contains(t, out, `std::string("hello ") + name`)
}

func TestMatchSingleEvaluation(t *testing.T) {
	out := gen(t, `
		fn main() {
			let x = 3;
			match x {
				0 => { print("zero"); }
				value => { print(value); }
			}
		}
	`)
	assert.Equal(t, 1, strings.Count(out, "auto __match_0 = x;"))
	assert.Contains(t, out, "if (__match_0 == 0) {")
	assert.Contains(t, out, "auto value = __match_0;")
}

func TestMatchWildcard(t *testing.T) {
	out := gen(t, `
		fn main() {
			let x = 1;
			match x {
				1 => { print("one"); }
				2 => { print("two"); }
				_ => { print("many"); }
			}
		}
	`)
	assert.Contains(t, out, "if (__match_0 == 1) {")
	assert.Contains(t, out, "} else if (__match_0 == 2) {")
	assert.Contains(t, out, "} else {")
}

func TestSchedulerOrder(t *testing.T) {
	out := gen(t, `
		component Position { x: f32 }

		@system(movement, after = physics) fn update_movement(q: query<Position>) {}
		@system(physics) fn update_physics(q: query<Position>) {}
	`)
	assert.Contains(t, out, "void lumen_run_systems() {")
	physics := strings.Index(out, "update_physics(Query_Position{g_positions});")
	movement := strings.Index(out, "update_movement(Query_Position{g_positions});")
	require.GreaterOrEqual(t, physics, 0)
	require.GreaterOrEqual(t, movement, 0)
	assert.Less(t, physics, movement)
}

func TestComponentRegistry(t *testing.T) {
	out := gen(t, `
		@hot component Position { x: f32 = 1.5, y: f32 }
		component_soa Velocity { x: [f32] }
	`)
	assert.Contains(t, out, "void lumen_register_components() {")
	assert.Contains(t, out, `registry.push_back({"Position", 0, sizeof(Position), alignof(Position), false, true, Position_fields, 2});`)
	assert.Contains(t, out, `registry.push_back({"Velocity", 1, sizeof(Velocity), alignof(Velocity), true, false, nullptr, 0});`)
	assert.Contains(t, out, "float x = 1.5f;")
	assert.Contains(t, out, `{"x", offsetof(Position, x)},`)
}

func TestDefer(t *testing.T) {
	out := gen(t, `
		fn cleanup() {}
		fn main() {
			defer cleanup();
			defer cleanup();
		}
	`)
	assert.Contains(t, out, "auto defer_0 = make_defer([&]() { cleanup(); });")
	assert.Contains(t, out, "auto defer_1 = make_defer([&]() { cleanup(); });")
}

func TestFrameAllocation(t *testing.T) {
	out := gen(t, `
		fn work(frame: FrameArena) {
			let scratch = frame.alloc_array<Vec3>(10);
		}
	`)
	assert.Contains(t, out, "void work(FrameArena& frame)")
	assert.Contains(t, out, "auto scratch = frame.alloc_array<Vec3>(10);")
}

func TestOptionals(t *testing.T) {
	out := gen(t, `
		fn main() {
			let target: ?i32 = null;
			let fallback: ?i32 = 5;
			if fallback {
				let v = fallback.unwrap();
			}
		}
	`)
	assert.Contains(t, out, "std::optional<int32_t> target = std::nullopt;")
	assert.Contains(t, out, "std::optional<int32_t> fallback = 5;")
	assert.Contains(t, out, "if (fallback) {")
	assert.Contains(t, out, "auto v = fallback.value();")
}

func TestVecConstructor(t *testing.T) {
	out := gen(t, `
		fn main() {
			let v = Vec3 { x: 1.0, y: 2.0, z: 3.0 };
		}
	`)
	assert.Contains(t, out, "auto v = Vec3(1.0f, 2.0f, 3.0f);")
}

func TestUserStructBraceInit(t *testing.T) {
	out := gen(t, `
		struct Config { width: i32, title: string }
		fn main() {
			let c = Config { width: 800, title: "demo" };
		}
	`)
	assert.Contains(t, out, "struct Config {")
	assert.Contains(t, out, "int32_t width;")
	assert.Contains(t, out, "std::string title;")
	assert.Contains(t, out, `auto c = Config{800, std::string("demo")};`)
}

func TestTypeAlias(t *testing.T) {
	out := gen(t, `
		type Health = i32
		fn damage(h: Health): Health { return h - 1; }
	`)
	assert.Contains(t, out, "using Health = int32_t;")
}

func TestMainRename(t *testing.T) {
	out := gen(t, `
		fn main() { print("hi"); }
	`)
	assert.Contains(t, out, "void lumen_main() {")
	assert.Contains(t, out, "int main() {")
	assert.Contains(t, out, "lumen_register_components();")
	assert.Contains(t, out, "lumen_main();")
}

func TestLocalNamedMainStaysLocal(t *testing.T) {
	out := gen(t, `
		fn helper() {
			let main = 1;
			print(main);
		}
	`)
	assert.Contains(t, out, "auto main = 1;")
	assert.Contains(t, out, "std::cout << main << std::endl;")
	assert.NotContains(t, out, "lumen_main")
}

func TestNoUserMainNoCppMain(t *testing.T) {
	out := gen(t, `
		fn helper() {}
	`)
	assert.NotContains(t, out, "int main()")
}

func TestPrint(t *testing.T) {
	out := gen(t, `
		fn main() {
			let score = 7;
			print("score", score);
		}
	`)
	assert.Contains(t, out, `std::cout << std::string("score") << score << std::endl;`)
}

func TestResources(t *testing.T) {
	out := gen(t, `
		resource PlayerTex: Texture = "assets/player.png"
		resource Theme: Music = "assets/theme.ogg"
	`)
	assert.Contains(t, out, `Resource<TextureResource> g_resource_playertex("assets/player.png");`)
	assert.Contains(t, out, "TextureResource& load_resource_playertex() {")
	assert.Contains(t, out, `Resource<AudioResource> g_resource_theme("assets/theme.ogg");`)
	assert.Contains(t, out, "void play_resource_theme() {")
	assert.Contains(t, out, "void stop_resource_theme() {")
	assert.NotContains(t, out, "play_resource_playertex")
}

func TestMesh(t *testing.T) {
	out := gen(t, `
		mesh Quad = "assets/quad.obj"
	`)
	assert.Contains(t, out, "MeshData load_mesh_quad() {")
	assert.Contains(t, out, `return MeshData{"assets/quad.obj"};`)
}

func TestPipeline(t *testing.T) {
	src := `
		pipeline Sprite {
			shader vertex "shaders/sprite.vert"
			shader fragment "shaders/sprite.frag"
			layout {
				binding 0: uniform Mat4
				binding 1: sampler Texture
			}
		}
	`
	blobs := map[string][]byte{
		"shaders/sprite.vert": {0x03, 0x02, 0x23, 0x07},
	}
	out := genWithBlobs(t, src, blobs)
	assert.Contains(t, out, "PipelineDesc create_pipeline_sprite() {")
	assert.Contains(t, out, "static const unsigned char k_sprite_stage0_code[] = {")
	assert.Contains(t, out, "0x03, 0x02, 0x23, 0x07,")
	assert.Contains(t, out, `desc.stages.push_back({"vertex", "shaders/sprite.vert", k_sprite_stage0_code, sizeof(k_sprite_stage0_code)});`)
	assert.Contains(t, out, `desc.stages.push_back({"fragment", "shaders/sprite.frag", nullptr, 0});`)
	assert.Contains(t, out, `desc.bindings.push_back({0, "uniform", "Mat4"});`)
	assert.Contains(t, out, `desc.bindings.push_back({1, "sampler", "Texture"});`)
}

func TestShaderTable(t *testing.T) {
	out := gen(t, `
		@hot shader vertex "shaders/post.vert"
	`)
	assert.Contains(t, out, "static const ShaderDesc g_shaders[] = {")
	assert.Contains(t, out, `{"vertex", "shaders/post.vert", true},`)
}

func TestCudaAttributes(t *testing.T) {
	out := gen(t, `
		@[cuda] fn scale(factor: f32) {}
		@[launch(kernel = scale)] fn run_scale() {
			scale(2.0);
		}
	`)
	assert.Contains(t, out, "LUMEN_KERNEL void scale(float factor)")
	assert.Contains(t, out, "LUMEN_LAUNCH(scale, 2.0f);")
}

func TestDeterminism(t *testing.T) {
	first := gen(t, determinismSrc)
	second := gen(t, determinismSrc)
	assert.Equal(t, first, second)
}

const determinismSrc = `
	component Position { x: f32, y: f32 }
	component_soa Velocity { x: [f32], y: [f32] }

	@system(physics) fn physics_step(q: query<Position, Velocity>) {
		for e in q {
			e.Position.x += e.Velocity.x;
		}
	}

	fn main() {
		let a = 1.5;
		let msg = "pos: {a}";
		print(msg);
	}
`

func TestGeneratedHeader(t *testing.T) {
	out := gen(t, `fn main() {}`)
	assert.True(t, strings.HasPrefix(out, "// Generated by lumenc. Do not edit."))
	assert.Contains(t, out, "#include <vector>")
}
