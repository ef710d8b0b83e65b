package check

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-lang/lumen/internal/compiler/diag"
	"github.com/lumen-lang/lumen/internal/compiler/lexer"
	"github.com/lumen-lang/lumen/internal/compiler/parser"
	"github.com/lumen-lang/lumen/internal/compiler/types"
)

func checkSrc(t *testing.T, src string) (*types.Context, *diag.List) {
	t.Helper()
	toks, err := lexer.Lex(src)
	require.NoError(t, err)
	diags := &diag.List{}
	file := parser.Parse(toks, diags)
	require.False(t, diags.HasErrors(), "parse errors: %v", diags.All())
	ctx := Check(file, diags)
	return ctx, diags
}

func checkOK(t *testing.T, src string) *types.Context {
	t.Helper()
	ctx, diags := checkSrc(t, src)
	require.False(t, diags.HasErrors(), "unexpected diagnostics: %v", diags.All())
	return ctx
}

func checkFails(t *testing.T, src, wantMsg string) *diag.List {
	t.Helper()
	_, diags := checkSrc(t, src)
	require.True(t, diags.HasErrors(), "expected a diagnostic containing %q", wantMsg)
	for _, d := range diags.All() {
		if strings.Contains(d.Msg, wantMsg) {
			return diags
		}
	}
	t.Fatalf("no diagnostic contains %q; got %v", wantMsg, diags.All())
	return nil
}

func TestArrayLiteralInference(t *testing.T) {
	checkOK(t, `fn f() { let numbers = [1, 2, 3]; }`)
	checkOK(t, `fn f() { let xs: [i64] = [1, 2, 3]; }`)
	checkOK(t, `fn f() { let xs: [f32] = []; }`)
}

func TestArrayLiteralMismatchNamesIndex(t *testing.T) {
	diags := checkFails(t, `fn f() { let xs = [1, 2, 3.5]; }`, "array element 2 has type f32, expected i32")
	_ = diags
}

func TestEmptyArrayNeedsAnnotation(t *testing.T) {
	diags := checkFails(t, `fn f() { let xs = []; }`, "cannot infer the element type")
	assert.Contains(t, diags.All()[0].Hint, "let arr: [T] = []")
}

func TestNumericIdentityNoWidening(t *testing.T) {
	// Literals adopt an explicit declared type, but variables never
	// convert implicitly.
	checkOK(t, `fn f() { let x: i64 = 1; }`)
	checkFails(t, `fn f() { let a = 1; let b: i64 = a; }`, "cannot initialize 'b' of type i64 with value of type i32")
	checkFails(t, `fn f() { let x: i32 = 1.5; }`, "cannot initialize 'x' of type i32 with value of type f32")
}

func TestSOAShape(t *testing.T) {
	checkOK(t, `component_soa Velocity { x: [f32], y: [f32] }`)
	diags := checkFails(t, `component_soa Velocity { x: [f32], y: f32 }`,
		"field 'y' of SOA component 'Velocity' must be an array type")
	found := false
	for _, d := range diags.All() {
		if d.Hint == "use [f32] instead of f32" {
			found = true
		}
	}
	assert.True(t, found, "missing wrap-in-array hint: %v", diags.All())
}

func TestEntityAccess(t *testing.T) {
	src := `
component Position { x: f32, y: f32, z: f32 }
component_soa Velocity { x: [f32], y: [f32], z: [f32] }
fn update(q: query<Position, Velocity>) {
	for entity in q {
		entity.Position.x += entity.Velocity.x * 0.016;
	}
}`
	checkOK(t, src)
}

func TestEntityAccessComponentNotInQuery(t *testing.T) {
	src := `
component Position { x: f32 }
component Health { hp: i32 }
fn f(q: query<Position>) {
	for e in q {
		e.Health.hp = 1;
	}
}`
	checkFails(t, src, "component 'Health' is not part of query<Position>")
}

func TestEntityAccessUnknownField(t *testing.T) {
	src := `
component Position { x: f32 }
fn f(q: query<Position>) {
	for e in q {
		e.Position.w = 1.0;
	}
}`
	diags := checkFails(t, src, "component Position has no field 'w'")
	_ = diags
}

func TestEntityAccessOutsideLoop(t *testing.T) {
	src := `
component Position { x: f32 }
fn f(q: query<Position>) {
	for e in q { }
	e.Position.x = 1.0;
}`
	checkFails(t, src, "undefined variable 'e'")
}

func TestFrameEscape(t *testing.T) {
	src := `
fn f(frame: FrameArena): [Vec3] {
	let p = frame.alloc_array<Vec3>(10);
	return p;
}`
	diags := checkFails(t, src, "cannot return frame-scoped allocation 'p'")
	assert.Contains(t, diags.All()[0].Msg, "only valid within the current frame")
}

func TestFrameEscapeDirectReturn(t *testing.T) {
	checkFails(t, `fn f(frame: FrameArena): [f32] { return frame.alloc_array<f32>(4); }`,
		"cannot return frame-scoped allocation")
}

func TestFrameEscapeAssignmentPropagation(t *testing.T) {
	src := `
fn f(frame: FrameArena): [f32] {
	let p = frame.alloc_array<f32>(4);
	let q = [1.0];
	q = p;
	return q;
}`
	checkFails(t, src, "cannot return frame-scoped allocation 'q'")
}

func TestFrameInternalUseIsFine(t *testing.T) {
	checkOK(t, `
fn f(frame: FrameArena): f32 {
	let scratch = frame.alloc_array<f32>(16);
	scratch[0] = 1.0;
	return scratch[0];
}`)
}

func TestFrameShadowingDoesNotLeak(t *testing.T) {
	// The inner frame-scoped p dies with its block; the outer p is a
	// plain array and may be returned.
	checkOK(t, `
fn f(frame: FrameArena): [f32] {
	let p = [1.0, 2.0];
	{
		let p = frame.alloc_array<f32>(8);
		p[0] = 0.0;
	}
	return p;
}`)
}

func TestSystemCycle(t *testing.T) {
	src := `
@system(b, after = a) fn b() {}
@system(a, after = b) fn a() {}`
	diags := checkFails(t, src, "circular system dependency")
	assert.Contains(t, diags.All()[0].Msg, "a")
	assert.Contains(t, diags.All()[0].Msg, "b")
}

func TestSystemOrderRespectsConstraintsAndDeclOrder(t *testing.T) {
	ctx := checkOK(t, `
@system(render, after = movement) fn render_system() {}
@system(movement, after = physics) fn movement_system() {}
@system(physics) fn physics_system() {}
@system(audio) fn audio_system() {}`)
	require.Len(t, ctx.SystemOrder, 4)
	var names []string
	for _, i := range ctx.SystemOrder {
		names = append(names, ctx.Systems[i].Name)
	}
	// physics < movement < render by constraint; among ready systems the
	// earliest declared runs first, so render (declared first) precedes
	// audio once its dependencies are satisfied.
	assert.Equal(t, []string{"physics", "movement", "render", "audio"}, names)
}

func TestSystemUnknownDependency(t *testing.T) {
	diags := checkFails(t, `@system(render, after = phisics) fn r() {}
@system(physics) fn p() {}`, "undeclared system 'phisics'")
	assert.Contains(t, diags.All()[0].Hint, "did you mean 'physics'?")
}

func TestReturnTypeValidation(t *testing.T) {
	checkFails(t, `fn f(): i32 { return; }`, "missing return value")
	checkFails(t, `fn f() { return 1; }`, "does not return a value")
	checkFails(t, `fn f(): i32 { return "x"; }`, "return type mismatch: expected i32, got string")
	checkOK(t, `fn f(): i32 { return 1; }`)
}

func TestInterpolationTypes(t *testing.T) {
	checkOK(t, `fn f(health: i32, name: string, alive: bool) { let m = "H: {health} {name} {alive}"; }`)
	checkFails(t, `
struct Pos { x: f32 }
fn f(p: Pos) { let m = "at {p}"; }`, "cannot interpolate variable 'p' of type Pos")
	diags := checkFails(t, `fn f(healt: i32) { let m = "H: {health}"; }`, "undefined variable 'health'")
	assert.Contains(t, diags.All()[0].Hint, "did you mean 'healt'?")
}

func TestMatchPatternCompatibility(t *testing.T) {
	checkOK(t, `fn f(x: i32) { match x { 0 => { } value => { let y = value + 1; } _ => { } } }`)
	checkFails(t, `fn f(x: i32) { match x { "a" => { } } }`, "pattern type string does not match scrutinee type i32")
}

func TestShadowingResolvesInnermost(t *testing.T) {
	checkOK(t, `
fn f() {
	let x = 1;
	{
		let x = "inner";
		let y: string = x;
	}
	let z: i32 = x;
}`)
	checkFails(t, `fn f() { let x = 1; let x = 2; }`, "'x' redeclared in this block")
}

func TestUndefinedVariableSuggestion(t *testing.T) {
	diags := checkFails(t, `fn f(velocity: f32) { let v = velocty; }`, "undefined variable 'velocty'")
	assert.Contains(t, diags.All()[0].Hint, "did you mean 'velocity'?")
}

func TestAttributePlacement(t *testing.T) {
	checkFails(t, `@hot struct S { x: i32 }`, "cannot be applied to a struct")
	checkFails(t, `@system(s) component C { x: i32 }`, "cannot be applied to a component")
	checkOK(t, `@hot component C { x: i32 }`)
	checkFails(t, `@[launch] fn k() {}`, "requires a 'kernel' argument")
}

func TestHotOnFunctionRequiresSystem(t *testing.T) {
	checkOK(t, `
component P { x: f32 }
@hot @system(move) fn move_system(q: query<P>) {}`)
	checkFails(t, `@hot fn plain() {}`, "only valid on components, shaders and system functions")
}

func TestSystemParamRules(t *testing.T) {
	checkOK(t, `
component P { x: f32 }
@system(move) fn move_system(q: query<P>) {}`)
	checkFails(t, `@system(s) fn s_fn(dt: f32) {}`, "must be a query type")
	checkFails(t, `@system(s) fn s_fn(): i32 { return 1; }`, "cannot return a value")
}

func TestShaderStageValidation(t *testing.T) {
	checkOK(t, `shader vertex "tri.vert"`)
	checkOK(t, `shader fragment "tri.spv"`)
	diags := checkFails(t, `shader vertex "tri.frag"`, "does not match stage 'vertex'")
	assert.Contains(t, diags.All()[0].Hint, ".vert")
	checkFails(t, `shader tessellation "tri.vert"`, "unknown shader stage 'tessellation'")
}

func TestPipelineValidation(t *testing.T) {
	checkOK(t, `
pipeline Sprite {
	shader vertex "sprite.vert"
	shader fragment "sprite.frag"
	layout { binding 0: uniform Mat4 }
}`)
	checkFails(t, `
pipeline Broken {
	shader vertex "a.vert"
	layout {
		binding 0: uniform Mat4
		binding 0: sampler Tex
	}
}`, "binding 0 redeclared")
	checkFails(t, `pipeline Empty { }`, "declares no shader stages")
}

func TestOptionals(t *testing.T) {
	checkOK(t, `
fn f(maybe: ?i32): i32 {
	if maybe {
		return maybe.unwrap();
	}
	return 0;
}`)
	checkOK(t, `fn f() { let x: ?i32 = 5; let y: ?i32 = null; }`)
	checkFails(t, `fn f(x: i32) { let y = x.unwrap(); }`, "cannot unwrap non-optional type i32")
	checkFails(t, `fn f() { let x = null; }`, "null requires an optional type context")
}

func TestTypeAlias(t *testing.T) {
	checkOK(t, `
type Health = i32
fn f(h: Health): i32 { return h; }`)
}

func TestComponentDefaults(t *testing.T) {
	ctx := checkOK(t, `component Health { current: i32 = 100, regen: f32 = 1.5 }`)
	comp := ctx.ComponentNamed("Health")
	require.NotNil(t, comp)
	assert.Equal(t, "100", comp.Fields[0].DefaultLit)
	assert.Equal(t, "1.5f", comp.Fields[1].DefaultLit)
}

func TestQueryDeduplicates(t *testing.T) {
	ctx := checkOK(t, `
component P { x: f32 }
fn f(q: query<P, P>) { for e in q { e.P.x = 1.0; } }`)
	_ = ctx
}

func TestDiagnosticsAccumulate(t *testing.T) {
	_, diags := checkSrc(t, `
fn f() {
	let a: i32 = "one";
	let b: i32 = "two";
	let c = undefined_thing;
}`)
	assert.GreaterOrEqual(t, diags.Len(), 3)
}
