package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-lang/lumen/internal/compiler/ast"
	"github.com/lumen-lang/lumen/internal/compiler/diag"
	"github.com/lumen-lang/lumen/internal/compiler/lexer"
)

func parseFile(t *testing.T, src string) (*ast.File, *diag.List) {
	t.Helper()
	toks, err := lexer.Lex(src)
	require.NoError(t, err)
	diags := &diag.List{}
	file := Parse(toks, diags)
	return file, diags
}

func parseOK(t *testing.T, src string) *ast.File {
	t.Helper()
	file, diags := parseFile(t, src)
	require.False(t, diags.HasErrors(), "unexpected parse errors: %v", diags.All())
	return file
}

func TestParseFunction(t *testing.T) {
	file := parseOK(t, `
fn add(a: i32, b: i32): i32 {
	return a + b;
}`)
	require.Len(t, file.Decls, 1)
	fn, ok := file.Decls[0].(*ast.FuncDecl)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "i32", fn.Params[0].Type.String())
	assert.Equal(t, "i32", fn.Result.String())
	require.Len(t, fn.Body.Stmts, 1)
}

func TestParseComponentDecls(t *testing.T) {
	file := parseOK(t, `
component Position { x: f32, y: f32, z: f32 }
component_soa Velocity { x: [f32], y: [f32], z: [f32] }
component Health { current: i32 = 100, max: i32 = 100 }`)
	require.Len(t, file.Decls, 3)

	pos := file.Decls[0].(*ast.ComponentDecl)
	assert.False(t, pos.Soa)
	assert.Len(t, pos.Fields, 3)

	vel := file.Decls[1].(*ast.ComponentDecl)
	assert.True(t, vel.Soa)
	assert.Equal(t, "[f32]", vel.Fields[0].Type.String())

	health := file.Decls[2].(*ast.ComponentDecl)
	require.NotNil(t, health.Fields[0].Default)
	assert.Equal(t, "100", health.Fields[0].Default.String())
}

func TestParseSystemAttribute(t *testing.T) {
	file := parseOK(t, `
@system(movement, after = physics, before = render)
fn update_movement(q: query<Position, Velocity>) {
}`)
	fn := file.Decls[0].(*ast.FuncDecl)
	attr := fn.Attr("system")
	require.NotNil(t, attr)
	require.Len(t, attr.Args, 3)
	assert.Equal(t, "movement", attr.Args[0].Value)
	assert.Equal(t, "physics", attr.Arg("after"))
	assert.Equal(t, "render", attr.Arg("before"))
	assert.Equal(t, "query<Position, Velocity>", fn.Params[0].Type.String())
}

func TestParseBracketedAttributes(t *testing.T) {
	file := parseOK(t, `
@[cuda]
@[launch(kernel = simulate)]
fn step(dt: f32) {
}`)
	fn := file.Decls[0].(*ast.FuncDecl)
	require.Len(t, fn.Attrs, 2)
	assert.True(t, fn.Attrs[0].Bracketed)
	assert.Equal(t, "cuda", fn.Attrs[0].Name)
	assert.Equal(t, "simulate", fn.Attrs[1].Arg("kernel"))
}

func TestParsePipeline(t *testing.T) {
	file := parseOK(t, `
pipeline Sprite {
	shader vertex "sprite.vert"
	shader fragment "sprite.frag"
	layout {
		binding 0: uniform Mat4
		binding 1: sampler Texture2D
	}
}`)
	pd := file.Decls[0].(*ast.PipelineDecl)
	assert.Equal(t, "Sprite", pd.Name)
	require.Len(t, pd.Shaders, 2)
	assert.Equal(t, "vertex", pd.Shaders[0].Stage)
	assert.Equal(t, "sprite.vert", pd.Shaders[0].Path)
	require.Len(t, pd.Bindings, 2)
	assert.Equal(t, 1, pd.Bindings[1].Index)
	assert.Equal(t, "sampler", pd.Bindings[1].Kind)
	assert.Equal(t, "Texture2D", pd.Bindings[1].TypeName)
}

func TestParseAssetDecls(t *testing.T) {
	file := parseOK(t, `
type Health = i32
resource Explosion: Sound = "audio/boom.wav"
mesh Ship = "models/ship.obj"
shader compute "sim.comp"
@hot shader fragment "post.frag" { }`)
	require.Len(t, file.Decls, 5)

	alias := file.Decls[0].(*ast.TypeAliasDecl)
	assert.Equal(t, "i32", alias.Target.String())

	res := file.Decls[1].(*ast.ResourceDecl)
	assert.Equal(t, "Sound", res.Kind)
	assert.Equal(t, "audio/boom.wav", res.Path)

	mesh := file.Decls[2].(*ast.MeshDecl)
	assert.Equal(t, "models/ship.obj", mesh.Path)

	sh := file.Decls[4].(*ast.ShaderDecl)
	assert.Equal(t, "fragment", sh.Stage)
	require.Len(t, sh.Attrs, 1)
	assert.Equal(t, "hot", sh.Attrs[0].Name)
}

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"1 * 2 + 3", "((1 * 2) + 3)"},
		{"a < b && c < d", "((a < b) && (c < d))"},
		{"a || b && c", "(a || (b && c))"},
		{"-a * b", "((-a) * b)"},
		{"!done || x == 1", "((!done) || (x == 1))"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			file := parseOK(t, "fn f() { let v = "+tt.src+"; }")
			fn := file.Decls[0].(*ast.FuncDecl)
			let := fn.Body.Stmts[0].(*ast.LetStmt)
			assert.Equal(t, tt.want, let.Value.String())
		})
	}
}

func TestParseStatements(t *testing.T) {
	file := parseOK(t, `
fn f(q: query<Position>) {
	let xs: [i32] = [1, 2, 3];
	xs[0] = 10;
	xs[1] += 1;
	if xs[0] > 5 {
		while true {
			break;
		}
	} else if xs[0] == 0 {
		continue;
	} else {
		loop {
			return;
		}
	}
	for entity in q {
		entity.Position.x += 1.0;
	}
	defer cleanup();
}`)
	fn := file.Decls[0].(*ast.FuncDecl)
	require.Len(t, fn.Body.Stmts, 6)

	let := fn.Body.Stmts[0].(*ast.LetStmt)
	assert.Equal(t, "[i32]", let.Type.String())
	assert.Equal(t, "[1, 2, 3]", let.Value.String())

	forIn := fn.Body.Stmts[4].(*ast.ForInStmt)
	assert.Equal(t, "entity", forIn.Name)
	inner := forIn.Body.Stmts[0].(*ast.AssignStmt)
	assert.Equal(t, "entity.Position.x", inner.Target.String())
}

func TestParseMatch(t *testing.T) {
	file := parseOK(t, `
fn classify(x: i32) {
	match x {
		0 => { }
		value => { print(value); }
		_ => { }
	}
}`)
	fn := file.Decls[0].(*ast.FuncDecl)
	m := fn.Body.Stmts[0].(*ast.MatchStmt)
	require.Len(t, m.Arms, 3)
	_, isLit := m.Arms[0].Pattern.(*ast.LiteralPattern)
	assert.True(t, isLit)
	bind, isBind := m.Arms[1].Pattern.(*ast.BindPattern)
	require.True(t, isBind)
	assert.Equal(t, "value", bind.Name)
	_, isWild := m.Arms[2].Pattern.(*ast.WildcardPattern)
	assert.True(t, isWild)
}

func TestParseAllocArrayAndUnwrap(t *testing.T) {
	file := parseOK(t, `
fn f(frame: FrameArena, maybe: ?i32) {
	let p = frame.alloc_array<Vec3>(10);
	let v = maybe.unwrap();
}`)
	fn := file.Decls[0].(*ast.FuncDecl)

	alloc := fn.Body.Stmts[0].(*ast.LetStmt).Value.(*ast.AllocArrayExpr)
	assert.Equal(t, "Vec3", alloc.Elem.String())
	assert.Equal(t, "10", alloc.Count.String())

	_, isUnwrap := fn.Body.Stmts[1].(*ast.LetStmt).Value.(*ast.UnwrapExpr)
	assert.True(t, isUnwrap)
	assert.Equal(t, "?i32", fn.Params[1].Type.String())
}

func TestParseStructLiteralDisambiguation(t *testing.T) {
	file := parseOK(t, `
fn f(x: i32) {
	let v = Vec3 { x: 1.0, y: 2.0, z: 3.0 };
	if x { let y = 1; }
}`)
	fn := file.Decls[0].(*ast.FuncDecl)
	lit, ok := fn.Body.Stmts[0].(*ast.LetStmt).Value.(*ast.StructLit)
	require.True(t, ok)
	assert.Len(t, lit.Fields, 3)

	// `if x {` must stay a condition plus block, not a struct literal.
	ifs, ok := fn.Body.Stmts[1].(*ast.IfStmt)
	require.True(t, ok)
	assert.Equal(t, "x", ifs.Cond.String())
}

func TestParseEmptyBlockAfterHeader(t *testing.T) {
	file := parseOK(t, `
fn f(x: i32, q: query<Position>) {
	if x { }
	while x { }
	for e in q { }
	match x { 0 => { } }
	if inside(Vec2 { x: 1.0, y: 2.0 }) { }
}`)
	fn := file.Decls[0].(*ast.FuncDecl)
	require.Len(t, fn.Body.Stmts, 5)

	ifs := fn.Body.Stmts[0].(*ast.IfStmt)
	assert.Equal(t, "x", ifs.Cond.String())
	assert.Empty(t, ifs.Then.Stmts)

	ws := fn.Body.Stmts[1].(*ast.WhileStmt)
	assert.Equal(t, "x", ws.Cond.String())

	forIn := fn.Body.Stmts[2].(*ast.ForInStmt)
	assert.Equal(t, "q", forIn.Iter.String())

	// Inside parentheses the ambiguity is gone, so a struct literal in a
	// condition still parses.
	call := fn.Body.Stmts[4].(*ast.IfStmt).Cond.(*ast.CallExpr)
	require.Len(t, call.Args, 1)
	_, isLit := call.Args[0].(*ast.StructLit)
	assert.True(t, isLit)
}

func TestParseInterpolation(t *testing.T) {
	file := parseOK(t, `fn f(health: i32) { let msg = "Health: {health} / 100"; }`)
	fn := file.Decls[0].(*ast.FuncDecl)
	lit := fn.Body.Stmts[0].(*ast.LetStmt).Value.(*ast.StringLit)
	require.Len(t, lit.Parts, 3)
	assert.Equal(t, "Health: ", lit.Parts[0].Text)
	assert.Equal(t, "health", lit.Parts[1].Var)
	assert.Equal(t, " / 100", lit.Parts[2].Text)
}

func TestParseInterpolationErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantMsg string
	}{
		{"Empty", `fn f() { let m = "bad {}"; }`, "empty interpolation"},
		{"Unterminated", `fn f() { let m = "bad {name"; }`, "unterminated interpolation"},
		{"NotAnIdent", `fn f() { let m = "bad {a+b}"; }`, "must be a variable name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, diags := parseFile(t, tt.src)
			require.True(t, diags.HasErrors())
			assert.Contains(t, diags.All()[0].Msg, tt.wantMsg)
		})
	}
}

func TestParseErrorRecovery(t *testing.T) {
	// Two broken statements plus a broken declaration: all three surface.
	_, diags := parseFile(t, `
fn f() {
	let = 1;
	let ok = 2;
	return +;
}
struct { }
fn g() { }`)
	require.True(t, diags.HasErrors())
	assert.GreaterOrEqual(t, diags.Len(), 3)
}

func TestParseQueryTypeRequiresArgs(t *testing.T) {
	_, diags := parseFile(t, `fn f(q: query<>) { }`)
	require.True(t, diags.HasErrors())
}
