package types

// Built-in math aggregates. Pre-registered nominal structs; the runtime
// defines the target-side layout, so codegen never re-emits them.
var (
	Vec2 = &Struct{Name: "Vec2", Builtin: true, Fields: []Field{
		{Name: "x", Type: Typ[F32]},
		{Name: "y", Type: Typ[F32]},
	}}
	Vec3 = &Struct{Name: "Vec3", Builtin: true, Fields: []Field{
		{Name: "x", Type: Typ[F32]},
		{Name: "y", Type: Typ[F32]},
		{Name: "z", Type: Typ[F32]},
	}}
	Vec4 = &Struct{Name: "Vec4", Builtin: true, Fields: []Field{
		{Name: "x", Type: Typ[F32]},
		{Name: "y", Type: Typ[F32]},
		{Name: "z", Type: Typ[F32]},
		{Name: "w", Type: Typ[F32]},
	}}
	// Mat4 is opaque: element access goes through runtime helpers, not
	// field syntax.
	Mat4 = &Struct{Name: "Mat4", Builtin: true}
)

// NewUniverse builds the outermost scope holding every predeclared type
// name. Each compilation run gets its own so runs never share state.
func NewUniverse() *Scope {
	s := NewScope(nil)
	for _, b := range Typ[I8 : Void+1] {
		s.Insert(&Object{Name: b.name, Kind: TypeObj, Type: b})
	}
	for _, st := range []*Struct{Vec2, Vec3, Vec4, Mat4} {
		s.Insert(&Object{Name: st.Name, Kind: TypeObj, Type: st})
	}
	s.Insert(&Object{Name: "FrameArena", Kind: TypeObj, Type: FrameArena})
	return s
}
