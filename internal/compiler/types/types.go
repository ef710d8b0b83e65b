// Package types defines the type representation shared by the checker and
// the code generator, the lexical scope chain, and the registries the
// compilation run collects for artifact emission.
package types

import (
	"strings"

	"github.com/lumen-lang/lumen/internal/compiler/token"
)

// Type is the interface implemented by all type representations. Aggregates
// (structs, components) compare nominally, containers structurally.
type Type interface {
	String() string
	isType()
}

// BasicKind identifies a primitive type.
type BasicKind int

const (
	InvalidKind BasicKind = iota
	I8
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	F32
	F64
	Bool
	String
	Void
)

// Basic is a primitive type. All Basics are singletons in Typ; compare by
// pointer or kind.
type Basic struct {
	Kind BasicKind
	name string
}

func (b *Basic) String() string { return b.name }
func (b *Basic) isType()        {}

// Typ holds the canonical instance of every primitive type, indexed by kind.
var Typ = [...]*Basic{
	InvalidKind: {InvalidKind, "<invalid>"},
	I8:          {I8, "i8"},
	I16:         {I16, "i16"},
	I32:         {I32, "i32"},
	I64:         {I64, "i64"},
	U8:          {U8, "u8"},
	U16:         {U16, "u16"},
	U32:         {U32, "u32"},
	U64:         {U64, "u64"},
	F32:         {F32, "f32"},
	F64:         {F64, "f64"},
	Bool:        {Bool, "bool"},
	String:      {String, "string"},
	Void:        {Void, "void"},
}

// Invalid is the error-recovery type. Every rule treats it as compatible so
// one bad expression does not cascade.
var Invalid = Typ[InvalidKind]

// Array is a dynamic array [T].
type Array struct {
	Elem Type
}

func (a *Array) String() string { return "[" + a.Elem.String() + "]" }
func (a *Array) isType()        {}

// Optional is a nullable ?T.
type Optional struct {
	Elem Type
}

func (o *Optional) String() string { return "?" + o.Elem.String() }
func (o *Optional) isType()        {}

// Field is one named field of a struct or component.
type Field struct {
	Name string
	Type Type
	// DefaultLit holds a component field's default value rendered as a
	// target-language literal, or "" when the field has no default.
	DefaultLit string
	Pos        token.Pos
}

// Struct is a user-declared plain aggregate. Nominal: two structs are the
// same type only if they are the same declaration.
type Struct struct {
	Name    string
	Fields  []Field
	Builtin bool // Vec2/Vec3/Vec4/Mat4, pre-registered, not re-emitted
}

func (s *Struct) String() string { return s.Name }
func (s *Struct) isType()        {}

// Field returns the named field, or nil.
func (s *Struct) Field(name string) *Field {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i]
		}
	}
	return nil
}

// Storage distinguishes how a component's instances are laid out.
type Storage int

const (
	StorageRows    Storage = iota // one record per entity (AoS)
	StorageColumns                // one array per field (SOA)
)

func (s Storage) String() string {
	if s == StorageColumns {
		return "soa"
	}
	return "rows"
}

// Component is a user-declared entity component. Nominal, like Struct.
// For StorageColumns components the field types as written are array
// types; FieldElem gives the per-entity element type.
type Component struct {
	Name    string
	Storage Storage
	Fields  []Field
	Hot     bool
	Pos     token.Pos
}

func (c *Component) String() string { return c.Name }
func (c *Component) isType()        {}

func (c *Component) Field(name string) *Field {
	for i := range c.Fields {
		if c.Fields[i].Name == name {
			return &c.Fields[i]
		}
	}
	return nil
}

// FieldElem returns the per-entity type of the named field: the field type
// itself for row storage, the array element type for column storage.
func (c *Component) FieldElem(name string) Type {
	f := c.Field(name)
	if f == nil {
		return nil
	}
	if c.Storage == StorageColumns {
		if arr, ok := f.Type.(*Array); ok {
			return arr.Elem
		}
	}
	return f.Type
}

// Query is an ordered, deduplicated set of components an iteration
// requires. Structural: two queries over the same component list are the
// same type.
type Query struct {
	Components []*Component
}

func (q *Query) String() string {
	names := make([]string, len(q.Components))
	for i, c := range q.Components {
		names[i] = c.Name
	}
	return "query<" + strings.Join(names, ", ") + ">"
}
func (q *Query) isType() {}

// Has returns the named member component, or nil.
func (q *Query) Has(name string) *Component {
	for _, c := range q.Components {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Entity is the opaque handle bound by `for entity in q`. It exists only
// inside the loop body and carries the query for member-access checking.
type Entity struct {
	Query *Query
}

func (e *Entity) String() string { return "entity of " + e.Query.String() }
func (e *Entity) isType()        {}

// Frame is the frame-scoped allocator handle type (FrameArena).
type Frame struct{}

func (f *Frame) String() string { return "FrameArena" }
func (f *Frame) isType()        {}

// FrameArena is the canonical frame handle type.
var FrameArena = &Frame{}

// Param is one formal parameter of a function signature.
type Param struct {
	Name string
	Type Type
	Pos  token.Pos
}

// Func is a function signature. Result is Typ[Void] for procedures.
type Func struct {
	Name   string
	Params []Param
	Result Type
}

func (f *Func) String() string {
	var b strings.Builder
	b.WriteString("fn(")
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Type.String())
	}
	b.WriteString(")")
	if f.Result != Typ[Void] {
		b.WriteString(": " + f.Result.String())
	}
	return b.String()
}
func (f *Func) isType() {}

// Identical reports whether a and b are the same type: pointer identity
// for nominal aggregates and primitives, element-wise for containers and
// queries. Invalid is identical to everything to stop error cascades.
func Identical(a, b Type) bool {
	if a == Invalid || b == Invalid {
		return true
	}
	if a == b {
		return true
	}
	switch at := a.(type) {
	case *Basic:
		bt, ok := b.(*Basic)
		return ok && at.Kind == bt.Kind
	case *Array:
		bt, ok := b.(*Array)
		return ok && Identical(at.Elem, bt.Elem)
	case *Optional:
		bt, ok := b.(*Optional)
		return ok && Identical(at.Elem, bt.Elem)
	case *Query:
		bt, ok := b.(*Query)
		if !ok || len(at.Components) != len(bt.Components) {
			return false
		}
		for i := range at.Components {
			if at.Components[i] != bt.Components[i] {
				return false
			}
		}
		return true
	case *Frame:
		_, ok := b.(*Frame)
		return ok
	}
	return false
}

// IsInteger reports whether t is a fixed-width integer type.
func IsInteger(t Type) bool {
	b, ok := t.(*Basic)
	return ok && b.Kind >= I8 && b.Kind <= U64
}

// IsFloat reports whether t is a floating point type.
func IsFloat(t Type) bool {
	b, ok := t.(*Basic)
	return ok && (b.Kind == F32 || b.Kind == F64)
}

// IsNumeric reports whether t is an integer or float type.
func IsNumeric(t Type) bool {
	return IsInteger(t) || IsFloat(t)
}

// IsBool reports whether t is the boolean type.
func IsBool(t Type) bool {
	b, ok := t.(*Basic)
	return ok && b.Kind == Bool
}

// IsString reports whether t is the string type.
func IsString(t Type) bool {
	b, ok := t.(*Basic)
	return ok && b.Kind == String
}

// IsPrintable reports whether t may appear in a string interpolation span
// or a print argument.
func IsPrintable(t Type) bool {
	return IsNumeric(t) || IsBool(t) || IsString(t)
}
