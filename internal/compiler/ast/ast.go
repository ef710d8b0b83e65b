// Package ast defines the syntax tree produced by the parser. The checker
// decorates a few nodes with resolved type information (fields documented
// as "set by the checker") that the code generator relies on.
package ast

import (
	"fmt"
	"strings"

	"github.com/lumen-lang/lumen/internal/compiler/token"
	"github.com/lumen-lang/lumen/internal/compiler/types"
)

// Node is the interface implemented by every syntax tree node.
type Node interface {
	Pos() token.Pos
	String() string
}

// Decl is a top-level declaration.
type Decl interface {
	Node
	declNode()
}

// Stmt is a statement.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression.
type Expr interface {
	Node
	exprNode()
}

// TypeExpr is a syntactic type reference, resolved by the checker.
type TypeExpr interface {
	Node
	typeExprNode()
}

// Pattern is a match arm pattern.
type Pattern interface {
	Node
	patternNode()
}

// File is one parsed compilation unit.
type File struct {
	Decls []Decl
}

func (f *File) Pos() token.Pos {
	if len(f.Decls) > 0 {
		return f.Decls[0].Pos()
	}
	return token.Pos{Line: 1, Column: 1}
}

func (f *File) String() string {
	parts := make([]string, len(f.Decls))
	for i, d := range f.Decls {
		parts[i] = d.String()
	}
	return strings.Join(parts, "\n")
}

// ---------------------------------------------------------------- attributes

// AttrArg is one argument of an attribute: positional (Key == "") or
// key = value.
type AttrArg struct {
	Key     string
	Value   string
	ArgPos  token.Pos
}

// Attribute is a parsed @name(...) or @[name(...)] marker attached to the
// declaration that follows it. Placement rules are checked semantically.
type Attribute struct {
	AtPos     token.Pos
	Name      string
	Bracketed bool // @[...] form
	Args      []AttrArg
}

func (a *Attribute) Pos() token.Pos { return a.AtPos }

func (a *Attribute) String() string {
	var b strings.Builder
	if a.Bracketed {
		b.WriteString("@[")
	} else {
		b.WriteString("@")
	}
	b.WriteString(a.Name)
	if len(a.Args) > 0 {
		b.WriteString("(")
		for i, arg := range a.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			if arg.Key != "" {
				b.WriteString(arg.Key + " = ")
			}
			b.WriteString(arg.Value)
		}
		b.WriteString(")")
	}
	if a.Bracketed {
		b.WriteString("]")
	}
	return b.String()
}

// Arg returns the value of the named key argument, or "".
func (a *Attribute) Arg(key string) string {
	for _, arg := range a.Args {
		if arg.Key == key {
			return arg.Value
		}
	}
	return ""
}

// --------------------------------------------------------------- type exprs

// NamedType is a reference to a declared or built-in type name.
type NamedType struct {
	Name    string
	NamePos token.Pos
}

func (t *NamedType) Pos() token.Pos { return t.NamePos }
func (t *NamedType) String() string { return t.Name }
func (t *NamedType) typeExprNode()  {}

// ArrayType is [Elem].
type ArrayType struct {
	Lbrack token.Pos
	Elem   TypeExpr
}

func (t *ArrayType) Pos() token.Pos { return t.Lbrack }
func (t *ArrayType) String() string { return "[" + t.Elem.String() + "]" }
func (t *ArrayType) typeExprNode()  {}

// OptionalType is ?Elem.
type OptionalType struct {
	Question token.Pos
	Elem     TypeExpr
}

func (t *OptionalType) Pos() token.Pos { return t.Question }
func (t *OptionalType) String() string { return "?" + t.Elem.String() }
func (t *OptionalType) typeExprNode()  {}

// QueryType is query<C1, C2, ...>; at least one argument.
type QueryType struct {
	QueryPos token.Pos
	Args     []*NamedType
}

func (t *QueryType) Pos() token.Pos { return t.QueryPos }
func (t *QueryType) String() string {
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return "query<" + strings.Join(parts, ", ") + ">"
}
func (t *QueryType) typeExprNode() {}

// ------------------------------------------------------------- declarations

// FieldDecl is one field of a struct or component declaration.
type FieldDecl struct {
	Name    string
	NamePos token.Pos
	Type    TypeExpr
	Default Expr // optional, components only
}

func (f *FieldDecl) String() string {
	s := f.Name + ": " + f.Type.String()
	if f.Default != nil {
		s += " = " + f.Default.String()
	}
	return s
}

// StructDecl is `struct Name { field: Type, ... }`.
type StructDecl struct {
	Attrs     []*Attribute
	StructPos token.Pos
	Name      string
	NamePos   token.Pos
	Fields    []FieldDecl
}

func (d *StructDecl) Pos() token.Pos { return d.StructPos }
func (d *StructDecl) String() string { return "struct " + d.Name }
func (d *StructDecl) declNode()      {}

// ComponentDecl is `component Name { ... }` or `component_soa Name { ... }`.
type ComponentDecl struct {
	Attrs   []*Attribute
	KwPos   token.Pos
	Name    string
	NamePos token.Pos
	Soa     bool
	Fields  []FieldDecl
}

func (d *ComponentDecl) Pos() token.Pos { return d.KwPos }
func (d *ComponentDecl) String() string {
	kw := "component"
	if d.Soa {
		kw = "component_soa"
	}
	return kw + " " + d.Name
}
func (d *ComponentDecl) declNode() {}

// TypeAliasDecl is `type Name = Target`.
type TypeAliasDecl struct {
	Attrs   []*Attribute
	TypePos token.Pos
	Name    string
	NamePos token.Pos
	Target  TypeExpr
}

func (d *TypeAliasDecl) Pos() token.Pos { return d.TypePos }
func (d *TypeAliasDecl) String() string { return "type " + d.Name + " = " + d.Target.String() }
func (d *TypeAliasDecl) declNode()      {}

// ParamDecl is one formal parameter.
type ParamDecl struct {
	Name    string
	NamePos token.Pos
	Type    TypeExpr
}

// FuncDecl is `fn name(params) [: Ret] { ... }`, possibly attributed.
type FuncDecl struct {
	Attrs   []*Attribute
	FnPos   token.Pos
	Name    string
	NamePos token.Pos
	Params  []ParamDecl
	Result  TypeExpr // nil for void
	Body    *BlockStmt
}

func (d *FuncDecl) Pos() token.Pos { return d.FnPos }
func (d *FuncDecl) String() string { return "fn " + d.Name }
func (d *FuncDecl) declNode()      {}

// Attr returns the first attribute with the given name, or nil.
func (d *FuncDecl) Attr(name string) *Attribute {
	for _, a := range d.Attrs {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// ShaderClause is one `shader <stage> "path"` line inside a pipeline.
type ShaderClause struct {
	Stage    string
	Path     string
	StagePos token.Pos
}

// BindingClause is one `binding N: kind Type` line inside a layout block.
type BindingClause struct {
	Index    int
	Kind     string
	TypeName string
	BindPos  token.Pos
}

// PipelineDecl is a render pipeline declaration.
type PipelineDecl struct {
	Attrs    []*Attribute
	PipePos  token.Pos
	Name     string
	NamePos  token.Pos
	Shaders  []ShaderClause
	Bindings []BindingClause
}

func (d *PipelineDecl) Pos() token.Pos { return d.PipePos }
func (d *PipelineDecl) String() string { return "pipeline " + d.Name }
func (d *PipelineDecl) declNode()      {}

// ShaderDecl is a standalone `shader <stage> "path"` declaration.
type ShaderDecl struct {
	Attrs     []*Attribute
	ShaderPos token.Pos
	Stage     string
	StagePos  token.Pos
	Path      string
}

func (d *ShaderDecl) Pos() token.Pos { return d.ShaderPos }
func (d *ShaderDecl) String() string { return "shader " + d.Stage + " " + strconvQuote(d.Path) }
func (d *ShaderDecl) declNode()      {}

// ResourceDecl is `resource Name: Kind = "path"`.
type ResourceDecl struct {
	Attrs   []*Attribute
	ResPos  token.Pos
	Name    string
	NamePos token.Pos
	Kind    string
	KindPos token.Pos
	Path    string
}

func (d *ResourceDecl) Pos() token.Pos { return d.ResPos }
func (d *ResourceDecl) String() string {
	return "resource " + d.Name + ": " + d.Kind + " = " + strconvQuote(d.Path)
}
func (d *ResourceDecl) declNode() {}

// MeshDecl is `mesh Name = "path"`.
type MeshDecl struct {
	Attrs   []*Attribute
	MeshPos token.Pos
	Name    string
	NamePos token.Pos
	Path    string
}

func (d *MeshDecl) Pos() token.Pos { return d.MeshPos }
func (d *MeshDecl) String() string { return "mesh " + d.Name + " = " + strconvQuote(d.Path) }
func (d *MeshDecl) declNode()      {}

// --------------------------------------------------------------- statements

// BlockStmt is `{ stmts }`.
type BlockStmt struct {
	Lbrace token.Pos
	Stmts  []Stmt
}

func (s *BlockStmt) Pos() token.Pos { return s.Lbrace }
func (s *BlockStmt) String() string { return fmt.Sprintf("{ %d stmts }", len(s.Stmts)) }
func (s *BlockStmt) stmtNode()      {}

// LetStmt is `let name [: T] = value;`.
type LetStmt struct {
	LetPos  token.Pos
	Name    string
	NamePos token.Pos
	Type    TypeExpr // nil when inferred
	Value   Expr
}

func (s *LetStmt) Pos() token.Pos { return s.LetPos }
func (s *LetStmt) String() string {
	if s.Type != nil {
		return "let " + s.Name + ": " + s.Type.String() + " = " + s.Value.String()
	}
	return "let " + s.Name + " = " + s.Value.String()
}
func (s *LetStmt) stmtNode() {}

// AssignStmt is `target op value;` where op is = += -= *= /=.
type AssignStmt struct {
	Target Expr
	Op     token.Type
	OpPos  token.Pos
	Value  Expr
}

func (s *AssignStmt) Pos() token.Pos { return s.Target.Pos() }
func (s *AssignStmt) String() string {
	return s.Target.String() + " " + s.Op.String() + " " + s.Value.String()
}
func (s *AssignStmt) stmtNode() {}

// IfStmt is `if cond { } [else ...]`; Else is a *BlockStmt, another
// *IfStmt, or nil.
type IfStmt struct {
	IfPos token.Pos
	Cond  Expr
	Then  *BlockStmt
	Else  Stmt
}

func (s *IfStmt) Pos() token.Pos { return s.IfPos }
func (s *IfStmt) String() string { return "if " + s.Cond.String() }
func (s *IfStmt) stmtNode()      {}

// WhileStmt is `while cond { }`.
type WhileStmt struct {
	WhilePos token.Pos
	Cond     Expr
	Body     *BlockStmt
}

func (s *WhileStmt) Pos() token.Pos { return s.WhilePos }
func (s *WhileStmt) String() string { return "while " + s.Cond.String() }
func (s *WhileStmt) stmtNode()      {}

// LoopStmt is `loop { }`, an infinite loop exited by break/return.
type LoopStmt struct {
	LoopPos token.Pos
	Body    *BlockStmt
}

func (s *LoopStmt) Pos() token.Pos { return s.LoopPos }
func (s *LoopStmt) String() string { return "loop" }
func (s *LoopStmt) stmtNode()      {}

// ForInStmt is `for name in iter { }`. Over a query the bound name is an
// opaque entity handle; over an array it is the element.
type ForInStmt struct {
	ForPos  token.Pos
	Name    string
	NamePos token.Pos
	Iter    Expr
	Body    *BlockStmt

	// Query is set by the checker when Iter is a query; nil means array
	// iteration with Elem holding the element type.
	Query *types.Query
	Elem  types.Type
}

func (s *ForInStmt) Pos() token.Pos { return s.ForPos }
func (s *ForInStmt) String() string { return "for " + s.Name + " in " + s.Iter.String() }
func (s *ForInStmt) stmtNode()      {}

// ReturnStmt is `return [value];`.
type ReturnStmt struct {
	RetPos token.Pos
	Value  Expr // nil for bare return
}

func (s *ReturnStmt) Pos() token.Pos { return s.RetPos }
func (s *ReturnStmt) String() string {
	if s.Value == nil {
		return "return"
	}
	return "return " + s.Value.String()
}
func (s *ReturnStmt) stmtNode() {}

// DeferStmt is `defer expr;`; expr runs at scope exit.
type DeferStmt struct {
	DeferPos token.Pos
	Call     Expr
}

func (s *DeferStmt) Pos() token.Pos { return s.DeferPos }
func (s *DeferStmt) String() string { return "defer " + s.Call.String() }
func (s *DeferStmt) stmtNode()      {}

// MatchArm is one `pattern => { body }` arm.
type MatchArm struct {
	Pattern Pattern
	Body    *BlockStmt
}

// MatchStmt is a statement-position match.
type MatchStmt struct {
	MatchPos  token.Pos
	Scrutinee Expr
	Arms      []MatchArm
}

func (s *MatchStmt) Pos() token.Pos { return s.MatchPos }
func (s *MatchStmt) String() string { return "match " + s.Scrutinee.String() }
func (s *MatchStmt) stmtNode()      {}

// BreakStmt is `break;`.
type BreakStmt struct {
	BreakPos token.Pos
}

func (s *BreakStmt) Pos() token.Pos { return s.BreakPos }
func (s *BreakStmt) String() string { return "break" }
func (s *BreakStmt) stmtNode()      {}

// ContinueStmt is `continue;`.
type ContinueStmt struct {
	ContPos token.Pos
}

func (s *ContinueStmt) Pos() token.Pos { return s.ContPos }
func (s *ContinueStmt) String() string { return "continue" }
func (s *ContinueStmt) stmtNode()      {}

// ExprStmt is an expression in statement position.
type ExprStmt struct {
	X Expr
}

func (s *ExprStmt) Pos() token.Pos { return s.X.Pos() }
func (s *ExprStmt) String() string { return s.X.String() }
func (s *ExprStmt) stmtNode()      {}

// ----------------------------------------------------------------- patterns

// LiteralPattern matches when the scrutinee equals the literal.
type LiteralPattern struct {
	Lit Expr
}

func (p *LiteralPattern) Pos() token.Pos { return p.Lit.Pos() }
func (p *LiteralPattern) String() string { return p.Lit.String() }
func (p *LiteralPattern) patternNode()   {}

// BindPattern always matches, binding the scrutinee to a fresh variable
// for the arm body.
type BindPattern struct {
	Name    string
	NamePos token.Pos
}

func (p *BindPattern) Pos() token.Pos { return p.NamePos }
func (p *BindPattern) String() string { return p.Name }
func (p *BindPattern) patternNode()   {}

// WildcardPattern is `_`; always matches, binds nothing.
type WildcardPattern struct {
	UnderPos token.Pos
}

func (p *WildcardPattern) Pos() token.Pos { return p.UnderPos }
func (p *WildcardPattern) String() string { return "_" }
func (p *WildcardPattern) patternNode()   {}

// -------------------------------------------------------------- expressions

// Ident is a variable or function reference.
type Ident struct {
	Name    string
	NamePos token.Pos
}

func (e *Ident) Pos() token.Pos { return e.NamePos }
func (e *Ident) String() string { return e.Name }
func (e *Ident) exprNode()      {}

// IntLit is a decimal integer literal.
type IntLit struct {
	Raw    string
	LitPos token.Pos

	// Type is set by the checker: i32 by default, or the adopted
	// declared type.
	Type types.Type
}

func (e *IntLit) Pos() token.Pos { return e.LitPos }
func (e *IntLit) String() string { return e.Raw }
func (e *IntLit) exprNode()      {}

// FloatLit is a floating point literal.
type FloatLit struct {
	Raw    string
	LitPos token.Pos

	// Type is set by the checker: f32 by default, or the adopted
	// declared type.
	Type types.Type
}

func (e *FloatLit) Pos() token.Pos { return e.LitPos }
func (e *FloatLit) String() string { return e.Raw }
func (e *FloatLit) exprNode()      {}

// BoolLit is `true` or `false`.
type BoolLit struct {
	Value  bool
	LitPos token.Pos
}

func (e *BoolLit) Pos() token.Pos { return e.LitPos }
func (e *BoolLit) String() string {
	if e.Value {
		return "true"
	}
	return "false"
}
func (e *BoolLit) exprNode() {}

// NullLit is `null`, typed against an optional from context.
type NullLit struct {
	LitPos token.Pos
}

func (e *NullLit) Pos() token.Pos { return e.LitPos }
func (e *NullLit) String() string { return "null" }
func (e *NullLit) exprNode()      {}

// InterpPart is one segment of a string literal: literal text (Var == "")
// or an interpolated variable reference.
type InterpPart struct {
	Text    string
	Var     string
	PartPos token.Pos

	// VarType is set by the checker for variable parts.
	VarType types.Type
}

// StringLit is a string literal split into interpolation parts. A plain
// string is a single text part; an empty string has no parts.
type StringLit struct {
	LitPos token.Pos
	Parts  []InterpPart
}

func (e *StringLit) Pos() token.Pos { return e.LitPos }
func (e *StringLit) String() string {
	var b strings.Builder
	b.WriteString("\"")
	for _, p := range e.Parts {
		if p.Var != "" {
			b.WriteString("{" + p.Var + "}")
		} else {
			b.WriteString(p.Text)
		}
	}
	b.WriteString("\"")
	return b.String()
}
func (e *StringLit) exprNode() {}

// BinaryExpr is `l op r`.
type BinaryExpr struct {
	L     Expr
	Op    token.Type
	OpPos token.Pos
	R     Expr
}

func (e *BinaryExpr) Pos() token.Pos { return e.L.Pos() }
func (e *BinaryExpr) String() string {
	return "(" + e.L.String() + " " + e.Op.String() + " " + e.R.String() + ")"
}
func (e *BinaryExpr) exprNode() {}

// UnaryExpr is `op x` for ! and unary -.
type UnaryExpr struct {
	Op    token.Type
	OpPos token.Pos
	X     Expr
}

func (e *UnaryExpr) Pos() token.Pos { return e.OpPos }
func (e *UnaryExpr) String() string { return "(" + e.Op.String() + e.X.String() + ")" }
func (e *UnaryExpr) exprNode()      {}

// CallExpr is `fun(args)`.
type CallExpr struct {
	Fun  Expr
	Args []Expr
}

func (e *CallExpr) Pos() token.Pos { return e.Fun.Pos() }
func (e *CallExpr) String() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
	}
	return e.Fun.String() + "(" + strings.Join(parts, ", ") + ")"
}
func (e *CallExpr) exprNode() {}

// MemberExpr is `x.name`.
type MemberExpr struct {
	X       Expr
	Name    string
	NamePos token.Pos

	// EntityComp is set by the checker when this node is the field half
	// of an entity access (entity.Component.field); it names the
	// component so codegen can pick the storage dispatch form.
	EntityComp *types.Component
	// EntityVar is the loop variable name of the entity access.
	EntityVar string
}

func (e *MemberExpr) Pos() token.Pos { return e.X.Pos() }
func (e *MemberExpr) String() string { return e.X.String() + "." + e.Name }
func (e *MemberExpr) exprNode()      {}

// IndexExpr is `x[index]`.
type IndexExpr struct {
	X     Expr
	Index Expr
}

func (e *IndexExpr) Pos() token.Pos { return e.X.Pos() }
func (e *IndexExpr) String() string { return e.X.String() + "[" + e.Index.String() + "]" }
func (e *IndexExpr) exprNode()      {}

// ArrayLit is `[a, b, c]`.
type ArrayLit struct {
	Lbrack token.Pos
	Elems  []Expr

	// Elem is the element type, set by the checker (inferred from the
	// first element or adopted from the declared type).
	Elem types.Type
}

func (e *ArrayLit) Pos() token.Pos { return e.Lbrack }
func (e *ArrayLit) String() string {
	parts := make([]string, len(e.Elems))
	for i, el := range e.Elems {
		parts[i] = el.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (e *ArrayLit) exprNode() {}

// StructLitField is one `name: value` initializer.
type StructLitField struct {
	Name    string
	NamePos token.Pos
	Value   Expr
}

// StructLit is `Name { field: value, ... }`.
type StructLit struct {
	Name    string
	NamePos token.Pos
	Fields  []StructLitField

	// Struct is the resolved declaration, set by the checker.
	Struct *types.Struct
}

func (e *StructLit) Pos() token.Pos { return e.NamePos }
func (e *StructLit) String() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Name + ": " + f.Value.String()
	}
	return e.Name + " { " + strings.Join(parts, ", ") + " }"
}
func (e *StructLit) exprNode() {}

// AllocArrayExpr is the special-cased `arena.alloc_array<T>(count)` call.
type AllocArrayExpr struct {
	Arena Expr
	Elem  TypeExpr
	Count Expr

	// ElemType is the resolved element type, set by the checker.
	ElemType types.Type
}

func (e *AllocArrayExpr) Pos() token.Pos { return e.Arena.Pos() }
func (e *AllocArrayExpr) String() string {
	return e.Arena.String() + ".alloc_array<" + e.Elem.String() + ">(" + e.Count.String() + ")"
}
func (e *AllocArrayExpr) exprNode() {}

// UnwrapExpr is `x.unwrap()`, yielding the optional's element.
type UnwrapExpr struct {
	X Expr
}

func (e *UnwrapExpr) Pos() token.Pos { return e.X.Pos() }
func (e *UnwrapExpr) String() string { return e.X.String() + ".unwrap()" }
func (e *UnwrapExpr) exprNode()      {}

func strconvQuote(s string) string { return fmt.Sprintf("%q", s) }
