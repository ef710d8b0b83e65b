package types

import "github.com/lumen-lang/lumen/internal/compiler/token"

// ObjKind classifies what a name refers to.
type ObjKind int

const (
	VarObj ObjKind = iota
	FuncObj
	TypeObj
	ResourceObj
	MeshObj
)

func (k ObjKind) String() string {
	switch k {
	case VarObj:
		return "variable"
	case FuncObj:
		return "function"
	case TypeObj:
		return "type"
	case ResourceObj:
		return "resource"
	case MeshObj:
		return "mesh"
	}
	return "object"
}

// Object is one named entity: a variable, function, type name, resource
// or mesh. The declaration position feeds diagnostics.
type Object struct {
	Name string
	Kind ObjKind
	Type Type
	Pos  token.Pos
}

// Scope is one level of the lexical scope chain. Lookup walks outward;
// Insert shadows outer bindings but rejects same-level duplicates.
type Scope struct {
	parent *Scope
	names  map[string]*Object
	order  []string
}

// NewScope returns a scope nested inside parent (nil for the outermost).
func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent, names: make(map[string]*Object)}
}

// Parent returns the enclosing scope, or nil.
func (s *Scope) Parent() *Scope { return s.parent }

// Insert adds obj to this scope. If the name is already bound at this
// level the existing object is returned and the scope is unchanged.
func (s *Scope) Insert(obj *Object) *Object {
	if prev, ok := s.names[obj.Name]; ok {
		return prev
	}
	s.names[obj.Name] = obj
	s.order = append(s.order, obj.Name)
	return nil
}

// Lookup resolves name through this scope and its ancestors, innermost
// binding first.
func (s *Scope) Lookup(name string) *Object {
	for sc := s; sc != nil; sc = sc.parent {
		if obj, ok := sc.names[name]; ok {
			return obj
		}
	}
	return nil
}

// LookupLocal resolves name in this scope only.
func (s *Scope) LookupLocal(name string) *Object {
	return s.names[name]
}

// VisibleNames returns every name resolvable from this scope, innermost
// first, in declaration order within each level. Shadowed outer names are
// included once. Used for "did you mean" suggestions.
func (s *Scope) VisibleNames() []string {
	seen := make(map[string]bool)
	var out []string
	for sc := s; sc != nil; sc = sc.parent {
		for _, name := range sc.order {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}
