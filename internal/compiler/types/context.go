package types

import "github.com/lumen-lang/lumen/internal/compiler/token"

// SystemInfo describes one @system function: the schedule name, the
// function implementing it, and its ordering constraints.
type SystemInfo struct {
	Name      string
	FuncName  string
	After     []string
	Before    []string
	DeclIndex int // position among system declarations, toposort tie-break
	Hot       bool
	Pos       token.Pos
}

// ShaderRef is one shader stage inside a pipeline.
type ShaderRef struct {
	Stage string // vertex, fragment, compute, geometry
	Path  string
	Pos   token.Pos
}

// BindingInfo is one descriptor binding inside a pipeline's layout block.
type BindingInfo struct {
	Index int
	Kind  string // uniform, sampler, storage
	Type  string // source-level type name, passed through to the runtime
	Pos   token.Pos
}

// PipelineInfo describes a declared render pipeline.
type PipelineInfo struct {
	Name     string
	Shaders  []ShaderRef
	Bindings []BindingInfo
	Pos      token.Pos
}

// ShaderInfo describes a standalone shader declaration.
type ShaderInfo struct {
	Stage string
	Path  string
	Hot   bool
	Pos   token.Pos
}

// ResourceInfo describes a named engine resource (texture, sound, ...).
type ResourceInfo struct {
	Name string
	Kind string
	Path string
	Pos  token.Pos
}

// MeshInfo describes a named mesh asset.
type MeshInfo struct {
	Name string
	Path string
	Pos  token.Pos
}

// AliasInfo records a type alias declaration for codegen.
type AliasInfo struct {
	Name   string
	Target Type
}

// Context is the per-compilation registry set. Built by the checker's
// first pass, extended during body checking, consumed by codegen. All
// slices preserve declaration order so emission is deterministic.
type Context struct {
	Structs    []*Struct
	Components []*Component
	Aliases    []AliasInfo
	Systems    []*SystemInfo
	Pipelines  []*PipelineInfo
	Shaders    []*ShaderInfo
	Resources  []*ResourceInfo
	Meshes     []*MeshInfo

	// SystemOrder holds indices into Systems in scheduled execution
	// order. Set by the checker once the dependency graph validates.
	SystemOrder []int
}

// NewContext returns an empty registry set for one compilation run.
func NewContext() *Context {
	return &Context{}
}

// ComponentNamed returns the registered component, or nil.
func (c *Context) ComponentNamed(name string) *Component {
	for _, comp := range c.Components {
		if comp.Name == name {
			return comp
		}
	}
	return nil
}

// SystemNamed returns the registered system, or nil.
func (c *Context) SystemNamed(name string) *SystemInfo {
	for _, s := range c.Systems {
		if s.Name == name {
			return s
		}
	}
	return nil
}
