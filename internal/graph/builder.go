package graph

import (
	"errors"
	"fmt"

	"github.com/conduit-lang/esgraph/internal/decl"
)

// ErrFrozen is returned when a Builder is used after Freeze
var ErrFrozen = errors.New("graph is frozen")

// NodeSpec describes a node to add to the skeleton
type NodeSpec struct {
	ID            decl.ClassID
	GeneratedName string
	Kind          Kind
	IndexName     string
	Nested        bool
	Parent        decl.ClassID // "" for roots
	Position      decl.Position
}

// Builder assembles a Graph. Nodes must be added parents-first; fields may be
// added to any existing node until Freeze is called.
type Builder struct {
	graph  *Graph
	scopes map[decl.ClassID]map[string]decl.ClassID // parent -> generated name -> owner
	frozen bool
}

// NewBuilder creates a builder for a graph with the given root-name prefix and
// output package.
func NewBuilder(prefix, pkg string) *Builder {
	return &Builder{
		graph: &Graph{
			prefix: prefix,
			pkg:    pkg,
			nodes:  make(map[decl.ClassID]*ClassNode),
		},
		scopes: map[decl.ClassID]map[string]decl.ClassID{"": {}},
	}
}

// AddNode adds a node. The parent must already exist and the generated name
// must be free within the parent's scope.
func (b *Builder) AddNode(spec NodeSpec) (*ClassNode, error) {
	if b.frozen {
		return nil, ErrFrozen
	}
	if spec.ID == "" {
		return nil, fmt.Errorf("node without identity")
	}
	if _, exists := b.graph.nodes[spec.ID]; exists {
		return nil, fmt.Errorf("node %s already exists", spec.ID)
	}
	if spec.GeneratedName == "" {
		return nil, fmt.Errorf("node %s has no generated name", spec.ID)
	}

	var parent *ClassNode
	if spec.Parent != "" {
		p, ok := b.graph.nodes[spec.Parent]
		if !ok {
			return nil, fmt.Errorf("node %s: parent %s does not exist", spec.ID, spec.Parent)
		}
		parent = p
	}

	scope := b.scopes[spec.Parent]
	if owner, taken := scope[spec.GeneratedName]; taken {
		return nil, fmt.Errorf("node %s: generated name %s already used by %s", spec.ID, spec.GeneratedName, owner)
	}

	node := &ClassNode{
		graph:         b.graph,
		id:            spec.ID,
		generatedName: spec.GeneratedName,
		kind:          spec.Kind,
		indexName:     spec.IndexName,
		nested:        spec.Nested,
		parent:        spec.Parent,
		position:      spec.Position,
	}
	if spec.Kind != KindDocument {
		node.indexName = ""
	}

	b.graph.nodes[spec.ID] = node
	b.graph.order = append(b.graph.order, spec.ID)
	scope[spec.GeneratedName] = spec.ID
	b.scopes[spec.ID] = make(map[string]decl.ClassID)
	if parent != nil {
		parent.children = append(parent.children, spec.ID)
	}
	return node, nil
}

// NameTaken reports whether name is already used within the parent scope
func (b *Builder) NameTaken(parent decl.ClassID, name string) bool {
	_, taken := b.scopes[parent][name]
	return taken
}

// AddField appends a field to an existing node. An ObjectRef target must
// already be a node of the graph.
func (b *Builder) AddField(owner decl.ClassID, f Field) error {
	if b.frozen {
		return ErrFrozen
	}
	node, ok := b.graph.nodes[owner]
	if !ok {
		return fmt.Errorf("field %s: owner %s does not exist", f.Name, owner)
	}
	if f.Variant == VariantObjectRef && f.Target != "" {
		if _, ok := b.graph.nodes[f.Target]; !ok {
			return fmt.Errorf("field %s.%s: target %s does not exist", owner, f.Name, f.Target)
		}
	}
	node.fields = append(node.fields, f.clone())
	return nil
}

// Node returns a node under construction
func (b *Builder) Node(id decl.ClassID) (*ClassNode, bool) {
	n, ok := b.graph.nodes[id]
	return n, ok
}

// Order returns node identities in insertion (level) order
func (b *Builder) Order() []decl.ClassID {
	return append([]decl.ClassID(nil), b.graph.order...)
}

// Freeze finishes construction and returns the immutable graph. The builder
// rejects further changes.
func (b *Builder) Freeze() *Graph {
	b.frozen = true
	return b.graph
}
