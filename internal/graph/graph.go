// Package graph holds the compiled metamodel: one ClassNode per schema class,
// one Field per annotated property, and the path algebra that code emission
// and the query DSL rely on.
//
// A Graph is assembled by a Builder during compilation and is immutable once
// Freeze returns. Nodes never own each other: the Graph is the only owner and
// nodes refer to parents, children and field targets by identity.
package graph

import (
	"strings"

	"github.com/conduit-lang/esgraph/internal/decl"
)

// Kind distinguishes document nodes from embedded object nodes
type Kind int

const (
	KindObject Kind = iota
	KindDocument
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// ClassNode represents one schema class
type ClassNode struct {
	graph *Graph

	id            decl.ClassID
	generatedName string
	kind          Kind
	indexName     string
	nested        bool
	parent        decl.ClassID
	children      []decl.ClassID
	fields        []Field
	position      decl.Position
}

// ID returns the fully-qualified identity of the source class
func (n *ClassNode) ID() decl.ClassID { return n.id }

// GeneratedName is the identifier of the generated artifact. Root nodes carry
// the configured prefix; nested nodes use their bare simple name.
func (n *ClassNode) GeneratedName() string { return n.generatedName }

// QualifiedName joins the generated names of the parent chain, root first.
func (n *ClassNode) QualifiedName() string {
	var parts []string
	for cur := n; cur != nil; cur = cur.Parent() {
		parts = append(parts, cur.generatedName)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

// Kind returns whether the node is a document or an object
func (n *ClassNode) Kind() Kind { return n.kind }

// IsDocument reports whether the node is a document root
func (n *ClassNode) IsDocument() bool { return n.kind == KindDocument }

// IndexName returns the index of a document node, "" for objects
func (n *ClassNode) IndexName() string { return n.indexName }

// IsNested reports whether the class is reached through a nested field
func (n *ClassNode) IsNested() bool { return n.nested }

// Position returns the declaration position of the class
func (n *ClassNode) Position() decl.Position { return n.position }

// ParentID returns the identity of the enclosing node, "" for roots
func (n *ClassNode) ParentID() decl.ClassID { return n.parent }

// Parent returns the enclosing node, or nil for roots
func (n *ClassNode) Parent() *ClassNode {
	if n.parent == "" {
		return nil
	}
	return n.graph.nodes[n.parent]
}

// Children returns the nodes enclosed by this node, in level order
func (n *ClassNode) Children() []*ClassNode {
	out := make([]*ClassNode, 0, len(n.children))
	for _, id := range n.children {
		out = append(out, n.graph.nodes[id])
	}
	return out
}

// Fields returns a copy of the node's fields in discovery order
func (n *ClassNode) Fields() []Field {
	out := make([]Field, len(n.fields))
	for i, f := range n.fields {
		out[i] = f.clone()
	}
	return out
}

// Field looks up a field by generated name
func (n *ClassNode) Field(name string) (Field, bool) {
	for _, f := range n.fields {
		if f.Name == name {
			return f.clone(), true
		}
	}
	return Field{}, false
}

// Graph owns every ClassNode of one compilation
type Graph struct {
	prefix string
	pkg    string
	nodes  map[decl.ClassID]*ClassNode
	order  []decl.ClassID
}

// Node looks up a node by identity
func (g *Graph) Node(id decl.ClassID) (*ClassNode, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Len returns the number of nodes
func (g *Graph) Len() int { return len(g.order) }

// Prefix returns the root-name prefix the graph was built with
func (g *Graph) Prefix() string { return g.prefix }

// Package returns the output package the graph was built for
func (g *Graph) Package() string { return g.pkg }

// Nodes returns every node in level order
func (g *Graph) Nodes() []*ClassNode {
	return g.filter(func(*ClassNode) bool { return true })
}

// DocumentNodes returns the document nodes in level order
func (g *Graph) DocumentNodes() []*ClassNode {
	return g.filter(func(n *ClassNode) bool { return n.kind == KindDocument })
}

// ObjectNodes returns the object nodes in level order
func (g *Graph) ObjectNodes() []*ClassNode {
	return g.filter(func(n *ClassNode) bool { return n.kind == KindObject })
}

// RootNodes returns nodes without an enclosing node
func (g *Graph) RootNodes() []*ClassNode {
	return g.filter(func(n *ClassNode) bool { return n.parent == "" })
}

// FieldCount returns the total number of fields across all nodes
func (g *Graph) FieldCount() int {
	total := 0
	for _, id := range g.order {
		total += len(g.nodes[id].fields)
	}
	return total
}

func (g *Graph) filter(keep func(*ClassNode) bool) []*ClassNode {
	out := make([]*ClassNode, 0, len(g.order))
	for _, id := range g.order {
		if n := g.nodes[id]; keep(n) {
			out = append(out, n)
		}
	}
	return out
}
