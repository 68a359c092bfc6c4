package graph

import (
	"errors"

	"github.com/conduit-lang/esgraph/internal/decl"
)

// SkipSelection can be returned from a WalkFunc on an ObjectRef to avoid
// descending into its target.
var SkipSelection = errors.New("skip selection")

// Selection is a class node reached through a chain of container fields. The
// root selection of a document has an empty chain.
type Selection struct {
	node *ClassNode
	via  *FieldPath // container field this selection was reached through, nil at the root
}

// FieldPath is a field bound to the container chain through which it is
// reached. Path strings depend on that chain, not on the node declaring the
// field, because one class can be embedded under several fields.
type FieldPath struct {
	field   Field
	owner   *Selection
	innerOf *FieldPath // set for inner fields of a multi-field
}

// Root returns the root selection of a node
func (g *Graph) Root(id decl.ClassID) (*Selection, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, false
	}
	return &Selection{node: n}, true
}

// Document returns the root selection of a document node
func (g *Graph) Document(id decl.ClassID) (*Selection, bool) {
	n, ok := g.nodes[id]
	if !ok || n.kind != KindDocument {
		return nil, false
	}
	return &Selection{node: n}, true
}

// Node returns the selected class node
func (s *Selection) Node() *ClassNode { return s.node }

// Via returns the container field of this selection, nil at the root
func (s *Selection) Via() *FieldPath { return s.via }

// Path returns the path of the selection's container, "" at the root
func (s *Selection) Path() string {
	if s.via == nil {
		return ""
	}
	return s.via.Path()
}

// Fields binds every field of the selected node to this selection
func (s *Selection) Fields() []*FieldPath {
	out := make([]*FieldPath, 0, len(s.node.fields))
	for _, f := range s.node.fields {
		out = append(out, &FieldPath{field: f.clone(), owner: s})
	}
	return out
}

// Field binds one field by generated name
func (s *Selection) Field(name string) (*FieldPath, bool) {
	f, ok := s.node.Field(name)
	if !ok {
		return nil, false
	}
	return &FieldPath{field: f, owner: s}, true
}

// Field returns the underlying descriptor
func (p *FieldPath) Field() Field { return p.field.clone() }

// Name returns the generated name of the field
func (p *FieldPath) Name() string { return p.field.Name }

// Container returns the container field enclosing this one, nil at the root
func (p *FieldPath) Container() *FieldPath {
	if p.innerOf != nil {
		return p.innerOf.Container()
	}
	return p.owner.via
}

// Path joins the index names of the container chain and the field itself with
// '.'. A multi-field's path is its own name; an inner field appends its suffix.
func (p *FieldPath) Path() string {
	if p.innerOf != nil {
		return p.innerOf.Path() + "." + p.field.ElasticsearchName
	}
	if c := p.Container(); c != nil {
		return c.Path() + "." + p.field.ElasticsearchName
	}
	return p.field.ElasticsearchName
}

// IsNestedPath reports whether any container above the field is nested
func (p *FieldPath) IsNestedPath() bool {
	for c := p.Container(); c != nil; c = c.Container() {
		if c.field.Nested {
			return true
		}
	}
	return false
}

// NestedPaths returns the paths of nested containers above the field,
// nearest first.
func (p *FieldPath) NestedPaths() []string {
	var paths []string
	for c := p.Container(); c != nil; c = c.Container() {
		if c.field.Nested {
			paths = append(paths, c.Path())
		}
	}
	return paths
}

// Target returns the node an ObjectRef points to, nil for other variants and
// terminal containers.
func (p *FieldPath) Target() *ClassNode {
	if p.field.Variant != VariantObjectRef || p.field.Target == "" {
		return nil
	}
	return p.owner.node.graph.nodes[p.field.Target]
}

// Select descends into the target of an ObjectRef
func (p *FieldPath) Select() (*Selection, bool) {
	target := p.Target()
	if target == nil {
		return nil, false
	}
	return &Selection{node: target, via: p}, true
}

// Inner returns the inner field of a multi-field by suffix
func (p *FieldPath) Inner(suffix string) (*FieldPath, bool) {
	for _, inner := range p.InnerFields() {
		if inner.field.Name == suffix {
			return inner, true
		}
	}
	return nil, false
}

// InnerFields returns every inner field of a multi-field
func (p *FieldPath) InnerFields() []*FieldPath {
	if p.field.Variant != VariantMultiField {
		return nil
	}
	out := make([]*FieldPath, 0, len(p.field.Inner))
	for _, in := range p.field.Inner {
		out = append(out, &FieldPath{
			field:   Simple(in.Suffix, in.Suffix, in.Kind),
			owner:   p.owner,
			innerOf: p,
		})
	}
	return out
}

// onChain reports whether id is already selected somewhere up the chain
func (s *Selection) onChain(id decl.ClassID) bool {
	for cur := s; cur != nil; {
		if cur.node.id == id {
			return true
		}
		if cur.via == nil {
			return false
		}
		cur = cur.via.owner
	}
	return false
}

// WalkFunc is called for every field reached by Walk
type WalkFunc func(p *FieldPath) error

// Walk visits every field path under a node depth-first, in field order.
// Multi-field inner fields are visited after their main field. Descent stops
// at a class that is already on the current chain, so cyclic schemas
// terminate.
func (g *Graph) Walk(id decl.ClassID, fn WalkFunc) error {
	root, ok := g.Root(id)
	if !ok {
		return nil
	}
	return walkSelection(root, fn)
}

func walkSelection(s *Selection, fn WalkFunc) error {
	for _, p := range s.Fields() {
		err := fn(p)
		if errors.Is(err, SkipSelection) {
			continue
		}
		if err != nil {
			return err
		}

		for _, inner := range p.InnerFields() {
			if err := fn(inner); err != nil && !errors.Is(err, SkipSelection) {
				return err
			}
		}

		target := p.Target()
		if target == nil || s.onChain(target.id) {
			continue
		}
		child, _ := p.Select()
		if err := walkSelection(child, fn); err != nil {
			return err
		}
	}
	return nil
}
