package decl

import (
	"fmt"
	"strings"
)

// Static is an in-memory Declarations built with a SchemaBuilder
type Static struct {
	order   []ClassID
	classes map[ClassID]*staticClass
}

type staticClass struct {
	class Class
	props []*staticProp
}

type staticProp struct {
	prop   Property
	ann    Annotation
	annErr error
	typ    TypeRef
	typErr error
}

var _ Declarations = (*Static)(nil)

// Roots returns document classes in declaration order, skipping private ones
// that did not opt in.
func (s *Static) Roots() []ClassID {
	var roots []ClassID
	for _, id := range s.order {
		c := s.classes[id].class
		if !c.IsDocumentRoot() {
			continue
		}
		if c.Visibility == Private && !c.OptIn {
			continue
		}
		roots = append(roots, id)
	}
	return roots
}

// Class looks up a class by identity
func (s *Static) Class(id ClassID) (Class, bool) {
	sc, ok := s.classes[id]
	if !ok {
		return Class{}, false
	}
	return sc.class, true
}

// Properties returns the class properties, fields before getters
func (s *Static) Properties(id ClassID) ([]Property, error) {
	sc, ok := s.classes[id]
	if !ok {
		return nil, fmt.Errorf("unknown class %s", id)
	}
	props := make([]Property, 0, len(sc.props))
	for _, sp := range sc.props {
		if sp.prop.Source == SourceField {
			props = append(props, sp.prop)
		}
	}
	for _, sp := range sc.props {
		if sp.prop.Source == SourceGetter {
			props = append(props, sp.prop)
		}
	}
	return props, nil
}

// Annotation returns the annotation recorded for p
func (s *Static) Annotation(p Property) (Annotation, error) {
	sp, err := s.lookup(p)
	if err != nil {
		return Annotation{}, err
	}
	return sp.ann, sp.annErr
}

// ResolveType returns the type recorded for p
func (s *Static) ResolveType(p Property) (TypeRef, error) {
	sp, err := s.lookup(p)
	if err != nil {
		return TypeRef{}, err
	}
	return sp.typ, sp.typErr
}

func (s *Static) lookup(p Property) (*staticProp, error) {
	sp, ok := p.Handle.(*staticProp)
	if !ok || sp == nil {
		return nil, fmt.Errorf("property %s was not declared by this schema", p.Name)
	}
	return sp, nil
}

// SchemaBuilder builds Static declarations fluently
type SchemaBuilder struct {
	static *Static
	err    error
}

// NewSchema creates an empty schema builder
func NewSchema() *SchemaBuilder {
	return &SchemaBuilder{
		static: &Static{classes: make(map[ClassID]*staticClass)},
	}
}

// Document declares a document root class
func (b *SchemaBuilder) Document(id ClassID, index string) *ClassBuilder {
	cb := b.Class(id)
	cb.sc.class.Document = &DocumentInfo{Index: index}
	return cb
}

// Class declares a (non-document) class. Declaring the same id twice returns
// the existing class.
func (b *SchemaBuilder) Class(id ClassID) *ClassBuilder {
	if sc, ok := b.static.classes[id]; ok {
		return &ClassBuilder{schema: b, sc: sc}
	}
	sc := &staticClass{
		class: Class{
			ID:      id,
			Name:    id.TypeName(),
			Package: id.Package(),
		},
	}
	b.static.classes[id] = sc
	b.static.order = append(b.static.order, id)
	return &ClassBuilder{schema: b, sc: sc}
}

// Build returns the finished declarations
func (b *SchemaBuilder) Build() (*Static, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.static, nil
}

// MustBuild is Build for fixtures; it panics on builder errors
func (b *SchemaBuilder) MustBuild() *Static {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

// ClassBuilder adds properties to one class
type ClassBuilder struct {
	schema *SchemaBuilder
	sc     *staticClass
}

// Private marks the class as not publicly visible
func (c *ClassBuilder) Private() *ClassBuilder {
	c.sc.class.Visibility = Private
	return c
}

// OptIn includes a private class despite its visibility
func (c *ClassBuilder) OptIn() *ClassBuilder {
	c.sc.class.OptIn = true
	return c
}

// EnclosedBy declares the enclosing class. When the type name follows the
// Outer_Inner convention the simple name becomes Inner.
func (c *ClassBuilder) EnclosedBy(parent ClassID) *ClassBuilder {
	c.sc.class.Enclosing = parent
	name := c.sc.class.ID.TypeName()
	if i := strings.LastIndex(name, "_"); i >= 0 && i < len(name)-1 {
		c.sc.class.Name = name[i+1:]
	}
	return c
}

// Named overrides the simple name
func (c *ClassBuilder) Named(name string) *ClassBuilder {
	c.sc.class.Name = name
	return c
}

// Property declares an annotated field
func (c *ClassBuilder) Property(name string, ann Annotation, typ TypeRef) *ClassBuilder {
	return c.add(name, SourceField, &staticProp{ann: ann, typ: typ})
}

// Getter declares an annotated getter method
func (c *ClassBuilder) Getter(name string, ann Annotation, typ TypeRef) *ClassBuilder {
	return c.add(name, SourceGetter, &staticProp{ann: ann, typ: typ})
}

// Field declares a simple field of the given kind with a standard type
func (c *ClassBuilder) Field(name string, kind FieldKind) *ClassBuilder {
	return c.Property(name, Annotation{Kind: kind}, Std("string"))
}

// Object declares an embedded object field
func (c *ClassBuilder) Object(name string, typ TypeRef) *ClassBuilder {
	return c.Property(name, Annotation{Kind: KindObject}, typ)
}

// Nested declares a nested container field
func (c *ClassBuilder) Nested(name string, typ TypeRef) *ClassBuilder {
	return c.Property(name, Annotation{Kind: KindNested}, typ)
}

// Multi declares a multi-field
func (c *ClassBuilder) Multi(name string, main FieldKind, inner ...InnerFieldSpec) *ClassBuilder {
	return c.Property(name, Annotation{Kind: main, Inner: inner}, Std("string"))
}

// Broken declares a field whose annotation cannot be read
func (c *ClassBuilder) Broken(name string, err error) *ClassBuilder {
	return c.add(name, SourceField, &staticProp{annErr: err})
}

// Unresolvable declares a field whose type cannot be resolved
func (c *ClassBuilder) Unresolvable(name string, ann Annotation, err error) *ClassBuilder {
	return c.add(name, SourceField, &staticProp{ann: ann, typErr: err})
}

// Document declares another document on the same schema
func (c *ClassBuilder) Document(id ClassID, index string) *ClassBuilder {
	return c.schema.Document(id, index)
}

// Class declares another class on the same schema
func (c *ClassBuilder) Class(id ClassID) *ClassBuilder {
	return c.schema.Class(id)
}

// Build finishes the schema
func (c *ClassBuilder) Build() (*Static, error) {
	return c.schema.Build()
}

// MustBuild finishes the schema and panics on error
func (c *ClassBuilder) MustBuild() *Static {
	return c.schema.MustBuild()
}

func (c *ClassBuilder) add(name string, source PropertySource, sp *staticProp) *ClassBuilder {
	if name == "" && c.schema.err == nil {
		c.schema.err = fmt.Errorf("class %s: property without name", c.sc.class.ID)
	}
	sp.prop = Property{
		Name:     name,
		Owner:    c.sc.class.ID,
		Source:   source,
		Position: Position{File: "<static>", Line: len(c.sc.props) + 1, Column: 1},
		Handle:   sp,
	}
	c.sc.props = append(c.sc.props, sp)
	return c
}

// Ref is the type of a class reference
func Ref(id ClassID) TypeRef {
	return TypeRef{ID: id}
}

// List wraps elem in a single-argument container
func List(elem TypeRef) TypeRef {
	return TypeRef{Container: ListContainer, Args: []TypeRef{elem}}
}

// Map is a two-argument container
func Map(key, value TypeRef) TypeRef {
	return TypeRef{Container: MapContainer, Args: []TypeRef{key, value}}
}

// Std is a standard-library type
func Std(name string) TypeRef {
	return TypeRef{ID: ClassID(name), Standard: true}
}

// Inner builds an inner field spec
func Inner(suffix string, kind FieldKind) InnerFieldSpec {
	return InnerFieldSpec{Suffix: suffix, Kind: kind}
}
