package graph

import "github.com/conduit-lang/esgraph/internal/decl"

// FieldVariant selects which of the three field shapes a Field has
type FieldVariant int

const (
	VariantSimple FieldVariant = iota
	VariantObjectRef
	VariantMultiField
)

// String returns the string representation of the variant
func (v FieldVariant) String() string {
	switch v {
	case VariantSimple:
		return "simple"
	case VariantObjectRef:
		return "object_ref"
	case VariantMultiField:
		return "multi_field"
	default:
		return "unknown"
	}
}

// InnerField is one suffix of a multi-field
type InnerField struct {
	Suffix string
	Kind   decl.FieldKind
}

// Field is a field descriptor declared on a ClassNode.
//
//   - Simple: Name, ElasticsearchName, Kind
//   - ObjectRef: Nested and Target; Target is "" for terminal containers
//   - MultiField: Kind is the main kind, Inner lists the inner fields
type Field struct {
	Variant           FieldVariant
	Name              string // Generated property name, always a valid identifier
	ElasticsearchName string // Name in the index mapping
	Kind              decl.FieldKind
	Nested            bool
	Target            decl.ClassID
	Inner             []InnerField

	Property string // Source property name
	Source   decl.PropertySource
	Position decl.Position
}

// Simple builds a simple field
func Simple(name, esName string, kind decl.FieldKind) Field {
	return Field{Variant: VariantSimple, Name: name, ElasticsearchName: esName, Kind: kind}
}

// ObjectRef builds an object reference field. An empty target marks a
// terminal container.
func ObjectRef(name, esName string, nested bool, target decl.ClassID) Field {
	kind := decl.KindObject
	if nested {
		kind = decl.KindNested
	}
	return Field{
		Variant:           VariantObjectRef,
		Name:              name,
		ElasticsearchName: esName,
		Kind:              kind,
		Nested:            nested,
		Target:            target,
	}
}

// MultiField builds a multi-field
func MultiField(name, esName string, main decl.FieldKind, inner []InnerField) Field {
	return Field{
		Variant:           VariantMultiField,
		Name:              name,
		ElasticsearchName: esName,
		Kind:              main,
		Inner:             append([]InnerField(nil), inner...),
	}
}

// IsTerminal reports whether an ObjectRef has no target node
func (f Field) IsTerminal() bool {
	return f.Variant == VariantObjectRef && f.Target == ""
}

func (f Field) clone() Field {
	if f.Inner != nil {
		f.Inner = append([]InnerField(nil), f.Inner...)
	}
	return f
}
