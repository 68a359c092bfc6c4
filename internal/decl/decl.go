// Package decl defines the declaration interface the compiler consumes.
//
// A Declarations value describes annotated classes: their identity, visibility,
// enclosing class, document settings, annotated properties and the types those
// properties resolve to. The compiler depends only on this interface; the
// gosource and hclschema subpackages implement it for Go packages and HCL
// schema files, and Static implements it in memory.
package decl

import (
	"fmt"
	"strings"
)

// ClassID is the fully-qualified identity of a class, e.g. "example.com/shop.Order".
type ClassID string

// Package returns everything before the final '.', or "" for unqualified ids.
func (id ClassID) Package() string {
	s := string(id)
	if i := strings.LastIndex(s, "."); i >= 0 {
		return s[:i]
	}
	return ""
}

// TypeName returns the portion after the final '.'.
func (id ClassID) TypeName() string {
	s := string(id)
	if i := strings.LastIndex(s, "."); i >= 0 {
		return s[i+1:]
	}
	return s
}

// Visibility of a class declaration
type Visibility int

const (
	Public Visibility = iota
	Private
)

// String returns the string representation of the visibility
func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Private:
		return "private"
	default:
		return "unknown"
	}
}

// DocumentInfo marks a class as a document root
type DocumentInfo struct {
	Index string // Index name
}

// Class describes one declared class
type Class struct {
	ID         ClassID
	Name       string        // Simple name, e.g. "Address" for "shop.User_Address"
	Package    string        // Package or namespace the class is declared in
	Visibility Visibility    // Private classes are excluded unless OptIn is set
	OptIn      bool          // Explicitly included despite Private visibility
	Enclosing  ClassID       // Declared enclosing class, "" when top-level
	Document   *DocumentInfo // Non-nil for document roots
	Position   Position
}

// IsDocumentRoot reports whether the class is marked as a document root
func (c Class) IsDocumentRoot() bool {
	return c.Document != nil
}

// Position is a source location
type Position struct {
	File   string
	Line   int
	Column int
}

// String returns file:line:col, or "-" when unknown
func (p Position) String() string {
	if p.File == "" {
		return "-"
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// PropertySource tells whether a property comes from a field or a getter method
type PropertySource int

const (
	SourceField PropertySource = iota
	SourceGetter
)

// String returns the string representation of the source
func (s PropertySource) String() string {
	if s == SourceGetter {
		return "getter"
	}
	return "field"
}

// Property is one annotated property or getter of a class. Handle is owned by
// the adapter that produced the property.
type Property struct {
	Name     string // Resolved property name, e.g. "homeAddress"
	Owner    ClassID
	Source   PropertySource
	Position Position
	Handle   any
}

// InnerFieldSpec is one inner field of a multi-field
type InnerFieldSpec struct {
	Suffix string
	Kind   FieldKind
}

// Annotation is the payload attached to a property
type Annotation struct {
	Kind  FieldKind
	Name  string           // Optional name override
	Inner []InnerFieldSpec // Non-empty for multi-fields
}

// IsMultiField reports whether the annotation declares inner fields
func (a Annotation) IsMultiField() bool {
	return len(a.Inner) > 0
}

// ContainerKind classifies generic containers
type ContainerKind int

const (
	NotContainer ContainerKind = iota
	ListContainer                 // slice, array, set: one element type
	MapContainer                  // map-like: key and value types
)

// TypeRef is the resolved type of a property
type TypeRef struct {
	ID          ClassID       // Identity of the named type, "" for unnamed containers
	Args        []TypeRef     // Generic/element arguments
	Container   ContainerKind // Container classification
	Standard    bool          // Belongs to a platform/standard namespace
	Unsupported bool          // Could not be represented
}

// String renders the type for diagnostics
func (t TypeRef) String() string {
	var base string
	switch {
	case t.Unsupported:
		base = "<unsupported>"
	case t.Container == ListContainer && t.ID == "":
		base = "list"
	case t.Container == MapContainer && t.ID == "":
		base = "map"
	default:
		base = string(t.ID)
	}
	if len(t.Args) == 0 {
		return base
	}
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.String()
	}
	return base + "[" + strings.Join(args, ", ") + "]"
}

// Declarations is the capability set the compiler needs from a host platform.
// Implementations must be deterministic: identical input must produce the same
// roots and properties in the same order on every call.
type Declarations interface {
	// Roots returns the document root classes, already filtered by visibility.
	Roots() []ClassID
	// Class looks up a class by identity.
	Class(id ClassID) (Class, bool)
	// Properties returns the annotated properties of a class: fields first in
	// declaration order, then getters in declaration order.
	Properties(id ClassID) ([]Property, error)
	// Annotation returns the annotation payload of a property.
	Annotation(p Property) (Annotation, error)
	// ResolveType resolves the declared type of a property.
	ResolveType(p Property) (TypeRef, error)
}
