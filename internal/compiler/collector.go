package compiler

import (
	"fmt"

	"github.com/conduit-lang/esgraph/internal/decl"
)

// ClassSet is the deduplicated set of classes that become graph nodes, in the
// order they were found.
type ClassSet struct {
	order   []decl.ClassID
	members map[decl.ClassID]*member
}

type member struct {
	class  decl.Class
	nested bool // reached through at least one nested field
}

func newClassSet() *ClassSet {
	return &ClassSet{members: make(map[decl.ClassID]*member)}
}

func (s *ClassSet) add(c decl.Class) bool {
	if _, ok := s.members[c.ID]; ok {
		return false
	}
	s.members[c.ID] = &member{class: c}
	s.order = append(s.order, c.ID)
	return true
}

// Len returns the number of classes
func (s *ClassSet) Len() int { return len(s.order) }

// IDs returns the class identities in found order
func (s *ClassSet) IDs() []decl.ClassID {
	return append([]decl.ClassID(nil), s.order...)
}

// Contains reports whether id is in the set
func (s *ClassSet) Contains(id decl.ClassID) bool {
	_, ok := s.members[id]
	return ok
}

// Class returns the declaration of a member
func (s *ClassSet) Class(id decl.ClassID) (decl.Class, bool) {
	m, ok := s.members[id]
	if !ok {
		return decl.Class{}, false
	}
	return m.class, true
}

// ReachedNested reports whether a member is the target of a nested field
func (s *ClassSet) ReachedNested(id decl.ClassID) bool {
	m, ok := s.members[id]
	return ok && m.nested
}

// Collect discovers every class reachable from the document roots through
// object and nested fields. Each class appears once no matter how many paths
// reach it. Types that cannot be resolved, standard types, map-like
// containers and classes excluded by policy are skipped without error.
func Collect(decls decl.Declarations, policy Policy) (*ClassSet, error) {
	if decls == nil {
		return nil, fmt.Errorf("declarations cannot be nil")
	}

	set := newClassSet()
	var queue []decl.ClassID

	for _, id := range decls.Roots() {
		class, ok := decls.Class(id)
		if !ok {
			return nil, fmt.Errorf("root %s is not declared", id)
		}
		if set.add(class) {
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		props, err := decls.Properties(current)
		if err != nil {
			// Reported by the linker when it reaches the class
			continue
		}

		for _, p := range props {
			class, nested, ok := embeddedClass(decls, p)
			if !ok || !policy.admits(class) {
				continue
			}

			if set.add(class) {
				queue = append(queue, class.ID)
			}
			if nested {
				set.members[class.ID].nested = true
			}
		}
	}

	return set, nil
}

// embeddedClass returns the class an object or nested property embeds.
// Adapter errors and panics mean the property embeds nothing.
func embeddedClass(decls decl.Declarations, p decl.Property) (class decl.Class, nested, ok bool) {
	defer func() {
		if recover() != nil {
			class, nested, ok = decl.Class{}, false, false
		}
	}()

	ann, err := decls.Annotation(p)
	if err != nil || !ann.Kind.IsContainer() {
		return decl.Class{}, false, false
	}
	typ, err := decls.ResolveType(p)
	if err != nil {
		return decl.Class{}, false, false
	}
	id, ok := embeddedType(typ)
	if !ok {
		return decl.Class{}, false, false
	}
	class, ok = decls.Class(id)
	return class, ann.Kind.IsNested(), ok
}

// embeddedType unwraps single-element containers and returns the identity of
// the class a container field embeds. Map-like containers, standard types and
// unsupported types embed nothing.
func embeddedType(t decl.TypeRef) (decl.ClassID, bool) {
	switch t.Container {
	case decl.MapContainer:
		return "", false
	case decl.ListContainer:
		if len(t.Args) != 1 {
			return "", false
		}
		t = t.Args[0]
	}

	if t.Unsupported || t.Standard || t.ID == "" || t.Container != decl.NotContainer {
		return "", false
	}
	return t.ID, true
}
