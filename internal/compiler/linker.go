package compiler

import (
	"fmt"

	"go.uber.org/zap"

	cerrors "github.com/conduit-lang/esgraph/internal/compiler/errors"
	"github.com/conduit-lang/esgraph/internal/decl"
	"github.com/conduit-lang/esgraph/internal/graph"
	strutil "github.com/conduit-lang/esgraph/internal/util/strings"
)

// LinkFields populates every node of the skeleton, in level order. Object
// and nested fields point at the node of their (unwrapped) type when that
// type is part of the graph, otherwise they are terminal.
//
// A property that cannot be extracted, because the adapter returns an error
// or panics, is logged, reported as E100 and dropped. The remaining
// properties and nodes are still linked.
func LinkFields(decls decl.Declarations, b *graph.Builder, opts Options) []Diagnostic {
	l := &linker{
		decls:   decls,
		builder: b,
		policy:  opts.Policy,
		log:     opts.logger(),
	}
	for _, id := range b.Order() {
		l.linkNode(id)
	}
	return l.diags
}

type linker struct {
	decls   decl.Declarations
	builder *graph.Builder
	policy  Policy
	log     *zap.Logger
	diags   []Diagnostic
}

func (l *linker) report(d Diagnostic) {
	l.diags = append(l.diags, d)
}

func (l *linker) linkNode(id decl.ClassID) {
	props, err := l.decls.Properties(id)
	if err != nil {
		class, _ := l.decls.Class(id)
		l.log.Warn("could not list properties", zap.String("class", string(id)), zap.Error(err))
		l.report(cerrors.Newf(cerrors.ErrExtractionFailed, cerrors.LocationOf(class.Position),
			"properties of %s could not be listed: %v", id, err).WithSubject(string(id)))
		return
	}

	var fields []graph.Field
	byName := make(map[string]int)

	for _, p := range props {
		f, ok := l.linkProperty(id, p)
		if !ok {
			continue
		}

		idx, dup := byName[f.Name]
		if !dup {
			byName[f.Name] = len(fields)
			fields = append(fields, f)
			continue
		}

		kept, skipped := fields[idx], f
		if l.policy.Duplicates == LastWins {
			kept, skipped = f, fields[idx]
			fields[idx] = f
		}
		l.report(cerrors.Newf(cerrors.InfoDuplicateProperty, cerrors.LocationOf(skipped.Position),
			"%s %s of %s resolves to %q, already used by %s %s; keeping the %s",
			skipped.Source, skipped.Property, id, f.Name, kept.Source, kept.Property, kept.Source).
			WithSubject(string(id)+"."+skipped.Property).
			WithRelated(cerrors.Newf(cerrors.InfoDuplicateProperty, cerrors.LocationOf(kept.Position),
				"%s %s of %s is kept as %q", kept.Source, kept.Property, id, f.Name)))
	}

	for _, f := range fields {
		if err := l.builder.AddField(id, f); err != nil {
			// Unreachable for a well-formed skeleton; keep the field out of the graph
			l.log.Warn("could not add field", zap.String("class", string(id)), zap.String("field", f.Name), zap.Error(err))
			l.report(cerrors.Newf(cerrors.ErrExtractionFailed, cerrors.LocationOf(f.Position),
				"field %s of %s could not be added: %v", f.Name, id, err).WithSubject(string(id)+"."+f.Property))
			continue
		}
		l.log.Debug("linked field",
			zap.String("class", string(id)),
			zap.String("field", f.Name),
			zap.String("variant", f.Variant.String()),
			zap.String("target", string(f.Target)))
	}
}

// linkProperty extracts one property, turning adapter errors and panics into
// an E100 diagnostic.
func (l *linker) linkProperty(owner decl.ClassID, p decl.Property) (f graph.Field, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			l.dropped(owner, p, fmt.Errorf("panic: %v", r))
			f, ok = graph.Field{}, false
		}
	}()

	f, keep, err := l.extract(owner, p)
	if err != nil {
		l.dropped(owner, p, err)
		return graph.Field{}, false
	}
	return f, keep
}

func (l *linker) dropped(owner decl.ClassID, p decl.Property, err error) {
	l.log.Warn("dropping property",
		zap.String("class", string(owner)),
		zap.String("property", p.Name),
		zap.Stringer("position", p.Position),
		zap.Error(err))
	l.report(cerrors.Newf(cerrors.ErrExtractionFailed, cerrors.LocationOf(p.Position),
		"property %s of %s dropped: %v", p.Name, owner, err).WithSubject(string(owner) + "." + p.Name))
}

func (l *linker) extract(owner decl.ClassID, p decl.Property) (graph.Field, bool, error) {
	ann, err := l.decls.Annotation(p)
	if err != nil {
		return graph.Field{}, false, fmt.Errorf("invalid annotation: %w", err)
	}

	name, esName, ok := l.names(owner, p, ann)
	if !ok {
		return graph.Field{}, false, nil
	}

	var f graph.Field
	switch {
	case ann.IsMultiField():
		inner := make([]graph.InnerField, 0, len(ann.Inner))
		for _, in := range ann.Inner {
			inner = append(inner, graph.InnerField{Suffix: in.Suffix, Kind: in.Kind})
		}
		f = graph.MultiField(name, esName, ann.Kind, inner)

	case ann.Kind.IsContainer():
		f = graph.ObjectRef(name, esName, ann.Kind.IsNested(), l.target(owner, p))

	default:
		f = graph.Simple(name, esName, ann.Kind)
	}

	f.Property = p.Name
	f.Source = p.Source
	f.Position = p.Position
	return f, true, nil
}

// target returns the node an object field embeds, or "" for a terminal field
func (l *linker) target(owner decl.ClassID, p decl.Property) decl.ClassID {
	typ, err := l.decls.ResolveType(p)
	if err != nil {
		l.log.Debug("unresolvable container type, field is terminal",
			zap.String("class", string(owner)),
			zap.String("property", p.Name),
			zap.Error(err))
		return ""
	}
	id, ok := embeddedType(typ)
	if !ok {
		return ""
	}
	if _, exists := l.builder.Node(id); !exists {
		return ""
	}
	return id
}

// names applies the override rule: a valid identifier override names both the
// generated field and the index field; an invalid one only names the index
// field.
func (l *linker) names(owner decl.ClassID, p decl.Property, ann decl.Annotation) (string, string, bool) {
	fallback := strutil.SafeIdentifier(p.Name)
	if ann.Name == "" {
		return fallback, p.Name, true
	}
	if strutil.IsIdentifier(ann.Name) {
		return ann.Name, ann.Name, true
	}

	subject := string(owner) + "." + p.Name
	if l.policy.Overrides == OverrideStrict {
		l.report(cerrors.Newf(cerrors.ErrInvalidOverride, cerrors.LocationOf(p.Position),
			"name override %q of %s is not a valid identifier; field dropped", ann.Name, subject).WithSubject(subject))
		return "", "", false
	}

	l.log.Warn("name override is not an identifier, falling back to property name",
		zap.String("class", string(owner)),
		zap.String("property", p.Name),
		zap.String("override", ann.Name))
	l.report(cerrors.Newf(cerrors.WarnOverrideFallback, cerrors.LocationOf(p.Position),
		"name override %q of %s is not a valid identifier; generated name is %q", ann.Name, subject, fallback).
		WithSubject(subject))
	return fallback, ann.Name, true
}
