package decl

import (
	"fmt"
	"strings"
)

// TagKey is the struct tag key read by the Go source adapter
const TagKey = "es"

// ParseTag parses an annotation written in the tag grammar shared by struct
// tags and //es:field directives:
//
//	es:"type=keyword"
//	es:"type=text name=full_name"
//	es:"nested"
//	es:"type=text fields=keyword:keyword,raw:keyword"
//
// Directives are separated by spaces and are either key=value pairs or a bare
// field kind. Recognized keys are type, name and fields. The fields value is a
// comma-separated list of suffix:kind pairs; a pair without a kind defaults to
// keyword.
func ParseTag(tag string) (Annotation, error) {
	var ann Annotation
	seenKind := false

	for _, directive := range strings.Fields(tag) {
		key, value, hasValue := strings.Cut(directive, "=")
		if !hasValue {
			// Bare token: a field kind shorthand
			kind, err := ParseFieldKind(key)
			if err != nil {
				return Annotation{}, fmt.Errorf("invalid directive %q: %w", directive, err)
			}
			if seenKind {
				return Annotation{}, fmt.Errorf("field kind given twice in %q", tag)
			}
			ann.Kind = kind
			seenKind = true
			continue
		}

		switch key {
		case "type":
			if seenKind {
				return Annotation{}, fmt.Errorf("field kind given twice in %q", tag)
			}
			kind, err := ParseFieldKind(value)
			if err != nil {
				return Annotation{}, err
			}
			ann.Kind = kind
			seenKind = true
		case "name":
			if value == "" {
				return Annotation{}, fmt.Errorf("empty name override in %q", tag)
			}
			ann.Name = value
		case "fields":
			inner, err := parseInnerFields(value)
			if err != nil {
				return Annotation{}, err
			}
			ann.Inner = append(ann.Inner, inner...)
		default:
			return Annotation{}, fmt.Errorf("unknown directive %q", key)
		}
	}

	if ann.IsMultiField() && ann.Kind.IsContainer() {
		return Annotation{}, fmt.Errorf("multi-field cannot have container kind %s", ann.Kind)
	}
	return ann, nil
}

// parseInnerFields parses "keyword:keyword,raw:keyword"
func parseInnerFields(value string) ([]InnerFieldSpec, error) {
	var specs []InnerFieldSpec
	seen := make(map[string]bool)

	for _, tok := range strings.Split(value, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		suffix, kindName, hasKind := strings.Cut(tok, ":")
		if suffix == "" {
			return nil, fmt.Errorf("inner field without suffix in %q", value)
		}
		if seen[suffix] {
			return nil, fmt.Errorf("duplicate inner field suffix %q", suffix)
		}
		seen[suffix] = true

		kind := KindKeyword
		if hasKind {
			parsed, err := ParseFieldKind(kindName)
			if err != nil {
				return nil, fmt.Errorf("inner field %s: %w", suffix, err)
			}
			if parsed.IsContainer() {
				return nil, fmt.Errorf("inner field %s cannot be %s", suffix, parsed)
			}
			kind = parsed
		}
		specs = append(specs, InnerFieldSpec{Suffix: suffix, Kind: kind})
	}

	if len(specs) == 0 {
		return nil, fmt.Errorf("empty fields list")
	}
	return specs, nil
}

// Directive is a parsed "//es:<name> key=value ..." comment line
type Directive struct {
	Name string
	Args string // Remainder after the name, in tag grammar
}

// ParseDirective recognizes comment lines of the form "//es:document index=orders".
// It returns false for any other comment.
func ParseDirective(comment string) (Directive, bool) {
	text := strings.TrimPrefix(comment, "//")
	text = strings.TrimSpace(text)
	rest, ok := strings.CutPrefix(text, TagKey+":")
	if !ok {
		return Directive{}, false
	}
	name, args, _ := strings.Cut(rest, " ")
	if name == "" {
		return Directive{}, false
	}
	return Directive{Name: name, Args: strings.TrimSpace(args)}, true
}

// DirectiveArgs splits "index=orders shards=1" into a map
func DirectiveArgs(args string) (map[string]string, error) {
	out := make(map[string]string)
	for _, tok := range strings.Fields(args) {
		key, value, ok := strings.Cut(tok, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("malformed directive argument %q", tok)
		}
		out[key] = value
	}
	return out, nil
}
