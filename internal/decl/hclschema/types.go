package hclschema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/conduit-lang/esgraph/internal/decl"
)

var errNoTarget = errors.New("property has no target")

// annotation decodes the type, name and fields attributes of a property block
func annotation(b *propertyBlock) (decl.Annotation, error) {
	kind, err := decl.ParseFieldKind(b.Type)
	if err != nil {
		return decl.Annotation{}, err
	}
	ann := decl.Annotation{Kind: kind}

	if b.Name != nil {
		if *b.Name == "" {
			return decl.Annotation{}, fmt.Errorf("empty name override")
		}
		ann.Name = *b.Name
	}

	if isNull(b.Fields) {
		return ann, nil
	}
	inner, err := innerFields(b.Fields)
	if err != nil {
		return decl.Annotation{}, err
	}
	if kind.IsContainer() {
		return decl.Annotation{}, fmt.Errorf("multi-field cannot have container kind %s", kind)
	}
	ann.Inner = inner
	return ann, nil
}

// innerFields decodes `fields = { suffix = "kind", ... }` in source order
func innerFields(expr hcl.Expression) ([]decl.InnerFieldSpec, error) {
	pairs, diags := hcl.ExprMap(expr)
	if diags.HasErrors() {
		return nil, fmt.Errorf("fields must be an object of suffix = kind pairs: %w", diags)
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("empty fields list")
	}

	specs := make([]decl.InnerFieldSpec, 0, len(pairs))
	seen := make(map[string]bool, len(pairs))
	for _, pair := range pairs {
		suffix, err := stringValue(pair.Key)
		if err != nil {
			return nil, fmt.Errorf("inner field suffix: %w", err)
		}
		if suffix == "" {
			return nil, fmt.Errorf("inner field without suffix")
		}
		if seen[suffix] {
			return nil, fmt.Errorf("duplicate inner field suffix %q", suffix)
		}
		seen[suffix] = true

		kindName, err := stringValue(pair.Value)
		if err != nil {
			return nil, fmt.Errorf("inner field %s: %w", suffix, err)
		}
		kind, err := decl.ParseFieldKind(kindName)
		if err != nil {
			return nil, fmt.Errorf("inner field %s: %w", suffix, err)
		}
		if kind.IsContainer() {
			return nil, fmt.Errorf("inner field %s cannot be %s", suffix, kind)
		}
		specs = append(specs, decl.InnerFieldSpec{Suffix: suffix, Kind: kind})
	}
	return specs, nil
}

func stringValue(expr hcl.Expression) (string, error) {
	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return "", diags
	}
	if v.IsNull() || !v.IsKnown() || !v.Type().Equals(cty.String) {
		return "", fmt.Errorf("expected a string, got %s", v.Type().FriendlyName())
	}
	return v.AsString(), nil
}

// isNull reports whether an optional attribute was left out
func isNull(expr hcl.Expression) bool {
	if expr == nil {
		return true
	}
	v, diags := expr.Value(nil)
	return !diags.HasErrors() && v.IsNull()
}

// typeRef decodes a target: shop.Customer, list(shop.OrderItem),
// set(shop.Tag), map(shop.Label) or map(string, shop.Label). A quoted
// "shop.Customer" is accepted as well.
func typeRef(expr hcl.Expression) (decl.TypeRef, error) {
	if isNull(expr) {
		return decl.TypeRef{}, errNoTarget
	}
	if call, diags := hcl.ExprCall(expr); !diags.HasErrors() {
		return containerRef(call)
	}
	return namedRef(expr)
}

func containerRef(call *hcl.StaticCall) (decl.TypeRef, error) {
	args := make([]decl.TypeRef, 0, len(call.Arguments))
	for _, arg := range call.Arguments {
		ref, err := typeRef(arg)
		if err != nil {
			return decl.TypeRef{}, fmt.Errorf("%s(): %w", call.Name, err)
		}
		args = append(args, ref)
	}

	switch call.Name {
	case "list", "set":
		if len(args) != 1 {
			return decl.TypeRef{}, fmt.Errorf("%s() takes one argument, got %d", call.Name, len(args))
		}
		return decl.List(args[0]), nil
	case "map":
		switch len(args) {
		case 1:
			return decl.Map(decl.Std("string"), args[0]), nil
		case 2:
			return decl.Map(args[0], args[1]), nil
		}
		return decl.TypeRef{}, fmt.Errorf("map() takes one or two arguments, got %d", len(args))
	default:
		return decl.TypeRef{Unsupported: true}, nil
	}
}

func namedRef(expr hcl.Expression) (decl.TypeRef, error) {
	traversal, diags := hcl.AbsTraversalForExpr(expr)
	if !diags.HasErrors() {
		parts := []string{traversal.RootName()}
		for _, step := range traversal[1:] {
			attr, ok := step.(hcl.TraverseAttr)
			if !ok {
				return decl.TypeRef{}, fmt.Errorf("%s: target must be a dotted class name", expr.Range())
			}
			parts = append(parts, attr.Name)
		}
		return refFor(strings.Join(parts, ".")), nil
	}

	name, err := stringValue(expr)
	if err != nil || name == "" {
		return decl.TypeRef{}, fmt.Errorf("%s: target must be a class name or a list, set or map of one", expr.Range())
	}
	return refFor(name), nil
}

// refFor treats single-segment names as standard types
func refFor(name string) decl.TypeRef {
	if !strings.Contains(name, ".") {
		return decl.Std(name)
	}
	return decl.Ref(decl.ClassID(name))
}
