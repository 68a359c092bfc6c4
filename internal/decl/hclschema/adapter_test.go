package hclschema

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/conduit-lang/esgraph/internal/compiler"
	cerrors "github.com/conduit-lang/esgraph/internal/compiler/errors"
	"github.com/conduit-lang/esgraph/internal/decl"
	"github.com/conduit-lang/esgraph/internal/graph"
)

func loadTestdata(t *testing.T) *Adapter {
	t.Helper()
	a, err := Load(context.Background(), Config{Dir: "testdata", Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)
	return a
}

func parse(t *testing.T, src string) (*Adapter, error) {
	t.Helper()
	a := New(zaptest.NewLogger(t))
	return a, a.ParseSource("inline.hcl", []byte(src))
}

func propertyNamed(t *testing.T, a *Adapter, class decl.ClassID, name string) decl.Property {
	t.Helper()
	props, err := a.Properties(class)
	require.NoError(t, err)
	for _, p := range props {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("property %s of %s not found", name, class)
	return decl.Property{}
}

func TestFindFiles(t *testing.T) {
	files, err := FindFiles("testdata")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("testdata", "audit.hcl"),
		filepath.Join("testdata", "shop.hcl"),
	}, files)

	_, err = FindFiles(filepath.Join("testdata", "missing"))
	assert.Error(t, err)
}

func TestLoadClasses(t *testing.T) {
	a := loadTestdata(t)

	assert.Equal(t, []decl.ClassID{"audit.entry", "shop.Order"}, a.Roots())
	assert.Len(t, a.Classes(), 8)

	order, ok := a.Class("shop.Order")
	require.True(t, ok)
	assert.Equal(t, "Order", order.Name)
	assert.Equal(t, "shop", order.Package)
	require.NotNil(t, order.Document)
	assert.Equal(t, "orders", order.Document.Index)
	assert.Equal(t, filepath.Join("testdata", "shop.hcl"), order.Position.File)
	assert.Equal(t, 1, order.Position.Line)

	shipping, _ := a.Class("shop.Order_Shipping")
	assert.Equal(t, "Shipping", shipping.Name)
	assert.Equal(t, decl.ClassID("shop.Order"), shipping.Enclosing)
	assert.Nil(t, shipping.Document)

	entry, _ := a.Class("audit.entry")
	assert.Equal(t, decl.Private, entry.Visibility)
	assert.True(t, entry.OptIn)
	assert.Equal(t, "", entry.Document.Index)

	draft, _ := a.Class("audit.draft")
	assert.True(t, draft.IsDocumentRoot())
	assert.False(t, draft.OptIn)

	_, ok = a.Class("shop.Missing")
	assert.False(t, ok)
}

func TestProperties(t *testing.T) {
	a := loadTestdata(t)

	props, err := a.Properties("shop.Order")
	require.NoError(t, err)
	var names []string
	for _, p := range props {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"id", "customer", "items", "description", "shipping", "labels", "createdAt", "bad", "total"}, names)
	assert.Equal(t, decl.SourceGetter, props[8].Source)
	assert.Equal(t, 4, props[0].Position.Line)

	_, err = a.Properties("shop.Missing")
	assert.Error(t, err)
}

func TestAnnotations(t *testing.T) {
	a := loadTestdata(t)

	ann, err := a.Annotation(propertyNamed(t, a, "shop.Order", "description"))
	require.NoError(t, err)
	assert.Equal(t, decl.KindText, ann.Kind)
	assert.Equal(t, []decl.InnerFieldSpec{
		decl.Inner("keyword", decl.KindKeyword),
		decl.Inner("raw", decl.KindKeyword),
	}, ann.Inner)

	ann, err = a.Annotation(propertyNamed(t, a, "shop.Order", "shipping"))
	require.NoError(t, err)
	assert.Equal(t, "ship_to", ann.Name)

	_, err = a.Annotation(propertyNamed(t, a, "shop.Order", "bad"))
	assert.Error(t, err)

	_, err = a.Annotation(decl.Property{Name: "foreign"})
	assert.Error(t, err)
}

func TestResolveType(t *testing.T) {
	a := loadTestdata(t)

	tests := []struct {
		property string
		expected decl.TypeRef
	}{
		{"customer", decl.Ref("shop.Customer")},
		{"items", decl.List(decl.Ref("shop.OrderItem"))},
		{"shipping", decl.Ref("shop.Order_Shipping")},
		{"labels", decl.Map(decl.Std("string"), decl.Ref("shop.Label"))},
	}
	for _, tt := range tests {
		t.Run(tt.property, func(t *testing.T) {
			typ, err := a.ResolveType(propertyNamed(t, a, "shop.Order", tt.property))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, typ)
		})
	}

	_, err := a.ResolveType(propertyNamed(t, a, "shop.Order", "id"))
	assert.ErrorIs(t, err, errNoTarget)
}

func TestTargetForms(t *testing.T) {
	a, err := parse(t, `
class "x.A" {
  property "std" {
    type   = "object"
    target = string
  }
  property "kv" {
    type   = "object"
    target = map(string, x.B)
  }
  property "nested" {
    type   = "nested"
    target = list(list(x.B))
  }
  property "tuple" {
    type   = "object"
    target = tuple(x.B)
  }
  property "index" {
    type   = "object"
    target = x.B[0]
  }
  property "arity" {
    type   = "nested"
    target = list(x.B, x.C)
  }
}
`)
	require.NoError(t, err)

	typ, err := a.ResolveType(propertyNamed(t, a, "x.A", "std"))
	require.NoError(t, err)
	assert.Equal(t, decl.Std("string"), typ)

	typ, err = a.ResolveType(propertyNamed(t, a, "x.A", "kv"))
	require.NoError(t, err)
	assert.Equal(t, decl.Map(decl.Std("string"), decl.Ref("x.B")), typ)

	typ, err = a.ResolveType(propertyNamed(t, a, "x.A", "nested"))
	require.NoError(t, err)
	assert.Equal(t, decl.List(decl.List(decl.Ref("x.B"))), typ)

	typ, err = a.ResolveType(propertyNamed(t, a, "x.A", "tuple"))
	require.NoError(t, err)
	assert.True(t, typ.Unsupported)

	_, err = a.ResolveType(propertyNamed(t, a, "x.A", "index"))
	assert.Error(t, err)
	_, err = a.ResolveType(propertyNamed(t, a, "x.A", "arity"))
	assert.Error(t, err)
}

func TestInvalidFields(t *testing.T) {
	tests := []struct {
		name   string
		fields string
		kind   string
	}{
		{"empty", `{}`, "text"},
		{"not an object", `"keyword"`, "text"},
		{"unknown kind", `{ raw = "enum" }`, "text"},
		{"container inner", `{ raw = "nested" }`, "text"},
		{"container main", `{ raw = "keyword" }`, "object"},
		{"non-string kind", `{ raw = 1 }`, "text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := parse(t, `
class "x.A" {
  property "p" {
    type   = "`+tt.kind+`"
    fields = `+tt.fields+`
  }
}
`)
			require.NoError(t, err)
			_, err = a.Annotation(propertyNamed(t, a, "x.A", "p"))
			assert.Error(t, err)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `class "x.A" {`},
		{"unknown block", `widget "x.A" {}`},
		{"missing type", "class \"x.A\" {\n  property \"p\" {}\n}"},
		{"duplicate class", "class \"x.A\" {}\nclass \"x.A\" {}"},
		{"index on class", `class "x.A" { index = "a" }`},
		{"empty label", `class "" {}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(t, tt.src)
			assert.Error(t, err)
		})
	}

	_, err := Load(context.Background(), Config{Dir: t.TempDir()})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Load(ctx, Config{Dir: "testdata"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompileSchema(t *testing.T) {
	a := loadTestdata(t)

	res, err := compiler.Compile(a, compiler.DefaultOptions())
	require.NoError(t, err)

	g := res.Graph
	assert.Equal(t, 5, g.Len())

	entry, ok := g.Node("audit.entry")
	require.True(t, ok)
	assert.Equal(t, "Qentry", entry.GeneratedName())
	assert.Equal(t, "entry", entry.IndexName())

	shipping, ok := g.Node("shop.Order_Shipping")
	require.True(t, ok)
	assert.Equal(t, "QOrder.Shipping", shipping.QualifiedName())

	_, ok = g.Node("audit.change")
	assert.False(t, ok)

	var paths []string
	require.NoError(t, g.Walk("shop.Order", func(p *graph.FieldPath) error {
		paths = append(paths, p.Path())
		return nil
	}))
	assert.Equal(t, []string{
		"id",
		"customer",
		"customer.name",
		"customer.email",
		"items",
		"items.sku",
		"items.qty",
		"description",
		"description.keyword",
		"description.raw",
		"ship_to",
		"ship_to.city",
		"labels",
		"createdAt",
		"total",
	}, paths)

	rec := res.Recovery()
	errs := rec.GetErrorsByCode(cerrors.ErrExtractionFailed)
	require.Len(t, errs, 1)
	assert.Equal(t, "shop.Order.bad", errs[0].Subject)
	assert.Equal(t, filepath.Join("testdata", "shop.hcl"), errs[0].Location.File)
}
