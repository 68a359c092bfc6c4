package compiler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/esgraph/internal/decl"
	"github.com/conduit-lang/esgraph/internal/graph"
)

// orderSchema is Order{id, customer -> Customer{name, email}, items nested -> []OrderItem{sku, qty}}
func orderSchema() *decl.Static {
	return decl.NewSchema().
		Document("shop.Order", "orders").
		Field("id", decl.KindKeyword).
		Object("customer", decl.Ref("shop.Customer")).
		Nested("items", decl.List(decl.Ref("shop.OrderItem"))).
		Multi("description", decl.KindText, decl.Inner("keyword", decl.KindKeyword), decl.Inner("raw", decl.KindKeyword)).
		Class("shop.Customer").
		Field("name", decl.KindText).
		Field("email", decl.KindKeyword).
		Class("shop.OrderItem").
		Field("sku", decl.KindKeyword).
		Field("qty", decl.KindInteger).
		MustBuild()
}

// faultyDecls wraps a Static schema and misbehaves on demand
type faultyDecls struct {
	*decl.Static
	extraRoots []decl.ClassID
	failClass  decl.ClassID
	panicOn    string
}

func (f faultyDecls) Roots() []decl.ClassID {
	return append(f.Static.Roots(), f.extraRoots...)
}

func (f faultyDecls) Properties(id decl.ClassID) ([]decl.Property, error) {
	if id == f.failClass {
		return nil, errors.New("class body unreadable")
	}
	return f.Static.Properties(id)
}

func (f faultyDecls) Annotation(p decl.Property) (decl.Annotation, error) {
	if p.Name == f.panicOn {
		panic("malformed payload")
	}
	return f.Static.Annotation(p)
}

func mustCompile(t *testing.T, decls decl.Declarations, opts Options) *Result {
	t.Helper()
	result, err := Compile(decls, opts)
	require.NoError(t, err)
	require.NotNil(t, result.Graph)
	return result
}

func fieldPath(t *testing.T, s *graph.Selection, names ...string) *graph.FieldPath {
	t.Helper()
	var p *graph.FieldPath
	for i, name := range names {
		var ok bool
		p, ok = s.Field(name)
		require.True(t, ok, "field %s not found", name)
		if i < len(names)-1 {
			s, ok = p.Select()
			require.True(t, ok, "field %s has no target", name)
		}
	}
	return p
}

func codes(diags []Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Code)
	}
	return out
}
