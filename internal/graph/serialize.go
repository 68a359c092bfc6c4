package graph

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/conduit-lang/esgraph/internal/decl"
)

// Document is the JSON form of a Graph
type Document struct {
	Prefix  string         `json:"prefix"`
	Package string         `json:"package,omitempty"`
	Nodes   []NodeDocument `json:"nodes"`
}

// NodeDocument is the JSON form of a ClassNode
type NodeDocument struct {
	ID            string          `json:"id"`
	GeneratedName string          `json:"generated_name"`
	QualifiedName string          `json:"qualified_name"`
	Kind          string          `json:"kind"`
	IndexName     string          `json:"index_name,omitempty"`
	Nested        bool            `json:"nested"`
	Parent        string          `json:"parent,omitempty"`
	Fields        []FieldDocument `json:"fields"`
}

// FieldDocument is the JSON form of a Field
type FieldDocument struct {
	Variant           string               `json:"variant"`
	Name              string               `json:"name"`
	ElasticsearchName string               `json:"elasticsearch_name"`
	Kind              decl.FieldKind       `json:"kind"`
	Nested            bool                 `json:"nested,omitempty"`
	Target            string               `json:"target,omitempty"`
	Inner             []InnerFieldDocument `json:"inner,omitempty"`
	Property          string               `json:"property"`
	Source            string               `json:"source"`
}

// InnerFieldDocument is the JSON form of an InnerField
type InnerFieldDocument struct {
	Suffix string         `json:"suffix"`
	Kind   decl.FieldKind `json:"kind"`
}

// ToDocument converts the graph to its JSON form, nodes in level order and
// fields in discovery order.
func (g *Graph) ToDocument() *Document {
	doc := &Document{
		Prefix:  g.prefix,
		Package: g.pkg,
		Nodes:   make([]NodeDocument, 0, len(g.order)),
	}
	for _, n := range g.Nodes() {
		nd := NodeDocument{
			ID:            string(n.id),
			GeneratedName: n.generatedName,
			QualifiedName: n.QualifiedName(),
			Kind:          n.kind.String(),
			IndexName:     n.indexName,
			Nested:        n.nested,
			Parent:        string(n.parent),
			Fields:        make([]FieldDocument, 0, len(n.fields)),
		}
		for _, f := range n.fields {
			fd := FieldDocument{
				Variant:           f.Variant.String(),
				Name:              f.Name,
				ElasticsearchName: f.ElasticsearchName,
				Kind:              f.Kind,
				Nested:            f.Nested,
				Target:            string(f.Target),
				Property:          f.Property,
				Source:            f.Source.String(),
			}
			for _, in := range f.Inner {
				fd.Inner = append(fd.Inner, InnerFieldDocument{Suffix: in.Suffix, Kind: in.Kind})
			}
			nd.Fields = append(nd.Fields, fd)
		}
		doc.Nodes = append(doc.Nodes, nd)
	}
	return doc
}

// Serialize converts the graph to indented JSON. The output is deterministic:
// the same graph always produces the same bytes.
func Serialize(g *Graph) ([]byte, error) {
	if g == nil {
		return nil, fmt.Errorf("graph cannot be nil")
	}

	data, err := json.MarshalIndent(g.ToDocument(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize graph: %w", err)
	}
	return data, nil
}

// Compress compresses data using gzip
func Compress(data []byte) ([]byte, error) {
	if data == nil {
		return nil, fmt.Errorf("data cannot be nil")
	}
	if len(data) == 0 {
		return []byte{}, nil
	}

	var buf bytes.Buffer
	writer, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip writer: %w", err)
	}
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("failed to compress data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close gzip writer: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteToFile writes the serialized graph to outputPath. Paths ending in ".gz"
// are gzip-compressed.
func WriteToFile(g *Graph, outputPath string) error {
	if g == nil {
		return fmt.Errorf("graph cannot be nil")
	}
	if outputPath == "" {
		return fmt.Errorf("output path cannot be empty")
	}

	data, err := Serialize(g)
	if err != nil {
		return err
	}
	if strings.HasSuffix(outputPath, ".gz") {
		data, err = Compress(data)
		if err != nil {
			return fmt.Errorf("failed to compress graph: %w", err)
		}
	}

	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write graph to %s: %w", outputPath, err)
	}
	return nil
}
