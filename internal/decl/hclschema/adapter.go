// Package hclschema implements decl.Declarations for HCL schema files.
//
//	document "shop.Order" {
//	  index = "orders"
//	  property "id" { type = "keyword" }
//	  property "items" {
//	    type   = "nested"
//	    target = list(shop.OrderItem)
//	  }
//	  property "description" {
//	    type   = "text"
//	    fields = { keyword = "keyword", raw = "keyword" }
//	  }
//	  getter "total" { type = "double" }
//	}
//
//	class "shop.Order_Item" {
//	  enclosing = "shop.Order"
//	  name      = "Item"
//	}
//
// Class identities are block labels. Targets are traversals or list, set and
// map calls over traversals; single-segment targets such as string or long are
// standard types.
package hclschema

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"go.uber.org/zap"

	"github.com/conduit-lang/esgraph/internal/decl"
)

// Extension is the file extension of schema files
const Extension = ".hcl"

// Config controls which files are loaded
type Config struct {
	Dir    string   // Directory searched recursively for schema files
	Files  []string // Explicit files, used instead of Dir when set
	Logger *zap.Logger
}

// Adapter holds the classes declared by a set of schema files
type Adapter struct {
	parser  *hclparse.Parser
	order   []decl.ClassID
	classes map[decl.ClassID]*class
	log     *zap.Logger
}

type class struct {
	info  decl.Class
	props []*property
}

type property struct {
	prop   decl.Property
	ann    decl.Annotation
	annErr error
	typ    decl.TypeRef
	typErr error
}

var _ decl.Declarations = (*Adapter)(nil)

// New returns an empty adapter; add files with ParseFile or ParseSource
func New(log *zap.Logger) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{
		parser:  hclparse.NewParser(),
		classes: make(map[decl.ClassID]*class),
		log:     log,
	}
}

// Load parses every schema file of cfg
func Load(ctx context.Context, cfg Config) (*Adapter, error) {
	a := New(cfg.Logger)

	files := cfg.Files
	if len(files) == 0 {
		found, err := FindFiles(cfg.Dir)
		if err != nil {
			return nil, err
		}
		files = found
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s schema files found in %s", Extension, cfg.Dir)
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := a.ParseFile(file); err != nil {
			return nil, err
		}
	}

	a.log.Debug("loaded hcl declarations", zap.Int("files", len(files)), zap.Int("classes", len(a.order)))
	return a, nil
}

// FindFiles returns the schema files under dir, sorted
func FindFiles(dir string) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != dir && (strings.HasPrefix(name, ".") || name == "vendor" || name == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == Extension {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find schema files in %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// ParseFile reads and indexes one schema file
func (a *Adapter) ParseFile(filename string) error {
	file, diags := a.parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse schema file %s: %w", filename, diags)
	}
	return a.decode(filename, file)
}

// ParseSource indexes schema source held in memory
func (a *Adapter) ParseSource(filename string, src []byte) error {
	file, diags := a.parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse schema file %s: %w", filename, diags)
	}
	return a.decode(filename, file)
}

func (a *Adapter) decode(filename string, file *hcl.File) error {
	var parsed schemaFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return fmt.Errorf("failed to decode schema file %s: %w", filename, diags)
	}

	for _, b := range parsed.Documents {
		if err := a.addClass(b, true); err != nil {
			return err
		}
	}
	for _, b := range parsed.Classes {
		if err := a.addClass(b, false); err != nil {
			return err
		}
	}
	a.log.Debug("decoded schema file",
		zap.String("file", filename),
		zap.Int("documents", len(parsed.Documents)),
		zap.Int("classes", len(parsed.Classes)))
	return nil
}

func (a *Adapter) addClass(b *classBlock, document bool) error {
	id := decl.ClassID(b.ID)
	if b.ID == "" {
		return fmt.Errorf("%s: class label must not be empty", b.DefRange)
	}
	if prev, exists := a.classes[id]; exists {
		return fmt.Errorf("%s: class %s already declared at %s", b.DefRange, id, prev.info.Position)
	}

	c := &class{
		info: decl.Class{
			ID:         id,
			Name:       id.TypeName(),
			Package:    id.Package(),
			Visibility: decl.Public,
			Position:   position(b.DefRange),
		},
	}
	if b.Name != nil {
		c.info.Name = *b.Name
	}
	if b.Package != nil {
		c.info.Package = *b.Package
	}
	if b.Enclosing != nil {
		c.info.Enclosing = decl.ClassID(*b.Enclosing)
	}
	if b.Private != nil && *b.Private {
		c.info.Visibility = decl.Private
	}
	if b.Include != nil {
		c.info.OptIn = *b.Include
	}
	if document {
		c.info.Document = &decl.DocumentInfo{}
		if b.Index != nil {
			c.info.Document.Index = *b.Index
		}
	} else if b.Index != nil {
		return fmt.Errorf("%s: index is only valid on document blocks", b.DefRange)
	}

	for _, pb := range b.Properties {
		c.add(newProperty(id, pb, decl.SourceField))
	}
	for _, pb := range b.Getters {
		c.add(newProperty(id, pb, decl.SourceGetter))
	}

	a.classes[id] = c
	a.order = append(a.order, id)
	return nil
}

func newProperty(owner decl.ClassID, b *propertyBlock, source decl.PropertySource) *property {
	p := &property{
		prop: decl.Property{
			Name:     b.Key,
			Owner:    owner,
			Source:   source,
			Position: position(b.DefRange),
		},
	}
	p.ann, p.annErr = annotation(b)
	p.typ, p.typErr = typeRef(b.Target)
	return p
}

func (c *class) add(p *property) {
	p.prop.Handle = p
	c.props = append(c.props, p)
}

func position(r hcl.Range) decl.Position {
	return decl.Position{File: r.Filename, Line: r.Start.Line, Column: r.Start.Column}
}

// Roots returns the document blocks, skipping private ones without include
func (a *Adapter) Roots() []decl.ClassID {
	var roots []decl.ClassID
	for _, id := range a.order {
		c := a.classes[id].info
		if !c.IsDocumentRoot() || (c.Visibility == decl.Private && !c.OptIn) {
			continue
		}
		roots = append(roots, id)
	}
	return roots
}

// Class looks up a block by label
func (a *Adapter) Class(id decl.ClassID) (decl.Class, bool) {
	c, ok := a.classes[id]
	if !ok {
		return decl.Class{}, false
	}
	return c.info, true
}

// Classes returns every declared class in load order
func (a *Adapter) Classes() []decl.ClassID {
	return append([]decl.ClassID(nil), a.order...)
}

// Properties returns property blocks, then getter blocks, in source order
func (a *Adapter) Properties(id decl.ClassID) ([]decl.Property, error) {
	c, ok := a.classes[id]
	if !ok {
		return nil, fmt.Errorf("unknown class %s", id)
	}
	props := make([]decl.Property, 0, len(c.props))
	for _, p := range c.props {
		props = append(props, p.prop)
	}
	return props, nil
}

// Annotation returns the decoded attributes of a property block
func (a *Adapter) Annotation(p decl.Property) (decl.Annotation, error) {
	prop, err := lookup(p)
	if err != nil {
		return decl.Annotation{}, err
	}
	return prop.ann, prop.annErr
}

// ResolveType returns the decoded target of a property block
func (a *Adapter) ResolveType(p decl.Property) (decl.TypeRef, error) {
	prop, err := lookup(p)
	if err != nil {
		return decl.TypeRef{}, err
	}
	return prop.typ, prop.typErr
}

func lookup(p decl.Property) (*property, error) {
	prop, ok := p.Handle.(*property)
	if !ok || prop == nil {
		return nil, fmt.Errorf("property %s was not loaded from a schema file", p.Name)
	}
	return prop, nil
}
