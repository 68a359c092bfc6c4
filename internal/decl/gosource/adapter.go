// Package gosource implements decl.Declarations for Go packages.
//
// Classes are struct types. A struct becomes a document root with a
// "//es:document index=<name>" directive in its doc comment, and an
// unexported struct opts in with "//es:include". Struct fields carrying an
// `es:"..."` tag are properties; methods with an "//es:field ..." directive
// are getters. A type named Outer_Inner is enclosed by Outer when Outer is a
// struct of the same package.
package gosource

import (
	"context"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"reflect"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/tools/go/packages"

	"github.com/conduit-lang/esgraph/internal/decl"
	strutil "github.com/conduit-lang/esgraph/internal/util/strings"
)

// LoadMode is the go/packages mode the adapter needs
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// Config controls which packages are loaded
type Config struct {
	Dir      string   // Working directory for the go command
	Patterns []string // Package patterns, "./..." when empty
	Env      []string // Extra environment for the go command
	Logger   *zap.Logger
}

// Adapter holds the classes found in a set of loaded packages
type Adapter struct {
	fset    *token.FileSet
	local   map[string]bool // import paths of loaded packages
	order   []decl.ClassID
	classes map[decl.ClassID]*class
}

type class struct {
	info  decl.Class
	props []*property
}

type property struct {
	prop   decl.Property
	ann    decl.Annotation
	annErr error
	typ    types.Type
}

var _ decl.Declarations = (*Adapter)(nil)

// Load loads and type-checks the packages matching cfg.Patterns and indexes
// their annotated struct types. Any package error fails the load.
func Load(ctx context.Context, cfg Config) (*Adapter, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	pcfg := &packages.Config{
		Context: ctx,
		Mode:    LoadMode,
		Dir:     cfg.Dir,
		Tests:   false,
	}
	if len(cfg.Env) > 0 {
		pcfg.Env = cfg.Env
	}

	pkgs, err := packages.Load(pcfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages match %s", strings.Join(patterns, " "))
	}

	var problems []string
	for _, pkg := range pkgs {
		for _, perr := range pkg.Errors {
			problems = append(problems, perr.Error())
		}
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("failed to load packages:\n  %s", strings.Join(problems, "\n  "))
	}

	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].PkgPath < pkgs[j].PkgPath })

	a := &Adapter{
		local:   make(map[string]bool, len(pkgs)),
		classes: make(map[decl.ClassID]*class),
	}
	for _, pkg := range pkgs {
		a.local[pkg.PkgPath] = true
	}
	for _, pkg := range pkgs {
		if a.fset == nil {
			a.fset = pkg.Fset
		}
		a.indexPackage(pkg)
		log.Debug("indexed package", zap.String("package", pkg.PkgPath), zap.Int("files", len(pkg.Syntax)))
	}

	log.Debug("loaded go declarations", zap.Int("packages", len(pkgs)), zap.Int("classes", len(a.order)))
	return a, nil
}

// indexPackage records every struct type of pkg, then its getters
func (a *Adapter) indexPackage(pkg *packages.Package) {
	for _, file := range pkg.Syntax {
		for _, d := range file.Decls {
			gen, ok := d.(*ast.GenDecl)
			if !ok || gen.Tok != token.TYPE {
				continue
			}
			for _, spec := range gen.Specs {
				ts := spec.(*ast.TypeSpec)
				doc := ts.Doc
				if doc == nil && len(gen.Specs) == 1 {
					doc = gen.Doc
				}
				a.indexType(pkg, ts, doc)
			}
		}
	}

	for _, file := range pkg.Syntax {
		for _, d := range file.Decls {
			if fn, ok := d.(*ast.FuncDecl); ok && fn.Recv != nil {
				a.indexGetter(pkg, fn)
			}
		}
	}
}

func (a *Adapter) indexType(pkg *packages.Package, ts *ast.TypeSpec, doc *ast.CommentGroup) {
	obj, ok := pkg.TypesInfo.Defs[ts.Name].(*types.TypeName)
	if !ok || obj.IsAlias() {
		return
	}
	st, ok := obj.Type().Underlying().(*types.Struct)
	if !ok {
		return
	}

	id := classID(pkg.PkgPath, obj.Name())
	c := &class{
		info: decl.Class{
			ID:         id,
			Name:       obj.Name(),
			Package:    pkg.PkgPath,
			Visibility: decl.Public,
			Position:   a.position(ts.Name.Pos()),
		},
	}
	if !obj.Exported() {
		c.info.Visibility = decl.Private
	}

	for _, dir := range directives(doc) {
		switch dir.Name {
		case "document":
			args, _ := decl.DirectiveArgs(dir.Args)
			c.info.Document = &decl.DocumentInfo{Index: args["index"]}
		case "include":
			c.info.OptIn = true
		}
	}

	if outer, inner, ok := splitNested(obj.Name()); ok {
		if o, isType := pkg.Types.Scope().Lookup(outer).(*types.TypeName); isType {
			if _, isStruct := o.Type().Underlying().(*types.Struct); isStruct {
				c.info.Enclosing = classID(pkg.PkgPath, outer)
				c.info.Name = inner
			}
		}
	}

	for i := 0; i < st.NumFields(); i++ {
		field := st.Field(i)
		if field.Anonymous() {
			continue
		}
		tag, ok := reflect.StructTag(st.Tag(i)).Lookup(decl.TagKey)
		if !ok || tag == "-" {
			continue
		}
		ann, err := decl.ParseTag(tag)
		c.add(&property{
			prop: decl.Property{
				Name:     strutil.ToLowerCamel(field.Name()),
				Owner:    id,
				Source:   decl.SourceField,
				Position: a.position(field.Pos()),
			},
			ann:    ann,
			annErr: err,
			typ:    field.Type(),
		})
	}

	a.classes[id] = c
	a.order = append(a.order, id)
}

func (a *Adapter) indexGetter(pkg *packages.Package, fn *ast.FuncDecl) {
	var dir decl.Directive
	found := false
	for _, d := range directives(fn.Doc) {
		if d.Name == "field" {
			dir, found = d, true
		}
	}
	if !found {
		return
	}

	obj, ok := pkg.TypesInfo.Defs[fn.Name].(*types.Func)
	if !ok {
		return
	}
	sig := obj.Type().(*types.Signature)
	recv := sig.Recv().Type()
	if ptr, ok := recv.(*types.Pointer); ok {
		recv = ptr.Elem()
	}
	named, ok := recv.(*types.Named)
	if !ok {
		return
	}
	c, ok := a.classes[classID(pkg.PkgPath, named.Obj().Name())]
	if !ok {
		return
	}

	p := &property{
		prop: decl.Property{
			Name:     getterName(fn.Name.Name),
			Owner:    c.info.ID,
			Source:   decl.SourceGetter,
			Position: a.position(fn.Name.Pos()),
		},
	}
	if sig.Params().Len() != 0 || sig.Results().Len() != 1 {
		p.annErr = fmt.Errorf("getter %s must take no arguments and return one value", fn.Name.Name)
	} else {
		p.ann, p.annErr = decl.ParseTag(dir.Args)
		p.typ = sig.Results().At(0).Type()
	}
	c.add(p)
}

func (c *class) add(p *property) {
	p.prop.Handle = p
	c.props = append(c.props, p)
}

func (a *Adapter) position(pos token.Pos) decl.Position {
	if a.fset == nil || !pos.IsValid() {
		return decl.Position{}
	}
	p := a.fset.Position(pos)
	return decl.Position{File: p.Filename, Line: p.Line, Column: p.Column}
}

// Roots returns the document classes, skipping unexported ones that did not
// opt in.
func (a *Adapter) Roots() []decl.ClassID {
	var roots []decl.ClassID
	for _, id := range a.order {
		c := a.classes[id].info
		if !c.IsDocumentRoot() {
			continue
		}
		if c.Visibility == decl.Private && !c.OptIn {
			continue
		}
		roots = append(roots, id)
	}
	return roots
}

// Class looks up a struct type by identity
func (a *Adapter) Class(id decl.ClassID) (decl.Class, bool) {
	c, ok := a.classes[id]
	if !ok {
		return decl.Class{}, false
	}
	return c.info, true
}

// Classes returns every indexed struct type in load order
func (a *Adapter) Classes() []decl.ClassID {
	return append([]decl.ClassID(nil), a.order...)
}

// Properties returns tagged fields in declaration order, then getters in
// declaration order.
func (a *Adapter) Properties(id decl.ClassID) ([]decl.Property, error) {
	c, ok := a.classes[id]
	if !ok {
		return nil, fmt.Errorf("unknown class %s", id)
	}
	props := make([]decl.Property, 0, len(c.props))
	for _, source := range []decl.PropertySource{decl.SourceField, decl.SourceGetter} {
		for _, p := range c.props {
			if p.prop.Source == source {
				props = append(props, p.prop)
			}
		}
	}
	return props, nil
}

// Annotation returns the parsed tag or directive of a property
func (a *Adapter) Annotation(p decl.Property) (decl.Annotation, error) {
	prop, err := lookup(p)
	if err != nil {
		return decl.Annotation{}, err
	}
	return prop.ann, prop.annErr
}

// ResolveType converts the Go type of a property
func (a *Adapter) ResolveType(p decl.Property) (decl.TypeRef, error) {
	prop, err := lookup(p)
	if err != nil {
		return decl.TypeRef{}, err
	}
	if prop.typ == nil {
		return decl.TypeRef{}, fmt.Errorf("property %s has no type", p.Name)
	}
	return a.typeRef(prop.typ), nil
}

func lookup(p decl.Property) (*property, error) {
	prop, ok := p.Handle.(*property)
	if !ok || prop == nil {
		return nil, fmt.Errorf("property %s was not loaded from Go source", p.Name)
	}
	return prop, nil
}

func classID(pkgPath, name string) decl.ClassID {
	return decl.ClassID(pkgPath + "." + name)
}

func directives(doc *ast.CommentGroup) []decl.Directive {
	if doc == nil {
		return nil
	}
	var out []decl.Directive
	for _, c := range doc.List {
		if d, ok := decl.ParseDirective(c.Text); ok {
			out = append(out, d)
		}
	}
	return out
}

// splitNested splits Outer_Inner at the last underscore
func splitNested(name string) (string, string, bool) {
	i := strings.LastIndex(name, "_")
	if i <= 0 || i == len(name)-1 {
		return "", "", false
	}
	return name[:i], name[i+1:], true
}

// getterName maps GetTotal and Total to total
func getterName(method string) string {
	if rest, ok := strings.CutPrefix(method, "Get"); ok && rest != "" && ast.IsExported(rest) {
		method = rest
	}
	return strutil.ToLowerCamel(method)
}
