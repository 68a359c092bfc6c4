package compiler

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"go.uber.org/zap"

	cerrors "github.com/conduit-lang/esgraph/internal/compiler/errors"
	"github.com/conduit-lang/esgraph/internal/decl"
	"github.com/conduit-lang/esgraph/internal/graph"
	strutil "github.com/conduit-lang/esgraph/internal/util/strings"
)

// BuildSkeleton creates one node per class of set, without fields. Classes
// whose enclosing class is not in the set are roots; every other class is
// created after its enclosing class, in level order.
//
// Root generated names share one scope. When two roots would get the same
// name the later one is disambiguated with its package name, then with a
// numeric suffix, and a W003 warning is returned. Classes left unbuilt when
// the queue drains fail the build with ErrStructural.
func BuildSkeleton(decls decl.Declarations, set *ClassSet, opts Options) (*graph.Builder, []Diagnostic, error) {
	log := opts.logger()
	b := graph.NewBuilder(opts.Prefix, opts.Package)
	var diags []Diagnostic

	ids := set.IDs()
	enqueued := make(map[decl.ClassID]bool, len(ids))
	children := make(map[decl.ClassID][]decl.ClassID)
	var queue []decl.ClassID
	for _, id := range ids {
		class, _ := set.Class(id)
		if class.Enclosing == "" || !set.Contains(class.Enclosing) {
			queue = append(queue, id)
			enqueued[id] = true
			continue
		}
		children[class.Enclosing] = append(children[class.Enclosing], id)
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		class, _ := set.Class(id)

		spec := graph.NodeSpec{
			ID:       id,
			Kind:     graph.KindObject,
			Nested:   set.ReachedNested(id),
			Position: class.Position,
		}
		if class.IsDocumentRoot() {
			spec.Kind = graph.KindDocument
			spec.IndexName = indexName(class)
		}

		if class.Enclosing != "" && set.Contains(class.Enclosing) {
			spec.Parent = class.Enclosing
			spec.GeneratedName = simpleName(class)
		} else {
			name, renamed := rootName(b, opts.Prefix, class)
			spec.GeneratedName = name
			if renamed {
				diags = append(diags, cerrors.Newf(cerrors.WarnRootNameCollision, cerrors.LocationOf(class.Position),
					"%s would be named %s%s, which is already taken; using %s", id, opts.Prefix, simpleName(class), name).
					WithSubject(string(id)))
			}
		}

		if _, err := b.AddNode(spec); err != nil {
			diags = append(diags, cerrors.New(cerrors.ErrStructuralViolation, err.Error(), cerrors.LocationOf(class.Position)).
				WithSubject(string(id)))
			return nil, diags, fmt.Errorf("%w: %v", ErrStructural, err)
		}
		log.Debug("created node",
			zap.String("class", string(id)),
			zap.String("name", spec.GeneratedName),
			zap.String("parent", string(spec.Parent)))

		for _, child := range children[id] {
			if !enqueued[child] {
				queue = append(queue, child)
				enqueued[child] = true
			}
		}
	}

	var orphans []string
	for _, id := range ids {
		if _, ok := b.Node(id); !ok {
			orphans = append(orphans, string(id))
		}
	}
	if len(orphans) > 0 {
		first, _ := set.Class(decl.ClassID(orphans[0]))
		diags = append(diags, cerrors.Newf(cerrors.ErrStructuralViolation, cerrors.LocationOf(first.Position),
			"no enclosing node could be created for %s", strings.Join(orphans, ", ")))
		return nil, diags, fmt.Errorf("%w: unplaced classes %s", ErrStructural, strings.Join(orphans, ", "))
	}

	return b, diags, nil
}

func simpleName(c decl.Class) string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID.TypeName()
}

// indexName defaults to the snake_case simple name
func indexName(c decl.Class) string {
	if c.Document != nil && c.Document.Index != "" {
		return c.Document.Index
	}
	return strutil.ToSnakeCase(simpleName(c))
}

// rootName returns the generated name of a root class and whether it had to
// be disambiguated.
func rootName(b *graph.Builder, prefix string, c decl.Class) (string, bool) {
	name := prefix + simpleName(c)
	if !b.NameTaken("", name) {
		return name, false
	}

	if pkg := packageQualifier(c); pkg != "" {
		qualified := prefix + pkg + simpleName(c)
		if !b.NameTaken("", qualified) {
			return qualified, true
		}
	}

	for i := 2; ; i++ {
		candidate := name + strconv.Itoa(i)
		if !b.NameTaken("", candidate) {
			return candidate, true
		}
	}
}

func packageQualifier(c decl.Class) string {
	pkg := c.Package
	if pkg == "" {
		pkg = c.ID.Package()
	}
	if pkg == "" {
		return ""
	}
	return strutil.ToPascalCase(path.Base(pkg))
}
