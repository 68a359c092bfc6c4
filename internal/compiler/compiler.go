// Package compiler turns annotated declarations into a schema graph.
//
// Compilation runs three passes in order, each consuming the whole output of
// the previous one:
//
//  1. Collect discovers every class reachable from the document roots.
//  2. BuildSkeleton creates one node per class in level order, parents first,
//     and assigns generated names.
//  3. LinkFields fills in the fields of every node, resolving object fields to
//     nodes created by the skeleton pass.
//
// Compile runs all three and freezes the result.
package compiler

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	cerrors "github.com/conduit-lang/esgraph/internal/compiler/errors"
	"github.com/conduit-lang/esgraph/internal/decl"
	"github.com/conduit-lang/esgraph/internal/graph"
)

// DefaultPrefix is prepended to the simple name of root classes
const DefaultPrefix = "Q"

// ErrStructural is returned when classes cannot be placed in the skeleton
var ErrStructural = errors.New("structural violation")

// Diagnostic is one compiler diagnostic
type Diagnostic = cerrors.CompilerError

// Options configures a compilation
type Options struct {
	Prefix  string // Root generated-name prefix
	Package string // Output package, recorded on the graph
	Policy  Policy
	Logger  *zap.Logger
}

// DefaultOptions returns options with the default prefix and policy
func DefaultOptions() Options {
	return Options{Prefix: DefaultPrefix, Policy: DefaultPolicy()}
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Result is the outcome of a compilation
type Result struct {
	Graph       *graph.Graph // nil when the skeleton could not be built
	Classes     *ClassSet
	Diagnostics []Diagnostic
}

// HasErrors reports whether any diagnostic is an error
func (r *Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.IsError() {
			return true
		}
	}
	return false
}

// Recovery returns the diagnostics as an ErrorRecovery for rendering
func (r *Result) Recovery() *cerrors.ErrorRecovery {
	rec := cerrors.NewErrorRecovery()
	rec.RecoverMultiple(r.Diagnostics)
	return rec
}

// Compile runs the collector, skeleton and linker passes and returns the
// frozen graph. Per-property failures are reported as diagnostics and do not
// fail the build; a structural violation returns ErrStructural together with
// a Result carrying the diagnostics.
func Compile(decls decl.Declarations, opts Options) (*Result, error) {
	log := opts.logger()

	set, err := Collect(decls, opts.Policy)
	if err != nil {
		return nil, fmt.Errorf("failed to collect classes: %w", err)
	}
	log.Debug("collected classes", zap.Int("classes", set.Len()))

	result := &Result{Classes: set}

	builder, diags, err := BuildSkeleton(decls, set, opts)
	result.Diagnostics = append(result.Diagnostics, diags...)
	if err != nil {
		return result, err
	}

	result.Diagnostics = append(result.Diagnostics, LinkFields(decls, builder, opts)...)
	result.Graph = builder.Freeze()

	log.Debug("compiled graph",
		zap.Int("nodes", result.Graph.Len()),
		zap.Int("fields", result.Graph.FieldCount()),
		zap.Int("diagnostics", len(result.Diagnostics)))
	return result, nil
}
