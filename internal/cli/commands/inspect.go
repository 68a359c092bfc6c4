package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/esgraph/internal/cli/ui"
	"github.com/conduit-lang/esgraph/internal/decl"
	"github.com/conduit-lang/esgraph/internal/graph"
)

var inspectObjects bool

// NewInspectCommand creates the inspect command
func NewInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [identity]",
		Short: "Show the field paths of compiled classes",
		Long: `Compile the configured declarations and print every field path reachable
from each document class, or from the single class named by identity.

The identity may be the class identity (shop.Order), the generated name
(QOrder) or the qualified name of a nested class (QOrder.Shipping).`,
		Example: `  # All documents
  esgraph inspect

  # One class
  esgraph inspect shop.Order

  # Include embedded object classes
  esgraph inspect --objects`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInspect,
	}

	cmd.Flags().BoolVar(&inspectObjects, "objects", false, "Also list object classes")

	return cmd
}

func runInspect(cmd *cobra.Command, args []string) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	cfg, err := loadConfig(stderr)
	if err != nil {
		return err
	}
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	result, err := compileProject(cmd.Context(), cfg, log)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			fmt.Fprint(stderr, ui.LoadFailed(loadErr.Format, loadErr.Err, noColor))
			return reportedError{err}
		}
		if result != nil {
			ui.PrintDiagnostics(stderr, result.Diagnostics, ui.DiagnosticOptions{})
			return reportedError{err}
		}
		return err
	}
	g := result.Graph

	var nodes []*graph.ClassNode
	switch {
	case len(args) == 1:
		node, ok := findNode(g, args[0])
		if !ok {
			fmt.Fprint(stderr, ui.ClassNotFound(args[0], ui.SimilarIdentities(args[0], identities(g), 3), noColor))
			return reportedError{fmt.Errorf("class %s not found", args[0])}
		}
		nodes = append(nodes, node)
	case inspectObjects:
		nodes = g.Nodes()
	default:
		nodes = g.DocumentNodes()
	}

	if len(nodes) == 0 {
		fmt.Fprintln(stdout, "No document classes found")
		return nil
	}
	for i, node := range nodes {
		if i > 0 {
			fmt.Fprintln(stdout)
		}
		if err := printNode(stdout, g, node); err != nil {
			return err
		}
	}
	return nil
}

// findNode looks a node up by identity, generated name or qualified name
func findNode(g *graph.Graph, name string) (*graph.ClassNode, bool) {
	if node, ok := g.Node(decl.ClassID(name)); ok {
		return node, true
	}
	for _, node := range g.Nodes() {
		if node.GeneratedName() == name || node.QualifiedName() == name {
			return node, true
		}
	}
	return nil, false
}

func identities(g *graph.Graph) []string {
	ids := make([]string, 0, g.Len())
	for _, node := range g.Nodes() {
		ids = append(ids, string(node.ID()))
	}
	return ids
}

func printNode(w io.Writer, g *graph.Graph, node *graph.ClassNode) error {
	title := fmt.Sprintf("%s (%s)", node.QualifiedName(), node.ID())
	if node.IsDocument() {
		title += " index=" + node.IndexName()
	}
	ui.Header(w, title, noColor)

	table := ui.NewTable(w, noColor, "PATH", "VARIANT", "KIND", "NESTED", "NESTED PATHS")
	err := g.Walk(node.ID(), func(p *graph.FieldPath) error {
		f := p.Field()
		kind := f.Kind.String()
		if f.IsTerminal() {
			kind += " (terminal)"
		}
		table.AddRow(p.Path(), f.Variant.String(), kind, yesNo(p.IsNestedPath()), strings.Join(p.NestedPaths(), ", "))
		return nil
	})
	if err != nil {
		return err
	}

	if table.Len() == 0 {
		fmt.Fprintln(w, "  (no fields)")
		return nil
	}
	table.Render()
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
