package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/esgraph/internal/cli/config"
	"github.com/conduit-lang/esgraph/internal/cli/ui"
	"github.com/conduit-lang/esgraph/internal/compiler"
	cerrors "github.com/conduit-lang/esgraph/internal/compiler/errors"
	"github.com/conduit-lang/esgraph/internal/graph"
)

var (
	buildJSON   bool
	buildOutput string
	buildStrict bool
)

// buildReport is printed by build --json
type buildReport struct {
	BuildID     string             `json:"build_id"`
	Success     bool               `json:"success"`
	Output      string             `json:"output,omitempty"`
	Graph       *graph.Document    `json:"graph,omitempty"`
	Diagnostics cerrors.JSONOutput `json:"diagnostics"`
}

// NewBuildCommand creates the build command
func NewBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile declarations into a metamodel graph",
		Long: `Load the configured declarations and compile them into a metamodel graph.

The build process:
  1. Load - read Go packages or HCL schema files
  2. Collect - discover every reachable document and object class
  3. Skeleton - create one node per class, parents before children
  4. Link - populate the fields of every node`,
		Example: `  # Build and print a summary
  esgraph build

  # Write the graph to a file; a .gz suffix compresses it
  esgraph build -o build/graph.json

  # Print the graph and diagnostics as JSON (useful for tooling)
  esgraph build --json

  # Fail when any property was dropped
  esgraph build --strict`,
		Args: cobra.NoArgs,
		RunE: runBuild,
	}

	cmd.Flags().BoolVar(&buildJSON, "json", false, "Print the graph and diagnostics as JSON")
	cmd.Flags().StringVarP(&buildOutput, "output", "o", "", "Graph file to write (default: output.file from esgraph.yml)")
	cmd.Flags().BoolVar(&buildStrict, "strict", false, "Exit with an error when any error diagnostic is reported")

	return cmd
}

func runBuild(cmd *cobra.Command, args []string) error {
	start := time.Now()
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

	buildID := uuid.NewString()
	log = log.With(zap.String("build_id", buildID))

	var result *compiler.Result
	compile := func() error {
		var err error
		result, err = compileProject(cmd.Context(), cfg, log)
		return err
	}
	if buildJSON {
		err = compile()
	} else {
		err = ui.WithSpinner(stderr, "Compiling "+cfg.Source.Format+" declarations", noColor, compile)
	}

	output := buildOutput
	if output == "" {
		output = cfg.Output.File
	}

	if buildJSON {
		return reportJSON(stdout, buildID, output, result, err)
	}

	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		fmt.Fprint(stderr, ui.LoadFailed(loadErr.Format, loadErr.Err, noColor))
		return reportedError{err}
	}
	if result != nil {
		ui.PrintDiagnostics(stderr, result.Diagnostics, ui.DiagnosticOptions{
			ShowInfo:   verbose,
			WithSource: true,
			NoSummary:  len(result.Diagnostics) == 0,
		})
	}
	if err != nil {
		if result == nil {
			return fmt.Errorf("build failed: %w", err)
		}
		return reportedError{fmt.Errorf("build failed: %w", err)}
	}

	if output != "" {
		if err := graph.WriteToFile(result.Graph, output); err != nil {
			return err
		}
	}

	printSummary(stdout, cfg, result, output)
	ui.WriteSuccess(stdout, fmt.Sprintf("Built graph in %s", time.Since(start).Round(time.Millisecond)), noColor)

	if buildStrict && result.HasErrors() {
		return fmt.Errorf("build reported %d error(s) in strict mode", result.Recovery().ErrorCount())
	}
	return nil
}

func printSummary(w io.Writer, cfg *config.Config, result *compiler.Result, output string) {
	g := result.Graph
	rec := result.Recovery()

	kv := ui.NewKeyValueTable(w, noColor)
	kv.AddRow("Source", cfg.Source.Format+" "+cfg.Source.Dir)
	kv.AddRow("Documents", strconv.Itoa(len(g.DocumentNodes())))
	kv.AddRow("Objects", strconv.Itoa(len(g.ObjectNodes())))
	kv.AddRow("Fields", strconv.Itoa(g.FieldCount()))
	kv.AddRow("Diagnostics", fmt.Sprintf("%d error(s), %d warning(s), %d note(s)",
		rec.ErrorCount(), rec.WarningCount(), rec.InfoCount()))
	if output != "" {
		kv.AddRow("Output", output)
	}
	kv.Render()
}

// reportJSON prints the build outcome as a buildReport. Load failures are
// reported as an E300 diagnostic.
func reportJSON(w io.Writer, buildID, output string, result *compiler.Result, buildErr error) error {
	report := buildReport{BuildID: buildID}

	var diags []cerrors.CompilerError
	if result != nil {
		diags = append(diags, result.Diagnostics...)
	}
	var loadErr *LoadError
	if errors.As(buildErr, &loadErr) {
		diags = append(diags, loadErr.Diagnostic())
	}

	if buildErr == nil && result != nil && result.Graph != nil {
		report.Graph = result.Graph.ToDocument()
		if output != "" {
			if err := graph.WriteToFile(result.Graph, output); err != nil {
				buildErr = err
			} else {
				report.Output = output
			}
		}
	}
	report.Success = buildErr == nil && (!buildStrict || result == nil || !result.HasErrors())
	report.Diagnostics = cerrors.NewJSONOutput(diags)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode build report: %w", err)
	}
	fmt.Fprintln(w, string(data))

	if buildErr != nil {
		if len(diags) == 0 {
			return buildErr
		}
		return reportedError{buildErr}
	}
	if !report.Success {
		return reportedError{fmt.Errorf("build reported errors in strict mode")}
	}
	return nil
}
