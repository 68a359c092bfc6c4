package ui

import (
	"fmt"
	"io"

	cerrors "github.com/conduit-lang/esgraph/internal/compiler/errors"
)

// DiagnosticOptions filters and decorates printed diagnostics
type DiagnosticOptions struct {
	ShowInfo   bool // Print info diagnostics such as I002
	WithSource bool // Read source files to show the offending lines
	NoSummary  bool
	MaxPrinted int  // 0 prints everything
}

// PrintDiagnostics renders diagnostics for the terminal followed by a
// summary line. It returns the number printed.
func PrintDiagnostics(w io.Writer, diags []cerrors.CompilerError, opts DiagnosticOptions) int {
	rec := cerrors.NewErrorRecovery()
	rec.RecoverMultiple(diags)

	var visible []cerrors.CompilerError
	for _, d := range rec.GetAll() {
		if d.IsInfo() && !opts.ShowInfo {
			continue
		}
		visible = append(visible, d)
	}

	printed := 0
	for _, d := range visible {
		if opts.MaxPrinted > 0 && printed == opts.MaxPrinted {
			fmt.Fprintf(w, "... %d more diagnostic(s) not shown\n", len(visible)-printed)
			break
		}
		if opts.WithSource {
			d = cerrors.EnrichErrorFromFile(d)
		}
		fmt.Fprint(w, d.FormatForTerminal())
		printed++
	}

	if !opts.NoSummary {
		fmt.Fprint(w, cerrors.FormatSummary(rec.ErrorCount(), rec.WarningCount(), rec.InfoCount()))
	}
	return printed
}
