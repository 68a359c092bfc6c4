package errors

import (
	"fmt"
	"strings"
)

// MaxErrors is the default number of errors kept before further errors are
// dropped. Warnings and notes are never dropped.
const MaxErrors = 100

// ErrorRecovery collects diagnostics in the order they are reported
type ErrorRecovery struct {
	all       []CompilerError
	errCount  int
	truncated int
	maxCount  int
}

// NewErrorRecovery creates a new ErrorRecovery instance
func NewErrorRecovery() *ErrorRecovery {
	return NewErrorRecoveryWithMax(MaxErrors)
}

// NewErrorRecoveryWithMax creates a new ErrorRecovery with a custom error limit
func NewErrorRecoveryWithMax(maxCount int) *ErrorRecovery {
	return &ErrorRecovery{maxCount: maxCount}
}

// Recover records a diagnostic
func (r *ErrorRecovery) Recover(err CompilerError) {
	if err.IsError() {
		if r.errCount >= r.maxCount {
			r.truncated++
			return
		}
		r.errCount++
	}
	r.all = append(r.all, err)
}

// RecoverMultiple records several diagnostics
func (r *ErrorRecovery) RecoverMultiple(errs []CompilerError) {
	for _, err := range errs {
		r.Recover(err)
	}
}

// HasErrors returns true if any Error or Fatal diagnostic was recorded
func (r *ErrorRecovery) HasErrors() bool {
	return r.errCount > 0
}

// HasWarnings returns true if any warning was recorded
func (r *ErrorRecovery) HasWarnings() bool {
	return r.WarningCount() > 0
}

// HasFatals returns true if any fatal diagnostic was recorded
func (r *ErrorRecovery) HasFatals() bool {
	return r.FirstFatal() != nil
}

// ErrorCount returns the number of recorded errors
func (r *ErrorRecovery) ErrorCount() int {
	return r.errCount
}

// WarningCount returns the number of warnings
func (r *ErrorRecovery) WarningCount() int {
	return len(r.GetErrorsBySeverity(Warning))
}

// InfoCount returns the number of notes
func (r *ErrorRecovery) InfoCount() int {
	return len(r.GetErrorsBySeverity(Info))
}

// TotalCount returns the number of recorded diagnostics
func (r *ErrorRecovery) TotalCount() int {
	return len(r.all)
}

// Truncated returns how many errors were dropped past the limit
func (r *ErrorRecovery) Truncated() int {
	return r.truncated
}

// GetAll returns every diagnostic in report order
func (r *ErrorRecovery) GetAll() []CompilerError {
	return append([]CompilerError(nil), r.all...)
}

// GetErrors returns Error and Fatal diagnostics
func (r *ErrorRecovery) GetErrors() []CompilerError {
	return r.filter(func(e CompilerError) bool { return e.IsError() })
}

// GetWarnings returns warnings and notes
func (r *ErrorRecovery) GetWarnings() []CompilerError {
	return r.filter(func(e CompilerError) bool { return !e.IsError() })
}

// GetErrorsByPhase returns diagnostics of one phase
func (r *ErrorRecovery) GetErrorsByPhase(phase string) []CompilerError {
	return r.filter(func(e CompilerError) bool { return e.Phase == phase })
}

// GetErrorsByCode returns diagnostics with a specific code
func (r *ErrorRecovery) GetErrorsByCode(code string) []CompilerError {
	return r.filter(func(e CompilerError) bool { return e.Code == code })
}

// GetErrorsBySeverity returns diagnostics with a specific severity
func (r *ErrorRecovery) GetErrorsBySeverity(severity Severity) []CompilerError {
	return r.filter(func(e CompilerError) bool { return e.Severity == severity })
}

func (r *ErrorRecovery) filter(keep func(CompilerError) bool) []CompilerError {
	var out []CompilerError
	for _, e := range r.all {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// Clear resets the collection
func (r *ErrorRecovery) Clear() {
	r.all = nil
	r.errCount = 0
	r.truncated = 0
}

// FirstError returns the first error, or nil if there are none
func (r *ErrorRecovery) FirstError() *CompilerError {
	for i := range r.all {
		if r.all[i].IsError() {
			return &r.all[i]
		}
	}
	return nil
}

// FirstFatal returns the first fatal diagnostic, or nil if there are none
func (r *ErrorRecovery) FirstFatal() *CompilerError {
	for i := range r.all {
		if r.all[i].IsFatal() {
			return &r.all[i]
		}
	}
	return nil
}

// FormatForTerminal formats every diagnostic followed by a summary
func (r *ErrorRecovery) FormatForTerminal() string {
	var sb strings.Builder
	for i, err := range r.all {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(err.FormatForTerminal())
	}

	if r.TotalCount() > 0 {
		sb.WriteString(FormatSummary(r.errCount, r.WarningCount(), r.InfoCount()))
	}
	if r.truncated > 0 {
		sb.WriteString(yellowColor.Sprintf("\nNote: error limit reached (%d), %d more not shown\n", r.maxCount, r.truncated))
	}
	return sb.String()
}

// FormatAsJSON formats every diagnostic as JSON
func (r *ErrorRecovery) FormatAsJSON() (string, error) {
	return FormatErrorsAsJSON(r.all)
}

// Error implements the error interface
func (r *ErrorRecovery) Error() string {
	if len(r.all) == 0 {
		return "no diagnostics"
	}
	if len(r.all) == 1 {
		return r.all[0].Error()
	}
	return r.Summary()
}

// Summary returns a human-readable summary
func (r *ErrorRecovery) Summary() string {
	if len(r.all) == 0 {
		return "No diagnostics"
	}

	var parts []string
	if r.errCount > 0 {
		parts = append(parts, fmt.Sprintf("%d error(s)", r.errCount))
	}
	if n := r.WarningCount(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d warning(s)", n))
	}
	if n := r.InfoCount(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d note(s)", n))
	}
	return "Found " + strings.Join(parts, " and ")
}
