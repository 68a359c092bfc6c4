// Package errors defines the diagnostics produced while compiling a schema
// graph: phase, code, severity and source location, with terminal and JSON
// renderings.
package errors

import (
	"encoding/json"
	"fmt"

	"github.com/conduit-lang/esgraph/internal/decl"
)

// Severity represents the severity level of a diagnostic
type Severity int

const (
	Info Severity = iota
	Warning
	Error
	Fatal
)

// String returns the string representation of the severity
func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for Severity
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for Severity
func (s *Severity) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}

	switch str {
	case "info":
		*s = Info
	case "warning":
		*s = Warning
	case "error":
		*s = Error
	case "fatal":
		*s = Fatal
	default:
		*s = Error
	}
	return nil
}

// SourceLocation represents a location in source code
type SourceLocation struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Length int    `json:"length"`
}

// LocationOf converts a declaration position
func LocationOf(p decl.Position) SourceLocation {
	return SourceLocation{File: p.File, Line: p.Line, Column: p.Column}
}

// String returns file:line:col, or "-" when the file is unknown
func (l SourceLocation) String() string {
	if l.File == "" {
		return "-"
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// ErrorContext contains the source lines surrounding a diagnostic
type ErrorContext struct {
	SourceLines []string  `json:"source_lines"`
	Highlight   Highlight `json:"highlight"`
}

// Highlight specifies which part of the context to highlight
type Highlight struct {
	Line  int `json:"line"`  // Index into SourceLines
	Start int `json:"start"` // Column start
	End   int `json:"end"`   // Column end
}

// FixSuggestion represents an auto-fix suggestion
type FixSuggestion struct {
	Description string  `json:"description"`
	OldCode     string  `json:"old_code"`
	NewCode     string  `json:"new_code"`
	Confidence  float64 `json:"confidence"` // 0.0 to 1.0
}

// CompilerError is one diagnostic
type CompilerError struct {
	Phase      string         // PhaseLoad, PhaseSkeleton, PhaseLink
	Code       string         // "W001", "E200", etc.
	Message    string         // Human-readable message
	Location   SourceLocation // File, line, column
	Severity   Severity
	Subject    string // Class identity or class.property the diagnostic is about
	Context    ErrorContext
	Suggestion *FixSuggestion
	Related    []CompilerError
}

// Error implements the error interface
func (e CompilerError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Location, e.Code, e.Message)
}

// NewCompilerError creates a new CompilerError
func NewCompilerError(phase, code, message string, location SourceLocation, severity Severity) CompilerError {
	return CompilerError{
		Phase:    phase,
		Code:     code,
		Message:  message,
		Location: location,
		Severity: severity,
	}
}

// New creates a diagnostic whose phase and severity follow from its code
func New(code, message string, location SourceLocation) CompilerError {
	return NewCompilerError(GetPhaseForCode(code), code, message, location, GetSeverityForCode(code))
}

// Newf is New with a formatted message
func Newf(code string, location SourceLocation, format string, args ...any) CompilerError {
	return New(code, fmt.Sprintf(format, args...), location)
}

// WithSubject records what the diagnostic is about
func (e CompilerError) WithSubject(subject string) CompilerError {
	e.Subject = subject
	return e
}

// WithContext adds source context to the diagnostic
func (e CompilerError) WithContext(ctx ErrorContext) CompilerError {
	e.Context = ctx
	return e
}

// WithSuggestion adds a fix suggestion to the diagnostic
func (e CompilerError) WithSuggestion(suggestion FixSuggestion) CompilerError {
	e.Suggestion = &suggestion
	return e
}

// WithRelated adds a related diagnostic
func (e CompilerError) WithRelated(related CompilerError) CompilerError {
	e.Related = append(append([]CompilerError(nil), e.Related...), related)
	return e
}

// MarshalJSON implements json.Marshaler
func (e CompilerError) MarshalJSON() ([]byte, error) {
	related := e.Related
	if related == nil {
		related = []CompilerError{}
	}
	return json.Marshal(struct {
		Phase      string          `json:"phase"`
		Code       string          `json:"code"`
		Message    string          `json:"message"`
		Severity   Severity        `json:"severity"`
		Subject    string          `json:"subject,omitempty"`
		Location   SourceLocation  `json:"location"`
		Context    ErrorContext    `json:"context"`
		Suggestion *FixSuggestion  `json:"suggestion"`
		Related    []CompilerError `json:"related"`
	}{
		Phase:      e.Phase,
		Code:       e.Code,
		Message:    e.Message,
		Severity:   e.Severity,
		Subject:    e.Subject,
		Location:   e.Location,
		Context:    e.Context,
		Suggestion: e.Suggestion,
		Related:    related,
	})
}

// IsError returns true if the diagnostic is at Error or Fatal severity
func (e CompilerError) IsError() bool {
	return e.Severity == Error || e.Severity == Fatal
}

// IsWarning returns true if the diagnostic is at Warning severity
func (e CompilerError) IsWarning() bool {
	return e.Severity == Warning
}

// IsInfo returns true if the diagnostic is at Info severity
func (e CompilerError) IsInfo() bool {
	return e.Severity == Info
}

// IsFatal returns true if the diagnostic is at Fatal severity
func (e CompilerError) IsFatal() bool {
	return e.Severity == Fatal
}
