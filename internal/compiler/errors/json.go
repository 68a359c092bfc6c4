package errors

import (
	"encoding/json"
)

// JSONOutput represents the JSON structure for diagnostic output
type JSONOutput struct {
	Status   string          `json:"status"`
	Errors   []CompilerError `json:"errors"`
	Warnings []CompilerError `json:"warnings"`
	Notes    []CompilerError `json:"notes"`
	Summary  Summary         `json:"summary"`
}

// Summary contains diagnostic counts
type Summary struct {
	ErrorCount   int `json:"error_count"`
	WarningCount int `json:"warning_count"`
	InfoCount    int `json:"info_count"`
	TotalCount   int `json:"total_count"`
}

// FormatAsJSON formats a diagnostic as JSON
func (e CompilerError) FormatAsJSON() (string, error) {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// NewJSONOutput groups diagnostics by severity
func NewJSONOutput(diags []CompilerError) JSONOutput {
	out := JSONOutput{
		Errors:   []CompilerError{},
		Warnings: []CompilerError{},
		Notes:    []CompilerError{},
	}
	for _, d := range diags {
		switch {
		case d.IsError():
			out.Errors = append(out.Errors, d)
		case d.IsWarning():
			out.Warnings = append(out.Warnings, d)
		default:
			out.Notes = append(out.Notes, d)
		}
	}

	out.Status = "success"
	if len(out.Errors) > 0 {
		out.Status = "error"
	} else if len(out.Warnings) > 0 {
		out.Status = "warning"
	}
	out.Summary = Summary{
		ErrorCount:   len(out.Errors),
		WarningCount: len(out.Warnings),
		InfoCount:    len(out.Notes),
		TotalCount:   len(diags),
	}
	return out
}

// FormatErrorsAsJSON formats multiple diagnostics as indented JSON
func FormatErrorsAsJSON(diags []CompilerError) (string, error) {
	data, err := json.MarshalIndent(NewJSONOutput(diags), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FormatErrorsAsJSONCompact formats multiple diagnostics as compact JSON
func FormatErrorsAsJSONCompact(diags []CompilerError) (string, error) {
	data, err := json.Marshal(NewJSONOutput(diags))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
