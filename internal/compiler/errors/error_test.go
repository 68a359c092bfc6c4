package errors

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/esgraph/internal/decl"
)

func init() {
	color.NoColor = true
}

func TestNewDerivesPhaseAndSeverity(t *testing.T) {
	tests := []struct {
		code     string
		phase    string
		severity Severity
	}{
		{WarnOverrideFallback, PhaseLink, Warning},
		{InfoDuplicateProperty, PhaseLink, Info},
		{WarnRootNameCollision, PhaseSkeleton, Warning},
		{ErrExtractionFailed, PhaseLink, Error},
		{ErrInvalidOverride, PhaseLink, Error},
		{ErrStructuralViolation, PhaseSkeleton, Error},
		{ErrAdapterLoad, PhaseLoad, Error},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			d := New(tt.code, "msg", SourceLocation{})
			assert.Equal(t, tt.phase, d.Phase)
			assert.Equal(t, tt.severity, d.Severity)
			assert.NotEqual(t, "Unknown error", GetErrorMessage(tt.code))
		})
	}

	assert.Equal(t, "unknown", GetPhaseForCode("X"))
	assert.Equal(t, "unknown", GetPhaseForCode("W203"))
	assert.Equal(t, "Unknown error", GetErrorMessage("E999"))
}

func TestCompilerErrorString(t *testing.T) {
	loc := LocationOf(decl.Position{File: "shop/order.go", Line: 12, Column: 2})
	d := Newf(WarnOverrideFallback, loc, "override %q is not an identifier", "full-name")

	assert.Equal(t, `shop/order.go:12:2: W001: override "full-name" is not an identifier`, d.Error())
	assert.True(t, d.IsWarning())
	assert.False(t, d.IsError())

	unknown := New(ErrStructuralViolation, "orphans", SourceLocation{})
	assert.Equal(t, "-: E200: orphans", unknown.Error())
	assert.True(t, unknown.IsError())
}

func TestSeverityJSON(t *testing.T) {
	for _, s := range []Severity{Info, Warning, Error, Fatal} {
		data, err := json.Marshal(s)
		require.NoError(t, err)

		var back Severity
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, s, back)
	}

	var s Severity
	require.NoError(t, json.Unmarshal([]byte(`"bogus"`), &s))
	assert.Equal(t, Error, s)
}

func TestCompilerErrorJSON(t *testing.T) {
	d := New(ErrExtractionFailed, "boom", SourceLocation{File: "a.go", Line: 3, Column: 1}).
		WithSubject("shop.Order.total")

	out, err := d.FormatAsJSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "E100", decoded["code"])
	assert.Equal(t, "error", decoded["severity"])
	assert.Equal(t, "link", decoded["phase"])
	assert.Equal(t, "shop.Order.total", decoded["subject"])
	assert.Equal(t, []any{}, decoded["related"])
}

func TestFormatErrorsAsJSON(t *testing.T) {
	diags := []CompilerError{
		New(WarnOverrideFallback, "w", SourceLocation{}),
		New(InfoDuplicateProperty, "i", SourceLocation{}),
		New(ErrExtractionFailed, "e", SourceLocation{}),
	}

	out, err := FormatErrorsAsJSON(diags)
	require.NoError(t, err)

	var decoded JSONOutput
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "error", decoded.Status)
	assert.Equal(t, Summary{ErrorCount: 1, WarningCount: 1, InfoCount: 1, TotalCount: 3}, decoded.Summary)

	compact, err := FormatErrorsAsJSONCompact(diags[:2])
	require.NoError(t, err)
	assert.Contains(t, compact, `"status":"warning"`)

	clean := NewJSONOutput(nil)
	assert.Equal(t, "success", clean.Status)
	assert.NotNil(t, clean.Errors)
}

func TestFormatForTerminal(t *testing.T) {
	d := New(WarnOverrideFallback, "override is not an identifier", SourceLocation{File: "order.go", Line: 2, Column: 3}).
		WithSubject("shop.Order.name").
		WithContext(ErrorContext{
			SourceLines: []string{"type Order struct {", `  Name string ` + "`" + `es:"type=text name=full-name"` + "`", "}"},
			Highlight:   Highlight{Line: 1, Start: 2, End: 6},
		}).
		WithSuggestion(FixSuggestion{Description: "rename", NewCode: "name=fullName", Confidence: 0.75}).
		WithRelated(New(InfoDuplicateProperty, "related note", SourceLocation{File: "order.go", Line: 9, Column: 1}))

	out := StripColors(d.FormatForTerminal())
	assert.Contains(t, out, "Warning[W001]: override is not an identifier")
	assert.Contains(t, out, "--> order.go:2:3")
	assert.Contains(t, out, "in shop.Order.name")
	assert.Contains(t, out, "^^^^")
	assert.Contains(t, out, "Help: rename")
	assert.Contains(t, out, "(Confidence: 75%)")
	assert.Contains(t, out, "1. order.go:9:1: related note")
}

func TestStripColors(t *testing.T) {
	assert.Equal(t, "plain", StripColors("\x1b[31;1mplain\x1b[0m"))
}

func TestFormatSummary(t *testing.T) {
	assert.Equal(t, "No diagnostics\n", StripColors(FormatSummary(0, 0, 0)))
	assert.Contains(t, StripColors(FormatSummary(2, 1, 0)), "Compilation failed with 2 error(s) and 1 warning(s)")
	assert.Contains(t, StripColors(FormatSummary(0, 1, 3)), "Compiled with 1 warning(s) and 3 note(s)")
}

func TestEnrichErrorFromFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "order.go")
	src := "package shop\n\ntype Order struct {\n\tName string `es:\"type=text name=full-name\"`\n}\n"
	require.NoError(t, os.WriteFile(file, []byte(src), 0o644))

	d := New(WarnOverrideFallback, "bad override", SourceLocation{File: file, Line: 4, Column: 2})
	enriched := EnrichErrorFromFile(d)

	require.NotEmpty(t, enriched.Context.SourceLines)
	assert.Equal(t, 3, enriched.Context.Highlight.Line)
	require.NotNil(t, enriched.Suggestion)
	assert.Contains(t, enriched.Suggestion.NewCode, "name=fullName")

	missing := New(WarnOverrideFallback, "bad override", SourceLocation{File: filepath.Join(dir, "nope.go"), Line: 1})
	assert.Empty(t, EnrichErrorFromFile(missing).Context.SourceLines)

	outOfRange := EnrichError(New(ErrExtractionFailed, "x", SourceLocation{Line: 99}), src)
	assert.Empty(t, outOfRange.Context.SourceLines)
	assert.Nil(t, outOfRange.Suggestion)
}
