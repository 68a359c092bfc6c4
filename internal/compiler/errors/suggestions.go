package errors

import (
	"fmt"
	"strings"

	strutil "github.com/conduit-lang/esgraph/internal/util/strings"
)

// suggestFix generates a fix suggestion based on the diagnostic code
func suggestFix(err CompilerError) *FixSuggestion {
	switch err.Code {
	case WarnOverrideFallback, ErrInvalidOverride:
		return suggestValidOverride(err)
	case InfoDuplicateProperty:
		return suggestRenameDuplicate(err)
	default:
		return nil
	}
}

// suggestValidOverride rewrites the name= directive on the highlighted line
// into a valid identifier.
func suggestValidOverride(err CompilerError) *FixSuggestion {
	line, ok := highlightedLine(err.Context)
	if !ok {
		return nil
	}

	start := strings.Index(line, "name=")
	if start < 0 {
		return nil
	}
	value := line[start+len("name="):]
	if end := strings.IndexAny(value, " \"`"); end >= 0 {
		value = value[:end]
	}
	if value == "" {
		return nil
	}

	fixed := strutil.ToLowerCamel(strutil.ToPascalCase(value))
	if !strutil.IsIdentifier(fixed) {
		return nil
	}
	return &FixSuggestion{
		Description: fmt.Sprintf("Use a valid identifier such as %q as the override", fixed),
		OldCode:     strings.TrimSpace(line),
		NewCode:     strings.TrimSpace(strings.Replace(line, "name="+value, "name="+fixed, 1)),
		Confidence:  0.6,
	}
}

func suggestRenameDuplicate(err CompilerError) *FixSuggestion {
	return &FixSuggestion{
		Description: "Give one of the properties a distinct name= override",
		Confidence:  0.5,
	}
}

func highlightedLine(ctx ErrorContext) (string, bool) {
	if ctx.Highlight.Line < 0 || ctx.Highlight.Line >= len(ctx.SourceLines) {
		return "", false
	}
	return ctx.SourceLines[ctx.Highlight.Line], true
}
