package errors

import (
	"os"
	"strings"
)

// EnrichError adds source context and a fix suggestion to a diagnostic
func EnrichError(err CompilerError, sourceContent string) CompilerError {
	err = err.WithContext(extractSourceContext(err.Location, sourceContent))
	if suggestion := suggestFix(err); suggestion != nil {
		err = err.WithSuggestion(*suggestion)
	}
	return err
}

// extractSourceContext keeps up to 3 lines around the diagnostic line
func extractSourceContext(location SourceLocation, sourceContent string) ErrorContext {
	lines := strings.Split(sourceContent, "\n")
	if location.Line < 1 || location.Line > len(lines) {
		return ErrorContext{}
	}

	lineIndex := location.Line - 1
	startLine := max(0, lineIndex-3)
	endLine := min(len(lines), lineIndex+4)

	contextLines := make([]string, 0, endLine-startLine)
	contextLines = append(contextLines, lines[startLine:endLine]...)

	start := max(0, location.Column-1)
	end := start + location.Length
	if location.Length == 0 {
		end = start + 1
	}

	return ErrorContext{
		SourceLines: contextLines,
		Highlight: Highlight{
			Line:  lineIndex - startLine,
			Start: start,
			End:   end,
		},
	}
}

// EnrichErrorFromFile reads the diagnostic's file and enriches it. Unreadable
// files leave the diagnostic unchanged.
func EnrichErrorFromFile(err CompilerError) CompilerError {
	if err.Location.File == "" || len(err.Context.SourceLines) > 0 {
		return err
	}
	content, readErr := os.ReadFile(err.Location.File)
	if readErr != nil {
		return err
	}
	return EnrichError(err, string(content))
}
