package errors

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fatih/color"
)

var (
	boldColor   = color.New(color.Bold)
	cyanColor   = color.New(color.FgCyan)
	blueColor   = color.New(color.FgBlue)
	grayColor   = color.New(color.FgHiBlack)
	redColor    = color.New(color.FgRed)
	yellowColor = color.New(color.FgYellow)
)

// FormatForTerminal formats a diagnostic for terminal output
func (e CompilerError) FormatForTerminal() string {
	var sb strings.Builder

	header := severityColor(e.Severity).Sprintf("%s[%s]", capitalize(e.Severity.String()), e.Code)
	sb.WriteString(fmt.Sprintf("%s: %s\n", header, e.Message))
	sb.WriteString(fmt.Sprintf("  %s %s\n", cyanColor.Sprint("-->"), e.Location))
	if e.Subject != "" {
		sb.WriteString(fmt.Sprintf("  %s %s\n", cyanColor.Sprint("in"), e.Subject))
	}

	if len(e.Context.SourceLines) > 0 {
		sb.WriteString(formatSourceContext(e.Context))
	}

	if e.Suggestion != nil {
		sb.WriteString(formatSuggestion(*e.Suggestion))
	}

	if len(e.Related) > 0 {
		sb.WriteString(fmt.Sprintf("\n%s\n", boldColor.Sprint("Related:")))
		for i, related := range e.Related {
			sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, related.Location, related.Message))
		}
	}

	return sb.String()
}

func formatSourceContext(ctx ErrorContext) string {
	var sb strings.Builder
	bar := blueColor.Sprint("|")

	sb.WriteString(fmt.Sprintf("   %s\n", bar))
	for i, line := range ctx.SourceLines {
		lineNum := fmt.Sprintf("%2d", i+1)
		if i != ctx.Highlight.Line {
			sb.WriteString(fmt.Sprintf("%s %s %s\n", grayColor.Sprint(lineNum), bar, line))
			continue
		}

		sb.WriteString(fmt.Sprintf("%s %s %s\n", blueColor.Sprint(lineNum), bar, line))
		width := ctx.Highlight.End - ctx.Highlight.Start
		if width <= 0 {
			width = 1
		}
		sb.WriteString(fmt.Sprintf("   %s %s%s\n",
			bar,
			strings.Repeat(" ", max(0, ctx.Highlight.Start)),
			redColor.Sprint(strings.Repeat("^", width))))
	}
	sb.WriteString(fmt.Sprintf("   %s\n", bar))

	return sb.String()
}

func formatSuggestion(suggestion FixSuggestion) string {
	var sb strings.Builder
	help := color.New(color.Bold, color.FgCyan)

	sb.WriteString(fmt.Sprintf("\n%s %s\n", help.Sprint("Help:"), suggestion.Description))
	if suggestion.NewCode != "" {
		sb.WriteString(help.Sprint("Suggestion:") + "\n")
		for _, line := range strings.Split(suggestion.NewCode, "\n") {
			sb.WriteString(fmt.Sprintf("    %s\n", line))
		}
		if suggestion.Confidence < 1.0 {
			sb.WriteString(grayColor.Sprintf("(Confidence: %d%%)", int(suggestion.Confidence*100)) + "\n")
		}
	}

	return sb.String()
}

func severityColor(severity Severity) *color.Color {
	switch severity {
	case Info:
		return color.New(color.FgBlue, color.Bold)
	case Warning:
		return color.New(color.FgYellow, color.Bold)
	case Error:
		return color.New(color.FgRed, color.Bold)
	case Fatal:
		return color.New(color.FgRed, color.Bold, color.Underline)
	default:
		return color.New(color.Reset)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// FormatSummary formats a summary line of error, warning and info counts
func FormatSummary(errorCount, warningCount, infoCount int) string {
	var parts []string
	if errorCount > 0 {
		parts = append(parts, redColor.Sprintf("%d error(s)", errorCount))
	}
	if warningCount > 0 {
		parts = append(parts, yellowColor.Sprintf("%d warning(s)", warningCount))
	}
	if infoCount > 0 {
		parts = append(parts, blueColor.Sprintf("%d note(s)", infoCount))
	}

	if len(parts) == 0 {
		return blueColor.Sprint("No diagnostics") + "\n"
	}
	if errorCount > 0 {
		return "\n" + boldColor.Sprint("Compilation failed with ") + strings.Join(parts, " and ") + "\n"
	}
	return "\n" + boldColor.Sprint("Compiled with ") + strings.Join(parts, " and ") + "\n"
}

var ansiPattern = regexp.MustCompile("\x1b\\[[0-9;]*m")

// StripColors removes ANSI escape sequences from s
func StripColors(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}
