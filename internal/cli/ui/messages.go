package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Level is the severity of a message
type Level int

const (
	LevelError Level = iota
	LevelWarning
	LevelInfo
)

// MessageOptions configures a formatted message
type MessageOptions struct {
	Level        Level
	Context      string
	Problem      string
	Consequence  string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

func colors(level Level, noColor bool) (header, body *color.Color, symbol string) {
	switch level {
	case LevelWarning:
		header, body, symbol = color.New(color.FgYellow, color.Bold), color.New(color.FgYellow), "!"
	case LevelInfo:
		header, body, symbol = color.New(color.FgCyan, color.Bold), color.New(color.FgCyan), "i"
	default:
		header, body, symbol = color.New(color.FgRed, color.Bold), color.New(color.FgRed), "✗"
	}
	if noColor {
		header.DisableColor()
		body.DisableColor()
	}
	return header, body, symbol
}

// FormatMessage renders a message with optional suggestions and help commands:
//
//	✗ CLASS NOT FOUND: shop.Ordr
//	   No document or object class shop.Ordr in the graph.
//
//	   Did you mean: shop.Order?
//
//	   → List documents: esgraph inspect
func FormatMessage(opts MessageOptions) string {
	var b strings.Builder
	header, body, symbol := colors(opts.Level, opts.NoColor)

	if opts.Context != "" {
		header.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(opts.Context), opts.Problem)
	} else {
		header.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	if opts.Consequence != "" {
		body.Fprintf(&b, "   %s\n", opts.Consequence)
	}

	if len(opts.Suggestions) > 0 {
		yellow := color.New(color.FgYellow)
		if opts.NoColor {
			yellow.DisableColor()
		}
		b.WriteString("\n")
		yellow.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		cyan := color.New(color.FgCyan)
		if opts.NoColor {
			cyan.DisableColor()
		}
		b.WriteString("\n")
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}
	return b.String()
}

// WriteMessage writes a formatted message
func WriteMessage(w io.Writer, opts MessageOptions) {
	fmt.Fprint(w, FormatMessage(opts))
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}

// WriteSuccess writes a success line
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// ClassNotFound reports an unknown class identity
func ClassNotFound(identity string, suggestions []string, noColor bool) string {
	return FormatMessage(MessageOptions{
		Level:       LevelError,
		Context:     "class not found",
		Problem:     identity,
		Consequence: fmt.Sprintf("No document or object class %s in the graph.", identity),
		Suggestions: suggestions,
		HelpCommands: []string{
			"List documents: esgraph inspect",
			"Get help: esgraph inspect --help",
		},
		NoColor: noColor,
	})
}

// LoadFailed reports declarations that could not be loaded
func LoadFailed(format string, err error, noColor bool) string {
	return FormatMessage(MessageOptions{
		Level:       LevelError,
		Context:     "load failed",
		Problem:     fmt.Sprintf("could not read %s declarations", format),
		Consequence: err.Error(),
		HelpCommands: []string{
			"Check source.dir and source.patterns in esgraph.yml",
			"Get help: esgraph build --help",
		},
		NoColor: noColor,
	})
}

// ConfigInvalid reports a configuration problem
func ConfigInvalid(err error, noColor bool) string {
	return FormatMessage(MessageOptions{
		Level:   LevelError,
		Context: "configuration error",
		Problem: err.Error(),
		HelpCommands: []string{
			"Recreate the file: esgraph init",
			"Get help: esgraph --help",
		},
		NoColor: noColor,
	})
}
