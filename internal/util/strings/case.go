package strings

import (
	"go/token"
	"strings"
	"unicode"
)

// ToSnakeCase converts CamelCase to snake_case
// Handles acronyms properly (HTTPRequest -> http_request)
func ToSnakeCase(s string) string {
	var result strings.Builder
	runes := []rune(s)

	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				if unicode.IsLower(prev) {
					result.WriteRune('_')
				} else if i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
					result.WriteRune('_')
				}
			}
			result.WriteRune(unicode.ToLower(r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// ToLowerCamel lowers the leading upper-case run of a Go identifier.
// Acronyms stay together: HomeAddress -> homeAddress, ID -> id, URLPath -> urlPath.
func ToLowerCamel(s string) string {
	runes := []rune(s)
	n := 0
	for n < len(runes) && unicode.IsUpper(runes[n]) {
		n++
	}
	switch {
	case n == 0:
		return s
	case n == 1 || n == len(runes):
		// single leading capital, or the whole word is upper case
	default:
		// keep the last capital of an acronym as the start of the next word
		if unicode.IsLower(runes[n]) {
			n--
		}
	}
	for i := 0; i < n; i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}

// ToPascalCase upper-cases the first rune: billing -> Billing, my_pkg -> MyPkg
func ToPascalCase(s string) string {
	var result strings.Builder
	upper := true
	for _, r := range s {
		if r == '_' || r == '-' || r == '.' || r == '/' {
			upper = true
			continue
		}
		if upper {
			result.WriteRune(unicode.ToUpper(r))
			upper = false
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// IsIdentifier reports whether s can be used as a generated Go identifier
func IsIdentifier(s string) bool {
	return token.IsIdentifier(s)
}

// SafeIdentifier turns a property name into a usable Go identifier. Invalid
// runes are dropped and the following rune is upper-cased, a leading digit
// gets a '_' prefix and keywords get a '_' suffix: full-name -> fullName,
// type -> type_.
func SafeIdentifier(s string) string {
	if token.IsIdentifier(s) {
		return s
	}
	if token.IsKeyword(s) {
		return s + "_"
	}

	var result strings.Builder
	upper := false
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			upper = result.Len() > 0
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		result.WriteRune(r)
	}

	out := result.String()
	switch {
	case out == "":
		return "_"
	case unicode.IsDigit([]rune(out)[0]):
		out = "_" + out
	}
	if token.IsKeyword(out) {
		out += "_"
	}
	return out
}
