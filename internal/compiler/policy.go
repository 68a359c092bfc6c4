package compiler

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/esgraph/internal/decl"
)

// OverridePolicy decides what happens to a name override that is not a valid
// identifier.
type OverridePolicy int

const (
	// OverrideFallback keeps the override as the index name and falls back to
	// the property name for the generated name, with a warning.
	OverrideFallback OverridePolicy = iota
	// OverrideStrict drops the field with an error diagnostic.
	OverrideStrict
)

// String returns the configuration spelling of the policy
func (p OverridePolicy) String() string {
	if p == OverrideStrict {
		return "strict"
	}
	return "fallback"
}

// ParseOverridePolicy parses "fallback" or "strict"; "" means fallback
func ParseOverridePolicy(s string) (OverridePolicy, error) {
	switch strings.ToLower(s) {
	case "", "fallback":
		return OverrideFallback, nil
	case "strict":
		return OverrideStrict, nil
	default:
		return OverrideFallback, fmt.Errorf("unknown override policy %q (expected fallback or strict)", s)
	}
}

// DuplicatePolicy decides which of two properties resolving to the same
// generated name is kept.
type DuplicatePolicy int

const (
	// FirstWins keeps the first registered property. Fields register before
	// getters, so a field shadows a getter of the same name.
	FirstWins DuplicatePolicy = iota
	// LastWins replaces the earlier property in place.
	LastWins
)

// String returns the configuration spelling of the policy
func (p DuplicatePolicy) String() string {
	if p == LastWins {
		return "last"
	}
	return "first"
}

// ParseDuplicatePolicy parses "first" or "last"; "" means first
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(s) {
	case "", "first":
		return FirstWins, nil
	case "last":
		return LastWins, nil
	default:
		return FirstWins, fmt.Errorf("unknown duplicate policy %q (expected first or last)", s)
	}
}

// Policy groups the configurable rules of a compilation
type Policy struct {
	// IncludeUnexported admits private classes reached through fields even
	// when they did not opt in.
	IncludeUnexported bool
	Overrides         OverridePolicy
	Duplicates        DuplicatePolicy
}

// DefaultPolicy returns the default rules
func DefaultPolicy() Policy {
	return Policy{Overrides: OverrideFallback, Duplicates: FirstWins}
}

func (p Policy) admits(c decl.Class) bool {
	return c.Visibility == decl.Public || c.OptIn || p.IncludeUnexported
}
