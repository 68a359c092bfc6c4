package errors

// Phases
const (
	PhaseLoad     = "load"
	PhaseSkeleton = "skeleton"
	PhaseLink     = "link"
)

// Diagnostic codes. The letter gives the default severity: I info, W warning,
// E error.
const (
	WarnOverrideFallback  = "W001"
	InfoDuplicateProperty = "I002"
	WarnRootNameCollision = "W003"

	ErrExtractionFailed    = "E100"
	ErrInvalidOverride     = "E101"
	ErrStructuralViolation = "E200"
	ErrAdapterLoad         = "E300"
)

// ErrorMessages maps codes to their default messages
var ErrorMessages = map[string]string{
	WarnOverrideFallback:   "Invalid name override, falling back to property name",
	InfoDuplicateProperty:  "Duplicate property name, later declaration skipped",
	WarnRootNameCollision:  "Root generated name collision, name disambiguated",
	ErrExtractionFailed:    "Property could not be extracted",
	ErrInvalidOverride:     "Invalid name override",
	ErrStructuralViolation: "Classes could not be placed in the graph skeleton",
	ErrAdapterLoad:         "Declarations could not be loaded",
}

// codePhases maps every code to the pass that reports it
var codePhases = map[string]string{
	WarnOverrideFallback:   PhaseLink,
	InfoDuplicateProperty:  PhaseLink,
	WarnRootNameCollision:  PhaseSkeleton,
	ErrExtractionFailed:    PhaseLink,
	ErrInvalidOverride:     PhaseLink,
	ErrStructuralViolation: PhaseSkeleton,
	ErrAdapterLoad:         PhaseLoad,
}

// GetErrorMessage returns the default message for a code
func GetErrorMessage(code string) string {
	if msg, ok := ErrorMessages[code]; ok {
		return msg
	}
	return "Unknown error"
}

// GetPhaseForCode returns the phase a code belongs to
func GetPhaseForCode(code string) string {
	if phase, ok := codePhases[code]; ok {
		return phase
	}
	return "unknown"
}

// GetSeverityForCode returns the default severity of a code
func GetSeverityForCode(code string) Severity {
	if code == "" {
		return Error
	}
	switch code[0] {
	case 'I':
		return Info
	case 'W':
		return Warning
	default:
		return Error
	}
}
