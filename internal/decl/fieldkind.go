package decl

import "fmt"

// FieldKind is the storage field-kind code carried by a property annotation.
// The compiler never maps Go types to kinds itself; the kind always comes from
// the declaration.
type FieldKind int

const (
	// KindAuto leaves the mapping to the index (dynamic mapping)
	KindAuto FieldKind = iota

	// Text types
	KindText
	KindKeyword
	KindWildcard
	KindMatchOnlyText
	KindSearchAsYouType
	KindCompletion

	// Numeric types
	KindLong
	KindInteger
	KindShort
	KindByte
	KindDouble
	KindFloat
	KindHalfFloat
	KindScaledFloat
	KindUnsignedLong

	// Date types
	KindDate
	KindDateNanos

	// Range types
	KindIntegerRange
	KindLongRange
	KindFloatRange
	KindDoubleRange
	KindDateRange
	KindIPRange

	// Misc
	KindBoolean
	KindBinary
	KindIP
	KindGeoPoint
	KindGeoShape
	KindFlattened
	KindDenseVector
	KindRankFeature
	KindRankFeatures

	// Containers
	KindObject
	KindNested
)

var fieldKindNames = map[FieldKind]string{
	KindAuto:            "auto",
	KindText:            "text",
	KindKeyword:         "keyword",
	KindWildcard:        "wildcard",
	KindMatchOnlyText:   "match_only_text",
	KindSearchAsYouType: "search_as_you_type",
	KindCompletion:      "completion",
	KindLong:            "long",
	KindInteger:         "integer",
	KindShort:           "short",
	KindByte:            "byte",
	KindDouble:          "double",
	KindFloat:           "float",
	KindHalfFloat:       "half_float",
	KindScaledFloat:     "scaled_float",
	KindUnsignedLong:    "unsigned_long",
	KindDate:            "date",
	KindDateNanos:       "date_nanos",
	KindIntegerRange:    "integer_range",
	KindLongRange:       "long_range",
	KindFloatRange:      "float_range",
	KindDoubleRange:     "double_range",
	KindDateRange:       "date_range",
	KindIPRange:         "ip_range",
	KindBoolean:         "boolean",
	KindBinary:          "binary",
	KindIP:              "ip",
	KindGeoPoint:        "geo_point",
	KindGeoShape:        "geo_shape",
	KindFlattened:       "flattened",
	KindDenseVector:     "dense_vector",
	KindRankFeature:     "rank_feature",
	KindRankFeatures:    "rank_features",
	KindObject:          "object",
	KindNested:          "nested",
}

var fieldKindsByName = func() map[string]FieldKind {
	m := make(map[string]FieldKind, len(fieldKindNames))
	for k, name := range fieldKindNames {
		m[name] = k
	}
	return m
}()

// String returns the storage name of the field kind
func (k FieldKind) String() string {
	if name, ok := fieldKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseFieldKind converts a storage name ("keyword", "nested", ...) to a FieldKind.
// The empty string parses as KindAuto.
func ParseFieldKind(s string) (FieldKind, error) {
	if s == "" {
		return KindAuto, nil
	}
	if k, ok := fieldKindsByName[s]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("unknown field kind: %s", s)
}

// IsContainer reports whether the kind embeds another class (object or nested).
func (k FieldKind) IsContainer() bool {
	return k == KindObject || k == KindNested
}

// IsNested reports whether the kind is a nested container
func (k FieldKind) IsNested() bool {
	return k == KindNested
}

// MarshalText implements encoding.TextMarshaler
func (k FieldKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *FieldKind) UnmarshalText(data []byte) error {
	parsed, err := ParseFieldKind(string(data))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
