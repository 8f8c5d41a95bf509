// =============================================================================
// HealthKit Export Converter - Date/Time Coercion
// =============================================================================
//
// This module converts the date strings found in HealthKit exports into
// structured time values and formats them back for CSV output.
//
// INPUT FORMATS:
//   HealthKit writes dates as "2019-01-01 10:00:00 -0500". Other common
//   layouts (RFC 3339, naive timestamps, bare dates) are accepted as well so
//   that hand-edited or third-party exports still convert.
//
// OUTPUT FORMAT:
//   Zoned values:  "2019-01-01 10:00:00-05:00"
//   Naive values:  "2019-01-01 10:00:00"
//   Null values:   "" (empty field)
//
// =============================================================================

package datetime

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// LAYOUTS
// =============================================================================

// zonedLayouts carry an explicit UTC offset.
var zonedLayouts = []string{
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05 -07:00",
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05.999999999 -0700",
	time.RFC3339Nano,
	time.RFC3339,
}

// naiveLayouts have no offset; values parsed with them are kept in UTC and
// written back without an offset.
var naiveLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

const (
	zonedOutputLayout = "2006-01-02 15:04:05.999999999-07:00"
	naiveOutputLayout = "2006-01-02 15:04:05.999999999"
)

// =============================================================================
// VALUE
// =============================================================================

// Value is a parsed datetime cell. The zero Value is null.
type Value struct {
	// Time is the parsed instant. Meaningless when Valid is false.
	Time time.Time

	// Zoned is true when the source string carried a UTC offset.
	Zoned bool

	// Valid is false for null cells (empty source value).
	Valid bool
}

// String formats the value for CSV output. Null values format as "".
func (v Value) String() string {
	if !v.Valid {
		return ""
	}
	if v.Zoned {
		return v.Time.Format(zonedOutputLayout)
	}
	return v.Time.Format(naiveOutputLayout)
}

// =============================================================================
// PARSING
// =============================================================================

// Parse converts a single date string into a Value.
//
// PARAMETERS:
//   - s: The raw attribute value.
//
// RETURNS:
//   - The parsed Value. Empty or whitespace-only input yields a null Value.
//   - An error if s is non-empty and matches none of the supported layouts.
func Parse(s string) (Value, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Value{}, nil
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Value{Time: t, Zoned: true, Valid: true}, nil
		}
	}

	for _, layout := range naiveLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Value{Time: t, Valid: true}, nil
		}
	}

	return Value{}, fmt.Errorf("value '%s' is not a valid date", s)
}

// ParseAll converts a column of date strings. It stops at the first value
// that cannot be parsed and reports its row.
func ParseAll(values []string) ([]Value, error) {
	out := make([]Value, len(values))
	for i, s := range values {
		v, err := Parse(s)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
