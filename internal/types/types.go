// =============================================================================
// HealthKit Export Converter - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - xmlparser
//   - table
//   - recordtype
//   - converter
//
// =============================================================================

package types

// =============================================================================
// RECORD TYPES
// =============================================================================

// Attr is a single XML attribute of a record.
type Attr struct {
	// Name is the attribute name, e.g. "type" or "startDate".
	Name string

	// Value is the raw attribute value.
	Value string
}

// Record represents a single <Record> element from a HealthKit export.
// Attributes are kept in document order so the column order of the output
// follows the export.
type Record []Attr

// Get returns the value of the named attribute.
func (r Record) Get(name string) (string, bool) {
	for _, a := range r {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Names returns the attribute names in document order.
func (r Record) Names() []string {
	names := make([]string, len(r))
	for i, a := range r {
		names[i] = a.Name
	}
	return names
}

// =============================================================================
// WELL-KNOWN ATTRIBUTES
// =============================================================================

// Attribute names the pipeline treats specially. Every other attribute
// (sourceName, unit, value, ...) is passed through as text.
const (
	// AttrType holds the vendor-prefixed type identifier,
	// e.g. "HKQuantityTypeIdentifierStepCount".
	AttrType = "type"

	// AttrDevice is the free-text device descriptor. It is dropped
	// from the final output.
	AttrDevice = "device"

	AttrCreationDate = "creationDate"
	AttrStartDate    = "startDate"
	AttrEndDate      = "endDate"
)

// DateAttributes lists the attributes converted to datetime values after
// the table is assembled.
var DateAttributes = []string{AttrCreationDate, AttrStartDate, AttrEndDate}
