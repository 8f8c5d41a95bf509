// =============================================================================
// HealthKit Export Converter - Record Type Classifier and Normalizer
// =============================================================================
//
// HealthKit type identifiers carry a vendor prefix that names their category:
//
//   HKQuantityTypeIdentifierStepCount      -> category Quantity, name StepCount
//   HKCategoryTypeIdentifierSleepAnalysis  -> category Category, name SleepAnalysis
//
// This module classifies the rows of a Record Table by that prefix and
// strips it from the type column.
//
// OPERATIONS:
//   - Filter:           type values of one category, prefix still attached
//   - ExtractTypeNames: same values with the prefix stripped
//   - CleanTypes:       writes the stripped values back into the table,
//                       for the rows of that category only
//
// All three reject a category outside {Quantity, Category} with
// types.ErrInvalidArgument before looking at the table.
//
// =============================================================================

package recordtype

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ginjaninja78/healthkit-to-csv/internal/table"
	"github.com/ginjaninja78/healthkit-to-csv/internal/types"
)

// =============================================================================
// CATEGORY
// =============================================================================

// Category selects one of the two HealthKit record categories.
type Category int

const (
	// QuantityType selects HKQuantityTypeIdentifier* types (StepCount, HeartRate, ...).
	QuantityType Category = iota + 1

	// CategoryType selects HKCategoryTypeIdentifier* types (SleepAnalysis, ...).
	CategoryType
)

// Categories lists every valid category in pipeline order.
var Categories = []Category{QuantityType, CategoryType}

// ParseCategory converts a selector string into a Category. Only the exact
// literals "Quantity" and "Category" are accepted.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "Quantity":
		return QuantityType, nil
	case "Category":
		return CategoryType, nil
	default:
		return 0, fmt.Errorf(`%w: unknown type of record %q, choose "Quantity" or "Category"`, types.ErrInvalidArgument, s)
	}
}

// String returns the selector literal for c.
func (c Category) String() string {
	switch c {
	case QuantityType:
		return "Quantity"
	case CategoryType:
		return "Category"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// Valid reports whether c is QuantityType or CategoryType.
func (c Category) Valid() bool {
	return c == QuantityType || c == CategoryType
}

// Prefix returns the identifier prefix of c, e.g. "HKQuantityTypeIdentifier".
func (c Category) Prefix() string {
	return "HK" + c.String() + "TypeIdentifier"
}

// =============================================================================
// NORMALIZER
// =============================================================================

// Normalizer classifies and rewrites the type column of Record Tables.
type Normalizer struct {
	logger *slog.Logger
}

// New creates a Normalizer. A nil logger means slog.Default().
func New(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger}
}

// ParseCategory is ParseCategory with the rejection logged.
func (n *Normalizer) ParseCategory(s string) (Category, error) {
	c, err := ParseCategory(s)
	if err != nil {
		n.logger.Error("Invalid type_of_record provided", "type_of_record", s)
		return 0, err
	}
	return c, nil
}

// Filter returns the type values of the rows that belong to category, in
// row order and unmodified.
//
// PARAMETERS:
//   - t: The Record Table. It is not modified.
//   - category: The category to select.
//
// RETURNS:
//   - The matching type values, prefix still attached.
//   - types.ErrInvalidArgument for an invalid category, types.ErrSchema if
//     the table has rows but no type column.
func (n *Normalizer) Filter(t *table.Table, category Category) ([]string, error) {
	matches, err := n.selectRows(t, category)
	if err != nil {
		return nil, err
	}

	values := make([]string, len(matches))
	for i, m := range matches {
		values[i] = m.value
	}
	return values, nil
}

// ExtractTypeNames returns the short type names of the rows that belong to
// category, in row order. Duplicates are kept.
func (n *Normalizer) ExtractTypeNames(t *table.Table, category Category) ([]string, error) {
	matches, err := n.selectRows(t, category)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = strip(m.value, category)
	}
	return names, nil
}

// CleanTypes strips the category prefix from the type column, in place, for
// the rows that belong to category. Rows of any other category keep their
// value. Running it again with the same category changes nothing.
//
// RETURNS:
//   - t itself, after the rewrite.
//   - The same errors as Filter. On error t is not modified.
func (n *Normalizer) CleanTypes(t *table.Table, category Category) (*table.Table, error) {
	matches, err := n.selectRows(t, category)
	if err != nil {
		return nil, err
	}

	for _, m := range matches {
		if err := t.SetText(types.AttrType, m.row, strip(m.value, category)); err != nil {
			return nil, fmt.Errorf("failed to clean row %d: %w", m.row, err)
		}
	}

	n.logger.Debug("Cleaned record types", "category", category.String(), "rows", len(matches))
	return t, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// match is one row selected by a category filter.
type match struct {
	row   int
	value string
}

// selectRows validates category and selects the rows whose type contains its
// prefix. Rows with no type value never match.
func (n *Normalizer) selectRows(t *table.Table, category Category) ([]match, error) {
	if !category.Valid() {
		n.logger.Error("Invalid type_of_record provided", "type_of_record", category.String())
		return nil, fmt.Errorf(`%w: unknown type of record %s, choose "Quantity" or "Category"`, types.ErrInvalidArgument, category)
	}

	// An empty table has no columns; it simply has nothing to match.
	if t.Len() == 0 {
		return nil, nil
	}

	values, err := t.Text(types.AttrType)
	if err != nil {
		n.logger.Error("Failed to read record types", "category", category.String(), "error", err)
		return nil, err
	}
	present, err := t.Present(types.AttrType)
	if err != nil {
		return nil, err
	}

	prefix := category.Prefix()
	var matches []match
	for row, value := range values {
		if present[row] && strings.Contains(value, prefix) {
			matches = append(matches, match{row: row, value: value})
		}
	}
	return matches, nil
}

// strip removes every occurrence of the category prefix from value.
func strip(value string, category Category) string {
	return strings.ReplaceAll(value, category.Prefix(), "")
}

// Distinct returns names with duplicates removed, keeping first occurrences
// in order.
func Distinct(names []string) []string {
	seen := make(map[string]bool, len(names))
	var unique []string

	for _, name := range names {
		if !seen[name] {
			seen[name] = true
			unique = append(unique, name)
		}
	}

	return unique
}
