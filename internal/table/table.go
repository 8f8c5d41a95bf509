// =============================================================================
// HealthKit Export Converter - Record Table
// =============================================================================
//
// This module holds the tabular representation of the parsed records. The
// table is built schema-on-read:
//   1. Scan every record once and collect the attribute names in order of
//      first appearance. This becomes the fixed column set.
//   2. Allocate one column per name and fill it row by row. Attributes a
//      record does not carry become null cells.
//
// COLUMN KINDS:
//   - Text:     the default; raw attribute strings
//   - DateTime: produced by ConvertDateTime for the date attributes
//
// ERRORS:
//   Operations that need a column the table does not have return an error
//   wrapping types.ErrSchema. Date conversion failures wrap types.ErrParse.
//
// =============================================================================

package table

import (
	"fmt"

	"github.com/ginjaninja78/healthkit-to-csv/internal/datetime"
	"github.com/ginjaninja78/healthkit-to-csv/internal/types"
)

// =============================================================================
// COLUMN
// =============================================================================

// Kind identifies how a column stores its cells.
type Kind int

const (
	// Text columns store raw strings.
	Text Kind = iota

	// DateTime columns store parsed datetime values.
	DateTime
)

// String returns the kind name used in log and error messages.
func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case DateTime:
		return "datetime"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Column is a single named column of the table.
type Column struct {
	// Name is the attribute name this column was built from.
	Name string

	// Kind tells which of the value slices below is populated.
	Kind Kind

	// text holds the values of a Text column.
	text []string

	// present marks which text cells came from an actual attribute.
	// A false entry is a null cell.
	present []bool

	// times holds the values of a DateTime column.
	times []datetime.Value
}

// Value returns the cell at row formatted for output. Null cells are "".
func (c *Column) Value(row int) string {
	if c.Kind == DateTime {
		return c.times[row].String()
	}
	if !c.present[row] {
		return ""
	}
	return c.text[row]
}

// IsNull reports whether the cell at row holds no value.
func (c *Column) IsNull(row int) bool {
	if c.Kind == DateTime {
		return !c.times[row].Valid
	}
	return !c.present[row]
}

// =============================================================================
// TABLE
// =============================================================================

// Table is an ordered collection of records with a fixed column set.
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// Assemble builds a table from records, preserving their order.
//
// PARAMETERS:
//   - records: The flat attribute maps, in document order.
//
// RETURNS:
//   - A table with one row per record and one Text column per distinct
//     attribute name, ordered by first appearance.
func Assemble(records []types.Record) *Table {
	names := Schema(records)

	t := &Table{
		columns: make([]*Column, len(names)),
		index:   make(map[string]int, len(names)),
		rows:    len(records),
	}

	for i, name := range names {
		t.columns[i] = &Column{
			Name:    name,
			Kind:    Text,
			text:    make([]string, len(records)),
			present: make([]bool, len(records)),
		}
		t.index[name] = i
	}

	for row, record := range records {
		for _, attr := range record {
			col := t.columns[t.index[attr.Name]]
			col.text[row] = attr.Value
			col.present[row] = true
		}
	}

	return t
}

// Schema returns the ordered column set for records: every attribute name,
// in the order it is first seen.
func Schema(records []types.Record) []string {
	seen := make(map[string]bool)
	var names []string

	for _, record := range records {
		for _, name := range record.Names() {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}

	return names
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return t.rows
}

// Columns returns the column names in table order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Column looks up a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// Text returns a copy of a Text column's values. Null cells are "".
func (t *Table) Text(name string) ([]string, error) {
	col, err := t.textColumn(name)
	if err != nil {
		return nil, err
	}

	values := make([]string, t.rows)
	for row := range values {
		values[row] = col.Value(row)
	}
	return values, nil
}

// Present returns which cells of a Text column hold a value.
func (t *Table) Present(name string) ([]bool, error) {
	col, err := t.textColumn(name)
	if err != nil {
		return nil, err
	}

	present := make([]bool, t.rows)
	copy(present, col.present)
	return present, nil
}

// SetText overwrites one cell of a Text column.
func (t *Table) SetText(name string, row int, value string) error {
	col, err := t.textColumn(name)
	if err != nil {
		return err
	}
	if row < 0 || row >= t.rows {
		return fmt.Errorf("row %d out of range [0,%d)", row, t.rows)
	}

	col.text[row] = value
	col.present[row] = true
	return nil
}

// ConvertDateTime parses every cell of a Text column and turns it into a
// DateTime column. The column is only replaced when every cell parses, so a
// failure leaves the table unchanged.
func (t *Table) ConvertDateTime(name string) error {
	col, err := t.textColumn(name)
	if err != nil {
		return err
	}

	values, err := datetime.ParseAll(col.text)
	if err != nil {
		return fmt.Errorf("%w: column %s: %v", types.ErrParse, name, err)
	}

	col.Kind = DateTime
	col.times = values
	col.text = nil
	col.present = nil
	return nil
}

// DropColumn removes a column from the table.
func (t *Table) DropColumn(name string) error {
	i, ok := t.index[name]
	if !ok {
		return fmt.Errorf("%w: column %q not found", types.ErrSchema, name)
	}

	t.columns = append(t.columns[:i], t.columns[i+1:]...)
	delete(t.index, name)
	for j := i; j < len(t.columns); j++ {
		t.index[t.columns[j].Name] = j
	}
	return nil
}

// Row returns the formatted cells of one row, in column order.
func (t *Table) Row(row int) []string {
	cells := make([]string, len(t.columns))
	for i, c := range t.columns {
		cells[i] = c.Value(row)
	}
	return cells
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// textColumn looks up a column and checks that it is a Text column.
func (t *Table) textColumn(name string) (*Column, error) {
	col, ok := t.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w: column %q not found", types.ErrSchema, name)
	}
	if col.Kind != Text {
		return nil, fmt.Errorf("%w: column %q is %s, not text", types.ErrSchema, name, col.Kind)
	}
	return col, nil
}
