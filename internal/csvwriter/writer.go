// =============================================================================
// HealthKit Export Converter - CSV Writer Module
// =============================================================================
//
// This module serializes a Record Table to comma-separated text.
//
// OUTPUT LAYOUT:
//   ,type,sourceName,unit,creationDate,startDate,endDate,value
//   0,StepCount,iPhone,count,2024-01-01 10:05:00-05:00,...,42
//   1,HKCategoryTypeIdentifierSleepAnalysis,Watch,,2024-01-01 23:00:00-05:00,...,
//
//   - The first column is the 0-based row index; its header is empty.
//   - The remaining columns follow the table's column order.
//   - Null cells are written as empty fields.
//   - Quoting follows encoding/csv (fields with commas, quotes or newlines
//     are quoted).
//
// =============================================================================

package csvwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/ginjaninja78/healthkit-to-csv/internal/table"
	"github.com/ginjaninja78/healthkit-to-csv/pkg/utils"
)

// =============================================================================
// WRITER FUNCTIONS
// =============================================================================

// WriteFile writes t to path atomically. If writing fails, no file is left
// at path.
func WriteFile(path string, t *table.Table) error {
	fm := utils.NewFileManager()

	err := fm.WriteAtomic(path, func(w io.Writer) error {
		return Write(w, t)
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// Write serializes t to w.
//
// PARAMETERS:
//   - w: The destination.
//   - t: The table to write.
//
// RETURNS:
//   - An error if any row cannot be written.
func Write(w io.Writer, t *table.Table) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(header(t)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for row := 0; row < t.Len(); row++ {
		cells := append([]string{strconv.Itoa(row)}, t.Row(row)...)
		if err := writer.Write(cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	return nil
}

// header builds the header row: an empty name for the index column, then
// the table columns.
func header(t *table.Table) []string {
	return append([]string{""}, t.Columns()...)
}
