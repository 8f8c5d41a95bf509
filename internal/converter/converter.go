// =============================================================================
// HealthKit Export Converter - Converter Module
// =============================================================================
//
// This module contains the pipeline orchestrator. It runs the whole
// conversion for one export, from XML parsing to the CSV file on disk.
//
// CONVERSION PIPELINE (strictly sequential):
//   1. Parse the XML export into a Record Table
//   2. Extract and log the Quantity and Category type names
//   3. Strip HKQuantityTypeIdentifier from Quantity rows of the type column
//   4. Drop the device column
//   5. Write the table as CSV (atomic; leading row-index column)
//
// FAILURE HANDLING:
//   Every failure is logged with the step it happened in and returned as a
//   *StepError wrapping the cause, so errors.Is(err, types.ErrParse) and
//   friends keep working. The output file only appears when step 5
//   completes.
//
// =============================================================================

package converter

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ginjaninja78/healthkit-to-csv/internal/config"
	"github.com/ginjaninja78/healthkit-to-csv/internal/csvwriter"
	"github.com/ginjaninja78/healthkit-to-csv/internal/recordtype"
	"github.com/ginjaninja78/healthkit-to-csv/internal/table"
	"github.com/ginjaninja78/healthkit-to-csv/internal/types"
	"github.com/ginjaninja78/healthkit-to-csv/internal/xmlparser"
)

// =============================================================================
// PIPELINE STEPS
// =============================================================================

// Step names used in logs and StepError.
const (
	StepParse   = "parse"
	StepExtract = "extract"
	StepClean   = "clean"
	StepDrop    = "drop"
	StepWrite   = "write"
)

// StepError reports which pipeline step failed.
type StepError struct {
	// Step is one of the Step* constants.
	Step string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("%s step failed: %v", e.Step, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StepError) Unwrap() error {
	return e.Err
}

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of a successful run.
type Result struct {
	// XMLPath is the export that was processed.
	XMLPath string

	// OutputFile is the path to the generated CSV file.
	OutputFile string

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// RowsProcessed is the number of records read from the export.
	RowsProcessed int

	// ColumnsWritten is the number of table columns in the output,
	// not counting the index column.
	ColumnsWritten int

	// QuantityRecords is the number of rows of the Quantity category.
	QuantityRecords int

	// CategoryRecords is the number of rows of the Category category.
	CategoryRecords int

	// RowsCleaned is the number of type values rewritten in step 3.
	RowsCleaned int

	// ProcessingTime is the time taken by the whole run.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Options configures a Converter.
type Options struct {
	// XMLPath is the HealthKit export to read.
	XMLPath string

	// OutputPath is where the CSV is written.
	OutputPath string

	// Logger is used for all pipeline logging. Nil means slog.Default().
	Logger *slog.Logger

	// ShowProgress draws a progress bar while the export is read.
	ShowProgress bool

	// NormalizeCategoryTypes also cleans Category rows in step 3.
	NormalizeCategoryTypes bool
}

// Converter runs the pipeline for a single export.
type Converter struct {
	options    Options
	logger     *slog.Logger
	parser     *xmlparser.Parser
	normalizer *recordtype.Normalizer
}

// =============================================================================
// CONSTRUCTORS
// =============================================================================

// New creates a new Converter instance.
func New(options Options) *Converter {
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	return &Converter{
		options: options,
		logger:  options.Logger,
		parser: xmlparser.New(xmlparser.Options{
			Logger:       options.Logger,
			ShowProgress: options.ShowProgress,
		}),
		normalizer: recordtype.New(options.Logger),
	}
}

// NewFromConfig creates a Converter for a validated configuration.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Converter {
	return New(Options{
		XMLPath:                cfg.ExportPath(),
		OutputPath:             cfg.OutputFile(),
		Logger:                 logger,
		ShowProgress:           cfg.ShowProgress,
		NormalizeCategoryTypes: cfg.NormalizeCategoryTypes,
	})
}

// Run processes the export at xmlPath and writes the CSV to outputPath.
// It is a shorthand for New(...).Run() with default options.
func Run(xmlPath, outputPath string) error {
	_, err := New(Options{XMLPath: xmlPath, OutputPath: outputPath}).Run()
	return err
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the conversion pipeline.
//
// RETURNS:
//   - A Result with the output path and statistics.
//   - A *StepError if any step fails. No output file is written in that case.
func (c *Converter) Run() (*Result, error) {
	startTime := time.Now()
	result := &Result{
		XMLPath:    c.options.XMLPath,
		OutputFile: c.options.OutputPath,
	}

	c.logger.Info("Processing health records", "xml_path", c.options.XMLPath)

	// =========================================================================
	// STEP 1: PARSE XML EXPORT
	// =========================================================================

	records, err := c.parser.ParseFile(c.options.XMLPath)
	if err != nil {
		return nil, c.fail(StepParse, err)
	}

	result.Stats.RowsProcessed = records.Len()
	c.logger.Debug("Parsed records", "rows", records.Len(), "columns", len(records.Columns()))

	// =========================================================================
	// STEP 2: EXTRACT AND LOG TYPE NAMES
	// =========================================================================
	// There are two kinds of records, QuantityTypes and CategoryTypes. Both
	// are logged, one entry per category.

	for _, category := range recordtype.Categories {
		names, err := c.normalizer.ExtractTypeNames(records, category)
		if err != nil {
			return nil, c.fail(StepExtract, err)
		}

		c.logger.Info(TypeListMessage(category, names))

		switch category {
		case recordtype.QuantityType:
			result.Stats.QuantityRecords = len(names)
		case recordtype.CategoryType:
			result.Stats.CategoryRecords = len(names)
		}
	}

	// =========================================================================
	// STEP 3: CLEAN RECORD TYPES
	// =========================================================================
	// Only Quantity types are cleaned by default; Category rows keep their
	// HKCategoryTypeIdentifier prefix unless NormalizeCategoryTypes is set.

	if _, err := c.normalizer.CleanTypes(records, recordtype.QuantityType); err != nil {
		return nil, c.fail(StepClean, err)
	}
	result.Stats.RowsCleaned = result.Stats.QuantityRecords

	if c.options.NormalizeCategoryTypes {
		if _, err := c.normalizer.CleanTypes(records, recordtype.CategoryType); err != nil {
			return nil, c.fail(StepClean, err)
		}
		result.Stats.RowsCleaned += result.Stats.CategoryRecords
	}

	// =========================================================================
	// STEP 4: DROP UNUSED COLUMNS
	// =========================================================================

	if err := dropColumns(records, types.AttrDevice); err != nil {
		return nil, c.fail(StepDrop, err)
	}

	// =========================================================================
	// STEP 5: WRITE OUTPUT FILE
	// =========================================================================

	if err := csvwriter.WriteFile(c.options.OutputPath, records); err != nil {
		return nil, c.fail(StepWrite, err)
	}

	// =========================================================================
	// COMPLETE
	// =========================================================================

	result.Stats.ColumnsWritten = len(records.Columns())
	result.Stats.ProcessingTime = time.Since(startTime)

	c.logger.Info("Data processing completed successfully",
		"output", c.options.OutputPath,
		"rows", result.Stats.RowsProcessed,
		"elapsed", result.Stats.ProcessingTime,
	)

	return result, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// fail logs a step failure and wraps it.
func (c *Converter) fail(step string, err error) error {
	c.logger.Error("An error occurred during processing", "step", step, "error", err)
	return &StepError{Step: step, Err: err}
}

// dropColumns removes each named column, failing on the first one missing.
func dropColumns(t *table.Table, names ...string) error {
	for _, name := range names {
		if err := t.DropColumn(name); err != nil {
			return err
		}
	}
	return nil
}

// TypeListMessage builds the log message listing the type names of one
// category:
//
//	Quantity Types:
//	StepCount
//	HeartRate
func TypeListMessage(category recordtype.Category, names []string) string {
	return category.String() + " Types:\n" + strings.Join(names, "\n") + "\n"
}
