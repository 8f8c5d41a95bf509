// =============================================================================
// HealthKit Export Converter - XML Record Parser
// =============================================================================
//
// This module is responsible for reading an Apple HealthKit export
// (export.xml) and turning its <Record> elements into a Record Table.
//
// EXPECTED INPUT:
//   <HealthData locale="en_US">
//     <ExportDate value="2024-01-01 10:00:00 -0500"/>
//     <Me .../>
//     <Record type="HKQuantityTypeIdentifierStepCount"
//             sourceName="iPhone" unit="count" value="42"
//             creationDate="2024-01-01 10:05:00 -0500"
//             startDate="2024-01-01 10:00:00 -0500"
//             endDate="2024-01-01 10:05:00 -0500"
//             device="&lt;&lt;HKDevice: ...&gt;&gt;">
//       <MetadataEntry key="HKWasUserEntered" value="1"/>
//     </Record>
//     <Workout ...>...</Workout>
//   </HealthData>
//
// PARSING PROCESS:
//   1. Open the file (optionally wrapped in a byte progress bar)
//   2. Walk every token of the document; each <Record> start element,
//      at any depth, yields one record of its attributes
//   3. Assemble the table (schema-on-read, see package table)
//   4. Convert creationDate, startDate and endDate to datetime columns
//
// Children of a <Record> (MetadataEntry and friends) are not records and
// their attributes are not merged into the parent.
//
// =============================================================================

package xmlparser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/net/html/charset"

	"github.com/ginjaninja78/healthkit-to-csv/internal/table"
	"github.com/ginjaninja78/healthkit-to-csv/internal/types"
	"github.com/ginjaninja78/healthkit-to-csv/pkg/utils"
)

// RecordElement is the local name of the elements collected as records.
const RecordElement = "Record"

// =============================================================================
// PARSER OPTIONS
// =============================================================================

// Options contains options for parsing.
type Options struct {
	// Logger receives failure diagnostics. Nil means slog.Default().
	Logger *slog.Logger

	// ShowProgress draws a byte progress bar while the file is read.
	// Default: false
	ShowProgress bool

	// ProgressWriter is where the progress bar is drawn.
	// Default: os.Stderr
	ProgressWriter io.Writer
}

// =============================================================================
// PARSER
// =============================================================================

// Parser reads HealthKit exports into Record Tables.
type Parser struct {
	logger   *slog.Logger
	progress bool
	writer   io.Writer
}

// New creates a Parser with the given options.
func New(options Options) *Parser {
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.ProgressWriter == nil {
		options.ProgressWriter = os.Stderr
	}

	return &Parser{
		logger:   options.Logger,
		progress: options.ShowProgress,
		writer:   options.ProgressWriter,
	}
}

// ParseFile reads the export at path and returns its Record Table.
//
// PARAMETERS:
//   - path: The path to export.xml.
//
// RETURNS:
//   - The assembled table with datetime date columns.
//   - An error wrapping types.ErrParse if the file cannot be opened, is not
//     well-formed, or holds an unparseable date; types.ErrSchema if records
//     exist but a date column is missing entirely.
func (p *Parser) ParseFile(path string) (*table.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		err = fmt.Errorf("%w: failed to open %s: %v", types.ErrParse, path, err)
		p.logger.Error("Failed to parse XML data", "path", path, "error", err)
		return nil, err
	}
	defer file.Close()

	var reader io.Reader = file
	var bar *progressbar.ProgressBar

	if p.progress {
		bar = p.newProgressBar(path)
		reader = io.TeeReader(file, bar)
	}

	t, err := p.parse(reader)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		p.logger.Error("Failed to parse XML data", "path", path, "error", err)
		return nil, err
	}

	return t, nil
}

// Parse reads an export from r and returns its Record Table.
// Errors are the same as for ParseFile.
func (p *Parser) Parse(r io.Reader) (*table.Table, error) {
	t, err := p.parse(r)
	if err != nil {
		p.logger.Error("Failed to parse XML data", "error", err)
		return nil, err
	}
	return t, nil
}

// parse runs extraction, assembly and date conversion without logging.
func (p *Parser) parse(r io.Reader) (*table.Table, error) {
	records, err := ExtractRecords(r)
	if err != nil {
		return nil, err
	}

	t := table.Assemble(records)

	// A table without rows has no columns at all; there is nothing to convert.
	if t.Len() == 0 {
		return t, nil
	}

	for _, name := range types.DateAttributes {
		if err := t.ConvertDateTime(name); err != nil {
			return nil, fmt.Errorf("failed to convert date column: %w", err)
		}
	}

	return t, nil
}

// newProgressBar builds a byte progress bar sized to the file at path. When
// the size cannot be determined the bar falls back to a spinner.
func (p *Parser) newProgressBar(path string) *progressbar.ProgressBar {
	size, err := utils.GetFileSize(path)
	if err != nil {
		size = -1
	}

	return progressbar.NewOptions64(size,
		progressbar.OptionSetWriter(p.writer),
		progressbar.OptionSetDescription("Reading export"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

// =============================================================================
// RECORD EXTRACTION
// =============================================================================

// ExtractRecords walks an XML document and returns the attributes of every
// <Record> element in document order.
//
// PARAMETERS:
//   - r: The XML document.
//
// RETURNS:
//   - One Record per <Record> element.
//   - An error wrapping types.ErrParse if the document is not well-formed:
//     unbalanced tags, more than one top-level element, text outside the
//     top-level element, a repeated attribute, or no element at all.
//
// Documents declaring a non-UTF-8 encoding (ISO-8859-1, UTF-16, ...) are
// decoded through golang.org/x/net/html/charset.
func ExtractRecords(r io.Reader) ([]types.Record, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel

	var records []types.Record
	depth := 0
	sawRoot := false

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrParse, err)
		}

		switch tok := token.(type) {
		case xml.StartElement:
			if depth == 0 && sawRoot {
				return nil, fmt.Errorf("%w: junk after document element <%s>", types.ErrParse, tok.Name.Local)
			}
			sawRoot = true
			depth++

			if tok.Name.Local != RecordElement {
				continue
			}

			record, err := recordFromAttrs(tok.Attr)
			if err != nil {
				return nil, err
			}
			records = append(records, record)

		case xml.EndElement:
			depth--

		case xml.CharData:
			if depth == 0 && len(bytes.TrimSpace(tok)) > 0 {
				return nil, fmt.Errorf("%w: text outside the document element", types.ErrParse)
			}
		}
	}

	if !sawRoot {
		return nil, fmt.Errorf("%w: no element found", types.ErrParse)
	}

	return records, nil
}

// recordFromAttrs builds a Record from the attributes of one element. An
// attribute repeated on the same element is a well-formedness error.
func recordFromAttrs(attrs []xml.Attr) (types.Record, error) {
	record := make(types.Record, 0, len(attrs))
	seen := make(map[string]bool, len(attrs))

	for _, attr := range attrs {
		name := attrName(attr.Name)
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate attribute %q", types.ErrParse, name)
		}
		seen[name] = true
		record = append(record, types.Attr{Name: name, Value: attr.Value})
	}

	return record, nil
}

// attrName renders an attribute name. Namespaced attributes keep their
// namespace in braces so they never collide with plain ones.
func attrName(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return "{" + name.Space + "}" + name.Local
}
