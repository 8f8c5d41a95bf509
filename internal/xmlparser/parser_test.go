package xmlparser

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/healthkit-to-csv/internal/table"
	"github.com/ginjaninja78/healthkit-to-csv/internal/types"
)

const sampleExport = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE HealthData [
<!ELEMENT HealthData (ExportDate,Me,(Record|Workout)*)>
]>
<HealthData locale="en_US">
 <ExportDate value="2024-01-02 08:00:00 -0500"/>
 <Me HKCharacteristicTypeIdentifierBiologicalSex="HKBiologicalSexNotSet"/>
 <Record type="HKQuantityTypeIdentifierStepCount" sourceName="iPhone" unit="count" creationDate="2024-01-01 10:05:00 -0500" startDate="2024-01-01 10:00:00 -0500" endDate="2024-01-01 10:05:00 -0500" value="42" device="&lt;&lt;HKDevice: 0x1&gt;&gt;">
  <MetadataEntry key="HKWasUserEntered" value="1"/>
 </Record>
 <Record type="HKCategoryTypeIdentifierSleepAnalysis" sourceName="Watch" creationDate="2024-01-02 07:00:00 -0500" startDate="2024-01-01 23:00:00 -0500" endDate="2024-01-02 06:30:00 -0500" value="HKCategoryValueSleepAnalysisAsleep"/>
 <Workout workoutActivityType="HKWorkoutActivityTypeRunning" duration="30"/>
</HealthData>
`

func newTestParser() *Parser {
	return New(Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
}

func TestExtractRecords(t *testing.T) {
	records, err := ExtractRecords(strings.NewReader(sampleExport))
	require.NoError(t, err)
	require.Len(t, records, 2)

	typ, ok := records[0].Get("type")
	require.True(t, ok)
	assert.Equal(t, "HKQuantityTypeIdentifierStepCount", typ)

	device, ok := records[0].Get("device")
	require.True(t, ok)
	assert.Equal(t, "<<HKDevice: 0x1>>", device)

	// MetadataEntry attributes are not merged into the parent record.
	_, ok = records[0].Get("key")
	assert.False(t, ok)

	assert.Equal(t, []string{"type", "sourceName", "unit", "creationDate", "startDate", "endDate", "value", "device"}, records[0].Names())
}

func TestExtractRecordsAtAnyDepth(t *testing.T) {
	doc := `<Root><Group><Record type="A"/></Group><Record type="B"/></Root>`

	records, err := ExtractRecords(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, records, 2)

	first, _ := records[0].Get("type")
	second, _ := records[1].Get("type")
	assert.Equal(t, "A", first)
	assert.Equal(t, "B", second)
}

func TestExtractRecordsErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "unclosed root", doc: `<HealthData><Record type="A"/>`},
		{name: "mismatched tags", doc: `<HealthData><Record type="A"></HealthData>`},
		{name: "empty document", doc: ``},
		{name: "only a declaration", doc: `<?xml version="1.0"?>`},
		{
			name: "second top-level element",
			doc:  `<HealthData/><HealthData><Record type="HKQuantityTypeIdentifierStepCount"/></HealthData>`,
		},
		{name: "text after the root", doc: `<HealthData><Record type="A"/></HealthData>trailing`},
		{name: "text before the root", doc: `leading<HealthData><Record type="A"/></HealthData>`},
		{name: "repeated attribute", doc: `<HealthData><Record type="A" type="B"/></HealthData>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractRecords(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrParse)
		})
	}
}

func TestExtractRecordsToleratesMisc(t *testing.T) {
	doc := "<?xml version=\"1.0\"?>\n<!-- export -->\n<HealthData><Record type=\"A\"/></HealthData>\n<!-- end -->\n\n"

	records, err := ExtractRecords(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestExtractRecordsDeclaredCharset(t *testing.T) {
	// "Caf\xe9" is ISO-8859-1 for "Café".
	doc := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>" +
		"<HealthData><Record type=\"A\" sourceName=\"Caf\xe9\"/></HealthData>"

	records, err := ExtractRecords(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, records, 1)

	source, ok := records[0].Get("sourceName")
	require.True(t, ok)
	assert.Equal(t, "Café", source)
}

func TestParse(t *testing.T) {
	tbl, err := newTestParser().Parse(strings.NewReader(sampleExport))
	require.NoError(t, err)

	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t,
		[]string{"type", "sourceName", "unit", "creationDate", "startDate", "endDate", "value", "device"},
		tbl.Columns(),
	)

	for _, name := range types.DateAttributes {
		col, ok := tbl.Column(name)
		require.True(t, ok, name)
		assert.Equal(t, table.DateTime, col.Kind, name)
	}

	start, _ := tbl.Column("startDate")
	assert.Equal(t, "2024-01-01 10:00:00-05:00", start.Value(0))

	// The second record has no unit and no device.
	unit, _ := tbl.Column("unit")
	assert.True(t, unit.IsNull(1))
	device, _ := tbl.Column("device")
	assert.True(t, device.IsNull(1))
}

func TestParseNoRecords(t *testing.T) {
	tbl, err := newTestParser().Parse(strings.NewReader(`<HealthData locale="en_US"/>`))
	require.NoError(t, err)

	assert.Equal(t, 0, tbl.Len())
	assert.Empty(t, tbl.Columns())
}

func TestParseBadDate(t *testing.T) {
	doc := `<HealthData>
  <Record type="HKQuantityTypeIdentifierStepCount" creationDate="yesterday" startDate="2024-01-01 10:00:00 -0500" endDate="2024-01-01 10:05:00 -0500"/>
</HealthData>`

	_, err := newTestParser().Parse(strings.NewReader(doc))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrParse)
}

func TestParseMissingDateColumn(t *testing.T) {
	doc := `<HealthData><Record type="HKQuantityTypeIdentifierStepCount" startDate="2024-01-01 10:00:00 -0500"/></HealthData>`

	_, err := newTestParser().Parse(strings.NewReader(doc))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrSchema)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.xml")
	require.NoError(t, os.WriteFile(path, []byte(sampleExport), 0644))

	tbl, err := newTestParser().ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())
}

func TestParseFileWithProgress(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.xml")
	require.NoError(t, os.WriteFile(path, []byte(sampleExport), 0644))

	var progress bytes.Buffer
	parser := New(Options{
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		ShowProgress:   true,
		ProgressWriter: &progress,
	})

	tbl, err := parser.ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())
}

func TestParseFileMissing(t *testing.T) {
	var logs bytes.Buffer
	parser := New(Options{Logger: slog.New(slog.NewTextHandler(&logs, nil))})

	_, err := parser.ParseFile(filepath.Join(t.TempDir(), "missing.xml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrParse)
	assert.Contains(t, logs.String(), "Failed to parse XML data")
}
