package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/healthkit-to-csv/internal/types"
)

const testExport = `<?xml version="1.0" encoding="UTF-8"?>
<HealthData locale="en_US">
 <Record type="HKQuantityTypeIdentifierStepCount" sourceName="iPhone" creationDate="2024-01-01 10:05:00 -0500" startDate="2024-01-01 10:00:00 -0500" endDate="2024-01-01 10:05:00 -0500" value="42" device="iPhone"/>
 <Record type="HKQuantityTypeIdentifierStepCount" sourceName="iPhone" creationDate="2024-01-01 11:05:00 -0500" startDate="2024-01-01 11:00:00 -0500" endDate="2024-01-01 11:05:00 -0500" value="17" device="iPhone"/>
 <Record type="HKCategoryTypeIdentifierSleepAnalysis" sourceName="Watch" creationDate="2024-01-02 07:00:00 -0500" startDate="2024-01-01 23:00:00 -0500" endDate="2024-01-02 06:30:00 -0500" value="1" device="Watch"/>
</HealthData>
`

// setupDataDir points DATA at a fresh directory holding testExport.
func setupDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	exportDir := filepath.Join(dir, "apple_health_export")
	require.NoError(t, os.MkdirAll(exportDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(exportDir, "export.xml"), []byte(testExport), 0644))
	t.Setenv("DATA", dir)
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		category = ""
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestProcessCommand(t *testing.T) {
	dir := setupDataDir(t)

	out, err := execute(t, "process")
	require.NoError(t, err)

	assert.Contains(t, out, "=== Processing Complete ===")
	assert.Contains(t, out, "Records:          3")

	data, err := os.ReadFile(filepath.Join(dir, "apple_health_export", "health_records.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "0,StepCount,iPhone")
	assert.NotContains(t, string(data), "device")
}

func TestTypesCommand(t *testing.T) {
	setupDataDir(t)

	out, err := execute(t, "types")
	require.NoError(t, err)
	assert.Equal(t, "Quantity Types (1):\n  StepCount\nCategory Types (1):\n  SleepAnalysis\n", out)
}

func TestTypesCommandSingleCategory(t *testing.T) {
	setupDataDir(t)

	out, err := execute(t, "types", "--category", "Category")
	require.NoError(t, err)
	assert.Equal(t, "Category Types (1):\n  SleepAnalysis\n", out)
}

func TestTypesCommandInvalidCategory(t *testing.T) {
	setupDataDir(t)

	_, err := execute(t, "types", "--category", "Workout")
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestMissingDataDir(t *testing.T) {
	t.Setenv("DATA", "")

	_, err := execute(t, "process")
	assert.ErrorIs(t, err, types.ErrMissingConfig)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, versionLine()+"\n", out)
	assert.Contains(t, out, "hkconvert "+Version+" (built "+BuildDate)
}
