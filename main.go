// =============================================================================
// HealthKit Export Converter - Main Entry Point
// =============================================================================
//
// This is the main entry point for the HealthKit Export Converter CLI. It
// initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   hkconvert process   - Convert $DATA/apple_health_export/export.xml to CSV
//   hkconvert types     - List the Quantity and Category types in the export
//   hkconvert version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : Contains all CLI command definitions (Cobra)
//   - internal/      : Contains the pipeline (parse, normalize, write)
//   - pkg/           : Contains shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/healthkit-to-csv/cmd"
)

// main is the entry point of the application.
func main() {
	cmd.Execute()
}
