// =============================================================================
// HealthKit Export Converter - Process Command
// =============================================================================
//
// This file defines the 'process' command, which is the main command for
// converting a HealthKit export to CSV. It runs the conversion pipeline.
//
// COMMAND USAGE:
//   hkconvert process
//
// INPUT / OUTPUT:
//   Input:  $DATA/apple_health_export/export.xml
//   Output: $DATA/apple_health_export/health_records.csv
//           (or output_path from the configuration file)
//
// PROCESSING PIPELINE:
//   1. Load configuration and set up logging
//   2. Parse the export into a Record Table
//   3. Log the Quantity and Category type names
//   4. Clean the Quantity type identifiers
//   5. Drop the device column
//   6. Write the CSV
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/healthkit-to-csv/internal/converter"
)

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Convert the HealthKit export to CSV",
	Long: `The process command reads $DATA/apple_health_export/export.xml, converts
every Record element into a CSV row and writes the result next to the export.

Cleaning applied:
  - HKQuantityTypeIdentifier is stripped from Quantity record types
  - Category record types keep their HKCategoryTypeIdentifier prefix
    (set normalize_category_types in the configuration file to strip it too)
  - The device column is dropped

On error nothing is written and the command exits with a non-zero status.`,

	Args: cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the process command with the root command.
func init() {
	rootCmd.AddCommand(processCmd)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess loads the runtime configuration and runs the converter.
func runProcess(cmd *cobra.Command) error {
	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}

	result, err := converter.NewFromConfig(cfg, logger).Run()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== Processing Complete ===")
	fmt.Fprintf(out, "Input:            %s\n", result.XMLPath)
	fmt.Fprintf(out, "Output:           %s\n", result.OutputFile)
	fmt.Fprintf(out, "Records:          %d\n", result.Stats.RowsProcessed)
	fmt.Fprintf(out, "Quantity records: %d\n", result.Stats.QuantityRecords)
	fmt.Fprintf(out, "Category records: %d\n", result.Stats.CategoryRecords)
	fmt.Fprintf(out, "Time elapsed:     %s\n", result.Stats.ProcessingTime)

	return nil
}
