package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/healthkit-to-csv/internal/recordtype"
	"github.com/ginjaninja78/healthkit-to-csv/internal/table"
	"github.com/ginjaninja78/healthkit-to-csv/internal/xmlparser"
)

// category restricts the types command to one category.
var category string

// typesCmd represents the 'types' command.
var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the record types found in the export",
	Long: `The types command parses the export and prints the distinct record type
names of each category, without writing any output file.

  hkconvert types                      # Quantity and Category types
  hkconvert types --category Quantity  # Quantity types only`,

	Args: cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runTypes(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(typesCmd)

	typesCmd.Flags().StringVar(
		&category,
		"category",
		"",
		`Only list one category: "Quantity" or "Category"`,
	)
}

// runTypes prints the distinct type names per category.
func runTypes(out io.Writer) error {
	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}

	normalizer := recordtype.New(logger)

	categories := recordtype.Categories
	if category != "" {
		c, err := normalizer.ParseCategory(category)
		if err != nil {
			return err
		}
		categories = []recordtype.Category{c}
	}

	parser := xmlparser.New(xmlparser.Options{
		Logger:       logger,
		ShowProgress: cfg.ShowProgress,
	})

	records, err := parser.ParseFile(cfg.ExportPath())
	if err != nil {
		return err
	}

	return printTypes(out, normalizer, records, categories)
}

// printTypes writes one block per category:
//
//	Quantity Types (2):
//	  StepCount
//	  HeartRate
func printTypes(out io.Writer, normalizer *recordtype.Normalizer, records *table.Table, categories []recordtype.Category) error {
	for _, c := range categories {
		names, err := normalizer.ExtractTypeNames(records, c)
		if err != nil {
			return err
		}

		unique := recordtype.Distinct(names)
		fmt.Fprintf(out, "%s Types (%d):\n", c, len(unique))
		for _, name := range unique {
			fmt.Fprintf(out, "  %s\n", name)
		}
	}
	return nil
}
