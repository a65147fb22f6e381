package cmd

import (
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats [source]",
	Short: "Count chapters, sections and diagnoses",
	Long: `Count the chapters, sections and diagnoses of a tabular XML file.

Text output prints the totals; table output lists every chapter.`,
	Example: `  icd10 stats icd10cm_tabular_2023.xml
  icd10 stats icd10cm_tabular_2023.xml -o table --result-sort-by diagnoses --result-desc`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

func init() {
	addLoadFlags(statsCmd)
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	opts, err := resolveSettings(cmd, activeConfig)
	if err != nil {
		return err
	}

	doc, skipped, err := loadDocument(ctx, args, opts)
	if err != nil {
		return err
	}

	if err := printStructured(doc.Stats()); err != nil {
		return err
	}
	if skipped > 0 {
		printNotice(ctx, "Skipped %d entries with missing fields", skipped)
	}
	return nil
}
