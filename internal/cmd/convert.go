package cmd

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/salmonumbrella/icd10-cli/internal/catalog"
	"github.com/salmonumbrella/icd10-cli/internal/output"
	"github.com/salmonumbrella/icd10-cli/internal/pipeline"
)

// Conversion flags, shared by convert and stats.
var (
	convertParser    string
	convertOnMissing string
	convertSearch    string
	convertGroups    []string
	convertOut       string
)

var convertCmd = &cobra.Command{
	Use:   "convert [source]",
	Short: "Convert a tabular XML file to nested entries",
	Long: `Convert an ICD-10-CM tabular XML file into nested chapter, section and
diagnosis entries.

The source is a file path or - for stdin. When no source is given and
stdin is piped, stdin is read.

Each chapter and diagnosis needs <name> and <desc> children and each
section an id attribute and a <desc> child. By default a missing field
aborts the conversion; with --on-missing skip the offending entry is
dropped with a warning and the rest is converted.`,
	Example: `  icd10 convert icd10cm_tabular_2023.xml
  icd10 convert icd10cm_tabular_2023.xml -o json -O icd10.json
  cat icd10cm_tabular_2023.xml | icd10 convert --search "cholera !paratyphoid"
  icd10 convert tabular.xml --group qof --group cprd`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	addLoadFlags(convertCmd)
	convertCmd.Flags().StringArrayVar(&convertGroups, "group", nil, "Group to list in the top-level groups key (repeatable, comma separated)")
	convertCmd.Flags().StringVarP(&convertOut, "out", "O", "", "Write output to a file instead of stdout")

	rootCmd.AddCommand(convertCmd)
}

func addLoadFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&convertParser, "parser", "xml", "Markup parser (xml|html) (env: ICD10_PARSER)")
	cmd.Flags().StringVar(&convertOnMissing, "on-missing", onMissingAbort, "Missing field policy (abort|skip) (env: ICD10_ON_MISSING)")
	cmd.Flags().StringVar(&convertSearch, "search", "", "Keep entries matching these terms; prefix a term with ! to drop matches")
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	opts, err := resolveSettings(cmd, activeConfig)
	if err != nil {
		return err
	}

	doc, skipped, err := loadDocument(ctx, args, opts)
	if err != nil {
		return err
	}

	var data interface{} = doc
	if len(opts.Groups) > 0 {
		data = doc.WithGroups(opts.Groups)
	}
	if GetOutputFormat() == output.FormatTable {
		data = output.Table{Headers: catalog.RowHeaders, Rows: doc.Rows()}
	}

	err = pipeline.WriteTo(convertOut, stdoutFromContext(ctx), func(w io.Writer) error {
		return output.NewPrinter(w, GetOutputFormat()).Print(ctx, data)
	})
	if err != nil {
		return err
	}

	if skipped > 0 {
		printNotice(ctx, "Skipped %d entries with missing fields", skipped)
	}
	if convertOut != "" && convertOut != pipeline.Stdin {
		printNotice(ctx, "Wrote %d chapters to %s", len(doc), convertOut)
	}
	return nil
}

// loadDocument resolves the source and runs the conversion pipeline. It
// returns the number of entries dropped by the skip policy.
func loadDocument(ctx context.Context, args []string, opts settings) (catalog.Document, int, error) {
	source, err := resolveSource(ctx, args)
	if err != nil {
		return nil, 0, err
	}

	logger := zerolog.Ctx(ctx)
	skipped := 0
	var transformerOpts []catalog.Option
	if opts.OnMissing == onMissingSkip {
		transformerOpts = append(transformerOpts, catalog.WithSkip(func(missing catalog.MissingFieldError) bool {
			skipped++
			logger.Warn().
				Str("kind", string(missing.Kind)).
				Str("field", missing.Field).
				Strs("path", missing.Location()).
				Msg("skipping entry with missing field")
			return true
		}))
	}

	p := pipeline.Pipeline{
		Parser:      opts.Parser,
		Transformer: catalog.New(transformerOpts...),
		Terms:       catalog.ParseSearchTerms(convertSearch),
		Logger:      *logger,
	}
	doc, err := p.Load(ctx, source, stdinFromContext(ctx))
	if err != nil {
		return nil, skipped, err
	}
	return doc, skipped, nil
}

func resolveSource(ctx context.Context, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if stdinIsPiped(stdinFromContext(ctx)) {
		return pipeline.Stdin, nil
	}
	return "", ValidationError{Message: "source required: pass a file path or - for stdin"}
}
