package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/salmonumbrella/icd10-cli/internal/config"
	"github.com/salmonumbrella/icd10-cli/internal/output"
)

var (
	// Version is set at build time
	version = "dev"
	// Commit is set at build time
	commit = "none"
	// Date is set at build time
	date = "unknown"
)

// SetVersionInfo sets the version information from build flags
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = v
	rootCmd.SetVersionTemplate(versionTemplate())
}

// Global flags
var (
	outputFmt   string
	outputType  output.Format
	debug       bool
	logLevel    string
	configFile  string
	queryExpr   string
	queryFile   string
	errorFmt    string
	quietFlag   bool
	resultLimit int
	resultSort  string
	resultDesc  bool
)

// activeConfig is the config loaded for the running command.
var activeConfig *config.Config

var rootCmd = &cobra.Command{
	Use:   "icd10",
	Short: "Convert the ICD-10-CM tabular list",
	Long: `icd10 converts the ICD-10-CM tabular list (ICD10CM.tabular XML) into
nested chapter, section and diagnosis entries and prints them as YAML,
JSON, NDJSON, an indented outline or a table.

Environment Variables:
  ICD10_OUTPUT_FORMAT  Default output format
  ICD10_PARSER         Markup parser (xml|html)
  ICD10_ON_MISSING     Missing field policy (abort|skip)`,
	Version: version,
}

// prepareRun resolves config, output options and the logger, and stores
// them in the command context.
func prepareRun(cmd *cobra.Command, args []string) error {
	cmd.SilenceErrors = true

	activeConfig = nil
	if !isConfigCommand(cmd) {
		cfg, err := loadConfigFromFlag()
		if err != nil {
			return formatConfigLoadError(err)
		}
		activeConfig = cfg
	}

	format, err := output.ParseFormat(resolveOutputFormat(cmd, activeConfig))
	if err != nil {
		return err
	}
	outputType = format
	outputFmt = string(format)

	if err := resolveQuery(cmd); err != nil {
		return err
	}

	// Piped structured output stays free of notices unless --quiet is given.
	if !flagChanged(cmd, "quiet") && !isTerminal(cmd.OutOrStdout()) && output.IsStructured(outputType) {
		quietFlag = true
	}

	logger, err := newLogger(cmd.ErrOrStderr(), logLevel, debug)
	if err != nil {
		return err
	}

	ctx := withIO(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx = output.WithFormat(ctx, outputType)
	ctx = output.WithQuery(ctx, queryExpr)
	ctx = output.WithLimit(ctx, resultLimit)
	ctx = output.WithSort(ctx, resultSort, resultDesc)
	ctx = output.WithQuiet(ctx, quietFlag)
	ctx = WithErrorFormat(ctx, errorFmt)
	ctx = logger.WithContext(ctx)
	cmd.SetContext(ctx)
	// Execute reports errors through the root context.
	if cmd != rootCmd {
		rootCmd.SetContext(ctx)
	}

	if err := validateErrorFormat(errorFmt); err != nil {
		return err
	}
	if effectiveErrorFormat(ctx) != "text" {
		cmd.SilenceUsage = true
	}

	logger.Debug().
		Str("command", cmd.CommandPath()).
		Str("output", outputFmt).
		Bool("config_loaded", activeConfig != nil).
		Msg("starting")
	return nil
}

func isConfigCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c == configCmd {
			return true
		}
	}
	return false
}

// resolveQuery loads --query-file into the query expression.
func resolveQuery(cmd *cobra.Command) error {
	if queryExpr != "" && queryFile != "" {
		return ValidationError{Message: "use only one of --query or --query-file"}
	}
	if queryFile == "" {
		return nil
	}
	loaded, err := readInputSource(queryFile, cmd.InOrStdin())
	if err != nil {
		return err
	}
	queryExpr = loaded
	return nil
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		printCommandError(rootCmd.Context(), err)
		return err
	}
	return nil
}

// GetOutputFormat returns the configured output format
func GetOutputFormat() output.Format {
	if outputType != "" {
		return outputType
	}
	parsed, err := output.ParseFormat(outputFmt)
	if err != nil {
		return output.FormatYAML
	}
	return parsed
}

func versionTemplate() string {
	return fmt.Sprintf("icd10 version %s (commit: %s, built: %s)\n", version, commit, date)
}

func init() {
	rootCmd.PersistentPreRunE = prepareRun
	rootCmd.SetVersionTemplate(versionTemplate())

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "yaml", "Output format (yaml|json|ndjson|text|table) (env: ICD10_OUTPUT_FORMAT)")
	rootCmd.PersistentFlags().StringVar(&outputFmt, "format", "yaml", "Alias for --output")
	rootCmd.PersistentFlags().StringVar(&queryExpr, "query", "", "jq expression to filter structured output")
	rootCmd.PersistentFlags().StringVar(&queryFile, "query-file", "", "Read jq expression from file (use - for stdin)")
	rootCmd.PersistentFlags().StringVar(&errorFmt, "error-format", "auto", "Error output format (auto|text|json|yaml)")
	rootCmd.PersistentFlags().BoolVar(&quietFlag, "quiet", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().IntVar(&resultLimit, "result-limit", 0, "Limit number of top-level results in output (0 = unlimited)")
	rootCmd.PersistentFlags().StringVar(&resultSort, "result-sort-by", "", "Sort top-level results by field")
	rootCmd.PersistentFlags().BoolVar(&resultDesc, "result-desc", false, "Sort results in descending order")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug|info|warn|error); overrides --debug")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: ~/.config/icd10/config.yaml)")
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
