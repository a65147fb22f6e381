package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/icd10-cli/internal/config"
	"github.com/salmonumbrella/icd10-cli/internal/markup"
)

// Missing field policies.
const (
	onMissingAbort = "abort"
	onMissingSkip  = "skip"
)

// Environment overrides.
const (
	envOutputFormat = "ICD10_OUTPUT_FORMAT"
	envParser       = "ICD10_PARSER"
	envOnMissing    = "ICD10_ON_MISSING"
)

// loadConfigFromFlag loads config from --config if provided, otherwise from default path.
func loadConfigFromFlag() (*config.Config, error) {
	if strings.TrimSpace(configFile) != "" {
		return config.Load(configFile)
	}
	return config.ReadConfig()
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil {
		return false
	}
	if cmd.Flags().Changed(name) {
		return true
	}
	return cmd.InheritedFlags().Changed(name)
}

// resolveOutputFormat picks the output format with precedence:
// --output/--format > env > config > flag default.
func resolveOutputFormat(cmd *cobra.Command, cfg *config.Config) string {
	if flagChanged(cmd, "output") || flagChanged(cmd, "format") {
		return outputFmt
	}
	if v := strings.TrimSpace(envGet(envOutputFormat)); v != "" {
		return v
	}
	if cfg != nil && strings.TrimSpace(cfg.OutputFormat) != "" {
		return strings.TrimSpace(cfg.OutputFormat)
	}
	return outputFmt
}

// settings are the conversion options after flags, env and config are merged.
type settings struct {
	Parser    markup.Kind
	OnMissing string
	Groups    []string
}

// resolveSettings merges conversion options with precedence:
// flags > env > config > defaults.
func resolveSettings(cmd *cobra.Command, cfg *config.Config) (settings, error) {
	if cfg == nil {
		cfg = &config.Config{}
	}

	parserName := pick(cmd, "parser", convertParser, envParser, cfg.Parser)
	kind, err := markup.ParseKind(parserName)
	if err != nil {
		return settings{}, ValidationError{Message: err.Error()}
	}

	onMissing, err := parseOnMissing(pick(cmd, "on-missing", convertOnMissing, envOnMissing, cfg.OnMissing))
	if err != nil {
		return settings{}, err
	}

	groups := cfg.Groups
	if flagChanged(cmd, "group") {
		groups = nil
		for _, g := range convertGroups {
			groups = append(groups, config.SplitList(g)...)
		}
	}

	return settings{Parser: kind, OnMissing: onMissing, Groups: groups}, nil
}

// pick returns the flag value when set, then the env var, then the config
// value, then the flag value as the default.
func pick(cmd *cobra.Command, flag, flagValue, env, cfgValue string) string {
	if flagChanged(cmd, flag) {
		return flagValue
	}
	if v := strings.TrimSpace(envGet(env)); v != "" {
		return v
	}
	if v := strings.TrimSpace(cfgValue); v != "" {
		return v
	}
	return flagValue
}

func parseOnMissing(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", onMissingAbort:
		return onMissingAbort, nil
	case onMissingSkip:
		return onMissingSkip, nil
	default:
		return "", ValidationError{Message: fmt.Sprintf("invalid --on-missing %q (expected abort|skip)", s)}
	}
}

func formatConfigLoadError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("load config: %w", err)
}
