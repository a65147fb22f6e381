package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/icd10-cli/internal/config"
	"github.com/salmonumbrella/icd10-cli/internal/markup"
	"github.com/salmonumbrella/icd10-cli/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage CLI configuration stored in ~/.config/icd10/config.yaml.

You can view, set, or unset config keys such as output_format, parser,
on_missing, and groups. Flags and environment variables take precedence
over the config file.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfigFromFlag()
		if err != nil {
			return formatConfigLoadError(err)
		}
		values := cfg.Values()
		if structuredOutputRequested() {
			return printStructured(values)
		}

		lines := []string{"Config:"}
		for _, key := range config.Keys() {
			value := values[key]
			if list, ok := value.([]string); ok {
				value = strings.Join(list, ",")
			}
			lines = append(lines, fmt.Sprintf("  %s: %v", key, value))
		}
		return printLines(stdoutFromContext(currentContext()), lines...)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Unset a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List supported configuration keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		keys := config.Keys()
		if structuredOutputRequested() {
			return printStructured(keys)
		}

		lines := []string{"Supported keys:"}
		for _, key := range keys {
			lines = append(lines, "  "+key)
		}
		return printLines(stdoutFromContext(currentContext()), lines...)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		if structuredOutputRequested() {
			return printStructured(map[string]string{"path": path})
		}
		return printLines(stdoutFromContext(currentContext()), path)
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd, configUnsetCmd, configKeysCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func configPath() (string, error) {
	if strings.TrimSpace(configFile) != "" {
		return configFile, nil
	}
	return config.DefaultConfigPath()
}

// configNormalizers validate a value and return its stored form.
var configNormalizers = map[string]func(string) (string, error){
	config.KeyOutputFormat: func(v string) (string, error) {
		format, err := output.ParseFormat(v)
		return string(format), err
	},
	config.KeyParser: func(v string) (string, error) {
		kind, err := markup.ParseKind(v)
		return string(kind), err
	},
	config.KeyOnMissing: parseOnMissing,
	config.KeyGroups: func(v string) (string, error) {
		return strings.Join(config.SplitList(v), ","), nil
	},
}

func applyConfigValue(cfg *config.Config, key, value string) error {
	normalize, ok := configNormalizers[key]
	if !ok {
		return ValidationError{Message: fmt.Sprintf("unknown config key: %s", key)}
	}
	normalized, err := normalize(value)
	if err != nil {
		var validationErr ValidationError
		if errors.As(err, &validationErr) {
			return err
		}
		return ValidationError{Message: err.Error()}
	}
	return cfg.Set(key, normalized)
}

func clearConfigValue(cfg *config.Config, key string) error {
	if err := cfg.Unset(key); err != nil {
		if errors.Is(err, config.ErrUnknownKey) {
			return ValidationError{Message: fmt.Sprintf("unknown config key: %s", key)}
		}
		return err
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := strings.ToLower(strings.TrimSpace(args[0]))
	value := strings.TrimSpace(args[1])

	err := updateConfig(func(cfg *config.Config) error {
		return applyConfigValue(cfg, key, value)
	})
	if err != nil {
		return err
	}

	if structuredOutputRequested() {
		return printStructured(map[string]string{"status": "updated", "key": key, "value": value})
	}
	return printLines(stdoutFromContext(currentContext()), "Updated "+key)
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	key := strings.ToLower(strings.TrimSpace(args[0]))

	err := updateConfig(func(cfg *config.Config) error {
		return clearConfigValue(cfg, key)
	})
	if err != nil {
		return err
	}

	if structuredOutputRequested() {
		return printStructured(map[string]string{"status": "unset", "key": key})
	}
	return printLines(stdoutFromContext(currentContext()), "Unset "+key)
}

// updateConfig loads the config file, applies change and saves it. Nothing
// is written when change fails.
func updateConfig(change func(*config.Config) error) error {
	cfg, err := loadConfigFromFlag()
	if err != nil {
		return formatConfigLoadError(err)
	}
	if err := change(cfg); err != nil {
		return err
	}

	path, err := configPath()
	if err != nil {
		return err
	}
	return cfg.Save(path)
}
