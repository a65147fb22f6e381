// Package config persists CLI defaults in a YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppName is the application name used for the config directory
const AppName = "icd10"

// Config keys accepted by Set and Unset.
const (
	KeyOutputFormat = "output_format"
	KeyParser       = "parser"
	KeyOnMissing    = "on_missing"
	KeyGroups       = "groups"
)

// ErrUnknownKey is returned for keys Config does not hold.
var ErrUnknownKey = errors.New("unknown config key")

// Config holds CLI defaults
type Config struct {
	OutputFormat string   `yaml:"output_format,omitempty"` // yaml, json, ndjson, text, table
	Parser       string   `yaml:"parser,omitempty"`        // xml, html
	OnMissing    string   `yaml:"on_missing,omitempty"`    // abort, skip
	Groups       []string `yaml:"groups,omitempty"`
}

// Keys returns the supported keys in sorted order.
func Keys() []string {
	keys := []string{KeyOutputFormat, KeyParser, KeyOnMissing, KeyGroups}
	sort.Strings(keys)
	return keys
}

// Set stores value under key. Groups are split on commas.
func (c *Config) Set(key, value string) error {
	switch key {
	case KeyOutputFormat:
		c.OutputFormat = value
	case KeyParser:
		c.Parser = value
	case KeyOnMissing:
		c.OnMissing = value
	case KeyGroups:
		c.Groups = SplitList(value)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

// Unset clears key.
func (c *Config) Unset(key string) error {
	switch key {
	case KeyGroups:
		c.Groups = nil
		return nil
	default:
		return c.Set(key, "")
	}
}

// Values returns every key with its current value. Unset groups are an
// empty list.
func (c *Config) Values() map[string]interface{} {
	groups := append([]string{}, c.Groups...)
	return map[string]interface{}{
		KeyOutputFormat: c.OutputFormat,
		KeyParser:       c.Parser,
		KeyOnMissing:    c.OnMissing,
		KeyGroups:       groups,
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", AppName), nil
}

// DefaultConfigPath returns the default config file path
func DefaultConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// ReadConfig reads the config file from the default location
func ReadConfig() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Load loads config from the given path. A missing or empty file is an empty
// config; unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes the config to path through a temporary file in the same
// directory.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing config: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// SplitList splits a comma separated value, dropping blanks.
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
