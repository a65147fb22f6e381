package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/salmonumbrella/icd10-cli/internal/output"
)

func TestSetVersionInfo(t *testing.T) {
	origVersion, origCommit, origDate := version, commit, date
	origRootVersion := rootCmd.Version
	defer func() {
		version, commit, date = origVersion, origCommit, origDate
		rootCmd.Version = origRootVersion
		rootCmd.SetVersionTemplate(versionTemplate())
	}()

	SetVersionInfo("1.2.3", "abc123", "2026-01-01")

	if version != "1.2.3" || commit != "abc123" || date != "2026-01-01" {
		t.Fatalf("unexpected version info %q %q %q", version, commit, date)
	}
	if rootCmd.Version != "1.2.3" {
		t.Errorf("rootCmd.Version = %q, want 1.2.3", rootCmd.Version)
	}
	if got, want := versionTemplate(), "icd10 version 1.2.3 (commit: abc123, built: 2026-01-01)\n"; got != want {
		t.Errorf("versionTemplate() = %q, want %q", got, want)
	}
}

func TestGetOutputFormat(t *testing.T) {
	prevType, prevFmt := outputType, outputFmt
	defer func() {
		outputType, outputFmt = prevType, prevFmt
	}()

	tests := []struct {
		name       string
		outputType output.Format
		outputFmt  string
		want       output.Format
	}{
		{"resolved type wins", output.FormatJSON, "text", output.FormatJSON},
		{"parsed from flag", "", "table", output.FormatTable},
		{"invalid falls back to yaml", "", "bogus", output.FormatYAML},
		{"empty falls back to yaml", "", "", output.FormatYAML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outputType, outputFmt = tt.outputType, tt.outputFmt
			if got := GetOutputFormat(); got != tt.want {
				t.Errorf("GetOutputFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQueryAndQueryFileConflict(t *testing.T) {
	res := runCLI(t, "", nil, "convert", "--query", ".", "--query-file", "q.jq", writeFixture(t, tabularFixture))
	if res.err == nil || !strings.Contains(res.err.Error(), "only one of --query or --query-file") {
		t.Fatalf("expected conflict error, got %v", res.err)
	}
}

func TestInvalidErrorFormatRejected(t *testing.T) {
	res := runCLI(t, "", nil, "--error-format", "xml", "convert", writeFixture(t, tabularFixture))
	var validationErr ValidationError
	if res.err == nil || !errors.As(res.err, &validationErr) {
		t.Fatalf("expected validation error, got %v", res.err)
	}
}

func TestInvalidOutputFormatRejected(t *testing.T) {
	res := runCLI(t, "", nil, "-o", "csv", "convert", writeFixture(t, tabularFixture))
	if res.err == nil || !strings.Contains(res.err.Error(), "invalid --output format") {
		t.Fatalf("expected output format error, got %v", res.err)
	}
}
