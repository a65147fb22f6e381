package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

const tabularFixture = `<?xml version="1.0" encoding="utf-8"?>
<ICD10CM.tabular>
  <version>2023</version>
  <chapter>
    <name>1</name>
    <desc>Certain infectious and parasitic diseases (A00-B99)</desc>
    <section id="A00-A09">
      <desc>Intestinal infectious diseases (A00-A09)</desc>
      <diag>
        <name>A00</name>
        <desc>Cholera</desc>
      </diag>
      <diag>
        <name>A01</name>
        <desc>Typhoid and paratyphoid fevers</desc>
      </diag>
    </section>
    <section id="A15-A19">
      <desc>Tuberculosis (A15-A19)</desc>
    </section>
  </chapter>
  <chapter>
    <name>2</name>
    <desc>Neoplasms (C00-D49)</desc>
    <section id="C00-C14">
      <desc>Malignant neoplasms of lip, oral cavity and pharynx (C00-C14)</desc>
      <diag>
        <name>C00</name>
        <desc>Malignant neoplasm of lip</desc>
      </diag>
    </section>
  </chapter>
</ICD10CM.tabular>
`

type cliResult struct {
	stdout string
	stderr string
	err    error
}

// runCLI executes rootCmd with args against an empty config file and no
// environment. Extra env entries are served through envGet.
func runCLI(t *testing.T, stdin string, env map[string]string, args ...string) cliResult {
	t.Helper()
	restore := snapshotCLIState()
	defer restore()

	out := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	in := bytes.NewBufferString(stdin)

	rootCmd.SetOut(out)
	rootCmd.SetErr(errBuf)
	rootCmd.SetIn(in)
	rootCmd.SetContext(withIO(context.Background(), in, out, errBuf))

	hasConfig := false
	for _, arg := range args {
		if arg == "--config" {
			hasConfig = true
		}
	}
	if !hasConfig {
		cfgPath := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(cfgPath, []byte(""), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		args = append([]string{"--config", cfgPath}, args...)
	}

	prevEnvGet := envGet
	envGet = func(key string) string {
		return env[key]
	}
	defer func() { envGet = prevEnvGet }()

	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	if err != nil {
		printCommandError(rootCmd.Context(), err)
	}
	return cliResult{stdout: out.String(), stderr: errBuf.String(), err: err}
}

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tabular.xml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func snapshotCLIState() func() {
	prevOutputFmt := outputFmt
	prevOutputType := outputType
	prevDebug := debug
	prevLogLevel := logLevel
	prevConfig := configFile
	prevQueryExpr := queryExpr
	prevQueryFile := queryFile
	prevErrorFmt := errorFmt
	prevQuiet := quietFlag
	prevResultLimit := resultLimit
	prevResultSort := resultSort
	prevResultDesc := resultDesc
	prevActiveConfig := activeConfig
	prevParser := convertParser
	prevOnMissing := convertOnMissing
	prevSearch := convertSearch
	prevGroups := convertGroups
	prevOut := convertOut
	prevStdinIsPiped := stdinIsPiped

	prevCmdOut := rootCmd.OutOrStdout()
	prevCmdErr := rootCmd.ErrOrStderr()
	prevCmdIn := rootCmd.InOrStdin()
	prevCtx := rootCmd.Context()

	return func() {
		outputFmt = prevOutputFmt
		outputType = prevOutputType
		debug = prevDebug
		logLevel = prevLogLevel
		configFile = prevConfig
		queryExpr = prevQueryExpr
		queryFile = prevQueryFile
		errorFmt = prevErrorFmt
		quietFlag = prevQuiet
		resultLimit = prevResultLimit
		resultSort = prevResultSort
		resultDesc = prevResultDesc
		activeConfig = prevActiveConfig
		convertParser = prevParser
		convertOnMissing = prevOnMissing
		convertSearch = prevSearch
		convertGroups = prevGroups
		convertOut = prevOut
		stdinIsPiped = prevStdinIsPiped

		rootCmd.SetOut(prevCmdOut)
		rootCmd.SetErr(prevCmdErr)
		rootCmd.SetIn(prevCmdIn)
		rootCmd.SetContext(prevCtx)
		rootCmd.SetArgs(nil)
		for _, c := range rootCmd.Commands() {
			// Subcommands keep the first context they were run with unless cleared.
			c.SetContext(nil) //nolint:staticcheck // cobra falls back to the root context
			resetFlagChanges(c)
			for _, sub := range c.Commands() {
				sub.SetContext(nil) //nolint:staticcheck
				resetFlagChanges(sub)
			}
		}
		resetFlagChanges(rootCmd)
	}
}

func resetFlagChanges(cmdFlagSet interface {
	Flags() *pflag.FlagSet
	PersistentFlags() *pflag.FlagSet
	InheritedFlags() *pflag.FlagSet
},
) {
	if cmdFlagSet == nil {
		return
	}
	reset := func(f *pflag.Flag) {
		f.Changed = false
		// Repeatable flags append after their first Set; start them empty.
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace([]string{})
		}
	}
	cmdFlagSet.Flags().VisitAll(reset)
	cmdFlagSet.PersistentFlags().VisitAll(reset)
	cmdFlagSet.InheritedFlags().VisitAll(reset)
}
