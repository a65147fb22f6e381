package cmd

import (
	"io"
	"os"
	"strings"

	"github.com/salmonumbrella/icd10-cli/internal/pipeline"
)

// readInputSource reads a short text input, such as a jq program, from a
// file path or stdin when source is "-". Surrounding whitespace is trimmed.
func readInputSource(source string, stdin io.Reader) (string, error) {
	r, err := pipeline.Open(source, stdin)
	if err != nil {
		return "", err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", pipeline.IOError{Op: "read", Path: strings.TrimSpace(source), Err: err}
	}

	return strings.TrimSpace(string(data)), nil
}

// inputHasData reports whether r is something other than an interactive
// terminal, i.e. a pipe, a file or an in-memory reader.
func inputHasData(r io.Reader) bool {
	if r == nil {
		r = os.Stdin
	}
	if file, ok := r.(*os.File); ok {
		stat, err := file.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) == 0
	}
	return true
}
