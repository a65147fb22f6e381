package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/salmonumbrella/icd10-cli/internal/catalog"
	"github.com/salmonumbrella/icd10-cli/internal/markup"
	"github.com/salmonumbrella/icd10-cli/internal/output"
	"github.com/salmonumbrella/icd10-cli/internal/pipeline"
)

// ValidationError reports invalid flags, arguments or config values.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

func validateErrorFormat(format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "auto", "text", "json", "yaml":
		return nil
	default:
		return ValidationError{Message: fmt.Sprintf("invalid --error-format %q (expected auto|text|json|yaml)", format)}
	}
}

func effectiveErrorFormat(ctx context.Context) string {
	format := strings.ToLower(strings.TrimSpace(ErrorFormatFromContext(ctx)))
	if format == "" || format == "auto" {
		switch output.FormatFromContext(ctx) {
		case output.FormatJSON, output.FormatNDJSON:
			return "json"
		case output.FormatYAML:
			return "yaml"
		default:
			return "text"
		}
	}
	return format
}

func printCommandError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	switch effectiveErrorFormat(ctx) {
	case "json":
		enc := json.NewEncoder(stderrFromContext(ctx))
		enc.SetEscapeHTML(false)
		_ = enc.Encode(buildErrorEnvelope(err))
		return
	case "yaml":
		enc := yaml.NewEncoder(stderrFromContext(ctx))
		enc.SetIndent(2)
		_ = enc.Encode(buildErrorEnvelope(err))
		_ = enc.Close()
		return
	}

	_, _ = fmt.Fprintln(stderrFromContext(ctx), err)
}

func buildErrorEnvelope(err error) map[string]interface{} {
	payload := map[string]interface{}{
		"error": map[string]interface{}{
			"message": err.Error(),
		},
	}

	errMap := payload["error"].(map[string]interface{})
	errMap["category"] = "system"
	errMap["type"] = "error"

	var validationErr ValidationError
	if errors.As(err, &validationErr) {
		errMap["type"] = "validation"
		errMap["category"] = "user"
	}

	var parseErr markup.ParseError
	if errors.As(err, &parseErr) {
		errMap["type"] = "parse"
		errMap["category"] = "user"
		errMap["parser"] = string(parseErr.Backend)
		if parseErr.Line > 0 {
			errMap["line"] = parseErr.Line
		}
	}

	var missingErr catalog.MissingFieldError
	if errors.As(err, &missingErr) {
		errMap["type"] = "missing_field"
		errMap["category"] = "user"
		errMap["kind"] = string(missingErr.Kind)
		errMap["field"] = missingErr.Field
		errMap["index"] = missingErr.Index
		if missingErr.Name != "" {
			errMap["name"] = missingErr.Name
		}
		errMap["path"] = missingErr.Location()
	}

	var ioErr pipeline.IOError
	if errors.As(err, &ioErr) {
		errMap["type"] = "io"
		errMap["op"] = ioErr.Op
		if ioErr.Path != "" {
			errMap["path"] = ioErr.Path
		}
	}

	return payload
}
