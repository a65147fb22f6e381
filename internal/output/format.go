package output

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/itchyny/gojq"
	"gopkg.in/yaml.v3"
)

// Format represents the output format type.
type Format string

const (
	// FormatYAML is YAML format (default).
	FormatYAML Format = "yaml"
	// FormatJSON is pretty-printed JSON format.
	FormatJSON Format = "json"
	// FormatNDJSON is newline-delimited JSON format.
	FormatNDJSON Format = "ndjson"
	// FormatText is a human-readable indented outline.
	FormatText Format = "text"
	// FormatTable is tabular format for lists.
	FormatTable Format = "table"
)

// ParseFormat converts a string to a Format type.
// Empty string defaults to FormatYAML.
// Returns error if the format is invalid.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatYAML, "":
		return FormatYAML, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatNDJSON:
		return FormatNDJSON, nil
	case FormatText:
		return FormatText, nil
	case FormatTable:
		return FormatTable, nil
	default:
		return "", errors.New("invalid --output format (expected yaml|json|ndjson|text|table)")
	}
}

// IsStructured reports whether the format is machine-readable structured output.
func IsStructured(format Format) bool {
	switch format {
	case FormatJSON, FormatNDJSON, FormatYAML:
		return true
	default:
		return false
	}
}

// Outliner is implemented by values with their own text rendering.
type Outliner interface {
	WriteOutline(w io.Writer) error
}

// Printer handles output formatting across different formats.
type Printer struct {
	w      io.Writer
	format Format
}

// NewPrinter creates a new Printer that writes to w in the given format.
func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{
		w:      w,
		format: format,
	}
}

// Print outputs data in the configured format.
func (p *Printer) Print(ctx context.Context, data interface{}) error {
	if data == nil {
		return nil
	}

	data = ApplyResultOptions(ctx, data)

	switch p.format {
	case FormatJSON:
		return p.printJSON(ctx, data)
	case FormatNDJSON:
		return p.printNDJSON(ctx, data)
	case FormatYAML, "":
		return p.printYAML(ctx, data)
	case FormatTable:
		return p.printTable(data)
	case FormatText:
		return p.printText(data)
	default:
		return fmt.Errorf("unsupported format: %s", p.format)
	}
}

// runQuery evaluates the jq query from the context against data and calls
// emit for every result. It reports false when no query is set.
func runQuery(ctx context.Context, data interface{}, emit func(interface{}) error) (bool, error) {
	query := QueryFromContext(ctx)
	if query == "" {
		return false, nil
	}

	parsed, err := gojq.Parse(query)
	if err != nil {
		return true, fmt.Errorf("invalid --query: %w", err)
	}

	code, err := gojq.Compile(parsed)
	if err != nil {
		return true, fmt.Errorf("invalid --query: %w", err)
	}

	input, err := normalize(data)
	if err != nil {
		return true, err
	}

	iter := code.RunWithContext(ctx, input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return true, fmt.Errorf("query error: %w", err)
		}
		if err := emit(v); err != nil {
			return true, err
		}
	}
	return true, nil
}

// normalize converts data to the plain maps and slices gojq operates on.
func normalize(data interface{}) (interface{}, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare query input: %w", err)
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to prepare query input: %w", err)
	}
	return out, nil
}

// printJSON outputs data as pretty-printed JSON.
// If a jq query is present in the context, it filters the output.
func (p *Printer) printJSON(ctx context.Context, data interface{}) error {
	enc := json.NewEncoder(p.w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if queried, err := runQuery(ctx, data, enc.Encode); queried {
		return err
	}
	return enc.Encode(data)
}

// printNDJSON outputs one JSON value per line: the elements of a list, or
// the query results when a jq query is present.
func (p *Printer) printNDJSON(ctx context.Context, data interface{}) error {
	enc := json.NewEncoder(p.w)
	enc.SetEscapeHTML(false)

	if queried, err := runQuery(ctx, data, enc.Encode); queried {
		return err
	}

	v := reflect.ValueOf(data)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	// Values with their own JSON form (ordered mappings) are a single line.
	if _, ok := data.(json.Marshaler); !ok && (v.Kind() == reflect.Slice || v.Kind() == reflect.Array) {
		for i := 0; i < v.Len(); i++ {
			if err := enc.Encode(v.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	}

	return enc.Encode(data)
}

// printYAML outputs data as YAML, one document per query result when a jq
// query is present.
func (p *Printer) printYAML(ctx context.Context, data interface{}) error {
	enc := yaml.NewEncoder(p.w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()

	if queried, err := runQuery(ctx, data, enc.Encode); queried {
		return err
	}
	return enc.Encode(data)
}
