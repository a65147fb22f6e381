package catalog

import (
	"fmt"
	"io"
	"strings"
)

// WriteOutline renders the document as an indented list, two spaces per level.
func (d Document) WriteOutline(w io.Writer) error {
	return writeOutline(w, []Mapping(d), 0)
}

// WriteOutline renders a single mapping and its nested entries. A top-level
// wrapper with groups starts with a line listing them.
func (m Mapping) WriteOutline(w io.Writer) error {
	if v, ok := m.Lookup(KeyGroups); ok {
		if groups, _ := v.([]string); len(groups) > 0 {
			if _, err := fmt.Fprintf(w, "groups: %s\n", strings.Join(groups, ", ")); err != nil {
				return err
			}
		}
	}
	if _, ok := m.Lookup(KeyName); !ok {
		return writeOutline(w, m.Categories(), 0)
	}
	return writeOutline(w, []Mapping{m}, 0)
}

func writeOutline(w io.Writer, entries []Mapping, depth int) error {
	indent := strings.Repeat("  ", depth)
	for _, entry := range entries {
		line := indent + entry.Text(KeyName)
		if docs := entry.Text(KeyDocs); docs != "" {
			line += "  " + docs
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		if err := writeOutline(w, entry.Categories(), depth+1); err != nil {
			return err
		}
	}
	return nil
}
