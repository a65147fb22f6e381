package catalog

import (
	"fmt"
	"strings"
)

// Kind names a level of the catalog hierarchy.
type Kind string

const (
	KindChapter   Kind = "chapter"
	KindSection   Kind = "section"
	KindDiagnosis Kind = "diagnosis"
)

// MissingFieldError indicates a required child or attribute is absent from a
// node. An element that is present but empty is not an error.
type MissingFieldError struct {
	// Kind is the level of the offending node.
	Kind Kind
	// Field is the missing output key ("name", "docs").
	Field string
	// Source is the missing tag or attribute in the input.
	Source string
	// Name is the node's own identifier when it could be read.
	Name string
	// Index is the 1-based position of the node among its siblings.
	Index int
	// Path holds the identifiers of the enclosing chapter and section.
	Path []string
}

func (e MissingFieldError) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Kind))
	if e.Name != "" {
		fmt.Fprintf(&sb, " %q", e.Name)
	} else if e.Index > 0 {
		fmt.Fprintf(&sb, " #%d", e.Index)
	}
	if len(e.Path) > 0 {
		fmt.Fprintf(&sb, " (in %s)", strings.Join(e.Path, " > "))
	}
	fmt.Fprintf(&sb, ": missing %s", e.Field)
	if e.Source != "" && e.Source != e.Field {
		fmt.Fprintf(&sb, " (%s)", e.Source)
	}
	return sb.String()
}

// Location returns the path to the node including the node itself.
func (e MissingFieldError) Location() []string {
	loc := append([]string(nil), e.Path...)
	switch {
	case e.Name != "":
		loc = append(loc, e.Name)
	case e.Index > 0:
		loc = append(loc, fmt.Sprintf("%s #%d", e.Kind, e.Index))
	}
	return loc
}
