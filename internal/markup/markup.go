// Package markup parses tabular markup documents into a navigable element
// tree. Two backends are available: a strict XML decoder and a lenient
// HTML-style parser that tolerates malformed input.
package markup

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Kind selects a parser backend.
type Kind string

const (
	// KindXML is the strict XML backend (default).
	KindXML Kind = "xml"
	// KindHTML is the lenient HTML backend.
	KindHTML Kind = "html"
)

// Node is a read-only element of a parsed document.
type Node interface {
	// Tag returns the element name.
	Tag() string
	// Child returns the first direct child element named tag.
	Child(tag string) (Node, bool)
	// Children returns all direct child elements named tag in document order.
	Children(tag string) []Node
	// Attr returns the value of the named attribute.
	Attr(name string) (string, bool)
	// Text returns the character data of the element and its descendants
	// with surrounding whitespace trimmed.
	Text() string
}

// ParseKind converts a string to a Kind.
// Empty string defaults to KindXML.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindXML, "":
		return KindXML, nil
	case KindHTML:
		return KindHTML, nil
	default:
		return "", errors.New("invalid --parser (expected xml|html)")
	}
}

// Parse reads a whole document from r with the given backend and returns its
// root element.
func Parse(r io.Reader, kind Kind) (Node, error) {
	switch kind {
	case KindXML, "":
		root, err := ParseXML(r)
		if err != nil {
			return nil, err
		}
		return root, nil
	case KindHTML:
		root, err := ParseHTML(r)
		if err != nil {
			return nil, err
		}
		return root, nil
	default:
		return nil, fmt.Errorf("unsupported parser: %s", kind)
	}
}
