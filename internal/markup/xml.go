package markup

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Element is a node of a strictly parsed XML document.
type Element struct {
	name  string
	attrs []xml.Attr
	parts []interface{} // string or *Element, in document order
}

var _ Node = (*Element)(nil)

// Tag returns the local element name.
func (e *Element) Tag() string {
	return e.name
}

// Child returns the first direct child element named tag.
func (e *Element) Child(tag string) (Node, bool) {
	for _, p := range e.parts {
		if child, ok := p.(*Element); ok && child.name == tag {
			return child, true
		}
	}
	return nil, false
}

// Children returns all direct child elements named tag.
func (e *Element) Children(tag string) []Node {
	var out []Node
	for _, p := range e.parts {
		if child, ok := p.(*Element); ok && child.name == tag {
			out = append(out, child)
		}
	}
	return out
}

// Attr returns the value of the attribute with the given local name.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// Text returns the trimmed character data of e and its descendants.
func (e *Element) Text() string {
	var sb strings.Builder
	e.writeText(&sb)
	return strings.TrimSpace(sb.String())
}

func (e *Element) writeText(sb *strings.Builder) {
	for _, p := range e.parts {
		switch v := p.(type) {
		case string:
			sb.WriteString(v)
		case *Element:
			v.writeText(sb)
		}
	}
}

// trackingReader remembers the first error returned by the underlying reader
// so read failures are not reported as malformed markup.
type trackingReader struct {
	r   io.Reader
	err error
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF && t.err == nil {
		t.err = err
	}
	return n, err
}

// ParseXML decodes a well-formed XML document and returns its root element.
// Read errors from r are returned unchanged; anything else that stops the
// decoder is a ParseError.
func ParseXML(r io.Reader) (*Element, error) {
	tr := &trackingReader{r: r}
	dec := xml.NewDecoder(tr)

	var root *Element
	var stack []*Element

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			if tr.err != nil {
				return nil, tr.err
			}
			return nil, xmlParseError(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{name: t.Name.Local, attrs: t.Copy().Attr}
			if len(stack) == 0 {
				if root != nil {
					line, _ := dec.InputPos()
					return nil, ParseError{Backend: KindXML, Line: line, Message: fmt.Sprintf("unexpected element <%s> after document root", el.name)}
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.parts = append(parent.parts, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.parts = append(parent.parts, string(t))
			}
		}
	}

	if root == nil {
		return nil, ParseError{Backend: KindXML, Message: "document has no root element"}
	}
	return root, nil
}

func xmlParseError(err error) error {
	var syntaxErr *xml.SyntaxError
	if errors.As(err, &syntaxErr) {
		return ParseError{Backend: KindXML, Line: syntaxErr.Line, Message: syntaxErr.Msg, Err: err}
	}
	return ParseError{Backend: KindXML, Message: err.Error(), Err: err}
}
