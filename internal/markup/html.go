package markup

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Selection is a node of a leniently parsed document. Tag and attribute
// names are lower-cased by the HTML tokenizer, so lookups are
// case-insensitive.
type Selection struct {
	sel *goquery.Selection
}

var _ Node = Selection{}

// Tag returns the lower-cased element name.
func (s Selection) Tag() string {
	return goquery.NodeName(s.sel)
}

// Child returns the first direct child element named tag.
func (s Selection) Child(tag string) (Node, bool) {
	match := s.children(tag).First()
	if match.Length() == 0 {
		return nil, false
	}
	return Selection{sel: match}, true
}

// Children returns all direct child elements named tag.
func (s Selection) Children(tag string) []Node {
	matches := s.children(tag)
	out := make([]Node, 0, matches.Length())
	matches.Each(func(_ int, child *goquery.Selection) {
		out = append(out, Selection{sel: child})
	})
	return out
}

// Attr returns the value of the named attribute.
func (s Selection) Attr(name string) (string, bool) {
	return s.sel.Attr(strings.ToLower(name))
}

// Text returns the trimmed text of the element and its descendants.
func (s Selection) Text() string {
	return strings.TrimSpace(s.sel.Text())
}

// children filters by node name instead of a CSS selector because catalog
// tags may contain characters that are meaningful in selectors.
func (s Selection) children(tag string) *goquery.Selection {
	want := strings.ToLower(tag)
	return s.sel.Children().FilterFunction(func(_ int, child *goquery.Selection) bool {
		return goquery.NodeName(child) == want
	})
}

// voidElements never take children, so their start tag closes them.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// ParseHTML parses r leniently and returns the first top-level element.
//
// The tree is built from the tokenizer rather than the HTML5 tree builder,
// so catalog tags are not moved around by HTML content rules. A
// self-closing tag is an empty element, unclosed elements end where their
// parent ends and stray end tags are ignored.
func ParseHTML(r io.Reader) (Selection, error) {
	tr := &trackingReader{r: r}
	z := html.NewTokenizer(tr)
	z.AllowCDATA(true)

	doc := &html.Node{Type: html.DocumentNode}
	stack := []*html.Node{doc}

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if tr.err != nil {
				return Selection{}, tr.err
			}
			if err := z.Err(); err != io.EOF {
				return Selection{}, ParseError{Backend: KindHTML, Message: err.Error(), Err: err}
			}
			break
		}

		tok := z.Token()
		top := stack[len(stack)-1]
		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			el := &html.Node{Type: html.ElementNode, Data: tok.Data, DataAtom: tok.DataAtom, Attr: tok.Attr}
			top.AppendChild(el)
			if tt == html.StartTagToken && !voidElements[tok.Data] {
				stack = append(stack, el)
				// Treat <title>, <style> and friends as ordinary elements.
				z.NextIsNotRawText()
			}
		case html.EndTagToken:
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].Data == tok.Data {
					stack = stack[:i]
					break
				}
			}
		case html.TextToken:
			top.AppendChild(&html.Node{Type: html.TextNode, Data: tok.Data})
		}
	}

	root := goquery.NewDocumentFromNode(doc).Children().First()
	if root.Length() == 0 {
		return Selection{}, ParseError{Backend: KindHTML, Message: "document has no root element"}
	}
	return Selection{sel: root}, nil
}
