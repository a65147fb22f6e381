// Package catalog converts a parsed ICD-10-CM tabular document into ordered
// nested mappings: chapters hold sections, sections hold diagnoses.
//
// Conversion is pure. Nodes are only read, nothing is logged, and a missing
// required field is reported as a MissingFieldError rather than replaced by a
// default. Whether a failing subtree is skipped is decided by the caller
// through Transformer.Skip.
package catalog

import (
	"errors"
	"strconv"

	"github.com/salmonumbrella/icd10-cli/internal/markup"
)

// Schema names the tags and attributes read at each level.
type Schema struct {
	Chapter   string
	Section   string
	Diagnosis string
	Name      string
	Docs      string
	ID        string
}

// DefaultSchema matches the ICD-10-CM tabular XML distribution.
func DefaultSchema() Schema {
	return Schema{
		Chapter:   "chapter",
		Section:   "section",
		Diagnosis: "diag",
		Name:      "name",
		Docs:      "desc",
		ID:        "id",
	}
}

// Transformer walks chapter, section and diagnosis nodes.
// The zero value uses DefaultSchema and aborts on the first missing field.
type Transformer struct {
	Schema Schema
	// Skip, when set, is consulted for every node with a missing field.
	// Returning true omits that node and continues with its siblings.
	Skip func(MissingFieldError) bool
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithSchema overrides the tag names.
func WithSchema(s Schema) Option {
	return func(t *Transformer) {
		t.Schema = s
	}
}

// WithSkip installs a skip policy for nodes with missing fields.
func WithSkip(skip func(MissingFieldError) bool) Option {
	return func(t *Transformer) {
		t.Skip = skip
	}
}

// New creates a Transformer with DefaultSchema and the given options.
func New(opts ...Option) Transformer {
	t := Transformer{Schema: DefaultSchema()}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

func (t Transformer) schema() Schema {
	if t.Schema == (Schema{}) {
		return DefaultSchema()
	}
	return t.Schema
}

// Diagnosis converts a diagnosis node into {name, docs}.
func (t Transformer) Diagnosis(n markup.Node) (Mapping, error) {
	return t.diagnosis(n, 0, nil)
}

// Section converts a section node into {name, docs, categories}. The name is
// the section's own identifier attribute.
func (t Transformer) Section(n markup.Node) (Mapping, error) {
	return t.section(n, 0, nil)
}

// Chapter converts a chapter node into {name, docs, categories}.
func (t Transformer) Chapter(n markup.Node) (Mapping, error) {
	return t.chapter(n, 0)
}

// Document converts every chapter child of root, in document order.
func (t Transformer) Document(root markup.Node) (Document, error) {
	nodes := root.Children(t.schema().Chapter)
	chapters := make(Document, 0, len(nodes))
	for i, n := range nodes {
		m, err := t.chapter(n, i+1)
		if err != nil {
			if t.omit(err, KindChapter) {
				continue
			}
			return nil, err
		}
		chapters = append(chapters, m)
	}
	return chapters, nil
}

func (t Transformer) diagnosis(n markup.Node, index int, path []string) (Mapping, error) {
	s := t.schema()
	name, ok := childText(n, s.Name)
	if !ok {
		return nil, MissingFieldError{Kind: KindDiagnosis, Field: KeyName, Source: s.Name, Index: index, Path: path}
	}
	docs, ok := childText(n, s.Docs)
	if !ok {
		return nil, MissingFieldError{Kind: KindDiagnosis, Field: KeyDocs, Source: s.Docs, Name: name, Index: index, Path: path}
	}
	return Mapping{
		{Key: KeyName, Value: name},
		{Key: KeyDocs, Value: docs},
	}, nil
}

func (t Transformer) section(n markup.Node, index int, path []string) (Mapping, error) {
	s := t.schema()
	id, ok := n.Attr(s.ID)
	if !ok {
		return nil, MissingFieldError{Kind: KindSection, Field: KeyName, Source: s.ID, Index: index, Path: path}
	}
	docs, ok := childText(n, s.Docs)
	if !ok {
		return nil, MissingFieldError{Kind: KindSection, Field: KeyDocs, Source: s.Docs, Name: id, Index: index, Path: path}
	}

	childPath := append(append([]string(nil), path...), label(id, KindSection, index))
	nodes := n.Children(s.Diagnosis)
	diagnoses := make([]Mapping, 0, len(nodes))
	for i, d := range nodes {
		m, err := t.diagnosis(d, i+1, childPath)
		if err != nil {
			if t.omit(err, KindDiagnosis) {
				continue
			}
			return nil, err
		}
		diagnoses = append(diagnoses, m)
	}

	return Mapping{
		{Key: KeyName, Value: id},
		{Key: KeyDocs, Value: docs},
		{Key: KeyCategories, Value: diagnoses},
	}, nil
}

func (t Transformer) chapter(n markup.Node, index int) (Mapping, error) {
	s := t.schema()
	name, ok := childText(n, s.Name)
	if !ok {
		return nil, MissingFieldError{Kind: KindChapter, Field: KeyName, Source: s.Name, Index: index}
	}
	docs, ok := childText(n, s.Docs)
	if !ok {
		return nil, MissingFieldError{Kind: KindChapter, Field: KeyDocs, Source: s.Docs, Name: name, Index: index}
	}

	path := []string{label(name, KindChapter, index)}
	nodes := n.Children(s.Section)
	sections := make([]Mapping, 0, len(nodes))
	for i, sec := range nodes {
		m, err := t.section(sec, i+1, path)
		if err != nil {
			if t.omit(err, KindSection) {
				continue
			}
			return nil, err
		}
		sections = append(sections, m)
	}

	return Mapping{
		{Key: KeyName, Value: name},
		{Key: KeyDocs, Value: docs},
		{Key: KeyCategories, Value: sections},
	}, nil
}

// omit reports whether err belongs to a node of the given kind and the skip
// policy accepts dropping it. Errors from deeper levels were already offered
// to the policy where they occurred.
func (t Transformer) omit(err error, kind Kind) bool {
	if t.Skip == nil {
		return false
	}
	var missing MissingFieldError
	if !errors.As(err, &missing) || missing.Kind != kind {
		return false
	}
	return t.Skip(missing)
}

func childText(n markup.Node, tag string) (string, bool) {
	child, ok := n.Child(tag)
	if !ok {
		return "", false
	}
	return child.Text(), true
}

func label(id string, kind Kind, index int) string {
	if id != "" {
		return id
	}
	return string(kind) + " #" + strconv.Itoa(index)
}

var defaultTransformer = New()

// DiagnosisToMapping converts a diagnosis node with the default schema.
func DiagnosisToMapping(n markup.Node) (Mapping, error) {
	return defaultTransformer.Diagnosis(n)
}

// SectionToMapping converts a section node with the default schema.
func SectionToMapping(n markup.Node) (Mapping, error) {
	return defaultTransformer.Section(n)
}

// ChapterToMapping converts a chapter node with the default schema.
func ChapterToMapping(n markup.Node) (Mapping, error) {
	return defaultTransformer.Chapter(n)
}

// DocumentToMapping converts every chapter under root with the default schema.
func DocumentToMapping(root markup.Node) (Document, error) {
	return defaultTransformer.Document(root)
}
