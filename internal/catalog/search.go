package catalog

import (
	"regexp"
	"strings"
)

// SearchTerms is a parsed search expression.
type SearchTerms struct {
	Include []string `json:"include_groups" yaml:"include_groups"`
	Exclude []string `json:"exclude_groups" yaml:"exclude_groups"`
}

var termSeparator = regexp.MustCompile(`[ ,]+`)

// ParseSearchTerms parses a space or comma separated list such as
// "cholera typhoid !paratyphoid". Terms starting with ! are excluded.
// Matching is case-insensitive so terms are lower-cased.
func ParseSearchTerms(expr string) SearchTerms {
	terms := SearchTerms{Include: []string{}, Exclude: []string{}}
	for _, term := range termSeparator.Split(strings.ToLower(expr), -1) {
		if strings.HasPrefix(term, "!") {
			if t := strings.TrimPrefix(term, "!"); t != "" {
				terms.Exclude = append(terms.Exclude, t)
			}
			continue
		}
		if term != "" {
			terms.Include = append(terms.Include, term)
		}
	}
	return terms
}

// Empty reports whether no terms were given.
func (s SearchTerms) Empty() bool {
	return len(s.Include) == 0 && len(s.Exclude) == 0
}

func (s SearchTerms) excludes(m Mapping) bool {
	return matchesAny(m, s.Exclude)
}

func (s SearchTerms) includes(m Mapping) bool {
	return len(s.Include) == 0 || matchesAny(m, s.Include)
}

func matchesAny(m Mapping, terms []string) bool {
	if len(terms) == 0 {
		return false
	}
	name := strings.ToLower(m.Text(KeyName))
	docs := strings.ToLower(m.Text(KeyDocs))
	for _, term := range terms {
		if strings.Contains(name, term) || strings.Contains(docs, term) {
			return true
		}
	}
	return false
}

// Filter returns the entries selected by terms. An entry matching an
// exclude term is dropped with everything below it. With include terms, an
// entry is kept when it matches one (together with its non-excluded
// descendants) or when any descendant is kept. The receiver is not modified.
func (d Document) Filter(terms SearchTerms) Document {
	if terms.Empty() {
		return d
	}
	return Document(filterLevel([]Mapping(d), terms, false))
}

func filterLevel(entries []Mapping, terms SearchTerms, matched bool) []Mapping {
	out := make([]Mapping, 0, len(entries))
	for _, entry := range entries {
		if kept, ok := filterEntry(entry, terms, matched); ok {
			out = append(out, kept)
		}
	}
	return out
}

func filterEntry(entry Mapping, terms SearchTerms, matched bool) (Mapping, bool) {
	if terms.excludes(entry) {
		return nil, false
	}
	matched = matched || terms.includes(entry)

	value, nested := entry.Lookup(KeyCategories)
	if !nested {
		return entry, matched
	}
	children, _ := value.([]Mapping)
	kept := filterLevel(children, terms, matched)
	if !matched && len(kept) == 0 {
		return nil, false
	}

	out := make(Mapping, 0, len(entry))
	for _, f := range entry {
		if f.Key == KeyCategories {
			f.Value = kept
		}
		out = append(out, f)
	}
	return out, true
}
