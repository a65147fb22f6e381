package catalog

// Document is the ordered list of chapter mappings produced from one input.
type Document []Mapping

// WithGroups wraps the chapters in the top-level layout read by the code
// selection tool: {categories: [...], groups: [...]}.
func (d Document) WithGroups(groups []string) Mapping {
	chapters := []Mapping(d)
	if chapters == nil {
		chapters = []Mapping{}
	}
	g := append([]string{}, groups...)
	return Mapping{
		{Key: KeyCategories, Value: chapters},
		{Key: KeyGroups, Value: g},
	}
}

// ChapterStats counts the entries of one chapter.
type ChapterStats struct {
	Chapter   string `json:"chapter" yaml:"chapter"`
	Docs      string `json:"docs" yaml:"docs"`
	Sections  int    `json:"sections" yaml:"sections"`
	Diagnoses int    `json:"diagnoses" yaml:"diagnoses"`
}

// Stats summarizes a document.
type Stats struct {
	Chapters  int            `json:"chapters" yaml:"chapters"`
	Sections  int            `json:"sections" yaml:"sections"`
	Diagnoses int            `json:"diagnoses" yaml:"diagnoses"`
	Results   []ChapterStats `json:"results" yaml:"results"`
}

// Stats counts chapters, sections and diagnoses.
func (d Document) Stats() Stats {
	stats := Stats{Chapters: len(d), Results: make([]ChapterStats, 0, len(d))}
	for _, chapter := range d {
		cs := ChapterStats{Chapter: chapter.Text(KeyName), Docs: chapter.Text(KeyDocs)}
		for _, section := range chapter.Categories() {
			cs.Sections++
			cs.Diagnoses += len(section.Categories())
		}
		stats.Sections += cs.Sections
		stats.Diagnoses += cs.Diagnoses
		stats.Results = append(stats.Results, cs)
	}
	return stats
}

// RowHeaders names the columns returned by Rows.
var RowHeaders = []string{"chapter", "section", "code", "description"}

// Rows flattens the document to one row per diagnosis. Sections without
// diagnoses produce a row with empty code and description.
func (d Document) Rows() [][]string {
	var rows [][]string
	for _, chapter := range d {
		chapterName := chapter.Text(KeyName)
		for _, section := range chapter.Categories() {
			sectionName := section.Text(KeyName)
			diagnoses := section.Categories()
			if len(diagnoses) == 0 {
				rows = append(rows, []string{chapterName, sectionName, "", ""})
				continue
			}
			for _, diag := range diagnoses {
				rows = append(rows, []string{chapterName, sectionName, diag.Text(KeyName), diag.Text(KeyDocs)})
			}
		}
	}
	return rows
}
