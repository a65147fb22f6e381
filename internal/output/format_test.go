package output

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/salmonumbrella/icd10-cli/internal/catalog"
)

func testDocument() catalog.Document {
	return catalog.Document{
		{
			{Key: catalog.KeyName, Value: "2"},
			{Key: catalog.KeyDocs, Value: "Neoplasms"},
			{Key: catalog.KeyCategories, Value: []catalog.Mapping{}},
		},
		{
			{Key: catalog.KeyName, Value: "1"},
			{Key: catalog.KeyDocs, Value: "Certain infectious diseases"},
			{Key: catalog.KeyCategories, Value: []catalog.Mapping{
				{{Key: catalog.KeyName, Value: "A00-A09"}, {Key: catalog.KeyDocs, Value: "Intestinal <infectious> diseases"}},
			}},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatYAML, false},
		{"yaml", FormatYAML, false},
		{"JSON", FormatJSON, false},
		{" ndjson ", FormatNDJSON, false},
		{"text", FormatText, false},
		{"table", FormatTable, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatFromContextDefaultsToYAML(t *testing.T) {
	if got := FormatFromContext(context.Background()); got != FormatYAML {
		t.Fatalf("expected yaml default, got %q", got)
	}
}

func TestPrintYAMLDocument(t *testing.T) {
	var sb strings.Builder
	if err := NewPrinter(&sb, FormatYAML).Print(context.Background(), testDocument()); err != nil {
		t.Fatalf("Print YAML failed: %v", err)
	}

	out := sb.String()
	if !strings.HasPrefix(out, "- name: \"2\"\n  docs: Neoplasms\n  categories: []\n") {
		t.Fatalf("unexpected yaml output:\n%s", out)
	}
	if !strings.Contains(out, "- name: A00-A09\n") {
		t.Fatalf("expected nested section in yaml output:\n%s", out)
	}
}

func TestPrintJSONKeepsOrderAndMarkup(t *testing.T) {
	var sb strings.Builder
	if err := NewPrinter(&sb, FormatJSON).Print(context.Background(), testDocument()); err != nil {
		t.Fatalf("Print JSON failed: %v", err)
	}

	out := sb.String()
	if !strings.Contains(out, "Intestinal <infectious> diseases") {
		t.Fatalf("expected unescaped markup in json output: %s", out)
	}
	if strings.Index(out, `"name"`) > strings.Index(out, `"docs"`) {
		t.Fatalf("expected name before docs: %s", out)
	}

	var decoded []map[string]interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(decoded))
	}
}

func TestPrintNDJSONOneChapterPerLine(t *testing.T) {
	var sb strings.Builder
	if err := NewPrinter(&sb, FormatNDJSON).Print(context.Background(), testDocument()); err != nil {
		t.Fatalf("Print NDJSON failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), sb.String())
	}
	if !strings.HasPrefix(lines[0], `{"name":"2"`) {
		t.Fatalf("unexpected first line: %s", lines[0])
	}
}

func TestPrintNDJSONSingleMapping(t *testing.T) {
	var sb strings.Builder
	wrapped := testDocument().WithGroups([]string{"a"})
	if err := NewPrinter(&sb, FormatNDJSON).Print(context.Background(), wrapped); err != nil {
		t.Fatalf("Print NDJSON failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if len(lines) != 1 || !strings.HasPrefix(lines[0], `{"categories":[`) {
		t.Fatalf("expected a single object line, got %q", sb.String())
	}
}

func TestPrintQuery(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		query  string
		want   string
	}{
		{"json", FormatJSON, ".[1].categories[0].name", "\"A00-A09\"\n"},
		{"ndjson", FormatNDJSON, ".[].name", "\"2\"\n\"1\"\n"},
		{"yaml", FormatYAML, "[.[].docs]", "- Neoplasms\n- Certain infectious diseases\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sb strings.Builder
			ctx := WithQuery(context.Background(), tt.query)
			if err := NewPrinter(&sb, tt.format).Print(ctx, testDocument()); err != nil {
				t.Fatalf("Print failed: %v", err)
			}
			if sb.String() != tt.want {
				t.Fatalf("got %q, want %q", sb.String(), tt.want)
			}
		})
	}
}

func TestPrintInvalidQuery(t *testing.T) {
	var sb strings.Builder
	ctx := WithQuery(context.Background(), ".[")
	err := NewPrinter(&sb, FormatJSON).Print(ctx, testDocument())
	if err == nil || !strings.Contains(err.Error(), "invalid --query") {
		t.Fatalf("expected invalid query error, got %v", err)
	}
}

func TestPrintTextUsesOutline(t *testing.T) {
	var sb strings.Builder
	if err := NewPrinter(&sb, FormatText).Print(context.Background(), testDocument()); err != nil {
		t.Fatalf("Print text failed: %v", err)
	}

	want := "2  Neoplasms\n1  Certain infectious diseases\n  A00-A09  Intestinal <infectious> diseases\n"
	if sb.String() != want {
		t.Fatalf("got %q, want %q", sb.String(), want)
	}
}

func TestPrintTextStruct(t *testing.T) {
	var sb strings.Builder
	data := struct {
		Chapters int    `json:"chapters"`
		Source   string `json:"source"`
		Skipped  []string
	}{Chapters: 2, Source: "tabular.xml"}

	if err := NewPrinter(&sb, FormatText).Print(context.Background(), data); err != nil {
		t.Fatalf("Print text failed: %v", err)
	}
	if sb.String() != "chapters: 2\nsource: tabular.xml\n" {
		t.Fatalf("unexpected text output: %q", sb.String())
	}
}

func TestPrintTable(t *testing.T) {
	var sb strings.Builder
	table := Table{
		Headers: []string{"A", "B"},
		Rows:    [][]string{{"1", "2"}, {"3", "4"}},
	}
	if err := NewPrinter(&sb, FormatTable).Print(context.Background(), table); err != nil {
		t.Fatalf("Print table failed: %v", err)
	}

	out := sb.String()
	if !strings.Contains(out, "A") || !strings.Contains(out, "B") {
		t.Fatalf("unexpected table headers: %s", out)
	}
	if !strings.Contains(out, "1") || !strings.Contains(out, "4") {
		t.Fatalf("unexpected table rows: %s", out)
	}
}

func TestPrintTableResultsField(t *testing.T) {
	var sb strings.Builder
	stats := testDocument().Stats()
	if err := NewPrinter(&sb, FormatTable).Print(context.Background(), stats); err != nil {
		t.Fatalf("Print table failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %q", sb.String())
	}
	if fields := strings.Fields(lines[0]); len(fields) != 4 || fields[0] != "chapter" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
}

func TestPrintTableRequiresList(t *testing.T) {
	var sb strings.Builder
	if err := NewPrinter(&sb, FormatTable).Print(context.Background(), "value"); err == nil {
		t.Fatalf("expected error for scalar table output")
	}
}

func TestApplyResultOptionsSortsMappings(t *testing.T) {
	ctx := WithSort(context.Background(), "name", false)
	got, ok := ApplyResultOptions(ctx, testDocument()).(catalog.Document)
	if !ok {
		t.Fatalf("expected catalog.Document result")
	}
	if got[0].Text(catalog.KeyName) != "1" || got[1].Text(catalog.KeyName) != "2" {
		t.Fatalf("unexpected order: %v", got)
	}

	ctx = WithSort(context.Background(), "name", true)
	got = ApplyResultOptions(ctx, testDocument()).(catalog.Document)
	if got[0].Text(catalog.KeyName) != "2" {
		t.Fatalf("unexpected descending order: %v", got)
	}
}

func TestApplyResultOptionsLimit(t *testing.T) {
	ctx := WithLimit(context.Background(), 1)
	doc := testDocument()

	got := ApplyResultOptions(ctx, doc).(catalog.Document)
	if len(got) != 1 || len(doc) != 2 {
		t.Fatalf("expected a limited copy, got %d (original %d)", len(got), len(doc))
	}

	stats := ApplyResultOptions(ctx, doc.Stats()).(catalog.Stats)
	if len(stats.Results) != 1 || stats.Chapters != 2 {
		t.Fatalf("expected limited results with totals intact, got %+v", stats)
	}
}

func TestApplyResultOptionsLeavesSingleMapping(t *testing.T) {
	ctx := WithLimit(context.Background(), 1)
	wrapped := testDocument().WithGroups(nil)

	got := ApplyResultOptions(ctx, wrapped).(catalog.Mapping)
	if len(got) != 2 {
		t.Fatalf("expected mapping fields untouched, got %v", got)
	}
}

func TestApplyResultOptionsSortsTableRows(t *testing.T) {
	table := Table{
		Headers: []string{"chapter", "section", "code", "description"},
		Rows: [][]string{
			{"1", "A00-A09", "A01", "Typhoid and paratyphoid fevers"},
			{"1", "A00-A09", "A00", "Cholera"},
			{"2", "C00-C14", "C00", "Malignant neoplasm of lip"},
		},
	}

	ctx := WithLimit(WithSort(context.Background(), "Code", true), 2)
	got := ApplyResultOptions(ctx, table).(Table)
	if len(got.Rows) != 2 || got.Rows[0][2] != "C00" || got.Rows[1][2] != "A01" {
		t.Fatalf("unexpected rows %v", got.Rows)
	}
	if table.Rows[0][2] != "A01" {
		t.Fatalf("expected input rows untouched, got %v", table.Rows)
	}
}

func TestApplyResultOptionsMissingKeysSortLast(t *testing.T) {
	data := []map[string]interface{}{
		{"name": "b"},
		{"other": "x"},
		{"name": "a"},
	}

	for _, desc := range []bool{false, true} {
		got := ApplyResultOptions(WithSort(context.Background(), "name", desc), data).([]map[string]interface{})
		if _, ok := got[2]["name"]; ok {
			t.Fatalf("desc=%v: expected entry without name last, got %v", desc, got)
		}
	}
}

func TestContextOptionsCompose(t *testing.T) {
	ctx := WithFormat(context.Background(), FormatJSON)
	ctx = WithQuery(ctx, ".[0]")
	ctx = WithLimit(ctx, 3)
	ctx = WithSort(ctx, "name", true)
	ctx = WithQuiet(ctx, true)

	if FormatFromContext(ctx) != FormatJSON || QueryFromContext(ctx) != ".[0]" || LimitFromContext(ctx) != 3 || !QuietFromContext(ctx) {
		t.Fatalf("unexpected context options")
	}
	if field, desc := SortFromContext(ctx); field != "name" || !desc {
		t.Fatalf("unexpected sort %q %v", field, desc)
	}
	if FormatFromContext(context.Background()) != FormatYAML {
		t.Fatalf("expected yaml default")
	}
}
