package form

import "testing"

func TestNormalizeHeader(t *testing.T) {
	cases := map[string]string{
		" Type ":              "type",
		"List Name":           "list_name",
		"LABEL::English (en)": "label::English (en)",
		"Choice Filter":       "choice_filter",
		"calculate":           "calculation",
		"media::image":        "media::image",
		"":                    "",
	}
	for in, want := range cases {
		if got := NormalizeHeader(in); got != want {
			t.Fatalf("NormalizeHeader(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIndexHeadersFallsBackToLanguageColumn(t *testing.T) {
	idx := indexHeaders([]string{"type", "name", "label::French (fr)", "label::English (en)"})
	column, ok := idx.lookup(ColumnLabel)
	if !ok {
		t.Fatalf("expected label lookup to use the first language column")
	}
	if column.Index != 2 || column.Lang != "French (fr)" {
		t.Fatalf("unexpected label column %+v", column)
	}
	if missing := idx.missing(requiredSurveyColumns); len(missing) != 0 {
		t.Fatalf("unexpected missing columns %v", missing)
	}
}

func TestIndexHeadersRecordsDuplicates(t *testing.T) {
	idx := indexHeaders([]string{"type", "name", "label", "Label"})
	if len(idx.duplicates) != 1 || idx.duplicates[0] != "Label" {
		t.Fatalf("expected Label duplicate, got %v", idx.duplicates)
	}
	column, _ := idx.lookup(ColumnLabel)
	if column.Index != 2 {
		t.Fatalf("first occurrence should win, got index %d", column.Index)
	}
}
