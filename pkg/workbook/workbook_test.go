package workbook

import "testing"

func TestColumnName(t *testing.T) {
	cases := map[int]string{
		0:   "A",
		25:  "Z",
		26:  "AA",
		51:  "AZ",
		52:  "BA",
		701: "ZZ",
		702: "AAA",
	}
	for col, want := range cases {
		if got := ColumnName(col); got != want {
			t.Fatalf("ColumnName(%d) = %q, want %q", col, got, want)
		}
	}
	if got := CellName(1, 2); got != "C2" {
		t.Fatalf("CellName(1, 2) = %q, want C2", got)
	}
}

func TestWorkbookSheetLookupIgnoresCase(t *testing.T) {
	wb := MustNew(SourceFromMemory("form"),
		&Sheet{Name: "Survey", Rows: [][]string{{"type", "name", "label"}}},
		&Sheet{Name: " choices ", Rows: [][]string{{"list_name", "name", "label"}}},
	)

	if _, ok := wb.Sheet("survey"); !ok {
		t.Fatalf("expected survey sheet lookup to ignore case")
	}
	if _, ok := wb.Sheet("CHOICES"); !ok {
		t.Fatalf("expected choices sheet lookup to ignore whitespace")
	}
	if _, ok := wb.Sheet("settings"); ok {
		t.Fatalf("did not expect settings sheet")
	}
	if got := wb.Location(); got != "form" {
		t.Fatalf("location = %q, want form", got)
	}
}

func TestNewRejectsDuplicateSheets(t *testing.T) {
	_, err := New(SourceFromMemory("form"),
		&Sheet{Name: "survey"},
		&Sheet{Name: "SURVEY"},
	)
	if err == nil {
		t.Fatalf("expected duplicate sheet error")
	}
}

func TestSheetCellAndFormula(t *testing.T) {
	sheet := &Sheet{
		Name:     "settings",
		Rows:     [][]string{{"form_title", "version"}, {"  Household  "}},
		Formulas: map[string]string{"B2": `TEXT(NOW(), "yyyymmddhhmmss")`},
	}
	if got := sheet.Cell(1, 0); got != "Household" {
		t.Fatalf("cell = %q, want trimmed value", got)
	}
	if got := sheet.Cell(1, 5); got != "" {
		t.Fatalf("expected empty value outside ragged row, got %q", got)
	}
	formula, ok := sheet.Formula(1, 1)
	if !ok || formula == "" {
		t.Fatalf("expected formula at B2")
	}
}

func TestStem(t *testing.T) {
	if got := Stem(SourceFromFile("/tmp/forms/household_survey.xlsx")); got != "household_survey" {
		t.Fatalf("stem = %q", got)
	}
}
