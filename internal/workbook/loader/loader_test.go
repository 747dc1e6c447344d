package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-xlsform/pkg/testsupport"
	"github.com/goliatone/go-xlsform/pkg/workbook"
)

func writeFixture(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "household.xlsx")
	settings := testsupport.Settings([]string{"form_title", "form_id", "version"}, []string{"Household", "household"})
	settings.Formulas = map[string]string{"C2": `TEXT(NOW(), "yyyymmddhhmmss")`}
	testsupport.WriteXLSX(t, path,
		testsupport.Survey(
			[]string{"text", "respondent", "Respondent name"},
			[]string{"select_one yes_no", "consent", "Consent?"},
		),
		testsupport.Choices(
			[]string{"yes_no", "yes", "Yes"},
			[]string{"yes_no", "no", "No"},
		),
		settings,
	)
	return path
}

func TestLoaderReadsSheetsFromFile(t *testing.T) {
	path := writeFixture(t)

	l := New(workbook.NewLoaderOptions())
	wb, err := l.Load(context.Background(), workbook.SourceFromFile(path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if diff := cmp.Diff([]string{"survey", "choices", "settings"}, wb.SheetNames()); diff != "" {
		t.Fatalf("sheet names mismatch (-want +got):\n%s", diff)
	}

	survey, _ := wb.Sheet("survey")
	want := [][]string{
		{"type", "name", "label"},
		{"text", "respondent", "Respondent name"},
		{"select_one yes_no", "consent", "Consent?"},
	}
	if diff := cmp.Diff(want, survey.Rows); diff != "" {
		t.Fatalf("survey rows mismatch (-want +got):\n%s", diff)
	}

	settings, _ := wb.Sheet("settings")
	formula, ok := settings.Formula(1, 2)
	if !ok {
		t.Fatalf("expected version formula to be captured")
	}
	if formula != `TEXT(NOW(), "yyyymmddhhmmss")` {
		t.Fatalf("unexpected formula %q", formula)
	}
	if survey.Formulas != nil {
		t.Fatalf("formulas should only be read for configured sheets")
	}
}

func TestLoaderReadsFromFS(t *testing.T) {
	path := writeFixture(t)

	l := New(workbook.NewLoaderOptions(workbook.WithFileSystem(os.DirFS(filepath.Dir(path)))))
	wb, err := l.Load(context.Background(), workbook.SourceFromFS(filepath.Base(path)))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := wb.Sheet("choices"); !ok {
		t.Fatalf("expected choices sheet")
	}
}

func TestLoaderMaxRows(t *testing.T) {
	path := writeFixture(t)

	l := New(workbook.NewLoaderOptions(workbook.WithMaxRows(2)))
	wb, err := l.Load(context.Background(), workbook.SourceFromFile(path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	survey, _ := wb.Sheet("survey")
	if len(survey.Rows) != 2 {
		t.Fatalf("expected rows to be capped at 2, got %d", len(survey.Rows))
	}
}

func TestLoaderErrors(t *testing.T) {
	l := New(workbook.NewLoaderOptions())
	ctx := context.Background()

	if _, err := l.Load(ctx, nil); err == nil {
		t.Fatalf("expected error for nil source")
	}
	if _, err := l.Load(ctx, workbook.SourceFromFS("form.xlsx")); err == nil {
		t.Fatalf("expected error when filesystem is not configured")
	}
	if _, err := l.Load(ctx, workbook.SourceFromFile(filepath.Join(t.TempDir(), "missing.xlsx"))); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := l.Load(ctx, workbook.SourceFromMemory("chunk")); err == nil {
		t.Fatalf("expected error for memory sources")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := l.Load(cancelled, workbook.SourceFromFile(writeFixture(t))); err == nil {
		t.Fatalf("expected context error")
	}
}
