package testsupport

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/goliatone/go-xlsform/pkg/workbook"
)

// Sheet builds a sheet whose first row is header followed by rows.
func Sheet(name string, header []string, rows ...[]string) *workbook.Sheet {
	all := make([][]string, 0, len(rows)+1)
	all = append(all, append([]string(nil), header...))
	for _, row := range rows {
		all = append(all, append([]string(nil), row...))
	}
	return &workbook.Sheet{Name: name, Rows: all}
}

// Survey builds a survey sheet with type/name/label columns.
func Survey(rows ...[]string) *workbook.Sheet {
	return Sheet(workbook.SheetSurvey, []string{"type", "name", "label"}, rows...)
}

// Choices builds a choices sheet with list_name/name/label columns.
func Choices(rows ...[]string) *workbook.Sheet {
	return Sheet(workbook.SheetChoices, []string{"list_name", "name", "label"}, rows...)
}

// Settings builds a single-row settings sheet preserving key order.
func Settings(keys []string, values []string) *workbook.Sheet {
	return Sheet(workbook.SheetSettings, keys, values)
}

// Workbook assembles an in-memory workbook, failing the test on error.
func Workbook(t *testing.T, name string, sheets ...*workbook.Sheet) *workbook.Workbook {
	t.Helper()

	wb, err := workbook.New(workbook.SourceFromMemory(name), sheets...)
	if err != nil {
		t.Fatalf("build workbook: %v", err)
	}
	return wb
}

// WriteXLSX persists sheets to an .xlsx file at path using excelize. Formulas
// are written as formula cells so loaders see them the way spreadsheet editors
// store them.
func WriteXLSX(t *testing.T, path string, sheets ...*workbook.Sheet) {
	t.Helper()

	file := excelize.NewFile()
	defer func() {
		_ = file.Close()
	}()

	for idx, sheet := range sheets {
		if idx == 0 {
			if err := file.SetSheetName("Sheet1", sheet.Name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := file.NewSheet(sheet.Name); err != nil {
			t.Fatalf("new sheet %q: %v", sheet.Name, err)
		}

		for r, row := range sheet.Rows {
			for c, value := range row {
				if value == "" {
					continue
				}
				if err := file.SetCellValue(sheet.Name, workbook.CellName(r, c), value); err != nil {
					t.Fatalf("set cell: %v", err)
				}
			}
		}
		for cell, formula := range sheet.Formulas {
			if err := file.SetCellFormula(sheet.Name, cell, formula); err != nil {
				t.Fatalf("set formula: %v", err)
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir fixture dir: %v", err)
	}
	if err := file.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any, opts ...cmp.Option) string {
	return cmp.Diff(want, got, opts...)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
