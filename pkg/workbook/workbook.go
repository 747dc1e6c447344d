package workbook

import (
	"errors"
	"strconv"
	"strings"
)

// Well-known XLSForm sheet names.
const (
	SheetSurvey   = "survey"
	SheetChoices  = "choices"
	SheetSettings = "settings"
)

// Sheet is one named table. Rows[0] is the header row; rows are ragged, with
// trailing empty cells trimmed by the reader. Formulas maps A1-style cell names
// to formula text (without the leading "=") for cells that hold one.
type Sheet struct {
	Name     string
	Rows     [][]string
	Formulas map[string]string
}

// Cell returns the trimmed value at the zero-based row/column, or "" when the
// position lies outside the stored data.
func (s *Sheet) Cell(row, col int) string {
	if s == nil || row < 0 || row >= len(s.Rows) {
		return ""
	}
	cells := s.Rows[row]
	if col < 0 || col >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[col])
}

// Formula returns the formula stored at the zero-based row/column.
func (s *Sheet) Formula(row, col int) (string, bool) {
	if s == nil || len(s.Formulas) == 0 {
		return "", false
	}
	formula, ok := s.Formulas[CellName(row, col)]
	return formula, ok
}

// Workbook wraps the ordered sheets read from a Source.
type Workbook struct {
	source Source
	sheets []*Sheet
}

// New assembles a workbook from sheets. Sheet names must be unique
// (case-insensitive).
func New(src Source, sheets ...*Sheet) (*Workbook, error) {
	if src == nil {
		return nil, errors.New("workbook: source is required")
	}
	seen := make(map[string]struct{}, len(sheets))
	out := make([]*Sheet, 0, len(sheets))
	for _, sheet := range sheets {
		if sheet == nil {
			continue
		}
		key := normalizeSheetName(sheet.Name)
		if key == "" {
			return nil, errors.New("workbook: sheet name is required")
		}
		if _, exists := seen[key]; exists {
			return nil, errors.New("workbook: duplicate sheet " + strconv.Quote(sheet.Name))
		}
		seen[key] = struct{}{}
		out = append(out, sheet)
	}
	return &Workbook{source: src, sheets: out}, nil
}

// MustNew panics if the workbook cannot be created. Useful for tests.
func MustNew(src Source, sheets ...*Sheet) *Workbook {
	wb, err := New(src, sheets...)
	if err != nil {
		panic(err)
	}
	return wb
}

// Source returns the origin metadata for the workbook.
func (w *Workbook) Source() Source {
	if w == nil {
		return nil
	}
	return w.source
}

// Location returns the string identifier for the origin.
func (w *Workbook) Location() string {
	if w == nil || w.source == nil {
		return ""
	}
	return w.source.Location()
}

// Sheet looks a sheet up by name, ignoring case and surrounding whitespace.
func (w *Workbook) Sheet(name string) (*Sheet, bool) {
	if w == nil {
		return nil, false
	}
	key := normalizeSheetName(name)
	for _, sheet := range w.sheets {
		if normalizeSheetName(sheet.Name) == key {
			return sheet, true
		}
	}
	return nil, false
}

// SheetNames lists sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	if w == nil {
		return nil
	}
	names := make([]string, 0, len(w.sheets))
	for _, sheet := range w.sheets {
		names = append(names, sheet.Name)
	}
	return names
}

// CellName converts zero-based row/column indexes into an A1 reference.
func CellName(row, col int) string {
	return ColumnName(col) + strconv.Itoa(row+1)
}

// ColumnName converts a zero-based column index into spreadsheet letters.
func ColumnName(col int) string {
	if col < 0 {
		return ""
	}
	var buf []byte
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		buf = append([]byte{byte('A' + (n-1)%26)}, buf...)
	}
	return string(buf)
}

func normalizeSheetName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
