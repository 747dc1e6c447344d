package rules

import (
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-xlsform/pkg/workbook"
)

// Severity ranks a finding. Only errors make a form invalid.
type Severity string

const (
	SeverityError      Severity = "error"
	SeverityWarning    Severity = "warning"
	SeveritySuggestion Severity = "suggestion"
)

// SheetExternal labels findings produced by the external validator.
const SheetExternal = "external"

// Location points at a sheet cell. Row is the 1-based spreadsheet row and zero
// when the finding concerns a whole sheet; an empty Sheet means the workbook.
type Location struct {
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	Sheet  string `json:"sheet,omitempty" yaml:"sheet,omitempty"`
	Row    int    `json:"row,omitempty" yaml:"row,omitempty"`
	Column string `json:"column,omitempty" yaml:"column,omitempty"`
}

func (l Location) String() string {
	var b strings.Builder
	if l.Source != "" {
		b.WriteString(l.Source)
		b.WriteString(": ")
	}
	if l.Sheet == "" {
		b.WriteString("workbook")
	} else {
		b.WriteString(l.Sheet)
	}
	if l.Row > 0 {
		b.WriteString(" row ")
		b.WriteString(strconv.Itoa(l.Row))
	}
	if l.Column != "" {
		b.WriteString(" [")
		b.WriteString(l.Column)
		b.WriteString("]")
	}
	return b.String()
}

// Finding is a single rule violation.
type Finding struct {
	Severity Severity   `json:"severity" yaml:"severity"`
	Code     string     `json:"code" yaml:"code"`
	Message  string     `json:"message" yaml:"message"`
	Location Location   `json:"location" yaml:"location"`
	Related  []Location `json:"related,omitempty" yaml:"related,omitempty"`
}

var sheetRank = map[string]int{
	"":                     0,
	workbook.SheetSurvey:   1,
	workbook.SheetChoices:  2,
	workbook.SheetSettings: 3,
	SheetExternal:          4,
}

func rankOf(sheet string) int {
	if rank, ok := sheetRank[sheet]; ok {
		return rank
	}
	return len(sheetRank)
}

// Less orders findings by source, sheet, row, code, column, then message.
func Less(a, b Finding) bool {
	la, lb := a.Location, b.Location
	if la.Source != lb.Source {
		return la.Source < lb.Source
	}
	if ra, rb := rankOf(la.Sheet), rankOf(lb.Sheet); ra != rb {
		return ra < rb
	}
	if la.Sheet != lb.Sheet {
		return la.Sheet < lb.Sheet
	}
	if la.Row != lb.Row {
		return la.Row < lb.Row
	}
	if a.Code != b.Code {
		return a.Code < b.Code
	}
	if la.Column != lb.Column {
		return la.Column < lb.Column
	}
	if a.Message != b.Message {
		return a.Message < b.Message
	}
	return a.Severity < b.Severity
}

// Sort orders findings in place using Less.
func Sort(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		return Less(findings[i], findings[j])
	})
}

// Count tallies findings by severity.
func Count(findings []Finding) (errs, warnings, suggestions int) {
	for _, finding := range findings {
		switch finding.Severity {
		case SeverityError:
			errs++
		case SeverityWarning:
			warnings++
		case SeveritySuggestion:
			suggestions++
		}
	}
	return errs, warnings, suggestions
}

// Filter returns the findings whose code is in codes.
func Filter(findings []Finding, codes ...string) []Finding {
	if len(codes) == 0 {
		return nil
	}
	keep := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		keep[code] = struct{}{}
	}
	var out []Finding
	for _, finding := range findings {
		if _, ok := keep[finding.Code]; ok {
			out = append(out, finding)
		}
	}
	return out
}

func joinLocations(locs []Location) string {
	parts := make([]string, 0, len(locs))
	for _, loc := range locs {
		parts = append(parts, loc.String())
	}
	return strings.Join(parts, ", ")
}
