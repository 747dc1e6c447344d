package rules

import (
	"fmt"

	"github.com/goliatone/go-xlsform/pkg/form"
	"github.com/goliatone/go-xlsform/pkg/workbook"
)

var layoutOrder = []string{sheetSurvey, sheetChoices, sheetSettings}

func checkNesting(m *Model) []Finding {
	res := m.Resolution
	var out []Finding
	if nest := res.Nesting; nest != nil {
		finding := Finding{
			Severity: SeverityError,
			Code:     CodeNesting,
			Message:  nest.Error(),
			Location: Location{Source: nest.Source, Sheet: sheetSurvey, Row: nest.Row, Column: form.ColumnType},
		}
		if nest.OpenedAt > 0 {
			finding.Related = []Location{{Source: nest.Source, Sheet: sheetSurvey, Row: nest.OpenedAt, Column: form.ColumnType}}
		}
		out = append(out, finding)
	}
	for _, frame := range res.Unclosed {
		out = append(out, Finding{
			Severity: SeverityError,
			Code:     CodeNesting,
			Message:  fmt.Sprintf("begin %s %q at row %d is never closed", frame.Structure, frame.Name, frame.Row),
			Location: Location{Source: frame.Source, Sheet: sheetSurvey, Row: frame.Row, Column: form.ColumnType},
		})
	}
	return out
}

// BlankBlocks reports runs of at least threshold blank rows inside a sheet,
// and equally long runs of blank header columns.
func BlankBlocks(threshold int) Rule {
	if threshold <= 0 {
		threshold = DefaultBlankRunThreshold
	}
	return RuleFunc{ID: CodeBlankBlock, Fn: func(m *Model) []Finding {
		var out []Finding
		for _, name := range layoutOrder {
			layout, ok := m.Form.Layouts[name]
			if !ok {
				continue
			}
			for _, run := range layout.BlankRuns {
				if run.Length < threshold {
					continue
				}
				out = append(out, Finding{
					Severity: SeverityWarning,
					Code:     CodeBlankBlock,
					Message:  fmt.Sprintf("%d consecutive blank rows (rows %d-%d)", run.Length, run.Start, run.Start+run.Length-1),
					Location: Location{Source: m.Form.Source, Sheet: name, Row: run.Start},
				})
			}
			for _, run := range layout.BlankColumnRuns {
				if run.Length < threshold {
					continue
				}
				first := workbook.ColumnName(run.Start - 1)
				last := workbook.ColumnName(run.Start + run.Length - 2)
				out = append(out, Finding{
					Severity: SeverityWarning,
					Code:     CodeBlankBlock,
					Message:  fmt.Sprintf("%d consecutive blank header columns (%s-%s)", run.Length, first, last),
					Location: Location{Source: m.Form.Source, Sheet: name, Row: 1, Column: first},
				})
			}
		}
		return out
	}}
}

func checkDuplicateColumns(m *Model) []Finding {
	var out []Finding
	for _, name := range layoutOrder {
		layout, ok := m.Form.Layouts[name]
		if !ok {
			continue
		}
		for _, header := range layout.DuplicateHeaders {
			out = append(out, Finding{
				Severity: SeverityWarning,
				Code:     CodeDuplicateColumn,
				Message:  fmt.Sprintf("column %q appears more than once; only the first is read", header),
				Location: Location{Source: m.Form.Source, Sheet: name, Row: 1, Column: header},
			})
		}
	}
	return out
}
