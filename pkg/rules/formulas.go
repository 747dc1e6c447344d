package rules

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-xlsform/pkg/form"
	"github.com/goliatone/go-xlsform/pkg/resolve"
)

func checkCycles(m *Model) []Finding {
	res := m.Resolution
	var out []Finding
	for _, cycle := range res.CycleErrors() {
		var related []Location
		for _, name := range cycle.Path[:len(cycle.Path)-1] {
			idx, ok := res.Names[name]
			if !ok {
				continue
			}
			related = append(related, m.surveyLocation(m.Form.Survey[idx], form.ColumnName))
		}
		if len(related) == 0 {
			continue
		}
		out = append(out, Finding{
			Severity: SeverityError,
			Code:     CodeCircularDependency,
			Message:  "circular dependency: " + strings.Join(cycle.Path, " -> "),
			Location: related[0],
			Related:  related,
		})
	}
	return out
}

func checkUnknownReferences(m *Model) []Finding {
	res := m.Resolution
	names := make([]string, 0, len(res.Names))
	for name := range res.Names {
		names = append(names, name)
	}
	var out []Finding
	for _, ref := range res.UnknownRefs {
		msg := fmt.Sprintf("${%s} in %s does not match any question name", ref.Name, ref.Column)
		if near := closest(ref.Name, names); near != "" {
			msg += fmt.Sprintf("; did you mean ${%s}?", near)
		}
		out = append(out, Finding{
			Severity: SeverityError,
			Code:     CodeUnknownReference,
			Message:  msg,
			Location: Location{Source: ref.Source, Sheet: sheetSurvey, Row: ref.Row, Column: ref.Column},
		})
	}
	return out
}

// checkFormulaSyntax reports malformed ${} usages and unbalanced parentheses
// or string literals in every expression column.
func checkFormulaSyntax(m *Model) []Finding {
	var out []Finding
	for _, issue := range m.Resolution.Malformed {
		severity := SeverityError
		if issue.Reason == resolve.IssueBareDollar {
			severity = SeverityWarning
		}
		out = append(out, Finding{
			Severity: severity,
			Code:     CodeFormulaSyntax,
			Message:  fmt.Sprintf("%s: %s", issue.Column, issue.Reason),
			Location: Location{Source: issue.Source, Sheet: sheetSurvey, Row: issue.Row, Column: issue.Column},
		})
	}
	for _, row := range m.Form.Survey {
		for _, formula := range row.Formulas() {
			problem := balance(formula.Expr)
			if problem == "" {
				continue
			}
			out = append(out, Finding{
				Severity: SeverityError,
				Code:     CodeFormulaSyntax,
				Message:  fmt.Sprintf("%s: %s in %q", formula.Column, problem, formula.Expr),
				Location: m.surveyLocation(row, formula.Column),
			})
		}
	}
	return out
}

// balance checks parentheses outside string literals and that every literal
// is closed. It returns "" for a balanced expression.
func balance(expr string) string {
	var (
		depth int
		quote rune
	)
	for _, r := range expr {
		if quote != 0 {
			if r == quote {
				quote = 0
			}
			continue
		}
		switch r {
		case '\'', '"':
			quote = r
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return "unexpected \")\""
			}
		}
	}
	if quote != 0 {
		return "unterminated string literal"
	}
	if depth > 0 {
		return "unclosed \"(\""
	}
	return ""
}
