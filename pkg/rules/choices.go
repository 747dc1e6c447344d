package rules

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"

	"github.com/goliatone/go-xlsform/pkg/form"
)

func checkMissingChoicesSheet(m *Model) []Finding {
	if m.Form.HasChoices {
		return nil
	}
	for _, row := range m.Form.Survey {
		if row.Type.IsSelect() {
			return []Finding{{
				Severity: SeverityWarning,
				Code:     CodeMissingChoicesSheet,
				Message:  "survey has select questions but the workbook has no choices sheet",
				Location: m.workbookLocation(),
			}}
		}
	}
	return nil
}

// checkUnresolvedLists reports each undefined list once, with every select row
// that references it.
func checkUnresolvedLists(m *Model) []Finding {
	res := m.Resolution
	byList := make(map[string][]Location)
	var order []string
	var out []Finding
	for _, ref := range res.Unresolved {
		row := m.Form.Survey[ref.Index]
		loc := m.surveyLocation(row, form.ColumnType)
		if ref.List == "" {
			out = append(out, Finding{
				Severity: SeverityError,
				Code:     CodeUnresolvedList,
				Message:  fmt.Sprintf("%s question %q does not name a choice list", row.Type.Base, row.Name),
				Location: loc,
			})
			continue
		}
		if _, seen := byList[ref.List]; !seen {
			order = append(order, ref.List)
		}
		byList[ref.List] = append(byList[ref.List], loc)
	}

	for _, list := range order {
		locs := byList[list]
		msg := fmt.Sprintf("choice list %q is not defined in the choices sheet (used at %s)", list, joinLocations(locs))
		if near := closest(list, res.ListOrder); near != "" {
			msg += fmt.Sprintf("; did you mean %q?", near)
		}
		out = append(out, Finding{
			Severity: SeverityError,
			Code:     CodeUnresolvedList,
			Message:  msg,
			Location: locs[0],
			Related:  locs,
		})
	}
	return out
}

func checkOrphanedLists(m *Model) []Finding {
	res := m.Resolution
	var out []Finding
	for _, name := range res.ListOrder {
		if _, used := res.Referenced[name]; used {
			continue
		}
		list := res.Lists[name]
		out = append(out, Finding{
			Severity: SeverityWarning,
			Code:     CodeOrphanedList,
			Message:  fmt.Sprintf("choice list %q is never used by a select question", name),
			Location: Location{Source: list.Source, Sheet: sheetChoices, Row: list.Row, Column: form.ColumnListName},
		})
	}
	return out
}

func checkDuplicateChoices(m *Model) []Finding {
	var out []Finding
	for _, name := range m.Resolution.ListOrder {
		list := m.Resolution.Lists[name]
		groups := make(map[string][]Location)
		var order []string
		for _, choice := range list.Choices {
			if choice.Name == "" {
				continue
			}
			if _, seen := groups[choice.Name]; !seen {
				order = append(order, choice.Name)
			}
			groups[choice.Name] = append(groups[choice.Name], m.choiceLocation(choice, form.ColumnName))
		}
		for _, choice := range order {
			locs := groups[choice]
			if len(locs) < 2 {
				continue
			}
			out = append(out, Finding{
				Severity: SeverityError,
				Code:     CodeDuplicateChoiceName,
				Message:  fmt.Sprintf("choice %q appears %d times in list %q: %s", choice, len(locs), name, joinLocations(locs)),
				Location: locs[0],
				Related:  locs,
			})
		}
	}
	return out
}

// checkChoiceSpaces flags choice names containing whitespace in lists used by
// select_multiple, whose answers are stored space-separated.
func checkChoiceSpaces(m *Model) []Finding {
	res := m.Resolution
	multi := make(map[string]struct{})
	for idx, list := range res.Selects {
		if m.Form.Survey[idx].Type.IsSelectMultiple() {
			multi[list.Name] = struct{}{}
		}
	}
	var out []Finding
	for _, name := range res.ListOrder {
		if _, ok := multi[name]; !ok {
			continue
		}
		for _, choice := range res.Lists[name].Choices {
			if !strings.ContainsFunc(choice.Name, unicode.IsSpace) {
				continue
			}
			out = append(out, Finding{
				Severity: SeverityError,
				Code:     CodeChoiceSpace,
				Message:  fmt.Sprintf("choice %q in list %q contains whitespace but the list is used by select_multiple", choice.Name, name),
				Location: m.choiceLocation(choice, form.ColumnName),
			})
		}
	}
	return out
}

// closest returns the candidate within edit distance two of name, preferring
// the smallest distance and then lexical order.
func closest(name string, candidates []string) string {
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)
	best, bestDist := "", 3
	for _, candidate := range sorted {
		if d := levenshtein.ComputeDistance(name, candidate); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}
