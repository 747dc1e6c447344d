package rules

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/goliatone/go-xlsform/pkg/form"
)

var (
	validName      = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_\-.]*$`)
	numericSuffix  = regexp.MustCompile(`^[A-Za-z_]*[A-Za-z][0-9]+$`)
	snakeCaseShape = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
)

func checkMissingName(m *Model) []Finding {
	var out []Finding
	for _, row := range m.Form.Survey {
		if row.Name != "" || row.Type.IsEmpty() || row.Type.IsEnd() {
			continue
		}
		out = append(out, Finding{
			Severity: SeverityError,
			Code:     CodeMissingName,
			Message:  fmt.Sprintf("%q question has no name", row.Type.Raw),
			Location: m.surveyLocation(row, form.ColumnName),
		})
	}
	return out
}

// checkDuplicateNames groups rows by name in one pass and reports each
// duplicated name once, listing every row that uses it.
func checkDuplicateNames(m *Model) []Finding {
	groups := make(map[string][]form.SurveyRow)
	var order []string
	for _, row := range m.Form.Survey {
		if row.Name == "" || row.Type.IsEnd() {
			continue
		}
		if _, seen := groups[row.Name]; !seen {
			order = append(order, row.Name)
		}
		groups[row.Name] = append(groups[row.Name], row)
	}

	var out []Finding
	for _, name := range order {
		rows := groups[name]
		if len(rows) < 2 {
			continue
		}
		related := make([]Location, 0, len(rows))
		for _, row := range rows {
			related = append(related, m.surveyLocation(row, form.ColumnName))
		}
		out = append(out, Finding{
			Severity: SeverityError,
			Code:     CodeDuplicateName,
			Message:  fmt.Sprintf("name %q is used %d times: %s", name, len(rows), joinLocations(related)),
			Location: related[0],
			Related:  related,
		})
	}
	return out
}

func checkInvalidNames(m *Model) []Finding {
	var out []Finding
	for _, row := range m.Form.Survey {
		if row.Name == "" || validName.MatchString(row.Name) {
			continue
		}
		out = append(out, Finding{
			Severity: SeverityError,
			Code:     CodeInvalidName,
			Message:  fmt.Sprintf("name %q must start with a letter or underscore and contain only letters, digits, \"_\", \"-\" or \".\"", row.Name),
			Location: m.surveyLocation(row, form.ColumnName),
		})
	}
	return out
}

func checkNamingConvention(m *Model) []Finding {
	var out []Finding
	for _, row := range m.Form.Survey {
		if row.Name == "" || row.Type.IsEnd() || !validName.MatchString(row.Name) {
			continue
		}
		var reasons []string
		if !snakeCaseShape.MatchString(row.Name) {
			reasons = append(reasons, fmt.Sprintf("use snake_case (%q)", SnakeCase(row.Name)))
		}
		if numericSuffix.MatchString(row.Name) {
			reasons = append(reasons, "replace the numeric suffix with a descriptive name")
		}
		if len(reasons) == 0 {
			continue
		}
		out = append(out, Finding{
			Severity: SeveritySuggestion,
			Code:     CodeNamingConvention,
			Message:  fmt.Sprintf("name %q: %s", row.Name, strings.Join(reasons, "; ")),
			Location: m.surveyLocation(row, form.ColumnName),
		})
	}
	return out
}

// SnakeCase converts camelCase, kebab-case and dotted names to snake_case.
func SnakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		switch {
		case r == '-' || r == '.' || unicode.IsSpace(r):
			b.WriteRune('_')
		case unicode.IsUpper(r):
			if i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])) {
				b.WriteRune('_')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func checkUnknownTypes(m *Model) []Finding {
	var out []Finding
	for _, row := range m.Form.Survey {
		if row.Type.IsEmpty() || row.Type.IsKnown() {
			continue
		}
		out = append(out, Finding{
			Severity: SeverityWarning,
			Code:     CodeUnknownType,
			Message:  fmt.Sprintf("type %q is not a known XLSForm question type", row.Type.Raw),
			Location: m.surveyLocation(row, form.ColumnType),
		})
	}
	return out
}

func checkMissingLabels(m *Model) []Finding {
	var out []Finding
	for _, row := range m.Form.Survey {
		if !row.Type.IsKnown() || !row.Type.NeedsLabel() || hasLabel(row) {
			continue
		}
		out = append(out, Finding{
			Severity: SeverityWarning,
			Code:     CodeMissingLabel,
			Message:  fmt.Sprintf("%s question %q has no label", row.Type.Base, row.Name),
			Location: m.surveyLocation(row, form.ColumnLabel),
		})
	}
	for _, choice := range m.Form.Choices {
		if choice.Label != "" || choice.Name == "" {
			continue
		}
		out = append(out, Finding{
			Severity: SeverityWarning,
			Code:     CodeMissingLabel,
			Message:  fmt.Sprintf("choice %q in list %q has no label", choice.Name, choice.ListName),
			Location: m.choiceLocation(choice, form.ColumnLabel),
		})
	}
	return out
}

func hasLabel(row form.SurveyRow) bool {
	if row.Label != "" {
		return true
	}
	for _, label := range row.Labels {
		if label != "" {
			return true
		}
	}
	return false
}
