package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-xlsform/pkg/form"
)

var tagPattern = regexp.MustCompile(`</?([A-Za-z][A-Za-z0-9]*)[\s/>]`)

// LabelPolicy is the markup subset ODK clients render in labels and hints.
func LabelPolicy() *bluemonday.Policy {
	policy := bluemonday.NewPolicy()
	policy.AllowElements("b", "i", "u", "em", "strong", "br", "p", "sup", "sub", "span")
	policy.AllowAttrs("style").OnElements("span", "p")
	return policy
}

// LabelMarkup reports labels and hints whose HTML tags the policy strips.
func LabelMarkup(policy *bluemonday.Policy) Rule {
	if policy == nil {
		policy = LabelPolicy()
	}
	return RuleFunc{ID: CodeLabelMarkup, Fn: func(m *Model) []Finding {
		var out []Finding
		report := func(loc Location, text string) {
			stripped := strippedTags(policy, text)
			if len(stripped) == 0 {
				return
			}
			out = append(out, Finding{
				Severity: SeverityWarning,
				Code:     CodeLabelMarkup,
				Message:  fmt.Sprintf("unsupported markup <%s> will not render", strings.Join(stripped, ">, <")),
				Location: loc,
			})
		}
		for _, row := range m.Form.Survey {
			report(m.surveyLocation(row, form.ColumnLabel), row.Label)
			langs := make([]string, 0, len(row.Labels))
			for lang := range row.Labels {
				langs = append(langs, lang)
			}
			sort.Strings(langs)
			for _, lang := range langs {
				if row.Labels[lang] == row.Label {
					continue
				}
				report(m.surveyLocation(row, form.ColumnLabel+"::"+lang), row.Labels[lang])
			}
			report(m.surveyLocation(row, form.ColumnHint), row.Hint)
		}
		for _, choice := range m.Form.Choices {
			report(m.choiceLocation(choice, form.ColumnLabel), choice.Label)
		}
		return out
	}}
}

// strippedTags returns the distinct tag names present in text but removed by
// the policy, in order of appearance.
func strippedTags(policy *bluemonday.Policy, text string) []string {
	if !strings.Contains(text, "<") {
		return nil
	}
	kept := make(map[string]struct{})
	for _, tag := range tagNames(policy.Sanitize(text)) {
		kept[tag] = struct{}{}
	}
	var out []string
	seen := make(map[string]struct{})
	for _, tag := range tagNames(text) {
		if _, ok := kept[tag]; ok {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func tagNames(text string) []string {
	matches := tagPattern.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, match := range matches {
		out = append(out, strings.ToLower(match[1]))
	}
	return out
}
