package form

import (
	"strings"

	"golang.org/x/text/cases"
)

// Canonical column names.
const (
	ColumnType         = "type"
	ColumnName         = "name"
	ColumnLabel        = "label"
	ColumnHint         = "hint"
	ColumnRelevant     = "relevant"
	ColumnConstraint   = "constraint"
	ColumnCalculation  = "calculation"
	ColumnRequired     = "required"
	ColumnChoiceFilter = "choice_filter"
	ColumnRepeatCount  = "repeat_count"
	ColumnDefault      = "default"
	ColumnAppearance   = "appearance"
	ColumnParameters   = "parameters"
	ColumnListName     = "list_name"
)

var (
	requiredSurveyColumns  = []string{ColumnType, ColumnName, ColumnLabel}
	requiredChoicesColumns = []string{ColumnListName, ColumnName, ColumnLabel}
)

// Column describes one header cell.
type Column struct {
	Index  int
	Header string
	Base   string
	Lang   string
}

// headerAliases maps accepted spellings onto canonical names.
var headerAliases = map[string]string{
	"list name":      ColumnListName,
	"calculate":      ColumnCalculation,
	"choice filter":  ColumnChoiceFilter,
	"repeat count":   ColumnRepeatCount,
	"relevance":      ColumnRelevant,
	"constraint_msg": "constraint_message",
	"required_msg":   "required_message",
	"constraint msg": "constraint_message",
	"required msg":   "required_message",
}

// NormalizeHeader folds case, trims, and joins inner whitespace with
// underscores. Language suffixes ("label::English (en)") are preserved after
// the separator.
func NormalizeHeader(header string) string {
	base, lang := splitHeader(header)
	if lang == "" {
		return base
	}
	return base + "::" + lang
}

func splitHeader(header string) (string, string) {
	raw := strings.TrimSpace(header)
	if raw == "" {
		return "", ""
	}
	var lang string
	if idx := strings.Index(raw, "::"); idx >= 0 {
		lang = strings.TrimSpace(raw[idx+2:])
		raw = raw[:idx]
	}
	base := cases.Fold().String(strings.TrimSpace(raw))
	if alias, ok := headerAliases[base]; ok {
		base = alias
	}
	base = strings.Join(strings.Fields(base), "_")
	return base, lang
}

// headerIndex maps normalized header names to column positions. The first
// occurrence wins; later duplicates are recorded.
type headerIndex struct {
	columns    []Column
	byName     map[string]Column
	languages  map[string][]Column
	duplicates []string
}

func indexHeaders(headers []string) headerIndex {
	idx := headerIndex{
		byName:    make(map[string]Column),
		languages: make(map[string][]Column),
	}
	for i, header := range headers {
		base, lang := splitHeader(header)
		if base == "" {
			continue
		}
		column := Column{Index: i, Header: strings.TrimSpace(header), Base: base, Lang: lang}
		idx.columns = append(idx.columns, column)

		key := base
		if lang != "" {
			key = base + "::" + lang
			idx.languages[base] = append(idx.languages[base], column)
		}
		if _, exists := idx.byName[key]; exists {
			idx.duplicates = append(idx.duplicates, column.Header)
			continue
		}
		idx.byName[key] = column
	}
	return idx
}

// lookup returns the bare column, falling back to the first language variant.
func (h headerIndex) lookup(name string) (Column, bool) {
	if column, ok := h.byName[name]; ok {
		return column, true
	}
	if variants := h.languages[name]; len(variants) > 0 {
		return variants[0], true
	}
	return Column{}, false
}

func (h headerIndex) missing(required []string) []string {
	var out []string
	for _, name := range required {
		if _, ok := h.lookup(name); !ok {
			out = append(out, name)
		}
	}
	return out
}
