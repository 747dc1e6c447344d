package rules

import (
	"github.com/goliatone/go-xlsform/pkg/form"
	"github.com/goliatone/go-xlsform/pkg/resolve"
)

// Model is the read-only input every rule inspects.
type Model struct {
	Form       *form.Form
	Resolution *resolve.Resolution
}

// NewModel resolves f and wraps both views. A nil form yields an empty model.
func NewModel(f *form.Form) *Model {
	if f == nil {
		f = &form.Form{}
	}
	return &Model{Form: f, Resolution: resolve.Resolve(f)}
}

// Rule checks one aspect of a form.
type Rule interface {
	Code() string
	Check(m *Model) []Finding
}

// RuleFunc adapts a function into a Rule.
type RuleFunc struct {
	ID string
	Fn func(m *Model) []Finding
}

var _ Rule = RuleFunc{}

func (r RuleFunc) Code() string { return r.ID }

func (r RuleFunc) Check(m *Model) []Finding {
	if r.Fn == nil || m == nil {
		return nil
	}
	return r.Fn(m)
}

func (m *Model) surveyLocation(row form.SurveyRow, column string) Location {
	return Location{Source: row.Source, Sheet: sheetSurvey, Row: row.Row, Column: column}
}

func (m *Model) choiceLocation(row form.ChoiceRow, column string) Location {
	return Location{Source: row.Source, Sheet: sheetChoices, Row: row.Row, Column: column}
}

func (m *Model) settingsLocation(column string) Location {
	row := m.Form.Settings.Row
	if row == 0 {
		row = 2
	}
	source := m.Form.Settings.Source
	if source == "" {
		source = m.Form.Source
	}
	return Location{Source: source, Sheet: sheetSettings, Row: row, Column: column}
}

func (m *Model) workbookLocation() Location {
	return Location{Source: m.Form.Source}
}
