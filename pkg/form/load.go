package form

import (
	"strings"

	"github.com/goliatone/go-xlsform/pkg/workbook"
)

// surveyColumns lists headers mapped onto dedicated SurveyRow fields.
var surveyColumns = map[string]struct{}{
	ColumnType: {}, ColumnName: {}, ColumnLabel: {}, ColumnHint: {},
	ColumnRelevant: {}, ColumnConstraint: {}, ColumnCalculation: {}, ColumnRequired: {},
	ColumnChoiceFilter: {}, ColumnRepeatCount: {}, ColumnDefault: {},
	ColumnAppearance: {}, ColumnParameters: {},
}

// Load reads the survey, choices, and settings sheets into a Form. The survey
// sheet and its type/name/label columns are required, as are the
// list_name/name/label columns when a choices sheet exists.
func Load(wb *workbook.Workbook) (*Form, error) {
	if wb == nil {
		return nil, errWorkbookNil
	}

	surveySheet, ok := wb.Sheet(workbook.SheetSurvey)
	if !ok {
		return nil, &MalformedWorkbookError{Sheet: workbook.SheetSurvey}
	}
	surveyIdx := indexHeaders(headerRow(surveySheet))
	if missing := surveyIdx.missing(requiredSurveyColumns); len(missing) > 0 {
		return nil, &MalformedWorkbookError{Sheet: workbook.SheetSurvey, Columns: missing}
	}

	choicesSheet, hasChoices := wb.Sheet(workbook.SheetChoices)
	var choicesIdx headerIndex
	if hasChoices {
		choicesIdx = indexHeaders(headerRow(choicesSheet))
		if missing := choicesIdx.missing(requiredChoicesColumns); len(missing) > 0 {
			return nil, &MalformedWorkbookError{Sheet: workbook.SheetChoices, Columns: missing}
		}
	}

	source := wb.Location()
	f := &Form{
		Source:     source,
		HasChoices: hasChoices,
		Layouts:    make(map[string]SheetLayout, 3),
	}

	layout := newLayout(workbook.SheetSurvey, surveySheet, surveyIdx)
	layout.BlankRuns = walkRows(surveySheet, func(row int, cells []string) {
		f.Survey = append(f.Survey, readSurveyRow(surveyIdx, cells, source, row))
	})
	f.Layouts[workbook.SheetSurvey] = layout

	if hasChoices {
		layout := newLayout(workbook.SheetChoices, choicesSheet, choicesIdx)
		layout.BlankRuns = walkRows(choicesSheet, func(row int, cells []string) {
			f.Choices = append(f.Choices, readChoiceRow(choicesIdx, cells, source, row))
		})
		f.Layouts[workbook.SheetChoices] = layout
	}

	if settingsSheet, ok := wb.Sheet(workbook.SheetSettings); ok {
		idx := indexHeaders(headerRow(settingsSheet))
		f.HasSettings = true
		f.Settings = readSettings(idx, settingsSheet, source)
		f.Layouts[workbook.SheetSettings] = newLayout(workbook.SheetSettings, settingsSheet, idx)
	}

	return f, nil
}

func headerRow(sheet *workbook.Sheet) []string {
	if sheet == nil || len(sheet.Rows) == 0 {
		return nil
	}
	return sheet.Rows[0]
}

// walkRows visits every non-blank data row with its 1-based spreadsheet row
// number and returns the runs of blank rows that sit between data rows.
func walkRows(sheet *workbook.Sheet, visit func(row int, cells []string)) []Run {
	var (
		runs       []Run
		blankStart int
		blankLen   int
	)
	for i := 1; i < len(sheet.Rows); i++ {
		cells := sheet.Rows[i]
		if isBlank(cells) {
			if blankLen == 0 {
				blankStart = i + 1
			}
			blankLen++
			continue
		}
		if blankLen > 0 {
			runs = append(runs, Run{Start: blankStart, Length: blankLen})
			blankLen = 0
		}
		visit(i+1, cells)
	}
	return runs
}

func newLayout(name string, sheet *workbook.Sheet, idx headerIndex) SheetLayout {
	headers := headerRow(sheet)
	layout := SheetLayout{
		Name:             name,
		Headers:          make([]string, 0, len(headers)),
		DuplicateHeaders: append([]string(nil), idx.duplicates...),
	}
	for _, header := range headers {
		layout.Headers = append(layout.Headers, strings.TrimSpace(header))
	}
	layout.BlankColumnRuns = blankColumnRuns(layout.Headers)
	return layout
}

// blankColumnRuns finds empty header cells between the first and last
// non-empty header. Column numbers are 1-based.
func blankColumnRuns(headers []string) []Run {
	var (
		runs     []Run
		start    int
		length   int
		seenData bool
	)
	for i, header := range headers {
		if header == "" {
			if !seenData {
				continue
			}
			if length == 0 {
				start = i + 1
			}
			length++
			continue
		}
		if length > 0 {
			runs = append(runs, Run{Start: start, Length: length})
			length = 0
		}
		seenData = true
	}
	return runs
}

func readSurveyRow(idx headerIndex, cells []string, source string, row int) SurveyRow {
	get := func(name string) string {
		column, ok := idx.lookup(name)
		if !ok {
			return ""
		}
		return cellAt(cells, column.Index)
	}

	out := SurveyRow{
		Source:       source,
		Row:          row,
		Type:         ParseType(get(ColumnType)),
		Name:         get(ColumnName),
		Label:        get(ColumnLabel),
		Hint:         get(ColumnHint),
		Relevant:     get(ColumnRelevant),
		Constraint:   get(ColumnConstraint),
		Calculation:  get(ColumnCalculation),
		Required:     get(ColumnRequired),
		ChoiceFilter: get(ColumnChoiceFilter),
		RepeatCount:  get(ColumnRepeatCount),
		Default:      get(ColumnDefault),
		Appearance:   get(ColumnAppearance),
		Parameters:   get(ColumnParameters),
	}

	for _, column := range idx.languages[ColumnLabel] {
		if value := cellAt(cells, column.Index); value != "" {
			if out.Labels == nil {
				out.Labels = make(map[string]string)
			}
			out.Labels[column.Lang] = value
		}
	}

	for _, column := range idx.columns {
		if _, mapped := surveyColumns[column.Base]; mapped && column.Lang == "" {
			continue
		}
		if column.Base == ColumnLabel {
			continue
		}
		value := cellAt(cells, column.Index)
		if value == "" {
			continue
		}
		if out.Extra == nil {
			out.Extra = make(map[string]string)
		}
		key := NormalizeHeader(column.Header)
		if _, exists := out.Extra[key]; !exists {
			out.Extra[key] = value
		}
	}
	return out
}

func readChoiceRow(idx headerIndex, cells []string, source string, row int) ChoiceRow {
	get := func(name string) string {
		column, ok := idx.lookup(name)
		if !ok {
			return ""
		}
		return cellAt(cells, column.Index)
	}
	return ChoiceRow{
		Source:   source,
		Row:      row,
		ListName: get(ColumnListName),
		Name:     get(ColumnName),
		Label:    get(ColumnLabel),
	}
}

func readSettings(idx headerIndex, sheet *workbook.Sheet, source string) Settings {
	settings := Settings{
		Source: source,
		Row:    2,
		Values: make(map[string]string),
	}
	var cells []string
	if len(sheet.Rows) > 1 {
		cells = sheet.Rows[1]
	}
	for _, column := range idx.columns {
		key := NormalizeHeader(column.Header)
		if _, seen := settings.Values[key]; seen {
			continue
		}
		settings.Keys = append(settings.Keys, key)
		settings.Values[key] = cellAt(cells, column.Index)
		if formula, ok := sheet.Formula(1, column.Index); ok {
			if settings.Formulas == nil {
				settings.Formulas = make(map[string]string)
			}
			settings.Formulas[key] = formula
		}
	}
	return settings
}

func cellAt(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}

func isBlank(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
