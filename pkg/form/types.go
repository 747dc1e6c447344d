package form

// SurveyRow is one non-blank row of the survey sheet. Row is the 1-based
// spreadsheet row; Source names the workbook (or chunk) it came from.
type SurveyRow struct {
	Source string
	Row    int

	Type  QuestionType
	Name  string
	Label string

	// Labels holds language-specific labels keyed by the language suffix of
	// "label::<lang>" columns.
	Labels map[string]string

	Hint         string
	Relevant     string
	Constraint   string
	Calculation  string
	Required     string
	ChoiceFilter string
	RepeatCount  string
	Default      string
	Appearance   string
	Parameters   string

	// Extra keeps every other non-empty column keyed by normalized header.
	Extra map[string]string
}

// Formulas returns the expression-bearing columns of the row keyed by column
// name, in a stable order.
func (r SurveyRow) Formulas() []Formula {
	candidates := []Formula{
		{Column: ColumnRelevant, Expr: r.Relevant},
		{Column: ColumnConstraint, Expr: r.Constraint},
		{Column: ColumnCalculation, Expr: r.Calculation},
		{Column: ColumnRequired, Expr: r.Required},
		{Column: ColumnChoiceFilter, Expr: r.ChoiceFilter},
		{Column: ColumnRepeatCount, Expr: r.RepeatCount},
		{Column: ColumnDefault, Expr: r.Default},
	}
	out := candidates[:0]
	for _, candidate := range candidates {
		if candidate.Expr != "" {
			out = append(out, candidate)
		}
	}
	return out
}

// Formula pairs an expression with the column it was read from.
type Formula struct {
	Column string
	Expr   string
}

// ChoiceRow is one non-blank row of the choices sheet.
type ChoiceRow struct {
	Source   string
	Row      int
	ListName string
	Name     string
	Label    string
}

// ChoiceList groups choice rows sharing a list_name, in first-appearance order.
type ChoiceList struct {
	Name    string
	Row     int
	Source  string
	Choices []ChoiceRow
}

// Settings is the single key/value record of the settings sheet.
type Settings struct {
	Source   string
	Row      int
	Keys     []string
	Values   map[string]string
	Formulas map[string]string
}

// Get returns the trimmed value stored for key.
func (s Settings) Get(key string) string {
	if s.Values == nil {
		return ""
	}
	return s.Values[key]
}

// Has reports whether the key has a value or a formula.
func (s Settings) Has(key string) bool {
	if s.Get(key) != "" {
		return true
	}
	_, ok := s.Formulas[key]
	return ok
}

// IsFormula reports whether the key holds a spreadsheet formula, either read
// from the cell formula or typed as text starting with "=".
func (s Settings) IsFormula(key string) bool {
	if formula, ok := s.Formulas[key]; ok && formula != "" {
		return true
	}
	value := s.Get(key)
	return len(value) > 1 && value[0] == '='
}

// Run is a maximal sequence of consecutive blank rows or columns. Start is
// 1-based (spreadsheet row number or column number).
type Run struct {
	Start  int
	Length int
}

// SheetLayout captures raw header and blank-space information for a sheet.
// BlankRuns only holds runs that sit between two data rows: blank rows after
// the last data row are padding, not a gap, and are never recorded.
type SheetLayout struct {
	Name             string
	Headers          []string
	DuplicateHeaders []string
	BlankRuns        []Run
	BlankColumnRuns  []Run
}

// Form is the loaded XLSForm model. It is built once per validation run and
// treated as read-only afterwards.
type Form struct {
	Source   string
	Survey   []SurveyRow
	Choices  []ChoiceRow
	Settings Settings

	HasChoices  bool
	HasSettings bool

	// Layouts is keyed by canonical sheet name (survey, choices, settings).
	Layouts map[string]SheetLayout
}

// Lists groups the choice rows by list name in first-appearance order.
func (f *Form) Lists() []*ChoiceList {
	if f == nil {
		return nil
	}
	index := make(map[string]*ChoiceList)
	var out []*ChoiceList
	for _, choice := range f.Choices {
		list, ok := index[choice.ListName]
		if !ok {
			list = &ChoiceList{Name: choice.ListName, Row: choice.Row, Source: choice.Source}
			index[choice.ListName] = list
			out = append(out, list)
		}
		list.Choices = append(list.Choices, choice)
	}
	return out
}

// Clone returns a deep-enough copy for callers that need to assemble a new
// form (chunk merges) without touching the original.
func (f *Form) Clone() *Form {
	if f == nil {
		return nil
	}
	out := *f
	out.Survey = append([]SurveyRow(nil), f.Survey...)
	out.Choices = append([]ChoiceRow(nil), f.Choices...)
	if f.Layouts != nil {
		out.Layouts = make(map[string]SheetLayout, len(f.Layouts))
		for key, layout := range f.Layouts {
			out.Layouts[key] = layout
		}
	}
	return &out
}
