package settings

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/goliatone/go-xlsform/pkg/form"
	"github.com/goliatone/go-xlsform/pkg/rules"
)

// VersionFormula is written to the version cell so each save bumps it.
const VersionFormula = rules.VersionFormula

// StatusHeader opens the structured status layout.
const StatusHeader = "# XLSFORM_SETTINGS_STATUS"

const defaultFormID = "survey_form"

var (
	separators = regexp.MustCompile(`[_\-]+`)
	spaces     = regexp.MustCompile(`\s+`)
	nonIDChars = regexp.MustCompile(`[^a-z0-9]+`)
	underscore = regexp.MustCompile(`_+`)
)

// Values holds the settings a caller wants to write. Empty fields are left
// unchanged, except Version: an empty version writes VersionFormula.
type Values struct {
	Title   string `json:"form_title" yaml:"form_title"`
	ID      string `json:"form_id" yaml:"form_id"`
	Version string `json:"version" yaml:"version"`
}

// Suggestion is a title and id derived from a file name.
type Suggestion struct {
	Title string `json:"form_title" yaml:"form_title"`
	ID    string `json:"form_id" yaml:"form_id"`
}

// Suggest derives a title and id from a file stem: separators become spaces
// and the result is title-cased; the id is lower snake_case, prefixed with
// "form_" when it starts with a digit.
func Suggest(stem string) Suggestion {
	cleaned := strings.TrimSpace(separators.ReplaceAllString(stem, " "))
	cleaned = spaces.ReplaceAllString(cleaned, " ")
	title := "Survey"
	if cleaned != "" {
		title = cases.Title(language.Und).String(cleaned)
	}

	id := nonIDChars.ReplaceAllString(strings.ToLower(stem), "_")
	id = strings.Trim(underscore.ReplaceAllString(id, "_"), "_")
	if id == "" {
		id = defaultFormID
	}
	if id[0] >= '0' && id[0] <= '9' {
		id = "form_" + id
	}
	return Suggestion{Title: title, ID: id}
}

// StatusReport describes the current settings of a form.
type StatusReport struct {
	File               string     `json:"file" yaml:"file"`
	HasSheet           bool       `json:"has_sheet" yaml:"has_sheet"`
	Current            Values     `json:"current" yaml:"current"`
	Missing            []string   `json:"missing" yaml:"missing"`
	VersionIsFormula   bool       `json:"version_is_formula" yaml:"version_is_formula"`
	VersionFormula     string     `json:"version_formula" yaml:"version_formula"`
	Suggested          Suggestion `json:"suggested" yaml:"suggested"`
	RecommendedCommand string     `json:"recommended_command" yaml:"recommended_command"`
}

// Status inspects f. stem seeds the suggested title and id.
func Status(f *form.Form, file, stem string) StatusReport {
	st := StatusReport{
		File:           file,
		Missing:        []string{},
		VersionFormula: VersionFormula,
		Suggested:      Suggest(stem),
	}
	if f != nil && f.HasSettings {
		st.HasSheet = true
		st.Current = Values{
			Title:   f.Settings.Get(rules.SettingFormTitle),
			ID:      f.Settings.Get(rules.SettingFormID),
			Version: currentVersion(f.Settings),
		}
		st.VersionIsFormula = f.Settings.IsFormula(rules.SettingVersion)
	}
	if st.Current.Title == "" {
		st.Missing = append(st.Missing, rules.SettingFormTitle)
	}
	if st.Current.ID == "" {
		st.Missing = append(st.Missing, rules.SettingFormID)
	}
	if st.Current.Version == "" {
		st.Missing = append(st.Missing, rules.SettingVersion)
	}

	if st.Current.Title != "" && st.Current.ID != "" {
		st.RecommendedCommand = fmt.Sprintf("xlsform settings set --ensure-version-formula %q", file)
	} else {
		st.RecommendedCommand = fmt.Sprintf("xlsform settings set --title %q --id %q --ensure-version-formula %q",
			st.Suggested.Title, st.Suggested.ID, file)
	}
	return st
}

func currentVersion(s form.Settings) string {
	if formula, ok := s.Formulas[rules.SettingVersion]; ok && formula != "" {
		return "=" + formula
	}
	return s.Get(rules.SettingVersion)
}

// Write renders the status in the structured key/value layout.
func (st StatusReport) Write(w io.Writer) error {
	missing := "none"
	if len(st.Missing) > 0 {
		missing = strings.Join(st.Missing, ", ")
	}
	lines := []string{
		StatusHeader,
		"file: " + st.File,
		"form_title: " + st.Current.Title,
		"form_id: " + st.Current.ID,
		"version: " + st.Current.Version,
		fmt.Sprintf("version_is_formula: %t", st.VersionIsFormula),
		"missing_required: " + missing,
		"suggested_form_title: " + st.Suggested.Title,
		"suggested_form_id: " + st.Suggested.ID,
		"recommended_command: " + st.RecommendedCommand,
	}
	if _, err := io.WriteString(w, strings.Join(lines, "\n")+"\n"); err != nil {
		return fmt.Errorf("settings: write status: %w", err)
	}
	return nil
}
