package settings

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var formIDPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_\-.]*$`)

// Prompter asks for settings values, defaulting to the current values and
// falling back to suggestions derived from the file name.
type Prompter struct {
	driver PromptDriver
}

// NewPrompter wraps driver. A nil driver uses the survey terminal driver.
func NewPrompter(driver PromptDriver) *Prompter {
	if driver == nil {
		driver = NewSurveyDriver()
	}
	return &Prompter{driver: driver}
}

// Ask walks the user through title, id and version. The boolean is false
// when the user declines to write the result.
func (p *Prompter) Ask(ctx context.Context, st StatusReport) (Values, bool, error) {
	if len(st.Missing) > 0 {
		msg := fmt.Sprintf("%s is missing: %s", st.File, strings.Join(st.Missing, ", "))
		if err := p.driver.Info(ctx, msg); err != nil {
			return Values{}, false, err
		}
	}

	title, err := p.driver.Input(ctx, InputConfig{
		Message:   "Form title:",
		Default:   firstNonEmpty(st.Current.Title, st.Suggested.Title),
		Help:      "Shown to enumerators as the form name (settings.form_title).",
		Validator: required("form title"),
	})
	if err != nil {
		return Values{}, false, err
	}

	id, err := p.driver.Input(ctx, InputConfig{
		Message:   "Form id:",
		Default:   firstNonEmpty(st.Current.ID, st.Suggested.ID),
		Help:      "Unique identifier used by servers (settings.form_id).",
		Validator: validFormID,
	})
	if err != nil {
		return Values{}, false, err
	}

	values := Values{Title: strings.TrimSpace(title), ID: strings.TrimSpace(id)}

	useFormula, err := p.driver.Confirm(ctx, ConfirmConfig{
		Message: "Set version to " + VersionFormula + "?",
		Default: true,
		Help:    "The formula produces a new version each time the workbook is saved.",
	})
	if err != nil {
		return Values{}, false, err
	}
	if !useFormula {
		version, err := p.driver.Input(ctx, InputConfig{
			Message:   "Version:",
			Default:   st.Current.Version,
			Validator: required("version"),
		})
		if err != nil {
			return Values{}, false, err
		}
		values.Version = strings.TrimSpace(version)
	}

	write, err := p.driver.Confirm(ctx, ConfirmConfig{
		Message: "Write settings to " + st.File + "?",
		Default: true,
	})
	if err != nil {
		return Values{}, false, err
	}
	return values, write, nil
}

func required(field string) func(string) error {
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validFormID(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return errors.New("form id is required")
	}
	if !formIDPattern.MatchString(value) {
		return fmt.Errorf("form id %q must start with a letter or underscore and contain only letters, digits, '_', '-' or '.'", value)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
