package report

import (
	"github.com/goliatone/go-xlsform/pkg/external"
	"github.com/goliatone/go-xlsform/pkg/rules"
)

// CodeExternal marks findings copied from the external validator output.
const CodeExternal = "odk-validate"

// Summary counts findings by severity.
type Summary struct {
	Errors      int `json:"errors" yaml:"errors"`
	Warnings    int `json:"warnings" yaml:"warnings"`
	Suggestions int `json:"suggestions" yaml:"suggestions"`
}

// Report is the outcome of validating one form.
type Report struct {
	File     string           `json:"file" yaml:"file"`
	Valid    bool             `json:"valid" yaml:"valid"`
	Fatal    string           `json:"fatal,omitempty" yaml:"fatal,omitempty"`
	Summary  Summary          `json:"summary" yaml:"summary"`
	Local    Summary          `json:"local" yaml:"local"`
	Findings []rules.Finding  `json:"findings" yaml:"findings"`
	External *external.Result `json:"external,omitempty" yaml:"external,omitempty"`
}

// Option configures Build.
type Option func(*Report)

// WithExternal attaches an external validator result. Its error and warning
// lines become findings and count toward validity.
func WithExternal(res *external.Result) Option {
	return func(r *Report) {
		r.External = res
	}
}

// Build assembles a report for source from findings. The findings slice is
// copied and sorted.
func Build(source string, findings []rules.Finding, opts ...Option) *Report {
	r := &Report{File: source}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	all := make([]rules.Finding, 0, len(findings))
	all = append(all, findings...)
	r.Local = count(all)
	all = append(all, externalFindings(source, r.External)...)
	rules.Sort(all)

	r.Findings = all
	r.Summary = count(all)
	r.Valid = r.Summary.Errors == 0
	return r
}

// Fatal returns the report for a form that could not be loaded at all.
func Fatal(source string, err error) *Report {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return &Report{
		File:     source,
		Valid:    false,
		Fatal:    msg,
		Findings: []rules.Finding{},
	}
}

// Errors returns the error findings in report order.
func (r *Report) Errors() []rules.Finding {
	return r.bySeverity(rules.SeverityError)
}

// Warnings returns the warning findings in report order.
func (r *Report) Warnings() []rules.Finding {
	return r.bySeverity(rules.SeverityWarning)
}

// Suggestions returns the suggestion findings in report order.
func (r *Report) Suggestions() []rules.Finding {
	return r.bySeverity(rules.SeveritySuggestion)
}

func (r *Report) bySeverity(severity rules.Severity) []rules.Finding {
	if r == nil {
		return nil
	}
	var out []rules.Finding
	for _, finding := range r.Findings {
		if finding.Severity == severity {
			out = append(out, finding)
		}
	}
	return out
}

func count(findings []rules.Finding) Summary {
	errs, warnings, suggestions := rules.Count(findings)
	return Summary{Errors: errs, Warnings: warnings, Suggestions: suggestions}
}

func externalFindings(source string, res *external.Result) []rules.Finding {
	if res == nil || !res.Enabled {
		return nil
	}
	loc := rules.Location{Source: source, Sheet: rules.SheetExternal}
	out := make([]rules.Finding, 0, len(res.Errors)+len(res.Warnings))
	for _, line := range res.Errors {
		out = append(out, rules.Finding{Severity: rules.SeverityError, Code: CodeExternal, Message: line, Location: loc})
	}
	for _, line := range res.Warnings {
		out = append(out, rules.Finding{Severity: rules.SeverityWarning, Code: CodeExternal, Message: line, Location: loc})
	}
	return out
}
