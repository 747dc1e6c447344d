package external

import "strings"

// Status describes how an external validation attempt ended.
type Status string

const (
	StatusDisabled          Status = "disabled"
	StatusJarNotFound       Status = "jar_not_found"
	StatusConverterNotFound Status = "converter_not_found"
	StatusConversionFailed  Status = "xform_conversion_failed"
	StatusJavaNotFound      Status = "java_not_found"
	StatusTimeout           Status = "timeout"
	StatusExecutionError    Status = "execution_error"
	StatusUnsupportedInput  Status = "unsupported_input"
	StatusCompleted         Status = "completed"
)

// Result is the outcome of one external validation. Errors count against
// form validity; Warnings and Info are advisory.
type Result struct {
	Enabled   bool     `json:"enabled" yaml:"enabled"`
	Status    Status   `json:"status" yaml:"status"`
	Ran       bool     `json:"ran" yaml:"ran"`
	JarPath   string   `json:"jar_path,omitempty" yaml:"jar_path,omitempty"`
	XFormPath string   `json:"xform_path,omitempty" yaml:"xform_path,omitempty"`
	ExitCode  *int     `json:"exit_code,omitempty" yaml:"exit_code,omitempty"`
	Command   string   `json:"command,omitempty" yaml:"command,omitempty"`
	Output    string   `json:"output,omitempty" yaml:"output,omitempty"`
	Errors    []string `json:"errors" yaml:"errors"`
	Warnings  []string `json:"warnings" yaml:"warnings"`
	Info      []string `json:"info" yaml:"info"`
}

// Disabled returns the result recorded when external validation is skipped.
func Disabled() *Result {
	return &Result{Status: StatusDisabled, Errors: []string{}, Warnings: []string{}, Info: []string{}}
}

// Classify splits validator output into error, warning, and info lines. A
// line mentioning "error" is an error; otherwise one mentioning "warning" is a
// warning; everything else is info. Blank lines are dropped.
func Classify(output string) (errs, warnings, info []string) {
	errs, warnings, info = []string{}, []string{}, []string{}
	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "error"):
			errs = append(errs, line)
		case strings.Contains(lower, "warning"):
			warnings = append(warnings, line)
		default:
			info = append(info, line)
		}
	}
	return errs, warnings, info
}
