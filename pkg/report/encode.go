package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-xlsform/pkg/external"
	"github.com/goliatone/go-xlsform/pkg/rules"
)

// StructuredHeader opens the structured layout.
const StructuredHeader = "# XLSFORM_VALIDATION_RESULT"

// JSON writes the report as indented JSON.
func (r *Report) JSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("report: encode json: %w", err)
	}
	return nil
}

// YAML writes the report as YAML.
func (r *Report) YAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("report: encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("report: encode yaml: %w", err)
	}
	return nil
}

// Structured writes the key/value layout consumed by scripts and agents.
func (r *Report) Structured(w io.Writer) error {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line(StructuredHeader)
	line("valid: %t", r.Valid)
	line("file: %s", r.File)
	if r.Fatal != "" {
		line("fatal: %s", r.Fatal)
	}
	line("summary:")
	line("  errors: %d", r.Summary.Errors)
	line("  warnings: %d", r.Summary.Warnings)
	line("  suggestions: %d", r.Summary.Suggestions)

	line("engines:")
	localStatus := "passed"
	if r.Fatal != "" || r.Local.Errors > 0 {
		localStatus = "failed"
	}
	line("  local.status: %s", localStatus)
	line("  local.errors: %d", r.Local.Errors)
	line("  local.warnings: %d", r.Local.Warnings)
	ext := r.External
	if ext == nil {
		ext = external.Disabled()
	}
	line("  odk_validate.status: %s", ext.Status)
	line("  odk_validate.ran: %t", ext.Ran)
	if ext.JarPath != "" {
		line("  odk_validate.jar: %s", ext.JarPath)
	}
	if ext.XFormPath != "" {
		line("  odk_validate.xform: %s", ext.XFormPath)
	}
	if ext.ExitCode != nil {
		line("  odk_validate.exit_code: %d", *ext.ExitCode)
	}

	section := func(title string, findings []rules.Finding) {
		line("%s:", title)
		if len(findings) == 0 {
			line("  - none")
			return
		}
		for _, finding := range findings {
			line("  - %s", structuredItem(finding))
		}
	}
	section("errors", r.Errors())
	section("warnings", r.Warnings())
	section("suggestions", r.Suggestions())

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("report: write structured: %w", err)
	}
	return nil
}

func structuredItem(finding rules.Finding) string {
	if finding.Code == CodeExternal {
		return "[odk] " + finding.Message
	}
	return fmt.Sprintf("[%s] %s: %s", finding.Code, finding.Location, finding.Message)
}
