package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/goliatone/go-xlsform/internal/config"
	"github.com/goliatone/go-xlsform/pkg/report"
)

// outputFlags selects how a report is written.
type outputFlags struct {
	json    bool
	yaml    bool
	format  string
	noColor bool
}

func (o *outputFlags) resolve(cfg *config.Config) (string, error) {
	switch {
	case o.json && o.yaml:
		return "", fmt.Errorf("--json and --yaml are mutually exclusive")
	case o.json:
		return config.FormatJSON, nil
	case o.yaml:
		return config.FormatYAML, nil
	case o.format != "":
		for _, f := range config.ValidFormats {
			if f == o.format {
				return f, nil
			}
		}
		return "", fmt.Errorf("unknown format %q (valid: %v)", o.format, config.ValidFormats)
	default:
		return cfg.Output.Format, nil
	}
}

func (a *app) writeReport(w io.Writer, rep *report.Report, format string, color bool) error {
	registry, err := report.DefaultRegistry(
		report.WithColor(color),
		report.WithTemplateDir(a.templateDir()),
	)
	if err != nil {
		return err
	}
	return registry.Encode(w, format, rep)
}

// templateDir resolves output.template_dir against the project directory.
func (a *app) templateDir() string {
	dir := a.cfg.Output.TemplateDir
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(a.projectDir, dir)
}

// exitFor maps a report to the process exit code.
func exitFor(rep *report.Report) error {
	switch {
	case rep.Fatal != "":
		return &exitCodeError{code: exitFatal}
	case !rep.Valid:
		return &exitCodeError{code: exitInvalid}
	default:
		return nil
	}
}
