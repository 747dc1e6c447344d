package external

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds each converter and validator process.
	DefaultTimeout = 180 * time.Second

	// JarEnv names the environment variable holding the jar location.
	JarEnv = "ODK_VALIDATE_JAR"

	jarName          = "ODK-Validate.jar"
	defaultJava      = "java"
	defaultConverter = "xls2xform"
)

// Validator runs ODK Validate against forms.
type Validator struct {
	jarPath    string
	projectDir string
	java       string
	converter  string
	timeout    time.Duration
	runner     Runner
	lookPath   func(string) (string, error)
	getenv     func(string) string
	logger     *zap.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithJarPath sets an explicit jar location, tried before any other.
func WithJarPath(path string) Option {
	return func(v *Validator) {
		v.jarPath = strings.TrimSpace(path)
	}
}

// WithProjectDir sets the directory whose tools/ folder is searched for the jar.
func WithProjectDir(dir string) Option {
	return func(v *Validator) {
		v.projectDir = strings.TrimSpace(dir)
	}
}

// WithJava overrides the java executable.
func WithJava(name string) Option {
	return func(v *Validator) {
		if name = strings.TrimSpace(name); name != "" {
			v.java = name
		}
	}
}

// WithConverter overrides the XLSForm to XForm converter executable.
func WithConverter(name string) Option {
	return func(v *Validator) {
		if name = strings.TrimSpace(name); name != "" {
			v.converter = name
		}
	}
}

// WithTimeout bounds each external process. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(v *Validator) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// WithRunner replaces the process runner.
func WithRunner(r Runner) Option {
	return func(v *Validator) {
		if r != nil {
			v.runner = r
		}
	}
}

// WithLookPath replaces executable resolution.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(v *Validator) {
		if fn != nil {
			v.lookPath = fn
		}
	}
}

// WithGetenv replaces environment lookups.
func WithGetenv(fn func(string) string) Option {
	return func(v *Validator) {
		if fn != nil {
			v.getenv = fn
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// New constructs a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{
		java:      defaultJava,
		converter: defaultConverter,
		timeout:   DefaultTimeout,
		runner:    ExecRunner{},
		lookPath:  exec.LookPath,
		getenv:    os.Getenv,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// FindJar returns the first existing jar among the explicit path, the
// ODK_VALIDATE_JAR variable, <project>/tools and ./tools.
func (v *Validator) FindJar() string {
	var candidates []string
	if v.jarPath != "" {
		candidates = append(candidates, v.jarPath)
	}
	if env := strings.TrimSpace(v.getenv(JarEnv)); env != "" {
		candidates = append(candidates, env)
	}
	if v.projectDir != "" {
		candidates = append(candidates, filepath.Join(v.projectDir, "tools", jarName))
	}
	candidates = append(candidates, filepath.Join("tools", jarName))

	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		if abs, err := filepath.Abs(candidate); err == nil {
			return abs
		}
		return candidate
	}
	return ""
}

// Validate runs the jar against formPath. Problems running the tools are
// reported through the result status and warnings, never as a Go error.
func (v *Validator) Validate(ctx context.Context, formPath string) *Result {
	res := &Result{Enabled: true, Errors: []string{}, Warnings: []string{}, Info: []string{}}
	defer func() {
		v.logger.Info("external validation finished",
			zap.String("file", formPath),
			zap.String("status", string(res.Status)),
			zap.Int("errors", len(res.Errors)),
			zap.Int("warnings", len(res.Warnings)),
		)
	}()

	jar := v.FindJar()
	if jar == "" {
		res.Status = StatusJarNotFound
		res.Warnings = append(res.Warnings, "Offline ODK validation skipped because "+jarName+" was not found.")
		return res
	}
	res.JarPath = jar

	var xform, shown string
	switch strings.ToLower(filepath.Ext(formPath)) {
	case ".xml":
		xform = formPath
		if abs, err := filepath.Abs(formPath); err == nil {
			xform = abs
		}
		res.XFormPath = xform
		shown = xform
	case ".xlsx", ".xlsm", ".xls":
		dir, err := os.MkdirTemp("", "xlsform-validate-")
		if err != nil {
			res.Status = StatusExecutionError
			res.Warnings = append(res.Warnings, fmt.Sprintf("ODK validation could not create a work directory: %v", err))
			return res
		}
		defer os.RemoveAll(dir)

		stem := strings.TrimSuffix(filepath.Base(formPath), filepath.Ext(formPath))
		xform = filepath.Join(dir, stem+".xml")
		if ok := v.convert(ctx, res, formPath, xform); !ok {
			return res
		}
		// The converted file lives in a temporary directory removed after the
		// run, so only its base name is recorded.
		shown = filepath.Base(xform)
	default:
		res.Status = StatusUnsupportedInput
		res.Warnings = append(res.Warnings, fmt.Sprintf("Unsupported input format %q. Provide .xlsx or .xml for ODK validation.", filepath.Ext(formPath)))
		return res
	}

	java, err := v.lookPath(v.java)
	if err != nil {
		res.Status = StatusJavaNotFound
		res.Warnings = append(res.Warnings, "Java runtime not found. Install Java to enable offline ODK validation.")
		return res
	}
	res.Command = strings.Join([]string{v.java, "-jar", jar, shown}, " ")

	runCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()
	out, err := v.runner.Run(runCtx, java, "-jar", jar, xform)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			res.Status = StatusTimeout
			res.Warnings = append(res.Warnings, fmt.Sprintf("ODK validation timed out after %s.", v.timeout))
			return res
		}
		res.Status = StatusExecutionError
		res.Warnings = append(res.Warnings, fmt.Sprintf("ODK validation failed to start: %v", err))
		return res
	}

	res.Ran = true
	res.Status = StatusCompleted
	code := out.ExitCode
	res.ExitCode = &code
	res.Output = combine(out)
	errs, warnings, info := Classify(res.Output)
	res.Errors = append(res.Errors, errs...)
	res.Warnings = append(res.Warnings, warnings...)
	res.Info = append(res.Info, info...)
	if code != 0 && len(errs) == 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("ODK Validate exited with code %d.", code))
	}
	return res
}

// convert runs the converter into xform. Converter warnings are kept on res.
func (v *Validator) convert(ctx context.Context, res *Result, input, xform string) bool {
	converter, err := v.lookPath(v.converter)
	if err != nil {
		res.Status = StatusConverterNotFound
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s not found. Install pyxform to enable offline ODK validation.", v.converter))
		return false
	}

	runCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()
	out, err := v.runner.Run(runCtx, converter, input, xform)
	_, warnings, _ := Classify(combine(out))
	res.Warnings = append(res.Warnings, warnings...)

	switch {
	case err != nil:
		res.Status = StatusConversionFailed
		res.Errors = append(res.Errors, fmt.Sprintf("XLSForm -> XForm conversion failed: %v", err))
		return false
	case out.ExitCode != 0:
		res.Status = StatusConversionFailed
		msg := fmt.Sprintf("XLSForm -> XForm conversion failed with exit code %d", out.ExitCode)
		if detail := strings.TrimSpace(out.Stderr); detail != "" {
			msg += ": " + detail
		}
		res.Errors = append(res.Errors, msg)
		return false
	}
	if _, err := os.Stat(xform); err != nil {
		res.Status = StatusConversionFailed
		res.Errors = append(res.Errors, "XLSForm -> XForm conversion did not produce XML output.")
		return false
	}
	return true
}

func combine(out Output) string {
	var parts []string
	for _, part := range []string{out.Stdout, out.Stderr} {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, "\n")
}
