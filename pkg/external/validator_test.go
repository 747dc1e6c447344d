package external

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type call struct {
	Name string
	Args []string
}

type fakeRunner struct {
	calls []call
	run   func(name string, args []string) (Output, error)
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (Output, error) {
	f.calls = append(f.calls, call{Name: name, Args: append([]string(nil), args...)})
	if f.run == nil {
		return Output{}, nil
	}
	return f.run(name, args)
}

func found(name string) (string, error) {
	return "/usr/bin/" + name, nil
}

func noEnv(string) string { return "" }

func writeJar(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ODK-Validate.jar")
	if err := os.WriteFile(path, []byte("jar"), 0o600); err != nil {
		t.Fatalf("write jar: %v", err)
	}
	return path
}

func TestClassify(t *testing.T) {
	errs, warnings, info := Classify("Xform is valid\n\n  Error: bad bind  \nWARNING: slow\nerror and warning\n")
	if diff := cmp.Diff([]string{"Error: bad bind", "error and warning"}, errs); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"WARNING: slow"}, warnings); diff != "" {
		t.Fatalf("warnings mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Xform is valid"}, info); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateJarNotFound(t *testing.T) {
	v := New(WithGetenv(noEnv), WithProjectDir(t.TempDir()), WithJarPath(filepath.Join(t.TempDir(), "missing.jar")))
	res := v.Validate(context.Background(), "form.xml")
	if res.Status != StatusJarNotFound || res.Ran {
		t.Fatalf("expected jar_not_found, got %+v", res)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", res.Warnings)
	}
}

func TestFindJarUsesEnvironment(t *testing.T) {
	jar := writeJar(t)
	v := New(WithGetenv(func(key string) string {
		if key == JarEnv {
			return jar
		}
		return ""
	}))
	if got := v.FindJar(); got != jar {
		t.Fatalf("expected %s, got %s", jar, got)
	}
}

func TestFindJarInProjectTools(t *testing.T) {
	project := t.TempDir()
	tools := filepath.Join(project, "tools")
	if err := os.MkdirAll(tools, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	jar := filepath.Join(tools, "ODK-Validate.jar")
	if err := os.WriteFile(jar, nil, 0o600); err != nil {
		t.Fatalf("write jar: %v", err)
	}
	v := New(WithGetenv(noEnv), WithProjectDir(project))
	if got := v.FindJar(); got != jar {
		t.Fatalf("expected %s, got %s", jar, got)
	}
}

func TestValidateXMLCompleted(t *testing.T) {
	jar := writeJar(t)
	runner := &fakeRunner{run: func(string, []string) (Output, error) {
		return Output{Stdout: "Xform is valid\n", Stderr: "Warning: unused bind\n"}, nil
	}}
	v := New(WithJarPath(jar), WithGetenv(noEnv), WithRunner(runner), WithLookPath(found))

	xml := filepath.Join(t.TempDir(), "form.xml")
	res := v.Validate(context.Background(), xml)
	if res.Status != StatusCompleted || !res.Ran {
		t.Fatalf("expected completed run, got %+v", res)
	}
	if res.ExitCode == nil || *res.ExitCode != 0 {
		t.Fatalf("expected exit code 0, got %v", res.ExitCode)
	}
	if res.Output != "Xform is valid\nWarning: unused bind" {
		t.Fatalf("unexpected output %q", res.Output)
	}
	want := []call{{Name: "/usr/bin/java", Args: []string{"-jar", jar, xml}}}
	if diff := cmp.Diff(want, runner.calls); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
	if res.Command != "java -jar "+jar+" "+xml {
		t.Fatalf("unexpected command %q", res.Command)
	}
	if len(res.Errors) != 0 || len(res.Warnings) != 1 || len(res.Info) != 1 {
		t.Fatalf("unexpected classification %+v", res)
	}
}

func TestValidateNonZeroExitWithoutErrors(t *testing.T) {
	jar := writeJar(t)
	runner := &fakeRunner{run: func(string, []string) (Output, error) {
		return Output{Stdout: "something odd", ExitCode: 3}, nil
	}}
	v := New(WithJarPath(jar), WithGetenv(noEnv), WithRunner(runner), WithLookPath(found))

	res := v.Validate(context.Background(), "form.xml")
	if diff := cmp.Diff([]string{"ODK Validate exited with code 3."}, res.Warnings); diff != "" {
		t.Fatalf("warnings mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateConvertsWorkbook(t *testing.T) {
	jar := writeJar(t)
	runner := &fakeRunner{run: func(name string, args []string) (Output, error) {
		if strings.HasSuffix(name, "xls2xform") {
			if err := os.WriteFile(args[1], []byte("<h:html/>"), 0o600); err != nil {
				return Output{}, err
			}
			return Output{Stdout: "Warning: label missing"}, nil
		}
		return Output{Stdout: "Error: constraint invalid", ExitCode: 1}, nil
	}}
	v := New(WithJarPath(jar), WithGetenv(noEnv), WithRunner(runner), WithLookPath(found))

	res := v.Validate(context.Background(), filepath.Join("forms", "survey.xlsx"))
	if res.Status != StatusCompleted {
		t.Fatalf("expected completed, got %+v", res)
	}
	if len(runner.calls) != 2 {
		t.Fatalf("expected converter and validator calls, got %+v", runner.calls)
	}
	if got := runner.calls[0].Args[0]; got != filepath.Join("forms", "survey.xlsx") {
		t.Fatalf("converter input = %s", got)
	}
	if filepath.Base(runner.calls[0].Args[1]) != "survey.xml" {
		t.Fatalf("converter output = %s", runner.calls[0].Args[1])
	}
	if res.Command != "java -jar "+jar+" survey.xml" {
		t.Fatalf("unexpected command %q", res.Command)
	}
	if diff := cmp.Diff([]string{"Error: constraint invalid"}, res.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Warning: label missing"}, res.Warnings); diff != "" {
		t.Fatalf("warnings mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(runner.calls[0].Args[1]); !os.IsNotExist(err) {
		t.Fatalf("expected converted file to be removed, stat err = %v", err)
	}
}

func TestValidateStatuses(t *testing.T) {
	jar := writeJar(t)
	notFound := func(string) (string, error) { return "", errors.New("not found") }

	cases := []struct {
		name   string
		file   string
		opts   []Option
		status Status
	}{
		{
			name:   "unsupported input",
			file:   "form.csv",
			opts:   []Option{WithLookPath(found)},
			status: StatusUnsupportedInput,
		},
		{
			name:   "converter missing",
			file:   "form.xlsx",
			opts:   []Option{WithLookPath(notFound)},
			status: StatusConverterNotFound,
		},
		{
			name:   "java missing",
			file:   "form.xml",
			opts:   []Option{WithLookPath(notFound)},
			status: StatusJavaNotFound,
		},
		{
			name: "conversion failure",
			file: "form.xlsx",
			opts: []Option{WithLookPath(found), WithRunner(&fakeRunner{run: func(string, []string) (Output, error) {
				return Output{Stderr: "bad sheet", ExitCode: 1}, nil
			}})},
			status: StatusConversionFailed,
		},
		{
			name:   "conversion without output",
			file:   "form.xlsx",
			opts:   []Option{WithLookPath(found), WithRunner(&fakeRunner{})},
			status: StatusConversionFailed,
		},
		{
			name: "timeout",
			file: "form.xml",
			opts: []Option{WithLookPath(found), WithRunner(&fakeRunner{run: func(string, []string) (Output, error) {
				return Output{}, context.DeadlineExceeded
			}})},
			status: StatusTimeout,
		},
		{
			name: "execution error",
			file: "form.xml",
			opts: []Option{WithLookPath(found), WithRunner(&fakeRunner{run: func(string, []string) (Output, error) {
				return Output{}, errors.New("exec format error")
			}})},
			status: StatusExecutionError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := append([]Option{WithJarPath(jar), WithGetenv(noEnv)}, tc.opts...)
			res := New(opts...).Validate(context.Background(), tc.file)
			if res.Status != tc.status {
				t.Fatalf("expected %s, got %+v", tc.status, res)
			}
			if res.Ran {
				t.Fatalf("expected no completed run for %s", tc.status)
			}
		})
	}
}

func TestDisabled(t *testing.T) {
	res := Disabled()
	if res.Enabled || res.Status != StatusDisabled {
		t.Fatalf("unexpected disabled result %+v", res)
	}
}
