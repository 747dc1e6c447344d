package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-xlsform/pkg/external"
	"github.com/goliatone/go-xlsform/pkg/form"
	"github.com/goliatone/go-xlsform/pkg/rules"
	"github.com/goliatone/go-xlsform/pkg/testsupport"
)

func sampleFindings() []rules.Finding {
	return []rules.Finding{
		{
			Severity: rules.SeverityWarning,
			Code:     rules.CodeOrphanedList,
			Message:  `choice list "sizes" is never used by a select question`,
			Location: rules.Location{Source: "form.xlsx", Sheet: "choices", Row: 2, Column: "list_name"},
		},
		{
			Severity: rules.SeverityError,
			Code:     rules.CodeDuplicateName,
			Message:  `name "a" is used 2 times`,
			Location: rules.Location{Source: "form.xlsx", Sheet: "survey", Row: 2, Column: "name"},
		},
		{
			Severity: rules.SeveritySuggestion,
			Code:     rules.CodeNamingConvention,
			Message:  `name "q1": replace the numeric suffix with a descriptive name`,
			Location: rules.Location{Source: "form.xlsx", Sheet: "survey", Row: 4, Column: "name"},
		},
	}
}

func TestBuildCountsAndOrders(t *testing.T) {
	r := Build("form.xlsx", sampleFindings())

	if r.Valid {
		t.Fatalf("expected invalid report")
	}
	if diff := cmp.Diff(Summary{Errors: 1, Warnings: 1, Suggestions: 1}, r.Summary); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
	var codes []string
	for _, finding := range r.Findings {
		codes = append(codes, finding.Code)
	}
	want := []string{rules.CodeDuplicateName, rules.CodeNamingConvention, rules.CodeOrphanedList}
	if diff := cmp.Diff(want, codes); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildValidWithoutErrors(t *testing.T) {
	r := Build("form.xlsx", sampleFindings()[:1])
	if !r.Valid {
		t.Fatalf("expected warnings-only report to be valid")
	}
}

func TestBuildExternalErrorsInvalidate(t *testing.T) {
	code := 1
	ext := &external.Result{
		Enabled:  true,
		Status:   external.StatusCompleted,
		Ran:      true,
		ExitCode: &code,
		Output:   "Error: bad bind\nWarning: slow",
		Errors:   []string{"Error: bad bind"},
		Warnings: []string{"Warning: slow"},
		Info:     []string{},
	}
	r := Build("form.xlsx", nil, WithExternal(ext))
	if r.Valid {
		t.Fatalf("expected external error to invalidate the report")
	}
	if diff := cmp.Diff(Summary{Errors: 1, Warnings: 1}, r.Summary); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Summary{}, r.Local); diff != "" {
		t.Fatalf("local summary mismatch (-want +got):\n%s", diff)
	}
	if r.Findings[0].Location.Sheet != rules.SheetExternal {
		t.Fatalf("expected external location, got %+v", r.Findings[0].Location)
	}

	disabled := Build("form.xlsx", nil, WithExternal(external.Disabled()))
	if !disabled.Valid || len(disabled.Findings) != 0 {
		t.Fatalf("disabled external validation should add nothing, got %+v", disabled)
	}
}

func TestFatal(t *testing.T) {
	err := &form.MalformedWorkbookError{Sheet: "survey"}
	r := Fatal("broken.xlsx", err)
	if r.Valid || r.Fatal != err.Error() || len(r.Findings) != 0 {
		t.Fatalf("unexpected fatal report %+v", r)
	}

	var buf bytes.Buffer
	if err := r.Structured(&buf); err != nil {
		t.Fatalf("structured: %v", err)
	}
	if !strings.Contains(buf.String(), "fatal: "+err.Error()+"\n") {
		t.Fatalf("structured output missing fatal line:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "local.status: failed\n") {
		t.Fatalf("structured output should mark local engine failed:\n%s", buf.String())
	}

	if got := Fatal("x", nil).Fatal; got != "unknown error" {
		t.Fatalf("unexpected nil error message %q", got)
	}
}

func TestStructured(t *testing.T) {
	r := Build("form.xlsx", sampleFindings())
	var buf bytes.Buffer
	if err := r.Structured(&buf); err != nil {
		t.Fatalf("structured: %v", err)
	}

	goldenPath := filepath.Join("testdata", "structured.golden")
	if testsupport.WriteMaybeGolden(t, goldenPath, buf.Bytes()) {
		return
	}
	want := testsupport.MustReadGoldenString(t, goldenPath)
	if diff := testsupport.CompareGolden(want, buf.String()); diff != "" {
		t.Fatalf("structured mismatch (-want +got):\n%s", diff)
	}
}

func TestStructuredEmptySections(t *testing.T) {
	r := Build("form.xlsx", nil)
	var buf bytes.Buffer
	if err := r.Structured(&buf); err != nil {
		t.Fatalf("structured: %v", err)
	}
	if got := strings.Count(buf.String(), "  - none\n"); got != 3 {
		t.Fatalf("expected three empty sections, got %d:\n%s", got, buf.String())
	}
	if !strings.HasPrefix(buf.String(), StructuredHeader+"\nvalid: true\n") {
		t.Fatalf("unexpected header:\n%s", buf.String())
	}
}

func TestJSONAndYAML(t *testing.T) {
	r := Build("form.xlsx", sampleFindings())

	var jsonBuf bytes.Buffer
	if err := r.JSON(&jsonBuf); err != nil {
		t.Fatalf("json: %v", err)
	}
	var decoded Report
	if err := json.Unmarshal(jsonBuf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if diff := cmp.Diff(r, &decoded); diff != "" {
		t.Fatalf("json round trip mismatch (-want +got):\n%s", diff)
	}

	var yamlBuf bytes.Buffer
	if err := r.YAML(&yamlBuf); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(yamlBuf.Bytes(), &doc); err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if doc["valid"] != false || doc["file"] != "form.xlsx" {
		t.Fatalf("unexpected yaml document %v", doc)
	}
}

func TestTextRenderer(t *testing.T) {
	renderer, err := NewTextRenderer()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	var clean bytes.Buffer
	if err := Build("form.xlsx", nil).Text(&clean, renderer); err != nil {
		t.Fatalf("text: %v", err)
	}
	want := "XLSForm validation: form.xlsx\nStatus: VALID (0 errors, 0 warnings, 0 suggestions)\n"
	if clean.String() != want {
		t.Fatalf("clean report mismatch\nwant: %q\n got: %q", want, clean.String())
	}

	code := 0
	r := Build("form.xlsx", sampleFindings(), WithExternal(&external.Result{
		Enabled:  true,
		Status:   external.StatusCompleted,
		Ran:      true,
		ExitCode: &code,
		Output:   "Xform is valid",
		Errors:   []string{},
		Warnings: []string{},
		Info:     []string{"Xform is valid"},
	}))
	var buf bytes.Buffer
	if err := r.Text(&buf, renderer); err != nil {
		t.Fatalf("text: %v", err)
	}
	out := buf.String()
	for _, fragment := range []string{
		"Status: INVALID (1 error, 1 warning, 1 suggestion)\n",
		"\nERROR      duplicate-name at form.xlsx: survey row 2 [name]\n    name \"a\" is used 2 times\n",
		"\nWARNING    orphaned-list at form.xlsx: choices row 2 [list_name]\n",
		"\nSUGGESTION naming-convention at form.xlsx: survey row 4 [name]\n",
		"\nBy rule:\n  duplicate-name     1\n  naming-convention  1\n  orphaned-list      1\n",
		"\nExternal validator: completed (exit 0)\n    Xform is valid\n",
	} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("text output missing %q:\n%s", fragment, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no colour codes without colour enabled:\n%q", out)
	}
}

func TestTextTemplateDirOverridesEmbedded(t *testing.T) {
	dir := t.TempDir()
	custom := "{{ status }} {{ file }} {{ errors }}\n"
	if err := os.WriteFile(filepath.Join(dir, "report.tpl"), []byte(custom), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	renderer, err := NewTextRenderer(WithTemplateDir(dir))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	var buf bytes.Buffer
	if err := Build("form.xlsx", sampleFindings()).Text(&buf, renderer); err != nil {
		t.Fatalf("text: %v", err)
	}
	if got := buf.String(); got != "INVALID form.xlsx 1\n" {
		t.Fatalf("expected the custom template, got %q", got)
	}

	if _, err := NewTextRenderer(WithTemplateDir(filepath.Join(dir, "missing"))); err == nil {
		t.Fatalf("expected error for a missing template dir")
	}
}

func TestTextFatal(t *testing.T) {
	var buf bytes.Buffer
	if err := Fatal("broken.xlsx", errors.New("form: workbook has no survey sheet")).Text(&buf, nil); err != nil {
		t.Fatalf("text: %v", err)
	}
	if !strings.Contains(buf.String(), "Fatal: form: workbook has no survey sheet\n") {
		t.Fatalf("missing fatal line:\n%s", buf.String())
	}
}

func TestReportsAreIdempotent(t *testing.T) {
	wb := testsupport.Workbook(t, "form.xlsx",
		testsupport.Survey(
			[]string{"text", "a", "A"},
			[]string{"text", "a", "A"},
			[]string{"select_one fruit", "pick", "Pick"},
		),
		testsupport.Choices([]string{"fruits", "apple", "Apple"}),
	)
	f, err := form.Load(wb)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	render := func() []byte {
		engine := rules.NewEngine()
		r := Build(f.Source, engine.Check(f))
		var buf bytes.Buffer
		if err := r.JSON(&buf); err != nil {
			t.Fatalf("json: %v", err)
		}
		if err := r.YAML(&buf); err != nil {
			t.Fatalf("yaml: %v", err)
		}
		if err := r.Structured(&buf); err != nil {
			t.Fatalf("structured: %v", err)
		}
		if err := r.Text(&buf, nil); err != nil {
			t.Fatalf("text: %v", err)
		}
		return buf.Bytes()
	}

	first, second := render(), render()
	if !bytes.Equal(first, second) {
		t.Fatalf("reports differ between runs:\n%s\n---\n%s", first, second)
	}
}
