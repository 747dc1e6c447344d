package pongo_test

import (
	"embed"
	"io"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-xlsform/pkg/render/template/pongo"
	"github.com/goliatone/go-xlsform/pkg/testsupport"
)

//go:embed testdata/templates/*.tpl
var embeddedTemplates embed.FS

type codeCount struct {
	Code  string `json:"code"`
	Count int    `json:"count"`
}

type tallyView struct {
	File   string      `json:"file"`
	Errors int         `json:"errors"`
	Width  int         `json:"width"`
	Codes  []codeCount `json:"codes"`
}

func TestEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)
	view := tallyView{
		File:   "census.xlsx",
		Errors: 3,
		Width:  15,
		Codes: []codeCount{
			{Code: "duplicate-name", Count: 2},
			{Code: "nesting", Count: 1},
		},
	}

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("tally", view, w)
	})

	golden := filepath.Join("testdata", "tally.golden")
	if testsupport.WriteMaybeGolden(t, golden, []byte(result)) {
		return
	}
	want := testsupport.MustReadGoldenString(t, golden)
	if diff := cmp.Diff(want, result); diff != "" {
		t.Fatalf("render result mismatch (-want +got):\n%s", diff)
	}
	if written != result {
		t.Fatalf("writer got %q, result %q", written, result)
	}
}

func TestEngine_AcceptsExplicitExtensionAndMaps(t *testing.T) {
	engine := newEngine(t)

	got, err := engine.RenderTemplate("status.tpl", map[string]any{"file": "census.xlsx", "status": "VALID"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "census.xlsx is VALID\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngine_BaseDirOverridesFS(t *testing.T) {
	templatesFS, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}
	engine, err := pongo.New(
		pongo.WithBaseDir(filepath.Join("testdata", "override")),
		pongo.WithFS(templatesFS),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	data := map[string]any{"file": "census.xlsx", "status": "INVALID", "errors": 0}
	status, err := engine.RenderTemplate("status", data)
	if err != nil {
		t.Fatalf("render status: %v", err)
	}
	if status != "[INVALID] census.xlsx\n" {
		t.Fatalf("expected the override template, got %q", status)
	}

	tally, err := engine.RenderTemplate("tally", data)
	if err != nil {
		t.Fatalf("render tally: %v", err)
	}
	if tally != "census.xlsx: 0 errors\n\n" {
		t.Fatalf("expected the embedded template as fallback, got %q", tally)
	}
}

func TestEngine_Errors(t *testing.T) {
	if _, err := pongo.New(); err == nil {
		t.Fatalf("expected error without base dir or fs")
	}
	if _, err := pongo.New(pongo.WithBaseDir(filepath.Join(t.TempDir(), "missing"))); err == nil {
		t.Fatalf("expected error for a missing template dir")
	}

	engine := newEngine(t)
	if _, err := engine.RenderTemplate("missing", nil); err == nil {
		t.Fatalf("expected error for an unknown template")
	}
	if _, err := engine.RenderTemplate("status", []string{"not", "an", "object"}); err == nil {
		t.Fatalf("expected error for non-object data")
	}
}

func newEngine(t *testing.T) *pongo.Engine {
	t.Helper()

	templatesFS, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}

	engine, err := pongo.New(pongo.WithFS(templatesFS))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}
