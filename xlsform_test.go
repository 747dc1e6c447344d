package xlsform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-xlsform/pkg/testsupport"
)

func writeSurvey(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "survey.xlsx")
	testsupport.WriteXLSX(t, path,
		testsupport.Survey(
			[]string{"text", "respondent", "Respondent"},
			[]string{"select_one yn", "consent", "Consent?"},
		),
		testsupport.Choices([]string{"yn", "yes", "Yes"}, []string{"yn", "no", "No"}),
	)
	return path
}

func TestValidateFile(t *testing.T) {
	path := writeSurvey(t, t.TempDir())

	rep, err := ValidateFile(testsupport.Context(), path)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !rep.Valid {
		t.Fatalf("expected valid report, got %+v", rep.Findings)
	}
	if rep.File != path {
		t.Fatalf("unexpected file %q", rep.File)
	}
}

func TestValidateFS(t *testing.T) {
	dir := t.TempDir()
	writeSurvey(t, dir)

	rep, err := ValidateFS(testsupport.Context(), os.DirFS(dir), "survey.xlsx")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !rep.Valid || rep.File != "survey.xlsx" {
		t.Fatalf("unexpected report %+v", rep)
	}
}

func TestMergeFiles(t *testing.T) {
	a := writeSurvey(t, t.TempDir())
	b := writeSurvey(t, t.TempDir())

	rep, err := MergeFiles(testsupport.Context(), []string{a, b})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if rep.Valid {
		t.Fatalf("expected duplicate names across files to invalidate the merge")
	}
}
