package form

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseType(t *testing.T) {
	cases := []struct {
		raw  string
		want QuestionType
	}{
		{raw: "text", want: QuestionType{Raw: "text", Base: "text"}},
		{raw: "  select_one   yes_no ", want: QuestionType{Raw: "select_one yes_no", Base: TypeSelectOne, ListName: "yes_no"}},
		{raw: "select_multiple fruits or_other", want: QuestionType{Raw: "select_multiple fruits or_other", Base: TypeSelectMultiple, ListName: "fruits", Extra: []string{"or_other"}}},
		{raw: "select one colours", want: QuestionType{Raw: "select one colours", Base: TypeSelectOne, ListName: "colours"}},
		{raw: "Begin Group", want: QuestionType{Raw: "Begin Group", Base: TypeBeginGroup}},
		{raw: "end_repeat", want: QuestionType{Raw: "end_repeat", Base: TypeEndRepeat}},
		{raw: "select_one_from_file villages.csv", want: QuestionType{Raw: "select_one_from_file villages.csv", Base: TypeSelectOneFromFile, ListName: "villages.csv"}},
		{raw: "", want: QuestionType{}},
	}
	for _, tc := range cases {
		got := ParseType(tc.raw)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("ParseType(%q) mismatch (-want +got):\n%s", tc.raw, diff)
		}
	}
}

func TestQuestionTypePredicates(t *testing.T) {
	if !ParseType("select_multiple x").IsSelectMultiple() {
		t.Fatalf("expected select_multiple predicate")
	}
	if ParseType("select_one_from_file x.csv").IsSelect() {
		t.Fatalf("from_file selects do not reference the choices sheet")
	}
	if !ParseType("rank colours").IsSelect() {
		t.Fatalf("rank references a choice list")
	}
	if got := ParseType("begin repeat").Structure(); got != StructureRepeat {
		t.Fatalf("structure = %v, want repeat", got)
	}
	if !ParseType("end group").IsEnd() || !ParseType("begin_group").IsBegin() {
		t.Fatalf("expected begin/end predicates")
	}
	if ParseType("calculate").NeedsLabel() {
		t.Fatalf("calculate should not need a label")
	}
	if !ParseType("integer").NeedsLabel() {
		t.Fatalf("integer should need a label")
	}
	if ParseType("txet").IsKnown() {
		t.Fatalf("misspelled type should be unknown")
	}
}
