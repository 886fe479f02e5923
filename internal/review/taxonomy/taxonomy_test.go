package taxonomy

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jackzampolin/draftly/internal/types"
)

func TestFor_CoversEveryClauseInOrder(t *testing.T) {
	tax := For("NDA")

	var got []types.ClauseType
	for _, c := range tax.Clauses {
		got = append(got, c.Type)
		if len(c.Checklist) == 0 {
			t.Errorf("%s: empty checklist", c.Type)
		}
		if len(c.Patterns.Must) == 0 {
			t.Errorf("%s: no must patterns", c.Type)
		}
	}
	if diff := cmp.Diff(types.ClauseTypes, got); diff != "" {
		t.Errorf("clause order mismatch (-want +got):\n%s", diff)
	}
}

func TestFor_OtherDocTypesReuseNDA(t *testing.T) {
	tax := For("MSA")
	if tax.DocType != "MSA" {
		t.Errorf("DocType = %q, want MSA", tax.DocType)
	}
	if len(tax.Clauses) != len(types.ClauseTypes) {
		t.Fatalf("got %d clauses, want %d", len(tax.Clauses), len(types.ClauseTypes))
	}
	if Tuned("MSA") {
		t.Error("MSA should not report tuned patterns")
	}
	if !Tuned(" nda ") {
		t.Error("NDA should report tuned patterns")
	}
}

func TestChecklist_Core(t *testing.T) {
	cl := Checklist{
		{Text: "a"},
		{Text: "b", Optional: true},
		{Text: "c"},
	}
	if diff := cmp.Diff([]string{"a", "c"}, cl.Core().Texts()); diff != "" {
		t.Errorf("Core() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, cl.Texts()); diff != "" {
		t.Errorf("Texts() mismatch (-want +got):\n%s", diff)
	}
}

func TestTaxonomy_Clause(t *testing.T) {
	tax := For("")
	if tax.DocType != DefaultDocType {
		t.Errorf("DocType = %q, want %q", tax.DocType, DefaultDocType)
	}
	c, ok := tax.Clause(types.ClauseGoverningLaw)
	if !ok {
		t.Fatal("governingLaw clause not found")
	}
	if len(c.Checklist.Core()) != 1 {
		t.Errorf("governingLaw core elements = %d, want 1", len(c.Checklist.Core()))
	}
	if _, ok := tax.Clause("bogus"); ok {
		t.Error("unexpected clause for unknown type")
	}
}
