package prompts_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jackzampolin/draftly/internal/prompts"
	draftprompt "github.com/jackzampolin/draftly/internal/prompts/draft"
	"github.com/jackzampolin/draftly/internal/prompts/grade"
)

func newResolver() *prompts.Resolver {
	r := prompts.NewResolver(nil)
	grade.RegisterPrompts(r)
	draftprompt.RegisterPrompts(r)
	return r
}

func TestExtractVariables(t *testing.T) {
	got := prompts.ExtractVariables("Draft a {{.DocType}} for {{ .Parties }} under {{.DocType}}")
	if diff := cmp.Diff([]string{"DocType", "Parties"}, got); diff != "" {
		t.Errorf("ExtractVariables() mismatch (-want +got):\n%s", diff)
	}
}

func TestHashText(t *testing.T) {
	a := prompts.HashText("abc")
	if len(a) != 64 {
		t.Fatalf("hash length = %d, want 64", len(a))
	}
	if a == prompts.HashText("abd") {
		t.Error("different text produced same hash")
	}
}

func TestRender(t *testing.T) {
	got, err := prompts.Render("t", "Draft a {{.DocType}}.", map[string]string{"DocType": "NDA"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got != "Draft a NDA." {
		t.Errorf("Render() = %q", got)
	}

	if _, err := prompts.Render("t", "{{.Missing}}", map[string]string{}); err == nil {
		t.Error("expected error for missing key")
	}
	if _, err := prompts.Render("t", "{{", nil); err == nil {
		t.Error("expected parse error")
	}
}

func TestResolver(t *testing.T) {
	r := newResolver()

	all := r.AllEmbedded()
	if len(all) != 2 {
		t.Fatalf("AllEmbedded() = %d prompts, want 2", len(all))
	}
	if all[0].Key != draftprompt.SystemPromptKey || all[1].Key != grade.SystemPromptKey {
		t.Errorf("AllEmbedded() not sorted: %s, %s", all[0].Key, all[1].Key)
	}
	if diff := cmp.Diff([]string{"DocType"}, all[0].Variables); diff != "" {
		t.Errorf("draft variables mismatch (-want +got):\n%s", diff)
	}

	p, err := r.Resolve(grade.SystemPromptKey)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if p.IsOverride || p.Text != grade.SystemPrompt() || p.Hash != prompts.HashText(grade.SystemPrompt()) {
		t.Errorf("Resolve() = %+v", p)
	}

	if _, err := r.Resolve("nope"); err == nil {
		t.Error("expected error for unknown key")
	}
	if got := r.Text("nope", "fallback"); got != "fallback" {
		t.Errorf("Text() = %q, want fallback", got)
	}
}

func TestResolver_Overrides(t *testing.T) {
	r := newResolver()

	if err := r.SetOverride("unknown.key", "x"); err == nil {
		t.Error("expected error overriding unknown key")
	}
	if err := r.SetOverride(grade.SystemPromptKey, "Return JSON."); err != nil {
		t.Fatalf("SetOverride() error = %v", err)
	}
	p, _ := r.Resolve(grade.SystemPromptKey)
	if !p.IsOverride || p.Text != "Return JSON." {
		t.Errorf("Resolve() after override = %+v", p)
	}

	if err := r.SetOverride(grade.SystemPromptKey, "  "); err != nil {
		t.Fatalf("clearing override: %v", err)
	}
	if p, _ := r.Resolve(grade.SystemPromptKey); p.IsOverride {
		t.Error("override should be cleared")
	}
}

func TestResolver_LoadOverrides(t *testing.T) {
	r := newResolver()

	n, err := r.LoadOverrides(filepath.Join(t.TempDir(), "missing"))
	if err != nil || n != 0 {
		t.Fatalf("LoadOverrides(missing) = %d, %v", n, err)
	}

	dir := t.TempDir()
	write := func(name, text string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write(draftprompt.SystemPromptKey+".tmpl", "Write a {{.DocType}} in plain English.")
	write("not.registered.tmpl", "ignored")
	write("notes.txt", "ignored")

	n, err = r.LoadOverrides(dir)
	if err != nil {
		t.Fatalf("LoadOverrides() error = %v", err)
	}
	if n != 1 {
		t.Errorf("loaded %d overrides, want 1", n)
	}
	p, _ := r.Resolve(draftprompt.SystemPromptKey)
	if !p.IsOverride || !strings.Contains(p.Text, "plain English") {
		t.Errorf("Resolve() = %+v", p)
	}
}

func TestGradeUserPrompt(t *testing.T) {
	got := grade.UserPrompt(grade.Input{ClauseType: "governingLaw", CandidateText: "Laws of \"Delaware\"."})
	want := `{"clauseType":"governingLaw","requiredElements":[],"candidateText":"Laws of \"Delaware\"."}`
	if got != want {
		t.Errorf("UserPrompt() = %s\nwant %s", got, want)
	}
}
