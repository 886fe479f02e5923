package sectioning

import (
	"strings"
	"testing"
	"unicode"

	"github.com/google/go-cmp/cmp"

	"github.com/jackzampolin/draftly/internal/types"
)

const ndaText = `MUTUAL NON-DISCLOSURE AGREEMENT

This Agreement is entered into by and between Acme Corp and Beta LLC for the purpose of evaluating a business relationship.

1. CONFIDENTIALITY
The Recipient shall hold all Confidential Information of the Discloser in strict confidence and use it solely for the Purpose.

2. EXCEPTIONS
Obligations do not apply to information that is public or already known to the Recipient.

Governing Law:
This Agreement is governed by the laws of the State of Delaware.`

func TestExtractSections_Empty(t *testing.T) {
	for _, in := range []string{"", "   ", "\r\n\r\n\t"} {
		got := ExtractSections(in)
		if got == nil || len(got) != 0 {
			t.Errorf("ExtractSections(%q) = %#v, want empty slice", in, got)
		}
	}
}

func TestExtractSections_NoBlankLines(t *testing.T) {
	text := "This is a single paragraph of prose that spans\nseveral lines but never has a blank line in it."
	got := ExtractSections(text)
	if len(got) != 1 {
		t.Fatalf("got %d sections, want 1", len(got))
	}
	if got[0].Heading != "" {
		t.Errorf("Heading = %q, want none", got[0].Heading)
	}
	if got[0].Text != text {
		t.Errorf("Text = %q, want input unchanged", got[0].Text)
	}
}

func TestExtractSections_Headings(t *testing.T) {
	got := ExtractSections(ndaText)

	// The title is a heading-only paragraph, so its text repeats the heading.
	want := []types.Section{
		{Index: 0, Heading: "MUTUAL NON-DISCLOSURE AGREEMENT", Text: "MUTUAL NON-DISCLOSURE AGREEMENT"},
		{Index: 1, Text: "This Agreement is entered into by and between Acme Corp and Beta LLC for the purpose of evaluating a business relationship."},
		{Index: 2, Heading: "1. CONFIDENTIALITY", Text: "The Recipient shall hold all Confidential Information of the Discloser in strict confidence and use it solely for the Purpose."},
		{Index: 3, Heading: "2. EXCEPTIONS", Text: "Obligations do not apply to information that is public or already known to the Recipient."},
		{Index: 4, Heading: "Governing Law", Text: "This Agreement is governed by the laws of the State of Delaware."},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sections mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractSections_MergesTinyFragments(t *testing.T) {
	text := "GENERAL TERMS\nThe parties agree to the following general terms and conditions.\n\nTERM\nTwo years.\n\nNOTICES\nAll notices must be delivered in writing to the addresses above."
	got := ExtractSections(text)

	if len(got) != 2 {
		t.Fatalf("got %d sections, want 2: %#v", len(got), got)
	}
	wantFirst := "The parties agree to the following general terms and conditions.\n\nTERM\nTwo years."
	if got[0].Text != wantFirst {
		t.Errorf("merged text = %q, want %q", got[0].Text, wantFirst)
	}
	if got[1].Index != 1 || got[1].Heading != "NOTICES" {
		t.Errorf("second section = %#v", got[1])
	}
}

func TestExtractSections_FirstTinySectionKept(t *testing.T) {
	got := ExtractSections("Short intro.\n\nThis second paragraph is comfortably longer than forty characters.")
	if len(got) != 2 {
		t.Fatalf("got %d sections, want 2", len(got))
	}
	if got[0].Text != "Short intro." {
		t.Errorf("first section = %q", got[0].Text)
	}
}

func TestExtractSections_NormalizesLineEndings(t *testing.T) {
	text := "SCOPE  \r\nThis clause describes the scope of the agreement between the parties.\t\r\n\r\n\r\nMore prose that is long enough to stand on its own as a section."
	got := ExtractSections(text)
	if len(got) != 2 {
		t.Fatalf("got %d sections, want 2", len(got))
	}
	if got[0].Heading != "SCOPE" {
		t.Errorf("Heading = %q, want SCOPE", got[0].Heading)
	}
	if strings.ContainsAny(got[0].Text, "\r\t") {
		t.Errorf("text not normalized: %q", got[0].Text)
	}
}

func TestIsHeading(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"CONFIDENTIALITY", true},
		{"RETURN AND DESTRUCTION", true},
		{"1. Definitions", true},
		{"2.3) Term of agreement", true},
		{"Governing Law:", true},
		{"Governing Law:  ", true},
		{"AB", false},
		{"Confidentiality", false},
		{"1.Definitions", false},
		{"The recipient shall not disclose.", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := IsHeading(tt.line); got != tt.want {
				t.Errorf("IsHeading(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestSplit_CustomMinChars(t *testing.T) {
	text := "First paragraph of text.\n\nSecond one."
	if got := Split(text, Options{MinChars: 5}); len(got) != 2 {
		t.Errorf("MinChars=5: got %d sections, want 2", len(got))
	}
	if got := Split(text, Options{MinChars: 40}); len(got) != 1 {
		t.Errorf("MinChars=40: got %d sections, want 1", len(got))
	}
}

func TestExtractSections_ReSectioningPreservesContent(t *testing.T) {
	first := ExtractSections(ndaText)
	second := ExtractSections(render(first))

	if a, b := stripSpace(render(first)), stripSpace(render(second)); a != b {
		t.Errorf("content changed on re-sectioning:\nfirst:  %q\nsecond: %q", a, b)
	}
}

func render(sections []types.Section) string {
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		if s.Heading != "" {
			parts = append(parts, s.Heading+"\n"+s.Text)
			continue
		}
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, "\n\n")
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
