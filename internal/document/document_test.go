package document

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackzampolin/draftly/internal/types"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		meta Meta
		want Kind
	}{
		{Meta{FileName: "nda.txt"}, KindText},
		{Meta{FileName: "NDA.DOCX"}, KindDOCX},
		{Meta{FileName: "scan.pdf"}, KindPDF},
		{Meta{FileName: "upload", MimeType: MimePDF}, KindPDF},
		{Meta{FileName: "upload", MimeType: MimeDOCX}, KindDOCX},
		{Meta{MimeType: "text/plain; charset=utf-8"}, KindText},
		{Meta{FileName: "blob.bin", MimeType: "application/octet-stream"}, KindUnknown},
		{Meta{}, KindUnknown},
	}
	for _, tt := range tests {
		if got := Detect(tt.meta); got != tt.want {
			t.Errorf("Detect(%+v) = %q, want %q", tt.meta, got, tt.want)
		}
	}
}

func TestExtractText(t *testing.T) {
	ctx := context.Background()

	got, err := Extract(ctx, []byte("\ufeffCONFIDENTIALITY\nKeep it secret."), Meta{FileName: "nda.txt"})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if got != "CONFIDENTIALITY\nKeep it secret." {
		t.Errorf("unexpected text %q", got)
	}

	got, err = Extract(ctx, []byte{'o', 'k', 0xff}, Meta{})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if got != "ok\ufffd" {
		t.Errorf("invalid bytes not replaced: %q", got)
	}
}

func TestExtractEmpty(t *testing.T) {
	_, err := Extract(context.Background(), nil, Meta{FileName: "nda.txt"})
	if !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestExtractCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Extract(ctx, []byte("text"), Meta{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDOCXRoundTrip(t *testing.T) {
	sections := []types.Section{
		{Index: 0, Heading: "CONFIDENTIALITY", Text: "Recipient shall keep Discloser's Confidential Information confidential."},
		{Index: 1, Heading: "GOVERNING LAW", Text: "Line one & <two>\nLine three"},
	}

	var buf bytes.Buffer
	if err := WriteDOCX(&buf, sections); err != nil {
		t.Fatalf("WriteDOCX failed: %v", err)
	}

	got, err := Extract(context.Background(), buf.Bytes(), Meta{FileName: "draft.docx"})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	want := strings.Join([]string{
		"CONFIDENTIALITY",
		"Recipient shall keep Discloser's Confidential Information confidential.",
		"GOVERNING LAW",
		"Line one & <two>",
		"Line three",
	}, "\n")
	if got != want {
		t.Errorf("round trip mismatch:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestDOCXParts(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDOCX(&buf, nil); err != nil {
		t.Fatalf("WriteDOCX failed: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("output is not a zip: %v", err)
	}
	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{"[Content_Types].xml", "_rels/.rels", "word/document.xml"} {
		if !names[want] {
			t.Errorf("missing part %s", want)
		}
	}
}

func TestDOCXTabsAndBreaks(t *testing.T) {
	xmlBody := `<w:document xmlns:w="x"><w:body>` +
		`<w:p><w:r><w:t>a</w:t><w:tab/><w:t>b</w:t><w:br/><w:t>c</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>d</w:t></w:r></w:p>` +
		`</w:body></w:document>`
	got, err := paragraphsFromXML(strings.NewReader(xmlBody))
	if err != nil {
		t.Fatalf("paragraphsFromXML failed: %v", err)
	}
	if got != "a\tb\nc\nd" {
		t.Errorf("unexpected text %q", got)
	}
}

func TestExtractMalformed(t *testing.T) {
	ctx := context.Background()
	if _, err := Extract(ctx, []byte("not a zip"), Meta{FileName: "x.docx"}); err == nil {
		t.Error("expected error for invalid docx")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if _, err := zw.Create("other.xml"); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := Extract(ctx, buf.Bytes(), Meta{FileName: "x.docx"}); err == nil {
		t.Error("expected error for docx without document part")
	}

	if _, err := Extract(ctx, []byte("%PDF-garbage"), Meta{FileName: "x.pdf"}); err == nil {
		t.Error("expected error for invalid pdf")
	}
	if _, err := PageCount([]byte("nope")); err == nil {
		t.Error("expected PageCount error")
	}
}
