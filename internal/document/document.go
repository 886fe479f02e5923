// Package document turns uploaded bytes into plain text and writes simple .docx files.
package document

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Content types.
const (
	MimeText = "text/plain"
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Kind is the extraction strategy for a document.
type Kind string

const (
	KindText Kind = "text"
	KindDOCX Kind = "docx"
	KindPDF  Kind = "pdf"
	// KindUnknown falls back to a UTF-8 decode.
	KindUnknown Kind = "unknown"
)

// ErrEmpty is returned when there are no bytes to extract from.
var ErrEmpty = errors.New("document is empty")

// Meta describes an uploaded document.
type Meta struct {
	FileName string
	MimeType string
}

// Detect picks the extraction strategy from the file extension, then the MIME type.
func Detect(meta Meta) Kind {
	switch strings.ToLower(filepath.Ext(meta.FileName)) {
	case ".txt", ".text", ".md":
		return KindText
	case ".docx":
		return KindDOCX
	case ".pdf":
		return KindPDF
	}

	mime := strings.ToLower(strings.TrimSpace(meta.MimeType))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	switch {
	case mime == MimeDOCX:
		return KindDOCX
	case mime == MimePDF:
		return KindPDF
	case strings.HasPrefix(mime, "text/"):
		return KindText
	}
	return KindUnknown
}

// Extract returns the plain text of data. Text and unknown kinds are decoded
// as UTF-8 with invalid sequences replaced.
func Extract(ctx context.Context, data []byte, meta Meta) (string, error) {
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	kind := Detect(meta)
	switch kind {
	case KindDOCX:
		text, err := extractDOCX(data)
		if err != nil {
			return "", fmt.Errorf("docx extraction failed: %w", err)
		}
		return text, nil
	case KindPDF:
		text, err := extractPDF(data)
		if err != nil {
			return "", fmt.Errorf("pdf extraction failed: %w", err)
		}
		return text, nil
	default:
		return decodeText(data), nil
	}
}

func decodeText(data []byte) string {
	s := strings.TrimPrefix(string(data), "\ufeff")
	return strings.ToValidUTF8(s, "\ufffd")
}
