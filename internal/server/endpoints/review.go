package endpoints

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/draftly/internal/api"
	"github.com/jackzampolin/draftly/internal/review"
	"github.com/jackzampolin/draftly/internal/review/taxonomy"
	"github.com/jackzampolin/draftly/internal/svcctx"
	"github.com/jackzampolin/draftly/internal/types"
)

// Multipart form fields accepted by POST /api/review.
const (
	reviewFileField    = "file"
	reviewDocTypeField = "docType"

	// multipartMemory is held in memory before spilling parts to disk.
	multipartMemory = 8 << 20
)

// ReviewEndpoint handles POST /api/review with a multipart file upload.
type ReviewEndpoint struct{}

var _ api.Endpoint = (*ReviewEndpoint)(nil)

func (e *ReviewEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/review", e.handler
}

func (e *ReviewEndpoint) RequiresGrader() bool { return true }

func (e *ReviewEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := svcctx.LoggerFrom(ctx)

	if limit := svcctx.LimitsFrom(ctx).MaxUploadBytes; limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(reviewFileField)
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}

	docType := strings.TrimSpace(r.FormValue(reviewDocTypeField))
	if docType == "" {
		docType = taxonomy.DefaultDocType
	}

	reviewer := svcctx.ReviewerFrom(ctx)
	if reviewer == nil {
		writeError(w, http.StatusServiceUnavailable, "no LLM provider configured")
		return
	}

	result, err := reviewer.ReviewDocument(ctx, review.Request{
		DocType:  docType,
		Data:     data,
		FileName: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
	})
	if err != nil {
		switch {
		case errors.Is(err, review.ErrNoDocument):
			writeError(w, http.StatusBadRequest, "No file uploaded")
			return
		case errors.Is(err, review.ErrMissingDocType):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Error("review failed", "file", header.Filename, "doc_type", docType, "error", err)
		writeError(w, http.StatusInternalServerError, "Review failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (e *ReviewEndpoint) Command(getServerURL func() string) *cobra.Command {
	var docType string
	cmd := &cobra.Command{
		Use:   "review <file>",
		Short: "Review a contract (txt, docx or pdf)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()

			client := api.NewClient(getServerURL())
			var resp types.ReviewResult
			err = client.PostMultipart(cmd.Context(), "/api/review",
				api.Upload{Field: reviewFileField, FileName: filepath.Base(args[0]), Content: f},
				map[string]string{reviewDocTypeField: docType}, &resp)
			if err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&docType, "doc-type", taxonomy.DefaultDocType, "Document type to review against")
	return cmd
}
