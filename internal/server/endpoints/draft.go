package endpoints

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/draftly/internal/api"
	"github.com/jackzampolin/draftly/internal/document"
	"github.com/jackzampolin/draftly/internal/draft"
	"github.com/jackzampolin/draftly/internal/svcctx"
)

// DraftEndpoint handles POST /api/draft and returns a .docx attachment.
type DraftEndpoint struct{}

var _ api.Endpoint = (*DraftEndpoint)(nil)

func (e *DraftEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/draft", e.handler
}

func (e *DraftEndpoint) RequiresGrader() bool { return false }

func (e *DraftEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := svcctx.LoggerFrom(ctx)

	if limit := svcctx.LimitsFrom(ctx).MaxJSONBytes; limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}

	var req draft.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.DocType) == "" {
		writeError(w, http.StatusBadRequest, "docType is required")
		return
	}

	drafter := svcctx.DrafterFrom(ctx)
	if drafter == nil {
		writeError(w, http.StatusServiceUnavailable, "drafter not initialized")
		return
	}

	result, err := drafter.Draft(ctx, req)
	if err != nil {
		if errors.Is(err, draft.ErrInvalidRequest) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Error("draft failed", "doc_type", req.DocType, "error", err)
		writeError(w, http.StatusInternalServerError, "Draft generation failed")
		return
	}

	var buf bytes.Buffer
	if err := document.WriteDOCX(&buf, result.Sections); err != nil {
		logger.Error("draft render failed", "doc_type", req.DocType, "error", err)
		writeError(w, http.StatusInternalServerError, "Draft generation failed")
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	w.Header().Set("Content-Type", document.MimeDOCX)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (e *DraftEndpoint) Command(getServerURL func() string) *cobra.Command {
	var (
		req draft.Request
		out string
	)
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Generate a draft contract and save it as .docx",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			data, _, err := client.Download(cmd.Context(), "/api/draft", req)
			if err != nil {
				return err
			}
			if out == "" {
				out = draft.FileName(req.DocType)
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", out, len(data))
			return nil
		},
	}
	cmd.Flags().StringVar(&req.DocType, "doc-type", "NDA", "Document type to draft")
	cmd.Flags().StringSliceVar(&req.Parties, "party", nil, "Party name (repeatable)")
	cmd.Flags().StringVar(&req.Purpose, "purpose", "", "Purpose of the agreement")
	cmd.Flags().StringVar(&req.Jurisdiction, "jurisdiction", "", "Governing jurisdiction")
	cmd.Flags().IntVar(&req.TermMonths, "term-months", 0, "Term in months")
	cmd.Flags().StringVarP(&out, "file", "f", "", "Output path (default <docType>-draft.docx)")
	return cmd
}
