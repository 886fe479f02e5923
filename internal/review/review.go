// Package review runs the contract review pipeline: sectioning, candidate
// finding, per-clause grading, state mapping and risk scoring.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jackzampolin/draftly/internal/document"
	"github.com/jackzampolin/draftly/internal/review/candidates"
	"github.com/jackzampolin/draftly/internal/review/grading"
	"github.com/jackzampolin/draftly/internal/review/scoring"
	"github.com/jackzampolin/draftly/internal/review/sectioning"
	"github.com/jackzampolin/draftly/internal/review/taxonomy"
	"github.com/jackzampolin/draftly/internal/types"
)

// Errors returned by the Reviewer. Input errors are reported before any work.
var (
	ErrMissingDocType = errors.New("docType is required")
	ErrNoDocument     = errors.New("no document provided")
	ErrExtraction     = errors.New("text extraction failed")
	ErrReviewFailed   = errors.New("review failed")
)

// DefaultMaxWorkers bounds concurrent grading calls.
const DefaultMaxWorkers = 5

// Rationale and confidence for clauses without a candidate.
const (
	RationaleNoCandidate  = "no candidate above threshold"
	NoCandidateConfidence = 0.8
)

// ClauseGrader grades one candidate clause. It must not fail; degraded
// results are expressed in the returned Grade.
type ClauseGrader interface {
	GradeClause(ctx context.Context, clauseType types.ClauseType, text string, checklist taxonomy.Checklist) grading.Grade
}

// ExtractFunc turns document bytes into plain text.
type ExtractFunc func(ctx context.Context, data []byte, meta document.Meta) (string, error)

// Config configures a Reviewer.
type Config struct {
	// Grader is the clause grading collaborator. Required.
	Grader ClauseGrader
	// Extract defaults to document.Extract.
	Extract    ExtractFunc
	Sectioning sectioning.Options
	Candidates candidates.Options
	Risk       scoring.Params
	MaxWorkers int
	Logger     *slog.Logger
}

// Reviewer reviews documents. It is safe for concurrent use.
type Reviewer struct {
	grader     ClauseGrader
	extract    ExtractFunc
	sectioning sectioning.Options
	candidates candidates.Options
	risk       scoring.Params
	maxWorkers int
	logger     *slog.Logger
}

// NewReviewer creates a Reviewer. A zero Risk uses scoring.DefaultParams.
func NewReviewer(cfg Config) (*Reviewer, error) {
	if cfg.Grader == nil {
		return nil, fmt.Errorf("review grader is required")
	}
	if cfg.Extract == nil {
		cfg.Extract = document.Extract
	}
	if cfg.Risk == (scoring.Params{}) {
		cfg.Risk = scoring.DefaultParams()
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = DefaultMaxWorkers
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Reviewer{
		grader:     cfg.Grader,
		extract:    cfg.Extract,
		sectioning: cfg.Sectioning,
		candidates: cfg.Candidates,
		risk:       cfg.Risk,
		maxWorkers: cfg.MaxWorkers,
		logger:     logger.With("component", "reviewer"),
	}, nil
}

// Request is an uploaded document to review.
type Request struct {
	DocType  string
	Data     []byte
	FileName string
	MimeType string
}

// ReviewDocument extracts text from the request bytes, sections it and reviews it.
func (r *Reviewer) ReviewDocument(ctx context.Context, req Request) (result *types.ReviewResult, err error) {
	docType := strings.TrimSpace(req.DocType)
	if docType == "" {
		return nil, ErrMissingDocType
	}
	if len(req.Data) == 0 {
		return nil, ErrNoDocument
	}
	defer r.recoverPanic(&result, &err)

	text, err := r.extract(ctx, req.Data, document.Meta{FileName: req.FileName, MimeType: req.MimeType})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	sections := sectioning.Split(text, r.sectioning)
	r.logger.Debug("document sectioned", "file", req.FileName, "text_chars", len(text), "sections", len(sections))
	return r.review(ctx, docType, sections)
}

// Review grades already-sectioned text. Its result depends only on docType,
// sections and the grading collaborator.
func (r *Reviewer) Review(ctx context.Context, docType string, sections []types.Section) (result *types.ReviewResult, err error) {
	docType = strings.TrimSpace(docType)
	if docType == "" {
		return nil, ErrMissingDocType
	}
	defer r.recoverPanic(&result, &err)
	return r.review(ctx, docType, sections)
}

func (r *Reviewer) review(ctx context.Context, docType string, sections []types.Section) (*types.ReviewResult, error) {
	reviewID := uuid.New().String()
	logger := r.logger.With("review_id", reviewID, "doc_type", docType)
	start := time.Now()

	tax := taxonomy.For(docType)
	if !taxonomy.Tuned(docType) {
		logger.Debug("no dedicated taxonomy, using NDA patterns")
	}
	logger.Info("review start", "sections", len(sections))

	found := candidates.Find(tax, sections, r.candidates)

	findings := make([]types.Finding, len(tax.Clauses))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxWorkers)
	for i, clause := range tax.Clauses {
		g.Go(func() (err error) {
			defer func() {
				if p := recover(); p != nil {
					logger.Error("panic grading clause", "clause", clause.Type, "panic", p, "stack", string(debug.Stack()))
					err = fmt.Errorf("%w: panic grading %s: %v", ErrReviewFailed, clause.Type, p)
				}
			}()
			findings[i] = r.gradeClause(gctx, logger, clause, found[clause.Type], sections)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReviewFailed, err)
	}

	result := &types.ReviewResult{
		Findings:      findings,
		SectionsCount: len(sections),
	}
	if abstains(findings) {
		result.Abstain = true
		result.Risk = types.RiskResult{Score: 0, Band: types.BandUnknown}
		result.Message = abstainMessage(docType)
		logger.Info("review abstained", "duration", time.Since(start))
		return result, nil
	}

	result.Risk = r.risk.Compute(findings)
	logger.Info("review done", "score", result.Risk.Score, "band", result.Risk.Band, "duration", time.Since(start))
	return result, nil
}

// gradeClause produces the finding for one clause from its top candidate.
func (r *Reviewer) gradeClause(ctx context.Context, logger *slog.Logger, clause taxonomy.Clause, cands []types.Candidate, sections []types.Section) types.Finding {
	if len(cands) == 0 {
		logger.Info("clause state", "clause", clause.Type, "state", types.StateMissing, "reason", RationaleNoCandidate)
		return types.Finding{
			ClauseType: clause.Type,
			State:      types.StateMissing,
			Confidence: NoCandidateConfidence,
			Elements:   []string{},
			Rationale:  RationaleNoCandidate,
		}
	}

	top := cands[0]
	text := sections[top.SectionIndex].Text
	grade := r.grader.GradeClause(ctx, clause.Type, text, clause.Checklist)
	state, confidence := grade.State(clause.Checklist)

	logger.Info("clause state", "clause", clause.Type, "state", state,
		"confidence", confidence, "section", top.SectionIndex, "score", top.Score,
		"missing", grade.Elements.Missing(clause.Checklist))

	snippet := top.Snippet
	sectionIndex := top.SectionIndex
	return types.Finding{
		ClauseType:   clause.Type,
		State:        state,
		Confidence:   confidence,
		Elements:     grade.Elements.Present(clause.Checklist),
		Rationale:    grade.Rationale,
		Snippet:      &snippet,
		SectionIndex: &sectionIndex,
	}
}

// recoverPanic converts a panic into ErrReviewFailed and discards any partial result.
func (r *Reviewer) recoverPanic(result **types.ReviewResult, err *error) {
	if p := recover(); p != nil {
		r.logger.Error("review panicked", "panic", p, "stack", string(debug.Stack()))
		*result = nil
		*err = fmt.Errorf("%w: %v", ErrReviewFailed, p)
	}
}

// abstains reports whether no clause reached PRESENT or WEAK.
func abstains(findings []types.Finding) bool {
	for _, f := range findings {
		if f.State == types.StatePresent || f.State == types.StateWeak {
			return false
		}
	}
	return true
}

func abstainMessage(docType string) string {
	return fmt.Sprintf("No %s clauses were detected. The uploaded document does not look like a %s, so no risk score was computed.", docType, docType)
}
