// Package grading asks a language model which checklist elements a candidate
// clause supports and maps the answer to a clause state.
package grading

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/draftly/internal/logging"
	"github.com/jackzampolin/draftly/internal/prompts"
	"github.com/jackzampolin/draftly/internal/prompts/grade"
	"github.com/jackzampolin/draftly/internal/providers"
	"github.com/jackzampolin/draftly/internal/review/taxonomy"
	"github.com/jackzampolin/draftly/internal/types"
)

// Defaults for Config.
const (
	DefaultMaxCandidateChars = 4000
	DefaultLooseMaxTokens    = 800
)

// Config configures a Grader.
type Config struct {
	// Client is the grading collaborator. Required.
	Client providers.LLMClient
	// Model overrides the client's default model.
	Model string
	// MaxCandidateChars bounds the candidate text sent per call.
	MaxCandidateChars int
	// LooseMaxTokens caps the completion when structured output is unavailable.
	LooseMaxTokens int
	// Timeout bounds each collaborator call (0 = none).
	Timeout time.Duration
	// Prompts resolves prompt overrides (optional).
	Prompts *prompts.Resolver
	Logger  *slog.Logger
}

// Grader grades candidate clauses. It is safe for concurrent use.
type Grader struct {
	client         providers.LLMClient
	model          string
	maxChars       int
	looseMaxTokens int
	timeout        time.Duration
	prompts        *prompts.Resolver
	logger         *slog.Logger
}

// NewGrader creates a grader.
func NewGrader(cfg Config) (*Grader, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("grading client is required")
	}
	if cfg.MaxCandidateChars <= 0 {
		cfg.MaxCandidateChars = DefaultMaxCandidateChars
	}
	if cfg.LooseMaxTokens <= 0 {
		cfg.LooseMaxTokens = DefaultLooseMaxTokens
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Grader{
		client:         cfg.Client,
		model:          cfg.Model,
		maxChars:       cfg.MaxCandidateChars,
		looseMaxTokens: cfg.LooseMaxTokens,
		timeout:        cfg.Timeout,
		prompts:        cfg.Prompts,
		logger:         logger.With("component", "grader"),
	}, nil
}

// ClientName returns the name of the grading collaborator.
func (g *Grader) ClientName() string {
	return g.client.Name()
}

// GradeClause grades text against the checklist. It never fails: collaborator
// errors and unparseable responses degrade to the conservative Fallback grade.
func (g *Grader) GradeClause(ctx context.Context, clauseType types.ClauseType, text string, checklist taxonomy.Checklist) Grade {
	text = truncateRunes(text, g.maxChars)
	messages := []providers.Message{
		{Role: "system", Content: g.prompts.Text(grade.SystemPromptKey, grade.SystemPrompt())},
		{Role: "user", Content: grade.UserPrompt(grade.Input{
			ClauseType:       string(clauseType),
			RequiredElements: checklist.Texts(),
			CandidateText:    text,
		})},
	}

	raw, mode, err := g.chat(ctx, clauseType, messages)
	if err != nil {
		g.logger.Error("grade error", "clause", clauseType, "error", err)
		return Fallback(checklist, fmt.Sprintf("%s: %v", RationaleLLMError, err))
	}

	result, err := ParseResponse(raw, checklist)
	if err != nil {
		g.logger.Warn("unparseable grade", "clause", clauseType, "mode", mode, "error", err,
			"preview", logging.Truncate(raw, logging.PreviewChars))
		return Fallback(checklist, fmt.Sprintf("%s: %v", RationaleParseErr, err))
	}
	result.Mode = mode

	g.logger.Debug("elements graded", "clause", clauseType, "mode", mode,
		"present", len(result.Elements.Present(checklist)), "required", len(checklist))
	return result
}

// chat calls the collaborator in strict JSON mode and, if that call fails,
// once more without a response format.
func (g *Grader) chat(ctx context.Context, clauseType types.ClauseType, messages []providers.Message) (string, string, error) {
	sizes := make([]int, len(messages))
	for i, m := range messages {
		sizes[i] = len(m.Content)
	}
	g.logger.Debug("chat start", "clause", clauseType, "client", g.client.Name(), "model", g.model, "msg_sizes", sizes)

	strict := &providers.ChatRequest{
		Messages:       messages,
		Model:          g.model,
		Temperature:    0,
		Timeout:        g.timeout,
		ResponseFormat: &providers.ResponseFormat{Type: providers.ResponseFormatJSONObject},
		RequestID:      uuid.New().String(),
	}
	res, err := g.client.Chat(ctx, strict)
	if err == nil {
		g.logger.Debug("chat ok", "mode", ModeStrict, "raw_len", len(res.Content),
			"preview", logging.Truncate(res.Content, logging.PreviewChars))
		// Prefer the provider's already-extracted object over the raw text.
		if len(res.ParsedJSON) > 0 {
			return string(res.ParsedJSON), ModeStrict, nil
		}
		return res.Content, ModeStrict, nil
	}
	g.logger.Debug("strict JSON failed, retrying without response_format", "clause", clauseType, "error", err)

	loose := &providers.ChatRequest{
		Messages:    messages,
		Model:       g.model,
		Temperature: 0,
		MaxTokens:   g.looseMaxTokens,
		Timeout:     g.timeout,
		RequestID:   uuid.New().String(),
	}
	res, err = g.client.Chat(ctx, loose)
	if err != nil {
		return "", ModeLoose, err
	}
	g.logger.Debug("chat ok", "mode", ModeLoose, "raw_len", len(res.Content),
		"preview", logging.Truncate(res.Content, logging.PreviewChars))
	return res.Content, ModeLoose, nil
}
