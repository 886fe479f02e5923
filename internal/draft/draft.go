// Package draft generates contract drafts from a short structured request.
//
// Generation is currently backed by a fixed stub; the prompt is still built so
// a model-backed Generator can slot in behind the same interface.
package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jackzampolin/draftly/internal/prompts"
	draftprompt "github.com/jackzampolin/draftly/internal/prompts/draft"
	"github.com/jackzampolin/draftly/internal/types"
)

// ErrInvalidRequest wraps request validation failures.
var ErrInvalidRequest = errors.New("invalid draft request")

// Request is the drafting input. Only DocType is required.
type Request struct {
	DocType      string   `json:"docType" validate:"required,max=64"`
	Parties      []string `json:"parties,omitempty" validate:"omitempty,max=10,dive,required"`
	Purpose      string   `json:"purpose,omitempty" validate:"max=2000"`
	Jurisdiction string   `json:"jurisdiction,omitempty" validate:"max=200"`
	TermMonths   int      `json:"termMonths,omitempty" validate:"gte=0,lte=600"`
}

// Prompt is the system/user message pair handed to a Generator.
type Prompt struct {
	System string
	User   string
}

// Generator produces draft sections from a prompt.
type Generator interface {
	Generate(ctx context.Context, p Prompt) ([]types.Section, error)
}

// StubGenerator returns a fixed two-section draft.
type StubGenerator struct{}

// Generate implements Generator.
func (StubGenerator) Generate(ctx context.Context, _ Prompt) ([]types.Section, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []types.Section{
		{Index: 0, Heading: "CONFIDENTIALITY", Text: "Recipient shall keep Discloser’s Confidential Information confidential."},
		{Index: 1, Heading: "GOVERNING LAW", Text: "This Agreement is governed by the laws of Delaware."},
	}, nil
}

// Result is a generated draft.
type Result struct {
	DocType  string
	FileName string
	Sections []types.Section
}

// Text renders the draft as plain text.
func (r *Result) Text() string {
	return Render(r.Sections)
}

// Drafter validates requests, builds prompts and calls the Generator.
type Drafter struct {
	gen      Generator
	prompts  *prompts.Resolver
	validate *validator.Validate
	logger   *slog.Logger
}

// NewDrafter creates a Drafter. A nil generator uses StubGenerator and a nil
// resolver uses the embedded prompt.
func NewDrafter(gen Generator, resolver *prompts.Resolver, logger *slog.Logger) *Drafter {
	if gen == nil {
		gen = StubGenerator{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Drafter{
		gen:      gen,
		prompts:  resolver,
		validate: validator.New(),
		logger:   logger.With("component", "drafter"),
	}
}

// Validate checks a request without generating anything.
func (d *Drafter) Validate(req Request) error {
	req.DocType = strings.TrimSpace(req.DocType)
	if err := d.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

// Draft generates a draft for req.
func (d *Drafter) Draft(ctx context.Context, req Request) (*Result, error) {
	req.DocType = strings.TrimSpace(req.DocType)
	if err := d.Validate(req); err != nil {
		return nil, err
	}

	p, err := BuildPrompt(d.prompts, req)
	if err != nil {
		return nil, err
	}

	d.logger.Info("draft start", "doc_type", req.DocType)
	d.logger.Debug("draft prompt", "system_chars", len(p.System), "user_chars", len(p.User))

	sections, err := d.gen.Generate(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("draft generation failed: %w", err)
	}

	d.logger.Info("draft done", "doc_type", req.DocType, "sections", len(sections))
	return &Result{
		DocType:  req.DocType,
		FileName: FileName(req.DocType),
		Sections: sections,
	}, nil
}

// BuildPrompt renders the system prompt for req's document type and encodes
// req itself as the user message.
func BuildPrompt(resolver *prompts.Resolver, req Request) (Prompt, error) {
	tmpl := resolver.Text(draftprompt.SystemPromptKey, draftprompt.SystemPrompt())
	system, err := prompts.Render(draftprompt.SystemPromptKey, tmpl, map[string]any{"DocType": req.DocType})
	if err != nil {
		return Prompt{}, fmt.Errorf("failed to render draft prompt: %w", err)
	}
	user, err := json.Marshal(req)
	if err != nil {
		return Prompt{}, fmt.Errorf("failed to encode draft request: %w", err)
	}
	return Prompt{System: strings.TrimSpace(system), User: string(user)}, nil
}

// Render joins sections as heading/text blocks separated by blank lines.
func Render(sections []types.Section) string {
	blocks := make([]string, 0, len(sections))
	for _, s := range sections {
		if s.Heading != "" {
			blocks = append(blocks, s.Heading+"\n"+s.Text)
			continue
		}
		blocks = append(blocks, s.Text)
	}
	return strings.Join(blocks, "\n\n")
}

// FileName is the attachment name for a draft of docType. Characters that
// could break a Content-Disposition header are replaced.
func FileName(docType string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '.', r == ' ':
			return r
		}
		return '_'
	}, docType)
	return safe + "-draft.docx"
}
