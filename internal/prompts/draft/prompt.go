// Package draft holds the contract drafting prompt.
package draft

import (
	_ "embed"

	"github.com/jackzampolin/draftly/internal/prompts"
)

//go:embed system.tmpl
var systemPrompt string

// Prompt keys
const (
	SystemPromptKey = "draft.system"
)

// SystemPrompt returns the embedded drafting system prompt template.
func SystemPrompt() string {
	return systemPrompt
}

// RegisterPrompts registers the drafting prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         SystemPromptKey,
		Text:        systemPrompt,
		Description: "Draft generation system prompt - templated on the document type",
	})
}
