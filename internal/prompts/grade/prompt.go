// Package grade holds the clause grading prompt and its response schema.
package grade

import (
	_ "embed"
	"encoding/json"

	"github.com/jackzampolin/draftly/internal/prompts"
)

//go:embed system.tmpl
var systemPrompt string

// Prompt keys
const (
	SystemPromptKey = "review.grade.system"
)

// SystemPrompt returns the embedded grading system prompt.
func SystemPrompt() string {
	return systemPrompt
}

// Input is the user message payload for one grading call.
type Input struct {
	ClauseType       string   `json:"clauseType"`
	RequiredElements []string `json:"requiredElements"`
	CandidateText    string   `json:"candidateText"`
}

// UserPrompt serializes the grading input as the user message.
func UserPrompt(in Input) string {
	if in.RequiredElements == nil {
		in.RequiredElements = []string{}
	}
	b, err := json.Marshal(in)
	if err != nil {
		// Only strings and string slices; cannot fail.
		return in.CandidateText
	}
	return string(b)
}

// RegisterPrompts registers the grading prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         SystemPromptKey,
		Text:        systemPrompt,
		Description: "Clause grading system prompt - marks each required element present or absent",
	})
}
