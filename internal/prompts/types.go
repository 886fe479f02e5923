// Package prompts manages the prompt templates sent to language models.
//
// Embedded .tmpl files are the defaults. An operator may override any prompt
// by dropping a file named <key>.tmpl into the prompts directory under the
// draftly home; the resolver prefers the override when present.
package prompts

// EmbeddedPrompt represents a prompt loaded from an embedded .tmpl file.
type EmbeddedPrompt struct {
	Key         string   `json:"key"`                 // Hierarchical key: review.grade.system
	Text        string   `json:"text"`                // The prompt text (Go template)
	Description string   `json:"description"`         // Human-readable description
	Variables   []string `json:"variables,omitempty"` // Extracted template variables
	Hash        string   `json:"hash"`                // SHA256 hash of the text for change detection
}

// ResolvedPrompt is the text that will actually be sent for a key.
type ResolvedPrompt struct {
	Key        string   `json:"key"`
	Text       string   `json:"text"`
	Variables  []string `json:"variables,omitempty"`
	Hash       string   `json:"hash"`
	IsOverride bool     `json:"is_override"`
}
