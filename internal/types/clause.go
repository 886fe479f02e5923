// Package types provides shared types used across multiple packages.
// This package has no dependencies on other draftly packages to avoid import cycles.
package types

// ClauseType identifies one category in the NDA clause taxonomy.
type ClauseType string

const (
	ClauseConfidentiality  ClauseType = "confidentiality"
	ClauseExceptions       ClauseType = "exceptions"
	ClauseReturnDestroy    ClauseType = "returnDestroy"
	ClauseInjunctiveRelief ClauseType = "injunctiveRelief"
	ClauseGoverningLaw     ClauseType = "governingLaw"
)

// ClauseTypes is the fixed enumeration order. Findings are always reported in this order.
var ClauseTypes = []ClauseType{
	ClauseConfidentiality,
	ClauseExceptions,
	ClauseReturnDestroy,
	ClauseInjunctiveRelief,
	ClauseGoverningLaw,
}

// ClauseState is the verdict for one clause type.
type ClauseState string

const (
	StatePresent ClauseState = "PRESENT"
	StateWeak    ClauseState = "WEAK"
	StateMissing ClauseState = "MISSING"
)

// Section is one heading/text block of a document, in document order.
type Section struct {
	Index   int    `json:"index"`
	Heading string `json:"heading,omitempty"`
	Text    string `json:"text"`
}

// Candidate is a section heuristically identified as the likely location of a clause.
type Candidate struct {
	SectionIndex int     `json:"sectionIndex"`
	Score        float64 `json:"score"`
	Heading      string  `json:"heading"`
	Snippet      string  `json:"snippet"`
}

// Finding is the per-clause verdict of a review.
type Finding struct {
	ClauseType   ClauseType  `json:"clauseType" yaml:"clause_type"`
	State        ClauseState `json:"state" yaml:"state"`
	Confidence   float64     `json:"confidence" yaml:"confidence"`
	Elements     []string    `json:"elements" yaml:"elements"`
	Rationale    string      `json:"rationale" yaml:"rationale"`
	Snippet      *string     `json:"snippet,omitempty" yaml:"snippet,omitempty"`
	SectionIndex *int        `json:"sectionIndex,omitempty" yaml:"section_index,omitempty"`
}
