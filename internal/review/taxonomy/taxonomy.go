// Package taxonomy holds the declarative clause configuration for document review:
// per clause type, the checklist of required elements and the regex pattern sets
// used by the candidate finder. New document types are added as data here.
package taxonomy

import (
	"regexp"
	"strings"

	"github.com/jackzampolin/draftly/internal/types"
)

// DefaultDocType is the only document type with tuned patterns.
const DefaultDocType = "NDA"

// Element is one required element of a clause checklist.
type Element struct {
	Text     string `json:"text" yaml:"text"`
	Optional bool   `json:"optional,omitempty" yaml:"optional,omitempty"`
}

// Checklist is the ordered set of elements a grader assesses for one clause type.
type Checklist []Element

// Texts returns the element descriptions in checklist order.
func (c Checklist) Texts() []string {
	out := make([]string, len(c))
	for i, e := range c {
		out[i] = e.Text
	}
	return out
}

// Core returns the elements that are not optional.
func (c Checklist) Core() Checklist {
	var out Checklist
	for _, e := range c {
		if !e.Optional {
			out = append(out, e)
		}
	}
	return out
}

// Patterns are the heuristics used to locate a clause in a section.
type Patterns struct {
	Heading []*regexp.Regexp
	Must    []*regexp.Regexp
	Should  []*regexp.Regexp
}

// Clause ties a clause type to its patterns and checklist.
type Clause struct {
	Type      types.ClauseType
	Patterns  Patterns
	Checklist Checklist
}

// Taxonomy is the full clause configuration for one document type.
type Taxonomy struct {
	DocType string
	Clauses []Clause
}

// Clause returns the configuration for a clause type.
func (t *Taxonomy) Clause(ct types.ClauseType) (Clause, bool) {
	for _, c := range t.Clauses {
		if c.Type == ct {
			return c, true
		}
	}
	return Clause{}, false
}

// Tuned reports whether docType has its own pattern set rather than reusing NDA's.
func Tuned(docType string) bool {
	return strings.EqualFold(strings.TrimSpace(docType), DefaultDocType)
}

// For returns the taxonomy for a document type. Only NDA is tuned; every other
// label reuses the NDA patterns.
func For(docType string) *Taxonomy {
	t := nda()
	if d := strings.TrimSpace(docType); d != "" {
		t.DocType = d
	}
	return t
}

func rx(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}
