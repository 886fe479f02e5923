package grading

import (
	"math"
	"strings"

	"github.com/jackzampolin/draftly/internal/review/taxonomy"
	"github.com/jackzampolin/draftly/internal/types"
)

// Fixed confidences and rationales.
const (
	DefaultConfidence = 0.8
	DefaultRationale  = "graded"
	FailureConfidence = 0.2
	RationaleLLMError = "llm_error"
	RationaleParseErr = "parse_error"

	// missingConfidence applies to MISSING when the grader reported no confidence.
	missingConfidence = 0.5
)

// ElementGrade maps each required element description to whether the text supports it.
type ElementGrade map[string]bool

// Present returns the supported elements in checklist order.
func (e ElementGrade) Present(checklist taxonomy.Checklist) []string {
	out := []string{}
	for _, el := range checklist {
		if e[el.Text] {
			out = append(out, el.Text)
		}
	}
	return out
}

// Missing returns the unsupported elements in checklist order.
func (e ElementGrade) Missing(checklist taxonomy.Checklist) []string {
	out := []string{}
	for _, el := range checklist {
		if !e[el.Text] {
			out = append(out, el.Text)
		}
	}
	return out
}

// Grade is the normalized result of grading one candidate.
type Grade struct {
	Elements   ElementGrade
	Confidence float64
	Rationale  string
	// Mode is "strict", "loose" or "fallback".
	Mode string
}

// Grading modes.
const (
	ModeStrict   = "strict"
	ModeLoose    = "loose"
	ModeFallback = "fallback"
)

// Fallback is the conservative grade used when the collaborator fails: every
// element absent with a fixed low confidence.
func Fallback(checklist taxonomy.Checklist, rationale string) Grade {
	elements := make(ElementGrade, len(checklist))
	for _, el := range checklist {
		elements[el.Text] = false
	}
	return Grade{
		Elements:   elements,
		Confidence: FailureConfidence,
		Rationale:  rationale,
		Mode:       ModeFallback,
	}
}

// MapToState reduces an element grade to a clause state. Only core elements
// decide the state. A nil confidence means the grader reported none.
func MapToState(checklist taxonomy.Checklist, elements ElementGrade, confidence *float64) (types.ClauseState, float64) {
	core := checklist.Core()
	hits := 0
	for _, el := range core {
		if elements[el.Text] {
			hits++
		}
	}

	conf := func(floor float64) float64 {
		if confidence == nil {
			return floor
		}
		return math.Max(floor, *confidence)
	}

	switch {
	case len(core) == 0, hits == len(core):
		return types.StatePresent, conf(0.7)
	case hits > 0:
		return types.StateWeak, conf(0.6)
	default:
		if confidence == nil {
			return types.StateMissing, missingConfidence
		}
		return types.StateMissing, *confidence
	}
}

// State maps the grade against its checklist.
func (g Grade) State(checklist taxonomy.Checklist) (types.ClauseState, float64) {
	c := g.Confidence
	return MapToState(checklist, g.Elements, &c)
}

func clamp01(f float64) float64 {
	if math.IsNaN(f) {
		return DefaultConfidence
	}
	return math.Max(0, math.Min(1, f))
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func normKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
