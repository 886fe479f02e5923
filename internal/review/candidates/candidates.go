// Package candidates scores document sections against clause pattern sets and
// keeps the best matching section(s) per clause type.
package candidates

import (
	"sort"
	"strings"

	"github.com/jackzampolin/draftly/internal/review/taxonomy"
	"github.com/jackzampolin/draftly/internal/types"
)

// Scoring weights.
const (
	HeadingBonus = 2.0
	MustHit      = 2.0
	MustHitCap   = 2
	ShouldHit    = 0.5
)

// Defaults for Options.
const (
	DefaultThreshold    = 2.2
	DefaultTopK         = 1
	DefaultSnippetChars = 280
)

// Options tunes candidate selection. Non-positive values fall back to the
// defaults, so a threshold of zero cannot be expressed; config validation
// rejects it.
type Options struct {
	Threshold    float64
	TopK         int
	SnippetChars int
}

func (o Options) withDefaults() Options {
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.SnippetChars <= 0 {
		o.SnippetChars = DefaultSnippetChars
	}
	return o
}

// Score returns the heuristic score of a section for one clause.
func Score(section types.Section, clause taxonomy.Clause) float64 {
	text := normalize(section.Text)
	heading := normalize(section.Heading)
	p := clause.Patterns

	var score float64
	if heading != "" {
		for _, rx := range p.Heading {
			if rx.MatchString(heading) {
				score += HeadingBonus
				break
			}
		}
	}

	mustHits := 0
	for _, rx := range p.Must {
		if rx.MatchString(text) {
			mustHits++
		}
	}
	score += MustHit * float64(min(MustHitCap, mustHits))

	for _, rx := range p.Should {
		if rx.MatchString(text) {
			score += ShouldHit
		}
	}
	return score
}

// Find scores every section for every clause in the taxonomy. The result has an
// entry for each clause type; an empty slice means no section reached the threshold.
// Candidate.SectionIndex is the position in sections, whatever Section.Index holds.
func Find(tax *taxonomy.Taxonomy, sections []types.Section, opts Options) map[types.ClauseType][]types.Candidate {
	opts = opts.withDefaults()

	out := make(map[types.ClauseType][]types.Candidate, len(tax.Clauses))
	for _, clause := range tax.Clauses {
		var found []types.Candidate
		for pos, sec := range sections {
			score := Score(sec, clause)
			if score < opts.Threshold {
				continue
			}
			found = append(found, types.Candidate{
				SectionIndex: pos,
				Score:        score,
				Heading:      sec.Heading,
				Snippet:      truncate(normalize(sec.Text), opts.SnippetChars),
			})
		}

		sort.SliceStable(found, func(i, j int) bool {
			return found[i].Score > found[j].Score
		})
		if len(found) > opts.TopK {
			found = found[:opts.TopK]
		}
		if found == nil {
			found = []types.Candidate{}
		}
		out[clause.Type] = found
	}
	return out
}

func normalize(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
