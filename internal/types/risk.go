package types

import (
	"fmt"
	"strings"
)

// Band is the coarse risk classification of a review.
type Band string

const (
	BandLow  Band = "LOW"
	BandMed  Band = "MED"
	BandHigh Band = "HIGH"
	// BandUnknown is only used when the review abstains.
	BandUnknown Band = "UNKNOWN"
)

// RiskResult is the aggregate risk of a finding sequence.
type RiskResult struct {
	Score int  `json:"score" yaml:"score"`
	Band  Band `json:"band" yaml:"band"`
}

// ReviewResult is the outbound result of one document review.
type ReviewResult struct {
	Risk          RiskResult `json:"risk" yaml:"risk"`
	Findings      []Finding  `json:"findings" yaml:"findings"`
	SectionsCount int        `json:"sectionsCount" yaml:"sections_count"`

	// Abstain is set when no clause reached PRESENT or WEAK.
	Abstain bool   `json:"abstain,omitempty" yaml:"abstain,omitempty"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Summary renders the result as a short report, one line per finding.
func (r ReviewResult) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Risk: %d (%s)  sections: %d\n", r.Risk.Score, r.Risk.Band, r.SectionsCount)
	if r.Abstain {
		fmt.Fprintf(&b, "Abstained: %s\n", r.Message)
	}
	for _, f := range r.Findings {
		fmt.Fprintf(&b, "  %-17s %-8s %.2f  %s\n", f.ClauseType, f.State, f.Confidence, f.Rationale)
	}
	return b.String()
}
