// Package scoring aggregates clause findings into a risk score and band.
package scoring

import "github.com/jackzampolin/draftly/internal/types"

// Params are the tunable constants of the risk formula.
type Params struct {
	Baseline      int     `mapstructure:"baseline" yaml:"baseline" json:"baseline"`
	MinConfidence float64 `mapstructure:"min_confidence" yaml:"min_confidence" json:"min_confidence"`
	PresentDelta  int     `mapstructure:"present_delta" yaml:"present_delta" json:"present_delta"`
	WeakDelta     int     `mapstructure:"weak_delta" yaml:"weak_delta" json:"weak_delta"`
	MissingDelta  int     `mapstructure:"missing_delta" yaml:"missing_delta" json:"missing_delta"`
	LowScore      int     `mapstructure:"low_score" yaml:"low_score" json:"low_score"`
	LowSignals    int     `mapstructure:"low_signals" yaml:"low_signals" json:"low_signals"`
	MedScore      int     `mapstructure:"med_score" yaml:"med_score" json:"med_score"`
}

// DefaultParams returns the standard risk formula.
func DefaultParams() Params {
	return Params{
		Baseline:      60,
		MinConfidence: 0.6,
		PresentDelta:  8,
		WeakDelta:     4,
		MissingDelta:  -12,
		LowScore:      75,
		LowSignals:    4,
		MedScore:      50,
	}
}

// ComputeRisk scores findings with the default parameters.
func ComputeRisk(findings []types.Finding) types.RiskResult {
	return DefaultParams().Compute(findings)
}

// Compute scores findings. Findings below MinConfidence are ignored. PRESENT
// and WEAK findings raise the score and count as signals; MISSING lowers it.
// LOW requires both a high score and at least LowSignals signals.
func (p Params) Compute(findings []types.Finding) types.RiskResult {
	score := p.Baseline
	signals := 0

	for _, f := range findings {
		if f.Confidence < p.MinConfidence {
			continue
		}
		switch f.State {
		case types.StatePresent:
			score += p.PresentDelta
			signals++
		case types.StateWeak:
			score += p.WeakDelta
			signals++
		case types.StateMissing:
			score += p.MissingDelta
		}
	}

	score = max(0, min(100, score))

	band := types.BandHigh
	switch {
	case score >= p.LowScore && signals >= p.LowSignals:
		band = types.BandLow
	case score >= p.MedScore:
		band = types.BandMed
	}
	return types.RiskResult{Score: score, Band: band}
}
