// Package composite implements the C7 synthesis stage: combining the C3/C6/
// C5 per-ticker outputs into one five-axis CompositeSnapshot, plus the
// supplemental investor-profile scoring enrichment of SPEC_FULL.md §4.1b.
package composite

import "github.com/riemannulus/whaleback/internal/kernels"

// Snapshot is one ticker's synthesised composite output, per SPEC_FULL.md
// §3's CompositeSnapshot entity.
type Snapshot struct {
	Ticker          string
	Score           float64
	ValueScore      *float64
	FlowScore       *float64
	MomentumScore   *float64
	ForecastScore   *float64
	SentimentScore  *float64
	WeightsUsed     map[string]float64
	AxesAvailable   int
	Confidence      float64
	Signals         map[string]string
	ConfluenceTier  int
	ConfluencePattern string
	Divergence      kernels.Divergence
	Tier            int
	TierLabel       string
	Action          string
	ProfileMatches  []ProfileMatch
}

// ProfileMatch is one investor profile's evaluation for a ticker, per
// SPEC_FULL.md §4.1b.
type ProfileMatch struct {
	Profile      string
	ProfileLabel string
	Score        *float64
	Eligible     bool
	FiltersMet   map[string]bool
}
