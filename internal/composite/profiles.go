package composite

// profileWeights is one investor profile's linear combination over
// value/flow/momentum and its minimum-eligibility filter set, grounded on
// the reference implementation's INVESTOR_PROFILES table.
type profileWeights struct {
	label      string
	value      float64
	flow       float64
	momentum   float64
	minFilters map[string]float64
}

var investorProfiles = map[string]profileWeights{
	"value": {
		label: "value", value: 0.55, flow: 0.25, momentum: 0.20,
		minFilters: map[string]float64{"fscore": 6, "safety_margin": 10},
	},
	"growth": {
		label: "growth", value: 0.30, flow: 0.40, momentum: 0.30,
		minFilters: map[string]float64{"fscore": 5, "whale_score": 50},
	},
	"momentum": {
		label: "momentum", value: 0.15, flow: 0.35, momentum: 0.50,
		minFilters: map[string]float64{"rs_percentile": 70},
	},
	"balanced": {
		label: "balanced", value: 0.35, flow: 0.35, momentum: 0.30,
		minFilters: map[string]float64{},
	},
}

// profileFilterInputs names the raw eligibility-filter values the profile
// min_filters table checks against; unavailable inputs fail their filter.
type profileFilterInputs struct {
	FScore       *int
	SafetyMargin *float64
	WhaleScore   *float64
	RSPercentile *int
}

func (f profileFilterInputs) value(name string) *float64 {
	switch name {
	case "fscore":
		if f.FScore == nil {
			return nil
		}
		v := float64(*f.FScore)
		return &v
	case "safety_margin":
		return f.SafetyMargin
	case "whale_score":
		return f.WhaleScore
	case "rs_percentile":
		if f.RSPercentile == nil {
			return nil
		}
		v := float64(*f.RSPercentile)
		return &v
	default:
		return nil
	}
}

// EvalProfiles scores every named investor profile against the same
// value/flow/momentum sub-scores C7 already computed, per SPEC_FULL.md
// §4.1b. A nil sub-score drops that profile's weight for that axis and
// renormalises over the axes that remain, matching Build's own
// redistribution behaviour.
func EvalProfiles(value, flow, momentum *float64, filters profileFilterInputs) []ProfileMatch {
	names := []string{"value", "growth", "momentum", "balanced"}
	out := make([]ProfileMatch, 0, len(names))

	for _, name := range names {
		prof := investorProfiles[name]
		score := weightedScore(prof, value, flow, momentum)

		filtersMet := make(map[string]bool, len(prof.minFilters))
		eligible := true
		for filt, threshold := range prof.minFilters {
			actual := filters.value(filt)
			if actual == nil {
				filtersMet[filt] = false
				eligible = false
				continue
			}
			passed := *actual >= threshold
			filtersMet[filt] = passed
			if !passed {
				eligible = false
			}
		}

		out = append(out, ProfileMatch{
			Profile:      name,
			ProfileLabel: prof.label,
			Score:        score,
			Eligible:     eligible,
			FiltersMet:   filtersMet,
		})
	}
	return out
}

func weightedScore(prof profileWeights, value, flow, momentum *float64) *float64 {
	type axis struct {
		w float64
		v *float64
	}
	axes := []axis{{prof.value, value}, {prof.flow, flow}, {prof.momentum, momentum}}

	var totalWeight float64
	for _, a := range axes {
		if a.v != nil {
			totalWeight += a.w
		}
	}
	if totalWeight == 0 {
		return nil
	}

	var score float64
	for _, a := range axes {
		if a.v != nil {
			score += (a.w / totalWeight) * *a.v
		}
	}
	return &score
}
