package kernels

import "math"

// RelativeStrengthResult reports an indexed stock-vs-benchmark ratio series.
type RelativeStrengthResult struct {
	Computable   bool
	CurrentRS    float64
	PctChangeRS  float64
	Series       []float64
}

// RelativeStrength indexes both series to 100 at the first date of the
// window and returns the ratio series per SPEC_FULL.md §4.1.
func RelativeStrength(stockPrices, indexPrices []float64) RelativeStrengthResult {
	n := len(stockPrices)
	if n == 0 || n != len(indexPrices) || stockPrices[0] <= 0 || indexPrices[0] <= 0 {
		return RelativeStrengthResult{Computable: false}
	}
	stockBase, idxBase := stockPrices[0], indexPrices[0]
	series := make([]float64, n)
	for i := 0; i < n; i++ {
		if indexPrices[i] <= 0 || stockPrices[i] <= 0 {
			series[i] = nan()
			continue
		}
		stockIdx := stockPrices[i] / stockBase * 100
		indexIdx := indexPrices[i] / idxBase * 100
		series[i] = stockIdx / indexIdx
	}
	current := series[n-1]
	first := series[0]
	var pctChange float64
	if isMissing(first) || first == 0 {
		pctChange = nan()
	} else {
		pctChange = (current - first) / first * 100
	}
	return RelativeStrengthResult{Computable: true, CurrentRS: current, PctChangeRS: pctChange, Series: series}
}

// RSPercentile implements the cross-ticker percentile pass of SPEC_FULL.md
// §4.4: floor(count_strictly_below / total * 100).
func RSPercentile(rs float64, allRS []float64) int {
	if isMissing(rs) || len(allRS) == 0 {
		return 0
	}
	below := 0
	total := 0
	for _, v := range allRS {
		if isMissing(v) {
			continue
		}
		total++
		if v < rs {
			below++
		}
	}
	if total == 0 {
		return 0
	}
	return int(math.Floor(float64(below) / float64(total) * 100))
}

// SectorRotationQuadrant classifies a sector's momentum regime per
// SPEC_FULL.md §4.1a, supplementing the distilled spec's quadrant_bonus.
type SectorRotationQuadrant string

const (
	QuadrantLeading   SectorRotationQuadrant = "leading"
	QuadrantImproving SectorRotationQuadrant = "improving"
	QuadrantWeakening SectorRotationQuadrant = "weakening"
	QuadrantLagging   SectorRotationQuadrant = "lagging"
)

// QuadrantBonus is the composite momentum bonus attached to each quadrant.
func QuadrantBonus(q SectorRotationQuadrant) float64 {
	switch q {
	case QuadrantLeading:
		return 15
	case QuadrantImproving:
		return 10
	case QuadrantWeakening:
		return -5
	case QuadrantLagging:
		return -15
	default:
		return 0
	}
}

// SectorRotationInput is one sector's short-term RS change and medium-term
// RS level, ready for cross-sector quadrant classification.
type SectorRotationInput struct {
	Sector      string
	RSChange5d  float64 // slope of 5-day RS
	RSLevel60d  float64 // 60-day RS ratio
}

// SectorRotation classifies every sector against the cross-sector medians of
// RS level and RS change, per SPEC_FULL.md §4.1a. Fewer than 3 sectors with
// data makes every sector "lagging", which carries lagging's usual -15
// QuadrantBonus, matching the reference implementation's median-based
// fallback.
func SectorRotation(inputs []SectorRotationInput) map[string]SectorRotationQuadrant {
	out := make(map[string]SectorRotationQuadrant, len(inputs))

	levels := make([]float64, 0, len(inputs))
	changes := make([]float64, 0, len(inputs))
	for _, in := range inputs {
		if !isMissing(in.RSLevel60d) {
			levels = append(levels, in.RSLevel60d)
		}
		if !isMissing(in.RSChange5d) {
			changes = append(changes, in.RSChange5d)
		}
	}
	if len(levels) < 3 || len(changes) < 3 {
		for _, in := range inputs {
			out[in.Sector] = QuadrantLagging
		}
		return out
	}

	medLevel := medianSortedMiddle(levels)
	medChange := medianSortedMiddle(changes)

	for _, in := range inputs {
		if isMissing(in.RSLevel60d) || isMissing(in.RSChange5d) {
			out[in.Sector] = QuadrantLagging
			continue
		}
		aboveLevel := in.RSLevel60d >= medLevel
		aboveChange := in.RSChange5d >= medChange
		switch {
		case aboveLevel && aboveChange:
			out[in.Sector] = QuadrantLeading
		case !aboveLevel && aboveChange:
			out[in.Sector] = QuadrantImproving
		case aboveLevel && !aboveChange:
			out[in.Sector] = QuadrantWeakening
		default:
			out[in.Sector] = QuadrantLagging
		}
	}
	return out
}
