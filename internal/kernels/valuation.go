package kernels

import "math"

// RIMResult is the residual-income-model intrinsic value estimate.
type RIMResult struct {
	Computable bool
	RIMValue   float64
}

// RIM computes the residual-income-model intrinsic value per SPEC_FULL.md
// §4.1. bps<=0 or a missing input makes the result non-computable.
func RIM(bps, roePct, riskFreeRate, equityRiskPremium, growthRate float64) RIMResult {
	if isMissing(bps) || isMissing(roePct) || bps <= 0 {
		return RIMResult{Computable: false}
	}
	r := riskFreeRate + equityRiskPremium
	roe := roePct / 100.0
	if math.Abs(r-growthRate) < 1e-10 {
		if roe > r {
			return RIMResult{Computable: true, RIMValue: round2(10 * bps)}
		}
		return RIMResult{Computable: true, RIMValue: round2(bps)}
	}
	value := bps + (roe-r)*bps/(r-growthRate)
	if value < 0 {
		value = 0
	}
	return RIMResult{Computable: true, RIMValue: round2(value)}
}

// DefaultRIM applies the documented defaults r_f=0.035, erp=0.065, g=0.
func DefaultRIM(bps, roePct float64) RIMResult {
	return RIM(bps, roePct, 0.035, 0.065, 0.0)
}

// SafetyMarginResult reports how far the current price sits below RIM value.
type SafetyMarginResult struct {
	Computable      bool
	SafetyMarginPct float64
	IsUndervalued   bool
}

// SafetyMargin computes (rim-price)/rim*100 when both inputs are positive.
func SafetyMargin(rim, price float64) SafetyMarginResult {
	if isMissing(rim) || isMissing(price) || rim <= 0 || price <= 0 {
		return SafetyMarginResult{Computable: false}
	}
	pct := round2((rim - price) / rim * 100)
	return SafetyMarginResult{Computable: true, SafetyMarginPct: pct, IsUndervalued: pct > 0}
}

// FScoreCriterion is one of the nine F-Score checks.
type FScoreCriterion struct {
	Name       string
	Score      int // 0 or 1
	Computable bool
}

// FScoreResult is the nine-criterion financial-health score.
type FScoreResult struct {
	TotalScore       int
	Criteria         []FScoreCriterion
	DataCompleteness float64
}

// FScoreInputs bundles the current/previous fundamental rows and the
// sector-wide medians the F-Score needs.
type FScoreInputs struct {
	Current, Previous FundamentalRow
	Sector            SectorMedians
	VolumeCurrent     float64
	VolumePrevious    float64
}

// FScore evaluates exactly nine Piotroski-style criteria per SPEC_FULL.md
// §4.1, tagging each computable/non-computable independently.
func FScore(in FScoreInputs) FScoreResult {
	crit := func(name string, computable bool, pass bool) FScoreCriterion {
		score := 0
		if computable && pass {
			score = 1
		}
		return FScoreCriterion{Name: name, Score: score, Computable: computable}
	}

	cur, prev := in.Current, in.Previous

	criteria := []FScoreCriterion{
		crit("eps_positive", !isMissing(cur.EPS), cur.EPS > 0),
		crit("roe_positive", !isMissing(cur.ROE), cur.ROE > 0),
		crit("roe_improving", !isMissing(cur.ROE) && !isMissing(prev.ROE), cur.ROE > prev.ROE),
		crit("eps_improving", !isMissing(cur.EPS) && !isMissing(prev.EPS), cur.EPS > prev.EPS),
		crit("bps_improving", !isMissing(cur.BPS) && !isMissing(prev.BPS), cur.BPS > prev.BPS),
		crit("pbr_below_sector_median", cur.PBR > 0 && !isMissing(in.Sector.MedianPBR), cur.PBR < in.Sector.MedianPBR),
		crit("dividend_positive", !isMissing(cur.DivYield), cur.DivYield > 0),
		crit("per_below_sector_median", cur.PER > 0 && !isMissing(in.Sector.MedianPER) && in.Sector.MedianPER > 0, cur.PER < in.Sector.MedianPER),
		crit("volume_improving", in.VolumePrevious > 0, in.VolumeCurrent > in.VolumePrevious),
	}

	total := 0
	computable := 0
	for _, c := range criteria {
		total += c.Score
		if c.Computable {
			computable++
		}
	}

	return FScoreResult{
		TotalScore:       total,
		Criteria:         criteria,
		DataCompleteness: float64(computable) / float64(len(criteria)),
	}
}

// Grade assigns the qualitative investment grade per SPEC_FULL.md §4.1. A
// missing margin is treated as negative infinity.
func Grade(fscore int, margin float64, completeness float64) string {
	if completeness < 0.5 {
		return "F"
	}
	if isMissing(margin) {
		margin = math.Inf(-1)
	}
	switch {
	case fscore >= 8 && margin >= 30:
		return "A+"
	case fscore >= 7 && margin >= 20:
		return "A"
	case fscore >= 6 && margin >= 10:
		return "B+"
	case fscore >= 5 && margin >= 0:
		return "B"
	case fscore >= 4:
		return "C+"
	case fscore >= 3:
		return "C"
	default:
		return "D"
	}
}
