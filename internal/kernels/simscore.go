package kernels

// SimulationScoreResult is the 0..100 composite score derived from a model
// or ensemble's horizon statistics.
type SimulationScoreResult struct {
	Score *float64
	Grade *string
}

// SimulationScore per SPEC_FULL.md §4.1: 0.40*S(return_6m) +
// 0.35*(upside_prob_3m*100) + 0.25*S(-var_5pct_3m). Returns a nil score and
// grade if either the 3-month (63d) or 6-month (126d) horizon is missing.
func SimulationScore(horizons map[int]HorizonStats) SimulationScoreResult {
	h3m, ok3 := horizons[63]
	h6m, ok6 := horizons[126]
	if !ok3 || !ok6 {
		return SimulationScoreResult{}
	}

	sReturn := sigmoid(h6m.ExpectedReturnPct, 0, 20)
	sVar := sigmoid(-h3m.VaR5PctReturn, -15, 10)

	score := 0.40*sReturn + 0.35*(h3m.UpsideProb*100) + 0.25*sVar
	score = clip(score, 0, 100)

	grade := "negative"
	switch {
	case score >= 70:
		grade = "positive"
	case score >= 50:
		grade = "neutral_positive"
	case score >= 30:
		grade = "neutral"
	}

	return SimulationScoreResult{Score: &score, Grade: &grade}
}
