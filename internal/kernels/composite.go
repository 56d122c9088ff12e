package kernels

import "math"

// NormFScore = (fscore/9)^1.3 * 100, per SPEC_FULL.md §4.1.
func NormFScore(fscore int) float64 {
	return math.Pow(float64(fscore)/9.0, 1.3) * 100
}

// NormSafetyMargin = 100/(1+exp(-margin/25)), per SPEC_FULL.md §4.1.
func NormSafetyMargin(marginPct float64) float64 {
	return 100.0 / (1.0 + math.Exp(-marginPct/25.0))
}

// SubScores bundles the five composite axes; a nil pointer means the axis
// has no data and is excluded from weight redistribution.
type SubScores struct {
	Value     *float64
	Flow      *float64
	Momentum  *float64
	Forecast  *float64
	Sentiment *float64
}

// DefaultSubScoreWeights are the base weights before redistribution, per
// SPEC_FULL.md §4.7.
var DefaultSubScoreWeights = map[string]float64{
	"value": 0.25, "flow": 0.25, "momentum": 0.20, "forecast": 0.20, "sentiment": 0.10,
}

// CompositeResult is the synthesised composite score and metadata.
type CompositeResult struct {
	Score         float64
	WeightsUsed   map[string]float64 // sums to 1.0 when any axis available, else empty
	AxesAvailable int
	Confidence    float64
}

// Composite computes the weight-redistributed composite score per
// SPEC_FULL.md §4.7.
func Composite(sub SubScores) CompositeResult {
	values := map[string]*float64{
		"value": sub.Value, "flow": sub.Flow, "momentum": sub.Momentum,
		"forecast": sub.Forecast, "sentiment": sub.Sentiment,
	}

	var totalBaseWeight float64
	available := map[string]float64{}
	for axis, v := range values {
		if v != nil {
			available[axis] = *v
			totalBaseWeight += DefaultSubScoreWeights[axis]
		}
	}
	if len(available) == 0 {
		return CompositeResult{WeightsUsed: map[string]float64{}}
	}

	weightsUsed := make(map[string]float64, len(available))
	var score float64
	for axis, v := range available {
		w := DefaultSubScoreWeights[axis] / totalBaseWeight
		weightsUsed[axis] = w
		score += w * v
	}

	return CompositeResult{
		Score:         score,
		WeightsUsed:   weightsUsed,
		AxesAvailable: len(available),
		Confidence:    float64(len(available)) / 5.0,
	}
}

// SubSignal classifies a single sub-score per SPEC_FULL.md §4.7's thresholds.
// Returns "" (unknown) if score is nil.
func SubSignal(score *float64) string {
	if score == nil {
		return ""
	}
	v := *score
	switch {
	case v >= 75:
		return "strong_buy"
	case v >= 60:
		return "buy"
	case v >= 40:
		return "neutral"
	case v >= 25:
		return "sell"
	default:
		return "strong_sell"
	}
}

func signalSide(signal string) int {
	switch signal {
	case "strong_buy", "buy":
		return 1
	case "strong_sell", "sell":
		return -1
	default:
		return 0
	}
}

func isStrong(signal string) bool {
	return signal == "strong_buy" || signal == "strong_sell"
}

// ConfluenceResult reports the confluence tier and matched pattern.
type ConfluenceResult struct {
	Tier    int
	Pattern string
}

// Confluence implements the cascading tier rules of SPEC_FULL.md §4.7 over
// the known (non-empty) sub-signals.
func Confluence(signals map[string]string) ConfluenceResult {
	known := make([]string, 0, len(signals))
	for _, s := range signals {
		if s != "" {
			known = append(known, s)
		}
	}
	k := len(known)
	if k == 0 {
		return ConfluenceResult{Tier: 1, Pattern: "no_signal"}
	}

	allStrongBuy := true
	allStrongSell := true
	allBuySide := true
	allSellSide := true
	strongBuyCount, strongSellCount := 0, 0
	contraryToBuy, contraryToSell := 0, 0
	var strongCount int

	for _, s := range known {
		side := signalSide(s)
		strong := isStrong(s)
		if s != "strong_buy" {
			allStrongBuy = false
		}
		if s != "strong_sell" {
			allStrongSell = false
		}
		if side <= 0 {
			allBuySide = false
		}
		if side >= 0 {
			allSellSide = false
		}
		if s == "strong_buy" {
			strongBuyCount++
		}
		if s == "strong_sell" {
			strongSellCount++
		}
		if side < 0 {
			contraryToBuy++
		}
		if side > 0 {
			contraryToSell++
		}
		if strong {
			strongCount++
		}
	}

	if k >= 3 && (allStrongBuy || allStrongSell) {
		pattern := "all_strong_buy"
		if allStrongSell {
			pattern = "all_strong_sell"
		}
		return ConfluenceResult{Tier: 5, Pattern: pattern}
	}
	if k >= 3 && (allBuySide || allSellSide) {
		pattern := "all_buy_side"
		if allSellSide {
			pattern = "all_sell_side"
		}
		return ConfluenceResult{Tier: 4, Pattern: pattern}
	}
	if k >= 3 && ((strongBuyCount >= 2 && contraryToBuy <= 1) || (strongSellCount >= 2 && contraryToSell <= 1)) {
		pattern := "strong_majority_buy"
		if strongSellCount >= 2 {
			pattern = "strong_majority_sell"
		}
		return ConfluenceResult{Tier: 3, Pattern: pattern}
	}
	if strongCount == 1 {
		hasContrary := false
		for _, s := range known {
			if strongBuyCount == 1 && s == "strong_sell" {
				hasContrary = true
			}
			if strongSellCount == 1 && s == "strong_buy" {
				hasContrary = true
			}
		}
		if !hasContrary {
			return ConfluenceResult{Tier: 2, Pattern: "single_strong"}
		}
	}
	return ConfluenceResult{Tier: 1, Pattern: "mixed"}
}

// Divergence is a named conflict between two axis signals, detected in the
// order-sensitive priority of SPEC_FULL.md §4.7.
type Divergence struct {
	Type  string
	Label string
}

// DetectDivergence checks the five order-sensitive rules in SPEC_FULL.md
// §4.7 and returns the first that matches, or a zero-value Divergence.
func DetectDivergence(signals map[string]string) Divergence {
	isBuy := func(axis string) bool { s := signals[axis]; return s == "buy" || s == "strong_buy" }
	isSell := func(axis string) bool { s := signals[axis]; return s == "sell" || s == "strong_sell" }

	switch {
	case isBuy("value") && isSell("momentum"):
		return Divergence{Type: "value-momentum-divergence", Label: "value signals buy while momentum signals sell"}
	case isBuy("momentum") && isSell("value"):
		return Divergence{Type: "momentum-value-divergence", Label: "momentum signals buy while value signals sell"}
	case isBuy("flow") && isSell("value"):
		return Divergence{Type: "flow-value-divergence", Label: "flow signals buy while value signals sell"}
	case isBuy("forecast") && isSell("value"):
		return Divergence{Type: "forecast-value-divergence", Label: "forecast signals buy while value signals sell"}
	case isSell("forecast") && isBuy("momentum"):
		return Divergence{Type: "forecast-momentum-divergence", Label: "forecast signals sell while momentum signals buy"}
	default:
		return Divergence{}
	}
}

// CompositeTier classifies the 0..100 composite score into the tier/label
// bands at 80/65/50/35/20, per SPEC_FULL.md §4.7.
func CompositeTier(score float64) (tier int, label string, action string) {
	switch {
	case score >= 80:
		return 5, "strong_buy", "strong buy"
	case score >= 65:
		return 4, "buy", "buy"
	case score >= 50:
		return 3, "neutral", "hold"
	case score >= 35:
		return 2, "sell", "sell"
	default:
		return 1, "strong_sell", "strong sell"
	}
}
