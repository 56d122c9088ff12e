package kernels

// WhaleClassResult is the per-investor-class sub-score for one ticker.
type WhaleClassResult struct {
	Class        string
	NetTotal     float64
	Consistency  float64 // buy-day fraction, 0..1
	Intensity    float64 // 0..1
	SubScore     float64
	HasData      bool
}

// WhaleResult is the whale kernel's full output per SPEC_FULL.md §4.1.
type WhaleResult struct {
	WhaleScore float64
	Classes    []WhaleClassResult
	Signal     string
}

// Whale computes the accumulation-flow score over the trailing lookbackDays
// window (default 20) for the five tracked investor classes. avgDailyTradedValue
// may be NaN, in which case intensity falls back to consistency*0.5.
func Whale(flows []InvestorFlowDay, avgDailyTradedValue float64, lookbackDays int) WhaleResult {
	if lookbackDays <= 0 {
		lookbackDays = 20
	}
	window := flows
	if len(window) > lookbackDays {
		window = window[len(window)-lookbackDays:]
	}

	classes := make([]WhaleClassResult, 0, len(WhaleInvestorTypes))
	subScores := make([]float64, 0, len(WhaleInvestorTypes))
	var totalNetAllClasses float64
	anyData := false

	for _, class := range WhaleInvestorTypes {
		activeDays := 0
		buyDays := 0
		var netTotal float64
		hasAny := false
		for _, day := range window {
			v := day.byType(class)
			if isMissing(v) {
				continue
			}
			hasAny = true
			activeDays++
			netTotal += v
			if v > 0 {
				buyDays++
			}
		}
		if !hasAny || activeDays == 0 {
			classes = append(classes, WhaleClassResult{Class: class, HasData: false})
			continue
		}
		anyData = true
		consistency := float64(buyDays) / float64(activeDays)

		var intensity float64
		if isMissing(avgDailyTradedValue) || avgDailyTradedValue <= 0 {
			intensity = consistency * 0.5
		} else {
			absAvgNet := absF(netTotal) / float64(activeDays)
			intensity = clip(absAvgNet/avgDailyTradedValue, 0, 1.0)
		}

		subScore := 60*consistency + minF(40, 40*intensity)

		classes = append(classes, WhaleClassResult{
			Class:       class,
			NetTotal:    netTotal,
			Consistency: consistency,
			Intensity:   intensity,
			SubScore:    subScore,
			HasData:     true,
		})
		subScores = append(subScores, subScore)
		totalNetAllClasses += netTotal
	}

	if !anyData {
		return WhaleResult{WhaleScore: 0, Classes: classes, Signal: "neutral"}
	}

	score := 0.5*maxOf(subScores) + 0.5*mean(subScores)

	var signal string
	switch {
	case score >= 70:
		signal = "strong_accumulation"
	case score >= 50:
		signal = "mild_accumulation"
	case score >= 30:
		signal = "neutral"
	default:
		if totalNetAllClasses < 0 {
			signal = "distribution"
		} else {
			signal = "neutral"
		}
	}

	return WhaleResult{WhaleScore: score, Classes: classes, Signal: signal}
}

func absF(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
