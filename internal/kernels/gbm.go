package kernels

import "math"

// SimGBM runs the geometric-Brownian-motion simulator per SPEC_FULL.md §4.1.
// Returns nil if there isn't enough history.
func SimGBM(logRets []float64, basePrice float64, numSims int, horizons []int, rng *Rand, maxSigma, driftAdjDaily, volMultiplier float64) *ModelResult {
	if len(logRets) < 30 {
		return nil
	}
	dailyMu := mean(logRets)
	dailySigmaHist := stddev(logRets)
	if isMissing(dailySigmaHist) || dailySigmaHist == 0 {
		return nil
	}

	dailySigma := capAnnualizedSigma(dailySigmaHist, maxSigma)

	muArith := recoverArithmeticDrift(dailyMu, dailySigmaHist)
	muArith += driftAdjDaily
	muArith = clip(muArith, -maxDailyMu*2, maxDailyMu*2)

	dailySigma *= volMultiplier
	maxDailySigma := maxSigma / math.Sqrt(tradingDaysPerYear)
	if dailySigma > maxDailySigma {
		dailySigma = maxDailySigma
	}

	dailyDrift := muArith - 0.5*dailySigma*dailySigma

	maxH := maxHorizon(horizons)
	z := rng.StandardNormalMatrix(numSims, maxH)

	terminalPrices := make(map[int][]float64, len(horizons))
	horizonsOut := make(map[int]HorizonStats, len(horizons))

	for _, h := range horizons {
		terminal := make([]float64, numSims)
		for i := 0; i < numSims; i++ {
			var cum float64
			for t := 0; t < h; t++ {
				cum += dailyDrift + dailySigma*z[i][t]
			}
			terminal[i] = basePrice * math.Exp(cum)
		}
		clipSlice(terminal, basePrice*0.001, basePrice*100)
		terminalPrices[h] = terminal
		horizonsOut[h] = computeHorizonStats(terminal, basePrice, rng)
	}

	return &ModelResult{Model: "gbm", TerminalPrices: terminalPrices, Horizons: horizonsOut}
}
