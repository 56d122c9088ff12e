package kernels

import "math"

// SimMerton runs the Merton jump-diffusion simulator per SPEC_FULL.md §4.1:
// GBM + compound Poisson jumps, drift-compensated by the jump contribution.
func SimMerton(logRets []float64, basePrice float64, numSims int, horizons []int, rng *Rand,
	lambda, muJ, sigmaJ, maxSigma, driftAdjDaily, volMultiplier, lamMultiplier, muJAdj, sigJMultiplier float64) *ModelResult {
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

	lambda *= lamMultiplier
	muJ += muJAdj
	sigmaJ *= sigJMultiplier
	if sigmaJ > 5.0 {
		sigmaJ = 5.0
	}

	lambdaDaily := lambda / tradingDaysPerYear
	k := math.Exp(muJ+0.5*sigmaJ*sigmaJ) - 1
	driftComp := muArith - lambdaDaily*k

	maxH := maxHorizon(horizons)
	z := rng.StandardNormalMatrix(numSims, maxH)

	terminalPrices := make(map[int][]float64, len(horizons))
	horizonsOut := make(map[int]HorizonStats, len(horizons))

	for _, h := range horizons {
		terminal := make([]float64, numSims)
		for i := 0; i < numSims; i++ {
			var cum float64
			for t := 0; t < h; t++ {
				nJumps := rng.Poisson(lambdaDaily)
				var jumpSum float64
				for j := 0; j < nJumps; j++ {
					jumpSum += rng.Normal(muJ, sigmaJ)
				}
				cum += (driftComp - 0.5*dailySigma*dailySigma) + dailySigma*z[i][t] + jumpSum
			}
			terminal[i] = basePrice * math.Exp(cum)
		}
		clipSlice(terminal, basePrice*0.001, basePrice*100)
		terminalPrices[h] = terminal
		horizonsOut[h] = computeHorizonStats(terminal, basePrice, rng)
	}

	return &ModelResult{Model: "merton", TerminalPrices: terminalPrices, Horizons: horizonsOut}
}
