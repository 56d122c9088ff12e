package kernels

import "math"

// SimHeston runs the Heston stochastic-volatility simulator (Euler-Maruyama,
// full-truncation on variance) per SPEC_FULL.md §4.1.
func SimHeston(logRets []float64, basePrice float64, numSims int, horizons []int, rng *Rand,
	kappa, theta, xi, rho, driftAdjDaily, varianceMultiplier, rhoShift float64) *ModelResult {
	if len(logRets) < 30 {
		return nil
	}
	dailyMu := mean(logRets)
	dailySigmaHist := stddev(logRets)
	if isMissing(dailySigmaHist) || dailySigmaHist == 0 {
		return nil
	}

	muArith := recoverArithmeticDrift(dailyMu, dailySigmaHist)
	muArith += driftAdjDaily
	muArith = clip(muArith, -maxDailyMu*2, maxDailyMu*2)
	annualDrift := muArith * tradingDaysPerYear

	adjTheta := theta * varianceMultiplier
	adjRho := clip(rho+rhoShift, -0.999, 0.999)

	// Feller condition: 2*kappa*theta > xi^2. Warn-but-continue per §4.1;
	// the violation is surfaced on the result for the caller to log.
	fellerViolated := 2*kappa*adjTheta <= xi*xi

	dt := 1.0 / tradingDaysPerYear
	maxH := maxHorizon(horizons)

	terminalPrices := make(map[int][]float64, len(horizons))
	horizonsOut := make(map[int]HorizonStats, len(horizons))

	// Pre-generate two independent standard-normal matrices to build
	// correlated Brownian increments.
	z1 := rng.StandardNormalMatrix(numSims, maxH)
	zIndep := rng.StandardNormalMatrix(numSims, maxH)

	terminal := make(map[int][]float64, len(horizons))
	horizonSet := make(map[int]bool, len(horizons))
	for _, h := range horizons {
		horizonSet[h] = true
		terminal[h] = make([]float64, numSims)
	}

	for i := 0; i < numSims; i++ {
		logS := math.Log(basePrice)
		v := adjTheta // start variance at long-run mean
		for t := 0; t < maxH; t++ {
			z2 := adjRho*z1[i][t] + math.Sqrt(1-adjRho*adjRho)*zIndep[i][t]
			vPos := math.Max(v, 0)
			logS += (annualDrift - 0.5*vPos) * dt + math.Sqrt(vPos*dt)*z1[i][t]
			v = v + kappa*(adjTheta-vPos)*dt + xi*math.Sqrt(vPos*dt)*z2

			h := t + 1
			if horizonSet[h] {
				terminal[h][i] = math.Exp(logS)
			}
		}
	}

	for _, h := range horizons {
		ts := terminal[h]
		clipSlice(ts, basePrice*0.001, basePrice*100)
		terminalPrices[h] = ts
		horizonsOut[h] = computeHorizonStats(ts, basePrice, rng)
	}

	return &ModelResult{
		Model:          "heston",
		TerminalPrices: terminalPrices,
		Horizons:       horizonsOut,
		FellerViolated: fellerViolated,
	}
}
