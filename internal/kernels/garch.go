package kernels

import (
	"math"

	"gonum.org/v1/gonum/optimize"
)

// garchParams is (omega, alpha, beta) for GARCH(1,1): sigma2_t = omega +
// alpha*eps_{t-1}^2 + beta*sigma2_{t-1}.
type garchParams struct {
	omega, alpha, beta float64
}

// fitGARCH11 minimises the GARCH(1,1) negative log-likelihood via
// gonum/optimize. Returns ok=false on non-convergence or insufficient data,
// in which case the caller falls back to the EWMA variance path per
// SPEC_FULL.md §4.1's documented fallback chain.
func fitGARCH11(returns []float64) (garchParams, bool) {
	if len(returns) < 100 {
		return garchParams{}, false
	}

	sampleVar := stddev(returns)
	if isMissing(sampleVar) || sampleVar == 0 {
		return garchParams{}, false
	}
	sampleVar *= sampleVar

	negLogLik := func(x []float64) float64 {
		omega, alpha, beta := x[0], x[1], x[2]
		if omega <= 0 || alpha < 0 || beta < 0 || alpha+beta >= 0.999 {
			return math.Inf(1)
		}
		sigma2 := sampleVar
		var ll float64
		for _, r := range returns {
			if sigma2 <= 0 {
				return math.Inf(1)
			}
			ll += -0.5*math.Log(2*math.Pi*sigma2) - 0.5*r*r/sigma2
			sigma2 = omega + alpha*r*r + beta*sigma2
		}
		return -ll
	}

	problem := optimize.Problem{Func: negLogLik}
	initial := []float64{sampleVar * 0.05, 0.08, 0.85}

	result, err := optimize.Minimize(problem, initial, &optimize.Settings{
		MajorIterations: 200,
	}, &optimize.NelderMead{})
	if err != nil || result == nil || result.Status != optimize.Success {
		return garchParams{}, false
	}

	omega, alpha, beta := result.X[0], result.X[1], result.X[2]
	if omega <= 0 || alpha < 0 || beta < 0 || alpha+beta >= 0.999 {
		return garchParams{}, false
	}
	return garchParams{omega: omega, alpha: alpha, beta: beta}, true
}

// ewmaVariancePath computes a mean-reverting EWMA(lambda=0.94) variance
// trajectory toward the sample long-run variance, the documented fallback
// when GARCH MLE fitting fails or is skipped.
func ewmaVariancePath(returns []float64, steps int, lambda float64) []float64 {
	longRunVar := stddev(returns)
	if isMissing(longRunVar) {
		longRunVar = 0
	}
	longRunVar *= longRunVar

	v := longRunVar
	if len(returns) > 0 {
		last := returns[len(returns)-1]
		v = last * last
	}

	path := make([]float64, steps)
	for t := 0; t < steps; t++ {
		v = lambda*v + (1-lambda)*longRunVar
		path[t] = v
	}
	return path
}

// garchForecastVariancePath computes the standard multi-step GARCH(1,1)
// variance forecast: the first future step uses the last observed squared
// residual, and every subsequent step replaces the unknown residual with its
// expectation (the previous step's forecast variance), so the path converges
// geometrically at rate (alpha+beta) toward the unconditional variance
// omega/(1-alpha-beta).
func garchForecastVariancePath(params garchParams, lastSigma2, lastResidual2 float64, steps int) []float64 {
	path := make([]float64, steps)
	v := params.omega + params.alpha*lastResidual2 + params.beta*lastSigma2
	path[0] = v
	persistence := params.alpha + params.beta
	for t := 1; t < steps; t++ {
		v = params.omega + persistence*v
		path[t] = v
	}
	return path
}

// SimGARCH runs the GARCH(1,1) simulator per SPEC_FULL.md §4.1: fit ->
// EWMA fallback -> constant-sigma fallback. All simulated paths share one
// variance trajectory, a deliberate scoring-time simplification per §9 that
// must not be "fixed" silently.
func SimGARCH(logRets []float64, basePrice float64, numSims int, horizons []int, rng *Rand, maxSigma, driftAdjDaily, volMultiplier float64) *ModelResult {
	if len(logRets) < 30 {
		return nil
	}
	dailyMu := mean(logRets)
	dailySigmaHist := stddev(logRets)
	if isMissing(dailySigmaHist) || dailySigmaHist == 0 {
		return nil
	}

	maxH := maxHorizon(horizons)
	var variancePath []float64

	if params, ok := fitGARCH11(logRets); ok {
		lastResidual := logRets[len(logRets)-1] - dailyMu
		variancePath = garchForecastVariancePath(params, dailySigmaHist*dailySigmaHist, lastResidual*lastResidual, maxH)
	} else {
		variancePath = ewmaVariancePath(logRets, maxH, 0.94)
	}

	capVar := capAnnualizedSigma(dailySigmaHist, maxSigma)
	capVar *= capVar
	for i, v := range variancePath {
		if v > capVar || v <= 0 {
			variancePath[i] = capVar
		}
	}

	muArith := recoverArithmeticDrift(dailyMu, dailySigmaHist)
	muArith += driftAdjDaily
	muArith = clip(muArith, -maxDailyMu*2, maxDailyMu*2)

	z := rng.StandardNormalMatrix(numSims, maxH)

	terminalPrices := make(map[int][]float64, len(horizons))
	horizonsOut := make(map[int]HorizonStats, len(horizons))

	for _, h := range horizons {
		terminal := make([]float64, numSims)
		for i := 0; i < numSims; i++ {
			var cum float64
			for t := 0; t < h; t++ {
				sigma := math.Sqrt(variancePath[t]) * volMultiplier
				cum += muArith - 0.5*sigma*sigma + sigma*z[i][t]
			}
			terminal[i] = basePrice * math.Exp(cum)
		}
		clipSlice(terminal, basePrice*0.001, basePrice*100)
		terminalPrices[h] = terminal
		horizonsOut[h] = computeHorizonStats(terminal, basePrice, rng)
	}

	return &ModelResult{Model: "garch", TerminalPrices: terminalPrices, Horizons: horizonsOut}
}
