package kernels

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func syntheticLogReturns(n int, dailyMu, dailySigma float64, seed string) []float64 {
	rng := NewRand(SeedFor("SYN", seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = dailyMu + dailySigma*rng.standardNormal()
	}
	return out
}

func TestSimGBM_TooFewReturnsIsNil(t *testing.T) {
	rng := NewRand(SeedFor("T", "gbm"))
	result := SimGBM(make([]float64, 10), 1000, 100, []int{63}, rng, 1.0, 0, 1.0)
	require.Nil(t, result)
}

func TestSimGBM_ZeroHistoricalVolatilityIsNil(t *testing.T) {
	rng := NewRand(SeedFor("T", "gbm"))
	flat := make([]float64, 40) // all zero returns => stddev 0
	result := SimGBM(flat, 1000, 100, []int{63}, rng, 1.0, 0, 1.0)
	require.Nil(t, result)
}

func TestSimGBM_ProducesBoundedTerminalPricesPerHorizon(t *testing.T) {
	rng := NewRand(SeedFor("005930", "gbm"))
	logRets := syntheticLogReturns(252, 0.0003, 0.015, "gbm")
	result := SimGBM(logRets, 70000, 200, []int{21, 63}, rng, 0.8, 0, 1.0)
	require.NotNil(t, result)
	require.Equal(t, "gbm", result.Model)
	require.Len(t, result.TerminalPrices[21], 200)
	require.Len(t, result.TerminalPrices[63], 200)
	for _, p := range result.TerminalPrices[63] {
		require.GreaterOrEqual(t, p, 70000*0.001)
		require.LessOrEqual(t, p, 70000*100)
	}
	require.Contains(t, result.Horizons, 21)
	require.Contains(t, result.Horizons, 63)
}

func TestSimGBM_HigherDriftAdjustmentRaisesExpectedReturn(t *testing.T) {
	logRets := syntheticLogReturns(252, 0.0, 0.01, "gbm-drift")
	base := SimGBM(logRets, 1000, 500, []int{63}, NewRand(SeedFor("A", "gbm")), 0.8, 0, 1.0)
	boosted := SimGBM(logRets, 1000, 500, []int{63}, NewRand(SeedFor("A", "gbm")), 0.8, 0.01/252, 1.0)
	require.NotNil(t, base)
	require.NotNil(t, boosted)
	require.Greater(t, boosted.Horizons[63].ExpectedReturnPct, base.Horizons[63].ExpectedReturnPct)
}

func TestSimMerton_TooFewReturnsIsNil(t *testing.T) {
	rng := NewRand(SeedFor("T", "merton"))
	result := SimMerton(make([]float64, 10), 1000, 100, []int{63}, rng, 1, 0, 0.05, 1.0, 0, 1.0, 1.0, 0, 1.0)
	require.Nil(t, result)
}

func TestSimMerton_ProducesBoundedTerminalPrices(t *testing.T) {
	rng := NewRand(SeedFor("005930", "merton"))
	logRets := syntheticLogReturns(252, 0.0003, 0.015, "merton")
	result := SimMerton(logRets, 70000, 150, []int{63}, rng, 1.0, -0.02, 0.05, 0.8, 0, 1.0, 1.0, 0, 1.0)
	require.NotNil(t, result)
	require.Equal(t, "merton", result.Model)
	for _, p := range result.TerminalPrices[63] {
		require.GreaterOrEqual(t, p, 70000*0.001)
		require.LessOrEqual(t, p, 70000*100)
	}
}

func TestSimHeston_TooFewReturnsIsNil(t *testing.T) {
	rng := NewRand(SeedFor("T", "heston"))
	result := SimHeston(make([]float64, 10), 1000, 100, []int{63}, rng, 2, 0.0004, 0.3, -0.5, 0, 1.0, 0)
	require.Nil(t, result)
}

func TestSimHeston_ProducesBoundedTerminalPrices(t *testing.T) {
	rng := NewRand(SeedFor("005930", "heston"))
	logRets := syntheticLogReturns(252, 0.0003, 0.015, "heston")
	result := SimHeston(logRets, 70000, 150, []int{21, 63}, rng, 2, 0.0004, 0.3, -0.5, 0, 1.0, 0)
	require.NotNil(t, result)
	require.Equal(t, "heston", result.Model)
	require.Len(t, result.TerminalPrices[63], 150)
	for _, p := range result.TerminalPrices[63] {
		require.GreaterOrEqual(t, p, 70000*0.001)
		require.LessOrEqual(t, p, 70000*100)
	}
}

func TestSimHeston_FlagsFellerViolationWhenVarianceCanHitZero(t *testing.T) {
	rng := NewRand(SeedFor("005930", "heston-feller"))
	logRets := syntheticLogReturns(252, 0.0003, 0.015, "heston-feller")
	// 2*kappa*theta = 0.0016 <= xi^2 = 0.09: variance is not guaranteed positive.
	result := SimHeston(logRets, 70000, 50, []int{63}, rng, 2, 0.0004, 0.3, -0.5, 0, 1.0, 0)
	require.NotNil(t, result)
	require.True(t, result.FellerViolated)
}

func TestSimHeston_NoFellerViolationWhenConditionHolds(t *testing.T) {
	rng := NewRand(SeedFor("005930", "heston-ok"))
	logRets := syntheticLogReturns(252, 0.0003, 0.015, "heston-ok")
	// 2*kappa*theta = 2*2*0.05 = 0.2 > xi^2 = 0.01.
	result := SimHeston(logRets, 70000, 50, []int{63}, rng, 2, 0.05, 0.1, -0.5, 0, 1.0, 0)
	require.NotNil(t, result)
	require.False(t, result.FellerViolated)
}

func TestSimGARCH_TooFewReturnsIsNil(t *testing.T) {
	rng := NewRand(SeedFor("T", "garch"))
	result := SimGARCH(make([]float64, 10), 1000, 100, []int{63}, rng, 1.0, 0, 1.0)
	require.Nil(t, result)
}

func TestGarchForecastVariancePath_ConvergesToUnconditionalVariance(t *testing.T) {
	params := garchParams{omega: 0.00002, alpha: 0.08, beta: 0.85}
	path := garchForecastVariancePath(params, 0.0003, 0.0004, 500)
	unconditional := params.omega / (1 - params.alpha - params.beta)
	require.InDelta(t, unconditional, path[len(path)-1], unconditional*0.01)
	// the path must move monotonically toward the unconditional variance,
	// never overshoot past it and oscillate away.
	firstGap := math.Abs(path[0] - unconditional)
	lastGap := math.Abs(path[len(path)-1] - unconditional)
	require.Less(t, lastGap, firstGap)
}

func TestSimGARCH_ConvergedFitProducesBoundedTerminalPrices(t *testing.T) {
	rng := NewRand(SeedFor("005930", "garch-mle"))
	logRets := syntheticLogReturns(252, 0.0003, 0.015, "garch-mle")
	result := SimGARCH(logRets, 70000, 150, []int{21, 63, 126}, rng, 0.8, 0, 1.0)
	require.NotNil(t, result)
	require.Equal(t, "garch", result.Model)
	for _, h := range []int{21, 63, 126} {
		require.Len(t, result.TerminalPrices[h], 150)
		for _, p := range result.TerminalPrices[h] {
			require.GreaterOrEqual(t, p, 70000*0.001)
			require.LessOrEqual(t, p, 70000*100)
			require.False(t, math.IsNaN(p))
		}
	}
}

func TestSimGARCH_FallsBackToEWMAOnInsufficientHistoryForMLE(t *testing.T) {
	rng := NewRand(SeedFor("005930", "garch"))
	// Fewer than 100 points means fitGARCH11 declines and the EWMA path runs.
	logRets := syntheticLogReturns(80, 0.0003, 0.015, "garch-ewma")
	result := SimGARCH(logRets, 70000, 150, []int{63}, rng, 0.8, 0, 1.0)
	require.NotNil(t, result)
	require.Equal(t, "garch", result.Model)
	for _, p := range result.TerminalPrices[63] {
		require.GreaterOrEqual(t, p, 70000*0.001)
		require.LessOrEqual(t, p, 70000*100)
		require.False(t, math.IsNaN(p))
	}
}
