package kernels

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// VolatilityResult reports annualised volatility for one period.
type VolatilityResult struct {
	Computable bool
	AnnualizedPct float64
	RiskLevel  string // only meaningful for the 60-day series
}

// Volatility = std(daily log returns) * sqrt(252) * 100, per SPEC_FULL.md
// §4.1, classified low/medium/high/very_high using the 60-day figure.
func Volatility(prices []float64, period int) VolatilityResult {
	if len(prices) < period+1 {
		return VolatilityResult{Computable: false}
	}
	window := prices[len(prices)-period-1:]
	rets := logReturns(window)
	sd := stddev(rets)
	if isMissing(sd) {
		return VolatilityResult{Computable: false}
	}
	annualized := sd * math.Sqrt(252) * 100

	level := "low"
	switch {
	case annualized >= 60:
		level = "very_high"
	case annualized >= 40:
		level = "high"
	case annualized >= 20:
		level = "medium"
	}
	return VolatilityResult{Computable: true, AnnualizedPct: annualized, RiskLevel: level}
}

// BetaResult reports a stock's beta against the index benchmark.
type BetaResult struct {
	Computable bool
	Beta       float64
	Interpretation string
}

// Beta = Cov(stock_ret, idx_ret) / Var(idx_ret), per SPEC_FULL.md §4.1.
func Beta(stockPrices, indexPrices []float64, period int) BetaResult {
	n := period + 1
	if len(stockPrices) < n || len(indexPrices) < n {
		return BetaResult{Computable: false}
	}
	stockRets := logReturns(stockPrices[len(stockPrices)-n:])
	idxRets := logReturns(indexPrices[len(indexPrices)-n:])
	if len(stockRets) != len(idxRets) || len(stockRets) < 2 {
		return BetaResult{Computable: false}
	}

	cov := stat.Covariance(stockRets, idxRets, nil)
	varIdx := stat.Variance(idxRets, nil)
	if varIdx == 0 {
		return BetaResult{Computable: false}
	}
	beta := cov / varIdx

	abs := math.Abs(beta)
	interp := "low_volatility"
	switch {
	case abs >= 1.5:
		interp = "very_high_volatility"
	case abs >= 1.2:
		interp = "high_volatility"
	case abs >= 0.8:
		interp = "market_like"
	}

	return BetaResult{Computable: true, Beta: beta, Interpretation: interp}
}

// DrawdownResult reports max and current drawdown from the running peak.
type DrawdownResult struct {
	Computable      bool
	MaxDrawdownPct  float64
	CurrentDrawdownPct float64
	RecoveryLabel   string
}

// MaxDrawdown per SPEC_FULL.md §4.1: running-peak-relative minimum, plus the
// current drawdown from the all-time high within the window.
func MaxDrawdown(prices []float64, period int) DrawdownResult {
	if len(prices) < period || period < 1 {
		return DrawdownResult{Computable: false}
	}
	window := prices[len(prices)-period:]

	peak := window[0]
	maxDD := 0.0
	for _, p := range window {
		if p > peak {
			peak = p
		}
		dd := (p - peak) / peak
		if dd < maxDD {
			maxDD = dd
		}
	}

	allTimeHigh := maxOf(window)
	last := window[len(window)-1]
	currentDD := (last - allTimeHigh) / allTimeHigh

	label := "declining"
	switch {
	case currentDD > -0.05:
		label = "recovered"
	case currentDD > -0.15:
		label = "correcting"
	}

	return DrawdownResult{
		Computable:         true,
		MaxDrawdownPct:     maxDD * 100,
		CurrentDrawdownPct: currentDD * 100,
		RecoveryLabel:      label,
	}
}
