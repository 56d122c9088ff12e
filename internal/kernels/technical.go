package kernels

// DisparityResult reports price-vs-moving-average disparity for one period.
type DisparityResult struct {
	Computable bool
	Value      float64
	Signal     string // only meaningful for the 20-day series
}

// Disparity computes last/SMA*100 for the given period per SPEC_FULL.md §4.1.
func Disparity(prices []float64, period int) DisparityResult {
	avg := sma(prices, period)
	if isMissing(avg) || avg == 0 {
		return DisparityResult{Computable: false}
	}
	last := prices[len(prices)-1]
	value := last / avg * 100

	signal := "neutral"
	switch {
	case value < 92:
		signal = "strong_oversold"
	case value < 96:
		signal = "oversold"
	case value > 108:
		signal = "strong_overbought"
	case value > 104:
		signal = "overbought"
	}
	return DisparityResult{Computable: true, Value: value, Signal: signal}
}

// BollingerResult reports the Bollinger band envelope and %b signal.
type BollingerResult struct {
	Computable bool
	Upper, Center, Lower float64
	BandwidthPct float64
	PercentB     float64
	Signal       string
}

// Bollinger(20, +-2sigma) per SPEC_FULL.md §4.1.
func Bollinger(prices []float64, period int, numStd float64) BollingerResult {
	if len(prices) < period {
		return BollingerResult{Computable: false}
	}
	window := prices[len(prices)-period:]
	center := mean(window)
	sd := stddev(window)
	if isMissing(sd) {
		sd = 0
	}
	upper := center + numStd*sd
	lower := center - numStd*sd
	if center == 0 || upper == lower {
		return BollingerResult{Computable: false}
	}
	bandwidth := (upper - lower) / center * 100
	last := prices[len(prices)-1]
	percentB := (last - lower) / (upper - lower)

	signal := "neutral"
	switch {
	case percentB > 1:
		signal = "upper_break"
	case percentB < 0:
		signal = "lower_support"
	case bandwidth < 10:
		signal = "squeeze"
	}

	return BollingerResult{
		Computable: true, Upper: upper, Center: center, Lower: lower,
		BandwidthPct: bandwidth, PercentB: percentB, Signal: signal,
	}
}

// MACDResult reports the MACD line, signal line, histogram, and crossover.
type MACDResult struct {
	Computable bool
	MACD, Signal, Histogram float64
	Crossover  string // "golden", "dead", or "none"
}

func emaSeries(prices []float64, period int) []float64 {
	if len(prices) < period {
		return nil
	}
	k := 2.0 / float64(period+1)
	out := make([]float64, len(prices))
	out[0] = prices[0]
	for i := 1; i < len(prices); i++ {
		out[i] = prices[i]*k + out[i-1]*(1-k)
	}
	return out
}

// MACD(12,26,9) per SPEC_FULL.md §4.1.
func MACD(prices []float64, fast, slow, signalPeriod int) MACDResult {
	if len(prices) < slow+signalPeriod {
		return MACDResult{Computable: false}
	}
	emaFast := emaSeries(prices, fast)
	emaSlow := emaSeries(prices, slow)

	macdSeries := make([]float64, len(prices))
	for i := range prices {
		macdSeries[i] = emaFast[i] - emaSlow[i]
	}
	signalSeries := emaSeries(macdSeries, signalPeriod)

	n := len(prices)
	macd := macdSeries[n-1]
	sig := signalSeries[n-1]
	hist := macd - sig

	crossover := "none"
	if n >= 2 {
		prevHist := macdSeries[n-2] - signalSeries[n-2]
		if prevHist <= 0 && hist > 0 {
			crossover = "golden"
		} else if prevHist >= 0 && hist < 0 {
			crossover = "dead"
		}
	}

	return MACDResult{Computable: true, MACD: macd, Signal: sig, Histogram: hist, Crossover: crossover}
}
