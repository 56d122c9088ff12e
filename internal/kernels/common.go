package kernels

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

func nan() float64 { return math.NaN() }

func isMissing(v float64) bool { return math.IsNaN(v) }

func clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// sigmoid is S(x; c, s) = 100 / (1 + exp(-(x-c)/s)).
func sigmoid(x, c, s float64) float64 {
	return 100.0 / (1.0 + math.Exp(-(x-c)/s))
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return nan()
	}
	return stat.Mean(xs, nil)
}

// stddev is the sample standard deviation (ddof=1), matching numpy's default
// used by the reference implementation for Monte-Carlo calibration.
func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return nan()
	}
	return stat.StdDev(xs, nil)
}

func sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

func maxOf(xs []float64) float64 {
	if len(xs) == 0 {
		return nan()
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

// medianSortedMiddle replicates the reference implementation's simple
// sorted-middle-element median (not a statistical interpolated median) so
// the F-Score's sector-median input matches its Python origin exactly.
func medianSortedMiddle(xs []float64) float64 {
	clean := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !isMissing(x) {
			clean = append(clean, x)
		}
	}
	if len(clean) == 0 {
		return nan()
	}
	sort.Float64s(clean)
	return clean[len(clean)/2]
}

// logReturns converts a price series into daily log returns.
func logReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] <= 0 || prices[i] <= 0 {
			out = append(out, nan())
			continue
		}
		out = append(out, math.Log(prices[i]/prices[i-1]))
	}
	return out
}

func sma(prices []float64, period int) float64 {
	if len(prices) < period {
		return nan()
	}
	return mean(prices[len(prices)-period:])
}

// percentile returns the p-th (0..100) linearly-interpolated percentile,
// backed by gonum/stat's cumulant-based quantile estimator.
func percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return nan()
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	if len(sorted) == 1 {
		return sorted[0]
	}
	return stat.Quantile(p/100, stat.LinInterp, sorted, nil)
}
