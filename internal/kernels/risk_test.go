package kernels

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVolatility_TooFewPricesNotComputable(t *testing.T) {
	result := Volatility([]float64{100, 101}, 60)
	require.False(t, result.Computable)
}

func TestVolatility_ClassifiesRiskLevels(t *testing.T) {
	flat := make([]float64, 61)
	for i := range flat {
		flat[i] = 100
	}
	result := Volatility(flat, 60)
	require.True(t, result.Computable)
	require.Equal(t, "low", result.RiskLevel)
	require.InDelta(t, 0, result.AnnualizedPct, 1e-9)
}

func TestVolatility_WildSwingsAreVeryHigh(t *testing.T) {
	prices := make([]float64, 61)
	for i := range prices {
		if i%2 == 0 {
			prices[i] = 100
		} else {
			prices[i] = 150
		}
	}
	result := Volatility(prices, 60)
	require.True(t, result.Computable)
	require.Equal(t, "very_high", result.RiskLevel)
}

func TestBeta_TooFewPricesNotComputable(t *testing.T) {
	result := Beta([]float64{100, 101}, []float64{1000, 1010}, 60)
	require.False(t, result.Computable)
}

func TestBeta_FlatIndexNotComputable(t *testing.T) {
	stock := make([]float64, 61)
	index := make([]float64, 61)
	for i := range stock {
		stock[i] = 100 + float64(i)
		index[i] = 1000
	}
	result := Beta(stock, index, 60)
	require.False(t, result.Computable)
}

func TestBeta_TracksIndexMovementOneToOne(t *testing.T) {
	stock := make([]float64, 61)
	index := make([]float64, 61)
	// identical but varying daily returns; a constant growth rate would
	// leave the index-return variance at rounding noise
	growth := 1.0
	for i := range stock {
		growth *= 1 + 0.01*math.Sin(float64(i))
		stock[i] = 100 * growth
		index[i] = 1000 * growth
	}
	result := Beta(stock, index, 60)
	require.True(t, result.Computable)
	require.InDelta(t, 1.0, result.Beta, 1e-6)
	require.Equal(t, "market_like", result.Interpretation)
}

func TestMaxDrawdown_TooFewPricesNotComputable(t *testing.T) {
	result := MaxDrawdown([]float64{100}, 5)
	require.False(t, result.Computable)
}

func TestMaxDrawdown_RecoveredToNewHigh(t *testing.T) {
	prices := []float64{100, 80, 70, 90, 110}
	result := MaxDrawdown(prices, 5)
	require.True(t, result.Computable)
	require.InDelta(t, -30, result.MaxDrawdownPct, 1e-9)
	require.Equal(t, "recovered", result.RecoveryLabel)
}

func TestMaxDrawdown_StillCorrectingFromPeak(t *testing.T) {
	prices := []float64{100, 95, 90}
	result := MaxDrawdown(prices, 3)
	require.True(t, result.Computable)
	require.Equal(t, "correcting", result.RecoveryLabel)
}

func TestMaxDrawdown_SharpDeclineIsDeclining(t *testing.T) {
	prices := []float64{100, 80, 70}
	result := MaxDrawdown(prices, 3)
	require.True(t, result.Computable)
	require.Equal(t, "declining", result.RecoveryLabel)
}
