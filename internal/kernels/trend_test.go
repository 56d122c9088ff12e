package kernels

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRelativeStrength_RatioOfIndexedSeriesStartsAtOne(t *testing.T) {
	stock := []float64{100, 110, 121}
	index := []float64{1000, 1000, 1000}
	result := RelativeStrength(stock, index)
	require.True(t, result.Computable)
	require.InDelta(t, 1, result.Series[0], 1e-9)
	require.InDelta(t, 1.21, result.Series[2], 1e-9) // stock up 21% against a flat index
	require.InDelta(t, 21, result.PctChangeRS, 1e-9)
}

func TestRelativeStrength_MismatchedLengthsNotComputable(t *testing.T) {
	result := RelativeStrength([]float64{100, 101}, []float64{1000})
	require.False(t, result.Computable)
}

func TestRelativeStrength_NonPositiveFirstBarNotComputable(t *testing.T) {
	result := RelativeStrength([]float64{0, 101}, []float64{1000, 1010})
	require.False(t, result.Computable)
}

func TestRSPercentile_FloorsStrictlyBelowCount(t *testing.T) {
	all := []float64{1, 2, 3, 4, 5}
	// 3 is strictly greater than {1,2}: 2/5*100 = 40
	require.Equal(t, 40, RSPercentile(3, all))
}

func TestRSPercentile_MissingInputReturnsZero(t *testing.T) {
	require.Equal(t, 0, RSPercentile(math.NaN(), []float64{1, 2, 3}))
	require.Equal(t, 0, RSPercentile(1, nil))
}

func TestQuadrantBonus_MatchesEachQuadrant(t *testing.T) {
	require.Equal(t, 15.0, QuadrantBonus(QuadrantLeading))
	require.Equal(t, 10.0, QuadrantBonus(QuadrantImproving))
	require.Equal(t, -5.0, QuadrantBonus(QuadrantWeakening))
	require.Equal(t, -15.0, QuadrantBonus(QuadrantLagging))
}

func TestSectorRotation_FewerThanThreeSectorsAllLagging(t *testing.T) {
	inputs := []SectorRotationInput{
		{Sector: "tech", RSChange5d: 1, RSLevel60d: 1},
		{Sector: "bio", RSChange5d: 2, RSLevel60d: 2},
	}
	out := SectorRotation(inputs)
	require.Equal(t, QuadrantLagging, out["tech"])
	require.Equal(t, QuadrantLagging, out["bio"])
}

func TestSectorRotation_ClassifiesAboveBelowMedians(t *testing.T) {
	inputs := []SectorRotationInput{
		{Sector: "leading", RSChange5d: 5, RSLevel60d: 5},
		{Sector: "improving", RSChange5d: 5, RSLevel60d: 1},
		{Sector: "weakening", RSChange5d: 1, RSLevel60d: 5},
		{Sector: "lagging", RSChange5d: 1, RSLevel60d: 1},
		{Sector: "median", RSChange5d: 3, RSLevel60d: 3},
	}
	out := SectorRotation(inputs)
	require.Equal(t, QuadrantLeading, out["leading"])
	require.Equal(t, QuadrantImproving, out["improving"])
	require.Equal(t, QuadrantWeakening, out["weakening"])
	require.Equal(t, QuadrantLagging, out["lagging"])
}
