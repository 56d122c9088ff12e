package kernels

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSimulationScore_MissingHorizonReturnsNil(t *testing.T) {
	result := SimulationScore(map[int]HorizonStats{63: {}})
	require.Nil(t, result.Score)
	require.Nil(t, result.Grade)
}

func TestSimulationScore_StrongUpsideGradesPositive(t *testing.T) {
	horizons := map[int]HorizonStats{
		63:  {ExpectedReturnPct: 15, VaR5PctReturn: -5, UpsideProb: 0.9},
		126: {ExpectedReturnPct: 30, VaR5PctReturn: -8, UpsideProb: 0.9},
	}
	result := SimulationScore(horizons)
	require.NotNil(t, result.Score)
	require.GreaterOrEqual(t, *result.Score, 70.0)
	require.Equal(t, "positive", *result.Grade)
}

func TestSimulationScore_WeakDownsideGradesNegative(t *testing.T) {
	horizons := map[int]HorizonStats{
		63:  {ExpectedReturnPct: -10, VaR5PctReturn: -30, UpsideProb: 0.2},
		126: {ExpectedReturnPct: -20, VaR5PctReturn: -30, UpsideProb: 0.2},
	}
	result := SimulationScore(horizons)
	require.NotNil(t, result.Score)
	require.Less(t, *result.Score, 30.0)
	require.Equal(t, "negative", *result.Grade)
}

func TestSimulationScore_ClippedToHundred(t *testing.T) {
	horizons := map[int]HorizonStats{
		63:  {ExpectedReturnPct: 1000, VaR5PctReturn: 50, UpsideProb: 1.0},
		126: {ExpectedReturnPct: 1000, VaR5PctReturn: 50, UpsideProb: 1.0},
	}
	result := SimulationScore(horizons)
	require.LessOrEqual(t, *result.Score, 100.0)
}
