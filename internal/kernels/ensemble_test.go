package kernels

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func modelResult(model string, horizon int, terminal []float64, basePrice float64) *ModelResult {
	rng := NewRand(SeedFor("TEST", model))
	return &ModelResult{
		Model:          model,
		TerminalPrices: map[int][]float64{horizon: terminal},
		Horizons:       map[int]HorizonStats{horizon: computeHorizonStats(terminal, basePrice, rng)},
	}
}

func TestCombineEnsemble_SingleModelPassesThroughWithNilBreakdown(t *testing.T) {
	terminal := []float64{90, 100, 110, 120}
	results := map[string]*ModelResult{"gbm": modelResult("gbm", 63, terminal, 100)}
	rng := NewPoolingRand()
	out := CombineEnsemble(results, map[string]float64{"gbm": 1.0}, []int{63}, 100, []float64{1.1}, 1000, rng)
	require.Nil(t, out.ModelBreakdown)
	require.Contains(t, out.Horizons, 63)
	require.Contains(t, out.TargetProbs, 1.1)
}

func TestCombineEnsemble_MultiModelPoolsAndReportsBreakdown(t *testing.T) {
	gbmTerminal := []float64{95, 100, 105, 110}
	hestonTerminal := []float64{90, 95, 100, 105}
	results := map[string]*ModelResult{
		"gbm":    modelResult("gbm", 63, gbmTerminal, 100),
		"heston": modelResult("heston", 63, hestonTerminal, 100),
	}
	weights := map[string]float64{"gbm": 0.5, "heston": 0.5}
	rng := NewPoolingRand()
	out := CombineEnsemble(results, weights, []int{63}, 100, []float64{1.0}, 2000, rng)
	require.NotNil(t, out.ModelBreakdown)
	require.Equal(t, "weighted_pooling", out.ModelBreakdown.Method)
	require.Len(t, out.ModelBreakdown.ModelScores, 2)
	require.InDelta(t, 0.5, out.ModelBreakdown.ModelWeights["gbm"], 1e-9)
	require.InDelta(t, 0.5, out.ModelBreakdown.ModelWeights["heston"], 1e-9)
	require.Contains(t, out.Horizons, 63)
}

func TestCombineEnsemble_ZeroWeightsFallBackToEqualSplit(t *testing.T) {
	gbmTerminal := []float64{100, 100}
	hestonTerminal := []float64{100, 100}
	results := map[string]*ModelResult{
		"gbm":    modelResult("gbm", 63, gbmTerminal, 100),
		"heston": modelResult("heston", 63, hestonTerminal, 100),
	}
	rng := NewPoolingRand()
	out := CombineEnsemble(results, map[string]float64{}, []int{63}, 100, nil, 100, rng)
	require.InDelta(t, 0.5, out.ModelBreakdown.ModelWeights["gbm"], 1e-9)
	require.InDelta(t, 0.5, out.ModelBreakdown.ModelWeights["heston"], 1e-9)
}

func TestCombineEnsemble_MissingHorizonOnOneModelStillPools(t *testing.T) {
	results := map[string]*ModelResult{
		"gbm":    modelResult("gbm", 63, []float64{100, 110}, 100),
		"heston": {Model: "heston", TerminalPrices: map[int][]float64{}, Horizons: map[int]HorizonStats{}},
	}
	weights := map[string]float64{"gbm": 0.5, "heston": 0.5}
	rng := NewPoolingRand()
	out := CombineEnsemble(results, weights, []int{63}, 100, []float64{1.0}, 500, rng)
	require.Contains(t, out.Horizons, 63)
}
