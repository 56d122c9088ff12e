package kernels

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestNormFScore_EndpointsAndMidpoint(t *testing.T) {
	require.InDelta(t, 0, NormFScore(0), 1e-9)
	require.InDelta(t, 100, NormFScore(9), 1e-9)
	require.Greater(t, NormFScore(5), 0.0)
	require.Less(t, NormFScore(5), 100.0)
}

func TestNormSafetyMargin_ZeroMarginIsFifty(t *testing.T) {
	require.InDelta(t, 50, NormSafetyMargin(0), 1e-9)
	require.Greater(t, NormSafetyMargin(25), 50.0)
	require.Less(t, NormSafetyMargin(-25), 50.0)
}

func TestComposite_NoAxesReturnsEmptyResult(t *testing.T) {
	result := Composite(SubScores{})
	require.Equal(t, 0, result.AxesAvailable)
	require.Empty(t, result.WeightsUsed)
	require.Equal(t, 0.0, result.Score)
}

func TestComposite_AllAxesUsesBaseWeights(t *testing.T) {
	result := Composite(SubScores{Value: f(80), Flow: f(80), Momentum: f(80), Forecast: f(80), Sentiment: f(80)})
	require.Equal(t, 5, result.AxesAvailable)
	require.InDelta(t, 1.0, result.Confidence, 1e-9)
	require.InDelta(t, 80, result.Score, 1e-9)
	var sum float64
	for _, w := range result.WeightsUsed {
		sum += w
	}
	require.InDelta(t, 1.0, sum, 1e-9)
}

func TestComposite_MissingAxesRedistributeWeight(t *testing.T) {
	result := Composite(SubScores{Value: f(100), Flow: f(0)})
	require.Equal(t, 2, result.AxesAvailable)
	require.InDelta(t, 0.4, result.Confidence, 1e-9)
	// value(0.25) and flow(0.25) are equal base weights, so redistributed 50/50.
	require.InDelta(t, 0.5, result.WeightsUsed["value"], 1e-9)
	require.InDelta(t, 50, result.Score, 1e-9)
}

func TestSubSignal_NilIsUnknown(t *testing.T) {
	require.Equal(t, "", SubSignal(nil))
}

func TestSubSignal_ThresholdBands(t *testing.T) {
	require.Equal(t, "strong_buy", SubSignal(f(75)))
	require.Equal(t, "buy", SubSignal(f(60)))
	require.Equal(t, "neutral", SubSignal(f(40)))
	require.Equal(t, "sell", SubSignal(f(25)))
	require.Equal(t, "strong_sell", SubSignal(f(24.9)))
}

func TestConfluence_NoSignalsIsTierOne(t *testing.T) {
	result := Confluence(map[string]string{})
	require.Equal(t, 1, result.Tier)
	require.Equal(t, "no_signal", result.Pattern)
}

func TestConfluence_AllStrongBuyIsTierFive(t *testing.T) {
	result := Confluence(map[string]string{"value": "strong_buy", "flow": "strong_buy", "momentum": "strong_buy"})
	require.Equal(t, 5, result.Tier)
	require.Equal(t, "all_strong_buy", result.Pattern)
}

func TestConfluence_AllBuySideIsTierFour(t *testing.T) {
	result := Confluence(map[string]string{"value": "buy", "flow": "strong_buy", "momentum": "buy"})
	require.Equal(t, 4, result.Tier)
	require.Equal(t, "all_buy_side", result.Pattern)
}

func TestConfluence_StrongMajorityIsTierThree(t *testing.T) {
	result := Confluence(map[string]string{
		"value": "strong_buy", "flow": "strong_buy", "momentum": "neutral", "forecast": "neutral",
	})
	require.Equal(t, 3, result.Tier)
	require.Equal(t, "strong_majority_buy", result.Pattern)
}

func TestConfluence_SingleStrongWithoutContraryIsTierTwo(t *testing.T) {
	result := Confluence(map[string]string{"value": "strong_buy", "flow": "neutral"})
	require.Equal(t, 2, result.Tier)
	require.Equal(t, "single_strong", result.Pattern)
}

func TestConfluence_SingleStrongWithContraryIsMixed(t *testing.T) {
	result := Confluence(map[string]string{"value": "strong_buy", "flow": "strong_sell"})
	require.Equal(t, 1, result.Tier)
	require.Equal(t, "mixed", result.Pattern)
}

func TestDetectDivergence_ValueBuyMomentumSellTakesPriority(t *testing.T) {
	result := DetectDivergence(map[string]string{"value": "buy", "momentum": "sell", "flow": "sell"})
	require.Equal(t, "value-momentum-divergence", result.Type)
}

func TestDetectDivergence_NoConflictReturnsZeroValue(t *testing.T) {
	result := DetectDivergence(map[string]string{"value": "buy", "momentum": "buy"})
	require.Equal(t, Divergence{}, result)
}

func TestCompositeTier_BandBoundaries(t *testing.T) {
	tier, label, action := CompositeTier(80)
	require.Equal(t, 5, tier)
	require.Equal(t, "strong_buy", label)
	require.Equal(t, "strong buy", action)

	tier, _, _ = CompositeTier(65)
	require.Equal(t, 4, tier)

	tier, _, _ = CompositeTier(50)
	require.Equal(t, 3, tier)

	tier, _, _ = CompositeTier(35)
	require.Equal(t, 2, tier)

	tier, _, _ = CompositeTier(0)
	require.Equal(t, 1, tier)
}
