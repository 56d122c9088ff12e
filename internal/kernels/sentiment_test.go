package kernels

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSentimentDecomposition_NoArticlesIsNoData(t *testing.T) {
	result := SentimentDecomposition(nil, 3, 2)
	require.Equal(t, "no_data", result.Status)
	require.Equal(t, "neutral", result.Signal)
}

func TestSentimentDecomposition_FewerThanMinArticlesIsInsufficient(t *testing.T) {
	articles := []ArticleInput{
		{SentimentRaw: 0.5, PublishedAt: time.Now(), SourceType: "financial", ArticleType: "analyst", Importance: 1},
	}
	result := SentimentDecomposition(articles, 3, 2)
	require.Equal(t, "insufficient", result.Status)
	require.Equal(t, 1, result.ArticleCount)
}

func TestSentimentDecomposition_StronglyPositiveArticlesYieldStrongBuy(t *testing.T) {
	now := time.Now()
	articles := make([]ArticleInput, 10)
	for i := range articles {
		articles[i] = ArticleInput{
			SentimentRaw: 0.9, PublishedAt: now, SourceType: "financial", ArticleType: "disclosure", Importance: 1,
		}
	}
	result := SentimentDecomposition(articles, 3, 2)
	require.Equal(t, "active", result.Status)
	require.Equal(t, "strong_buy", result.Signal)
	require.Greater(t, result.Direction, 0.0)
	require.Greater(t, result.SentimentScore, 50.0)
}

func TestSentimentDecomposition_StronglyNegativeArticlesYieldStrongSell(t *testing.T) {
	now := time.Now()
	articles := make([]ArticleInput, 10)
	for i := range articles {
		articles[i] = ArticleInput{
			SentimentRaw: -0.9, PublishedAt: now, SourceType: "financial", ArticleType: "disclosure", Importance: 1,
		}
	}
	result := SentimentDecomposition(articles, 3, 2)
	require.Equal(t, "strong_sell", result.Signal)
	require.Less(t, result.Direction, 0.0)
}

func TestSentimentDecomposition_MixedSentimentIsNeutral(t *testing.T) {
	now := time.Now()
	articles := []ArticleInput{
		{SentimentRaw: 0.5, PublishedAt: now, SourceType: "portal", ArticleType: "general", Importance: 1},
		{SentimentRaw: -0.5, PublishedAt: now, SourceType: "portal", ArticleType: "general", Importance: 1},
	}
	result := SentimentDecomposition(articles, 3, 2)
	require.Equal(t, "neutral", result.Signal)
	require.InDelta(t, 0, result.Direction, 1e-9)
}

func TestSentimentDecomposition_OlderArticlesDecayedByHalfLife(t *testing.T) {
	now := time.Now()
	articles := []ArticleInput{
		{SentimentRaw: 0.9, PublishedAt: now, SourceType: "general", ArticleType: "general", Importance: 1},
		{SentimentRaw: -0.9, PublishedAt: now.Add(-30 * 24 * time.Hour), SourceType: "general", ArticleType: "general", Importance: 1},
	}
	result := SentimentDecomposition(articles, 3, 2)
	require.Greater(t, result.Direction, 0.0) // recent positive article dominates the decayed old one
}

func TestSentimentAdjustments_NeutralScoreLeavesWeightsNearBase(t *testing.T) {
	s := SentimentResult{Status: "active", EffectiveScore: 0, Direction: 0, Intensity: 0, Confidence: 0}
	base := map[string]float64{"gbm": 0.4, "garch": 0.3, "heston": 0.2, "merton": 0.1}
	adj := SentimentAdjustments(s, 1, 1, 1, 1, 1, base)
	require.InDelta(t, 0, adj.DriftAdjDaily, 1e-9)
	require.InDelta(t, 1.0, adj.VolMultiplier, 1e-9)
	for model, w := range base {
		require.InDelta(t, w, adj.EnsembleWeights[model], 1e-9)
	}
}

func TestSentimentAdjustments_NegativeScoreRaisesVolAndShiftsWeightToMerton(t *testing.T) {
	s := SentimentResult{Status: "active", EffectiveScore: -0.8, Direction: -0.8, Intensity: 0.9, Confidence: 0.9}
	base := map[string]float64{"gbm": 0.4, "garch": 0.3, "heston": 0.2, "merton": 0.1}
	adj := SentimentAdjustments(s, 1, 1, 1, 1, 1, base)
	require.Greater(t, adj.VolMultiplier, 1.0)
	require.Greater(t, adj.MertonLamMult, 1.0)
	require.Less(t, adj.MertonMuJAdj, 0.0)
	require.Greater(t, adj.EnsembleWeights["merton"], base["merton"])
}

func TestSentimentAdjustments_ClipsExtremeVolMultiplier(t *testing.T) {
	s := SentimentResult{Status: "active", EffectiveScore: -1, Direction: -1, Intensity: 1, Confidence: 1}
	base := map[string]float64{"gbm": 0.25, "garch": 0.25, "heston": 0.25, "merton": 0.25}
	adj := SentimentAdjustments(s, 1, 100, 1, 1, 1, base)
	require.LessOrEqual(t, adj.VolMultiplier, 1.50)
}
