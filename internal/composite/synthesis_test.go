package composite

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestBuild_NoAxesSkipsTicker(t *testing.T) {
	_, ok := Build(Input{Ticker: "000000"})
	require.False(t, ok)
}

func TestBuild_AllAxesPresent(t *testing.T) {
	in := Input{
		Ticker:           "005930",
		FScore:           intPtr(8),
		SafetyMarginPct:  floatPtr(30),
		DataCompleteness: 1.0,
		WhaleScore:       floatPtr(70),
		SectorFlowBonus:  5,
		RSPercentile:     intPtr(80),
		QuadrantBonus:    15,
		SimulationScore:  floatPtr(65),
		SentimentScore:   floatPtr(60),
	}

	snap, ok := Build(in)
	require.True(t, ok)
	require.Equal(t, 5, snap.AxesAvailable)
	require.Equal(t, 1.0, snap.Confidence)
	require.InDelta(t, 1.0, sumWeights(snap.WeightsUsed), 1e-9)
	require.Equal(t, 75.0, *snap.FlowScore) // clipped 70+5=75
	require.Equal(t, 95.0, *snap.MomentumScore) // 80 + 15, under the 100 clip
	require.NotEmpty(t, snap.TierLabel)
}

func TestBuild_MomentumClipsAtHundred(t *testing.T) {
	in := Input{Ticker: "X", RSPercentile: intPtr(95), QuadrantBonus: 15}
	snap, ok := Build(in)
	require.True(t, ok)
	require.Equal(t, 100.0, *snap.MomentumScore)
}

func TestBuild_PartialAxesRedistributesWeights(t *testing.T) {
	in := Input{Ticker: "Y", FScore: intPtr(5), SafetyMarginPct: floatPtr(0), DataCompleteness: 1.0}
	snap, ok := Build(in)
	require.True(t, ok)
	require.Equal(t, 1, snap.AxesAvailable)
	require.InDelta(t, 1.0, snap.WeightsUsed["value"], 1e-9)
	require.Equal(t, *snap.ValueScore, snap.Score)
}

func TestEvalProfiles_EligibilityChecksFilters(t *testing.T) {
	matches := EvalProfiles(floatPtr(80), floatPtr(60), floatPtr(50), profileFilterInputs{
		FScore:       intPtr(7),
		SafetyMargin: floatPtr(20),
		WhaleScore:   floatPtr(60),
		RSPercentile: intPtr(40),
	})
	require.Len(t, matches, 4)

	byProfile := map[string]ProfileMatch{}
	for _, m := range matches {
		byProfile[m.Profile] = m
	}
	require.True(t, byProfile["value"].Eligible)
	require.True(t, byProfile["growth"].Eligible)
	require.False(t, byProfile["momentum"].Eligible, "rs_percentile 40 < 70 threshold")
	require.True(t, byProfile["balanced"].Eligible)
}

func sumWeights(m map[string]float64) float64 {
	var s float64
	for _, v := range m {
		s += v
	}
	return s
}
