package kernels

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func flowDay(institution, foreign float64) InvestorFlowDay {
	return InvestorFlowDay{
		InstitutionNet: institution,
		ForeignNet:     foreign,
		PensionNet:     nan(),
		PrivateEquityNet: nan(),
		OtherCorpNet:   nan(),
	}
}

func TestWhale_NoDataReturnsNeutral(t *testing.T) {
	flows := []InvestorFlowDay{flowDay(nan(), nan())}
	result := Whale(flows, nan(), 20)
	require.Equal(t, 0.0, result.WhaleScore)
	require.Equal(t, "neutral", result.Signal)
}

func TestWhale_ConsistentBuyingIsStrongAccumulation(t *testing.T) {
	flows := make([]InvestorFlowDay, 20)
	for i := range flows {
		flows[i] = flowDay(5e9, 3e9)
	}
	result := Whale(flows, 1e9, 20)
	require.Equal(t, "strong_accumulation", result.Signal)
	require.Greater(t, result.WhaleScore, 70.0)
}

func TestWhale_NetSellingYieldsDistributionOrNeutral(t *testing.T) {
	flows := make([]InvestorFlowDay, 20)
	for i := range flows {
		flows[i] = flowDay(-5e9, -3e9)
	}
	result := Whale(flows, 1e9, 20)
	require.Contains(t, []string{"distribution", "neutral"}, result.Signal)
}

func TestWhale_TruncatesToLookbackWindow(t *testing.T) {
	flows := make([]InvestorFlowDay, 40)
	for i := 0; i < 20; i++ {
		flows[i] = flowDay(-5e9, -5e9) // stale days outside the window
	}
	for i := 20; i < 40; i++ {
		flows[i] = flowDay(5e9, 5e9) // recent accumulation
	}
	result := Whale(flows, 1e9, 20)
	require.Equal(t, "strong_accumulation", result.Signal)
}

func TestWhale_MissingAvgTradedValueFallsBackToHalfConsistency(t *testing.T) {
	flows := make([]InvestorFlowDay, 20)
	for i := range flows {
		flows[i] = flowDay(1e9, 1e9) // every day a buy day, consistency = 1.0
	}
	result := Whale(flows, math.NaN(), 20)
	for _, c := range result.Classes {
		if c.HasData {
			require.InDelta(t, 0.5, c.Intensity, 1e-9)
		}
	}
}

func TestWhale_DefaultsLookbackWhenNonPositive(t *testing.T) {
	flows := make([]InvestorFlowDay, 5)
	for i := range flows {
		flows[i] = flowDay(1e9, 1e9)
	}
	withZero := Whale(flows, 1e9, 0)
	withDefault := Whale(flows, 1e9, 20)
	require.Equal(t, withDefault.WhaleScore, withZero.WhaleScore)
}
