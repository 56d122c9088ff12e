package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riemannulus/whaleback/internal/kernels"
)

func TestApplyRSPercentile(t *testing.T) {
	results := map[string]*TickerResult{
		"A": {Trend: &TrendSnapshot{RS20: 100, Computable20: true}},
		"B": {Trend: &TrendSnapshot{RS20: 110, Computable20: true}},
		"C": {Trend: &TrendSnapshot{RS20: 90, Computable20: true}},
	}
	applyRSPercentile(results)
	require.Equal(t, 0, results["C"].Trend.RSPercentile)
	require.Equal(t, 33, results["A"].Trend.RSPercentile)
	require.Equal(t, 66, results["B"].Trend.RSPercentile)
}

func TestApplySectorRotation_FewerThanThreeSectorsFallsBackToLagging(t *testing.T) {
	results := map[string]*TickerResult{
		"A": {Sector: "tech", Trend: &TrendSnapshot{RS20: 100, RS60: 90, Computable20: true, Computable60: true}},
	}
	applySectorRotation(results)
	require.Equal(t, kernels.QuadrantLagging, results["A"].Trend.Quadrant)
	require.Equal(t, -15.0, results["A"].Trend.QuadrantBonus)
}

func TestApplySectorFlow_StrongAccumulationCapsAt15(t *testing.T) {
	flows := make([]kernels.InvestorFlowDay, 20)
	for i := range flows {
		flows[i] = kernels.InvestorFlowDay{InstitutionNet: 100}
	}
	results := map[string]*TickerResult{
		"A": {Ticker: "A", Sector: "tech", AvgDailyTradedValue: 50, InvestorFlows: flows, Trend: &TrendSnapshot{}},
		"B": {Ticker: "B", Sector: "tech", AvgDailyTradedValue: 50, InvestorFlows: flows, Trend: &TrendSnapshot{}},
	}
	rows := applySectorFlow(results)
	require.NotEmpty(t, rows)
	require.LessOrEqual(t, results["A"].SectorFlowBonus, 15.0)
	require.Equal(t, results["A"].SectorFlowBonus, results["B"].SectorFlowBonus)
}
