// Package pipeline implements the per-ticker analysis pass (C3) and the
// cross-ticker passes that depend on the full universe (C4), translating
// the orchestration shape of the reference AnalysisComputer into Go's
// explicit-error, skip-on-failure idiom.
package pipeline

import "github.com/riemannulus/whaleback/internal/kernels"

// QuantSnapshot is one ticker's valuation/F-Score output (SPEC_FULL.md §3).
type QuantSnapshot struct {
	Ticker           string
	RIMValue         float64
	RIMComputable    bool
	SafetyMarginPct  float64
	SafetyComputable bool
	FScore           int
	Criteria         []kernels.FScoreCriterion
	Grade            string
	DataCompleteness float64
}

// WhaleSnapshot is one ticker's accumulation-flow output.
type WhaleSnapshot struct {
	Ticker     string
	WhaleScore float64
	Classes    []kernels.WhaleClassResult
	Signal     string
}

// TrendSnapshot is one ticker's relative-strength + sector-rotation output.
// RSPercentile and QuadrantBonus are filled in by the C4 cross-ticker pass.
type TrendSnapshot struct {
	Ticker        string
	Sector        string
	RS20, RS60    float64
	Computable20, Computable60 bool
	RSPercentile  int
	Quadrant      kernels.SectorRotationQuadrant
	QuadrantBonus float64
}

// FlowSnapshot is one ticker's behavioural-flow output.
type FlowSnapshot struct {
	Ticker           string
	Retail           kernels.RetailContrarianResult
	SmartDumb        kernels.SmartDumbResult
	MomentumShift    kernels.MomentumShiftResult
}

// TechnicalSnapshot is one ticker's technical-indicator output.
type TechnicalSnapshot struct {
	Ticker     string
	Disparity20, Disparity60, Disparity120 kernels.DisparityResult
	Bollinger  kernels.BollingerResult
	MACD       kernels.MACDResult
}

// RiskSnapshot is one ticker's volatility/beta/drawdown output.
type RiskSnapshot struct {
	Ticker              string
	Volatility20, Volatility60, Volatility252 kernels.VolatilityResult
	Beta60, Beta252     kernels.BetaResult
	Drawdown60, Drawdown252 kernels.DrawdownResult
}

// SectorFlowSnapshot is one (sector, investor-class) aggregation row from the
// C4 cross-ticker pass, per SPEC_FULL.md §3's SectorFlowSnapshot entity.
type SectorFlowSnapshot struct {
	Sector        string
	InvestorClass string
	NetSum        float64
	Consistency   float64
	Intensity     float64
	Signal        string
	Trend5d       float64
	Trend20d      float64
	StockCount    int
}

// TickerResult bundles every per-ticker snapshot the pipeline produces. Any
// field may be the zero value if its kernel was non-computable for this
// ticker; the composite stage (C7) treats a zero Computable flag as "no
// data for this axis".
type TickerResult struct {
	Ticker     string
	Quant      *QuantSnapshot
	Whale      *WhaleSnapshot
	Trend      *TrendSnapshot
	Flow       *FlowSnapshot
	Technical  *TechnicalSnapshot
	Risk       *RiskSnapshot
	// AvgDailyTradedValue is carried through for the C4 sector-flow pass.
	AvgDailyTradedValue float64
	Sector              string
	InvestorFlows       []kernels.InvestorFlowDay
	// SectorFlowBonus is filled in by the C4 cross-ticker pass (0..15) and
	// consumed by the C7 composite momentum sub-score.
	SectorFlowBonus float64
}
