package pipeline

import (
	"math"

	"github.com/riemannulus/whaleback/internal/kernels"
	"github.com/riemannulus/whaleback/internal/store"
)

// RunTicker implements C3: for one ticker, produces quant, whale, trend
// (RS only; percentile filled in by C4), flow, technical, and risk rows.
// It has no error return — individual kernels return their own
// non-computable zero value, and the composite stage treats those as missing
// axes. A panic inside it is recovered by Run (runTickerSafely), which logs
// the ticker as a per-ticker failure and skips it, matching §4.3's
// "per-ticker failure logs a warning and is skipped" contract.
func RunTicker(u store.TickerUniverse, indexCloses []store.IndexBar, sectorMedians map[string]store.SectorMedians) TickerResult {
	closes := closesOf(u.Prices)
	flows := toInvestorFlowDays(u.Flows)

	result := TickerResult{
		Ticker:              u.Ticker.Code,
		Sector:              u.Sector,
		AvgDailyTradedValue: u.AvgDailyTradedValue,
		InvestorFlows:       flows,
	}

	result.Quant = runQuant(u, sectorMedians)
	result.Whale = runWhale(u.Ticker.Code, flows, u.AvgDailyTradedValue)
	result.Trend = runTrend(u.Ticker.Code, u.Sector, closes, indexCloses)
	result.Flow = runFlow(u.Ticker.Code, flows, u.AvgDailyTradedValue)
	result.Technical = runTechnical(u.Ticker.Code, closes)
	result.Risk = runRisk(u.Ticker.Code, closes, indexCloses)

	return result
}

func runQuant(u store.TickerUniverse, sectorMedians map[string]store.SectorMedians) *QuantSnapshot {
	cur := toFundamentalRow(u.FundamentalNow)
	prev := toFundamentalRow(u.FundamentalPrev)
	medians := sectorMedians[u.Sector]

	rim := kernels.DefaultRIM(cur.BPS, cur.ROE)
	var margin kernels.SafetyMarginResult
	var price float64
	if len(u.Prices) > 0 {
		price = u.Prices[len(u.Prices)-1].Close
	}
	if rim.Computable {
		margin = kernels.SafetyMargin(rim.RIMValue, price)
	}

	var volCur, volPrev float64
	n := len(u.Prices)
	if n >= 1 {
		volCur = u.Prices[n-1].Volume
	}
	if n >= 2 {
		volPrev = u.Prices[n-2].Volume
	}

	fscore := kernels.FScore(kernels.FScoreInputs{
		Current: cur, Previous: prev,
		Sector:         kernels.SectorMedians{MedianPBR: medians.MedianPBR, MedianPER: medians.MedianPER},
		VolumeCurrent:  volCur,
		VolumePrevious: volPrev,
	})

	marginForGrade := margin.SafetyMarginPct
	if !margin.Computable {
		marginForGrade = math.NaN()
	}
	grade := kernels.Grade(fscore.TotalScore, marginForGrade, fscore.DataCompleteness)

	return &QuantSnapshot{
		Ticker:           u.Ticker.Code,
		RIMValue:         rim.RIMValue,
		RIMComputable:    rim.Computable,
		SafetyMarginPct:  margin.SafetyMarginPct,
		SafetyComputable: margin.Computable,
		FScore:           fscore.TotalScore,
		Criteria:         fscore.Criteria,
		Grade:            grade,
		DataCompleteness: fscore.DataCompleteness,
	}
}

func runWhale(ticker string, flows []kernels.InvestorFlowDay, avgTV float64) *WhaleSnapshot {
	r := kernels.Whale(flows, avgTV, 20)
	return &WhaleSnapshot{Ticker: ticker, WhaleScore: r.WhaleScore, Classes: r.Classes, Signal: r.Signal}
}

func runTrend(ticker, sector string, closes []float64, indexBars []store.IndexBar) *TrendSnapshot {
	snap := &TrendSnapshot{Ticker: ticker, Sector: sector}
	idxCloses := make([]float64, len(indexBars))
	for i, b := range indexBars {
		idxCloses[i] = b.Close
	}

	windowRS := func(period int) (float64, bool) {
		if len(closes) < period || len(idxCloses) < period {
			return 0, false
		}
		stockW := closes[len(closes)-period:]
		idxW := idxCloses[len(idxCloses)-period:]
		res := kernels.RelativeStrength(stockW, idxW)
		if !res.Computable {
			return 0, false
		}
		return res.CurrentRS, true
	}

	snap.RS20, snap.Computable20 = windowRS(20)
	snap.RS60, snap.Computable60 = windowRS(60)
	return snap
}

func runFlow(ticker string, flows []kernels.InvestorFlowDay, avgTV float64) *FlowSnapshot {
	return &FlowSnapshot{
		Ticker:        ticker,
		Retail:        kernels.RetailContrarian(flows, avgTV),
		SmartDumb:     kernels.SmartDumbDivergence(flows, avgTV),
		MomentumShift: kernels.MomentumShift(flows, 5, 60),
	}
}

func runTechnical(ticker string, closes []float64) *TechnicalSnapshot {
	return &TechnicalSnapshot{
		Ticker:       ticker,
		Disparity20:  kernels.Disparity(closes, 20),
		Disparity60:  kernels.Disparity(closes, 60),
		Disparity120: kernels.Disparity(closes, 120),
		Bollinger:    kernels.Bollinger(closes, 20, 2.0),
		MACD:         kernels.MACD(closes, 12, 26, 9),
	}
}

func runRisk(ticker string, closes []float64, indexBars []store.IndexBar) *RiskSnapshot {
	idxCloses := make([]float64, len(indexBars))
	for i, b := range indexBars {
		idxCloses[i] = b.Close
	}
	return &RiskSnapshot{
		Ticker:        ticker,
		Volatility20:  kernels.Volatility(closes, 20),
		Volatility60:  kernels.Volatility(closes, 60),
		Volatility252: kernels.Volatility(closes, 252),
		Beta60:        kernels.Beta(closes, idxCloses, 60),
		Beta252:       kernels.Beta(closes, idxCloses, 252),
		Drawdown60:    kernels.MaxDrawdown(closes, 60),
		Drawdown252:   kernels.MaxDrawdown(closes, 252),
	}
}
