package composite

import "github.com/riemannulus/whaleback/internal/kernels"

// Input is the plain, self-contained record C7 consumes for one ticker,
// decoupled from the C3/C5/C6 stage types so this package stays a pure
// function over typed records, matching internal/kernels' shape. A nil
// pointer means the corresponding axis has no data for this ticker.
type Input struct {
	Ticker string

	FScore           *int
	SafetyMarginPct  *float64
	DataCompleteness float64 // only meaningful when FScore != nil; default 1.0

	WhaleScore      *float64
	SectorFlowBonus float64

	RSPercentile  *int
	QuadrantBonus float64

	SimulationScore *float64

	SentimentScore *float64
}

// Build implements C7 end to end for one ticker: sub-scores, weight
// redistribution, composite, signals, confluence, divergence, and tier.
// Returns false if every axis is nil (spec.md requires at least one
// non-null sub-score; the caller skips the ticker entirely in that case).
func Build(in Input) (Snapshot, bool) {
	sub, value, flow, momentum, forecast, sentiment := subScores(in)
	if value == nil && flow == nil && momentum == nil && forecast == nil && sentiment == nil {
		return Snapshot{}, false
	}

	result := kernels.Composite(sub)

	signals := map[string]string{
		"value":     kernels.SubSignal(value),
		"flow":      kernels.SubSignal(flow),
		"momentum":  kernels.SubSignal(momentum),
		"forecast":  kernels.SubSignal(forecast),
		"sentiment": kernels.SubSignal(sentiment),
	}

	confluence := kernels.Confluence(signals)
	divergence := kernels.DetectDivergence(signals)
	tier, tierLabel, action := kernels.CompositeTier(result.Score)

	profiles := EvalProfiles(value, flow, momentum, profileFilterInputs{
		FScore:       in.FScore,
		SafetyMargin: in.SafetyMarginPct,
		WhaleScore:   in.WhaleScore,
		RSPercentile: in.RSPercentile,
	})

	return Snapshot{
		Ticker:            in.Ticker,
		Score:             result.Score,
		ValueScore:        value,
		FlowScore:         flow,
		MomentumScore:     momentum,
		ForecastScore:     forecast,
		SentimentScore:    sentiment,
		WeightsUsed:       result.WeightsUsed,
		AxesAvailable:     result.AxesAvailable,
		Confidence:        result.Confidence,
		Signals:           signals,
		ConfluenceTier:    confluence.Tier,
		ConfluencePattern: confluence.Pattern,
		Divergence:        divergence,
		Tier:              tier,
		TierLabel:         tierLabel,
		Action:            action,
		ProfileMatches:    profiles,
	}, true
}

func subScores(in Input) (sub kernels.SubScores, value, flow, momentum, forecast, sentiment *float64) {
	if in.FScore != nil {
		completeness := in.DataCompleteness
		if completeness == 0 {
			completeness = 1.0
		}
		if completeness > 1.0 {
			completeness = 1.0
		}
		margin := 0.0
		if in.SafetyMarginPct != nil {
			margin = *in.SafetyMarginPct
		}
		v := (0.55*kernels.NormFScore(*in.FScore) + 0.45*kernels.NormSafetyMargin(margin)) * completeness
		value = &v
	}

	if in.WhaleScore != nil {
		f := clip(*in.WhaleScore+in.SectorFlowBonus, 0, 100)
		flow = &f
	}

	if in.RSPercentile != nil {
		m := clip(float64(*in.RSPercentile)+in.QuadrantBonus, 0, 100)
		momentum = &m
	}

	forecast = in.SimulationScore
	sentiment = in.SentimentScore

	sub = kernels.SubScores{Value: value, Flow: flow, Momentum: momentum, Forecast: forecast, Sentiment: sentiment}
	return sub, value, flow, momentum, forecast, sentiment
}

func clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
