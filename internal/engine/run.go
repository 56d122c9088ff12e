// Package engine wires the C2..C8 components described by SPEC_FULL.md's
// single entry point, compute_analysis(target_date), into one ordered run:
// load the universe, run the per-ticker and cross-ticker passes, run the
// optional news and simulation stages, synthesise the composite, and persist
// every snapshot category. Per §7, only loader/config failures abort the
// run; every other failure is logged and the run continues.
package engine

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/riemannulus/whaleback/internal/composite"
	"github.com/riemannulus/whaleback/internal/config"
	"github.com/riemannulus/whaleback/internal/engine/errs"
	"github.com/riemannulus/whaleback/internal/kernels"
	"github.com/riemannulus/whaleback/internal/news"
	"github.com/riemannulus/whaleback/internal/persist"
	"github.com/riemannulus/whaleback/internal/pipeline"
	"github.com/riemannulus/whaleback/internal/simulation"
	"github.com/riemannulus/whaleback/internal/store"
	"github.com/riemannulus/whaleback/internal/wbmetrics"
)

// Collaborators bundles the engine's external dependencies, assembled once
// by cmd/whaleback and reused across every date in a backfill run. Metrics is
// optional; a nil Registry disables all recording.
type Collaborators struct {
	Store      store.Store
	Persister  *persist.Persister
	NewsFetch  news.Fetcher
	LocalClassifier news.LocalClassifier
	Escalation news.EscalationClassifier
	Metrics    *wbmetrics.Registry
}

// Summary is compute_analysis's return value: a per-category persisted row
// count, per §6.3.
type Summary struct {
	TargetDate      time.Time
	RowsByCategory  map[string]int
	TickersAnalyzed int
	TickersFailed   int
}

const (
	indexCode         = "KOSPI"
	priceLookbackDays = 400 // covers every kernel's longest window (252d) plus simulation history margin
)

// RunDate implements compute_analysis(target_date) end to end.
func RunDate(ctx context.Context, col Collaborators, cfg config.Config, targetDate time.Time) (Summary, error) {
	summary := Summary{TargetDate: targetDate, RowsByCategory: map[string]int{}}

	loadStart := time.Now()
	universe, err := pipeline.Load(ctx, col.Store, targetDate, indexCode, priceLookbackDays, cfg.WhaleLookbackDays)
	if err != nil {
		return summary, errs.NewFatal("load", err)
	}
	log.Info().Int("tickers", len(universe.Tickers)).Dur("elapsed", time.Since(loadStart)).Msg("loader complete")
	observePhase(col.Metrics, "load", loadStart)

	perTickerStart := time.Now()
	results, sectorFlows := pipeline.Run(universe)
	summary.TickersAnalyzed = len(results)
	summary.TickersFailed = len(universe.Tickers) - len(results)
	log.Info().Int("ok", len(results)).Int("failed", summary.TickersFailed).Dur("elapsed", time.Since(perTickerStart)).Msg("per-ticker + cross-ticker passes complete")
	observePhase(col.Metrics, "per_ticker", perTickerStart)
	if col.Metrics != nil {
		col.Metrics.TickersAnalyzed.Set(float64(summary.TickersAnalyzed))
		if summary.TickersFailed > 0 {
			col.Metrics.TickerFailures.WithLabelValues("pipeline").Add(float64(summary.TickersFailed))
		}
	}

	newsStart := time.Now()
	newsSnapshots := map[string]news.Snapshot{}
	if col.NewsFetch != nil {
		inputs := make([]news.TickerInput, 0, len(results))
		for ticker := range results {
			displayName := ticker
			if u, ok := universe.Universes[ticker]; ok {
				displayName = u.Ticker.Name
			}
			inputs = append(inputs, news.TickerInput{Ticker: ticker, DisplayName: displayName})
		}
		newsCfg := news.DefaultStageConfig()
		newsCfg.HalfLifeDays = cfg.NewsHalfLifeDays
		newsCfg.MinArticles = cfg.NewsMinArticles
		newsCfg.EscalationThreshold = cfg.ClassifierConfidence
		newsCfg.MaxConcurrency = cfg.NewsConcurrency

		newsResult, newsErrs := news.Run(ctx, inputs, col.NewsFetch, col.LocalClassifier, col.Escalation, newsCfg)
		for _, e := range newsErrs {
			log.Warn().Err(e).Msg("news stage error, ticker's contribution falls back to no-data")
		}
		if newsResult != nil {
			newsSnapshots = newsResult.Snapshots
			summary.RowsByCategory["news_articles"] = persistArticles(ctx, col.Persister, newsResult.Articles)
		}
	}
	log.Info().Int("tickers_scored", len(newsSnapshots)).Dur("elapsed", time.Since(newsStart)).Msg("news sentiment stage complete")
	observePhase(col.Metrics, "news", newsStart)

	simStart := time.Now()
	simCfg := simulation.DefaultConfig()
	simCfg.NumSims = cfg.SimPathCount
	simCfg.Horizons = cfg.SimHorizonsDays
	simCfg.MaxSigma = cfg.SimMaxSigma
	simCfg.PoolSize = cfg.SimWorkerCount
	simCfg.GBMWeight = cfg.SimWeights["gbm"]
	simCfg.GARCHWeight = cfg.SimWeights["garch"]
	simCfg.HestonWeight = cfg.SimWeights["heston"]
	simCfg.MertonWeight = cfg.SimWeights["merton"]
	simCfg.HestonKappa, simCfg.HestonTheta, simCfg.HestonXi, simCfg.HestonRho = cfg.HestonKappa, cfg.HestonTheta, cfg.HestonXi, cfg.HestonRho
	simCfg.MertonLambda, simCfg.MertonMuJ, simCfg.MertonSigmaJ = cfg.MertonLambda, cfg.MertonMuJ, cfg.MertonSigmaJ

	jobs := make([]simulation.Job, 0, len(results))
	for ticker := range results {
		closes := closesOf(universe.Universes[ticker])
		var adj *kernels.SimAdjustments
		if snap, ok := newsSnapshots[ticker]; ok && snap.Status == "active" {
			baseWeights := map[string]float64{
				"gbm": simCfg.GBMWeight, "garch": simCfg.GARCHWeight,
				"heston": simCfg.HestonWeight, "merton": simCfg.MertonWeight,
			}
			a := kernels.SentimentAdjustments(snap.SentimentResult, cfg.SentimentAlpha, cfg.SentimentBeta, cfg.SentimentDelta,
				cfg.SentimentGammaLambda, cfg.SentimentGammaMu, baseWeights)
			adj = &a
		}
		jobs = append(jobs, simulation.Job{Ticker: ticker, Closes: closes, Config: simCfg, Adjustments: adj})
	}
	simSnapshots := simulation.Run(ctx, jobs, simCfg.PoolSize)
	log.Info().Int("tickers_simulated", len(simSnapshots)).Dur("elapsed", time.Since(simStart)).Msg("simulation stage complete")
	observePhase(col.Metrics, "simulation", simStart)

	compositeStart := time.Now()
	compositeSnapshots := make(map[string]composite.Snapshot, len(results))
	for ticker, tr := range results {
		simSnap, hasSim := simSnapshots[ticker]
		in := compositeInput(ticker, tr, newsSnapshots[ticker], simSnap, hasSim)
		snap, ok := composite.Build(in)
		if !ok {
			continue
		}
		compositeSnapshots[ticker] = snap
	}
	log.Info().Int("tickers_composited", len(compositeSnapshots)).Dur("elapsed", time.Since(compositeStart)).Msg("composite synthesis complete")
	observePhase(col.Metrics, "composite", compositeStart)

	persistStart := time.Now()
	summary.RowsByCategory["quant"] = persistQuant(ctx, col.Persister, targetDate, results)
	summary.RowsByCategory["whale"] = persistWhale(ctx, col.Persister, targetDate, results)
	summary.RowsByCategory["trend"] = persistTrend(ctx, col.Persister, targetDate, results)
	summary.RowsByCategory["sector_flow"] = persistSectorFlow(ctx, col.Persister, targetDate, sectorFlows)
	summary.RowsByCategory["news"] = persistNews(ctx, col.Persister, targetDate, newsSnapshots)
	summary.RowsByCategory["simulation"] = persistSimulation(ctx, col.Persister, targetDate, simSnapshots)
	summary.RowsByCategory["composite"] = persistComposite(ctx, col.Persister, targetDate, compositeSnapshots)
	log.Info().Dur("elapsed", time.Since(persistStart)).Msg("persist stage complete")
	observePhase(col.Metrics, "persist", persistStart)

	if col.Metrics != nil {
		for category, count := range summary.RowsByCategory {
			col.Metrics.RowsPersisted.WithLabelValues(category).Add(float64(count))
		}
		col.Metrics.LastRunTimestamp.Set(float64(time.Now().Unix()))
	}

	return summary, nil
}

func observePhase(m *wbmetrics.Registry, phase string, start time.Time) {
	if m == nil {
		return
	}
	m.ObservePhase(phase, time.Since(start).Seconds())
}

func closesOf(u store.TickerUniverse) []float64 {
	closes := make([]float64, len(u.Prices))
	for i, p := range u.Prices {
		closes[i] = p.Close
	}
	return closes
}

func compositeInput(ticker string, tr *pipeline.TickerResult, newsSnap news.Snapshot, simSnap simulation.Snapshot, hasSim bool) composite.Input {
	in := composite.Input{Ticker: ticker}

	if tr.Quant != nil {
		fscore := tr.Quant.FScore
		in.FScore = &fscore
		margin := tr.Quant.SafetyMarginPct
		in.SafetyMarginPct = &margin
		in.DataCompleteness = tr.Quant.DataCompleteness
	}
	if tr.Whale != nil {
		whaleScore := tr.Whale.WhaleScore
		in.WhaleScore = &whaleScore
	}
	in.SectorFlowBonus = tr.SectorFlowBonus
	if tr.Trend != nil {
		rsPct := tr.Trend.RSPercentile
		in.RSPercentile = &rsPct
		in.QuadrantBonus = tr.Trend.QuadrantBonus
	}
	if hasSim && simSnap.Score != nil {
		in.SimulationScore = simSnap.Score
	}
	if newsSnap.Status == "active" {
		score := newsSnap.SentimentScore
		in.SentimentScore = &score
	}
	return in
}

func persistArticles(ctx context.Context, p *persist.Persister, articles []news.ScoredArticle) int {
	rows := make([]persist.Record, len(articles))
	for i, a := range articles {
		rows[i] = persist.Record{
			"ticker":                a.Ticker,
			"source_url":            a.SourceURL,
			"title":                 a.Title,
			"description":           a.Description,
			"published_at":          a.PublishedAt,
			"sentiment_raw":         a.Sentiment,
			"sentiment_label":       a.Label,
			"sentiment_confidence":  a.Confidence,
			"scoring_method":        scoringMethod(a),
		}
	}
	return upsertLogged(ctx, p, "news_articles", articlesTable, rows)
}

func scoringMethod(a news.ScoredArticle) string {
	if a.PreScored {
		return "pre_scored"
	}
	if a.Escalated {
		return "escalation"
	}
	return "local"
}

func persistQuant(ctx context.Context, p *persist.Persister, d time.Time, results map[string]*pipeline.TickerResult) int {
	rows := make([]persist.Record, 0, len(results))
	for ticker, tr := range results {
		if tr.Quant == nil {
			continue
		}
		q := tr.Quant
		rows = append(rows, persist.Record{
			"trade_date":         d,
			"ticker":             ticker,
			"rim_value":          q.RIMValue,
			"rim_computable":     q.RIMComputable,
			"safety_margin_pct":  q.SafetyMarginPct,
			"safety_computable":  q.SafetyComputable,
			"fscore":             q.FScore,
			"grade":              q.Grade,
			"data_completeness":  q.DataCompleteness,
			"computed_at":        time.Now(),
		})
	}
	return upsertLogged(ctx, p, "quant", quantTable, rows)
}

func persistWhale(ctx context.Context, p *persist.Persister, d time.Time, results map[string]*pipeline.TickerResult) int {
	rows := make([]persist.Record, 0, len(results))
	for ticker, tr := range results {
		if tr.Whale == nil {
			continue
		}
		rows = append(rows, persist.Record{
			"trade_date":  d,
			"ticker":      ticker,
			"whale_score": tr.Whale.WhaleScore,
			"signal":      tr.Whale.Signal,
			"computed_at": time.Now(),
		})
	}
	return upsertLogged(ctx, p, "whale", whaleTable, rows)
}

func persistTrend(ctx context.Context, p *persist.Persister, d time.Time, results map[string]*pipeline.TickerResult) int {
	rows := make([]persist.Record, 0, len(results))
	for ticker, tr := range results {
		if tr.Trend == nil {
			continue
		}
		t := tr.Trend
		rows = append(rows, persist.Record{
			"trade_date":     d,
			"ticker":         ticker,
			"rs20":           t.RS20,
			"rs60":           t.RS60,
			"rs_percentile":  t.RSPercentile,
			"quadrant":       string(t.Quadrant),
			"quadrant_bonus": t.QuadrantBonus,
			"computed_at":    time.Now(),
		})
	}
	return upsertLogged(ctx, p, "trend", trendTable, rows)
}

func persistSectorFlow(ctx context.Context, p *persist.Persister, d time.Time, flows []pipeline.SectorFlowSnapshot) int {
	rows := make([]persist.Record, len(flows))
	for i, f := range flows {
		rows[i] = persist.Record{
			"trade_date":     d,
			"sector":         f.Sector,
			"investor_type":  f.InvestorClass,
			"net_sum":        f.NetSum,
			"consistency":    f.Consistency,
			"intensity":      f.Intensity,
			"signal":         f.Signal,
			"stock_count":    f.StockCount,
			"computed_at":    time.Now(),
		}
	}
	return upsertLogged(ctx, p, "sector_flow", sectorFlowTable, rows)
}

func persistNews(ctx context.Context, p *persist.Persister, d time.Time, snapshots map[string]news.Snapshot) int {
	rows := make([]persist.Record, 0, len(snapshots))
	for ticker, s := range snapshots {
		rows = append(rows, persist.Record{
			"trade_date":       d,
			"ticker":           ticker,
			"status":           s.Status,
			"direction":        s.Direction,
			"intensity":        s.Intensity,
			"confidence":       s.Confidence,
			"effective_score":  s.EffectiveScore,
			"sentiment_score":  s.SentimentScore,
			"signal":           s.Signal,
			"article_count":    s.ArticleCount,
			"computed_at":      time.Now(),
		})
	}
	return upsertLogged(ctx, p, "news", newsTable, rows)
}

func persistSimulation(ctx context.Context, p *persist.Persister, d time.Time, snapshots map[string]simulation.Snapshot) int {
	rows := make([]persist.Record, 0, len(snapshots))
	for ticker, s := range snapshots {
		rows = append(rows, persist.Record{
			"trade_date":       d,
			"ticker":           ticker,
			"score":            s.Score,
			"grade":            s.Grade,
			"base_price":       s.BasePrice,
			"annual_drift":     s.AnnualDrift,
			"annual_sigma":     s.AnnualSigma,
			"num_paths":        s.NumPaths,
			"input_days_used":  s.InputDaysUsed,
			"computed_at":      time.Now(),
		})
	}
	return upsertLogged(ctx, p, "simulation", simulationTable, rows)
}

func persistComposite(ctx context.Context, p *persist.Persister, d time.Time, snapshots map[string]composite.Snapshot) int {
	rows := make([]persist.Record, 0, len(snapshots))
	for ticker, s := range snapshots {
		rows = append(rows, persist.Record{
			"trade_date":          d,
			"ticker":              ticker,
			"score":               s.Score,
			"value_score":         s.ValueScore,
			"flow_score":          s.FlowScore,
			"momentum_score":      s.MomentumScore,
			"forecast_score":      s.ForecastScore,
			"sentiment_score":     s.SentimentScore,
			"axes_available":      s.AxesAvailable,
			"confidence":          s.Confidence,
			"confluence_tier":     s.ConfluenceTier,
			"confluence_pattern":  s.ConfluencePattern,
			"tier":                s.Tier,
			"tier_label":          s.TierLabel,
			"action":              s.Action,
			"signals":             mustJSON(s.Signals),
			"divergence":          mustJSON(s.Divergence),
			"profile_matches":     mustJSON(s.ProfileMatches),
			"computed_at":         time.Now(),
		})
	}
	return upsertLogged(ctx, p, "composite", compositeTable, rows)
}

// mustJSON marshals a composite snapshot's structured sub-fields for a jsonb
// column; v is always a plain map/slice/struct built from this package's own
// types, so marshaling cannot fail.
func mustJSON(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("unexpected json marshal failure on composite sub-field")
		return []byte("null")
	}
	return b
}

func upsertLogged(ctx context.Context, p *persist.Persister, category string, cfg persist.TableConfig, rows []persist.Record) int {
	if p == nil || len(rows) == 0 {
		return 0
	}
	if errors := p.Upsert(ctx, category, cfg, rows); len(errors) > 0 {
		for _, e := range errors {
			log.Warn().Err(e).Str("category", category).Msg("batch upsert failed, continuing")
		}
	}
	return len(rows)
}
