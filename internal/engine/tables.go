package engine

import "github.com/riemannulus/whaleback/internal/persist"

// Table configurations for every snapshot category named in SPEC_FULL.md §3,
// matching §6.1's "(trade_date, ticker) PK, on conflict do update" shape.
// computed_at is never overwritten on conflict (§6.1/compute.py's update_cols
// exclusion), so every row's first-seen timestamp survives reprocessing.

var quantTable = persist.TableConfig{
	Table:           "analysis_quant_snapshot",
	Columns:         []string{"trade_date", "ticker", "rim_value", "rim_computable", "safety_margin_pct", "safety_computable", "fscore", "grade", "data_completeness", "computed_at"},
	ConflictKeys:    []string{"trade_date", "ticker"},
	NoUpdateColumns: []string{"computed_at"},
}

var whaleTable = persist.TableConfig{
	Table:           "analysis_whale_snapshot",
	Columns:         []string{"trade_date", "ticker", "whale_score", "signal", "computed_at"},
	ConflictKeys:    []string{"trade_date", "ticker"},
	NoUpdateColumns: []string{"computed_at"},
}

var trendTable = persist.TableConfig{
	Table:           "analysis_trend_snapshot",
	Columns:         []string{"trade_date", "ticker", "rs20", "rs60", "rs_percentile", "quadrant", "quadrant_bonus", "computed_at"},
	ConflictKeys:    []string{"trade_date", "ticker"},
	NoUpdateColumns: []string{"computed_at"},
}

var sectorFlowTable = persist.TableConfig{
	Table:           "analysis_sector_flow_snapshot",
	Columns:         []string{"trade_date", "sector", "investor_type", "net_sum", "consistency", "intensity", "signal", "stock_count", "computed_at"},
	ConflictKeys:    []string{"trade_date", "sector", "investor_type"},
	NoUpdateColumns: []string{"computed_at"},
}

var newsTable = persist.TableConfig{
	Table:           "analysis_news_snapshot",
	Columns:         []string{"trade_date", "ticker", "status", "direction", "intensity", "confidence", "effective_score", "sentiment_score", "signal", "article_count", "computed_at"},
	ConflictKeys:    []string{"trade_date", "ticker"},
	NoUpdateColumns: []string{"computed_at"},
}

var articlesTable = persist.TableConfig{
	Table:           "news_articles",
	Columns:         []string{"ticker", "source_url", "title", "description", "published_at", "sentiment_raw", "sentiment_label", "sentiment_confidence", "scoring_method"},
	ConflictKeys:    []string{"ticker", "source_url"},
	NoUpdateColumns: nil,
}

var simulationTable = persist.TableConfig{
	Table:           "analysis_simulation_snapshot",
	Columns:         []string{"trade_date", "ticker", "score", "grade", "base_price", "annual_drift", "annual_sigma", "num_paths", "input_days_used", "computed_at"},
	ConflictKeys:    []string{"trade_date", "ticker"},
	NoUpdateColumns: []string{"computed_at"},
}

var compositeTable = persist.TableConfig{
	Table: "analysis_composite_snapshot",
	Columns: []string{
		"trade_date", "ticker", "score", "value_score", "flow_score", "momentum_score",
		"forecast_score", "sentiment_score", "axes_available", "confidence",
		"confluence_tier", "confluence_pattern", "tier", "tier_label", "action",
		"signals", "divergence", "profile_matches", "computed_at",
	},
	ConflictKeys:    []string{"trade_date", "ticker"},
	NoUpdateColumns: []string{"computed_at"},
}
