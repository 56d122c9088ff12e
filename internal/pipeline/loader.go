package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/riemannulus/whaleback/internal/store"
)

// LoadedUniverse is everything the per-ticker pass (C3) and cross-ticker
// passes (C4) need, gathered by the loader (C2) in a single pass over the
// store's read interface.
type LoadedUniverse struct {
	TargetDate     time.Time
	Tickers        []store.Ticker
	Universes      map[string]store.TickerUniverse // keyed by ticker code
	SectorMedians  map[string]store.SectorMedians
	IndexCloses    []store.IndexBar // primary benchmark, D-400d..D
}

// Load implements C2: for every active ticker as of targetDate, fetch
// prices, fundamentals, investor flows, and sector membership, plus the
// cross-ticker sector-median and index inputs the kernels need. The loader
// never mutates the store.
func Load(ctx context.Context, st store.Store, targetDate time.Time, indexCode string, priceLookbackDays, flowLookbackDays int) (*LoadedUniverse, error) {
	from := targetDate.AddDate(0, 0, -priceLookbackDays)
	fundamentalCutoff := targetDate.AddDate(0, 0, -365)
	flowFrom := targetDate.AddDate(0, 0, -2*flowLookbackDays)

	tickers, err := st.ActiveTickers(ctx, targetDate)
	if err != nil {
		return nil, fmt.Errorf("load active tickers: %w", err)
	}

	sectorMap, err := st.SectorMap(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sector map: %w", err)
	}

	sectorMedians, err := st.SectorMedians(ctx, targetDate)
	if err != nil {
		return nil, fmt.Errorf("load sector medians: %w", err)
	}

	indexCloses, err := st.IndexBars(ctx, indexCode, from, targetDate)
	if err != nil {
		return nil, fmt.Errorf("load index bars for %s: %w", indexCode, err)
	}

	universes := make(map[string]store.TickerUniverse, len(tickers))
	for _, t := range tickers {
		prices, err := st.PriceBars(ctx, t.Code, from, targetDate)
		if err != nil {
			return nil, fmt.Errorf("load prices for %s: %w", t.Code, err)
		}
		fundNow, err := st.FundamentalAt(ctx, t.Code, targetDate)
		if err != nil {
			return nil, fmt.Errorf("load fundamental at %s/%s: %w", t.Code, targetDate, err)
		}
		fundPrev, err := st.FundamentalAsOf(ctx, t.Code, fundamentalCutoff)
		if err != nil {
			return nil, fmt.Errorf("load fundamental as-of %s/%s: %w", t.Code, fundamentalCutoff, err)
		}
		flows, err := st.InvestorFlows(ctx, t.Code, flowFrom, targetDate)
		if err != nil {
			return nil, fmt.Errorf("load investor flows for %s: %w", t.Code, err)
		}

		universes[t.Code] = store.TickerUniverse{
			Ticker:              t,
			Sector:              sectorMap[t.Code],
			Prices:              prices,
			FundamentalNow:      fundNow,
			FundamentalPrev:     fundPrev,
			Flows:               flows,
			AvgDailyTradedValue: avgDailyTradedValue(prices),
		}
	}

	return &LoadedUniverse{
		TargetDate:    targetDate,
		Tickers:       tickers,
		Universes:     universes,
		SectorMedians: sectorMedians,
		IndexCloses:   indexCloses,
	}, nil
}
