// Package store defines the engine's read-only view of time-series input
// data, kept separate from the internal/persist write path per the
// component design's loader/persister split.
package store

import (
	"context"
	"time"
)

// Store is the loader's (C2) read interface. A Postgres-backed
// implementation lives in internal/store/postgres; unit tests substitute an
// in-memory fake built directly from this interface.
type Store interface {
	// ActiveTickers returns every ticker flagged active as of date D.
	ActiveTickers(ctx context.Context, d time.Time) ([]Ticker, error)

	// PriceBars returns ascending-by-date OHLCV rows for ticker in [from, to].
	PriceBars(ctx context.Context, ticker string, from, to time.Time) ([]PriceBar, error)

	// IndexBars returns ascending-by-date closes for a benchmark index.
	IndexBars(ctx context.Context, indexCode string, from, to time.Time) ([]IndexBar, error)

	// FundamentalAt returns the fundamental row exactly at date d, or nil.
	FundamentalAt(ctx context.Context, ticker string, d time.Time) (*FundamentalRow, error)

	// FundamentalAsOf returns the most recent fundamental row with
	// date <= d, or nil if none exists.
	FundamentalAsOf(ctx context.Context, ticker string, d time.Time) (*FundamentalRow, error)

	// InvestorFlows returns ascending-by-date flow rows for ticker in [from, to].
	InvestorFlows(ctx context.Context, ticker string, from, to time.Time) ([]InvestorFlowRow, error)

	// SectorOf returns the declared sector for ticker, or "" if unmapped.
	SectorOf(ctx context.Context, ticker string) (string, error)

	// SectorMap returns the full ticker -> sector dictionary.
	SectorMap(ctx context.Context) (map[string]string, error)

	// SectorMedians computes sector -> (median PBR, median PER) across every
	// ticker's fundamentals at date d, using the sorted-middle-element rule
	// (no interpolation), matching the F-Score kernel's expectation.
	SectorMedians(ctx context.Context, d time.Time) (map[string]SectorMedians, error)
}
