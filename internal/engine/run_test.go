package engine

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riemannulus/whaleback/internal/config"
	"github.com/riemannulus/whaleback/internal/store"
)

// fakeStore is a minimal in-memory store.Store sufficient to exercise
// RunDate end to end without a live Postgres, mirroring the teacher's
// prefer-a-hand-rolled-fake-over-a-mocking-framework style for interfaces
// with few methods.
type fakeStore struct {
	tickers []store.Ticker
	prices  map[string][]store.PriceBar
}

func (f *fakeStore) ActiveTickers(ctx context.Context, d time.Time) ([]store.Ticker, error) {
	return f.tickers, nil
}

func (f *fakeStore) PriceBars(ctx context.Context, ticker string, from, to time.Time) ([]store.PriceBar, error) {
	return f.prices[ticker], nil
}

func (f *fakeStore) IndexBars(ctx context.Context, indexCode string, from, to time.Time) ([]store.IndexBar, error) {
	bars := make([]store.IndexBar, 300)
	price := 2500.0
	start := from
	for i := range bars {
		price *= 1 + 0.003*math.Sin(float64(i))
		bars[i] = store.IndexBar{Date: start.AddDate(0, 0, i), IndexCode: indexCode, Close: price}
	}
	return bars, nil
}

func (f *fakeStore) FundamentalAt(ctx context.Context, ticker string, d time.Time) (*store.FundamentalRow, error) {
	bps, per, pbr, eps, roe := 60000.0, 8.0, 0.5, 5000.0, 15.0
	return &store.FundamentalRow{Date: d, Ticker: ticker, BPS: &bps, PER: &per, PBR: &pbr, EPS: &eps, ROE: &roe}, nil
}

func (f *fakeStore) FundamentalAsOf(ctx context.Context, ticker string, d time.Time) (*store.FundamentalRow, error) {
	bps, eps, roe := 50000.0, 3000.0, 10.0
	return &store.FundamentalRow{Date: d, Ticker: ticker, BPS: &bps, EPS: &eps, ROE: &roe}, nil
}

func (f *fakeStore) InvestorFlows(ctx context.Context, ticker string, from, to time.Time) ([]store.InvestorFlowRow, error) {
	rows := make([]store.InvestorFlowRow, 20)
	for i := range rows {
		inst, foreign := 2e9, 1.5e9
		rows[i] = store.InvestorFlowRow{Date: from.AddDate(0, 0, i), Ticker: ticker, Institution: &inst, Foreign: &foreign}
	}
	return rows, nil
}

func (f *fakeStore) SectorOf(ctx context.Context, ticker string) (string, error) { return "tech", nil }

func (f *fakeStore) SectorMap(ctx context.Context) (map[string]string, error) {
	out := map[string]string{}
	for _, t := range f.tickers {
		out[t.Code] = "tech"
	}
	return out, nil
}

func (f *fakeStore) SectorMedians(ctx context.Context, d time.Time) (map[string]store.SectorMedians, error) {
	return map[string]store.SectorMedians{"tech": {MedianPBR: 1.0, MedianPER: 15.0}}, nil
}

func syntheticPrices(ticker string, n int, seed float64) []store.PriceBar {
	bars := make([]store.PriceBar, n)
	price := seed
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		price *= 1 + 0.01*math.Sin(float64(i)+seed)
		bars[i] = store.PriceBar{
			Date: start.AddDate(0, 0, i), Ticker: ticker,
			Open: price, High: price * 1.01, Low: price * 0.99, Close: price,
			Volume: 1_000_000, TradedValue: price * 1_000_000,
		}
	}
	return bars
}

func TestRunDate_ProducesSummaryWithoutNewsOrPersister(t *testing.T) {
	fs := &fakeStore{
		tickers: []store.Ticker{{Code: "005930", Name: "Samsung", Market: "primary", Active: true}, {Code: "000660", Name: "SKHynix", Market: "primary", Active: true}},
		prices: map[string][]store.PriceBar{
			"005930": syntheticPrices("005930", 300, 1.0),
			"000660": syntheticPrices("000660", 300, 2.0),
		},
	}

	cfg := config.Default()
	cfg.SimPathCount = 200 // keep the test fast

	summary, err := RunDate(context.Background(), Collaborators{Store: fs}, cfg, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, 2, summary.TickersAnalyzed)
	require.Equal(t, 0, summary.TickersFailed)
	for _, category := range []string{"quant", "whale", "trend", "sector_flow", "news", "simulation", "composite"} {
		_, ok := summary.RowsByCategory[category]
		require.True(t, ok, "missing category %s in summary", category)
	}
}

type failingStore struct{ fakeStore }

func (f *failingStore) ActiveTickers(ctx context.Context, d time.Time) ([]store.Ticker, error) {
	return nil, errActiveTickers
}

var errActiveTickers = fmt.Errorf("active tickers unavailable")

func TestRunDate_FatalOnLoaderFailure(t *testing.T) {
	fs := &failingStore{}
	_, err := RunDate(context.Background(), Collaborators{Store: fs}, config.Default(), time.Now())
	require.Error(t, err)
}
