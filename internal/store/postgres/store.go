// Package postgres implements internal/store.Store against PostgreSQL via
// sqlx, following the teacher's internal/persistence/postgres upsert/scan
// idiom adapted to read-only time-series queries.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/riemannulus/whaleback/internal/store"
)

type pgStore struct {
	db      *sqlx.DB
	timeout time.Duration
}

// New wraps an already-open *sqlx.DB (driver "postgres", lib/pq) as a
// store.Store. Callers own the connection's lifecycle.
func New(db *sqlx.DB, timeout time.Duration) store.Store {
	return &pgStore{db: db, timeout: timeout}
}

// Open dials a new Postgres connection using lib/pq and verifies it with a
// ping, matching the teacher's connection-bring-up idiom.
func Open(ctx context.Context, dsn string, timeout time.Duration) (store.Store, *sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}
	return New(db, timeout), db, nil
}

func (s *pgStore) ctx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *pgStore) ActiveTickers(ctx context.Context, d time.Time) ([]store.Ticker, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	const q = `
		SELECT code, name, market, active
		FROM tickers
		WHERE active = true
		  AND (listed_at IS NULL OR listed_at <= $1)
		  AND (delisted_at IS NULL OR delisted_at > $1)
		ORDER BY code`

	var out []store.Ticker
	if err := s.db.SelectContext(ctx, &out, q, d); err != nil {
		return nil, fmt.Errorf("active tickers: %w", err)
	}
	return out, nil
}

func (s *pgStore) PriceBars(ctx context.Context, ticker string, from, to time.Time) ([]store.PriceBar, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	const q = `
		SELECT date, ticker, open, high, low, close, volume, traded_value, change_rate
		FROM ohlcv_bars
		WHERE ticker = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC`

	var out []store.PriceBar
	if err := s.db.SelectContext(ctx, &out, q, ticker, from, to); err != nil {
		return nil, fmt.Errorf("price bars for %s: %w", ticker, err)
	}
	return out, nil
}

func (s *pgStore) IndexBars(ctx context.Context, indexCode string, from, to time.Time) ([]store.IndexBar, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	const q = `
		SELECT date, index_code, close, change_rate
		FROM index_bars
		WHERE index_code = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC`

	var out []store.IndexBar
	if err := s.db.SelectContext(ctx, &out, q, indexCode, from, to); err != nil {
		return nil, fmt.Errorf("index bars for %s: %w", indexCode, err)
	}
	return out, nil
}

func (s *pgStore) FundamentalAt(ctx context.Context, ticker string, d time.Time) (*store.FundamentalRow, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	const q = `
		SELECT date, ticker, bps, per, pbr, eps, div_yield, dps, roe
		FROM fundamentals
		WHERE ticker = $1 AND date = $2`

	var row store.FundamentalRow
	if err := s.db.GetContext(ctx, &row, q, ticker, d); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("fundamental at %s/%s: %w", ticker, d, err)
	}
	return &row, nil
}

func (s *pgStore) FundamentalAsOf(ctx context.Context, ticker string, d time.Time) (*store.FundamentalRow, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	const q = `
		SELECT date, ticker, bps, per, pbr, eps, div_yield, dps, roe
		FROM fundamentals
		WHERE ticker = $1 AND date <= $2
		ORDER BY date DESC
		LIMIT 1`

	var row store.FundamentalRow
	if err := s.db.GetContext(ctx, &row, q, ticker, d); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("fundamental as-of %s/%s: %w", ticker, d, err)
	}
	return &row, nil
}

func (s *pgStore) InvestorFlows(ctx context.Context, ticker string, from, to time.Time) ([]store.InvestorFlowRow, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	const q = `
		SELECT date, ticker, institution, "foreign", individual, pension,
		       investment_trust, insurance, trust, private_equity, bank,
		       other_financial, other_corporate, other_foreign, total
		FROM investor_flows
		WHERE ticker = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC`

	var out []store.InvestorFlowRow
	if err := s.db.SelectContext(ctx, &out, q, ticker, from, to); err != nil {
		return nil, fmt.Errorf("investor flows for %s: %w", ticker, err)
	}
	return out, nil
}

func (s *pgStore) SectorOf(ctx context.Context, ticker string) (string, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	const q = `SELECT sector FROM sector_mappings WHERE ticker = $1`
	var sector string
	if err := s.db.GetContext(ctx, &sector, q, ticker); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("sector of %s: %w", ticker, err)
	}
	return sector, nil
}

func (s *pgStore) SectorMap(ctx context.Context) (map[string]string, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	const q = `SELECT ticker, sector FROM sector_mappings`
	rows, err := s.db.QueryxContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sector map: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var ticker, sector string
		if err := rows.Scan(&ticker, &sector); err != nil {
			return nil, fmt.Errorf("scan sector map row: %w", err)
		}
		out[ticker] = sector
	}
	return out, rows.Err()
}

// SectorMedians computes sector -> (median PBR, median PER) using the
// sorted-middle-element rule (no statistical interpolation), matching the
// reference implementation's sector-median input to the F-Score kernel.
func (s *pgStore) SectorMedians(ctx context.Context, d time.Time) (map[string]store.SectorMedians, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	const q = `
		SELECT f.ticker, f.pbr, f.per, sm.sector
		FROM fundamentals f
		JOIN sector_mappings sm ON sm.ticker = f.ticker
		WHERE f.date = $1`

	type row struct {
		Ticker string   `db:"ticker"`
		PBR    *float64 `db:"pbr"`
		PER    *float64 `db:"per"`
		Sector string   `db:"sector"`
	}
	var rows []row
	if err := s.db.SelectContext(ctx, &rows, q, d); err != nil {
		return nil, fmt.Errorf("sector medians at %s: %w", d, err)
	}

	pbrBySector := map[string][]float64{}
	perBySector := map[string][]float64{}
	for _, r := range rows {
		if r.PBR != nil && *r.PBR > 0 {
			pbrBySector[r.Sector] = append(pbrBySector[r.Sector], *r.PBR)
		}
		if r.PER != nil && *r.PER > 0 {
			perBySector[r.Sector] = append(perBySector[r.Sector], *r.PER)
		}
	}

	out := make(map[string]store.SectorMedians)
	sectors := map[string]bool{}
	for s := range pbrBySector {
		sectors[s] = true
	}
	for s := range perBySector {
		sectors[s] = true
	}
	for sector := range sectors {
		out[sector] = store.SectorMedians{
			MedianPBR: sortedMiddle(pbrBySector[sector]),
			MedianPER: sortedMiddle(perBySector[sector]),
		}
	}
	return out, nil
}

func sortedMiddle(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}
