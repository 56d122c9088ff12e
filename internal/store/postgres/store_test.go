package postgres

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*pgStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	sqlxDB := sqlx.NewDb(db, "postgres")
	return &pgStore{db: sqlxDB, timeout: 2 * time.Second}, mock
}

func TestActiveTickers(t *testing.T) {
	s, mock := newMockStore(t)
	d := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"code", "name", "market", "active"}).
		AddRow("005930", "Samsung Electronics", "primary", true).
		AddRow("000660", "SK Hynix", "primary", true)
	mock.ExpectQuery("SELECT code, name, market, active").WithArgs(d).WillReturnRows(rows)

	out, err := s.ActiveTickers(context.Background(), d)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "005930", out[0].Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFundamentalAsOf_NoRows(t *testing.T) {
	s, mock := newMockStore(t)
	d := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT date, ticker, bps").WithArgs("005930", d).
		WillReturnRows(sqlmock.NewRows([]string{"date", "ticker", "bps", "per", "pbr", "eps", "div_yield", "dps", "roe"}))

	row, err := s.FundamentalAsOf(context.Background(), "005930", d)
	require.NoError(t, err)
	require.Nil(t, row)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSectorMedians_SortedMiddleNoInterpolation(t *testing.T) {
	s, mock := newMockStore(t)
	d := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)

	pbr1, pbr2, pbr3 := 0.8, 1.2, 2.0
	per1 := 9.5
	rows := sqlmock.NewRows([]string{"ticker", "pbr", "per", "sector"}).
		AddRow("A", pbr1, nil, "tech").
		AddRow("B", pbr2, per1, "tech").
		AddRow("C", pbr3, nil, "tech")
	mock.ExpectQuery("SELECT f.ticker, f.pbr, f.per, sm.sector").WithArgs(d).WillReturnRows(rows)

	out, err := s.SectorMedians(context.Background(), d)
	require.NoError(t, err)
	require.InDelta(t, 1.2, out["tech"].MedianPBR, 1e-9)
	require.InDelta(t, 9.5, out["tech"].MedianPER, 1e-9)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSectorOf_NotMapped(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT sector FROM sector_mappings").WithArgs("ZZZZZZ").
		WillReturnRows(sqlmock.NewRows([]string{"sector"}))

	sector, err := s.SectorOf(context.Background(), "ZZZZZZ")
	require.NoError(t, err)
	require.Equal(t, "", sector)
	require.NoError(t, mock.ExpectationsWereMet())
}
