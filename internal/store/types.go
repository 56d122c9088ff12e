package store

import "time"

// Ticker is an active market identifier read from the universe table.
type Ticker struct {
	Code   string `db:"code"`
	Name   string `db:"name"`
	Market string `db:"market"` // primary | secondary
	Active bool   `db:"active"`
}

// PriceBar is one day's OHLCV row for a ticker.
type PriceBar struct {
	Date       time.Time `db:"date"`
	Ticker     string    `db:"ticker"`
	Open       float64   `db:"open"`
	High       float64   `db:"high"`
	Low        float64   `db:"low"`
	Close      float64   `db:"close"`
	Volume     float64   `db:"volume"`
	TradedValue float64  `db:"traded_value"`
	ChangeRate float64   `db:"change_rate"`
}

// IndexBar is one day's close/change for a benchmark index.
type IndexBar struct {
	Date       time.Time `db:"date"`
	IndexCode  string    `db:"index_code"`
	Close      float64   `db:"close"`
	ChangeRate float64   `db:"change_rate"`
}

// FundamentalRow mirrors kernels.FundamentalRow but as loaded from storage;
// pointers represent nullable attributes.
type FundamentalRow struct {
	Date      time.Time `db:"date"`
	Ticker    string    `db:"ticker"`
	BPS       *float64  `db:"bps"`
	PER       *float64  `db:"per"`
	PBR       *float64  `db:"pbr"`
	EPS       *float64  `db:"eps"`
	DivYield  *float64  `db:"div_yield"`
	DPS       *float64  `db:"dps"`
	ROE       *float64  `db:"roe"`
}

// InvestorFlowRow is one day's thirteen net-purchase figures for a ticker.
type InvestorFlowRow struct {
	Date              time.Time `db:"date"`
	Ticker            string    `db:"ticker"`
	Institution       *float64  `db:"institution"`
	Foreign           *float64  `db:"foreign"`
	Individual        *float64  `db:"individual"`
	Pension           *float64  `db:"pension"`
	InvestmentTrust   *float64  `db:"investment_trust"`
	Insurance         *float64  `db:"insurance"`
	Trust             *float64  `db:"trust"`
	PrivateEquity     *float64  `db:"private_equity"`
	Bank              *float64  `db:"bank"`
	OtherFinancial    *float64  `db:"other_financial"`
	OtherCorporate    *float64  `db:"other_corporate"`
	OtherForeign      *float64  `db:"other_foreign"`
	Total             *float64  `db:"total"`
}

// SectorMedians is the per-sector (median-PBR, median-PER) pair the F-Score
// kernel consumes.
type SectorMedians struct {
	MedianPBR float64
	MedianPER float64
}

// TickerUniverse is everything the loader fetches for one ticker's C3 pass.
type TickerUniverse struct {
	Ticker          Ticker
	Sector          string
	Prices          []PriceBar // D-400d .. D, ascending by date
	FundamentalNow  *FundamentalRow
	FundamentalPrev *FundamentalRow // most recent row <= D-365d
	Flows           []InvestorFlowRow
	AvgDailyTradedValue float64
}
