// Package kernels implements every pure, total numeric function named by
// SPEC_FULL.md §4.1 (component C1): valuation, whale accumulation, relative
// strength, behavioural flow, technical indicators, risk, Monte-Carlo
// simulators, sentiment decomposition, and their signal classifiers. No
// kernel performs I/O or panics; every kernel returns a well-formed neutral
// result when its input is insufficient.
package kernels

// Bar is one day of OHLCV data for a single ticker.
type Bar struct {
	Close float64
	Open  float64
	High  float64
	Low   float64
	Volume float64
}

// InvestorFlowDay carries the thirteen net-flow columns for one ticker-day,
// matching SPEC_FULL.md §3's InvestorFlow entity. Missing values are NaN.
type InvestorFlowDay struct {
	InstitutionNet   float64
	ForeignNet       float64
	IndividualNet    float64
	PensionNet       float64
	InvestmentTrustNet float64
	InsuranceNet     float64
	TrustNet         float64
	PrivateEquityNet float64
	BankNet          float64
	OtherFinancialNet float64
	OtherCorpNet     float64
	OtherForeignNet  float64
	TotalNet         float64
}

// WhaleInvestorTypes are the five classes the whale kernel tracks, in the
// order the reference implementation iterates them.
var WhaleInvestorTypes = []string{"institution", "foreign", "pension", "private_equity", "other_corp"}

func (f InvestorFlowDay) byType(t string) float64 {
	switch t {
	case "institution":
		return f.InstitutionNet
	case "foreign":
		return f.ForeignNet
	case "pension":
		return f.PensionNet
	case "private_equity":
		return f.PrivateEquityNet
	case "other_corp":
		return f.OtherCorpNet
	case "individual":
		return f.IndividualNet
	default:
		return nan()
	}
}

// FundamentalRow is one day of fundamental data for a single ticker.
type FundamentalRow struct {
	BPS     float64 // book-per-share
	PER     float64
	PBR     float64
	EPS     float64
	DivYield float64
	DPS     float64
	ROE     float64
}

// SectorMedians carries the cross-section medians the F-Score consumes.
type SectorMedians struct {
	MedianPBR float64
	MedianPER float64
}
