package pipeline

import (
	"math"

	"github.com/riemannulus/whaleback/internal/kernels"
	"github.com/riemannulus/whaleback/internal/store"
)

func orNaN(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

func closesOf(bars []store.PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

func tradedValuesOf(bars []store.PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.TradedValue
	}
	return out
}

func volumesOf(bars []store.PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Volume
	}
	return out
}

func toFundamentalRow(r *store.FundamentalRow) kernels.FundamentalRow {
	if r == nil {
		return kernels.FundamentalRow{
			BPS: math.NaN(), PER: math.NaN(), PBR: math.NaN(), EPS: math.NaN(),
			DivYield: math.NaN(), DPS: math.NaN(), ROE: math.NaN(),
		}
	}
	return kernels.FundamentalRow{
		BPS:      orNaN(r.BPS),
		PER:      orNaN(r.PER),
		PBR:      orNaN(r.PBR),
		EPS:      orNaN(r.EPS),
		DivYield: orNaN(r.DivYield),
		DPS:      orNaN(r.DPS),
		ROE:      orNaN(r.ROE),
	}
}

func toInvestorFlowDays(rows []store.InvestorFlowRow) []kernels.InvestorFlowDay {
	out := make([]kernels.InvestorFlowDay, len(rows))
	for i, r := range rows {
		out[i] = kernels.InvestorFlowDay{
			InstitutionNet:     orNaN(r.Institution),
			ForeignNet:         orNaN(r.Foreign),
			IndividualNet:      orNaN(r.Individual),
			PensionNet:         orNaN(r.Pension),
			InvestmentTrustNet: orNaN(r.InvestmentTrust),
			InsuranceNet:       orNaN(r.Insurance),
			TrustNet:           orNaN(r.Trust),
			PrivateEquityNet:   orNaN(r.PrivateEquity),
			BankNet:            orNaN(r.Bank),
			OtherFinancialNet:  orNaN(r.OtherFinancial),
			OtherCorpNet:       orNaN(r.OtherCorporate),
			OtherForeignNet:    orNaN(r.OtherForeign),
			TotalNet:           orNaN(r.Total),
		}
	}
	return out
}

func avgDailyTradedValue(bars []store.PriceBar) float64 {
	if len(bars) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, b := range bars {
		sum += b.TradedValue
	}
	return sum / float64(len(bars))
}
