package pipeline

import (
	"math"

	"github.com/riemannulus/whaleback/internal/kernels"
)

// ApplyCrossTickerPasses implements C4: RS-percentile, sector rotation, and
// sector-flow aggregation/bonus, run once over the full set of per-ticker
// results produced by C3. Results are mutated in place; a SectorFlowSnapshot
// row is returned per (sector, investor-class) pair.
func ApplyCrossTickerPasses(results map[string]*TickerResult) []SectorFlowSnapshot {
	applyRSPercentile(results)
	applySectorRotation(results)
	return applySectorFlow(results)
}

func applyRSPercentile(results map[string]*TickerResult) {
	all := make([]float64, 0, len(results))
	for _, r := range results {
		if r.Trend != nil && r.Trend.Computable20 {
			all = append(all, r.Trend.RS20)
		}
	}
	for _, r := range results {
		if r.Trend == nil || !r.Trend.Computable20 {
			continue
		}
		r.Trend.RSPercentile = kernels.RSPercentile(r.Trend.RS20, all)
	}
}

func applySectorRotation(results map[string]*TickerResult) {
	bySector := map[string][]float64{}   // RS change (5-day slope proxy: RS20 - RS60)
	levelBySector := map[string][]float64{} // RS level (RS60)
	for _, r := range results {
		if r.Trend == nil || r.Sector == "" {
			continue
		}
		if r.Trend.Computable20 && r.Trend.Computable60 {
			bySector[r.Sector] = append(bySector[r.Sector], r.Trend.RS20-r.Trend.RS60)
			levelBySector[r.Sector] = append(levelBySector[r.Sector], r.Trend.RS60)
		}
	}

	inputs := make([]kernels.SectorRotationInput, 0, len(bySector))
	sectors := map[string]bool{}
	for s := range bySector {
		sectors[s] = true
	}
	for s := range levelBySector {
		sectors[s] = true
	}
	for sector := range sectors {
		inputs = append(inputs, kernels.SectorRotationInput{
			Sector:     sector,
			RSChange5d: meanOrNaN(bySector[sector]),
			RSLevel60d: meanOrNaN(levelBySector[sector]),
		})
	}

	quadrants := kernels.SectorRotation(inputs)
	for _, r := range results {
		if r.Trend == nil {
			continue
		}
		q, ok := quadrants[r.Sector]
		if !ok {
			q = kernels.QuadrantLagging
		}
		r.Trend.Quadrant = q
		r.Trend.QuadrantBonus = kernels.QuadrantBonus(q)
	}
}

func meanOrNaN(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// applySectorFlow implements §4.4's sector-flow aggregation and attaches the
// resulting bonus (capped at 15) to every ticker in an accumulating sector.
func applySectorFlow(results map[string]*TickerResult) []SectorFlowSnapshot {
	type bucket struct {
		tickers    map[string]bool
		days       map[int]float64 // day index -> net sum across tickers, for trend windows
		net        float64
		activeDays int
		buyDays    int
		avgTVSum   float64
	}
	buckets := map[string]map[string]*bucket{} // sector -> class -> bucket

	classes := kernels.WhaleInvestorTypes
	for _, r := range results {
		if r.Sector == "" || len(r.InvestorFlows) == 0 {
			continue
		}
		if buckets[r.Sector] == nil {
			buckets[r.Sector] = map[string]*bucket{}
		}
		for _, class := range append([]string{"individual"}, classes...) {
			b := buckets[r.Sector][class]
			if b == nil {
				b = &bucket{tickers: map[string]bool{}, days: map[int]float64{}}
				buckets[r.Sector][class] = b
			}
			b.tickers[r.Ticker] = true
			if !math.IsNaN(r.AvgDailyTradedValue) {
				b.avgTVSum += r.AvgDailyTradedValue
			}
			for i, f := range r.InvestorFlows {
				v := byClass(f, class)
				if math.IsNaN(v) {
					continue
				}
				b.net += v
				b.activeDays++
				if v > 0 {
					b.buyDays++
				}
				b.days[i] += v
			}
		}
	}

	var out []SectorFlowSnapshot
	bonusBySector := map[string]float64{}
	for sector, byClass := range buckets {
		for class, b := range byClass {
			if b.activeDays == 0 {
				continue
			}
			consistency := float64(b.buyDays) / float64(b.activeDays)
			days := 0
			for i := range b.days {
				if i+1 > days {
					days = i + 1
				}
			}
			var intensity float64
			if b.avgTVSum > 0 && days > 0 {
				intensity = math.Min(1, (math.Abs(b.net)/float64(days))/b.avgTVSum)
			}

			signal := "neutral"
			switch {
			case b.net > 0 && consistency >= 0.7 && intensity >= 0.3:
				signal = "strong_accumulation"
			case b.net > 0 && consistency >= 0.5:
				signal = "mild_accumulation"
			case b.net < 0 && consistency <= 0.3:
				signal = "distribution"
			}

			var trend5, trend20 float64
			for i, v := range b.days {
				if days-i <= 5 {
					trend5 += v
				}
				if days-i <= 20 {
					trend20 += v
				}
			}

			out = append(out, SectorFlowSnapshot{
				Sector: sector, InvestorClass: class, NetSum: b.net,
				Consistency: consistency, Intensity: intensity, Signal: signal,
				Trend5d: trend5, Trend20d: trend20, StockCount: len(b.tickers),
			})

			if class == "institution" {
				switch signal {
				case "strong_accumulation":
					bonusBySector[sector] = 15
				case "mild_accumulation":
					if bonusBySector[sector] < 5 {
						bonusBySector[sector] = 5
					}
				}
			}
		}
	}

	for _, r := range results {
		bonus := bonusBySector[r.Sector]
		if bonus > 15 {
			bonus = 15
		}
		r.SectorFlowBonus = bonus
	}

	return out
}

func byClass(f kernels.InvestorFlowDay, class string) float64 {
	switch class {
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
		return math.NaN()
	}
}
