// Package simulation implements the C6 worker pool: a fixed set of
// goroutines draining a job channel of per-ticker Monte-Carlo requests and
// writing self-contained SimulationSnapshot results to a results channel, per
// SPEC_FULL.md §4.6/§5.
package simulation

import "github.com/riemannulus/whaleback/internal/kernels"

// Config is the configuration record passed to every worker; identical for
// every job in a run unless a per-ticker sentiment override applies.
type Config struct {
	NumSims    int
	Horizons   []int
	MaxSigma   float64 // annualised volatility cap (default 1.50)
	GARCHMaxIt int

	GBMWeight, GARCHWeight, HestonWeight, MertonWeight float64

	HestonKappa, HestonTheta, HestonXi, HestonRho float64
	MertonLambda, MertonMuJ, MertonSigmaJ         float64

	PoolSize int
}

// DefaultConfig matches SPEC_FULL.md §4.1/§4.6's documented defaults.
func DefaultConfig() Config {
	return Config{
		NumSims:      2000,
		Horizons:     []int{21, 63, 126, 252},
		MaxSigma:     1.50,
		GBMWeight:    0.25,
		GARCHWeight:  0.30,
		HestonWeight: 0.20,
		MertonWeight: 0.25,
		HestonKappa:  3.0,
		HestonTheta:  0.04,
		HestonXi:     0.4,
		HestonRho:    -0.6,
		MertonLambda: 2.0,
		MertonMuJ:    -0.05,
		MertonSigmaJ: 0.10,
		PoolSize:     4,
	}
}

func (c Config) baseWeights() map[string]float64 {
	return map[string]float64{
		"gbm": c.GBMWeight, "garch": c.GARCHWeight, "heston": c.HestonWeight, "merton": c.MertonWeight,
	}
}

// minCleanCloses is §4.6's gate: at least 60 clean closes in the 400-day
// window, below which a ticker is skipped for simulation entirely.
const minCleanCloses = 60

// Job is one self-contained unit of work for a pool worker: no shared state,
// every field the worker needs travels with the job.
type Job struct {
	Ticker      string
	Closes      []float64 // raw prices, most-recent last
	Config      Config
	Adjustments *kernels.SimAdjustments // nil when no active sentiment result exists
}

// Result is the job's self-contained output.
type Result struct {
	Ticker   string
	Snapshot *Snapshot
	Err      error
}
