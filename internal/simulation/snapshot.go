package simulation

import "github.com/riemannulus/whaleback/internal/kernels"

// DefaultTargetMultipliers mirrors the reference implementation's
// price-target probability table multipliers.
var DefaultTargetMultipliers = []float64{1.1, 1.2, 1.5}

// Snapshot is the worker's self-contained output for one ticker, per
// SPEC_FULL.md §3's SimulationSnapshot entity.
type Snapshot struct {
	Score         *float64
	Grade         *string
	BasePrice     float64
	AnnualDrift   float64
	AnnualSigma   float64
	NumPaths      int
	InputDaysUsed int
	Horizons      map[int]kernels.HorizonStats
	TargetProbs   map[float64]map[int]float64
	ModelBreakdown *kernels.ModelBreakdown
}
