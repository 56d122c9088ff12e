package simulation

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/riemannulus/whaleback/internal/kernels"
)

// simulate runs every configured model for one job, combines them into an
// ensemble, and scores the result. It touches no shared state: every input
// travels with the job and every output is fresh allocation.
func simulate(job Job) (*Snapshot, error) {
	clean, logRets := kernels.PrepareReturns(job.Closes)
	if len(clean) < minCleanCloses {
		return nil, fmt.Errorf("insufficient clean closes: %d (need %d)", len(clean), minCleanCloses)
	}
	if len(logRets) == 0 {
		return nil, fmt.Errorf("no usable log returns")
	}

	basePrice := clean[len(clean)-1]
	cfg := job.Config

	driftAdj, volMult, varMult, rhoShift := 0.0, 1.0, 1.0, 0.0
	lamMult, muJAdj, sigJMult := 1.0, 0.0, 1.0
	weights := cfg.baseWeights()
	if job.Adjustments != nil {
		a := job.Adjustments
		driftAdj = a.DriftAdjDaily
		volMult = a.VolMultiplier
		varMult = a.VarianceMultiplier
		rhoShift = a.HestoRhoShift
		lamMult = a.MertonLamMult
		muJAdj = a.MertonMuJAdj
		sigJMult = a.MertonSigJMult
		if a.EnsembleWeights != nil {
			weights = a.EnsembleWeights
		}
	}

	results := make(map[string]*kernels.ModelResult, 4)

	gbmSeed := kernels.SeedFor(job.Ticker, "gbm")
	if r := kernels.SimGBM(logRets, basePrice, cfg.NumSims, cfg.Horizons, kernels.NewRand(gbmSeed), cfg.MaxSigma, driftAdj, volMult); r != nil {
		results["gbm"] = r
	}

	garchSeed := kernels.SeedFor(job.Ticker, "garch")
	if r := kernels.SimGARCH(logRets, basePrice, cfg.NumSims, cfg.Horizons, kernels.NewRand(garchSeed), cfg.MaxSigma, driftAdj, volMult); r != nil {
		results["garch"] = r
	}

	hestonSeed := kernels.SeedFor(job.Ticker, "heston")
	if r := kernels.SimHeston(logRets, basePrice, cfg.NumSims, cfg.Horizons, kernels.NewRand(hestonSeed),
		cfg.HestonKappa, cfg.HestonTheta, cfg.HestonXi, cfg.HestonRho, driftAdj, varMult, rhoShift); r != nil {
		if r.FellerViolated {
			log.Warn().Str("ticker", job.Ticker).Msg("heston: Feller condition violated, continuing with full-truncation variance")
		}
		results["heston"] = r
	}

	mertonSeed := kernels.SeedFor(job.Ticker, "merton")
	if r := kernels.SimMerton(logRets, basePrice, cfg.NumSims, cfg.Horizons, kernels.NewRand(mertonSeed),
		cfg.MertonLambda, cfg.MertonMuJ, cfg.MertonSigmaJ, cfg.MaxSigma, driftAdj, volMult, lamMult, muJAdj, sigJMult); r != nil {
		results["merton"] = r
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("every model returned nil (zero variance or insufficient data)")
	}

	ensemble := kernels.CombineEnsemble(results, weights, cfg.Horizons, basePrice, DefaultTargetMultipliers, cfg.NumSims, kernels.NewPoolingRand())
	score := kernels.SimulationScore(ensemble.Horizons)
	drift, sigma := kernels.AnnualDriftSigma(logRets, cfg.MaxSigma)

	return &Snapshot{
		Score:          score.Score,
		Grade:          score.Grade,
		BasePrice:      basePrice,
		AnnualDrift:    drift,
		AnnualSigma:    sigma,
		NumPaths:       cfg.NumSims,
		InputDaysUsed:  len(clean),
		Horizons:       ensemble.Horizons,
		TargetProbs:    ensemble.TargetProbs,
		ModelBreakdown: ensemble.ModelBreakdown,
	}, nil
}
