package pipeline

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/riemannulus/whaleback/internal/engine/errs"
	"github.com/riemannulus/whaleback/internal/store"
)

// Run implements C3 followed by C4: every ticker in universe.Universes is
// run through RunTicker, a per-ticker panic is recovered and logged as a
// PerTickerFailure (the kernels are pure functions and should never panic,
// but the orchestration boundary stays defensive per §7), and the survivors
// feed the cross-ticker passes.
func Run(universe *LoadedUniverse) (map[string]*TickerResult, []SectorFlowSnapshot) {
	results := make(map[string]*TickerResult, len(universe.Universes))

	for ticker, u := range universe.Universes {
		tr, err := runTickerSafely(u, universe.IndexCloses, universe.SectorMedians)
		if err != nil {
			log.Warn().Err(errs.NewPerTickerFailure(ticker, "pipeline", err)).Str("ticker", ticker).Msg("per-ticker analysis failed, skipping")
			continue
		}
		results[ticker] = tr
	}

	sectorFlows := ApplyCrossTickerPasses(results)
	return results, sectorFlows
}

func runTickerSafely(u store.TickerUniverse, indexCloses []store.IndexBar, sectorMedians map[string]store.SectorMedians) (result *TickerResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	tr := RunTicker(u, indexCloses, sectorMedians)
	return &tr, nil
}
