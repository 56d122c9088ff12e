package simulation

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/riemannulus/whaleback/internal/engine/errs"
)

// Run drives a fixed pool of poolSize goroutines over jobs, each worker
// draining the shared job channel and writing to a shared results channel,
// joined with a sync.WaitGroup, per SPEC_FULL.md §5's documented C6 shape. A
// job whose ticker has too little history yields a Result with a non-nil
// Err and a nil Snapshot rather than aborting the pool; other tickers
// continue to run.
func Run(ctx context.Context, jobs []Job, poolSize int) map[string]Snapshot {
	if poolSize <= 0 {
		poolSize = DefaultConfig().PoolSize
	}

	jobCh := make(chan Job, len(jobs))
	resultCh := make(chan Result, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < poolSize; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				if ctx.Err() != nil {
					resultCh <- Result{Ticker: job.Ticker, Err: ctx.Err()}
					continue
				}
				snap, err := simulate(job)
				resultCh <- Result{Ticker: job.Ticker, Snapshot: snap, Err: err}
			}
		}()
	}

	for _, job := range jobs {
		jobCh <- job
	}
	close(jobCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	out := make(map[string]Snapshot, len(jobs))
	for r := range resultCh {
		if r.Err != nil {
			log.Warn().Err(errs.NewPerTickerFailure(r.Ticker, "simulation", r.Err)).Msg("skipping ticker in simulation stage")
			continue
		}
		out[r.Ticker] = *r.Snapshot
	}
	return out
}
