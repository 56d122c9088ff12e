package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/riemannulus/whaleback/internal/engine"
)

// newBackfillCmd mirrors the reference implementation's scripts/backfill.py
// range-looping shape, one compute_analysis call per date in [from, to].
func newBackfillCmd() *cobra.Command {
	var fromStr, toStr, watchSchedule string

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Compute and persist analysis snapshots for a range of dates",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return fmt.Errorf("invalid --from %q: %w", fromStr, err)
			}
			to, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return fmt.Errorf("invalid --to %q: %w", toStr, err)
			}
			if to.Before(from) {
				return fmt.Errorf("--to (%s) precedes --from (%s)", toStr, fromStr)
			}

			if watchSchedule != "" {
				return watchBackfill(cmd.Context(), from, to, watchSchedule)
			}
			return runBackfillRange(cmd.Context(), from, to)
		},
	}

	cmd.Flags().StringVar(&fromStr, "from", "", "first trading date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&toStr, "to", "", "last trading date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&watchSchedule, "watch", "", "re-run the range on this cron schedule instead of exiting (dev convenience)")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")
	return cmd
}

func runBackfillRange(ctx context.Context, from, to time.Time) error {
	col, db, cfg, err := buildCollaborators(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	var firstErr error
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		log.Info().Str("date", d.Format("2006-01-02")).Msg("backfill: starting date")
		summary, err := engine.RunDate(ctx, col, cfg, d)
		if err != nil {
			log.Error().Err(err).Str("date", d.Format("2006-01-02")).Msg("backfill: date aborted")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		log.Info().
			Str("date", d.Format("2006-01-02")).
			Int("tickers_analyzed", summary.TickersAnalyzed).
			Msg("backfill: date complete")
	}
	return firstErr
}

// watchBackfill re-runs the same date range on a cron schedule, using the
// same cron.New(cron.WithSeconds()) + graceful-stop shape as the teacher's
// scheduler package, for local development where a long-lived process is
// more convenient than an external cron entry.
func watchBackfill(ctx context.Context, from, to time.Time, schedule string) error {
	c := cron.New(cron.WithSeconds())
	_, err := c.AddFunc(schedule, func() {
		if err := runBackfillRange(ctx, from, to); err != nil {
			log.Error().Err(err).Msg("watch: backfill run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid --watch schedule %q: %w", schedule, err)
	}

	c.Start()
	log.Info().Str("schedule", schedule).Msg("watch: backfill scheduler started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	stopCtx := c.Stop()
	<-stopCtx.Done()
	log.Info().Msg("watch: backfill scheduler stopped")
	return nil
}
