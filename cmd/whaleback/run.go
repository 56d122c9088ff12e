package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/riemannulus/whaleback/internal/engine"
)

func newRunCmd() *cobra.Command {
	var dateStr string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compute and persist one day's analysis snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			targetDate, err := time.Parse("2006-01-02", dateStr)
			if err != nil {
				return fmt.Errorf("invalid --date %q: %w", dateStr, err)
			}
			return runOneDate(cmd.Context(), targetDate)
		},
	}

	cmd.Flags().StringVar(&dateStr, "date", time.Now().Format("2006-01-02"), "trading date to analyze, YYYY-MM-DD")
	return cmd
}

func runOneDate(ctx context.Context, targetDate time.Time) error {
	col, db, cfg, err := buildCollaborators(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	summary, err := engine.RunDate(ctx, col, cfg, targetDate)
	if err != nil {
		return fmt.Errorf("compute_analysis(%s): %w", targetDate.Format("2006-01-02"), err)
	}

	log.Info().
		Str("date", summary.TargetDate.Format("2006-01-02")).
		Int("tickers_analyzed", summary.TickersAnalyzed).
		Int("tickers_failed", summary.TickersFailed).
		Interface("rows_by_category", summary.RowsByCategory).
		Msg("run complete")
	return nil
}
