package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	appName = "whaleback"
	version = "v0.1.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Daily Korean-equity whale/quant/trend/sentiment batch analytics",
		Version: version,
		Long: `whaleback computes one day's quant, whale-flow, trend, sector-flow, news-
sentiment, Monte Carlo simulation, and composite snapshots for the active
Korean equity universe, and persists them to Postgres.

Run 'whaleback run --date=YYYY-MM-DD' for a single day, or
'whaleback backfill --from=... --to=...' for a range.`,
	}

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newBackfillCmd())
	rootCmd.AddCommand(newHealthcheckCmd())
	rootCmd.AddCommand(newServeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
