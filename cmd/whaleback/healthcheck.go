package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/riemannulus/whaleback/internal/config"
	"github.com/riemannulus/whaleback/internal/store/postgres"
)

// healthStatus mirrors the teacher's HealthStatus/ComponentHealth JSON shape
// (cmd/cryptorun/cmd_health.go), pared down to the two things a batch engine
// operator actually needs to know: can it reach Postgres, and how stale is
// the most recent composite snapshot.
type healthStatus struct {
	Overall             string    `json:"overall"` // HEALTHY, DEGRADED, UNHEALTHY
	Timestamp           time.Time `json:"timestamp"`
	DatabaseReachable   bool      `json:"database_reachable"`
	DatabaseLatencyMS   float64   `json:"database_latency_ms"`
	LastCompositeDate   string    `json:"last_composite_date,omitempty"`
	LastError           string    `json:"last_error,omitempty"`
}

func newHealthcheckCmd() *cobra.Command {
	var asJSON bool
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Check database connectivity and the freshness of the last composite run",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			status := runHealthcheck(ctx)
			if asJSON {
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(status)
			}
			printHealthText(status)
			if status.Overall != "HEALTHY" {
				return fmt.Errorf("health check reported %s", status.Overall)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output health status as JSON")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "health check timeout")
	return cmd
}

func runHealthcheck(ctx context.Context) healthStatus {
	status := healthStatus{Timestamp: time.Now(), Overall: "HEALTHY"}

	cfg, err := config.Load()
	if err != nil {
		status.Overall = "UNHEALTHY"
		status.LastError = fmt.Sprintf("load config: %v", err)
		return status
	}

	start := time.Now()
	_, db, err := postgres.Open(ctx, cfg.DatabaseURL, 10*time.Second)
	status.DatabaseLatencyMS = float64(time.Since(start).Microseconds()) / 1000.0
	if err != nil {
		status.Overall = "UNHEALTHY"
		status.LastError = fmt.Sprintf("database unreachable: %v", err)
		return status
	}
	defer db.Close()
	status.DatabaseReachable = true

	var lastDate sql.NullTime
	const q = `SELECT MAX(trade_date) FROM analysis_composite_snapshot`
	if err := db.GetContext(ctx, &lastDate, q); err != nil {
		status.Overall = "DEGRADED"
		status.LastError = fmt.Sprintf("query last composite date: %v", err)
		return status
	}
	if lastDate.Valid {
		status.LastCompositeDate = lastDate.Time.Format("2006-01-02")
		if time.Since(lastDate.Time) > 3*24*time.Hour {
			status.Overall = "DEGRADED"
			status.LastError = "last composite snapshot is more than 3 days old"
		}
	} else {
		status.Overall = "DEGRADED"
		status.LastError = "no composite snapshots persisted yet"
	}

	return status
}

func printHealthText(status healthStatus) {
	fmt.Printf("whaleback health check\n")
	fmt.Printf("-----------------------\n")
	fmt.Printf("Overall:            %s\n", status.Overall)
	fmt.Printf("Database reachable: %v (%.1fms)\n", status.DatabaseReachable, status.DatabaseLatencyMS)
	if status.LastCompositeDate != "" {
		fmt.Printf("Last composite run: %s\n", status.LastCompositeDate)
	}
	if status.LastError != "" {
		fmt.Printf("Last error:         %s\n", status.LastError)
	}
}
