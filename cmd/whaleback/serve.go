package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/riemannulus/whaleback/internal/config"
	"github.com/riemannulus/whaleback/internal/wbmetrics"
)

// newServeCmd starts the admin HTTP surface: a Prometheus scrape endpoint and
// a liveness probe, following
// _examples/aristath-sentinel/trader-go/internal/server/server.go's
// chi.NewRouter + middleware.Recoverer/RequestID/RealIP/Timeout + go-chi/cors
// setup. Whaleback has no browser-facing dashboard, so only the two
// operational routes are mounted.
func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the admin HTTP surface (/healthz, /metrics)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveAdmin(cmd.Context(), port)
		},
	}

	cfg := config.Default()
	cmd.Flags().IntVar(&port, "port", cfg.AdminPort, "admin HTTP surface port")
	return cmd
}

func serveAdmin(ctx context.Context, port int) error {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		status := runHealthcheck(req.Context())
		w.Header().Set("Content-Type", "application/json")
		if status.Overall == "UNHEALTHY" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(status)
	})
	r.Handle("/metrics", wbmetrics.Handler())

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", port).Msg("admin HTTP surface listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("admin HTTP surface failed")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info().Msg("admin HTTP surface shutting down")
	return srv.Shutdown(shutdownCtx)
}
