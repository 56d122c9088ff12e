package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/riemannulus/whaleback/internal/config"
	"github.com/riemannulus/whaleback/internal/engine"
	"github.com/riemannulus/whaleback/internal/news"
	"github.com/riemannulus/whaleback/internal/persist"
	"github.com/riemannulus/whaleback/internal/store/postgres"
	"github.com/riemannulus/whaleback/internal/wbmetrics"
)

const dbTimeout = 10 * time.Second

// buildCollaborators loads configuration, opens the database connection, and
// assembles the engine's Collaborators bundle, following the teacher's
// open-once-reuse-across-commands wiring convention (cmd/cryptorun builds its
// providers once in main and passes them down to subcommands).
func buildCollaborators(ctx context.Context) (engine.Collaborators, *sqlx.DB, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return engine.Collaborators{}, nil, cfg, fmt.Errorf("load config: %w", err)
	}

	st, db, err := postgres.Open(ctx, cfg.DatabaseURL, dbTimeout)
	if err != nil {
		return engine.Collaborators{}, nil, cfg, fmt.Errorf("open database: %w", err)
	}

	col := engine.Collaborators{
		Store:           st,
		Persister:       persist.New(db, dbTimeout),
		LocalClassifier: news.NewLexicalClassifier(),
		Metrics:         wbmetrics.New(prometheus.DefaultRegisterer),
	}

	if cfg.NewsAPIClientID != "" && cfg.NewsAPIClientSecret != "" {
		col.NewsFetch = news.NewHTTPFetcher(
			cfg.NewsSearchURL, cfg.NewsAPIClientID, cfg.NewsAPIClientSecret,
			cfg.DisclosureURL, cfg.DisclosureAPIKey, requestsPerSecond(cfg),
		)
	}
	if cfg.LLMAPIKey != "" {
		col.Escalation = news.NewHTTPEscalationClient(cfg.LLMEndpoint, cfg.LLMAPIKey, requestsPerSecond(cfg))
	}

	return col, db, cfg, nil
}

func requestsPerSecond(cfg config.Config) float64 {
	if cfg.NewsMinSpacingMs <= 0 {
		return 1.0
	}
	return 1000.0 / float64(cfg.NewsMinSpacingMs)
}
