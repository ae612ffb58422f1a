package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"

	"github.com/omjain/venture-lens/db"
	"github.com/omjain/venture-lens/internal/agents/benchmark"
	"github.com/omjain/venture-lens/internal/agents/critique"
	"github.com/omjain/venture-lens/internal/agents/ingestion"
	"github.com/omjain/venture-lens/internal/agents/narrative"
	"github.com/omjain/venture-lens/internal/agents/report"
	"github.com/omjain/venture-lens/internal/agents/scoring"
	"github.com/omjain/venture-lens/internal/config"
	"github.com/omjain/venture-lens/internal/handler"
	"github.com/omjain/venture-lens/internal/orchestrator"
	"github.com/omjain/venture-lens/internal/store"
	"github.com/omjain/venture-lens/internal/telemetry"
	"github.com/omjain/venture-lens/pkg/llm"
)

func main() {
	cfg := config.Load()

	obs := telemetry.New("venture-lens", cfg.OTELJaegerEndpoint)
	defer obs.Shutdown(context.Background())

	provider, err := llm.SelectProvider(cfg)
	if err != nil {
		log.Fatalf("error selecting llm provider: %v", err)
	}
	gateway := llm.NewGateway(provider)

	redisClient, err := db.ConnectCache(cfg.CacheURL)
	if err != nil {
		slog.Warn("narrative cache unavailable, continuing without it", "error", err)
	}
	cacheStore := store.NewRedisCacheStore(redisClient)

	critiqueDB, err := db.ConnectCritiqueLog(cfg.CritiqueLogURL)
	if err != nil {
		slog.Warn("critique log unavailable, continuing without it", "error", err)
	}
	critiqueLogStore := store.NewPostgresCritiqueLogStore(critiqueDB)
	if err := critiqueLogStore.EnsureSchema(context.Background()); err != nil {
		slog.Warn("failed to ensure critique log schema", "error", err)
	}

	reportStore := store.NewReportStore()

	ingestionAgent := ingestion.NewAgent(gateway, nil, nil)
	scoringAgent := scoring.NewAgent(gateway)
	narrativeAgent := narrative.NewAgent(gateway, cacheStore)
	benchmarkAgent := benchmark.NewAgent(gateway)
	critiqueAgent := critique.NewAgent(gateway, critiqueLogStore)
	reportAgent := report.NewAgent(nil, reportStore)

	orch := orchestrator.New(ingestionAgent, scoringAgent, narrativeAgent, benchmarkAgent, critiqueAgent, reportAgent)
	orch.SetObservability(obs)

	router := handler.NewRouter(handler.Dependencies{
		Ingest:               handler.NewIngestHandler(ingestionAgent),
		Score:                handler.NewScoreHandler(scoringAgent),
		Critique:             handler.NewCritiqueHandler(critiqueAgent),
		Narrative:            handler.NewNarrativeHandler(narrativeAgent, cacheStore),
		Evaluate:             handler.NewEvaluateHandler(orch),
		Health:               handler.NewHealthHandler(cfg.HasCredentials(), cfg.CacheURL != "", cfg.CritiqueLogURL != ""),
		Observability:        obs,
		RateLimitWindowMS:    cfg.RateLimitWindowMS,
		RateLimitMaxRequests: cfg.RateLimitMaxRequests,
	})

	addr := cfg.HTTPAddr
	if addr == "" {
		addr = ":8080"
	}
	slog.Info("starting server", "addr", addr)
	if err := router.Run(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("error starting server: %v", err)
	}
}
