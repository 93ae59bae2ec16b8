package main

import (
	"github.com/joshuarweaver/brieforge/internal/api"
	"github.com/joshuarweaver/brieforge/internal/audit"
	"github.com/joshuarweaver/brieforge/internal/blueprint"
	"github.com/joshuarweaver/brieforge/internal/campaign"
	brieforgeconfig "github.com/joshuarweaver/brieforge/internal/config"
	"github.com/joshuarweaver/brieforge/internal/enrich"
	"github.com/joshuarweaver/brieforge/internal/signals"
	"github.com/joshuarweaver/brieforge/pkg/config"
	"github.com/joshuarweaver/brieforge/pkg/database"
	"github.com/joshuarweaver/brieforge/pkg/llm"
	"github.com/joshuarweaver/brieforge/pkg/logging"
	"github.com/joshuarweaver/brieforge/pkg/monitoring"
	"github.com/joshuarweaver/brieforge/pkg/searchapi"
	"github.com/joshuarweaver/brieforge/pkg/server"
	"github.com/joshuarweaver/brieforge/pkg/version"
)

func main() {
	// Setup logger
	logger := logging.NewLoggerWithService("brieforge")

	// Load environment variables
	config.LoadEnv(logger)

	logger.Info("Starting BrieForge (Marketing Intelligence API)")

	cfg := brieforgeconfig.LoadConfig()

	// Connect to database
	dbConfig := database.DefaultConfig()
	dbConfig.URL = cfg.DatabaseURL
	db := database.MustConnect(dbConfig, logger)
	defer func() { _ = db.Close() }()

	// Setup monitoring
	healthChecker := monitoring.NewHealthChecker("brieforge", version.Version)
	metricsCollector := monitoring.NewMetricsCollector("brieforge", version.Version, version.GitCommit)

	healthChecker.AddCheck("database", monitoring.DatabaseHealthCheck(db))
	healthChecker.AddCheck("config", monitoring.ConfigurationHealthCheck(map[string]string{
		"DATABASE_URL": cfg.DatabaseURL,
	}))

	// LLM is optional: without it query generation and blueprint refinement
	// fall back to their rule-based paths.
	var llmClient llm.Client
	client, err := llm.NewClient(llm.Config{
		Provider:  cfg.LLMProvider,
		Model:     cfg.LLMModel,
		APIKey:    cfg.LLMAPIKey,
		APIURL:    cfg.LLMAPIURL,
		MaxTokens: cfg.LLMMaxTokens,
	})
	if err != nil {
		logger.WithError(err).Warn("Failed to initialize LLM client - rule-based generation only")
	} else {
		llmClient = client
	}

	searcher, err := searchapi.NewClient(cfg.SearchAPIKey, cfg.SearchAPIURL)
	if err != nil {
		logger.WithError(err).Warn("Failed to initialize search client - signal collection disabled")
		searcher = nil
	}

	// Stores
	campaignStore := campaign.NewStore(db)
	signalStore := signals.NewStore(db)
	enrichmentStore := enrich.NewStore(db)
	blueprintStore := blueprint.NewStore(db)
	auditor := audit.NewLogger(db)

	// Services
	queryBuilder := signals.NewQueryBuilder(nil, logger)
	if cfg.QueryGenUseLLM && llmClient != nil {
		queryBuilder = signals.NewQueryBuilder(llmClient, logger)
	}
	var collector *signals.Collector
	if searcher != nil {
		collector = signals.NewCollector(searcher, queryBuilder, campaignStore, signalStore, logger)
	}
	enricher := enrich.NewService(enrich.Engine{}, campaignStore, signalStore, enrichmentStore, auditor, logger)
	blueprints := blueprint.NewService(
		campaignStore, signalStore, enrichmentStore, blueprintStore,
		llmClient, auditor, logger,
		cfg.SignalLimit, cfg.BlueprintUseLLM, cfg.LLMMaxTokens,
	)

	// Setup router with unified monitoring
	router := server.SetupServiceRouter(logger, "brieforge", healthChecker, metricsCollector)
	handlers := api.NewHandlers(campaignStore, signalStore, collector, enricher, blueprints, blueprintStore, auditor)
	handlers.RegisterRoutes(router)

	serverConfig := server.DefaultConfig("brieforge", cfg.Port)
	if err := server.Start(serverConfig, router, logger); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}
}
