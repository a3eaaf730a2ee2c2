package main

import (
	"context"
	"fmt"
	"os"

	"ai-study-planner/internal/app"
	"ai-study-planner/internal/cli"
	"ai-study-planner/internal/config"
	"ai-study-planner/internal/database"
	"ai-study-planner/internal/extract"
	"ai-study-planner/internal/ghost"
	"ai-study-planner/internal/llm"
	"ai-study-planner/internal/metrics"
	"ai-study-planner/internal/planner"
	"ai-study-planner/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Completion provider
	textGen, closer, err := llm.NewFromConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize %s client: %w", cfg.LLMProvider, err)
	}
	defer closer.Close()

	// 3. Storage
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	metricsStore := metrics.NewStore(db.SQL)

	results, err := session.NewFromConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize result store: %w", err)
	}
	defer results.Close()

	// 4. Services
	studyPlanner := planner.NewPlanner(planner.NewPlanRequestBuilder(textGen, cfg.APIKey()))
	application := app.NewApp(studyPlanner, extract.NewFetcher(), metricsStore)

	var publisher ghost.Client
	if cfg.GhostEnabled() {
		publisher = ghost.NewClient(cfg)
	}

	root := cli.NewRootCmd(&cli.App{
		Config:    cfg,
		Plans:     application,
		Metrics:   metricsStore,
		Results:   results,
		Publisher: publisher,
	})
	return root.ExecuteContext(ctx)
}
