package main

import (
	"context"
	"flag"
	"os"
	"time"

	"realestate-scraper/config"
	"realestate-scraper/scheduler"
	"realestate-scraper/scraper"
	"realestate-scraper/scraper/browser"
	"realestate-scraper/scraper/static"
	"realestate-scraper/server"
	"realestate-scraper/services"
	"realestate-scraper/storage"
	"realestate-scraper/utils"
)

func main() {
	once := flag.Bool("once", false, "run a single scrape and exit instead of serving")
	flag.Parse()

	logger := utils.NewLogger()
	cfg := config.Load()

	logger.Info("=== Real-Estate Scraping System starting ===")
	logger.Info("Config — interval: %s | concurrency: %d | rate: %dms | listen: %s",
		cfg.ScrapeInterval, cfg.MaxConcurrency, cfg.RateLimitMs, cfg.ListenAddr)

	profiles, err := config.LoadProfiles(cfg.ProfilesPath)
	if err != nil {
		logger.Error("Failed to load site profiles: %v", err)
		os.Exit(1)
	}
	logger.Info("Loaded %d site profiles", len(profiles))

	retry := &utils.RetryConfig{MaxAttempts: cfg.MaxRetries, BaseDelay: 2 * time.Second, Logger: logger}
	db, err := storage.Connect(cfg.DSN(), retry)
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		logger.Error("Make sure Docker is running: docker compose up -d")
		os.Exit(1)
	}

	store := storage.NewPostgresStore(db)
	defer store.Close()

	if err := store.Migrate(); err != nil {
		logger.Error("Database migration failed: %v", err)
		os.Exit(1)
	}

	orch := scraper.New(cfg, profiles, store, logger)
	orch.RegisterCollector(config.EngineBrowser, browser.NewEngine(cfg, logger))
	orch.RegisterCollector(config.EngineStatic, static.NewEngine(logger))

	if cfg.CSVOutputPath != "" {
		archive, err := storage.NewCSVWriter(cfg.CSVOutputPath)
		if err != nil {
			logger.Error("Failed to create CSV archive: %v", err)
			os.Exit(1)
		}
		defer archive.Close()
		orch.SetArchive(archive)
	}

	insightSvc := services.NewInsightService(logger)

	if *once {
		runOnce(orch, store, insightSvc, logger)
		return
	}

	sched := scheduler.New(orch, cfg.ScrapeInterval, logger)
	if err := sched.Start(); err != nil {
		logger.Error("Failed to start scheduler: %v", err)
		os.Exit(1)
	}
	defer sched.Stop()

	srv := server.New(orch, store, insightSvc, logger)
	if err := srv.Run(cfg.ListenAddr); err != nil {
		logger.Error("HTTP server failed: %v", err)
		os.Exit(1)
	}
}

func runOnce(orch *scraper.Orchestrator, store *storage.PostgresStore, insightSvc *services.InsightService, logger *utils.Logger) {
	ctx := context.Background()

	report, err := orch.RunOnce(ctx)
	if err != nil {
		logger.Error("Scrape run failed: %v", err)
		os.Exit(1)
	}
	logger.Info("Scrape finished: %d listings written in %s", report.Written, report.Duration.Round(time.Second))

	listings, err := store.FetchAll(ctx)
	if err != nil {
		logger.Error("Failed to fetch listings for insights: %v", err)
		os.Exit(1)
	}

	insightSvc.Print(insightSvc.Generate(listings))
}
