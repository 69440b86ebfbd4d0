package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"wildguard/config"
	"wildguard/scheduler"
	"wildguard/scraper"
	"wildguard/scraper/craigslist"
	"wildguard/scraper/ebay"
	"wildguard/scraper/synthetic"
	"wildguard/services"
	"wildguard/storage"
	"wildguard/utils"
	"wildguard/vision"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()

	logger.Info("=== WildGuard Marketplace Scanner starting ===")
	logger.Info("Config — interval: %dh | concurrency: %d | rate: %dms | threshold: %.2f",
		cfg.ScanIntervalHours, cfg.MaxConcurrency, cfg.RateLimitMs, cfg.IncludeThreshold)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
	if err != nil {
		logger.Error("Failed to create CSV writer: %v", err)
		os.Exit(1)
	}
	defer csvWriter.Close()

	pgWriter, err := storage.NewPostgresWriter(cfg.DSN())
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		logger.Error("Make sure Docker is running: docker compose up -d")
		os.Exit(1)
	}
	defer pgWriter.Close()

	rdb, err := storage.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	defer rdb.Close()

	visionCtl := buildVisionController(ctx, cfg, rdb, logger)

	pipeline := services.NewPipeline(cfg.IncludeThreshold, visionCtl, pgWriter, logger)

	adapters := buildAdapters(cfg, logger)
	if len(adapters) == 0 {
		logger.Error("No ingestion adapters configured. Exiting.")
		os.Exit(1)
	}

	sched := scheduler.New(adapters, pipeline, csvWriter, cfg.Keywords(),
		cfg.ScanIntervalHours, logger)
	if err := sched.Start(ctx); err != nil {
		logger.Error("Scheduler start failed: %v", err)
		os.Exit(1)
	}
	defer sched.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("Shutdown signal received — stopping")

	if pending, err := pgWriter.FetchReviewQueue(context.Background(), 10); err != nil {
		logger.Warn("Could not read review queue: %v", err)
	} else {
		logger.Info("Human review queue: %d recent item(s) awaiting triage", len(pending))
	}

	cancel()
}

// buildVisionController wires the Redis-backed quota store and cache with
// the Google Cloud Vision annotator. When no API key is configured the
// controller is built unconfigured: the gate answers no and the scan runs
// text-only.
func buildVisionController(ctx context.Context, cfg *config.Config,
	rdb *redis.Client, logger *utils.Logger) *vision.Controller {

	quota := vision.NewRedisQuotaStore(rdb)
	cache := vision.NewRedisCache(rdb)
	fetcher := vision.NewHTTPImageFetcher()

	if cfg.VisionAPIKey == "" {
		logger.Warn("VISION_API_KEY not set — image analysis disabled")
		return vision.NewController(quota, cache, nil, fetcher, false, logger)
	}

	annotator, err := vision.NewGoogleAnnotator(ctx, cfg.VisionAPIKey)
	if err != nil {
		logger.Error("Vision API client init failed: %v — running text-only", err)
		return vision.NewController(quota, cache, nil, fetcher, false, logger)
	}

	return vision.NewController(quota, cache, annotator, fetcher, true, logger)
}

// buildAdapters assembles the ingestion adapters active for this
// deployment. The synthetic generator is a load-test fixture and only
// joins when SYNTHETIC_LISTINGS=true; it never runs alongside production
// scans implicitly.
func buildAdapters(cfg *config.Config, logger *utils.Logger) []scraper.Adapter {
	var adapters []scraper.Adapter

	if cfg.SyntheticListings {
		logger.Warn("Synthetic listing generator enabled — fixture data only")
		adapters = append(adapters, synthetic.New(42, 25))
		return adapters
	}

	adapters = append(adapters,
		ebay.New(cfg.EbayAppToken, cfg.MaxConcurrency, cfg.RateLimitMs, cfg.MaxRetries, logger),
		craigslist.New(cfg.ChromeBin, cfg.MaxConcurrency, cfg.RateLimitMs, cfg.MaxRetries, logger),
	)
	return adapters
}
