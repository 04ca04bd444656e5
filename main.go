package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"sjsage522/catalogworker/config"
	"sjsage522/catalogworker/internal/catalog"
	"sjsage522/catalogworker/internal/crawler"
	"sjsage522/catalogworker/logger"
	"sjsage522/catalogworker/services/cache"
	"sjsage522/catalogworker/services/export"
	"sjsage522/catalogworker/services/publisher"
	"sjsage522/catalogworker/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	schema := catalog.OdooProductSchema

	// Load and validate configuration
	cfg := config.LoadConfig()
	if len(os.Args) > 1 {
		cfg.Queries = os.Args[1:]
	}
	if err := cfg.Validate(schema.Names()); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if len(cfg.Queries) == 0 {
		log.Fatal().Msg("No search queries; set SEARCH_QUERIES or pass them as arguments")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("base_url", cfg.BaseURL).
		Strs("queries", cfg.Queries).
		Int("schema_version", schema.Version).
		Msg("Starting application")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	exporters, cleanup := initializeExporters(ctx, &cfg, schema)
	defer cleanup()

	policy, _ := catalog.ParseFlagPolicy(cfg.FlagPolicy)
	walker := catalog.NewWalker(
		catalog.WithAssembler(catalog.NewAssembler(schema, policy)),
		catalog.WithWorkers(cfg.WalkerWorkers),
	)

	listing := crawler.NewListingCrawler(crawler.CrawlerConfig{
		Provider:   "Auchan",
		BaseURL:    cfg.BaseURL,
		SearchPath: cfg.SearchPath,
		CacheKey:   "auchan_rate_limited",
		BlockTime:  cfg.BlockTime,
		FetchDelay: cfg.FetchDelay,
	}, cache.NewMemcacheService(cfg.MemcacheAddr), walker)

	w := worker.NewWorker(
		ctx,
		listing,
		catalog.NewNormalizer(schema),
		exporters,
		cfg.Queries,
		worker.Options{
			MinPrice:      cfg.MinPrice,
			MaxPrice:      cfg.MaxPrice,
			ExportFields:  cfg.ExportFields,
			CrawlInterval: cfg.CrawlInterval,
			Currency:      "CFA",
			Retries:       cfg.FetchRetries,
			RetryDelay:    cfg.RetryDelay,
		},
	)

	workerDone := make(chan error, 1)
	go func() {
		log.Info().Msg("Starting catalog worker")
		workerDone <- w.Start()
	}()

	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
		<-workerDone
	case err := <-workerDone:
		if err != nil {
			logger.LogError("worker", err, "Worker exited with error after %d queries", len(cfg.Queries))
		} else {
			log.Info().Msg("Worker exited normally")
		}
	}

	log.Info().Msg("Shutting down gracefully...")
}

// initializeExporters sets up the CSV file and the Redis stream exporters.
// An unreachable Redis disables stream export instead of aborting.
func initializeExporters(ctx context.Context, cfg *config.Config, schema catalog.Schema) ([]export.Exporter, func()) {
	var exporters []export.Exporter

	if cfg.OutputPath != "" {
		csvExporter, err := export.NewCSVExporter(cfg.OutputPath)
		if err != nil {
			logger.Default.Fatal().Err(err).Msg("Failed to create CSV exporter")
		}
		exporters = append(exporters, csvExporter)
		logger.Info("Writing products to %s", cfg.OutputPath)
	}

	redisPublisher := publisher.NewRedisPublisher(
		cfg.RedisAddr,
		cfg.RedisDB,
		cfg.RedisStream,
		cfg.RedisStreamCount,
		cfg.RedisStreamMaxLength,
	)
	if err := redisPublisher.Ping(ctx); err != nil {
		logger.ForPublisher().Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unavailable, stream export disabled")
		redisPublisher.Close()
	} else {
		exporters = append(exporters, export.NewStreamExporter(redisPublisher, schema.Version))
		logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	}

	if len(exporters) == 0 {
		logger.Warn("No exporter configured; set OUTPUT_PATH or start Redis at %s", cfg.RedisAddr)
	}

	cleanup := func() {
		for _, e := range exporters {
			if err := e.Close(); err != nil {
				logger.ForExporter().Warn().Err(err).Msg("Failed to close exporter")
			}
		}
	}
	return exporters, cleanup
}
