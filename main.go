package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Devaaron7/garage-sale-finder/config"
	"github.com/Devaaron7/garage-sale-finder/internal/api"
	"github.com/Devaaron7/garage-sale-finder/internal/listing"
	"github.com/Devaaron7/garage-sale-finder/internal/scraper"
	"github.com/Devaaron7/garage-sale-finder/internal/sources"
	"github.com/Devaaron7/garage-sale-finder/logger"
	"github.com/Devaaron7/garage-sale-finder/services/cache"
	"github.com/Devaaron7/garage-sale-finder/services/location"
	"github.com/Devaaron7/garage-sale-finder/services/publisher"
	"github.com/Devaaron7/garage-sale-finder/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("listen_addr", cfg.ListenAddr).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	services := initializeServices(ctx, cfg)
	defer services.Cleanup()

	// Resolve zips through the shared cache
	resolver := location.NewResolver(cfg.LocationAPIURL, services.Cache)

	aggregator := sources.NewAggregator(buildSources(cfg, resolver)...)

	// Start the watch worker when zips are configured
	if len(cfg.WatchZips) > 0 {
		w := worker.NewWatcher(
			aggregator,
			services.Cache,
			services.Publisher,
			cfg.WatchZips,
			cfg.SearchRadius,
			cfg.WatchInterval,
		)
		go w.Run(ctx)
	}

	// Start the HTTP API
	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: api.NewServer(aggregator, cfg.SearchRadius, cfg.SearchTimeout).Router(),
	}

	serverDone := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("HTTP server listening")
		serverDone <- server.ListenAndServe()
	}()

	// Wait for shutdown signal or server error
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
	case err := <-serverDone:
		if err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server exited with error")
		}
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("HTTP server shutdown was not clean")
	}
}

// buildSources assembles the search backends: the browser-driven scraper,
// the static craigslist fetcher, and the marketplace generators.
func buildSources(cfg *config.Config, resolver *location.Resolver) []sources.Source {
	return []sources.Source{
		scraper.NewGSALRSource(cfg, resolver),
		sources.NewCraigslistSource(cfg.CraigslistBase, resolver),
		sources.NewMockSource(listing.SourceEbayLocal, "https://www.ebay.com", resolver),
		sources.NewMockSource(listing.SourceMercari, "https://www.mercari.com", resolver),
		sources.NewMockSource(listing.SourceOfferUp, "https://offerup.com", resolver),
	}
}

// Services holds all the initialized services
type Services struct {
	Cache     cache.CacheService
	Publisher publisher.Publisher
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
}

// initializeServices wires the cache backend and the Redis publisher
func initializeServices(ctx context.Context, cfg *config.Config) *Services {
	services := &Services{}

	switch cfg.CacheBackend {
	case "memcache":
		services.Cache = cache.NewMemcacheService(cfg.MemcacheAddr)
		logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
	default:
		services.Cache = cache.NewMemoryService()
		logger.Info("Using in-process cache")
	}

	services.Publisher = publisher.NewRedisPublisher(
		ctx,
		cfg.RedisAddr,
		cfg.RedisDB,
		cfg.RedisStream,
		cfg.RedisStreamCount,
		cfg.RedisStreamMaxLength,
	)
	logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
		cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)

	return services
}
