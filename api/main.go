package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/NathanielMuller/ScanShelf/internal/cache"
	"github.com/NathanielMuller/ScanShelf/internal/catalog"
	"github.com/NathanielMuller/ScanShelf/internal/config"
	"github.com/NathanielMuller/ScanShelf/internal/db"
	api "github.com/NathanielMuller/ScanShelf/internal/http"
	"github.com/NathanielMuller/ScanShelf/internal/http/handlers"
	rl "github.com/NathanielMuller/ScanShelf/internal/http/rate_limiter"
	"github.com/NathanielMuller/ScanShelf/internal/journal"
	"github.com/NathanielMuller/ScanShelf/internal/lookup"
	"github.com/NathanielMuller/ScanShelf/internal/repo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("could not load config")
	}

	log := zerolog.New(os.Stdout).With().Timestamp().Str("app", cfg.App.Name).Logger()
	if cfg.App.Env == "development" {
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	ctx := context.Background()

	var (
		products   repo.ProductRepository
		categories repo.CategoryRepository
		movements  repo.MovementRepository
	)
	if cfg.DB.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DB.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to database")
		}
		defer database.Close()
		products = repo.NewPostgresProductRepository(database)
		categories = repo.NewPostgresCategoryRepository(database)
		movements = repo.NewPostgresMovementRepository(database)
		log.Info().Msg("using postgres store")
	} else {
		store := repo.NewMemoryStore()
		products = store.Products()
		categories = store.Categories()
		movements = store.Movements()
		log.Info().Msg("using in-memory store")
	}

	var pcache *cache.ProductCache
	if cfg.Redis.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.Redis.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid redis url")
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Msg("could not connect to redis")
		}
		defer rdb.Close()
		pcache = cache.NewProductCache(rdb, cfg.Cache.LongTTL, log)
		log.Info().Msg("product side-cache enabled")
	}

	var meta *lookup.Client
	if cfg.Lookup.BaseURL != "" {
		meta = lookup.NewClient(cfg.Lookup.BaseURL, cfg.Lookup.Timeout, log)
	}

	coordinator := cache.NewCoordinator()

	catalogSvc := catalog.NewService(catalog.Config{
		Products:     products,
		Categories:   categories,
		Movements:    movements,
		Cache:        coordinator,
		ProductCache: pcache,
		Lookup:       meta,
		ShortTTL:     cfg.Cache.ShortTTL,
		LongTTL:      cfg.Cache.LongTTL,
		Logger:       log,
	})
	journalSvc := journal.NewService(journal.Config{
		Movements:    movements,
		Products:     products,
		Cache:        coordinator,
		ProductCache: pcache,
		ShortTTL:     cfg.Cache.ShortTTL,
		Logger:       log,
	})

	if err := catalogSvc.SeedCategories(ctx); err != nil {
		log.Fatal().Err(err).Msg("could not seed categories")
	}

	handlers.SetCatalogService(catalogSvc)
	handlers.SetJournalService(journalSvc)
	handlers.SetLogger(log)

	var limiter *rl.Registry
	if cfg.HTTP.RateLimit > 0 {
		limiter = rl.NewRegistry(cfg.HTTP.RateLimit, cfg.HTTP.RateBurst)
		go limiter.StartCleanupLoop()
	}

	router := api.NewRouter(api.RouterConfig{
		RateLimiter: limiter,
		Logger:      log,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Info().Str("addr", cfg.HTTP.Addr()).Msg("server running")
	if err := server.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
