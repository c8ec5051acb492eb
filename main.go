package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dcode-github/capetown_discovery/backend/cache"
	"github.com/dcode-github/capetown_discovery/backend/config"
	"github.com/dcode-github/capetown_discovery/backend/controllers"
	"github.com/dcode-github/capetown_discovery/backend/middleware"
	"github.com/dcode-github/capetown_discovery/backend/narrative"
	"github.com/dcode-github/capetown_discovery/backend/routes"
	"github.com/dcode-github/capetown_discovery/backend/services"
	"github.com/dcode-github/capetown_discovery/backend/store"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func main() {
	if err := config.LoadEnv(".env"); err != nil {
		log.Printf("Error loading .env file: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("%v", err)
	}
	logger, err := config.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	st, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	responseCache, err := openCache(ctx, cfg, logger)
	if err != nil {
		return err
	}

	middleware.RegisterMetrics(prometheus.DefaultRegisterer)
	narrative.RegisterMetrics(prometheus.DefaultRegisterer)

	merger := narrative.NewMerger(narrative.New(narrative.Config{
		APIKey:  cfg.OpenAIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
	}, logger), cfg.NarrativeTimeout, logger)

	facilities := services.NewFacilityService(st, responseCache, cfg.CacheTTL, logger)
	rentals := services.NewRentalService(st, logger)
	insights := services.NewInsightService(rentals, facilities, merger)

	router := mux.NewRouter()
	routes.Routes(router, routes.Deps{
		Store:      st,
		Facilities: controllers.NewFacilityController(facilities),
		Rentals:    controllers.NewRentalController(rentals),
		Insights:   controllers.NewInsightController(insights),
		Logger:     logger,
	})

	corsOptions := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	})

	server := &http.Server{
		Addr:           ":" + strconv.Itoa(cfg.Port),
		Handler:        corsOptions.Handler(router),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   cfg.NarrativeTimeout + 10*time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", zap.Int("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-sigCh:
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server gracefully stopped")
	return nil
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (store.Store, func(), error) {
	if cfg.StoreDriver == "memory" {
		mem := store.NewMemory()
		if cfg.SeedFile != "" {
			n, err := store.LoadSeed(mem, cfg.SeedFile)
			if err != nil {
				return nil, nil, err
			}
			logger.Info("memory store seeded", zap.String("file", cfg.SeedFile), zap.Int("documents", n))
		}
		return mem, func() {}, nil
	}

	client, err := config.ConnectDB(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() { config.CloseDBConnection(client, logger) }

	mongoStore := store.NewMongo(client.Database(cfg.Database), cfg.StoreTimeout)
	if err := mongoStore.EnsureIndexes(ctx); err != nil {
		closeFn()
		return nil, nil, err
	}
	return mongoStore, closeFn, nil
}

func openCache(ctx context.Context, cfg config.Config, logger *zap.Logger) (cache.Cache, error) {
	client, err := config.InitRedis(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return cache.Nop{}, nil
	}
	c := cache.NewRedis(client)
	if cfg.CacheFlushOnStart {
		n, err := c.Purge(ctx)
		if err != nil {
			logger.Warn("cache purge failed", zap.Error(err))
		} else {
			logger.Info("cache purged", zap.Int("keys", n))
		}
	}
	return c, nil
}
