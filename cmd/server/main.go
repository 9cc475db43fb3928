package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/fooddb/diet-service/config"
	"github.com/fooddb/diet-service/internal/catalog"
	"github.com/fooddb/diet-service/internal/handlers"
	"github.com/fooddb/diet-service/internal/middleware"
	"github.com/fooddb/diet-service/internal/profiles"
	"github.com/fooddb/diet-service/internal/solver"
	"github.com/fooddb/diet-service/internal/telemetry"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := initLogger(cfg.Logging)

	logger.Info().Msg("Starting diet service")

	ctx := context.Background()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     cfg.Telemetry.Enabled,
		Endpoint:    cfg.Telemetry.Endpoint,
		Environment: cfg.Telemetry.Environment,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize telemetry")
	}

	cat, err := catalog.NewLoader(cfg.Catalog.DataDir).Load()
	if err != nil {
		logger.Fatal().Err(err).Str("data_dir", cfg.Catalog.DataDir).Msg("Failed to load food catalog")
	}
	logger.Info().
		Int("foods", len(cat.Foods())).
		Int("nutrients", len(cat.Nutrients())).
		Msg("Catalog loaded")

	backend := solver.NewHighsBackend(cfg.Solver.SolveTimeout)
	engine, err := solver.New(cat, backend, &cfg.Solver)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create solver")
	}

	store, err := openProfileStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open profile store")
	}
	defer store.Close()

	handlers.Init(engine, cat, store)

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimit(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.BurstSize,
	}))

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/solve", handlers.Solve)
	router.POST("/evaluate", handlers.Evaluate)

	router.GET("/foods", handlers.ListFoods)
	router.GET("/food/:id", handlers.GetFood)
	router.GET("/nutrients", handlers.ListNutrients)
	router.GET("/rank/:nutrient", handlers.RankFoods)

	router.GET("/profiles", handlers.ListProfiles)
	router.POST("/profiles", handlers.SaveProfile)
	router.GET("/profile/:name", handlers.GetProfile)
	router.DELETE("/profile/:name", handlers.DeleteProfile)
	router.POST("/profile/last", handlers.SetLastProfile)
	router.GET("/state/latest", handlers.GetLatestState)
	router.POST("/state/latest", handlers.SaveLatestState)
	router.GET("/userdata", handlers.ExportUserData)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Telemetry shutdown failed")
	}

	logger.Info().Msg("Server exited")
}

func openProfileStore(ctx context.Context, cfg *config.Config) (profiles.Store, error) {
	switch cfg.Profiles.Backend {
	case "postgres":
		url := config.GetDatabaseURL()
		if url == "" {
			return nil, fmt.Errorf("postgres profile backend requires DATABASE_URL")
		}
		return profiles.NewPostgresStore(ctx, url, cfg.Database.MaxConnections)
	case "", "file":
		return profiles.NewFileStore(cfg.Profiles.Path)
	default:
		return nil, fmt.Errorf("unknown profile backend %q", cfg.Profiles.Backend)
	}
}

func initLogger(cfg config.LoggingConfig) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	if cfg.Format == "json" {
		output = os.Stdout
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: cfg.NoColor}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("service", "diet-service").Logger()
	return &logger
}
