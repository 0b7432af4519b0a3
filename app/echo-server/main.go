package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"rehabDose/app/echo-server/router"
	"rehabDose/business/modelparams"
	"rehabDose/business/patient"
	"rehabDose/business/prediction"
	"rehabDose/business/simulator"
	"rehabDose/internal/middleware"
	"rehabDose/internal/repository/jsonfile"
	psqlRepo "rehabDose/internal/repository/postgres"
	redisRepo "rehabDose/internal/repository/redis"
	"rehabDose/internal/rest"
	"rehabDose/pkg/config"
	"rehabDose/pkg/database"
	redisClient "rehabDose/pkg/database/redis"
	"rehabDose/pkg/logger"
	"rehabDose/pkg/metrics"
	"rehabDose/pkg/telemetry"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting Rehab Dose Planner", "version", cfg.App.Version)

	shutdownTracing, err := telemetry.Setup(context.Background(), cfg.App.Name, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		logger.Warn("Tracing disabled", "error", err)
	}

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}

	logger.Info("Database connected successfully")

	metrics.Init()

	// Init repo
	var patientRepo patient.PatientRepository
	switch cfg.Store.PatientStore {
	case config.PatientStoreFile:
		patientRepo = jsonfile.NewPatientRepository(cfg.Store.PatientsFile)
		logger.Info("Using JSON patient store", "path", cfg.Store.PatientsFile)
	default:
		patientRepo = psqlRepo.NewPatientRepository(db)
	}
	paramRepo := psqlRepo.NewModelParamRepository(db)
	resultRepo := psqlRepo.NewPredictionResultRepository(db)

	var cache *redisRepo.PredictionCache
	if cfg.Redis.Enabled {
		rdb, err := redisClient.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, recommendation cache disabled", "error", err)
		} else {
			defer redisClient.CloseRedisClient(rdb)
			cache = redisRepo.NewPredictionCache(rdb)
		}
	}

	// Init service
	sim := simulator.New(simulatorConfig(cfg.Simulator))
	paramOpts := []modelparams.Option{modelparams.WithPatients(patientRepo)}
	if cache != nil {
		paramOpts = append(paramOpts, modelparams.WithInvalidator(cache))
	}
	paramService := modelparams.NewParamService(paramRepo, cfg.Store.ParamIterations, paramOpts...)
	patientService := patient.NewPatientService(patientRepo, paramService).
		WithCleaners(paramService, resultRepo)

	var recommendationCache prediction.RecommendationCache
	if cache != nil {
		patientService.WithInvalidator(cache)
		recommendationCache = cache
	}
	predictionService := prediction.NewPredictionService(patientRepo, paramService, resultRepo, recommendationCache, sim, cfg.Redis.CacheTTL)

	// Init handler
	patientHandler := rest.NewPatientHandler(patientService)
	predictionHandler := rest.NewPredictionHandler(predictionService)
	paramHandler := rest.NewModelParamHandler(paramService)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.TraceID())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, middleware.RequestIDHeader},
	}))

	// Setup routes
	router.SetOpsRoutes(e)
	api := e.Group("/api/v1")
	router.SetupPatientRoutes(api, patientHandler)
	router.SetPredictionRoutes(api, predictionHandler)
	router.SetModelParamRoutes(api, paramHandler)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Error("Tracer shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}

func simulatorConfig(c config.SimulatorConfig) simulator.Config {
	cfg := simulator.DefaultConfig()

	cfg.RecommendedRollouts = c.RecommendedRollouts
	cfg.PercentileRollouts = c.PercentileRollouts
	cfg.FixedMargin = c.FixedMargin
	cfg.MarginJitter = c.MarginJitter
	cfg.LowerPercentile = c.LowerPercentile
	cfg.UpperPercentile = c.UpperPercentile
	cfg.Workers = c.Workers
	cfg.MaxHorizon = c.MaxHorizon
	cfg.PreviousOutcome = simulator.PreviousOutcomeMode(c.PreviousOutcome)

	cfg.Blend = simulator.BlendConfig{
		AlphaUndershoot: c.BlendAlphaUndershoot,
		AlphaDefault:    c.BlendAlphaDefault,
		ScaleUndershoot: c.BlendScaleUndershoot,
		ScaleDefault:    c.BlendScaleDefault,
		DecayUndershoot: c.BlendDecayUndershoot,
		DecayDefault:    c.BlendDecayDefault,
		BoundJitter:     c.BlendBoundJitter,
	}

	return cfg
}
