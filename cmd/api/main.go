package main

// @title Scoutscape API
// @version 1.0.0
// @description Разведка шумовых рисков вокруг точки в Ванкувере. Сервис загружает объекты OpenStreetMap, раскладывает их по категориям источников шума и считает их в радиусе вокруг выбранной точки.
// @description
// @description Основные возможности:
// @description - Сессии разведки: точка, радиус, время и видимость слоёв
// @description - Объекты в радиусе, отсортированные по расстоянию
// @description - Погода (Open-Meteo) и трафик (TomTom) в точке
// @description - Поиск адреса и обратное геокодирование (Nominatim)
// @description - Снимки анализа с журналом в PostgreSQL и публикацией в Redis Streams

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/scoutscape/docs"
	"github.com/scoutscape/internal/config"
	httpDelivery "github.com/scoutscape/internal/delivery/http"
	"github.com/scoutscape/internal/delivery/http/handler"
	"github.com/scoutscape/internal/domain"
	"github.com/scoutscape/internal/facility"
	"github.com/scoutscape/internal/infrastructure/nominatim"
	"github.com/scoutscape/internal/infrastructure/openmeteo"
	"github.com/scoutscape/internal/infrastructure/overpass"
	"github.com/scoutscape/internal/infrastructure/tomtom"
	"github.com/scoutscape/internal/pkg/logger"
	"github.com/scoutscape/internal/pkg/validator"
	"github.com/scoutscape/internal/repository/cache"
	"github.com/scoutscape/internal/repository/postgres"
	redisRepo "github.com/scoutscape/internal/repository/redis"
	"github.com/scoutscape/internal/usecase"
	"go.uber.org/zap"
)

const (
	featureRetryDelay = 30 * time.Second
	janitorInterval   = time.Minute
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.NewService(cfg.Log.Level, "api")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Scoutscape API")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("area", cfg.Overpass.AreaName),
		zap.Bool("traffic_configured", cfg.Traffic.APIKey != ""),
	)

	box, err := cfg.BoundingBox()
	if err != nil {
		log.Fatal("Invalid scouting boundary", zap.Error(err))
	}

	// 3. Connect to PostgreSQL (журнал анализов)
	db, err := postgres.New(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}

	// 4. Connect to Redis: кеш и стримы
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	streamsClient, err := cache.NewRedisStreams(&cfg.RedisStreams, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis Streams", zap.Error(err))
	}

	// 5. Health checks and schema
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Health(ctx); err != nil {
		log.Fatal("PostgreSQL health check failed", zap.Error(err))
	}
	if err := redisClient.Health(ctx); err != nil {
		log.Fatal("Redis health check failed", zap.Error(err))
	}
	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatal("Failed to prepare database schema", zap.Error(err))
	}

	log.Info("All connections healthy")

	// 6. Initialize Repositories and external clients
	cacheRepo := cache.NewCacheRepository(redisClient)
	analysisRepo := postgres.NewAnalysisRepository(db)
	streamRepo := redisRepo.NewStreamRepository(streamsClient, log,
		redisRepo.WithMaxLen(cfg.RedisStreams.MaxLen))

	featureRepo := overpass.NewOverpassClient(&cfg.Overpass, log)
	geocodingRepo := nominatim.NewNominatimClient(&cfg.Nominatim, box, log)
	weatherRepo := openmeteo.NewOpenMeteoClient(&cfg.Weather, log)
	trafficRepo := tomtom.NewTomTomClient(&cfg.Traffic, log)

	log.Info("Repositories initialized")

	// 7. Initialize Use Cases
	catalog := domain.DefaultCategoryCatalog()
	validator.UseCatalog(catalog)
	aggregator := facility.NewAggregator(catalog, facility.NewDefaultClassifier())

	scoutingUC := usecase.NewScoutingUseCase(featureRepo, aggregator, usecase.ScoutingSettings{
		Box:           box,
		DefaultRadius: cfg.Scouting.DefaultRadius,
		MinRadius:     cfg.Scouting.MinRadius,
		MaxRadius:     cfg.Scouting.MaxRadius,
		TopN:          cfg.Scouting.TopN,
	}, log)

	conditionsUC := usecase.NewConditionsUseCase(
		weatherRepo,
		trafficRepo,
		cacheRepo,
		log,
		cfg.Cache.WeatherCacheTTL,
		cfg.Cache.TrafficCacheTTL,
		cfg.Location(),
	)

	geocodeUC := usecase.NewGeocodeUseCase(
		geocodingRepo,
		cacheRepo,
		box,
		log,
		cfg.Cache.GeocodeCacheTTL,
	)

	analysisUC := usecase.NewAnalysisUseCase(
		scoutingUC,
		analysisRepo,
		streamRepo,
		cfg.RedisStreams.DoneStream,
		log,
	)

	sessionUC := usecase.NewSessionUseCase(
		scoutingUC,
		conditionsUC,
		analysisUC,
		log,
		cfg.Scouting.SessionTTL,
	)

	log.Info("Use cases initialized")

	// 8. Background jobs
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	if cfg.Overpass.LoadOnStart {
		go scoutingUC.KeepLoading(bgCtx, featureRetryDelay)
	}
	go sessionUC.RunJanitor(bgCtx, janitorInterval)

	// 9. Initialize HTTP Handlers
	scoutingHandler := handler.NewScoutingHandler(scoutingUC, log, cfg.Overpass.Timeout+30*time.Second)
	sessionHandler := handler.NewSessionHandler(sessionUC, log)
	geocodeHandler := handler.NewGeocodeHandler(geocodeUC, log)
	analysisHandler := handler.NewAnalysisHandler(analysisUC, log)

	log.Info("HTTP handlers initialized")

	// 10. Initialize HTTP Server
	server := httpDelivery.NewServer(
		cfg,
		log,
		scoutingHandler,
		sessionHandler,
		geocodeHandler,
		analysisHandler,
	)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 11. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")
	bgCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	if err := db.Close(); err != nil {
		log.Error("Failed to close PostgreSQL", zap.Error(err))
	}
	if err := streamsClient.Close(); err != nil {
		log.Error("Failed to close Redis Streams", zap.Error(err))
	}
	if err := redisClient.Close(); err != nil {
		log.Error("Failed to close Redis", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
