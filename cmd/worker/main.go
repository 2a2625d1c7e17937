package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scoutscape/internal/config"
	"github.com/scoutscape/internal/domain"
	"github.com/scoutscape/internal/facility"
	"github.com/scoutscape/internal/infrastructure/overpass"
	"github.com/scoutscape/internal/pkg/logger"
	"github.com/scoutscape/internal/repository/cache"
	"github.com/scoutscape/internal/repository/postgres"
	redisRepo "github.com/scoutscape/internal/repository/redis"
	"github.com/scoutscape/internal/usecase"
	"github.com/scoutscape/internal/worker"
	"github.com/scoutscape/internal/worker/analysis"
	"go.uber.org/zap"
)

const featureRetryDelay = 30 * time.Second

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.NewService(cfg.Log.Level, "worker")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Scoutscape analysis worker")
	log.Info("Configuration loaded",
		zap.String("request_stream", cfg.RedisStreams.RequestStream),
		zap.String("done_stream", cfg.RedisStreams.DoneStream),
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.Int("max_retries", cfg.Worker.MaxRetries))

	box, err := cfg.BoundingBox()
	if err != nil {
		log.Fatal("Invalid scouting boundary", zap.Error(err))
	}

	// 3. Connect to PostgreSQL
	db, err := postgres.New(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close PostgreSQL connection", zap.Error(err))
		}
	}()

	// 4. Connect to Redis Streams
	streamsClient, err := cache.NewRedisStreams(&cfg.RedisStreams, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis Streams", zap.Error(err))
	}
	defer func() {
		if err := streamsClient.Close(); err != nil {
			log.Error("Failed to close Redis Streams connection", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatal("Failed to prepare database schema", zap.Error(err))
	}

	// 5. Initialize repositories
	analysisRepo := postgres.NewAnalysisRepository(db)
	streamRepo := redisRepo.NewStreamRepository(streamsClient, log,
		redisRepo.WithMaxLen(cfg.RedisStreams.MaxLen),
		redisRepo.WithBatch(cfg.Worker.BatchSize, cfg.Worker.StreamReadTimeout))
	featureRepo := overpass.NewOverpassClient(&cfg.Overpass, log)

	// 6. Initialize use cases
	aggregator := facility.NewAggregator(domain.DefaultCategoryCatalog(), facility.NewDefaultClassifier())
	scoutingUC := usecase.NewScoutingUseCase(featureRepo, aggregator, usecase.ScoutingSettings{
		Box:           box,
		DefaultRadius: cfg.Scouting.DefaultRadius,
		MinRadius:     cfg.Scouting.MinRadius,
		MaxRadius:     cfg.Scouting.MaxRadius,
		TopN:          cfg.Scouting.TopN,
	}, log)
	analysisUC := usecase.NewAnalysisUseCase(scoutingUC, analysisRepo, streamRepo, cfg.RedisStreams.DoneStream, log)

	// запросы читаем только после первой загрузки объектов
	go scoutingUC.KeepLoading(ctx, featureRetryDelay)

	// 7. Initialize workers
	analysisWorker := analysis.NewAnalysisWorker(
		streamRepo,
		analysisUC,
		cfg.RedisStreams.RequestStream,
		cfg.Worker.ConsumerGroup,
		cfg.Worker.ConsumerName,
		cfg.Worker.MaxRetries,
		log,
	)

	workerManager := worker.NewWorkerManager(log, 30*time.Second)
	workerManager.Register(analysisWorker)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if !waitForFeatures(ctx, scoutingUC, sigChan, log) {
		log.Info("Worker shutdown before features were loaded")
		return
	}

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	<-sigChan
	log.Info("Received shutdown signal")

	cancel()

	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}

	log.Info("Worker shutdown complete")
}

// waitForFeatures блокируется до первой успешной загрузки объектов; false - получен сигнал остановки
func waitForFeatures(ctx context.Context, uc *usecase.ScoutingUseCase, sig <-chan os.Signal, log *zap.Logger) bool {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for !uc.HasFeatures() {
		select {
		case <-sig:
			return false
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}

	log.Info("Features loaded, consuming analysis requests")
	return true
}
