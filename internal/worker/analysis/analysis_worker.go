package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/scoutscape/internal/domain"
	"github.com/scoutscape/internal/domain/repository"
	"github.com/scoutscape/internal/worker"
	"go.uber.org/zap"
)

const workerName = "analysis-request"

// publishBackoff - пауза перед повторной публикацией, умножается на номер попытки
var publishBackoff = 200 * time.Millisecond

// Processor считает анализ по событию и публикует результат
type Processor interface {
	ProcessRequest(ctx context.Context, event *domain.AnalysisRequestEvent) *domain.AnalysisDoneEvent
	Publish(ctx context.Context, event *domain.AnalysisDoneEvent) error
}

// AnalysisWorker читает запросы анализа из стрима и отвечает в стрим готовых анализов
type AnalysisWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	processor    Processor
	consumerName string
	maxRetries   int
}

// NewAnalysisWorker создает новый AnalysisWorker. Пустой consumerName заменяется на hostname-pid.
func NewAnalysisWorker(
	streamRepo repository.StreamRepository,
	processor Processor,
	stream string,
	consumerGroup string,
	consumerName string,
	maxRetries int,
	logger *zap.Logger,
) *AnalysisWorker {
	if stream == "" {
		stream = domain.StreamAnalysisRequest
	}
	if consumerName == "" {
		hostname, _ := os.Hostname()
		consumerName = fmt.Sprintf("%s-%d", hostname, os.Getpid())
	}
	if maxRetries < 1 {
		maxRetries = 1
	}

	return &AnalysisWorker{
		BaseWorker:   worker.NewBaseWorker(workerName, stream, consumerGroup, logger),
		streamRepo:   streamRepo,
		processor:    processor,
		consumerName: consumerName,
		maxRetries:   maxRetries,
	}
}

// Start создаёт consumer group и обрабатывает сообщения до остановки
func (w *AnalysisWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting analysis worker",
		zap.String("stream", w.Stream()),
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName))

	if err := w.streamRepo.CreateConsumerGroup(ctx, w.Stream(), w.ConsumerGroup()); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	// отдельный ctx, чтобы Stop() останавливал и чтение из Redis
	consumeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	messages, err := w.streamRepo.ConsumeStream(consumeCtx, w.Stream(), w.ConsumerGroup(), w.consumerName)
	if err != nil {
		return fmt.Errorf("failed to consume stream: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		case msg, ok := <-messages:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return nil
			}
			w.handle(ctx, msg)
		}
	}
}

// handle обрабатывает одно сообщение. Битое сообщение подтверждается сразу;
// если ответ не удалось опубликовать, сообщение остаётся в PEL.
func (w *AnalysisWorker) handle(ctx context.Context, msg domain.StreamMessage) {
	logger := w.Logger().With(zap.String("message_id", msg.ID))

	event, err := parseMessage(msg)
	if err != nil {
		logger.Warn("Failed to parse message, skipping", zap.Error(err))
		w.ack(ctx, msg.ID)
		return
	}

	done := w.processor.ProcessRequest(ctx, event)

	if err := w.publish(ctx, done); err != nil {
		logger.Error("Failed to publish analysis result, leaving message pending",
			zap.String("request_id", event.RequestID.String()),
			zap.Error(err))
		return
	}

	w.ack(ctx, msg.ID)
	logger.Debug("Analysis request processed",
		zap.String("request_id", event.RequestID.String()),
		zap.Bool("failed", done.Error != ""))
}

func (w *AnalysisWorker) publish(ctx context.Context, done *domain.AnalysisDoneEvent) error {
	var err error
	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		if err = w.processor.Publish(ctx, done); err == nil {
			return nil
		}
		if attempt == w.maxRetries {
			break
		}

		select {
		case <-time.After(time.Duration(attempt) * publishBackoff):
		case <-ctx.Done():
			return ctx.Err()
		case <-w.StopChan():
			return err
		}
	}
	return err
}

func (w *AnalysisWorker) ack(ctx context.Context, id string) {
	if err := w.streamRepo.AckMessage(ctx, w.Stream(), w.ConsumerGroup(), id); err != nil {
		w.Logger().Error("Failed to ack message", zap.String("message_id", id), zap.Error(err))
	}
}

// parseMessage разбирает JSON-поле data в AnalysisRequestEvent
func parseMessage(msg domain.StreamMessage) (*domain.AnalysisRequestEvent, error) {
	var event domain.AnalysisRequestEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return &event, nil
}
