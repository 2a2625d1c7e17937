package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/scoutscape/internal/domain"
	"github.com/scoutscape/internal/domain/repository"
	"github.com/scoutscape/internal/facility"
	apperrors "github.com/scoutscape/internal/pkg/errors"
	"github.com/scoutscape/internal/pkg/metrics"
	"github.com/scoutscape/internal/pkg/timeinput"
	"github.com/scoutscape/internal/usecase/dto"
	"go.uber.org/zap"
)

// Источники запросов анализа для метрик
const (
	AnalysisSourceAPI    = "api"
	AnalysisSourceStream = "stream"
)

// AnalysisUseCase - снимки анализа: расчёт, журнал аудита и передача потребителям отчётов
type AnalysisUseCase struct {
	scoutingUC   *ScoutingUseCase
	analysisRepo repository.AnalysisRepository
	streamRepo   repository.StreamRepository
	doneStream   string
	logger       *zap.Logger
	now          func() time.Time
}

// NewAnalysisUseCase создает новый AnalysisUseCase
func NewAnalysisUseCase(
	scoutingUC *ScoutingUseCase,
	analysisRepo repository.AnalysisRepository,
	streamRepo repository.StreamRepository,
	doneStream string,
	logger *zap.Logger,
) *AnalysisUseCase {
	if doneStream == "" {
		doneStream = domain.StreamAnalysisDone
	}
	return &AnalysisUseCase{
		scoutingUC:   scoutingUC,
		analysisRepo: analysisRepo,
		streamRepo:   streamRepo,
		doneStream:   doneStream,
		logger:       logger,
		now:          time.Now,
	}
}

// Analyze строит снимок, сохраняет его и публикует в стрим готовых анализов
func (uc *AnalysisUseCase) Analyze(ctx context.Context, point domain.Point, radius int, sel *domain.TimeSelection) (*domain.AnalysisResult, error) {
	result, err := uc.Compose(point, radius, sel)
	if err != nil {
		return nil, err
	}
	uc.Commit(ctx, result)
	return result, nil
}

// Compose только строит снимок: ничего не сохраняется и не публикуется.
// Вызывающий решает, актуален ли результат, и затем передаёт его в Commit.
func (uc *AnalysisUseCase) Compose(point domain.Point, radius int, sel *domain.TimeSelection) (*domain.AnalysisResult, error) {
	result, err := uc.compose(point, radius, sel)
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues(AnalysisSourceAPI, "error").Inc()
		return nil, err
	}
	return result, nil
}

// Commit сохраняет принятый снимок в журнал аудита и публикует его потребителям отчётов
func (uc *AnalysisUseCase) Commit(ctx context.Context, result *domain.AnalysisResult) {
	metrics.AnalysesTotal.WithLabelValues(AnalysisSourceAPI, "ok").Inc()
	uc.save(ctx, result)
	uc.publish(ctx, &domain.AnalysisDoneEvent{
		RequestID:   result.ID,
		Result:      result,
		TimeSummary: result.TimeSummary(),
	})
}

// ProcessRequest обрабатывает событие из стрима запросов.
// Ошибки валидации не прерывают обработку: они возвращаются в поле Error события.
func (uc *AnalysisUseCase) ProcessRequest(ctx context.Context, event *domain.AnalysisRequestEvent) *domain.AnalysisDoneEvent {
	done := &domain.AnalysisDoneEvent{RequestID: event.RequestID}

	sel, err := timeinput.Resolve(event.Hour, event.Minute, event.Period)
	if err == nil {
		var result *domain.AnalysisResult
		result, err = uc.compose(domain.Point{Lat: event.Lat, Lon: event.Lon}, event.RadiusM, sel)
		if err == nil {
			uc.save(ctx, result)
			done.Result = result
			done.TimeSummary = result.TimeSummary()
		}
	}

	if err != nil {
		metrics.AnalysesTotal.WithLabelValues(AnalysisSourceStream, "error").Inc()
		uc.logger.Warn("Analysis request rejected",
			zap.String("request_id", event.RequestID.String()),
			zap.Error(err))
		done.Error = errorMessage(err)
		return done
	}

	metrics.AnalysesTotal.WithLabelValues(AnalysisSourceStream, "ok").Inc()
	return done
}

// Publish отправляет событие в стрим готовых анализов
func (uc *AnalysisUseCase) Publish(ctx context.Context, event *domain.AnalysisDoneEvent) error {
	if err := uc.streamRepo.PublishToStream(ctx, uc.doneStream, event); err != nil {
		return fmt.Errorf("publish analysis done event: %w", err)
	}
	return nil
}

// Get возвращает сохранённый снимок
func (uc *AnalysisUseCase) Get(ctx context.Context, id uuid.UUID) (*dto.AnalysisResponse, error) {
	result, err := uc.analysisRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrAnalysisNotFound) {
			return nil, err
		}
		uc.logger.Error("Failed to get analysis", zap.String("id", id.String()), zap.Error(err))
		return nil, apperrors.ErrDatabaseError
	}
	return dto.NewAnalysisResponse(result), nil
}

// List возвращает последние снимки
func (uc *AnalysisUseCase) List(ctx context.Context, limit int) (*dto.AnalysisListResponse, error) {
	if limit <= 0 {
		limit = 20
	}

	results, err := uc.analysisRepo.List(ctx, limit)
	if err != nil {
		uc.logger.Error("Failed to list analyses", zap.Error(err))
		return nil, apperrors.ErrDatabaseError
	}

	items := make([]dto.AnalysisResponse, 0, len(results))
	for _, r := range results {
		items = append(items, *dto.NewAnalysisResponse(r))
	}

	return &dto.AnalysisListResponse{Analyses: items, Total: len(items)}, nil
}

func (uc *AnalysisUseCase) compose(point domain.Point, radius int, sel *domain.TimeSelection) (*domain.AnalysisResult, error) {
	if err := uc.scoutingUC.CheckPoint(point); err != nil {
		return nil, err
	}

	radius, err := uc.scoutingUC.NormalizeRadius(radius)
	if err != nil {
		return nil, err
	}

	// нулевой снимок без данных вводил бы в заблуждение
	if !uc.scoutingUC.HasFeatures() {
		return nil, apperrors.ErrNoFeatureData
	}

	agg, err := uc.scoutingUC.Aggregate(&point, radius, nil)
	if err != nil {
		return nil, err
	}

	result := facility.Compose(agg, uc.scoutingUC.Catalog(), point, radius, sel, uc.now())
	return &result, nil
}

func (uc *AnalysisUseCase) save(ctx context.Context, result *domain.AnalysisResult) {
	// журнал аудита не обязателен для ответа
	if err := uc.analysisRepo.Save(ctx, result); err != nil {
		uc.logger.Warn("Failed to save analysis",
			zap.String("id", result.ID.String()),
			zap.Error(err))
	}

	uc.logger.Info("Analysis completed",
		zap.String("id", result.ID.String()),
		zap.Int("total", result.Total),
		zap.Int("radius", result.Radius),
		zap.String("time", result.TimeSummary()))
}

func (uc *AnalysisUseCase) publish(ctx context.Context, event *domain.AnalysisDoneEvent) {
	if err := uc.Publish(ctx, event); err != nil {
		uc.logger.Warn("Failed to publish analysis",
			zap.String("request_id", event.RequestID.String()),
			zap.Error(err))
	}
}

func errorMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
