package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/scoutscape/internal/domain"
	"github.com/scoutscape/internal/domain/repository"
	"github.com/scoutscape/internal/facility"
	apperrors "github.com/scoutscape/internal/pkg/errors"
	"github.com/scoutscape/internal/pkg/metrics"
	"github.com/scoutscape/internal/pkg/utils"
	"github.com/scoutscape/internal/usecase/dto"
	"go.uber.org/zap"
)

// ScoutingSettings - границы города и ограничения радиуса
type ScoutingSettings struct {
	Box           domain.BoundingBox
	DefaultRadius int
	MinRadius     int
	MaxRadius     int
	TopN          int
}

// FeatureSnapshot - неизменяемый подготовленный набор объектов.
// Заменяется целиком: потребители видят либо старый, либо новый снимок.
type FeatureSnapshot struct {
	Index    *facility.FeatureIndex
	LoadedAt time.Time
}

// ScoutingUseCase - загрузка объектов и агрегация вокруг точки
type ScoutingUseCase struct {
	featureRepo repository.FeatureRepository
	aggregator  *facility.Aggregator
	settings    ScoutingSettings
	logger      *zap.Logger

	snapshot atomic.Pointer[FeatureSnapshot]
	loadMu   sync.Mutex
}

// NewScoutingUseCase создает новый ScoutingUseCase
func NewScoutingUseCase(
	featureRepo repository.FeatureRepository,
	aggregator *facility.Aggregator,
	settings ScoutingSettings,
	logger *zap.Logger,
) *ScoutingUseCase {
	return &ScoutingUseCase{
		featureRepo: featureRepo,
		aggregator:  aggregator,
		settings:    settings,
		logger:      logger,
	}
}

func (uc *ScoutingUseCase) Catalog() *domain.CategoryCatalog {
	return uc.aggregator.Catalog()
}

func (uc *ScoutingUseCase) Box() domain.BoundingBox {
	return uc.settings.Box
}

func (uc *ScoutingUseCase) DefaultRadius() int {
	return uc.settings.DefaultRadius
}

// LoadFeatures запрашивает объекты и атомарно заменяет снимок.
// При ошибке предыдущий снимок остаётся в силе.
func (uc *ScoutingUseCase) LoadFeatures(ctx context.Context) (*dto.FeatureStatusResponse, error) {
	uc.loadMu.Lock()
	defer uc.loadMu.Unlock()

	start := time.Now()
	features, err := uc.featureRepo.FetchFeatures(ctx)
	if err != nil {
		metrics.FeatureLoadsTotal.WithLabelValues("error").Inc()
		uc.logger.Error("Failed to load features", zap.Error(err))
		return nil, apperrors.ErrUpstreamUnavailable.WithDetails(map[string]interface{}{
			"provider": "overpass",
		})
	}

	idx := uc.aggregator.Prepare(features)
	uc.snapshot.Store(&FeatureSnapshot{Index: idx, LoadedAt: time.Now().UTC()})

	metrics.FeatureLoadsTotal.WithLabelValues("ok").Inc()
	metrics.FeaturesLoaded.Set(float64(idx.Total()))
	metrics.FeaturesTracked.Set(float64(idx.Tracked()))
	metrics.FeaturesSkipped.Set(float64(idx.Skipped()))

	uc.logger.Info("Feature snapshot loaded",
		zap.Int("total", idx.Total()),
		zap.Int("tracked", idx.Tracked()),
		zap.Int("skipped", idx.Skipped()),
		zap.Duration("took", time.Since(start)))

	return uc.Status(), nil
}

// KeepLoading повторяет загрузку до первого успеха или отмены контекста
func (uc *ScoutingUseCase) KeepLoading(ctx context.Context, retryDelay time.Duration) {
	for {
		if _, err := uc.LoadFeatures(ctx); err == nil {
			return
		}

		uc.logger.Warn("Feature load failed, retrying", zap.Duration("retry_in", retryDelay))
		select {
		case <-ctx.Done():
			return
		case <-time.After(retryDelay):
		}
	}
}

// Status возвращает сведения о текущем снимке
func (uc *ScoutingUseCase) Status() *dto.FeatureStatusResponse {
	status := &dto.FeatureStatusResponse{
		Categories: uc.Catalog().ZeroCounts(),
	}

	snap := uc.snapshot.Load()
	if snap == nil {
		return status
	}

	loadedAt := snap.LoadedAt
	status.Loaded = true
	status.LoadedAt = &loadedAt
	status.Total = snap.Index.Total()
	status.Tracked = snap.Index.Tracked()
	status.Skipped = snap.Index.Skipped()
	for _, key := range uc.Catalog().Keys() {
		status.Categories[key] = snap.Index.CategorySize(key)
	}
	return status
}

// HasFeatures сообщает, загружен ли снимок
func (uc *ScoutingUseCase) HasFeatures() bool {
	return uc.snapshot.Load() != nil
}

// CheckPoint отклоняет некорректные точки и точки вне границ города, не сдвигая их
func (uc *ScoutingUseCase) CheckPoint(p domain.Point) error {
	if !utils.ValidateCoordinates(p.Lat, p.Lon) {
		return apperrors.ErrInvalidCoordinates
	}
	if !uc.settings.Box.Contains(p) {
		return apperrors.ErrOutsideBoundary
	}
	return nil
}

// NormalizeRadius подставляет радиус по умолчанию вместо 0 и проверяет диапазон
func (uc *ScoutingUseCase) NormalizeRadius(radius int) (int, error) {
	if radius == 0 {
		return uc.settings.DefaultRadius, nil
	}
	if !utils.ValidateRadius(radius, uc.settings.MinRadius, uc.settings.MaxRadius) {
		return 0, apperrors.ErrInvalidRadius.WithDetails(map[string]interface{}{
			"min": uc.settings.MinRadius,
			"max": uc.settings.MaxRadius,
		})
	}
	return radius, nil
}

// Aggregate агрегирует объекты текущего снимка. Без снимка или без точки результат нулевой.
func (uc *ScoutingUseCase) Aggregate(point *domain.Point, radius int, visibility domain.Visibility) (domain.Aggregation, error) {
	if point != nil {
		if err := uc.CheckPoint(*point); err != nil {
			return domain.Aggregation{}, err
		}
	}

	var idx *facility.FeatureIndex
	if snap := uc.snapshot.Load(); snap != nil {
		idx = snap.Index
	}

	start := time.Now()
	agg, err := uc.aggregator.Aggregate(idx, point, radius, visibility)
	if err != nil {
		if errors.Is(err, facility.ErrNegativeRadius) {
			return domain.Aggregation{}, apperrors.ErrInvalidRadius
		}
		return domain.Aggregation{}, err
	}
	metrics.AggregationDurationMs.Observe(metrics.Since(start))

	return agg, nil
}

// Nearby - агрегация без сессии
func (uc *ScoutingUseCase) Nearby(ctx context.Context, req dto.NearbyRequest) (*dto.NearbyResponse, error) {
	point := domain.Point{Lat: req.Lat, Lon: req.Lon}

	radius, err := uc.NormalizeRadius(req.Radius)
	if err != nil {
		return nil, err
	}

	visibility := make(domain.Visibility, len(req.Layers))
	for k, v := range req.Layers {
		key := domain.Category(k)
		if !uc.Catalog().Contains(key) {
			return nil, apperrors.ErrInvalidCategory
		}
		visibility[key] = v
	}

	agg, err := uc.Aggregate(&point, radius, visibility)
	if err != nil {
		return nil, err
	}

	if !uc.HasFeatures() {
		uc.logger.Debug("Nearby requested before features were loaded")
	}

	top := req.Top
	if top == 0 {
		top = uc.settings.TopN
	}

	return uc.BuildNearby(&point, radius, agg, top), nil
}

// BuildNearby собирает ответ агрегации; top <= 0 - весь список
func (uc *ScoutingUseCase) BuildNearby(point *domain.Point, radius int, agg domain.Aggregation, top int) *dto.NearbyResponse {
	return &dto.NearbyResponse{
		Point:      point,
		Radius:     radius,
		Total:      agg.Total(),
		Counts:     agg.Counts,
		Facilities: dto.NewFacilityResponses(agg.Facilities),
		Top:        dto.NewFacilityResponses(facility.Top(agg.Facilities, top)),
		Busiest:    facility.Busiest(agg.Counts, uc.Catalog()),
	}
}
