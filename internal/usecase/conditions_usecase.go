package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/scoutscape/internal/domain"
	"github.com/scoutscape/internal/domain/repository"
	"github.com/scoutscape/internal/pkg/metrics"
	"github.com/scoutscape/internal/repository/cache"
	"github.com/scoutscape/internal/usecase/dto"
	"go.uber.org/zap"
)

// ConditionsUseCase - погода и дорожный поток в точке разведки
type ConditionsUseCase struct {
	weatherRepo repository.WeatherRepository
	trafficRepo repository.TrafficRepository
	cacheRepo   repository.CacheRepository
	logger      *zap.Logger
	weatherTTL  time.Duration
	trafficTTL  time.Duration
	location    *time.Location
	now         func() time.Time
}

// NewConditionsUseCase создает новый ConditionsUseCase.
// location - часовой пояс города: выбранное время трактуется как "сегодня" в этом поясе.
func NewConditionsUseCase(
	weatherRepo repository.WeatherRepository,
	trafficRepo repository.TrafficRepository,
	cacheRepo repository.CacheRepository,
	logger *zap.Logger,
	weatherTTL time.Duration,
	trafficTTL time.Duration,
	location *time.Location,
) *ConditionsUseCase {
	if location == nil {
		location = time.UTC
	}
	return &ConditionsUseCase{
		weatherRepo: weatherRepo,
		trafficRepo: trafficRepo,
		cacheRepo:   cacheRepo,
		logger:      logger,
		weatherTTL:  weatherTTL,
		trafficTTL:  trafficTTL,
		location:    location,
		now:         time.Now,
	}
}

// Weather возвращает текущую погоду, используя кеш когда возможно
func (uc *ConditionsUseCase) Weather(ctx context.Context, point domain.Point) (*domain.Weather, error) {
	key := cache.WeatherKey(point)

	var cached domain.Weather
	hit, err := uc.cacheRepo.GetJSON(ctx, key, &cached)
	switch {
	case err != nil:
		metrics.CacheLookupsTotal.WithLabelValues("weather", "error").Inc()
		uc.logger.Warn("Failed to get weather from cache", zap.Error(err))
	case hit:
		metrics.CacheLookupsTotal.WithLabelValues("weather", "hit").Inc()
		return &cached, nil
	default:
		metrics.CacheLookupsTotal.WithLabelValues("weather", "miss").Inc()
	}

	weather, err := uc.weatherRepo.Current(ctx, point)
	if err != nil {
		return nil, err
	}

	if err := uc.cacheRepo.SetJSON(ctx, key, weather, uc.weatherTTL); err != nil {
		uc.logger.Warn("Failed to cache weather", zap.Error(err))
	}

	return weather, nil
}

// Traffic возвращает поток на ближайшем сегменте в выбранное время.
// Ошибки провайдера не поднимаются наверх: они превращаются в статус unavailable.
func (uc *ConditionsUseCase) Traffic(ctx context.Context, point domain.Point, sel *domain.TimeSelection) dto.TrafficResponse {
	resp := dto.TrafficResponse{TimeSummary: domain.TimeSummary(sel)}

	if sel == nil {
		resp.Status = dto.TrafficStatusNoTime
		return resp
	}
	if !uc.trafficRepo.Configured() {
		resp.Status = dto.TrafficStatusNotConfigured
		return resp
	}

	at := sel.On(uc.now().In(uc.location))
	key := cache.TrafficKey(point, at)

	var flow *domain.TrafficFlow
	var cached domain.TrafficFlow
	hit, err := uc.cacheRepo.GetJSON(ctx, key, &cached)
	switch {
	case err != nil:
		metrics.CacheLookupsTotal.WithLabelValues("traffic", "error").Inc()
		uc.logger.Warn("Failed to get traffic from cache", zap.Error(err))
	case hit:
		metrics.CacheLookupsTotal.WithLabelValues("traffic", "hit").Inc()
		flow = &cached
	default:
		metrics.CacheLookupsTotal.WithLabelValues("traffic", "miss").Inc()
	}

	if flow == nil {
		flow, err = uc.trafficRepo.FlowSegment(ctx, point, at)
		if err != nil {
			uc.logger.Warn("Failed to fetch traffic flow",
				zap.Float64("lat", point.Lat),
				zap.Float64("lon", point.Lon),
				zap.Error(err))
			resp.Status = dto.TrafficStatusUnavailable
			return resp
		}
		if flow != nil {
			if err := uc.cacheRepo.SetJSON(ctx, key, flow, uc.trafficTTL); err != nil {
				uc.logger.Warn("Failed to cache traffic flow", zap.Error(err))
			}
		}
	}

	if flow == nil {
		resp.Status = dto.TrafficStatusNoData
		return resp
	}

	resp.Status = dto.TrafficStatusOK
	resp.Flow = flow
	resp.Level = flow.Level()
	resp.Delay = flow.DelayText()
	return resp
}

// Conditions запрашивает погоду и трафик параллельно.
// Погода, которую не удалось получить, возвращается как nil.
func (uc *ConditionsUseCase) Conditions(ctx context.Context, point domain.Point, sel *domain.TimeSelection) *dto.ConditionsResponse {
	resp := &dto.ConditionsResponse{Point: point}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		weather, err := uc.Weather(ctx, point)
		if err != nil {
			uc.logger.Warn("Failed to fetch weather",
				zap.Float64("lat", point.Lat),
				zap.Float64("lon", point.Lon),
				zap.Error(err))
			return
		}
		resp.Weather = weather
	}()

	go func() {
		defer wg.Done()
		resp.Traffic = uc.Traffic(ctx, point, sel)
	}()

	wg.Wait()
	return resp
}
