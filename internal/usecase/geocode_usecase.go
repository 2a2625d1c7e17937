package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/scoutscape/internal/domain"
	"github.com/scoutscape/internal/domain/repository"
	apperrors "github.com/scoutscape/internal/pkg/errors"
	"github.com/scoutscape/internal/pkg/metrics"
	"github.com/scoutscape/internal/pkg/utils"
	"github.com/scoutscape/internal/repository/cache"
	"github.com/scoutscape/internal/usecase/dto"
	"go.uber.org/zap"
)

// GeocodeUseCase - поиск адресов в пределах города
type GeocodeUseCase struct {
	geocodingRepo repository.GeocodingRepository
	cacheRepo     repository.CacheRepository
	box           domain.BoundingBox
	logger        *zap.Logger
	cacheTTL      time.Duration
}

// NewGeocodeUseCase создает новый GeocodeUseCase
func NewGeocodeUseCase(
	geocodingRepo repository.GeocodingRepository,
	cacheRepo repository.CacheRepository,
	box domain.BoundingBox,
	logger *zap.Logger,
	cacheTTL time.Duration,
) *GeocodeUseCase {
	return &GeocodeUseCase{
		geocodingRepo: geocodingRepo,
		cacheRepo:     cacheRepo,
		box:           box,
		logger:        logger,
		cacheTTL:      cacheTTL,
	}
}

// Search - прямой поиск; найденная точка вне границ города отклоняется
func (uc *GeocodeUseCase) Search(ctx context.Context, query string) (*dto.GeocodeResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.ErrInvalidRequest.WithMessage("Search query is empty")
	}

	key := cache.GeocodeSearchKey(query)

	var result domain.GeocodeResult
	hit, err := uc.cacheRepo.GetJSON(ctx, key, &result)
	if err != nil {
		metrics.CacheLookupsTotal.WithLabelValues("geocode", "error").Inc()
		uc.logger.Warn("Failed to get geocode result from cache", zap.Error(err))
	}

	if hit {
		metrics.CacheLookupsTotal.WithLabelValues("geocode", "hit").Inc()
	} else {
		if err == nil {
			metrics.CacheLookupsTotal.WithLabelValues("geocode", "miss").Inc()
		}

		found, err := uc.geocodingRepo.Search(ctx, query)
		if err != nil {
			uc.logger.Error("Failed to search address", zap.String("query", query), zap.Error(err))
			return nil, apperrors.ErrUpstreamUnavailable.WithDetails(map[string]interface{}{
				"provider": "nominatim",
			})
		}
		if found == nil {
			return nil, apperrors.ErrLocationNotFound
		}
		result = *found

		if err := uc.cacheRepo.SetJSON(ctx, key, result, uc.cacheTTL); err != nil {
			uc.logger.Warn("Failed to cache geocode result", zap.Error(err))
		}
	}

	if !uc.box.Contains(result.Point()) {
		uc.logger.Debug("Geocode result outside boundary",
			zap.String("query", query),
			zap.Float64("lat", result.Lat),
			zap.Float64("lon", result.Lon))
		return nil, apperrors.ErrOutsideBoundary
	}

	return &dto.GeocodeResponse{
		Lat:         result.Lat,
		Lon:         result.Lon,
		DisplayName: result.DisplayName,
	}, nil
}

// Reverse - обратное геокодирование. Ошибки провайдера не поднимаются: адрес просто пустой.
func (uc *GeocodeUseCase) Reverse(ctx context.Context, point domain.Point) (*dto.ReverseGeocodeResponse, error) {
	if !utils.ValidateCoordinates(point.Lat, point.Lon) {
		return nil, apperrors.ErrInvalidCoordinates
	}

	resp := &dto.ReverseGeocodeResponse{Lat: point.Lat, Lon: point.Lon}
	key := cache.GeocodeReverseKey(point)

	cached, err := uc.cacheRepo.Get(ctx, key)
	if err != nil {
		uc.logger.Warn("Failed to get address from cache", zap.Error(err))
	}
	if cached != nil {
		metrics.CacheLookupsTotal.WithLabelValues("reverse", "hit").Inc()
		resp.Address = string(cached)
		return resp, nil
	}
	metrics.CacheLookupsTotal.WithLabelValues("reverse", "miss").Inc()

	addr, err := uc.geocodingRepo.Reverse(ctx, point)
	if err != nil {
		uc.logger.Warn("Failed to reverse geocode",
			zap.Float64("lat", point.Lat),
			zap.Float64("lon", point.Lon),
			zap.Error(err))
		return resp, nil
	}

	if addr != "" {
		if err := uc.cacheRepo.Set(ctx, key, []byte(addr), uc.cacheTTL); err != nil {
			uc.logger.Warn("Failed to cache address", zap.Error(err))
		}
	}

	resp.Address = addr
	return resp, nil
}
