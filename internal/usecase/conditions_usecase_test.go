package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scoutscape/internal/domain"
	"github.com/scoutscape/internal/usecase"
	"github.com/scoutscape/internal/usecase/dto"
)

var pacific = time.FixedZone("PST", -8*60*60)

func newConditionsUseCase(weather *MockWeatherRepository, traffic *MockTrafficRepository, cache *MockCacheRepository) *usecase.ConditionsUseCase {
	return usecase.NewConditionsUseCase(weather, traffic, cache, zap.NewNop(), 10*time.Minute, 5*time.Minute, pacific)
}

func TestConditionsUseCase_Weather(t *testing.T) {
	ctx := context.Background()

	t.Run("cache miss fetches and stores", func(t *testing.T) {
		weather := &MockWeatherRepository{}
		cache := newMissingCache()
		expected := &domain.Weather{Temperature: 12, Condition: "Overcast", WindCardinal: "SW"}
		weather.On("Current", ctx, downtown).Return(expected, nil).Once()

		uc := newConditionsUseCase(weather, &MockTrafficRepository{}, cache)

		got, err := uc.Weather(ctx, downtown)
		require.NoError(t, err)
		assert.Equal(t, expected, got)
		cache.AssertCalled(t, "SetJSON", ctx, "scout:weather:49.2827:-123.1207", expected, 10*time.Minute)
		weather.AssertExpectations(t)
	})

	t.Run("cache hit skips provider", func(t *testing.T) {
		weather := &MockWeatherRepository{}
		cache := &MockCacheRepository{}
		cache.On("GetJSON", ctx, "scout:weather:49.2827:-123.1207", mock.Anything).
			Run(func(args mock.Arguments) {
				w := args.Get(2).(*domain.Weather)
				*w = domain.Weather{Temperature: 7.5, Condition: "Fog"}
			}).
			Return(true, nil)

		uc := newConditionsUseCase(weather, &MockTrafficRepository{}, cache)

		got, err := uc.Weather(ctx, downtown)
		require.NoError(t, err)
		assert.Equal(t, 7.5, got.Temperature)
		weather.AssertNotCalled(t, "Current", mock.Anything, mock.Anything)
	})

	t.Run("provider error", func(t *testing.T) {
		weather := &MockWeatherRepository{}
		weather.On("Current", ctx, downtown).Return(nil, errors.New("timeout"))

		uc := newConditionsUseCase(weather, &MockTrafficRepository{}, newMissingCache())

		_, err := uc.Weather(ctx, downtown)
		assert.Error(t, err)
	})
}

func TestConditionsUseCase_Traffic(t *testing.T) {
	ctx := context.Background()
	sel := &domain.TimeSelection{Hour12: 7, Hour24: 19, Minute: 30, Period: domain.PeriodPM}
	atSelectedTime := mock.MatchedBy(func(at time.Time) bool {
		at = at.In(pacific)
		return at.Hour() == 19 && at.Minute() == 30
	})

	t.Run("no time selected", func(t *testing.T) {
		traffic := &MockTrafficRepository{}
		uc := newConditionsUseCase(&MockWeatherRepository{}, traffic, newMissingCache())

		resp := uc.Traffic(ctx, downtown, nil)
		assert.Equal(t, dto.TrafficStatusNoTime, resp.Status)
		assert.Equal(t, "Not specified", resp.TimeSummary)
		traffic.AssertNotCalled(t, "FlowSegment", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not configured", func(t *testing.T) {
		traffic := &MockTrafficRepository{}
		traffic.On("Configured").Return(false)
		uc := newConditionsUseCase(&MockWeatherRepository{}, traffic, newMissingCache())

		resp := uc.Traffic(ctx, downtown, sel)
		assert.Equal(t, dto.TrafficStatusNotConfigured, resp.Status)
		assert.Equal(t, "7:30 PM", resp.TimeSummary)
	})

	t.Run("flow found", func(t *testing.T) {
		traffic := &MockTrafficRepository{}
		traffic.On("Configured").Return(true)
		traffic.On("FlowSegment", ctx, downtown, atSelectedTime).Return(&domain.TrafficFlow{
			CurrentSpeed:       30,
			FreeFlowSpeed:      50,
			CurrentTravelTime:  200,
			FreeFlowTravelTime: 80,
		}, nil)
		cache := newMissingCache()
		uc := newConditionsUseCase(&MockWeatherRepository{}, traffic, cache)

		resp := uc.Traffic(ctx, downtown, sel)
		assert.Equal(t, dto.TrafficStatusOK, resp.Status)
		assert.Equal(t, domain.TrafficLevelModerate, resp.Level)
		assert.Equal(t, "2.0 min", resp.Delay)
		cache.AssertCalled(t, "SetJSON", ctx, mock.Anything, mock.Anything, 5*time.Minute)
		traffic.AssertExpectations(t)
	})

	t.Run("no segment", func(t *testing.T) {
		traffic := &MockTrafficRepository{}
		traffic.On("Configured").Return(true)
		traffic.On("FlowSegment", ctx, downtown, mock.Anything).Return(nil, nil)
		cache := newMissingCache()
		uc := newConditionsUseCase(&MockWeatherRepository{}, traffic, cache)

		resp := uc.Traffic(ctx, downtown, sel)
		assert.Equal(t, dto.TrafficStatusNoData, resp.Status)
		assert.Nil(t, resp.Flow)
		cache.AssertNotCalled(t, "SetJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("provider error", func(t *testing.T) {
		traffic := &MockTrafficRepository{}
		traffic.On("Configured").Return(true)
		traffic.On("FlowSegment", ctx, downtown, mock.Anything).Return(nil, errors.New("status 403"))
		uc := newConditionsUseCase(&MockWeatherRepository{}, traffic, newMissingCache())

		resp := uc.Traffic(ctx, downtown, sel)
		assert.Equal(t, dto.TrafficStatusUnavailable, resp.Status)
	})
}

func TestConditionsUseCase_Conditions(t *testing.T) {
	ctx := context.Background()

	weather := &MockWeatherRepository{}
	weather.On("Current", ctx, downtown).Return(nil, errors.New("unavailable"))
	traffic := &MockTrafficRepository{}

	uc := newConditionsUseCase(weather, traffic, newMissingCache())

	resp := uc.Conditions(ctx, downtown, nil)
	assert.Equal(t, downtown, resp.Point)
	assert.Nil(t, resp.Weather)
	assert.Equal(t, dto.TrafficStatusNoTime, resp.Traffic.Status)
}
