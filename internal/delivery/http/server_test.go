package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scoutscape/internal/config"
	deliveryhttp "github.com/scoutscape/internal/delivery/http"
	"github.com/scoutscape/internal/delivery/http/handler"
	"github.com/scoutscape/internal/domain"
	"github.com/scoutscape/internal/facility"
	"github.com/scoutscape/internal/pkg/validator"
	"github.com/scoutscape/internal/usecase"
)

type mockFeatureRepository struct{ mock.Mock }

func (m *mockFeatureRepository) FetchFeatures(ctx context.Context) ([]domain.RawFeature, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RawFeature), args.Error(1)
}

type mockCacheRepository struct{ mock.Mock }

func (m *mockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *mockCacheRepository) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *mockCacheRepository) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	args := m.Called(ctx, key, dest)
	return args.Bool(0), args.Error(1)
}

func (m *mockCacheRepository) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

type mockWeatherRepository struct{ mock.Mock }

func (m *mockWeatherRepository) Current(ctx context.Context, point domain.Point) (*domain.Weather, error) {
	args := m.Called(ctx, point)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Weather), args.Error(1)
}

type mockTrafficRepository struct{ mock.Mock }

func (m *mockTrafficRepository) Configured() bool {
	return m.Called().Bool(0)
}

func (m *mockTrafficRepository) FlowSegment(ctx context.Context, point domain.Point, at time.Time) (*domain.TrafficFlow, error) {
	args := m.Called(ctx, point, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrafficFlow), args.Error(1)
}

type mockGeocodingRepository struct{ mock.Mock }

func (m *mockGeocodingRepository) Search(ctx context.Context, query string) (*domain.GeocodeResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GeocodeResult), args.Error(1)
}

func (m *mockGeocodingRepository) Reverse(ctx context.Context, point domain.Point) (string, error) {
	args := m.Called(ctx, point)
	return args.String(0), args.Error(1)
}

type mockAnalysisRepository struct{ mock.Mock }

func (m *mockAnalysisRepository) Save(ctx context.Context, result *domain.AnalysisResult) error {
	return m.Called(ctx, result).Error(0)
}

func (m *mockAnalysisRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.AnalysisResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisResult), args.Error(1)
}

func (m *mockAnalysisRepository) List(ctx context.Context, limit int) ([]*domain.AnalysisResult, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AnalysisResult), args.Error(1)
}

type mockStreamRepository struct{ mock.Mock }

func (m *mockStreamRepository) ConsumeStream(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan domain.StreamMessage), args.Error(1)
}

func (m *mockStreamRepository) AckMessage(ctx context.Context, stream, group, messageID string) error {
	return m.Called(ctx, stream, group, messageID).Error(0)
}

func (m *mockStreamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	return m.Called(ctx, stream, group).Error(0)
}

func (m *mockStreamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	return m.Called(ctx, stream, data).Error(0)
}

// envelope повторяет utils.SuccessResponse / utils.ErrorResponse
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testServer struct {
	server    *deliveryhttp.Server
	geocoding *mockGeocodingRepository
	analyses  *mockAnalysisRepository
}

var downtown = domain.Point{Lat: 49.2827, Lon: -123.1207}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()

	box, err := domain.NewBoundingBox(49.198, -123.27, 49.315, -123.02)
	require.NoError(t, err)

	features := &mockFeatureRepository{}
	features.On("FetchFeatures", mock.Anything).Return([]domain.RawFeature{
		{
			ID:    "node/1",
			Kind:  domain.FeatureKindPoint,
			Tags:  map[string]string{"amenity": "hospital", "name": "St. Paul's"},
			Coord: &domain.Point{Lat: downtown.Lat + 0.0009, Lon: downtown.Lon},
		},
		{
			ID:    "node/2",
			Kind:  domain.FeatureKindPoint,
			Tags:  map[string]string{"amenity": "bench"},
			Coord: &domain.Point{Lat: downtown.Lat, Lon: downtown.Lon + 0.0005},
		},
	}, nil)

	cacheRepo := &mockCacheRepository{}
	cacheRepo.On("GetJSON", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	cacheRepo.On("SetJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	cacheRepo.On("Get", mock.Anything, mock.Anything).Return(nil, nil)
	cacheRepo.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	weather := &mockWeatherRepository{}
	weather.On("Current", mock.Anything, mock.Anything).Return(&domain.Weather{
		Temperature:  11.5,
		WindCardinal: "SW",
		Condition:    "Light rain",
	}, nil)

	traffic := &mockTrafficRepository{}
	traffic.On("Configured").Return(false)

	geocoding := &mockGeocodingRepository{}

	analyses := &mockAnalysisRepository{}
	analyses.On("Save", mock.Anything, mock.Anything).Return(nil)

	streams := &mockStreamRepository{}
	streams.On("PublishToStream", mock.Anything, domain.StreamAnalysisDone, mock.Anything).Return(nil)

	catalog := domain.DefaultCategoryCatalog()
	validator.UseCatalog(catalog)
	aggregator := facility.NewAggregator(catalog, facility.NewDefaultClassifier())
	scoutingUC := usecase.NewScoutingUseCase(features, aggregator, usecase.ScoutingSettings{
		Box:           box,
		DefaultRadius: 250,
		MinRadius:     50,
		MaxRadius:     1500,
		TopN:          20,
	}, logger)
	_, err = scoutingUC.LoadFeatures(context.Background())
	require.NoError(t, err)

	conditionsUC := usecase.NewConditionsUseCase(weather, traffic, cacheRepo, logger, time.Minute, time.Minute, time.UTC)
	geocodeUC := usecase.NewGeocodeUseCase(geocoding, cacheRepo, box, logger, time.Hour)
	analysisUC := usecase.NewAnalysisUseCase(scoutingUC, analyses, streams, "", logger)
	sessionUC := usecase.NewSessionUseCase(scoutingUC, conditionsUC, analysisUC, logger, time.Hour)

	server := deliveryhttp.NewServer(
		&config.Config{},
		logger,
		handler.NewScoutingHandler(scoutingUC, logger, time.Minute),
		handler.NewSessionHandler(sessionUC, logger),
		handler.NewGeocodeHandler(geocodeUC, logger),
		handler.NewAnalysisHandler(analysisUC, logger),
	)

	return &testServer{server: server, geocoding: geocoding, analyses: analyses}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := ts.server.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func TestServer_Health(t *testing.T) {
	ts := setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	resp, err := ts.server.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_Metrics(t *testing.T) {
	ts := setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := ts.server.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "scout_")
}

func TestServer_Categories(t *testing.T) {
	ts := setupServer(t)

	status, env := ts.do(t, http.MethodGet, "/api/v1/categories", nil)
	require.Equal(t, http.StatusOK, status)

	var body struct {
		Categories []struct {
			Key string `json:"key"`
		} `json:"categories"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, 8, body.Total)
	assert.Equal(t, "hospitals", body.Categories[0].Key)
}

func TestServer_FeatureStatus(t *testing.T) {
	ts := setupServer(t)

	status, env := ts.do(t, http.MethodGet, "/api/v1/features/status", nil)
	require.Equal(t, http.StatusOK, status)

	var body struct {
		Loaded  bool `json:"loaded"`
		Total   int  `json:"total"`
		Tracked int  `json:"tracked"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.True(t, body.Loaded)
	assert.Equal(t, 2, body.Total)
	assert.Equal(t, 1, body.Tracked)
}

func TestServer_Nearby(t *testing.T) {
	ts := setupServer(t)

	t.Run("counts hospital in radius", func(t *testing.T) {
		status, env := ts.do(t, http.MethodPost, "/api/v1/facilities/nearby", map[string]interface{}{
			"lat":    downtown.Lat,
			"lon":    downtown.Lon,
			"radius": 250,
		})
		require.Equal(t, http.StatusOK, status)

		var body struct {
			Total      int            `json:"total"`
			Counts     map[string]int `json:"counts"`
			Facilities []struct {
				Name    string `json:"name"`
				Address string `json:"address"`
			} `json:"facilities"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &body))
		assert.Equal(t, 1, body.Total)
		assert.Equal(t, 1, body.Counts["hospitals"])
		require.Len(t, body.Facilities, 1)
		assert.Equal(t, "St. Paul's", body.Facilities[0].Name)
		assert.Equal(t, "Address not available", body.Facilities[0].Address)
	})

	t.Run("point outside boundary", func(t *testing.T) {
		status, env := ts.do(t, http.MethodPost, "/api/v1/facilities/nearby", map[string]interface{}{
			"lat": 49.25,
			"lon": -122.9,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, status)
		require.NotNil(t, env.Error)
		assert.Equal(t, "OUTSIDE_BOUNDARY", env.Error.Code)
	})

	t.Run("unknown layer", func(t *testing.T) {
		status, env := ts.do(t, http.MethodPost, "/api/v1/facilities/nearby", map[string]interface{}{
			"lat":    downtown.Lat,
			"lon":    downtown.Lon,
			"layers": map[string]bool{"bakeries": false},
		})
		assert.Equal(t, http.StatusBadRequest, status)
		require.NotNil(t, env.Error)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/facilities/nearby", bytes.NewReader([]byte("{")))
		req.Header.Set("Content-Type", "application/json")
		resp, err := ts.server.App().Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestServer_SessionFlow(t *testing.T) {
	ts := setupServer(t)

	status, env := ts.do(t, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, status)

	var session struct {
		ID     uuid.UUID `json:"id"`
		Radius int       `json:"radius"`
		Time   struct {
			Invalid bool   `json:"invalid"`
			Summary string `json:"summary"`
		} `json:"time"`
		Generation uint64 `json:"generation"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &session))
	assert.Equal(t, 250, session.Radius)
	base := "/api/v1/sessions/" + session.ID.String()

	// анализ без точки
	status, env = ts.do(t, http.MethodPost, base+"/analyze", nil)
	assert.Equal(t, http.StatusConflict, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NO_POINT_SELECTED", env.Error.Code)

	status, env = ts.do(t, http.MethodPut, base+"/point", map[string]float64{"lat": downtown.Lat, "lon": downtown.Lon})
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &session))
	assert.Equal(t, uint64(1), session.Generation)

	status, env = ts.do(t, http.MethodPut, base+"/time", map[string]string{"hour": "13", "minute": "00", "period": "PM"})
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &session))
	assert.True(t, session.Time.Invalid)

	status, env = ts.do(t, http.MethodPost, base+"/analyze", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_TIME", env.Error.Code)

	status, env = ts.do(t, http.MethodPut, base+"/time", map[string]string{"hour": "7", "minute": "30", "period": "PM"})
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &session))
	assert.False(t, session.Time.Invalid)
	assert.Equal(t, "7:30 PM", session.Time.Summary)

	status, env = ts.do(t, http.MethodGet, base+"/facilities?top=5", nil)
	require.Equal(t, http.StatusOK, status)
	var nearby struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &nearby))
	assert.Equal(t, 1, nearby.Total)

	status, env = ts.do(t, http.MethodPut, base+"/layers/hospitals", map[string]bool{"visible": false})
	require.Equal(t, http.StatusOK, status)

	status, env = ts.do(t, http.MethodGet, base+"/conditions", nil)
	require.Equal(t, http.StatusOK, status)
	var conditions struct {
		Weather struct {
			Condition string `json:"condition"`
		} `json:"weather"`
		Traffic struct {
			Status string `json:"status"`
		} `json:"traffic"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &conditions))
	assert.Equal(t, "Light rain", conditions.Weather.Condition)
	assert.Equal(t, "not_configured", conditions.Traffic.Status)

	status, env = ts.do(t, http.MethodPost, base+"/analyze", nil)
	require.Equal(t, http.StatusCreated, status)
	var analysis struct {
		ID          uuid.UUID `json:"id"`
		Total       int       `json:"total"`
		TimeSummary string    `json:"time_summary"`
		Busiest     struct {
			Key string `json:"key"`
		} `json:"busiest"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &analysis))
	assert.Equal(t, 1, analysis.Total, "hidden layers still count")
	assert.Equal(t, "hospitals", analysis.Busiest.Key)
	assert.Equal(t, "7:30 PM", analysis.TimeSummary)

	ts.analyses.On("GetByID", mock.Anything, analysis.ID).Return(&domain.AnalysisResult{
		ID:    analysis.ID,
		Point: downtown,
		Total: 1,
	}, nil)

	status, env = ts.do(t, http.MethodGet, "/api/v1/analyses/"+analysis.ID.String(), nil)
	require.Equal(t, http.StatusOK, status)
	var stored struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stored))
	assert.Equal(t, analysis.ID, stored.ID)
}

func TestServer_SessionErrors(t *testing.T) {
	ts := setupServer(t)

	status, env := ts.do(t, http.MethodGet, "/api/v1/sessions/not-a-uuid", nil)
	assert.Equal(t, http.StatusNotFound, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "SESSION_NOT_FOUND", env.Error.Code)

	status, _ = ts.do(t, http.MethodGet, "/api/v1/sessions/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, env = ts.do(t, http.MethodPost, "/api/v1/sessions", map[string]int{"radius": 5000})
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_RADIUS", env.Error.Code)
}

func TestServer_Geocode(t *testing.T) {
	ts := setupServer(t)

	ts.geocoding.On("Search", mock.Anything, "Canada Place").Return(&domain.GeocodeResult{
		Lat:         49.2888,
		Lon:         -123.1111,
		DisplayName: "Canada Place, Vancouver",
	}, nil)
	ts.geocoding.On("Reverse", mock.Anything, downtown).Return("", nil)

	status, env := ts.do(t, http.MethodGet, "/api/v1/geocode/search?q=Canada%20Place", nil)
	require.Equal(t, http.StatusOK, status)
	var found struct {
		DisplayName string `json:"display_name"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &found))
	assert.Equal(t, "Canada Place, Vancouver", found.DisplayName)

	status, _ = ts.do(t, http.MethodGet, "/api/v1/geocode/search?q=%20%20", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = ts.do(t, http.MethodGet, "/api/v1/geocode/reverse?lat=49.2827&lon=-123.1207", nil)
	require.Equal(t, http.StatusOK, status)
	var reverse struct {
		Address string `json:"address"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &reverse))
	assert.Empty(t, reverse.Address)

	status, env = ts.do(t, http.MethodGet, "/api/v1/geocode/reverse?lat=abc&lon=-123.1", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_COORDINATES", env.Error.Code)
}

func TestServer_Duration(t *testing.T) {
	ts := setupServer(t)

	status, env := ts.do(t, http.MethodPost, "/api/v1/time/duration", map[string]string{"days": "2", "hours": "-3"})
	require.Equal(t, http.StatusOK, status)

	var body struct {
		Days       int `json:"days"`
		Hours      int `json:"hours"`
		TotalHours int `json:"total_hours"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, 2, body.Days)
	assert.Equal(t, 0, body.Hours)
	assert.Equal(t, 48, body.TotalHours)
}

func TestServer_ListAnalyses(t *testing.T) {
	ts := setupServer(t)

	ts.analyses.On("List", mock.Anything, 5).Return([]*domain.AnalysisResult{
		{ID: uuid.New(), Point: downtown, Total: 3},
	}, nil)

	status, env := ts.do(t, http.MethodGet, "/api/v1/analyses?limit=5", nil)
	require.Equal(t, http.StatusOK, status)
	var body struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, 1, body.Total)

	status, _ = ts.do(t, http.MethodGet, "/api/v1/analyses?limit=1000", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}
