package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/scoutscape/internal/config"
	"github.com/scoutscape/internal/domain"
	"github.com/scoutscape/internal/domain/repository"
	"github.com/scoutscape/internal/pkg/metrics"
	"go.uber.org/zap"
)

const provider = "open-meteo"

// ErrNoCurrentWeather - ответ не содержит блока current_weather
var ErrNoCurrentWeather = errors.New("open-meteo response has no current weather")

type client struct {
	httpClient *http.Client
	baseURL    string
	timezone   string
	logger     *zap.Logger
}

// NewOpenMeteoClient создает клиент текущей погоды
func NewOpenMeteoClient(cfg *config.WeatherConfig, logger *zap.Logger) repository.WeatherRepository {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	tz := cfg.TimeZone
	if tz == "" {
		tz = "auto"
	}

	return &client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		timezone:   tz,
		logger:     logger,
	}
}

type forecastResponse struct {
	CurrentWeather *struct {
		Temperature   float64 `json:"temperature"`
		WindSpeed     float64 `json:"windspeed"`
		WindDirection float64 `json:"winddirection"`
		WeatherCode   int     `json:"weathercode"`
		Time          string  `json:"time"`
	} `json:"current_weather"`
}

// Current возвращает текущую погоду в точке
func (c *client) Current(ctx context.Context, point domain.Point) (weather *domain.Weather, err error) {
	start := time.Now()
	defer func() { metrics.ObserveUpstream(provider, start, err) }()

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(point.Lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(point.Lon, 'f', -1, 64))
	params.Set("current_weather", "true")
	params.Set("timezone", c.timezone)

	reqURL := c.baseURL + "/v1/forecast?" + params.Encode()

	c.logger.Debug("Calling Open-Meteo API", zap.String("url", reqURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to execute request", zap.Error(err))
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Error("Open-Meteo API returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, fmt.Errorf("open-meteo API error: status %d", resp.StatusCode)
	}

	var forecast forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&forecast); err != nil {
		c.logger.Error("Failed to decode response", zap.Error(err))
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	cw := forecast.CurrentWeather
	if cw == nil {
		return nil, ErrNoCurrentWeather
	}

	return &domain.Weather{
		Temperature:   cw.Temperature,
		WindSpeed:     cw.WindSpeed,
		WindDirection: cw.WindDirection,
		WindCardinal:  domain.ToCardinal(cw.WindDirection),
		WeatherCode:   cw.WeatherCode,
		Condition:     domain.DescribeWeatherCode(cw.WeatherCode),
		Time:          cw.Time,
	}, nil
}
