package nominatim

import (
	"context"
	"encoding/json"
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

const provider = "nominatim"

type client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	city       string
	country    string
	viewbox    string
	logger     *zap.Logger
}

// NewNominatimClient создает клиент геокодирования, ограниченный рамкой города
func NewNominatimClient(cfg *config.NominatimConfig, box domain.BoundingBox, logger *zap.Logger) repository.GeocodingRepository {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		city:       cfg.City,
		country:    cfg.Country,
		// viewbox: left,top,right,bottom
		viewbox: fmt.Sprintf("%s,%s,%s,%s",
			formatCoord(box.MinLon), formatCoord(box.MaxLat),
			formatCoord(box.MaxLon), formatCoord(box.MinLat)),
		logger: logger,
	}
}

type searchItem struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

// Search ищет первое совпадение в пределах города
func (c *client) Search(ctx context.Context, query string) (*domain.GeocodeResult, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", "1")
	params.Set("bounded", "1")
	params.Set("viewbox", c.viewbox)
	params.Set("q", query)
	if c.city != "" {
		params.Set("city", c.city)
	}
	if c.country != "" {
		params.Set("country", c.country)
	}

	var items []searchItem
	if err := c.get(ctx, "/search", params, &items); err != nil {
		return nil, err
	}

	if len(items) == 0 {
		c.logger.Debug("Nominatim search returned no results", zap.String("query", query))
		return nil, nil
	}

	lat, err := strconv.ParseFloat(items[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude in nominatim response: %w", err)
	}
	lon, err := strconv.ParseFloat(items[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude in nominatim response: %w", err)
	}

	return &domain.GeocodeResult{
		Lat:         lat,
		Lon:         lon,
		DisplayName: items[0].DisplayName,
	}, nil
}

// Reverse возвращает адрес точки; пустая строка, если адрес не найден
func (c *client) Reverse(ctx context.Context, point domain.Point) (string, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("lat", formatCoord(point.Lat))
	params.Set("lon", formatCoord(point.Lon))
	params.Set("zoom", "18")
	params.Set("addressdetails", "1")

	var resp reverseResponse
	if err := c.get(ctx, "/reverse", params, &resp); err != nil {
		return "", err
	}

	if resp.Error != "" {
		c.logger.Debug("Nominatim reverse returned error",
			zap.String("error", resp.Error),
			zap.Float64("lat", point.Lat),
			zap.Float64("lon", point.Lon))
		return "", nil
	}

	return resp.DisplayName, nil
}

func (c *client) get(ctx context.Context, path string, params url.Values, dest interface{}) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveUpstream(provider, start, err) }()

	reqURL := c.baseURL + path + "?" + params.Encode()

	c.logger.Debug("Calling Nominatim API", zap.String("url", reqURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		c.logger.Error("Failed to create request", zap.Error(err))
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	// политика Nominatim требует идентифицирующий User-Agent
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to execute request", zap.Error(err))
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Error("Nominatim API returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return fmt.Errorf("nominatim API error: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		c.logger.Error("Failed to decode response", zap.Error(err))
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
