package tomtom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/scoutscape/internal/config"
	"github.com/scoutscape/internal/domain"
	"github.com/scoutscape/internal/domain/repository"
	"github.com/scoutscape/internal/pkg/metrics"
	"go.uber.org/zap"
)

const (
	provider = "tomtom"
	// уровень масштаба, на котором сервис подбирает сегмент дороги
	flowZoom = 10
)

type client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *zap.Logger
}

// NewTomTomClient создает клиент данных о дорожном потоке
func NewTomTomClient(cfg *config.TrafficConfig, logger *zap.Logger) repository.TrafficRepository {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		logger:     logger,
	}
}

func (c *client) Configured() bool {
	return c.apiKey != ""
}

type flowResponse struct {
	FlowSegmentData *struct {
		CurrentSpeed       float64 `json:"currentSpeed"`
		FreeFlowSpeed      float64 `json:"freeFlowSpeed"`
		CurrentTravelTime  float64 `json:"currentTravelTime"`
		FreeFlowTravelTime float64 `json:"freeFlowTravelTime"`
		Confidence         float64 `json:"confidence"`
		RoadClosure        bool    `json:"roadClosure"`
	} `json:"flowSegmentData"`
}

// FlowSegment запрашивает поток на ближайшем сегменте; нет сегмента - (nil, nil)
func (c *client) FlowSegment(ctx context.Context, point domain.Point, at time.Time) (flow *domain.TrafficFlow, err error) {
	if !c.Configured() {
		return nil, fmt.Errorf("tomtom API key is not configured")
	}

	start := time.Now()
	defer func() { metrics.ObserveUpstream(provider, start, err) }()

	params := url.Values{}
	params.Set("point", fmt.Sprintf("%f,%f", point.Lat, point.Lon))
	params.Set("unit", "KMPH")
	params.Set("key", c.apiKey)
	params.Set("dateTime", at.UTC().Format(time.RFC3339))

	reqURL := fmt.Sprintf("%s/traffic/services/4/flowSegmentData/absolute/%d/json?%s", c.baseURL, flowZoom, params.Encode())

	c.logger.Debug("Calling TomTom Flow API",
		zap.Float64("lat", point.Lat),
		zap.Float64("lon", point.Lon),
		zap.Time("at", at))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error содержит ключ в тексте запроса
		c.logger.Error("Failed to execute request")
		return nil, fmt.Errorf("failed to execute tomtom request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Error("TomTom API returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, fmt.Errorf("tomtom API error: status %d", resp.StatusCode)
	}

	var payload flowResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Error("Failed to decode response", zap.Error(err))
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	seg := payload.FlowSegmentData
	if seg == nil {
		return nil, nil
	}

	return &domain.TrafficFlow{
		CurrentSpeed:       seg.CurrentSpeed,
		FreeFlowSpeed:      seg.FreeFlowSpeed,
		CurrentTravelTime:  seg.CurrentTravelTime,
		FreeFlowTravelTime: seg.FreeFlowTravelTime,
		Confidence:         seg.Confidence,
		RoadClosure:        seg.RoadClosure,
	}, nil
}
