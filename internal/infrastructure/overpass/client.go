package overpass

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/scoutscape/internal/config"
	"github.com/scoutscape/internal/domain"
	"github.com/scoutscape/internal/domain/repository"
	"github.com/scoutscape/internal/pkg/metrics"
	"github.com/serjvanilla/go-overpass"
	"go.uber.org/zap"
)

type client struct {
	api    *overpass.Client
	query  string
	logger *zap.Logger
}

// NewOverpassClient создает источник объектов на основе Overpass API
func NewOverpassClient(cfg *config.OverpassConfig, logger *zap.Logger) repository.FeatureRepository {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	maxParallel := cfg.MaxParallel
	if maxParallel <= 0 {
		maxParallel = 1
	}

	// HTTP-таймаут чуть больше серверного, чтобы Overpass успел вернуть свою ошибку
	httpClient := &http.Client{Timeout: timeout + 10*time.Second}
	api := overpass.NewWithSettings(cfg.Endpoint, maxParallel, httpClient)

	return &client{
		api:    &api,
		query:  BuildQuery(cfg.AreaName, cfg.AdminLevel, int(timeout.Seconds())),
		logger: logger,
	}
}

type queryResult struct {
	result overpass.Result
	err    error
}

// FetchFeatures выполняет запрос; go-overpass не принимает context, поэтому запрос идёт
// в отдельной горутине, а отмена контекста лишь перестаёт его ждать
func (c *client) FetchFeatures(ctx context.Context) ([]domain.RawFeature, error) {
	start := time.Now()
	c.logger.Info("Fetching features from Overpass")

	done := make(chan queryResult, 1)
	go func() {
		res, err := c.api.Query(c.query)
		done <- queryResult{result: res, err: err}
	}()

	var qr queryResult
	select {
	case <-ctx.Done():
		metrics.ObserveUpstream("overpass", start, ctx.Err())
		return nil, fmt.Errorf("overpass query cancelled: %w", ctx.Err())
	case qr = <-done:
	}

	metrics.ObserveUpstream("overpass", start, qr.err)
	if qr.err != nil {
		c.logger.Error("Overpass query failed", zap.Error(qr.err))
		return nil, fmt.Errorf("overpass query failed: %w", qr.err)
	}

	features := ConvertResult(&qr.result)

	c.logger.Info("Overpass features fetched",
		zap.Int("nodes", len(qr.result.Nodes)),
		zap.Int("ways", len(qr.result.Ways)),
		zap.Int("relations", len(qr.result.Relations)),
		zap.Int("features", len(features)),
		zap.Duration("took", time.Since(start)))

	return features, nil
}

// ConvertResult переводит ответ go-overpass в плоский список объектов.
// Карты результата не упорядочены, поэтому элементы сортируются по id внутри каждого типа.
func ConvertResult(result *overpass.Result) []domain.RawFeature {
	features := make([]domain.RawFeature, 0, len(result.Nodes)+len(result.Ways)+len(result.Relations))

	for _, id := range sortedKeys(result.Nodes) {
		node := result.Nodes[id]
		// go-overpass создаёт заглушки для вершин, которых не было в ответе
		if !isLoadedNode(node) {
			continue
		}
		features = append(features, domain.RawFeature{
			ID:    NodeID(node.ID),
			Kind:  domain.FeatureKindPoint,
			Tags:  node.Tags,
			Coord: &domain.Point{Lat: node.Lat, Lon: node.Lon},
		})
	}

	for _, id := range sortedKeys(result.Ways) {
		way := result.Ways[id]
		features = append(features, domain.RawFeature{
			ID:       WayID(way.ID),
			Kind:     domain.FeatureKindLine,
			Tags:     way.Tags,
			Centroid: boundsCenter(way.Bounds),
			Members:  wayMembers(way),
		})
	}

	for _, id := range sortedKeys(result.Relations) {
		rel := result.Relations[id]
		features = append(features, domain.RawFeature{
			ID:       RelationID(rel.ID),
			Kind:     domain.FeatureKindArea,
			Tags:     rel.Tags,
			Centroid: boundsCenter(rel.Bounds),
			Members:  relationMembers(rel),
		})
	}

	return features
}

func NodeID(id int64) domain.FeatureID {
	return domain.FeatureID("node/" + strconv.FormatInt(id, 10))
}

func WayID(id int64) domain.FeatureID {
	return domain.FeatureID("way/" + strconv.FormatInt(id, 10))
}

func RelationID(id int64) domain.FeatureID {
	return domain.FeatureID("relation/" + strconv.FormatInt(id, 10))
}

func isLoadedNode(n *overpass.Node) bool {
	return n != nil && (n.Lat != 0 || n.Lon != 0)
}

func boundsCenter(b *overpass.Box) *domain.Point {
	if b == nil {
		return nil
	}
	return &domain.Point{
		Lat: (b.Min.Lat + b.Max.Lat) / 2,
		Lon: (b.Min.Lon + b.Max.Lon) / 2,
	}
}

func wayMembers(w *overpass.Way) []domain.FeatureID {
	if len(w.Nodes) == 0 {
		return nil
	}
	ids := make([]domain.FeatureID, 0, len(w.Nodes))
	for _, n := range w.Nodes {
		if n == nil {
			continue
		}
		ids = append(ids, NodeID(n.ID))
	}
	return ids
}

// relationMembers собирает вершины: узлы-участники и вершины линий-участников.
// Вложенные отношения не разворачиваются.
func relationMembers(r *overpass.Relation) []domain.FeatureID {
	var ids []domain.FeatureID
	for _, m := range r.Members {
		switch m.Type {
		case overpass.ElementTypeNode:
			if m.Node != nil {
				ids = append(ids, NodeID(m.Node.ID))
			}
		case overpass.ElementTypeWay:
			if m.Way != nil {
				ids = append(ids, wayMembers(m.Way)...)
			}
		}
	}
	return ids
}

func sortedKeys[T any](m map[int64]T) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
