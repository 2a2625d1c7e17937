package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scoutscape/internal/domain"
	"github.com/scoutscape/internal/facility"
	"github.com/scoutscape/internal/usecase"
)

// metersPerDegreeLat - длина градуса широты на сфере радиуса 6371 км
const metersPerDegreeLat = 111194.93

var downtown = domain.Point{Lat: 49.2827, Lon: -123.1207}

func northOf(p domain.Point, meters float64) domain.Point {
	return domain.Point{Lat: p.Lat + meters/metersPerDegreeLat, Lon: p.Lon}
}

func pointFeature(id string, p domain.Point, tags map[string]string) domain.RawFeature {
	return domain.RawFeature{
		ID:    domain.FeatureID(id),
		Kind:  domain.FeatureKindPoint,
		Tags:  tags,
		Coord: &domain.Point{Lat: p.Lat, Lon: p.Lon},
	}
}

// sampleFeatures: больница в 100 м, школа-стройка в 150 м, школа в 5 км
func sampleFeatures() []domain.RawFeature {
	return []domain.RawFeature{
		pointFeature("node/1", northOf(downtown, 100), map[string]string{"amenity": "hospital", "name": "St. Paul's"}),
		pointFeature("node/2", northOf(downtown, 150), map[string]string{"amenity": "school", "construction": "yes"}),
		pointFeature("node/3", northOf(downtown, 5000), map[string]string{"amenity": "school", "name": "Far School"}),
	}
}

func testSettings(t *testing.T) usecase.ScoutingSettings {
	t.Helper()
	box, err := domain.NewBoundingBox(49.198, -123.27, 49.315, -123.02)
	require.NoError(t, err)
	return usecase.ScoutingSettings{
		Box:           box,
		DefaultRadius: 250,
		MinRadius:     50,
		MaxRadius:     1500,
		TopN:          20,
	}
}

func newScoutingUseCase(t *testing.T, features []domain.RawFeature) *usecase.ScoutingUseCase {
	t.Helper()

	repo := &MockFeatureRepository{}
	repo.On("FetchFeatures", context.Background()).Return(features, nil)

	aggregator := facility.NewAggregator(domain.DefaultCategoryCatalog(), facility.NewDefaultClassifier())
	uc := usecase.NewScoutingUseCase(repo, aggregator, testSettings(t), zap.NewNop())

	if features != nil {
		_, err := uc.LoadFeatures(context.Background())
		require.NoError(t, err)
	}
	return uc
}
