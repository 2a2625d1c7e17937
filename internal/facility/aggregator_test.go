package facility

import (
	"encoding/json"
	"testing"

	"github.com/scoutscape/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// metersPerDegreeLat при R = 6371000
const metersPerDegreeLat = 111194.93

var scoutPoint = domain.Point{Lat: 49.28, Lon: -123.12}

func northOf(p domain.Point, meters float64) *domain.Point {
	return &domain.Point{Lat: p.Lat + meters/metersPerDegreeLat, Lon: p.Lon}
}

func newTestAggregator() *Aggregator {
	return NewAggregator(domain.DefaultCategoryCatalog(), NewDefaultClassifier())
}

func TestAggregator_HospitalInSchoolOut(t *testing.T) {
	a := newTestAggregator()
	features := []domain.RawFeature{
		{ID: "node/1", Kind: domain.FeatureKindPoint, Coord: northOf(scoutPoint, 100), Tags: map[string]string{"amenity": "hospital", "name": "St. Paul's"}},
		{ID: "node/2", Kind: domain.FeatureKindPoint, Coord: northOf(scoutPoint, 5000), Tags: map[string]string{"amenity": "school"}},
	}

	agg, err := a.Run(features, &scoutPoint, 250, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, agg.Counts[domain.CategoryHospitals])
	assert.Equal(t, 0, agg.Counts[domain.CategorySchools])
	assert.Len(t, agg.Counts, 8, "every configured category must be present")
	require.Len(t, agg.Facilities, 1)

	f := agg.Facilities[0]
	assert.Equal(t, domain.FeatureID("node/1"), f.FeatureID)
	assert.Equal(t, "St. Paul's", f.Name)
	assert.Equal(t, 100, f.DistanceMeters)
	assert.Equal(t, "100 m", f.DistanceText)
	assert.Equal(t, "Hospitals & Clinics", f.CategoryLabel)
	assert.Equal(t, "Hospital or Clinic", f.TypeLabel)
	assert.Equal(t, "#ef4444", f.Color)
}

func TestAggregator_MultiCategoryFeature(t *testing.T) {
	a := newTestAggregator()
	features := []domain.RawFeature{
		{
			ID: "way/7", Kind: domain.FeatureKindLine,
			Centroid: northOf(scoutPoint, 50),
			Tags:     map[string]string{"amenity": "school", "construction": "yes"},
		},
	}

	agg, err := a.Run(features, &scoutPoint, 250, nil)
	require.NoError(t, err)

	require.Len(t, agg.Facilities, 2)
	assert.Equal(t, domain.CategorySchools, agg.Facilities[0].Category)
	assert.Equal(t, domain.CategoryConstruction, agg.Facilities[1].Category)
	for _, f := range agg.Facilities {
		assert.Equal(t, domain.FeatureID("way/7"), f.FeatureID)
		assert.Equal(t, agg.Facilities[0].Lat, f.Lat)
		assert.Equal(t, agg.Facilities[0].Lon, f.Lon)
	}
	assert.Equal(t, 2, agg.Total())
}

func TestAggregator_VisibilityKeepsCounts(t *testing.T) {
	a := newTestAggregator()
	features := []domain.RawFeature{
		{ID: "node/1", Kind: domain.FeatureKindPoint, Coord: northOf(scoutPoint, 30), Tags: map[string]string{"amenity": "police"}},
		{ID: "node/2", Kind: domain.FeatureKindPoint, Coord: northOf(scoutPoint, 60), Tags: map[string]string{"highway": "bus_stop"}},
	}
	idx := a.Prepare(features)

	all, err := a.Aggregate(idx, &scoutPoint, 250, nil)
	require.NoError(t, err)

	hidden, err := a.Aggregate(idx, &scoutPoint, 250, domain.Visibility{domain.CategoryTransit: false})
	require.NoError(t, err)

	assert.Equal(t, all.Counts, hidden.Counts)
	assert.Equal(t, 1, hidden.Counts[domain.CategoryTransit])
	require.Len(t, hidden.Facilities, 1)
	assert.Equal(t, domain.CategoryPoliceStations, hidden.Facilities[0].Category)
	assert.Len(t, all.Facilities, 2)
}

func TestAggregator_NoPointIsZeroResult(t *testing.T) {
	a := newTestAggregator()
	features := []domain.RawFeature{
		{ID: "node/1", Kind: domain.FeatureKindPoint, Coord: &scoutPoint, Tags: map[string]string{"amenity": "police"}},
	}

	agg, err := a.Run(features, nil, 250, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, agg.Total())
	assert.Len(t, agg.Counts, 8)
	assert.NotNil(t, agg.Facilities)
	assert.Empty(t, agg.Facilities)
}

func TestAggregator_NoDataYet(t *testing.T) {
	a := newTestAggregator()

	agg, err := a.Aggregate(nil, &scoutPoint, 250, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, agg.Total())
	assert.Empty(t, agg.Facilities)
}

func TestAggregator_NegativeRadiusFailsFast(t *testing.T) {
	a := newTestAggregator()

	_, err := a.Aggregate(a.Prepare(nil), &scoutPoint, -1, nil)
	assert.ErrorIs(t, err, ErrNegativeRadius)

	_, err = a.Run(nil, nil, -5, nil)
	assert.ErrorIs(t, err, ErrNegativeRadius)
}

func TestAggregator_ZeroRadiusKeepsExactMatches(t *testing.T) {
	a := newTestAggregator()
	features := []domain.RawFeature{
		{ID: "node/1", Kind: domain.FeatureKindPoint, Coord: &scoutPoint, Tags: map[string]string{"amenity": "police"}},
	}

	agg, err := a.Run(features, &scoutPoint, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, agg.Counts[domain.CategoryPoliceStations])
}

func TestAggregator_SortedByDistanceWithStableTies(t *testing.T) {
	a := newTestAggregator()
	features := []domain.RawFeature{
		{ID: "node/1", Kind: domain.FeatureKindPoint, Coord: northOf(scoutPoint, 200), Tags: map[string]string{"highway": "bus_stop", "name": "far stop"}},
		{ID: "node/2", Kind: domain.FeatureKindPoint, Coord: northOf(scoutPoint, 20), Tags: map[string]string{"amenity": "police", "name": "near police"}},
		{ID: "node/3", Kind: domain.FeatureKindPoint, Coord: northOf(scoutPoint, 100), Tags: map[string]string{"highway": "bus_stop", "name": "tie transit"}},
		{ID: "node/4", Kind: domain.FeatureKindPoint, Coord: northOf(scoutPoint, 100), Tags: map[string]string{"amenity": "hospital", "name": "tie hospital"}},
		{ID: "node/5", Kind: domain.FeatureKindPoint, Coord: northOf(scoutPoint, 100), Tags: map[string]string{"highway": "bus_stop", "name": "tie transit 2"}},
	}

	agg, err := a.Run(features, &scoutPoint, 250, nil)
	require.NoError(t, err)

	names := make([]string, 0, len(agg.Facilities))
	for _, f := range agg.Facilities {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"near police", "tie hospital", "tie transit", "tie transit 2", "far stop"}, names)
}

func TestAggregator_SkipsMalformedFeatures(t *testing.T) {
	a := newTestAggregator()
	features := []domain.RawFeature{
		{ID: "node/1", Kind: domain.FeatureKindPoint, Coord: northOf(scoutPoint, 10)},
		{ID: "node/2", Kind: domain.FeatureKindPoint, Tags: map[string]string{"amenity": "police"}},
		{ID: "way/1", Kind: domain.FeatureKindLine, Tags: map[string]string{"highway": "primary"}, Members: []domain.FeatureID{"node/404"}},
		{ID: "way/2", Kind: domain.FeatureKindLine, Tags: map[string]string{"highway": "primary", "ref": "99"}, Members: []domain.FeatureID{"node/1"}},
		{ID: "relation/1", Kind: domain.FeatureKindArea, Tags: map[string]string{"highway": "primary"}, Centroid: northOf(scoutPoint, 10)},
	}

	idx := a.Prepare(features)
	assert.Equal(t, 5, idx.Total())
	assert.Equal(t, 1, idx.Tracked())
	assert.Equal(t, 2, idx.Skipped())
	assert.Equal(t, 1, idx.CategorySize(domain.CategoryTraffic))

	agg, err := a.Aggregate(idx, &scoutPoint, 250, nil)
	require.NoError(t, err)
	require.Len(t, agg.Facilities, 1)
	assert.Equal(t, "99", agg.Facilities[0].Name)
	assert.Equal(t, 10, agg.Facilities[0].DistanceMeters)
}

func TestAggregator_Deterministic(t *testing.T) {
	a := newTestAggregator()
	features := []domain.RawFeature{
		{ID: "node/1", Kind: domain.FeatureKindPoint, Coord: northOf(scoutPoint, 80), Tags: map[string]string{"amenity": "clinic"}},
		{ID: "node/2", Kind: domain.FeatureKindPoint, Coord: northOf(scoutPoint, 80), Tags: map[string]string{"amenity": "fire_station"}},
		{ID: "way/1", Kind: domain.FeatureKindLine, Centroid: northOf(scoutPoint, 40), Tags: map[string]string{"landuse": "construction"}},
	}

	first, err := a.Run(features, &scoutPoint, 250, nil)
	require.NoError(t, err)
	second, err := a.Run(features, &scoutPoint, 250, nil)
	require.NoError(t, err)

	b1, err := json.Marshal(first)
	require.NoError(t, err)
	b2, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(b1), string(b2))
}

func TestAggregator_CustomCatalogIgnoresUnknownCategories(t *testing.T) {
	catalog, err := domain.NewCategoryCatalog([]domain.CategoryMeta{
		{Key: domain.CategoryPoliceStations, Label: "Police", TypeLabel: "Police"},
	})
	require.NoError(t, err)
	a := NewAggregator(catalog, NewDefaultClassifier())

	features := []domain.RawFeature{
		{ID: "node/1", Kind: domain.FeatureKindPoint, Coord: northOf(scoutPoint, 10), Tags: map[string]string{"amenity": "police"}},
		{ID: "node/2", Kind: domain.FeatureKindPoint, Coord: northOf(scoutPoint, 10), Tags: map[string]string{"amenity": "hospital"}},
	}

	agg, err := a.Run(features, &scoutPoint, 250, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryCounts{domain.CategoryPoliceStations: 1}, agg.Counts)
	assert.Len(t, agg.Facilities, 1)
}
