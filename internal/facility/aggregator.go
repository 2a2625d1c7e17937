package facility

import (
	"errors"
	"sort"

	"github.com/scoutscape/internal/domain"
	"github.com/scoutscape/internal/pkg/utils"
)

// ErrNegativeRadius - нарушение контракта вызывающей стороной, радиус не "прижимается" к нулю
var ErrNegativeRadius = errors.New("facility: radius must not be negative")

// candidate - классифицированный и разрешённый объект, ещё без расстояния
type candidate struct {
	featureID domain.FeatureID
	point     domain.Point
	name      string
	address   string
}

// FeatureIndex - результат однократной подготовки набора данных: объекты сгруппированы по категориям
// в порядке обнаружения. Неизменяем после Prepare и безопасен для конкурентного чтения.
type FeatureIndex struct {
	byCategory map[domain.Category][]candidate
	total      int
	tracked    int
	skipped    int
}

// Total - количество объектов во входном наборе
func (i *FeatureIndex) Total() int { return i.total }

// Tracked - количество объектов, попавших хотя бы в одну категорию и получивших координату
func (i *FeatureIndex) Tracked() int { return i.tracked }

// Skipped - классифицированные объекты, которые не удалось разрешить в координату
func (i *FeatureIndex) Skipped() int { return i.skipped }

// CategorySize возвращает число кандидатов категории без учёта расстояния
func (i *FeatureIndex) CategorySize(key domain.Category) int {
	return len(i.byCategory[key])
}

// Aggregator объединяет резолвер и классификатор и фильтрует объекты по радиусу
type Aggregator struct {
	catalog    *domain.CategoryCatalog
	classifier *Classifier
}

func NewAggregator(catalog *domain.CategoryCatalog, classifier *Classifier) *Aggregator {
	return &Aggregator{
		catalog:    catalog,
		classifier: classifier,
	}
}

// Catalog возвращает каталог категорий агрегатора
func (a *Aggregator) Catalog() *domain.CategoryCatalog {
	return a.catalog
}

// Prepare разрешает и классифицирует каждый объект ровно один раз.
// Некорректные объекты пропускаются, набор целиком никогда не отклоняется.
func (a *Aggregator) Prepare(features []domain.RawFeature) *FeatureIndex {
	idx := &FeatureIndex{
		byCategory: make(map[domain.Category][]candidate, a.catalog.Len()),
		total:      len(features),
	}
	points := BuildPointIndex(features)

	for _, f := range features {
		categories := a.classifier.Classify(f.Tags, f.Kind)
		if len(categories) == 0 {
			continue
		}

		loc, ok := Resolve(f, points)
		if !ok {
			idx.skipped++
			continue
		}

		c := candidate{
			featureID: loc.FeatureID,
			point:     loc.Point(),
			name:      Name(f),
			address:   Address(f),
		}
		added := false
		for _, cat := range categories {
			if !a.catalog.Contains(cat) {
				continue
			}
			idx.byCategory[cat] = append(idx.byCategory[cat], c)
			added = true
		}
		if added {
			idx.tracked++
		}
	}

	return idx
}

// Aggregate считает объекты в радиусе по каждой категории и строит общий список, отсортированный по расстоянию.
// Счётчики учитывают скрытые категории; список содержит только видимые.
// point == nil или idx == nil - допустимое состояние: нулевые счётчики и пустой список.
func (a *Aggregator) Aggregate(idx *FeatureIndex, point *domain.Point, radius int, visibility domain.Visibility) (domain.Aggregation, error) {
	if radius < 0 {
		return domain.Aggregation{}, ErrNegativeRadius
	}

	result := domain.Aggregation{
		Counts:     a.catalog.ZeroCounts(),
		Facilities: []domain.NearbyFacility{},
	}
	if point == nil || idx == nil {
		return result, nil
	}

	for _, meta := range a.catalog.Items() {
		visible := visibility.IsVisible(meta.Key)
		for _, c := range idx.byCategory[meta.Key] {
			d := utils.DistanceMeters(point.Lat, point.Lon, c.point.Lat, c.point.Lon)
			if d > radius {
				continue
			}
			result.Counts[meta.Key]++
			if !visible {
				continue
			}
			result.Facilities = append(result.Facilities, domain.NearbyFacility{
				Facility: domain.Facility{
					FeatureID:      c.featureID,
					Category:       meta.Key,
					Lat:            c.point.Lat,
					Lon:            c.point.Lon,
					Name:           c.name,
					Address:        c.address,
					DistanceMeters: d,
				},
				CategoryLabel: meta.Label,
				TypeLabel:     meta.TypeLabel,
				Color:         meta.Color,
				DistanceText:  utils.FormatDistance(d),
			})
		}
	}

	// стабильная сортировка сохраняет порядок "категория, затем обнаружение" при равных расстояниях
	sort.SliceStable(result.Facilities, func(i, j int) bool {
		return result.Facilities[i].DistanceMeters < result.Facilities[j].DistanceMeters
	})

	return result, nil
}

// Run - подготовка и агрегация за один вызов
func (a *Aggregator) Run(features []domain.RawFeature, point *domain.Point, radius int, visibility domain.Visibility) (domain.Aggregation, error) {
	if radius < 0 {
		return domain.Aggregation{}, ErrNegativeRadius
	}
	return a.Aggregate(a.Prepare(features), point, radius, visibility)
}
