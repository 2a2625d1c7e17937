package facility

import "github.com/scoutscape/internal/domain"

// PointIndex - таблица id -> координата для точечных объектов одного ответа.
// Строится один раз на набор данных, а не на каждый объект.
type PointIndex map[domain.FeatureID]domain.Point

// BuildPointIndex собирает координаты всех точечных объектов, включая объекты без тегов
func BuildPointIndex(features []domain.RawFeature) PointIndex {
	index := make(PointIndex, len(features))
	for _, f := range features {
		if f.Kind != domain.FeatureKindPoint || f.Coord == nil || !f.Coord.IsValid() {
			continue
		}
		index[f.ID] = *f.Coord
	}
	return index
}

// Resolve возвращает одну представительную координату объекта.
// Порядок: собственная координата точки, готовый центроид, среднее по разрешимым вершинам.
// ok == false означает, что объект неразрешим и должен быть молча пропущен.
func Resolve(f domain.RawFeature, index PointIndex) (domain.ResolvedLocation, bool) {
	p, ok := resolvePoint(f, index)
	if !ok {
		return domain.ResolvedLocation{}, false
	}
	return domain.ResolvedLocation{FeatureID: f.ID, Lat: p.Lat, Lon: p.Lon}, true
}

func resolvePoint(f domain.RawFeature, index PointIndex) (domain.Point, bool) {
	if f.Kind == domain.FeatureKindPoint {
		if f.Coord == nil || !f.Coord.IsValid() {
			return domain.Point{}, false
		}
		return *f.Coord, true
	}

	if f.Centroid != nil && f.Centroid.IsValid() {
		return *f.Centroid, true
	}

	return memberMean(f.Members, index)
}

// memberMean усредняет координаты вершин; отсутствующие в индексе вершины пропускаются, а не считаются нулями
func memberMean(members []domain.FeatureID, index PointIndex) (domain.Point, bool) {
	var sumLat, sumLon float64
	count := 0
	for _, id := range members {
		p, ok := index[id]
		if !ok {
			continue
		}
		sumLat += p.Lat
		sumLon += p.Lon
		count++
	}
	if count == 0 {
		return domain.Point{}, false
	}
	return domain.Point{Lat: sumLat / float64(count), Lon: sumLon / float64(count)}, true
}
