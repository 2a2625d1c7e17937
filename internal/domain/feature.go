package domain

// FeatureKind - геометрический тип исходного объекта
type FeatureKind string

const (
	FeatureKindPoint FeatureKind = "point" // OSM node
	FeatureKindLine  FeatureKind = "line"  // OSM way
	FeatureKindArea  FeatureKind = "area"  // OSM relation
)

// FeatureID - непрозрачный идентификатор объекта, уникальный в пределах одного ответа
type FeatureID string

// RawFeature - объект из ответа сервиса картографических данных.
// Неизменяем после получения: пайплайн никогда не модифицирует RawFeature.
type RawFeature struct {
	ID   FeatureID         `json:"id"`
	Kind FeatureKind       `json:"kind"`
	Tags map[string]string `json:"tags,omitempty"`

	// Ровно один из источников координаты обычно заполнен
	Coord    *Point      `json:"coord,omitempty"`
	Centroid *Point      `json:"centroid,omitempty"`
	Members  []FeatureID `json:"members,omitempty"`
}

// ResolvedLocation - вычисленная координата объекта, живёт в пределах одного набора данных
type ResolvedLocation struct {
	FeatureID FeatureID `json:"feature_id"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
}

// Point возвращает координату как Point
func (l ResolvedLocation) Point() Point {
	return Point{Lat: l.Lat, Lon: l.Lon}
}
