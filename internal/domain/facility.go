package domain

// Facility - классифицированный объект с координатой и расстоянием до точки разведки.
// Один RawFeature может дать несколько Facility - по одной на каждую совпавшую категорию.
type Facility struct {
	FeatureID      FeatureID `json:"feature_id"`
	Category       Category  `json:"category"`
	Lat            float64   `json:"lat"`
	Lon            float64   `json:"lon"`
	Name           string    `json:"name"`
	Address        string    `json:"address"`
	DistanceMeters int       `json:"distance_meters"`
}

// NearbyFacility - Facility с метаданными категории, готовая к отображению без дополнительных запросов
type NearbyFacility struct {
	Facility
	CategoryLabel string `json:"category_label"`
	TypeLabel     string `json:"type_label"`
	Color         string `json:"color"`
	DistanceText  string `json:"distance_text"`
}

// Aggregation - результат агрегации для точки и радиуса.
// Counts отражает "в радиусе", а не "сейчас показано": скрытые категории по-прежнему считаются.
type Aggregation struct {
	Counts     CategoryCounts   `json:"counts"`
	Facilities []NearbyFacility `json:"facilities"`
}

// Total возвращает общее количество объектов в радиусе
func (a Aggregation) Total() int {
	return a.Counts.Total()
}
