package utils

import (
	"fmt"
	"math"
)

// EarthRadiusMeters - средний радиус Земли, используемый во всех расчётах расстояний
const EarthRadiusMeters = 6371000.0

// HaversineMeters вычисляет расстояние по дуге большого круга между двумя точками в метрах
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLon := (lon2 - lon1) * math.Pi / 180.0

	lat1Rad := lat1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// DistanceMeters возвращает расстояние в целых метрах (округление до ближайшего).
// Сравнение с радиусом всегда выполняется по округлённому значению.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) int {
	return int(math.Round(HaversineMeters(lat1, lon1, lat2, lon2)))
}

// FormatDistance форматирует расстояние: "<n> m" до километра, "<x.y> km" начиная с 1000 м
func FormatDistance(meters int) string {
	if meters >= 1000 {
		return fmt.Sprintf("%.1f km", float64(meters)/1000)
	}
	return fmt.Sprintf("%d m", meters)
}

// ValidateCoordinates проверяет валидность координат
func ValidateCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// ValidateRadius проверяет, что радиус попадает в допустимый диапазон в метрах
func ValidateRadius(radiusM, minM, maxM int) bool {
	return radiusM >= minM && radiusM <= maxM
}
