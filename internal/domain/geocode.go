package domain

// GeocodeResult - результат прямого геокодирования
type GeocodeResult struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"display_name"`
}

// Point возвращает координату результата
func (g GeocodeResult) Point() Point {
	return Point{Lat: g.Lat, Lon: g.Lon}
}
