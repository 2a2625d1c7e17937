package cache

import (
	"fmt"
	"strings"
	"time"

	"github.com/scoutscape/internal/domain"
)

// Координаты в ключах округляются до 4 знаков (~11 м): соседние клики попадают в одну запись

func GeocodeSearchKey(query string) string {
	return "scout:geocode:search:" + strings.ToLower(strings.TrimSpace(query))
}

func GeocodeReverseKey(p domain.Point) string {
	return fmt.Sprintf("scout:geocode:reverse:%.4f:%.4f", p.Lat, p.Lon)
}

func WeatherKey(p domain.Point) string {
	return fmt.Sprintf("scout:weather:%.4f:%.4f", p.Lat, p.Lon)
}

// TrafficKey включает час и минуту запрошенного момента
func TrafficKey(p domain.Point, at time.Time) string {
	return fmt.Sprintf("scout:traffic:%.4f:%.4f:%s", p.Lat, p.Lon, at.UTC().Format("2006-01-02T15:04"))
}
