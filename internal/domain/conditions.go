package domain

import (
	"fmt"
	"math"
)

// Weather - текущие погодные условия в точке разведки
type Weather struct {
	Temperature   float64 `json:"temperature"`
	WindSpeed     float64 `json:"wind_speed"`
	WindDirection float64 `json:"wind_direction"`
	WindCardinal  string  `json:"wind_cardinal"`
	WeatherCode   int     `json:"weather_code"`
	Condition     string  `json:"condition"`
	Time          string  `json:"time"`
}

// TrafficFlow - данные о потоке на ближайшем к точке сегменте дороги
type TrafficFlow struct {
	CurrentSpeed       float64 `json:"current_speed"`
	FreeFlowSpeed      float64 `json:"free_flow_speed"`
	CurrentTravelTime  float64 `json:"current_travel_time"`
	FreeFlowTravelTime float64 `json:"free_flow_travel_time"`
	Confidence         float64 `json:"confidence"`
	RoadClosure        bool    `json:"road_closure"`
}

// TrafficLevel - словесная оценка загруженности
type TrafficLevel string

const (
	TrafficLevelUnavailable TrafficLevel = "Unavailable"
	TrafficLevelLight       TrafficLevel = "Light traffic"
	TrafficLevelModerate    TrafficLevel = "Moderate traffic"
	TrafficLevelHeavy       TrafficLevel = "Heavy congestion"
)

var weatherCodeSummary = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Rime fog",
	51: "Light drizzle",
	53: "Drizzle",
	55: "Heavy drizzle",
	61: "Light rain",
	63: "Rain",
	65: "Heavy rain",
	66: "Freezing rain",
	67: "Heavy freezing rain",
	71: "Light snow",
	73: "Snow",
	75: "Heavy snow",
	77: "Snow grains",
	80: "Light showers",
	81: "Showers",
	82: "Heavy showers",
	85: "Snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with hail",
	99: "Severe thunderstorm",
}

// DescribeWeatherCode переводит WMO-код погоды в текст
func DescribeWeatherCode(code int) string {
	if s, ok := weatherCodeSummary[code]; ok {
		return s
	}
	return "Conditions unavailable"
}

var cardinalDirections = []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// ToCardinal переводит направление в градусах в одно из восьми направлений
func ToCardinal(degrees float64) string {
	if math.IsNaN(degrees) || math.IsInf(degrees, 0) {
		return "N/A"
	}
	idx := int(math.Round(degrees/45)) % 8
	if idx < 0 {
		idx += 8
	}
	return cardinalDirections[idx]
}

// Level оценивает загруженность по отношению текущей скорости к скорости свободного потока
func (f *TrafficFlow) Level() TrafficLevel {
	if f == nil || f.CurrentSpeed <= 0 || f.FreeFlowSpeed <= 0 {
		return TrafficLevelUnavailable
	}

	ratio := f.CurrentSpeed / f.FreeFlowSpeed
	switch {
	case ratio >= 0.8:
		return TrafficLevelLight
	case ratio >= 0.55:
		return TrafficLevelModerate
	default:
		return TrafficLevelHeavy
	}
}

// DelayText возвращает задержку относительно свободного потока: "12 min", "2.5 min", "40 sec"
func (f *TrafficFlow) DelayText() string {
	if f == nil {
		return "—"
	}

	delay := math.Max(f.CurrentTravelTime-f.FreeFlowTravelTime, 0)
	if delay >= 60 {
		minutes := delay / 60
		if minutes >= 10 {
			return fmt.Sprintf("%d min", int(math.Round(minutes)))
		}
		return fmt.Sprintf("%.1f min", minutes)
	}
	return fmt.Sprintf("%d sec", int(math.Round(delay)))
}
