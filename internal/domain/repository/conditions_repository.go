package repository

import (
	"context"
	"time"

	"github.com/scoutscape/internal/domain"
)

// GeocodingRepository - прямое и обратное геокодирование
type GeocodingRepository interface {
	// Search ищет адрес в пределах города; нет совпадений - (nil, nil)
	Search(ctx context.Context, query string) (*domain.GeocodeResult, error)

	// Reverse возвращает отображаемый адрес точки
	Reverse(ctx context.Context, point domain.Point) (string, error)
}

// WeatherRepository - текущая погода в точке
type WeatherRepository interface {
	Current(ctx context.Context, point domain.Point) (*domain.Weather, error)
}

// TrafficRepository - данные о потоке на ближайшем сегменте дороги
type TrafficRepository interface {
	// Configured сообщает, задан ли API-ключ провайдера
	Configured() bool

	// FlowSegment запрашивает поток на момент at
	FlowSegment(ctx context.Context, point domain.Point, at time.Time) (*domain.TrafficFlow, error)
}
