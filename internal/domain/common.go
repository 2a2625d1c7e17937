package domain

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

type Point struct {
	Lat float64 `json:"lat" db:"lat"`
	Lon float64 `json:"lon" db:"lon"`
}

// IsValid проверяет, что координаты являются конечными числами в допустимом диапазоне
func (p Point) IsValid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lon, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// BoundingBox - прямоугольная граница, аппроксимирующая границу города.
// Точки вне границы отклоняются до попадания в пайплайн и никогда не "прижимаются" к ней.
type BoundingBox struct {
	MinLat float64 `json:"min_lat" db:"min_lat"`
	MinLon float64 `json:"min_lon" db:"min_lon"`
	MaxLat float64 `json:"max_lat" db:"max_lat"`
	MaxLon float64 `json:"max_lon" db:"max_lon"`
}

// NewBoundingBox создаёт границу и проверяет её корректность
func NewBoundingBox(minLat, minLon, maxLat, maxLon float64) (BoundingBox, error) {
	box := BoundingBox{MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon}
	if !(Point{Lat: minLat, Lon: minLon}).IsValid() || !(Point{Lat: maxLat, Lon: maxLon}).IsValid() {
		return BoundingBox{}, fmt.Errorf("bounding box corners out of range: %+v", box)
	}
	if minLat > maxLat || minLon > maxLon {
		return BoundingBox{}, fmt.Errorf("bounding box min must be <= max: %+v", box)
	}
	return box, nil
}

// Bound возвращает границу в виде orb.Bound (X = lon, Y = lat)
func (b BoundingBox) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.MinLon, b.MinLat},
		Max: orb.Point{b.MaxLon, b.MaxLat},
	}
}

// Contains проверяет попадание точки в границу (края включительно).
// NaN и бесконечности никогда не попадают в границу.
func (b BoundingBox) Contains(p Point) bool {
	if !p.IsValid() {
		return false
	}
	return b.Bound().Contains(orb.Point{p.Lon, p.Lat})
}

