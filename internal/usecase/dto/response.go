package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/scoutscape/internal/domain"
)

// AddressNotAvailable - подпись для объектов без адресных тегов
const AddressNotAvailable = "Address not available"

// CategoryResponse - категория с метаданными отображения
type CategoryResponse struct {
	Key       domain.Category `json:"key"`
	Label     string          `json:"label"`
	TypeLabel string          `json:"type_label"`
	Color     string          `json:"color"`
	Position  int             `json:"position"`
}

// CategoriesResponse - список категорий в фиксированном порядке
type CategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
	Total      int                `json:"total"`
}

// FacilityResponse - объект, готовый к отображению в списке и во всплывающем окне
type FacilityResponse struct {
	FeatureID      domain.FeatureID `json:"feature_id"`
	Category       domain.Category  `json:"category"`
	CategoryLabel  string           `json:"category_label"`
	TypeLabel      string           `json:"type_label"`
	Color          string           `json:"color"`
	Name           string           `json:"name"`
	Address        string           `json:"address"`
	Lat            float64          `json:"lat"`
	Lon            float64          `json:"lon"`
	DistanceMeters int              `json:"distance_meters"`
	DistanceText   string           `json:"distance_text"`
}

// NearbyResponse - результат агрегации вокруг точки
type NearbyResponse struct {
	Point      *domain.Point           `json:"point"`
	Radius     int                     `json:"radius"`
	Total      int                     `json:"total"`
	Counts     domain.CategoryCounts   `json:"counts"`
	Facilities []FacilityResponse      `json:"facilities"`
	Top        []FacilityResponse      `json:"top"`
	Busiest    *domain.BusiestCategory `json:"busiest"`
}

// FeatureStatusResponse - состояние загруженного набора объектов
type FeatureStatusResponse struct {
	Loaded     bool                  `json:"loaded"`
	LoadedAt   *time.Time            `json:"loaded_at,omitempty"`
	Total      int                   `json:"total"`
	Tracked    int                   `json:"tracked"`
	Skipped    int                   `json:"skipped"`
	Categories domain.CategoryCounts `json:"categories"`
}

// TimeResponse - состояние полей времени
type TimeResponse struct {
	Hour      string                `json:"hour"`
	Minute    string                `json:"minute"`
	Period    string                `json:"period"`
	Selection *domain.TimeSelection `json:"selection"`
	Summary   string                `json:"summary"`
	Invalid   bool                  `json:"invalid"`
}

// SessionResponse - состояние сессии разведки
type SessionResponse struct {
	ID           uuid.UUID         `json:"id"`
	Point        *domain.Point     `json:"point"`
	Radius       int               `json:"radius"`
	Time         TimeResponse      `json:"time"`
	Layers       domain.Visibility `json:"layers"`
	Generation   uint64            `json:"generation"`
	LastAnalysis *AnalysisResponse `json:"last_analysis"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// Traffic statuses
const (
	TrafficStatusOK            = "ok"
	TrafficStatusNoData        = "no_data"
	TrafficStatusNoTime        = "no_time"
	TrafficStatusNotConfigured = "not_configured"
	TrafficStatusUnavailable   = "unavailable"
)

// TrafficResponse - поток на ближайшем сегменте дороги в выбранное время
type TrafficResponse struct {
	Status      string              `json:"status"`
	TimeSummary string              `json:"time_summary"`
	Flow        *domain.TrafficFlow `json:"flow,omitempty"`
	Level       domain.TrafficLevel `json:"level,omitempty"`
	Delay       string              `json:"delay,omitempty"`
}

// ConditionsResponse - погода и трафик для точки сессии
type ConditionsResponse struct {
	Point      domain.Point    `json:"point"`
	Generation uint64          `json:"generation"`
	Weather    *domain.Weather `json:"weather"`
	Traffic    TrafficResponse `json:"traffic"`
}

// GeocodeResponse - найденный адрес
type GeocodeResponse struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"display_name"`
}

// ReverseGeocodeResponse - адрес точки; пустой, если адрес не найден
type ReverseGeocodeResponse struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Address string  `json:"address"`
}

// AnalysisResponse - снимок анализа с готовым описанием времени
type AnalysisResponse struct {
	domain.AnalysisResult
	TimeSummary string `json:"time_summary"`
}

// AnalysisListResponse - список анализов, от новых к старым
type AnalysisListResponse struct {
	Analyses []AnalysisResponse `json:"analyses"`
	Total    int                `json:"total"`
}

// DurationResponse - нормализованная длительность
type DurationResponse struct {
	Days       int `json:"days"`
	Hours      int `json:"hours"`
	TotalHours int `json:"total_hours"`
}

// NewAnalysisResponse конвертирует доменный снимок
func NewAnalysisResponse(r *domain.AnalysisResult) *AnalysisResponse {
	if r == nil {
		return nil
	}
	return &AnalysisResponse{
		AnalysisResult: *r,
		TimeSummary:    r.TimeSummary(),
	}
}

// NewFacilityResponses конвертирует отсортированный список; адрес по умолчанию подставляется здесь
func NewFacilityResponses(list []domain.NearbyFacility) []FacilityResponse {
	out := make([]FacilityResponse, 0, len(list))
	for _, f := range list {
		addr := f.Address
		if addr == "" {
			addr = AddressNotAvailable
		}
		out = append(out, FacilityResponse{
			FeatureID:      f.FeatureID,
			Category:       f.Category,
			CategoryLabel:  f.CategoryLabel,
			TypeLabel:      f.TypeLabel,
			Color:          f.Color,
			Name:           f.Name,
			Address:        addr,
			Lat:            f.Lat,
			Lon:            f.Lon,
			DistanceMeters: f.DistanceMeters,
			DistanceText:   f.DistanceText,
		})
	}
	return out
}

// NewCategoriesResponse конвертирует каталог категорий
func NewCategoriesResponse(catalog *domain.CategoryCatalog) *CategoriesResponse {
	items := catalog.Items()
	out := make([]CategoryResponse, 0, len(items))
	for i, meta := range items {
		out = append(out, CategoryResponse{
			Key:       meta.Key,
			Label:     meta.Label,
			TypeLabel: meta.TypeLabel,
			Color:     meta.Color,
			Position:  i,
		})
	}
	return &CategoriesResponse{Categories: out, Total: len(out)}
}
