package dto

// Point - координаты точки
type Point struct {
	Lat float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lon float64 `json:"lon" validate:"required,min=-180,max=180"`
}

// NearbyRequest - запрос на агрегацию объектов вокруг точки без сессии
type NearbyRequest struct {
	Lat    float64         `json:"lat" validate:"required,min=-90,max=90"`
	Lon    float64         `json:"lon" validate:"required,min=-180,max=180"`
	Radius int             `json:"radius" validate:"omitempty,min=1"` // meters
	Layers map[string]bool `json:"layers,omitempty" validate:"omitempty,dive,keys,category,endkeys"`
	Top    int             `json:"top" validate:"omitempty,min=1,max=500"`
}

// CreateSessionRequest - создание сессии разведки
type CreateSessionRequest struct {
	Radius int `json:"radius" validate:"omitempty,min=1"`
}

// SetPointRequest - выбор точки (клик, перетаскивание маркера или результат поиска)
type SetPointRequest struct {
	Lat float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lon float64 `json:"lon" validate:"required,min=-180,max=180"`
}

// SetRadiusRequest - изменение радиуса
type SetRadiusRequest struct {
	Radius int `json:"radius" validate:"required,min=1"`
}

// SetTimeRequest - сырые поля времени; пустые hour и minute снимают ограничение по времени
type SetTimeRequest struct {
	Hour   string `json:"hour" validate:"max=8"`
	Minute string `json:"minute" validate:"max=8"`
	Period string `json:"period" validate:"period"`
}

// SetLayerRequest - видимость категории на карте
type SetLayerRequest struct {
	Visible bool `json:"visible"`
}

// DurationRequest - длительность в днях и часах
type DurationRequest struct {
	Days  string `json:"days"`
	Hours string `json:"hours"`
}

// GeocodeSearchRequest - прямой поиск адреса в пределах города
type GeocodeSearchRequest struct {
	Query string `json:"q" validate:"max=256"`
}

// ReverseGeocodeRequest - запрос на обратное геокодирование
type ReverseGeocodeRequest struct {
	Lat float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lon float64 `json:"lon" validate:"required,min=-180,max=180"`
}

// ListAnalysesRequest - постраничный список сохранённых анализов
type ListAnalysesRequest struct {
	Limit int `json:"limit" validate:"omitempty,min=1,max=100"`
}
