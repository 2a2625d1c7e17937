package domain

import (
	"time"

	"github.com/google/uuid"
)

// BusiestCategory - категория со строго наибольшим ненулевым количеством объектов
type BusiestCategory struct {
	Key   Category `json:"key"`
	Label string   `json:"label"`
	Count int      `json:"count"`
}

// AnalysisResult - снимок анализа на момент запроса.
// Содержит только простые значения, чтобы его можно было сериализовать как неизменяемую запись аудита.
type AnalysisResult struct {
	ID            uuid.UUID        `json:"id" db:"id"`
	Point         Point            `json:"point"`
	Total         int              `json:"total" db:"total"`
	Radius        int              `json:"radius" db:"radius_m"`
	TimeSelection *TimeSelection   `json:"time_selection"`
	Busiest       *BusiestCategory `json:"busiest"`
	Counts        CategoryCounts   `json:"counts"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
}

// TimeSummary возвращает описание времени, зафиксированного в снимке
func (r *AnalysisResult) TimeSummary() string {
	return TimeSummary(r.TimeSelection)
}
