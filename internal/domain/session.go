package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session - выбор пользователя: точка, радиус, время и видимость слоёв.
// Generation растёт при каждой смене точки или радиуса; результаты запросов,
// начатых при старом поколении, отбрасываются.
type Session struct {
	ID           uuid.UUID       `json:"id"`
	Point        *Point          `json:"point"`
	Radius       int             `json:"radius"`
	Hour         string          `json:"hour"`
	Minute       string          `json:"minute"`
	Period       string          `json:"period"`
	Visibility   Visibility      `json:"visibility"`
	Generation   uint64          `json:"generation"`
	LastAnalysis *AnalysisResult `json:"last_analysis"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// HasPoint сообщает, выбрана ли точка
func (s *Session) HasPoint() bool {
	return s.Point != nil
}
