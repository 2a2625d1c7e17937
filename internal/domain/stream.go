package domain

import "github.com/google/uuid"

// Stream names (должны совпадать с потребителями отчётов)
const (
	StreamAnalysisRequest = "stream:scout:analysis:request"
	StreamAnalysisDone    = "stream:scout:analysis:done"
)

// AnalysisRequestEvent - входящее событие на анализ точки
type AnalysisRequestEvent struct {
	RequestID uuid.UUID `json:"request_id"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	RadiusM   int       `json:"radius_m"`
	Hour      string    `json:"hour,omitempty"`
	Minute    string    `json:"minute,omitempty"`
	Period    string    `json:"period,omitempty"`
}

// HasTimeInput проверяет, ввёл ли пользователь хоть что-то в поля времени
func (e *AnalysisRequestEvent) HasTimeInput() bool {
	return e.Hour != "" || e.Minute != ""
}

// AnalysisDoneEvent - результат анализа для потребителей отчётов и генерации текста
type AnalysisDoneEvent struct {
	RequestID   uuid.UUID       `json:"request_id"`
	Result      *AnalysisResult `json:"result,omitempty"`
	TimeSummary string          `json:"time_summary,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
