package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/scoutscape/internal/domain"
)

// AnalysisRepository - журнал аудита снимков анализа
type AnalysisRepository interface {
	// Save сохраняет снимок; повторное сохранение того же id - no-op
	Save(ctx context.Context, result *domain.AnalysisResult) error

	// GetByID возвращает снимок или errors.ErrAnalysisNotFound
	GetByID(ctx context.Context, id uuid.UUID) (*domain.AnalysisResult, error)

	// List возвращает последние снимки, новые первыми
	List(ctx context.Context, limit int) ([]*domain.AnalysisResult, error)
}
