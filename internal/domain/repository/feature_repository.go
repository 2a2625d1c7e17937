package repository

import (
	"context"

	"github.com/scoutscape/internal/domain"
)

// FeatureRepository - источник сырых объектов карты в пределах города
type FeatureRepository interface {
	// FetchFeatures выполняет один запрос и возвращает плоский список объектов
	// в детерминированном порядке (точки, линии, области; внутри - по id)
	FetchFeatures(ctx context.Context) ([]domain.RawFeature, error)
}
