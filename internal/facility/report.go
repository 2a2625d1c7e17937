package facility

import (
	"time"

	"github.com/google/uuid"
	"github.com/scoutscape/internal/domain"
)

// Busiest возвращает категорию со строго наибольшим ненулевым счётчиком.
// При равенстве побеждает категория, стоящая раньше в каталоге. Все нули - nil.
func Busiest(counts domain.CategoryCounts, catalog *domain.CategoryCatalog) *domain.BusiestCategory {
	var best *domain.BusiestCategory
	for _, meta := range catalog.Items() {
		n := counts[meta.Key]
		if n <= 0 {
			continue
		}
		if best == nil || n > best.Count {
			best = &domain.BusiestCategory{Key: meta.Key, Label: meta.Label, Count: n}
		}
	}
	return best
}

// Compose фиксирует снимок анализа: радиус и время копируются, чтобы последующие изменения их не затронули
func Compose(agg domain.Aggregation, catalog *domain.CategoryCatalog, point domain.Point, radius int, sel *domain.TimeSelection, now time.Time) domain.AnalysisResult {
	counts := make(domain.CategoryCounts, len(agg.Counts))
	for k, v := range agg.Counts {
		counts[k] = v
	}

	var frozen *domain.TimeSelection
	if sel != nil {
		cp := *sel
		frozen = &cp
	}

	return domain.AnalysisResult{
		ID:            uuid.New(),
		Point:         point,
		Total:         counts.Total(),
		Radius:        radius,
		TimeSelection: frozen,
		Busiest:       Busiest(counts, catalog),
		Counts:        counts,
		CreatedAt:     now.UTC(),
	}
}

// Top возвращает первые n объектов списка; n <= 0 - весь список
func Top(facilities []domain.NearbyFacility, n int) []domain.NearbyFacility {
	if n <= 0 || n >= len(facilities) {
		return facilities
	}
	return facilities[:n]
}
