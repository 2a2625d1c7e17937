package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/scoutscape/internal/domain"
	"github.com/scoutscape/internal/domain/repository"
	"github.com/scoutscape/internal/pkg/errors"
	"go.uber.org/zap"
)

const maxListLimit = 100

type analysisRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewAnalysisRepository(db *DB) repository.AnalysisRepository {
	return &analysisRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

// analysisRow - строка таблицы analyses; вложенные структуры хранятся в jsonb
type analysisRow struct {
	ID            uuid.UUID `db:"id"`
	Lat           float64   `db:"lat"`
	Lon           float64   `db:"lon"`
	RadiusM       int       `db:"radius_m"`
	Total         int       `db:"total"`
	TimeSelection []byte    `db:"time_selection"`
	Busiest       []byte    `db:"busiest"`
	Counts        []byte    `db:"counts"`
	CreatedAt     time.Time `db:"created_at"`
}

func toRow(r *domain.AnalysisResult) (*analysisRow, error) {
	counts, err := json.Marshal(r.Counts)
	if err != nil {
		return nil, fmt.Errorf("marshal counts: %w", err)
	}
	row := &analysisRow{
		ID:        r.ID,
		Lat:       r.Point.Lat,
		Lon:       r.Point.Lon,
		RadiusM:   r.Radius,
		Total:     r.Total,
		Counts:    counts,
		CreatedAt: r.CreatedAt,
	}
	if r.TimeSelection != nil {
		if row.TimeSelection, err = json.Marshal(r.TimeSelection); err != nil {
			return nil, fmt.Errorf("marshal time selection: %w", err)
		}
	}
	if r.Busiest != nil {
		if row.Busiest, err = json.Marshal(r.Busiest); err != nil {
			return nil, fmt.Errorf("marshal busiest: %w", err)
		}
	}
	return row, nil
}

func (row *analysisRow) toDomain() (*domain.AnalysisResult, error) {
	r := &domain.AnalysisResult{
		ID:        row.ID,
		Point:     domain.Point{Lat: row.Lat, Lon: row.Lon},
		Total:     row.Total,
		Radius:    row.RadiusM,
		CreatedAt: row.CreatedAt.UTC(),
	}
	if err := json.Unmarshal(row.Counts, &r.Counts); err != nil {
		return nil, fmt.Errorf("unmarshal counts: %w", err)
	}
	if len(row.TimeSelection) > 0 {
		r.TimeSelection = &domain.TimeSelection{}
		if err := json.Unmarshal(row.TimeSelection, r.TimeSelection); err != nil {
			return nil, fmt.Errorf("unmarshal time selection: %w", err)
		}
	}
	if len(row.Busiest) > 0 {
		r.Busiest = &domain.BusiestCategory{}
		if err := json.Unmarshal(row.Busiest, r.Busiest); err != nil {
			return nil, fmt.Errorf("unmarshal busiest: %w", err)
		}
	}
	return r, nil
}

func (r *analysisRepository) Save(ctx context.Context, result *domain.AnalysisResult) error {
	row, err := toRow(result)
	if err != nil {
		r.logger.Error("Failed to encode analysis", zap.String("id", result.ID.String()), zap.Error(err))
		return errors.ErrDatabaseError
	}

	query := `
		INSERT INTO analyses (id, lat, lon, radius_m, total, time_selection, busiest, counts, created_at)
		VALUES (:id, :lat, :lon, :radius_m, :total, :time_selection, :busiest, :counts, :created_at)
		ON CONFLICT (id) DO NOTHING
	`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		r.logger.Error("Failed to save analysis", zap.String("id", result.ID.String()), zap.Error(err))
		return errors.ErrDatabaseError
	}

	return nil
}

func (r *analysisRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.AnalysisResult, error) {
	query := `
		SELECT id, lat, lon, radius_m, total, time_selection, busiest, counts, created_at
		FROM analyses
		WHERE id = $1
	`

	var row analysisRow
	err := r.db.GetContext(ctx, &row, query, id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.ErrAnalysisNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get analysis by ID", zap.String("id", id.String()), zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	result, err := row.toDomain()
	if err != nil {
		r.logger.Error("Failed to decode analysis", zap.String("id", id.String()), zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	return result, nil
}

func (r *analysisRepository) List(ctx context.Context, limit int) ([]*domain.AnalysisResult, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	query := `
		SELECT id, lat, lon, radius_m, total, time_selection, busiest, counts, created_at
		FROM analyses
		ORDER BY created_at DESC, id
		LIMIT $1
	`

	var rows []analysisRow
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		r.logger.Error("Failed to list analyses", zap.Int("limit", limit), zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	results := make([]*domain.AnalysisResult, 0, len(rows))
	for i := range rows {
		res, err := rows[i].toDomain()
		if err != nil {
			r.logger.Warn("Skipping undecodable analysis row", zap.String("id", rows[i].ID.String()), zap.Error(err))
			continue
		}
		results = append(results, res)
	}
	return results, nil
}
