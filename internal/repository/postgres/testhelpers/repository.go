package testhelpers

import (
	"github.com/jmoiron/sqlx"
	"github.com/scoutscape/internal/domain/repository"
	"github.com/scoutscape/internal/repository/postgres"
	"go.uber.org/zap"
)

// NewDBForTest creates a postgres.DB with test database and logger
func NewDBForTest(db *sqlx.DB, logger *zap.Logger) *postgres.DB {
	return postgres.NewDBForTest(db, logger)
}

// NewAnalysisRepositoryForTest creates an analysis repository with test database and logger
func NewAnalysisRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.AnalysisRepository {
	return postgres.NewAnalysisRepository(NewDBForTest(db, logger))
}
