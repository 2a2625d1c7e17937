package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/scoutscape/internal/pkg/errors"
	"github.com/scoutscape/internal/pkg/utils"
	"github.com/scoutscape/internal/usecase"
	"github.com/scoutscape/internal/usecase/dto"
	"go.uber.org/zap"
)

// AnalysisHandler - чтение сохранённых анализов
type AnalysisHandler struct {
	analysisUC *usecase.AnalysisUseCase
	logger     *zap.Logger
}

// NewAnalysisHandler - создание нового AnalysisHandler
func NewAnalysisHandler(analysisUC *usecase.AnalysisUseCase, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analysisUC: analysisUC,
		logger:     logger,
	}
}

// GetAnalysis godoc
// @Summary Сохранённый анализ
// @Tags Analyses
// @Produce json
// @Param id path string true "ID анализа"
// @Success 200 {object} utils.SuccessResponse{data=dto.AnalysisResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/analyses/{id} [get]
func (h *AnalysisHandler) GetAnalysis(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.SendError(c, errors.ErrAnalysisNotFound)
	}

	result, err := h.analysisUC.Get(c.Context(), id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result, nil)
}

// ListAnalyses godoc
// @Summary Последние анализы
// @Tags Analyses
// @Produce json
// @Param limit query int false "Количество записей" default(20)
// @Success 200 {object} utils.SuccessResponse{data=dto.AnalysisListResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/analyses [get]
func (h *AnalysisHandler) ListAnalyses(c *fiber.Ctx) error {
	req := dto.ListAnalysesRequest{Limit: c.QueryInt("limit", 20)}
	if err := validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.analysisUC.List(c.Context(), req.Limit)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result, &utils.Meta{Total: result.Total, Limit: req.Limit})
}
