package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/scoutscape/internal/pkg/utils"
	"github.com/scoutscape/internal/usecase"
	"github.com/scoutscape/internal/usecase/dto"
	"go.uber.org/zap"
)

// ScoutingHandler - категории, состояние набора объектов и агрегация без сессии
type ScoutingHandler struct {
	scoutingUC     *usecase.ScoutingUseCase
	logger         *zap.Logger
	refreshTimeout time.Duration
}

// NewScoutingHandler - создание нового ScoutingHandler
func NewScoutingHandler(scoutingUC *usecase.ScoutingUseCase, logger *zap.Logger, refreshTimeout time.Duration) *ScoutingHandler {
	return &ScoutingHandler{
		scoutingUC:     scoutingUC,
		logger:         logger,
		refreshTimeout: refreshTimeout,
	}
}

// GetCategories godoc
// @Summary Список категорий источников шума
// @Description Возвращает отслеживаемые категории в фиксированном порядке вместе с метаданными отображения
// @Tags Scouting
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.CategoriesResponse}
// @Router /api/v1/categories [get]
func (h *ScoutingHandler) GetCategories(c *fiber.Ctx) error {
	resp := dto.NewCategoriesResponse(h.scoutingUC.Catalog())
	return utils.SendSuccess(c, resp, &utils.Meta{Total: resp.Total})
}

// GetFeatureStatus godoc
// @Summary Состояние набора объектов
// @Description Показывает, загружен ли набор объектов карты, и сколько объектов попало в каждую категорию
// @Tags Scouting
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.FeatureStatusResponse}
// @Router /api/v1/features/status [get]
func (h *ScoutingHandler) GetFeatureStatus(c *fiber.Ctx) error {
	return utils.SendSuccess(c, h.scoutingUC.Status(), nil)
}

// RefreshFeatures godoc
// @Summary Перезагрузка объектов карты
// @Description Запускает фоновую загрузку объектов из Overpass. Текущий набор остаётся доступным до завершения загрузки.
// @Tags Scouting
// @Produce json
// @Success 202 {object} utils.SuccessResponse{data=dto.FeatureStatusResponse}
// @Router /api/v1/features/refresh [post]
func (h *ScoutingHandler) RefreshFeatures(c *fiber.Ctx) error {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.refreshTimeout)
		defer cancel()
		if _, err := h.scoutingUC.LoadFeatures(ctx); err != nil {
			h.logger.Warn("Feature refresh failed", zap.Error(err))
		}
	}()

	return c.Status(fiber.StatusAccepted).JSON(utils.SuccessResponse{Data: h.scoutingUC.Status()})
}

// Nearby godoc
// @Summary Объекты вокруг точки
// @Description Считает объекты каждой категории в радиусе и возвращает общий список, отсортированный по расстоянию. Скрытые слои не попадают в список, но учитываются в счётчиках.
// @Tags Scouting
// @Accept json
// @Produce json
// @Param request body dto.NearbyRequest true "Точка, радиус и видимость слоёв"
// @Success 200 {object} utils.SuccessResponse{data=dto.NearbyResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /api/v1/facilities/nearby [post]
func (h *ScoutingHandler) Nearby(c *fiber.Ctx) error {
	start := time.Now()

	var req dto.NearbyRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.scoutingUC.Nearby(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{
		Total:    result.Total,
		TimeMSec: float64(time.Since(start).Microseconds()) / 1000,
	})
}
