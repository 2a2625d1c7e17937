package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/scoutscape/internal/domain"
	"github.com/scoutscape/internal/pkg/errors"
	"github.com/scoutscape/internal/pkg/utils"
	"github.com/scoutscape/internal/usecase"
	"github.com/scoutscape/internal/usecase/dto"
	"go.uber.org/zap"
)

// GeocodeHandler - поиск адресов и обратное геокодирование
type GeocodeHandler struct {
	geocodeUC *usecase.GeocodeUseCase
	logger    *zap.Logger
}

// NewGeocodeHandler - создание нового GeocodeHandler
func NewGeocodeHandler(geocodeUC *usecase.GeocodeUseCase, logger *zap.Logger) *GeocodeHandler {
	return &GeocodeHandler{
		geocodeUC: geocodeUC,
		logger:    logger,
	}
}

// Search godoc
// @Summary Поиск адреса
// @Description Ищет адрес или место в пределах города. Результат за границей города отклоняется.
// @Tags Geocode
// @Produce json
// @Param q query string true "Адрес или название места"
// @Success 200 {object} utils.SuccessResponse{data=dto.GeocodeResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /api/v1/geocode/search [get]
func (h *GeocodeHandler) Search(c *fiber.Ctx) error {
	req := dto.GeocodeSearchRequest{Query: c.Query("q")}
	if err := validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.geocodeUC.Search(c.Context(), req.Query)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result, nil)
}

// Reverse godoc
// @Summary Обратное геокодирование
// @Description Возвращает адрес для координат. Если адрес не найден, возвращается "Address not available".
// @Tags Geocode
// @Produce json
// @Param lat query number true "Широта"
// @Param lon query number true "Долгота"
// @Success 200 {object} utils.SuccessResponse{data=dto.ReverseGeocodeResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/geocode/reverse [get]
func (h *GeocodeHandler) Reverse(c *fiber.Ctx) error {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		return utils.SendError(c, errors.ErrInvalidCoordinates.WithMessage("Invalid latitude"))
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		return utils.SendError(c, errors.ErrInvalidCoordinates.WithMessage("Invalid longitude"))
	}

	req := dto.ReverseGeocodeRequest{Lat: lat, Lon: lon}
	if err := validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.geocodeUC.Reverse(c.Context(), domain.Point{Lat: req.Lat, Lon: req.Lon})
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result, nil)
}
