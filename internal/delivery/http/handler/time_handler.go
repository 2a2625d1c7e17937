package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/scoutscape/internal/pkg/timeinput"
	"github.com/scoutscape/internal/pkg/utils"
	"github.com/scoutscape/internal/usecase/dto"
)

// NormalizeDuration godoc
// @Summary Нормализация длительности
// @Description Пустые, нечисловые и отрицательные значения считаются нулём.
// @Tags Time
// @Accept json
// @Produce json
// @Param request body dto.DurationRequest true "Дни и часы"
// @Success 200 {object} utils.SuccessResponse{data=dto.DurationResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/time/duration [post]
func NormalizeDuration(c *fiber.Ctx) error {
	var req dto.DurationRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	w := timeinput.ParseDuration(req.Days, req.Hours)
	return utils.SendSuccess(c, dto.DurationResponse{
		Days:       w.Days,
		Hours:      w.Hours,
		TotalHours: w.TotalHours(),
	}, nil)
}
