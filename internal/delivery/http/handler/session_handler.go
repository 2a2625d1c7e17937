package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/scoutscape/internal/domain"
	"github.com/scoutscape/internal/pkg/utils"
	"github.com/scoutscape/internal/usecase"
	"github.com/scoutscape/internal/usecase/dto"
	"go.uber.org/zap"
)

// SessionHandler - обработчик сессий разведки
type SessionHandler struct {
	sessionUC *usecase.SessionUseCase
	logger    *zap.Logger
}

// NewSessionHandler - создание нового SessionHandler
func NewSessionHandler(sessionUC *usecase.SessionUseCase, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessionUC: sessionUC,
		logger:    logger,
	}
}

// CreateSession godoc
// @Summary Создание сессии разведки
// @Tags Sessions
// @Accept json
// @Produce json
// @Param request body dto.CreateSessionRequest false "Начальный радиус"
// @Success 201 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/sessions [post]
func (h *SessionHandler) CreateSession(c *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return utils.SendError(c, err)
		}
	}

	resp, err := h.sessionUC.Create(req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendCreated(c, resp)
}

// GetSession godoc
// @Summary Состояние сессии
// @Tags Sessions
// @Produce json
// @Param id path string true "ID сессии"
// @Success 200 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id} [get]
func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	resp, err := h.sessionUC.Get(id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, resp, nil)
}

// SetPoint godoc
// @Summary Выбор точки разведки
// @Description Точка вне границ города отклоняется. Новая точка сбрасывает последний анализ и отменяет незавершённые запросы погоды и трафика.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "ID сессии"
// @Param request body dto.SetPointRequest true "Координаты"
// @Success 200 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/point [put]
func (h *SessionHandler) SetPoint(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.SetPointRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	resp, err := h.sessionUC.SetPoint(id, req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, resp, nil)
}

// SetRadius godoc
// @Summary Изменение радиуса
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "ID сессии"
// @Param request body dto.SetRadiusRequest true "Радиус в метрах"
// @Success 200 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/radius [put]
func (h *SessionHandler) SetRadius(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.SetRadiusRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	resp, err := h.sessionUC.SetRadius(id, req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, resp, nil)
}

// SetTime godoc
// @Summary Ввод времени
// @Description Сохраняет поля часа, минут и AM/PM как есть. Некорректный ввод отмечается флагом invalid, пустые поля означают отсутствие ограничения.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "ID сессии"
// @Param request body dto.SetTimeRequest true "Поля времени"
// @Success 200 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Router /api/v1/sessions/{id}/time [put]
func (h *SessionHandler) SetTime(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.SetTimeRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	resp, err := h.sessionUC.SetTime(id, req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, resp, nil)
}

// SetLayer godoc
// @Summary Видимость слоя категории
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "ID сессии"
// @Param category path string true "Ключ категории"
// @Param request body dto.SetLayerRequest true "Видимость"
// @Success 200 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Router /api/v1/sessions/{id}/layers/{category} [put]
func (h *SessionHandler) SetLayer(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.SetLayerRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	resp, err := h.sessionUC.SetLayer(id, domain.Category(c.Params("category")), req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, resp, nil)
}

// GetFacilities godoc
// @Summary Объекты вокруг точки сессии
// @Tags Sessions
// @Produce json
// @Param id path string true "ID сессии"
// @Param top query int false "Размер короткого списка" default(20)
// @Success 200 {object} utils.SuccessResponse{data=dto.NearbyResponse}
// @Router /api/v1/sessions/{id}/facilities [get]
func (h *SessionHandler) GetFacilities(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	resp, err := h.sessionUC.Facilities(id, c.QueryInt("top", 20))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, resp, &utils.Meta{Total: resp.Total})
}

// GetConditions godoc
// @Summary Погода и трафик в точке сессии
// @Description Если точка или радиус изменились во время запроса, результат отбрасывается с кодом 409.
// @Tags Sessions
// @Produce json
// @Param id path string true "ID сессии"
// @Success 200 {object} utils.SuccessResponse{data=dto.ConditionsResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/conditions [get]
func (h *SessionHandler) GetConditions(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	resp, err := h.sessionUC.Conditions(c.Context(), id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, resp, nil)
}

// Analyze godoc
// @Summary Анализ точки
// @Description Фиксирует снимок: общее число объектов, радиус, время и самую многочисленную категорию. Снимок сохраняется и публикуется в стрим готовых анализов.
// @Tags Sessions
// @Produce json
// @Param id path string true "ID сессии"
// @Success 201 {object} utils.SuccessResponse{data=dto.AnalysisResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/analyze [post]
func (h *SessionHandler) Analyze(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	resp, err := h.sessionUC.Analyze(c.Context(), id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendCreated(c, resp)
}
