package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/scoutscape/internal/pkg/errors"
	"github.com/scoutscape/internal/pkg/validator"
)

// validate проверяет структуру и приводит ошибки валидатора к ErrInvalidRequest
func validate(req interface{}) error {
	if err := validator.Validate(req); err != nil {
		return errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"validation": err.Error(),
		})
	}
	return nil
}

// parseBody разбирает JSON-тело и валидирует его
func parseBody(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return errors.ErrInvalidRequest.WithMessage("Invalid request body")
	}
	return validate(req)
}

// sessionID извлекает идентификатор сессии из пути
func sessionID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, errors.ErrSessionNotFound
	}
	return id, nil
}
