package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
)

// mapDomainError traduce errores de dominio a respuestas HTTP. Cada kind tiene un
// código estable para que los adaptadores upstream decidan si reintentar.
func mapDomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return respondError(c, fiber.StatusNotFound, "PRODUCT_NOT_FOUND", "producto no encontrado")
	case errors.Is(err, domain.ErrMovementNotFound):
		return respondError(c, fiber.StatusNotFound, "MOVEMENT_NOT_FOUND", "movimiento no encontrado")
	case errors.Is(err, domain.ErrInvalidQuantity):
		return respondError(c, fiber.StatusBadRequest, "INVALID_QUANTITY", "cantidad inválida: debe ser positiva con máximo 3 decimales")
	case errors.Is(err, domain.ErrInvalidInput):
		return respondError(c, fiber.StatusBadRequest, "VALIDATION", "datos inválidos")
	case errors.Is(err, domain.ErrInsufficientStock):
		return respondError(c, fiber.StatusConflict, "INSUFFICIENT_STOCK", "stock insuficiente")
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return respondError(c, fiber.StatusConflict, "CONCURRENCY_CONFLICT", "conflicto de concurrencia, reintentar")
	case errors.Is(err, domain.ErrDuplicate):
		return respondError(c, fiber.StatusConflict, "DUPLICATE", "recurso duplicado")
	default:
		return respondError(c, fiber.StatusInternalServerError, "INTERNAL", err.Error())
	}
}

func respondError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: message})
}
