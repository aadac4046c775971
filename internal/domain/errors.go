package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Toda operación del motor devuelve exactamente uno de estos valores o un error
// de infraestructura envuelto; nunca se usan panics ni excepciones como control de flujo.
var (
	ErrProductNotFound     = errors.New("producto no encontrado")
	ErrMovementNotFound    = errors.New("movimiento no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrInvalidQuantity     = errors.New("cantidad inválida")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia sobre la fila de stock")
	ErrDuplicate           = errors.New("recurso duplicado")
)
