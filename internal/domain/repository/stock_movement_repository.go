package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// MovementFilter filtros de consulta del ledger. Todos los campos son opcionales.
type MovementFilter struct {
	ProductIDs      []int64
	Kind            *entity.MovementKind
	Source          *entity.MovementSource
	SourceID        *int64
	SourceItemID    *int64
	MovementDateGte *time.Time
	MovementDateLte *time.Time
	Sort            string // movement_id | movement_date; prefijo "-" para descendente
	Page            int
	Size            int
}

// StockMovementRepository puerto de persistencia del ledger. Solo append y lectura:
// no existe update ni delete por diseño, las correcciones son movimientos nuevos.
type StockMovementRepository interface {
	// Append persiste el movimiento y asigna MovementID y CreatedAt.
	Append(ctx context.Context, movement *entity.StockMovement) error
	// GetByID devuelve nil, nil si el movimiento no existe.
	GetByID(ctx context.Context, movementID int64) (*entity.StockMovement, error)
	// List devuelve la página filtrada y el total de filas que cumplen el filtro.
	List(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, int64, error)
}
