package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// StockFilter filtros de consulta de la proyección de stock.
type StockFilter struct {
	ProductIDs   []int64
	AvailableGte *decimal.Decimal
	AvailableLte *decimal.Decimal
	OnHandGte    *decimal.Decimal
	OnHandLte    *decimal.Decimal
	UpdatedAfter *time.Time
	Sort         string // product_id | quantity_on_hand | quantity_reserved | quantity_available | last_updated
	Page         int
	Size         int
}

// CurrentStockRepository puerto de la proyección de stock por producto.
// GetForUpdate solo tiene sentido dentro de una transacción (TxRunner).
type CurrentStockRepository interface {
	// Get devuelve nil, nil si el producto aún no tiene fila de stock.
	Get(ctx context.Context, productID int64) (*entity.CurrentStock, error)
	// GetForUpdate garantiza que la fila exista (en ceros si es nueva) y la bloquea
	// hasta el fin de la transacción. Serializa todos los movimientos del producto.
	GetForUpdate(ctx context.Context, productID int64) (*entity.CurrentStock, error)
	// Update escribe la fila ya bloqueada por GetForUpdate.
	Update(ctx context.Context, stock *entity.CurrentStock) error
	// List devuelve la página filtrada y el total.
	List(ctx context.Context, filter StockFilter) ([]*entity.CurrentStock, int64, error)
}
