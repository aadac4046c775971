package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// ProductRepository puerto del catálogo de productos. El motor de stock solo usa
// Exists antes de aceptar movimientos; el CRUD es la superficie mínima del colaborador.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	// GetByID devuelve nil, nil si el producto no existe.
	GetByID(ctx context.Context, productID int64) (*entity.Product, error)
	Exists(ctx context.Context, productID int64) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
}
