package usecase

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// ProductUseCase superficie mínima del catálogo. Las cantidades nunca se tocan aquí:
// todo cambio de stock pasa por el guard de movimientos.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create registra un producto nuevo en el catálogo.
func (uc *ProductUseCase) Create(ctx context.Context, name, sku string) (*entity.Product, error) {
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	product := &entity.Product{
		Name:      name,
		SKU:       sku,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetByID busca un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, productID int64) (*entity.Product, error) {
	product, err := uc.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	return product, nil
}

// List devuelve productos paginados por limit/offset.
func (uc *ProductUseCase) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return uc.repo.List(ctx, limit, offset)
}
