package stockledger

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// Paginación: límites compartidos por las consultas del ledger y de stock.
const (
	defaultPageSize = 20
	maxPageSize     = 200
)

// Campos de orden permitidos por consulta (lista cerrada, lo demás es ErrInvalidInput).
var (
	movementSortFields = map[string]bool{
		"movement_id":   true,
		"movement_date": true,
	}
	stockSortFields = map[string]bool{
		"product_id":         true,
		"quantity_on_hand":   true,
		"quantity_reserved":  true,
		"quantity_available": true,
		"last_updated":       true,
	}
)

// PageInfo metadatos de la página devuelta.
type PageInfo struct {
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
}

// StockQueryUseCase consultas de solo lectura sobre el ledger y la proyección.
type StockQueryUseCase struct {
	movRepo   repository.StockMovementRepository
	stockRepo repository.CurrentStockRepository
}

// NewStockQueryUseCase construye el caso de uso con repos atados al pool.
func NewStockQueryUseCase(movRepo repository.StockMovementRepository, stockRepo repository.CurrentStockRepository) *StockQueryUseCase {
	return &StockQueryUseCase{movRepo: movRepo, stockRepo: stockRepo}
}

// ListMovements devuelve una página del ledger según el filtro.
func (uc *StockQueryUseCase) ListMovements(ctx context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, PageInfo, error) {
	if err := normalizePage(&filter.Page, &filter.Size); err != nil {
		return nil, PageInfo{}, err
	}
	if err := normalizeSort(&filter.Sort, "movement_id", movementSortFields); err != nil {
		return nil, PageInfo{}, err
	}
	movements, total, err := uc.movRepo.List(ctx, filter)
	if err != nil {
		return nil, PageInfo{}, err
	}
	return movements, buildPageInfo(filter.Page, filter.Size, total), nil
}

// GetMovement busca un movimiento por ID.
func (uc *StockQueryUseCase) GetMovement(ctx context.Context, movementID int64) (*entity.StockMovement, error) {
	movement, err := uc.movRepo.GetByID(ctx, movementID)
	if err != nil {
		return nil, err
	}
	if movement == nil {
		return nil, domain.ErrMovementNotFound
	}
	return movement, nil
}

// ListCurrentStock devuelve una página de la proyección según el filtro.
func (uc *StockQueryUseCase) ListCurrentStock(ctx context.Context, filter repository.StockFilter) ([]*entity.CurrentStock, PageInfo, error) {
	if err := normalizePage(&filter.Page, &filter.Size); err != nil {
		return nil, PageInfo{}, err
	}
	if err := normalizeSort(&filter.Sort, "product_id", stockSortFields); err != nil {
		return nil, PageInfo{}, err
	}
	stocks, total, err := uc.stockRepo.List(ctx, filter)
	if err != nil {
		return nil, PageInfo{}, err
	}
	return stocks, buildPageInfo(filter.Page, filter.Size, total), nil
}

func normalizePage(page, size *int) error {
	if *page < 0 || *size < 0 {
		return domain.ErrInvalidInput
	}
	if *size == 0 {
		*size = defaultPageSize
	}
	if *size > maxPageSize {
		return domain.ErrInvalidInput
	}
	return nil
}

// normalizeSort valida el campo contra la lista permitida; admite prefijo "-" (descendente).
func normalizeSort(sort *string, def string, allowed map[string]bool) error {
	if *sort == "" {
		*sort = def
		return nil
	}
	field := *sort
	if field[0] == '-' {
		field = field[1:]
	}
	if !allowed[field] {
		return domain.ErrInvalidInput
	}
	return nil
}

func buildPageInfo(page, size int, total int64) PageInfo {
	totalPages := int((total + int64(size) - 1) / int64(size))
	return PageInfo{Page: page, Size: size, TotalElements: total, TotalPages: totalPages}
}
