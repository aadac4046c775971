package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/application/stockledger"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// CreateAdjustmentRequest body para POST /api/stock/movements (solo ajustes manuales).
type CreateAdjustmentRequest struct {
	ProductID    int64           `json:"product_id"`
	MovementKind string          `json:"movement_kind"` // ADJUSTMENT_IN | ADJUSTMENT_OUT
	Quantity     decimal.Decimal `json:"quantity"`
	MovementDate *time.Time      `json:"movement_date,omitempty"`
}

// RecordReceiptRequest body para POST /api/stock/receipts (adaptador de compras).
type RecordReceiptRequest struct {
	ProductID    int64           `json:"product_id"`
	SourceID     *int64          `json:"source_id,omitempty"`
	SourceItemID *int64          `json:"source_item_id,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	MovementDate *time.Time      `json:"movement_date,omitempty"`
}

// RecordShipmentRequest body para POST /api/stock/shipments (adaptador de ventas).
type RecordShipmentRequest struct {
	ProductID       int64           `json:"product_id"`
	SourceID        *int64          `json:"source_id,omitempty"`
	SourceItemID    *int64          `json:"source_item_id,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	FromReservation bool            `json:"from_reservation"`
	MovementDate    *time.Time      `json:"movement_date,omitempty"`
}

// StockMovementResponse representación de una entrada del ledger.
type StockMovementResponse struct {
	MovementID   int64           `json:"movement_id"`
	ProductID    int64           `json:"product_id"`
	MovementKind string          `json:"movement_kind"`
	Source       string          `json:"movement_source"`
	SourceID     *int64          `json:"source_id,omitempty"`
	SourceItemID *int64          `json:"source_item_id,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	MovementDate time.Time       `json:"movement_date"`
	CreatedAt    time.Time       `json:"created_at"`
}

// CurrentStockResponse snapshot de la proyección de un producto.
type CurrentStockResponse struct {
	ProductID      int64           `json:"product_id"`
	OnHand         decimal.Decimal `json:"quantity_on_hand"`
	Reserved       decimal.Decimal `json:"quantity_reserved"`
	Available      decimal.Decimal `json:"quantity_available"`
	LastMovementID *int64          `json:"last_movement_id,omitempty"`
	LastUpdated    time.Time       `json:"last_updated"`
}

// MovementResultResponse respuesta de toda operación del guard: el movimiento
// creado más el stock resultante.
type MovementResultResponse struct {
	Movement StockMovementResponse `json:"movement"`
	Stock    CurrentStockResponse  `json:"current_stock"`
}

// PageResponse envoltura paginada para listados.
type PageResponse[T any] struct {
	Content  []T                  `json:"content"`
	PageInfo stockledger.PageInfo `json:"page_info"`
}

// ToMovementResponse mapea la entidad del ledger al DTO.
func ToMovementResponse(m *entity.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		MovementID:   m.MovementID,
		ProductID:    m.ProductID,
		MovementKind: string(m.Kind),
		Source:       string(m.Source),
		SourceID:     m.SourceID,
		SourceItemID: m.SourceItemID,
		Quantity:     m.Quantity,
		MovementDate: m.MovementDate,
		CreatedAt:    m.CreatedAt,
	}
}

// ToCurrentStockResponse mapea la proyección al DTO.
func ToCurrentStockResponse(s *entity.CurrentStock) CurrentStockResponse {
	return CurrentStockResponse{
		ProductID:      s.ProductID,
		OnHand:         s.OnHand,
		Reserved:       s.Reserved,
		Available:      s.Available,
		LastMovementID: s.LastMovementID,
		LastUpdated:    s.LastUpdated,
	}
}

// ToMovementResult combina movimiento y snapshot en la respuesta del guard.
func ToMovementResult(m *entity.StockMovement, s *entity.CurrentStock) MovementResultResponse {
	return MovementResultResponse{
		Movement: ToMovementResponse(m),
		Stock:    ToCurrentStockResponse(s),
	}
}
