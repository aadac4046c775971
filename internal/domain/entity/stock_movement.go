package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
)

// MovementKind categoría de un movimiento. La dirección (entrada/salida) la define
// el kind, nunca el signo de la cantidad.
type MovementKind string

// MovementSource proceso upstream que originó el movimiento.
type MovementSource string

const (
	KindPurchaseReceipt MovementKind = "PURCHASE_RECEIPT" // entrada por recepción de compra
	KindSaleShipment    MovementKind = "SALE_SHIPMENT"    // reserva/despacho de venta
	KindAdjustmentIn    MovementKind = "ADJUSTMENT_IN"    // ajuste manual de entrada
	KindAdjustmentOut   MovementKind = "ADJUSTMENT_OUT"   // ajuste manual de salida

	SourcePurchaseOrder MovementSource = "PURCHASE_ORDER"
	SourceSalesOrder    MovementSource = "SALES_ORDER"
	SourceAdjustment    MovementSource = "ADJUSTMENT"
)

// ParseMovementKind valida un kind recibido como string (ej. desde HTTP).
func ParseMovementKind(s string) (MovementKind, error) {
	switch MovementKind(s) {
	case KindPurchaseReceipt, KindSaleShipment, KindAdjustmentIn, KindAdjustmentOut:
		return MovementKind(s), nil
	}
	return "", domain.ErrInvalidInput
}

// ParseMovementSource valida un source recibido como string.
func ParseMovementSource(s string) (MovementSource, error) {
	switch MovementSource(s) {
	case SourcePurchaseOrder, SourceSalesOrder, SourceAdjustment:
		return MovementSource(s), nil
	}
	return "", domain.ErrInvalidInput
}

// Inbound indica si el kind suma a quantity_on_hand.
func (k MovementKind) Inbound() bool {
	return k == KindPurchaseReceipt || k == KindAdjustmentIn
}

// Límites de precisión de cantidades: NUMERIC(12,3) -> máx 9 dígitos enteros y 3 decimales.
const (
	quantityMaxIntegerDigits  = 9
	quantityMaxFractionDigits = 3
)

var quantityMax = decimal.New(1, quantityMaxIntegerDigits) // 10^9, exclusivo

// ValidateQuantity verifica que una cantidad sea estrictamente positiva y quepa
// en la escala fija del ledger. Cero, negativos o más de 3 decimales se rechazan.
func ValidateQuantity(q decimal.Decimal) error {
	if !q.IsPositive() {
		return domain.ErrInvalidQuantity
	}
	if q.Exponent() < -quantityMaxFractionDigits {
		return domain.ErrInvalidQuantity
	}
	if q.GreaterThanOrEqual(quantityMax) {
		return domain.ErrInvalidQuantity
	}
	return nil
}

// StockMovement entrada inmutable del ledger: un cambio de cantidad para un producto.
// Una vez persistido nunca se edita ni se borra; las correcciones son movimientos nuevos.
type StockMovement struct {
	MovementID   int64
	ProductID    int64
	Kind         MovementKind
	Source       MovementSource
	SourceID     *int64 // orden upstream (opcional, solo trazabilidad)
	SourceItemID *int64 // línea de la orden upstream (opcional)
	Quantity     decimal.Decimal
	MovementDate time.Time // fecha efectiva de negocio
	CreatedAt    time.Time // fecha de append al ledger
}
