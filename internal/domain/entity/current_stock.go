package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
)

// CurrentStock proyección mutable del ledger: una fila por producto con las cantidades
// actuales. Se crea de forma perezosa con el primer movimiento aceptado y nunca se borra.
// Invariantes en toda transición: OnHand >= 0, Reserved >= 0, Available = OnHand - Reserved >= 0.
type CurrentStock struct {
	ProductID      int64
	OnHand         decimal.Decimal
	Reserved       decimal.Decimal
	Available      decimal.Decimal
	LastMovementID *int64 // referencia débil al último movimiento aplicado (solo auditoría)
	LastUpdated    time.Time
}

// NewCurrentStock crea la proyección en ceros para un producto.
func NewCurrentStock(productID int64) *CurrentStock {
	return &CurrentStock{
		ProductID: productID,
		OnHand:    decimal.Zero,
		Reserved:  decimal.Zero,
		Available: decimal.Zero,
	}
}

// recompute mantiene Available = OnHand - Reserved tras cada transición.
func (s *CurrentStock) recompute() {
	s.Available = s.OnHand.Sub(s.Reserved)
}

// ApplyReceipt suma una entrada a OnHand. Una entrada nunca viola la no-negatividad.
func (s *CurrentStock) ApplyReceipt(qty decimal.Decimal) error {
	s.OnHand = s.OnHand.Add(qty)
	s.recompute()
	return nil
}

// ApplyReservation aparta cantidad disponible para un despacho futuro.
func (s *CurrentStock) ApplyReservation(qty decimal.Decimal) error {
	if qty.GreaterThan(s.Available) {
		return domain.ErrInsufficientStock
	}
	s.Reserved = s.Reserved.Add(qty)
	s.recompute()
	return nil
}

// ReleaseReservation devuelve cantidad reservada al disponible (ej. orden cancelada).
func (s *CurrentStock) ReleaseReservation(qty decimal.Decimal) error {
	if qty.GreaterThan(s.Reserved) {
		return domain.ErrInsufficientStock
	}
	s.Reserved = s.Reserved.Sub(qty)
	s.recompute()
	return nil
}

// ApplyConsumption descuenta un despacho de OnHand. Con fromReservation el despacho
// consume la reserva; sin ella consume directamente del disponible.
func (s *CurrentStock) ApplyConsumption(qty decimal.Decimal, fromReservation bool) error {
	if fromReservation {
		if qty.GreaterThan(s.Reserved) {
			return domain.ErrInsufficientStock
		}
		s.Reserved = s.Reserved.Sub(qty)
	} else if qty.GreaterThan(s.Available) {
		return domain.ErrInsufficientStock
	}
	s.OnHand = s.OnHand.Sub(qty)
	s.recompute()
	return nil
}

// ApplyAdjustmentOut descuenta un ajuste manual de salida, limitado al disponible.
func (s *CurrentStock) ApplyAdjustmentOut(qty decimal.Decimal) error {
	if qty.GreaterThan(s.Available) {
		return domain.ErrInsufficientStock
	}
	s.OnHand = s.OnHand.Sub(qty)
	s.recompute()
	return nil
}
