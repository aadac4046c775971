package stockledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados
// a esa transacción. Garantiza que append al ledger y update de la proyección sean
// una sola unidad atómica: o ambos quedan visibles, o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.CurrentStockRepository,
	) error) error
}

// MovementEvent evento publicado tras el commit de un movimiento aceptado.
type MovementEvent struct {
	EventID      string          `json:"event_id"`
	Type         string          `json:"type"`
	MovementID   int64           `json:"movement_id"`
	ProductID    int64           `json:"product_id"`
	Kind         string          `json:"movement_kind"`
	Source       string          `json:"movement_source"`
	Quantity     decimal.Decimal `json:"quantity"`
	OnHand       decimal.Decimal `json:"quantity_on_hand"`
	Reserved     decimal.Decimal `json:"quantity_reserved"`
	Available    decimal.Decimal `json:"quantity_available"`
	MovementDate time.Time       `json:"movement_date"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// EventPublisher notifica movimientos ya confirmados a consumidores externos.
// La publicación es post-commit y best-effort: un fallo no revierte el movimiento.
type EventPublisher interface {
	PublishMovementRecorded(ctx context.Context, event MovementEvent) error
}
