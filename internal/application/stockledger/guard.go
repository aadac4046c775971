package stockledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// Reintentos ante ErrConcurrencyConflict (lock timeout, serialización, deadlock).
// El bloqueo de fila es corto por construcción; más de 3 intentos es señal de problema.
const maxCommitAttempts = 3

// MovementGuardUseCase es el único punto de entrada que convierte una solicitud de
// movimiento en un cambio de estado durable y consistente: bloquea la fila de stock
// del producto, valida contra la proyección actual, hace append al ledger y actualiza
// la proyección en una sola transacción (Commit/Rollback vía TxRunner).
type MovementGuardUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	stockRepo   repository.CurrentStockRepository
	publisher   EventPublisher
	log         *logger.Logger
}

// NewMovementGuardUseCase construye el caso de uso. stockRepo va atado al pool y solo
// se usa para lecturas fuera de transacción; publisher puede ser el no-op.
func NewMovementGuardUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	stockRepo repository.CurrentStockRepository,
	publisher EventPublisher,
	log *logger.Logger,
) *MovementGuardUseCase {
	return &MovementGuardUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		stockRepo:   stockRepo,
		publisher:   publisher,
		log:         log,
	}
}

// ReceiptInput entrada para recepciones de compra y operaciones de venta.
// SourceID/SourceItemID enlazan con la orden upstream; el motor no valida su
// semántica de workflow, solo los persiste para trazabilidad.
type ReceiptInput struct {
	ProductID    int64
	SourceID     *int64
	SourceItemID *int64
	Quantity     decimal.Decimal
	MovementDate time.Time // cero = ahora
}

// ShipmentInput entrada para despachos de venta.
type ShipmentInput struct {
	ProductID       int64
	SourceID        *int64
	SourceItemID    *int64
	Quantity        decimal.Decimal
	FromReservation bool // true: consume la reserva; false: consume disponible
	MovementDate    time.Time
}

// AdjustmentInput entrada para ajustes manuales.
type AdjustmentInput struct {
	ProductID    int64
	Kind         entity.MovementKind // ADJUSTMENT_IN o ADJUSTMENT_OUT
	Quantity     decimal.Decimal
	MovementDate time.Time
}

// movementRequest solicitud interna ya clasificada; apply es la función de transición
// de la proyección que valida contra el estado actual y lo muta en memoria.
type movementRequest struct {
	productID    int64
	kind         entity.MovementKind
	source       entity.MovementSource
	sourceID     *int64
	sourceItemID *int64
	quantity     decimal.Decimal
	movementDate time.Time
	apply        func(stock *entity.CurrentStock, qty decimal.Decimal) error
}

// RecordPurchaseReceipt registra la recepción de una compra (entrada, nunca falla por stock).
func (uc *MovementGuardUseCase) RecordPurchaseReceipt(ctx context.Context, in ReceiptInput) (*entity.StockMovement, *entity.CurrentStock, error) {
	return uc.record(ctx, movementRequest{
		productID:    in.ProductID,
		kind:         entity.KindPurchaseReceipt,
		source:       entity.SourcePurchaseOrder,
		sourceID:     in.SourceID,
		sourceItemID: in.SourceItemID,
		quantity:     in.Quantity,
		movementDate: in.MovementDate,
		apply: func(stock *entity.CurrentStock, qty decimal.Decimal) error {
			return stock.ApplyReceipt(qty)
		},
	})
}

// RecordSaleReservation aparta disponible para una venta confirmada pero no despachada.
func (uc *MovementGuardUseCase) RecordSaleReservation(ctx context.Context, in ReceiptInput) (*entity.StockMovement, *entity.CurrentStock, error) {
	return uc.record(ctx, movementRequest{
		productID:    in.ProductID,
		kind:         entity.KindSaleShipment,
		source:       entity.SourceSalesOrder,
		sourceID:     in.SourceID,
		sourceItemID: in.SourceItemID,
		quantity:     in.Quantity,
		movementDate: in.MovementDate,
		apply: func(stock *entity.CurrentStock, qty decimal.Decimal) error {
			return stock.ApplyReservation(qty)
		},
	})
}

// ReleaseSaleReservation devuelve una reserva al disponible (orden cancelada o reducida).
func (uc *MovementGuardUseCase) ReleaseSaleReservation(ctx context.Context, in ReceiptInput) (*entity.StockMovement, *entity.CurrentStock, error) {
	return uc.record(ctx, movementRequest{
		productID:    in.ProductID,
		kind:         entity.KindSaleShipment,
		source:       entity.SourceSalesOrder,
		sourceID:     in.SourceID,
		sourceItemID: in.SourceItemID,
		quantity:     in.Quantity,
		movementDate: in.MovementDate,
		apply: func(stock *entity.CurrentStock, qty decimal.Decimal) error {
			return stock.ReleaseReservation(qty)
		},
	})
}

// RecordSaleShipment registra el despacho físico de una venta.
func (uc *MovementGuardUseCase) RecordSaleShipment(ctx context.Context, in ShipmentInput) (*entity.StockMovement, *entity.CurrentStock, error) {
	return uc.record(ctx, movementRequest{
		productID:    in.ProductID,
		kind:         entity.KindSaleShipment,
		source:       entity.SourceSalesOrder,
		sourceID:     in.SourceID,
		sourceItemID: in.SourceItemID,
		quantity:     in.Quantity,
		movementDate: in.MovementDate,
		apply: func(stock *entity.CurrentStock, qty decimal.Decimal) error {
			return stock.ApplyConsumption(qty, in.FromReservation)
		},
	})
}

// RecordAdjustment registra un ajuste manual. Solo admite ADJUSTMENT_IN/ADJUSTMENT_OUT;
// el ajuste de salida está limitado al disponible, el de entrada no.
func (uc *MovementGuardUseCase) RecordAdjustment(ctx context.Context, in AdjustmentInput) (*entity.StockMovement, *entity.CurrentStock, error) {
	var apply func(stock *entity.CurrentStock, qty decimal.Decimal) error
	switch in.Kind {
	case entity.KindAdjustmentIn:
		apply = func(stock *entity.CurrentStock, qty decimal.Decimal) error {
			return stock.ApplyReceipt(qty)
		}
	case entity.KindAdjustmentOut:
		apply = func(stock *entity.CurrentStock, qty decimal.Decimal) error {
			return stock.ApplyAdjustmentOut(qty)
		}
	default:
		return nil, nil, domain.ErrInvalidInput
	}
	return uc.record(ctx, movementRequest{
		productID:    in.ProductID,
		kind:         in.Kind,
		source:       entity.SourceAdjustment,
		quantity:     in.Quantity,
		movementDate: in.MovementDate,
		apply:        apply,
	})
}

// GetAvailableQuantity devuelve el disponible actual; 0 si el producto aún no tiene fila.
func (uc *MovementGuardUseCase) GetAvailableQuantity(ctx context.Context, productID int64) (decimal.Decimal, error) {
	stock, err := uc.stockRepo.Get(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	if stock == nil {
		return decimal.Zero, nil
	}
	return stock.Available, nil
}

// record ejecuta la unidad atómica fetch-lock / validate / append / update.
// Los rechazos de negocio ocurren antes de cualquier escritura durable y hacen
// rollback completo; ErrConcurrencyConflict se reintenta hasta maxCommitAttempts.
func (uc *MovementGuardUseCase) record(ctx context.Context, req movementRequest) (*entity.StockMovement, *entity.CurrentStock, error) {
	if err := entity.ValidateQuantity(req.quantity); err != nil {
		return nil, nil, err
	}

	exists, err := uc.productRepo.Exists(ctx, req.productID)
	if err != nil {
		return nil, nil, err
	}
	if !exists {
		return nil, nil, domain.ErrProductNotFound
	}

	if req.movementDate.IsZero() {
		req.movementDate = time.Now().UTC()
	}

	var (
		movement *entity.StockMovement
		snapshot *entity.CurrentStock
	)
	for attempt := 1; ; attempt++ {
		err = uc.txRunner.Run(ctx, func(
			movRepo repository.StockMovementRepository,
			stockRepo repository.CurrentStockRepository,
		) error {
			stock, err := stockRepo.GetForUpdate(ctx, req.productID)
			if err != nil {
				return err
			}
			// Validación y transición contra la proyección actual, ya bloqueada
			if err := req.apply(stock, req.quantity); err != nil {
				return err
			}
			now := time.Now().UTC()
			mov := &entity.StockMovement{
				ProductID:    req.productID,
				Kind:         req.kind,
				Source:       req.source,
				SourceID:     req.sourceID,
				SourceItemID: req.sourceItemID,
				Quantity:     req.quantity,
				MovementDate: req.movementDate,
				CreatedAt:    now,
			}
			if err := movRepo.Append(ctx, mov); err != nil {
				return err
			}
			stock.LastMovementID = &mov.MovementID
			stock.LastUpdated = now
			if err := stockRepo.Update(ctx, stock); err != nil {
				return err
			}
			movement = mov
			copied := *stock
			snapshot = &copied
			return nil
		})
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrConcurrencyConflict) && attempt < maxCommitAttempts {
			uc.log.Warn().
				Int64("product_id", req.productID).
				Int("attempt", attempt).
				Msg("conflicto de concurrencia en movimiento, reintentando")
			time.Sleep(time.Duration(attempt) * 25 * time.Millisecond)
			continue
		}
		return nil, nil, err
	}

	uc.publishRecorded(ctx, movement, snapshot)
	return movement, snapshot, nil
}

// publishRecorded emite el evento post-commit. Un fallo solo se loguea.
func (uc *MovementGuardUseCase) publishRecorded(ctx context.Context, mov *entity.StockMovement, stock *entity.CurrentStock) {
	if uc.publisher == nil {
		return
	}
	event := MovementEvent{
		EventID:      uuid.New().String(),
		Type:         "stock.movement.recorded",
		MovementID:   mov.MovementID,
		ProductID:    mov.ProductID,
		Kind:         string(mov.Kind),
		Source:       string(mov.Source),
		Quantity:     mov.Quantity,
		OnHand:       stock.OnHand,
		Reserved:     stock.Reserved,
		Available:    stock.Available,
		MovementDate: mov.MovementDate,
		OccurredAt:   time.Now().UTC(),
	}
	if err := uc.publisher.PublishMovementRecorded(ctx, event); err != nil {
		uc.log.Warn().
			Err(err).
			Int64("movement_id", mov.MovementID).
			Msg("no se pudo publicar el evento de movimiento")
	}
}
