package memory

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/application/stockledger"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ stockledger.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta la unidad atómica contra el Store. El mutex del Store linealiza
// las transacciones; las escrituras se acumulan en un staging y se aplican solo
// si fn devuelve nil.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// tx estado provisional de una transacción en curso.
type tx struct {
	store          *Store
	stagedMoves    []*entity.StockMovement
	stagedStocks   map[int64]*entity.CurrentStock
	movementIDBase int64
}

// Run bloquea el store, ejecuta fn sobre repos transaccionales y confirma o descarta.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	stockRepo repository.CurrentStockRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	t := &tx{
		store:          r.store,
		stagedStocks:   make(map[int64]*entity.CurrentStock),
		movementIDBase: r.store.nextMovementID,
	}
	if err := fn(&txMovementRepo{t}, &txStockRepo{t}); err != nil {
		return err
	}

	// Commit: volcar staging al estado compartido
	for _, m := range t.stagedMoves {
		r.store.movements = append(r.store.movements, m)
	}
	r.store.nextMovementID = t.movementIDBase + int64(len(t.stagedMoves))
	for id, st := range t.stagedStocks {
		r.store.stocks[id] = st
	}
	return nil
}

// txMovementRepo ledger atado a la transacción (solo append y lectura de staging).
type txMovementRepo struct {
	t *tx
}

func (r *txMovementRepo) Append(_ context.Context, m *entity.StockMovement) error {
	m.MovementID = r.t.movementIDBase + int64(len(r.t.stagedMoves))
	r.t.stagedMoves = append(r.t.stagedMoves, m)
	return nil
}

func (r *txMovementRepo) GetByID(_ context.Context, movementID int64) (*entity.StockMovement, error) {
	if m := findMovement(r.t.stagedMoves, movementID); m != nil {
		return m, nil
	}
	return findMovement(r.t.store.movements, movementID), nil
}

func (r *txMovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, int64, error) {
	all := append(append([]*entity.StockMovement{}, r.t.store.movements...), r.t.stagedMoves...)
	list, total := filterMovements(all, f)
	return list, total, nil
}

// txStockRepo proyección atada a la transacción.
type txStockRepo struct {
	t *tx
}

func (r *txStockRepo) Get(_ context.Context, productID int64) (*entity.CurrentStock, error) {
	if st, ok := r.t.stagedStocks[productID]; ok {
		return cloneStock(st), nil
	}
	if st, ok := r.t.store.stocks[productID]; ok {
		return cloneStock(st), nil
	}
	return nil, nil
}

// GetForUpdate crea la fila en ceros en staging si no existe; al estar el store
// bloqueado durante toda la transacción, la fila queda serializada igual que con
// SELECT FOR UPDATE.
func (r *txStockRepo) GetForUpdate(_ context.Context, productID int64) (*entity.CurrentStock, error) {
	if st, ok := r.t.stagedStocks[productID]; ok {
		return cloneStock(st), nil
	}
	if st, ok := r.t.store.stocks[productID]; ok {
		return cloneStock(st), nil
	}
	return entity.NewCurrentStock(productID), nil
}

func (r *txStockRepo) Update(_ context.Context, s *entity.CurrentStock) error {
	r.t.stagedStocks[s.ProductID] = cloneStock(s)
	return nil
}

func (r *txStockRepo) List(_ context.Context, f repository.StockFilter) ([]*entity.CurrentStock, int64, error) {
	merged := make(map[int64]*entity.CurrentStock, len(r.t.store.stocks))
	for id, st := range r.t.store.stocks {
		merged[id] = st
	}
	for id, st := range r.t.stagedStocks {
		merged[id] = st
	}
	list, total := filterStocks(merged, f)
	return list, total, nil
}

func findMovement(movements []*entity.StockMovement, movementID int64) *entity.StockMovement {
	for _, m := range movements {
		if m.MovementID == movementID {
			c := *m
			return &c
		}
	}
	return nil
}
