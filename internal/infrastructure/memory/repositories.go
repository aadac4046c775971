package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var (
	_ repository.StockMovementRepository = (*MovementRepo)(nil)
	_ repository.CurrentStockRepository  = (*StockRepo)(nil)
	_ repository.ProductRepository       = (*ProductRepo)(nil)
)

// MovementRepo ledger fuera de transacción (equivalente al repo atado al pool).
type MovementRepo struct {
	store *Store
}

// NewMovementRepository construye el adaptador de lectura del ledger.
func NewMovementRepository(store *Store) *MovementRepo {
	return &MovementRepo{store: store}
}

// Append persiste el movimiento como unidad propia (autocommit).
func (r *MovementRepo) Append(_ context.Context, m *entity.StockMovement) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m.MovementID = r.store.nextMovementID
	r.store.nextMovementID++
	r.store.movements = append(r.store.movements, m)
	return nil
}

func (r *MovementRepo) GetByID(_ context.Context, movementID int64) (*entity.StockMovement, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return findMovement(r.store.movements, movementID), nil
}

func (r *MovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	list, total := filterMovements(r.store.movements, f)
	return list, total, nil
}

// StockRepo proyección fuera de transacción.
type StockRepo struct {
	store *Store
}

// NewStockRepository construye el adaptador de lectura de la proyección.
func NewStockRepository(store *Store) *StockRepo {
	return &StockRepo{store: store}
}

func (r *StockRepo) Get(_ context.Context, productID int64) (*entity.CurrentStock, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if st, ok := r.store.stocks[productID]; ok {
		return cloneStock(st), nil
	}
	return nil, nil
}

// GetForUpdate fuera de transacción no adquiere ningún bloqueo duradero; el guard
// siempre lo invoca vía TxRunner.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID int64) (*entity.CurrentStock, error) {
	st, err := r.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return entity.NewCurrentStock(productID), nil
	}
	return st, nil
}

func (r *StockRepo) Update(_ context.Context, s *entity.CurrentStock) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.stocks[s.ProductID] = cloneStock(s)
	return nil
}

func (r *StockRepo) List(_ context.Context, f repository.StockFilter) ([]*entity.CurrentStock, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	list, total := filterStocks(r.store.stocks, f)
	return list, total, nil
}

// ProductRepo catálogo en memoria.
type ProductRepo struct {
	store *Store
}

// NewProductRepository construye el adaptador del catálogo.
func NewProductRepository(store *Store) *ProductRepo {
	return &ProductRepo{store: store}
}

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if p.SKU != "" {
		for _, existing := range r.store.products {
			if existing.SKU == p.SKU {
				return domain.ErrDuplicate
			}
		}
	}
	p.ProductID = r.store.nextProductID
	r.store.nextProductID++
	c := *p
	r.store.products[p.ProductID] = &c
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, productID int64) (*entity.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if p, ok := r.store.products[productID]; ok {
		c := *p
		return &c, nil
	}
	return nil, nil
}

func (r *ProductRepo) Exists(_ context.Context, productID int64) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	_, ok := r.store.products[productID]
	return ok, nil
}

func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	ids := make([]int64, 0, len(r.store.products))
	for id := range r.store.products {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var list []*entity.Product
	for i := offset; i < len(ids) && len(list) < limit; i++ {
		c := *r.store.products[ids[i]]
		list = append(list, &c)
	}
	return list, nil
}

// ── Filtros compartidos por repos de pool y de transacción ───────────────────

func filterMovements(all []*entity.StockMovement, f repository.MovementFilter) ([]*entity.StockMovement, int64) {
	var matched []*entity.StockMovement
	for _, m := range all {
		if !movementMatches(m, f) {
			continue
		}
		c := *m
		matched = append(matched, &c)
	}
	sortMovements(matched, f.Sort)
	return paginate(matched, f.Page, f.Size), int64(len(matched))
}

func movementMatches(m *entity.StockMovement, f repository.MovementFilter) bool {
	if len(f.ProductIDs) > 0 && !containsID(f.ProductIDs, m.ProductID) {
		return false
	}
	if f.Kind != nil && m.Kind != *f.Kind {
		return false
	}
	if f.Source != nil && m.Source != *f.Source {
		return false
	}
	if f.SourceID != nil && (m.SourceID == nil || *m.SourceID != *f.SourceID) {
		return false
	}
	if f.SourceItemID != nil && (m.SourceItemID == nil || *m.SourceItemID != *f.SourceItemID) {
		return false
	}
	if f.MovementDateGte != nil && m.MovementDate.Before(*f.MovementDateGte) {
		return false
	}
	if f.MovementDateLte != nil && m.MovementDate.After(*f.MovementDateLte) {
		return false
	}
	return true
}

func sortMovements(list []*entity.StockMovement, sortKey string) {
	field, desc := splitSort(sortKey, "movement_id")
	sort.SliceStable(list, func(i, j int) bool {
		var less bool
		switch field {
		case "movement_date":
			less = list[i].MovementDate.Before(list[j].MovementDate)
		default:
			less = list[i].MovementID < list[j].MovementID
		}
		if desc {
			return !less
		}
		return less
	})
}

func filterStocks(stocks map[int64]*entity.CurrentStock, f repository.StockFilter) ([]*entity.CurrentStock, int64) {
	var matched []*entity.CurrentStock
	for _, s := range stocks {
		if !stockMatches(s, f) {
			continue
		}
		matched = append(matched, cloneStock(s))
	}
	sortStocks(matched, f.Sort)
	return paginate(matched, f.Page, f.Size), int64(len(matched))
}

func stockMatches(s *entity.CurrentStock, f repository.StockFilter) bool {
	if len(f.ProductIDs) > 0 && !containsID(f.ProductIDs, s.ProductID) {
		return false
	}
	if f.AvailableGte != nil && s.Available.LessThan(*f.AvailableGte) {
		return false
	}
	if f.AvailableLte != nil && s.Available.GreaterThan(*f.AvailableLte) {
		return false
	}
	if f.OnHandGte != nil && s.OnHand.LessThan(*f.OnHandGte) {
		return false
	}
	if f.OnHandLte != nil && s.OnHand.GreaterThan(*f.OnHandLte) {
		return false
	}
	if f.UpdatedAfter != nil && !s.LastUpdated.After(*f.UpdatedAfter) {
		return false
	}
	return true
}

func sortStocks(list []*entity.CurrentStock, sortKey string) {
	field, desc := splitSort(sortKey, "product_id")
	sort.SliceStable(list, func(i, j int) bool {
		var less bool
		switch field {
		case "quantity_on_hand":
			less = list[i].OnHand.LessThan(list[j].OnHand)
		case "quantity_reserved":
			less = list[i].Reserved.LessThan(list[j].Reserved)
		case "quantity_available":
			less = list[i].Available.LessThan(list[j].Available)
		case "last_updated":
			less = list[i].LastUpdated.Before(list[j].LastUpdated)
		default:
			less = list[i].ProductID < list[j].ProductID
		}
		if desc {
			return !less
		}
		return less
	})
}

func splitSort(sortKey, def string) (field string, desc bool) {
	if sortKey == "" {
		return def, false
	}
	if strings.HasPrefix(sortKey, "-") {
		return sortKey[1:], true
	}
	return sortKey, false
}

func paginate[T any](list []T, page, size int) []T {
	if size <= 0 {
		return list
	}
	start := page * size
	if start >= len(list) {
		return nil
	}
	end := start + size
	if end > len(list) {
		end = len(list)
	}
	return list[start:end]
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
