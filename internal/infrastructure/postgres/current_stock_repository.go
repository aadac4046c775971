package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.CurrentStockRepository = (*CurrentStockRepo)(nil)

// CurrentStockRepo implementación de la proyección sobre PostgreSQL (usable con pool o tx).
type CurrentStockRepo struct {
	q Querier
}

// NewCurrentStockRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCurrentStockRepository(q Querier) *CurrentStockRepo {
	return &CurrentStockRepo{q: q}
}

const stockColumns = `product_id, quantity_on_hand, quantity_reserved, quantity_available,
	last_movement_id, last_updated`

// Get obtiene la fila de stock de un producto; nil, nil si aún no existe.
func (r *CurrentStockRepo) Get(ctx context.Context, productID int64) (*entity.CurrentStock, error) {
	query := `SELECT ` + stockColumns + ` FROM current_stock WHERE product_id = $1`
	s, err := scanStock(r.q.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get current stock: %w", err)
	}
	return s, nil
}

// GetForUpdate garantiza la fila (INSERT ... ON CONFLICT DO NOTHING) y la bloquea
// con SELECT FOR UPDATE. Dos escritores concurrentes del mismo producto quedan
// serializados aquí; si la operación luego falla, el rollback deshace también la
// fila en ceros recién insertada.
func (r *CurrentStockRepo) GetForUpdate(ctx context.Context, productID int64) (*entity.CurrentStock, error) {
	ensure := `
		INSERT INTO current_stock (product_id, quantity_on_hand, quantity_reserved, quantity_available, last_updated)
		VALUES ($1, 0, 0, 0, now())
		ON CONFLICT (product_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, ensure, productID); err != nil {
		return nil, mapConflict(fmt.Errorf("ensure stock row: %w", err))
	}

	query := `SELECT ` + stockColumns + ` FROM current_stock WHERE product_id = $1 FOR UPDATE`
	s, err := scanStock(r.q.QueryRow(ctx, query, productID))
	if err != nil {
		return nil, mapConflict(fmt.Errorf("lock stock row: %w", err))
	}
	return s, nil
}

// Update escribe la fila ya existente y bloqueada. quantity_available se persiste
// tal como la mantiene la entidad; el CHECK de la tabla solo actúa de respaldo.
func (r *CurrentStockRepo) Update(ctx context.Context, s *entity.CurrentStock) error {
	query := `
		UPDATE current_stock
		SET quantity_on_hand = $2, quantity_reserved = $3, quantity_available = $4,
		    last_movement_id = $5, last_updated = $6
		WHERE product_id = $1`
	tag, err := r.q.Exec(ctx, query,
		s.ProductID, s.OnHand, s.Reserved, s.Available, s.LastMovementID, s.LastUpdated)
	if err != nil {
		return mapConflict(fmt.Errorf("update current stock: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update current stock: fila inexistente para producto %d", s.ProductID)
	}
	return nil
}

// List devuelve la página filtrada de la proyección junto con el total.
func (r *CurrentStockRepo) List(ctx context.Context, f repository.StockFilter) ([]*entity.CurrentStock, int64, error) {
	where, args := buildStockWhere(f)

	var total int64
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM current_stock`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count current stock: %w", err)
	}

	query := `SELECT ` + stockColumns + ` FROM current_stock` + where +
		orderClause(f.Sort, "product_id") +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, f.Size, f.Page*f.Size)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list current stock: %w", err)
	}
	defer rows.Close()

	var list []*entity.CurrentStock
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan current stock: %w", err)
		}
		list = append(list, s)
	}
	return list, total, rows.Err()
}

func scanStock(row pgx.Row) (*entity.CurrentStock, error) {
	var s entity.CurrentStock
	err := row.Scan(&s.ProductID, &s.OnHand, &s.Reserved, &s.Available,
		&s.LastMovementID, &s.LastUpdated)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func buildStockWhere(f repository.StockFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if len(f.ProductIDs) > 0 {
		add("product_id = ANY($%d)", f.ProductIDs)
	}
	if f.AvailableGte != nil {
		add("quantity_available >= $%d", *f.AvailableGte)
	}
	if f.AvailableLte != nil {
		add("quantity_available <= $%d", *f.AvailableLte)
	}
	if f.OnHandGte != nil {
		add("quantity_on_hand >= $%d", *f.OnHandGte)
	}
	if f.OnHandLte != nil {
		add("quantity_on_hand <= $%d", *f.OnHandLte)
	}
	if f.UpdatedAfter != nil {
		add("last_updated > $%d", *f.UpdatedAfter)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
