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

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación del ledger sobre PostgreSQL (usable con pool o tx).
// Solo INSERT y SELECT: el ledger es append-only por diseño.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `movement_id, product_id, movement_kind, movement_source,
	source_id, source_item_id, quantity, movement_date, created_at`

// Append persiste el movimiento; movement_id lo asigna la secuencia de la tabla.
func (r *StockMovementRepo) Append(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (product_id, movement_kind, movement_source, source_id, source_item_id, quantity, movement_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING movement_id`
	err := r.q.QueryRow(ctx, query,
		m.ProductID, string(m.Kind), string(m.Source), m.SourceID, m.SourceItemID,
		m.Quantity, m.MovementDate, m.CreatedAt,
	).Scan(&m.MovementID)
	if err != nil {
		return mapConflict(fmt.Errorf("append stock movement: %w", err))
	}
	return nil
}

// GetByID obtiene un movimiento por ID; nil, nil si no existe.
func (r *StockMovementRepo) GetByID(ctx context.Context, movementID int64) (*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE movement_id = $1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, movementID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// List devuelve la página filtrada del ledger junto con el total de filas.
func (r *StockMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, int64, error) {
	where, args := buildMovementWhere(f)

	var total int64
	countQuery := `SELECT count(*) FROM stock_movements` + where
	if err := r.q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}

	query := `SELECT ` + movementColumns + ` FROM stock_movements` + where +
		orderClause(f.Sort, "movement_id") +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, f.Size, f.Page*f.Size)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, total, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var (
		m            entity.StockMovement
		kind, source string
	)
	err := row.Scan(&m.MovementID, &m.ProductID, &kind, &source,
		&m.SourceID, &m.SourceItemID, &m.Quantity, &m.MovementDate, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.Kind = entity.MovementKind(kind)
	m.Source = entity.MovementSource(source)
	return &m, nil
}

func buildMovementWhere(f repository.MovementFilter) (string, []any) {
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
	if f.Kind != nil {
		add("movement_kind = $%d", string(*f.Kind))
	}
	if f.Source != nil {
		add("movement_source = $%d", string(*f.Source))
	}
	if f.SourceID != nil {
		add("source_id = $%d", *f.SourceID)
	}
	if f.SourceItemID != nil {
		add("source_item_id = $%d", *f.SourceItemID)
	}
	if f.MovementDateGte != nil {
		add("movement_date >= $%d", *f.MovementDateGte)
	}
	if f.MovementDateLte != nil {
		add("movement_date <= $%d", *f.MovementDateLte)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// orderClause interpola el campo de orden directamente en el SQL. El campo DEBE
// venir ya validado contra la lista cerrada del caso de uso (normalizeSort);
// nunca pasar aquí input del cliente sin esa validación. "-campo" = DESC.
func orderClause(sort, def string) string {
	if sort == "" {
		sort = def
	}
	dir := " ASC"
	if strings.HasPrefix(sort, "-") {
		sort = sort[1:]
		dir = " DESC"
	}
	return " ORDER BY " + sort + dir
}
