package stockledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/stockledger"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// queryFixture consultas sobre un store con dos productos.
type queryFixture struct {
	queries  *stockledger.StockQueryUseCase
	tornillo *entity.Product
	tuerca   *entity.Product
}

func newQueryFixture(t *testing.T) (*queryFixture, *stockledger.MovementGuardUseCase) {
	t.Helper()
	store := memory.NewStore()
	guard := stockledger.NewMovementGuardUseCase(
		memory.NewTxRunner(store),
		memory.NewProductRepository(store),
		memory.NewStockRepository(store),
		messagingNop{},
		logger.Nop(),
	)
	f := &queryFixture{
		queries: stockledger.NewStockQueryUseCase(
			memory.NewMovementRepository(store),
			memory.NewStockRepository(store),
		),
		tornillo: store.SeedProduct("Tornillo 3/8"),
		tuerca:   store.SeedProduct("Tuerca 3/8"),
	}
	return f, guard
}

// newPopulatedQueryFixture agrega un ledger pequeño: dos recepciones y un ajuste.
func newPopulatedQueryFixture(t *testing.T) *queryFixture {
	t.Helper()
	f, guard := newQueryFixture(t)
	ctx := context.Background()
	srcID := int64(500)
	_, _, err := guard.RecordPurchaseReceipt(ctx, stockledger.ReceiptInput{
		ProductID: f.tornillo.ProductID, SourceID: &srcID, Quantity: dec("100"),
	})
	require.NoError(t, err)
	_, _, err = guard.RecordPurchaseReceipt(ctx, stockledger.ReceiptInput{
		ProductID: f.tuerca.ProductID, Quantity: dec("40"),
	})
	require.NoError(t, err)
	_, _, err = guard.RecordAdjustment(ctx, stockledger.AdjustmentInput{
		ProductID: f.tornillo.ProductID, Kind: entity.KindAdjustmentOut, Quantity: dec("10"),
	})
	require.NoError(t, err)
	return f
}

// ──────────────────────────────────────────────────────────────────────────────
// Normalización de paginación y orden
// ──────────────────────────────────────────────────────────────────────────────

func TestListMovements_TamanoPorDefecto(t *testing.T) {
	f := newPopulatedQueryFixture(t)

	movs, page, err := f.queries.ListMovements(context.Background(), repository.MovementFilter{})
	require.NoError(t, err)

	assert.Equal(t, 20, page.Size, "size 0 usa el tamaño por defecto")
	assert.Equal(t, 0, page.Page)
	assert.Equal(t, int64(3), page.TotalElements)
	assert.Equal(t, 1, page.TotalPages)
	assert.Len(t, movs, 3)
}

func TestListMovements_PaginacionInvalida(t *testing.T) {
	f, _ := newQueryFixture(t)
	casos := []repository.MovementFilter{
		{Page: -1},
		{Size: -5},
		{Size: 201}, // supera el máximo
	}
	for _, filtro := range casos {
		_, _, err := f.queries.ListMovements(context.Background(), filtro)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

func TestListMovements_OrdenDescendentePorID(t *testing.T) {
	f := newPopulatedQueryFixture(t)

	movs, _, err := f.queries.ListMovements(context.Background(), repository.MovementFilter{Sort: "-movement_id"})
	require.NoError(t, err)

	require.Len(t, movs, 3)
	assert.Equal(t, int64(3), movs[0].MovementID)
	assert.Equal(t, int64(1), movs[2].MovementID)
}

func TestListMovements_CampoDeOrdenNoPermitido(t *testing.T) {
	f, _ := newQueryFixture(t)

	for _, sort := range []string{"quantity", "-created_at", "movement_id; DROP TABLE"} {
		_, _, err := f.queries.ListMovements(context.Background(), repository.MovementFilter{Sort: sort})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "sort %q debe rechazarse", sort)
	}
}

func TestListMovements_FiltroPorProductoYKind(t *testing.T) {
	f := newPopulatedQueryFixture(t)
	kind := entity.KindPurchaseReceipt

	movs, page, err := f.queries.ListMovements(context.Background(), repository.MovementFilter{
		ProductIDs: []int64{f.tornillo.ProductID},
		Kind:       &kind,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), page.TotalElements)
	require.Len(t, movs, 1)
	assert.Equal(t, f.tornillo.ProductID, movs[0].ProductID)
	assert.Equal(t, entity.KindPurchaseReceipt, movs[0].Kind)
}

func TestListMovements_FiltroPorSourceID(t *testing.T) {
	f := newPopulatedQueryFixture(t)
	srcID := int64(500)

	movs, _, err := f.queries.ListMovements(context.Background(), repository.MovementFilter{SourceID: &srcID})
	require.NoError(t, err)

	require.Len(t, movs, 1)
	require.NotNil(t, movs[0].SourceID)
	assert.Equal(t, srcID, *movs[0].SourceID)
}

func TestListMovements_PaginaFueraDeRango(t *testing.T) {
	f := newPopulatedQueryFixture(t)

	movs, page, err := f.queries.ListMovements(context.Background(), repository.MovementFilter{Page: 5, Size: 10})
	require.NoError(t, err)

	assert.Empty(t, movs, "una página fuera de rango es vacía, no un error")
	assert.Equal(t, int64(3), page.TotalElements)
}

// ──────────────────────────────────────────────────────────────────────────────
// GetMovement
// ──────────────────────────────────────────────────────────────────────────────

func TestGetMovement(t *testing.T) {
	f := newPopulatedQueryFixture(t)

	mov, err := f.queries.GetMovement(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), mov.MovementID)
	assert.True(t, mov.Quantity.Equal(dec("100")))

	_, err = f.queries.GetMovement(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrMovementNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// ListCurrentStock
// ──────────────────────────────────────────────────────────────────────────────

func TestListCurrentStock_OrdenYFiltro(t *testing.T) {
	f := newPopulatedQueryFixture(t)

	// Orden descendente por disponible: tornillo (90) antes que tuerca (40).
	stocks, page, err := f.queries.ListCurrentStock(context.Background(), repository.StockFilter{
		Sort: "-quantity_available",
	})
	require.NoError(t, err)
	require.Len(t, stocks, 2)
	assert.Equal(t, int64(2), page.TotalElements)
	assert.Equal(t, f.tornillo.ProductID, stocks[0].ProductID)
	assert.True(t, stocks[0].Available.Equal(dec("90")))

	// Filtro por disponible mínimo deja fuera a la tuerca.
	min := dec("50")
	stocks, _, err = f.queries.ListCurrentStock(context.Background(), repository.StockFilter{
		AvailableGte: &min,
	})
	require.NoError(t, err)
	require.Len(t, stocks, 1)
	assert.Equal(t, f.tornillo.ProductID, stocks[0].ProductID)
}

func TestListCurrentStock_SortNoPermitido(t *testing.T) {
	f, _ := newQueryFixture(t)

	_, _, err := f.queries.ListCurrentStock(context.Background(), repository.StockFilter{Sort: "name"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
