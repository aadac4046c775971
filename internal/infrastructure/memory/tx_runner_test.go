package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
)

// El ledger devuelve copias tanto para entradas confirmadas como para las que
// aún están en staging: mutar lo leído nunca altera lo almacenado.
func TestTxGetByID_DevuelveCopiaDelStaging(t *testing.T) {
	store := memory.NewStore()
	runner := memory.NewTxRunner(store)
	qty := decimal.RequireFromString("10.000")

	err := runner.Run(context.Background(), func(
		movRepo repository.StockMovementRepository,
		_ repository.CurrentStockRepository,
	) error {
		mov := &entity.StockMovement{
			ProductID:    1,
			Kind:         entity.KindPurchaseReceipt,
			Source:       entity.SourcePurchaseOrder,
			Quantity:     qty,
			MovementDate: time.Now().UTC(),
			CreatedAt:    time.Now().UTC(),
		}
		require.NoError(t, movRepo.Append(context.Background(), mov))

		leido, err := movRepo.GetByID(context.Background(), mov.MovementID)
		require.NoError(t, err)
		require.NotNil(t, leido)

		// Mutar la copia leída no debe tocar la entrada en staging.
		leido.Quantity = decimal.RequireFromString("999")
		leido.Kind = entity.KindAdjustmentOut
		return nil
	})
	require.NoError(t, err)

	movs := store.Movements()
	require.Len(t, movs, 1)
	assert.True(t, movs[0].Quantity.Equal(qty), "la cantidad confirmada no debe cambiar")
	assert.Equal(t, entity.KindPurchaseReceipt, movs[0].Kind)
}
