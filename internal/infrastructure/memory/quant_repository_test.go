package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/stock-quants/internal/domain/entity"
	"github.com/jhoicas/stock-quants/internal/domain/removal"
	"github.com/jhoicas/stock-quants/internal/domain/repository"
	"github.com/jhoicas/stock-quants/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const companyID = "acme"

// TestFind_NotReservedFor excluye los quants reservados a los movimientos
// listados; los libres y los reservados a terceros sí califican.
func TestFind_NotReservedFor(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	libre := addQuant(t, store, "")
	addQuant(t, store, "move-A")
	deOtro := addQuant(t, store, "move-B")

	quants, err := store.Quants().Find(ctx, repository.QuantFilter{
		CompanyID: companyID,
		Reservation: repository.ReservationFilter{
			NotReservedFor: []string{"move-A"},
		},
	}, removal.Order{}, 0, 0)
	require.NoError(t, err)

	require.Len(t, quants, 2)
	ids := []string{quants[0].ID, quants[1].ID}
	assert.Contains(t, ids, libre.ID)
	assert.Contains(t, ids, deOtro.ID)
}

// TestFind_OnlyFreeExcluyeTodaReserva con OnlyFree cualquier reserva descarta
// el quant, sin importar a quién pertenezca.
func TestFind_OnlyFreeExcluyeTodaReserva(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	libre := addQuant(t, store, "")
	addQuant(t, store, "move-A")
	addQuant(t, store, "move-B")

	quants, err := store.Quants().Find(ctx, repository.QuantFilter{
		CompanyID:   companyID,
		Reservation: repository.ReservationFilter{OnlyFree: true},
	}, removal.Order{}, 0, 0)
	require.NoError(t, err)

	require.Len(t, quants, 1)
	assert.Equal(t, libre.ID, quants[0].ID)
}

func addQuant(t *testing.T, store *memory.Store, reservationID string) *entity.Quant {
	t.Helper()
	q := &entity.Quant{
		ID:            entity.NewID(),
		CompanyID:     companyID,
		ProductID:     "prod-1",
		LocationID:    "loc-wh",
		Quantity:      decimal.NewFromInt(5),
		ReservationID: reservationID,
		InDate:        time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Quants().Create(context.Background(), q))
	return q
}
