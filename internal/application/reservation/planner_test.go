package reservation_test

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/stock-quants/internal/application/reservation"
	"github.com/jhoicas/stock-quants/internal/domain"
	"github.com/jhoicas/stock-quants/internal/domain/entity"
	"github.com/jhoicas/stock-quants/internal/domain/repository"
	"github.com/jhoicas/stock-quants/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const companyID = "acme"

// TestPlan_FifoConsumeDelMasViejo dos quants (5 viejo, 7 nuevo), demanda 8:
// el plan debe tomar el viejo entero y 3 del nuevo.
func TestPlan_FifoConsumeDelMasViejo(t *testing.T) {
	f := newFixture(t)
	viejo := f.addQuant(qty(5), dia(1))
	nuevo := f.addQuant(qty(7), dia(10))

	plan := f.plan(t, f.newMove(qty(8)))

	require.Len(t, plan, 2)
	assert.Equal(t, viejo.ID, plan[0].Quant.ID)
	assert.True(t, plan[0].Qty.Equal(qty(5)))
	assert.Equal(t, nuevo.ID, plan[1].Quant.ID)
	assert.True(t, plan[1].Qty.Equal(qty(3)))
	assert.True(t, plan.FullyMatched())
	assert.True(t, plan.Total().Equal(qty(8)), "el total del plan siempre suma la demanda")
}

func TestPlan_LifoConsumeDelMasNuevo(t *testing.T) {
	f := newFixture(t)
	f.addQuant(qty(5), dia(1))
	nuevo := f.addQuant(qty(7), dia(10))

	move := f.newMove(qty(6))
	move.RemovalStrategy = "lifo"
	plan := f.plan(t, move)

	require.Len(t, plan, 1)
	assert.Equal(t, nuevo.ID, plan[0].Quant.ID)
	assert.True(t, plan[0].Qty.Equal(qty(6)))
}

// TestPlan_ParcialDejaEntradaNil demanda 8 con solo 5 en stock: el plan cierra
// con (nil, 3) y el total sigue sumando la demanda.
func TestPlan_ParcialDejaEntradaNil(t *testing.T) {
	f := newFixture(t)
	q := f.addQuant(qty(5), dia(1))

	plan := f.plan(t, f.newMove(qty(8)))

	require.Len(t, plan, 2)
	assert.Equal(t, q.ID, plan[0].Quant.ID)
	assert.Nil(t, plan[1].Quant)
	assert.True(t, plan[1].Qty.Equal(qty(3)))
	assert.True(t, plan.Unmatched().Equal(qty(3)))
	assert.True(t, plan.Total().Equal(qty(8)))
}

// TestPlan_OrigenVirtualCortocircuita reservar contra un proveedor virtual no
// consulta el ledger: todo lo pedido es reservable como entrada nil.
func TestPlan_OrigenVirtualCortocircuita(t *testing.T) {
	f := newFixture(t)
	move := f.newMove(qty(40))
	move.LocationID = f.supplier.ID

	plan := f.plan(t, move)

	require.Len(t, plan, 1)
	assert.Nil(t, plan[0].Quant)
	assert.True(t, plan[0].Qty.Equal(qty(40)))
}

// TestPlan_PasadaPreferidaReservadosPrimero los quants ya reservados al propio
// movimiento se re-seleccionan antes que los libres aunque sean más nuevos
// (re-reserva idempotente).
func TestPlan_PasadaPreferidaReservadosPrimero(t *testing.T) {
	f := newFixture(t)
	move := f.newMove(qty(4))
	libre := f.addQuant(qty(5), dia(1))
	mio := f.addQuant(qty(3), dia(10))
	mio.ReservationID = move.ID
	require.NoError(t, f.store.Quants().Update(context.Background(), mio))

	plan := f.plan(t, move)

	require.Len(t, plan, 2)
	assert.Equal(t, mio.ID, plan[0].Quant.ID, "primero lo ya reservado a este movimiento")
	assert.Equal(t, libre.ID, plan[1].Quant.ID)
	assert.True(t, plan[1].Qty.Equal(qty(1)))
}

// TestPlan_NoRobaReservasAjenas un quant reservado a otro movimiento no
// califica en ninguna pasada por defecto.
func TestPlan_NoRobaReservasAjenas(t *testing.T) {
	f := newFixture(t)
	ajeno := f.addQuant(qty(10), dia(1))
	ajeno.ReservationID = "otro-move"
	require.NoError(t, f.store.Quants().Update(context.Background(), ajeno))

	plan := f.plan(t, f.newMove(qty(4)))

	require.Len(t, plan, 1)
	assert.Nil(t, plan[0].Quant, "la demanda queda insatisfecha antes que robar reservas")
}

// TestPlan_LoteEstrictoLuegoSinLote con lote obligado la primera subpasada
// exige ese lote y la siguiente acepta stock sin lote registrado. Un lote
// distinto jamás califica.
func TestPlan_LoteEstrictoLuegoSinLote(t *testing.T) {
	f := newFixture(t)
	otroLote := f.addQuant(qty(9), dia(1))
	otroLote.LotID = "lote-B"
	require.NoError(t, f.store.Quants().Update(context.Background(), otroLote))
	sinLote := f.addQuant(qty(4), dia(2))
	delLote := f.addQuant(qty(3), dia(3))
	delLote.LotID = "lote-A"
	require.NoError(t, f.store.Quants().Update(context.Background(), delLote))

	move := f.newMove(qty(6))
	move.RestrictLotID = "lote-A"
	plan := f.plan(t, move)

	require.Len(t, plan, 2)
	assert.Equal(t, delLote.ID, plan[0].Quant.ID, "primero el lote obligado")
	assert.Equal(t, sinLote.ID, plan[1].Quant.ID, "después stock sin lote, nunca lote-B")
	assert.True(t, plan[1].Qty.Equal(qty(3)))
}

func TestPlan_EstrategiaDesconocidaFalla(t *testing.T) {
	f := newFixture(t)
	move := f.newMove(qty(1))
	move.RemovalStrategy = "fefo"

	_, err := reservation.NewPlanner().Plan(context.Background(),
		f.store.Quants(), f.store.Locations(), f.product, move,
		move.ProductQty, repository.QuantFilter{}, nil)
	assert.ErrorIs(t, err, domain.ErrUnknownStrategy)
}

func TestPlan_CantidadNoPositivaFalla(t *testing.T) {
	f := newFixture(t)
	move := f.newMove(qty(0))

	_, err := reservation.NewPlanner().Plan(context.Background(),
		f.store.Quants(), f.store.Locations(), f.product, move,
		decimal.Zero, repository.QuantFilter{}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidReservation)
}

// TestPlan_SubarbolDeUbicaciones la reserva sobre la bodega raíz encuentra
// stock guardado en sus sububicaciones.
func TestPlan_SubarbolDeUbicaciones(t *testing.T) {
	f := newFixture(t)
	q := f.addQuantAt(f.shelf.ID, qty(5), dia(1))

	plan := f.plan(t, f.newMove(qty(5)))

	require.Len(t, plan, 1)
	assert.Equal(t, q.ID, plan[0].Quant.ID)
}

// ── fixture ───────────────────────────────────────────────────────────────────

type fixture struct {
	store    *memory.Store
	product  *entity.Product
	supplier *entity.Location
	wh       *entity.Location
	shelf    *entity.Location
	customer *entity.Location
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	supplier := &entity.Location{ID: "loc-supplier", CompanyID: companyID, Name: "Proveedores", Usage: entity.LocationSupplier}
	supplier.ParentPath = entity.BuildParentPath(nil, supplier.ID)
	wh := &entity.Location{ID: "loc-wh", CompanyID: companyID, Name: "Bodega", Usage: entity.LocationInternal}
	wh.ParentPath = entity.BuildParentPath(nil, wh.ID)
	shelf := &entity.Location{ID: "loc-shelf", CompanyID: companyID, Name: "Estante", Usage: entity.LocationInternal, ParentID: wh.ID}
	shelf.ParentPath = entity.BuildParentPath(wh, shelf.ID)
	customer := &entity.Location{ID: "loc-customer", CompanyID: companyID, Name: "Clientes", Usage: entity.LocationCustomer}
	customer.ParentPath = entity.BuildParentPath(nil, customer.ID)
	for _, l := range []*entity.Location{supplier, wh, shelf, customer} {
		require.NoError(t, store.Locations().Create(ctx, l))
	}

	product := &entity.Product{
		ID:          "prod-1",
		CompanyID:   companyID,
		SKU:         "SKU-1",
		Name:        "Producto",
		UoMRounding: decimal.RequireFromString("0.001"),
		Tracking:    entity.TrackingNone,
	}
	require.NoError(t, store.Products().Create(ctx, product))

	return &fixture{store: store, product: product, supplier: supplier, wh: wh, shelf: shelf, customer: customer}
}

func (f *fixture) newMove(demand decimal.Decimal) *entity.Move {
	return &entity.Move{
		ID:             entity.NewID(),
		CompanyID:      companyID,
		ProductID:      f.product.ID,
		LocationID:     f.wh.ID,
		LocationDestID: f.customer.ID,
		ProductQty:     demand,
		State:          entity.MoveConfirmed,
	}
}

func (f *fixture) addQuant(quantity decimal.Decimal, inDate time.Time) *entity.Quant {
	return f.addQuantAt(f.wh.ID, quantity, inDate)
}

func (f *fixture) addQuantAt(locationID string, quantity decimal.Decimal, inDate time.Time) *entity.Quant {
	q := &entity.Quant{
		ID:         entity.NewID(),
		CompanyID:  companyID,
		ProductID:  f.product.ID,
		LocationID: locationID,
		Quantity:   quantity,
		InDate:     inDate,
	}
	if err := f.store.Quants().Create(context.Background(), q); err != nil {
		panic(err)
	}
	return q
}

func (f *fixture) plan(t *testing.T, move *entity.Move) reservation.Plan {
	t.Helper()
	plan, err := reservation.NewPlanner().Plan(context.Background(),
		f.store.Quants(), f.store.Locations(), f.product, move,
		move.ProductQty, repository.QuantFilter{}, nil)
	require.NoError(t, err)
	return plan
}

func qty(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func dia(d int) time.Time {
	return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC)
}
