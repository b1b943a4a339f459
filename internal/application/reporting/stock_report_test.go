package reporting_test

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/stock-quants/internal/application/reporting"
	"github.com/jhoicas/stock-quants/internal/domain"
	"github.com/jhoicas/stock-quants/internal/domain/entity"
	"github.com/jhoicas/stock-quants/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const companyID = "acme"

// TestOnHand_IncluyeDeudaYSubarbol el balance contable suma positivos y
// negativos de toda la bodega, sububicaciones incluidas.
func TestOnHand_IncluyeDeudaYSubarbol(t *testing.T) {
	store, wh, shelf := seedLocations(t)
	report := reporting.NewStockReport(store.Quants(), store.Locations())

	addQuant(t, store, "prod-1", wh.ID, "10", "12.50")
	addQuant(t, store, "prod-1", shelf.ID, "5", "12.50")
	addQuant(t, store, "prod-1", wh.ID, "-3", "0")

	onHand, err := report.OnHand(context.Background(), companyID, wh.ID)
	require.NoError(t, err)
	assert.True(t, onHand["prod-1"].Equal(decimal.NewFromInt(12)),
		"10 + 5 - 3 de deuda = 12, fue %s", onHand["prod-1"])
}

func TestOnHand_UbicacionInexistenteFalla(t *testing.T) {
	store, _, _ := seedLocations(t)
	report := reporting.NewStockReport(store.Quants(), store.Locations())

	_, err := report.OnHand(context.Background(), companyID, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// TestValuation_SoloStockReal la valoración agrega cantidad y valor de los
// quants positivos; la deuda no se valora.
func TestValuation_SoloStockReal(t *testing.T) {
	store, wh, shelf := seedLocations(t)
	report := reporting.NewStockReport(store.Quants(), store.Locations())

	addQuant(t, store, "prod-1", wh.ID, "10", "10.00")
	addQuant(t, store, "prod-1", shelf.ID, "10", "20.00")
	addQuant(t, store, "prod-1", wh.ID, "-4", "99.00")
	addQuant(t, store, "prod-2", wh.ID, "2", "5.00")

	lines, err := report.Valuation(context.Background(), companyID, wh.ID)
	require.NoError(t, err)

	linea := lines["prod-1"]
	assert.True(t, linea.Quantity.Equal(decimal.NewFromInt(20)))
	assert.True(t, linea.Value.Equal(decimal.NewFromInt(300)), "10@10 + 10@20 = 300")
	assert.True(t, linea.UnitCost.Equal(decimal.NewFromInt(15)))

	otra := lines["prod-2"]
	assert.True(t, otra.Value.Equal(decimal.NewFromInt(10)))
}

func TestPackageContents(t *testing.T) {
	store, wh, _ := seedLocations(t)
	report := reporting.NewStockReport(store.Quants(), store.Locations())

	q := addQuant(t, store, "prod-1", wh.ID, "6", "1.00")
	q.PackageID = "pack-1"
	require.NoError(t, store.Quants().Update(context.Background(), q))
	addQuant(t, store, "prod-1", wh.ID, "99", "1.00")

	contents, err := report.PackageContents(context.Background(), "pack-1")
	require.NoError(t, err)
	assert.True(t, contents["prod-1"].Equal(decimal.NewFromInt(6)),
		"solo cuenta lo que está dentro del paquete")
}

func TestPackageContents_SinIDFalla(t *testing.T) {
	store, _, _ := seedLocations(t)
	report := reporting.NewStockReport(store.Quants(), store.Locations())

	_, err := report.PackageContents(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func seedLocations(t *testing.T) (*memory.Store, *entity.Location, *entity.Location) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	wh := &entity.Location{ID: "loc-wh", CompanyID: companyID, Name: "Bodega", Usage: entity.LocationInternal}
	wh.ParentPath = entity.BuildParentPath(nil, wh.ID)
	shelf := &entity.Location{ID: "loc-shelf", CompanyID: companyID, Name: "Estante", Usage: entity.LocationInternal, ParentID: wh.ID}
	shelf.ParentPath = entity.BuildParentPath(wh, shelf.ID)
	require.NoError(t, store.Locations().Create(ctx, wh))
	require.NoError(t, store.Locations().Create(ctx, shelf))
	return store, wh, shelf
}

func addQuant(t *testing.T, store *memory.Store, productID, locationID, quantity, cost string) *entity.Quant {
	t.Helper()
	q := &entity.Quant{
		ID:         entity.NewID(),
		CompanyID:  companyID,
		ProductID:  productID,
		LocationID: locationID,
		Quantity:   decimal.RequireFromString(quantity),
		Cost:       decimal.RequireFromString(cost),
		InDate:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Quants().Create(context.Background(), q))
	return q
}
