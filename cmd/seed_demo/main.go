// seed_demo puebla la base con un escenario mínimo y ejercita el motor de
// punta a punta: recepción desde proveedor, reserva y salida a cliente, con
// reporte de existencias y valoración al final.
//
// Uso: go run ./cmd/seed_demo
// Requiere las migraciones aplicadas (cmd/migrate).
package main

import (
	"context"
	"time"

	"github.com/jhoicas/stock-quants/internal/application/quantops"
	"github.com/jhoicas/stock-quants/internal/application/reporting"
	"github.com/jhoicas/stock-quants/internal/domain/entity"
	"github.com/jhoicas/stock-quants/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-quants/pkg/config"
	"github.com/jhoicas/stock-quants/pkg/logger"
	"github.com/shopspring/decimal"
)

const companyID = "demo"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "debug",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("aplicar migraciones")
	}

	locations := postgres.NewLocationRepository(pool)
	products := postgres.NewProductRepository(pool)
	moves := postgres.NewMoveRepository(pool)
	lots := postgres.NewLotRepository(pool)
	packages := postgres.NewPackageRepository(pool)

	// Ubicaciones: proveedor virtual, bodega interna con un estante, cliente.
	supplier := &entity.Location{ID: entity.NewID(), CompanyID: companyID, Name: "Proveedores", Usage: entity.LocationSupplier}
	supplier.ParentPath = entity.BuildParentPath(nil, supplier.ID)

	warehouse := &entity.Location{ID: entity.NewID(), CompanyID: companyID, Name: "Bodega", Usage: entity.LocationInternal}
	warehouse.ParentPath = entity.BuildParentPath(nil, warehouse.ID)

	shelf := &entity.Location{ID: entity.NewID(), CompanyID: companyID, Name: "Estante A", Usage: entity.LocationInternal, ParentID: warehouse.ID}
	shelf.ParentPath = entity.BuildParentPath(warehouse, shelf.ID)

	customer := &entity.Location{ID: entity.NewID(), CompanyID: companyID, Name: "Clientes", Usage: entity.LocationCustomer}
	customer.ParentPath = entity.BuildParentPath(nil, customer.ID)

	for _, l := range []*entity.Location{supplier, warehouse, shelf, customer} {
		if err := locations.Create(ctx, l); err != nil {
			log.Fatal().Err(err).Str("ubicacion", l.Name).Msg("crear ubicación")
		}
	}

	now := time.Now()
	product := &entity.Product{
		ID:          entity.NewID(),
		CompanyID:   companyID,
		SKU:         "CAFE-500",
		Name:        "Café tostado 500g",
		UoMRounding: decimal.NewFromFloat(0.001),
		Tracking:    entity.TrackingNone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := products.Create(ctx, product); err != nil {
		log.Fatal().Err(err).Msg("crear producto")
	}

	engine := quantops.NewEngine(postgres.NewTxRunner(pool), log)

	// Recepción: 100 unidades desde proveedor a 12.50.
	inMove := &entity.Move{
		ID:             entity.NewID(),
		CompanyID:      companyID,
		Name:           "IN/001",
		ProductID:      product.ID,
		LocationID:     supplier.ID,
		LocationDestID: shelf.ID,
		ProductQty:     decimal.NewFromInt(100),
		PriceUnit:      decimal.RequireFromString("12.50"),
		State:          entity.MoveConfirmed,
		Date:           now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := moves.Create(ctx, inMove); err != nil {
		log.Fatal().Err(err).Msg("crear movimiento de entrada")
	}
	if err := engine.Transfer(ctx, inMove.ID, quantops.MoveOptions{}); err != nil {
		log.Fatal().Err(err).Msg("procesar entrada")
	}

	// Salida: reservar y despachar 30 unidades al cliente.
	outMove := &entity.Move{
		ID:             entity.NewID(),
		CompanyID:      companyID,
		Name:           "OUT/001",
		ProductID:      product.ID,
		LocationID:     warehouse.ID,
		LocationDestID: customer.ID,
		ProductQty:     decimal.NewFromInt(30),
		State:          entity.MoveConfirmed,
		Date:           now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := moves.Create(ctx, outMove); err != nil {
		log.Fatal().Err(err).Msg("crear movimiento de salida")
	}
	plan, err := engine.Assign(ctx, outMove.ID)
	if err != nil {
		log.Fatal().Err(err).Msg("reservar salida")
	}
	log.Info().
		Str("reservado", plan.Matched().String()).
		Str("faltante", plan.Unmatched().String()).
		Msg("reserva de salida")
	if err := engine.Transfer(ctx, outMove.ID, quantops.MoveOptions{}); err != nil {
		log.Fatal().Err(err).Msg("procesar salida")
	}

	// Recepción trazada: té con seguimiento por lote, empacado en un pallet.
	tea := &entity.Product{
		ID:          entity.NewID(),
		CompanyID:   companyID,
		SKU:         "TE-250",
		Name:        "Té verde 250g",
		UoMRounding: decimal.NewFromFloat(0.001),
		Tracking:    entity.TrackingLot,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := products.Create(ctx, tea); err != nil {
		log.Fatal().Err(err).Msg("crear producto trazado")
	}

	lot := &entity.Lot{
		ID:        entity.NewID(),
		CompanyID: companyID,
		ProductID: tea.ID,
		Name:      "L-2026-08",
		CreatedAt: now,
	}
	if err := lots.Create(ctx, lot); err != nil {
		log.Fatal().Err(err).Msg("crear lote")
	}

	pallet := &entity.Package{
		ID:        entity.NewID(),
		CompanyID: companyID,
		Name:      "PAL-001",
		CreatedAt: now,
	}
	if err := packages.Create(ctx, pallet); err != nil {
		log.Fatal().Err(err).Msg("crear paquete")
	}

	lotMove := &entity.Move{
		ID:             entity.NewID(),
		CompanyID:      companyID,
		Name:           "IN/002",
		ProductID:      tea.ID,
		LocationID:     supplier.ID,
		LocationDestID: shelf.ID,
		ProductQty:     decimal.NewFromInt(40),
		PriceUnit:      decimal.RequireFromString("8.00"),
		RestrictLotID:  lot.ID,
		State:          entity.MoveConfirmed,
		Date:           now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := moves.Create(ctx, lotMove); err != nil {
		log.Fatal().Err(err).Msg("crear movimiento trazado")
	}
	if err := engine.Transfer(ctx, lotMove.ID, quantops.MoveOptions{DestPackageID: pallet.ID}); err != nil {
		log.Fatal().Err(err).Msg("procesar entrada trazada")
	}

	report := reporting.NewStockReport(postgres.NewQuantRepository(pool), locations)
	onHand, err := report.OnHand(ctx, companyID, warehouse.ID)
	if err != nil {
		log.Fatal().Err(err).Msg("reporte de existencias")
	}
	valuation, err := report.Valuation(ctx, companyID, warehouse.ID)
	if err != nil {
		log.Fatal().Err(err).Msg("reporte de valoración")
	}

	for productID, qty := range onHand {
		line := valuation[productID]
		log.Info().
			Str("producto", productID).
			Str("existencias", qty.String()).
			Str("valor", line.Value.String()).
			Msg("balance final")
	}

	contents, err := report.PackageContents(ctx, pallet.ID)
	if err != nil {
		log.Fatal().Err(err).Msg("contenido de paquete")
	}
	for productID, qty := range contents {
		log.Info().
			Str("paquete", pallet.Name).
			Str("producto", productID).
			Str("cantidad", qty.String()).
			Msg("contenido del pallet")
	}
}
