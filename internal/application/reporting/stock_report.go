// Package reporting expone los accesos de solo lectura del ledger: existencias
// por producto y valoración de inventario. Nunca bloquea filas: son lecturas
// de display, no decisiones de reserva.
package reporting

import (
	"context"

	"github.com/jhoicas/stock-quants/internal/domain"
	"github.com/jhoicas/stock-quants/internal/domain/removal"
	"github.com/jhoicas/stock-quants/internal/domain/repository"
	"github.com/jhoicas/stock-quants/internal/domain/valuation"
	"github.com/shopspring/decimal"
)

// StockReport caso de uso de reportes de existencias.
type StockReport struct {
	quants    repository.QuantRepository
	locations repository.LocationRepository
}

// NewStockReport construye el caso de uso con repositorios atados al pool
// (lecturas snapshot, sin transacción).
func NewStockReport(quants repository.QuantRepository, locations repository.LocationRepository) *StockReport {
	return &StockReport{quants: quants, locations: locations}
}

// OnHand devuelve el balance contable por producto en el subárbol de la
// ubicación dada: suma de todos los quants, deuda (negativos) incluida.
func (r *StockReport) OnHand(ctx context.Context, companyID, locationID string) (map[string]decimal.Decimal, error) {
	loc, err := r.locations.GetByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrNotFound
	}
	subtree, err := r.locations.SubtreeIDs(ctx, loc.ID)
	if err != nil {
		return nil, err
	}
	return r.quants.AggregateByLocations(ctx, companyID, subtree)
}

// PackageContents devuelve las cantidades por producto dentro de un paquete
// (lo que se usa al relocalizar el paquete entero).
func (r *StockReport) PackageContents(ctx context.Context, packageID string) (map[string]decimal.Decimal, error) {
	if packageID == "" {
		return nil, domain.ErrInvalidInput
	}
	return r.quants.AggregateByPackage(ctx, packageID)
}

// ValuationLine valoración de un producto en una ubicación: cantidad real,
// costo unitario promedio y valor total.
type ValuationLine struct {
	ProductID string
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal
	Value     decimal.Decimal
}

// pageSize página de lectura para recorrer el ledger sin cargarlo entero.
const pageSize = 500

// Valuation recorre los quants positivos del subárbol y agrega cantidad y
// valor (qty * costo de cada quant) por producto. La deuda no se valora: un
// negativo pendiente se reporta vía OnHand y se corrige al reconciliarse.
func (r *StockReport) Valuation(ctx context.Context, companyID, locationID string) (map[string]ValuationLine, error) {
	loc, err := r.locations.GetByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrNotFound
	}
	subtree, err := r.locations.SubtreeIDs(ctx, loc.ID)
	if err != nil {
		return nil, err
	}

	f := repository.QuantFilter{
		CompanyID:   companyID,
		LocationIDs: subtree,
	}
	lines := make(map[string]ValuationLine)
	for offset := 0; ; offset += pageSize {
		quants, err := r.quants.Find(ctx, f, removal.Order{}, pageSize, offset)
		if err != nil {
			return nil, err
		}
		for _, q := range quants {
			line := lines[q.ProductID]
			line.ProductID = q.ProductID
			line.Quantity = line.Quantity.Add(q.Quantity)
			line.Value = line.Value.Add(valuation.Value(q.Quantity, q.Cost))
			lines[q.ProductID] = line
		}
		if len(quants) < pageSize {
			break
		}
	}
	for id, line := range lines {
		if line.Quantity.IsPositive() {
			line.UnitCost = line.Value.Div(line.Quantity)
			lines[id] = line
		}
	}
	return lines, nil
}
