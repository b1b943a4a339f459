package reservation

import (
	"context"

	"github.com/jhoicas/stock-quants/internal/domain"
	"github.com/jhoicas/stock-quants/internal/domain/entity"
	"github.com/jhoicas/stock-quants/internal/domain/removal"
	"github.com/jhoicas/stock-quants/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// pageSize tamaño de página de los escaneos: un producto puede tener miles de
// quants en una ubicación y no queremos traerlos todos para reservar 5 unidades.
const pageSize = 100

// Planner motor de reservas. Sin estado: los repositorios llegan por parámetro
// para poder ejecutarlo con repos atados a la transacción del caller.
type Planner struct{}

// NewPlanner construye el motor.
func NewPlanner() *Planner {
	return &Planner{}
}

// DefaultPasses pasadas preferidas estándar para reservar un movimiento:
// primero los quants ya reservados a ese mismo movimiento (re-reserva
// idempotente), después los libres. Nunca roba reservas de otros movimientos.
func DefaultPasses(move *entity.Move) []repository.ReservationFilter {
	return []repository.ReservationFilter{
		{ReservedFor: move.ID},
		{OnlyFree: true},
	}
}

// Plan satisface qty para el movimiento dado y devuelve el plan resultante.
//
// El dominio base siempre restringe por producto y empresa; por subárbol de la
// ubicación origen del movimiento (o de las ubicaciones ya resueltas en base,
// cuando el caller opera a granularidad de pack operation); por dueño y
// paquete si vienen en base; y por lote con regla estricta/blanda: si hay lote
// obligado, la primera subpasada exige ese lote y la siguiente acepta quants
// sin lote registrado — jamás un lote distinto.
//
// passes son filtros de reserva adicionales probados en orden; cada pasada es
// ortogonal (no re-selecciona quants consumidos antes) y el motor corta al
// cubrir la demanda. Si queda demanda tras todas las pasadas, se agrega una
// entrada final (nil, restante).
//
// Orígenes virtuales (supplier/inventory/production) cortocircuitan: toda la
// cantidad es reservable sin consultar el ledger.
//
// Los candidatos se bloquean (FOR UPDATE) en el orden determinista de la
// estrategia antes de leer cantidades; este método debe ejecutarse dentro de
// la transacción que luego aplicará el plan.
func (p *Planner) Plan(
	ctx context.Context,
	quants repository.QuantRepository,
	locations repository.LocationRepository,
	product *entity.Product,
	move *entity.Move,
	qty decimal.Decimal,
	base repository.QuantFilter,
	passes []repository.ReservationFilter,
) (Plan, error) {
	if !qty.IsPositive() {
		return nil, domain.ErrInvalidReservation
	}
	if product == nil || move == nil {
		return nil, domain.ErrInvalidInput
	}

	order, err := removal.OrderFor(move.RemovalStrategy)
	if err != nil {
		return nil, err
	}

	if base.ProductID == "" {
		base.ProductID = move.ProductID
	}
	if base.CompanyID == "" {
		base.CompanyID = move.CompanyID
	}
	if base.OwnerID == "" {
		base.OwnerID = move.RestrictPartnerID
	}
	if base.LotID == "" {
		base.LotID = move.RestrictLotID
	}

	// Ubicaciones candidatas: las del caller, o el subárbol del origen del
	// movimiento. El origen virtual no tiene ledger que consultar.
	if len(base.LocationIDs) == 0 {
		src, err := locations.GetByID(ctx, move.LocationID)
		if err != nil {
			return nil, err
		}
		if src == nil {
			return nil, domain.ErrNotFound
		}
		if src.IsVirtualSource() {
			return Plan{{Quant: nil, Qty: qty}}, nil
		}
		base.LocationIDs, err = locations.SubtreeIDs(ctx, src.ID)
		if err != nil {
			return nil, err
		}
	}

	if len(passes) == 0 {
		passes = DefaultPasses(move)
	}

	// Regla estricta/blanda de lote: con lote obligado, primero ese lote y
	// luego stock sin lote registrado (legado utilizable).
	type lotPass struct {
		lotID    string
		lotUnset bool
	}
	lotPasses := []lotPass{{lotID: base.LotID}}
	if base.LotID != "" {
		lotPasses = append(lotPasses, lotPass{lotUnset: true})
	}

	remaining := qty
	var plan Plan
	var consumed []string

	for _, pass := range passes {
		for _, lp := range lotPasses {
			if !product.RoundQty(remaining).IsPositive() {
				break
			}
			f := base
			f.Reservation = pass
			f.LotID = lp.lotID
			f.LotUnset = lp.lotUnset
			f.ExcludeIDs = consumed

			for {
				candidates, err := quants.FindForUpdate(ctx, f, order, pageSize, 0)
				if err != nil {
					return nil, err
				}
				entries, rest := consume(candidates, remaining)
				for _, e := range entries {
					consumed = append(consumed, e.Quant.ID)
				}
				f.ExcludeIDs = consumed
				plan = append(plan, entries...)
				remaining = rest
				if !remaining.IsPositive() || len(candidates) < pageSize {
					break
				}
			}
		}
	}

	if product.RoundQty(remaining).IsPositive() {
		plan = append(plan, Entry{Quant: nil, Qty: remaining})
	} else if remaining.IsPositive() && len(plan) > 0 {
		// Residuo menor a la tolerancia de la UdM: se absorbe en la última
		// entrada para que el total del plan sume exactamente la demanda.
		plan[len(plan)-1].Qty = plan[len(plan)-1].Qty.Add(remaining)
	}

	return plan, nil
}
