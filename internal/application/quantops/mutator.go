// Package quantops es la única ruta de escritura sobre el ledger de quants:
// split, reserva, movimiento, liberación y reconciliación de negativos.
// Todas sus operaciones asumen ejecutarse dentro de una transacción
// (TxRunner) con las filas implicadas bloqueadas antes de leer cantidades.
package quantops

import (
	"context"
	"time"

	"github.com/jhoicas/stock-quants/internal/application/reservation"
	"github.com/jhoicas/stock-quants/internal/domain"
	"github.com/jhoicas/stock-quants/internal/domain/entity"
	"github.com/jhoicas/stock-quants/internal/domain/repository"
	"github.com/jhoicas/stock-quants/internal/domain/valuation"
	"github.com/jhoicas/stock-quants/pkg/logger"
	"github.com/shopspring/decimal"
)

// MoveOptions ajustes de un movimiento de quants a granularidad de pack
// operation: origen forzado, lote/dueño a estampar y política de paquetes.
type MoveOptions struct {
	// ForceLocationFromID origen efectivo cuando la operación trabaja sobre una
	// sububicación distinta a la del movimiento.
	ForceLocationFromID string

	// LotID lote a estampar en quants sin lote registrado (nunca pisa un lote
	// existente distinto).
	LotID string

	// OwnerID dueño de los quants creados especulativamente.
	OwnerID string

	// DestPackageID paquete destino explícito: pisa el paquete de los quants
	// movidos salvo que se mueva un paquete entero intacto.
	DestPackageID string

	// EntirePackage el movimiento relocaliza un paquete completo: se conserva
	// el PackageID original de cada quant.
	EntirePackage bool
}

// Mutator ruta exclusiva de mutación de quants. Sin estado propio: los
// repositorios llegan por parámetro, atados a la transacción del caller.
type Mutator struct {
	log *logger.Logger
}

// NewMutator construye el mutador.
func NewMutator(log *logger.Logger) *Mutator {
	if log == nil {
		log = logger.Nop()
	}
	return &Mutator{log: log}
}

// Split aísla qty del quant. Si |q.Quantity| <= |qty| no hay nada que partir:
// se toma la fila entera y devuelve nil. Si no, crea la fila sobrante con
// Quantity-qty (conservando historial, costo, fecha de entrada y reserva) y
// reduce la original a qty. Este es el mecanismo de reserva/consumo parcial:
// una fila, un estado de reserva, sin contadores aparte.
//
// qty debe tener el mismo signo que el quant (los negativos se parten con
// cantidades negativas durante la reconciliación); cero o signo cruzado es un
// bug del caller.
func (m *Mutator) Split(ctx context.Context, quants repository.QuantRepository, q *entity.Quant, qty decimal.Decimal) (*entity.Quant, error) {
	if q == nil || qty.IsZero() || qty.Sign() != q.Quantity.Sign() {
		return nil, domain.ErrInvalidReservation
	}
	if q.Quantity.Abs().Cmp(qty.Abs()) <= 0 {
		return nil, nil
	}

	now := time.Now()
	leftover := q.CloneForSplit(q.Quantity.Sub(qty), now)
	if err := quants.Create(ctx, leftover); err != nil {
		return nil, err
	}
	q.Quantity = qty
	q.UpdatedAt = now
	if err := quants.Update(ctx, q); err != nil {
		return nil, err
	}
	return leftover, nil
}

// Reserve aplica un plan de reserva: por cada entrada real parte el quant para
// aislar la cantidad y lo etiqueta con el movimiento. Las entradas nil se
// omiten (porción sin stock real). Después recalcula la disponibilidad
// reservada del movimiento: si cubre ProductQty (con la tolerancia de la UdM)
// pasa a assigned; si cubre algo pero no todo, marca PartiallyAvailable sin
// cambiar el estado primario.
//
// La reserva no altera cantidades: solo etiqueta qué movimiento tiene derecho
// a reclamarlas. Reaplicar sobre un movimiento ya assigned es no-op.
func (m *Mutator) Reserve(
	ctx context.Context,
	quants repository.QuantRepository,
	moves repository.MoveRepository,
	product *entity.Product,
	plan reservation.Plan,
	move *entity.Move,
) error {
	for _, e := range plan {
		if e.Quant == nil {
			continue
		}
		if !e.Qty.IsPositive() || !e.Quant.Quantity.IsPositive() {
			return domain.ErrInvalidReservation
		}
		// Una reserva ajena nunca se pisa: el planner no debió seleccionarla.
		if e.Quant.IsReserved() && e.Quant.ReservationID != move.ID {
			return domain.ErrInvalidReservation
		}
		if _, err := m.Split(ctx, quants, e.Quant, e.Qty); err != nil {
			return err
		}
		e.Quant.ReservationID = move.ID
		e.Quant.UpdatedAt = time.Now()
		if err := quants.Update(ctx, e.Quant); err != nil {
			return err
		}
	}

	reserved, err := m.reservedAvailability(ctx, quants, move)
	if err != nil {
		return err
	}

	switch {
	case product.CompareQty(reserved, move.ProductQty) >= 0:
		move.State = entity.MoveAssigned
		move.PartiallyAvailable = false
	case product.IsZeroQty(reserved):
		return nil
	default:
		move.PartiallyAvailable = true
	}
	if err := moves.UpdateState(ctx, move.ID, move.State, move.PartiallyAvailable); err != nil {
		return err
	}

	m.log.Debug().
		Str("move", move.ID).
		Str("reservado", reserved.String()).
		Str("demanda", move.ProductQty.String()).
		Str("estado", move.State).
		Msg("reserva aplicada")
	return nil
}

// Move procesa un plan contra el destino dado: parte y relocaliza las entradas
// reales (limpiando su reserva y anexando el movimiento al historial) y crea
// quants para las entradas nil — positivo en destino y, si el origen es una
// ubicación real, el negativo gemelo en origen enlazado vía PropagatedFrom
// (la deuda). Tras relocalizar a una ubicación interna dispara la
// reconciliación de negativos pendientes.
//
// Mover hacia una ubicación de tipo view falla con ErrInvalidDestination antes
// de escribir nada.
func (m *Mutator) Move(
	ctx context.Context,
	quants repository.QuantRepository,
	locations repository.LocationRepository,
	products repository.ProductRepository,
	product *entity.Product,
	plan reservation.Plan,
	move *entity.Move,
	locationTo *entity.Location,
	opts MoveOptions,
) ([]*entity.Quant, error) {
	if locationTo == nil {
		return nil, domain.ErrNotFound
	}
	if locationTo.Usage == entity.LocationView {
		return nil, domain.ErrInvalidDestination
	}

	fromID := opts.ForceLocationFromID
	if fromID == "" {
		fromID = move.LocationID
	}
	locationFrom, err := locations.GetByID(ctx, fromID)
	if err != nil {
		return nil, err
	}
	if locationFrom == nil {
		return nil, domain.ErrNotFound
	}

	lotID := opts.LotID
	if lotID == "" {
		lotID = move.RestrictLotID
	}

	if err := m.checkSerial(ctx, quants, product, plan, lotID, locationFrom, locationTo); err != nil {
		return nil, err
	}

	now := time.Now()
	var moved []*entity.Quant

	for _, e := range plan {
		q := e.Quant
		if q == nil {
			q, err = m.createQuant(ctx, quants, product, move, e.Qty, locationFrom, locationTo, lotID, opts, now)
			if err != nil {
				return nil, err
			}
			moved = append(moved, q)
			continue
		}

		if _, err := m.Split(ctx, quants, q, e.Qty); err != nil {
			return nil, err
		}
		q.LocationID = locationTo.ID
		q.ReservationID = ""
		if q.LotID == "" {
			q.LotID = lotID
		}
		if opts.DestPackageID != "" && !opts.EntirePackage {
			q.PackageID = opts.DestPackageID
		}
		q.History = appendHistory(q.History, move.ID)
		q.UpdatedAt = now
		if err := quants.Update(ctx, q); err != nil {
			return nil, err
		}
		if err := quants.AddHistory(ctx, q.ID, []string{move.ID}); err != nil {
			return nil, err
		}
		moved = append(moved, q)
	}

	// Entradas desde fuentes de suministro re-precian el producto a costo
	// promedio ponderado.
	if locationFrom.IsVirtualSource() && locationTo.IsInternal() {
		if err := m.repriceProduct(ctx, quants, products, product, plan, move, locationTo); err != nil {
			return nil, err
		}
	}

	// La llegada de stock real a una ubicación interna extingue deuda pendiente.
	if locationTo.IsInternal() {
		for _, q := range moved {
			if err := m.ReconcileNegative(ctx, quants, locations, q, move); err != nil {
				return nil, err
			}
		}
	}

	m.log.Debug().
		Str("move", move.ID).
		Str("destino", locationTo.ID).
		Int("quants", len(moved)).
		Msg("quants movidos")
	return moved, nil
}

// Unreserve libera todos los quants reservados por el movimiento. No mueve ni
// altera cantidades; siempre es legal e idempotente.
func (m *Mutator) Unreserve(ctx context.Context, quants repository.QuantRepository, move *entity.Move) error {
	return quants.ClearReservation(ctx, move.ID)
}

// createQuant materializa una entrada especulativa del plan: quant positivo en
// destino y, si el origen es real (no virtual), el negativo gemelo en origen.
func (m *Mutator) createQuant(
	ctx context.Context,
	quants repository.QuantRepository,
	product *entity.Product,
	move *entity.Move,
	qty decimal.Decimal,
	locationFrom, locationTo *entity.Location,
	lotID string,
	opts MoveOptions,
	now time.Time,
) (*entity.Quant, error) {
	if !qty.IsPositive() {
		return nil, domain.ErrInvalidReservation
	}

	ownerID := opts.OwnerID
	if ownerID == "" {
		ownerID = move.RestrictPartnerID
	}

	pos := &entity.Quant{
		ID:         entity.NewID(),
		CompanyID:  move.CompanyID,
		ProductID:  product.ID,
		LocationID: locationTo.ID,
		LotID:      lotID,
		PackageID:  opts.DestPackageID,
		OwnerID:    ownerID,
		Quantity:   qty,
		Cost:       move.PriceUnit,
		InDate:     now,
		History:    []string{move.ID},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	// Solo un origen real deja deuda: consumir de un proveedor/ajuste virtual
	// no genera negativo.
	if locationFrom.IsRealSource() {
		neg := &entity.Quant{
			ID:         entity.NewID(),
			CompanyID:  move.CompanyID,
			ProductID:  product.ID,
			LocationID: locationFrom.ID,
			LotID:      lotID,
			OwnerID:    ownerID,
			Quantity:   qty.Neg(),
			Cost:       move.PriceUnit,
			InDate:     now,
			History:    []string{move.ID},
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := quants.Create(ctx, neg); err != nil {
			return nil, err
		}
		pos.PropagatedFromID = neg.ID
	}

	if err := quants.Create(ctx, pos); err != nil {
		return nil, err
	}
	return pos, nil
}

// checkSerial valida trazabilidad por número de serie en recepciones hacia
// stock interno: exactamente una unidad por serial, y el serial no puede
// estar ya presente en stock interno.
func (m *Mutator) checkSerial(
	ctx context.Context,
	quants repository.QuantRepository,
	product *entity.Product,
	plan reservation.Plan,
	lotID string,
	locationFrom, locationTo *entity.Location,
) error {
	if product.Tracking != entity.TrackingSerial || lotID == "" || !locationTo.IsInternal() {
		return nil
	}
	// Un traslado interno del mismo serial no es una recepción nueva.
	if locationFrom.IsInternal() {
		return nil
	}
	if !plan.Total().Equal(decimal.New(1, 0)) {
		return domain.ErrInsufficientLot
	}
	exists, err := quants.SerialInInternalStock(ctx, product.ID, lotID)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrInsufficientLot
	}
	return nil
}

// repriceProduct actualiza el costo promedio ponderado del producto con la
// cantidad entrante al costo del movimiento.
func (m *Mutator) repriceProduct(
	ctx context.Context,
	quants repository.QuantRepository,
	products repository.ProductRepository,
	product *entity.Product,
	plan reservation.Plan,
	move *entity.Move,
	locationTo *entity.Location,
) error {
	incoming := plan.Total()
	totals, err := quants.AggregateByLocations(ctx, move.CompanyID, []string{locationTo.ID})
	if err != nil {
		return err
	}
	// El agregado ya incluye lo recién creado; el stock previo es la diferencia.
	previous := totals[product.ID].Sub(incoming)
	newCost := valuation.AverageCost(previous, product.Cost, incoming, move.PriceUnit)
	product.Cost = newCost
	return products.UpdateCost(ctx, product.ID, newCost)
}

// reservedAvailability suma las cantidades actualmente reservadas al movimiento.
func (m *Mutator) reservedAvailability(ctx context.Context, quants repository.QuantRepository, move *entity.Move) (decimal.Decimal, error) {
	reserved, err := quants.FindByReservation(ctx, move.ID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, q := range reserved {
		total = total.Add(q.Quantity)
	}
	return total, nil
}

func appendHistory(history []string, moveID string) []string {
	for _, id := range history {
		if id == moveID {
			return history
		}
	}
	return append(history, moveID)
}
