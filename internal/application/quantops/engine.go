package quantops

import (
	"context"

	"github.com/jhoicas/stock-quants/internal/application/reservation"
	"github.com/jhoicas/stock-quants/internal/domain"
	"github.com/jhoicas/stock-quants/internal/domain/entity"
	"github.com/jhoicas/stock-quants/internal/domain/repository"
	"github.com/jhoicas/stock-quants/pkg/logger"
)

// Engine caso de uso transaccional de cara a los movimientos: reservar,
// procesar y liberar, cada operación en una sola transacción todo-o-nada.
// Es el contrato que consume el colaborador externo (movimiento / pack
// operation); el plan, el mutador y el reconciliador son internos.
type Engine struct {
	tx      TxRunner
	planner *reservation.Planner
	mutator *Mutator
	log     *logger.Logger
}

// NewEngine construye el motor con su frontera transaccional.
func NewEngine(tx TxRunner, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{
		tx:      tx,
		planner: reservation.NewPlanner(),
		mutator: NewMutator(log),
		log:     log,
	}
}

// Assign reserva stock para el movimiento: planifica sobre la demanda completa
// (los quants ya reservados al propio movimiento se re-seleccionan en la
// primera pasada, lo que hace la operación idempotente) y aplica la reserva.
// Devuelve el plan resultante; la porción nil del plan queda como demanda
// insatisfecha (el movimiento pasa a partially_available si cubrió algo).
func (e *Engine) Assign(ctx context.Context, moveID string) (reservation.Plan, error) {
	var plan reservation.Plan
	err := e.tx.Run(ctx, func(
		quants repository.QuantRepository,
		moves repository.MoveRepository,
		locations repository.LocationRepository,
		products repository.ProductRepository,
	) error {
		move, product, err := e.moveContext(ctx, moves, products, moveID)
		if err != nil {
			return err
		}
		if !move.CanBeReserved() {
			return domain.ErrInvalidInput
		}

		plan, err = e.planner.Plan(ctx, quants, locations, product, move,
			move.ProductQty, repository.QuantFilter{}, reservation.DefaultPasses(move))
		if err != nil {
			return err
		}
		return e.mutator.Reserve(ctx, quants, moves, product, plan, move)
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// Transfer procesa el movimiento: planifica (reservados primero, libres
// después), mueve los quants al destino del movimiento — creando quants
// especulativos y deuda donde falte stock real — y marca el movimiento done.
func (e *Engine) Transfer(ctx context.Context, moveID string, opts MoveOptions) error {
	return e.tx.Run(ctx, func(
		quants repository.QuantRepository,
		moves repository.MoveRepository,
		locations repository.LocationRepository,
		products repository.ProductRepository,
	) error {
		move, product, err := e.moveContext(ctx, moves, products, moveID)
		if err != nil {
			return err
		}
		if move.IsDone() || move.State == entity.MoveCancel {
			return domain.ErrInvalidInput
		}

		locationTo, err := locations.GetByID(ctx, move.LocationDestID)
		if err != nil {
			return err
		}
		if locationTo == nil {
			return domain.ErrNotFound
		}

		plan, err := e.planner.Plan(ctx, quants, locations, product, move,
			move.ProductQty, repository.QuantFilter{}, reservation.DefaultPasses(move))
		if err != nil {
			return err
		}
		if _, err := e.mutator.Move(ctx, quants, locations, products, product, plan, move, locationTo, opts); err != nil {
			return err
		}

		move.State = entity.MoveDone
		move.PartiallyAvailable = false
		if err := moves.UpdateState(ctx, move.ID, move.State, move.PartiallyAvailable); err != nil {
			return err
		}
		e.log.Info().
			Str("move", move.ID).
			Str("producto", move.ProductID).
			Str("qty", move.ProductQty.String()).
			Msg("movimiento procesado")
		return nil
	})
}

// Unreserve libera la reserva del movimiento sin tocar cantidades. Si estaba
// assigned vuelve a confirmed; siempre limpia el flag parcial. Idempotente.
func (e *Engine) Unreserve(ctx context.Context, moveID string) error {
	return e.tx.Run(ctx, func(
		quants repository.QuantRepository,
		moves repository.MoveRepository,
		locations repository.LocationRepository,
		products repository.ProductRepository,
	) error {
		move, err := moves.GetByID(ctx, moveID)
		if err != nil {
			return err
		}
		if move == nil {
			return domain.ErrNotFound
		}
		if err := e.mutator.Unreserve(ctx, quants, move); err != nil {
			return err
		}
		state := move.State
		if state == entity.MoveAssigned {
			state = entity.MoveConfirmed
		}
		return moves.UpdateState(ctx, move.ID, state, false)
	})
}

// Cancel libera la reserva y cancela el movimiento.
func (e *Engine) Cancel(ctx context.Context, moveID string) error {
	return e.tx.Run(ctx, func(
		quants repository.QuantRepository,
		moves repository.MoveRepository,
		locations repository.LocationRepository,
		products repository.ProductRepository,
	) error {
		move, err := moves.GetByID(ctx, moveID)
		if err != nil {
			return err
		}
		if move == nil {
			return domain.ErrNotFound
		}
		if move.IsDone() {
			return domain.ErrInvalidInput
		}
		if err := e.mutator.Unreserve(ctx, quants, move); err != nil {
			return err
		}
		return moves.UpdateState(ctx, move.ID, entity.MoveCancel, false)
	})
}

// moveContext carga movimiento y producto validando existencia.
func (e *Engine) moveContext(
	ctx context.Context,
	moves repository.MoveRepository,
	products repository.ProductRepository,
	moveID string,
) (*entity.Move, *entity.Product, error) {
	move, err := moves.GetByID(ctx, moveID)
	if err != nil {
		return nil, nil, err
	}
	if move == nil {
		return nil, nil, domain.ErrNotFound
	}
	product, err := products.GetByID(ctx, move.ProductID)
	if err != nil {
		return nil, nil, err
	}
	if product == nil {
		return nil, nil, domain.ErrNotFound
	}
	return move, product, nil
}
